// SPDX-License-Identifier: MIT
package cmd

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"spectrum/internal/config"
	"spectrum/pkg/build"
)

// Options is the result of argument parsing: the effective configuration
// plus which mode the program should run in.
type Options struct {
	Config  *config.Config
	Command string // one-off command, e.g. "list"
	TUIMode bool
}

// ParseArgs parses the command line. Precedence, lowest to highest:
// defaults, config file, environment, flags. Only flags the user actually
// set override the file and environment.
func ParseArgs() (*Options, error) {
	buildInfo := build.GetBuildFlags()
	options := &Options{}

	// Flag values land here first; changed ones are copied onto the
	// loaded configuration afterwards.
	flagCfg := config.NewConfig()
	var configPath string

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         "Real-time terminal audio spectrum visualizer",
		Version:       buildInfo.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig(cmd, configPath, flagCfg)
			if err != nil {
				return err
			}
			options.Config = cfg
			options.TUIMode = true
			return nil
		},
	}

	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List available audio input devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig(cmd, configPath, flagCfg)
			if err != nil {
				return err
			}
			options.Config = cfg
			options.Command = "list"
			return nil
		},
	}
	rootCmd.AddCommand(listCmd)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Path to a YAML configuration file")

	// Audio device configuration
	pf.IntVarP(&flagCfg.Audio.InputDevice, "device", "d", config.DefaultDeviceID,
		"Input device ID. Use the 'list' command to see available devices.")
	pf.IntVarP(&flagCfg.Audio.Channels, "channels", "c", config.DefaultChannels,
		"Channels to capture (1=mono, 2=stereo, downmixed to mono)")
	pf.Float64VarP(&flagCfg.Audio.SampleRate, "sample-rate", "s", config.DefaultSampleRate,
		"Sample rate in Hertz (Hz)")
	pf.IntVarP(&flagCfg.Audio.FramesPerBuffer, "frames-per-buffer", "b", config.DefaultFramesPerBuffer,
		"Samples per capture block (affects latency)")
	pf.BoolVarP(&flagCfg.Audio.LowLatency, "low-latency", "l", false,
		"Request low latency from the device")
	pf.StringVar(&flagCfg.Audio.Source, "source", config.SourceCapture,
		"Audio source: capture or sine (device-free demo tone)")
	pf.Float64Var(&flagCfg.Audio.SineFrequency, "sine-freq", 440,
		"Tone frequency for the sine source")

	// Analysis configuration
	pf.IntVar(&flagCfg.Analysis.FFTSize, "fft-size", config.DefaultFFTSize,
		"FFT size, a power of two")
	pf.StringVar(&flagCfg.Analysis.Window, "window", "Hann",
		"Window function: Hann, Hamming or Blackman")
	pf.IntVar(&flagCfg.Analysis.Bars, "bars", config.DefaultBars,
		"Number of spectrum bars")
	pf.StringVar(&flagCfg.Analysis.Curve, "curve", config.CurveLogarithmic,
		"Frequency curve: linear or logarithmic")
	pf.StringVar(&flagCfg.Analysis.Aggregate, "aggregate", config.AggregateMax,
		"Bin aggregation per bar: max or sum")
	pf.Float64Var(&flagCfg.Analysis.DecayRate, "decay", config.DefaultDecayRate,
		"Bar decay rate, per second")

	// Display configuration
	pf.IntVar(&flagCfg.Display.FrameRate, "fps", config.DefaultFrameRate,
		"Render frame rate")
	pf.IntVar(&flagCfg.Display.BarGap, "gap", 1,
		"Cells between bars")
	pf.Float64Var(&flagCfg.Display.Scale, "scale", config.DefaultScale,
		"Magnitude-to-height gain")
	pf.StringVar(&flagCfg.Display.ColorBottom, "color-bottom", "",
		"Hex color at zero height")
	pf.StringVar(&flagCfg.Display.ColorTop, "color-top", "",
		"Hex color at full height")

	// Recording configuration
	pf.BoolVarP(&flagCfg.Recording.Enabled, "record", "r", false,
		"Record captured audio to a WAV file")
	pf.StringVarP(&flagCfg.Recording.OutputFile, "output", "o", "",
		"Recording file name. Default is recording-DD-MM-YYYY-HHMMSS.wav")

	// Transport configuration
	pf.BoolVar(&flagCfg.Transport.WebSocketEnabled, "ws", false,
		"Publish bar frames over WebSocket")
	pf.StringVar(&flagCfg.Transport.WebSocketAddr, "ws-addr", ":8080",
		"WebSocket listen address")
	pf.BoolVar(&flagCfg.Transport.UDPEnabled, "udp", false,
		"Publish bar frames as binary UDP packets")
	pf.StringVar(&flagCfg.Transport.UDPTargetAddress, "udp-addr", "127.0.0.1:9090",
		"UDP target address")

	// Debug configuration
	pf.BoolVarP(&flagCfg.Debug, "verbose", "v", false,
		"Show verbose output")

	rootCmd.SetArgs(os.Args[1:])
	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}
	return options, nil
}

// buildConfig loads the file and environment configuration, then lays the
// flags the user set on top and re-validates.
func buildConfig(cmd *cobra.Command, configPath string, flagCfg *config.Config) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	overrides := map[string]func(){
		"device":            func() { cfg.Audio.InputDevice = flagCfg.Audio.InputDevice },
		"channels":          func() { cfg.Audio.Channels = flagCfg.Audio.Channels },
		"sample-rate":       func() { cfg.Audio.SampleRate = flagCfg.Audio.SampleRate },
		"frames-per-buffer": func() { cfg.Audio.FramesPerBuffer = flagCfg.Audio.FramesPerBuffer },
		"low-latency":       func() { cfg.Audio.LowLatency = flagCfg.Audio.LowLatency },
		"source":            func() { cfg.Audio.Source = flagCfg.Audio.Source },
		"sine-freq":         func() { cfg.Audio.SineFrequency = flagCfg.Audio.SineFrequency },
		"fft-size":          func() { cfg.Analysis.FFTSize = flagCfg.Analysis.FFTSize },
		"window":            func() { cfg.Analysis.Window = flagCfg.Analysis.Window },
		"bars":              func() { cfg.Analysis.Bars = flagCfg.Analysis.Bars },
		"curve":             func() { cfg.Analysis.Curve = flagCfg.Analysis.Curve },
		"aggregate":         func() { cfg.Analysis.Aggregate = flagCfg.Analysis.Aggregate },
		"decay":             func() { cfg.Analysis.DecayRate = flagCfg.Analysis.DecayRate },
		"fps":               func() { cfg.Display.FrameRate = flagCfg.Display.FrameRate },
		"gap":               func() { cfg.Display.BarGap = flagCfg.Display.BarGap },
		"scale":             func() { cfg.Display.Scale = flagCfg.Display.Scale },
		"color-bottom":      func() { cfg.Display.ColorBottom = flagCfg.Display.ColorBottom },
		"color-top":         func() { cfg.Display.ColorTop = flagCfg.Display.ColorTop },
		"record":            func() { cfg.Recording.Enabled = flagCfg.Recording.Enabled },
		"output":            func() { cfg.Recording.OutputFile = flagCfg.Recording.OutputFile },
		"ws":                func() { cfg.Transport.WebSocketEnabled = flagCfg.Transport.WebSocketEnabled },
		"ws-addr":           func() { cfg.Transport.WebSocketAddr = flagCfg.Transport.WebSocketAddr },
		"udp":               func() { cfg.Transport.UDPEnabled = flagCfg.Transport.UDPEnabled },
		"udp-addr":          func() { cfg.Transport.UDPTargetAddress = flagCfg.Transport.UDPTargetAddress },
		"verbose":           func() { cfg.Debug = flagCfg.Debug },
	}
	for name, apply := range overrides {
		if flags.Changed(name) {
			apply()
		}
	}

	if cfg.Recording.Enabled && cfg.Recording.OutputFile == "" {
		cfg.Recording.OutputFile = "recording-" +
			time.Now().UTC().Format("02-01-2006-150405") + ".wav"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
