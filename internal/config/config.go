// SPDX-License-Identifier: MIT
//
// Package config defines the runtime configuration for the visualizer and
// the bounds the analysis pipeline is allowed to operate in. Configuration
// problems are fatal at startup: an unusable FFT size or bar count is not a
// transient condition and must never reach the render loop.
package config

import (
	"errors"
	"fmt"
	"time"

	"spectrum/pkg/bitint"
)

// ErrConfiguration marks configuration validation failures. Callers check it
// with errors.Is to distinguish fatal setup errors from runtime conditions.
var ErrConfiguration = errors.New("invalid configuration")

// Defaults and limits for the analysis pipeline.
const (
	DefaultSampleRate      = 44100 // CD-quality audio
	DefaultFramesPerBuffer = 512   // Capture block size, balanced latency
	DefaultChannels        = 1     // Mono capture, stereo is downmixed
	DefaultDeviceID        = MinDeviceID
	DefaultFFTSize         = 2048
	DefaultBars            = 48
	DefaultFrameRate       = 30 // Render ticks per second
	DefaultDecayRate       = 8.0
	DefaultScale           = 2.5
	DefaultPeakFallRate    = 0.4 // Surface fractions per second
	DefaultSilenceFrames   = 10  // Analysis cycles before idle display

	MinDeviceID   = -1 // -1 selects the system default device
	MinSampleRate = 8000
	MaxSampleRate = 192000
	MinFFTSize    = 256
	MaxFFTSize    = 16384
	MaxFrameRate  = 240
)

// Valid names for enumerated settings.
const (
	SourceCapture = "capture"
	SourceSine    = "sine"

	CurveLinear      = "linear"
	CurveLogarithmic = "logarithmic"

	AggregateMax = "max"
	AggregateSum = "sum"
)

// Config is the application configuration, loaded from YAML and overridden
// by environment variables and CLI flags.
type Config struct {
	Debug    bool   `yaml:"debug"`     // Verbose logging and diagnostics.
	LogLevel string `yaml:"log_level"` // debug, info, warn, error.

	Audio     AudioConfig     `yaml:"audio"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Display   DisplayConfig   `yaml:"display"`
	Recording RecordingConfig `yaml:"recording"`
	Transport TransportConfig `yaml:"transport"`
}

// AudioConfig holds capture settings.
type AudioConfig struct {
	InputDevice     int     `yaml:"input_device"`      // PortAudio device index, -1 for default.
	SampleRate      float64 `yaml:"sample_rate"`       // Hz.
	FramesPerBuffer int     `yaml:"frames_per_buffer"` // Samples per capture block.
	Channels        int     `yaml:"channels"`          // Channels to open; >1 is downmixed to mono.
	LowLatency      bool    `yaml:"low_latency"`       // Request low latency from the device.
	Source          string  `yaml:"source"`            // "capture" or "sine" (device-free demo).
	SineFrequency   float64 `yaml:"sine_frequency"`    // Tone frequency for the sine source.
}

// AnalysisConfig holds FFT and bar mapping settings.
type AnalysisConfig struct {
	FFTSize       int     `yaml:"fft_size"`       // Analysis window, power of two.
	Window        string  `yaml:"window"`         // Hann, Hamming or Blackman.
	Bars          int     `yaml:"bars"`           // Display bars, 1..FFTSize/2.
	Curve         string  `yaml:"curve"`          // "linear" or "logarithmic" bin grouping.
	Aggregate     string  `yaml:"aggregate"`      // "max" or "sum" per bar.
	DecayRate     float64 `yaml:"decay_rate"`     // Exponential fall constant, 1/s.
	PeakFallRate  float64 `yaml:"peak_fall_rate"` // Linear peak marker fall, fraction/s.
	SilenceFrames int     `yaml:"silence_frames"` // Silent cycles before idle display.
}

// DisplayConfig holds render settings.
type DisplayConfig struct {
	FrameRate   int     `yaml:"frame_rate"`   // Render ticks per second.
	BarGap      int     `yaml:"bar_gap"`      // Cells between bars.
	Scale       float64 `yaml:"scale"`        // Magnitude-to-full-height gain.
	ColorBottom string  `yaml:"color_bottom"` // Hex color at zero height.
	ColorTop    string  `yaml:"color_top"`    // Hex color at full height.
}

// RecordingConfig holds WAV capture settings.
type RecordingConfig struct {
	Enabled    bool   `yaml:"enabled"`
	OutputFile string `yaml:"output_file"` // Empty selects a timestamped name.
	BitDepth   int    `yaml:"bit_depth"`   // 16 or 24.
}

// TransportConfig holds settings for publishing bar frames to external
// consumers.
type TransportConfig struct {
	WebSocketEnabled bool          `yaml:"websocket_enabled"`
	WebSocketAddr    string        `yaml:"websocket_addr"` // e.g. ":8080"
	UDPEnabled       bool          `yaml:"udp_enabled"`
	UDPTargetAddress string        `yaml:"udp_target_address"` // e.g. "127.0.0.1:9090"
	UDPSendInterval  time.Duration `yaml:"udp_send_interval"`
}

// NewConfig returns a Config populated with defaults.
func NewConfig() *Config {
	return &Config{
		Debug:    false,
		LogLevel: "info",
		Audio: AudioConfig{
			InputDevice:     DefaultDeviceID,
			SampleRate:      DefaultSampleRate,
			FramesPerBuffer: DefaultFramesPerBuffer,
			Channels:        DefaultChannels,
			LowLatency:      false,
			Source:          SourceCapture,
			SineFrequency:   440,
		},
		Analysis: AnalysisConfig{
			FFTSize:       DefaultFFTSize,
			Window:        "Hann",
			Bars:          DefaultBars,
			Curve:         CurveLogarithmic,
			Aggregate:     AggregateMax,
			DecayRate:     DefaultDecayRate,
			PeakFallRate:  DefaultPeakFallRate,
			SilenceFrames: DefaultSilenceFrames,
		},
		Display: DisplayConfig{
			FrameRate:   DefaultFrameRate,
			BarGap:      1,
			Scale:       DefaultScale,
			ColorBottom: "#25A065",
			ColorTop:    "#F25D94",
		},
		Recording: RecordingConfig{
			Enabled:    false,
			OutputFile: "",
			BitDepth:   16,
		},
		Transport: TransportConfig{
			WebSocketEnabled: false,
			WebSocketAddr:    ":8080",
			UDPEnabled:       false,
			UDPTargetAddress: "127.0.0.1:9090",
			UDPSendInterval:  33 * time.Millisecond,
		},
	}
}

// Validate checks the configuration against the pipeline's hard limits.
// Every returned error wraps ErrConfiguration.
func (c *Config) Validate() error {
	a := &c.Audio
	if a.SampleRate < MinSampleRate || a.SampleRate > MaxSampleRate {
		return fmt.Errorf("%w: sample rate %.0f outside [%d, %d]",
			ErrConfiguration, a.SampleRate, MinSampleRate, MaxSampleRate)
	}
	if a.FramesPerBuffer <= 0 {
		return fmt.Errorf("%w: frames per buffer must be positive, got %d",
			ErrConfiguration, a.FramesPerBuffer)
	}
	if a.Channels < 1 || a.Channels > 2 {
		return fmt.Errorf("%w: channels must be 1 or 2, got %d", ErrConfiguration, a.Channels)
	}
	if a.Source != SourceCapture && a.Source != SourceSine {
		return fmt.Errorf("%w: unknown source %q", ErrConfiguration, a.Source)
	}
	if a.Source == SourceSine && a.SineFrequency <= 0 {
		return fmt.Errorf("%w: sine frequency must be positive, got %.1f",
			ErrConfiguration, a.SineFrequency)
	}

	n := &c.Analysis
	if !bitint.IsPowerOfTwo(n.FFTSize) || n.FFTSize < MinFFTSize || n.FFTSize > MaxFFTSize {
		return fmt.Errorf("%w: fft size must be a power of two in [%d, %d], got %d",
			ErrConfiguration, MinFFTSize, MaxFFTSize, n.FFTSize)
	}
	if n.Bars < 1 || n.Bars > n.FFTSize/2 {
		return fmt.Errorf("%w: bars must be in [1, %d] for fft size %d, got %d",
			ErrConfiguration, n.FFTSize/2, n.FFTSize, n.Bars)
	}
	if n.Curve != CurveLinear && n.Curve != CurveLogarithmic {
		return fmt.Errorf("%w: unknown curve %q", ErrConfiguration, n.Curve)
	}
	if n.Aggregate != AggregateMax && n.Aggregate != AggregateSum {
		return fmt.Errorf("%w: unknown aggregate %q", ErrConfiguration, n.Aggregate)
	}
	if n.DecayRate <= 0 {
		return fmt.Errorf("%w: decay rate must be positive, got %g", ErrConfiguration, n.DecayRate)
	}
	if n.PeakFallRate < 0 {
		return fmt.Errorf("%w: peak fall rate must not be negative, got %g",
			ErrConfiguration, n.PeakFallRate)
	}
	if n.SilenceFrames < 0 {
		return fmt.Errorf("%w: silence frames must not be negative, got %d",
			ErrConfiguration, n.SilenceFrames)
	}

	d := &c.Display
	if d.FrameRate < 1 || d.FrameRate > MaxFrameRate {
		return fmt.Errorf("%w: frame rate must be in [1, %d], got %d",
			ErrConfiguration, MaxFrameRate, d.FrameRate)
	}
	if d.BarGap < 0 {
		return fmt.Errorf("%w: bar gap must not be negative, got %d", ErrConfiguration, d.BarGap)
	}
	if d.Scale <= 0 {
		return fmt.Errorf("%w: scale must be positive, got %g", ErrConfiguration, d.Scale)
	}

	r := &c.Recording
	if r.Enabled && r.BitDepth != 16 && r.BitDepth != 24 {
		return fmt.Errorf("%w: recording bit depth must be 16 or 24, got %d",
			ErrConfiguration, r.BitDepth)
	}

	tr := &c.Transport
	if tr.UDPEnabled && tr.UDPSendInterval <= 0 {
		return fmt.Errorf("%w: udp send interval must be positive when UDP is enabled",
			ErrConfiguration)
	}

	return nil
}
