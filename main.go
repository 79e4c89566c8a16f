// SPDX-License-Identifier: MIT
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"spectrum/cmd"
	"spectrum/internal/audio"
	"spectrum/internal/config"
	applog "spectrum/internal/log"
	"spectrum/internal/pipeline"
	"spectrum/internal/render"
	"spectrum/internal/transport"
	"spectrum/internal/transport/udp"
	"spectrum/internal/tui"
	"spectrum/pkg/build"
)

// main runs in three phases: startup (configuration, device setup),
// concurrent (capture/analysis pipeline, publishers, TUI event loop) and
// shutdown (drain and close in reverse order of construction).
func main() {
	build.Initialize()

	opts, err := cmd.ParseArgs()
	if err != nil {
		applog.Fatalf("%v", err)
	}
	if opts.Config == nil {
		// Help or version output already happened.
		return
	}
	cfg := opts.Config

	if cfg.Debug {
		applog.SetLevel(applog.LevelDebug)
	} else if level, ok := applog.ParseLevel(cfg.LogLevel); ok {
		applog.SetLevel(level)
	}

	needPortAudio := opts.Command == "list" || cfg.Audio.Source == config.SourceCapture
	if needPortAudio {
		if err := audio.Initialize(); err != nil {
			applog.Fatalf("portaudio: %v", err)
		}
		defer audio.Terminate()
	}

	if opts.Command == "list" {
		if err := audio.ListDevices(); err != nil {
			applog.Fatalf("%v", err)
		}
		return
	}
	if !opts.TUIMode {
		return
	}

	if err := run(cfg); err != nil {
		applog.Fatalf("%v", err)
	}
}

func run(cfg *config.Config) error {
	source, err := newSource(cfg)
	if err != nil {
		return err
	}
	defer source.Close()

	var recorder *audio.Recorder
	if cfg.Recording.Enabled {
		recorder, err = audio.NewRecorder(cfg.Recording.OutputFile, source.SampleRate(), cfg.Recording.BitDepth)
		if err != nil {
			return err
		}
	}

	pipe, err := pipeline.New(cfg, source, recorder)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipe.Start(ctx)

	publishers, err := startPublishers(cfg, pipe)
	if err != nil {
		stop()
		pipe.Wait()
		return err
	}

	gradient, err := render.NewGradient(cfg.Display.ColorBottom, cfg.Display.ColorTop)
	if err != nil {
		return err
	}
	surface := render.NewCellSurface(0, 0)
	driver := render.NewDriver(surface, pipe.Smoother(), gradient,
		cfg.Display.Scale, cfg.Display.BarGap, cfg.Display.FrameRate)

	model := tui.New(driver, surface, tui.Stats{
		Source:     cfg.Audio.Source,
		SampleRate: source.SampleRate(),
		FFTSize:    cfg.Analysis.FFTSize,
		Bars:       cfg.Analysis.Bars,
		FrameRate:  cfg.Display.FrameRate,
	})

	tuiErr := tui.Run(model)

	// Shutdown: stop analysis first so nothing writes into closing sinks.
	stop()
	pipe.Wait()
	for _, p := range publishers {
		if err := p.Close(); err != nil {
			applog.Errorf("publisher close: %v", err)
		}
	}
	if recorder != nil {
		if err := recorder.Close(); err != nil {
			applog.Errorf("recorder close: %v", err)
		} else {
			fmt.Printf("Recording saved to %s\n", cfg.Recording.OutputFile)
		}
	}
	return tuiErr
}

// newSource builds the configured audio source.
func newSource(cfg *config.Config) (audio.Source, error) {
	switch cfg.Audio.Source {
	case config.SourceSine:
		return audio.NewSineSource(cfg.Audio.SineFrequency, cfg.Audio.SampleRate, cfg.Audio.FramesPerBuffer), nil
	default:
		return audio.NewCaptureSource(cfg.Audio.InputDevice, cfg.Audio.Channels,
			cfg.Audio.SampleRate, cfg.Audio.FramesPerBuffer, cfg.Audio.LowLatency)
	}
}

// startPublishers wires the enabled frame transports to the smoother.
func startPublishers(cfg *config.Config, pipe *pipeline.Pipeline) ([]*transport.Publisher, error) {
	var publishers []*transport.Publisher
	closeAll := func() {
		for _, p := range publishers {
			p.Close()
		}
	}

	if cfg.Transport.WebSocketEnabled {
		transports := []transport.Transport{transport.NewWebSocketTransport(cfg.Transport.WebSocketAddr)}
		if cfg.Debug {
			transports = append(transports, transport.NewDebugTransport())
		}
		// WebSocket frames follow the display cadence.
		interval := time.Second / time.Duration(cfg.Display.FrameRate)
		pub, err := transport.NewPublisher(interval, pipe.Smoother(), transports...)
		if err != nil {
			closeAll()
			return nil, err
		}
		pub.Start()
		publishers = append(publishers, pub)
	}

	if cfg.Transport.UDPEnabled {
		sender, err := udp.NewSender(cfg.Transport.UDPTargetAddress)
		if err != nil {
			closeAll()
			return nil, err
		}
		packet, err := udp.NewPacketTransport(sender)
		if err != nil {
			sender.Close()
			closeAll()
			return nil, err
		}
		pub, err := transport.NewPublisher(cfg.Transport.UDPSendInterval, pipe.Smoother(), packet)
		if err != nil {
			packet.Close()
			closeAll()
			return nil, err
		}
		pub.Start()
		publishers = append(publishers, pub)
	}

	return publishers, nil
}
