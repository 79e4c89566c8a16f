// SPDX-License-Identifier: MIT
/*
Package pipeline wires the analysis path together: a Source feeding a ring
buffer, the windowed FFT, the bin-to-bar mapper and the smoother. One
pipeline instance owns all of that state explicitly, so multiple pipelines
can coexist and tests can run against synthetic sources without device I/O.

The run loop is the capture/analysis cadence: it blocks on Pull, pushes the
block through the ring and FFT, and publishes smoothed bar heights. The
render side runs on its own clock and meets this loop only at the smoother.
*/
package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"spectrum/internal/audio"
	"spectrum/internal/bar"
	"spectrum/internal/config"
	"spectrum/internal/dsp"
	applog "spectrum/internal/log"
)

// Reconnect backoff bounds. The delay doubles from initial to cap and stays
// there; reconnection is only abandoned on shutdown, since "no device" is a
// normal state while nothing is playing.
const (
	initialBackoff = 250 * time.Millisecond
	maxBackoff     = 4 * time.Second
)

// Pipeline owns the capture-to-bars analysis path.
type Pipeline struct {
	source   audio.Source
	recorder *audio.Recorder // optional, may be nil

	ring     *dsp.Ring
	analyzer *dsp.Analyzer
	mapper   *bar.Mapper
	smoother *bar.Smoother

	// Pre-allocated run loop buffers.
	block []float64
	frame []float64
	bars  []float64

	// Backoff bounds, overridable in tests.
	backoffInitial time.Duration
	backoffMax     time.Duration

	wg sync.WaitGroup
}

// New builds a pipeline from a validated configuration and a sample source.
// recorder may be nil. The ring holds four analysis windows so a burst of
// capture blocks never tears the window being read.
func New(cfg *config.Config, source audio.Source, recorder *audio.Recorder) (*Pipeline, error) {
	analyzer, err := dsp.NewAnalyzer(cfg.Analysis.FFTSize, source.SampleRate(), cfg.Analysis.Window)
	if err != nil {
		return nil, err
	}

	aggregate, err := bar.ParseAggregate(cfg.Analysis.Aggregate)
	if err != nil {
		return nil, err
	}
	mapper, err := bar.NewMapper(analyzer.BinCount(), cfg.Analysis.Bars, cfg.Analysis.Curve, aggregate)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		source:   source,
		recorder: recorder,
		ring:     dsp.NewRing(4 * cfg.Analysis.FFTSize),
		analyzer: analyzer,
		mapper:   mapper,
		smoother: bar.NewSmoother(cfg.Analysis.Bars, cfg.Analysis.DecayRate,
			cfg.Analysis.PeakFallRate, cfg.Analysis.SilenceFrames),
		block:          make([]float64, cfg.Audio.FramesPerBuffer),
		frame:          make([]float64, cfg.Analysis.FFTSize),
		bars:           make([]float64, cfg.Analysis.Bars),
		backoffInitial: initialBackoff,
		backoffMax:     maxBackoff,
	}, nil
}

// Smoother returns the shared bar state the render driver reads from.
func (p *Pipeline) Smoother() *bar.Smoother { return p.smoother }

// Start launches the capture/analysis loop. It returns immediately; the
// loop stops when ctx is cancelled.
func (p *Pipeline) Start(ctx context.Context) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.run(ctx)
	}()
}

// Wait blocks until the run loop has exited.
func (p *Pipeline) Wait() {
	p.wg.Wait()
}

func (p *Pipeline) run(ctx context.Context) {
	for {
		n, err := p.source.Pull(ctx, p.block)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			if errors.Is(err, audio.ErrDevice) {
				applog.Warnf("pipeline: %v, attempting reconnect", err)
				if !p.reconnect(ctx) {
					return
				}
				continue
			}
			applog.Errorf("pipeline: pull failed: %v", err)
			continue
		}
		if n == 0 {
			continue
		}

		block := p.block[:n]
		p.ring.Write(block)

		if p.recorder != nil {
			if err := p.recorder.Write(block); err != nil {
				applog.Errorf("pipeline: recording write failed: %v", err)
				p.recorder = nil // stop teeing, keep visualizing
			}
		}

		p.ring.ReadLatest(p.frame)
		magnitudes := p.analyzer.Analyze(p.frame)
		p.mapper.Map(magnitudes, p.bars)
		p.smoother.Update(p.bars, time.Now())
	}
}

// reconnect retries the source with doubling backoff until it recovers or
// ctx is cancelled. Returns false only on shutdown. While it waits, the
// render side keeps drawing the last published bar state.
func (p *Pipeline) reconnect(ctx context.Context) bool {
	rc, ok := p.source.(audio.Reconnector)
	if !ok {
		applog.Errorf("pipeline: source cannot reconnect, analysis stopped")
		return false
	}

	backoff := p.backoffInitial
	for attempt := 1; ; attempt++ {
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return false
		case <-timer.C:
		}

		if err := rc.Reconnect(); err != nil {
			applog.Debugf("pipeline: reconnect attempt %d failed: %v", attempt, err)
			backoff *= 2
			if backoff > p.backoffMax {
				backoff = p.backoffMax
			}
			continue
		}

		applog.Infof("pipeline: device reconnected after %d attempt(s)", attempt)
		return true
	}
}
