// SPDX-License-Identifier: MIT
package audio

import (
	"context"
	"math"
	"time"
)

// SineSource is a device-free Source producing a pure tone in real time.
// It paces itself to the sample rate so the pipeline behaves as it would
// against a live device; used for demos and testing without capture
// hardware.
type SineSource struct {
	frequency  float64
	sampleRate float64
	blockSize  int

	phase float64
	last  time.Time
}

// NewSineSource creates a sine source producing blocks of blockSize samples.
func NewSineSource(frequency, sampleRate float64, blockSize int) *SineSource {
	return &SineSource{
		frequency:  frequency,
		sampleRate: sampleRate,
		blockSize:  blockSize,
	}
}

// Pull fills dst with the next block of the tone, sleeping as needed to
// deliver samples at the configured rate.
func (s *SineSource) Pull(ctx context.Context, dst []float64) (int, error) {
	n := s.blockSize
	if n > len(dst) {
		n = len(dst)
	}

	blockDur := time.Duration(float64(n) / s.sampleRate * float64(time.Second))
	now := time.Now()
	if !s.last.IsZero() {
		if wait := blockDur - now.Sub(s.last); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return 0, ctx.Err()
			case <-timer.C:
			}
		}
	}
	s.last = time.Now()

	step := 2 * math.Pi * s.frequency / s.sampleRate
	for i := range n {
		dst[i] = 0.6 * math.Sin(s.phase)
		s.phase += step
	}
	// Keep the phase bounded.
	s.phase = math.Mod(s.phase, 2*math.Pi)

	return n, nil
}

// SampleRate returns the source's sample rate.
func (s *SineSource) SampleRate() float64 { return s.sampleRate }

// Close is a no-op.
func (s *SineSource) Close() error { return nil }

var _ Source = (*SineSource)(nil)
