// SPDX-License-Identifier: MIT
package bar

import (
	"math"
	"sync"
	"time"
)

// snapEpsilon is the residual below which a decaying height snaps to its
// target, so constant input converges exactly instead of asymptotically.
const snapEpsilon = 1e-6

// silenceThreshold is the raw bar value below which an analysis cycle counts
// as silent.
const silenceThreshold = 1e-9

// Smoother holds the per-bar state shared between the analysis cadence and
// the render cadence. It is the only point where the two meet: Update is
// called by the pipeline on every analysis cycle, Snapshot by the render
// driver on every frame. Both run under one mutex, so a snapshot never
// observes a half-updated bar set.
//
// Rise is instantaneous so transients register on the very next frame; fall
// is an exponential approach toward the raw value, clamped so a bar never
// decays below it. Peaks hold above the bar and fall linearly at their own
// rate, giving the floating peak markers.
type Smoother struct {
	mu sync.Mutex

	decayRate    float64 // exponential fall constant, 1/s
	peakFallRate float64 // linear peak fall, units/s
	silenceLimit int     // consecutive silent cycles before Idle

	heights []float64
	peaks   []float64

	lastUpdate time.Time
	silent     int
	cycles     uint64
}

// NewSmoother creates a smoother for the given number of bars.
func NewSmoother(bars int, decayRate, peakFallRate float64, silenceLimit int) *Smoother {
	return &Smoother{
		decayRate:    decayRate,
		peakFallRate: peakFallRate,
		silenceLimit: silenceLimit,
		heights:      make([]float64, bars),
		peaks:        make([]float64, bars),
	}
}

// Bars returns the number of bars tracked.
func (s *Smoother) Bars() int { return len(s.heights) }

// Cycles returns the number of analysis cycles applied so far.
func (s *Smoother) Cycles() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cycles
}

// Update applies one raw bar set at the given time. len(raw) must match the
// bar count. Non-finite or negative raw values are treated as zero so
// arithmetic edge cases never reach the render path.
func (s *Smoother) Update(raw []float64, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var dt float64
	if !s.lastUpdate.IsZero() {
		dt = now.Sub(s.lastUpdate).Seconds()
		if dt < 0 {
			dt = 0
		}
	}
	s.lastUpdate = now
	s.cycles++

	// Fraction of the gap to the target closed this cycle.
	fall := 1 - math.Exp(-s.decayRate*dt)
	peakDrop := s.peakFallRate * dt

	loud := false
	for i := range s.heights {
		v := raw[i]
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			v = 0
		}
		if v > silenceThreshold {
			loud = true
		}

		h := s.heights[i]
		if v >= h {
			h = v // attack: snap up immediately
		} else {
			h += (v - h) * fall
			if h-v < snapEpsilon {
				h = v
			}
		}
		if h < 0 {
			h = 0
		}
		s.heights[i] = h

		p := s.peaks[i] - peakDrop
		if h > p {
			p = h
		}
		if p < 0 {
			p = 0
		}
		s.peaks[i] = p
	}

	if loud {
		s.silent = 0
	} else if s.silent <= s.silenceLimit {
		s.silent++
	}
}

// Snapshot copies the current bar heights and peaks into the given slices
// (either may be nil to skip) and reports whether the input has been silent
// long enough for the display to go idle. The copy is taken under the update
// lock, so it is internally consistent.
func (s *Smoother) Snapshot(heights, peaks []float64) (idle bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if heights != nil {
		copy(heights, s.heights)
	}
	if peaks != nil {
		copy(peaks, s.peaks)
	}
	return s.silenceLimit > 0 && s.silent > s.silenceLimit
}
