// SPDX-License-Identifier: MIT
package render

import (
	"context"
	"sync/atomic"
	"time"
)

// Driver renders the bar graph at a fixed frame rate. It reads the smoothed
// bar state through BarSource.Snapshot; if the analysis side has produced
// nothing new (or nothing at all), the previous state simply gets drawn
// again. Rendering degrades gracefully under audio underrun, it never waits.
type Driver struct {
	surface  Surface
	bars     BarSource
	gradient Gradient

	scale float64 // magnitude fraction of full height per unit value
	gap   int     // cells between bars

	interval time.Duration
	frames   atomic.Uint64

	heights []float64
	peaks   []float64
}

// NewDriver creates a driver rendering bars at frameRate frames per second.
func NewDriver(surface Surface, bars BarSource, gradient Gradient, scale float64, gap, frameRate int) *Driver {
	if frameRate < 1 {
		frameRate = 1
	}
	return &Driver{
		surface:  surface,
		bars:     bars,
		gradient: gradient,
		scale:    scale,
		gap:      gap,
		interval: time.Second / time.Duration(frameRate),
		heights:  make([]float64, bars.Bars()),
		peaks:    make([]float64, bars.Bars()),
	}
}

// Interval returns the time between frames.
func (d *Driver) Interval() time.Duration { return d.interval }

// Frames returns the number of frames rendered so far.
func (d *Driver) Frames() uint64 { return d.frames.Load() }

// Run renders frames on a fixed ticker until ctx is cancelled. The TUI
// front-end drives frames through its own tick messages instead and calls
// RenderFrame directly.
func (d *Driver) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.RenderFrame()
		}
	}
}

// RenderFrame draws one frame from the current bar state and reports
// whether the display is idle (sustained silence). On idle frames the
// surface is left untouched.
func (d *Driver) RenderFrame() (idle bool) {
	if d.bars.Snapshot(d.heights, d.peaks) {
		return true
	}

	width, height := d.surface.Size()
	n := len(d.heights)
	if width <= 0 || height <= 0 || n == 0 {
		return false
	}

	gap := d.gap
	avail := width - gap*(n-1)
	if avail < n {
		// Too narrow for gaps: drop them before dropping bars.
		gap = 0
		avail = width
	}
	barWidth := avail / n
	if barWidth < 1 {
		barWidth = 1
	}
	// Spread the leftover cells over the leading bars so the graph spans
	// the surface exactly.
	mark := avail - barWidth*n
	if mark < 0 {
		mark = 0
	}

	d.surface.Clear()

	x := 0
	for i := range n {
		w := barWidth
		if i < mark {
			w++
		}

		frac := clampFrac(d.heights[i] * d.scale)
		barH := int(frac * float64(height))
		if barH > height {
			barH = height
		}

		if barH > 0 {
			d.surface.FillRect(x, height-barH, w, barH, d.gradient.At(frac))
		}

		pfrac := clampFrac(d.peaks[i] * d.scale)
		peakH := int(pfrac * float64(height))
		if peakH > barH && peakH > 0 {
			d.surface.FillRect(x, height-peakH, w, 1, d.gradient.At(pfrac))
		}

		x += w + gap
	}

	d.frames.Add(1)
	return false
}

// clampFrac clamps a height fraction to [0, 1]. NaN maps to 0 so corrupt
// state can never produce a negative or oversized rectangle.
func clampFrac(f float64) float64 {
	if f > 1 {
		return 1
	}
	if f >= 0 {
		return f
	}
	return 0
}
