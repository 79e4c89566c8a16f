// SPDX-License-Identifier: MIT
package render

import (
	"image/color"
	"math"
	"testing"
)

// recordSurface records FillRect calls for geometry assertions.
type recordSurface struct {
	width, height int
	cleared       int
	rects         []rect
}

type rect struct {
	x, y, w, h int
}

func (s *recordSurface) Size() (int, int) { return s.width, s.height }
func (s *recordSurface) Clear()           { s.cleared++; s.rects = s.rects[:0] }
func (s *recordSurface) FillRect(x, y, w, h int, _ color.Color) {
	s.rects = append(s.rects, rect{x, y, w, h})
}

// fixedBars is a BarSource returning a fixed state.
type fixedBars struct {
	heights []float64
	peaks   []float64
	idle    bool
}

func (f *fixedBars) Bars() int { return len(f.heights) }
func (f *fixedBars) Snapshot(h, p []float64) bool {
	copy(h, f.heights)
	if p != nil && f.peaks != nil {
		copy(p, f.peaks)
	}
	return f.idle
}

func mustGradient(t *testing.T) Gradient {
	t.Helper()
	g, err := NewGradient("#25A065", "#F25D94")
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestDriverClampsArbitraryHeights(t *testing.T) {
	tests := []struct {
		name    string
		heights []float64
	}{
		{"zero", []float64{0, 0, 0, 0}},
		{"max", []float64{1, 1, 1, 1}},
		{"overrange", []float64{100, 2, 5, 1000}},
		{"mixed", []float64{0, 0.5, 1, 0.25}},
		{"nonfinite", []float64{math.Inf(1), 0.5, math.NaN(), 0.1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			surface := &recordSurface{width: 40, height: 20}
			bars := &fixedBars{heights: tt.heights, peaks: make([]float64, 4)}
			d := NewDriver(surface, bars, mustGradient(t), 1.0, 1, 30)

			d.RenderFrame()
			for _, r := range surface.rects {
				if r.h < 0 || r.h > 20 {
					t.Errorf("rect height %d outside [0, 20]", r.h)
				}
				if r.y < 0 || r.y+r.h > 20 {
					t.Errorf("rect [y=%d h=%d] outside surface", r.y, r.h)
				}
			}
		})
	}
}

func TestDriverBarsSpanSurfaceExactly(t *testing.T) {
	// Widths plus gaps must cover the surface width exactly, with the
	// remainder spread over the leading bars.
	tests := []struct {
		width, bars, gap int
	}{
		{80, 16, 1},
		{79, 16, 1},
		{64, 10, 2},
		{33, 7, 0},
	}

	for _, tt := range tests {
		heights := make([]float64, tt.bars)
		for i := range heights {
			heights[i] = 1 // full bars so every bar emits a rect
		}
		surface := &recordSurface{width: tt.width, height: 10}
		bars := &fixedBars{heights: heights, peaks: make([]float64, tt.bars)}
		d := NewDriver(surface, bars, mustGradient(t), 1.0, tt.gap, 30)

		d.RenderFrame()
		if len(surface.rects) != tt.bars {
			t.Fatalf("w=%d b=%d: expected %d rects, got %d",
				tt.width, tt.bars, tt.bars, len(surface.rects))
		}

		covered := 0
		prevEnd := 0
		for i, r := range surface.rects {
			if i > 0 && r.x != prevEnd+d.gap {
				t.Errorf("w=%d b=%d: bar %d starts at %d, expected %d",
					tt.width, tt.bars, i, r.x, prevEnd+d.gap)
			}
			covered += r.w
			prevEnd = r.x + r.w
		}
		want := tt.width - d.gap*(tt.bars-1)
		if covered != want {
			t.Errorf("w=%d b=%d gap=%d: bars cover %d cells, expected %d",
				tt.width, tt.bars, tt.gap, covered, want)
		}
	}
}

func TestDriverIdleSkipsDrawing(t *testing.T) {
	surface := &recordSurface{width: 40, height: 10}
	bars := &fixedBars{heights: []float64{0, 0}, idle: true}
	d := NewDriver(surface, bars, mustGradient(t), 1.0, 1, 30)

	if !d.RenderFrame() {
		t.Error("expected idle frame")
	}
	if surface.cleared != 0 || len(surface.rects) != 0 {
		t.Error("idle frame must leave the surface untouched")
	}
	if d.Frames() != 0 {
		t.Error("idle frames must not count as rendered")
	}
}

func TestDriverPeakMarkerAboveBar(t *testing.T) {
	surface := &recordSurface{width: 10, height: 20}
	bars := &fixedBars{
		heights: []float64{0.5},
		peaks:   []float64{0.9},
	}
	d := NewDriver(surface, bars, mustGradient(t), 1.0, 0, 30)

	d.RenderFrame()
	if len(surface.rects) != 2 {
		t.Fatalf("expected bar + peak rects, got %d", len(surface.rects))
	}
	barRect, peakRect := surface.rects[0], surface.rects[1]
	if peakRect.h != 1 {
		t.Errorf("peak marker height %d, expected 1", peakRect.h)
	}
	if peakRect.y >= barRect.y {
		t.Errorf("peak marker at y=%d should sit above bar top y=%d", peakRect.y, barRect.y)
	}
}

func TestDriverNarrowSurfaceDropsGaps(t *testing.T) {
	surface := &recordSurface{width: 8, height: 10}
	heights := []float64{1, 1, 1, 1, 1, 1, 1, 1}
	bars := &fixedBars{heights: heights, peaks: make([]float64, 8)}
	d := NewDriver(surface, bars, mustGradient(t), 1.0, 2, 30)

	d.RenderFrame()
	if len(surface.rects) != 8 {
		t.Fatalf("expected 8 rects on a narrow surface, got %d", len(surface.rects))
	}
	for i, r := range surface.rects {
		if r.w != 1 {
			t.Errorf("bar %d width %d, expected 1", i, r.w)
		}
	}
}

func TestDriverZeroSizeSurface(t *testing.T) {
	surface := &recordSurface{width: 0, height: 0}
	bars := &fixedBars{heights: []float64{0.5}}
	d := NewDriver(surface, bars, mustGradient(t), 1.0, 1, 30)

	// Must not panic or draw.
	if d.RenderFrame() {
		t.Error("zero-size surface is not idle")
	}
	if len(surface.rects) != 0 {
		t.Error("expected no rects on a zero-size surface")
	}
}

func TestGradientEndpoints(t *testing.T) {
	g := mustGradient(t)

	if g.At(0) != g.At(-5) {
		t.Error("underrange t must clamp to bottom color")
	}
	if g.At(1) != g.At(7) {
		t.Error("overrange t must clamp to top color")
	}
	if _, err := NewGradient("notacolor", "#ffffff"); err == nil {
		t.Error("expected error for invalid hex color")
	}
}

func BenchmarkRenderFrame(b *testing.B) {
	surface := &recordSurface{width: 120, height: 40}
	heights := make([]float64, 48)
	for i := range heights {
		heights[i] = float64(i) / 48
	}
	bars := &fixedBars{heights: heights, peaks: heights}
	g, _ := NewGradient("#25A065", "#F25D94")
	d := NewDriver(surface, bars, g, 1.0, 1, 30)

	b.ReportAllocs()
	for b.Loop() {
		d.RenderFrame()
	}
}
