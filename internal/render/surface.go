// SPDX-License-Identifier: MIT
/*
Package render draws the bar graph. The Driver runs on its own fixed-rate
clock, pulls the latest smoothed bar state and issues filled rectangles
against a Surface; it never blocks on the analysis side. The cell surface
renders those rectangles as colored block characters for the terminal.
*/
package render

import "image/color"

// Surface is the 2D drawing target the driver renders to: a width/height
// extent, a clear operation and filled rectangles. Nothing else is needed to
// draw bars.
type Surface interface {
	// Size returns the current drawable extent in cells or pixels.
	Size() (width, height int)

	// Clear resets the surface to its background.
	Clear()

	// FillRect fills the rectangle at (x, y) with the given extent. The
	// origin is the top-left corner; implementations clip out-of-bounds
	// rectangles.
	FillRect(x, y, width, height int, c color.Color)
}

// BarSource provides the smoothed bar state the driver renders. Implemented
// by the pipeline's smoother.
type BarSource interface {
	// Bars returns the number of bars.
	Bars() int

	// Snapshot copies current heights and peaks into the given slices and
	// reports whether the input has been silent long enough to idle the
	// display.
	Snapshot(heights, peaks []float64) bool
}
