// SPDX-License-Identifier: MIT
package render

import (
	"fmt"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Gradient interpolates bar colors between a bottom and a top keypoint in
// HCL space, which blends perceptually rather than through muddy RGB
// midpoints.
type Gradient struct {
	bottom colorful.Color
	top    colorful.Color
}

// NewGradient parses the two hex keypoints (e.g. "#25A065").
func NewGradient(bottomHex, topHex string) (Gradient, error) {
	bottom, err := colorful.Hex(bottomHex)
	if err != nil {
		return Gradient{}, fmt.Errorf("bad bottom color %q: %w", bottomHex, err)
	}
	top, err := colorful.Hex(topHex)
	if err != nil {
		return Gradient{}, fmt.Errorf("bad top color %q: %w", topHex, err)
	}
	return Gradient{bottom: bottom, top: top}, nil
}

// At returns the blended color for t in [0, 1]; t is clamped.
func (g Gradient) At(t float64) colorful.Color {
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return g.bottom.BlendHcl(g.top, t).Clamped()
}
