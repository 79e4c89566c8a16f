// SPDX-License-Identifier: MIT
package dsp

import (
	"fmt"
	"math"
	"strings"
)

// WindowFunc computes the coefficients of an analysis window of length n.
type WindowFunc func(n int) []float64

// Hann returns the Hann window, the default analysis window. It tapers the
// frame to zero at both ends to reduce spectral leakage.
func Hann(n int) []float64 {
	w := make([]float64, n)
	for i := range n {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}
	return w
}

// Hamming returns the Hamming window.
func Hamming(n int) []float64 {
	w := make([]float64, n)
	for i := range n {
		w[i] = 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/float64(n-1))
	}
	return w
}

// Blackman returns the Blackman window.
func Blackman(n int) []float64 {
	w := make([]float64, n)
	for i := range n {
		x := 2 * math.Pi * float64(i) / float64(n-1)
		w[i] = 0.42 - 0.5*math.Cos(x) + 0.08*math.Cos(2*x)
	}
	return w
}

// WindowByName resolves a window function from its configured name
// (case-insensitive).
func WindowByName(name string) (WindowFunc, error) {
	switch strings.ToLower(name) {
	case "hann", "hanning", "":
		return Hann, nil
	case "hamming":
		return Hamming, nil
	case "blackman":
		return Blackman, nil
	default:
		return nil, fmt.Errorf("unknown window function %q", name)
	}
}
