// SPDX-License-Identifier: MIT
package dsp

import (
	"fmt"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"

	"spectrum/pkg/bitint"
)

// Analyzer turns a frame of time-domain samples into a magnitude spectrum.
// All buffers are pre-allocated at construction; Analyze performs no
// allocations.
//
// Magnitude semantics: bin k corresponds to frequency k*sampleRate/fftSize.
// Magnitudes are amplitude-normalized: a full-scale sine landing exactly on
// bin k produces a magnitude close to its amplitude there (|FFT[k]|*2/N for
// k >= 1, |FFT[0]|/N for DC). This normalization is what the bar mapper and
// the smoother downstream are calibrated against.
type Analyzer struct {
	fftSize    int
	sampleRate float64

	fft    *fourier.FFT
	window []float64

	input     []float64    // windowed, zero-padded input frame
	coeffs    []complex128 // N/2+1 complex coefficients from gonum
	magnitude []float64    // N/2 output magnitudes
}

// NewAnalyzer creates an analyzer for frames of fftSize samples at the given
// sample rate. fftSize must be a power of two; the window is resolved by
// name (Hann, Hamming, Blackman).
func NewAnalyzer(fftSize int, sampleRate float64, windowName string) (*Analyzer, error) {
	if !bitint.IsPowerOfTwo(fftSize) || fftSize < 2 {
		return nil, fmt.Errorf("fft size must be a power of two >= 2, got %d", fftSize)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %g", sampleRate)
	}
	windowFn, err := WindowByName(windowName)
	if err != nil {
		return nil, err
	}

	return &Analyzer{
		fftSize:    fftSize,
		sampleRate: sampleRate,
		fft:        fourier.NewFFT(fftSize),
		window:     windowFn(fftSize),
		input:      make([]float64, fftSize),
		coeffs:     make([]complex128, fftSize/2+1),
		magnitude:  make([]float64, fftSize/2),
	}, nil
}

// FFTSize returns the analysis frame length.
func (a *Analyzer) FFTSize() int { return a.fftSize }

// SampleRate returns the sample rate the analyzer was built for.
func (a *Analyzer) SampleRate() float64 { return a.sampleRate }

// BinCount returns the number of magnitude bins produced per frame.
func (a *Analyzer) BinCount() int { return len(a.magnitude) }

// FreqForBin returns the center frequency in Hz of bin i.
func (a *Analyzer) FreqForBin(i int) float64 {
	if i < 0 || i >= len(a.magnitude) {
		return 0
	}
	return float64(i) * a.sampleRate / float64(a.fftSize)
}

// Analyze windows the frame, runs the FFT and returns the magnitude
// spectrum. Frames shorter than the FFT size are zero-padded at the tail so
// the pipeline produces output immediately after startup. The returned slice
// is owned by the analyzer and overwritten on the next call.
func (a *Analyzer) Analyze(frame []float64) []float64 {
	for i := range a.fftSize {
		if i < len(frame) {
			a.input[i] = frame[i] * a.window[i]
		} else {
			a.input[i] = 0
		}
	}

	a.fft.Coefficients(a.coeffs, a.input)

	scale := 2 / float64(a.fftSize)
	a.magnitude[0] = cmplx.Abs(a.coeffs[0]) / float64(a.fftSize)
	for i := 1; i < len(a.magnitude); i++ {
		a.magnitude[i] = cmplx.Abs(a.coeffs[i]) * scale
	}
	return a.magnitude
}
