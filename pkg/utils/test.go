// SPDX-License-Identifier: MIT
//
// Package utils holds shared test helpers: synthetic signal generators and
// spectrum inspection utilities used across package tests.
package utils

import "math"

// GenerateSineWave returns size samples of a pure sine at the given frequency,
// normalized to [-0.9, 0.9].
func GenerateSineWave(size int, sampleRate, frequency float64) []float64 {
	buffer := make([]float64, size)
	for i := range buffer {
		t := float64(i) / sampleRate
		buffer[i] = math.Sin(2*math.Pi*frequency*t) * 0.9
	}
	return buffer
}

// GenerateComplexWave returns a 440Hz fundamental plus two harmonics,
// useful for exercising analysis paths with non-trivial spectra.
func GenerateComplexWave(size int, sampleRate float64) []float64 {
	buffer := make([]float64, size)
	for i := range buffer {
		tm := float64(i) / sampleRate
		buffer[i] = math.Sin(2*math.Pi*440*tm)*0.5 +
			math.Sin(2*math.Pi*880*tm)*0.3 +
			math.Sin(2*math.Pi*1320*tm)*0.2
	}
	return buffer
}

// FindPeakBin returns the index of the largest magnitude in [startBin, endBin].
func FindPeakBin(magnitudes []float64, startBin, endBin int) int {
	if len(magnitudes) == 0 {
		return 0
	}
	if startBin < 0 {
		startBin = 0
	}
	if endBin >= len(magnitudes) {
		endBin = len(magnitudes) - 1
	}

	peakBin := startBin
	peakValue := magnitudes[startBin]
	for bin := startBin + 1; bin <= endBin; bin++ {
		if magnitudes[bin] > peakValue {
			peakValue = magnitudes[bin]
			peakBin = bin
		}
	}
	return peakBin
}

// MockTransport implements the transport interface for testing. It records
// every payload handed to Send instead of transmitting.
type MockTransport struct {
	Payloads []any
}

// Send stores the data for later inspection.
func (m *MockTransport) Send(data any) error {
	m.Payloads = append(m.Payloads, data)
	return nil
}

// Close is a no-op.
func (m *MockTransport) Close() error { return nil }
