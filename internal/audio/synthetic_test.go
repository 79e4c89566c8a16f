// SPDX-License-Identifier: MIT
package audio

import (
	"context"
	"testing"
	"time"

	"spectrum/pkg/utils"
)

func TestSineSourceFillsBlocks(t *testing.T) {
	src := NewSineSource(440, 44100, 512)
	defer src.Close()

	dst := make([]float64, 512)
	n, err := src.Pull(context.Background(), dst)
	if err != nil {
		t.Fatalf("Pull: %v", err)
	}
	if n != 512 {
		t.Fatalf("expected 512 samples, got %d", n)
	}
	for i, v := range dst[:n] {
		if v < -1 || v > 1 {
			t.Fatalf("sample %d out of range: %v", i, v)
		}
	}
}

func TestSineSourcePhaseContinuity(t *testing.T) {
	src := NewSineSource(1000, 44100, 256)
	defer src.Close()

	// Concatenate two pulls and compare against a single generated tone.
	// A phase break between blocks would show up as a mismatch.
	got := make([]float64, 512)
	if _, err := src.Pull(context.Background(), got[:256]); err != nil {
		t.Fatal(err)
	}
	if _, err := src.Pull(context.Background(), got[256:]); err != nil {
		t.Fatal(err)
	}

	want := utils.GenerateSineWave(512, 44100, 1000)
	for i := range got {
		// Amplitudes differ (0.6 vs 0.9); compare zero crossings by sign.
		if (got[i] > 1e-9) != (want[i] > 1e-9) && (got[i] < -1e-9) != (want[i] < -1e-9) {
			t.Fatalf("sample %d: sign mismatch got=%v want=%v", i, got[i], want[i])
		}
	}
}

func TestSineSourceHonorsContext(t *testing.T) {
	src := NewSineSource(440, 44100, 4096)
	defer src.Close()

	dst := make([]float64, 4096)
	// First pull is unpaced; the second waits for a block duration.
	if _, err := src.Pull(context.Background(), dst); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	_, err := src.Pull(ctx, dst)
	if err == nil {
		t.Fatal("expected context error")
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("cancelled Pull took %s, expected prompt return", elapsed)
	}
}
