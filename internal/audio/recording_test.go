// SPDX-License-Identifier: MIT
package audio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"

	"spectrum/pkg/utils"
)

func TestRecorderWritesValidWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.wav")

	rec, err := NewRecorder(path, 44100, 16)
	if err != nil {
		t.Fatalf("NewRecorder: %v", err)
	}

	block := utils.GenerateSineWave(4410, 44100, 440)
	for range 10 {
		if err := rec.Write(block); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open recording: %v", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	dec.ReadInfo()
	if !dec.IsValidFile() {
		t.Fatal("recorder produced an invalid WAV file")
	}
	if dec.SampleRate != 44100 {
		t.Errorf("expected 44100 Hz, got %d", dec.SampleRate)
	}
	if dec.NumChans != 1 {
		t.Errorf("expected mono, got %d channels", dec.NumChans)
	}
	if dec.BitDepth != 16 {
		t.Errorf("expected 16-bit, got %d", dec.BitDepth)
	}

	dur, err := dec.Duration()
	if err != nil {
		t.Fatalf("Duration: %v", err)
	}
	// 10 blocks of 0.1s each.
	if secs := dur.Seconds(); secs < 0.9 || secs > 1.1 {
		t.Errorf("expected ~1s of audio, got %.2fs", secs)
	}
}

func TestRecorderClipsOutOfRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.wav")
	rec, err := NewRecorder(path, 44100, 16)
	if err != nil {
		t.Fatal(err)
	}

	if err := rec.Write([]float64{2.0, -3.0, 0.5}); err != nil {
		t.Fatalf("Write with out-of-range samples: %v", err)
	}
	if err := rec.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestRecorderRejectsBadBitDepth(t *testing.T) {
	if _, err := NewRecorder(filepath.Join(t.TempDir(), "x.wav"), 44100, 8); err == nil {
		t.Error("expected error for 8-bit depth")
	}
}

func TestRecorderWriteAfterClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "closed.wav")
	rec, err := NewRecorder(path, 44100, 16)
	if err != nil {
		t.Fatal(err)
	}
	if err := rec.Close(); err != nil {
		t.Fatal(err)
	}
	if err := rec.Write([]float64{0}); err == nil {
		t.Error("expected error writing after close")
	}
	// Double close is a no-op.
	if err := rec.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}
