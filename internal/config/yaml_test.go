// SPDX-License-Identifier: MIT
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "spectrum.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

func TestLoad_EmptyPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
	if cfg == nil {
		t.Fatal("expected default config, got nil")
	}
	if cfg.Analysis.FFTSize != DefaultFFTSize {
		t.Errorf("expected default fft size %d, got %d", DefaultFFTSize, cfg.Analysis.FFTSize)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	cfg, err := Load("nonexistent.yaml")
	if err == nil {
		t.Error("expected error for missing file, got nil")
	}
	if cfg != nil {
		t.Errorf("expected nil config on error, got %+v", cfg)
	}
}

func TestLoad_UnmarshalError(t *testing.T) {
	path := writeTempConfig(t, ":\n:bad")
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "failed to parse config file") {
		t.Error("expected unmarshal error, got nil or wrong error")
	}
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeTempConfig(t, `
analysis:
  fft_size: 1024
  bars: 32
display:
  frame_rate: 60
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Analysis.FFTSize != 1024 {
		t.Errorf("expected fft_size 1024, got %d", cfg.Analysis.FFTSize)
	}
	if cfg.Analysis.Bars != 32 {
		t.Errorf("expected bars 32, got %d", cfg.Analysis.Bars)
	}
	if cfg.Display.FrameRate != 60 {
		t.Errorf("expected frame_rate 60, got %d", cfg.Display.FrameRate)
	}
	// Untouched sections keep defaults.
	if cfg.Audio.SampleRate != DefaultSampleRate {
		t.Errorf("expected default sample rate, got %.0f", cfg.Audio.SampleRate)
	}
}

func TestLoad_InvalidConfigFailsFast(t *testing.T) {
	path := writeTempConfig(t, `
analysis:
  fft_size: 1000
`)
	_, err := Load(path)
	if !errors.Is(err, ErrConfiguration) {
		t.Errorf("expected ErrConfiguration for non-power-of-two fft size, got %v", err)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("SPECTRUM_UDP_TARGET_ADDRESS", "10.0.0.1:7000")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Transport.UDPTargetAddress != "10.0.0.1:7000" {
		t.Errorf("expected env override to apply, got %q", cfg.Transport.UDPTargetAddress)
	}
}

func TestValidate_BarsExceedBins(t *testing.T) {
	cfg := NewConfig()
	cfg.Analysis.FFTSize = 256
	cfg.Analysis.Bars = 200 // more bars than the 128 available bins

	err := cfg.Validate()
	if !errors.Is(err, ErrConfiguration) {
		t.Errorf("expected ErrConfiguration when bars exceed bins, got %v", err)
	}
}

func TestValidate_EnumFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad source", func(c *Config) { c.Audio.Source = "file" }},
		{"bad curve", func(c *Config) { c.Analysis.Curve = "exponential" }},
		{"bad aggregate", func(c *Config) { c.Analysis.Aggregate = "mean" }},
		{"zero decay", func(c *Config) { c.Analysis.DecayRate = 0 }},
		{"bad frame rate", func(c *Config) { c.Display.FrameRate = 0 }},
		{"bad bit depth", func(c *Config) { c.Recording.Enabled = true; c.Recording.BitDepth = 8 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrConfiguration) {
				t.Errorf("expected ErrConfiguration, got %v", err)
			}
		})
	}
}
