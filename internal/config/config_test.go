package config

import (
	"errors"
	"strings"
	"testing"

	"github.com/RenatoCabral2022/tonegrid/internal/wave"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "SAMPLE_RATE", "BITS_PER_SAMPLE", "NUM_CHANNELS", "STORE_PATH", "MAX_RENDER_SECONDS"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.Port != "8080" {
		t.Errorf("expected port 8080, got %s", cfg.Port)
	}
	if f := cfg.Format(); f != (wave.Format{BitsPerSample: 8, NumChannels: 1, SampleRate: 44100}) {
		t.Errorf("unexpected default format %+v", f)
	}
	if cfg.StorePath != "" {
		t.Errorf("expected memory store by default, got %q", cfg.StorePath)
	}
	if cfg.MaxRenderSeconds != 120 {
		t.Errorf("expected 120s render cap, got %v", cfg.MaxRenderSeconds)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SAMPLE_RATE", "8000")
	t.Setenv("BITS_PER_SAMPLE", "16")
	t.Setenv("NUM_CHANNELS", "2")
	t.Setenv("MAX_RENDER_SECONDS", "2.5")

	cfg := Load()
	if cfg.SampleRate != 8000 || cfg.BitsPerSample != 16 || cfg.NumChannels != 2 {
		t.Errorf("unexpected format %+v", cfg.Format())
	}
	if cfg.MaxRenderSeconds != 2.5 {
		t.Errorf("expected 2.5, got %v", cfg.MaxRenderSeconds)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}

func TestLoadRejectsUnparseableValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"BITS_PER_SAMPLE", "sixteen"},
		{"SAMPLE_RATE", "-"},
		{"RENDER_CONCURRENCY", "not-a-number"},
		{"MAX_RENDER_SECONDS", "2m"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			err := Load().Validate()
			if !errors.Is(err, ErrInvalidValue) {
				t.Fatalf("expected ErrInvalidValue, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.key) {
				t.Errorf("error should name %s: %v", tt.key, err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	cfg := Load()
	cfg.BitsPerSample = 24
	if err := cfg.Validate(); !errors.Is(err, wave.ErrInvalidConfig) {
		t.Errorf("expected wave.ErrInvalidConfig, got %v", err)
	}

	cfg = Load()
	cfg.RenderConcurrency = 0
	cfg.GridSteps = -1
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero concurrency and negative grid")
	}
}
