package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/RenatoCabral2022/tonegrid/internal/wave"
)

// ErrInvalidValue is reported by Validate for an environment variable that
// is set but cannot be parsed.
var ErrInvalidValue = errors.New("invalid config value")

type Config struct {
	Port              string
	SampleRate        int
	BitsPerSample     int
	NumChannels       int
	StorePath         string // empty keeps compositions in memory
	CacheEntries      int
	RenderConcurrency int
	MaxRenderSeconds  float64
	GridSteps         int
	APIKey            string

	parseErrs []error
}

// Load reads the environment. Unset variables take their defaults; values
// that fail to parse are kept as defaults and reported by Validate.
func Load() *Config {
	c := &Config{
		Port:      getEnv("PORT", "8080"),
		StorePath: getEnv("STORE_PATH", ""),
		APIKey:    getEnv("API_KEY", ""),
	}
	c.SampleRate = c.getEnvInt("SAMPLE_RATE", 44100)
	c.BitsPerSample = c.getEnvInt("BITS_PER_SAMPLE", 8)
	c.NumChannels = c.getEnvInt("NUM_CHANNELS", 1)
	c.CacheEntries = c.getEnvInt("CACHE_ENTRIES", 256)
	c.RenderConcurrency = c.getEnvInt("RENDER_CONCURRENCY", 4)
	c.MaxRenderSeconds = c.getEnvFloat("MAX_RENDER_SECONDS", 120)
	c.GridSteps = c.getEnvInt("GRID_STEPS", 100)
	return c
}

// Format returns the wave format renders are produced in.
func (c *Config) Format() wave.Format {
	return wave.Format{
		BitsPerSample: c.BitsPerSample,
		NumChannels:   c.NumChannels,
		SampleRate:    c.SampleRate,
	}
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	errs := append([]error(nil), c.parseErrs...)
	if err := c.Format().Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.CacheEntries < 0 {
		errs = append(errs, fmt.Errorf("CACHE_ENTRIES must not be negative, got %d", c.CacheEntries))
	}
	if c.RenderConcurrency <= 0 {
		errs = append(errs, fmt.Errorf("RENDER_CONCURRENCY must be positive, got %d", c.RenderConcurrency))
	}
	if c.MaxRenderSeconds <= 0 {
		errs = append(errs, fmt.Errorf("MAX_RENDER_SECONDS must be positive, got %v", c.MaxRenderSeconds))
	}
	if c.GridSteps <= 0 {
		errs = append(errs, fmt.Errorf("GRID_STEPS must be positive, got %d", c.GridSteps))
	}
	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func (c *Config) getEnvInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		c.parseErrs = append(c.parseErrs, fmt.Errorf("%s=%q: %w", key, raw, ErrInvalidValue))
		return fallback
	}
	return v
}

func (c *Config) getEnvFloat(key string, fallback float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		c.parseErrs = append(c.parseErrs, fmt.Errorf("%s=%q: %w", key, raw, ErrInvalidValue))
		return fallback
	}
	return v
}
