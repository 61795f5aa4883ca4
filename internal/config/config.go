// Package config loads the evaluation configuration from the environment.
// Defaults reproduce the reference phase-window configuration.
package config

import (
	"math"
	"os"
	"strconv"

	"phasewin/domain/core"
)

// Config is the complete application configuration.
type Config struct {
	Model    ModelConfig
	Sim      SimConfig
	Scan     ScanConfig
	Data     DataConfig
	Database DatabaseConfig
	Server   ServerConfig
}

// ModelConfig holds the timing-model parameters.
type ModelConfig struct {
	Anchor float64 // anchor time A, years
	Ratio  float64 // scaling ratio, golden ratio by default
	Phases int     // number of phase windows K
	W0     float64 // base half-width, years
	G      float64 // half-width growth factor
}

// SimConfig holds Monte Carlo sizing. The two baselines must use distinct
// seeds so their null distributions stay independent.
type SimConfig struct {
	MaxAge      float64
	Iterations  int
	Ages        int // ages drawn per random-age trial
	SeedAges    int64
	SeedWindows int64
	Workers     int // <= 0 selects GOMAXPROCS
}

// ScanConfig holds ratio-scan bounds.
type ScanConfig struct {
	RMin   float64
	RMax   float64
	Points int
}

// DataConfig holds data-source settings.
type DataConfig struct {
	AgesFile string
}

// DatabaseConfig holds optional result persistence settings.
type DatabaseConfig struct {
	URL string // empty disables persistence
}

// ServerConfig holds API server settings.
type ServerConfig struct {
	Port string
}

// Load reads configuration from environment variables and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		Model: ModelConfig{
			Anchor: getEnvFloat("MODEL_ANCHOR", 6),
			Ratio:  getEnvFloat("MODEL_RATIO", math.Phi),
			Phases: getEnvInt("MODEL_PHASES", 5),
			W0:     getEnvFloat("MODEL_W0", 3),
			G:      getEnvFloat("MODEL_G", 1.5),
		},
		Sim: SimConfig{
			MaxAge:      getEnvFloat("SIM_MAX_AGE", 90),
			Iterations:  getEnvInt("SIM_ITERATIONS", 20000),
			Ages:        getEnvInt("SIM_AGES", 16),
			SeedAges:    getEnvInt64("SIM_SEED_AGES", 12345),
			SeedWindows: getEnvInt64("SIM_SEED_WINDOWS", 12346),
			Workers:     getEnvInt("SIM_WORKERS", 0),
		},
		Scan: ScanConfig{
			RMin:   getEnvFloat("SCAN_R_MIN", 1.4),
			RMax:   getEnvFloat("SCAN_R_MAX", 1.9),
			Points: getEnvInt("SCAN_POINTS", 51),
		},
		Data: DataConfig{
			AgesFile: getEnvOrDefault("AGES_FILE", "data/transition_ages.csv"),
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8090"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every parameter range before any pipeline work begins.
func (c *Config) Validate() error {
	if c.Model.Phases < 1 {
		return core.ErrInvalidPhases
	}
	if c.Model.Anchor <= 0 {
		return core.ErrInvalidAnchor
	}
	if c.Model.Ratio <= 0 {
		return core.NewValidationError("MODEL_RATIO", "must be positive")
	}
	if c.Model.W0 < 0 || c.Model.G < 0 {
		return core.ErrInvalidWidth
	}
	if c.Sim.MaxAge <= 0 {
		return core.ErrInvalidMaxAge
	}
	if c.Sim.Iterations <= 0 {
		return core.ErrInvalidIterates
	}
	if c.Sim.Ages <= 0 {
		return core.NewValidationError("SIM_AGES", "must be positive")
	}
	if c.Sim.SeedAges == c.Sim.SeedWindows {
		return core.ErrSeedCollision
	}
	if c.Scan.Points < 1 {
		return core.NewValidationError("SCAN_POINTS", "must be positive")
	}
	if c.Scan.RMin > c.Scan.RMax {
		return core.NewValidationError("SCAN_R_MIN", "must not exceed SCAN_R_MAX")
	}
	if c.Scan.Points == 1 && c.Scan.RMin != c.Scan.RMax {
		return core.NewValidationError("SCAN_POINTS", "a single point requires equal bounds")
	}
	return nil
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
