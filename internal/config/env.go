package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

// Environment holds the CLI defaults that can be set from the environment or a .env file.
// Command-line flags take precedence.
type Environment struct {
	LogLevel    string `env:"TAXENGINE_LOG_LEVEL" default:"info"`
	LogFormat   string `env:"TAXENGINE_LOG_FORMAT" default:"text"`
	Workers     int    `env:"TAXENGINE_WORKERS" default:"0"`
	MCTrials    int    `env:"TAXENGINE_MC_TRIALS" default:"500"`
	MCSeed      int64  `env:"TAXENGINE_MC_SEED" default:"0"`
	OutputDir   string `env:"TAXENGINE_OUTPUT_DIR"` // Empty prints reports to stdout
	MetricsFile string `env:"TAXENGINE_METRICS_FILE"`
}

// LoadEnvironment reads the given .env files, or ./.env when none are given, and then the
// process environment. Missing .env files are not an error.
func LoadEnvironment(files ...string) (*Environment, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}

	var cfg Environment
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}
	if err := validateEnvironment(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validateEnvironment(cfg *Environment) error {
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("TAXENGINE_LOG_LEVEL must be debug, info, warn or error, got %q", cfg.LogLevel)
	}
	switch cfg.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("TAXENGINE_LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}
	if cfg.Workers < 0 {
		return errors.New("TAXENGINE_WORKERS cannot be negative")
	}
	if cfg.MCTrials < 0 {
		return errors.New("TAXENGINE_MC_TRIALS cannot be negative")
	}
	return nil
}
