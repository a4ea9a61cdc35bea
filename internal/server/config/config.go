// Package config handles configuration for the sync server: defaults, an
// optional JSON file, OFFLINEFEED_SERVER_* environment variables and flags,
// applied in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// Config holds runtime settings for the sync server.
//
// An empty DatabaseDSN keeps received entries in memory. An empty SecretKey
// disables device token checks.
type Config struct {
	HTTPAddr    string `env:"HTTP_ADDR"`
	GRPCAddr    string `env:"GRPC_ADDR"`
	DatabaseDSN string `env:"DATABASE_DSN"`
	SecretKey   string `env:"SECRET_KEY"`
	LogLevel    string `env:"LOG_LEVEL"`
	LogBackend  string `env:"LOG_BACKEND"`
}

func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":8080"
	c.GRPCAddr = ":50051"
	c.DatabaseDSN = ""
	c.SecretKey = ""
	c.LogLevel = "info"
	c.LogBackend = "slog"
}

func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.HTTPAddr) == "" {
		errs = append(errs, errors.New("http address is required"))
	}
	switch c.LogBackend {
	case "slog", "zap":
	default:
		errs = append(errs, fmt.Errorf("unknown log backend %q", c.LogBackend))
	}
	return errors.Join(errs...)
}

// Load builds a Config from defaults, the JSON file named by -c/-config,
// the environment and finally flags. args excludes the program name.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJSON(cfg, args); err != nil {
		return nil, fmt.Errorf("config file: %w", err)
	}
	if err := parseEnv(cfg); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, fmt.Errorf("flags: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig is Load over os.Args. It panics on error.
func LoadConfig() *Config {
	cfg, err := Load(os.Args[1:])
	if err != nil {
		panic(err)
	}
	return cfg
}
