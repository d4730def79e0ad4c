// Package config handles pipeline configuration: defaults, an optional YAML
// file, and environment variable overrides, applied in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Bounds is the geographic region the Transform stage expects observations to
// fall inside. Observations outside it are reported, never rejected.
type Bounds struct {
	North float64 `yaml:"north"`
	South float64 `yaml:"south"`
	East  float64 `yaml:"east"`
	West  float64 `yaml:"west"`
}

// Config holds all pipeline settings.
type Config struct {
	InputPath      string `yaml:"input_path"`
	DBPath         string `yaml:"db_path"`
	SpatialitePath string `yaml:"spatialite_path"`

	BatchSize int `yaml:"batch_size"`
	PoolSize  int `yaml:"pool_size"`

	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`
	MetricsAddr string `yaml:"metrics_addr"`

	// MissingValues are the numeric sentinels that mean "not recorded".
	MissingValues []int `yaml:"missing_values"`
	// Basins is the allow-list of basin codes accepted at validation time.
	Basins []string `yaml:"basins"`
	// DefaultStormName replaces an empty header name. Setting it to ""
	// turns the policy into rejection.
	DefaultStormName string `yaml:"default_storm_name"`

	Bounds Bounds `yaml:"bounds"`
}

// Default returns the configuration with every field at its default. The
// bounding region covers the Atlantic basin.
func Default() *Config {
	return &Config{
		DBPath:           "hurdat2.db",
		SpatialitePath:   "mod_spatialite",
		BatchSize:        100,
		PoolSize:         5,
		LogLevel:         "info",
		LogFormat:        "json",
		MissingValues:    []int{-999, -99},
		Basins:           []string{"AL", "EP", "CP"},
		DefaultStormName: "UNNAMED",
		Bounds:           Bounds{North: 70, South: 0, East: 10, West: -110},
	}
}

// Load builds the configuration: defaults, then the YAML file at path (if
// non-empty), then environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field invariants.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return errors.New("DB_PATH is required")
	}
	if c.BatchSize <= 0 {
		return errors.New("invalid BATCH_SIZE: must be positive")
	}
	if c.PoolSize <= 0 {
		return errors.New("invalid POOL_SIZE: must be positive")
	}
	if len(c.MissingValues) == 0 {
		return errors.New("missing_values must not be empty")
	}
	if len(c.Basins) == 0 {
		return errors.New("basins must not be empty")
	}
	if c.Bounds.South >= c.Bounds.North {
		return fmt.Errorf("invalid bounds: south %v must be below north %v", c.Bounds.South, c.Bounds.North)
	}
	return nil
}

// MissingSet returns the sentinel values as a set for the parser.
func (c *Config) MissingSet() map[int]struct{} {
	set := make(map[int]struct{}, len(c.MissingValues))
	for _, v := range c.MissingValues {
		set[v] = struct{}{}
	}
	return set
}

func applyEnv(cfg *Config) error {
	cfg.InputPath = envOrDefault("INPUT_PATH", cfg.InputPath)
	cfg.DBPath = envOrDefault("DB_PATH", cfg.DBPath)
	cfg.SpatialitePath = envOrDefault("SPATIALITE_PATH", cfg.SpatialitePath)
	cfg.LogLevel = envOrDefault("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = envOrDefault("LOG_FORMAT", cfg.LogFormat)
	cfg.MetricsAddr = envOrDefault("METRICS_ADDR", cfg.MetricsAddr)

	if v, ok := os.LookupEnv("DEFAULT_STORM_NAME"); ok {
		cfg.DefaultStormName = v
	}
	if v := os.Getenv("BASINS"); v != "" {
		cfg.Basins = splitList(v)
	}

	var err error
	if cfg.BatchSize, err = envInt("BATCH_SIZE", cfg.BatchSize); err != nil {
		return err
	}
	if cfg.PoolSize, err = envInt("POOL_SIZE", cfg.PoolSize); err != nil {
		return err
	}
	return nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
