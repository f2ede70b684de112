package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"tz/pkg/rle"
)

// Config represents the tz configuration.
type Config struct {
	// Workers is the parallelism degree of the codec. 0 picks half the CPUs.
	Workers int `yaml:"workers"`
	// Threshold is the input size at which the codec switches to the worker pool.
	Threshold int `yaml:"threshold"`
	// MinChunk is the smallest chunk handed to a worker.
	MinChunk int     `yaml:"min_chunk"`
	Archive  Archive `yaml:"archive"`
	Logging  Logging `yaml:"logging"`
	Metrics  Metrics `yaml:"metrics"`
}

// Archive contains directory archive settings
type Archive struct {
	// Strict makes malformed archive entries an error instead of skipping them.
	Strict bool `yaml:"strict"`
}

// Logging contains logging configuration
type Logging struct {
	Level string `yaml:"level"`
}

// Metrics contains metrics configuration
type Metrics struct {
	// File, if set, receives the metrics in Prometheus text format when a command finishes.
	File string `yaml:"file"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Workers:   0,
		Threshold: rle.DefaultThreshold,
		MinChunk:  rle.DefaultMinChunk,
		Logging: Logging{
			Level: "warn",
		},
	}
}

// LoadConfig loads configuration from the specified path. Fields missing from
// the file keep their default values.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}

	return config, nil
}

// SaveConfig saves the configuration to the specified path
func SaveConfig(config *Config, configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks that the values are usable.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	}
	if c.Threshold < 0 {
		return fmt.Errorf("threshold must be >= 0, got %d", c.Threshold)
	}
	if c.MinChunk < 0 {
		return fmt.Errorf("min_chunk must be >= 0, got %d", c.MinChunk)
	}
	if _, err := ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	return nil
}

// SchedulerOptions returns the codec options described by the config.
func (c *Config) SchedulerOptions() rle.Options {
	return rle.Options{
		Workers:   c.Workers,
		Threshold: c.Threshold,
		MinChunk:  c.MinChunk,
	}
}

// ParseLevel converts a level name to a slog.Level. An empty name is "warn".
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "", "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", name)
}

// GetDefaultConfigPath returns the default configuration path for the current platform
func GetDefaultConfigPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "./tz.yaml"
	}
	return filepath.Join(configDir, "tz", "config.yaml")
}

// ConfigExists checks if a configuration file exists
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}
