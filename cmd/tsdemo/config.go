package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const dateLayout = "2006-01-02"

// Config is the demo configuration read from a YAML file. Command line flags
// override the values it holds.
type Config struct {
	Listen   string         `yaml:"listen"`
	LogLevel string         `yaml:"logLevel"`
	Source   SourceConfig   `yaml:"source"`
	Provider ProviderConfig `yaml:"provider"`
}

// SourceConfig selects the records that the serve command provides.
type SourceConfig struct {
	// DB is the path of a SQLite points database. Synthetic records are served
	// if empty.
	DB     string `yaml:"db"`
	Series string `yaml:"series"`
	// Gaps lists days, as YYYY-MM-DD, left out of the synthetic records.
	Gaps []string `yaml:"gaps"`
	// Seed stores synthetic records into DB before serving, when DB is set.
	Seed *SeedConfig `yaml:"seed"`
}

// SeedConfig describes daily records written into a new database.
type SeedConfig struct {
	Start string `yaml:"start"`
	Days  int    `yaml:"days"`
}

// ProviderConfig configures the provider of the fetch command.
type ProviderConfig struct {
	TimeUnit         time.Duration `yaml:"timeUnit"`
	RequestTimeout   time.Duration `yaml:"requestTimeout"`
	ExpandMultiplier float64       `yaml:"expandMultiplier"`
	ClearMultiplier  float64       `yaml:"clearMultiplier"`
}

func defaultConfig() Config {
	return Config{
		Listen:   "127.0.0.1:8080",
		LogLevel: "info",
		Source: SourceConfig{
			Series: "default",
		},
		Provider: ProviderConfig{
			TimeUnit:         24 * time.Hour,
			RequestTimeout:   30 * time.Second,
			ExpandMultiplier: 4,
			ClearMultiplier:  12,
		},
	}
}

// loadConfig reads the YAML file at path over the default configuration. An
// empty path gives the default configuration.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err = cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Provider.TimeUnit <= 0 {
		return errors.New("provider time unit must be positive")
	}
	if c.Provider.RequestTimeout <= 0 {
		return errors.New("provider request timeout must be positive")
	}
	if _, err := c.Source.gapDays(); err != nil {
		return err
	}
	if c.Source.Seed != nil {
		if _, err := time.Parse(dateLayout, c.Source.Seed.Start); err != nil {
			return fmt.Errorf("invalid seed start: %w", err)
		}
		if c.Source.Seed.Days <= 0 {
			return errors.New("seed days must be positive")
		}
	}
	return nil
}

// gapDays returns the configured gap days as UTC midnight times.
func (s SourceConfig) gapDays() ([]time.Time, error) {
	days := make([]time.Time, 0, len(s.Gaps))
	for i, g := range s.Gaps {
		t, err := time.Parse(dateLayout, g)
		if err != nil {
			return nil, fmt.Errorf("gap %d: %w", i, err)
		}
		days = append(days, t)
	}
	return days, nil
}
