// Package config loads daemon configuration from an optional YAML file with
// environment-variable overrides. Environment always wins over the file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the bookkeepd runtime configuration.
type Config struct {
	Addr string     `yaml:"addr"`
	Book BookConfig `yaml:"book"`
	Log  LogConfig  `yaml:"log"`
	// ReminderHorizonDays is the pending-reminder lookahead window.
	ReminderHorizonDays int `yaml:"reminder_horizon_days"`
}

type BookConfig struct {
	// Path to the book file. Empty runs an in-memory book.
	Path            string `yaml:"path"`
	Password        string `yaml:"password"`
	DefaultCurrency string `yaml:"default_currency"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func defaults() Config {
	return Config{
		Addr:                ":8080",
		Book:                BookConfig{DefaultCurrency: "USD"},
		Log:                 LogConfig{Level: "info", Format: "json"},
		ReminderHorizonDays: 15,
	}
}

// Load reads the YAML file at path when it exists, then applies environment
// overrides. A missing file is not an error; a malformed one is.
func Load(path string) (Config, error) {
	cfg := defaults()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return Config{}, fmt.Errorf("read config %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("BOOKKEEP_ADDR")); v != "" {
		cfg.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv("BOOKKEEP_BOOK_PATH")); v != "" {
		cfg.Book.Path = v
	}
	if v := os.Getenv("BOOKKEEP_BOOK_PASSWORD"); v != "" {
		cfg.Book.Password = v
	}
	if v := strings.TrimSpace(os.Getenv("BOOKKEEP_DEFAULT_CURRENCY")); v != "" {
		cfg.Book.DefaultCurrency = v
	}
	if v := strings.TrimSpace(os.Getenv("LOG_LEVEL")); v != "" {
		cfg.Log.Level = v
	}
	if v := strings.TrimSpace(os.Getenv("LOG_FORMAT")); v != "" {
		cfg.Log.Format = v
	}
	if v := strings.TrimSpace(os.Getenv("BOOKKEEP_REMINDER_HORIZON_DAYS")); v != "" {
		if days, err := strconv.Atoi(v); err == nil && days > 0 {
			cfg.ReminderHorizonDays = days
		}
	}
}

// ReminderHorizon returns the lookahead window as a duration.
func (c Config) ReminderHorizon() time.Duration {
	return time.Duration(c.ReminderHorizonDays) * 24 * time.Hour
}
