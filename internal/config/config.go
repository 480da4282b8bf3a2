// Package config loads server configuration from an optional YAML file,
// with environment variable overrides for deployment knobs.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full server configuration
type Config struct {
	Addr            string `yaml:"addr"`
	BaseURL         string `yaml:"base_url"`
	DefaultInstance string `yaml:"default_instance"`

	Store StoreConfig `yaml:"store"`
	Round RoundConfig `yaml:"round"`

	PresenceTTLSeconds int `yaml:"presence_ttl_seconds"`
	LeaderboardSize    int `yaml:"leaderboard_size"`
}

// StoreConfig selects and configures the key-value backend
type StoreConfig struct {
	Backend string `yaml:"backend"` // "memory" or "sqlite"
	Path    string `yaml:"path"`    // sqlite database path
}

// RoundConfig holds the phase durations in seconds
type RoundConfig struct {
	WaitSeconds   int `yaml:"wait_seconds"`
	ActiveSeconds int `yaml:"active_seconds"`
	EndedSeconds  int `yaml:"ended_seconds"`
}

// Load reads the config at path, applying defaults and env overrides.
// An empty path yields the defaults.
func Load(path string) (Config, error) {
	cfg := defaults()
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("farmrush.yaml: %w", err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("farmrush.yaml: %w", err)
	}
	return cfg, nil
}

func defaults() Config {
	return Config{
		Addr:            ":8080",
		BaseURL:         "http://localhost:8080",
		DefaultInstance: "dev",
		Store: StoreConfig{
			Backend: "memory",
			Path:    "./data/farmrush.db",
		},
		Round: RoundConfig{
			WaitSeconds:   10,
			ActiveSeconds: 60,
			EndedSeconds:  10,
		},
		PresenceTTLSeconds: 5,
		LeaderboardSize:    10,
	}
}

// applyEnv overlays deployment overrides (set directly or via .env)
func (c *Config) applyEnv() {
	if v := os.Getenv("FARMRUSH_ADDR"); v != "" {
		c.Addr = v
	}
	if v := os.Getenv("FARMRUSH_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("FARMRUSH_STORE_BACKEND"); v != "" {
		c.Store.Backend = v
	}
	if v := os.Getenv("FARMRUSH_STORE_PATH"); v != "" {
		c.Store.Path = v
	}
	if v := os.Getenv("FARMRUSH_DEFAULT_INSTANCE"); v != "" {
		c.DefaultInstance = v
	}
}

// Validate rejects configurations the server cannot run with
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("addr must not be empty")
	}
	switch c.Store.Backend {
	case "memory":
	case "sqlite":
		if strings.TrimSpace(c.Store.Path) == "" {
			return fmt.Errorf("store.path required for sqlite backend")
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.Round.WaitSeconds <= 0 || c.Round.ActiveSeconds <= 0 || c.Round.EndedSeconds <= 0 {
		return fmt.Errorf("round durations must be positive")
	}
	if c.PresenceTTLSeconds <= 0 {
		return fmt.Errorf("presence_ttl_seconds must be positive")
	}
	if c.LeaderboardSize <= 0 {
		return fmt.Errorf("leaderboard_size must be positive")
	}
	return nil
}

// WaitDuration returns the WAITING phase length
func (c *Config) WaitDuration() time.Duration {
	return time.Duration(c.Round.WaitSeconds) * time.Second
}

// ActiveDuration returns the ACTIVE phase length
func (c *Config) ActiveDuration() time.Duration {
	return time.Duration(c.Round.ActiveSeconds) * time.Second
}

// EndedDuration returns the ENDED phase length
func (c *Config) EndedDuration() time.Duration {
	return time.Duration(c.Round.EndedSeconds) * time.Second
}

// PresenceTTL returns the presence entry time-to-live
func (c *Config) PresenceTTL() time.Duration {
	return time.Duration(c.PresenceTTLSeconds) * time.Second
}
