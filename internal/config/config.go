// Package config provides configuration management for netwarden.
//
// Config file locations (priority order):
//  1. $NETWARDEN_CONFIG
//  2. ./netwarden.yaml
//  3. ~/.config/netwarden/config.yaml
//  4. /etc/netwarden/config.yaml
//
// Alert settings can also come from the environment
// (NETWARDEN_ALERT_URL, NETWARDEN_ALERT_TYPE, NETWARDEN_GOTIFY_TOKEN),
// which takes precedence over the file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load finds and loads the config file, or returns defaults if none found.
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		cfg := DefaultConfig()
		cfg.applyEnv()
		return cfg, "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path.
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	cfg.applyEnv()

	return &cfg, path, nil
}

// Save writes config to the specified path.
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns sensible defaults for a new installation.
func DefaultConfig() *Config {
	return &Config{
		Web:      WebConfig{Addr: ":8080"},
		Database: DatabaseConfig{Path: "./netwarden.db"},
	}
}

// applyDefaults fills in missing values with defaults.
func (c *Config) applyDefaults() {
	if c.Web.Addr == "" {
		c.Web.Addr = ":8080"
	}
	if c.Database.Path == "" {
		c.Database.Path = "./netwarden.db"
	}
}

// applyEnv overrides alert settings from the environment.
func (c *Config) applyEnv() {
	if url := os.Getenv("NETWARDEN_ALERT_URL"); url != "" {
		c.Alerts.URL = url
	}
	if kind := os.Getenv("NETWARDEN_ALERT_TYPE"); kind != "" {
		c.Alerts.Type = kind
	}
	if token := os.Getenv("NETWARDEN_GOTIFY_TOKEN"); token != "" {
		c.Alerts.Token = token
	}
}
