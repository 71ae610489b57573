package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	Scan     ScanConfig     `yaml:"scan"`
	Monitor  MonitorConfig  `yaml:"monitor"`
	Web      WebConfig      `yaml:"web"`
	Alerts   AlertConfig    `yaml:"alerts"`
	Database DatabaseConfig `yaml:"database"`
}

// ScanConfig controls topology scanning and detection.
type ScanConfig struct {
	// IncludeDefault includes the engine's bridge/host/none networks.
	IncludeDefault bool `yaml:"include_default"`
	// WarnGenericNames enables generic-name warnings; nil means on.
	WarnGenericNames *bool `yaml:"warn_generic_names,omitempty"`
}

// WarnGeneric returns the effective generic-name setting.
func (s ScanConfig) WarnGeneric() bool {
	if s.WarnGenericNames == nil {
		return true
	}
	return *s.WarnGenericNames
}

// MonitorConfig controls the event watch loop.
type MonitorConfig struct {
	Debounce    *Duration `yaml:"debounce,omitempty"`
	InitialScan *bool     `yaml:"initial_scan,omitempty"`
}

// EffectiveDebounce returns the debounce window to use.
func (m MonitorConfig) EffectiveDebounce() time.Duration {
	if m.Debounce == nil {
		return 2 * time.Second
	}
	return m.Debounce.Duration()
}

// RunInitialScan returns whether to scan once before watching.
func (m MonitorConfig) RunInitialScan() bool {
	if m.InitialScan == nil {
		return true
	}
	return *m.InitialScan
}

// WebConfig controls the dashboard server.
type WebConfig struct {
	Addr string      `yaml:"addr"`
	Auth *AuthConfig `yaml:"auth,omitempty"`
}

// AuthConfig enables basic auth on the dashboard. PasswordHash is a
// bcrypt hash, never a cleartext password.
type AuthConfig struct {
	Username     string `yaml:"username"`
	PasswordHash string `yaml:"password_hash"`
}

// AlertConfig selects and configures the alert backend.
type AlertConfig struct {
	Type  string `yaml:"type,omitempty"` // webhook, ntfy, gotify
	URL   string `yaml:"url,omitempty"`
	Token string `yaml:"token,omitempty"` // gotify only
}

// DatabaseConfig holds scan-history database settings.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// Duration wraps time.Duration for human-readable YAML ("2s", "500ms").
type Duration time.Duration

// Duration returns the wrapped value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// UnmarshalYAML parses a duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML emits the duration string form.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}
