// Package alert delivers conflict notifications through a configured
// backend (generic webhook, ntfy, or Gotify).
package alert

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"netwarden/internal/conflict"
)

// Priority levels accepted by every backend.
const (
	PriorityLow     = "low"
	PriorityDefault = "default"
	PriorityHigh    = "high"
	PriorityUrgent  = "urgent"
)

// Backend delivers one notification. Implementations are selected once
// at startup from configuration.
type Backend interface {
	Send(ctx context.Context, title, message, priority string) error
}

// httpClient is shared by all backends.
var httpClient = &http.Client{Timeout: 10 * time.Second}

// Settings selects and configures a backend.
type Settings struct {
	Type  string // webhook, ntfy, gotify
	URL   string
	Token string // gotify only
}

// NewBackend builds the backend described by the settings, or nil when
// no URL is configured.
func NewBackend(s Settings) (Backend, error) {
	if s.URL == "" {
		return nil, nil
	}
	switch strings.ToLower(s.Type) {
	case "", "webhook":
		return &WebhookBackend{url: s.URL}, nil
	case "ntfy":
		return &NtfyBackend{url: strings.TrimRight(s.URL, "/")}, nil
	case "gotify":
		return &GotifyBackend{url: strings.TrimRight(s.URL, "/"), token: s.Token}, nil
	default:
		return nil, fmt.Errorf("unknown alert backend type %q", s.Type)
	}
}

// Dispatcher formats reports and hands them to the backend.
type Dispatcher struct {
	backend Backend
}

// NewDispatcher wraps a backend; backend may be nil (alerting disabled).
func NewDispatcher(backend Backend) *Dispatcher {
	return &Dispatcher{backend: backend}
}

// IsConfigured reports whether a backend is set.
func (d *Dispatcher) IsConfigured() bool {
	return d.backend != nil
}

// SendReport sends a summary of the report's findings. It is a no-op
// when no backend is configured or the report is clean.
func (d *Dispatcher) SendReport(ctx context.Context, report *conflict.Report) error {
	if d.backend == nil || !report.HasConflicts() {
		return nil
	}

	lines := []string{fmt.Sprintf("Found %d conflict(s):", len(report.Conflicts))}
	if n := report.CriticalCount(); n > 0 {
		lines = append(lines, fmt.Sprintf("  - %d CRITICAL", n))
	}
	if n := report.HighCount(); n > 0 {
		lines = append(lines, fmt.Sprintf("  - %d HIGH", n))
	}
	if n := report.WarningCount(); n > 0 {
		lines = append(lines, fmt.Sprintf("  - %d WARNING", n))
	}

	lines = append(lines, "", "Top issues:")
	for i, c := range report.Conflicts {
		if i == 5 {
			break
		}
		lines = append(lines, fmt.Sprintf("  [%s] %s on %s", c.Severity, c.DNSName, c.Network))
	}

	priority := PriorityDefault
	switch {
	case report.CriticalCount() > 0:
		priority = PriorityUrgent
	case report.HighCount() > 0:
		priority = PriorityHigh
	}

	return d.backend.Send(ctx, "Docker Network Conflicts Detected", strings.Join(lines, "\n"), priority)
}

// SendTest sends a test notification to verify configuration.
func (d *Dispatcher) SendTest(ctx context.Context) error {
	if d.backend == nil {
		return fmt.Errorf("no alert backend configured")
	}
	return d.backend.Send(ctx, "Docker Network Monitor Test",
		"This is a test alert from netwarden.", PriorityLow)
}
