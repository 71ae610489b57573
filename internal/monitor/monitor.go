// Package monitor re-runs conflict detection when the engine reports
// topology changes, coalescing event bursts behind a debounce window.
package monitor

import (
	"context"
	"log"
	"time"

	"netwarden/internal/conflict"
	"netwarden/internal/topology"
)

// Event is a topology-relevant engine event.
type Event struct {
	Type   string
	Action string
	Name   string
}

// relevantEvents gates which engine events trigger a rescan.
var relevantEvents = map[[2]string]struct{}{
	{"container", "start"}:    {},
	{"container", "stop"}:     {},
	{"container", "die"}:      {},
	{"network", "connect"}:    {},
	{"network", "disconnect"}: {},
}

// Scanner produces topology snapshots.
type Scanner interface {
	Scan(ctx context.Context, includeDefault bool) (*topology.Topology, error)
}

// Source streams engine events until the context is cancelled.
type Source interface {
	Events(ctx context.Context) (<-chan Event, <-chan error)
}

// state is the watch loop's scan gate.
type state int

const (
	stateIdle state = iota
	statePending
	stateScanning
)

// Config controls monitor behavior.
type Config struct {
	// Debounce is how long to wait after an event before rescanning,
	// coalescing bursts of changes into one scan.
	Debounce time.Duration
	// InitialScan runs one scan before watching events.
	InitialScan bool
	// IncludeDefault includes the engine's default networks in scans.
	IncludeDefault bool
}

// DefaultConfig returns the default monitor configuration.
func DefaultConfig() Config {
	return Config{Debounce: 2 * time.Second, InitialScan: true}
}

// Monitor watches engine events and reruns detection after each settled
// burst of changes.
type Monitor struct {
	scanner  Scanner
	source   Source
	detector *conflict.Detector
	onReport func(*conflict.Report)
	cfg      Config

	// now and after are the clock; replaced in tests so debounce
	// behavior is exercised without sleeping.
	now   func() time.Time
	after func(time.Duration) <-chan time.Time

	state    state
	lastScan time.Time
}

// New creates a monitor. onReport is invoked after every completed scan.
func New(scanner Scanner, source Source, detector *conflict.Detector, cfg Config, onReport func(*conflict.Report)) *Monitor {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultConfig().Debounce
	}
	return &Monitor{
		scanner:  scanner,
		source:   source,
		detector: detector,
		onReport: onReport,
		cfg:      cfg,
		now:      time.Now,
		after:    func(d time.Duration) <-chan time.Time { return time.After(d) },
	}
}

// Run blocks, watching events until the context is cancelled.
func (m *Monitor) Run(ctx context.Context) error {
	if m.cfg.InitialScan {
		m.performScan(ctx)
	}

	events, errs := m.source.Events(ctx)

	var fire <-chan time.Time

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return nil
			}
			if _, relevant := relevantEvents[[2]string{event.Type, event.Action}]; !relevant {
				continue
			}
			log.Printf("%s:%s %s", event.Type, event.Action, event.Name)
			if m.state == stateIdle {
				m.state = statePending
				fire = m.after(m.cfg.Debounce)
			}

		case <-fire:
			fire = nil
			m.performScan(ctx)

		case err, ok := <-errs:
			if !ok {
				return nil
			}
			return err

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (m *Monitor) performScan(ctx context.Context) {
	m.state = stateScanning
	defer func() {
		m.lastScan = m.now()
		m.state = stateIdle
	}()

	topo, err := m.scanner.Scan(ctx, m.cfg.IncludeDefault)
	if err != nil {
		log.Printf("Scan error: %v", err)
		return
	}

	report := m.detector.Analyze(topo)
	if m.onReport != nil {
		m.onReport(report)
	}
}

// LastScan returns when the most recent scan completed.
func (m *Monitor) LastScan() time.Time {
	return m.lastScan
}
