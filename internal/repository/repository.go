// Package repository defines the data access interface for scan history.
//
// The actual implementation is in the sqlite subpackage, which stores
// each conflict report as a row with summary counts plus the full JSON
// payload for replay in the dashboard.
package repository

import (
	"context"
	"time"

	"netwarden/internal/conflict"
)

// HistoryEntry is one persisted scan result.
type HistoryEntry struct {
	ID            int64            `json:"id"`
	ScannedAt     time.Time        `json:"scanned_at"`
	CriticalCount int              `json:"critical_count"`
	HighCount     int              `json:"high_count"`
	WarningCount  int              `json:"warning_count"`
	Report        *conflict.Report `json:"report"`
}

// Repository persists and retrieves conflict reports.
type Repository interface {
	// SaveReport records a completed scan.
	SaveReport(ctx context.Context, scannedAt time.Time, report *conflict.Report) (int64, error)

	// RecentReports returns up to limit entries, newest first.
	RecentReports(ctx context.Context, limit int) ([]HistoryEntry, error)

	// Prune deletes entries older than the cutoff and returns the
	// number removed.
	Prune(ctx context.Context, olderThan time.Time) (int64, error)

	// Close releases resources.
	Close() error
}
