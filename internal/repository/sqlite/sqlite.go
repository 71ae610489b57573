// Package sqlite implements repository.Repository using SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"netwarden/internal/conflict"
	"netwarden/internal/repository"

	_ "modernc.org/sqlite"
)

// Repository stores scan history in a SQLite database.
type Repository struct {
	db *sql.DB
}

// New opens (or creates) the history database at dbPath.
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		scanned_at DATETIME NOT NULL,
		critical_count INTEGER NOT NULL DEFAULT 0,
		high_count INTEGER NOT NULL DEFAULT 0,
		warning_count INTEGER NOT NULL DEFAULT 0,
		payload JSON NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reports_scanned_at ON reports(scanned_at);
	`

	_, err := r.db.Exec(schema)
	return err
}

// SaveReport records a completed scan and returns the new row id.
func (r *Repository) SaveReport(ctx context.Context, scannedAt time.Time, report *conflict.Report) (int64, error) {
	payload, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal report: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO reports (scanned_at, critical_count, high_count, warning_count, payload)
		VALUES (?, ?, ?, ?, ?)
	`, scannedAt.UTC().Format(time.RFC3339Nano), report.CriticalCount(), report.HighCount(), report.WarningCount(), payload)
	if err != nil {
		return 0, fmt.Errorf("failed to insert report: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read insert id: %w", err)
	}

	return id, nil
}

// RecentReports returns up to limit entries, newest first.
func (r *Repository) RecentReports(ctx context.Context, limit int) ([]repository.HistoryEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, scanned_at, critical_count, high_count, warning_count, payload
		FROM reports
		ORDER BY scanned_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	var entries []repository.HistoryEntry
	for rows.Next() {
		var (
			entry   repository.HistoryEntry
			scanned string
			payload []byte
		)

		if err := rows.Scan(&entry.ID, &scanned, &entry.CriticalCount, &entry.HighCount, &entry.WarningCount, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan report row: %w", err)
		}

		when, err := time.Parse(time.RFC3339Nano, scanned)
		if err != nil {
			return nil, fmt.Errorf("failed to parse scan time %q: %w", scanned, err)
		}
		entry.ScannedAt = when

		report := &conflict.Report{}
		if err := json.Unmarshal(payload, report); err != nil {
			return nil, fmt.Errorf("failed to unmarshal report payload: %w", err)
		}
		entry.Report = report

		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// Prune deletes entries older than the cutoff.
func (r *Repository) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM reports WHERE scanned_at < ?
	`, olderThan.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("failed to prune reports: %w", err)
	}

	return res.RowsAffected()
}

// Close closes the underlying database.
func (r *Repository) Close() error {
	return r.db.Close()
}
