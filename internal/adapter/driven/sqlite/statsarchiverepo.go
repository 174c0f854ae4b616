package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/rgdservices/opsboard/internal/domain/model"
	"github.com/rgdservices/opsboard/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.StatsArchive = (*StatsArchiveRepo)(nil)

// StatsArchiveRepo is the SQLite implementation of the StatsArchive port.
type StatsArchiveRepo struct {
	db *DB
}

// NewStatsArchiveRepo creates a new StatsArchiveRepo backed by the given DB.
func NewStatsArchiveRepo(db *DB) *StatsArchiveRepo {
	return &StatsArchiveRepo{db: db}
}

// Archive stores or replaces the totals for day.Date. Idempotent: a repeated
// rollover for the same date overwrites the row.
func (r *StatsArchiveRepo) Archive(ctx context.Context, day model.DailyArchive) error {
	const query = `
		INSERT INTO call_stats_days (date, total_calls, missed_calls, archived_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (date) DO UPDATE SET
			total_calls = excluded.total_calls,
			missed_calls = excluded.missed_calls,
			archived_at = excluded.archived_at`

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := r.db.Writer.ExecContext(ctx, query, day.Date, day.TotalCalls, day.MissedCalls, now); err != nil {
		return fmt.Errorf("archive day %s: %w", day.Date, err)
	}
	return nil
}

// ListRecent returns up to limit archived days, newest first.
func (r *StatsArchiveRepo) ListRecent(ctx context.Context, limit int) ([]model.DailyArchive, error) {
	const query = `SELECT date, total_calls, missed_calls FROM call_stats_days ORDER BY date DESC LIMIT ?`

	rows, err := r.db.Reader.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list archived days: %w", err)
	}
	defer rows.Close()

	var result []model.DailyArchive
	for rows.Next() {
		var day model.DailyArchive
		if err := rows.Scan(&day.Date, &day.TotalCalls, &day.MissedCalls); err != nil {
			return nil, fmt.Errorf("scan archived day: %w", err)
		}
		result = append(result, day)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate archived days: %w", err)
	}
	return result, nil
}
