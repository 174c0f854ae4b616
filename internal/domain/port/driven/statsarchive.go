package driven

import (
	"context"

	"github.com/rgdservices/opsboard/internal/domain/model"
)

// StatsArchive defines the driven port for finished-day call totals. The
// aggregator writes one row per calendar day at rollover; the history
// endpoint reads them back for trend display. Same-day state never touches
// the archive.
type StatsArchive interface {
	// Archive stores or replaces the totals for day.Date.
	Archive(ctx context.Context, day model.DailyArchive) error

	// ListRecent returns up to limit archived days, newest first.
	ListRecent(ctx context.Context, limit int) ([]model.DailyArchive, error)
}
