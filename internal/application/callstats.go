// Package application contains use-case orchestration services.
package application

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rgdservices/opsboard/internal/domain/model"
	"github.com/rgdservices/opsboard/internal/domain/port/driven"
	"github.com/rgdservices/opsboard/internal/metrics"
)

const archiveTimeout = 5 * time.Second

// CallStatsService owns the current day's call counters. All access to the
// underlying DailyCallStats goes through Ingest and Snapshot under a single
// mutex, which is what preserves the missed <= total invariant under
// concurrent webhook deliveries.
//
// Ingest never reports failure to its caller: a webhook sender that sees an
// error will retry, and a retry storm over a body we cannot parse helps
// nobody. Malformed payloads are logged and counted, nothing more.
type CallStatsService struct {
	mu      sync.Mutex
	stats   model.DailyCallStats
	archive driven.StatsArchive
	logger  *slog.Logger

	// now is swappable so tests can move the calendar date.
	now func() time.Time
}

// NewCallStatsService creates the aggregator anchored to today's date.
// archive may be nil, in which case finished days are discarded at rollover.
func NewCallStatsService(archive driven.StatsArchive, logger *slog.Logger) *CallStatsService {
	return NewCallStatsServiceWithClock(archive, logger, time.Now)
}

// NewCallStatsServiceWithClock creates the aggregator with an injected clock.
// This constructor is intended for testing calendar-date behavior.
func NewCallStatsServiceWithClock(archive driven.StatsArchive, logger *slog.Logger, now func() time.Time) *CallStatsService {
	s := &CallStatsService{
		archive: archive,
		logger:  logger,
		now:     now,
	}
	s.stats = model.NewDailyCallStats(s.today())
	return s
}

// Ingest folds one raw webhook delivery into the day's counters.
//
// Only incoming calls are counted. A ringing event increments the total and
// records the call as active; a completed event classifies the call as
// missed or answered. A completed event with no matching ringing (webhook
// registered mid-call) still counts the call so nothing is silently dropped;
// if the ringing event later arrives out of order the call is double
// counted, a known edge this system accepts.
func (s *CallStatsService) Ingest(raw []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rollover()

	ev, err := parseCallEvent(raw)
	if err != nil {
		metrics.WebhookMalformedTotal.Inc()
		s.logger.Warn("dropping unparseable webhook payload", "error", err)
		return
	}
	metrics.WebhookEventsTotal.WithLabelValues(string(ev.Kind)).Inc()

	if ev.Direction != model.DirectionIncoming {
		return
	}

	switch ev.Kind {
	case model.CallEventRinging:
		s.recordRinging(ev)
	case model.CallEventCompleted:
		s.recordCompleted(ev)
	}
}

// Snapshot returns a read-only view of the current day. It applies the
// rollover check but never mutates counters.
func (s *CallStatsService) Snapshot() model.CallStatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rollover()

	var lastUpdated *string
	if s.stats.LastUpdated != nil {
		v := s.stats.LastUpdated.UTC().Format(time.RFC3339)
		lastUpdated = &v
	}

	return model.CallStatsSnapshot{
		TotalCalls:  s.stats.TotalCalls,
		MissedCalls: s.stats.MissedCalls,
		LastUpdated: lastUpdated,
		LastReset:   s.stats.LastReset,
		RecentCalls: slices.Clone(s.stats.Recent),
		ActiveCalls: len(s.stats.ActiveCalls),
	}
}

func (s *CallStatsService) recordRinging(ev model.CallEvent) {
	id := ev.CallID
	if id == "" {
		// Some payload shapes omit the call id; synthesize one so the
		// active-call gauge still tracks the call.
		id = uuid.NewString()
	}

	s.stats.TotalCalls++
	s.stats.ActiveCalls[id] = model.ActiveCall{
		CallID:    id,
		From:      ev.From,
		StartedAt: s.now(),
	}
	s.touch()
	metrics.ActiveCalls.Set(float64(len(s.stats.ActiveCalls)))

	s.logger.Info("incoming call ringing", "call_id", id, "total", s.stats.TotalCalls)
}

func (s *CallStatsService) recordCompleted(ev model.CallEvent) {
	id := ev.CallID
	from := ev.From

	active, tracked := s.stats.ActiveCalls[id]
	if tracked {
		delete(s.stats.ActiveCalls, id)
		if from == "" {
			from = active.From
		}
	} else {
		// Ringing was never observed for this call. Count it now rather
		// than dropping it; see the doc comment on Ingest.
		s.stats.TotalCalls++
		if id == "" {
			id = uuid.NewString()
		}
	}

	missed := ev.Missed()
	if missed {
		s.stats.MissedCalls++
	}

	var duration float64
	if ev.Duration != nil {
		duration = *ev.Duration
	}
	s.pushRecent(model.RecentCall{
		CallID:      id,
		From:        from,
		CompletedAt: s.now().UTC().Format(time.RFC3339),
		Missed:      missed,
		Duration:    duration,
	})
	s.touch()
	metrics.ActiveCalls.Set(float64(len(s.stats.ActiveCalls)))

	s.logger.Info("incoming call completed",
		"call_id", id,
		"missed", missed,
		"total", s.stats.TotalCalls,
		"missed_total", s.stats.MissedCalls,
	)
}

// pushRecent prepends a record to the bounded history, evicting the oldest
// beyond model.RecentCallLimit.
func (s *CallStatsService) pushRecent(rec model.RecentCall) {
	s.stats.Recent = append([]model.RecentCall{rec}, s.stats.Recent...)
	if len(s.stats.Recent) > model.RecentCallLimit {
		s.stats.Recent = s.stats.Recent[:model.RecentCallLimit]
	}
}

// rollover resets the counters the first time any operation observes a new
// calendar date. Staleness is detected lazily; there is no background timer.
// Callers must hold s.mu.
func (s *CallStatsService) rollover() {
	today := s.today()
	if s.stats.LastReset == today {
		return
	}

	if s.archive != nil {
		ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
		defer cancel()
		day := model.DailyArchive{
			Date:        s.stats.LastReset,
			TotalCalls:  s.stats.TotalCalls,
			MissedCalls: s.stats.MissedCalls,
		}
		if err := s.archive.Archive(ctx, day); err != nil {
			// Archiving is best effort; the reset must happen regardless.
			s.logger.Error("archiving finished day failed", "date", day.Date, "error", err)
		}
	}

	s.logger.Info("daily call stats reset",
		"previous_date", s.stats.LastReset,
		"previous_total", s.stats.TotalCalls,
		"previous_missed", s.stats.MissedCalls,
		"date", today,
	)
	s.stats = model.NewDailyCallStats(today)
	metrics.ActiveCalls.Set(0)
}

func (s *CallStatsService) touch() {
	t := s.now()
	s.stats.LastUpdated = &t
}

func (s *CallStatsService) today() string {
	return s.now().Format("2006-01-02")
}
