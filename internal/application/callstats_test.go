package application_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgdservices/opsboard/internal/application"
	"github.com/rgdservices/opsboard/internal/domain/model"
)

// fakeClock is a swappable wall clock for exercising calendar-date behavior.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advanceDays(days int) {
	c.t = c.t.AddDate(0, 0, days)
}

// fakeArchive records Archive calls and can be told to fail.
type fakeArchive struct {
	days    []model.DailyArchive
	failing bool
}

func (a *fakeArchive) Archive(_ context.Context, day model.DailyArchive) error {
	if a.failing {
		return errors.New("disk full")
	}
	a.days = append(a.days, day)
	return nil
}

func (a *fakeArchive) ListRecent(_ context.Context, limit int) ([]model.DailyArchive, error) {
	if limit > len(a.days) {
		limit = len(a.days)
	}
	return a.days[:limit], nil
}

func newTestService(t *testing.T) (*application.CallStatsService, *fakeClock, *fakeArchive) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)}
	archive := &fakeArchive{}
	svc := application.NewCallStatsServiceWithClock(archive, slog.Default(), clock.now)
	return svc, clock, archive
}

func TestIngest_RingingThenMissedCompletion(t *testing.T) {
	svc, _, _ := newTestService(t)

	svc.Ingest([]byte(`{"type":"call.ringing","data":{"direction":"incoming","id":"c1"}}`))

	snap := svc.Snapshot()
	assert.Equal(t, 1, snap.TotalCalls)
	assert.Equal(t, 0, snap.MissedCalls)
	assert.Equal(t, 1, snap.ActiveCalls)

	svc.Ingest([]byte(`{"type":"call.completed","data":{"id":"c1","direction":"incoming","answeredAt":null}}`))

	snap = svc.Snapshot()
	assert.Equal(t, 1, snap.TotalCalls)
	assert.Equal(t, 1, snap.MissedCalls)
	assert.Equal(t, 0, snap.ActiveCalls)
	require.Len(t, snap.RecentCalls, 1)
	assert.True(t, snap.RecentCalls[0].Missed)
	assert.Equal(t, "c1", snap.RecentCalls[0].CallID)
}

func TestIngest_RingingThenAnsweredCompletion(t *testing.T) {
	svc, _, _ := newTestService(t)

	svc.Ingest([]byte(`{"type":"call.ringing","data":{"direction":"incoming","id":"c1","from":"+15551234567"}}`))
	svc.Ingest([]byte(`{"type":"call.completed","data":{"id":"c1","direction":"incoming","answeredAt":"2026-08-31T09:01:00Z","duration":142}}`))

	snap := svc.Snapshot()
	assert.Equal(t, 1, snap.TotalCalls)
	assert.Equal(t, 0, snap.MissedCalls)
	require.Len(t, snap.RecentCalls, 1)
	assert.False(t, snap.RecentCalls[0].Missed)
	assert.Equal(t, float64(142), snap.RecentCalls[0].Duration)
	// Caller metadata carried over from the ringing event.
	assert.Equal(t, "+15551234567", snap.RecentCalls[0].From)
}

func TestIngest_OutgoingCallsIgnored(t *testing.T) {
	svc, _, _ := newTestService(t)

	svc.Ingest([]byte(`{"type":"call.ringing","data":{"direction":"outgoing","id":"c1"}}`))
	svc.Ingest([]byte(`{"type":"call.completed","data":{"direction":"outbound","id":"c1","answeredAt":null}}`))

	snap := svc.Snapshot()
	assert.Equal(t, 0, snap.TotalCalls)
	assert.Equal(t, 0, snap.MissedCalls)
	assert.Equal(t, 0, snap.ActiveCalls)
	assert.Empty(t, snap.RecentCalls)
}

func TestIngest_UntrackedCompletionCountsCall(t *testing.T) {
	// Webhook registered mid-call: no ringing was observed, but the call
	// must still be counted.
	svc, _, _ := newTestService(t)

	svc.Ingest([]byte(`{"type":"call.completed","data":{"id":"c9","direction":"incoming","duration":0}}`))

	snap := svc.Snapshot()
	assert.Equal(t, 1, snap.TotalCalls)
	assert.Equal(t, 1, snap.MissedCalls)
}

func TestIngest_UnknownEventKindIgnored(t *testing.T) {
	svc, _, _ := newTestService(t)

	svc.Ingest([]byte(`{"type":"call.recording.completed","data":{"direction":"incoming","id":"c1"}}`))
	svc.Ingest([]byte(`{"type":"message.received","data":{"direction":"incoming","id":"m1"}}`))

	snap := svc.Snapshot()
	assert.Equal(t, 0, snap.TotalCalls)
	assert.Equal(t, 0, snap.MissedCalls)
}

func TestIngest_MalformedPayloadLeavesCountersUntouched(t *testing.T) {
	svc, _, _ := newTestService(t)

	svc.Ingest([]byte(`not json at all`))
	svc.Ingest([]byte(`[1,2,3]`))
	svc.Ingest([]byte(``))

	snap := svc.Snapshot()
	assert.Equal(t, 0, snap.TotalCalls)
	assert.Equal(t, 0, snap.MissedCalls)
	assert.Nil(t, snap.LastUpdated)
}

func TestIngest_AlternativePayloadShapes(t *testing.T) {
	tests := []struct {
		name    string
		ringing string
	}{
		{
			name:    "event field instead of type",
			ringing: `{"event":"ringing","data":{"direction":"inbound","id":"c1"}}`,
		},
		{
			name:    "call under object key",
			ringing: `{"type":"call.ringing","object":{"direction":"incoming","id":"c1"}}`,
		},
		{
			name:    "call at payload root",
			ringing: `{"type":"call.ringing","direction":"incoming","id":"c1"}`,
		},
		{
			name:    "nested object envelope",
			ringing: `{"type":"call.ringing","data":{"object":{"direction":"incoming","id":"c1"}}}`,
		},
		{
			name:    "callId field instead of id",
			ringing: `{"type":"call.ringing","data":{"direction":"incoming","callId":"c1"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newTestService(t)
			svc.Ingest([]byte(tt.ringing))

			snap := svc.Snapshot()
			assert.Equal(t, 1, snap.TotalCalls)
			assert.Equal(t, 1, snap.ActiveCalls)
		})
	}
}

func TestIngest_MissedClassificationSignals(t *testing.T) {
	tests := []struct {
		name      string
		completed string
		missed    bool
	}{
		{
			name:      "explicit missed status",
			completed: `{"type":"call.completed","data":{"id":"c1","direction":"incoming","status":"missed","answeredAt":"x"}}`,
			missed:    true,
		},
		{
			name:      "no-answer disposition",
			completed: `{"type":"call.completed","data":{"id":"c1","direction":"incoming","disposition":"no-answer","answeredAt":"x"}}`,
			missed:    true,
		},
		{
			name:      "null answeredAt",
			completed: `{"type":"call.completed","data":{"id":"c1","direction":"incoming","answeredAt":null,"duration":30}}`,
			missed:    true,
		},
		{
			name:      "answered false",
			completed: `{"type":"call.completed","data":{"id":"c1","direction":"incoming","answeredAt":"x","answered":false}}`,
			missed:    true,
		},
		{
			name:      "zero duration",
			completed: `{"type":"call.completed","data":{"id":"c1","direction":"incoming","answeredAt":"x","duration":0}}`,
			missed:    true,
		},
		{
			name:      "answered call",
			completed: `{"type":"call.completed","data":{"id":"c1","direction":"incoming","answeredAt":"x","answered":true,"duration":55}}`,
			missed:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newTestService(t)
			svc.Ingest([]byte(`{"type":"call.ringing","data":{"direction":"incoming","id":"c1"}}`))
			svc.Ingest([]byte(tt.completed))

			snap := svc.Snapshot()
			assert.Equal(t, 1, snap.TotalCalls)
			if tt.missed {
				assert.Equal(t, 1, snap.MissedCalls)
			} else {
				assert.Equal(t, 0, snap.MissedCalls)
			}
		})
	}
}

func TestIngest_MissedNeverExceedsTotal(t *testing.T) {
	svc, _, _ := newTestService(t)

	// A mix of tracked, untracked, answered and missed completions.
	payloads := []string{
		`{"type":"call.ringing","data":{"direction":"incoming","id":"a"}}`,
		`{"type":"call.ringing","data":{"direction":"incoming","id":"b"}}`,
		`{"type":"call.completed","data":{"id":"a","direction":"incoming","answeredAt":null}}`,
		`{"type":"call.completed","data":{"id":"b","direction":"incoming","answeredAt":"x","duration":12}}`,
		`{"type":"call.completed","data":{"id":"untracked","direction":"incoming","duration":0}}`,
		`{"type":"call.ringing","data":{"direction":"outgoing","id":"out"}}`,
		`{"type":"call.completed","data":{"id":"zzz","direction":"incoming","answeredAt":"x","duration":3}}`,
	}

	for _, p := range payloads {
		svc.Ingest([]byte(p))
		snap := svc.Snapshot()
		assert.LessOrEqual(t, snap.MissedCalls, snap.TotalCalls)
	}

	snap := svc.Snapshot()
	assert.Equal(t, 4, snap.TotalCalls)
	assert.Equal(t, 2, snap.MissedCalls)
}

func TestIngest_RecentHistoryBoundedAtTen(t *testing.T) {
	svc, _, _ := newTestService(t)

	for i := 0; i < 15; i++ {
		svc.Ingest([]byte(fmt.Sprintf(
			`{"type":"call.completed","data":{"id":"c%d","direction":"incoming","answeredAt":null}}`, i,
		)))
	}

	snap := svc.Snapshot()
	require.Len(t, snap.RecentCalls, model.RecentCallLimit)
	// Newest first: c14 at the head, c5 at the tail.
	assert.Equal(t, "c14", snap.RecentCalls[0].CallID)
	assert.Equal(t, "c5", snap.RecentCalls[model.RecentCallLimit-1].CallID)
}

func TestRollover_ResetsOnNewDate(t *testing.T) {
	svc, clock, _ := newTestService(t)

	svc.Ingest([]byte(`{"type":"call.ringing","data":{"direction":"incoming","id":"c1"}}`))
	svc.Ingest([]byte(`{"type":"call.completed","data":{"id":"c1","direction":"incoming","answeredAt":null}}`))

	firstDate := svc.Snapshot().LastReset
	clock.advanceDays(1)

	snap := svc.Snapshot()
	assert.Equal(t, 0, snap.TotalCalls)
	assert.Equal(t, 0, snap.MissedCalls)
	assert.Equal(t, 0, snap.ActiveCalls)
	assert.Empty(t, snap.RecentCalls)
	assert.Nil(t, snap.LastUpdated)
	assert.NotEqual(t, firstDate, snap.LastReset)
	assert.Equal(t, clock.t.Format("2006-01-02"), snap.LastReset)
}

func TestRollover_IdempotentWithinSameDate(t *testing.T) {
	svc, _, archive := newTestService(t)

	svc.Ingest([]byte(`{"type":"call.ringing","data":{"direction":"incoming","id":"c1"}}`))

	first := svc.Snapshot()
	second := svc.Snapshot()

	assert.Equal(t, first, second)
	assert.Empty(t, archive.days)
}

func TestRollover_ArchivesFinishedDayOnce(t *testing.T) {
	svc, clock, archive := newTestService(t)

	svc.Ingest([]byte(`{"type":"call.ringing","data":{"direction":"incoming","id":"c1"}}`))
	svc.Ingest([]byte(`{"type":"call.completed","data":{"id":"c1","direction":"incoming","answeredAt":null}}`))

	day := svc.Snapshot().LastReset
	clock.advanceDays(1)

	svc.Snapshot()
	svc.Snapshot()

	require.Len(t, archive.days, 1)
	assert.Equal(t, model.DailyArchive{Date: day, TotalCalls: 1, MissedCalls: 1}, archive.days[0])
}

func TestRollover_ArchiveFailureDoesNotBlockReset(t *testing.T) {
	svc, clock, archive := newTestService(t)
	archive.failing = true

	svc.Ingest([]byte(`{"type":"call.ringing","data":{"direction":"incoming","id":"c1"}}`))
	clock.advanceDays(1)

	snap := svc.Snapshot()
	assert.Equal(t, 0, snap.TotalCalls)
	assert.Equal(t, clock.t.Format("2006-01-02"), snap.LastReset)
}

func TestRollover_AppliedBeforeIngest(t *testing.T) {
	svc, clock, _ := newTestService(t)

	svc.Ingest([]byte(`{"type":"call.ringing","data":{"direction":"incoming","id":"c1"}}`))
	clock.advanceDays(1)

	// The first event of the new day lands in fresh counters.
	svc.Ingest([]byte(`{"type":"call.ringing","data":{"direction":"incoming","id":"c2"}}`))

	snap := svc.Snapshot()
	assert.Equal(t, 1, snap.TotalCalls)
	assert.Equal(t, 1, snap.ActiveCalls)
}

func TestSnapshot_DoesNotMutateCounters(t *testing.T) {
	svc, _, _ := newTestService(t)

	svc.Ingest([]byte(`{"type":"call.ringing","data":{"direction":"incoming","id":"c1"}}`))

	for i := 0; i < 5; i++ {
		svc.Snapshot()
	}

	snap := svc.Snapshot()
	assert.Equal(t, 1, snap.TotalCalls)
	assert.Equal(t, 1, snap.ActiveCalls)
}
