package model

import "time"

// RecentCallLimit caps the bounded most-recent-first call history kept in memory.
const RecentCallLimit = 10

// ActiveCall is an in-flight incoming call observed ringing but not yet
// completed. Keyed by provider call ID so a later completed event can be
// correlated with its ringing event.
type ActiveCall struct {
	CallID    string
	From      string
	StartedAt time.Time
}

// RecentCall is one entry in the bounded recent-call history shown on the board.
type RecentCall struct {
	CallID      string  `json:"call_id"`
	From        string  `json:"from"`
	CompletedAt string  `json:"completed_at"`
	Missed      bool    `json:"missed"`
	Duration    float64 `json:"duration"`
}

// DailyCallStats is the aggregate for the current calendar day. It is
// process-wide shared mutable state with no same-day persistence: a restart
// loses today's counters, which is an accepted trade-off for this dashboard.
// Invariant: MissedCalls <= TotalCalls.
type DailyCallStats struct {
	TotalCalls  int
	MissedCalls int
	LastUpdated *time.Time
	LastReset   string // calendar date, "2006-01-02"
	ActiveCalls map[string]ActiveCall
	Recent      []RecentCall // newest first, capped at RecentCallLimit
}

// NewDailyCallStats returns zeroed stats anchored to the given calendar date.
func NewDailyCallStats(date string) DailyCallStats {
	return DailyCallStats{
		LastReset:   date,
		ActiveCalls: make(map[string]ActiveCall),
		Recent:      []RecentCall{},
	}
}

// CallStatsSnapshot is the read-only view returned to the render layer.
type CallStatsSnapshot struct {
	TotalCalls  int          `json:"totalCalls"`
	MissedCalls int          `json:"missedCalls"`
	LastUpdated *string      `json:"lastUpdated"`
	LastReset   string       `json:"lastReset"`
	RecentCalls []RecentCall `json:"recentCalls"`
	ActiveCalls int          `json:"activeCalls"`
}

// DailyArchive is one finished day's totals, written to durable storage when
// the rollover fires. Same-day state is never archived.
type DailyArchive struct {
	Date        string
	TotalCalls  int
	MissedCalls int
}
