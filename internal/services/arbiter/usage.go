package arbiter

import (
	"sync"
	"time"
)

// UsageTracker counts arbitration calls for cost monitoring. The daily
// counter resets when the caller's clock crosses a day boundary; the tracker
// itself never consults the wall clock.
type UsageTracker struct {
	mu         sync.Mutex
	totalCalls int
	callsToday int
	lastReset  time.Time
}

func NewUsageTracker(now time.Time) *UsageTracker {
	return &UsageTracker{lastReset: now}
}

// RecordCall bumps the counters, rolling the daily counter over first if now
// is a different day than the last reset. Returns today's call number.
func (u *UsageTracker) RecordCall(now time.Time) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	if !sameDay(u.lastReset, now) {
		u.callsToday = 0
		u.lastReset = now
	}
	u.totalCalls++
	u.callsToday++
	return u.callsToday
}

// UsageStats is a point-in-time copy of the counters.
type UsageStats struct {
	TotalCalls int       `json:"total_calls"`
	CallsToday int       `json:"calls_today"`
	LastReset  time.Time `json:"last_reset"`
}

func (u *UsageTracker) Stats() UsageStats {
	u.mu.Lock()
	defer u.mu.Unlock()
	return UsageStats{
		TotalCalls: u.totalCalls,
		CallsToday: u.callsToday,
		LastReset:  u.lastReset,
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
