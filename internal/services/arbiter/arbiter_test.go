package arbiter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"TradeSage/internal/domain/models"
)

func TestUsageTrackerCountsWithinDay(t *testing.T) {
	now := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	u := NewUsageTracker(now)

	assert.Equal(t, 1, u.RecordCall(now))
	assert.Equal(t, 2, u.RecordCall(now.Add(time.Hour)))

	stats := u.Stats()
	assert.Equal(t, 2, stats.TotalCalls)
	assert.Equal(t, 2, stats.CallsToday)
}

func TestUsageTrackerDailyReset(t *testing.T) {
	day1 := time.Date(2025, 6, 2, 23, 0, 0, 0, time.UTC)
	u := NewUsageTracker(day1)
	u.RecordCall(day1)
	u.RecordCall(day1)

	day2 := day1.Add(2 * time.Hour) // past midnight
	assert.Equal(t, 1, u.RecordCall(day2))

	stats := u.Stats()
	assert.Equal(t, 3, stats.TotalCalls)
	assert.Equal(t, 1, stats.CallsToday)
	assert.Equal(t, day2, stats.LastReset)
}

func TestNormalizeDecision(t *testing.T) {
	assert.Equal(t, models.ActionBuy, normalizeDecision("BUY"))
	assert.Equal(t, models.ActionBuy, normalizeDecision(" buy "))
	assert.Equal(t, models.ActionSell, normalizeDecision("Sell"))
	assert.Equal(t, models.ActionHold, normalizeDecision("IGNORE"))
	assert.Equal(t, models.ActionHold, normalizeDecision(""))
	assert.Equal(t, models.ActionHold, normalizeDecision("whatever"))
}

func TestClampConfidence(t *testing.T) {
	assert.Equal(t, 0, clampConfidence(-5))
	assert.Equal(t, 100, clampConfidence(150))
	assert.Equal(t, 77, clampConfidence(77))
}
