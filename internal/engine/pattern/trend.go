package pattern

import "TradeSage/internal/domain/models"

// trendDeadband is the fractional close-to-close move below which the recent
// window counts as sideways.
const trendDeadband = 0.01

type trendDirection int

const (
	trendSideways trendDirection = iota
	trendUp
	trendDown
)

// classifyTrend labels the direction of the trailing window by comparing the
// first and last closes. Fewer than 2 bars is sideways; context-dependent
// reversal patterns then stay disabled rather than firing on a guess.
func classifyTrend(bars []models.Bar, deadband float64) trendDirection {
	if len(bars) < 2 {
		return trendSideways
	}
	first := bars[0].Close
	last := bars[len(bars)-1].Close
	if first == 0 {
		return trendSideways
	}
	change := (last - first) / first
	switch {
	case change > deadband:
		return trendUp
	case change < -deadband:
		return trendDown
	default:
		return trendSideways
	}
}
