package features

import (
	"math"
	"time"

	"TradeSage/internal/domain/models"
)

// ComputeLogReturns computes log returns r_t = ln(C_t / C_{t-1}) over bar
// closes. Returns a slice of length len(bars)-1, or nil if insufficient data.
func ComputeLogReturns(bars []models.Bar) []float64 {
	if len(bars) < 2 {
		return nil
	}
	out := make([]float64, 0, len(bars)-1)
	for i := 1; i < len(bars); i++ {
		prev := bars[i-1].Close
		cur := bars[i].Close
		if prev <= 0 || cur <= 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, math.Log(cur/prev))
	}
	return out
}

// SeriesLogReturns is ComputeLogReturns over a bare price series.
func SeriesLogReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	out := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] <= 0 || prices[i] <= 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, math.Log(prices[i]/prices[i-1]))
	}
	return out
}

// RealizedVolatility computes annualized realized volatility over the latest
// rolling window using the provided number of bars per year.
func RealizedVolatility(logReturns []float64, window int, barsPerYear float64) float64 {
	if window <= 1 || len(logReturns) < window {
		return 0
	}
	sum := 0.0
	sum2 := 0.0
	for i := len(logReturns) - window; i < len(logReturns); i++ {
		r := logReturns[i]
		sum += r
		sum2 += r * r
	}
	n := float64(window)
	mean := sum / n
	variance := (sum2 - n*mean*mean) / (n - 1)
	if variance < 0 {
		variance = 0
	}
	// annualize
	return math.Sqrt(variance * barsPerYear)
}

// BarsPerYearForTF returns the approximate number of bars per year for a
// timeframe.
func BarsPerYearForTF(tf string) float64 {
	switch tf {
	case "1s":
		return 365 * 24 * 60 * 60
	case "1m":
		return 365 * 24 * 60
	case "5m":
		return 365 * 24 * 12
	default:
		return 365 * 24 * 60
	}
}

// AlignFromTo rounds a time range to bar boundaries for the timeframe.
func AlignFromTo(from, to time.Time, tf string) (time.Time, time.Time) {
	switch tf {
	case "1s":
		from = from.Truncate(time.Second)
		to = to.Truncate(time.Second)
	case "5m":
		d := 5 * time.Minute
		from = from.Truncate(d)
		to = to.Truncate(d)
	default:
		from = from.Truncate(time.Minute)
		to = to.Truncate(time.Minute)
	}
	return from, to
}
