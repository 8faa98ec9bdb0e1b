package models

import "time"

// Bar is an immutable OHLCV record. Derived geometry is exposed as methods
// so a Bar can be constructed from any upstream shape and queried uniformly.
type Bar struct {
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    int64
	Timestamp time.Time
}

// Body returns the absolute body size |close-open|.
func (b Bar) Body() float64 {
	if b.Close > b.Open {
		return b.Close - b.Open
	}
	return b.Open - b.Close
}

// Range returns the total high-low range.
func (b Bar) Range() float64 { return b.High - b.Low }

// UpperShadow returns the upper wick length.
func (b Bar) UpperShadow() float64 { return b.High - maxf(b.Open, b.Close) }

// LowerShadow returns the lower wick length.
func (b Bar) LowerShadow() float64 { return minf(b.Open, b.Close) - b.Low }

// IsBullish reports close > open.
func (b Bar) IsBullish() bool { return b.Close > b.Open }

// IsBearish reports close < open.
func (b Bar) IsBearish() bool { return b.Close < b.Open }

// Midpoint returns the midpoint of the body.
func (b Bar) Midpoint() float64 { return (b.Open + b.Close) / 2 }

// BodyRatio returns body/range, or 0 for a zero-range bar.
func (b Bar) BodyRatio() float64 {
	r := b.Range()
	if r == 0 {
		return 0
	}
	return b.Body() / r
}

// Valid reports whether the bar satisfies the OHLC invariant:
// high >= max(open, close) and low <= min(open, close).
func (b Bar) Valid() bool {
	return b.High >= maxf(b.Open, b.Close) && b.Low <= minf(b.Open, b.Close)
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
