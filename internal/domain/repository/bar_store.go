package repository

import (
	"context"
	"time"

	"TradeSage/internal/domain/models"
)

// Timeframe represents bar resolution buckets.
type Timeframe string

const (
	TF1s Timeframe = "1s"
	TF1m Timeframe = "1m"
	TF5m Timeframe = "5m"
)

// DefaultTimeframe is what request binding falls back to.
func DefaultTimeframe() Timeframe { return TF1m }

// NormalizeTimeframe converts a raw string to a supported timeframe,
// defaulting instead of erroring on junk input.
func NormalizeTimeframe(s string) Timeframe {
	switch tf := Timeframe(s); tf {
	case TF1s, TF1m, TF5m:
		return tf
	default:
		return DefaultTimeframe()
	}
}

// BarStore provides read access to historical bars for the engine.
type BarStore interface {
	GetBars(ctx context.Context, ticker string, from, to time.Time, tf Timeframe) ([]models.Bar, error)
	GetLatestNBars(ctx context.Context, ticker string, n int, tf Timeframe) ([]models.Bar, error)
	GetPriceSeries(ctx context.Context, ticker string, n int, tf Timeframe) ([]float64, error)
}
