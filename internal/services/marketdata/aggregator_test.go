package marketdata

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TradeSage/internal/domain/models"
	drepo "TradeSage/internal/domain/repository"
)

func tick(ticker string, price float64, volume int64, ts time.Time) *models.Tick {
	return &models.Tick{Ticker: ticker, Price: price, Volume: volume, Timestamp: ts}
}

func TestAggregatorFoldsTicksIntoBar(t *testing.T) {
	agg := NewAggregator(0)
	base := time.Date(2026, 3, 2, 14, 30, 0, 0, time.UTC)

	agg.Add(tick("AAPL", 100, 10, base))
	agg.Add(tick("AAPL", 102, 5, base.Add(10*time.Second)))
	agg.Add(tick("AAPL", 99, 7, base.Add(30*time.Second)))
	agg.Add(tick("AAPL", 101, 3, base.Add(59*time.Second)))

	bars, err := agg.GetLatestNBars(context.Background(), "AAPL", 10, drepo.TF1m)
	require.NoError(t, err)
	require.Len(t, bars, 1)

	b := bars[0]
	assert.Equal(t, base, b.Timestamp)
	assert.Equal(t, 100.0, b.Open)
	assert.Equal(t, 102.0, b.High)
	assert.Equal(t, 99.0, b.Low)
	assert.Equal(t, 101.0, b.Close)
	assert.Equal(t, int64(25), b.Volume)
}

func TestAggregatorOpensNewBarAtBucketBoundary(t *testing.T) {
	agg := NewAggregator(0)
	base := time.Date(2026, 3, 2, 14, 30, 0, 0, time.UTC)

	agg.Add(tick("AAPL", 100, 10, base.Add(59*time.Second)))
	agg.Add(tick("AAPL", 105, 20, base.Add(60*time.Second)))

	oneMin, err := agg.GetLatestNBars(context.Background(), "AAPL", 10, drepo.TF1m)
	require.NoError(t, err)
	require.Len(t, oneMin, 2)
	assert.Equal(t, 100.0, oneMin[0].Close)
	assert.Equal(t, 105.0, oneMin[1].Open)

	// both ticks land inside the same 5-minute bucket
	fiveMin, err := agg.GetLatestNBars(context.Background(), "AAPL", 10, drepo.TF5m)
	require.NoError(t, err)
	require.Len(t, fiveMin, 1)
	assert.Equal(t, 100.0, fiveMin[0].Open)
	assert.Equal(t, 105.0, fiveMin[0].Close)
	assert.Equal(t, int64(30), fiveMin[0].Volume)
}

func TestAggregatorTrimsToMaxBars(t *testing.T) {
	agg := NewAggregator(3)
	base := time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		agg.Add(tick("AAPL", 100+float64(i), 1, base.Add(time.Duration(i)*time.Minute)))
	}

	bars, err := agg.GetLatestNBars(context.Background(), "AAPL", 10, drepo.TF1m)
	require.NoError(t, err)
	require.Len(t, bars, 3)
	assert.Equal(t, 102.0, bars[0].Open)
	assert.Equal(t, 104.0, bars[2].Open)
}

func TestAggregatorGetBarsRange(t *testing.T) {
	agg := NewAggregator(0)
	base := time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)

	for i := 0; i < 4; i++ {
		agg.Add(tick("AAPL", 100+float64(i), 1, base.Add(time.Duration(i)*time.Minute)))
	}

	bars, err := agg.GetBars(context.Background(), "AAPL", base.Add(time.Minute), base.Add(2*time.Minute), drepo.TF1m)
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, 101.0, bars[0].Open)
	assert.Equal(t, 102.0, bars[1].Open)
}

func TestAggregatorLastPriceAndTickers(t *testing.T) {
	agg := NewAggregator(0)
	now := time.Now()

	agg.Add(tick("AAPL", 100, 1, now))
	agg.Add(tick("AAPL", 101, 1, now.Add(time.Second)))
	agg.Add(tick("TSLA", 250, 1, now))

	p, ok := agg.LastPrice("AAPL")
	assert.True(t, ok)
	assert.Equal(t, 101.0, p)

	_, ok = agg.LastPrice("MSFT")
	assert.False(t, ok)

	assert.ElementsMatch(t, []string{"AAPL", "TSLA"}, agg.Tickers())
	assert.Equal(t, map[string]float64{"AAPL": 101, "TSLA": 250}, agg.LastPrices())
}

func TestAggregatorIgnoresBlankTicks(t *testing.T) {
	agg := NewAggregator(0)
	agg.Add(nil)
	agg.Add(tick("", 100, 1, time.Now()))
	assert.Empty(t, agg.Tickers())
}

func TestAggregatorPriceSeries(t *testing.T) {
	agg := NewAggregator(0)
	base := time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		agg.Add(tick("AAPL", 100+float64(i), 1, base.Add(time.Duration(i)*time.Minute)))
	}

	series, err := agg.GetPriceSeries(context.Background(), "AAPL", 2, drepo.TF1m)
	require.NoError(t, err)
	assert.Equal(t, []float64{101, 102}, series)
}
