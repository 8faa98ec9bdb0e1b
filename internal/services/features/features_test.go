package features

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TradeSage/internal/domain/models"
)

func barsFromCloses(closes ...float64) []models.Bar {
	out := make([]models.Bar, len(closes))
	for i, c := range closes {
		out[i] = models.Bar{Open: c, High: c + 1, Low: c - 1, Close: c, Volume: 100}
	}
	return out
}

func TestComputeLogReturns(t *testing.T) {
	assert.Nil(t, ComputeLogReturns(nil))
	assert.Nil(t, ComputeLogReturns(barsFromCloses(100)))

	rets := ComputeLogReturns(barsFromCloses(100, 110, 99))
	require.Len(t, rets, 2)
	assert.InDelta(t, math.Log(1.1), rets[0], 1e-9)
	assert.InDelta(t, math.Log(0.9), rets[1], 1e-9)
}

func TestSeriesLogReturnsGuardsNonPositive(t *testing.T) {
	rets := SeriesLogReturns([]float64{100, 0, 100})
	require.Len(t, rets, 2)
	assert.Zero(t, rets[0])
	assert.Zero(t, rets[1])
}

func TestRealizedVolatility(t *testing.T) {
	assert.Zero(t, RealizedVolatility([]float64{0.01}, 5, 252))

	rets := []float64{0.01, -0.01, 0.02, -0.02, 0.01, -0.01}
	vol := RealizedVolatility(rets, 6, 1)
	assert.Greater(t, vol, 0.0)
}

func TestRSIInsufficientData(t *testing.T) {
	assert.Nil(t, RSI(barsFromCloses(1, 2, 3), RSILength))
}

func TestRSIAllGainsSaturates(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	rsi := RSI(barsFromCloses(closes...), RSILength)
	require.NotNil(t, rsi)
	assert.InDelta(t, 100, *rsi, 1e-9)
}

func TestRSIBounded(t *testing.T) {
	closes := []float64{
		100, 101, 99, 102, 98, 103, 97, 104, 96, 105,
		95, 106, 94, 107, 93, 108, 92, 109, 91, 110,
	}
	rsi := RSI(barsFromCloses(closes...), RSILength)
	require.NotNil(t, rsi)
	assert.GreaterOrEqual(t, *rsi, 0.0)
	assert.LessOrEqual(t, *rsi, 100.0)
}

func TestMACDInsufficientData(t *testing.T) {
	m, s := MACD(barsFromCloses(1, 2, 3))
	assert.Nil(t, m)
	assert.Nil(t, s)
}

func TestMACDUptrendPositive(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	m, s := MACD(barsFromCloses(closes...))
	require.NotNil(t, m)
	require.NotNil(t, s)
	// fast EMA sits above slow EMA in a steady uptrend
	assert.Greater(t, *m, 0.0)
}

func TestAvgVolume(t *testing.T) {
	assert.Nil(t, AvgVolume(nil))

	bars := barsFromCloses(1, 2, 3)
	bars[0].Volume = 100
	bars[1].Volume = 200
	bars[2].Volume = 300
	avg := AvgVolume(bars)
	require.NotNil(t, avg)
	assert.Equal(t, int64(200), *avg)
}

func TestAlignFromTo(t *testing.T) {
	from := time.Date(2025, 6, 2, 10, 3, 45, 0, time.UTC)
	to := time.Date(2025, 6, 2, 10, 17, 12, 0, time.UTC)

	f, tt := AlignFromTo(from, to, "5m")
	assert.Equal(t, time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC), f)
	assert.Equal(t, time.Date(2025, 6, 2, 10, 15, 0, 0, time.UTC), tt)

	f, _ = AlignFromTo(from, to, "1m")
	assert.Equal(t, time.Date(2025, 6, 2, 10, 3, 0, 0, time.UTC), f)
}
