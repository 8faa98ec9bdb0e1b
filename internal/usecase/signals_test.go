package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TradeSage/internal/domain/models"
	drepo "TradeSage/internal/domain/repository"
	"TradeSage/internal/engine/pattern"
)

type fakeBarStore struct {
	bars map[string][]models.Bar
	errs map[string]error
}

func (f *fakeBarStore) GetBars(_ context.Context, ticker string, _, _ time.Time, _ drepo.Timeframe) ([]models.Bar, error) {
	if err := f.errs[ticker]; err != nil {
		return nil, err
	}
	return f.bars[ticker], nil
}

func (f *fakeBarStore) GetLatestNBars(_ context.Context, ticker string, n int, _ drepo.Timeframe) ([]models.Bar, error) {
	if err := f.errs[ticker]; err != nil {
		return nil, err
	}
	bars := f.bars[ticker]
	if len(bars) > n {
		bars = bars[len(bars)-n:]
	}
	return bars, nil
}

func (f *fakeBarStore) GetPriceSeries(_ context.Context, ticker string, n int, _ drepo.Timeframe) ([]float64, error) {
	bars, err := f.GetLatestNBars(context.Background(), ticker, n, drepo.TF1m)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out, nil
}

func newTestSignalService(t *testing.T, store *fakeBarStore) *SignalService {
	t.Helper()
	ev, _ := newTestEvaluator(t, nil)
	return NewSignalService(store, pattern.NewDetector(), ev, nil, nil, testLogger(t))
}

// risingBars yields monotonically rising bullish bars.
func risingBars(n int, base float64) []models.Bar {
	out := make([]models.Bar, n)
	for i := range out {
		c := base + float64(i)*0.5
		out[i] = models.Bar{
			Open:   c - 0.3,
			High:   c + 0.2,
			Low:    c - 0.5,
			Close:  c,
			Volume: int64(100 + i),
		}
	}
	return out
}

// engulfingBars ends in a bearish bar fully engulfed by a bullish one.
func engulfingBars() []models.Bar {
	bars := flatBars(8, 100)
	bars = append(bars,
		models.Bar{Open: 101, High: 101.2, Low: 99.8, Close: 100, Volume: 100},
		models.Bar{Open: 99.5, High: 101.7, Low: 99.3, Close: 101.5, Volume: 150},
	)
	return bars
}

func TestSnapshotComputesIndicators(t *testing.T) {
	store := &fakeBarStore{bars: map[string][]models.Bar{"AAPL": risingBars(30, 100)}}
	svc := newTestSignalService(t, store)

	snap, err := svc.Snapshot(context.Background(), "AAPL", 30, drepo.TF1m)
	require.NoError(t, err)

	assert.Equal(t, "AAPL", snap.Ticker)
	assert.Len(t, snap.Bars, 30)
	assert.InDelta(t, 114.5, snap.Price, 1e-9)
	require.NotNil(t, snap.RSI)
	assert.Greater(t, *snap.RSI, 70.0) // every bar gained
	require.NotNil(t, snap.Volume)
	assert.Equal(t, int64(129), *snap.Volume)
	assert.NotNil(t, snap.AvgVolume)
	assert.NotEmpty(t, snap.PriceSeries)
}

func TestSnapshotNoBars(t *testing.T) {
	store := &fakeBarStore{bars: map[string][]models.Bar{}}
	svc := newTestSignalService(t, store)

	_, err := svc.Snapshot(context.Background(), "AAPL", 30, drepo.TF1m)
	assert.ErrorIs(t, err, models.ErrInsufficientData)
}

func TestEvaluateCollapsesOnStoreError(t *testing.T) {
	store := &fakeBarStore{errs: map[string]error{"AAPL": errors.New("storage down")}}
	svc := newTestSignalService(t, store)

	ev, err := svc.Evaluate(context.Background(), models.SignalRequest{Ticker: "AAPL", N: 30, TF: "1m"})
	require.Error(t, err)
	require.NotNil(t, ev)

	assert.Equal(t, models.StateFinal, ev.State)
	assert.Equal(t, models.ActionHold, ev.Final.Action)
	assert.Zero(t, ev.Signal.Confidence)
	assert.Contains(t, ev.Final.Reasoning, "market data unavailable")
}

func TestPatternsDetectsEngulfing(t *testing.T) {
	store := &fakeBarStore{bars: map[string][]models.Bar{"AAPL": engulfingBars()}}
	svc := newTestSignalService(t, store)

	matches, summary, err := svc.Patterns(context.Background(), models.PatternsRequest{Ticker: "AAPL", N: 20, TF: "1m"})
	require.NoError(t, err)
	require.NotEmpty(t, matches)

	assert.Equal(t, "Bullish Engulfing", matches[0].Name)
	assert.Equal(t, models.ActionBuy, summary.Decision)
	assert.GreaterOrEqual(t, summary.Confidence, 60)
}

func TestQuickScanFiltersAndSkips(t *testing.T) {
	store := &fakeBarStore{
		bars: map[string][]models.Bar{
			"GOOD": engulfingBars(),
			"FLAT": flatBars(10, 50),
		},
		errs: map[string]error{"DOWN": errors.New("storage down")},
	}
	svc := newTestSignalService(t, store)

	results := svc.QuickScan(context.Background(), []string{"GOOD", "DOWN", "FLAT"}, drepo.TF1m)

	require.Len(t, results, 1)
	assert.Equal(t, "GOOD", results[0].Ticker)
	assert.Equal(t, models.ActionBuy, results[0].Decision)
	assert.Equal(t, "Bullish Engulfing", results[0].Pattern)
	assert.GreaterOrEqual(t, results[0].Confidence, quickScanConfidenceFloor)
}
