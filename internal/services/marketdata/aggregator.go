package marketdata

import (
	"context"
	"sync"
	"time"

	"TradeSage/internal/domain/models"
	drepo "TradeSage/internal/domain/repository"
)

// defaultMaxBars bounds the per-ticker ring for each timeframe.
const defaultMaxBars = 500

// Aggregator builds OHLCV bars from streamed ticks and serves them through
// the BarStore interface. Each ticker keeps a bounded window per timeframe,
// enough for the pattern detector and indicator lookbacks.
type Aggregator struct {
	mu      sync.RWMutex
	maxBars int
	// ticker -> timeframe -> chronological bars
	series map[string]map[drepo.Timeframe][]models.Bar
	last   map[string]float64
}

func NewAggregator(maxBars int) *Aggregator {
	if maxBars <= 0 {
		maxBars = defaultMaxBars
	}
	return &Aggregator{
		maxBars: maxBars,
		series:  make(map[string]map[drepo.Timeframe][]models.Bar),
		last:    make(map[string]float64),
	}
}

func tfDuration(tf drepo.Timeframe) time.Duration {
	switch tf {
	case drepo.TF1s:
		return time.Second
	case drepo.TF5m:
		return 5 * time.Minute
	default:
		return time.Minute
	}
}

// Add folds one tick into every timeframe bucket for its ticker.
func (a *Aggregator) Add(t *models.Tick) {
	if t == nil || t.Ticker == "" {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	a.last[t.Ticker] = t.Price
	byTF, ok := a.series[t.Ticker]
	if !ok {
		byTF = make(map[drepo.Timeframe][]models.Bar)
		a.series[t.Ticker] = byTF
	}
	for _, tf := range []drepo.Timeframe{drepo.TF1s, drepo.TF1m, drepo.TF5m} {
		byTF[tf] = a.fold(byTF[tf], t, tf)
	}
}

// fold opens a new bar when the tick crosses a bucket boundary, otherwise
// extends the current one.
func (a *Aggregator) fold(bars []models.Bar, t *models.Tick, tf drepo.Timeframe) []models.Bar {
	bucket := t.Timestamp.Truncate(tfDuration(tf))
	n := len(bars)
	if n > 0 && bars[n-1].Timestamp.Equal(bucket) {
		cur := &bars[n-1]
		if t.Price > cur.High {
			cur.High = t.Price
		}
		if t.Price < cur.Low {
			cur.Low = t.Price
		}
		cur.Close = t.Price
		cur.Volume += t.Volume
		return bars
	}

	bars = append(bars, models.Bar{
		Open:      t.Price,
		High:      t.Price,
		Low:       t.Price,
		Close:     t.Price,
		Volume:    t.Volume,
		Timestamp: bucket,
	})
	if len(bars) > a.maxBars {
		bars = bars[len(bars)-a.maxBars:]
	}
	return bars
}

// LastPrice returns the most recent print for a ticker.
func (a *Aggregator) LastPrice(ticker string) (float64, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	p, ok := a.last[ticker]
	return p, ok
}

// LastPrices snapshots the most recent print for every observed ticker.
func (a *Aggregator) LastPrices() map[string]float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make(map[string]float64, len(a.last))
	for k, v := range a.last {
		out[k] = v
	}
	return out
}

// Tickers lists every ticker with at least one print.
func (a *Aggregator) Tickers() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]string, 0, len(a.last))
	for k := range a.last {
		out = append(out, k)
	}
	return out
}

func (a *Aggregator) GetBars(_ context.Context, ticker string, from, to time.Time, tf drepo.Timeframe) ([]models.Bar, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	all := a.series[ticker][tf]
	var out []models.Bar
	for _, b := range all {
		if b.Timestamp.Before(from) || b.Timestamp.After(to) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (a *Aggregator) GetLatestNBars(_ context.Context, ticker string, n int, tf drepo.Timeframe) ([]models.Bar, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	all := a.series[ticker][tf]
	if n <= 0 || n > len(all) {
		n = len(all)
	}
	out := make([]models.Bar, n)
	copy(out, all[len(all)-n:])
	return out, nil
}

func (a *Aggregator) GetPriceSeries(ctx context.Context, ticker string, n int, tf drepo.Timeframe) ([]float64, error) {
	bars, err := a.GetLatestNBars(ctx, ticker, n, tf)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out, nil
}
