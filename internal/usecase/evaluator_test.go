package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TradeSage/internal/domain/models"
	dservice "TradeSage/internal/domain/service"
	"TradeSage/internal/engine/pattern"
	"TradeSage/internal/engine/quant"
	"TradeSage/pkg/logger"
)

type noopMetrics struct{}

func (noopMetrics) RecordEvaluation(string, string) {}
func (noopMetrics) RecordEscalation(string, bool)   {}
func (noopMetrics) RecordVeto(string)               {}
func (noopMetrics) RecordError(string)              {}
func (noopMetrics) RecordLastPrice(string, float64) {}
func (noopMetrics) RecordLatency(string, float64)   {}

type fakeLedger struct {
	balance  float64
	executed []models.FinalDecision
}

func (f *fakeLedger) Snapshot(map[string]float64) models.PortfolioSnapshot {
	return models.PortfolioSnapshot{Balance: f.balance, PortfolioValue: f.balance}
}

func (f *fakeLedger) Execute(d models.FinalDecision, confidence int) (models.TradeRecord, error) {
	f.executed = append(f.executed, d)
	return models.TradeRecord{Ticker: d.Ticker, Action: d.Action, Quantity: d.Quantity}, nil
}

func (f *fakeLedger) CheckExits(map[string]float64, time.Time) []models.FinalDecision { return nil }

type fakeArbiter struct {
	calls  int
	result models.ArbitrationResult
	err    error
}

func (f *fakeArbiter) Arbitrate(context.Context, models.Signal, models.MarketSnapshot, *models.SentimentSnapshot) (models.ArbitrationResult, error) {
	f.calls++
	return f.result, f.err
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	l, err := logger.New(&logger.Config{Level: "error", Format: "console", Output: "stdout"})
	require.NoError(t, err)
	return l
}

func newTestEvaluator(t *testing.T, arb *fakeArbiter) (*Evaluator, *fakeLedger) {
	t.Helper()
	ledger := &fakeLedger{balance: 1000}
	ev := NewEvaluator(
		pattern.NewDetector(),
		quant.NewOverlay(),
		arbiterOrNil(arb),
		ledger,
		noopMetrics{},
		testLogger(t),
		time.Second,
	)
	return ev, ledger
}

// arbiterOrNil avoids a typed-nil interface when no arbiter is wanted.
func arbiterOrNil(a *fakeArbiter) dservice.Arbiter {
	if a == nil {
		return nil
	}
	return a
}

// flatBars yields identical bullish bars that match no candlestick pattern,
// so fusion sees a zero composite and a confidence-50 HOLD that escalates.
func flatBars(n int, price float64) []models.Bar {
	out := make([]models.Bar, n)
	for i := range out {
		out[i] = models.Bar{Open: price - 0.4, High: price + 0.5, Low: price - 0.5, Close: price, Volume: 100}
	}
	return out
}

func TestEvaluateEmptyMarketHolds(t *testing.T) {
	ev, _ := newTestEvaluator(t, nil)

	res := ev.Evaluate(context.Background(), models.EvaluateRequest{Ticker: "AAPL"})

	assert.Equal(t, models.StateFinal, res.State)
	assert.Equal(t, models.ActionHold, res.Final.Action)
	assert.False(t, res.Arbitrated)
	assert.Zero(t, res.Final.Quantity)
}

func TestEvaluateArbitrationFailureKeepsSignal(t *testing.T) {
	arb := &fakeArbiter{err: errors.New("upstream down")}
	ev, _ := newTestEvaluator(t, arb)

	res := ev.Evaluate(context.Background(), models.EvaluateRequest{
		Ticker: "AAPL",
		Market: models.MarketSnapshot{Ticker: "AAPL", Bars: flatBars(10, 100), Price: 100},
	})

	assert.Equal(t, 1, arb.calls)
	assert.True(t, res.ArbitrationFailed)
	assert.False(t, res.Arbitrated)
	assert.Equal(t, models.ActionHold, res.Final.Action)
}

func TestEvaluateArbiterOverrideApplied(t *testing.T) {
	arb := &fakeArbiter{result: models.ArbitrationResult{
		Decision:          models.ActionBuy,
		Confidence:        80,
		Reasoning:         "momentum building",
		SuggestedQuantity: 5,
		OverrideAlgorithm: true,
	}}
	ev, _ := newTestEvaluator(t, arb)

	res := ev.Evaluate(context.Background(), models.EvaluateRequest{
		Ticker: "AAPL",
		Market: models.MarketSnapshot{Ticker: "AAPL", Bars: flatBars(10, 10), Price: 10},
	})

	assert.True(t, res.Arbitrated)
	assert.Equal(t, models.ActionBuy, res.Final.Action)
	// Kelly resize with default half-Kelly 0.125 on a 1000 portfolio at price 10
	assert.Equal(t, 12, res.Final.Quantity)
	assert.Contains(t, res.Final.Reasoning, "arbiter: momentum building")
}

func TestEvaluateConfidenceFloorDowngrades(t *testing.T) {
	arb := &fakeArbiter{result: models.ArbitrationResult{
		Decision:          models.ActionBuy,
		Confidence:        50,
		OverrideAlgorithm: true,
		SuggestedQuantity: 3,
	}}
	ev, _ := newTestEvaluator(t, arb)

	res := ev.Evaluate(context.Background(), models.EvaluateRequest{
		Ticker: "AAPL",
		Market: models.MarketSnapshot{Ticker: "AAPL", Bars: flatBars(10, 10), Price: 10},
	})

	assert.Equal(t, models.ActionHold, res.Final.Action)
	assert.Zero(t, res.Final.Quantity)
	assert.Contains(t, res.Final.Reasoning, "confidence below actionable floor")
}

func TestEvaluateArbitrationDisabledByRequest(t *testing.T) {
	arb := &fakeArbiter{result: models.ArbitrationResult{Decision: models.ActionBuy, OverrideAlgorithm: true}}
	ev, _ := newTestEvaluator(t, arb)

	off := false
	res := ev.Evaluate(context.Background(), models.EvaluateRequest{
		Ticker:    "AAPL",
		Market:    models.MarketSnapshot{Ticker: "AAPL", Bars: flatBars(10, 100), Price: 100},
		Arbitrate: &off,
	})

	assert.Zero(t, arb.calls)
	assert.False(t, res.Arbitrated)
	assert.Equal(t, models.ActionHold, res.Final.Action)
}
