package paper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TradeSage/internal/domain/models"
)

func buyDecision(ticker string, qty int, price float64) models.FinalDecision {
	return models.FinalDecision{
		Ticker:    ticker,
		Action:    models.ActionBuy,
		Quantity:  qty,
		Price:     price,
		Timestamp: time.Now(),
	}
}

func sellDecision(ticker string, price float64) models.FinalDecision {
	return models.FinalDecision{
		Ticker:    ticker,
		Action:    models.ActionSell,
		Price:     price,
		Timestamp: time.Now(),
	}
}

func TestBuyAndSellRoundTrip(t *testing.T) {
	l := NewLedger(1000)

	tr, err := l.Execute(buyDecision("AAPL", 4, 100), 80)
	require.NoError(t, err)
	assert.Equal(t, 4, tr.Quantity)
	assert.InDelta(t, 400, tr.Total, 0.001)

	snap := l.Snapshot(nil)
	assert.InDelta(t, 600, snap.Balance, 0.001)
	assert.Contains(t, snap.Holdings, "AAPL")

	tr, err = l.Execute(sellDecision("AAPL", 110), 0)
	require.NoError(t, err)
	assert.InDelta(t, 40, tr.Profit, 0.001)

	snap = l.Snapshot(nil)
	assert.InDelta(t, 1040, snap.Balance, 0.001)
	assert.Empty(t, snap.Holdings)
	assert.Len(t, snap.ClosedTrades, 1)
}

func TestBuyRejectsLowConfidence(t *testing.T) {
	l := NewLedger(1000)
	_, err := l.Execute(buyDecision("AAPL", 1, 100), 69)
	assert.ErrorIs(t, err, ErrLowConfidence)
}

func TestBuyRejectsDuplicatePosition(t *testing.T) {
	l := NewLedger(1000)
	_, err := l.Execute(buyDecision("AAPL", 1, 100), 80)
	require.NoError(t, err)
	_, err = l.Execute(buyDecision("AAPL", 1, 100), 80)
	assert.ErrorIs(t, err, ErrAlreadyHolding)
}

func TestBuyResizesOversizedOrder(t *testing.T) {
	l := NewLedger(1000)
	tr, err := l.Execute(buyDecision("AAPL", 50, 100), 80)
	require.NoError(t, err)
	assert.Equal(t, 10, tr.Quantity) // balance only covers 10
}

func TestBuyDefaultAllocation(t *testing.T) {
	l := NewLedger(1000)
	// no suggested quantity: 20% of balance at price 50 -> 4 shares
	tr, err := l.Execute(buyDecision("AAPL", 0, 50), 80)
	require.NoError(t, err)
	assert.Equal(t, 4, tr.Quantity)
}

func TestBuyAllInWhenAllocationTooSmall(t *testing.T) {
	l := NewLedger(1000)
	// 20% = 200 < price 300, so the whole balance is considered
	tr, err := l.Execute(buyDecision("AAPL", 0, 300), 80)
	require.NoError(t, err)
	assert.Equal(t, 3, tr.Quantity)
}

func TestBuyInsufficientFunds(t *testing.T) {
	l := NewLedger(100)
	_, err := l.Execute(buyDecision("AAPL", 0, 5000), 80)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
}

func TestSellWithoutPosition(t *testing.T) {
	l := NewLedger(1000)
	_, err := l.Execute(sellDecision("AAPL", 100), 0)
	assert.ErrorIs(t, err, ErrNotHolding)
}

func TestHoldIsNoAction(t *testing.T) {
	l := NewLedger(1000)
	_, err := l.Execute(models.FinalDecision{Ticker: "AAPL", Action: models.ActionHold}, 90)
	assert.ErrorIs(t, err, ErrNoAction)
}

func TestCheckExitsStopLoss(t *testing.T) {
	l := NewLedger(1000)
	_, err := l.Execute(buyDecision("AAPL", 5, 100), 80)
	require.NoError(t, err)

	// -2% triggers the stop
	exits := l.CheckExits(map[string]float64{"AAPL": 98}, time.Now())
	require.Len(t, exits, 1)
	assert.Equal(t, models.ActionSell, exits[0].Action)
	assert.Contains(t, exits[0].Reasoning, "Stop loss")
	assert.Empty(t, l.Snapshot(nil).Holdings)
}

func TestCheckExitsTakeProfit(t *testing.T) {
	l := NewLedger(1000)
	_, err := l.Execute(buyDecision("AAPL", 5, 100), 80)
	require.NoError(t, err)

	exits := l.CheckExits(map[string]float64{"AAPL": 104}, time.Now())
	require.Len(t, exits, 1)
	assert.Contains(t, exits[0].Reasoning, "Take profit")

	snap := l.Snapshot(nil)
	require.Len(t, snap.ClosedTrades, 1)
	assert.InDelta(t, 20, snap.ClosedTrades[0].Profit, 0.001)
}

func TestCheckExitsHoldsInsideBand(t *testing.T) {
	l := NewLedger(1000)
	_, err := l.Execute(buyDecision("AAPL", 5, 100), 80)
	require.NoError(t, err)

	exits := l.CheckExits(map[string]float64{"AAPL": 101}, time.Now())
	assert.Empty(t, exits)
	assert.Contains(t, l.Snapshot(nil).Holdings, "AAPL")
}

func TestSnapshotValuesOpenPositions(t *testing.T) {
	l := NewLedger(1000)
	_, err := l.Execute(buyDecision("AAPL", 5, 100), 80)
	require.NoError(t, err)

	snap := l.Snapshot(map[string]float64{"AAPL": 120})
	assert.InDelta(t, 500+5*120, snap.PortfolioValue, 0.001)

	// missing price falls back to entry price
	snap = l.Snapshot(nil)
	assert.InDelta(t, 1000, snap.PortfolioValue, 0.001)
}
