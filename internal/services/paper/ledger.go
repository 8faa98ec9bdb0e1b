package paper

import (
	"errors"
	"sync"
	"time"

	"TradeSage/internal/domain/models"
)

// Trading rules. Buys below the confidence floor are refused; open positions
// are closed automatically at the stop-loss or take-profit boundary.
const (
	DefaultInitialBalance = 1000.0

	buyConfidenceFloor = 70
	stopLossPct        = -2.0
	takeProfitPct      = 4.0
)

var (
	ErrAlreadyHolding    = errors.New("already holding position")
	ErrNotHolding        = errors.New("no open position")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrLowConfidence     = errors.New("confidence below buy floor")
	ErrNoAction          = errors.New("nothing to execute")
)

// Ledger is an in-memory paper portfolio. One writer at a time; all methods
// are safe for concurrent use and Snapshot returns a consistent copy.
type Ledger struct {
	mu       sync.RWMutex
	balance  float64
	holdings map[string]models.Holding
	history  []models.TradeRecord
}

func NewLedger(initialBalance float64) *Ledger {
	if initialBalance <= 0 {
		initialBalance = DefaultInitialBalance
	}
	return &Ledger{
		balance:  initialBalance,
		holdings: make(map[string]models.Holding),
	}
}

// Execute applies a final decision to the portfolio. BUY opens at most one
// position per ticker and resizes down when the suggested quantity exceeds
// the balance. SELL closes the whole position. HOLD is a no-op error so the
// caller can tell nothing happened.
func (l *Ledger) Execute(d models.FinalDecision, confidence int) (models.TradeRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch d.Action {
	case models.ActionBuy:
		return l.buy(d, confidence)
	case models.ActionSell:
		return l.sell(d, confidence)
	default:
		return models.TradeRecord{}, ErrNoAction
	}
}

func (l *Ledger) buy(d models.FinalDecision, confidence int) (models.TradeRecord, error) {
	if confidence < buyConfidenceFloor {
		return models.TradeRecord{}, ErrLowConfidence
	}
	if _, held := l.holdings[d.Ticker]; held {
		return models.TradeRecord{}, ErrAlreadyHolding
	}
	if d.Price <= 0 {
		return models.TradeRecord{}, ErrNoAction
	}

	qty := d.Quantity
	if qty <= 0 {
		// default allocation: 20% of balance, or everything when that
		// cannot afford a single share
		alloc := l.balance * 0.20
		if alloc < d.Price {
			alloc = l.balance
		}
		qty = int(alloc / d.Price)
	} else if float64(qty)*d.Price > l.balance {
		qty = int(l.balance / d.Price)
	}
	if qty <= 0 {
		return models.TradeRecord{}, ErrInsufficientFunds
	}

	cost := float64(qty) * d.Price
	l.balance -= cost
	l.holdings[d.Ticker] = models.Holding{
		Quantity:   qty,
		EntryPrice: d.Price,
		EntryTime:  d.Timestamp,
	}
	tr := models.TradeRecord{
		Ticker:     d.Ticker,
		Action:     models.ActionBuy,
		Quantity:   qty,
		Price:      d.Price,
		Total:      cost,
		Confidence: confidence,
		Reasoning:  d.Reasoning,
		Timestamp:  d.Timestamp,
	}
	l.history = append(l.history, tr)
	return tr, nil
}

func (l *Ledger) sell(d models.FinalDecision, confidence int) (models.TradeRecord, error) {
	holding, held := l.holdings[d.Ticker]
	if !held {
		return models.TradeRecord{}, ErrNotHolding
	}

	revenue := float64(holding.Quantity) * d.Price
	profit := revenue - float64(holding.Quantity)*holding.EntryPrice
	l.balance += revenue
	delete(l.holdings, d.Ticker)

	tr := models.TradeRecord{
		Ticker:     d.Ticker,
		Action:     models.ActionSell,
		Quantity:   holding.Quantity,
		Price:      d.Price,
		Total:      revenue,
		Profit:     profit,
		Confidence: confidence,
		Reasoning:  d.Reasoning,
		Timestamp:  d.Timestamp,
	}
	l.history = append(l.history, tr)
	return tr, nil
}

// CheckExits closes positions that crossed the stop-loss or take-profit
// boundary at the supplied prices and returns the executed sell decisions.
func (l *Ledger) CheckExits(prices map[string]float64, now time.Time) []models.FinalDecision {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []models.FinalDecision
	for ticker, holding := range l.holdings {
		price, ok := prices[ticker]
		if !ok || price <= 0 || holding.EntryPrice <= 0 {
			continue
		}
		pctChange := (price - holding.EntryPrice) / holding.EntryPrice * 100

		var reason string
		switch {
		case pctChange <= stopLossPct:
			reason = "Stop loss triggered"
		case pctChange >= takeProfitPct:
			reason = "Take profit triggered"
		default:
			continue
		}

		d := models.FinalDecision{
			Ticker:    ticker,
			Action:    models.ActionSell,
			Quantity:  holding.Quantity,
			Price:     price,
			Reasoning: reason,
			Timestamp: now,
		}
		if _, err := l.sell(d, 0); err == nil {
			out = append(out, d)
		}
	}
	return out
}

// Snapshot returns a consistent read-only copy of the portfolio. Current
// prices value open positions; a missing price falls back to the entry price.
func (l *Ledger) Snapshot(prices map[string]float64) models.PortfolioSnapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()

	holdings := make(map[string]models.Holding, len(l.holdings))
	value := l.balance
	for ticker, h := range l.holdings {
		holdings[ticker] = h
		price := h.EntryPrice
		if p, ok := prices[ticker]; ok && p > 0 {
			price = p
		}
		value += float64(h.Quantity) * price
	}

	closed := make([]models.TradeRecord, 0, len(l.history))
	for _, tr := range l.history {
		if tr.Action == models.ActionSell {
			closed = append(closed, tr)
		}
	}

	return models.PortfolioSnapshot{
		Balance:        l.balance,
		Holdings:       holdings,
		ClosedTrades:   closed,
		PortfolioValue: value,
	}
}

// History returns a copy of all executed trades, oldest first.
func (l *Ledger) History() []models.TradeRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]models.TradeRecord, len(l.history))
	copy(out, l.history)
	return out
}
