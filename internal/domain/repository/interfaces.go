package repository

import (
	"context"
	"time"

	"TradeSage/internal/domain/models"
)

// MarketStream is a live tick feed for the watchlist tickers.
type MarketStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context, tickers []string) error
	Read(ctx context.Context) (<-chan *models.Tick, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// Publisher emits final decisions to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, d *models.FinalDecision) error
	PublishBatch(ctx context.Context, decisions []*models.FinalDecision) error
	Close() error
}

// DecisionStore persists evaluations and executed paper trades.
type DecisionStore interface {
	Init(ctx context.Context) error // ensure tables, health checks
	StoreDecision(ctx context.Context, d *models.FinalDecision) error
	StoreDecisionBatch(ctx context.Context, decisions []*models.FinalDecision) error
	StoreTrade(ctx context.Context, tr *models.TradeRecord) error
	QueryDecisions(ctx context.Context, ticker string, from, to time.Time, limit int) ([]*models.FinalDecision, error)
	QueryTrades(ctx context.Context, ticker string, limit int) ([]*models.TradeRecord, error)
	Health(ctx context.Context) error // ping
	Close() error
}

// Metrics is the engine's instrumentation sink.
type Metrics interface {
	RecordEvaluation(ticker string, decision string)
	RecordEscalation(ticker string, arbitrated bool)
	RecordVeto(kind string)
	RecordError(kind string)
	RecordLastPrice(ticker string, price float64)
	RecordLatency(op string, seconds float64)
}
