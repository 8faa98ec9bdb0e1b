package service

import (
	"context"
	"time"

	"TradeSage/internal/domain/models"
)

// Arbiter is the external AI collaborator consulted on escalated signals.
// Implementations must honor ctx cancellation; the evaluator treats any
// error or timeout as "no arbitration" and keeps the algorithmic signal.
type Arbiter interface {
	Arbitrate(ctx context.Context, sig models.Signal, market models.MarketSnapshot, sentiment *models.SentimentSnapshot) (models.ArbitrationResult, error)
}

// SentimentAnalyzer classifies fetched headlines into bullish/bearish counts.
type SentimentAnalyzer interface {
	Analyze(articles []models.NewsArticle) models.SentimentSnapshot
}

// NewsSource fetches recent headlines for a ticker.
type NewsSource interface {
	Fetch(ctx context.Context, ticker string, limit int) ([]models.NewsArticle, error)
}

// Ledger is the paper-trading portfolio. One writer at a time; Snapshot
// returns a consistent read-only copy for concurrent evaluations.
type Ledger interface {
	Snapshot(prices map[string]float64) models.PortfolioSnapshot
	Execute(d models.FinalDecision, confidence int) (models.TradeRecord, error)
	CheckExits(prices map[string]float64, now time.Time) []models.FinalDecision
}
