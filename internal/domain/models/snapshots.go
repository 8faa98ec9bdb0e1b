package models

import "time"

// MarketSnapshot is the caller-supplied market state for one evaluation.
// Optional fields use pointers: a missing indicator contributes a zero score
// rather than failing the evaluation.
type MarketSnapshot struct {
	Ticker      string    `json:"ticker"`
	Bars        []Bar     `json:"bars"`
	RSI         *float64  `json:"rsi,omitempty"`
	MACD        *float64  `json:"macd,omitempty"`
	MACDSignal  *float64  `json:"macd_signal,omitempty"`
	Volume      *int64    `json:"volume,omitempty"`
	AvgVolume   *int64    `json:"avg_volume,omitempty"`
	Price       float64   `json:"price"`
	PriceSeries []float64 `json:"price_series,omitempty"`
}

// SentimentSnapshot aggregates keyword-classified news counts.
type SentimentSnapshot struct {
	BullishCount  int `json:"bullish_count"`
	BearishCount  int `json:"bearish_count"`
	NeutralCount  int `json:"neutral_count"`
	TotalArticles int `json:"total_articles"`
}

// NewsArticle is one fetched headline, classified by the sentiment analyzer.
type NewsArticle struct {
	Title     string    `json:"title"`
	Summary   string    `json:"summary"`
	Source    string    `json:"source"`
	Link      string    `json:"link,omitempty"`
	Published time.Time `json:"published"`
	Sentiment string    `json:"sentiment,omitempty"`
}

// Holding is one open position in the paper portfolio.
type Holding struct {
	Quantity   int       `json:"quantity"`
	EntryPrice float64   `json:"entry_price"`
	EntryTime  time.Time `json:"entry_time"`
}

// TradeRecord is one executed paper trade, closed or opening.
type TradeRecord struct {
	Ticker     string    `json:"ticker"`
	Action     Action    `json:"action"`
	Quantity   int       `json:"quantity"`
	Price      float64   `json:"price"`
	Total      float64   `json:"total"`
	Profit     float64   `json:"profit"`
	Confidence int       `json:"confidence"`
	Reasoning  string    `json:"reasoning"`
	Timestamp  time.Time `json:"timestamp"`
}

// PortfolioSnapshot is a read-only view of the ledger taken once per
// evaluation. The overlay never mutates it.
type PortfolioSnapshot struct {
	Balance        float64            `json:"balance"`
	Holdings       map[string]Holding `json:"holdings"`
	ClosedTrades   []TradeRecord      `json:"closed_trades"`
	PortfolioValue float64            `json:"portfolio_value"`
}

// RiskContext is the input to the quant overlay, owned by the caller.
type RiskContext struct {
	PortfolioValue    float64
	PastTradeOutcomes []TradeRecord
	RecentPriceSeries []float64
	ReturnSample      []float64
}

// PriceLevel is one bid or ask level of the synthetic order book.
type PriceLevel struct {
	Price float64 `json:"price"`
	Size  float64 `json:"size"`
}
