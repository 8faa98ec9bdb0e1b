package models

// Requests for the engine HTTP endpoints. Defined in domain for consistency
// and reuse; bound and validated by pkg/http.

type SignalRequest struct {
	Ticker string `query:"ticker" json:"ticker" validate:"required"`
	N      int    `query:"n" json:"n" default:"60" validate:"gte=3,lte=1000"`
	TF     string `query:"tf" json:"tf" default:"1m" validate:"oneof=1s 1m 5m"`
}

type PatternsRequest struct {
	Ticker string `query:"ticker" json:"ticker" validate:"required"`
	N      int    `query:"n" json:"n" default:"20" validate:"gte=3,lte=1000"`
	TF     string `query:"tf" json:"tf" default:"1m" validate:"oneof=1s 1m 5m"`
}

// EvaluateRequest carries caller-supplied snapshots for one evaluation cycle.
type EvaluateRequest struct {
	Ticker    string             `json:"ticker" validate:"required"`
	Market    MarketSnapshot     `json:"market" validate:"required"`
	Sentiment *SentimentSnapshot `json:"sentiment,omitempty"`
	Arbitrate *bool              `json:"arbitrate,omitempty" default:"true"`
}

type OBIRequest struct {
	Bids []PriceLevel `json:"bids" validate:"required"`
	Asks []PriceLevel `json:"asks" validate:"required"`
}

type VaRRequest struct {
	PortfolioValue float64   `json:"portfolio_value" validate:"gt=0"`
	Returns        []float64 `json:"returns" validate:"required,min=2"`
	Confidence     float64   `json:"confidence" default:"0.95" validate:"gt=0,lt=1"`
}

type TrajectoryRequest struct {
	Shares  int `query:"shares" json:"shares" validate:"required,gt=0"`
	Minutes int `query:"minutes" json:"minutes" default:"15" validate:"gte=1,lte=390"`
}
