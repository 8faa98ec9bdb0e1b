package arbiter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"TradeSage/internal/domain/models"
	"TradeSage/internal/engine/quant"
	"TradeSage/internal/services/features"
	httpclient "TradeSage/pkg/http"
	"TradeSage/pkg/logger"
)

// volWindow is the lookback for the per-bar volatility fed to the
// Black-Litterman view strength.
const volWindow = 20

// Config for the arbitration collaborator.
type Config struct {
	BaseURL string        `yaml:"base_url" validate:"required,url"`
	APIKey  string        `yaml:"api_key"`
	Models  []string      `yaml:"models"` // tried in order
	Timeout time.Duration `yaml:"timeout" default:"20s"`
}

// HTTPArbiter consults an external LLM endpoint about escalated signals.
// Models are tried in configured order; a circuit breaker shields the
// upstream once failures pile up. Any failure is reported, never fatal; the
// evaluator keeps the algorithmic signal.
type HTTPArbiter struct {
	cfg     Config
	client  *httpclient.Client
	breaker *gobreaker.CircuitBreaker
	usage   *UsageTracker
	log     *logger.Logger
}

func NewHTTPArbiter(cfg Config, client *httpclient.Client, usage *UsageTracker, log *logger.Logger) *HTTPArbiter {
	if len(cfg.Models) == 0 {
		cfg.Models = []string{"default"}
	}
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "arbiter",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	return &HTTPArbiter{
		cfg:     cfg,
		client:  client,
		breaker: breaker,
		usage:   usage,
		log:     log,
	}
}

type arbitrationRequest struct {
	Model     string                `json:"model"`
	Ticker    string                `json:"ticker"`
	Signal    signalContext         `json:"algorithmic_analysis"`
	Market    marketContext         `json:"market_data"`
	Sentiment *sentimentContext     `json:"sentiment,omitempty"`
	Patterns  []models.PatternMatch `json:"patterns_detected"`
}

type signalContext struct {
	Decision       models.Action `json:"decision"`
	Confidence     int           `json:"confidence"`
	Reasoning      string        `json:"reasoning"`
	PatternScore   float64       `json:"pattern_score"`
	SentimentScore float64       `json:"sentiment_score"`
	ViewStrength   float64       `json:"view_strength"`
}

type marketContext struct {
	Price      float64  `json:"price"`
	Volume     *int64   `json:"volume,omitempty"`
	RSI        *float64 `json:"rsi,omitempty"`
	MACD       *float64 `json:"macd,omitempty"`
	MACDSignal *float64 `json:"macd_signal,omitempty"`
}

type sentimentContext struct {
	BullishCount int `json:"bullish_count"`
	BearishCount int `json:"bearish_count"`
	Total        int `json:"total_articles"`
}

type arbitrationResponse struct {
	Decision          string `json:"decision"`
	Confidence        int    `json:"confidence"`
	Reasoning         string `json:"reasoning"`
	SuggestedQuantity int    `json:"suggested_quantity"`
	OverrideAlgorithm bool   `json:"override_algorithm"`
}

// Arbitrate asks the collaborator to validate or override the algorithmic
// signal. Each configured model is tried once; the first parseable answer
// wins.
func (a *HTTPArbiter) Arbitrate(ctx context.Context, sig models.Signal, market models.MarketSnapshot, sentiment *models.SentimentSnapshot) (models.ArbitrationResult, error) {
	callNo := a.usage.RecordCall(time.Now())
	a.log.Debug("arbitration requested",
		logger.String("ticker", sig.Ticker),
		logger.Int("call_today", callNo))

	req := a.buildRequest(sig, market, sentiment)

	var lastErr error
	for _, model := range a.cfg.Models {
		req.Model = model
		result, err := a.callModel(ctx, req)
		if err != nil {
			lastErr = err
			a.log.Warn("arbitration model failed",
				logger.String("model", model),
				logger.Error(err))
			if ctx.Err() != nil {
				break
			}
			continue
		}
		result.Model = model
		return result, nil
	}
	if lastErr == nil {
		lastErr = models.ErrUpstreamUnavailable
	}
	return models.ArbitrationResult{}, fmt.Errorf("%w: %v", models.ErrUpstreamUnavailable, lastErr)
}

func (a *HTTPArbiter) buildRequest(sig models.Signal, market models.MarketSnapshot, sentiment *models.SentimentSnapshot) arbitrationRequest {
	vol := features.RealizedVolatility(features.ComputeLogReturns(market.Bars), volWindow, 1)
	req := arbitrationRequest{
		Ticker: sig.Ticker,
		Signal: signalContext{
			Decision:       sig.Decision,
			Confidence:     sig.Confidence,
			Reasoning:      sig.Reasoning,
			PatternScore:   sig.Scores.Pattern,
			SentimentScore: sig.Scores.Sentiment,
			ViewStrength:   quant.ViewStrength(sig.CompositeScore, vol),
		},
		Market: marketContext{
			Price:      market.Price,
			Volume:     market.Volume,
			RSI:        market.RSI,
			MACD:       market.MACD,
			MACDSignal: market.MACDSignal,
		},
		Patterns: sig.Patterns,
	}
	if sentiment != nil {
		req.Sentiment = &sentimentContext{
			BullishCount: sentiment.BullishCount,
			BearishCount: sentiment.BearishCount,
			Total:        sentiment.TotalArticles,
		}
	}
	return req
}

func (a *HTTPArbiter) callModel(ctx context.Context, req arbitrationRequest) (models.ArbitrationResult, error) {
	raw, err := a.breaker.Execute(func() (interface{}, error) {
		var body []byte
		callErr := a.client.SendAndParse(ctx, &httpclient.RequestOptions{
			Method: httpclient.MethodPost,
			URL:    strings.TrimRight(a.cfg.BaseURL, "/") + "/v1/arbitrate",
			Headers: map[string]string{
				"Authorization": "Bearer " + a.cfg.APIKey,
			},
			Body: req,
		}, &body)
		return body, callErr
	})
	if err != nil {
		return models.ArbitrationResult{}, err
	}

	var resp arbitrationResponse
	if err := json.Unmarshal(raw.([]byte), &resp); err != nil {
		return models.ArbitrationResult{}, fmt.Errorf("malformed arbitration response: %w", err)
	}
	return models.ArbitrationResult{
		Decision:          normalizeDecision(resp.Decision),
		Confidence:        clampConfidence(resp.Confidence),
		Reasoning:         resp.Reasoning,
		SuggestedQuantity: resp.SuggestedQuantity,
		OverrideAlgorithm: resp.OverrideAlgorithm,
	}, nil
}

// normalizeDecision maps collaborator vocabulary onto the decision enum.
// "IGNORE" is the collaborator's way of saying stand aside.
func normalizeDecision(s string) models.Action {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BUY":
		return models.ActionBuy
	case "SELL":
		return models.ActionSell
	default:
		return models.ActionHold
	}
}

func clampConfidence(c int) int {
	if c < 0 {
		return 0
	}
	if c > 100 {
		return 100
	}
	return c
}
