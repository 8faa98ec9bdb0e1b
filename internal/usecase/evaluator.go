package usecase

import (
	"context"
	"time"

	"TradeSage/internal/domain/models"
	drepo "TradeSage/internal/domain/repository"
	dservice "TradeSage/internal/domain/service"
	"TradeSage/internal/engine/fusion"
	"TradeSage/internal/engine/pattern"
	"TradeSage/internal/engine/quant"
	"TradeSage/internal/services/features"
	"TradeSage/pkg/logger"
)

// minActionableConfidence is the floor below which BUY/SELL decisions are
// downgraded to HOLD before execution.
const minActionableConfidence = 65

// Evaluator runs one full signal evaluation for a ticker: pattern scan,
// factor fusion, optional AI arbitration and the quant risk overlay. The
// evaluation itself is pure; only the arbitration call can block, and it is
// timeout-bounded. Safe for concurrent use across tickers.
type Evaluator struct {
	detector   *pattern.Detector
	overlay    *quant.Overlay
	arbiter    dservice.Arbiter // nil disables arbitration
	ledger     dservice.Ledger
	metrics    drepo.Metrics
	log        *logger.Logger
	arbTimeout time.Duration
}

func NewEvaluator(
	detector *pattern.Detector,
	overlay *quant.Overlay,
	arbiter dservice.Arbiter,
	ledger dservice.Ledger,
	metrics drepo.Metrics,
	log *logger.Logger,
	arbTimeout time.Duration,
) *Evaluator {
	if arbTimeout <= 0 {
		arbTimeout = 20 * time.Second
	}
	return &Evaluator{
		detector:   detector,
		overlay:    overlay,
		arbiter:    arbiter,
		ledger:     ledger,
		metrics:    metrics,
		log:        log,
		arbTimeout: arbTimeout,
	}
}

// Evaluate advances one ticker through the evaluation state machine. It never
// fails: missing inputs degrade to zero factor scores, and any upstream
// trouble ends in a conservative HOLD.
func (e *Evaluator) Evaluate(ctx context.Context, req models.EvaluateRequest) *models.Evaluation {
	start := time.Now()
	market := req.Market
	ticker := req.Ticker
	if ticker == "" {
		ticker = market.Ticker
	}

	ev := &models.Evaluation{Ticker: ticker, State: models.StateNoSignal}

	// pattern scan
	patterns := e.detector.Detect(market.Bars)
	summary := pattern.ScoreAndDecide(patterns, market.RSI, market.MACD, market.MACDSignal)
	ev.State = models.StatePatternScan

	// factor scoring and fusion
	scores := models.FactorScores{
		Pattern:   fusion.PatternScore(summary),
		Indicator: fusion.IndicatorScore(market.RSI, market.MACD, market.MACDSignal),
		Sentiment: fusion.SentimentScore(req.Sentiment),
		Volume:    fusion.VolumeScore(market.Volume, market.AvgVolume),
	}
	portfolio := e.ledger.Snapshot(map[string]float64{ticker: market.Price})
	sig := fusion.Fuse(ticker, scores, patterns, portfolio.Balance, market.Price)
	ev.Signal = sig
	ev.State = models.StateFused

	// arbitration
	working := sig
	if sig.Escalate && e.arbitrationEnabled(req) {
		ev.State = models.StateEscalated
		working = e.arbitrate(ctx, ev, sig, market, req.Sentiment)
	}

	// risk overlay
	riskCtx := models.RiskContext{
		PortfolioValue:    portfolio.PortfolioValue,
		PastTradeOutcomes: portfolio.ClosedTrades,
		RecentPriceSeries: priceSeries(market),
		ReturnSample:      features.SeriesLogReturns(priceSeries(market)),
	}
	adjusted, vetoes := e.overlay.Apply(working, riskCtx, market.Price)
	for _, v := range vetoes {
		e.metrics.RecordVeto(v)
	}
	ev.Vetoes = vetoes
	ev.State = models.StateRiskAdjusted

	// actionable floor
	if adjusted.Decision != models.ActionHold && adjusted.Confidence < minActionableConfidence {
		adjusted.Decision = models.ActionHold
		adjusted.SuggestedQuantity = 0
		adjusted.Reasoning += "; confidence below actionable floor"
	}

	ev.Final = models.FinalDecision{
		Ticker:    ticker,
		Action:    adjusted.Decision,
		Quantity:  adjusted.SuggestedQuantity,
		Price:     market.Price,
		Reasoning: adjusted.Reasoning,
		Timestamp: time.Now().UTC(),
	}
	ev.Signal.Confidence = adjusted.Confidence
	ev.State = models.StateFinal

	e.metrics.RecordEvaluation(ticker, string(ev.Final.Action))
	e.metrics.RecordLatency("evaluate", time.Since(start).Seconds())
	return ev
}

func (e *Evaluator) arbitrationEnabled(req models.EvaluateRequest) bool {
	if e.arbiter == nil {
		return false
	}
	if req.Arbitrate == nil {
		return true
	}
	return *req.Arbitrate
}

// arbitrate consults the collaborator within the configured timeout. Any
// failure keeps the algorithmic signal and marks the escalation unfulfilled.
func (e *Evaluator) arbitrate(ctx context.Context, ev *models.Evaluation, sig models.Signal, market models.MarketSnapshot, sentiment *models.SentimentSnapshot) models.Signal {
	arbCtx, cancel := context.WithTimeout(ctx, e.arbTimeout)
	defer cancel()

	result, err := e.arbiter.Arbitrate(arbCtx, sig, market, sentiment)
	if err != nil {
		ev.ArbitrationFailed = true
		e.metrics.RecordError("arbitration")
		e.metrics.RecordEscalation(sig.Ticker, false)
		e.log.Warn("arbitration failed, keeping algorithmic signal",
			logger.String("ticker", sig.Ticker),
			logger.Error(err))
		return sig
	}

	ev.Arbitrated = true
	ev.State = models.StateArbitrated
	e.metrics.RecordEscalation(sig.Ticker, true)

	if !result.OverrideAlgorithm {
		return sig
	}
	out := sig
	out.Decision = result.Decision
	out.Confidence = result.Confidence
	if result.SuggestedQuantity > 0 {
		out.SuggestedQuantity = result.SuggestedQuantity
	}
	if result.Decision == models.ActionHold {
		out.SuggestedQuantity = 0
	}
	if result.Reasoning != "" {
		out.Reasoning = out.Reasoning + "; arbiter: " + result.Reasoning
	}
	return out
}

func priceSeries(market models.MarketSnapshot) []float64 {
	if len(market.PriceSeries) > 0 {
		return market.PriceSeries
	}
	if len(market.Bars) == 0 {
		return nil
	}
	out := make([]float64, len(market.Bars))
	for i, b := range market.Bars {
		out[i] = b.Close
	}
	return out
}
