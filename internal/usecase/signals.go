package usecase

import (
	"context"
	"fmt"
	"time"

	"TradeSage/internal/domain/models"
	drepo "TradeSage/internal/domain/repository"
	dservice "TradeSage/internal/domain/service"
	"TradeSage/internal/engine/pattern"
	"TradeSage/internal/services/features"
	"TradeSage/pkg/logger"
)

// quickScanConfidenceFloor filters scan results to actionable ones.
const quickScanConfidenceFloor = 60

// SignalService builds market snapshots from the bar store and drives full
// evaluations for the HTTP surface.
type SignalService struct {
	store     drepo.BarStore
	detector  *pattern.Detector
	evaluator *Evaluator
	news      dservice.NewsSource // nil disables sentiment
	sentiment dservice.SentimentAnalyzer
	log       *logger.Logger
}

func NewSignalService(
	store drepo.BarStore,
	detector *pattern.Detector,
	evaluator *Evaluator,
	news dservice.NewsSource,
	sentiment dservice.SentimentAnalyzer,
	log *logger.Logger,
) *SignalService {
	return &SignalService{
		store:     store,
		detector:  detector,
		evaluator: evaluator,
		news:      news,
		sentiment: sentiment,
		log:       log,
	}
}

// Snapshot assembles a MarketSnapshot for a ticker from stored bars,
// computing the momentum indicators the engine consumes.
func (s *SignalService) Snapshot(ctx context.Context, ticker string, n int, tf drepo.Timeframe) (models.MarketSnapshot, error) {
	bars, err := s.store.GetLatestNBars(ctx, ticker, n, tf)
	if err != nil {
		return models.MarketSnapshot{}, fmt.Errorf("load bars: %w", err)
	}
	if len(bars) == 0 {
		return models.MarketSnapshot{}, models.ErrInsufficientData
	}

	snap := models.MarketSnapshot{
		Ticker: ticker,
		Bars:   bars,
		Price:  bars[len(bars)-1].Close,
	}
	snap.RSI = features.RSI(bars, features.RSILength)
	snap.MACD, snap.MACDSignal = features.MACD(bars)
	last := bars[len(bars)-1].Volume
	snap.Volume = &last
	snap.AvgVolume = features.AvgVolume(bars)

	if series, err := s.store.GetPriceSeries(ctx, ticker, 100, tf); err == nil && len(series) > 0 {
		snap.PriceSeries = series
	}
	return snap, nil
}

// Evaluate runs the full pipeline for one ticker from stored data. A failed
// upstream fetch collapses to a final HOLD with zero confidence; the error is
// returned alongside for the caller to log.
func (s *SignalService) Evaluate(ctx context.Context, req models.SignalRequest) (*models.Evaluation, error) {
	tf := drepo.NormalizeTimeframe(req.TF)
	market, err := s.Snapshot(ctx, req.Ticker, req.N, tf)
	if err != nil {
		return collapsedEvaluation(req.Ticker), err
	}

	evalReq := models.EvaluateRequest{
		Ticker:    req.Ticker,
		Market:    market,
		Sentiment: s.fetchSentiment(ctx, req.Ticker),
	}
	return s.evaluator.Evaluate(ctx, evalReq), nil
}

// EvaluateSnapshot runs the pipeline on caller-supplied snapshots.
func (s *SignalService) EvaluateSnapshot(ctx context.Context, req models.EvaluateRequest) *models.Evaluation {
	return s.evaluator.Evaluate(ctx, req)
}

// Patterns returns the detected patterns and their aggregate verdict for a
// ticker's latest bar window.
func (s *SignalService) Patterns(ctx context.Context, req models.PatternsRequest) ([]models.PatternMatch, pattern.Summary, error) {
	tf := drepo.NormalizeTimeframe(req.TF)
	bars, err := s.store.GetLatestNBars(ctx, req.Ticker, req.N, tf)
	if err != nil {
		return nil, pattern.Summary{}, fmt.Errorf("load bars: %w", err)
	}
	matches := s.detector.Detect(bars)
	summary := pattern.ScoreAndDecide(matches, features.RSI(bars, features.RSILength), nil, nil)
	return matches, summary, nil
}

// ScanResult is one actionable hit from a watchlist sweep.
type ScanResult struct {
	Ticker     string        `json:"ticker"`
	Decision   models.Action `json:"decision"`
	Confidence int           `json:"confidence"`
	Pattern    string        `json:"pattern,omitempty"`
}

// QuickScan sweeps tickers with a pattern-only check, no arbitration and no
// news. Failed tickers are skipped.
func (s *SignalService) QuickScan(ctx context.Context, tickers []string, tf drepo.Timeframe) []ScanResult {
	var out []ScanResult
	for _, ticker := range tickers {
		bars, err := s.store.GetLatestNBars(ctx, ticker, 20, tf)
		if err != nil {
			s.log.Debug("quick scan skip", logger.String("ticker", ticker), logger.Error(err))
			continue
		}
		matches := s.detector.Detect(bars)
		summary := pattern.ScoreAndDecide(matches, nil, nil, nil)
		if summary.Decision == models.ActionHold || summary.Confidence < quickScanConfidenceFloor {
			continue
		}
		r := ScanResult{Ticker: ticker, Decision: summary.Decision, Confidence: summary.Confidence}
		if len(matches) > 0 {
			r.Pattern = matches[0].Name
		}
		out = append(out, r)
	}
	return out
}

// fetchSentiment is best-effort: no news source or a fetch failure simply
// yields no sentiment factor.
func (s *SignalService) fetchSentiment(ctx context.Context, ticker string) *models.SentimentSnapshot {
	if s.news == nil || s.sentiment == nil {
		return nil
	}
	fetchCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	articles, err := s.news.Fetch(fetchCtx, ticker, 15)
	if err != nil || len(articles) == 0 {
		if err != nil {
			s.log.Debug("news fetch failed", logger.String("ticker", ticker), logger.Error(err))
		}
		return nil
	}
	snap := s.sentiment.Analyze(articles)
	return &snap
}

func collapsedEvaluation(ticker string) *models.Evaluation {
	return &models.Evaluation{
		Ticker: ticker,
		State:  models.StateFinal,
		Signal: models.Signal{
			Ticker:     ticker,
			Decision:   models.ActionHold,
			Confidence: 0,
			Reasoning:  "market data unavailable",
			Timestamp:  time.Now().UTC(),
		},
		Final: models.FinalDecision{
			Ticker:    ticker,
			Action:    models.ActionHold,
			Reasoning: "market data unavailable",
			Timestamp: time.Now().UTC(),
		},
	}
}
