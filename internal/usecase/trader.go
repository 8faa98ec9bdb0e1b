package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"TradeSage/internal/domain/models"
	drepo "TradeSage/internal/domain/repository"
	dservice "TradeSage/internal/domain/service"
	"TradeSage/internal/services/paper"
	"TradeSage/pkg/cache"
	"TradeSage/pkg/logger"
	"TradeSage/pkg/queue"
)

// TypeEvaluateSignal is the queue message type for full signal evaluations.
const TypeEvaluateSignal = "signal.evaluate"

// defaultEvaluationBars is the bar window handed to the evaluation pipeline.
const defaultEvaluationBars = 50

// EvaluateSignalPayload is the queue payload for one evaluation.
type EvaluateSignalPayload struct {
	Ticker string `json:"ticker"`
	TF     string `json:"tf,omitempty"`
}

// EvaluateSignalJob runs a full evaluation for a ticker, executes the
// resulting decision against the paper ledger, and publishes it downstream.
type EvaluateSignalJob struct {
	signals *SignalService
	ledger  dservice.Ledger
	proc    *DecisionProcessor
	metrics drepo.Metrics
	log     *logger.Logger
}

func NewEvaluateSignalJob(
	signals *SignalService,
	ledger dservice.Ledger,
	proc *DecisionProcessor,
	metrics drepo.Metrics,
	log *logger.Logger,
) *EvaluateSignalJob {
	return &EvaluateSignalJob{signals: signals, ledger: ledger, proc: proc, metrics: metrics, log: log}
}

func (j *EvaluateSignalJob) Name() string { return "evaluate-signal" }
func (j *EvaluateSignalJob) Type() string { return TypeEvaluateSignal }

func (j *EvaluateSignalJob) Handle(ctx context.Context, payload interface{}) error {
	p, err := queue.ParsePayload[EvaluateSignalPayload](payload)
	if err != nil {
		return fmt.Errorf("parse payload: %w", err)
	}
	if p.Ticker == "" {
		return fmt.Errorf("ticker required")
	}

	ev, err := j.signals.Evaluate(ctx, models.SignalRequest{
		Ticker: p.Ticker,
		N:      defaultEvaluationBars,
		TF:     p.TF,
	})
	if err != nil {
		return fmt.Errorf("evaluate %s: %w", p.Ticker, err)
	}

	if ev.Final.Action != models.ActionHold {
		trade, execErr := j.ledger.Execute(ev.Final, ev.Signal.Confidence)
		switch {
		case execErr == nil:
			j.log.Info("paper trade executed",
				logger.String("ticker", trade.Ticker),
				logger.String("action", string(trade.Action)),
				logger.Int("quantity", trade.Quantity))
		case isLedgerReject(execErr):
			// portfolio constraints are final, not retryable
			j.log.Debug("trade rejected",
				logger.String("ticker", p.Ticker),
				logger.Error(execErr))
		default:
			return fmt.Errorf("execute %s: %w", p.Ticker, execErr)
		}
	}

	if err := j.proc.Process(ctx, &ev.Final); err != nil {
		return fmt.Errorf("publish decision: %w", err)
	}
	return nil
}

func isLedgerReject(err error) bool {
	return errors.Is(err, paper.ErrAlreadyHolding) ||
		errors.Is(err, paper.ErrNotHolding) ||
		errors.Is(err, paper.ErrInsufficientFunds) ||
		errors.Is(err, paper.ErrLowConfidence) ||
		errors.Is(err, paper.ErrNoAction)
}

// Trader sweeps the watchlist on an interval. Tickers with an actionable
// pattern verdict are handed to the evaluation queue; the heavy pipeline
// never runs inline with the sweep.
type Trader struct {
	signals   *SignalService
	queue     queue.QueueService
	locks     cache.Service
	watchlist []string
	interval  time.Duration
	tf        drepo.Timeframe
	log       *logger.Logger
}

func NewTrader(
	signals *SignalService,
	q queue.QueueService,
	locks cache.Service,
	watchlist []string,
	interval time.Duration,
	tf drepo.Timeframe,
	log *logger.Logger,
) *Trader {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Trader{
		signals:   signals,
		queue:     q,
		locks:     locks,
		watchlist: watchlist,
		interval:  interval,
		tf:        tf,
		log:       log,
	}
}

// Run blocks until ctx is cancelled.
func (t *Trader) Run(ctx context.Context) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	t.log.Info("trader loop started",
		logger.Int("watchlist", len(t.watchlist)),
		logger.Duration("interval", t.interval))

	for {
		select {
		case <-ctx.Done():
			t.log.Info("trader loop stopped")
			return
		case <-ticker.C:
			t.sweep(ctx)
		}
	}
}

func (t *Trader) sweep(ctx context.Context) {
	hits := t.signals.QuickScan(ctx, t.watchlist, t.tf)
	for _, hit := range hits {
		// one in-flight evaluation per ticker per interval
		if t.locks != nil {
			locked, err := t.locks.TryLock(ctx, "scan:"+hit.Ticker, t.interval)
			if err != nil {
				t.log.Warn("scan lock", logger.String("ticker", hit.Ticker), logger.Error(err))
			} else if !locked {
				continue
			}
		}
		payload := EvaluateSignalPayload{Ticker: hit.Ticker, TF: string(t.tf)}
		if err := t.queue.PublishMessage(ctx, TypeEvaluateSignal, payload); err != nil {
			t.log.Error("enqueue evaluation",
				logger.String("ticker", hit.Ticker),
				logger.Error(err))
			continue
		}
		t.log.Info("scan hit queued",
			logger.String("ticker", hit.Ticker),
			logger.String("decision", string(hit.Decision)),
			logger.Int("confidence", hit.Confidence),
			logger.String("pattern", hit.Pattern))
	}
}
