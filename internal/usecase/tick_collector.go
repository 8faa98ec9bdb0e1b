package usecase

import (
	"context"

	"TradeSage/internal/domain/models"
	drepo "TradeSage/internal/domain/repository"
	dservice "TradeSage/internal/domain/service"
	mid "TradeSage/internal/middleware"
	"TradeSage/internal/services/marketdata"
	"TradeSage/pkg/logger"
)

// TickSink is the downstream of the realtime pipeline: it folds ticks into
// the in-memory bar aggregator, updates the last-price gauge, and checks the
// paper ledger for stop-loss and take-profit exits on every print.
type TickSink struct {
	agg     *marketdata.Aggregator
	ledger  dservice.Ledger
	proc    *DecisionProcessor
	metrics drepo.Metrics
	log     *logger.Logger
}

func NewTickSink(
	agg *marketdata.Aggregator,
	ledger dservice.Ledger,
	proc *DecisionProcessor,
	metrics drepo.Metrics,
	log *logger.Logger,
) *TickSink {
	return &TickSink{agg: agg, ledger: ledger, proc: proc, metrics: metrics, log: log}
}

// Process implements middleware.Proc.
func (s *TickSink) Process(ctx context.Context, t *models.Tick) error {
	s.agg.Add(t)
	s.metrics.RecordLastPrice(t.Ticker, t.Price)

	if s.ledger == nil {
		return nil
	}
	exits := s.ledger.CheckExits(map[string]float64{t.Ticker: t.Price}, t.Timestamp)
	for i := range exits {
		d := &exits[i]
		s.log.Info("exit triggered",
			logger.String("ticker", d.Ticker),
			logger.String("action", string(d.Action)),
			logger.String("reason", d.Reasoning),
		)
		if s.proc == nil {
			continue
		}
		if err := s.proc.Process(ctx, d); err != nil {
			s.log.Error("publish exit decision", logger.Error(err), logger.String("ticker", d.Ticker))
		}
	}
	return nil
}

// TickCollector drives the market stream: connect, subscribe the watchlist,
// and pump ticks through the realtime pipeline.
type TickCollector struct {
	stream    drepo.MarketStream
	pipe      *mid.RealtimePipeline
	metrics   drepo.Metrics
	watchlist []string
	log       *logger.Logger
}

func NewTickCollector(
	stream drepo.MarketStream,
	pipe *mid.RealtimePipeline,
	metrics drepo.Metrics,
	watchlist []string,
	log *logger.Logger,
) *TickCollector {
	return &TickCollector{
		stream:    stream,
		pipe:      pipe,
		metrics:   metrics,
		watchlist: watchlist,
		log:       log,
	}
}

// IsConnected reports the state of the underlying stream.
func (c *TickCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

func (c *TickCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx, c.watchlist); err != nil {
		return err
	}
	c.pipe.Start(ctx)
	tickCh, errCh := c.stream.Read(ctx)
	go c.consume(ctx, tickCh, errCh)
	return nil
}

func (c *TickCollector) consume(ctx context.Context, tickCh <-chan *models.Tick, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-errCh:
			if err != nil {
				c.metrics.RecordError("stream")
				c.log.Warn("stream error, reconnecting", logger.Error(err))
				_ = c.stream.Reconnect(ctx)
			}
		case t := <-tickCh:
			if t == nil {
				continue
			}
			_ = c.pipe.Process(ctx, t)
		}
	}
}

// Shutdown stops the pipeline and closes the stream.
func (c *TickCollector) Shutdown(ctx context.Context) error {
	c.pipe.Stop()
	return c.stream.Close()
}
