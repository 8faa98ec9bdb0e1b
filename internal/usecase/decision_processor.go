package usecase

import (
	"context"
	"fmt"
	"time"

	"TradeSage/internal/domain/models"
	drepo "TradeSage/internal/domain/repository"
)

// DecisionProcessor routes final decisions to the configured backend:
// published to Kafka for downstream consumers, or stored in ClickHouse
// directly.
type DecisionProcessor struct {
	pub     drepo.Publisher
	store   drepo.DecisionStore
	metrics drepo.Metrics
	backend string
}

func NewDecisionProcessor(
	pub drepo.Publisher,
	store drepo.DecisionStore,
	metrics drepo.Metrics,
	backend string,
) *DecisionProcessor {
	return &DecisionProcessor{
		pub:     pub,
		store:   store,
		metrics: metrics,
		backend: backend,
	}
}

// Process routes a single decision.
func (p *DecisionProcessor) Process(ctx context.Context, d *models.FinalDecision) error {
	if d == nil {
		return fmt.Errorf("decision is nil")
	}

	start := time.Now()
	var err error
	switch p.backend {
	case "kafka":
		err = p.pub.Publish(ctx, d)
	case "clickhouse":
		err = p.store.StoreDecision(ctx, d)
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}
	if err != nil {
		p.metrics.RecordError("process_decision")
		return fmt.Errorf("process decision: %w", err)
	}

	p.metrics.RecordLatency("process_decision", time.Since(start).Seconds())
	return nil
}

// ProcessBatch routes multiple decisions in one call.
func (p *DecisionProcessor) ProcessBatch(ctx context.Context, decisions []*models.FinalDecision) error {
	if len(decisions) == 0 {
		return nil
	}

	start := time.Now()
	var err error
	switch p.backend {
	case "kafka":
		err = p.pub.PublishBatch(ctx, decisions)
	case "clickhouse":
		err = p.store.StoreDecisionBatch(ctx, decisions)
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}
	if err != nil {
		p.metrics.RecordError("process_decision_batch")
		return fmt.Errorf("process decision batch: %w", err)
	}

	p.metrics.RecordLatency("process_decision_batch", time.Since(start).Seconds())
	return nil
}

// Close closes underlying resources if available.
func (p *DecisionProcessor) Close() {
	if p.pub != nil {
		_ = p.pub.Close()
	}
	if p.store != nil {
		_ = p.store.Close()
	}
}
