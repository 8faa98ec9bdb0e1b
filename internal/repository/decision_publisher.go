package repository

import (
	"context"

	"TradeSage/internal/domain/models"
	"TradeSage/internal/domain/repository"
	pkgkafka "TradeSage/pkg/kafka"
)

// KafkaDecisionPublisher implements Publisher over the shared Kafka producer.
// Decisions are keyed by ticker so per-ticker ordering survives partitioning.
type KafkaDecisionPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaDecisionPublisher(producer *pkgkafka.Producer, topic string) repository.Publisher {
	return &KafkaDecisionPublisher{producer: producer, topic: topic}
}

func (p *KafkaDecisionPublisher) Publish(ctx context.Context, d *models.FinalDecision) error {
	return p.producer.Publish(ctx, p.topic, []byte(d.Ticker), decisionPayload(d))
}

func (p *KafkaDecisionPublisher) PublishBatch(ctx context.Context, decisions []*models.FinalDecision) error {
	if len(decisions) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(decisions))
	for i, d := range decisions {
		msgs[i] = pkgkafka.Message{
			Key:   []byte(d.Ticker),
			Value: decisionPayload(d),
		}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaDecisionPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

func decisionPayload(d *models.FinalDecision) map[string]interface{} {
	return map[string]interface{}{
		"ticker":    d.Ticker,
		"action":    string(d.Action),
		"quantity":  d.Quantity,
		"price":     d.Price,
		"reasoning": d.Reasoning,
		"ts":        d.Timestamp.UnixMilli(),
	}
}
