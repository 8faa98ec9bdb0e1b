package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"TradeSage/internal/domain/models"
	drepo "TradeSage/internal/domain/repository"
	"TradeSage/pkg/logger"
)

// DecisionsTopicHandler consumes published decisions from Kafka and lands
// them in ClickHouse. Runs only in kafka backend mode, where the publish path
// skips direct storage.
type DecisionsTopicHandler struct {
	topic string
	store drepo.DecisionStore
	log   *logger.Logger
}

func NewDecisionsTopicHandler(topic string, store drepo.DecisionStore, log *logger.Logger) *DecisionsTopicHandler {
	return &DecisionsTopicHandler{topic: topic, store: store, log: log}
}

func (h *DecisionsTopicHandler) Topic() string { return h.topic }

// decisionMessage mirrors the publisher's wire shape.
type decisionMessage struct {
	Ticker    string  `json:"ticker"`
	Action    string  `json:"action"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	Reasoning string  `json:"reasoning"`
	TS        int64   `json:"ts"`
}

func (h *DecisionsTopicHandler) Handle(ctx context.Context, data []byte) error {
	var msg decisionMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("unmarshal decision: %w", err)
	}
	if msg.Ticker == "" {
		return fmt.Errorf("decision missing ticker")
	}

	d := &models.FinalDecision{
		Ticker:    msg.Ticker,
		Action:    models.Action(msg.Action),
		Quantity:  msg.Quantity,
		Price:     msg.Price,
		Reasoning: msg.Reasoning,
		Timestamp: time.UnixMilli(msg.TS).UTC(),
	}
	if err := h.store.StoreDecision(ctx, d); err != nil {
		h.log.Error("store consumed decision",
			logger.String("ticker", d.Ticker),
			logger.Error(err))
		return err
	}
	return nil
}
