package usecase

import (
	"context"
	"fmt"
	"time"

	"TradeSage/internal/domain/models"
	drepo "TradeSage/internal/domain/repository"
)

// BarsUseCase provides business logic for retrieving historical bars.
type BarsUseCase struct {
	store drepo.BarStore
}

func NewBarsUseCase(store drepo.BarStore) *BarsUseCase {
	return &BarsUseCase{store: store}
}

type GetBarsParams struct {
	Ticker    string
	From      time.Time
	To        time.Time
	Timeframe drepo.Timeframe
	Limit     int
}

type GetBarsResult struct {
	Ticker    string
	Timeframe string
	From      time.Time
	To        time.Time
	Count     int
	Bars      []models.Bar
}

func (uc *BarsUseCase) GetBars(ctx context.Context, p GetBarsParams) (*GetBarsResult, error) {
	if p.Ticker == "" {
		return nil, fmt.Errorf("ticker required")
	}
	if p.From.After(p.To) {
		return nil, fmt.Errorf("from must be <= to")
	}
	if p.Limit <= 0 {
		p.Limit = 10000
	}
	if p.Limit > 50000 {
		p.Limit = 50000
	}

	bars, err := uc.store.GetBars(ctx, p.Ticker, p.From, p.To, p.Timeframe)
	if err != nil {
		return nil, fmt.Errorf("get bars: %w", err)
	}
	if len(bars) > p.Limit {
		bars = bars[:p.Limit]
	}

	return &GetBarsResult{
		Ticker:    p.Ticker,
		Timeframe: string(p.Timeframe),
		From:      p.From,
		To:        p.To,
		Count:     len(bars),
		Bars:      bars,
	}, nil
}
