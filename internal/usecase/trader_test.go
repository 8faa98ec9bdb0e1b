package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TradeSage/internal/domain/models"
	drepo "TradeSage/internal/domain/repository"
	"TradeSage/pkg/cache"
)

type fakeQueue struct {
	published []EvaluateSignalPayload
}

func (f *fakeQueue) PublishMessage(_ context.Context, _ string, payload interface{}) error {
	if p, ok := payload.(EvaluateSignalPayload); ok {
		f.published = append(f.published, p)
	}
	return nil
}

func TestTraderSweepEnqueuesHitsOnce(t *testing.T) {
	store := &fakeBarStore{bars: map[string][]models.Bar{
		"GOOD": engulfingBars(),
		"FLAT": flatBars(10, 50),
	}}
	svc := newTestSignalService(t, store)
	q := &fakeQueue{}

	tr := NewTrader(svc, q, cache.NewMemoryCache(), []string{"GOOD", "FLAT"}, time.Minute, drepo.TF1m, testLogger(t))

	tr.sweep(context.Background())
	require.Len(t, q.published, 1)
	assert.Equal(t, "GOOD", q.published[0].Ticker)

	// lock suppresses a duplicate enqueue within the interval
	tr.sweep(context.Background())
	assert.Len(t, q.published, 1)
}
