package fusion

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"TradeSage/internal/domain/models"
	"TradeSage/internal/engine/pattern"
)

func fp(v float64) *float64 { return &v }
func ip(v int64) *int64     { return &v }

func TestIndicatorScore(t *testing.T) {
	assert.Zero(t, IndicatorScore(nil, nil, nil))
	assert.InDelta(t, 10, IndicatorScore(fp(25), nil, nil), 0.001)
	assert.InDelta(t, -20, IndicatorScore(fp(80), nil, nil), 0.001)
	assert.Zero(t, IndicatorScore(fp(50), nil, nil))
	// MACD spread capped at 30
	assert.InDelta(t, 5, IndicatorScore(nil, fp(1.5), fp(1.0)), 0.001)
	assert.InDelta(t, 30, IndicatorScore(nil, fp(10), fp(1)), 0.001)
	assert.InDelta(t, -5, IndicatorScore(nil, fp(1.0), fp(1.5)), 0.001)
	// oversold plus bullish crossover stack
	assert.InDelta(t, 15, IndicatorScore(fp(25), fp(1.5), fp(1.0)), 0.001)
}

func TestSentimentScore(t *testing.T) {
	assert.Zero(t, SentimentScore(nil))
	assert.Zero(t, SentimentScore(&models.SentimentSnapshot{}))

	// 7/10 bullish vs 1/10 bearish: 70pp vs 10pp, dominates
	s := &models.SentimentSnapshot{BullishCount: 7, BearishCount: 1, NeutralCount: 2, TotalArticles: 10}
	assert.InDelta(t, 70, SentimentScore(s), 0.001)

	s = &models.SentimentSnapshot{BullishCount: 1, BearishCount: 6, NeutralCount: 3, TotalArticles: 10}
	assert.InDelta(t, -60, SentimentScore(s), 0.001)

	// 5 vs 4 of 10: 10pp gap, below the 20pp dominance bar
	s = &models.SentimentSnapshot{BullishCount: 5, BearishCount: 4, NeutralCount: 1, TotalArticles: 10}
	assert.Zero(t, SentimentScore(s))
}

func TestVolumeScore(t *testing.T) {
	assert.Zero(t, VolumeScore(nil, nil))
	assert.Zero(t, VolumeScore(ip(100), ip(0)))
	assert.InDelta(t, 30, VolumeScore(ip(250), ip(100)), 0.001)
	assert.InDelta(t, 20, VolumeScore(ip(160), ip(100)), 0.001)
	assert.InDelta(t, 10, VolumeScore(ip(130), ip(100)), 0.001)
	assert.Zero(t, VolumeScore(ip(100), ip(100)))
	assert.InDelta(t, -10, VolumeScore(ip(70), ip(100)), 0.001)
	assert.InDelta(t, -20, VolumeScore(ip(40), ip(100)), 0.001)
}

func TestPatternScore(t *testing.T) {
	assert.Zero(t, PatternScore(pattern.Summary{Decision: models.ActionHold}))
	s := pattern.Summary{Decision: models.ActionBuy, BullishScore: 3.0}
	assert.InDelta(t, 60, PatternScore(s), 0.001)
	s = pattern.Summary{Decision: models.ActionSell, BearishScore: 6.0}
	assert.InDelta(t, -100, PatternScore(s), 0.001) // clamped
}

func TestFuseStrongBuy(t *testing.T) {
	scores := models.FactorScores{Pattern: 80, Indicator: 30, Sentiment: 20, Volume: 20}
	// composite = 28 + 7.5 + 4 + 4 = 43.5
	sig := Fuse("AAPL", scores, nil, 10000, 100)

	assert.Equal(t, models.ActionBuy, sig.Decision)
	assert.InDelta(t, 43.5, sig.CompositeScore, 0.001)
	assert.Equal(t, 95, sig.Confidence) // min(95, 60+43.5) = 95 (int truncation of 103.5)
	assert.False(t, sig.Escalate)
	// conf >= 85 tier: 30% of 10000 at price 100
	assert.Equal(t, 30, sig.SuggestedQuantity)
}

func TestFuseModerateBuyTier(t *testing.T) {
	scores := models.FactorScores{Pattern: 60, Indicator: 10, Sentiment: 0, Volume: 0}
	// composite = 21 + 2.5 = 23.5 -> BUY conf min(80, 50+23.5) = 73
	sig := Fuse("AAPL", scores, nil, 10000, 100)
	assert.Equal(t, models.ActionBuy, sig.Decision)
	assert.Equal(t, 73, sig.Confidence)
	// all factors agree and conf >= 60, so no escalation
	assert.False(t, sig.Escalate)
}

func TestFuseSellMirror(t *testing.T) {
	scores := models.FactorScores{Pattern: -80, Indicator: -30, Sentiment: -20, Volume: -20}
	sig := Fuse("AAPL", scores, nil, 10000, 100)
	assert.Equal(t, models.ActionSell, sig.Decision)
	assert.InDelta(t, -43.5, sig.CompositeScore, 0.001)
	assert.Equal(t, 95, sig.Confidence)
}

func TestFuseHoldLowComposite(t *testing.T) {
	scores := models.FactorScores{Pattern: 10, Indicator: 5, Sentiment: 0, Volume: 0}
	// composite = 3.5 + 1.25 = 4.75 -> HOLD conf 45
	sig := Fuse("AAPL", scores, nil, 10000, 100)
	assert.Equal(t, models.ActionHold, sig.Decision)
	assert.Equal(t, 45, sig.Confidence)
	assert.True(t, sig.Escalate)
	assert.Zero(t, sig.SuggestedQuantity)
}

func TestContradictionFactorSet(t *testing.T) {
	// pattern up hard, indicator down: contradiction
	assert.True(t, contradiction(models.FactorScores{Pattern: 60, Indicator: -30}))
	assert.True(t, contradiction(models.FactorScores{Pattern: -40, Sentiment: 25}))
	// volume disagreeing alone is not a contradiction
	assert.False(t, contradiction(models.FactorScores{Indicator: 15, Volume: -30}))
	assert.False(t, contradiction(models.FactorScores{Pattern: 60, Volume: -30}))
	// below the +-10 bar nothing registers
	assert.False(t, contradiction(models.FactorScores{Pattern: 9, Indicator: -9}))
}

func TestFuseContradictionEscalates(t *testing.T) {
	// pattern score +60, indicator -30: factors disagree, escalation fires
	scores := models.FactorScores{Pattern: 60, Indicator: -30, Sentiment: 0, Volume: 0}
	sig := Fuse("AAPL", scores, nil, 10000, 100)
	assert.True(t, sig.Escalate)
}

func TestFuseContradictionEscalatesDespiteConfidence(t *testing.T) {
	// composite = 23.1 - 3 = 20.1 -> BUY conf 70; the strong-pattern
	// short-circuit needs conf > 70, so the contradiction still escalates
	scores := models.FactorScores{Pattern: 66, Indicator: -12, Sentiment: 0, Volume: 0}
	sig := Fuse("AAPL", scores, nil, 10000, 100)
	assert.Equal(t, models.ActionBuy, sig.Decision)
	assert.Equal(t, 70, sig.Confidence)
	assert.True(t, sig.Escalate)
}

func TestFuseStrongPatternShortCircuitsContradiction(t *testing.T) {
	scores := models.FactorScores{Pattern: 90, Indicator: 40, Sentiment: -15, Volume: 30}
	// composite = 31.5 + 10 - 3 + 6 = 44.5 -> BUY conf min(95, 104) = 95
	sig := Fuse("AAPL", scores, nil, 10000, 100)
	assert.Equal(t, models.ActionBuy, sig.Decision)
	assert.False(t, sig.Escalate)
}

func TestFuseTopPatternBoost(t *testing.T) {
	scores := models.FactorScores{Pattern: 60, Indicator: 10, Sentiment: 0, Volume: 0}
	patterns := []models.PatternMatch{{Name: "Three White Soldiers", Confidence: 85}}
	// base conf 73, +10 boost, cap 95
	sig := Fuse("AAPL", scores, patterns, 10000, 100)
	assert.Equal(t, 83, sig.Confidence)
}

func TestSuggestQuantity(t *testing.T) {
	assert.Zero(t, SuggestQuantity(models.ActionHold, 90, 10000, 100))
	assert.Zero(t, SuggestQuantity(models.ActionBuy, 90, 10000, 0))

	assert.Equal(t, 30, SuggestQuantity(models.ActionBuy, 85, 10000, 100))
	assert.Equal(t, 25, SuggestQuantity(models.ActionBuy, 75, 10000, 100))
	assert.Equal(t, 20, SuggestQuantity(models.ActionBuy, 65, 10000, 100))
	assert.Equal(t, 10, SuggestQuantity(models.ActionBuy, 50, 10000, 100))

	// floor would be 0; non-HOLD decisions still size at least 1 share
	assert.Equal(t, 1, SuggestQuantity(models.ActionSell, 50, 100, 5000))
	assert.Equal(t, 1, SuggestQuantity(models.ActionBuy, 90, 0, 100))
}
