package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"TradeSage/internal/domain/models"
)

func fp(v float64) *float64 { return &v }

func match(cat models.PatternCategory, strength models.PatternStrength, conf float64) models.PatternMatch {
	return models.PatternMatch{Name: "test", Category: cat, Strength: strength, Confidence: conf}
}

func TestScoreAndDecideNoPatterns(t *testing.T) {
	s := ScoreAndDecide(nil, nil, nil, nil)
	assert.Equal(t, models.ActionHold, s.Decision)
	assert.Equal(t, 0, s.Confidence)
	assert.True(t, s.Escalate)
}

func TestScoreAndDecideBullishDominance(t *testing.T) {
	patterns := []models.PatternMatch{
		match(models.CategoryBullish, models.StrengthStrong, 80),
	}
	s := ScoreAndDecide(patterns, fp(25), nil, nil)

	// 3*0.8 pattern weight plus 1.5 oversold boost, no bearish weight at all
	assert.Equal(t, models.ActionBuy, s.Decision)
	assert.InDelta(t, 3.9, s.BullishScore, 0.001)
	assert.Zero(t, s.BearishScore)
	// base min(85, 100+20)=85, +10 for top pattern above 70, capped at 90
	assert.Equal(t, 90, s.Confidence)
	assert.False(t, s.Escalate)
}

func TestScoreAndDecideBearishWithOverboughtRSI(t *testing.T) {
	patterns := []models.PatternMatch{
		match(models.CategoryBearish, models.StrengthStrong, 80),
	}
	s := ScoreAndDecide(patterns, fp(75), nil, nil)
	assert.Equal(t, models.ActionSell, s.Decision)
	assert.InDelta(t, 3.9, s.BearishScore, 0.001)
}

func TestScoreAndDecideMACDTilt(t *testing.T) {
	patterns := []models.PatternMatch{
		match(models.CategoryBullish, models.StrengthWeak, 60),
	}
	s := ScoreAndDecide(patterns, nil, fp(1.2), fp(0.8))
	// 0.6 pattern + 1.0 macd crossover = 1.6 bullish vs 0 bearish
	assert.Equal(t, models.ActionBuy, s.Decision)
	assert.InDelta(t, 1.6, s.BullishScore, 0.001)
}

func TestScoreAndDecideMixedSignals(t *testing.T) {
	patterns := []models.PatternMatch{
		match(models.CategoryBullish, models.StrengthWeak, 50),
		match(models.CategoryBearish, models.StrengthWeak, 50),
	}
	s := ScoreAndDecide(patterns, nil, nil, nil)
	assert.Equal(t, models.ActionHold, s.Decision)
	assert.Equal(t, 30, s.Confidence)
	assert.True(t, s.Escalate)
}

func TestScoreAndDecideContinuationDominates(t *testing.T) {
	patterns := []models.PatternMatch{
		match(models.CategoryContinuation, models.StrengthModerate, 90),
	}
	s := ScoreAndDecide(patterns, nil, nil, nil)
	assert.Equal(t, models.ActionHold, s.Decision)
	assert.Equal(t, 50, s.Confidence)
	assert.True(t, s.Escalate)
}

func TestScoreAndDecideLowConfidenceEscalates(t *testing.T) {
	// Weak bullish edge: 0.5 bullish, 0.3 bearish. Dominant but barely.
	patterns := []models.PatternMatch{
		match(models.CategoryBullish, models.StrengthWeak, 50),
		match(models.CategoryBearish, models.StrengthWeak, 30),
	}
	s := ScoreAndDecide(patterns, nil, nil, nil)
	assert.Equal(t, models.ActionBuy, s.Decision)
	assert.Less(t, s.Confidence, 60)
	assert.True(t, s.Escalate)
}
