package fusion

import (
	"fmt"
	"math"
	"time"

	"TradeSage/internal/domain/models"
)

// Fixed fusion weights. Pattern evidence carries the most weight; the three
// context factors split the remainder.
const (
	weightPattern   = 0.35
	weightIndicator = 0.25
	weightSentiment = 0.20
	weightVolume    = 0.20
)

// Escalation short-circuit: a pattern score this strong with confidence this
// high suppresses the contradiction escalation.
const (
	strongPatternScore      = 50.0
	strongPatternConfidence = 70
)

// Fuse combines the four factor scores into one Signal. Decision and
// confidence derive from the weighted composite; escalation fires on low
// confidence or contradicting factors unless a strong unambiguous pattern
// short-circuits it. Balance and price size the suggested quantity.
func Fuse(ticker string, scores models.FactorScores, patterns []models.PatternMatch, balance, price float64) models.Signal {
	composite := weightPattern*scores.Pattern +
		weightIndicator*scores.Indicator +
		weightSentiment*scores.Sentiment +
		weightVolume*scores.Volume
	abs := math.Abs(composite)

	var decision models.Action
	var confidence int
	switch {
	case composite > 40:
		decision = models.ActionBuy
		confidence = int(math.Min(95, 60+abs))
	case composite > 20:
		decision = models.ActionBuy
		confidence = int(math.Min(80, 50+abs))
	case composite < -40:
		decision = models.ActionSell
		confidence = int(math.Min(95, 60+abs))
	case composite < -20:
		decision = models.ActionSell
		confidence = int(math.Min(80, 50+abs))
	default:
		decision = models.ActionHold
		confidence = int(math.Max(0, 50-abs))
	}

	if len(patterns) > 0 && patterns[0].Confidence > 75 {
		confidence = int(math.Min(95, float64(confidence)+10))
	}

	escalate := confidence < 60 || contradiction(scores)
	if math.Abs(scores.Pattern) > strongPatternScore && confidence > strongPatternConfidence {
		escalate = false
	}

	return models.Signal{
		Ticker:            ticker,
		Decision:          decision,
		Confidence:        confidence,
		Escalate:          escalate,
		CompositeScore:    composite,
		Scores:            scores,
		SuggestedQuantity: SuggestQuantity(decision, confidence, balance, price),
		Reasoning:         reasoning(decision, composite, scores),
		Patterns:          patterns,
		Timestamp:         time.Now().UTC(),
	}
}

// contradiction reports whether the directional factors (pattern, indicator,
// sentiment) pull in opposite directions hard enough to distrust the
// composite. Volume only scales conviction and is excluded.
func contradiction(s models.FactorScores) bool {
	factors := []float64{s.Pattern, s.Indicator, s.Sentiment}
	var hasPositive, hasNegative bool
	for _, f := range factors {
		if f > 10 {
			hasPositive = true
		}
		if f < -10 {
			hasNegative = true
		}
	}
	return hasPositive && hasNegative
}

// SuggestQuantity maps the confidence tier to an allocation fraction of the
// available balance. Non-HOLD decisions at a positive price buy at least one
// share.
func SuggestQuantity(decision models.Action, confidence int, balance, price float64) int {
	if decision == models.ActionHold || price <= 0 {
		return 0
	}
	var fraction float64
	switch {
	case confidence >= 85:
		fraction = 0.30
	case confidence >= 75:
		fraction = 0.25
	case confidence >= 65:
		fraction = 0.20
	default:
		fraction = 0.10
	}
	qty := int(math.Floor(balance * fraction / price))
	if qty < 1 {
		qty = 1
	}
	return qty
}

func reasoning(decision models.Action, composite float64, s models.FactorScores) string {
	return fmt.Sprintf("%s: composite %.1f (pattern %.1f, indicator %.1f, sentiment %.1f, volume %.1f)",
		decision, composite, s.Pattern, s.Indicator, s.Sentiment, s.Volume)
}
