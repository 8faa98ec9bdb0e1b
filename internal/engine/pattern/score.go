package pattern

import (
	"fmt"

	"TradeSage/internal/domain/models"
)

// Summary is the aggregate verdict over one detection pass plus the momentum
// indicators available at the time.
type Summary struct {
	Decision     models.Action `json:"decision"`
	Confidence   int           `json:"confidence"`
	BullishScore float64       `json:"bullish_score"`
	BearishScore float64       `json:"bearish_score"`
	Reasoning    string        `json:"reasoning"`
	Escalate     bool          `json:"escalate"`
}

// ScoreAndDecide folds detected patterns and optional RSI/MACD readings into a
// directional verdict. Pattern weight is strength scaled by confidence, so a
// weak 90%-confident match still counts less than a strong 60% one.
// Nil indicator pointers contribute nothing.
func ScoreAndDecide(patterns []models.PatternMatch, rsi, macd, macdSignal *float64) Summary {
	if len(patterns) == 0 {
		return Summary{
			Decision:   models.ActionHold,
			Confidence: 0,
			Reasoning:  "No candlestick patterns detected",
			Escalate:   true,
		}
	}

	var bullish, bearish, continuation float64
	for _, p := range patterns {
		w := float64(p.Strength) * (p.Confidence / 100)
		switch p.Category {
		case models.CategoryBullish:
			bullish += w
		case models.CategoryBearish:
			bearish += w
		default:
			continuation += w
		}
	}

	if rsi != nil {
		if *rsi < 30 {
			bullish += 1.5
		} else if *rsi > 70 {
			bearish += 1.5
		}
	}
	if macd != nil && macdSignal != nil {
		if *macd > *macdSignal {
			bullish += 1.0
		} else if *macd < *macdSignal {
			bearish += 1.0
		}
	}

	total := bullish + bearish + continuation
	if total == 0 {
		total = 1
	}
	conf := minf(85, absf(bullish-bearish)/total*100+20)
	if patterns[0].Confidence > 70 {
		conf = minf(90, conf+10)
	}

	s := Summary{
		BullishScore: bullish,
		BearishScore: bearish,
		Confidence:   int(conf),
	}
	switch {
	case bullish > bearish*1.3:
		s.Decision = models.ActionBuy
		s.Reasoning = fmt.Sprintf("Bullish signals dominate (%.1f vs %.1f)", bullish, bearish)
		s.Escalate = s.Confidence < 60
	case bearish > bullish*1.3:
		s.Decision = models.ActionSell
		s.Reasoning = fmt.Sprintf("Bearish signals dominate (%.1f vs %.1f)", bearish, bullish)
		s.Escalate = s.Confidence < 60
	case continuation > maxf(bullish, bearish):
		s.Decision = models.ActionHold
		s.Confidence = 50
		s.Reasoning = "Continuation patterns dominate - trend likely persists"
		s.Escalate = true
	default:
		s.Decision = models.ActionHold
		s.Confidence = 30
		s.Reasoning = "Mixed signals - no clear direction"
		s.Escalate = true
	}
	return s
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
