package fusion

import (
	"math"

	"TradeSage/internal/domain/models"
	"TradeSage/internal/engine/pattern"
)

// Factor scorers map one input domain each to a score in [-100, 100].
// Missing inputs score 0 so that fusion proceeds with whatever is present.

// PatternScore converts a pattern summary into a signed factor score.
// The bucket score is scaled by 20 so that a couple of strong patterns
// saturate the factor.
func PatternScore(s pattern.Summary) float64 {
	switch s.Decision {
	case models.ActionBuy:
		return clamp(s.BullishScore * 20)
	case models.ActionSell:
		return clamp(-s.BearishScore * 20)
	default:
		return 0
	}
}

// IndicatorScore scores RSI extremes and the MACD/signal-line spread.
func IndicatorScore(rsi, macd, macdSignal *float64) float64 {
	var score float64
	if rsi != nil {
		if *rsi < 30 {
			score += 2 * (30 - *rsi)
		} else if *rsi > 70 {
			score -= 2 * (*rsi - 70)
		}
	}
	if macd != nil && macdSignal != nil {
		spread := math.Min(30, 10*math.Abs(*macd-*macdSignal))
		if *macd > *macdSignal {
			score += spread
		} else if *macd < *macdSignal {
			score -= spread
		}
	}
	return clamp(score)
}

// SentimentScore scores keyword-classified article counts. A side must
// dominate by more than 20 percentage points to register at all.
func SentimentScore(s *models.SentimentSnapshot) float64 {
	if s == nil || s.TotalArticles == 0 {
		return 0
	}
	total := float64(s.TotalArticles)
	bullPct := float64(s.BullishCount) / total * 100
	bearPct := float64(s.BearishCount) / total * 100
	switch {
	case bullPct > bearPct+20:
		return clamp(math.Round(bullPct))
	case bearPct > bullPct+20:
		return clamp(-math.Round(bearPct))
	default:
		return 0
	}
}

// VolumeScore scores current volume against its trailing average.
func VolumeScore(volume, avgVolume *int64) float64 {
	if volume == nil || avgVolume == nil || *avgVolume == 0 {
		return 0
	}
	ratio := float64(*volume) / float64(*avgVolume)
	switch {
	case ratio > 2.0:
		return 30
	case ratio > 1.5:
		return 20
	case ratio > 1.2:
		return 10
	case ratio < 0.5:
		return -20
	case ratio < 0.8:
		return -10
	default:
		return 0
	}
}

func clamp(v float64) float64 {
	if v > 100 {
		return 100
	}
	if v < -100 {
		return -100
	}
	return v
}
