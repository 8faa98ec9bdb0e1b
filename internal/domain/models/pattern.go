package models

// PatternCategory classifies a candlestick pattern by the direction it implies.
type PatternCategory string

const (
	CategoryBullish      PatternCategory = "bullish"
	CategoryBearish      PatternCategory = "bearish"
	CategoryContinuation PatternCategory = "continuation"
)

// PatternStrength weights a pattern's contribution to scoring.
type PatternStrength int

const (
	StrengthWeak     PatternStrength = 1
	StrengthModerate PatternStrength = 2
	StrengthStrong   PatternStrength = 3
)

func (s PatternStrength) String() string {
	switch s {
	case StrengthStrong:
		return "STRONG"
	case StrengthModerate:
		return "MODERATE"
	default:
		return "WEAK"
	}
}

// Action is a closed trading decision enum. Using a dedicated type keeps the
// decision out of stringly-typed branching everywhere downstream.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)

// PatternMatch is one detected candlestick pattern. Produced fresh per
// evaluation and never mutated.
type PatternMatch struct {
	Name         string          `json:"name"`
	Category     PatternCategory `json:"category"`
	Strength     PatternStrength `json:"strength"`
	Confidence   float64         `json:"confidence"` // 0-100
	BarsConsumed int             `json:"bars_consumed"`
	Action       Action          `json:"action"`
	Description  string          `json:"description,omitempty"`
}
