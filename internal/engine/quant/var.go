package quant

import (
	"math"

	"TradeSage/internal/domain/models"
)

// z95 is the one-sided 95% normal quantile used by the parametric VaR.
const z95 = 1.645

// varGateThreshold is the VaR percentage above which pending buys are blocked.
const varGateThreshold = 2.0

// VaRPercent computes the one-period parametric value-at-risk of a return
// sample, expressed as a positive percentage of portfolio value.
// Needs at least two observations.
func VaRPercent(returns []float64) (float64, error) {
	if len(returns) < 2 {
		return 0, models.ErrInsufficientData
	}
	var sum float64
	for _, r := range returns {
		sum += r
	}
	mean := sum / float64(len(returns))

	var ss float64
	for _, r := range returns {
		d := r - mean
		ss += d * d
	}
	std := math.Sqrt(ss / float64(len(returns)))

	v := -(mean - z95*std) * 100
	if v < 0 {
		v = 0
	}
	return v, nil
}

// VaRAmount scales the VaR percentage to a currency amount.
func VaRAmount(returns []float64, portfolioValue float64) (float64, error) {
	pct, err := VaRPercent(returns)
	if err != nil {
		return 0, err
	}
	return pct / 100 * portfolioValue, nil
}
