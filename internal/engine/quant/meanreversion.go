package quant

import (
	"math"

	"TradeSage/internal/domain/models"
)

// minOUSamples is the shortest price series the AR(1) fit accepts.
const minOUSamples = 30

// OUFit holds the parameters of an Ornstein-Uhlenbeck process estimated from
// a discrete AR(1) regression price[t+1] = alpha + beta*price[t].
type OUFit struct {
	Alpha    float64
	Beta     float64
	Theta    float64 // mean-reversion speed, -ln(beta)
	Mu       float64 // long-run equilibrium level
	SigmaEq  float64 // equilibrium standard deviation
	Residual float64 // residual std from the regression
}

// FitOU estimates mean-reversion parameters from a trailing price series.
// Returns ErrInsufficientData below minOUSamples and ErrDegenerateFit when the
// series shows no reversion (beta >= 0.999) or the variance collapses.
func FitOU(prices []float64) (OUFit, error) {
	if len(prices) < minOUSamples {
		return OUFit{}, models.ErrInsufficientData
	}

	x := prices[:len(prices)-1]
	y := prices[1:]
	n := float64(len(x))

	var sumX, sumY, sumXY, sumXX float64
	for i := range x {
		sumX += x[i]
		sumY += y[i]
		sumXY += x[i] * y[i]
		sumXX += x[i] * x[i]
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return OUFit{}, models.ErrDegenerateFit
	}
	beta := (n*sumXY - sumX*sumY) / denom
	alpha := (sumY - beta*sumX) / n

	if beta >= 0.999 || beta <= 0 {
		return OUFit{}, models.ErrDegenerateFit
	}

	var ssr float64
	for i := range x {
		r := y[i] - (alpha + beta*x[i])
		ssr += r * r
	}
	residStd := math.Sqrt(ssr / n)

	theta := -math.Log(beta)
	mu := alpha / (1 - beta)
	sigmaEq := residStd * math.Sqrt(-2*math.Log(beta)/(1-beta*beta)/(2*theta))
	if sigmaEq == 0 || math.IsNaN(sigmaEq) {
		return OUFit{}, models.ErrDegenerateFit
	}

	return OUFit{
		Alpha:    alpha,
		Beta:     beta,
		Theta:    theta,
		Mu:       mu,
		SigmaEq:  sigmaEq,
		Residual: residStd,
	}, nil
}

// ZScore is the standardized distance of price from the fitted equilibrium.
func (f OUFit) ZScore(price float64) float64 {
	return (price - f.Mu) / f.SigmaEq
}
