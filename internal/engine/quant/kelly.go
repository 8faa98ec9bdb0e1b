package quant

import (
	"math"

	"TradeSage/internal/domain/models"
)

// Kelly sizing bounds. The raw criterion is halved and the final allocation
// fraction stays inside [2%, 25%] of portfolio value.
const (
	kellyFloor = 0.02
	kellyCap   = 0.25

	defaultWinRate  = 0.55
	defaultPayoff   = 1.5
	minKellyHistory = 1
)

// KellyFraction derives an allocation fraction from closed trade outcomes
// using the half-Kelly criterion. With no history it falls back to prior
// assumptions rather than refusing to size.
func KellyFraction(history []models.TradeRecord) float64 {
	winRate, payoff := defaultWinRate, defaultPayoff

	if len(history) >= minKellyHistory {
		var wins, losses int
		var winSum, lossSum float64
		for _, tr := range history {
			if tr.Profit > 0 {
				wins++
				winSum += tr.Profit
			} else if tr.Profit < 0 {
				losses++
				lossSum += math.Abs(tr.Profit)
			}
		}
		total := wins + losses
		if total > 0 {
			winRate = float64(wins) / float64(total)
			avgWin := 0.0
			if wins > 0 {
				avgWin = winSum / float64(wins)
			}
			// zero observed losses would divide by zero; treat the
			// average loss as 1.0 in that case
			avgLoss := 1.0
			if losses > 0 {
				avgLoss = lossSum / float64(losses)
			}
			if avgLoss > 0 && avgWin > 0 {
				payoff = avgWin / avgLoss
			}
		}
	}

	f := (winRate*(payoff+1) - 1) / payoff
	if f < 0 {
		f = 0
	}
	f /= 2 // half-Kelly

	if f < kellyFloor {
		return kellyFloor
	}
	if f > kellyCap {
		return kellyCap
	}
	return f
}

// KellyQuantity converts the Kelly fraction to a share count at the given
// price. Zero when price is not positive.
func KellyQuantity(history []models.TradeRecord, portfolioValue, price float64) int {
	if price <= 0 || portfolioValue <= 0 {
		return 0
	}
	return int(math.Floor(portfolioValue * KellyFraction(history) / price))
}
