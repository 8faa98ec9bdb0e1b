package quant

import (
	"math"

	"TradeSage/internal/domain/models"
)

// obiDepth is how many levels per side contribute to the imbalance.
const obiDepth = 5

// OrderBookImbalance computes a depth-weighted imbalance in [-1, 1] over the
// top levels of each side. Level i carries weight e^(-0.5i), so the inside
// market dominates. Returns 0 when either side is empty.
func OrderBookImbalance(bids, asks []models.PriceLevel) float64 {
	if len(bids) == 0 || len(asks) == 0 {
		return 0
	}
	weighted := func(levels []models.PriceLevel) float64 {
		n := len(levels)
		if n > obiDepth {
			n = obiDepth
		}
		var sum float64
		for i := 0; i < n; i++ {
			sum += math.Exp(-0.5*float64(i)) * levels[i].Size
		}
		return sum
	}
	bid, ask := weighted(bids), weighted(asks)
	if bid+ask == 0 {
		return 0
	}
	return (bid - ask) / (bid + ask)
}

// VPINProxy approximates flow toxicity as the absolute buy/sell volume
// imbalance over total volume. Returns 0 with no volume.
func VPINProxy(buyVolume, sellVolume, totalVolume float64) float64 {
	if totalVolume <= 0 {
		return 0
	}
	return math.Abs(buyVolume-sellVolume) / totalVolume
}
