package marketdata

import (
	"math/rand"

	"TradeSage/internal/domain/models"
)

const bookLevels = 5

// SyntheticOrderBook fabricates a plausible five-level book around the last
// print, for venues that expose no depth feed. Spread is drawn uniformly from
// [0.01, 0.05) and level size decays away from the touch.
func SyntheticOrderBook(price float64) (bids, asks []models.PriceLevel) {
	if price <= 0 {
		return nil, nil
	}
	spread := 0.01 + rand.Float64()*0.04
	depth := 100 + rand.Float64()*400

	bids = make([]models.PriceLevel, bookLevels)
	asks = make([]models.PriceLevel, bookLevels)
	for i := 0; i < bookLevels; i++ {
		step := spread * float64(i+1)
		size := depth * float64(bookLevels-i)
		bids[i] = models.PriceLevel{Price: price - step, Size: size}
		asks[i] = models.PriceLevel{Price: price + step, Size: size}
	}
	return bids, asks
}
