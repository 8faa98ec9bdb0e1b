package features

import "TradeSage/internal/domain/models"

// Standard momentum indicator parameters.
const (
	RSILength  = 14
	MACDFast   = 12
	MACDSlow   = 26
	MACDSignal = 9
)

// RSI computes Wilder's relative strength index over bar closes. Returns nil
// when fewer than length+1 bars are available.
func RSI(bars []models.Bar, length int) *float64 {
	if length <= 0 || len(bars) < length+1 {
		return nil
	}
	var avgGain, avgLoss float64
	for i := 1; i <= length; i++ {
		change := bars[i].Close - bars[i-1].Close
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(length)
	avgLoss /= float64(length)

	for i := length + 1; i < len(bars); i++ {
		change := bars[i].Close - bars[i-1].Close
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(length-1) + gain) / float64(length)
		avgLoss = (avgLoss*float64(length-1) + loss) / float64(length)
	}

	var rsi float64
	if avgLoss == 0 {
		rsi = 100
	} else {
		rs := avgGain / avgLoss
		rsi = 100 - 100/(1+rs)
	}
	return &rsi
}

// MACD computes the 12/26 EMA spread and its 9-period signal line. Both
// results are nil when fewer than slow bars are available.
func MACD(bars []models.Bar) (macd, signal *float64) {
	if len(bars) < MACDSlow {
		return nil, nil
	}
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	fast := emaSeries(closes, MACDFast)
	slow := emaSeries(closes, MACDSlow)

	line := make([]float64, len(closes))
	for i := range closes {
		line[i] = fast[i] - slow[i]
	}
	sig := emaSeries(line[MACDSlow-1:], MACDSignal)

	m := line[len(line)-1]
	s := sig[len(sig)-1]
	return &m, &s
}

// AvgVolume is the mean volume across the window. Nil for an empty window.
func AvgVolume(bars []models.Bar) *int64 {
	if len(bars) == 0 {
		return nil
	}
	var sum int64
	for _, b := range bars {
		sum += b.Volume
	}
	avg := sum / int64(len(bars))
	return &avg
}

// emaSeries computes an exponential moving average seeded with the first
// value, returning a slice aligned with the input.
func emaSeries(values []float64, length int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	alpha := 2.0 / (float64(length) + 1)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}
