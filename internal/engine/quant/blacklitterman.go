package quant

// ViewStrength converts a fused composite score into a Black-Litterman style
// expected-excess-return view. The score in [-100, 100] scales a 1.5x
// volatility band, so a maximally confident signal claims a 1.5-sigma move.
func ViewStrength(compositeScore, volatility float64) float64 {
	return 1.5 * (compositeScore / 100) * volatility
}
