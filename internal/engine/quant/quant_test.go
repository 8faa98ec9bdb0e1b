package quant

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TradeSage/internal/domain/models"
)

func levels(sizes ...float64) []models.PriceLevel {
	out := make([]models.PriceLevel, len(sizes))
	for i, s := range sizes {
		out[i] = models.PriceLevel{Price: 100 + float64(i)*0.01, Size: s}
	}
	return out
}

func TestOrderBookImbalanceEmptySide(t *testing.T) {
	assert.Zero(t, OrderBookImbalance(nil, levels(10)))
	assert.Zero(t, OrderBookImbalance(levels(10), nil))
}

func TestOrderBookImbalanceSymmetric(t *testing.T) {
	obi := OrderBookImbalance(levels(10, 8, 6), levels(10, 8, 6))
	assert.InDelta(t, 0, obi, 1e-9)
}

func TestOrderBookImbalanceBidHeavy(t *testing.T) {
	obi := OrderBookImbalance(levels(100, 80, 60), levels(10, 8, 6))
	assert.Greater(t, obi, 0.0)
	assert.LessOrEqual(t, obi, 1.0)
}

func TestOrderBookImbalanceUsesTopFiveOnly(t *testing.T) {
	// level 6+ must not contribute: a huge size past the depth cap is inert
	base := OrderBookImbalance(levels(10, 10, 10, 10, 10), levels(10, 10, 10, 10, 10))
	deep := OrderBookImbalance(levels(10, 10, 10, 10, 10, 1e9), levels(10, 10, 10, 10, 10))
	assert.InDelta(t, base, deep, 1e-9)
}

func TestVPINProxy(t *testing.T) {
	assert.Zero(t, VPINProxy(10, 5, 0))
	assert.InDelta(t, 0.5, VPINProxy(75, 25, 100), 1e-9)
	assert.InDelta(t, 0.5, VPINProxy(25, 75, 100), 1e-9)
}

func TestFitOUInsufficientData(t *testing.T) {
	prices := make([]float64, 10)
	_, err := FitOU(prices)
	assert.ErrorIs(t, err, models.ErrInsufficientData)
}

func TestFitOURandomWalkDegenerate(t *testing.T) {
	// strictly trending series: beta fits to ~1, no reversion
	prices := make([]float64, 60)
	for i := range prices {
		prices[i] = 100 + float64(i)
	}
	_, err := FitOU(prices)
	assert.ErrorIs(t, err, models.ErrDegenerateFit)
}

func TestFitOUMeanRevertingSeries(t *testing.T) {
	fit, err := FitOU(revertingSeries())
	require.NoError(t, err)
	assert.InDelta(t, 0.8, fit.Beta, 0.1)
	assert.InDelta(t, 100, fit.Mu, 3)
	assert.Greater(t, fit.Theta, 0.0)
	assert.Greater(t, fit.SigmaEq, 0.0)

	// far above equilibrium scores a large positive z
	assert.Greater(t, fit.ZScore(fit.Mu+10*fit.SigmaEq), zVetoThreshold)
}

func TestKellyFractionDefaults(t *testing.T) {
	// no history: w=0.55, b=1.5 -> f*=(0.55*2.5-1)/1.5=0.25, halved=0.125
	assert.InDelta(t, 0.125, KellyFraction(nil), 1e-9)
}

func TestKellyFractionFromHistory(t *testing.T) {
	history := []models.TradeRecord{
		{Profit: 30}, {Profit: 30}, {Profit: 30},
		{Profit: -20},
	}
	// w=0.75, b=30/20=1.5 -> f*=(0.75*2.5-1)/1.5=0.5833, half=0.2917 -> cap 0.25
	assert.InDelta(t, 0.25, KellyFraction(history), 1e-4)
}

func TestKellyFractionFloorsLosingHistory(t *testing.T) {
	history := []models.TradeRecord{
		{Profit: -10}, {Profit: -10}, {Profit: 5},
	}
	// raw fraction goes negative; floor keeps a minimal 2% allocation
	assert.InDelta(t, kellyFloor, KellyFraction(history), 1e-9)
}

func TestKellyFractionZeroLossGuard(t *testing.T) {
	history := []models.TradeRecord{{Profit: 10}, {Profit: 20}}
	// all wins: avg loss treated as 1.0, payoff 15, w=1
	// f*=(1*16-1)/15=1 -> half 0.5 -> cap 0.25
	assert.InDelta(t, kellyCap, KellyFraction(history), 1e-9)
}

func TestKellyQuantity(t *testing.T) {
	assert.Zero(t, KellyQuantity(nil, 10000, 0))
	// default fraction 0.125 on 10000 at price 50 -> 25 shares
	assert.Equal(t, 25, KellyQuantity(nil, 10000, 50))
}

func TestVaRPercent(t *testing.T) {
	_, err := VaRPercent([]float64{0.01})
	assert.ErrorIs(t, err, models.ErrInsufficientData)

	returns := []float64{0.01, -0.01, 0.02, 0.005, -0.005}
	pct, err := VaRPercent(returns)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, pct, 0.0)
	assert.Less(t, pct, varGateThreshold) // calm sample stays under the gate
}

func TestVaRPercentVolatileSample(t *testing.T) {
	returns := []float64{0.08, -0.09, 0.07, -0.08, 0.06, -0.07}
	pct, err := VaRPercent(returns)
	require.NoError(t, err)
	assert.Greater(t, pct, varGateThreshold)
}

func TestTrajectorySumsToTotal(t *testing.T) {
	buckets := Trajectory(1000, 15, TrajectoryParams{})
	require.Len(t, buckets, 15)
	sum := 0
	for _, b := range buckets {
		assert.GreaterOrEqual(t, b, 0)
		sum += b
	}
	assert.Equal(t, 1000, sum)
}

func TestTrajectoryFrontLoaded(t *testing.T) {
	buckets := Trajectory(10000, 30, TrajectoryParams{
		RiskAversion:  8e-7,
		Volatility:    0.05,
		LiquidityCost: 2e-7,
	})
	// high risk aversion liquidates faster early on
	assert.Greater(t, buckets[0], buckets[len(buckets)-2])
}

func TestTrajectoryTWAPFallback(t *testing.T) {
	buckets := Trajectory(100, 10, TrajectoryParams{
		RiskAversion:  1e-12,
		Volatility:    0.0001,
		LiquidityCost: 1.0,
	})
	require.Len(t, buckets, 10)
	for _, b := range buckets {
		assert.Equal(t, 10, b)
	}
}

func TestTrajectoryDegenerateInputs(t *testing.T) {
	assert.Nil(t, Trajectory(0, 10, TrajectoryParams{}))
	assert.Nil(t, Trajectory(100, 0, TrajectoryParams{}))
	assert.Equal(t, []int{100}, Trajectory(100, 1, TrajectoryParams{}))
}

func TestOverlayMeanReversionVeto(t *testing.T) {
	o := NewOverlay()
	prices := revertingSeries()
	fit, err := FitOU(prices)
	require.NoError(t, err)

	price := fit.Mu + 3*fit.SigmaEq
	sig := models.Signal{Decision: models.ActionBuy, Confidence: 80, SuggestedQuantity: 10, Reasoning: "test"}
	out, vetoes := o.Apply(sig, models.RiskContext{RecentPriceSeries: prices}, price)

	assert.Equal(t, models.ActionHold, out.Decision)
	assert.Zero(t, out.SuggestedQuantity)
	require.Len(t, vetoes, 1)
	assert.Contains(t, vetoes[0], "mean-reversion")
	// input untouched
	assert.Equal(t, models.ActionBuy, sig.Decision)
}

func TestOverlaySellVetoBelowEquilibrium(t *testing.T) {
	o := NewOverlay()
	prices := revertingSeries()
	fit, err := FitOU(prices)
	require.NoError(t, err)

	price := fit.Mu - 3*fit.SigmaEq
	sig := models.Signal{Decision: models.ActionSell, Confidence: 80, SuggestedQuantity: 10}
	out, vetoes := o.Apply(sig, models.RiskContext{RecentPriceSeries: prices}, price)

	assert.Equal(t, models.ActionHold, out.Decision)
	assert.Len(t, vetoes, 1)
}

func TestOverlayVaRGateBlocksBuyOnly(t *testing.T) {
	o := NewOverlay()
	volatile := []float64{0.08, -0.09, 0.07, -0.08, 0.06, -0.07}
	ctx := models.RiskContext{ReturnSample: volatile, PortfolioValue: 10000}

	buy := models.Signal{Decision: models.ActionBuy, Confidence: 80, SuggestedQuantity: 10}
	out, vetoes := o.Apply(buy, ctx, 100)
	assert.Equal(t, models.ActionHold, out.Decision)
	assert.Len(t, vetoes, 1)

	sell := models.Signal{Decision: models.ActionSell, Confidence: 80, SuggestedQuantity: 10}
	out, vetoes = o.Apply(sell, ctx, 100)
	assert.Equal(t, models.ActionSell, out.Decision)
	assert.Empty(t, vetoes)
}

func TestOverlayKellyResize(t *testing.T) {
	o := NewOverlay()
	sig := models.Signal{Decision: models.ActionBuy, Confidence: 80, SuggestedQuantity: 3}
	ctx := models.RiskContext{PortfolioValue: 10000}

	out, vetoes := o.Apply(sig, ctx, 50)
	assert.Empty(t, vetoes)
	// half-Kelly default 0.125 on 10000 at 50 overrides fusion's suggestion
	assert.Equal(t, 25, out.SuggestedQuantity)
}

func TestOverlaySkipsGatesOnShortSeries(t *testing.T) {
	o := NewOverlay()
	sig := models.Signal{Decision: models.ActionBuy, Confidence: 80, SuggestedQuantity: 10}
	out, vetoes := o.Apply(sig, models.RiskContext{RecentPriceSeries: []float64{1, 2, 3}}, 100)
	assert.Equal(t, models.ActionBuy, out.Decision)
	assert.Empty(t, vetoes)
}

func TestViewStrength(t *testing.T) {
	assert.InDelta(t, 0.03, ViewStrength(100, 0.02), 1e-9)
	assert.InDelta(t, -0.015, ViewStrength(-50, 0.02), 1e-9)
	assert.Zero(t, ViewStrength(0, 0.02))
}

// revertingSeries is a synthetic AR(1) around 100 with beta=0.8 and seeded
// gaussian noise, long enough for a stable fit.
func revertingSeries() []float64 {
	rng := rand.New(rand.NewSource(42))
	prices := make([]float64, 0, 300)
	p := 110.0
	for i := 0; i < 300; i++ {
		prices = append(prices, p)
		p = 20 + 0.8*p + rng.NormFloat64()*0.5
	}
	return prices
}
