package quant

import (
	"errors"
	"fmt"

	"TradeSage/internal/domain/models"
)

// zVetoThreshold is the equilibrium z-score beyond which entries against the
// expected reversion are blocked.
const zVetoThreshold = 2.0

// Overlay is the statistical risk layer applied after fusion and arbitration.
// It never upgrades a decision: it may only downgrade to HOLD or resize.
// Stateless and safe for concurrent use.
type Overlay struct{}

func NewOverlay() *Overlay {
	return &Overlay{}
}

// Apply runs the mean-reversion veto, the portfolio VaR gate and Kelly
// resizing against a signal. The input signal is not mutated; the adjusted
// copy is returned together with the list of applied vetoes. Degenerate fits
// and short samples skip their gate silently, as the gates are protective
// extras rather than requirements.
func (o *Overlay) Apply(sig models.Signal, ctx models.RiskContext, price float64) (models.Signal, []string) {
	out := sig
	var vetoes []string

	if fit, err := FitOU(ctx.RecentPriceSeries); err == nil && price > 0 {
		z := fit.ZScore(price)
		switch {
		case out.Decision == models.ActionBuy && z > zVetoThreshold:
			out.Decision = models.ActionHold
			out.SuggestedQuantity = 0
			vetoes = append(vetoes, fmt.Sprintf("mean-reversion veto: z=%.2f above equilibrium", z))
		case out.Decision == models.ActionSell && z < -zVetoThreshold:
			out.Decision = models.ActionHold
			out.SuggestedQuantity = 0
			vetoes = append(vetoes, fmt.Sprintf("mean-reversion veto: z=%.2f below equilibrium", z))
		}
	} else if err != nil && !errors.Is(err, models.ErrInsufficientData) && !errors.Is(err, models.ErrDegenerateFit) {
		vetoes = append(vetoes, "mean-reversion gate skipped: "+err.Error())
	}

	if out.Decision == models.ActionBuy {
		if pct, err := VaRPercent(ctx.ReturnSample); err == nil && pct > varGateThreshold {
			out.Decision = models.ActionHold
			out.SuggestedQuantity = 0
			vetoes = append(vetoes, fmt.Sprintf("portfolio VaR gate: %.2f%% exceeds %.1f%%", pct, varGateThreshold))
		}
	}

	if out.Decision != models.ActionHold && price > 0 && ctx.PortfolioValue > 0 {
		if qty := KellyQuantity(ctx.PastTradeOutcomes, ctx.PortfolioValue, price); qty > 0 {
			out.SuggestedQuantity = qty
		}
	}

	if len(vetoes) > 0 {
		out.Reasoning = out.Reasoning + "; " + vetoes[0]
	}
	return out, vetoes
}
