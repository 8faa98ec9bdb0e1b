package quant

import "math"

// Almgren-Chriss defaults, tuned for near-risk-neutral execution of small
// retail orders.
const (
	defaultRiskAversion  = 1e-6
	defaultVolatility    = 0.02
	defaultLiquidityCost = 2e-7

	// below this zeta the hyperbolic schedule is numerically flat
	zetaEpsilon = 1e-4
)

// TrajectoryParams configures the execution scheduler. Zero values fall back
// to the package defaults.
type TrajectoryParams struct {
	RiskAversion  float64
	Volatility    float64
	LiquidityCost float64
}

func (p TrajectoryParams) withDefaults() TrajectoryParams {
	if p.RiskAversion <= 0 {
		p.RiskAversion = defaultRiskAversion
	}
	if p.Volatility <= 0 {
		p.Volatility = defaultVolatility
	}
	if p.LiquidityCost <= 0 {
		p.LiquidityCost = defaultLiquidityCost
	}
	return p
}

// Trajectory splits totalShares across minutes using an Almgren-Chriss style
// front-loaded schedule. The per-minute rate follows
// v(t) = zeta*X/sinh(zeta*T) * cosh(zeta*(T-t)), sampled at interval
// midpoints. When zeta is negligible the schedule degenerates to a uniform
// TWAP split. Truncation residue lands in the final bucket so the buckets
// always sum to totalShares.
func Trajectory(totalShares, minutes int, params TrajectoryParams) []int {
	if totalShares <= 0 || minutes <= 0 {
		return nil
	}
	if minutes == 1 {
		return []int{totalShares}
	}
	p := params.withDefaults()

	zeta := math.Sqrt(p.RiskAversion * p.Volatility * p.Volatility / p.LiquidityCost)
	buckets := make([]int, minutes)

	if zeta < zetaEpsilon {
		per := totalShares / minutes
		for i := range buckets {
			buckets[i] = per
		}
		buckets[minutes-1] += totalShares - per*minutes
		return buckets
	}

	X := float64(totalShares)
	T := float64(minutes)
	scale := zeta * X / math.Sinh(zeta*T)

	placed := 0
	for i := 0; i < minutes; i++ {
		t := float64(i) + 0.5
		v := scale * math.Cosh(zeta*(T-t))
		n := int(v)
		if n < 0 {
			n = 0
		}
		buckets[i] = n
		placed += n
	}
	buckets[minutes-1] += totalShares - placed
	return buckets
}
