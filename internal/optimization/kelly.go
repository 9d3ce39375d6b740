package optimization

// Fractional Kelly sizing parameters. Quarter-Kelly with a hard cap keeps
// position sizes survivable when the return estimates are noisy.
const (
	kellyMultiplier = 0.25
	kellyCap        = 0.5
	varianceFloor   = 1e-4
)

// KellySizer computes per-asset fractional Kelly position sizes.
type KellySizer struct{}

// NewKellySizer creates a Kelly sizer
func NewKellySizer() *KellySizer {
	return &KellySizer{}
}

// Fractions returns clamped quarter-Kelly fractions per symbol:
// clamp(0.25 * mu_i / max(var_i, floor), 0, 0.5).
func (k *KellySizer) Fractions(model *RiskModel) map[string]float64 {
	fractions := make(map[string]float64, len(model.Symbols))
	for i, sym := range model.Symbols {
		variance := model.Cov.At(i, i)
		if variance < varianceFloor {
			variance = varianceFloor
		}

		f := kellyMultiplier * model.ExpectedReturns[i] / variance
		if f < 0 {
			f = 0
		}
		if f > kellyCap {
			f = kellyCap
		}
		fractions[sym] = f
	}
	return fractions
}
