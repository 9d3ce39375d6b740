package optimization

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Gaussian tail multipliers applied to portfolio volatility.
const (
	cvar95Multiplier      = 2.33 // one-tailed 99th percentile z-score
	maxDrawdownMultiplier = 1.5
	sharpeVolFloor        = 1e-3
)

// MetricsCalculator derives portfolio-level risk metrics from a weight vector.
type MetricsCalculator struct{}

// NewMetricsCalculator creates a metrics calculator
func NewMetricsCalculator() *MetricsCalculator {
	return &MetricsCalculator{}
}

// Compute returns the annualized risk/return metrics for weights w.
// w must follow the symbol order of the model.
func (m *MetricsCalculator) Compute(model *RiskModel, w []float64) Metrics {
	wv := mat.NewVecDense(len(w), w)

	expectedReturn := floats.Dot(w, model.ExpectedReturns)
	variance := mat.Inner(wv, model.Cov, wv)
	if variance < 0 {
		variance = 0
	}
	volatility := math.Sqrt(variance)

	return Metrics{
		ExpectedReturn:    expectedReturn,
		Volatility:        volatility,
		Sharpe:            expectedReturn / math.Max(volatility, sharpeVolFloor),
		CVaR95:            volatility * cvar95Multiplier,
		MaxDrawdown:       volatility * maxDrawdownMultiplier,
		RiskApproximation: "gaussian",
	}
}
