package optimization

import "math"

// volTolerance is the allowed relative deviation from the volatility target.
const volTolerance = 0.2

// FeasibilityChecker tests a result against the caller's risk limits.
type FeasibilityChecker struct{}

// NewFeasibilityChecker creates a feasibility checker
func NewFeasibilityChecker() *FeasibilityChecker {
	return &FeasibilityChecker{}
}

// Check reports whether the allocation satisfies the CVaR budget and sits
// within 20% of the volatility target.
//
// The CVaR test sums each weight against the portfolio-level CVaR, so for
// fully invested weights it reduces to CVaR95 <= budget.
func (f *FeasibilityChecker) Check(weights map[string]float64, metrics Metrics, c Constraints) bool {
	var weightedCVaR float64
	for _, w := range weights {
		weightedCVaR += w * metrics.CVaR95
	}
	if weightedCVaR > c.CVaRBudget {
		return false
	}

	if math.Abs(metrics.Volatility-c.VolTarget) > volTolerance*c.VolTarget {
		return false
	}

	return true
}
