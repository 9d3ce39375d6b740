package optimization

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckBothConditionsSatisfied(t *testing.T) {
	checker := NewFeasibilityChecker()

	feasible := checker.Check(
		map[string]float64{"A": 0.6, "B": 0.4},
		Metrics{Volatility: 0.15, CVaR95: 0.20},
		Constraints{CVaRBudget: 0.25, VolTarget: 0.15},
	)
	assert.True(t, feasible)
}

func TestCheckCVaROverBudget(t *testing.T) {
	// Volatility sits exactly on target, so only the CVaR condition can
	// reject here.
	checker := NewFeasibilityChecker()

	feasible := checker.Check(
		map[string]float64{"A": 0.6, "B": 0.4},
		Metrics{Volatility: 0.15, CVaR95: 0.30},
		Constraints{CVaRBudget: 0.25, VolTarget: 0.15},
	)
	assert.False(t, feasible)
}

func TestCheckVolOutsideBand(t *testing.T) {
	// CVaR is well under budget, so only the vol-band condition can
	// reject here.
	checker := NewFeasibilityChecker()

	feasible := checker.Check(
		map[string]float64{"A": 0.6, "B": 0.4},
		Metrics{Volatility: 0.25, CVaR95: 0.10},
		Constraints{CVaRBudget: 0.50, VolTarget: 0.15},
	)
	assert.False(t, feasible)

	// Too far below target fails the same way.
	feasible = checker.Check(
		map[string]float64{"A": 0.6, "B": 0.4},
		Metrics{Volatility: 0.05, CVaR95: 0.10},
		Constraints{CVaRBudget: 0.50, VolTarget: 0.15},
	)
	assert.False(t, feasible)
}

func TestCheckVolToleranceBoundary(t *testing.T) {
	checker := NewFeasibilityChecker()
	c := Constraints{CVaRBudget: 1.0, VolTarget: 0.10}
	weights := map[string]float64{"A": 1.0}

	// The band is |vol - target| <= 0.2 * target, inclusive.
	assert.True(t, checker.Check(weights, Metrics{Volatility: 0.12, CVaR95: 0.01}, c))
	assert.True(t, checker.Check(weights, Metrics{Volatility: 0.081, CVaR95: 0.01}, c))
	assert.False(t, checker.Check(weights, Metrics{Volatility: 0.121, CVaR95: 0.01}, c))
	assert.False(t, checker.Check(weights, Metrics{Volatility: 0.079, CVaR95: 0.01}, c))
}

func TestCheckCVaRSumIsWeightScaled(t *testing.T) {
	// The budget test sums w_i * cvar95, so a partially invested weight
	// map shrinks the effective usage below the portfolio CVaR.
	checker := NewFeasibilityChecker()
	c := Constraints{CVaRBudget: 0.25, VolTarget: 0.15}
	metrics := Metrics{Volatility: 0.15, CVaR95: 0.40}

	assert.False(t, checker.Check(map[string]float64{"A": 0.6, "B": 0.4}, metrics, c))
	assert.True(t, checker.Check(map[string]float64{"A": 0.5}, metrics, c))
}
