package optimization

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/mat"
)

// Default per-asset weight bounds applied when the caller leaves them zero.
const (
	DefaultMaxWeight = 0.4
	DefaultMinWeight = 0.05
)

// Constraints define the risk limits and universe for an optimization run.
//
// MaxWeight and MinWeight are optional: the zero value means "use the
// default" (0.4 and 0.05), so an explicit zero floor is not representable.
// Callers that want an effectively unbounded floor should pass a tiny
// positive value.
type Constraints struct {
	Symbols    []string `json:"symbols"`
	CVaRBudget float64  `json:"cvar_budget"` // Max portfolio CVaR(95%), annualized
	VolTarget  float64  `json:"vol_target"`  // Target annualized volatility
	MaxWeight  float64  `json:"max_weight"`  // Per-asset cap (0 = default 0.4)
	MinWeight  float64  `json:"min_weight"`  // Per-asset floor (0 = default 0.05)
}

// withDefaults returns a copy with zero-valued weight bounds replaced by defaults.
func (c Constraints) withDefaults() Constraints {
	if c.MaxWeight == 0 {
		c.MaxWeight = DefaultMaxWeight
	}
	if c.MinWeight == 0 {
		c.MinWeight = DefaultMinWeight
	}
	return c
}

// Validate checks the constraints for structural errors.
func (c Constraints) Validate() error {
	if len(c.Symbols) == 0 {
		return fmt.Errorf("at least one symbol is required")
	}
	seen := make(map[string]bool, len(c.Symbols))
	for _, sym := range c.Symbols {
		if sym == "" {
			return fmt.Errorf("empty symbol in universe")
		}
		if seen[sym] {
			return fmt.Errorf("duplicate symbol in universe: %s", sym)
		}
		seen[sym] = true
	}
	if c.CVaRBudget <= 0 {
		return fmt.Errorf("cvar budget must be positive, got %f", c.CVaRBudget)
	}
	if c.VolTarget <= 0 {
		return fmt.Errorf("vol target must be positive, got %f", c.VolTarget)
	}
	if c.MaxWeight < 0 || c.MaxWeight > 1 {
		return fmt.Errorf("max weight must be in [0, 1], got %f", c.MaxWeight)
	}
	if c.MinWeight < 0 || c.MinWeight > 1 {
		return fmt.Errorf("min weight must be in [0, 1], got %f", c.MinWeight)
	}
	if c.MaxWeight != 0 && c.MinWeight > c.MaxWeight {
		return fmt.Errorf("min weight %f exceeds max weight %f", c.MinWeight, c.MaxWeight)
	}
	return nil
}

// Metrics describe the risk/return profile of a weight vector.
//
// CVaR95 and MaxDrawdown are Gaussian approximations derived from the
// portfolio volatility, not empirical tail statistics.
type Metrics struct {
	ExpectedReturn    float64 `json:"expected_return"` // Annualized
	Volatility        float64 `json:"volatility"`      // Annualized
	Sharpe            float64 `json:"sharpe"`
	CVaR95            float64 `json:"cvar_95"`
	MaxDrawdown       float64 `json:"max_drawdown"`
	RiskApproximation string  `json:"risk_approximation"` // "gaussian" or "none"
}

// ResultKind distinguishes a genuine optimization from a fallback allocation.
type ResultKind string

const (
	// ResultOptimized - weights produced by the gradient optimizer
	ResultOptimized ResultKind = "optimized"
	// ResultFallback - equal weights substituted after a pipeline failure
	ResultFallback ResultKind = "fallback"
)

// Result holds the outcome of an optimization run.
type Result struct {
	ID             string             `json:"id"`
	Weights        map[string]float64 `json:"weights"`
	Metrics        Metrics            `json:"metrics"`
	KellyFractions map[string]float64 `json:"kelly_fractions"`
	Feasible       bool               `json:"feasible"`
	Iterations     int                `json:"iterations"`
	Converged      bool               `json:"converged"`
	Kind           ResultKind         `json:"kind"`
	FallbackReason string             `json:"fallback_reason,omitempty"`
	Timestamp      time.Time          `json:"timestamp"`
}

// RiskModel holds the estimated return/covariance inputs to the optimizer.
// ExpectedReturns and Cov rows follow the order of Symbols.
type RiskModel struct {
	Symbols         []string
	ExpectedReturns []float64
	Cov             *mat.SymDense
}
