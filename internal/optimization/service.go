// Package optimization computes mean-variance optimal portfolio weights
// under a CVaR budget and volatility target, with fractional Kelly sizing.
package optimization

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CVaR scaling bounds for position sizing.
const (
	cvarScaleMin = 0.1
	cvarScaleMax = 1.0
)

// Service is the facade over the optimization pipeline: risk model
// estimation, gradient descent, metrics, Kelly sizing, and feasibility.
type Service struct {
	riskBuilder *RiskModelBuilder
	optimizer   *GradientOptimizer
	metrics     *MetricsCalculator
	kelly       *KellySizer
	feasibility *FeasibilityChecker
	log         zerolog.Logger
}

// NewService creates an optimization service
func NewService(
	riskBuilder *RiskModelBuilder,
	optimizer *GradientOptimizer,
	log zerolog.Logger,
) *Service {
	return &Service{
		riskBuilder: riskBuilder,
		optimizer:   optimizer,
		metrics:     NewMetricsCalculator(),
		kelly:       NewKellySizer(),
		feasibility: NewFeasibilityChecker(),
		log:         log.With().Str("component", "optimization").Logger(),
	}
}

// Optimize computes portfolio weights for the given constraints.
//
// Structural constraint errors are returned as errors. Pipeline failures
// (missing data, numerical instability) degrade to an equal-weight fallback
// result tagged ResultFallback, so callers always get usable weights but
// can tell the two apart.
func (s *Service) Optimize(c Constraints) (*Result, error) {
	c = c.withDefaults()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid constraints: %w", err)
	}

	model, err := s.riskBuilder.Build(c.Symbols)
	if err != nil {
		return s.fallbackResult(c, fmt.Errorf("risk model estimation failed: %w", err)), nil
	}

	proj := NewProjector(c.MinWeight, c.MaxWeight)
	w, iterations, converged, err := s.optimizer.Minimize(model, proj)
	if err != nil {
		return s.fallbackResult(c, fmt.Errorf("gradient descent failed: %w", err)), nil
	}

	metrics := s.metrics.Compute(model, w)

	weights := make(map[string]float64, len(c.Symbols))
	for i, sym := range model.Symbols {
		weights[sym] = w[i]
	}

	result := &Result{
		ID:             uuid.New().String(),
		Weights:        weights,
		Metrics:        metrics,
		KellyFractions: s.kelly.Fractions(model),
		Feasible:       s.feasibility.Check(weights, metrics, c),
		Iterations:     iterations,
		Converged:      converged,
		Kind:           ResultOptimized,
		Timestamp:      time.Now(),
	}

	s.log.Info().
		Str("result_id", result.ID).
		Int("num_symbols", len(c.Symbols)).
		Float64("expected_return", metrics.ExpectedReturn).
		Float64("volatility", metrics.Volatility).
		Float64("cvar_95", metrics.CVaR95).
		Bool("feasible", result.Feasible).
		Msg("Optimization complete")

	return result, nil
}

// fallbackResult builds an equal-weight allocation after a pipeline failure.
// Metrics are zeroed (no risk model to derive them from) and the result is
// marked feasible so downstream sizing does not reject it.
func (s *Service) fallbackResult(c Constraints, cause error) *Result {
	n := len(c.Symbols)
	weights := make(map[string]float64, n)
	kelly := make(map[string]float64, n)
	for _, sym := range c.Symbols {
		weights[sym] = 1.0 / float64(n)
		kelly[sym] = 0
	}

	result := &Result{
		ID:             uuid.New().String(),
		Weights:        weights,
		Metrics:        Metrics{RiskApproximation: "none"},
		KellyFractions: kelly,
		Feasible:       true,
		Iterations:     0,
		Converged:      false,
		Kind:           ResultFallback,
		FallbackReason: cause.Error(),
		Timestamp:      time.Now(),
	}

	s.log.Warn().
		Err(cause).
		Str("result_id", result.ID).
		Int("num_symbols", n).
		Msg("Optimization failed, falling back to equal weights")

	return result
}

// CVaRScale returns a position-size multiplier in [0.1, 1.0] for a symbol in
// the given result, based on how much of the CVaR budget the portfolio uses.
// A portfolio well under budget scales up toward 1.0; one over budget scales
// down toward 0.1.
func (s *Service) CVaRScale(res *Result, symbol string, cvarBudget float64) (float64, error) {
	if res == nil {
		return 0, fmt.Errorf("result is required")
	}
	if cvarBudget <= 0 {
		return 0, fmt.Errorf("cvar budget must be positive, got %f", cvarBudget)
	}
	if _, ok := res.Weights[symbol]; !ok {
		return 0, fmt.Errorf("symbol %s not in result universe", symbol)
	}

	scale := 2.0 - res.Metrics.CVaR95/cvarBudget
	if scale < cvarScaleMin {
		scale = cvarScaleMin
	}
	if scale > cvarScaleMax {
		scale = cvarScaleMax
	}
	return scale, nil
}
