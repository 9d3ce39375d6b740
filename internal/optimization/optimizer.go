package optimization

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"
)

// convergenceTol is the gradient-norm threshold below which the solution is
// reported as converged. The iteration budget is always spent in full; the
// flag is informational.
const convergenceTol = 1e-8

// GradientOptimizer minimizes -w'mu + w'Σw by projected gradient descent.
type GradientOptimizer struct {
	iterations   int
	learningRate float64
	log          zerolog.Logger
}

// NewGradientOptimizer creates an optimizer with a fixed iteration budget.
func NewGradientOptimizer(iterations int, learningRate float64, log zerolog.Logger) *GradientOptimizer {
	return &GradientOptimizer{
		iterations:   iterations,
		learningRate: learningRate,
		log:          log.With().Str("component", "optimizer").Logger(),
	}
}

// Minimize runs projected gradient descent from a uniform start.
//
// The run is deterministic: every iteration in the budget is executed, with
// the projection applied after each step. Returns the final weights, the
// number of iterations run, and whether the final gradient norm fell below
// the convergence tolerance.
func (o *GradientOptimizer) Minimize(model *RiskModel, proj *Projector) ([]float64, int, bool, error) {
	n := len(model.Symbols)
	if n == 0 {
		return nil, 0, false, fmt.Errorf("%w: empty risk model", ErrDataInsufficient)
	}

	w := make([]float64, n)
	for i := range w {
		w[i] = 1.0 / float64(n)
	}

	grad := make([]float64, n)
	var gradNorm float64

	for iter := 0; iter < o.iterations; iter++ {
		// grad_i = -mu_i + 2 * (Σw)_i
		for i := 0; i < n; i++ {
			var sigmaW float64
			for j := 0; j < n; j++ {
				sigmaW += model.Cov.At(i, j) * w[j]
			}
			grad[i] = -model.ExpectedReturns[i] + 2*sigmaW
		}

		gradNorm = floats.Norm(grad, 2)
		if math.IsNaN(gradNorm) || math.IsInf(gradNorm, 0) {
			return nil, iter, false, fmt.Errorf("%w: gradient at iteration %d", ErrNumericalInstability, iter)
		}

		for i := range w {
			w[i] -= o.learningRate * grad[i]
		}
		w = proj.Project(w)
	}

	converged := gradNorm < convergenceTol

	o.log.Debug().
		Int("iterations", o.iterations).
		Float64("grad_norm", gradNorm).
		Bool("converged", converged).
		Msg("Gradient descent complete")

	return w, o.iterations, converged, nil
}
