package optimization

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKellyFractionsFormula(t *testing.T) {
	// kelly = 0.25 * mu / variance, before clamping
	model := testModel(
		[]string{"A", "B"},
		[]float64{0.08, 0.12},
		[]float64{
			0.04, 0.00,
			0.00, 0.09,
		},
	)

	fractions := NewKellySizer().Fractions(model)

	assert.InDelta(t, 0.25*0.08/0.04, fractions["A"], 1e-9) // 0.5
	assert.InDelta(t, 0.25*0.12/0.09, fractions["B"], 1e-9) // 0.333...
}

func TestKellyFractionsBounds(t *testing.T) {
	model := testModel(
		[]string{"HOT", "COLD", "FLAT"},
		[]float64{5.0, -0.5, 0.0},
		[]float64{
			0.01, 0, 0,
			0, 0.04, 0,
			0, 0, 0.02,
		},
	)

	fractions := NewKellySizer().Fractions(model)

	for sym, f := range fractions {
		assert.GreaterOrEqual(t, f, 0.0, "fraction for %s", sym)
		assert.LessOrEqual(t, f, 0.5, "fraction for %s", sym)
	}
	assert.Equal(t, 0.5, fractions["HOT"], "large edge clamps to cap")
	assert.Equal(t, 0.0, fractions["COLD"], "negative expected return clamps to zero")
	assert.Equal(t, 0.0, fractions["FLAT"])
}

func TestKellyFractionsVarianceFloor(t *testing.T) {
	// Near-zero variance must not blow up the fraction: the floor caps
	// the denominator at 1e-4.
	model := testModel([]string{"A"}, []float64{0.0001}, []float64{1e-12})

	fractions := NewKellySizer().Fractions(model)

	assert.InDelta(t, 0.25*0.0001/1e-4, fractions["A"], 1e-9)
}
