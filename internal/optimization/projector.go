package optimization

// Projector maps an unconstrained weight vector onto the feasible region:
// non-negative, summing to one, each weight within [minWeight, maxWeight].
//
// The projection is a cheap clip-and-renormalize heuristic, not an exact
// Euclidean projection. The final renormalization can push weights back
// above maxWeight when the caps bind hard (e.g. two assets capped at 0.4);
// the sum-to-one invariant wins over the per-asset bounds.
type Projector struct {
	minWeight float64
	maxWeight float64
}

// NewProjector creates a projector with the given per-asset bounds.
func NewProjector(minWeight, maxWeight float64) *Projector {
	return &Projector{minWeight: minWeight, maxWeight: maxWeight}
}

// Project returns a new projected weight vector. The input is not modified.
func (p *Projector) Project(w []float64) []float64 {
	out := make([]float64, len(w))

	// Step 1: clip negatives to zero
	var sum float64
	for i, v := range w {
		if v < 0 {
			v = 0
		}
		out[i] = v
		sum += v
	}

	// Step 2: renormalize to sum one
	if sum == 0 {
		return out // all-zero stays all-zero
	}
	for i := range out {
		out[i] /= sum
	}

	// Step 3: clip to per-asset bounds
	sum = 0
	for i, v := range out {
		if v < p.minWeight {
			v = p.minWeight
		}
		if v > p.maxWeight {
			v = p.maxWeight
		}
		out[i] = v
		sum += v
	}

	// Step 4: renormalize again
	if sum == 0 {
		return out
	}
	for i := range out {
		out[i] /= sum
	}

	return out
}
