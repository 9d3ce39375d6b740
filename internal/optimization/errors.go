package optimization

import "errors"

var (
	// ErrDataInsufficient indicates a symbol lacks enough aligned price
	// history to estimate returns and covariance.
	ErrDataInsufficient = errors.New("insufficient price data")

	// ErrNumericalInstability indicates a NaN or Inf was produced during
	// estimation or optimization.
	ErrNumericalInstability = errors.New("numerical instability")
)
