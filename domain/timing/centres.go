package timing

import (
	"math"

	"phasewin/domain/core"
)

// Phi is the golden ratio, the primary scaling ratio of the timing model.
const Phi = math.Phi

// GeometricCentres computes phase centres t_k = a*phi^k for k = 1..k.
// Strictly increasing when phi > 1.
func GeometricCentres(a, phi float64, k int) ([]float64, error) {
	if err := validatePhases(k); err != nil {
		return nil, err
	}
	if a <= 0 {
		return nil, core.NewValidationError("anchor", "must be positive")
	}
	if phi <= 0 {
		return nil, core.NewValidationError("phi", "must be positive")
	}
	centres := make([]float64, k)
	for i := range centres {
		centres[i] = a * math.Pow(phi, float64(i+1))
	}
	return centres, nil
}

// ArbitraryRatioCentres computes t_k = a*r^k for k = 1..k, the general form
// swept by the ratio scanner.
func ArbitraryRatioCentres(a, r float64, k int) ([]float64, error) {
	return GeometricCentres(a, r, k)
}

// LinearCentres computes t_k = c0 + (k-1)*step for k = 1..k.
func LinearCentres(c0, step float64, k int) ([]float64, error) {
	if err := validatePhases(k); err != nil {
		return nil, err
	}
	centres := make([]float64, k)
	for i := range centres {
		centres[i] = c0 + float64(i)*step
	}
	return centres, nil
}

// ExponentialCentres computes t_k = t0*r^(k-1) for k = 1..k.
func ExponentialCentres(t0, r float64, k int) ([]float64, error) {
	if err := validatePhases(k); err != nil {
		return nil, err
	}
	if t0 <= 0 {
		return nil, core.NewValidationError("t0", "must be positive")
	}
	if r <= 0 {
		return nil, core.NewValidationError("r", "must be positive")
	}
	centres := make([]float64, k)
	for i := range centres {
		centres[i] = t0 * math.Pow(r, float64(i))
	}
	return centres, nil
}

// RangeMatchedRatio derives the exponential ratio that places the first
// centre at t0 and the k-th at tFinal: r = (tFinal/t0)^(1/(k-1)).
func RangeMatchedRatio(t0, tFinal float64, k int) (float64, error) {
	if k < 2 {
		return 0, core.NewValidationError("phases", "range matching requires k >= 2")
	}
	if t0 <= 0 || tFinal <= 0 {
		return 0, core.NewValidationError("endpoints", "must be positive")
	}
	return math.Pow(tFinal/t0, 1/float64(k-1)), nil
}

// HalfWidths computes breathing-window half-widths w_k = w0*g^(k-1) for
// k = 1..k. The sequence is non-decreasing when g >= 1.
func HalfWidths(w0, g float64, k int) ([]float64, error) {
	if err := validatePhases(k); err != nil {
		return nil, err
	}
	if w0 < 0 {
		return nil, core.NewValidationError("w0", "must be non-negative")
	}
	if g < 0 {
		return nil, core.NewValidationError("g", "must be non-negative")
	}
	widths := make([]float64, k)
	for i := range widths {
		widths[i] = w0 * math.Pow(g, float64(i))
	}
	return widths, nil
}

func validatePhases(k int) error {
	if k < 1 {
		return core.ErrInvalidPhases
	}
	return nil
}
