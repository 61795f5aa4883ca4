// Package coverage scores a sequence of observed ages against a sequence of
// phase windows. The coverage statistic is the fraction of ages falling
// inside the union of the window intervals.
package coverage

import (
	"phasewin/domain/timing"
)

// Result holds the coverage statistic plus per-age diagnostics.
// Covered and Assignment run parallel to the input ages; Assignment holds the
// 1-based index of the first matching window, or 0 when no window contains
// the age.
type Result struct {
	Coverage   float64 `json:"coverage"`
	Covered    []bool  `json:"covered"`
	Assignment []int   `json:"assignment"`
}

// ForAges scores ages against windows. For each age the windows are scanned
// in the order provided and the first window whose closed interval contains
// the age wins; this first-match policy is deliberate and must not be
// replaced by nearest-centre matching. Empty ages or empty windows are valid
// degenerate inputs yielding coverage 0.
func ForAges(ages []float64, windows []timing.PhaseWindow) Result {
	res := Result{
		Covered:    make([]bool, len(ages)),
		Assignment: make([]int, len(ages)),
	}

	hits := 0
	for i, age := range ages {
		for _, w := range windows {
			if w.Contains(age) {
				res.Covered[i] = true
				res.Assignment[i] = w.Index
				hits++
				break
			}
		}
	}

	if len(ages) > 0 {
		res.Coverage = float64(hits) / float64(len(ages))
	}
	return res
}

// EmpiricalPValue computes the one-sided Monte Carlo significance
// P(C >= ref): the fraction of simulated coverages at or above the reference
// coverage. Exact given the simulated sample, not an asymptotic
// approximation. An empty sample yields 0.
func EmpiricalPValue(coverages []float64, ref float64) float64 {
	if len(coverages) == 0 {
		return 0
	}
	n := 0
	for _, c := range coverages {
		if c >= ref {
			n++
		}
	}
	return float64(n) / float64(len(coverages))
}
