// Package ratioscan sweeps the geometric scaling ratio and maps the coverage
// response curve of the timing model against a fixed age set.
package ratioscan

import (
	"gonum.org/v1/gonum/floats"

	"phasewin/domain/core"
	"phasewin/domain/coverage"
	"phasewin/domain/timing"
)

// Config parameterizes one scan. The half-width configuration is shared by
// every scanned ratio.
type Config struct {
	RMin   float64
	RMax   float64
	Points int
	Anchor float64
	W0     float64
	G      float64
	Phases int
}

// Result is the coverage response curve plus its maximum. Ratios and
// Coverages are parallel; ties for the best ratio go to the first occurrence
// in ascending-ratio order.
type Result struct {
	Ratios       []float64 `json:"ratios"`
	Coverages    []float64 `json:"coverages"`
	BestR        float64   `json:"best_r"`
	BestCoverage float64   `json:"best_coverage"`
}

// Band is the range of scanned ratios achieving at least a reference
// coverage. It is the min/max of the qualifying subset: if that subset is
// non-contiguous the band overstates the true qualifying region. Preserved
// as-is; callers wanting the exact region must inspect the curve.
type Band struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Scan evaluates cfg.Points ratios evenly spaced over [RMin, RMax], both
// endpoints included. Points == 1 requires RMin == RMax and collapses to a
// single evaluation; Points == 1 with distinct endpoints is rejected rather
// than left caller-defined.
func Scan(cfg Config, ages []float64) (*Result, error) {
	if cfg.Points < 1 {
		return nil, core.NewValidationError("n_points", "must be positive")
	}
	if cfg.RMin > cfg.RMax {
		return nil, core.NewValidationError("r_min", "must not exceed r_max")
	}
	if cfg.Points == 1 && cfg.RMin != cfg.RMax {
		return nil, core.NewValidationError("n_points", "a single point requires r_min == r_max")
	}

	halfWidths, err := timing.HalfWidths(cfg.W0, cfg.G, cfg.Phases)
	if err != nil {
		return nil, err
	}

	var ratios []float64
	if cfg.Points == 1 {
		ratios = []float64{cfg.RMin}
	} else {
		ratios = floats.Span(make([]float64, cfg.Points), cfg.RMin, cfg.RMax)
	}

	res := &Result{
		Ratios:    ratios,
		Coverages: make([]float64, len(ratios)),
	}
	for i, r := range ratios {
		centres, err := timing.ArbitraryRatioCentres(cfg.Anchor, r, cfg.Phases)
		if err != nil {
			return nil, err
		}
		windows, err := timing.Build(centres, halfWidths)
		if err != nil {
			return nil, err
		}
		res.Coverages[i] = coverage.ForAges(ages, windows).Coverage
	}

	res.BestR = ratios[0]
	res.BestCoverage = res.Coverages[0]
	for i, c := range res.Coverages {
		if c > res.BestCoverage {
			res.BestR = ratios[i]
			res.BestCoverage = c
		}
	}
	return res, nil
}

// EffectiveBand returns the band of ratios whose coverage meets or exceeds
// ref, or nil when no scanned ratio qualifies.
func (r *Result) EffectiveBand(ref float64) *Band {
	var band *Band
	for i, c := range r.Coverages {
		if c < ref {
			continue
		}
		if band == nil {
			band = &Band{Min: r.Ratios[i], Max: r.Ratios[i]}
			continue
		}
		if r.Ratios[i] < band.Min {
			band.Min = r.Ratios[i]
		}
		if r.Ratios[i] > band.Max {
			band.Max = r.Ratios[i]
		}
	}
	return band
}
