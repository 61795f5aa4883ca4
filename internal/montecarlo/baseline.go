// Package montecarlo builds null distributions of the coverage statistic
// under two randomization models: random ages against fixed windows, and
// random window centres against fixed ages.
package montecarlo

import (
	"context"
	"encoding/json"
	"math"
	"math/rand"
	"runtime"
	"sort"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"

	"phasewin/domain/core"
	"phasewin/domain/coverage"
	"phasewin/domain/timing"
	"phasewin/ports"
)

// Summary holds the null distribution of one baseline. Std uses the sample
// (n-1) denominator and is NaN for a single iteration.
type Summary struct {
	Mean      float64   `json:"mean_coverage"`
	Std       float64   `json:"std_coverage"`
	Coverages []float64 `json:"coverages"`
}

// MarshalJSON emits Std as null when it is undefined (single-trial sample
// std); JSON has no NaN.
func (s *Summary) MarshalJSON() ([]byte, error) {
	var std *float64
	if !math.IsNaN(s.Std) {
		std = &s.Std
	}
	return json.Marshal(struct {
		Mean      float64   `json:"mean_coverage"`
		Std       *float64  `json:"std_coverage"`
		Coverages []float64 `json:"coverages"`
	}{s.Mean, std, s.Coverages})
}

// Simulator runs seeded Monte Carlo baselines. Trials execute in parallel,
// each on its own derived random stream, so results are identical for any
// worker count.
type Simulator struct {
	rng     ports.RNG
	workers int
}

// NewSimulator creates a simulator. workers <= 0 selects GOMAXPROCS.
func NewSimulator(rng ports.RNG, workers int) *Simulator {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Simulator{rng: rng, workers: workers}
}

// AgeBaselineConfig parameterizes the random-age baseline.
type AgeBaselineConfig struct {
	Iterations int
	Ages       int // ages drawn per trial
	Seed       int64
	MaxAge     float64
	Windows    []timing.PhaseWindow // fixed reference windows
}

// RandomAgeBaseline draws cfg.Ages uniform ages on [0, MaxAge] per trial and
// scores them against the fixed reference windows. Per trial, ages are drawn
// sequentially from the trial stream before any scoring.
func (s *Simulator) RandomAgeBaseline(ctx context.Context, cfg AgeBaselineConfig) (*Summary, error) {
	if err := validateCommon(cfg.Iterations, cfg.MaxAge); err != nil {
		return nil, err
	}
	if cfg.Ages <= 0 {
		return nil, core.NewValidationError("n_ages", "must be positive")
	}

	return s.run(ctx, cfg.Iterations, func(trial int) (float64, error) {
		r := s.rng.TrialStream(cfg.Seed, trial)
		ages := make([]float64, cfg.Ages)
		for i := range ages {
			ages[i] = r.Float64() * cfg.MaxAge
		}
		return coverage.ForAges(ages, cfg.Windows).Coverage, nil
	})
}

// WindowBaselineConfig parameterizes the random-window baseline.
type WindowBaselineConfig struct {
	Iterations int
	Seed       int64
	MaxAge     float64
	HalfWidths []float64 // fixed breathing-window half-widths; len sets K
	Ages       []float64 // fixed empirical ages
}

// RandomWindowBaseline draws K uniform centres on [0, MaxAge] per trial,
// sorts them ascending, pairs them positionally with the fixed half-widths
// (window 1 always gets the smallest centre), and scores the fixed age set.
func (s *Simulator) RandomWindowBaseline(ctx context.Context, cfg WindowBaselineConfig) (*Summary, error) {
	if err := validateCommon(cfg.Iterations, cfg.MaxAge); err != nil {
		return nil, err
	}
	if len(cfg.HalfWidths) < 1 {
		return nil, core.ErrInvalidPhases
	}
	for _, h := range cfg.HalfWidths {
		if h < 0 {
			return nil, core.ErrInvalidWidth
		}
	}

	k := len(cfg.HalfWidths)
	return s.run(ctx, cfg.Iterations, func(trial int) (float64, error) {
		r := s.rng.TrialStream(cfg.Seed, trial)
		centres := drawSortedCentres(r, k, cfg.MaxAge)

		windows, err := timing.Build(centres, cfg.HalfWidths)
		if err != nil {
			return 0, err
		}
		return coverage.ForAges(cfg.Ages, windows).Coverage, nil
	})
}

// drawSortedCentres draws k uniform centres on [0, maxAge] in stream order,
// then sorts ascending. Window index 1 is paired with the smallest centre
// regardless of draw order.
func drawSortedCentres(r *rand.Rand, k int, maxAge float64) []float64 {
	centres := make([]float64, k)
	for i := range centres {
		centres[i] = r.Float64() * maxAge
	}
	sort.Float64s(centres)
	return centres
}

// run executes nIter trials and summarizes the coverage vector. A failure in
// any single trial invalidates the whole batch.
func (s *Simulator) run(ctx context.Context, nIter int, trial func(int) (float64, error)) (*Summary, error) {
	coverages := make([]float64, nIter)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i := 0; i < nIter; i++ {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			c, err := trial(i)
			if err != nil {
				return err
			}
			coverages[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return summarize(coverages)
}

func summarize(coverages []float64) (*Summary, error) {
	mean, err := stats.Mean(coverages)
	if err != nil {
		return nil, err
	}
	// NaN for a single trial, matching the (n-1) denominator convention.
	std, err := stats.StandardDeviationSample(coverages)
	if err != nil {
		return nil, err
	}
	return &Summary{Mean: mean, Std: std, Coverages: coverages}, nil
}

func validateCommon(nIter int, maxAge float64) error {
	if nIter <= 0 {
		return core.ErrInvalidIterates
	}
	if maxAge <= 0 {
		return core.ErrInvalidMaxAge
	}
	return nil
}
