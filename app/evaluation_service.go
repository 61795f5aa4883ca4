// Package app orchestrates the evaluation pipeline: window construction,
// coverage scoring, Monte Carlo baselines, ratio scans, and alternative
// spacing models. Rendering of the results stays with external callers.
package app

import (
	"context"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/stat/distuv"

	"phasewin/domain/core"
	"phasewin/domain/coverage"
	"phasewin/domain/timing"
	"phasewin/internal/montecarlo"
	"phasewin/internal/ratioscan"
	"phasewin/ports"
)

// ModelParams describes one phase-window configuration. Constants never live
// in package state; every call carries its own parameter set.
type ModelParams struct {
	Anchor float64 `json:"anchor"`
	Ratio  float64 `json:"ratio"`
	Phases int     `json:"phases"`
	W0     float64 `json:"w0"`
	G      float64 `json:"g"`
}

// Windows builds the geometric phase windows for these parameters.
func (p ModelParams) Windows() ([]timing.PhaseWindow, error) {
	centres, err := timing.GeometricCentres(p.Anchor, p.Ratio, p.Phases)
	if err != nil {
		return nil, err
	}
	halfWidths, err := timing.HalfWidths(p.W0, p.G, p.Phases)
	if err != nil {
		return nil, err
	}
	return timing.Build(centres, halfWidths)
}

// EvaluationService runs the pipeline against injected ports.
type EvaluationService struct {
	sim  *montecarlo.Simulator
	runs ports.RunRepository // nil disables persistence
}

// NewEvaluationService creates the service. runs may be nil; workers <= 0
// selects GOMAXPROCS for Monte Carlo trials.
func NewEvaluationService(rngPort ports.RNG, runs ports.RunRepository, workers int) *EvaluationService {
	return &EvaluationService{
		sim:  montecarlo.NewSimulator(rngPort, workers),
		runs: runs,
	}
}

// AgeAssignment is one row of the per-age coverage table.
type AgeAssignment struct {
	Dataset string  `json:"dataset"`
	Age     float64 `json:"age"`
	Phase   int     `json:"phase"` // 0 when no window contains the age
	Covered bool    `json:"covered"`
}

// CoverageReport pairs the coverage result with its window definitions and
// the per-age table consumed by external reporting.
type CoverageReport struct {
	RunID   core.ID              `json:"run_id"`
	Windows []timing.PhaseWindow `json:"windows"`
	Result  coverage.Result      `json:"result"`
	Rows    []AgeAssignment      `json:"rows"`
}

// EvaluateCoverage scores the age records against the model's windows.
func (s *EvaluationService) EvaluateCoverage(ctx context.Context, params ModelParams, records []ports.AgeRecord) (*CoverageReport, error) {
	windows, err := params.Windows()
	if err != nil {
		return nil, err
	}

	res := coverage.ForAges(ports.AgeValues(records), windows)
	rows := make([]AgeAssignment, len(records))
	for i, rec := range records {
		rows[i] = AgeAssignment{
			Dataset: rec.Dataset,
			Age:     rec.Age,
			Phase:   res.Assignment[i],
			Covered: res.Covered[i],
		}
	}

	return &CoverageReport{
		RunID:   core.NewID(),
		Windows: windows,
		Result:  res,
		Rows:    rows,
	}, nil
}

// BaselineOutcome summarizes one null distribution against the observed
// coverage. PValue is the exact one-sided Monte Carlo estimate; ZScore and
// NormalP are a normal-approximation diagnostic reported alongside it, nil
// when the null spread is zero or undefined.
type BaselineOutcome struct {
	Summary *montecarlo.Summary `json:"summary"`
	PValue  float64             `json:"p_value"`
	ZScore  *float64            `json:"z_score,omitempty"`
	NormalP *float64            `json:"normal_p,omitempty"`
}

// BaselinesRequest sizes both Monte Carlo baselines. The seeds must differ
// so the two null distributions stay statistically independent.
type BaselinesRequest struct {
	Params       ModelParams
	Records      []ports.AgeRecord
	MaxAge       float64
	Iterations   int
	AgesPerTrial int
	SeedAges     int64
	SeedWindows  int64
	Store        bool
}

// BaselineReport carries both null models and the observed reference.
type BaselineReport struct {
	RunID         core.ID         `json:"run_id"`
	Observed      float64         `json:"observed_coverage"`
	RandomAges    BaselineOutcome `json:"random_ages"`
	RandomWindows BaselineOutcome `json:"random_windows"`
}

// RunBaselines runs the random-age and random-window baselines and computes
// the empirical significance of the observed coverage under each.
func (s *EvaluationService) RunBaselines(ctx context.Context, req BaselinesRequest) (*BaselineReport, error) {
	if req.SeedAges == req.SeedWindows {
		return nil, core.ErrSeedCollision
	}

	windows, err := req.Params.Windows()
	if err != nil {
		return nil, err
	}
	halfWidths, err := timing.HalfWidths(req.Params.W0, req.Params.G, req.Params.Phases)
	if err != nil {
		return nil, err
	}

	ages := ports.AgeValues(req.Records)
	observed := coverage.ForAges(ages, windows).Coverage

	randomAges, err := s.sim.RandomAgeBaseline(ctx, montecarlo.AgeBaselineConfig{
		Iterations: req.Iterations,
		Ages:       req.AgesPerTrial,
		Seed:       req.SeedAges,
		MaxAge:     req.MaxAge,
		Windows:    windows,
	})
	if err != nil {
		return nil, fmt.Errorf("random-age baseline: %w", err)
	}

	randomWindows, err := s.sim.RandomWindowBaseline(ctx, montecarlo.WindowBaselineConfig{
		Iterations: req.Iterations,
		Seed:       req.SeedWindows,
		MaxAge:     req.MaxAge,
		HalfWidths: halfWidths,
		Ages:       ages,
	})
	if err != nil {
		return nil, fmt.Errorf("random-window baseline: %w", err)
	}

	report := &BaselineReport{
		RunID:         core.NewID(),
		Observed:      observed,
		RandomAges:    outcome(randomAges, observed),
		RandomWindows: outcome(randomWindows, observed),
	}

	if req.Store && s.runs != nil {
		now := time.Now().UTC()
		saves := []*ports.BaselineRun{
			{
				ID: core.NewID(), Kind: "random_age", Seed: req.SeedAges,
				Iterations: req.Iterations, MeanCoverage: randomAges.Mean,
				StdCoverage: randomAges.Std, ObservedCoverage: observed,
				PValue: report.RandomAges.PValue, CreatedAt: now,
			},
			{
				ID: core.NewID(), Kind: "random_window", Seed: req.SeedWindows,
				Iterations: req.Iterations, MeanCoverage: randomWindows.Mean,
				StdCoverage: randomWindows.Std, ObservedCoverage: observed,
				PValue: report.RandomWindows.PValue, CreatedAt: now,
			},
		}
		for _, run := range saves {
			if err := s.runs.SaveBaseline(ctx, run); err != nil {
				return nil, fmt.Errorf("persist %s baseline: %w", run.Kind, err)
			}
		}
	}
	return report, nil
}

func outcome(summary *montecarlo.Summary, observed float64) BaselineOutcome {
	out := BaselineOutcome{
		Summary: summary,
		PValue:  coverage.EmpiricalPValue(summary.Coverages, observed),
	}
	if summary.Std > 0 && !math.IsNaN(summary.Std) {
		z := (observed - summary.Mean) / summary.Std
		p := distuv.UnitNormal.Survival(z)
		out.ZScore = &z
		out.NormalP = &p
	}
	return out
}

// ScanRequest sweeps the scaling ratio against the fixed age records.
type ScanRequest struct {
	Params  ModelParams
	Records []ports.AgeRecord
	RMin    float64
	RMax    float64
	Points  int
	Store   bool
}

// ScanReport is the response curve plus the effective band relative to the
// observed coverage of the reference model.
type ScanReport struct {
	RunID     core.ID           `json:"run_id"`
	Reference float64           `json:"reference_coverage"`
	Result    *ratioscan.Result `json:"result"`
	Band      *ratioscan.Band   `json:"band,omitempty"`
}

// ScanRatios sweeps [RMin, RMax] and derives the band of ratios matching the
// reference model's coverage.
func (s *EvaluationService) ScanRatios(ctx context.Context, req ScanRequest) (*ScanReport, error) {
	windows, err := req.Params.Windows()
	if err != nil {
		return nil, err
	}
	ages := ports.AgeValues(req.Records)
	reference := coverage.ForAges(ages, windows).Coverage

	result, err := ratioscan.Scan(ratioscan.Config{
		RMin:   req.RMin,
		RMax:   req.RMax,
		Points: req.Points,
		Anchor: req.Params.Anchor,
		W0:     req.Params.W0,
		G:      req.Params.G,
		Phases: req.Params.Phases,
	}, ages)
	if err != nil {
		return nil, err
	}

	report := &ScanReport{
		RunID:     core.NewID(),
		Reference: reference,
		Result:    result,
		Band:      result.EffectiveBand(reference),
	}

	if req.Store && s.runs != nil {
		run := &ports.ScanRun{
			ID: report.RunID, RMin: req.RMin, RMax: req.RMax, Points: req.Points,
			BestR: result.BestR, BestCoverage: result.BestCoverage,
			ReferenceCoverage: reference, CreatedAt: time.Now().UTC(),
		}
		if report.Band != nil {
			run.BandMin = &report.Band.Min
			run.BandMax = &report.Band.Max
		}
		if err := s.runs.SaveScan(ctx, run); err != nil {
			return nil, fmt.Errorf("persist scan: %w", err)
		}
	}
	return report, nil
}

// CompareRequest evaluates the reference model against linear and
// range-matched exponential spacing, all sharing the breathing half-widths.
type CompareRequest struct {
	Params      ModelParams
	Records     []ports.AgeRecord
	LinearStart float64 // first linear centre
	LinearStep  float64
	ExpStart    float64 // first exponential centre
	ExpEnd      float64 // last exponential centre (sets the matched ratio)
}

// ModelCoverage is the coverage of one named spacing model.
type ModelCoverage struct {
	Name     string               `json:"name"`
	Windows  []timing.PhaseWindow `json:"windows"`
	Coverage float64              `json:"coverage"`
}

// CompareModels scores the geometric reference model and the two baseline
// spacing laws against the same ages.
func (s *EvaluationService) CompareModels(ctx context.Context, req CompareRequest) ([]ModelCoverage, error) {
	halfWidths, err := timing.HalfWidths(req.Params.W0, req.Params.G, req.Params.Phases)
	if err != nil {
		return nil, err
	}
	ages := ports.AgeValues(req.Records)

	geometric, err := req.Params.Windows()
	if err != nil {
		return nil, err
	}

	linearCentres, err := timing.LinearCentres(req.LinearStart, req.LinearStep, req.Params.Phases)
	if err != nil {
		return nil, err
	}
	linear, err := timing.Build(linearCentres, halfWidths)
	if err != nil {
		return nil, err
	}

	expRatio, err := timing.RangeMatchedRatio(req.ExpStart, req.ExpEnd, req.Params.Phases)
	if err != nil {
		return nil, err
	}
	expCentres, err := timing.ExponentialCentres(req.ExpStart, expRatio, req.Params.Phases)
	if err != nil {
		return nil, err
	}
	exponential, err := timing.Build(expCentres, halfWidths)
	if err != nil {
		return nil, err
	}

	models := []ModelCoverage{
		{Name: "geometric", Windows: geometric},
		{Name: "linear", Windows: linear},
		{Name: "exponential", Windows: exponential},
	}
	for i := range models {
		models[i].Coverage = coverage.ForAges(ages, models[i].Windows).Coverage
	}
	return models, nil
}
