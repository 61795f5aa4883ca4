package ports

import (
	"context"
	"time"

	"phasewin/domain/core"
)

// BaselineRun is the persisted summary of one Monte Carlo baseline.
type BaselineRun struct {
	ID               core.ID   `db:"id"`
	Kind             string    `db:"kind"` // "random_age" or "random_window"
	Seed             int64     `db:"seed"`
	Iterations       int       `db:"iterations"`
	MeanCoverage     float64   `db:"mean_coverage"`
	StdCoverage      float64   `db:"std_coverage"`
	ObservedCoverage float64   `db:"observed_coverage"`
	PValue           float64   `db:"p_value"`
	CreatedAt        time.Time `db:"created_at"`
}

// ScanRun is the persisted summary of one ratio scan.
type ScanRun struct {
	ID                core.ID   `db:"id"`
	RMin              float64   `db:"r_min"`
	RMax              float64   `db:"r_max"`
	Points            int       `db:"points"`
	BestR             float64   `db:"best_r"`
	BestCoverage      float64   `db:"best_coverage"`
	ReferenceCoverage float64   `db:"reference_coverage"`
	BandMin           *float64  `db:"band_min"` // nil when no ratio qualifies
	BandMax           *float64  `db:"band_max"`
	CreatedAt         time.Time `db:"created_at"`
}

// RunRepository persists run summaries for external reporting.
type RunRepository interface {
	SaveBaseline(ctx context.Context, run *BaselineRun) error
	SaveScan(ctx context.Context, run *ScanRun) error
}
