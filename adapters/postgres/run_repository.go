// Package postgres persists run summaries for external reporting tools.
package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"phasewin/ports"
)

const schema = `
CREATE TABLE IF NOT EXISTS baseline_runs (
	id                 TEXT PRIMARY KEY,
	kind               TEXT NOT NULL,
	seed               BIGINT NOT NULL,
	iterations         INTEGER NOT NULL,
	mean_coverage      DOUBLE PRECISION NOT NULL,
	std_coverage       DOUBLE PRECISION NOT NULL,
	observed_coverage  DOUBLE PRECISION NOT NULL,
	p_value            DOUBLE PRECISION NOT NULL,
	created_at         TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS scan_runs (
	id                 TEXT PRIMARY KEY,
	r_min              DOUBLE PRECISION NOT NULL,
	r_max              DOUBLE PRECISION NOT NULL,
	points             INTEGER NOT NULL,
	best_r             DOUBLE PRECISION NOT NULL,
	best_coverage      DOUBLE PRECISION NOT NULL,
	reference_coverage DOUBLE PRECISION NOT NULL,
	band_min           DOUBLE PRECISION,
	band_max           DOUBLE PRECISION,
	created_at         TIMESTAMPTZ NOT NULL
);`

// runRepository implements ports.RunRepository on PostgreSQL.
type runRepository struct {
	db *sqlx.DB
}

// Open connects to url and ensures the run tables exist.
func Open(ctx context.Context, url string) (ports.RunRepository, *sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", url)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to ensure run tables: %w", err)
	}
	return NewRunRepository(db), db, nil
}

// NewRunRepository wraps an existing connection.
func NewRunRepository(db *sqlx.DB) ports.RunRepository {
	return &runRepository{db: db}
}

// SaveBaseline inserts one Monte Carlo baseline summary.
func (r *runRepository) SaveBaseline(ctx context.Context, run *ports.BaselineRun) error {
	query := `INSERT INTO baseline_runs (
		id, kind, seed, iterations, mean_coverage, std_coverage,
		observed_coverage, p_value, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.ExecContext(ctx, query,
		run.ID, run.Kind, run.Seed, run.Iterations, run.MeanCoverage,
		run.StdCoverage, run.ObservedCoverage, run.PValue, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save baseline run: %w", err)
	}
	return nil
}

// SaveScan inserts one ratio-scan summary.
func (r *runRepository) SaveScan(ctx context.Context, run *ports.ScanRun) error {
	query := `INSERT INTO scan_runs (
		id, r_min, r_max, points, best_r, best_coverage,
		reference_coverage, band_min, band_max, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.ExecContext(ctx, query,
		run.ID, run.RMin, run.RMax, run.Points, run.BestR, run.BestCoverage,
		run.ReferenceCoverage, run.BandMin, run.BandMax, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save scan run: %w", err)
	}
	return nil
}
