package config

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phasewin/domain/core"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 6.0, cfg.Model.Anchor)
	assert.Equal(t, math.Phi, cfg.Model.Ratio)
	assert.Equal(t, 5, cfg.Model.Phases)
	assert.Equal(t, 3.0, cfg.Model.W0)
	assert.Equal(t, 1.5, cfg.Model.G)
	assert.Equal(t, 90.0, cfg.Sim.MaxAge)
	assert.Equal(t, 20000, cfg.Sim.Iterations)
	assert.Equal(t, int64(12345), cfg.Sim.SeedAges)
	assert.Equal(t, int64(12346), cfg.Sim.SeedWindows)
	assert.Equal(t, 1.4, cfg.Scan.RMin)
	assert.Equal(t, 1.9, cfg.Scan.RMax)
	assert.Equal(t, 51, cfg.Scan.Points)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MODEL_PHASES", "7")
	t.Setenv("SIM_SEED_AGES", "100")
	t.Setenv("SIM_SEED_WINDOWS", "200")
	t.Setenv("SCAN_POINTS", "21")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Model.Phases)
	assert.Equal(t, int64(100), cfg.Sim.SeedAges)
	assert.Equal(t, int64(200), cfg.Sim.SeedWindows)
	assert.Equal(t, 21, cfg.Scan.Points)
}

func TestValidateRejectsSeedCollision(t *testing.T) {
	t.Setenv("SIM_SEED_AGES", "42")
	t.Setenv("SIM_SEED_WINDOWS", "42")

	_, err := Load()
	assert.ErrorIs(t, err, core.ErrSeedCollision)
}

func TestValidateRejectsBadModel(t *testing.T) {
	t.Setenv("MODEL_ANCHOR", "-1")
	_, err := Load()
	assert.ErrorIs(t, err, core.ErrInvalidAnchor)
}

func TestValidateSinglePointScan(t *testing.T) {
	t.Setenv("SCAN_POINTS", "1")
	_, err := Load()
	assert.True(t, core.IsConfigError(err), "r_min != r_max with one point must fail")

	t.Setenv("SCAN_R_MIN", "1.6")
	t.Setenv("SCAN_R_MAX", "1.6")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Scan.Points)
}
