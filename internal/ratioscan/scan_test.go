package ratioscan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phasewin/domain/core"
	"phasewin/domain/coverage"
	"phasewin/domain/timing"
)

var referenceConfig = Config{
	RMin:   1.4,
	RMax:   1.9,
	Points: 51,
	Anchor: 6,
	W0:     3,
	G:      1.5,
	Phases: 5,
}

func TestScanSinglePoint(t *testing.T) {
	cfg := referenceConfig
	cfg.RMin, cfg.RMax, cfg.Points = 1.4, 1.4, 1

	ages := []float64{9, 16, 24, 40, 62}
	res, err := Scan(cfg, ages)
	require.NoError(t, err)

	require.Equal(t, []float64{1.4}, res.Ratios)
	require.Len(t, res.Coverages, 1)

	// Must equal a direct evaluation of the same construction.
	centres, err := timing.ArbitraryRatioCentres(6, 1.4, 5)
	require.NoError(t, err)
	widths, err := timing.HalfWidths(3, 1.5, 5)
	require.NoError(t, err)
	windows, err := timing.Build(centres, widths)
	require.NoError(t, err)

	direct := coverage.ForAges(ages, windows).Coverage
	assert.Equal(t, direct, res.Coverages[0])
	assert.Equal(t, 1.4, res.BestR)
	assert.Equal(t, direct, res.BestCoverage)
}

func TestScanSinglePointMismatchedEndpoints(t *testing.T) {
	cfg := referenceConfig
	cfg.Points = 1 // r_min != r_max

	_, err := Scan(cfg, []float64{10})
	assert.True(t, core.IsConfigError(err))
}

func TestScanGrid(t *testing.T) {
	ages := []float64{9, 16, 24, 40, 62}
	res, err := Scan(referenceConfig, ages)
	require.NoError(t, err)

	require.Len(t, res.Ratios, 51)
	require.Len(t, res.Coverages, 51)
	assert.Equal(t, 1.4, res.Ratios[0])
	assert.InDelta(t, 1.9, res.Ratios[50], 1e-12)
	// Even spacing, endpoints inclusive.
	assert.InDelta(t, 0.01, res.Ratios[1]-res.Ratios[0], 1e-12)

	// Ages were placed in the phi-model windows, so ratios near phi must
	// reach full coverage and the best must match it.
	band := res.EffectiveBand(1.0)
	require.NotNil(t, band)
	assert.LessOrEqual(t, band.Min, timing.Phi)
	assert.GreaterOrEqual(t, band.Max, timing.Phi)
	assert.Equal(t, 1.0, res.BestCoverage)
}

func TestScanBestTieBreaksToFirst(t *testing.T) {
	// A single age inside every scanned configuration ties all ratios at
	// coverage 1; the first (smallest) ratio must win.
	cfg := referenceConfig
	cfg.Points = 11

	res, err := Scan(cfg, []float64{9})
	require.NoError(t, err)

	allOne := true
	for _, c := range res.Coverages {
		if c != 1.0 {
			allOne = false
		}
	}
	require.True(t, allOne)
	assert.Equal(t, res.Ratios[0], res.BestR)
}

func TestEffectiveBandAbsent(t *testing.T) {
	res, err := Scan(referenceConfig, []float64{1, 2, 3})
	require.NoError(t, err)

	assert.Equal(t, 0.0, res.BestCoverage)
	assert.Nil(t, res.EffectiveBand(0.5))
}

func TestEffectiveBandNonContiguous(t *testing.T) {
	// Hand-built curve with a gap in the qualifying subset: the band spans
	// min..max anyway (documented overstatement).
	res := &Result{
		Ratios:    []float64{1.0, 1.1, 1.2, 1.3, 1.4},
		Coverages: []float64{0.9, 0.1, 0.1, 0.9, 0.1},
	}
	band := res.EffectiveBand(0.5)
	require.NotNil(t, band)
	assert.Equal(t, 1.0, band.Min)
	assert.Equal(t, 1.3, band.Max)
}

func TestScanValidation(t *testing.T) {
	cfg := referenceConfig
	cfg.Points = 0
	_, err := Scan(cfg, nil)
	assert.True(t, core.IsConfigError(err))

	cfg = referenceConfig
	cfg.RMin, cfg.RMax = 2.0, 1.5
	_, err = Scan(cfg, nil)
	assert.True(t, core.IsConfigError(err))

	cfg = referenceConfig
	cfg.Anchor = 0
	_, err = Scan(cfg, nil)
	assert.True(t, core.IsConfigError(err))
}
