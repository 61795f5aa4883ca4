package timing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phasewin/domain/core"
)

func TestGeometricCentres(t *testing.T) {
	centres, err := GeometricCentres(6, Phi, 5)
	require.NoError(t, err)
	require.Len(t, centres, 5)

	for i, c := range centres {
		expected := 6 * math.Pow(Phi, float64(i+1))
		assert.InDelta(t, expected, c, 1e-12)
	}

	for i := 1; i < len(centres); i++ {
		assert.Greater(t, centres[i], centres[i-1], "centres must increase for phi > 1")
	}
}

func TestGeometricCentresValidation(t *testing.T) {
	_, err := GeometricCentres(0, Phi, 5)
	assert.True(t, core.IsConfigError(err))

	_, err = GeometricCentres(6, -1, 5)
	assert.True(t, core.IsConfigError(err))

	_, err = GeometricCentres(6, Phi, 0)
	assert.ErrorIs(t, err, core.ErrInvalidPhases)
}

func TestLinearCentres(t *testing.T) {
	centres, err := LinearCentres(10, 15, 5)
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 25, 40, 55, 70}, centres)
}

func TestExponentialCentresRangeMatched(t *testing.T) {
	r, err := RangeMatchedRatio(10, 66, 5)
	require.NoError(t, err)
	assert.InDelta(t, math.Pow(6.6, 0.25), r, 1e-12)

	centres, err := ExponentialCentres(10, r, 5)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, centres[0], 1e-12)
	assert.InDelta(t, 66.0, centres[4], 1e-9)
}

func TestHalfWidths(t *testing.T) {
	widths, err := HalfWidths(3, 1.5, 5)
	require.NoError(t, err)
	require.Len(t, widths, 5)
	assert.Equal(t, 3.0, widths[0])

	// Non-decreasing whenever g >= 1.
	for i := 1; i < len(widths); i++ {
		assert.GreaterOrEqual(t, widths[i], widths[i-1])
	}

	flat, err := HalfWidths(2, 1, 4)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 2, 2, 2}, flat)
}

func TestHalfWidthsValidation(t *testing.T) {
	_, err := HalfWidths(-1, 1.5, 5)
	assert.True(t, core.IsConfigError(err))

	_, err = HalfWidths(3, -0.5, 5)
	assert.True(t, core.IsConfigError(err))
}

func TestBuild(t *testing.T) {
	windows, err := Build([]float64{10, 20}, []float64{2, 4})
	require.NoError(t, err)
	require.Len(t, windows, 2)

	assert.Equal(t, 1, windows[0].Index)
	assert.Equal(t, 8.0, windows[0].Lower)
	assert.Equal(t, 12.0, windows[0].Upper)
	assert.Equal(t, 2, windows[1].Index)
	assert.Equal(t, 16.0, windows[1].Lower)
	assert.Equal(t, 24.0, windows[1].Upper)
}

func TestBuildLengthMismatch(t *testing.T) {
	_, err := Build([]float64{10, 20}, []float64{2})
	assert.True(t, core.IsConfigError(err))
}

func TestContainsClosedInterval(t *testing.T) {
	w := PhaseWindow{Index: 1, Centre: 10, Lower: 8, Upper: 12, HalfWidth: 2}
	assert.True(t, w.Contains(8))
	assert.True(t, w.Contains(12))
	assert.True(t, w.Contains(10))
	assert.False(t, w.Contains(7.999))
	assert.False(t, w.Contains(12.001))
}
