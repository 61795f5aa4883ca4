package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phasewin/adapters/agedata"
	"phasewin/adapters/rng"
	"phasewin/app"
	"phasewin/internal/config"
	"phasewin/ports"
)

func testServer(t *testing.T) http.Handler {
	t.Helper()
	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.Sim.Iterations = 50 // keep simulation-backed endpoints fast

	source := agedata.Static{
		{Dataset: "BrainChart", Age: 9},
		{Dataset: "ABCD", Age: 16},
		{Dataset: "IMAGEN", Age: 24},
		{Dataset: "UKB", Age: 40},
		{Dataset: "HCP-A", Age: 62},
	}
	svc := app.NewEvaluationService(rng.New(), nil, 0)
	return NewServer(svc, source, cfg, nil).Router()
}

func TestHealthz(t *testing.T) {
	router := testServer(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetWindows(t *testing.T) {
	router := testServer(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/windows", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var windows []struct {
		Index  int     `json:"index"`
		Centre float64 `json:"centre"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &windows))
	require.Len(t, windows, 5)
	assert.Equal(t, 1, windows[0].Index)
	assert.InDelta(t, 9.708, windows[0].Centre, 0.001)
}

func TestPostCoverage(t *testing.T) {
	router := testServer(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/coverage", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var report app.CoverageReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 1.0, report.Result.Coverage)
	assert.Len(t, report.Rows, 5)
}

func TestPostCoverageWithOverride(t *testing.T) {
	router := testServer(t)

	body := strings.NewReader(`{"model": {"anchor": 100}}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/coverage", body))
	require.Equal(t, http.StatusOK, rec.Code)

	// Anchor 100 pushes every window far past the fixture ages.
	var report app.CoverageReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 0.0, report.Result.Coverage)
}

func TestPostCoverageInvalidParams(t *testing.T) {
	router := testServer(t)

	body := strings.NewReader(`{"model": {"phases": 0}}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/coverage", body))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPostBaselines(t *testing.T) {
	router := testServer(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/baselines", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var report app.BaselineReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 1.0, report.Observed)
	assert.Len(t, report.RandomAges.Summary.Coverages, 50)
	assert.Len(t, report.RandomWindows.Summary.Coverages, 50)
}

func TestPostBaselinesSingleIteration(t *testing.T) {
	router := testServer(t)

	// One iteration leaves the sample std undefined; the response must still
	// be a complete JSON document with a null std, not a truncated body.
	body := strings.NewReader(`{"iterations": 1}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/baselines", body))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Body.Bytes())

	var report struct {
		RandomAges struct {
			Summary struct {
				Std       *float64  `json:"std_coverage"`
				Coverages []float64 `json:"coverages"`
			} `json:"summary"`
		} `json:"random_ages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Nil(t, report.RandomAges.Summary.Std)
	assert.Len(t, report.RandomAges.Summary.Coverages, 1)
}

func TestPostScan(t *testing.T) {
	router := testServer(t)

	body := strings.NewReader(`{"points": 11}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/scan", body))
	require.Equal(t, http.StatusOK, rec.Code)

	var report app.ScanReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Len(t, report.Result.Ratios, 11)
	assert.Equal(t, 1.0, report.Reference)
}

func TestPostCompare(t *testing.T) {
	router := testServer(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/compare", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var models []app.ModelCoverage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &models))
	require.Len(t, models, 3)
	assert.Equal(t, "geometric", models[0].Name)
}

func TestBadJSONBody(t *testing.T) {
	router := testServer(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/scan", strings.NewReader("{not json")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ports.AgeSource conformance for the static fixture used above.
var _ ports.AgeSource = agedata.Static{}
