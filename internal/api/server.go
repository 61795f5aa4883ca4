// Package api exposes the evaluation pipeline over HTTP as JSON, for
// external reporting and plotting collaborators. Handlers decode a request,
// call the app service, and encode the result; no rendering happens here.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"phasewin/app"
	"phasewin/domain/core"
	"phasewin/internal"
	"phasewin/internal/config"
	"phasewin/ports"
)

// Server serves the evaluation API.
type Server struct {
	svc    *app.EvaluationService
	source ports.AgeSource
	cfg    *config.Config
	log    *internal.Logger
}

// NewServer wires the API against the app service and the configured age
// source. Request bodies may override model and simulation parameters; the
// config supplies defaults for anything omitted.
func NewServer(svc *app.EvaluationService, source ports.AgeSource, cfg *config.Config, logger *internal.Logger) *Server {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Server{svc: svc, source: source, cfg: cfg, log: logger}
}

// Router builds the chi router.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/windows", s.handleWindows)
	r.Post("/coverage", s.handleCoverage)
	r.Post("/baselines", s.handleBaselines)
	r.Post("/scan", s.handleScan)
	r.Post("/compare", s.handleCompare)

	return r
}

// modelRequest carries optional model-parameter overrides.
type modelRequest struct {
	Anchor *float64 `json:"anchor,omitempty"`
	Ratio  *float64 `json:"ratio,omitempty"`
	Phases *int     `json:"phases,omitempty"`
	W0     *float64 `json:"w0,omitempty"`
	G      *float64 `json:"g,omitempty"`
}

func (s *Server) params(m modelRequest) app.ModelParams {
	p := app.ModelParams{
		Anchor: s.cfg.Model.Anchor,
		Ratio:  s.cfg.Model.Ratio,
		Phases: s.cfg.Model.Phases,
		W0:     s.cfg.Model.W0,
		G:      s.cfg.Model.G,
	}
	if m.Anchor != nil {
		p.Anchor = *m.Anchor
	}
	if m.Ratio != nil {
		p.Ratio = *m.Ratio
	}
	if m.Phases != nil {
		p.Phases = *m.Phases
	}
	if m.W0 != nil {
		p.W0 = *m.W0
	}
	if m.G != nil {
		p.G = *m.G
	}
	return p
}

func (s *Server) handleWindows(w http.ResponseWriter, r *http.Request) {
	windows, err := s.params(modelRequest{}).Windows()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, windows)
}

func (s *Server) handleCoverage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Model modelRequest `json:"model"`
	}
	if !s.decode(w, r, &req) {
		return
	}

	records, err := s.source.Ages(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	report, err := s.svc.EvaluateCoverage(r.Context(), s.params(req.Model), records)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleBaselines(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Model       modelRequest `json:"model"`
		Iterations  *int         `json:"iterations,omitempty"`
		Store       bool         `json:"store,omitempty"`
		SeedAges    *int64       `json:"seed_ages,omitempty"`
		SeedWindows *int64       `json:"seed_windows,omitempty"`
	}
	if !s.decode(w, r, &req) {
		return
	}

	records, err := s.source.Ages(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	breq := app.BaselinesRequest{
		Params:       s.params(req.Model),
		Records:      records,
		MaxAge:       s.cfg.Sim.MaxAge,
		Iterations:   s.cfg.Sim.Iterations,
		AgesPerTrial: s.cfg.Sim.Ages,
		SeedAges:     s.cfg.Sim.SeedAges,
		SeedWindows:  s.cfg.Sim.SeedWindows,
		Store:        req.Store,
	}
	if req.Iterations != nil {
		breq.Iterations = *req.Iterations
	}
	if req.SeedAges != nil {
		breq.SeedAges = *req.SeedAges
	}
	if req.SeedWindows != nil {
		breq.SeedWindows = *req.SeedWindows
	}

	report, err := s.svc.RunBaselines(r.Context(), breq)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Model  modelRequest `json:"model"`
		RMin   *float64     `json:"r_min,omitempty"`
		RMax   *float64     `json:"r_max,omitempty"`
		Points *int         `json:"points,omitempty"`
		Store  bool         `json:"store,omitempty"`
	}
	if !s.decode(w, r, &req) {
		return
	}

	records, err := s.source.Ages(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	sreq := app.ScanRequest{
		Params:  s.params(req.Model),
		Records: records,
		RMin:    s.cfg.Scan.RMin,
		RMax:    s.cfg.Scan.RMax,
		Points:  s.cfg.Scan.Points,
		Store:   req.Store,
	}
	if req.RMin != nil {
		sreq.RMin = *req.RMin
	}
	if req.RMax != nil {
		sreq.RMax = *req.RMax
	}
	if req.Points != nil {
		sreq.Points = *req.Points
	}

	report, err := s.svc.ScanRatios(r.Context(), sreq)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Model       modelRequest `json:"model"`
		LinearStart *float64     `json:"linear_start,omitempty"`
		LinearStep  *float64     `json:"linear_step,omitempty"`
		ExpStart    *float64     `json:"exp_start,omitempty"`
		ExpEnd      *float64     `json:"exp_end,omitempty"`
	}
	if !s.decode(w, r, &req) {
		return
	}

	records, err := s.source.Ages(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	creq := app.CompareRequest{
		Params:      s.params(req.Model),
		Records:     records,
		LinearStart: 10,
		LinearStep:  15,
		ExpStart:    10,
		ExpEnd:      66,
	}
	if req.LinearStart != nil {
		creq.LinearStart = *req.LinearStart
	}
	if req.LinearStep != nil {
		creq.LinearStep = *req.LinearStep
	}
	if req.ExpStart != nil {
		creq.ExpStart = *req.ExpStart
	}
	if req.ExpEnd != nil {
		creq.ExpEnd = *req.ExpEnd
	}

	models, err := s.svc.CompareModels(r.Context(), creq)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models)
}

// decode parses an optional JSON body; an empty body means "all defaults".
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return true
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body: " + err.Error()})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	// Marshal before writing the header so an encode failure can still
	// surface as a 500 instead of a truncated 200.
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"failed to encode response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if core.IsConfigError(err) {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
