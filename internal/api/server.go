// Package api exposes the layout pipeline over HTTP.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/sceneplan/sceneplan/pkg/errors"
	"github.com/sceneplan/sceneplan/pkg/pipeline"
	"github.com/sceneplan/sceneplan/pkg/plan"
	"github.com/sceneplan/sceneplan/pkg/store"
)

// Server wires the pipeline runner and plan store behind a chi router.
type Server struct {
	runner   *pipeline.Runner
	store    store.Store
	logger   *log.Logger
	defaults pipeline.Options
}

// NewServer creates a server. A nil store falls back to in-memory
// storage; a nil logger falls back to the default logger. Zero-valued
// fields in a request's options inherit from defaults, so operators
// can set canvas and layout policy once in the server config.
func NewServer(runner *pipeline.Runner, st store.Store, logger *log.Logger, defaults pipeline.Options) *Server {
	if st == nil {
		st = store.NewMemoryStore()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Server{runner: runner, store: st, logger: logger, defaults: defaults}
}

// applyDefaults fills unset plan options from the server defaults.
func (s *Server) applyDefaults(o *pipeline.Options) {
	if o.CanvasWidth == 0 {
		o.CanvasWidth = s.defaults.CanvasWidth
	}
	if o.CanvasHeight == 0 {
		o.CanvasHeight = s.defaults.CanvasHeight
	}
	if o.Margin == 0 {
		o.Margin = s.defaults.Margin
	}
	if o.Strategy == "" {
		o.Strategy = s.defaults.Strategy
	}
	if o.GridRows == 0 {
		o.GridRows = s.defaults.GridRows
	}
	if o.GridCols == 0 {
		o.GridCols = s.defaults.GridCols
	}
}

// Router builds the HTTP routes.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1/plans", func(r chi.Router) {
		r.Post("/", s.handleCreatePlan)
		r.Get("/", s.handleListPlans)
		r.Get("/{id}", s.handleGetPlan)
		r.Get("/{id}/artifacts/{format}", s.handleGetArtifact)
	})
	return r
}

// planRequest is the POST /v1/plans body.
type planRequest struct {
	Requests []plan.Request   `json:"requests"`
	Options  pipeline.Options `json:"options"`
}

// planResponse is the POST /v1/plans reply.
type planResponse struct {
	ID        uuid.UUID          `json:"id"`
	Plan      *plan.Plan         `json:"plan"`
	PlanHash  string             `json:"plan_hash"`
	Stats     statsResponse      `json:"stats"`
	CacheInfo pipeline.CacheInfo `json:"cache_info"`
}

type statsResponse struct {
	Requests int   `json:"requests"`
	Placed   int   `json:"placed"`
	Failed   int   `json:"failed"`
	PlanMs   int64 `json:"plan_ms"`
	RenderMs int64 `json:"render_ms"`
	Formats  int   `json:"formats"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.New(errors.ErrCodeInvalidRequest, "invalid JSON body: %v", err))
		return
	}
	if len(req.Requests) == 0 {
		writeError(w, errors.New(errors.ErrCodeInvalidRequest, "requests must not be empty"))
		return
	}

	s.applyDefaults(&req.Options)
	result, err := s.runner.Execute(r.Context(), req.Requests, req.Options)
	if err != nil {
		writeError(w, err)
		return
	}

	stored := &store.StoredPlan{
		ID:        uuid.New(),
		CreatedAt: time.Now().UTC(),
		Requests:  req.Requests,
		Plan:      result.Plan,
	}
	if err := s.store.Insert(r.Context(), stored); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "store plan"))
		return
	}

	writeJSON(w, http.StatusCreated, planResponse{
		ID:       stored.ID,
		Plan:     result.Plan,
		PlanHash: result.PlanHash,
		Stats: statsResponse{
			Requests: result.Stats.RequestCount,
			Placed:   result.Stats.PlacedCount,
			Failed:   result.Stats.FailedCount,
			PlanMs:   result.Stats.PlanTime.Milliseconds(),
			RenderMs: result.Stats.RenderTime.Milliseconds(),
			Formats:  len(result.Artifacts),
		},
		CacheInfo: result.CacheInfo,
	})
}

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.store.List(r.Context(), 50)
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "list plans"))
		return
	}
	writeJSON(w, http.StatusOK, plans)
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	stored, ok := s.loadPlan(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, stored)
}

func (s *Server) handleGetArtifact(w http.ResponseWriter, r *http.Request) {
	stored, ok := s.loadPlan(w, r)
	if !ok {
		return
	}

	format := chi.URLParam(r, "format")
	if err := pipeline.ValidateFormat(format); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidRequest, err, "format"))
		return
	}

	opts := pipeline.Options{Formats: []string{format}}
	if q := r.URL.Query().Get("t"); q != "" {
		t, err := strconv.ParseFloat(q, 64)
		if err != nil {
			writeError(w, errors.New(errors.ErrCodeInvalidRequest, "invalid snapshot time %q", q))
			return
		}
		opts.Snapshot = true
		opts.SnapshotTime = t
	}
	if r.URL.Query().Get("grid") == "true" {
		opts.ShowGrid = true
	}

	artifacts, err := s.runner.Render(r.Context(), stored.Plan, opts)
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "render artifact"))
		return
	}

	w.Header().Set("Content-Type", contentType(format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifacts[format])
}

// loadPlan parses the id param and fetches the record, writing the
// error response itself on failure.
func (s *Server) loadPlan(w http.ResponseWriter, r *http.Request) (*store.StoredPlan, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, errors.New(errors.ErrCodeInvalidRequest, "invalid plan id"))
		return nil, false
	}
	stored, err := s.store.Get(r.Context(), id)
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "load plan"))
		return nil, false
	}
	if stored == nil {
		writeError(w, errors.New(errors.ErrCodeNotFound, "plan %s not found", id))
		return nil, false
	}
	return stored, true
}

func contentType(format string) string {
	switch format {
	case pipeline.FormatSVG:
		return "image/svg+xml"
	case pipeline.FormatPNG:
		return "image/png"
	case pipeline.FormatDOT:
		return "text/vnd.graphviz"
	default:
		return "application/json"
	}
}

// logRequests logs method, path, status and latency per request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start))
	})
}

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	writeJSON(w, statusFor(code), errorResponse{
		Error: errorBody{Code: code, Message: errors.UserMessage(err)},
	})
}

func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeInternal, "":
		return http.StatusInternalServerError
	case errors.ErrCodeConflict, errors.ErrCodeDuplicateID:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
