// Package api serves simulations, goal plans and stored reports over HTTP JSON.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"robo-advisor-lab/internal/domain"
	"robo-advisor-lab/internal/goal"
	"robo-advisor-lab/internal/lookup"
	"robo-advisor-lab/internal/observability"
	"robo-advisor-lab/internal/reporting"
	"robo-advisor-lab/internal/storage"
)

const maxBodyBytes = 1 << 20

// RequestIDHeader carries the per-request correlation ID.
const RequestIDHeader = "X-Request-ID"

// Simulator runs simulations and baseline/scenario comparisons.
type Simulator interface {
	Run(ctx context.Context, req domain.SimulationRequest) (*domain.PerformanceReport, error)
	Compare(ctx context.Context, req domain.SimulationRequest, scenario *domain.ContributionScenario) (*domain.Comparison, error)
}

// Planner builds goal plans.
type Planner interface {
	Build(ctx context.Context, req goal.PlanRequest) (*goal.Plan, error)
}

// ReportLoader renders stored runs.
type ReportLoader interface {
	Generate(ctx context.Context, runID string) (*reporting.Report, error)
}

// StatusResponse is the body of GET /status.
type StatusResponse struct {
	Status            string    `json:"status"`
	Uptime            string    `json:"uptime"`
	StartedAt         time.Time `json:"started_at"`
	LastRefreshRun    time.Time `json:"last_refresh_run,omitempty"`
	RefreshRuns       int       `json:"refresh_runs"`
	RefreshRunning    bool      `json:"refresh_running"`
	LastRefreshUsers  int       `json:"last_refresh_users"`
	LastRefreshFailed int       `json:"last_refresh_failed"`
}

// Options for creating the HTTP handler.
type Options struct {
	Simulator Simulator
	Planner   Planner
	Reports   ReportLoader
	Status    func() StatusResponse // nil serves a bare "ok" status
	Logger    *log.Logger           // nil disables request logging
	Clock     func() time.Time      // defaults to time.Now
}

// Server holds the handler dependencies.
type Server struct {
	simulator Simulator
	planner   Planner
	reports   ReportLoader
	status    func() StatusResponse
	logger    *log.Logger
	clock     func() time.Time
	mux       *http.ServeMux
}

// NewServer creates the API server and registers all routes.
func NewServer(opts Options) *Server {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	s := &Server{
		simulator: opts.Simulator,
		planner:   opts.Planner,
		reports:   opts.Reports,
		status:    opts.Status,
		logger:    opts.Logger,
		clock:     opts.Clock,
		mux:       http.NewServeMux(),
	}

	s.route("POST /api/simulate/performance", s.handleSimulate)
	s.route("POST /api/simulate/chart.png", s.handleChart)
	s.route("POST /api/health/plan", s.handlePlan)
	s.route("GET /api/benchmarks", s.handleBenchmarks)
	s.route("GET /api/reports/{id}", s.handleReport)
	s.route("GET /status", s.handleStatus)
	s.route("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	s.mux.Handle("GET /metrics", observability.Handler())

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// route registers h under pattern with request IDs, metrics and logging.
func (s *Server) route(pattern string, h http.HandlerFunc) {
	_, path, _ := strings.Cut(pattern, " ")
	s.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		h(rec, r)

		elapsed := time.Since(start)
		observability.RecordHTTPRequest(path, strconv.Itoa(rec.code), elapsed.Seconds())
		if s.logger != nil {
			s.logger.Printf("%s %s %d %s id=%s", r.Method, r.URL.Path, rec.code, elapsed.Round(time.Microsecond), id)
		}
	})
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var body SimulateRequest
	if !s.decode(w, r, &body) {
		return
	}
	req, err := body.ToDomain(s.clock())
	if err != nil {
		s.writeError(w, err)
		return
	}

	if body.Scenario != nil {
		cmp, err := s.simulator.Compare(r.Context(), req, body.Scenario.ToDomain())
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, reporting.RoundComparison(cmp))
		return
	}

	report, err := s.simulator.Run(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reporting.RoundReport(report))
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	var body SimulateRequest
	if !s.decode(w, r, &body) {
		return
	}
	req, err := body.ToDomain(s.clock())
	if err != nil {
		s.writeError(w, err)
		return
	}

	report, err := s.simulator.Run(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	png, err := reporting.RenderReportChart(report)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	var body PlanRequest
	if !s.decode(w, r, &body) {
		return
	}
	plan, err := s.planner.Build(r.Context(), body.ToDomain())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) handleBenchmarks(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"benchmarks": domain.BenchmarkProfiles})
}

// reportResponse is the JSON form of a stored run.
type reportResponse struct {
	RunID     string                    `json:"run_id"`
	UserID    string                    `json:"user_id,omitempty"`
	CreatedAt time.Time                 `json:"created_at"`
	Report    *domain.PerformanceReport `json:"report"`
}

// handleReport renders a stored run as json (default), markdown, csv or png.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.reports.Generate(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	switch format := strings.ToLower(r.URL.Query().Get("format")); format {
	case "", "json":
		writeJSON(w, http.StatusOK, reportResponse{
			RunID:     report.RunID,
			UserID:    report.UserID,
			CreatedAt: report.CreatedAt,
			Report:    report.Performance,
		})
	case "markdown", "md":
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		io.WriteString(w, reporting.RenderMarkdown(report))
	case "csv":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		io.WriteString(w, reporting.RenderCSV(report))
	case "png":
		png, err := reporting.RenderChartPNG(report)
		if err != nil {
			s.writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(png)
	default:
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown format " + strconv.Quote(format)})
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	resp := StatusResponse{Status: "ok"}
	if s.status != nil {
		resp = s.status()
	}
	writeJSON(w, http.StatusOK, resp)
}

type errorResponse struct {
	Error string `json:"error"`
}

// decode reads a JSON body into v, writing a 400 on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body: " + err.Error()})
		return false
	}
	return true
}

// writeError maps domain and storage errors to HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidConfiguration), errors.Is(err, storage.ErrInvalidInput):
		code = http.StatusBadRequest
	case errors.Is(err, storage.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, lookup.ErrMalformedSeries), errors.Is(err, reporting.ErrEmptySeries):
		code = http.StatusUnprocessableEntity
	}
	if code == http.StatusInternalServerError && s.logger != nil {
		s.logger.Printf("internal error: %v", err)
	}
	writeJSON(w, code, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
