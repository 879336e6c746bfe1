// Package server exposes the sizing solver over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"controller-sizer/internal/catalog"
	"controller-sizer/internal/domain"
	"controller-sizer/internal/observability"
	"controller-sizer/internal/orchestrator"
	"controller-sizer/internal/solver"
	"controller-sizer/internal/storage"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// Options for creating Server.
type Options struct {
	// Required
	Orchestrator *orchestrator.Orchestrator

	// Optional
	Metrics          *observability.Metrics
	Logger           *zap.Logger
	SolveTimeout     time.Duration // zero means no limit
	ProgressInterval time.Duration // minimum gap between stream progress messages
}

// Server routes HTTP requests to the orchestrator.
type Server struct {
	orch             *orchestrator.Orchestrator
	metrics          *observability.Metrics
	log              *zap.Logger
	solveTimeout     time.Duration
	progressInterval time.Duration
	upgrader         websocket.Upgrader
	router           *mux.Router
	started          time.Time
}

// New creates a Server and registers its routes.
func New(opts Options) *Server {
	s := &Server{
		orch:             opts.Orchestrator,
		metrics:          opts.Metrics,
		log:              opts.Logger,
		solveTimeout:     opts.SolveTimeout,
		progressInterval: opts.ProgressInterval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		started: time.Now(),
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.progressInterval <= 0 {
		s.progressInterval = 250 * time.Millisecond
	}

	r := mux.NewRouter()
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/catalog", s.handleCatalog).Methods(http.MethodGet)
	v1.HandleFunc("/solve", s.handleSolve).Methods(http.MethodPost)
	v1.HandleFunc("/solve/stream", s.handleSolveStream).Methods(http.MethodGet)
	v1.HandleFunc("/batch", s.handleBatch).Methods(http.MethodPost)
	v1.HandleFunc("/runs", s.handleRuns).Methods(http.MethodGet)
	v1.HandleFunc("/runs/{id}", s.handleRun).Methods(http.MethodGet)
	s.router = r

	return s
}

// Handler returns the router wrapped with access logging and panic recovery.
func (s *Server) Handler() http.Handler {
	stdlog := zap.NewStdLog(s.log.Named("http"))
	recovered := handlers.RecoveryHandler(
		handlers.RecoveryLogger(stdlog),
		handlers.PrintRecoveryStack(false),
	)(s.router)
	return handlers.LoggingHandler(stdlog.Writer(), recovered)
}

// HealthResponse is the JSON response for /health.
type HealthResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Uptime: time.Since(s.started).Truncate(time.Second).String(),
	})
}

// CatalogResponse is the JSON response for /v1/catalog.
type CatalogResponse struct {
	Modules      []domain.ModuleSpec `json:"modules"`
	AuxRule      catalog.AuxRule     `json:"aux_rule"`
	Columns      []string            `json:"columns"`
	UsedFallback bool                `json:"used_fallback"`
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	cat, prices := s.orch.Catalog(r.Context())
	writeJSON(w, http.StatusOK, CatalogResponse{
		Modules:      cat.Modules(),
		AuxRule:      cat.AuxRule(),
		Columns:      cat.Schema().Columns(),
		UsedFallback: prices.UsedFallback,
	})
}

// SolveRequest is the body of POST /v1/solve.
type SolveRequest struct {
	Demand       domain.PointDemand `json:"demand"`
	SparePercent float64            `json:"spare_percent"`
	Base         string             `json:"base"`
	Expansions   []string           `json:"expansions"`
	IncludeAux   bool               `json:"include_aux"`
}

func (r SolveRequest) solverRequest() solver.Request {
	return solver.Request{
		Demand:       r.Demand,
		SparePercent: r.SparePercent,
		Base:         r.Base,
		Expansions:   r.Expansions,
		IncludeAux:   r.IncludeAux,
	}
}

// SolveResponse is the JSON response for POST /v1/solve.
type SolveResponse struct {
	orchestrator.RunInfo
	Demand     domain.PointDemand `json:"demand"`
	Enumerated int64              `json:"enumerated"`
	Feasible   int64              `json:"feasible"`
	Columns    []string           `json:"columns"`
	Rows       [][]float64        `json:"rows"`
}

func newSolveResponse(res *orchestrator.SolveResult) SolveResponse {
	out := res.Outcome
	rows := make([][]float64, len(out.Candidates))
	for i, c := range out.Candidates {
		rows[i] = c.Values(out.Schema)
	}
	return SolveResponse{
		RunInfo:    res.RunInfo,
		Demand:     out.Demand,
		Enumerated: out.Enumerated,
		Feasible:   out.Feasible,
		Columns:    out.Schema.Columns(),
		Rows:       rows,
	}
}

func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	var req SolveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	ctx, cancel := s.withTimeout(r.Context())
	defer cancel()

	res, err := s.orch.Solve(ctx, req.solverRequest())
	if err != nil {
		s.logFailure("solve failed", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newSolveResponse(res))
}

// BatchRow is one selection in a BatchResponse.
type BatchRow struct {
	Name   string             `json:"name"`
	Demand domain.PointDemand `json:"demand"`
	Values []float64          `json:"values"`
}

// BatchResponse is the JSON response for POST /v1/batch.
type BatchResponse struct {
	orchestrator.RunInfo
	Columns []string   `json:"columns"`
	Rows    []BatchRow `json:"rows"`
	Total   []float64  `json:"total"`
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req orchestrator.BatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	ctx, cancel := s.withTimeout(r.Context())
	defer cancel()

	res, err := s.orch.Batch(ctx, req)
	if err != nil {
		s.logFailure("batch failed", err)
		writeError(w, err)
		return
	}

	rows := make([]BatchRow, len(res.Result.Rows))
	for i, sel := range res.Result.Rows {
		rows[i] = BatchRow{
			Name:   sel.Name,
			Demand: sel.Demand,
			Values: sel.Candidate.Values(res.Result.Schema),
		}
	}
	writeJSON(w, http.StatusOK, BatchResponse{
		RunInfo: res.RunInfo,
		Columns: res.Result.Schema.Columns(),
		Rows:    rows,
		Total:   res.Result.Total,
	})
}

// RunResponse is the JSON response for GET /v1/runs/{id}.
type RunResponse struct {
	ID             string              `json:"run_id"`
	Kind           domain.RunKind      `json:"kind"`
	Fingerprint    string              `json:"fingerprint"`
	Base           string              `json:"base"`
	Expansions     []string            `json:"expansions"`
	IncludeAux     bool                `json:"include_aux"`
	SparePercent   float64             `json:"spare_percent"`
	UsedFallback   bool                `json:"used_fallback"`
	CandidateCount int                 `json:"candidate_count"`
	BestPrice      *float64            `json:"best_price,omitempty"`
	CreatedAt      int64               `json:"created_at"`
	Payload        json.RawMessage     `json:"payload,omitempty"`
	Selections     []SelectionResponse `json:"selections,omitempty"`
}

func newRunResponse(run *domain.SolveRun) RunResponse {
	return RunResponse{
		ID:             run.ID,
		Kind:           run.Kind,
		Fingerprint:    run.Fingerprint,
		Base:           run.Base,
		Expansions:     run.Expansions,
		IncludeAux:     run.IncludeAux,
		SparePercent:   run.SparePercent,
		UsedFallback:   run.UsedFallback,
		CandidateCount: run.CandidateCount,
		BestPrice:      run.BestPrice,
		CreatedAt:      run.CreatedAt,
	}
}

// maxListLimit caps GET /v1/runs.
const maxListLimit = 500

// handleRuns lists stored runs without payloads or selections.
// Query parameters: kind, base, fingerprint, since (ms), limit.
func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := storage.RunFilter{
		Kind:        domain.RunKind(q.Get("kind")),
		Base:        q.Get("base"),
		Fingerprint: q.Get("fingerprint"),
		Limit:       50,
	}
	if filter.Kind != "" && filter.Kind != domain.RunKindSingle && filter.Kind != domain.RunKindBatch {
		writeError(w, fmt.Errorf("%w: unknown kind %q", errBadRequest, filter.Kind))
		return
	}
	if v := q.Get("since"); v != "" {
		since, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(w, fmt.Errorf("%w: since: %v", errBadRequest, err))
			return
		}
		filter.Since = since
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			writeError(w, fmt.Errorf("%w: limit must be a positive integer", errBadRequest))
			return
		}
		filter.Limit = min(limit, maxListLimit)
	}

	runs, err := s.orch.Runs(r.Context(), filter)
	if err != nil {
		s.log.Error("list runs failed", zap.Error(err))
		writeError(w, err)
		return
	}
	out := make([]RunResponse, len(runs))
	for i, run := range runs {
		out[i] = newRunResponse(run)
	}
	writeJSON(w, http.StatusOK, out)
}

// SelectionResponse is one stored selection.
type SelectionResponse struct {
	Position   int             `json:"position"`
	Label      string          `json:"label,omitempty"`
	Base       string          `json:"base"`
	Expansions map[string]int  `json:"expansions"`
	AuxQty     int             `json:"aux_qty"`
	Leftover   domain.Capacity `json:"leftover"`
	PowerAC    float64         `json:"power_ac"`
	Price      float64         `json:"price"`
	Width      float64         `json:"width"`
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	run, selections, err := s.orch.Run(r.Context(), id)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.log.Error("load run failed", zap.String("run_id", id), zap.Error(err))
		}
		writeError(w, err)
		return
	}

	resp := newRunResponse(run)
	resp.Selections = make([]SelectionResponse, len(selections))
	if json.Valid(run.Payload) {
		resp.Payload = run.Payload
	}
	for i, sel := range selections {
		qty := make(map[string]int, len(sel.ExpansionNames))
		for j, name := range sel.ExpansionNames {
			if j < len(sel.ExpansionQty) {
				qty[name] = sel.ExpansionQty[j]
			}
		}
		resp.Selections[i] = SelectionResponse{
			Position:   sel.Position,
			Label:      sel.Label,
			Base:       sel.Base,
			Expansions: qty,
			AuxQty:     sel.AuxQty,
			Leftover:   sel.Leftover,
			PowerAC:    sel.PowerAC,
			Price:      sel.Price,
			Width:      sel.Width,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.solveTimeout > 0 {
		return context.WithTimeout(ctx, s.solveTimeout)
	}
	return context.WithCancel(ctx)
}

func (s *Server) logFailure(msg string, err error) {
	if orchestrator.IsClientError(err) {
		s.log.Info(msg, zap.Error(err))
		return
	}
	s.log.Error(msg, zap.Error(err))
}

// errBadRequest marks malformed request bodies.
var errBadRequest = errors.New("bad request")

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
