// Package orchestrator runs solves and batches end to end.
// It coordinates: pricing → solving → persistence → events
package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"controller-sizer/internal/catalog"
	"controller-sizer/internal/domain"
	"controller-sizer/internal/events"
	"controller-sizer/internal/idhash"
	"controller-sizer/internal/pricing"
	"controller-sizer/internal/solver"
	"controller-sizer/internal/storage"
)

// PriceSource supplies module prices for one run.
type PriceSource interface {
	Prices(ctx context.Context) pricing.Result
}

// Recorder receives run measurements. *observability.Metrics implements it.
type Recorder interface {
	solver.Recorder
	ObservePriceFallback()
	ObserveBatch(rows int, failed bool, duration time.Duration)
	ObservePersistError(target string)
}

// Orchestrator prices the catalog, solves, stores the run and announces it.
type Orchestrator struct {
	// Inputs
	catalog *catalog.Catalog
	prices  PriceSource

	// Outputs, all optional
	runStore       storage.RunStore
	selectionStore storage.SelectionStore
	publisher      events.Publisher
	recorder       Recorder

	// Options
	log            *zap.Logger
	workers        int
	maxEnumerated  int64
	candidateLimit int
	clock          func() time.Time
	newID          func() string
}

// Options for creating Orchestrator.
type Options struct {
	// Required
	Catalog *catalog.Catalog

	// Optional; nil prices use the catalog as configured
	Prices         PriceSource
	RunStore       storage.RunStore
	SelectionStore storage.SelectionStore
	Publisher      events.Publisher
	Recorder       Recorder
	Logger         *zap.Logger

	// Solver limits; zero values take the solver defaults
	Workers        int
	MaxEnumerated  int64
	CandidateLimit int

	// Test hooks
	Clock func() time.Time
	NewID func() string
}

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	o := &Orchestrator{
		catalog:        opts.Catalog,
		prices:         opts.Prices,
		runStore:       opts.RunStore,
		selectionStore: opts.SelectionStore,
		publisher:      opts.Publisher,
		recorder:       opts.Recorder,
		log:            opts.Logger,
		workers:        opts.Workers,
		maxEnumerated:  opts.MaxEnumerated,
		candidateLimit: opts.CandidateLimit,
		clock:          opts.Clock,
		newID:          opts.NewID,
	}
	if o.catalog == nil {
		o.catalog = catalog.Default()
	}
	if o.prices == nil {
		o.prices = pricing.Static(o.catalog.Prices())
	}
	if o.log == nil {
		o.log = zap.NewNop()
	}
	if o.workers < 1 {
		o.workers = 1
	}
	if o.clock == nil {
		o.clock = time.Now
	}
	if o.newID == nil {
		o.newID = uuid.NewString
	}
	return o
}

// RunInfo identifies a stored run.
type RunInfo struct {
	RunID        string `json:"run_id"`
	Fingerprint  string `json:"fingerprint"`
	UsedFallback bool   `json:"used_fallback"`

	// Catalog is the priced catalog the run was solved against.
	Catalog *catalog.Catalog `json:"-"`
}

// SolveResult is the outcome of Solve.
type SolveResult struct {
	RunInfo
	Outcome *solver.Outcome
}

// BatchRunResult is the outcome of Batch.
type BatchRunResult struct {
	RunInfo
	Result *domain.BatchResult
}

// Catalog returns the catalog priced by the current price source.
func (o *Orchestrator) Catalog(ctx context.Context) (*catalog.Catalog, pricing.Result) {
	res := o.prices.Prices(ctx)
	if res.UsedFallback {
		o.log.Warn("price source unavailable, using fallback table", zap.Error(res.Err))
		if o.recorder != nil {
			o.recorder.ObservePriceFallback()
		}
	}
	return o.catalog.WithPrices(res.Prices), res
}

func (o *Orchestrator) solver(cat *catalog.Catalog) *solver.Solver {
	opts := []solver.Option{
		solver.WithLogger(o.log),
		solver.WithWorkers(o.workers),
	}
	if o.maxEnumerated > 0 {
		opts = append(opts, solver.WithMaxEnumerated(o.maxEnumerated))
	}
	if o.candidateLimit > 0 {
		opts = append(opts, solver.WithCandidateLimit(o.candidateLimit))
	}
	if o.recorder != nil {
		opts = append(opts, solver.WithRecorder(o.recorder))
	}
	return solver.New(cat, opts...)
}

// Solve runs a single solve and stores it.
func (o *Orchestrator) Solve(ctx context.Context, req solver.Request) (*SolveResult, error) {
	return o.SolveWithProgress(ctx, req, nil)
}

// SolveWithProgress is Solve with an enumeration progress callback.
func (o *Orchestrator) SolveWithProgress(ctx context.Context, req solver.Request, onProgress func(solver.Progress)) (*SolveResult, error) {
	cat, prices := o.Catalog(ctx)

	out, err := o.solver(cat).SolveWithProgress(ctx, req, onProgress)
	if err != nil {
		return nil, err
	}

	info := RunInfo{
		RunID: o.newID(),
		Fingerprint: idhash.ComputeFingerprint(idhash.Inputs{
			Kind:         domain.RunKindSingle,
			Base:         req.Base,
			Expansions:   req.Expansions,
			IncludeAux:   req.IncludeAux,
			SparePercent: req.SparePercent,
			Rows:         []domain.DemandRow{{Demand: req.Demand}},
			Prices:       prices.Prices,
		}),
		UsedFallback: prices.UsedFallback,
		Catalog:      cat,
	}

	var best *float64
	if c, ok := out.Best(); ok {
		best = &c.Price
	}
	run := &domain.SolveRun{
		ID:             info.RunID,
		Kind:           domain.RunKindSingle,
		Fingerprint:    info.Fingerprint,
		Base:           req.Base,
		Expansions:     cat.SortedNames(req.Expansions),
		IncludeAux:     req.IncludeAux,
		SparePercent:   req.SparePercent,
		UsedFallback:   prices.UsedFallback,
		CandidateCount: out.Len(),
		BestPrice:      best,
	}

	selections := make([]*domain.SelectionRecord, len(out.Candidates))
	for i, c := range out.Candidates {
		selections[i] = selectionRecord(out.Schema, c, i, "")
	}

	if err := o.persist(ctx, run, out.ResultSet, selections); err != nil {
		return nil, err
	}

	o.log.Info("solve stored",
		zap.String("run_id", info.RunID),
		zap.String("base", req.Base),
		zap.Int("candidates", out.Len()),
		zap.Int64("enumerated", out.Enumerated),
		zap.Duration("duration", out.Duration))

	return &SolveResult{RunInfo: info, Outcome: out}, nil
}

// Batch runs the batch driver and stores the result.
func (o *Orchestrator) Batch(ctx context.Context, req BatchRequest) (*BatchRunResult, error) {
	start := o.clock()
	cat, prices := o.Catalog(ctx)

	res, err := NewBatchDriver(o.solver(cat), o.log, o.workers).Run(ctx, req)
	if o.recorder != nil {
		o.recorder.ObserveBatch(len(req.Rows), err != nil, o.clock().Sub(start))
	}
	if err != nil {
		return nil, err
	}

	info := RunInfo{
		RunID: o.newID(),
		Fingerprint: idhash.ComputeFingerprint(idhash.Inputs{
			Kind:         domain.RunKindBatch,
			Base:         req.Base,
			Expansions:   req.Expansions,
			IncludeAux:   req.IncludeAux,
			SparePercent: req.SparePercent,
			Rows:         req.Rows,
			Prices:       prices.Prices,
		}),
		UsedFallback: prices.UsedFallback,
		Catalog:      cat,
	}

	total := res.Total[priceColumn(res.Schema)]
	run := &domain.SolveRun{
		ID:             info.RunID,
		Kind:           domain.RunKindBatch,
		Fingerprint:    info.Fingerprint,
		Base:           req.Base,
		Expansions:     cat.SortedNames(req.Expansions),
		IncludeAux:     req.IncludeAux,
		SparePercent:   req.SparePercent,
		UsedFallback:   prices.UsedFallback,
		CandidateCount: len(res.Rows),
		BestPrice:      &total,
	}

	selections := make([]*domain.SelectionRecord, len(res.Rows))
	for i, row := range res.Rows {
		selections[i] = selectionRecord(res.Schema, row.Candidate, i, row.Name)
	}

	if err := o.persist(ctx, run, res, selections); err != nil {
		return nil, err
	}

	o.log.Info("batch stored",
		zap.String("run_id", info.RunID),
		zap.Int("rows", len(res.Rows)),
		zap.Float64("total_price", total))

	return &BatchRunResult{RunInfo: info, Result: res}, nil
}

// Run returns a stored run and its selections.
func (o *Orchestrator) Run(ctx context.Context, id string) (*domain.SolveRun, []*domain.SelectionRecord, error) {
	if o.runStore == nil {
		return nil, nil, storage.ErrNotFound
	}
	run, err := o.runStore.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if o.selectionStore == nil {
		return run, nil, nil
	}
	sel, err := o.selectionStore.GetByRunID(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("load selections: %w", err)
	}
	return run, sel, nil
}

// Runs lists stored runs, newest first.
func (o *Orchestrator) Runs(ctx context.Context, filter storage.RunFilter) ([]*domain.SolveRun, error) {
	if o.runStore == nil {
		return nil, nil
	}
	runs, err := o.runStore.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// persist writes the run and selections, then publishes the event.
// A failed publish is logged; the run is already stored.
func (o *Orchestrator) persist(ctx context.Context, run *domain.SolveRun, payload any, selections []*domain.SelectionRecord) error {
	now := o.clock().UnixMilli()
	run.CreatedAt = now
	for _, s := range selections {
		s.RunID = run.ID
		s.CreatedAt = now
	}

	if o.runStore != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
		run.Payload = data
		if err := o.runStore.Insert(ctx, run); err != nil {
			o.persistFailed("runs")
			return fmt.Errorf("store run: %w", err)
		}
	}

	if o.selectionStore != nil && len(selections) > 0 {
		if err := o.selectionStore.InsertBatch(ctx, selections); err != nil {
			o.persistFailed("selections")
			return fmt.Errorf("store selections: %w", err)
		}
	}

	if o.publisher != nil {
		ev := domain.RunCompleted{
			RunID:          run.ID,
			Kind:           run.Kind,
			Fingerprint:    run.Fingerprint,
			Base:           run.Base,
			CandidateCount: run.CandidateCount,
			BestPrice:      run.BestPrice,
			UsedFallback:   run.UsedFallback,
			CompletedAt:    now,
		}
		if err := o.publisher.PublishRunCompleted(ctx, ev); err != nil {
			o.persistFailed("events")
			o.log.Warn("publish run event failed", zap.String("run_id", run.ID), zap.Error(err))
		}
	}
	return nil
}

func (o *Orchestrator) persistFailed(target string) {
	if o.recorder != nil {
		o.recorder.ObservePersistError(target)
	}
}

func selectionRecord(schema domain.Schema, c domain.Candidate, position int, label string) *domain.SelectionRecord {
	names := append([]string(nil), schema.Expansions...)
	qty := append([]int(nil), c.Quantities...)
	return &domain.SelectionRecord{
		Position:       position,
		Label:          label,
		Base:           c.Base,
		ExpansionNames: names,
		ExpansionQty:   qty,
		AuxQty:         c.AuxQty,
		Leftover:       c.Leftover,
		PowerAC:        c.PowerAC,
		Price:          c.Price,
		Width:          c.Width,
	}
}

func priceColumn(schema domain.Schema) int {
	cols := schema.Columns()
	for i, c := range cols {
		if c == domain.ColumnPrice {
			return i
		}
	}
	return len(cols) - 2
}

// IsClientError reports whether err was caused by the request rather than
// by the service.
func IsClientError(err error) bool {
	return errors.Is(err, domain.ErrInvalidDemand) ||
		errors.Is(err, domain.ErrUnknownModule) ||
		errors.Is(err, domain.ErrCapacityExceeded) ||
		errors.Is(err, domain.ErrNoFeasibleCombination) ||
		errors.Is(err, domain.ErrSearchSpaceTooLarge)
}
