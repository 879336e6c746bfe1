// Package solver finds every non-dominated combination of expansion modules
// that, together with one base unit, satisfies a point demand.
//
// Solving runs in phases:
//  1. Normalize and validate demand, check the base unit point ceiling
//  2. Bound each enabled expansion and size the search space
//  3. Enumerate the Cartesian product, keeping the cheapest feasible candidates
//  4. Drop dominated candidates and order by price
package solver

import (
	"context"
	"fmt"
	"slices"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"controller-sizer/internal/catalog"
	"controller-sizer/internal/domain"
	"controller-sizer/internal/normalization"
)

// DefaultMaxEnumerated caps the number of quantity vectors a single solve may visit.
const DefaultMaxEnumerated int64 = 50_000_000

// Request describes one solve.
type Request struct {
	Demand       domain.PointDemand // raw demand
	SparePercent float64            // applied by the normalizer
	Base         string             // base unit name
	Expansions   []string           // enabled expansion names
	IncludeAux   bool               // derive auxiliary power modules
}

// Progress reports enumeration progress.
type Progress struct {
	Enumerated int64
	Total      int64
}

// Outcome is a ResultSet with the figures gathered while producing it.
type Outcome struct {
	domain.ResultSet
	Demand     domain.PointDemand // normalized demand
	Bounds     map[string]int     // search bound per enabled expansion
	Enumerated int64              // quantity vectors visited
	Feasible   int64              // vectors passing the feasibility check
	Duration   time.Duration
}

// Recorder receives per-solve measurements.
type Recorder interface {
	ObserveSolve(outcome string, duration time.Duration, enumerated, feasible int64, survivors int)
}

// Option configures a Solver.
type Option func(*Solver)

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Solver) { s.log = log }
}

// WithWorkers sets how many shards of the outermost dimension run in parallel.
func WithWorkers(n int) Option {
	return func(s *Solver) { s.workers = n }
}

// WithMaxEnumerated caps the search space size.
func WithMaxEnumerated(n int64) Option {
	return func(s *Solver) { s.maxEnumerated = n }
}

// WithCandidateLimit sets how many cheapest candidates enter dominance filtering.
func WithCandidateLimit(n int) Option {
	return func(s *Solver) { s.candidateLimit = n }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(s *Solver) { s.recorder = r }
}

// Solver solves sizing requests against one catalog. It holds no mutable
// state and is safe for concurrent use.
type Solver struct {
	catalog        *catalog.Catalog
	log            *zap.Logger
	recorder       Recorder
	workers        int
	maxEnumerated  int64
	candidateLimit int
}

// New creates a solver for cat.
func New(cat *catalog.Catalog, opts ...Option) *Solver {
	s := &Solver{
		catalog:        cat,
		log:            zap.NewNop(),
		workers:        1,
		maxEnumerated:  DefaultMaxEnumerated,
		candidateLimit: DefaultCandidateLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.workers < 1 {
		s.workers = 1
	}
	return s
}

// Catalog returns the catalog the solver prices against.
func (s *Solver) Catalog() *catalog.Catalog { return s.catalog }

// Solve runs one solve. No feasible combination is not an error: the
// returned ResultSet is empty but carries its schema. Invalid demand and
// demand above the base unit ceiling fail before enumeration.
func (s *Solver) Solve(ctx context.Context, req Request) (*Outcome, error) {
	return s.SolveWithProgress(ctx, req, nil)
}

// SolveWithProgress is Solve with a progress callback. The callback may be
// invoked concurrently from several shards.
func (s *Solver) SolveWithProgress(ctx context.Context, req Request, onProgress func(Progress)) (*Outcome, error) {
	start := time.Now()
	out, err := s.solve(ctx, req, onProgress)
	s.observe(out, err, time.Since(start))
	if err != nil {
		return nil, err
	}
	out.Duration = time.Since(start)
	return out, nil
}

func (s *Solver) solve(ctx context.Context, req Request, onProgress func(Progress)) (*Outcome, error) {
	// Phase 1: validation
	demand, err := normalization.Normalize(req.Demand, req.SparePercent)
	if err != nil {
		return nil, err
	}
	base, err := s.catalog.Base(req.Base)
	if err != nil {
		return nil, err
	}
	if total := demand.Total(); total > base.MaxPoints {
		return nil, &domain.CapacityError{Base: base.Name, Ceiling: base.MaxPoints, Required: total}
	}
	expansions, err := s.enabled(req.Expansions)
	if err != nil {
		return nil, err
	}

	// Phase 2: bounds
	schema := s.catalog.Schema()
	sp := &space{
		demand: demand,
		cost:   newCostModel(base, expansions, s.catalog.Aux(), s.catalog.AuxRule(), req.IncludeAux),
		bounds: Bounds(demand.Total(), expansions),
		width:  len(schema.Expansions),
	}
	for _, e := range expansions {
		sp.schemaIdx = append(sp.schemaIdx, slices.Index(schema.Expansions, e.Name))
	}
	sp.total = SearchSpace(sp.bounds, s.maxEnumerated)
	if sp.total > s.maxEnumerated {
		return nil, fmt.Errorf("%w: more than %d combinations", domain.ErrSearchSpaceTooLarge, s.maxEnumerated)
	}

	out := &Outcome{
		ResultSet: domain.ResultSet{Schema: schema, Candidates: []domain.Candidate{}},
		Demand:    demand,
		Bounds:    make(map[string]int, len(expansions)),
	}
	for i, e := range expansions {
		out.Bounds[e.Name] = sp.bounds[i]
	}
	s.log.Debug("search space",
		zap.String("base", base.Name),
		zap.Any("bounds", out.Bounds),
		zap.Int64("combinations", sp.total))

	// Phase 3: enumeration
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	kept, stats, err := s.enumerate(ctx, sp, onProgress)
	if err != nil {
		return nil, err
	}
	out.Enumerated = stats.enumerated
	out.Feasible = stats.feasible

	// Phase 4: dominance
	out.Candidates = Filter(kept, s.candidateLimit)
	s.log.Debug("solve complete",
		zap.Int64("enumerated", out.Enumerated),
		zap.Int64("feasible", out.Feasible),
		zap.Int("survivors", len(out.Candidates)))
	return out, nil
}

// enabled resolves expansion names in catalog order, ignoring duplicates.
func (s *Solver) enabled(names []string) ([]domain.ModuleSpec, error) {
	seen := make(map[string]bool, len(names))
	var out []domain.ModuleSpec
	for _, name := range s.catalog.SortedNames(names) {
		if seen[name] {
			continue
		}
		seen[name] = true
		m, err := s.catalog.Expansion(name)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// enumerate runs every shard and pools their cheapest candidates. Dominance
// is global, so it is applied only after the pools are merged.
func (s *Solver) enumerate(ctx context.Context, sp *space, onProgress func(Progress)) ([]domain.Candidate, shardStats, error) {
	var counter atomic.Int64
	var report func(int64)
	if onProgress != nil {
		report = func(n int64) { onProgress(Progress{Enumerated: n, Total: sp.total}) }
	}

	shards := sp.shards()
	keeps := make([]*cheapest, shards)
	stats := make([]shardStats, shards)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i := 0; i < shards; i++ {
		keeps[i] = newCheapest(s.candidateLimit)
		g.Go(func() error {
			st, err := sp.enumerate(gctx, i, keeps[i], &counter, report)
			stats[i] = st
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, shardStats{}, fmt.Errorf("enumerate combinations: %w", err)
	}

	var total shardStats
	var merged []domain.Candidate
	for i := range keeps {
		total.enumerated += stats[i].enumerated
		total.feasible += stats[i].feasible
		merged = append(merged, keeps[i].sorted()...)
	}
	sortByPriceOrdinal(merged)
	if s.candidateLimit > 0 && len(merged) > s.candidateLimit {
		merged = merged[:s.candidateLimit]
	}
	return merged, total, nil
}

func (s *Solver) observe(out *Outcome, err error, d time.Duration) {
	if s.recorder == nil {
		return
	}
	switch {
	case err != nil:
		s.recorder.ObserveSolve(outcomeLabel(err), d, 0, 0, 0)
	case out.Len() == 0:
		s.recorder.ObserveSolve("empty", d, out.Enumerated, out.Feasible, 0)
	default:
		s.recorder.ObserveSolve("ok", d, out.Enumerated, out.Feasible, out.Len())
	}
}
