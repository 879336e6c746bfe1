package orchestrator

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"controller-sizer/internal/domain"
	"controller-sizer/internal/metrics"
	"controller-sizer/internal/normalization"
	"controller-sizer/internal/solver"
)

// BatchRequest sizes several named systems with shared settings.
type BatchRequest struct {
	Rows         []domain.DemandRow `json:"rows"`
	SparePercent float64            `json:"spare_percent"`
	Base         string             `json:"base"`
	Expansions   []string           `json:"expansions"`
	IncludeAux   bool               `json:"include_aux"`
}

// BatchDriver picks the cheapest configuration for every row of a batch.
type BatchDriver struct {
	solver  *solver.Solver
	log     *zap.Logger
	workers int
}

// NewBatchDriver creates a driver solving up to workers rows at once.
func NewBatchDriver(s *solver.Solver, log *zap.Logger, workers int) *BatchDriver {
	if log == nil {
		log = zap.NewNop()
	}
	if workers < 1 {
		workers = 1
	}
	return &BatchDriver{solver: s, log: log, workers: workers}
}

// Run solves every row and appends column totals.
// Phases:
//  1. Normalize every row with the shared spare percentage
//  2. Reject the batch if any row exceeds the base unit ceiling, naming all of them
//  3. Solve rows in parallel and keep the cheapest candidate of each
//  4. Sum every numeric column across the selections
//
// A row without any feasible candidate fails the batch with a
// *domain.RowError wrapping domain.ErrNoFeasibleCombination. When several
// rows fail, the error names the first one in input order.
func (d *BatchDriver) Run(ctx context.Context, req BatchRequest) (*domain.BatchResult, error) {
	if len(req.Rows) == 0 {
		return nil, fmt.Errorf("%w: batch has no rows", domain.ErrInvalidDemand)
	}

	// Phase 1
	rows, err := normalization.NormalizeRows(req.Rows, req.SparePercent)
	if err != nil {
		return nil, err
	}

	// Phase 2
	base, err := d.solver.Catalog().Base(req.Base)
	if err != nil {
		return nil, err
	}
	var over []string
	for _, r := range rows {
		if r.Demand.Total() > base.MaxPoints {
			over = append(over, r.Name)
		}
	}
	if len(over) > 0 {
		return nil, &domain.CapacityExceededRowsError{Base: base.Name, Ceiling: base.MaxPoints, Rows: over}
	}

	// Phase 3
	selections := make([]domain.RowSelection, len(rows))
	errs := make([]error, len(rows))

	var g errgroup.Group
	g.SetLimit(d.workers)
	for i, row := range rows {
		g.Go(func() error {
			errs[i] = d.solveRow(ctx, req, row, &selections[i])
			return nil
		})
	}
	_ = g.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	// Phase 4
	total, err := metrics.Totals(d.solver.Catalog().Schema(), selections)
	if err != nil {
		return nil, fmt.Errorf("aggregate totals: %w", err)
	}

	return &domain.BatchResult{
		Schema: d.solver.Catalog().Schema(),
		Rows:   selections,
		Total:  total,
	}, nil
}

// solveRow solves an already normalized row.
func (d *BatchDriver) solveRow(ctx context.Context, req BatchRequest, row domain.DemandRow, dst *domain.RowSelection) error {
	out, err := d.solver.Solve(ctx, solver.Request{
		Demand:     row.Demand,
		Base:       req.Base,
		Expansions: req.Expansions,
		IncludeAux: req.IncludeAux,
	})
	if err != nil {
		return &domain.RowError{Row: row.Name, Err: err}
	}

	best, ok := out.Best()
	if !ok {
		d.log.Info("row infeasible", zap.String("row", row.Name))
		return &domain.RowError{Row: row.Name, Err: domain.ErrNoFeasibleCombination}
	}

	d.log.Info("row solved",
		zap.String("row", row.Name),
		zap.Int("points", row.Demand.Total()),
		zap.Int("candidates", out.Len()),
		zap.Float64("price", best.Price))

	*dst = domain.RowSelection{Name: row.Name, Demand: out.Demand, Candidate: best}
	return nil
}
