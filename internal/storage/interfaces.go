// Package storage defines persistence for sizing runs and their selections.
package storage

import (
	"context"

	"controller-sizer/internal/domain"
)

// RunFilter narrows RunStore.List. Zero fields do not filter.
type RunFilter struct {
	Kind        domain.RunKind
	Base        string
	Fingerprint string
	Since       int64 // created_at lower bound in ms, inclusive
	Limit       int
}

// RunStore persists solve and batch runs.
type RunStore interface {
	// Insert stores a new run. Returns ErrDuplicateKey if the ID exists.
	Insert(ctx context.Context, run *domain.SolveRun) error

	// GetByID retrieves a run. Returns ErrNotFound if it does not exist.
	GetByID(ctx context.Context, id string) (*domain.SolveRun, error)

	// List returns runs matching filter, newest first.
	List(ctx context.Context, filter RunFilter) ([]*domain.SolveRun, error)
}

// SelectionStore persists the reported configuration rows of each run.
type SelectionStore interface {
	// InsertBatch stores all rows of one or more runs.
	// Returns ErrDuplicateKey if a (run_id, position) pair already exists.
	InsertBatch(ctx context.Context, records []*domain.SelectionRecord) error

	// GetByRunID returns the rows of a run ordered by position.
	GetByRunID(ctx context.Context, runID string) ([]*domain.SelectionRecord, error)
}

// ValidateRun checks the fields every store requires.
func ValidateRun(run *domain.SolveRun) error {
	if run == nil || run.ID == "" || run.Base == "" {
		return ErrInvalidInput
	}
	if run.Kind != domain.RunKindSingle && run.Kind != domain.RunKindBatch {
		return ErrInvalidInput
	}
	return nil
}

// ValidateSelection checks the fields every store requires.
func ValidateSelection(r *domain.SelectionRecord) error {
	if r == nil || r.RunID == "" || r.Position < 0 || len(r.ExpansionNames) != len(r.ExpansionQty) {
		return ErrInvalidInput
	}
	return nil
}
