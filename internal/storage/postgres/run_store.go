package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"controller-sizer/internal/domain"
	"controller-sizer/internal/storage"
)

var runColumns = []string{
	"run_id", "kind", "fingerprint", "base", "expansions", "include_aux",
	"spare_percent", "used_fallback", "candidate_count", "best_price", "payload", "created_at",
}

// RunStore implements storage.RunStore using PostgreSQL.
type RunStore struct {
	pool *Pool
}

// NewRunStore creates a new RunStore.
func NewRunStore(pool *Pool) *RunStore {
	return &RunStore{pool: pool}
}

var _ storage.RunStore = (*RunStore)(nil)

// Insert adds a new run. Returns ErrDuplicateKey if run_id exists.
func (s *RunStore) Insert(ctx context.Context, run *domain.SolveRun) error {
	if err := storage.ValidateRun(run); err != nil {
		return err
	}

	expansions := run.Expansions
	if expansions == nil {
		expansions = []string{}
	}
	payload := run.Payload
	if len(payload) == 0 {
		payload = []byte("{}")
	}

	query, args, err := psql.Insert("sizing_runs").
		Columns(runColumns...).
		Values(
			run.ID, string(run.Kind), run.Fingerprint, run.Base, expansions, run.IncludeAux,
			run.SparePercent, run.UsedFallback, run.CandidateCount, run.BestPrice, payload, run.CreatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert run: %w", err)
	}

	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// GetByID retrieves a run by ID. Returns ErrNotFound if not exists.
func (s *RunStore) GetByID(ctx context.Context, id string) (*domain.SolveRun, error) {
	query, args, err := psql.Select(runColumns...).
		From("sizing_runs").
		Where(sq.Eq{"run_id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get run: %w", err)
	}

	run, err := scanRun(s.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get run by id: %w", err)
	}
	return run, nil
}

// List returns runs matching filter, newest first.
func (s *RunStore) List(ctx context.Context, f storage.RunFilter) ([]*domain.SolveRun, error) {
	q := psql.Select(runColumns...).
		From("sizing_runs").
		OrderBy("created_at DESC", "run_id ASC")
	if f.Kind != "" {
		q = q.Where(sq.Eq{"kind": string(f.Kind)})
	}
	if f.Base != "" {
		q = q.Where(sq.Eq{"base": f.Base})
	}
	if f.Fingerprint != "" {
		q = q.Where(sq.Eq{"fingerprint": f.Fingerprint})
	}
	if f.Since > 0 {
		q = q.Where(sq.GtOrEq{"created_at": f.Since})
	}
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list runs: %w", err)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*domain.SolveRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run rows: %w", err)
	}
	return runs, nil
}

// scanRun scans a single row into a SolveRun.
func scanRun(row pgx.Row) (*domain.SolveRun, error) {
	var r domain.SolveRun
	var kind string

	err := row.Scan(
		&r.ID,
		&kind,
		&r.Fingerprint,
		&r.Base,
		&r.Expansions,
		&r.IncludeAux,
		&r.SparePercent,
		&r.UsedFallback,
		&r.CandidateCount,
		&r.BestPrice,
		&r.Payload,
		&r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	r.Kind = domain.RunKind(kind)
	return &r, nil
}
