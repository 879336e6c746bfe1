package clickhouse

import (
	"context"
	"fmt"

	"controller-sizer/internal/domain"
	"controller-sizer/internal/storage"
)

// SelectionStore implements storage.SelectionStore using ClickHouse.
type SelectionStore struct {
	conn *Conn
}

// NewSelectionStore creates a new SelectionStore.
func NewSelectionStore(conn *Conn) *SelectionStore {
	return &SelectionStore{conn: conn}
}

var _ storage.SelectionStore = (*SelectionStore)(nil)

// InsertBatch adds all records in one batch. MergeTree does not enforce
// keys, so duplicates are checked before writing.
func (s *SelectionStore) InsertBatch(ctx context.Context, records []*domain.SelectionRecord) error {
	if len(records) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(records))
	runs := make(map[string]struct{})
	for _, r := range records {
		if err := storage.ValidateSelection(r); err != nil {
			return err
		}
		key := fmt.Sprintf("%s|%d", r.RunID, r.Position)
		if _, dup := seen[key]; dup {
			return storage.ErrDuplicateKey
		}
		seen[key] = struct{}{}
		runs[r.RunID] = struct{}{}
	}

	for runID := range runs {
		exists, err := s.exists(ctx, runID)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO sizing_selections (
			run_id, position, label, base, expansion_names, expansion_qty, aux_qty,
			leftover_bo, leftover_bi, leftover_ui, leftover_ai, leftover_uiao, leftover_biao, leftover_pressure,
			power_ac, price, width, created_at_ms
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, r := range records {
		qty := make([]uint32, len(r.ExpansionQty))
		for i, q := range r.ExpansionQty {
			qty[i] = uint32(q)
		}
		l := r.Leftover
		err := batch.Append(
			r.RunID, uint32(r.Position), r.Label, r.Base, r.ExpansionNames, qty, uint32(r.AuxQty),
			uint32(l.BO), uint32(l.BI), uint32(l.UI), uint32(l.AI), uint32(l.UIAO), uint32(l.BIAO), uint32(l.Pressure),
			r.PowerAC, r.Price, r.Width, uint64(r.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("append selection: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetByRunID returns the records of a run ordered by position.
func (s *SelectionStore) GetByRunID(ctx context.Context, runID string) ([]*domain.SelectionRecord, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT
			run_id, position, label, base, expansion_names, expansion_qty, aux_qty,
			leftover_bo, leftover_bi, leftover_ui, leftover_ai, leftover_uiao, leftover_biao, leftover_pressure,
			power_ac, price, width, created_at_ms
		FROM sizing_selections
		WHERE run_id = ?
		ORDER BY position ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query selections: %w", err)
	}
	defer rows.Close()

	var result []*domain.SelectionRecord
	for rows.Next() {
		var r domain.SelectionRecord
		var position, aux uint32
		var qty []uint32
		var l [7]uint32
		var createdAt uint64

		if err := rows.Scan(
			&r.RunID, &position, &r.Label, &r.Base, &r.ExpansionNames, &qty, &aux,
			&l[0], &l[1], &l[2], &l[3], &l[4], &l[5], &l[6],
			&r.PowerAC, &r.Price, &r.Width, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan selection: %w", err)
		}

		r.Position = int(position)
		r.AuxQty = int(aux)
		r.ExpansionQty = make([]int, len(qty))
		for i, q := range qty {
			r.ExpansionQty[i] = int(q)
		}
		r.Leftover = domain.Capacity{
			BO: int(l[0]), BI: int(l[1]), UI: int(l[2]), AI: int(l[3]),
			UIAO: int(l[4]), BIAO: int(l[5]), Pressure: int(l[6]),
		}
		r.CreatedAt = int64(createdAt)
		result = append(result, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate selections: %w", err)
	}
	return result, nil
}

func (s *SelectionStore) exists(ctx context.Context, runID string) (bool, error) {
	var count uint64
	row := s.conn.QueryRow(ctx, `SELECT count() FROM sizing_selections WHERE run_id = ?`, runID)
	if err := row.Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}
