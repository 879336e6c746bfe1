package memory

import (
	"context"
	"sort"
	"sync"

	"controller-sizer/internal/domain"
	"controller-sizer/internal/storage"
)

// SelectionStore is an in-memory implementation of storage.SelectionStore.
type SelectionStore struct {
	mu   sync.RWMutex
	data map[string]map[int]*domain.SelectionRecord // run ID -> position -> record
}

// NewSelectionStore creates a new in-memory selection store.
func NewSelectionStore() *SelectionStore {
	return &SelectionStore{
		data: make(map[string]map[int]*domain.SelectionRecord),
	}
}

var _ storage.SelectionStore = (*SelectionStore)(nil)

// InsertBatch adds all records atomically. Fails the whole batch on any duplicate.
func (s *SelectionStore) InsertBatch(_ context.Context, records []*domain.SelectionRecord) error {
	if len(records) == 0 {
		return nil
	}

	type key struct {
		run string
		pos int
	}
	seen := make(map[key]struct{}, len(records))
	for _, r := range records {
		if err := storage.ValidateSelection(r); err != nil {
			return err
		}
		k := key{r.RunID, r.Position}
		if _, dup := seen[k]; dup {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range records {
		if _, exists := s.data[r.RunID][r.Position]; exists {
			return storage.ErrDuplicateKey
		}
	}
	for _, r := range records {
		if s.data[r.RunID] == nil {
			s.data[r.RunID] = make(map[int]*domain.SelectionRecord)
		}
		s.data[r.RunID][r.Position] = copySelection(r)
	}
	return nil
}

// GetByRunID returns the records of a run ordered by position.
func (s *SelectionStore) GetByRunID(_ context.Context, runID string) ([]*domain.SelectionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.SelectionRecord
	for _, r := range s.data[runID] {
		result = append(result, copySelection(r))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Position < result[j].Position
	})
	return result, nil
}

func copySelection(r *domain.SelectionRecord) *domain.SelectionRecord {
	c := *r
	c.ExpansionNames = append([]string(nil), r.ExpansionNames...)
	c.ExpansionQty = append([]int(nil), r.ExpansionQty...)
	return &c
}
