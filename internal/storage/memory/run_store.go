package memory

import (
	"context"
	"sort"
	"sync"

	"controller-sizer/internal/domain"
	"controller-sizer/internal/storage"
)

// RunStore is an in-memory implementation of storage.RunStore.
type RunStore struct {
	mu   sync.RWMutex
	data map[string]*domain.SolveRun // keyed by run ID
}

// NewRunStore creates a new in-memory run store.
func NewRunStore() *RunStore {
	return &RunStore{
		data: make(map[string]*domain.SolveRun),
	}
}

var _ storage.RunStore = (*RunStore)(nil)

// Insert adds a new run. Returns ErrDuplicateKey if the ID exists.
func (s *RunStore) Insert(_ context.Context, run *domain.SolveRun) error {
	if err := storage.ValidateRun(run); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[run.ID]; exists {
		return storage.ErrDuplicateKey
	}
	s.data[run.ID] = copyRun(run)
	return nil
}

// GetByID retrieves a run by ID. Returns ErrNotFound if not exists.
func (s *RunStore) GetByID(_ context.Context, id string) (*domain.SolveRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, exists := s.data[id]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return copyRun(run), nil
}

// List returns runs matching filter, newest first, ties by ID.
func (s *RunStore) List(_ context.Context, f storage.RunFilter) ([]*domain.SolveRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.SolveRun
	for _, run := range s.data {
		if f.Kind != "" && run.Kind != f.Kind {
			continue
		}
		if f.Base != "" && run.Base != f.Base {
			continue
		}
		if f.Fingerprint != "" && run.Fingerprint != f.Fingerprint {
			continue
		}
		if run.CreatedAt < f.Since {
			continue
		}
		result = append(result, copyRun(run))
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt != result[j].CreatedAt {
			return result[i].CreatedAt > result[j].CreatedAt
		}
		return result[i].ID < result[j].ID
	})

	if f.Limit > 0 && len(result) > f.Limit {
		result = result[:f.Limit]
	}
	return result, nil
}

// copyRun returns a deep copy so callers cannot mutate stored data.
func copyRun(run *domain.SolveRun) *domain.SolveRun {
	c := *run
	c.Expansions = append([]string(nil), run.Expansions...)
	c.Payload = append([]byte(nil), run.Payload...)
	if run.BestPrice != nil {
		p := *run.BestPrice
		c.BestPrice = &p
	}
	return &c
}
