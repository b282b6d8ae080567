package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/wonny/trendscreen/internal/contracts"
)

// MemoryStore keeps runs in process. Used when no database is configured.
type MemoryStore struct {
	mu     sync.RWMutex
	runs   map[string]*contracts.ScreeningResult
	latest string
	limit  int
	order  []string
}

// NewMemoryStore keeps at most limit runs; limit <= 0 keeps all of them.
func NewMemoryStore(limit int) *MemoryStore {
	return &MemoryStore{
		runs:  make(map[string]*contracts.ScreeningResult),
		limit: limit,
	}
}

// Save stores r. The newest finished run becomes Latest.
func (m *MemoryStore) Save(ctx context.Context, r *contracts.ScreeningResult) error {
	if r.RunID == "" {
		return fmt.Errorf("result has no run id")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.runs[r.RunID]; exists {
		return fmt.Errorf("run %s already saved", r.RunID)
	}

	m.runs[r.RunID] = r
	m.order = append(m.order, r.RunID)

	if cur, ok := m.runs[m.latest]; !ok || !r.FinishedAt.Before(cur.FinishedAt) {
		m.latest = r.RunID
	}

	if m.limit > 0 && len(m.order) > m.limit {
		evict := m.order[0]
		m.order = m.order[1:]
		if evict != m.latest {
			delete(m.runs, evict)
		}
	}
	return nil
}

// Latest returns the most recently finished run.
func (m *MemoryStore) Latest(ctx context.Context) (*contracts.ScreeningResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.runs[m.latest]
	if !ok {
		return nil, ErrNotFound
	}
	return r, nil
}

// Get returns the run with the given id.
func (m *MemoryStore) Get(ctx context.Context, runID string) (*contracts.ScreeningResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.runs[runID]
	if !ok {
		return nil, fmt.Errorf("%s: %w", runID, ErrNotFound)
	}
	return r, nil
}

// Len returns the number of stored runs.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.runs)
}
