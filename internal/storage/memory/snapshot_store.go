package memory

import (
	"context"
	"sort"
	"sync"

	"traderank/internal/domain"
	"traderank/internal/storage"
)

// SnapshotStore is an in-memory implementation of storage.SnapshotStore.
type SnapshotStore struct {
	mu   sync.RWMutex
	runs map[string]*domain.SnapshotRun               // keyed by snapshot ID
	keys map[string]bool                              // run keys seen
	rows map[string]map[string]*domain.TraderSnapshot // snapshot ID -> trader ID -> row
}

// NewSnapshotStore creates a new in-memory snapshot store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{
		runs: make(map[string]*domain.SnapshotRun),
		keys: make(map[string]bool),
		rows: make(map[string]map[string]*domain.TraderSnapshot),
	}
}

// InsertRun writes a snapshot run header and its trader rows.
func (s *SnapshotStore) InsertRun(_ context.Context, run *domain.SnapshotRun, rows []*domain.TraderSnapshot) error {
	if run == nil || run.ID == "" || run.RunKey == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.runs[run.ID]; exists {
		return storage.ErrDuplicateKey
	}
	if s.keys[run.RunKey] {
		return storage.ErrDuplicateKey
	}

	runCopy := *run
	s.runs[run.ID] = &runCopy
	s.keys[run.RunKey] = true

	byTrader := make(map[string]*domain.TraderSnapshot, len(rows))
	for _, r := range rows {
		rowCopy := *r
		rowCopy.SnapshotID = run.ID
		byTrader[r.TraderID] = &rowCopy
	}
	s.rows[run.ID] = byTrader
	return nil
}

// LatestRun retrieves the most recently generated run.
func (s *SnapshotStore) LatestRun(_ context.Context) (*domain.SnapshotRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *domain.SnapshotRun
	for _, run := range s.runs {
		if latest == nil || run.GeneratedAt.After(latest.GeneratedAt) {
			latest = run
		}
	}
	if latest == nil {
		return nil, storage.ErrNotFound
	}

	runCopy := *latest
	return &runCopy, nil
}

// ListByRun retrieves a run's trader rows ordered by rank ASC.
func (s *SnapshotStore) ListByRun(_ context.Context, snapshotID string, q storage.TraderQuery) ([]*domain.TraderSnapshot, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byTrader, exists := s.rows[snapshotID]
	if !exists {
		return nil, 0, storage.ErrNotFound
	}

	var result []*domain.TraderSnapshot
	for _, r := range byTrader {
		if q.Tier != "" && r.Tier != q.Tier {
			continue
		}
		rowCopy := *r
		result = append(result, &rowCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Rank < result[j].Rank
	})

	total := len(result)
	if q.Offset > 0 {
		if q.Offset >= len(result) {
			return nil, total, nil
		}
		result = result[q.Offset:]
	}
	if q.Limit > 0 && len(result) > q.Limit {
		result = result[:q.Limit]
	}
	return result, total, nil
}

// GetTrader retrieves one trader's row within a run.
func (s *SnapshotStore) GetTrader(_ context.Context, snapshotID, traderID string) (*domain.TraderSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byTrader, exists := s.rows[snapshotID]
	if !exists {
		return nil, storage.ErrNotFound
	}
	r, exists := byTrader[traderID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	rowCopy := *r
	return &rowCopy, nil
}

// Verify interface compliance at compile time.
var _ storage.SnapshotStore = (*SnapshotStore)(nil)
