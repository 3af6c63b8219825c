package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/notion-nlp/internal/core/domain"
	"github.com/custodia-labs/notion-nlp/internal/core/ports/driven"
)

var _ driven.SyncStateStore = (*SyncStateStore)(nil)

// SyncStateStore keeps incremental sync cursors in memory, keyed by source.
type SyncStateStore struct {
	mu     sync.RWMutex
	states map[string]domain.SyncState
}

// NewSyncStateStore creates an empty sync state store.
func NewSyncStateStore() *SyncStateStore {
	return &SyncStateStore{states: make(map[string]domain.SyncState)}
}

// Save replaces the state of state.SourceID.
func (s *SyncStateStore) Save(_ context.Context, state domain.SyncState) error {
	if state.SourceID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	s.states[state.SourceID] = state
	s.mu.Unlock()
	return nil
}

// Get returns ErrNotFound for a source that never synced.
func (s *SyncStateStore) Get(_ context.Context, sourceID string) (*domain.SyncState, error) {
	s.mu.RLock()
	state, ok := s.states[sourceID]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &state, nil
}

// Delete forgets the cursor so the next sync is a full one.
func (s *SyncStateStore) Delete(_ context.Context, sourceID string) error {
	s.mu.Lock()
	delete(s.states, sourceID)
	s.mu.Unlock()
	return nil
}
