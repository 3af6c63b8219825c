package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/custodia-labs/notion-nlp/internal/core/domain"
	"github.com/custodia-labs/notion-nlp/internal/core/ports/driven"
)

type syncStateStore struct {
	db *sql.DB
}

var _ driven.SyncStateStore = (*syncStateStore)(nil)

func (s *syncStateStore) Save(ctx context.Context, state domain.SyncState) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO sync_states (source_id, cursor, last_sync)
		VALUES (?, ?, ?)
		ON CONFLICT(source_id) DO UPDATE SET
			cursor = excluded.cursor,
			last_sync = excluded.last_sync`,
		state.SourceID, state.Cursor, nullTime(state.LastSync))
	if err != nil {
		return fmt.Errorf("saving sync state of %s: %w", state.SourceID, err)
	}
	return nil
}

func (s *syncStateStore) Get(ctx context.Context, sourceID string) (*domain.SyncState, error) {
	var (
		state domain.SyncState
		last  sql.NullTime
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT source_id, cursor, last_sync FROM sync_states WHERE source_id = ?", sourceID).
		Scan(&state.SourceID, &state.Cursor, &last)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sync state of %s: %w", sourceID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning sync state: %w", err)
	}
	state.LastSync = last.Time
	return &state, nil
}

func (s *syncStateStore) Delete(ctx context.Context, sourceID string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM sync_states WHERE source_id = ?", sourceID); err != nil {
		return fmt.Errorf("deleting sync state of %s: %w", sourceID, err)
	}
	return nil
}
