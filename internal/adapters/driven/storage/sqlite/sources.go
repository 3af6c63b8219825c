package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/notion-nlp/internal/core/domain"
	"github.com/custodia-labs/notion-nlp/internal/core/ports/driven"
)

type sourceStore struct {
	db *sql.DB
}

var _ driven.SourceStore = (*sourceStore)(nil)

const sourceColumns = "id, type, name, config, credentials_id, created_at, updated_at"

// Save upserts source, keeping the original created_at.
func (s *sourceStore) Save(ctx context.Context, source domain.Source) error {
	if source.ID == "" {
		return fmt.Errorf("save source: %w: empty id", domain.ErrInvalidInput)
	}

	cfg, err := json.Marshal(source.Config)
	if err != nil {
		return fmt.Errorf("encoding config of %s: %w", source.ID, err)
	}

	now := time.Now().UTC()
	if source.CreatedAt.IsZero() {
		source.CreatedAt = now
	}

	_, err = s.db.ExecContext(ctx, `INSERT INTO sources (`+sourceColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			type = excluded.type,
			name = excluded.name,
			config = excluded.config,
			credentials_id = excluded.credentials_id,
			updated_at = excluded.updated_at`,
		source.ID, source.Type, source.Name, string(cfg),
		nullString(source.CredentialsID), source.CreatedAt, now)
	if err != nil {
		return fmt.Errorf("saving source %s: %w", source.ID, err)
	}
	return nil
}

func (s *sourceStore) Get(ctx context.Context, id string) (*domain.Source, error) {
	src, err := scanSource(s.db.QueryRowContext(ctx, "SELECT "+sourceColumns+" FROM sources WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("source %s: %w", id, domain.ErrNotFound)
	}
	return src, err
}

// List orders by name, then ID.
func (s *sourceStore) List(ctx context.Context) ([]domain.Source, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+sourceColumns+" FROM sources ORDER BY name, id")
	if err != nil {
		return nil, fmt.Errorf("listing sources: %w", err)
	}
	defer rows.Close()

	var out []domain.Source
	for rows.Next() {
		src, err := scanSource(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *src)
	}
	return out, rows.Err()
}

// Delete cascades to the source's documents and sync state.
func (s *sourceStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM sources WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting source %s: %w", id, err)
	}
	return nil
}

func scanSource(row scanner) (*domain.Source, error) {
	var (
		src   domain.Source
		cfg   string
		creds sql.NullString
	)
	err := row.Scan(&src.ID, &src.Type, &src.Name, &cfg, &creds, &src.CreatedAt, &src.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning source: %w", err)
	}

	if err := json.Unmarshal([]byte(cfg), &src.Config); err != nil {
		return nil, fmt.Errorf("decoding config of %s: %w", src.ID, err)
	}
	src.CredentialsID = creds.String
	return &src, nil
}
