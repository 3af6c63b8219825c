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

type credentialsStore struct {
	store *Store
}

var _ driven.CredentialsStore = (*credentialsStore)(nil)

const credentialsColumns = "id, source_id, workspace, oauth, token, created_at, updated_at"

// Save stores or updates credentials.
func (s *credentialsStore) Save(ctx context.Context, creds domain.Credentials) error {
	if creds.ID == "" || creds.SourceID == "" {
		return domain.ErrInvalidInput
	}

	var oauthJSON sql.NullString
	if creds.OAuth != nil {
		b, err := json.Marshal(creds.OAuth)
		if err != nil {
			return fmt.Errorf("marshalling oauth token: %w", err)
		}
		oauthJSON = sql.NullString{String: string(b), Valid: true}
	}

	now := time.Now().UTC()
	if creds.CreatedAt.IsZero() {
		creds.CreatedAt = now
	}
	if creds.UpdatedAt.IsZero() {
		creds.UpdatedAt = now
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO credentials (`+credentialsColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source_id = excluded.source_id,
			workspace = excluded.workspace,
			oauth = excluded.oauth,
			token = excluded.token,
			updated_at = excluded.updated_at
	`, creds.ID, creds.SourceID, creds.Workspace, oauthJSON, creds.Token,
		creds.CreatedAt, creds.UpdatedAt)

	if err != nil {
		return fmt.Errorf("saving credentials: %w", err)
	}
	return nil
}

// Get retrieves credentials by ID.
func (s *credentialsStore) Get(ctx context.Context, id string) (*domain.Credentials, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT "+credentialsColumns+" FROM credentials WHERE id = ?", id)

	return scanCredentials(row)
}

// GetBySourceID retrieves credentials for a specific source.
// A source without stored credentials returns nil, nil.
func (s *credentialsStore) GetBySourceID(ctx context.Context, sourceID string) (*domain.Credentials, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT "+credentialsColumns+" FROM credentials WHERE source_id = ?", sourceID)

	creds, err := scanCredentials(row)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	return creds, err
}

// Delete removes credentials by ID.
func (s *credentialsStore) Delete(ctx context.Context, id string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM credentials WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting credentials: %w", err)
	}
	return nil
}

// scanCredentials scans a single credentials row.
func scanCredentials(row *sql.Row) (*domain.Credentials, error) {
	var creds domain.Credentials
	var oauthJSON sql.NullString

	if err := row.Scan(&creds.ID, &creds.SourceID, &creds.Workspace,
		&oauthJSON, &creds.Token, &creds.CreatedAt, &creds.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning credentials: %w", err)
	}

	if oauthJSON.Valid && oauthJSON.String != jsonNull {
		var token domain.OAuthToken
		if err := json.Unmarshal([]byte(oauthJSON.String), &token); err != nil {
			return nil, fmt.Errorf("unmarshalling oauth token: %w", err)
		}
		creds.OAuth = &token
	}

	return &creds, nil
}
