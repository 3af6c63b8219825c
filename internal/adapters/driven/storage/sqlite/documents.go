package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/custodia-labs/notion-nlp/internal/core/domain"
	"github.com/custodia-labs/notion-nlp/internal/core/ports/driven"
)

// documentStore implements driven.DocumentStore.
type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

const documentColumns = `d.id, d.source_id, d.uri, d.url, d.title, d.content, d.parent_id,
	d.blocks, d.analysis, d.properties, d.metadata, d.created_at, d.updated_at`

// SaveDocument stores or updates a document. Tags are saved separately.
func (s *documentStore) SaveDocument(ctx context.Context, doc *domain.Document) error {
	if doc == nil || doc.ID == "" {
		return domain.ErrInvalidInput
	}

	blocksJSON, err := json.Marshal(doc.Blocks)
	if err != nil {
		return fmt.Errorf("marshalling blocks: %w", err)
	}
	propertiesJSON, err := json.Marshal(doc.Properties)
	if err != nil {
		return fmt.Errorf("marshalling properties: %w", err)
	}
	metadataJSON, err := json.Marshal(doc.Metadata)
	if err != nil {
		return fmt.Errorf("marshalling metadata: %w", err)
	}
	var analysisJSON sql.NullString
	if doc.Analysis != nil {
		b, err := json.Marshal(doc.Analysis)
		if err != nil {
			return fmt.Errorf("marshalling analysis: %w", err)
		}
		analysisJSON = sql.NullString{String: string(b), Valid: true}
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO documents (id, source_id, uri, url, title, content, parent_id,
			blocks, analysis, properties, metadata, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source_id = excluded.source_id,
			uri = excluded.uri,
			url = excluded.url,
			title = excluded.title,
			content = excluded.content,
			parent_id = excluded.parent_id,
			blocks = excluded.blocks,
			analysis = excluded.analysis,
			properties = excluded.properties,
			metadata = excluded.metadata,
			updated_at = excluded.updated_at
	`, doc.ID, doc.SourceID, doc.URI, doc.URL, doc.Title, doc.Content,
		nullString(doc.ParentIDOrEmpty()), string(blocksJSON), analysisJSON,
		string(propertiesJSON), string(metadataJSON), doc.CreatedAt, doc.UpdatedAt)

	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// SaveChunks replaces the chunks of every document referenced by chunks.
func (s *documentStore) SaveChunks(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	cleared := make(map[string]bool)
	for _, chunk := range chunks {
		if cleared[chunk.DocumentID] {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM chunks WHERE document_id = ?", chunk.DocumentID); err != nil {
			return fmt.Errorf("clearing chunks: %w", err)
		}
		cleared[chunk.DocumentID] = true
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, document_id, content, position, heading, metadata)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		metadataJSON, err := json.Marshal(chunk.Metadata)
		if err != nil {
			return fmt.Errorf("marshalling chunk metadata: %w", err)
		}

		if _, err := stmt.ExecContext(ctx, chunk.ID, chunk.DocumentID, chunk.Content,
			chunk.Position, chunk.Heading, string(metadataJSON)); err != nil {
			return fmt.Errorf("saving chunk: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetDocument retrieves a document by ID with its tags.
func (s *documentStore) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT "+documentColumns+" FROM documents d WHERE d.id = ?", id)

	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if doc.Tags, err = s.GetTags(ctx, doc.ID); err != nil {
		return nil, err
	}
	return doc, nil
}

// GetChunks retrieves all chunks for a document.
func (s *documentStore) GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, document_id, content, position, heading, metadata
		FROM chunks WHERE document_id = ?
		ORDER BY position
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		var chunk domain.Chunk
		var metadataJSON string
		if err := rows.Scan(&chunk.ID, &chunk.DocumentID, &chunk.Content,
			&chunk.Position, &chunk.Heading, &metadataJSON); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		if err := unmarshalColumn(metadataJSON, &chunk.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshalling chunk metadata: %w", err)
		}
		chunks = append(chunks, chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	return chunks, nil
}

// DeleteDocument removes a document. Chunks and tags cascade.
func (s *documentStore) DeleteDocument(ctx context.Context, id string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return nil
}

// ListDocuments returns documents for a source, or all documents when
// sourceID is empty, ordered by title.
func (s *documentStore) ListDocuments(ctx context.Context, sourceID string) ([]domain.Document, error) {
	query := "SELECT " + documentColumns + " FROM documents d"
	var args []any
	if sourceID != "" {
		query += " WHERE d.source_id = ?"
		args = append(args, sourceID)
	}
	query += " ORDER BY d.title, d.id"

	return s.queryDocuments(ctx, query, args...)
}

// ==================== Tags ====================

// SaveTags replaces the tags of a document.
func (s *documentStore) SaveTags(ctx context.Context, documentID string, tags []domain.Tag) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM tags WHERE document_id = ?", documentID); err != nil {
		return fmt.Errorf("clearing tags: %w", err)
	}

	for _, tag := range tags {
		if tag.Slug == "" {
			continue
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO tags (document_id, slug, name, source, confidence)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(document_id, slug) DO UPDATE SET
				name = excluded.name,
				source = excluded.source,
				confidence = MAX(confidence, excluded.confidence)
		`, documentID, tag.Slug, tag.Name, string(tag.Source), tag.Confidence)
		if err != nil {
			return fmt.Errorf("saving tag %s: %w", tag.Slug, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetTags returns the tags of a document ordered by confidence.
func (s *documentStore) GetTags(ctx context.Context, documentID string) ([]domain.Tag, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT slug, name, source, confidence
		FROM tags WHERE document_id = ?
		ORDER BY confidence DESC, slug
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("querying tags: %w", err)
	}
	defer rows.Close()

	var tags []domain.Tag //nolint:prealloc // size unknown from query
	for rows.Next() {
		var tag domain.Tag
		var source string
		if err := rows.Scan(&tag.Slug, &tag.Name, &source, &tag.Confidence); err != nil {
			return nil, fmt.Errorf("scanning tag: %w", err)
		}
		tag.Source = domain.TagSource(source)
		tags = append(tags, tag)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tags: %w", err)
	}

	return tags, nil
}

// FindByTag returns documents carrying the tag slug, most confident first.
func (s *documentStore) FindByTag(ctx context.Context, slug string) ([]domain.Document, error) {
	return s.queryDocuments(ctx, `
		SELECT `+documentColumns+`
		FROM documents d JOIN tags t ON t.document_id = d.id
		WHERE t.slug = ?
		ORDER BY t.confidence DESC, d.title, d.id
	`, slug)
}

// ListTags returns every tag slug with the number of documents carrying it.
func (s *documentStore) ListTags(ctx context.Context) ([]domain.TagCount, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT slug, MIN(name), COUNT(DISTINCT document_id) AS documents
		FROM tags
		GROUP BY slug
		ORDER BY documents DESC, slug
	`)
	if err != nil {
		return nil, fmt.Errorf("querying tag counts: %w", err)
	}
	defer rows.Close()

	var counts []domain.TagCount //nolint:prealloc // size unknown from query
	for rows.Next() {
		var tc domain.TagCount
		if err := rows.Scan(&tc.Slug, &tc.Name, &tc.Documents); err != nil {
			return nil, fmt.Errorf("scanning tag count: %w", err)
		}
		counts = append(counts, tc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tag counts: %w", err)
	}

	return counts, nil
}

// ==================== Helper Functions ====================

// queryDocuments runs a document query and attaches each document's tags.
func (s *documentStore) queryDocuments(ctx context.Context, query string, args ...any) ([]domain.Document, error) {
	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}

	var docs []domain.Document //nolint:prealloc // size unknown from query
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		docs = append(docs, *doc)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	// Tags are loaded after the cursor is closed so the pool is free.
	for i := range docs {
		if docs[i].Tags, err = s.GetTags(ctx, docs[i].ID); err != nil {
			return nil, err
		}
	}
	return docs, nil
}

// scanDocument scans a single document row.
func scanDocument(row scanner) (*domain.Document, error) {
	var doc domain.Document
	var parentID, analysisJSON sql.NullString
	var blocksJSON, propertiesJSON, metadataJSON string

	if err := row.Scan(&doc.ID, &doc.SourceID, &doc.URI, &doc.URL, &doc.Title, &doc.Content,
		&parentID, &blocksJSON, &analysisJSON, &propertiesJSON, &metadataJSON,
		&doc.CreatedAt, &doc.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	if parentID.Valid && parentID.String != "" {
		doc.ParentID = &parentID.String
	}

	if err := unmarshalColumn(blocksJSON, &doc.Blocks); err != nil {
		return nil, fmt.Errorf("unmarshalling blocks: %w", err)
	}
	if err := unmarshalColumn(propertiesJSON, &doc.Properties); err != nil {
		return nil, fmt.Errorf("unmarshalling properties: %w", err)
	}
	if err := unmarshalColumn(metadataJSON, &doc.Metadata); err != nil {
		return nil, fmt.Errorf("unmarshalling metadata: %w", err)
	}
	if analysisJSON.Valid && analysisJSON.String != jsonNull {
		var analysis domain.TextAnalysis
		if err := json.Unmarshal([]byte(analysisJSON.String), &analysis); err != nil {
			return nil, fmt.Errorf("unmarshalling analysis: %w", err)
		}
		doc.Analysis = &analysis
	}

	return &doc, nil
}

// unmarshalColumn decodes a JSON column, leaving v untouched for empty or null.
func unmarshalColumn(data string, v any) error {
	if data == "" || data == jsonNull {
		return nil
	}
	return json.Unmarshal([]byte(data), v)
}
