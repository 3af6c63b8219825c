package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/notion-nlp/internal/core/domain"
	"github.com/custodia-labs/notion-nlp/internal/core/ports/driven"
	"github.com/custodia-labs/notion-nlp/internal/core/ports/driving"
	"github.com/custodia-labs/notion-nlp/internal/logger"
)

// Ensure SourceService implements the interface.
var _ driving.SourceService = (*SourceService)(nil)

// SourceService manages source configurations.
type SourceService struct {
	sourceStore       driven.SourceStore
	syncStore         driven.SyncStateStore
	docStore          driven.DocumentStore
	credentialsStore  driven.CredentialsStore
	connectorRegistry driving.ConnectorRegistry
	now               func() time.Time
}

// NewSourceService creates a new source service.
// credentialsStore and connectorRegistry may be nil.
func NewSourceService(
	sourceStore driven.SourceStore,
	syncStore driven.SyncStateStore,
	docStore driven.DocumentStore,
	credentialsStore driven.CredentialsStore,
	connectorRegistry driving.ConnectorRegistry,
) *SourceService {
	return &SourceService{
		sourceStore:       sourceStore,
		syncStore:         syncStore,
		docStore:          docStore,
		credentialsStore:  credentialsStore,
		connectorRegistry: connectorRegistry,
		now:               time.Now,
	}
}

// Add creates a new source configuration. An empty ID is generated and an
// empty name defaults to the connector type.
func (s *SourceService) Add(ctx context.Context, source domain.Source) (*domain.Source, error) {
	if s.sourceStore == nil {
		return nil, domain.ErrNotImplemented
	}
	if source.Type == "" {
		return nil, fmt.Errorf("%w: source type is required", domain.ErrInvalidInput)
	}
	if err := s.ValidateConfig(ctx, source.Type, source.Config); err != nil {
		return nil, err
	}

	if source.ID == "" {
		source.ID = uuid.NewString()
	} else if existing, err := s.sourceStore.Get(ctx, source.ID); err == nil && existing != nil {
		return nil, fmt.Errorf("source %s: %w", source.ID, domain.ErrAlreadyExists)
	}
	if strings.TrimSpace(source.Name) == "" {
		source.Name = source.Type
	}
	now := s.now()
	source.CreatedAt = now
	source.UpdatedAt = now

	if err := s.sourceStore.Save(ctx, source); err != nil {
		return nil, fmt.Errorf("save source: %w", err)
	}
	logger.Info("Added %s source %s (%s)", source.Type, source.Name, source.ID)
	return &source, nil
}

// Get retrieves a source by ID.
func (s *SourceService) Get(ctx context.Context, id string) (*domain.Source, error) {
	if s.sourceStore == nil {
		return nil, domain.ErrNotImplemented
	}
	return s.sourceStore.Get(ctx, id)
}

// List returns all configured sources.
func (s *SourceService) List(ctx context.Context) ([]domain.Source, error) {
	if s.sourceStore == nil {
		return nil, domain.ErrNotImplemented
	}
	return s.sourceStore.List(ctx)
}

// Update modifies an existing source configuration.
func (s *SourceService) Update(ctx context.Context, source domain.Source) error {
	if s.sourceStore == nil {
		return domain.ErrNotImplemented
	}
	if source.ID == "" {
		return domain.ErrInvalidInput
	}
	existing, err := s.sourceStore.Get(ctx, source.ID)
	if err != nil {
		return err
	}
	if source.Type == "" {
		source.Type = existing.Type
	}
	if err := s.ValidateConfig(ctx, source.Type, source.Config); err != nil {
		return err
	}
	source.CreatedAt = existing.CreatedAt
	source.UpdatedAt = s.now()
	return s.sourceStore.Save(ctx, source)
}

// Remove deletes a source with its documents, sync state and credentials.
// Cleanup failures are logged; only a failure to delete the source itself
// is returned.
func (s *SourceService) Remove(ctx context.Context, id string) error {
	if s.sourceStore == nil {
		return domain.ErrNotImplemented
	}
	if _, err := s.sourceStore.Get(ctx, id); err != nil {
		return err
	}

	if s.docStore != nil {
		docs, err := s.docStore.ListDocuments(ctx, id)
		if err != nil {
			logger.Warn("list documents of %s: %v", id, err)
		}
		for i := range docs {
			if err := s.docStore.DeleteDocument(ctx, docs[i].ID); err != nil {
				logger.Warn("delete document %s: %v", docs[i].ID, err)
			}
		}
	}
	if s.syncStore != nil {
		if err := s.syncStore.Delete(ctx, id); err != nil && !errors.Is(err, domain.ErrNotFound) {
			logger.Warn("delete sync state of %s: %v", id, err)
		}
	}
	if s.credentialsStore != nil {
		creds, err := s.credentialsStore.GetBySourceID(ctx, id)
		if err == nil && creds != nil {
			if err := s.credentialsStore.Delete(ctx, creds.ID); err != nil {
				logger.Warn("delete credentials of %s: %v", id, err)
			}
		}
	}
	return s.sourceStore.Delete(ctx, id)
}

// ValidateConfig checks the connector type exists and required keys are set.
// Without a registry every config is accepted.
func (s *SourceService) ValidateConfig(_ context.Context, connectorType string, config map[string]string) error {
	if s.connectorRegistry == nil {
		return nil
	}
	connType, err := s.connectorRegistry.Get(connectorType)
	if err != nil {
		return err
	}
	if missing := connType.MissingKeys(config); len(missing) > 0 {
		return fmt.Errorf("%w: missing required config keys: %s",
			domain.ErrInvalidInput, strings.Join(missing, ", "))
	}
	return nil
}
