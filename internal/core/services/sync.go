package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/notion-nlp/internal/core/domain"
	"github.com/custodia-labs/notion-nlp/internal/core/ports/driven"
	"github.com/custodia-labs/notion-nlp/internal/core/ports/driving"
	"github.com/custodia-labs/notion-nlp/internal/logger"
)

// Ensure SyncOrchestrator implements the interface.
var _ driving.SyncOrchestrator = (*SyncOrchestrator)(nil)

// SyncOrchestrator coordinates document synchronisation.
type SyncOrchestrator struct {
	sourceStore driven.SourceStore
	syncStore   driven.SyncStateStore
	docStore    driven.DocumentStore
	factory     driven.ConnectorFactory
	registry    driven.NormaliserRegistry
	pipeline    driven.PostProcessorPipeline
	now         func() time.Time

	mu          sync.RWMutex
	activeSyncs map[string]*driving.SyncStatus
}

// NewSyncOrchestrator creates a new sync orchestrator.
func NewSyncOrchestrator(
	sourceStore driven.SourceStore,
	syncStore driven.SyncStateStore,
	docStore driven.DocumentStore,
	factory driven.ConnectorFactory,
	registry driven.NormaliserRegistry,
	pipeline driven.PostProcessorPipeline,
) *SyncOrchestrator {
	return &SyncOrchestrator{
		sourceStore: sourceStore,
		syncStore:   syncStore,
		docStore:    docStore,
		factory:     factory,
		registry:    registry,
		pipeline:    pipeline,
		now:         time.Now,
		activeSyncs: make(map[string]*driving.SyncStatus),
	}
}

// Sync runs a full or incremental sync for a source:
// source, connector, validate, fetch, normalise, post-process, save, cursor.
func (o *SyncOrchestrator) Sync(ctx context.Context, sourceID string) error {
	source, err := o.sourceStore.Get(ctx, sourceID)
	if err != nil {
		return fmt.Errorf("get source: %w", err)
	}
	if o.factory == nil {
		return fmt.Errorf("create connector: %w: no connector factory", domain.ErrNotImplemented)
	}

	status, err := o.begin(sourceID)
	if err != nil {
		return err
	}
	defer o.end(sourceID)

	connector, err := o.factory.Create(ctx, *source)
	if err != nil {
		return fmt.Errorf("create connector: %w", err)
	}
	defer connector.Close()

	caps := connector.Capabilities()
	if caps.SupportsValidation {
		if err := connector.Validate(ctx); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrConnectorValidation, err)
		}
	}

	state, err := o.syncStore.Get(ctx, sourceID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("get sync state: %w", err)
	}

	logger.Info("Starting sync for %s", source.Name)
	started := o.now()

	var newCursor string
	if caps.SupportsIncremental && state != nil && state.Cursor != "" {
		logger.Debug("Incremental sync from cursor")
		changes, errs := connector.IncrementalSync(ctx, *state)
		newCursor, err = o.processChanges(ctx, source, changes, errs, status)
	} else {
		docs, errs := connector.FullSync(ctx)
		var seen *seenSet
		newCursor, seen, err = o.processDocuments(ctx, source, docs, errs, status)
		if err == nil {
			o.prune(ctx, sourceID, seen, status)
		}
	}
	if err != nil {
		return err
	}

	if newCursor == "" && caps.SupportsCursorReturn {
		newCursor = fmt.Sprintf("%d", started.UnixNano())
	}
	if err := o.syncStore.Save(ctx, domain.SyncState{
		SourceID: sourceID,
		Cursor:   newCursor,
		LastSync: o.now(),
	}); err != nil {
		return fmt.Errorf("save sync state: %w", err)
	}

	snap, _ := o.Status(ctx, sourceID)
	logger.Info("Sync complete for %s: %d processed, %d deleted, %d errors",
		source.Name, snap.DocumentsProcessed, snap.DocumentsDeleted, snap.ErrorCount)
	return nil
}

// SyncAll syncs every configured source, continuing past failures.
func (o *SyncOrchestrator) SyncAll(ctx context.Context) error {
	sources, err := o.sourceStore.List(ctx)
	if err != nil {
		return fmt.Errorf("list sources: %w", err)
	}

	var errs []error
	for _, source := range sources {
		if err := o.Sync(ctx, source.ID); err != nil {
			errs = append(errs, fmt.Errorf("sync %s: %w", source.ID, err))
		}
	}
	return errors.Join(errs...)
}

// Status returns a copy of the sync status for a source.
func (o *SyncOrchestrator) Status(_ context.Context, sourceID string) (*driving.SyncStatus, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if status, ok := o.activeSyncs[sourceID]; ok {
		cp := *status
		return &cp, nil
	}
	return &driving.SyncStatus{SourceID: sourceID}, nil
}

func (o *SyncOrchestrator) processDocuments(
	ctx context.Context,
	source *domain.Source,
	docsCh <-chan domain.RawDocument,
	errsCh <-chan error,
	status *driving.SyncStatus,
) (string, *seenSet, error) {
	var newCursor string
	seen := newSeenSet()

	for docsCh != nil || errsCh != nil {
		select {
		case <-ctx.Done():
			return "", nil, ctx.Err()

		case err, ok := <-errsCh:
			if !ok {
				errsCh = nil
				continue
			}
			if sc, done := driven.IsSyncComplete(err); done {
				newCursor = sc.NewCursor
				continue
			}
			if err != nil {
				return "", nil, fmt.Errorf("connector error: %w", err)
			}

		case raw, ok := <-docsCh:
			if !ok {
				docsCh = nil
				continue
			}
			logger.Debug("Processing: %s", raw.URI)
			seen.uris[raw.URI] = true
			id, err := o.processOneDocument(ctx, source, &raw)
			if err != nil {
				o.update(status, func(s *driving.SyncStatus) { s.ErrorCount++ })
				logger.Warn("Failed to process %s: %v", raw.URI, err)
				continue
			}
			seen.ids[id] = true
			o.update(status, func(s *driving.SyncStatus) { s.DocumentsProcessed++ })
		}
	}
	return newCursor, seen, nil
}

func (o *SyncOrchestrator) processChanges(
	ctx context.Context,
	source *domain.Source,
	changesCh <-chan domain.RawDocumentChange,
	errsCh <-chan error,
	status *driving.SyncStatus,
) (string, error) {
	var newCursor string

	for changesCh != nil || errsCh != nil {
		select {
		case <-ctx.Done():
			return "", ctx.Err()

		case err, ok := <-errsCh:
			if !ok {
				errsCh = nil
				continue
			}
			if sc, done := driven.IsSyncComplete(err); done {
				newCursor = sc.NewCursor
				continue
			}
			if err != nil {
				return "", fmt.Errorf("connector error: %w", err)
			}

		case change, ok := <-changesCh:
			if !ok {
				changesCh = nil
				continue
			}

			switch change.Type {
			case domain.ChangeCreated, domain.ChangeUpdated:
				logger.Debug("Processing %s: %s", change.Type, change.Document.URI)
				if _, err := o.processOneDocument(ctx, source, &change.Document); err != nil {
					o.update(status, func(s *driving.SyncStatus) { s.ErrorCount++ })
					logger.Warn("Failed to process %s: %v", change.Document.URI, err)
					continue
				}
				o.update(status, func(s *driving.SyncStatus) { s.DocumentsProcessed++ })

			case domain.ChangeDeleted:
				logger.Debug("Deleting: %s", change.Document.URI)
				deleted, err := o.deleteDocumentByURI(ctx, source.ID, change.Document.URI)
				if err != nil {
					o.update(status, func(s *driving.SyncStatus) { s.ErrorCount++ })
					logger.Warn("Failed to delete %s: %v", change.Document.URI, err)
					continue
				}
				if deleted {
					o.update(status, func(s *driving.SyncStatus) { s.DocumentsDeleted++ })
				}
			}
		}
	}
	return newCursor, nil
}

// processOneDocument normalises, post-processes and stores one document.
// It returns the stored document ID.
func (o *SyncOrchestrator) processOneDocument(
	ctx context.Context,
	source *domain.Source,
	raw *domain.RawDocument,
) (string, error) {
	if raw.SourceID == "" {
		raw.SourceID = source.ID
	}

	result, err := o.registry.Normalise(ctx, raw)
	if err != nil {
		return "", fmt.Errorf("normalise: %w", err)
	}
	doc := &result.Document
	if doc.SourceID == "" {
		doc.SourceID = source.ID
	}

	var chunks []domain.Chunk
	if o.pipeline != nil {
		chunks, err = o.pipeline.Process(ctx, doc)
		if err != nil {
			return "", fmt.Errorf("post-process: %w", err)
		}
	}

	if err := o.docStore.SaveDocument(ctx, doc); err != nil {
		return "", fmt.Errorf("save document: %w", err)
	}
	if err := o.docStore.SaveChunks(ctx, chunks); err != nil {
		return "", fmt.Errorf("save chunks: %w", err)
	}
	if err := o.docStore.SaveTags(ctx, doc.ID, doc.Tags); err != nil {
		return "", fmt.Errorf("save tags: %w", err)
	}
	return doc.ID, nil
}

// seenSet records what a full sync received. uris holds every raw document,
// including ones that failed to process, so their stored copies survive.
type seenSet struct {
	ids  map[string]bool
	uris map[string]bool
}

func newSeenSet() *seenSet {
	return &seenSet{ids: make(map[string]bool), uris: make(map[string]bool)}
}

func (s *seenSet) has(doc *domain.Document) bool {
	return s.ids[doc.ID] || (doc.URI != "" && s.uris[doc.URI])
}

// prune deletes documents of a source that a completed full sync did not
// produce.
func (o *SyncOrchestrator) prune(ctx context.Context, sourceID string, seen *seenSet, status *driving.SyncStatus) {
	docs, err := o.docStore.ListDocuments(ctx, sourceID)
	if err != nil {
		logger.Warn("List documents for pruning: %v", err)
		return
	}
	for i := range docs {
		if seen.has(&docs[i]) {
			continue
		}
		if err := o.docStore.DeleteDocument(ctx, docs[i].ID); err != nil {
			logger.Warn("Failed to delete stale %s: %v", docs[i].ID, err)
			continue
		}
		logger.Debug("Removed stale document %s", docs[i].Title)
		o.update(status, func(s *driving.SyncStatus) { s.DocumentsDeleted++ })
	}
}

// deleteDocumentByURI removes the document with uri, reporting whether one
// was found.
func (o *SyncOrchestrator) deleteDocumentByURI(ctx context.Context, sourceID, uri string) (bool, error) {
	docs, err := o.docStore.ListDocuments(ctx, sourceID)
	if err != nil {
		return false, fmt.Errorf("list documents: %w", err)
	}
	for i := range docs {
		if docs[i].URI != uri {
			continue
		}
		if err := o.docStore.DeleteDocument(ctx, docs[i].ID); err != nil {
			return false, fmt.Errorf("delete document: %w", err)
		}
		return true, nil
	}
	return false, nil
}

// begin registers a running sync, rejecting a second sync of the same source.
func (o *SyncOrchestrator) begin(sourceID string) (*driving.SyncStatus, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, running := o.activeSyncs[sourceID]; running {
		return nil, fmt.Errorf("sync %s: %w", sourceID, domain.ErrSyncInProgress)
	}
	status := &driving.SyncStatus{SourceID: sourceID, Running: true}
	o.activeSyncs[sourceID] = status
	return status, nil
}

func (o *SyncOrchestrator) end(sourceID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.activeSyncs, sourceID)
}

func (o *SyncOrchestrator) update(status *driving.SyncStatus, fn func(*driving.SyncStatus)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	fn(status)
}
