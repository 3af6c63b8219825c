package driving

import "context"

// SyncOrchestrator pulls pages from Notion into the document store.
// A second Sync of a source already syncing fails with
// domain.ErrSyncInProgress.
type SyncOrchestrator interface {
	Sync(ctx context.Context, sourceID string) error

	// SyncAll syncs every source in turn and joins their errors.
	SyncAll(ctx context.Context) error

	Status(ctx context.Context, sourceID string) (*SyncStatus, error)
}

// SyncStatus is the progress of the current or last sync of a source.
type SyncStatus struct {
	SourceID string
	Running  bool

	// Counters for the current run, or the last one when idle.
	DocumentsProcessed int
	DocumentsDeleted   int
	ErrorCount         int
}
