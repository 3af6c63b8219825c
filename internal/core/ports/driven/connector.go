package driven

import (
	"context"
	"errors"

	"github.com/custodia-labs/notion-nlp/internal/core/domain"
)

// Connector pulls raw pages for one source. Sync methods stream on the
// returned channels and close both when done; the error channel carries
// per-page failures, which do not stop the sync.
type Connector interface {
	Type() string
	SourceID() string
	Capabilities() ConnectorCapabilities

	// Validate makes a cheap authenticated call. It returns
	// domain.ErrConnectorValidation wrapping the cause.
	Validate(ctx context.Context) error

	FullSync(ctx context.Context) (<-chan domain.RawDocument, <-chan error)

	// IncrementalSync sends pages changed since state.Cursor, and
	// deletions of pages no longer reachable. With SupportsCursorReturn
	// a successful run ends with a *SyncComplete on the error channel.
	IncrementalSync(ctx context.Context, state domain.SyncState) (<-chan domain.RawDocumentChange, <-chan error)

	// Workspace names the integration the token belongs to.
	Workspace(ctx context.Context) (string, error)

	Close() error
}

// ConnectorCapabilities are the optional behaviours of a Connector.
type ConnectorCapabilities struct {
	SupportsIncremental  bool
	SupportsValidation   bool
	SupportsCursorReturn bool
}

// SyncComplete ends a successful sync on the error channel, carrying the
// cursor for the next incremental run.
type SyncComplete struct {
	NewCursor string
}

func (SyncComplete) Error() string {
	return "sync complete"
}

// IsSyncComplete unwraps a SyncComplete from err.
func IsSyncComplete(err error) (*SyncComplete, bool) {
	var sc *SyncComplete
	if errors.As(err, &sc) {
		return sc, true
	}
	return nil, false
}
