package notion

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/jomei/notionapi"

	"github.com/custodia-labs/notion-nlp/internal/core/domain"
	"github.com/custodia-labs/notion-nlp/internal/core/ports/driven"
	notionnorm "github.com/custodia-labs/notion-nlp/internal/normalisers/notion"
)

// ConnectorType is the connector type identifier.
const ConnectorType = "notion"

// editSlack covers the minute precision of last_edited_time.
const editSlack = time.Minute

// Ensure Connector implements the interface.
var _ driven.Connector = (*Connector)(nil)

// Connector fetches pages from a Notion workspace.
type Connector struct {
	sourceID string
	config   *Config
	client   *Client
	mu       sync.Mutex
	closed   bool
}

// New creates a new Notion connector.
func New(sourceID string, cfg *Config, tokenProvider driven.TokenProvider, opts ...ClientOption) *Connector {
	if cfg == nil {
		cfg = &Config{MaxDepth: DefaultMaxDepth}
	}
	return &Connector{
		sourceID: sourceID,
		config:   cfg,
		client:   NewClient(tokenProvider, opts...),
	}
}

// Type returns the connector type identifier.
func (c *Connector) Type() string {
	return ConnectorType
}

// SourceID returns the source identifier.
func (c *Connector) SourceID() string {
	return c.sourceID
}

// Client returns the underlying API client.
func (c *Connector) Client() *Client {
	return c.client
}

// Capabilities reports incremental sync with cursor return. Validate
// calls the users/me endpoint.
func (c *Connector) Capabilities() driven.ConnectorCapabilities {
	return driven.ConnectorCapabilities{
		SupportsIncremental:  true,
		SupportsValidation:   true,
		SupportsCursorReturn: true,
	}
}

func (c *Connector) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Validate checks the token by fetching the bot user.
func (c *Connector) Validate(ctx context.Context) error {
	if c.isClosed() {
		return domain.ErrConnectorClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := c.client.ValidateCredentials(ctx); err != nil {
		if IsUnauthorized(err) {
			return err
		}
		return fmt.Errorf("%w: %w", domain.ErrConnectorValidation, err)
	}
	return nil
}

// FullSync fetches every page in scope.
func (c *Connector) FullSync(ctx context.Context) (<-chan domain.RawDocument, <-chan error) {
	docsChan := make(chan domain.RawDocument)
	errsChan := make(chan error, 1)

	go func() {
		defer close(docsChan)
		defer close(errsChan)

		if c.isClosed() {
			errsChan <- domain.ErrConnectorClosed
			return
		}

		cursor := NewCursor()
		emit := func(page *notionnorm.Page) error {
			raw, err := c.rawDocument(page)
			if err != nil {
				return err
			}
			cursor.Observe(page.LastEditedTime)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case docsChan <- raw:
				return nil
			}
		}

		seen, err := c.crawl(ctx, nil, emit)
		if err != nil {
			errsChan <- err
			return
		}

		cursor.Pages = seen
		errsChan <- &driven.SyncComplete{NewCursor: cursor.Encode()}
	}()

	return docsChan, errsChan
}

// IncrementalSync emits pages edited since the cursor, and deletions for
// pages that were archived or are no longer reachable.
func (c *Connector) IncrementalSync(
	ctx context.Context, state domain.SyncState,
) (<-chan domain.RawDocumentChange, <-chan error) {
	changesChan := make(chan domain.RawDocumentChange)
	errsChan := make(chan error, 1)

	go func() {
		defer close(changesChan)
		defer close(errsChan)

		if c.isClosed() {
			errsChan <- domain.ErrConnectorClosed
			return
		}

		prev, err := DecodeCursor(state.Cursor)
		if err != nil {
			errsChan <- fmt.Errorf("decode cursor: %w", err)
			return
		}

		send := func(change domain.RawDocumentChange) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case changesChan <- change:
				return nil
			}
		}

		known := make(map[string]bool, len(prev.Pages))
		for _, id := range prev.Pages {
			known[id] = true
		}

		// A page missing from the previous cursor is new to this source even
		// when it was last edited long ago, e.g. a page shared after the
		// last sync or a row under a newly configured root.
		since := prev.LastEdited.Add(-editSlack)
		changed := func(p *notionapi.Page) bool {
			return prev.LastEdited.IsZero() || !known[string(p.ID)] ||
				p.LastEditedTime.After(since)
		}

		next := NewCursor()
		next.LastEdited = prev.LastEdited
		emit := func(page *notionnorm.Page) error {
			raw, err := c.rawDocument(page)
			if err != nil {
				return err
			}
			next.Observe(page.LastEditedTime)

			kind := domain.ChangeUpdated
			if !known[page.ID] || page.CreatedTime.After(prev.LastEdited) {
				kind = domain.ChangeCreated
			}
			return send(domain.RawDocumentChange{Type: kind, Document: raw})
		}

		seen, err := c.crawl(ctx, changed, emit)
		if err != nil {
			errsChan <- err
			return
		}

		current := make(map[string]bool, len(seen))
		for _, id := range seen {
			current[id] = true
		}
		for _, id := range prev.Pages {
			if current[id] {
				continue
			}
			deleted := domain.RawDocumentChange{
				Type: domain.ChangeDeleted,
				Document: domain.RawDocument{
					SourceID: c.sourceID,
					URI:      PageURI(id),
					MIMEType: notionnorm.MIMEType,
				},
			}
			if err := send(deleted); err != nil {
				errsChan <- err
				return
			}
		}

		next.Pages = seen
		errsChan <- &driven.SyncComplete{NewCursor: next.Encode()}
	}()

	return changesChan, errsChan
}

// Workspace returns the name of the integration's bot user.
func (c *Connector) Workspace(ctx context.Context) (string, error) {
	user, err := c.client.Me(ctx)
	if err != nil {
		return "", err
	}
	return user.Name, nil
}

// Close releases resources.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *Connector) rawDocument(page *notionnorm.Page) (domain.RawDocument, error) {
	data, err := json.Marshal(page)
	if err != nil {
		return domain.RawDocument{}, fmt.Errorf("encode page %s: %w", page.ID, err)
	}

	raw := domain.RawDocument{
		SourceID: c.sourceID,
		URI:      PageURI(page.ID),
		MIMEType: notionnorm.MIMEType,
		Content:  data,
		Metadata: map[string]any{
			"title":       page.Title,
			"url":         page.URL,
			"last_edited": page.LastEditedTime,
		},
	}
	if page.ParentID != "" {
		parent := PageURI(page.ParentID)
		raw.ParentURI = &parent
	}
	return raw, nil
}
