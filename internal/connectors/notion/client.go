package notion

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/jomei/notionapi"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/notion-nlp/internal/core/domain"
	"github.com/custodia-labs/notion-nlp/internal/core/ports/driven"
	"github.com/custodia-labs/notion-nlp/internal/logger"
	notionnorm "github.com/custodia-labs/notion-nlp/internal/normalisers/notion"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxDepth is the default block nesting depth fetched per page.
	DefaultMaxDepth = 3

	// pageSize is the maximum page size accepted by Notion.
	pageSize = 100
)

// Client wraps the notionapi client with pagination, recursion, rate
// limiting and error mapping.
type Client struct {
	tokenProvider driven.TokenProvider
	transport     *transport
	timeout       time.Duration

	mu  sync.Mutex
	api *notionapi.Client
}

type clientConfig struct {
	baseURL    *url.URL
	base       http.RoundTripper
	rps        float64
	maxRetries int
	timeout    time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*clientConfig)

// WithBaseURL sends requests to another host, such as a proxy or test
// server. Invalid URLs are ignored.
func WithBaseURL(raw string) ClientOption {
	return func(c *clientConfig) {
		if u, err := url.Parse(raw); err == nil && u.Host != "" {
			c.baseURL = u
		}
	}
}

// WithHTTPClient uses the transport of hc for requests.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *clientConfig) {
		if hc != nil && hc.Transport != nil {
			c.base = hc.Transport
		}
		if hc != nil && hc.Timeout > 0 {
			c.timeout = hc.Timeout
		}
	}
}

// WithRateLimit sets the average number of requests per second.
func WithRateLimit(rps float64) ClientOption {
	return func(c *clientConfig) {
		if rps > 0 {
			c.rps = rps
		}
	}
}

// WithRetry sets how many times a rate-limited request is retried.
func WithRetry(n int) ClientOption {
	return func(c *clientConfig) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

// NewClient creates a Notion API client. The token is requested from
// tokenProvider on first use.
func NewClient(tokenProvider driven.TokenProvider, opts ...ClientOption) *Client {
	cfg := clientConfig{
		rps:        DefaultRequestsPerSecond,
		maxRetries: DefaultMaxRetries,
		timeout:    DefaultTimeout,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Client{
		tokenProvider: tokenProvider,
		transport:     newTransport(cfg.base, cfg.rps, cfg.maxRetries, cfg.baseURL),
		timeout:       cfg.timeout,
	}
}

// ensureClient initialises the notionapi client if not already done.
// This is called lazily so the token is only requested when needed.
func (c *Client) ensureClient(ctx context.Context) (*notionapi.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.api != nil {
		return c.api, nil
	}
	if c.tokenProvider == nil {
		return nil, domain.NewError("notion client", "no token provider", domain.ErrAuthRequired)
	}

	token, err := c.tokenProvider.GetToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("get token: %w", err)
	}

	hc := &http.Client{
		Timeout: c.timeout,
		Transport: &oauth2.Transport{
			Source: NewTokenSource(context.WithoutCancel(ctx), c.tokenProvider),
			Base:   c.transport,
		},
	}
	c.api = notionapi.NewClient(notionapi.Token(token), notionapi.WithHTTPClient(hc))
	return c.api, nil
}

// Me returns the bot user behind the token.
func (c *Client) Me(ctx context.Context) (*notionapi.User, error) {
	api, err := c.ensureClient(ctx)
	if err != nil {
		return nil, err
	}

	user, err := api.User.Me(ctx)
	if err != nil {
		return nil, wrapError(err, "get bot user")
	}
	return user, nil
}

// ValidateCredentials checks the token by fetching the bot user.
func (c *Client) ValidateCredentials(ctx context.Context) error {
	_, err := c.Me(ctx)
	return err
}

// SearchPages returns every page shared with the integration matching
// query. An empty query matches all pages.
func (c *Client) SearchPages(ctx context.Context, query string) ([]*notionapi.Page, error) {
	api, err := c.ensureClient(ctx)
	if err != nil {
		return nil, err
	}

	var pages []*notionapi.Page
	req := &notionapi.SearchRequest{Query: query, PageSize: pageSize}
	for {
		if err := ctx.Err(); err != nil {
			return pages, err
		}

		resp, err := api.Search.Do(ctx, req)
		if err != nil {
			return nil, wrapError(err, "search")
		}
		for _, obj := range resp.Results {
			if page, ok := obj.(*notionapi.Page); ok {
				pages = append(pages, page)
			}
		}

		if !resp.HasMore || resp.NextCursor == "" {
			break
		}
		req.StartCursor = notionapi.Cursor(resp.NextCursor)
	}

	logger.Debug("Notion search %q returned %d pages", query, len(pages))
	return pages, nil
}

// GetPage fetches a page's metadata and properties.
func (c *Client) GetPage(ctx context.Context, id string) (*notionapi.Page, error) {
	api, err := c.ensureClient(ctx)
	if err != nil {
		return nil, err
	}

	page, err := api.Page.Get(ctx, notionapi.PageID(id))
	if err != nil {
		return nil, wrapError(err, "get page "+id)
	}
	return page, nil
}

// QueryDatabase returns every page of a database.
func (c *Client) QueryDatabase(ctx context.Context, id string) ([]*notionapi.Page, error) {
	api, err := c.ensureClient(ctx)
	if err != nil {
		return nil, err
	}

	var pages []*notionapi.Page
	req := &notionapi.DatabaseQueryRequest{PageSize: pageSize}
	for {
		if err := ctx.Err(); err != nil {
			return pages, err
		}

		resp, err := api.Database.Query(ctx, notionapi.DatabaseID(id), req)
		if err != nil {
			return nil, wrapError(err, "query database "+id)
		}
		for i := range resp.Results {
			pages = append(pages, &resp.Results[i])
		}

		if !resp.HasMore || resp.NextCursor == "" {
			break
		}
		req.StartCursor = notionapi.Cursor(resp.NextCursor)
	}
	return pages, nil
}

// GetBlocks returns the block tree under id. Nested blocks are fetched
// down to maxDepth levels; child pages and databases are not descended
// into. maxDepth <= 0 uses DefaultMaxDepth.
func (c *Client) GetBlocks(ctx context.Context, id string, maxDepth int) ([]domain.Block, error) {
	api, err := c.ensureClient(ctx)
	if err != nil {
		return nil, err
	}
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return c.getChildren(ctx, api, id, 1, maxDepth)
}

func (c *Client) getChildren(
	ctx context.Context, api *notionapi.Client, id string, depth, maxDepth int,
) ([]domain.Block, error) {
	var blocks []domain.Block
	pagination := &notionapi.Pagination{PageSize: pageSize}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := api.Block.GetChildren(ctx, notionapi.BlockID(id), pagination)
		if err != nil {
			return nil, wrapError(err, "get block children "+id)
		}

		for _, nb := range resp.Results {
			b := convertBlock(nb)
			if nb.GetHasChildren() && depth < maxDepth && descend(b.Type) {
				children, err := c.getChildren(ctx, api, b.ID, depth+1, maxDepth)
				if err != nil {
					return nil, err
				}
				b.Children = children
			}
			blocks = append(blocks, b)
		}

		if !resp.HasMore || resp.NextCursor == "" {
			break
		}
		pagination.StartCursor = notionapi.Cursor(resp.NextCursor)
	}
	return blocks, nil
}

func descend(t domain.BlockType) bool {
	return t != domain.BlockChildPage && t != domain.BlockChildDatabase
}

// FetchPage fetches a page with its block tree.
func (c *Client) FetchPage(ctx context.Context, id string, maxDepth int) (*notionnorm.Page, error) {
	page, err := c.GetPage(ctx, id)
	if err != nil {
		return nil, err
	}

	blocks, err := c.GetBlocks(ctx, id, maxDepth)
	if err != nil {
		return nil, err
	}

	out := convertPage(page)
	out.Blocks = blocks
	return out, nil
}

// FetchDocument fetches a page and normalises it into a Document.
func (c *Client) FetchDocument(ctx context.Context, id string) (*domain.Document, error) {
	page, err := c.FetchPage(ctx, id, DefaultMaxDepth)
	if err != nil {
		return nil, err
	}
	return notionnorm.ToDocument(page, ""), nil
}
