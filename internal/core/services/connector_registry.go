package services

import (
	"fmt"
	"sort"

	"github.com/custodia-labs/notion-nlp/internal/connectors/notion"
	"github.com/custodia-labs/notion-nlp/internal/core/domain"
	"github.com/custodia-labs/notion-nlp/internal/core/ports/driving"
)

// Ensure ConnectorRegistry implements the interface.
var _ driving.ConnectorRegistry = (*ConnectorRegistry)(nil)

// ConnectorRegistry provides information about available connector types.
type ConnectorRegistry struct {
	connectors map[string]domain.ConnectorType
}

// NewConnectorRegistry creates a registry with the built-in connectors.
func NewConnectorRegistry() *ConnectorRegistry {
	r := &ConnectorRegistry{connectors: make(map[string]domain.ConnectorType)}
	r.Register(NotionConnectorType())
	return r
}

// Register adds or replaces a connector type.
func (r *ConnectorRegistry) Register(ct domain.ConnectorType) {
	r.connectors[ct.ID] = ct
}

// NotionConnectorType describes the Notion connector and its config keys.
func NotionConnectorType() domain.ConnectorType {
	return domain.ConnectorType{
		ID:          notion.ConnectorType,
		Name:        "Notion",
		Description: "Pages and databases shared with a Notion integration",
		ConfigKeys: []domain.ConfigKey{
			{
				Key:         "root_page_ids",
				Label:       "Root Pages",
				Description: "Comma-separated page IDs or URLs to crawl from",
			},
			{
				Key:         "database_ids",
				Label:       "Databases",
				Description: "Comma-separated database IDs whose rows are included",
			},
			{
				Key:         "query",
				Label:       "Search Query",
				Description: "Only pages matching this title search when no roots are set",
			},
			{
				Key:         "max_depth",
				Label:       "Block Depth",
				Description: "Nesting depth of blocks fetched per page",
				Default:     fmt.Sprint(notion.DefaultMaxDepth),
			},
			{
				Key:         "include_archived",
				Label:       "Include Archived",
				Description: "Keep archived pages (true/false)",
				Default:     "false",
			},
		},
		WebURLResolver: notion.ResolveWebURL,
	}
}

// List returns all connector types sorted by ID.
func (r *ConnectorRegistry) List() []domain.ConnectorType {
	out := make([]domain.ConnectorType, 0, len(r.connectors))
	for _, ct := range r.connectors {
		out = append(out, ct)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Get returns a connector type by ID.
func (r *ConnectorRegistry) Get(id string) (*domain.ConnectorType, error) {
	ct, ok := r.connectors[id]
	if !ok {
		return nil, fmt.Errorf("connector type %q: %w", id, domain.ErrUnsupportedType)
	}
	return &ct, nil
}

// ResolveWebURL converts a document URI to a browser URL.
func (r *ConnectorRegistry) ResolveWebURL(connectorType, uri string, metadata map[string]any) string {
	ct, ok := r.connectors[connectorType]
	if !ok || ct.WebURLResolver == nil {
		return ""
	}
	return ct.WebURLResolver(uri, metadata)
}
