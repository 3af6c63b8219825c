package notion

import (
	"time"

	"github.com/custodia-labs/notion-nlp/internal/core/domain"
)

// MIMEType is the custom MIME type of Notion page payloads.
const MIMEType = "application/vnd.notion.page+json"

// URIPrefix is the scheme and path of page URIs.
const URIPrefix = "notion://pages/"

// PageURI returns the URI of a page.
func PageURI(id string) string {
	return URIPrefix + id
}

// Page is the JSON payload of a fetched Notion page.
type Page struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url,omitempty"`

	// ParentID is the hierarchy parent: the parent page, or for database
	// rows the page holding the database when known.
	ParentID string `json:"parent_id,omitempty"`

	// ParentType is "page", "database", "workspace" or "block".
	ParentType string `json:"parent_type,omitempty"`

	DatabaseID string `json:"database_id,omitempty"`
	Archived   bool   `json:"archived,omitempty"`

	CreatedTime    time.Time `json:"created_time"`
	LastEditedTime time.Time `json:"last_edited_time"`

	Properties map[string][]string `json:"properties,omitempty"`
	Blocks     []domain.Block      `json:"blocks,omitempty"`
}
