package domain

import (
	"strings"
	"time"
)

// Source is a configured Notion workspace scope, such as a set of root
// pages, that a connector syncs.
type Source struct {
	ID   string
	Type string
	Name string

	// Config holds the connector keys, e.g. root_page_ids and max_depth
	// for Notion.
	Config map[string]string

	// CredentialsID is empty when the token comes from NOTION_TOKEN.
	CredentialsID string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DisplayName appends the workspace name unless Name already contains it.
func (s *Source) DisplayName(workspace string) string {
	if workspace == "" || strings.Contains(s.Name, workspace) {
		return s.Name
	}
	return s.Name + " - " + workspace
}

// SyncState is the incremental sync position of a source.
type SyncState struct {
	SourceID string

	// Cursor is opaque to everything but the connector.
	Cursor string

	// LastSync is the end of the last successful sync.
	LastSync time.Time
}
