package domain

// RawDocument is a page as fetched, before normalisation. For the Notion
// connector Content is the page JSON with its block tree inlined.
type RawDocument struct {
	SourceID string

	// URI is "notion://pages/<id>" for Notion pages, or a path for
	// exported files.
	URI      string
	MIMEType string
	Content  []byte

	// ParentURI is the URI of the page this one sits under in the
	// workspace tree. Database rows point at the page holding the
	// database. Nil for top-level pages.
	ParentURI *string

	Metadata map[string]any
}

// ChangeType is the kind of change an incremental sync reports.
type ChangeType int

const (
	ChangeCreated ChangeType = iota
	ChangeUpdated

	// ChangeDeleted covers archived, trashed and unshared pages.
	ChangeDeleted
)

func (c ChangeType) String() string {
	switch c {
	case ChangeCreated:
		return "created"
	case ChangeUpdated:
		return "updated"
	case ChangeDeleted:
		return "deleted"
	}
	return "unknown"
}

// RawDocumentChange is one event of an incremental sync. Deletions
// carry no Content.
type RawDocumentChange struct {
	Type     ChangeType
	Document RawDocument
}
