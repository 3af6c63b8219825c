package domain

import "time"

// Document represents a workspace page after normalisation.
// It is the canonical representation shared by the text processor,
// the hierarchy and the tagger.
type Document struct {
	// ID is the unique identifier for the document.
	// For Notion pages this is the page ID so parent links stay stable.
	ID string

	// SourceID links to the Source that produced this document.
	SourceID string

	// URI is the connector location (e.g. "notion://pages/<id>").
	URI string

	// URL is the web-openable location, if known.
	URL string

	// Title is the human-readable title.
	Title string

	// Content is the full text content after normalisation.
	Content string

	// ParentID links to a parent document for hierarchical sources.
	ParentID *string

	// Blocks is the structural content of the document.
	Blocks []Block

	// Tags are the labels assigned by the tagger.
	Tags []Tag

	// Analysis is the text processor output, nil until analysed.
	Analysis *TextAnalysis

	// Properties holds flattened page properties (select values, dates, ...).
	Properties map[string][]string

	// Metadata contains arbitrary key-value pairs.
	Metadata map[string]any

	// CreatedAt is when the document was created upstream.
	CreatedAt time.Time

	// UpdatedAt is when the document was last edited upstream.
	UpdatedAt time.Time
}

// HasParent reports whether the document has a non-empty parent link.
func (d *Document) HasParent() bool {
	return d.ParentID != nil && *d.ParentID != ""
}

// ParentIDOrEmpty returns the parent ID or an empty string.
func (d *Document) ParentIDOrEmpty() string {
	if d.ParentID == nil {
		return ""
	}
	return *d.ParentID
}

// HasTag reports whether a tag with the given slug is attached.
func (d *Document) HasTag(slug string) bool {
	for _, t := range d.Tags {
		if t.Slug == slug {
			return true
		}
	}
	return false
}

// Chunk represents a section-sized unit within a document.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Content is the text content of this chunk.
	Content string

	// Position is the ordinal position within the document.
	Position int

	// Heading is the title of the section the chunk belongs to.
	Heading string

	// Metadata contains chunk-specific key-value pairs.
	Metadata map[string]any
}
