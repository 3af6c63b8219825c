package domain

// TagSource records how a Tag was produced.
type TagSource string

const (
	// TagSourceProperty comes from a select or multi-select page property.
	TagSourceProperty TagSource = "property"
	// TagSourceRule comes from a configured keyword or pattern rule.
	TagSourceRule TagSource = "rule"
	// TagSourceKeyword comes from automatic keyword extraction.
	TagSourceKeyword TagSource = "keyword"
	// TagSourceLLM comes from the language model classifier.
	TagSourceLLM TagSource = "llm"
	// TagSourceInherited is propagated from an ancestor document.
	TagSourceInherited TagSource = "inherited"
	// TagSourceManual is assigned by a user.
	TagSourceManual TagSource = "manual"
)

// Tag is a classification label attached to a Document.
type Tag struct {
	// Name is the display name.
	Name string `json:"name"`

	// Slug is the normalised key used for matching and merging.
	Slug string `json:"slug"`

	// Source records how the tag was produced.
	Source TagSource `json:"source"`

	// Confidence is in the range (0, 1].
	Confidence float64 `json:"confidence"`
}

// TagCount is a tag with the number of documents carrying it.
type TagCount struct {
	Slug      string
	Name      string
	Documents int
}
