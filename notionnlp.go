// Package notionnlp is the public surface of notion-nlp: a Notion client,
// a text processor, a document hierarchy and a tagger, with the document
// and error types they share.
//
// The names listed in Exports are the complete public API of this package.
package notionnlp

import (
	"github.com/custodia-labs/notion-nlp/internal/connectors/notion"
	"github.com/custodia-labs/notion-nlp/internal/core/domain"
	"github.com/custodia-labs/notion-nlp/internal/hierarchy"
	"github.com/custodia-labs/notion-nlp/internal/nlp"
	"github.com/custodia-labs/notion-nlp/internal/tagging"
)

// Version is the library release.
const Version = "0.1.0"

type (
	// NotionClient fetches pages, blocks and databases from the Notion API.
	NotionClient = notion.Client

	// TextProcessor detects language, extracts keywords and summarises text.
	TextProcessor = nlp.Processor

	// DocumentHierarchy is the page tree built from parent links.
	DocumentHierarchy = hierarchy.Hierarchy

	// Tagger assigns tags from properties, rules, keywords and ancestors.
	Tagger = tagging.Tagger

	Document = domain.Document
	Block    = domain.Block
	Tag      = domain.Tag

	// NotionNLPError is the base error kind.
	NotionNLPError = domain.NotionNLPError

	// AuthenticationError is a NotionNLPError for rejected credentials.
	AuthenticationError = domain.AuthenticationError
)

// Exports lists every public name of the package other than Version and
// Exports itself.
var Exports = []string{
	"NotionClient",
	"TextProcessor",
	"DocumentHierarchy",
	"Tagger",
	"Document",
	"Block",
	"Tag",
	"NotionNLPError",
	"AuthenticationError",
}
