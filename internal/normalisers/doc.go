// Package normalisers provides implementations of the Normaliser interface
// for various document formats. Each normaliser knows how to extract text
// content and blocks from a specific MIME type.
//
// Registry selects the normaliser for a raw document; NewDefaultRegistry
// registers the Notion, Markdown, HTML and plain text normalisers.
package normalisers
