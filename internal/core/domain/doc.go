// Package domain defines the core business entities for notion-nlp.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A workspace page with its blocks, tags and analysis
//   - Block: A structural unit of a Document (paragraph, heading, list item)
//   - Tag: A classification label attached to a Document
//   - Chunk: A section-sized unit of a Document's text
//   - Source: A configured Notion workspace scope
//   - RawDocument: Opaque bytes from a connector
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
