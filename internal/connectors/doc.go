// Package connectors builds Connector implementations for sources. Each
// connector knows how to fetch documents from one source type; Notion is
// the only type registered by NewDefaultFactory.
package connectors
