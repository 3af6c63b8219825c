// Package mcp provides an MCP (Model Context Protocol) server adapter.
// It lets assistants read synced Notion documents, their hierarchy and tags,
// and run the text processor over arbitrary text.
package mcp

import "errors"

// ErrMissingDocumentService is returned when the document service is not provided.
var ErrMissingDocumentService = errors.New("mcp: document service is required")
