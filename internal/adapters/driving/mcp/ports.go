package mcp

import (
	"github.com/custodia-labs/notion-nlp/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
type Ports struct {
	// Document reads synced documents, trees and tags.
	Document driving.DocumentService

	// Source lists configured sources.
	Source driving.SourceService

	// Analysis runs ad-hoc text analysis.
	Analysis driving.AnalysisService
}

// Validate ensures all required ports are set.
// Source and Analysis are optional; the tools backed by them report an error.
func (p *Ports) Validate() error {
	if p.Document == nil {
		return ErrMissingDocumentService
	}
	return nil
}
