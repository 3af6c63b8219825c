// Package auth resolves the Notion token used by each source.
//
// Resolution order for a source:
//
//  1. Credentials referenced by the source, or stored for its ID
//     (integration token or OAuth token, refreshed when expiring).
//  2. The NOTION_TOKEN environment variable.
//  3. NullTokenProvider, which fails every request with ErrAuthRequired.
package auth
