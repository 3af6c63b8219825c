// Package notion normalises Notion page payloads produced by the Notion
// connector (application/vnd.notion.page+json).
//
// The payload carries the page metadata, flattened properties and the block
// tree. The normalised document keeps the page ID as its ID, so parent links
// between pages survive normalisation, and stores a Markdown rendering of
// the blocks in the "markdown" metadata entry.
package notion
