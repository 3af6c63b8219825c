// Package notion provides a connector for Notion workspaces.
//
// The connector reads pages through the Notion REST API using
// github.com/jomei/notionapi. Pages are discovered either from configured
// root pages and databases, following child pages and child databases, or
// through the search endpoint when no roots are configured.
//
// # Configuration
//
// Source config keys (all optional):
//
//	root_page_ids     comma-separated page IDs to start from
//	database_ids      comma-separated database IDs to query
//	query             search query used when no roots are configured
//	max_depth         nesting depth of blocks fetched per page (default 3)
//	include_archived  "true" to keep archived pages
//
// # Authentication
//
// Requests carry a bearer token from a TokenProvider: an internal
// integration token, an OAuth access token or NOTION_TOKEN.
//
// # Rate limiting
//
// Notion allows an average of three requests per second per integration.
// Every request waits on a token bucket, and 429 responses are retried
// after the delay in the Retry-After header.
//
// # Output
//
// Each page is emitted as one RawDocument with MIME type
// application/vnd.notion.page+json holding the page metadata, flattened
// properties and block tree. The URI is notion://pages/<id>.
package notion
