package notion

import (
	"strings"

	notionnorm "github.com/custodia-labs/notion-nlp/internal/normalisers/notion"
)

// URIPrefix is the scheme and path of page URIs.
const URIPrefix = notionnorm.URIPrefix

// PageURI returns the URI of a page.
func PageURI(id string) string {
	return notionnorm.PageURI(id)
}

// PageIDFromURI returns the page ID of a page URI.
func PageIDFromURI(uri string) (string, bool) {
	if !strings.HasPrefix(uri, URIPrefix) {
		return "", false
	}
	id := strings.TrimPrefix(uri, URIPrefix)
	return id, id != ""
}

// ResolveWebURL converts a Notion URI to a web URL.
// notion://pages/<id> -> https://www.notion.so/<id without dashes>
// A "url" metadata entry, as stored by the connector, takes precedence.
func ResolveWebURL(uri string, metadata map[string]any) string {
	if u, ok := metadata["url"].(string); ok && u != "" {
		return u
	}
	id, ok := PageIDFromURI(uri)
	if !ok {
		return ""
	}
	return "https://www.notion.so/" + strings.ReplaceAll(id, "-", "")
}
