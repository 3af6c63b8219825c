package notion

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/custodia-labs/notion-nlp/internal/core/domain"
)

// Config holds the parsed configuration for a Notion source.
type Config struct {
	// RootPageIDs are the pages the crawl starts from.
	RootPageIDs []string

	// DatabaseIDs are databases whose pages are included.
	DatabaseIDs []string

	// Query filters pages through search when no roots are configured.
	Query string

	// MaxDepth limits block nesting fetched per page.
	MaxDepth int

	// IncludeArchived keeps archived pages.
	IncludeArchived bool
}

// ParseConfig parses a source's config map into a Config struct.
// All fields are optional; by default every page shared with the
// integration is indexed.
func ParseConfig(source domain.Source) (*Config, error) {
	cfg := &Config{MaxDepth: DefaultMaxDepth}

	cfg.RootPageIDs = parseIDs(source.Config["root_page_ids"])
	cfg.DatabaseIDs = parseIDs(source.Config["database_ids"])
	cfg.Query = strings.TrimSpace(source.Config["query"])

	if v := strings.TrimSpace(source.Config["max_depth"]); v != "" {
		depth, err := strconv.Atoi(v)
		if err != nil || depth < 1 {
			return nil, fmt.Errorf("%w: max_depth must be a positive integer, got %q", ErrInvalidConfig, v)
		}
		cfg.MaxDepth = depth
	}

	if v := strings.TrimSpace(source.Config["include_archived"]); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("%w: include_archived must be true or false, got %q", ErrInvalidConfig, v)
		}
		cfg.IncludeArchived = b
	}

	return cfg, nil
}

// HasRoots reports whether pages are discovered from roots rather than
// search.
func (c *Config) HasRoots() bool {
	return len(c.RootPageIDs) > 0 || len(c.DatabaseIDs) > 0
}

// parseIDs parses a comma-separated list of IDs. Notion URLs and IDs
// without dashes are accepted and normalised to the dashed form.
func parseIDs(s string) []string {
	var ids []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(s, ",") {
		id := NormaliseID(part)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}

// NormaliseID extracts a Notion ID from an ID or URL and returns it in
// the dashed 8-4-4-4-12 form. Values that do not contain a 32 digit hex
// ID are returned trimmed.
func NormaliseID(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	candidate := s
	if i := strings.LastIndexAny(candidate, "/"); i >= 0 {
		candidate = candidate[i+1:]
	}
	if i := strings.IndexAny(candidate, "?#"); i >= 0 {
		candidate = candidate[:i]
	}
	candidate = strings.ReplaceAll(candidate, "-", "")
	if len(candidate) > 32 {
		candidate = candidate[len(candidate)-32:]
	}
	if len(candidate) != 32 || !isHex(candidate) {
		return s
	}

	candidate = strings.ToLower(candidate)
	return candidate[0:8] + "-" + candidate[8:12] + "-" + candidate[12:16] + "-" +
		candidate[16:20] + "-" + candidate[20:32]
}

func isHex(s string) bool {
	for _, r := range s {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return false
		}
	}
	return true
}
