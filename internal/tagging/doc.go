// Package tagging assigns tags to documents.
//
// Tags come from four sources, merged by slug keeping the highest
// confidence:
//
//   - Notion select, multi-select and status properties
//   - user rules matching keywords or regular expressions
//   - the document's top keywords
//   - an optional language model classification
//
// Rules are loaded from TOML or YAML files and can be reloaded while the
// tagger is in use. Child documents inherit the tags of their ancestors
// at a reduced confidence through Inherit.
package tagging
