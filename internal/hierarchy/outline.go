package hierarchy

import (
	"strings"

	"github.com/custodia-labs/notion-nlp/internal/core/domain"
)

// Section is a heading-delimited part of a document.
// The preamble before the first heading has Level 0 and no Heading.
type Section struct {
	Heading string
	Level   int

	// Blocks are the non-heading blocks belonging directly to this section.
	Blocks []domain.Block

	// Children are the sub-sections (only populated by Outline).
	Children []*Section
}

// Text returns the heading followed by the section's block text.
func (s *Section) Text() string {
	body := domain.BlocksText(s.Blocks)
	switch {
	case s.Heading == "":
		return body
	case body == "":
		return s.Heading
	default:
		return s.Heading + "\n" + body
	}
}

// Outline nests a document's sections by heading level.
// A heading closes every open section of the same or deeper level.
func Outline(blocks []domain.Block) []*Section {
	var roots []*Section
	var stack []*Section
	var preamble *Section

	for _, b := range blocks {
		level := b.HeadingLevel()
		if level == 0 {
			if len(stack) == 0 {
				if preamble == nil {
					preamble = &Section{}
					roots = append(roots, preamble)
				}
				preamble.Blocks = append(preamble.Blocks, b)
				continue
			}
			top := stack[len(stack)-1]
			top.Blocks = append(top.Blocks, b)
			continue
		}

		sec := &Section{
			Heading: strings.TrimSpace(b.Text),
			Level:   level,
			Blocks:  append([]domain.Block(nil), b.Children...),
		}
		for len(stack) > 0 && stack[len(stack)-1].Level >= level {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			roots = append(roots, sec)
		} else {
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, sec)
		}
		stack = append(stack, sec)
	}
	return roots
}

// Sections splits a document into sections in reading order, without nesting.
func Sections(blocks []domain.Block) []*Section {
	var out []*Section
	var cur *Section
	for _, b := range blocks {
		if level := b.HeadingLevel(); level > 0 {
			cur = &Section{
				Heading: strings.TrimSpace(b.Text),
				Level:   level,
				Blocks:  append([]domain.Block(nil), b.Children...),
			}
			out = append(out, cur)
			continue
		}
		if cur == nil {
			cur = &Section{}
			out = append(out, cur)
		}
		cur.Blocks = append(cur.Blocks, b)
	}
	return out
}

// Headings lists the outline headings, indented two spaces per level.
func Headings(sections []*Section) []string {
	var out []string
	var walk func([]*Section, int)
	walk = func(ss []*Section, indent int) {
		for _, s := range ss {
			next := indent
			if s.Heading != "" {
				out = append(out, strings.Repeat("  ", indent)+s.Heading)
				next = indent + 1
			}
			walk(s.Children, next)
		}
	}
	walk(sections, 0)
	return out
}
