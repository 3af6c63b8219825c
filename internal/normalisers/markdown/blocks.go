package markdown

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/custodia-labs/notion-nlp/internal/core/domain"
)

var (
	headingLine  = regexp.MustCompile(`^(#{1,6})\s+(.*?)\s*#*$`)
	todoLine     = regexp.MustCompile(`^(\s*)[-*+]\s+\[([ xX])\]\s+(.*)$`)
	bulletLine   = regexp.MustCompile(`^(\s*)[-*+]\s+(.*)$`)
	numberedLine = regexp.MustCompile(`^(\s*)\d+[.)]\s+(.*)$`)
	quoteLine    = regexp.MustCompile(`^>\s?(.*)$`)
	dividerLine  = regexp.MustCompile(`^(?:-{3,}|\*{3,}|_{3,})$`)

	images     = regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`)
	links      = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	inlineCode = regexp.MustCompile("`([^`]+)`")
	emphasis   = regexp.MustCompile(`(\*\*|__|~~)(.+?)(\*\*|__|~~)`)
)

// ParseBlocks parses Markdown into blocks. Headings deeper than three
// levels become level 3. Indented list items nest under the preceding
// item.
func ParseBlocks(text string) []domain.Block {
	p := &parser{}
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			p.flush()
			fence := trimmed[:3]
			lang := strings.TrimSpace(trimmed[3:])
			var code []string
			for i++; i < len(lines) && !strings.HasPrefix(strings.TrimSpace(lines[i]), fence); i++ {
				code = append(code, lines[i])
			}
			p.add(domain.Block{Type: domain.BlockCode, Text: strings.Join(code, "\n"), Language: lang}, 0)
			continue
		}

		if trimmed == "" {
			p.flush()
			continue
		}

		if m := headingLine.FindStringSubmatch(trimmed); m != nil {
			p.flush()
			level := min(len(m[1]), 3)
			typ := []domain.BlockType{domain.BlockHeading1, domain.BlockHeading2, domain.BlockHeading3}[level-1]
			p.add(domain.Block{Type: typ, Text: inline(m[2])}, 0)
			continue
		}

		if dividerLine.MatchString(strings.ReplaceAll(trimmed, " ", "")) {
			p.flush()
			p.add(domain.Block{Type: domain.BlockDivider}, 0)
			continue
		}

		if m := todoLine.FindStringSubmatch(line); m != nil {
			p.flush()
			p.add(domain.Block{Type: domain.BlockToDo, Text: inline(m[3]), Checked: m[2] != " "}, indentOf(m[1]))
			continue
		}
		if m := bulletLine.FindStringSubmatch(line); m != nil {
			p.flush()
			p.add(domain.Block{Type: domain.BlockBulletedList, Text: inline(m[2])}, indentOf(m[1]))
			continue
		}
		if m := numberedLine.FindStringSubmatch(line); m != nil {
			p.flush()
			p.add(domain.Block{Type: domain.BlockNumberedList, Text: inline(m[2])}, indentOf(m[1]))
			continue
		}

		if m := quoteLine.FindStringSubmatch(trimmed); m != nil {
			p.flush()
			if last := p.last(); last != nil && last.Type == domain.BlockQuote {
				last.Text += "\n" + inline(m[1])
				continue
			}
			p.add(domain.Block{Type: domain.BlockQuote, Text: inline(m[1])}, 0)
			continue
		}

		p.para = append(p.para, inline(trimmed))
	}
	p.flush()
	return p.blocks
}

type parser struct {
	blocks []domain.Block
	para   []string
	n      int
}

func (p *parser) flush() {
	if len(p.para) == 0 {
		return
	}
	p.add(domain.Block{Type: domain.BlockParagraph, Text: strings.Join(p.para, " ")}, 0)
	p.para = nil
}

// add appends b, nesting it under the previous top-level list item when
// indented.
func (p *parser) add(b domain.Block, indent int) {
	p.n++
	b.ID = "block-" + strconv.Itoa(p.n)

	if indent > 0 {
		if last := p.last(); last != nil && isListItem(last.Type) {
			last.Children = append(last.Children, b)
			return
		}
	}
	p.blocks = append(p.blocks, b)
}

func (p *parser) last() *domain.Block {
	if len(p.blocks) == 0 {
		return nil
	}
	return &p.blocks[len(p.blocks)-1]
}

func isListItem(t domain.BlockType) bool {
	return t == domain.BlockBulletedList || t == domain.BlockNumberedList || t == domain.BlockToDo
}

func indentOf(ws string) int {
	return len(strings.ReplaceAll(ws, "\t", "  "))
}

// inline strips inline Markdown formatting.
func inline(s string) string {
	s = images.ReplaceAllString(s, "")
	s = links.ReplaceAllString(s, "$1")
	s = inlineCode.ReplaceAllString(s, "$1")
	s = emphasis.ReplaceAllString(s, "$2")
	return strings.TrimSpace(s)
}
