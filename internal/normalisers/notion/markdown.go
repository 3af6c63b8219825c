package notion

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/notion-nlp/internal/core/domain"
)

// RenderMarkdown converts a block tree to Markdown.
func RenderMarkdown(blocks []domain.Block) string {
	var sb strings.Builder
	renderBlocks(&sb, blocks, 0)
	return strings.TrimSpace(sb.String())
}

func renderBlocks(sb *strings.Builder, blocks []domain.Block, depth int) {
	indent := strings.Repeat("  ", depth)
	numbered := 0

	for i, b := range blocks {
		if b.Type != domain.BlockNumberedList {
			numbered = 0
		}
		if i > 0 && isListItem(blocks[i-1].Type) && !isListItem(b.Type) {
			sb.WriteString("\n")
		}

		switch b.Type {
		case domain.BlockHeading1, domain.BlockHeading2, domain.BlockHeading3:
			sb.WriteString(strings.Repeat("#", b.HeadingLevel()) + " " + b.Text + "\n\n")
		case domain.BlockBulletedList, domain.BlockToggle:
			sb.WriteString(indent + "- " + b.Text + "\n")
		case domain.BlockNumberedList:
			numbered++
			fmt.Fprintf(sb, "%s%d. %s\n", indent, numbered, b.Text)
		case domain.BlockToDo:
			box := "[ ]"
			if b.Checked {
				box = "[x]"
			}
			sb.WriteString(indent + "- " + box + " " + b.Text + "\n")
		case domain.BlockCode:
			lang := b.Language
			if lang == "plain text" {
				lang = ""
			}
			sb.WriteString("```" + lang + "\n" + b.Text + "\n```\n\n")
		case domain.BlockQuote, domain.BlockCallout:
			for _, line := range strings.Split(b.Text, "\n") {
				sb.WriteString(indent + "> " + line + "\n")
			}
			sb.WriteString("\n")
		case domain.BlockDivider:
			sb.WriteString("---\n\n")
		case domain.BlockChildPage, domain.BlockChildDatabase:
			sb.WriteString(indent + "**" + b.Text + "**\n\n")
		default:
			if strings.TrimSpace(b.Text) != "" {
				sb.WriteString(indent + b.Text + "\n\n")
			}
		}

		if len(b.Children) > 0 {
			renderBlocks(sb, b.Children, depth+1)
		}
	}

	if n := len(blocks); n > 0 && isListItem(blocks[n-1].Type) && depth == 0 {
		sb.WriteString("\n")
	}
}

func isListItem(t domain.BlockType) bool {
	switch t {
	case domain.BlockBulletedList, domain.BlockNumberedList, domain.BlockToDo, domain.BlockToggle:
		return true
	}
	return false
}
