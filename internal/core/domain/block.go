package domain

import "strings"

// BlockType identifies the kind of a Block.
type BlockType string

// Block types understood by the normalisers and renderers.
// Values match the Notion API block type names.
const (
	BlockParagraph     BlockType = "paragraph"
	BlockHeading1      BlockType = "heading_1"
	BlockHeading2      BlockType = "heading_2"
	BlockHeading3      BlockType = "heading_3"
	BlockBulletedList  BlockType = "bulleted_list_item"
	BlockNumberedList  BlockType = "numbered_list_item"
	BlockToDo          BlockType = "to_do"
	BlockToggle        BlockType = "toggle"
	BlockCode          BlockType = "code"
	BlockQuote         BlockType = "quote"
	BlockCallout       BlockType = "callout"
	BlockDivider       BlockType = "divider"
	BlockChildPage     BlockType = "child_page"
	BlockChildDatabase BlockType = "child_database"
	BlockUnsupported   BlockType = "unsupported"
)

// Block is a structural unit of a Document.
type Block struct {
	// ID is the block identifier (Notion block ID or a generated one).
	ID string `json:"id"`

	// Type is the kind of block.
	Type BlockType `json:"type"`

	// Text is the plain text of the block, rich text flattened.
	Text string `json:"text,omitempty"`

	// Checked is set for to-do blocks.
	Checked bool `json:"checked,omitempty"`

	// Language is set for code blocks.
	Language string `json:"language,omitempty"`

	// Children holds nested blocks (toggles, list items, columns).
	Children []Block `json:"children,omitempty"`
}

// IsHeading reports whether the block is a heading of any level.
func (b Block) IsHeading() bool {
	return b.HeadingLevel() > 0
}

// HeadingLevel returns 1-3 for headings and 0 otherwise.
func (b Block) HeadingLevel() int {
	switch b.Type {
	case BlockHeading1:
		return 1
	case BlockHeading2:
		return 2
	case BlockHeading3:
		return 3
	default:
		return 0
	}
}

// FlattenBlocks returns all blocks in pre-order.
func FlattenBlocks(blocks []Block) []Block {
	var out []Block
	var walk func([]Block)
	walk = func(bs []Block) {
		for _, b := range bs {
			out = append(out, b)
			walk(b.Children)
		}
	}
	walk(blocks)
	return out
}

// BlocksText joins the text of all blocks, one block per line.
// Blocks without text are skipped.
func BlocksText(blocks []Block) string {
	var sb strings.Builder
	for _, b := range FlattenBlocks(blocks) {
		text := strings.TrimSpace(b.Text)
		if text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(text)
	}
	return sb.String()
}
