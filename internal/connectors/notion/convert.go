package notion

import (
	"strconv"
	"strings"

	"github.com/jomei/notionapi"

	"github.com/custodia-labs/notion-nlp/internal/core/domain"
	notionnorm "github.com/custodia-labs/notion-nlp/internal/normalisers/notion"
)

// convertPage maps page metadata and properties. Blocks are added by the
// caller.
func convertPage(p *notionapi.Page) *notionnorm.Page {
	out := &notionnorm.Page{
		ID:             string(p.ID),
		URL:            p.URL,
		Archived:       p.Archived,
		CreatedTime:    p.CreatedTime,
		LastEditedTime: p.LastEditedTime,
		ParentType:     strings.TrimSuffix(string(p.Parent.Type), "_id"),
	}

	switch string(p.Parent.Type) {
	case "page_id":
		out.ParentID = string(p.Parent.PageID)
	case "database_id":
		out.DatabaseID = string(p.Parent.DatabaseID)
	}

	out.Title, out.Properties = flattenProperties(p.Properties)
	return out
}

// flattenProperties returns the page title and the text values of the
// properties that have one.
func flattenProperties(props notionapi.Properties) (string, map[string][]string) {
	var title string
	out := make(map[string][]string)

	for name, prop := range props {
		var values []string
		switch v := prop.(type) {
		case *notionapi.TitleProperty:
			title = plainText(v.Title)
			continue
		case *notionapi.RichTextProperty:
			values = nonEmpty(plainText(v.RichText))
		case *notionapi.SelectProperty:
			values = nonEmpty(v.Select.Name)
		case *notionapi.MultiSelectProperty:
			for _, o := range v.MultiSelect {
				values = append(values, nonEmpty(o.Name)...)
			}
		case *notionapi.StatusProperty:
			values = nonEmpty(v.Status.Name)
		case *notionapi.CheckboxProperty:
			values = []string{strconv.FormatBool(v.Checkbox)}
		case *notionapi.NumberProperty:
			values = []string{strconv.FormatFloat(v.Number, 'f', -1, 64)}
		case *notionapi.URLProperty:
			values = nonEmpty(v.URL)
		}
		if len(values) > 0 {
			out[name] = values
		}
	}
	return title, out
}

// convertBlock maps a block without its children.
func convertBlock(nb notionapi.Block) domain.Block {
	b := domain.Block{
		ID:   string(nb.GetID()),
		Type: domain.BlockType(nb.GetType()),
	}

	switch v := nb.(type) {
	case *notionapi.ParagraphBlock:
		b.Text = plainText(v.Paragraph.RichText)
	case *notionapi.Heading1Block:
		b.Text = plainText(v.Heading1.RichText)
	case *notionapi.Heading2Block:
		b.Text = plainText(v.Heading2.RichText)
	case *notionapi.Heading3Block:
		b.Text = plainText(v.Heading3.RichText)
	case *notionapi.BulletedListItemBlock:
		b.Text = plainText(v.BulletedListItem.RichText)
	case *notionapi.NumberedListItemBlock:
		b.Text = plainText(v.NumberedListItem.RichText)
	case *notionapi.ToDoBlock:
		b.Text = plainText(v.ToDo.RichText)
		b.Checked = v.ToDo.Checked
	case *notionapi.ToggleBlock:
		b.Text = plainText(v.Toggle.RichText)
	case *notionapi.CodeBlock:
		b.Text = plainText(v.Code.RichText)
		b.Language = v.Code.Language
	case *notionapi.QuoteBlock:
		b.Text = plainText(v.Quote.RichText)
	case *notionapi.CalloutBlock:
		b.Text = plainText(v.Callout.RichText)
	case *notionapi.DividerBlock:
	case *notionapi.ChildPageBlock:
		b.Text = v.ChildPage.Title
	case *notionapi.ChildDatabaseBlock:
		b.Text = v.ChildDatabase.Title
	default:
		b.Type = domain.BlockUnsupported
	}
	return b
}

func plainText(rts []notionapi.RichText) string {
	var sb strings.Builder
	for _, rt := range rts {
		sb.WriteString(rt.PlainText)
	}
	return sb.String()
}

func nonEmpty(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return []string{s}
}
