package hierarchy

import (
	"fmt"

	"github.com/xlab/treeprint"

	"github.com/custodia-labs/notion-nlp/internal/core/domain"
)

// Render draws the tree below rootID, or the whole forest when rootID is empty.
func (h *Hierarchy) Render(rootID string) (string, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if rootID == "" {
		tree := treeprint.NewWithRoot(fmt.Sprintf("%d documents", len(h.nodes)))
		for _, r := range h.roots() {
			addBranch(tree, r)
		}
		return tree.String(), nil
	}

	n, ok := h.nodes[rootID]
	if !ok {
		return "", fmt.Errorf("render %s: %w", rootID, domain.ErrNotFound)
	}
	tree := treeprint.NewWithRoot(label(n))
	for _, c := range n.children {
		addBranch(tree, c)
	}
	return tree.String(), nil
}

func addBranch(tree treeprint.Tree, n *node) {
	if len(n.children) == 0 {
		tree.AddNode(label(n))
		return
	}
	branch := tree.AddBranch(label(n))
	for _, c := range n.children {
		addBranch(branch, c)
	}
}

func label(n *node) string {
	if n.doc.Title == "" {
		return "(untitled) " + n.doc.ID
	}
	return n.doc.Title
}

// RenderOutline draws a document outline under the given title.
func RenderOutline(title string, sections []*Section) string {
	tree := treeprint.NewWithRoot(title)
	var add func(treeprint.Tree, []*Section)
	add = func(t treeprint.Tree, ss []*Section) {
		for _, s := range ss {
			if s.Heading == "" {
				add(t, s.Children)
				continue
			}
			if len(s.Children) == 0 {
				t.AddNode(s.Heading)
				continue
			}
			add(t.AddBranch(s.Heading), s.Children)
		}
	}
	add(tree, sections)
	return tree.String()
}
