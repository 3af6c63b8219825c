package hierarchy

import (
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/notion-nlp/internal/core/domain"
)

// Node is a snapshot of one document's position in the hierarchy.
type Node struct {
	ID    string
	Title string

	// ParentID is empty for roots.
	ParentID string

	// Children are the child IDs, sorted by title then ID.
	Children []string

	// Depth is 0 for roots.
	Depth int

	Document domain.Document
}

// IsRoot reports whether the node has no attached parent.
func (n Node) IsRoot() bool {
	return n.ParentID == ""
}

type node struct {
	doc      domain.Document
	parent   *node
	children []*node

	// wantParent is the declared parent ID while that parent is absent.
	// A node promoted by Remove stays attached to its new parent meanwhile.
	wantParent string
}

// Hierarchy is a forest of documents linked by ParentID.
// It is safe for concurrent use.
type Hierarchy struct {
	mu    sync.RWMutex
	nodes map[string]*node

	// waiting indexes nodes by the absent parent ID they declared.
	waiting map[string]map[*node]struct{}
}

// New creates an empty hierarchy.
func New() *Hierarchy {
	return &Hierarchy{
		nodes:   make(map[string]*node),
		waiting: make(map[string]map[*node]struct{}),
	}
}

// Build creates a hierarchy from docs. Documents that cannot be linked
// without a cycle are kept as roots.
func Build(docs []domain.Document) *Hierarchy {
	h := New()
	for i := range docs {
		if err := h.Add(docs[i]); err != nil {
			// Re-add detached so the document is not lost.
			detached := docs[i]
			detached.ParentID = nil
			_ = h.Add(detached)
		}
	}
	return h
}

// Add inserts a document or updates an existing one, re-linking it when its
// parent changed. A self-referencing parent is treated as no parent.
func (h *Hierarchy) Add(doc domain.Document) error {
	if doc.ID == "" {
		return fmt.Errorf("add document: %w: empty id", domain.ErrInvalidInput)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	parentID := doc.ParentIDOrEmpty()
	if parentID == doc.ID {
		parentID = ""
	}

	n, exists := h.nodes[doc.ID]
	var parent *node
	if parentID != "" {
		parent = h.nodes[parentID]
	}
	pending := parentID != "" && parent == nil
	if exists && pending && n.wantParent == parentID {
		parent = n.parent
	}

	if exists && parent != nil && (parent == n || isAncestor(n, parent)) {
		return fmt.Errorf("link %s under %s: %w", doc.ID, parentID, domain.ErrCycle)
	}

	if !exists {
		n = &node{}
		h.nodes[doc.ID] = n
	}
	n.doc = doc

	if n.parent != parent {
		detach(n)
		if parent != nil {
			attach(parent, n)
		}
	} else if parent != nil {
		// Title may have changed.
		sortChildren(parent)
	}

	if pending {
		h.wait(n, parentID)
	} else {
		h.wait(n, "")
	}

	h.adoptWaiting(n)
	return nil
}

// wait records that n waits for parentID, or nothing when parentID is empty.
func (h *Hierarchy) wait(n *node, parentID string) {
	if n.wantParent == parentID {
		return
	}
	if set := h.waiting[n.wantParent]; set != nil {
		delete(set, n)
		if len(set) == 0 {
			delete(h.waiting, n.wantParent)
		}
	}
	n.wantParent = parentID
	if parentID == "" {
		return
	}
	set := h.waiting[parentID]
	if set == nil {
		set = make(map[*node]struct{})
		h.waiting[parentID] = set
	}
	set[n] = struct{}{}
}

// adoptWaiting attaches nodes that declared n as their missing parent.
func (h *Hierarchy) adoptWaiting(n *node) {
	set := h.waiting[n.doc.ID]
	if len(set) == 0 {
		return
	}
	orphans := make([]*node, 0, len(set))
	for other := range set {
		orphans = append(orphans, other)
	}
	for _, other := range orphans {
		if other == n || isAncestor(other, n) {
			continue
		}
		h.wait(other, "")
		detach(other)
		attach(n, other)
	}
}

// Remove deletes a document. Its children move to its parent, or become
// roots, and will re-attach if the document is added again.
func (h *Hierarchy) Remove(id string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	n, ok := h.nodes[id]
	if !ok {
		return false
	}

	parent := n.parent
	for _, c := range append([]*node(nil), n.children...) {
		detach(c)
		if parent != nil {
			attach(parent, c)
		}
		h.wait(c, id)
	}
	h.wait(n, "")
	detach(n)
	delete(h.nodes, id)
	return true
}

// Len returns the number of documents.
func (h *Hierarchy) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.nodes)
}

// Get returns the node for id.
func (h *Hierarchy) Get(id string) (Node, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n, ok := h.nodes[id]
	if !ok {
		return Node{}, false
	}
	return snapshot(n), true
}

// Parent returns the attached parent of id.
func (h *Hierarchy) Parent(id string) (Node, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n, ok := h.nodes[id]
	if !ok || n.parent == nil {
		return Node{}, false
	}
	return snapshot(n.parent), true
}

// Children returns the direct children of id.
func (h *Hierarchy) Children(id string) []Node {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n, ok := h.nodes[id]
	if !ok {
		return nil
	}
	return snapshots(n.children)
}

// Roots returns all nodes without an attached parent, sorted by title then ID.
func (h *Hierarchy) Roots() []Node {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return snapshots(h.roots())
}

func (h *Hierarchy) roots() []*node {
	var roots []*node
	for _, n := range h.nodes {
		if n.parent == nil {
			roots = append(roots, n)
		}
	}
	sortNodes(roots)
	return roots
}

// Ancestors returns the ancestors of id, nearest first.
func (h *Hierarchy) Ancestors(id string) []Node {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n, ok := h.nodes[id]
	if !ok {
		return nil
	}
	var out []Node
	for p := n.parent; p != nil; p = p.parent {
		out = append(out, snapshot(p))
	}
	return out
}

// Descendants returns all nodes below id in pre-order.
func (h *Hierarchy) Descendants(id string) []Node {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n, ok := h.nodes[id]
	if !ok {
		return nil
	}
	var out []Node
	var walk func(*node)
	walk = func(cur *node) {
		for _, c := range cur.children {
			out = append(out, snapshot(c))
			walk(c)
		}
	}
	walk(n)
	return out
}

// Path returns the titles from the root down to id, inclusive.
func (h *Hierarchy) Path(id string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n, ok := h.nodes[id]
	if !ok {
		return nil
	}
	var path []string
	for cur := n; cur != nil; cur = cur.parent {
		path = append(path, cur.doc.Title)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Depth returns the depth of id (roots are 0), or -1 if unknown.
func (h *Hierarchy) Depth(id string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n, ok := h.nodes[id]
	if !ok {
		return -1
	}
	return depth(n)
}

// Walk visits every node in pre-order starting from the roots.
// Returning an error stops the walk. fn must not modify the hierarchy.
func (h *Hierarchy) Walk(fn func(Node) error) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var walk func(*node) error
	walk = func(n *node) error {
		if err := fn(snapshot(n)); err != nil {
			return err
		}
		for _, c := range n.children {
			if err := walk(c); err != nil {
				return err
			}
		}
		return nil
	}
	for _, r := range h.roots() {
		if err := walk(r); err != nil {
			return err
		}
	}
	return nil
}

func attach(parent, child *node) {
	child.parent = parent
	parent.children = append(parent.children, child)
	sortChildren(parent)
}

func detach(n *node) {
	p := n.parent
	if p == nil {
		return
	}
	for i, c := range p.children {
		if c == n {
			p.children = append(p.children[:i], p.children[i+1:]...)
			break
		}
	}
	n.parent = nil
}

// isAncestor reports whether a is an ancestor of n.
func isAncestor(a, n *node) bool {
	for p := n.parent; p != nil; p = p.parent {
		if p == a {
			return true
		}
	}
	return false
}

func depth(n *node) int {
	d := 0
	for p := n.parent; p != nil; p = p.parent {
		d++
	}
	return d
}

func sortChildren(n *node) {
	sortNodes(n.children)
}

func sortNodes(nodes []*node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].doc.Title != nodes[j].doc.Title {
			return nodes[i].doc.Title < nodes[j].doc.Title
		}
		return nodes[i].doc.ID < nodes[j].doc.ID
	})
}

func snapshot(n *node) Node {
	s := Node{
		ID:       n.doc.ID,
		Title:    n.doc.Title,
		Depth:    depth(n),
		Document: n.doc,
	}
	if n.parent != nil {
		s.ParentID = n.parent.doc.ID
	}
	if len(n.children) > 0 {
		s.Children = make([]string, len(n.children))
		for i, c := range n.children {
			s.Children[i] = c.doc.ID
		}
	}
	return s
}

func snapshots(nodes []*node) []Node {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[i] = snapshot(n)
	}
	return out
}
