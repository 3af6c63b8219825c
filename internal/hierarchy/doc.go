// Package hierarchy organises documents into the page tree of a workspace.
//
// A Hierarchy is built from the ParentID links of domain documents. Pages
// whose parent has not been seen yet are kept as roots and attached as soon
// as the parent is added, so documents can arrive in any order during a
// sync. Links that would make a page its own ancestor are rejected with
// domain.ErrCycle.
//
// The package also derives the heading outline of a single document
// (Outline, Sections) and renders trees as text (Render).
package hierarchy
