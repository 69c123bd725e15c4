package tokens

import (
	"github.com/goliatone/go-tokens/layering"
	"github.com/google/uuid"
)

// Token tree aliases so callers can author tables without importing layering.
type (
	Node      = layering.Node
	Group     = layering.Group
	Color     = layering.Color
	Dimension = layering.Dimension
	Duration  = layering.Duration
	Number    = layering.Number
)

// Resolved is a complete token table for one component at one breakpoint.
// Values are shared between callers within a cache epoch and must be treated
// as read-only; use Tokens for a private copy.
type Resolved struct {
	Component  string
	Breakpoint Breakpoint
	// Applied lists the breakpoints whose fragments were folded, weakest first.
	Applied []string
	// Epoch identifies this resolution; two reads in the same epoch return the
	// same *Resolved and therefore the same Epoch.
	Epoch uuid.UUID

	tokens Group
}

// Tokens returns a deep copy of the resolved table.
func (r *Resolved) Tokens() Group {
	if r == nil {
		return nil
	}
	return layering.Clone(r.tokens)
}

// Lookup returns the node stored at a dotted path.
func (r *Resolved) Lookup(path string) (Node, bool) {
	if r == nil {
		return nil, false
	}
	node, ok := r.tokens.Lookup(path)
	if !ok {
		return nil, false
	}
	if group, isGroup := node.(Group); isGroup {
		return layering.Clone(group), true
	}
	return node, true
}

// Value returns the leaf at path rendered as a string, or "" when path does
// not name a leaf.
func (r *Resolved) Value(path string) string {
	if r == nil {
		return ""
	}
	node, ok := r.tokens.Lookup(path)
	if !ok {
		return ""
	}
	return layering.LeafString(node)
}

// Leaves returns every resolved leaf sorted by path.
func (r *Resolved) Leaves() []layering.Leaf {
	if r == nil {
		return nil
	}
	return r.tokens.Leaves()
}

// Plain converts the resolved table into nested maps for encoding.
func (r *Resolved) Plain() map[string]any {
	if r == nil {
		return nil
	}
	return r.tokens.Plain()
}
