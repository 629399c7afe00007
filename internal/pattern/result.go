package pattern

import (
	"capycop/internal/ast"
)

// Result holds the captures of one successful match, by slot. It is owned
// by the caller.
type Result struct {
	captures [][]ast.Child
}

// Len returns the number of capture slots.
func (r *Result) Len() int { return len(r.captures) }

// Get returns what slot i captured: one child for $p, the absorbed
// siblings for $... (possibly none).
func (r *Result) Get(i int) []ast.Child {
	if i < 0 || i >= len(r.captures) {
		return nil
	}
	return r.captures[i]
}

// Node returns the first node captured by slot i, nil when the slot holds
// an atom, an absent child or nothing.
func (r *Result) Node(i int) *ast.Node {
	for _, c := range r.Get(i) {
		if n, ok := c.(*ast.Node); ok && n != nil {
			return n
		}
		return nil
	}
	return nil
}

// Flatten returns every captured node in slot order.
func (r *Result) Flatten() []*ast.Node {
	var out []*ast.Node
	for _, slot := range r.captures {
		for _, c := range slot {
			if n, ok := c.(*ast.Node); ok && n != nil {
				out = append(out, n)
			}
		}
	}
	return out
}

// Values returns the literal payloads of the flattened nodes; nodes
// without a payload are skipped.
func (r *Result) Values() []ast.Atom {
	var out []ast.Atom
	for _, n := range r.Flatten() {
		if v, ok := n.Value(); ok {
			out = append(out, v)
		}
	}
	return out
}
