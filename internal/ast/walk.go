package ast

import (
	"fmt"
)

// Visitor is called for each node in depth-first pre-order. Returning false
// skips the node's descendants.
type Visitor func(n *Node) bool

// Walk visits root and its descendants depth-first, parents before children,
// children left to right. This order is the source order of node starts.
func Walk(root *Node, visit Visitor) {
	if root == nil {
		return
	}
	if !visit(root) {
		return
	}
	for _, c := range root.children {
		if cn, ok := c.(*Node); ok && cn != nil {
			Walk(cn, visit)
		}
	}
}

// Count returns the number of nodes in the tree.
func Count(root *Node) int {
	n := 0
	Walk(root, func(*Node) bool {
		n++
		return true
	})
	return n
}

// Verify checks the span invariants: every child lies inside its parent and
// sibling spans never overlap. Siblings need not be in source order, a
// modifier `body if cond` keeps the condition first.
func Verify(root *Node) error {
	if root == nil {
		return nil
	}
	var kids []*Node
	for i, c := range root.children {
		cn, ok := c.(*Node)
		if !ok || cn == nil {
			continue
		}
		if !root.span.Contains(cn.span) {
			return fmt.Errorf("%s child %d span %v escapes parent span %v", root.category, i, cn.span, root.span)
		}
		for _, prev := range kids {
			if prev.span.Overlaps(cn.span) {
				return fmt.Errorf("%s children %v and %v overlap", root.category, prev.span, cn.span)
			}
		}
		if err := Verify(cn); err != nil {
			return err
		}
		kids = append(kids, cn)
	}
	return nil
}
