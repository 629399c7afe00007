package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"capycop/internal/ast"
	"capycop/internal/source"
)

// CheckSpanInvariants runs the span invariants on a parsed file:
// 1) the root span points at sf and lies within its content
// 2) every child lies inside its parent and siblings never overlap
// 3) every node span points at sf
func CheckSpanInvariants(root *ast.Node, sf *source.File) error {
	if root == nil || sf == nil {
		return fmt.Errorf("nil root or file")
	}
	sp := root.Span()
	if sp.File != sf.ID {
		return fmt.Errorf("root span points to different file id: got=%d want=%d", sp.File, sf.ID)
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	if sp.End > lenContent || sp.Start > sp.End {
		return fmt.Errorf("root span %v beyond content of %d bytes", sp, lenContent)
	}

	if err := ast.Verify(root); err != nil {
		return err
	}

	var bad error
	ast.Walk(root, func(n *ast.Node) bool {
		if n.Span().File != sf.ID {
			bad = fmt.Errorf("%s span file mismatch: got=%d want=%d", n.Category(), n.Span().File, sf.ID)
			return false
		}
		return bad == nil
	})
	return bad
}
