package rule

import (
	"errors"
	"fmt"
	"slices"

	"capycop/internal/ast"
	"capycop/internal/source"
)

// Offense pairs a finding with the rule that produced it.
type Offense struct {
	Rule *Rule
	Finding
}

// RuleError records a rule that panicked on a node. The walk goes on with
// the remaining rules and nodes.
type RuleError struct {
	Rule  string
	Node  *ast.Node
	Value any
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("rule %s failed on %s at %s: %v", e.Rule, e.Node.Category(), e.Node.Span(), e.Value)
}

// Walker dispatches nodes to the rules interested in their category.
// It is immutable after NewWalker and may be shared between goroutines.
type Walker struct {
	rules []*Rule
	// rule indexes per concrete category, ascending
	byCat map[ast.Category][]int
}

// NewWalker indexes rules by category. Abstract categories expand through
// the is-a table, so interest in call also receives send and csend.
func NewWalker(rules []*Rule) *Walker {
	w := &Walker{rules: rules, byCat: make(map[ast.Category][]int)}
	for i, rl := range rules {
		for _, c := range rl.Categories {
			for _, sub := range ast.Subtypes(c) {
				if !slices.Contains(w.byCat[sub], i) {
					w.byCat[sub] = append(w.byCat[sub], i)
				}
			}
		}
	}
	return w
}

// Rules returns the rules in dispatch order.
func (w *Walker) Rules() []*Rule { return w.rules }

// Interested reports whether any rule listens for category c.
func (w *Walker) Interested(c ast.Category) bool { return len(w.byCat[c]) > 0 }

// Run walks root depth-first once and returns offenses in visit order,
// rules in registration order for the same node. Each rule sees each node
// at most once, so it reports at most one offense per node.
func (w *Walker) Run(ctx *Context, root *ast.Node) ([]Offense, error) {
	var (
		out  []Offense
		errs []error
	)
	ast.Walk(root, func(n *ast.Node) bool {
		for _, idx := range w.byCat[n.Category()] {
			rl := w.rules[idx]
			f, err := check(rl, ctx, n)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if f == nil {
				continue
			}
			if f.Node == nil {
				f.Node = n
			}
			if f.Span == (source.Span{}) {
				f.Span = f.Node.Span()
			}
			out = append(out, Offense{Rule: rl, Finding: *f})
		}
		return true
	})
	return out, errors.Join(errs...)
}

func check(rl *Rule, ctx *Context, n *ast.Node) (f *Finding, err error) {
	defer func() {
		if r := recover(); r != nil {
			f, err = nil, &RuleError{Rule: rl.Name, Node: n, Value: r}
		}
	}()
	return rl.Check(ctx, n), nil
}
