package ast

import (
	"fmt"
	"strconv"
	"strings"

	"capycop/internal/source"
)

// Child is one element of a node's child list: a *Node, an Atom, or nil
// for an absent slot (e.g. a call without an explicit receiver).
type Child interface {
	isChild()
}

// AtomKind distinguishes atom payloads.
type AtomKind uint8

const (
	// AtomSymbol is an identifier-like name: method names, variable names, symbol values.
	AtomSymbol AtomKind = iota + 1
	// AtomString is the decoded value of a string literal.
	AtomString
	// AtomInt is the source text of an integer literal, underscores removed.
	AtomInt
	// AtomFloat is the source text of a float literal, underscores removed.
	AtomFloat
)

// Atom is a leaf payload that is not itself a syntax node.
type Atom struct {
	Kind AtomKind
	Text string
	Span source.Span
}

func (Atom) isChild() {}

// Equal compares kind and text, ignoring spans.
func (a Atom) Equal(other Atom) bool {
	return a.Kind == other.Kind && a.Text == other.Text
}

func (a Atom) String() string {
	switch a.Kind {
	case AtomSymbol:
		return ":" + a.Text
	case AtomString:
		return strconv.Quote(a.Text)
	default:
		return a.Text
	}
}

// SymAtom builds a symbol atom.
func SymAtom(name string, sp source.Span) Atom { return Atom{Kind: AtomSymbol, Text: name, Span: sp} }

// Node is an immutable syntax tree element. Children are owned by the node;
// nothing mutates a tree after the parser returns it.
type Node struct {
	category Category
	children []Child
	span     source.Span
	value    *Atom
}

func (*Node) isChild() {}

// NewNode builds a node. The children slice is retained, callers must not
// modify it afterwards.
func NewNode(c Category, span source.Span, children ...Child) *Node {
	return &Node{category: c, children: children, span: span}
}

// NewLiteral builds a literal node whose single child is its payload atom.
func NewLiteral(c Category, span source.Span, value Atom) *Node {
	return &Node{category: c, children: []Child{value}, span: span, value: &value}
}

func (n *Node) Category() Category { return n.category }

func (n *Node) Span() source.Span { return n.span }

// Is reports whether the node category is-a c.
func (n *Node) Is(c Category) bool { return n != nil && IsA(n.category, c) }

// Children returns the child list. The slice must be treated as read-only.
func (n *Node) Children() []Child { return n.children }

// Len returns the number of children.
func (n *Node) Len() int { return len(n.children) }

// Child returns the i-th child or nil when out of range.
func (n *Node) Child(i int) Child {
	if i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}

// NodeAt returns the i-th child when it is a node.
func (n *Node) NodeAt(i int) *Node {
	if c, ok := n.Child(i).(*Node); ok {
		return c
	}
	return nil
}

// Value returns the literal payload of str, sym, int and float nodes.
func (n *Node) Value() (Atom, bool) {
	if n == nil || n.value == nil {
		return Atom{}, false
	}
	return *n.value, true
}

// StringValue returns the decoded content of a str node.
func (n *Node) StringValue() (string, bool) {
	if n == nil || n.category != Str {
		return "", false
	}
	return n.value.Text, true
}

// Receiver returns the receiver of a call node, nil when implicit.
func (n *Node) Receiver() *Node {
	if !n.Is(Call) {
		return nil
	}
	return n.NodeAt(0)
}

// MethodName returns the method name of a call node.
func (n *Node) MethodName() string {
	if !n.Is(Call) {
		return ""
	}
	if a, ok := n.Child(1).(Atom); ok {
		return a.Text
	}
	return ""
}

// Arguments returns the argument nodes of a call node.
func (n *Node) Arguments() []*Node {
	if !n.Is(Call) || len(n.children) <= 2 {
		return nil
	}
	out := make([]*Node, 0, len(n.children)-2)
	for _, c := range n.children[2:] {
		if cn, ok := c.(*Node); ok {
			out = append(out, cn)
		}
	}
	return out
}

// Text returns the source bytes covered by the node.
func (n *Node) Text(src []byte) string {
	if int(n.span.End) > len(src) {
		return ""
	}
	return string(src[n.span.Start:n.span.End])
}

// IsAbsent reports whether a child slot is empty. A typed nil *Node counts
// as absent too.
func IsAbsent(c Child) bool {
	if c == nil {
		return true
	}
	n, ok := c.(*Node)
	return ok && n == nil
}

// String renders the node as an s-expression, the same notation the
// pattern language uses: (send nil :has_css? (str ".a")).
func (n *Node) String() string {
	var sb strings.Builder
	writeSexp(&sb, n)
	return sb.String()
}

func writeSexp(sb *strings.Builder, c Child) {
	switch v := c.(type) {
	case nil:
		sb.WriteString("nil")
	case Atom:
		sb.WriteString(v.String())
	case *Node:
		if v == nil {
			sb.WriteString("nil")
			return
		}
		sb.WriteByte('(')
		sb.WriteString(v.category.String())
		for _, ch := range v.children {
			sb.WriteByte(' ')
			writeSexp(sb, ch)
		}
		sb.WriteByte(')')
	default:
		fmt.Fprintf(sb, "%v", v)
	}
}
