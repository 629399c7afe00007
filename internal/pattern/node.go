package pattern

import (
	"strings"

	"capycop/internal/ast"
)

// kind tags a compiled matcher node.
type kind uint8

const (
	kindAny      kind = iota // _
	kindRest                 // ...
	kindAbsent               // nil? or nil
	kindAtom                 // :sym "str" 42
	kindNode                 // (cat sub...)
	kindCategory             // str? or `send
	kindGuard                // #name
	kindCapture              // $sub
	kindUnion                // {a b}
	kindPermute              // <a b>
	kindNot                  // !sub
)

// node is one element of a compiled pattern. Which fields are meaningful
// depends on kind; nodes are never modified after Compile returns.
type node struct {
	kind     kind
	category ast.Category
	poly     bool // category accepts subtypes
	anyCat   bool // (_ ...) head
	atom     ast.Atom
	guard    Guard
	name     string // guard name
	subs     []*node
	slot     int  // capture slot for kindCapture
	implicit bool // permutation inserted for a commutative category
}

// variadic nodes consume a variable number of siblings.
func (n *node) variadic() bool {
	switch n.kind {
	case kindRest, kindPermute:
		return true
	case kindCapture:
		return n.subs[0].kind == kindRest
	}
	return false
}

// width is the minimum number of siblings the node consumes.
func (n *node) width() int {
	switch n.kind {
	case kindRest:
		return 0
	case kindCapture:
		return n.subs[0].width()
	case kindPermute:
		w := 0
		for _, s := range n.subs {
			w += s.width()
		}
		return w
	}
	return 1
}

// cheap nodes inspect only the child itself, never its descendants.
func (n *node) cheap() bool {
	switch n.kind {
	case kindAbsent, kindAtom, kindCategory, kindGuard:
		return true
	case kindCapture:
		return n.subs[0].cheap()
	}
	return false
}

func (n *node) permuteRest() *node {
	for _, s := range n.subs {
		if s.variadic() {
			return s
		}
	}
	return nil
}

func (n *node) String() string {
	var sb strings.Builder
	n.write(&sb)
	return sb.String()
}

func (n *node) write(sb *strings.Builder) {
	switch n.kind {
	case kindAny:
		sb.WriteString("_")
	case kindRest:
		sb.WriteString("...")
	case kindAbsent:
		sb.WriteString("nil?")
	case kindAtom:
		sb.WriteString(n.atom.String())
	case kindNode:
		sb.WriteByte('(')
		switch {
		case n.anyCat:
			sb.WriteString("_")
		case n.poly:
			sb.WriteByte('`')
			sb.WriteString(n.category.String())
		default:
			sb.WriteString(n.category.String())
		}
		for _, s := range n.subs {
			sb.WriteByte(' ')
			s.write(sb)
		}
		sb.WriteByte(')')
	case kindCategory:
		if n.poly {
			sb.WriteByte('`')
			sb.WriteString(n.category.String())
		} else {
			sb.WriteString(n.category.String())
			sb.WriteByte('?')
		}
	case kindGuard:
		sb.WriteByte('#')
		sb.WriteString(n.name)
	case kindCapture:
		sb.WriteByte('$')
		n.subs[0].write(sb)
	case kindUnion:
		writeList(sb, "{", n.subs, "}")
	case kindPermute:
		if n.implicit {
			writeList(sb, "", n.subs, "")
			return
		}
		writeList(sb, "<", n.subs, ">")
	case kindNot:
		sb.WriteByte('!')
		n.subs[0].write(sb)
	}
}

func writeList(sb *strings.Builder, open string, subs []*node, close string) {
	sb.WriteString(open)
	for i, s := range subs {
		if i > 0 {
			sb.WriteByte(' ')
		}
		s.write(sb)
	}
	sb.WriteString(close)
}
