package pattern

import (
	"slices"

	"capycop/internal/ast"
)

// Match evaluates the pattern against n. A failed match is (nil, false),
// never an error. When several alignments exist the first one found wins:
// rests absorb as few children as possible, permutations try tree order
// first.
func (p *Pattern) Match(n *ast.Node) (*Result, bool) {
	m := &matcher{slots: make([][]ast.Child, p.captures)}
	var c ast.Child
	if n != nil {
		c = n
	}
	if !m.one(p.root, c) {
		return nil, false
	}
	return &Result{captures: m.slots}, true
}

// Matches is Match without the captures.
func (p *Pattern) Matches(n *ast.Node) bool {
	_, ok := p.Match(n)
	return ok
}

// Find returns every node under root (root included) that p matches, in
// depth-first pre-order.
func Find(p *Pattern, root *ast.Node) []*ast.Node {
	var out []*ast.Node
	ast.Walk(root, func(n *ast.Node) bool {
		if p.Matches(n) {
			out = append(out, n)
		}
		return true
	})
	return out
}

// matcher holds the capture slots of one match attempt.
type matcher struct {
	slots [][]ast.Child
}

func (m *matcher) save() [][]ast.Child { return slices.Clone(m.slots) }

func (m *matcher) restore(saved [][]ast.Child) { copy(m.slots, saved) }

func (m *matcher) bind(slot int, cs []ast.Child) { m.slots[slot] = slices.Clone(cs) }

// one matches a single child.
func (m *matcher) one(pn *node, c ast.Child) bool {
	switch pn.kind {
	case kindAny:
		return true
	case kindAbsent:
		return ast.IsAbsent(c)
	case kindAtom:
		return matchAtom(pn.atom, c)
	case kindCategory:
		n, ok := c.(*ast.Node)
		return ok && n != nil && categoryOK(pn, n)
	case kindGuard:
		return pn.guard(c)
	case kindCapture:
		if !m.one(pn.subs[0], c) {
			return false
		}
		m.bind(pn.slot, []ast.Child{c})
		return true
	case kindUnion:
		for _, br := range pn.subs {
			saved := m.save()
			if m.one(br, c) {
				return true
			}
			m.restore(saved)
		}
		return false
	case kindNot:
		return !m.one(pn.subs[0], c)
	case kindNode:
		n, ok := c.(*ast.Node)
		if !ok || n == nil || !categoryOK(pn, n) {
			return false
		}
		kids := n.Children()
		if !m.precheck(pn.subs, kids) {
			return false
		}
		return m.seq(pn.subs, kids)
	}
	return false
}

func categoryOK(pn *node, n *ast.Node) bool {
	switch {
	case pn.anyCat:
		return true
	case pn.poly || pn.category.Abstract():
		return ast.IsA(n.Category(), pn.category)
	default:
		return n.Category() == pn.category
	}
}

// matchAtom compares against a bare atom or against the payload of a
// literal node, so "a" matches both the child of (str "a") and the node.
func matchAtom(want ast.Atom, c ast.Child) bool {
	switch v := c.(type) {
	case ast.Atom:
		return want.Equal(v)
	case *ast.Node:
		if v == nil {
			return false
		}
		got, ok := v.Value()
		return ok && want.Equal(got)
	}
	return false
}

// precheck runs the cheap sub-patterns at fixed leading positions before
// any descent, so `(send nil? :name ...)` rejects on receiver or method
// name without looking inside arguments.
func (m *matcher) precheck(subs []*node, kids []ast.Child) bool {
	variadic := false
	for i, s := range subs {
		if s.variadic() {
			variadic = true
			break
		}
		if i >= len(kids) {
			return false
		}
		if s.cheap() && !cheapMatch(s, kids[i]) {
			return false
		}
	}
	if !variadic && len(kids) != len(subs) {
		return false
	}
	return true
}

func cheapMatch(s *node, c ast.Child) bool {
	if s.kind == kindCapture {
		s = s.subs[0]
	}
	return (&matcher{}).one(s, c)
}

// seq aligns subs with kids left to right and backtracks over rests,
// unions and permutations.
func (m *matcher) seq(subs []*node, kids []ast.Child) bool {
	if len(subs) == 0 {
		return len(kids) == 0
	}
	s, tail := subs[0], subs[1:]
	switch {
	case s.variadic() && s.kind != kindPermute:
		need := minWidth(tail)
		for n := 0; n+need <= len(kids); n++ {
			saved := m.save()
			if s.kind == kindCapture {
				m.bind(s.slot, kids[:n])
			}
			if m.seq(tail, kids[n:]) {
				return true
			}
			m.restore(saved)
		}
		return false
	case s.kind == kindPermute:
		return m.permute(s, tail, kids)
	case s.kind == kindUnion:
		if len(kids) == 0 {
			return false
		}
		for _, br := range s.subs {
			saved := m.save()
			if m.one(br, kids[0]) && m.seq(tail, kids[1:]) {
				return true
			}
			m.restore(saved)
		}
		return false
	default:
		if len(kids) == 0 {
			return false
		}
		saved := m.save()
		if m.one(s, kids[0]) && m.seq(tail, kids[1:]) {
			return true
		}
		m.restore(saved)
		return false
	}
}

func minWidth(subs []*node) int {
	w := 0
	for _, s := range subs {
		w += s.width()
	}
	return w
}

// permute matches the fixed members of s against a window of kids in any
// order. Members are taken in declared order and each tries the unused
// children in tree order, so the identity assignment comes first and the
// rest follow lexicographically. A rest member lets the window grow and
// absorbs the children no member claimed.
func (m *matcher) permute(s *node, tail []*node, kids []ast.Child) bool {
	var fixed []*node
	rest := s.permuteRest()
	for _, sub := range s.subs {
		if sub != rest {
			fixed = append(fixed, sub)
		}
	}
	k := len(fixed)
	maxEnd := k
	if rest != nil {
		maxEnd = len(kids) - minWidth(tail)
	}
	for end := k; end <= maxEnd && end <= len(kids); end++ {
		window := kids[:end]
		used := make([]bool, end)
		saved := m.save()
		cont := func() bool {
			if rest != nil && rest.kind == kindCapture {
				var left []ast.Child
				for i, u := range used {
					if !u {
						left = append(left, window[i])
					}
				}
				m.bind(rest.slot, left)
			}
			return m.seq(tail, kids[end:])
		}
		if m.assign(fixed, window, used, cont) {
			return true
		}
		m.restore(saved)
	}
	return false
}

func (m *matcher) assign(fixed []*node, window []ast.Child, used []bool, cont func() bool) bool {
	if len(fixed) == 0 {
		return cont()
	}
	for i := range window {
		if used[i] {
			continue
		}
		saved := m.save()
		used[i] = true
		if m.one(fixed[0], window[i]) && m.assign(fixed[1:], window, used, cont) {
			return true
		}
		used[i] = false
		m.restore(saved)
	}
	return false
}
