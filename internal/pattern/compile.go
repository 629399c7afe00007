package pattern

import (
	"fmt"
	"strings"

	"capycop/internal/ast"
)

// SyntaxError reports malformed pattern source. Offset is the byte offset
// of the offending token.
type SyntaxError struct {
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("pattern syntax error at offset %d: %s", e.Offset, e.Msg)
}

// Guard is a named predicate referenced as #name. It receives the child at
// the guard's position, which may be an absent slot (nil).
type Guard func(c ast.Child) bool

// Option configures compilation.
type Option func(*compiler)

// WithGuard makes #name available to the pattern.
func WithGuard(name string, fn Guard) Option {
	return func(c *compiler) {
		c.guards[name] = fn
	}
}

// Pattern is a compiled, immutable matcher. It is safe for concurrent use.
type Pattern struct {
	src      string
	root     *node
	captures int
}

// Compile parses src into a Pattern.
func Compile(src string, opts ...Option) (*Pattern, error) {
	c := &compiler{sc: scanner{src: src}, guards: make(map[string]Guard)}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.advance(); err != nil {
		return nil, err
	}
	root, err := c.parseSingle()
	if err != nil {
		return nil, err
	}
	if c.cur.kind != tokEOF {
		return nil, c.errorf("unexpected %q after pattern", c.cur.text)
	}
	return &Pattern{src: src, root: root, captures: c.slots}, nil
}

// MustCompile is Compile that panics on error, for patterns fixed at
// rule construction time.
func MustCompile(src string, opts ...Option) *Pattern {
	p, err := Compile(src, opts...)
	if err != nil {
		panic(err)
	}
	return p
}

// Source returns the text the pattern was compiled from.
func (p *Pattern) Source() string { return p.src }

// String renders the canonical form. Compiling it yields an equivalent
// pattern.
func (p *Pattern) String() string { return p.root.String() }

// Captures returns the number of capture slots.
func (p *Pattern) Captures() int { return p.captures }

// Category returns the category the root matches, or ast.Invalid when the
// root is not a category pattern (e.g. `_`).
func (p *Pattern) Category() ast.Category {
	switch p.root.kind {
	case kindNode, kindCategory:
		if !p.root.anyCat {
			return p.root.category
		}
	case kindCapture:
		if s := p.root.subs[0]; s.kind == kindNode && !s.anyCat {
			return s.category
		}
	}
	return ast.Invalid
}

// Polymorphic reports whether the root category accepts subtypes.
func (p *Pattern) Polymorphic() bool {
	r := p.root
	if r.kind == kindCapture {
		r = r.subs[0]
	}
	return r.poly || r.category.Abstract()
}

type compiler struct {
	sc     scanner
	cur    tok
	guards map[string]Guard
	slots  int
}

func (c *compiler) advance() error {
	t, err := c.sc.next()
	if err != nil {
		return err
	}
	c.cur = t
	return nil
}

func (c *compiler) errorf(format string, args ...any) error {
	return &SyntaxError{Offset: c.cur.offset, Msg: fmt.Sprintf(format, args...)}
}

// parseSingle parses a pattern that matches exactly one child.
func (c *compiler) parseSingle() (*node, error) {
	start := c.cur
	n, err := c.parseElem()
	if err != nil {
		return nil, err
	}
	if n.variadic() {
		return nil, &SyntaxError{Offset: start.offset, Msg: fmt.Sprintf("%s is only allowed inside a node pattern", n)}
	}
	return n, nil
}

// parseElem parses one element of a sibling sequence; rests and
// permutations are allowed here.
func (c *compiler) parseElem() (*node, error) {
	t := c.cur
	switch t.kind {
	case tokEOF:
		return nil, c.errorf("unexpected end of pattern")
	case tokRest:
		return &node{kind: kindRest}, c.advance()
	case tokSymbol:
		return &node{kind: kindAtom, atom: ast.Atom{Kind: ast.AtomSymbol, Text: t.text}}, c.advance()
	case tokString:
		return &node{kind: kindAtom, atom: ast.Atom{Kind: ast.AtomString, Text: t.text}}, c.advance()
	case tokNumber:
		ak := ast.AtomInt
		text := strings.ReplaceAll(t.text, "_", "")
		if strings.Contains(text, ".") {
			ak = ast.AtomFloat
		}
		return &node{kind: kindAtom, atom: ast.Atom{Kind: ak, Text: text}}, c.advance()
	case tokGuard:
		fn, ok := c.guards[t.text]
		if !ok {
			return nil, c.errorf("unknown guard #%s", t.text)
		}
		return &node{kind: kindGuard, guard: fn, name: t.text}, c.advance()
	case tokIdent:
		return c.parseIdent()
	case tokBacktick:
		if err := c.advance(); err != nil {
			return nil, err
		}
		cat, err := c.parseCategoryName()
		if err != nil {
			return nil, err
		}
		return &node{kind: kindCategory, category: cat, poly: true}, nil
	case tokDollar:
		return c.parseCapture()
	case tokBang:
		return c.parseNot()
	case tokLParen:
		return c.parseNode()
	case tokLBrace:
		return c.parseUnion()
	case tokLAngle:
		return c.parsePermute()
	}
	return nil, c.errorf("unexpected %q", t.text)
}

func (c *compiler) parseIdent() (*node, error) {
	t := c.cur
	if err := c.advance(); err != nil {
		return nil, err
	}
	switch t.text {
	case "_":
		return &node{kind: kindAny}, nil
	case "nil", "nil?":
		return &node{kind: kindAbsent}, nil
	}
	if strings.HasPrefix(t.text, "_") {
		return nil, &SyntaxError{Offset: t.offset, Msg: "named wildcards are not supported"}
	}
	name := strings.TrimSuffix(t.text, "?")
	cat, ok := ast.ParseCategory(name)
	if !ok {
		if strings.HasSuffix(t.text, "?") {
			return nil, &SyntaxError{Offset: t.offset, Msg: fmt.Sprintf("unknown predicate %s", t.text)}
		}
		return nil, &SyntaxError{Offset: t.offset, Msg: fmt.Sprintf("unknown node category %q", name)}
	}
	return &node{kind: kindCategory, category: cat}, nil
}

func (c *compiler) parseCategoryName() (ast.Category, error) {
	t := c.cur
	if t.kind != tokIdent || strings.HasSuffix(t.text, "?") {
		return ast.Invalid, c.errorf("expected node category")
	}
	cat, ok := ast.ParseCategory(t.text)
	if !ok {
		return ast.Invalid, c.errorf("unknown node category %q", t.text)
	}
	return cat, c.advance()
}

func (c *compiler) parseCapture() (*node, error) {
	start := c.cur.offset
	if err := c.advance(); err != nil {
		return nil, err
	}
	slot := c.slots
	c.slots++
	sub, err := c.parseElem()
	if err != nil {
		return nil, err
	}
	switch sub.kind {
	case kindPermute, kindCapture:
		return nil, &SyntaxError{Offset: start, Msg: fmt.Sprintf("cannot capture %s", sub)}
	}
	return &node{kind: kindCapture, slot: slot, subs: []*node{sub}}, nil
}

func (c *compiler) parseNot() (*node, error) {
	start := c.cur.offset
	if err := c.advance(); err != nil {
		return nil, err
	}
	before := c.slots
	sub, err := c.parseSingle()
	if err != nil {
		return nil, err
	}
	if c.slots != before {
		return nil, &SyntaxError{Offset: start, Msg: "captures are not allowed inside a negation"}
	}
	return &node{kind: kindNot, subs: []*node{sub}}, nil
}

func (c *compiler) parseNode() (*node, error) {
	start := c.cur.offset
	if err := c.advance(); err != nil {
		return nil, err
	}
	n := &node{kind: kindNode}
	switch {
	case c.cur.kind == tokIdent && c.cur.text == "_":
		n.anyCat = true
		if err := c.advance(); err != nil {
			return nil, err
		}
	case c.cur.kind == tokBacktick:
		if err := c.advance(); err != nil {
			return nil, err
		}
		n.poly = true
		fallthrough
	default:
		cat, err := c.parseCategoryName()
		if err != nil {
			return nil, err
		}
		n.category = cat
	}

	for c.cur.kind != tokRParen {
		if c.cur.kind == tokEOF {
			return nil, c.errorf("unclosed '(' in pattern")
		}
		sub, err := c.parseElem()
		if err != nil {
			return nil, err
		}
		n.subs = append(n.subs, sub)
	}
	if err := c.advance(); err != nil {
		return nil, err
	}

	if !n.anyCat && n.category.Commutative() && len(n.subs) > 1 && !hasPermute(n.subs) {
		n.subs = []*node{{kind: kindPermute, subs: n.subs, implicit: true}}
		if err := checkPermute(n.subs[0], start); err != nil {
			return nil, err
		}
	}
	return n, nil
}

func hasPermute(subs []*node) bool {
	for _, s := range subs {
		if s.kind == kindPermute {
			return true
		}
	}
	return false
}

// checkPermute allows at most one rest inside a permutation.
func checkPermute(n *node, offset int) error {
	rests := 0
	for _, s := range n.subs {
		if s.kind == kindPermute {
			return &SyntaxError{Offset: offset, Msg: "nested permutations are not supported"}
		}
		if s.variadic() {
			rests++
		}
	}
	if rests > 1 {
		return &SyntaxError{Offset: offset, Msg: "a permutation may hold at most one '...'"}
	}
	return nil
}

func (c *compiler) parseUnion() (*node, error) {
	start := c.cur.offset
	if err := c.advance(); err != nil {
		return nil, err
	}
	base := c.slots
	branchCaptures := -1
	n := &node{kind: kindUnion}
	for c.cur.kind != tokRBrace {
		if c.cur.kind == tokEOF {
			return nil, c.errorf("unclosed '{' in pattern")
		}
		// every branch fills the same slots
		c.slots = base
		sub, err := c.parseSingle()
		if err != nil {
			return nil, err
		}
		got := c.slots - base
		if branchCaptures >= 0 && got != branchCaptures {
			return nil, &SyntaxError{Offset: start, Msg: "union branches must have the same number of captures"}
		}
		branchCaptures = got
		n.subs = append(n.subs, sub)
	}
	if len(n.subs) == 0 {
		return nil, c.errorf("empty union")
	}
	return n, c.advance()
}

func (c *compiler) parsePermute() (*node, error) {
	start := c.cur.offset
	if err := c.advance(); err != nil {
		return nil, err
	}
	n := &node{kind: kindPermute}
	for c.cur.kind != tokRAngle {
		if c.cur.kind == tokEOF {
			return nil, c.errorf("unclosed '<' in pattern")
		}
		sub, err := c.parseElem()
		if err != nil {
			return nil, err
		}
		n.subs = append(n.subs, sub)
	}
	if len(n.subs) == 0 {
		return nil, c.errorf("empty permutation")
	}
	if err := checkPermute(n, start); err != nil {
		return nil, err
	}
	return n, c.advance()
}
