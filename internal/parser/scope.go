package parser

// scope tracks local variable names so a bare identifier can be told apart
// from a method call without arguments, as Ruby does.
type scope struct {
	names map[string]bool
	// hard scopes (def bodies) do not see enclosing locals, blocks do
	hard bool
}

func newScope(hard bool) scope {
	return scope{names: make(map[string]bool), hard: hard}
}

func (p *Parser) pushScope(hard bool) { p.scopes = append(p.scopes, newScope(hard)) }

func (p *Parser) popScope() { p.scopes = p.scopes[:len(p.scopes)-1] }

func (p *Parser) declare(name string) {
	p.scopes[len(p.scopes)-1].names[name] = true
}

func (p *Parser) isLocal(name string) bool {
	for i := len(p.scopes) - 1; i >= 0; i-- {
		if p.scopes[i].names[name] {
			return true
		}
		if p.scopes[i].hard {
			return false
		}
	}
	return false
}
