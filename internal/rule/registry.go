package rule

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	// ErrDuplicateRule is returned by Register for a name already taken.
	ErrDuplicateRule = errors.New("duplicate rule name")
	// ErrInvalidRule is returned by Register for an incomplete rule.
	ErrInvalidRule = errors.New("invalid rule")
	// ErrUnknownRule is returned by Select for names nobody registered.
	ErrUnknownRule = errors.New("unknown rule")
)

// Registry holds rules by name. Registration order is kept and is the
// order in which the walker consults rules for the same node.
type Registry struct {
	rules  []*Rule
	byName map[string]*Rule
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Rule)}
}

func (r *Registry) Register(rl *Rule) error {
	switch {
	case rl == nil:
		return fmt.Errorf("%w: nil rule", ErrInvalidRule)
	case rl.Name == "":
		return fmt.Errorf("%w: empty name", ErrInvalidRule)
	case rl.Check == nil:
		return fmt.Errorf("%w: %s has no check", ErrInvalidRule, rl.Name)
	case len(rl.Categories) == 0:
		return fmt.Errorf("%w: %s declares no categories", ErrInvalidRule, rl.Name)
	}
	if _, ok := r.byName[rl.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateRule, rl.Name)
	}
	r.rules = append(r.rules, rl)
	r.byName[rl.Name] = rl
	return nil
}

func (r *Registry) Lookup(name string) (*Rule, bool) {
	rl, ok := r.byName[name]
	return rl, ok
}

func (r *Registry) Len() int { return len(r.rules) }

// All returns the rules sorted by name.
func (r *Registry) All() []*Rule {
	out := slices.Clone(r.rules)
	slices.SortFunc(out, func(a, b *Rule) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// Select picks the rules to run, in registration order. With only empty,
// every enabled rule is taken; otherwise exactly the named rules, enabled
// or not. A name without a slash selects a whole department. except is
// removed last.
func (r *Registry) Select(only, except []string) ([]*Rule, error) {
	for _, name := range slices.Concat(only, except) {
		if !r.known(name) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownRule, name)
		}
	}
	var out []*Rule
	for _, rl := range r.rules {
		picked := rl.Enabled
		if len(only) > 0 {
			picked = matchesAny(rl, only)
		}
		if picked && !matchesAny(rl, except) {
			out = append(out, rl)
		}
	}
	return out, nil
}

func (r *Registry) known(name string) bool {
	if _, ok := r.byName[name]; ok {
		return true
	}
	for _, rl := range r.rules {
		if rl.Department() == name {
			return true
		}
	}
	return false
}

func matchesAny(rl *Rule, names []string) bool {
	for _, n := range names {
		if rl.Name == n || rl.Department() == n {
			return true
		}
	}
	return false
}
