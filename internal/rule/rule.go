// Package rule defines what a lint rule is and how rules are dispatched
// over a syntax tree. Concrete rules live in internal/rules.
package rule

import (
	"strings"

	"capycop/internal/ast"
	"capycop/internal/diag"
	"capycop/internal/source"
)

// Rule is a named check invoked on nodes of the categories it declares.
// Check returns nil when the node is fine.
type Rule struct {
	// Name is department-qualified, e.g. "Capybara/HasCssMatcher".
	Name        string
	Description string
	Categories  []ast.Category
	Severity    diag.Severity
	Enabled     bool
	// SafeAutocorrect marks corrections that never change behaviour; only
	// those are applied by `fix` without --unsafe.
	SafeAutocorrect bool
	// Params are the effective settings that change findings, e.g. the
	// configured method names. They are part of the result cache key.
	Params []string
	Check  func(ctx *Context, n *ast.Node) *Finding
}

// Department returns the part of the name before the slash.
func (r *Rule) Department() string {
	dept, _, ok := strings.Cut(r.Name, "/")
	if !ok {
		return ""
	}
	return dept
}

// Finding is one offense reported by a rule.
type Finding struct {
	Node    *ast.Node
	Span    source.Span // defaults to Node.Span()
	Message string
	// Correction is nil when the rule cannot fix this occurrence.
	Correction *Correction
}

// Correction replaces Span with Text. It is a value; applying it is the
// fix engine's job.
type Correction struct {
	Span source.Span
	Text string
}

// Context is what a rule sees besides the node.
type Context struct {
	File *source.File
}

// Source returns the text covered by n.
func (c *Context) Source(n *ast.Node) string {
	if c == nil || c.File == nil || n == nil {
		return ""
	}
	return n.Text(c.File.Content)
}

// Settings override a rule's defaults, usually from the config file.
// Zero fields keep the default.
type Settings struct {
	Enabled  *bool
	Severity string
	Methods  []string
}
