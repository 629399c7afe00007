package rules

import (
	"fmt"
	"strings"

	"capycop/internal/ast"
	"capycop/internal/diag"
	"capycop/internal/pattern"
	"capycop/internal/rule"
)

// HasCssMatcherName is the registered name of the rule.
const HasCssMatcherName = "Capybara/HasCssMatcher"

const hasCssMatcherMsg = "Use `%{method}(\"%{left}, %{right}\")` instead of " +
	"`%{method}(\"%{left}\") || %{method}(\"%{right}\")`."

// DefaultHasCssMethods are the predicates checked when none are configured.
var DefaultHasCssMethods = []string{"has_css?"}

// patterns is shared by every registry built in the process.
var patterns = pattern.NewCache()

// NewHasCssMatcher flags two selector predicates joined by ||:
//
//	# bad
//	has_css?(".first") || has_css?(".second")
//
//	# good
//	has_css?(".first, .second")
//
// When the first selector is absent Capybara waits the full wait time
// before trying the second; a combined selector avoids that. Each method
// gets its own pattern, both calls must use the same one.
func NewHasCssMatcher(methods ...string) (*rule.Rule, error) {
	if len(methods) == 0 {
		methods = DefaultHasCssMethods
	}
	type matcher struct {
		method string
		p      *pattern.Pattern
	}
	matchers := make([]matcher, 0, len(methods))
	for _, m := range methods {
		src := fmt.Sprintf("(or (`send nil? :%[1]s $...) (`send nil? :%[1]s $...))", m)
		p, err := patterns.Compile(src)
		if err != nil {
			return nil, fmt.Errorf("%s: method %q: %w", HasCssMatcherName, m, err)
		}
		matchers = append(matchers, matcher{method: m, p: p})
	}

	check := func(_ *rule.Context, n *ast.Node) *rule.Finding {
		for _, m := range matchers {
			res, ok := m.p.Match(n)
			if !ok {
				continue
			}
			left, lok := soleString(res.Get(0))
			right, rok := soleString(res.Get(1))
			if !lok || !rok {
				// selectors that are not plain literals cannot be joined as text
				return nil
			}
			// the message shows selectors as written, only the correction is Ruby source
			msg := rule.Format(hasCssMatcherMsg, map[string]string{
				"method": m.method,
				"left":   left,
				"right":  right,
			})
			fixed := rule.Format(`%{method}("%{left}, %{right}")`, map[string]string{
				"method": m.method,
				"left":   escapeDoubleQuoted(left),
				"right":  escapeDoubleQuoted(right),
			})
			return &rule.Finding{
				Node:       n,
				Message:    msg,
				Correction: &rule.Correction{Span: n.Span(), Text: fixed},
			}
		}
		return nil
	}

	return &rule.Rule{
		Name:            HasCssMatcherName,
		Description:     "Checks for has_css? calls joined by ||.",
		Categories:      []ast.Category{ast.Or},
		Severity:        diag.SevConvention,
		Enabled:         true,
		SafeAutocorrect: true,
		Params:          methods,
		Check:           check,
	}, nil
}

// soleString accepts exactly one argument that is a plain string literal.
func soleString(cs []ast.Child) (string, bool) {
	if len(cs) != 1 {
		return "", false
	}
	n, ok := cs[0].(*ast.Node)
	if !ok {
		return "", false
	}
	return n.StringValue()
}

var doubleQuoteEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	`#{`, `\#{`,
	"\n", `\n`,
	"\t", `\t`,
)

// escapeDoubleQuoted makes a decoded value safe inside "...".
func escapeDoubleQuoted(s string) string {
	return doubleQuoteEscaper.Replace(s)
}
