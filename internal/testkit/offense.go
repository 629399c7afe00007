// Package testkit checks rules against annotated Ruby snippets:
//
//	testkit.ExpectOffense(t, rl, `
//	  has_css?("a") || has_css?("b")
//	  ^^^^^^^^^^^^^^^^^^^^^^^^^^^^^^ Use ...
//	`)
//
// A line made of blanks, carets and a message marks an offense on the
// source line above it: the carets start at the offense column and cover
// its length, clipped to the end of that line.
package testkit

import (
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"capycop/internal/diag"
	"capycop/internal/driver"
	"capycop/internal/rule"
	"capycop/internal/source"
)

// FileName is the name given to snippets.
const FileName = "example_spec.rb"

var annotationRe = regexp.MustCompile(`^( *)(\^+) (.+)$`)

// ExpectOffense fails t unless rules report exactly the annotated offenses.
func ExpectOffense(t testing.TB, rules []*rule.Rule, annotated string) {
	t.Helper()
	want := Dedent(annotated)
	src := StripAnnotations(want)

	got := Annotate(src, Offenses(t, rules, src))
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("offense mismatch (-want +got):\n%s", diff)
	}
}

// ExpectNoOffenses fails t if rules report anything on src.
func ExpectNoOffenses(t testing.TB, rules []*rule.Rule, src string) {
	t.Helper()
	src = Dedent(src)
	if ds := Offenses(t, rules, src); len(ds) > 0 {
		t.Fatalf("expected no offenses, got:\n%s", Annotate(src, ds))
	}
}

// ExpectCorrection fails t unless autocorrecting src until nothing is left
// to correct yields want.
func ExpectCorrection(t testing.TB, rules []*rule.Rule, src, want string) {
	t.Helper()
	src, want = Dedent(src), Dedent(want)

	fs := source.NewFileSet()
	id := fs.AddVirtual(FileName, []byte(src))
	res, err := driver.Correct(context.Background(), fs, id, rule.NewWalker(rules), driver.CorrectOptions{})
	if err != nil {
		t.Fatalf("correct: %v", err)
	}
	if diff := cmp.Diff(want, string(res.After)); diff != "" {
		t.Fatalf("correction mismatch (-want +got):\n%s", diff)
	}
}

// Offenses parses src, checks its span invariants and returns the offense
// diagnostics of rules in source order.
func Offenses(t testing.TB, rules []*rule.Rule, src string) []diag.Diagnostic {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual(FileName, []byte(src))
	res, err := driver.AnalyzeSource(context.Background(), fs, id, rule.NewWalker(rules), driver.Options{})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if res.Root != nil {
		if err := CheckSpanInvariants(res.Root, fs.Get(id)); err != nil {
			t.Fatalf("span invariants: %v", err)
		}
	}
	var out []diag.Diagnostic
	for _, d := range res.Bag.Items() {
		switch d.Code {
		case diag.LintOffense:
			out = append(out, d)
		case diag.ParseSyntax, diag.LintRuleFailure:
			t.Fatalf("%s: %s", d.Code.ID(), d.Message)
		}
	}
	return out
}

// Annotate renders src with a caret line under every diagnostic.
func Annotate(src string, ds []diag.Diagnostic) string {
	lines := strings.SplitAfter(src, "\n")
	var sb strings.Builder
	off := 0
	for _, line := range lines {
		if line == "" {
			continue
		}
		sb.WriteString(line)
		body := strings.TrimSuffix(line, "\n")
		start, end := off, off+len(body)
		for _, d := range ds {
			s := int(d.Primary.Start)
			if s < start || s > end {
				continue
			}
			if !strings.HasSuffix(line, "\n") {
				sb.WriteString("\n")
			}
			width := max(min(int(d.Primary.End), end)-s, 1)
			sb.WriteString(strings.Repeat(" ", s-start))
			sb.WriteString(strings.Repeat("^", width))
			sb.WriteString(" ")
			sb.WriteString(d.Message)
			sb.WriteString("\n")
		}
		off += len(line)
	}
	return sb.String()
}

// StripAnnotations drops the caret lines of an annotated snippet.
func StripAnnotations(annotated string) string {
	var sb strings.Builder
	for _, line := range strings.SplitAfter(annotated, "\n") {
		if annotationRe.MatchString(strings.TrimSuffix(line, "\n")) {
			continue
		}
		sb.WriteString(line)
	}
	return sb.String()
}

// Dedent removes a leading newline and the indentation common to all
// non-blank lines, so snippets can be written as indented raw strings.
func Dedent(s string) string {
	s = strings.TrimPrefix(s, "\n")
	lines := strings.SplitAfter(s, "\n")
	indent := -1
	for _, l := range lines {
		body := strings.TrimRight(l, "\n")
		if strings.TrimSpace(body) == "" {
			continue
		}
		n := len(body) - len(strings.TrimLeft(body, " \t"))
		if indent < 0 || n < indent {
			indent = n
		}
	}
	if indent <= 0 {
		return trimTrailingBlank(s)
	}
	var sb strings.Builder
	for _, l := range lines {
		if len(l) >= indent && strings.TrimSpace(l[:indent]) == "" {
			l = l[indent:]
		} else if strings.TrimSpace(l) == "" {
			l = strings.TrimLeft(l, " \t")
		}
		sb.WriteString(l)
	}
	return trimTrailingBlank(sb.String())
}

// trimTrailingBlank drops the indentation before a closing backquote.
func trimTrailingBlank(s string) string {
	i := strings.LastIndexByte(s, '\n')
	if i >= 0 && strings.TrimSpace(s[i+1:]) == "" {
		return s[:i+1]
	}
	return s
}
