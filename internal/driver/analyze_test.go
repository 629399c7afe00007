package driver

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"capycop/internal/ast"
	"capycop/internal/diag"
	"capycop/internal/observ"
	"capycop/internal/rule"
	"capycop/internal/rules"
	"capycop/internal/source"
	"capycop/internal/trace"
)

func hasCssWalker(t *testing.T) *rule.Walker {
	t.Helper()
	rl, err := rules.NewHasCssMatcher()
	if err != nil {
		t.Fatal(err)
	}
	return rule.NewWalker([]*rule.Rule{rl})
}

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestAnalyzeSource(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("a_spec.rb", []byte("x = 1\nhas_css?(\"a\") || has_css?(\"b\")\n"))

	res, err := AnalyzeSource(context.Background(), fs, id, hasCssWalker(t), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Offenses() != 1 {
		t.Fatalf("expected 1 offense, got %d", res.Offenses())
	}
	d := res.Bag.Items()[0]
	if d.Rule != rules.HasCssMatcherName || d.Severity != diag.SevConvention {
		t.Fatalf("unexpected diagnostic %+v", d)
	}
	if d.Primary.Start != 6 || d.Primary.End != 36 {
		t.Fatalf("expected span 6..36, got %v", d.Primary)
	}
	if len(d.Fixes) != 1 {
		t.Fatalf("expected one fix, got %d", len(d.Fixes))
	}
	f := d.Fixes[0]
	if f.Applicability != diag.FixApplicabilityAlwaysSafe || !f.IsPreferred {
		t.Fatalf("expected a preferred safe fix, got %+v", f)
	}
	want := []diag.TextEdit{{
		Span:    d.Primary,
		NewText: `has_css?("a, b")`,
		OldText: `has_css?("a") || has_css?("b")`,
	}}
	if diff := cmp.Diff(want, f.Edits); diff != "" {
		t.Fatalf("edit mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyzeSource_ParseError(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("bad_spec.rb", []byte("has_css?(\"a\" ||\n"))

	res, err := AnalyzeSource(context.Background(), fs, id, hasCssWalker(t), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Root != nil {
		t.Fatalf("expected no tree on parse error")
	}
	if !res.Bag.HasErrors() || res.Bag.Items()[0].Code != diag.ParseSyntax {
		t.Fatalf("expected a syntax error, got %+v", res.Bag.Items())
	}
}

func TestAnalyzeSource_RuleFailure(t *testing.T) {
	boom := &rule.Rule{
		Name:       "Test/Boom",
		Categories: []ast.Category{ast.Send},
		Enabled:    true,
		Check: func(*rule.Context, *ast.Node) *rule.Finding {
			panic("boom")
		},
	}
	fs := source.NewFileSet()
	id := fs.AddVirtual("a_spec.rb", []byte("foo\n"))

	res, err := AnalyzeSource(context.Background(), fs, id, rule.NewWalker([]*rule.Rule{boom}), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	items := res.Bag.Items()
	if len(items) != 1 || items[0].Code != diag.LintRuleFailure {
		t.Fatalf("expected a rule failure diagnostic, got %+v", items)
	}
	if len(items[0].Notes) != 1 {
		t.Fatalf("expected a note on the rule failure, got %+v", items[0].Notes)
	}
}

func TestAnalyzeSource_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fs := source.NewFileSet()
	id := fs.AddVirtual("a_spec.rb", []byte("foo\n"))
	if _, err := AnalyzeSource(ctx, fs, id, hasCssWalker(t), Options{}); err == nil {
		t.Fatal("expected cancellation error")
	}
}

func TestAnalyzeDir_DeterministicAcrossJobs(t *testing.T) {
	files := map[string]string{
		"a_spec.rb":           "has_css?(\"a\") || has_css?(\"b\")\n",
		"nested/b_spec.rb":    "has_css?(\"c\")\nhas_css?(\"d\") || has_css?(\"e\")\n",
		"nested/c_spec.rb":    "broken(\n",
		".bundle/gem.rb":      "has_css?(\"x\") || has_css?(\"y\")\n",
		"notes.txt":           "has_css?(\"x\") || has_css?(\"y\")\n",
		"z/deep/deep_spec.rb": "page.has_css?(\"a\") || has_css?(\"b\")\n",
	}
	dir := writeFiles(t, files)
	w := hasCssWalker(t)

	summarize := func(res *RunResult) []string {
		var out []string
		for _, f := range res.Files {
			for _, d := range f.Bag.Items() {
				out = append(out, f.Path+": "+d.Code.ID()+" "+d.Message)
			}
		}
		return out
	}

	serial, err := AnalyzeDir(context.Background(), dir, w, Options{Jobs: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	parallel, err := AnalyzeDir(context.Background(), dir, w, Options{Jobs: 8, Timer: observ.NewTimer()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(serial.Files) != 4 {
		t.Fatalf("expected 4 ruby files outside hidden dirs, got %d", len(serial.Files))
	}
	paths := make([]string, len(serial.Files))
	for i, f := range serial.Files {
		paths[i] = f.Path
	}
	wantPaths := []string{"a_spec.rb", "nested/b_spec.rb", "nested/c_spec.rb", "z/deep/deep_spec.rb"}
	if diff := cmp.Diff(wantPaths, paths); diff != "" {
		t.Fatalf("paths mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(summarize(serial), summarize(parallel)); diff != "" {
		t.Fatalf("jobs changed the result (-serial +parallel):\n%s", diff)
	}
	if serial.Offenses() != 2 {
		t.Fatalf("expected 2 offenses, got %d", serial.Offenses())
	}
	if !serial.Bag(0).HasErrors() {
		t.Fatalf("expected the syntax error in the merged bag")
	}
}

func TestAnalyzeDir_TracesFilesAndRules(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a_spec.rb": "has_css?(\"a\") || has_css?(\"b\")\n",
		"b_spec.rb": "x = 1\n",
	})
	ring := trace.NewRingTracer(64, trace.LevelDebug)
	ctx := trace.WithTracer(context.Background(), ring)
	if _, err := AnalyzeDir(ctx, dir, hasCssWalker(t), Options{Jobs: 2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var runID uint64
	ends := make(map[string]trace.Event)
	var findings []trace.Event
	for _, ev := range ring.Snapshot() {
		if strings.Contains(ev.Name, "_spec.rb") {
			t.Fatalf("expected the path in the file field, got name %q", ev.Name)
		}
		switch {
		case ev.Scope == trace.ScopeDriver && ev.Kind == trace.KindSpanBegin:
			runID = ev.SpanID
		case ev.Scope == trace.ScopeFile && ev.Kind == trace.KindSpanEnd:
			ends[ev.File] = ev
		case ev.Scope == trace.ScopeRule:
			findings = append(findings, ev)
		}
	}

	if len(ends) != 2 {
		t.Fatalf("expected 2 file spans, got %v", ends)
	}
	a := ends["a_spec.rb"]
	if a.Name != "analyze" || a.Offenses != 1 || a.ParentID != runID || runID == 0 {
		t.Fatalf("unexpected file span end %+v (run span %d)", a, runID)
	}
	if ends["b_spec.rb"].Offenses != 0 {
		t.Fatalf("expected no offenses for b_spec.rb, got %+v", ends["b_spec.rb"])
	}
	if len(findings) != 1 || findings[0].Rule != rules.HasCssMatcherName || findings[0].File != "a_spec.rb" {
		t.Fatalf("unexpected findings %+v", findings)
	}
}

func TestExpandPaths(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a_spec.rb": "",
		"b.rake":    "",
		"c/d.rb":    "",
	})
	got, err := ExpandPaths([]string{
		filepath.Join(dir, "c"),
		filepath.Join(dir, "b.rake"),
		dir,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{
		filepath.Join(dir, "a_spec.rb"),
		filepath.Join(dir, "b.rake"),
		filepath.Join(dir, "c", "d.rb"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("paths mismatch (-want +got):\n%s", diff)
	}

	if _, err := ExpandPaths([]string{filepath.Join(dir, "missing")}); err == nil {
		t.Fatal("expected an error for a missing path")
	}
}
