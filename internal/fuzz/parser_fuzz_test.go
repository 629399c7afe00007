package fuzztests

import (
	"context"
	"errors"
	"testing"
	"time"

	"capycop/internal/driver"
	"capycop/internal/parser"
	"capycop/internal/pattern"
	"capycop/internal/rule"
	"capycop/internal/rules"
	"capycop/internal/source"
	"capycop/internal/testkit"
)

// parseTimeout is the maximum time allowed for a single input. Longer
// means a likely infinite loop.
const parseTimeout = 5 * time.Second

func withTimeout(t *testing.T, input []byte, run func()) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		defer close(done)
		run()
	}()
	select {
	case <-done:
	case <-time.After(parseTimeout):
		t.Fatalf("hang detected: took longer than %v\ninput (%d bytes): %q",
			parseTimeout, len(input), truncateForLog(input, 200))
	}
}

func FuzzParserBuildsAST(f *testing.F) {
	addCorpusSeeds(f)
	f.Add([]byte("foo(((((((((("))
	f.Add([]byte("a || || b"))
	f.Add([]byte("do end end"))

	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)
		withTimeout(t, input, func() {
			fs := source.NewFileSet()
			file := fs.Get(fs.AddVirtual("fuzz.rb", input))
			root, err := parser.ParseFile(file)
			if err != nil || root == nil {
				return
			}
			if err := testkit.CheckSpanInvariants(root, file); err != nil {
				t.Fatalf("span invariants broken on %q: %v", truncateForLog(input, 200), err)
			}
		})
	})
}

// FuzzCorrectionKeepsSyntax checks that autocorrecting source that parses
// always yields source that parses.
func FuzzCorrectionKeepsSyntax(f *testing.F) {
	addCorpusSeeds(f)
	registry, errs := rules.Builtin(nil)
	if len(errs) > 0 {
		f.Fatal(errors.Join(errs...))
	}
	w := rule.NewWalker(registry.All())

	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)
		withTimeout(t, input, func() {
			fs := source.NewFileSet()
			id := fs.AddVirtual("fuzz.rb", input)
			_, err := driver.Correct(context.Background(), fs, id, w, driver.CorrectOptions{Unsafe: true})
			if errors.Is(err, driver.ErrCorrectionBrokeSyntax) {
				t.Fatalf("correction broke syntax of %q: %v", truncateForLog(input, 200), err)
			}
		})
	})
}

// FuzzPatternCompile feeds arbitrary pattern source to the compiler; it
// must return a value or a SyntaxError, never panic.
func FuzzPatternCompile(f *testing.F) {
	for _, s := range []string{
		"(send nil? :has_css? $_)",
		"(or (`send nil? :has_css? $...) (`send nil? :has_css? $...))",
		"{str sym}",
		"<(str $_) ...>",
		"!nil?",
		"(send _ {:a :b} ...)",
		"(((",
		"$",
	} {
		f.Add(s)
	}
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("fuzz.rb", []byte(rubySeeds[2]+rubySeeds[4]+rubySeeds[6])))
	root, err := parser.ParseFile(file)
	if err != nil {
		f.Fatal(err)
	}

	f.Fuzz(func(t *testing.T, src string) {
		if len(src) > 4096 {
			src = src[:4096]
		}
		p, err := pattern.Compile(src)
		if err != nil {
			var se *pattern.SyntaxError
			if !errors.As(err, &se) {
				t.Fatalf("expected a SyntaxError for %q, got %T: %v", src, err, err)
			}
			if se.Offset < 0 || se.Offset > len(src) {
				t.Fatalf("offset %d outside pattern %q", se.Offset, src)
			}
			return
		}
		withTimeout(t, []byte(src), func() {
			_ = pattern.Find(p, root)
		})
	})
}
