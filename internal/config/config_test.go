package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"capycop/internal/rule"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFind_WalksUp(t *testing.T) {
	root := t.TempDir()
	want := writeConfig(t, root, "")
	nested := filepath.Join(root, "spec", "features")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	file := filepath.Join(nested, "login_spec.rb")
	if err := os.WriteFile(file, nil, 0o600); err != nil {
		t.Fatal(err)
	}

	for _, start := range []string{root, nested, file} {
		got, ok, err := Find(start)
		if err != nil || !ok {
			t.Fatalf("Find(%s): expected a config, got ok=%v err=%v", start, ok, err)
		}
		if got != want {
			t.Fatalf("Find(%s): expected %s, got %s", start, want, got)
		}
	}
}

func TestDiscover_Default(t *testing.T) {
	// TempDir лежит вне проекта, выше конфигов быть не должно
	cfg, err := Discover(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Path != "" {
		t.Skipf("a %s above the temp dir shadows the default: %s", FileName, cfg.Path)
	}
	if len(cfg.Rules) != 0 || cfg.Run.Jobs != nil {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
[rules."Capybara/HasCssMatcher"]
enabled = false
severity = "warning"
methods = ["has_css?", "has_selector?"]

[run]
jobs = 4
max_diagnostics = 50
cache = false
exclude = ["vendor/**", "tmp/*.rb"]
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	disabled := false
	want := map[string]rule.Settings{
		"Capybara/HasCssMatcher": {
			Enabled:  &disabled,
			Severity: "warning",
			Methods:  []string{"has_css?", "has_selector?"},
		},
	}
	if diff := cmp.Diff(want, cfg.RuleSettings()); diff != "" {
		t.Fatalf("rule settings mismatch (-want +got):\n%s", diff)
	}
	if *cfg.Run.Jobs != 4 || *cfg.Run.MaxDiagnostics != 50 || *cfg.Run.Cache {
		t.Fatalf("unexpected run config: jobs=%d max=%d cache=%v", *cfg.Run.Jobs, *cfg.Run.MaxDiagnostics, *cfg.Run.Cache)
	}
	if cfg.Root != filepath.Dir(path) {
		t.Fatalf("expected root %s, got %s", filepath.Dir(path), cfg.Root)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		invalid bool
	}{
		{"syntax", "[run\njobs = 1", false},
		{"unknown key", "[run]\njob = 1\n", true},
		{"negative jobs", "[run]\njobs = -1\n", true},
		{"negative max", "[run]\nmax_diagnostics = -5\n", true},
		{"bad exclude", "[run]\nexclude = [\"[\"]\n", true},
		{"empty method", "[rules.\"Capybara/HasCssMatcher\"]\nmethods = [\"\"]\n", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), tt.content)
			_, err := Load(path)
			if err == nil {
				t.Fatalf("expected an error")
			}
			if got := errors.Is(err, ErrInvalid); got != tt.invalid {
				t.Fatalf("expected errors.Is(ErrInvalid)=%v, got %v (%v)", tt.invalid, got, err)
			}
		})
	}
}

func TestExcluded(t *testing.T) {
	root := t.TempDir()
	cfg := &Config{Root: root, Run: RunConfig{Exclude: []string{"vendor/**", "tmp/*.rb"}}}

	tests := []struct {
		path string
		want bool
	}{
		{filepath.Join(root, "vendor", "gems", "x.rb"), true},
		{filepath.Join(root, "vendor"), true},
		{filepath.Join(root, "vendored", "x.rb"), false},
		{filepath.Join(root, "tmp", "a.rb"), true},
		{filepath.Join(root, "tmp", "deep", "a.rb"), false},
		{filepath.Join(root, "spec", "a_spec.rb"), false},
	}
	for _, tt := range tests {
		if got := cfg.Excluded(tt.path); got != tt.want {
			t.Fatalf("Excluded(%s): expected %v, got %v", tt.path, tt.want, got)
		}
	}
	if Default().Excluded(filepath.Join(root, "vendor", "x.rb")) {
		t.Fatalf("default config must not exclude anything")
	}
}
