// Package config loads .capycop.toml.
//
// The file is looked up from the lint target towards the filesystem root;
// the first one found wins. Every key is optional:
//
//	[rules."Capybara/HasCssMatcher"]
//	enabled = true
//	severity = "convention"
//	methods = ["has_css?", "has_selector?"]
//
//	[run]
//	jobs = 0
//	max_diagnostics = 100
//	cache = true
//	exclude = ["vendor/**"]
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"capycop/internal/rule"
)

// FileName is the name of the configuration file.
const FileName = ".capycop.toml"

// ErrInvalid marks configuration files that parse but make no sense.
var ErrInvalid = errors.New("invalid configuration")

// Config is the decoded configuration. Path and Root are empty when no file
// was found and the defaults are in effect.
type Config struct {
	Path  string
	Root  string
	Rules map[string]RuleConfig
	Run   RunConfig
}

// RuleConfig is one [rules."Name"] table.
type RuleConfig struct {
	Enabled  *bool    `toml:"enabled"`
	Severity string   `toml:"severity"`
	Methods  []string `toml:"methods"`
}

// RunConfig is the [run] table. Pointer fields distinguish "unset" from an
// explicit zero so command-line flags only override what is set.
type RunConfig struct {
	Jobs           *int     `toml:"jobs"`
	MaxDiagnostics *int     `toml:"max_diagnostics"`
	Cache          *bool    `toml:"cache"`
	Exclude        []string `toml:"exclude"`
}

type fileConfig struct {
	Rules map[string]RuleConfig `toml:"rules"`
	Run   RunConfig             `toml:"run"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{Rules: map[string]RuleConfig{}}
}

// Find walks up from startDir looking for FileName. A start path that is a
// file begins the search in its directory.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Discover finds and loads the configuration for startDir, falling back to
// Default when there is none.
func Discover(startDir string) (*Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return nil, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

// Load decodes the file at path. Unknown keys are errors, so typos do not
// silently fall back to defaults.
func Load(path string) (*Config, error) {
	var fc fileConfig
	meta, err := toml.DecodeFile(path, &fc)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%s: %w: unknown keys %s", path, ErrInvalid, strings.Join(keys, ", "))
	}
	cfg := &Config{
		Path:  path,
		Root:  filepath.Dir(path),
		Rules: fc.Rules,
		Run:   fc.Run,
	}
	if cfg.Rules == nil {
		cfg.Rules = map[string]RuleConfig{}
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Run.Jobs != nil && *c.Run.Jobs < 0 {
		return fmt.Errorf("%w: [run].jobs must not be negative", ErrInvalid)
	}
	if c.Run.MaxDiagnostics != nil && *c.Run.MaxDiagnostics < 0 {
		return fmt.Errorf("%w: [run].max_diagnostics must not be negative", ErrInvalid)
	}
	for _, pat := range c.Run.Exclude {
		if _, err := filepath.Match(pat, ""); err != nil {
			return fmt.Errorf("%w: [run].exclude pattern %q: %v", ErrInvalid, pat, err)
		}
	}
	for name, rc := range c.Rules {
		if slices.Contains(rc.Methods, "") {
			return fmt.Errorf("%w: [rules.%q].methods contains an empty name", ErrInvalid, name)
		}
	}
	return nil
}

// RuleSettings converts the rule tables into what rules.Builtin accepts.
func (c *Config) RuleSettings() map[string]rule.Settings {
	out := make(map[string]rule.Settings, len(c.Rules))
	for name, rc := range c.Rules {
		out[name] = rule.Settings{
			Enabled:  rc.Enabled,
			Severity: rc.Severity,
			Methods:  rc.Methods,
		}
	}
	return out
}

// Excluded reports whether path matches one of the [run].exclude patterns.
// Patterns are matched against the slash-separated path relative to Root,
// with a trailing "/**" covering a whole directory.
func (c *Config) Excluded(path string) bool {
	if len(c.Run.Exclude) == 0 {
		return false
	}
	rel := path
	if c.Root != "" {
		if abs, err := filepath.Abs(path); err == nil {
			if r, err := filepath.Rel(c.Root, abs); err == nil {
				rel = r
			}
		}
	}
	rel = filepath.ToSlash(rel)
	for _, pat := range c.Run.Exclude {
		if dir, ok := strings.CutSuffix(pat, "/**"); ok {
			if rel == dir || strings.HasPrefix(rel, dir+"/") {
				return true
			}
			continue
		}
		if ok, _ := filepath.Match(pat, rel); ok {
			return true
		}
	}
	return false
}
