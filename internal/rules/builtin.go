// Package rules holds the built-in rule set.
package rules

import (
	"fmt"
	"maps"
	"slices"

	"capycop/internal/diag"
	"capycop/internal/rule"
)

type constructor func(s rule.Settings) (*rule.Rule, error)

// builtins lists every rule constructor in registration order.
var builtins = []struct {
	name string
	make constructor
}{
	{HasCssMatcherName, func(s rule.Settings) (*rule.Rule, error) {
		return NewHasCssMatcher(s.Methods...)
	}},
}

// Names returns the names of the built-in rules.
func Names() []string {
	out := make([]string, len(builtins))
	for i, b := range builtins {
		out[i] = b.name
	}
	return out
}

// Builtin builds the registry of built-in rules with settings applied. A
// rule that fails to build is left out and its error returned; the other
// rules are still registered.
func Builtin(settings map[string]rule.Settings) (*rule.Registry, []error) {
	reg := rule.NewRegistry()
	var errs []error
	for _, b := range builtins {
		s := settings[b.name]
		rl, err := b.make(s)
		if err == nil {
			err = applySettings(rl, s)
		}
		if err == nil {
			err = reg.Register(rl)
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	for _, name := range slices.Sorted(maps.Keys(settings)) {
		if _, ok := reg.Lookup(name); !ok && !isBuiltin(name) {
			errs = append(errs, fmt.Errorf("%w: %s (in configuration)", rule.ErrUnknownRule, name))
		}
	}
	return reg, errs
}

func applySettings(rl *rule.Rule, s rule.Settings) error {
	if s.Enabled != nil {
		rl.Enabled = *s.Enabled
	}
	if s.Severity != "" {
		sev, ok := diag.ParseSeverity(s.Severity)
		if !ok {
			return fmt.Errorf("%s: unknown severity %q", rl.Name, s.Severity)
		}
		rl.Severity = sev
	}
	return nil
}

func isBuiltin(name string) bool {
	for _, b := range builtins {
		if b.name == name {
			return true
		}
	}
	return false
}
