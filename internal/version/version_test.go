package version

import (
	"testing"

	"github.com/fatih/color"
)

func TestVersion_DefaultValues(t *testing.T) {
	if Version == "" {
		t.Error("Version should have a default value")
	}
}

func TestFull(t *testing.T) {
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	t.Cleanup(func() {
		Version, GitCommit, BuildDate = origVersion, origCommit, origDate
	})

	tests := []struct {
		version, commit, date string
		want                  string
	}{
		{"1.2.3", "", "", "1.2.3"},
		{"1.2.3", "abc123", "", "1.2.3 (abc123)"},
		{"1.2.3", "abc123", "2024-01-15", "1.2.3 (abc123) built 2024-01-15"},
	}
	for _, tt := range tests {
		Version, GitCommit, BuildDate = tt.version, tt.commit, tt.date
		if got := Full(); got != tt.want {
			t.Errorf("Full() = %q, want %q", got, tt.want)
		}
	}
}

func TestColored_PlainWithoutColor(t *testing.T) {
	orig, origNoColor := Version, color.NoColor
	t.Cleanup(func() { Version, color.NoColor = orig, origNoColor })
	color.NoColor = true

	for _, v := range []string{"0.1.0-dev", "1.2.3", "1.2.3-rc.1+build.123", "weird"} {
		Version = v
		if got := Colored(); got != v {
			t.Errorf("Colored() = %q, want %q", got, v)
		}
	}
}
