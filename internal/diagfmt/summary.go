package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"capycop/internal/diag"
)

// Summary counts what a run inspected and found.
type Summary struct {
	Files       int
	Offenses    int
	Correctable int
	Errors      int
	Dropped     int
	// Corrected is set by fix runs.
	Corrected int
}

// NewSummary counts the diagnostics of bag for a run over files files.
func NewSummary(bag *diag.Bag, files int) Summary {
	s := Summary{Files: files, Dropped: bag.Dropped()}
	for _, d := range bag.Items() {
		switch {
		case d.Code == diag.LintOffense:
			s.Offenses++
			if d.Correctable() {
				s.Correctable++
			}
		case d.Severity >= diag.SevError:
			s.Errors++
		}
	}
	return s
}

var (
	summaryClean = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	summaryDirty = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	summaryFixed = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	summaryDim   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// String renders the plain summary line.
func (s Summary) String() string {
	return strings.Join(s.parts(), ", ")
}

func (s Summary) parts() []string {
	parts := []string{
		plural(s.Files, "file") + " inspected",
	}
	if s.Offenses == 0 {
		parts = append(parts, "no offenses detected")
	} else {
		parts = append(parts, plural(s.Offenses, "offense")+" detected")
	}
	if s.Corrected > 0 {
		parts = append(parts, plural(s.Corrected, "offense")+" corrected")
	}
	if s.Correctable > 0 {
		parts = append(parts, plural(s.Correctable, "offense")+" autocorrectable")
	}
	if s.Errors > 0 {
		parts = append(parts, plural(s.Errors, "error"))
	}
	if s.Dropped > 0 {
		parts = append(parts, fmt.Sprintf("%d not shown", s.Dropped))
	}
	return parts
}

// WriteSummary prints the summary line, styled with lipgloss when styled is
// set.
func WriteSummary(w io.Writer, s Summary, styled bool) {
	if !styled {
		fmt.Fprintln(w, s.String())
		return
	}
	parts := s.parts()
	for i, p := range parts {
		switch {
		case i == 1 && s.Offenses == 0:
			parts[i] = summaryClean.Render(p)
		case i == 1:
			parts[i] = summaryDirty.Render(p)
		case strings.HasSuffix(p, "corrected"), strings.HasSuffix(p, "autocorrectable"):
			parts[i] = summaryFixed.Render(p)
		case strings.HasSuffix(p, "error"), strings.HasSuffix(p, "errors"):
			parts[i] = summaryDirty.Render(p)
		default:
			parts[i] = summaryDim.Render(p)
		}
	}
	fmt.Fprintln(w, strings.Join(parts, summaryDim.Render(", ")))
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
