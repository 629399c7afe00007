package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	dmp "github.com/sergi/go-diff/diffmatchpatch"
)

// DiffContext is the number of unchanged lines shown around a change.
const DiffContext = 3

type diffLine struct {
	op        byte // ' ', '-' или '+'
	text      string
	noNewline bool
}

// lineDiff diffs before and after line by line.
func lineDiff(before, after string) []diffLine {
	matcher := dmp.New()
	a, b, lines := matcher.DiffLinesToChars(before, after)
	diffs := matcher.DiffCharsToLines(matcher.DiffMain(a, b, false), lines)

	var out []diffLine
	for _, d := range diffs {
		op := byte(' ')
		switch d.Type {
		case dmp.DiffDelete:
			op = '-'
		case dmp.DiffInsert:
			op = '+'
		}
		text := d.Text
		for text != "" {
			line, rest, found := strings.Cut(text, "\n")
			out = append(out, diffLine{op: op, text: line, noNewline: !found})
			text = rest
		}
	}
	return out
}

// UnifiedDiff renders the change from before to after as a unified diff
// with DiffContext lines of context. Equal inputs give an empty string.
func UnifiedDiff(path, before, after string, colored bool) string {
	if before == after {
		return ""
	}
	lines := lineDiff(before, after)

	header := color.New(color.Bold)
	hunkColor := color.New(color.FgCyan)
	removed := color.New(color.FgRed)
	added := color.New(color.FgGreen)
	for _, c := range []*color.Color{header, hunkColor, removed, added} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	var b strings.Builder
	b.WriteString(header.Sprintf("--- a/%s", path) + "\n")
	b.WriteString(header.Sprintf("+++ b/%s", path) + "\n")

	for _, h := range hunks(lines) {
		b.WriteString(hunkColor.Sprintf("@@ -%s +%s @@", hunkRange(h.oldStart, h.oldCount), hunkRange(h.newStart, h.newCount)) + "\n")
		for _, l := range lines[h.from:h.to] {
			text := string(l.op) + l.text
			switch l.op {
			case '-':
				text = removed.Sprint(text)
			case '+':
				text = added.Sprint(text)
			}
			b.WriteString(text + "\n")
			if l.noNewline {
				b.WriteString("\\ No newline at end of file\n")
			}
		}
	}
	return b.String()
}

// WriteDiff writes UnifiedDiff to w.
func WriteDiff(w io.Writer, path, before, after string, colored bool) error {
	_, err := io.WriteString(w, UnifiedDiff(path, before, after, colored))
	return err
}

type hunk struct {
	from, to           int // индексы в lines
	oldStart, oldCount int
	newStart, newCount int
}

func hunks(lines []diffLine) []hunk {
	// номера строк (1-based) перед каждой строкой диффа
	oldNo := make([]int, len(lines)+1)
	newNo := make([]int, len(lines)+1)
	oldNo[0], newNo[0] = 1, 1
	for i, l := range lines {
		oldNo[i+1], newNo[i+1] = oldNo[i], newNo[i]
		if l.op != '+' {
			oldNo[i+1]++
		}
		if l.op != '-' {
			newNo[i+1]++
		}
	}

	var out []hunk
	for i := 0; i < len(lines); {
		if lines[i].op == ' ' {
			i++
			continue
		}
		from := max(i-DiffContext, 0)
		last := i
		for j := i + 1; j < len(lines) && j <= last+2*DiffContext; j++ {
			if lines[j].op != ' ' {
				last = j
			}
		}
		to := min(last+DiffContext+1, len(lines))
		h := hunk{from: from, to: to, oldStart: oldNo[from], newStart: newNo[from]}
		h.oldCount = oldNo[to] - oldNo[from]
		h.newCount = newNo[to] - newNo[from]
		out = append(out, h)
		i = to
	}
	return out
}

func hunkRange(start, count int) string {
	switch count {
	case 0:
		return fmt.Sprintf("%d,0", start-1)
	case 1:
		return fmt.Sprintf("%d", start)
	}
	return fmt.Sprintf("%d,%d", start, count)
}
