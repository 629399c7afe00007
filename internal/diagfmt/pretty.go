package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"capycop/internal/diag"
	"capycop/internal/source"
)

// maxUnderlinedLines limits how many lines of a multi-line span are shown.
const maxUnderlinedLines = 6

type palette struct {
	path    *color.Color
	err     *color.Color
	warning *color.Color
	conv    *color.Color
	info    *color.Color
	code    *color.Color
	gutter  *color.Color
	caret   *color.Color
	note    *color.Color
	fix     *color.Color
	removed *color.Color
	added   *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		path:    color.New(color.Bold),
		err:     color.New(color.FgRed, color.Bold),
		warning: color.New(color.FgYellow, color.Bold),
		conv:    color.New(color.FgCyan, color.Bold),
		info:    color.New(color.FgBlue, color.Bold),
		code:    color.New(color.FgMagenta),
		gutter:  color.New(color.FgBlue),
		caret:   color.New(color.FgRed, color.Bold),
		note:    color.New(color.FgCyan),
		fix:     color.New(color.FgGreen),
		removed: color.New(color.FgRed),
		added:   color.New(color.FgGreen),
	}
	for _, c := range []*color.Color{p.path, p.err, p.warning, p.conv, p.info, p.code, p.gutter, p.caret, p.note, p.fix, p.removed, p.added} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warning
	case diag.SevConvention:
		return p.conv
	default:
		return p.info
	}
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE> [<Rule>]: <Message>
// затем контекст строки с подчёркиванием ^~~~ по Span, затем Notes и Fixes.
// Цвет включается опцией.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	p := newPalette(opts.Color)
	for i, d := range bag.Items() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		prettyOne(w, d, fs, opts, p)
	}
}

func prettyOne(w io.Writer, d diag.Diagnostic, fs *source.FileSet, opts PrettyOpts, p palette) {
	file := fs.Get(d.Primary.File)
	start, end := fs.Resolve(d.Primary)

	var header strings.Builder
	header.WriteString(p.path.Sprintf("%s:%d:%d:", formatPath(file, fs, opts.PathMode), start.Line, start.Col))
	header.WriteString(" ")
	header.WriteString(p.severity(d.Severity).Sprint(d.Severity.String()))
	header.WriteString(" ")
	header.WriteString(p.code.Sprint(d.Code.ID()))
	if d.Rule != "" {
		header.WriteString(" [" + d.Rule + "]")
	}
	header.WriteString(": ")
	header.WriteString(clip(d.Message, opts.Width))
	fmt.Fprintln(w, header.String())

	if file != nil && len(file.Content) > 0 {
		writeSnippet(w, file, start, end, d.Primary, opts, p)
	}

	if opts.ShowNotes {
		for _, n := range d.Notes {
			nf := fs.Get(n.Span.File)
			pos, _ := fs.Resolve(n.Span)
			fmt.Fprintf(w, "  %s %s:%d:%d: %s\n", p.note.Sprint("note:"), formatPath(nf, fs, opts.PathMode), pos.Line, pos.Col, n.Msg)
		}
	}

	if opts.ShowFixes {
		for i, f := range d.Fixes {
			writeFix(w, i+1, f, fs, opts, p)
		}
	}
}

// writeSnippet prints the context lines and the lines covered by span with
// an underline. Columns are measured in display cells so wide runes and
// tabs line up with the source.
func writeSnippet(w io.Writer, file *source.File, start, end source.LineCol, span source.Span, opts PrettyOpts, p palette) {
	ctx := uint32(max(opts.Context, 0))
	lastLine := lastLineOf(file)
	first := start.Line
	last := max(end.Line, start.Line)
	// пустой спан в конце строки указывает на следующую позицию
	if end.Line > start.Line && end.Col == 1 {
		last = end.Line - 1
	}
	shownLast := min(last, first+maxUnderlinedLines-1)

	from := first - min(ctx, first-1)
	to := max(min(shownLast+ctx, lastLine), shownLast)
	gutterWidth := len(strconv.FormatUint(uint64(to), 10))
	blank := strings.Repeat(" ", gutterWidth)

	for line := from; line <= to; line++ {
		text := file.GetLine(line)
		fmt.Fprintf(w, " %s %s %s\n", p.gutter.Sprintf("%*d", gutterWidth, line), p.gutter.Sprint("|"), clip(text, opts.Width))
		if line < first || line > shownLast {
			continue
		}
		a, b := 0, len(text)
		if line == first {
			a = min(int(start.Col)-1, len(text))
		}
		if line == end.Line {
			b = min(int(end.Col)-1, len(text))
		}
		marker := underline(text, a, b, line == first, span.Empty())
		fmt.Fprintf(w, " %s %s %s\n", blank, p.gutter.Sprint("|"), p.caret.Sprint(marker))
	}
	if shownLast < last {
		fmt.Fprintf(w, " %s %s ...\n", blank, p.gutter.Sprint("|"))
	}
}

// underline builds the marker for text[a:b]: padding that mirrors tabs in
// the prefix, then ^ on the first line of a span and ~ for the rest.
func underline(text string, a, b int, head, empty bool) string {
	var sb strings.Builder
	for _, r := range text[:a] {
		if r == '\t' {
			sb.WriteByte('\t')
			continue
		}
		sb.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}
	width := 0
	if b > a {
		width = runewidth.StringWidth(text[a:b])
	}
	if empty || width == 0 {
		width = 1
	}
	if head {
		sb.WriteByte('^')
		width--
	}
	sb.WriteString(strings.Repeat("~", width))
	return sb.String()
}

func writeFix(w io.Writer, n int, f diag.Fix, fs *source.FileSet, opts PrettyOpts, p palette) {
	tags := []string{f.Kind.String(), f.Applicability.String()}
	if f.IsPreferred {
		tags = append(tags, "preferred")
	}
	line := fmt.Sprintf("  %s %s [%s]", p.fix.Sprintf("fix #%d:", n), f.Title, strings.Join(tags, ", "))
	if f.ID != "" {
		line += " id=" + f.ID
	}
	fmt.Fprintln(w, line)

	for _, e := range f.Edits {
		ef := fs.Get(e.Span.File)
		s, t := fs.Resolve(e.Span)
		fmt.Fprintf(w, "    edit %s:%d:%d-%d:%d apply=%s\n", formatPath(ef, fs, opts.PathMode), s.Line, s.Col, t.Line, t.Col, strconv.Quote(e.NewText))
	}
	if !opts.ShowPreview || len(f.Edits) == 0 {
		return
	}
	preview, err := previewFix(fs, f)
	if err != nil {
		fmt.Fprintf(w, "    preview unavailable: %v\n", err)
		return
	}
	fmt.Fprintln(w, "    preview:")
	for _, l := range preview.before {
		fmt.Fprintf(w, "      %s\n", p.removed.Sprint("- "+l))
	}
	for _, l := range preview.after {
		fmt.Fprintf(w, "      %s\n", p.added.Sprint("+ "+l))
	}
}

func lastLineOf(f *source.File) uint32 {
	n := uint32(len(f.LineIdx)) + 1
	// файл заканчивается переводом строки: последней строки нет
	if len(f.LineIdx) > 0 && int(f.LineIdx[len(f.LineIdx)-1]) == len(f.Content)-1 {
		n--
	}
	return n
}

func clip(s string, width uint8) string {
	if width == 0 || runewidth.StringWidth(s) <= int(width) {
		return s
	}
	return runewidth.Truncate(s, int(width), "...")
}
