package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"capycop/internal/ast"
	"capycop/internal/driver"
	"capycop/internal/parser"
	"capycop/internal/pattern"
	"capycop/internal/source"
)

var patternCmd = &cobra.Command{
	Use:   "pattern [flags] <pattern> <file.rb|directory>...",
	Short: "Search Ruby files for nodes matching a pattern",
	Long: `Compile a node pattern such as '(send nil? :has_css? $_)' and print every
node it matches, with its captures.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runPattern,
}

var astCmd = &cobra.Command{
	Use:   "ast <file.rb>...",
	Short: "Print the syntax tree of Ruby files as s-expressions",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAST,
}

func init() {
	patternCmd.Flags().Bool("sexp", false, "print matches as s-expressions instead of source text")
	patternCmd.Flags().Bool("explain", false, "print the compiled pattern before searching")
	patternCmd.Flags().Bool("count", false, "print only the number of matches per file")
}

// errNoMatches only sets the exit code, like grep.
var errNoMatches = errors.New("no matches")

var (
	matchPathColor    = color.New(color.FgCyan)
	matchCaptureColor = color.New(color.FgYellow)
)

func runPattern(cmd *cobra.Command, args []string) (retErr error) {
	sexp, err := cmd.Flags().GetBool("sexp")
	if err != nil {
		return err
	}
	explain, err := cmd.Flags().GetBool("explain")
	if err != nil {
		return err
	}
	countOnly, err := cmd.Flags().GetBool("count")
	if err != nil {
		return err
	}

	finishTrace, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer func() { finishTrace(retErr) }()

	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer stopProfiling()

	out := cmd.OutOrStdout()
	p, err := pattern.Compile(args[0])
	if err != nil {
		return patternError(args[0], err)
	}
	if explain {
		fmt.Fprintf(out, "pattern: %s (%d captures)\n", p.String(), p.Captures())
		if cat := p.Category(); cat != ast.Invalid {
			root := cat.String()
			if p.Polymorphic() {
				root += " and subtypes"
			}
			fmt.Fprintf(out, "root:    %s\n", root)
		}
	}

	files, err := driver.ExpandPaths(args[1:])
	if err != nil {
		return err
	}
	fileSet := source.NewFileSet()
	total := 0
	for _, path := range files {
		file, root, err := loadTree(fileSet, path)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "capycop: %v\n", err)
			continue
		}
		matches := pattern.Find(p, root)
		total += len(matches)
		if countOnly {
			if len(matches) > 0 {
				fmt.Fprintf(out, "%s: %d\n", matchPathColor.Sprint(path), len(matches))
			}
			continue
		}
		for _, n := range matches {
			writeMatch(out, fileSet, file, path, p, n, sexp)
		}
	}
	if total == 0 {
		return errNoMatches
	}
	return nil
}

func runAST(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fileSet := source.NewFileSet()
	for _, path := range args {
		_, root, err := loadTree(fileSet, path)
		if err != nil {
			return err
		}
		if len(args) > 1 {
			fmt.Fprintf(out, "# %s\n", path)
		}
		if root == nil {
			fmt.Fprintln(out, "nil")
			continue
		}
		fmt.Fprintln(out, root.String())
	}
	return nil
}

func loadTree(fileSet *source.FileSet, path string) (*source.File, *ast.Node, error) {
	id, err := fileSet.Load(path)
	if err != nil {
		return nil, nil, err
	}
	file := fileSet.Get(id)
	root, err := parser.ParseFile(file)
	if err != nil {
		return file, nil, fmt.Errorf("%s: %w", path, err)
	}
	return file, root, nil
}

func writeMatch(out io.Writer, fileSet *source.FileSet, file *source.File, path string, p *pattern.Pattern, n *ast.Node, sexp bool) {
	pos, _ := fileSet.Resolve(n.Span())
	text := n.String()
	if !sexp {
		text = firstLine(n.Text(file.Content))
	}
	fmt.Fprintf(out, "%s:%d:%d: %s\n", matchPathColor.Sprint(path), pos.Line, pos.Col, text)

	res, ok := p.Match(n)
	if !ok {
		return
	}
	for i := range res.Len() {
		fmt.Fprintf(out, "  %s %s\n", matchCaptureColor.Sprintf("$%d", i), formatCapture(res.Get(i)))
	}
}

func formatCapture(cs []ast.Child) string {
	parts := make([]string, 0, len(cs))
	for _, c := range cs {
		parts = append(parts, formatChild(c))
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func formatChild(c ast.Child) string {
	switch v := c.(type) {
	case *ast.Node:
		if v == nil {
			return "nil"
		}
		return v.String()
	case ast.Atom:
		return v.String()
	default:
		return "nil"
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " ..."
	}
	return s
}

// patternError points at the offending byte of a pattern that does not
// compile.
func patternError(src string, err error) error {
	var se *pattern.SyntaxError
	if !errors.As(err, &se) {
		return err
	}
	offset := min(max(se.Offset, 0), len(src))
	return fmt.Errorf("invalid pattern: %s\n  %s\n  %s^", se.Msg, src, strings.Repeat(" ", offset))
}
