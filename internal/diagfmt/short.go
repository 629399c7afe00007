package diagfmt

import (
	"fmt"
	"io"

	"capycop/internal/diag"
	"capycop/internal/source"
)

// Short prints one line per diagnostic:
//
//	path:line:col: C: [Correctable] Capybara/HasCssMatcher: message
//
// The letter is the severity, the rule is omitted for parse and I/O errors.
func Short(w io.Writer, bag *diag.Bag, fs *source.FileSet, mode PathMode) {
	for _, d := range bag.Items() {
		file := fs.Get(d.Primary.File)
		pos, _ := fs.Resolve(d.Primary)
		prefix := ""
		if d.Correctable() {
			prefix = "[Correctable] "
		}
		name := d.Rule
		if name == "" {
			name = d.Code.ID()
		}
		fmt.Fprintf(w, "%s:%d:%d: %s: %s%s: %s\n",
			formatPath(file, fs, mode), pos.Line, pos.Col,
			d.Severity.Letter(), prefix, name, d.Message)
	}
}
