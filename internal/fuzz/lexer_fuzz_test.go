package fuzztests

import (
	"testing"

	"capycop/internal/lexer"
	"capycop/internal/source"
	"capycop/internal/token"
)

type countingReporter struct{ n int }

func (r *countingReporter) Report(source.Span, string) { r.n++ }

func FuzzLexerTokens(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)

		fs := source.NewFileSet()
		file := fs.Get(fs.AddVirtual("fuzz.rb", input))
		lx := lexer.New(file, lexer.Options{Reporter: &countingReporter{}})

		// токенов не больше, чем байтов с запасом, иначе это зацикливание
		limit := 4*len(file.Content) + 16
		for i := 0; ; i++ {
			tok := lx.Next()
			if tok.Kind == token.EOF {
				break
			}
			if i > limit {
				t.Fatalf("lexer does not advance on %q", truncateForLog(input, 200))
			}
			if int(tok.Span.End) > len(file.Content) || tok.Span.Start > tok.Span.End {
				t.Fatalf("token %v has span %v outside %d bytes of content", tok.Kind, tok.Span, len(file.Content))
			}
		}
	})
}
