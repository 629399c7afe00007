package diagfmt

import (
	"errors"
	"fmt"
	"strings"

	"fortio.org/safecast"

	"capycop/internal/diag"
	"capycop/internal/fix"
	"capycop/internal/source"
)

// fixPreview holds the whole lines a fix touches, before and after it.
type fixPreview struct {
	before []string
	after  []string
}

// previewFix applies every edit of f to the lines they cover. The edits
// go through fix.Apply, so a preview fails exactly when applying the fix
// would: conflicting edits, stale OldText, spans past the end of file.
func previewFix(fs *source.FileSet, f diag.Fix) (fixPreview, error) {
	if len(f.Edits) == 0 {
		return fixPreview{}, errors.New("fix has no edits")
	}
	if fs == nil {
		return fixPreview{}, errors.New("nil FileSet")
	}
	id := f.Edits[0].Span.File
	file := fs.Get(id)
	if file == nil {
		return fixPreview{}, fmt.Errorf("file %d not found in FileSet", id)
	}
	size, err := safecast.Conv[uint32](len(file.Content))
	if err != nil {
		return fixPreview{}, fmt.Errorf("len file content overflow: %w", err)
	}

	cover := f.Edits[0].Span
	for _, e := range f.Edits[1:] {
		if e.Span.File != id {
			return fixPreview{}, errors.New("fix edits more than one file")
		}
		cover = cover.Cover(e.Span)
	}
	if cover.Start > cover.End || cover.End > size {
		return fixPreview{}, fmt.Errorf("%w: %s in %d bytes", fix.ErrOutOfRange, cover, size)
	}

	start, end := lineBounds(file.Content, cover.Start, cover.End)
	block := file.Content[start:end]
	rebased := make([]fix.Edit, len(f.Edits))
	for i, e := range f.Edits {
		e.Span.Start -= start
		e.Span.End -= start
		rebased[i] = e
	}
	after, err := fix.Apply(block, rebased)
	if err != nil {
		return fixPreview{}, err
	}
	return fixPreview{before: splitPreviewLines(block), after: splitPreviewLines(after)}, nil
}

// lineBounds widens [from, to) to whole lines, keeping the final newline.
// A span that ends right after a newline does not pull in the next line.
func lineBounds(content []byte, from, to uint32) (start, end uint32) {
	start = from
	for start > 0 && content[start-1] != '\n' {
		start--
	}
	end = to
	if end > start && content[end-1] == '\n' {
		return start, end
	}
	for int(end) < len(content) && content[end] != '\n' {
		end++
	}
	if int(end) < len(content) {
		end++
	}
	return start, end
}

func splitPreviewLines(content []byte) []string {
	if len(content) == 0 {
		return nil
	}
	// завершающий \n не даёт лишней пустой строки
	return strings.Split(strings.TrimSuffix(string(content), "\n"), "\n")
}
