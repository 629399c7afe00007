package driver

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"capycop/internal/diag"
	"capycop/internal/rule"
	"capycop/internal/source"
	"capycop/internal/trace"
)

// RunResult holds the results of a multi-file run in path order.
type RunResult struct {
	FileSet *source.FileSet
	Files   []*FileResult
}

// Bag merges the diagnostics of every file, sorted.
func (r *RunResult) Bag(maxDiagnostics int) *diag.Bag {
	bag := diag.NewBag(maxDiagnostics)
	for _, f := range r.Files {
		bag.Merge(f.Bag)
	}
	bag.Sort()
	return bag
}

// Offenses counts rule offenses over all files.
func (r *RunResult) Offenses() int {
	n := 0
	for _, f := range r.Files {
		n += f.Offenses()
	}
	return n
}

// listRubyFiles возвращает отсортированный список всех *.rb файлов в директории.
// Скрытые каталоги (.git, .bundle) пропускаются.
func listRubyFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(path, ".rb") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	// Сортируем для детерминированного порядка
	slices.Sort(files)
	return files, nil
}

// ExpandPaths turns command-line arguments into a sorted, de-duplicated
// list of files. Directories contribute their *.rb files; files named
// explicitly are taken whatever their extension.
func ExpandPaths(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, filepath.Clean(arg))
			continue
		}
		found, err := listRubyFiles(arg)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}
	slices.Sort(files)
	return slices.Compact(files), nil
}

// AnalyzeDir analyses every *.rb file under dir.
func AnalyzeDir(ctx context.Context, dir string, w *rule.Walker, opts Options) (*RunResult, error) {
	files, err := listRubyFiles(dir)
	if err != nil {
		return nil, err
	}
	return AnalyzeFiles(ctx, dir, files, w, opts)
}

// AnalyzeFiles loads files into one FileSet and analyses them in parallel.
// Results are stored by index, so the output order is the input order
// whatever the number of jobs. A file that fails to load yields a result
// with an I/O diagnostic instead of aborting the run.
func AnalyzeFiles(ctx context.Context, baseDir string, files []string, w *rule.Walker, opts Options) (*RunResult, error) {
	span := trace.Begin(ctx, trace.ScopeDriver, "analyze")
	defer span.End(fmt.Sprintf("%d files", len(files)))
	ctx = trace.WithSpan(ctx, span)

	// Создаём FileSet и предзагружаем все файлы до запуска горутин
	loadStart := time.Now()
	fileSet := source.NewFileSetWithBase(baseDir)
	ids := make([]source.FileID, len(files))
	loadErrors := make(map[int]error)
	for i, path := range files {
		id, err := fileSet.Load(path)
		if err != nil {
			loadErrors[i] = err
			// пустой файл, чтобы у диагностики был путь
			id = fileSet.Add(path, nil, 0)
		}
		ids[i] = id
	}
	opts.Timer.Add("load", time.Since(loadStart))

	out := &RunResult{FileSet: fileSet, Files: make([]*FileResult, len(files))}
	if len(files) == 0 {
		return out, nil
	}

	for i := range files {
		opts.emit(Event{File: fileSet.Get(ids[i]).FormatPath("relative", baseDir), Stage: StageLoad, Status: StatusQueued})
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))

	for i := range files {
		g.Go(func() error {
			if loadErr, failed := loadErrors[i]; failed {
				bag := diag.NewBag(opts.MaxDiagnostics)
				bag.Add(diag.NewError(diag.IOLoadFileError, source.Span{File: ids[i]}, "failed to load file: "+loadErr.Error()))
				out.Files[i] = &FileResult{
					Path:   fileSet.Get(ids[i]).FormatPath("relative", baseDir),
					FileID: ids[i],
					Bag:    bag,
				}
				opts.emit(Event{File: out.Files[i].Path, Stage: StageLoad, Status: StatusError, Err: loadErr})
				return nil
			}
			res, err := AnalyzeSource(gctx, fileSet, ids[i], w, opts)
			if err != nil {
				return err
			}
			// мьютекс не нужен, индекс i уникален
			out.Files[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return out, err
	}
	return out, nil
}
