package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"capycop/internal/driver"
	"capycop/internal/rule"
	"capycop/internal/ui"
)

type analyzeOutcome struct {
	result *driver.RunResult
	err    error
}

type correctOutcome struct {
	results []driver.CorrectFileResult
	err     error
}

func runAnalyzeWithUI(ctx context.Context, title, baseDir string, files []string, w *rule.Walker, opts driver.Options) (*driver.RunResult, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan analyzeOutcome, 1)

	go func() {
		opts.Progress = driver.ChannelSink{Ch: events}
		res, err := driver.AnalyzeFiles(ctx, baseDir, files, w, opts)
		outcomeCh <- analyzeOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}

func runCorrectWithUI(ctx context.Context, title, baseDir string, files []string, w *rule.Walker, opts driver.CorrectPathsOptions) ([]driver.CorrectFileResult, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan correctOutcome, 1)

	go func() {
		opts.Progress = driver.ChannelSink{Ch: events}
		res, err := driver.CorrectPaths(ctx, baseDir, files, w, opts)
		outcomeCh <- correctOutcome{results: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
