package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"srcdef/internal/driver"
	"srcdef/internal/ui"
)

type indexOutcome struct {
	report *driver.Report
	err    error
}

func runIndexWithUI(ctx context.Context, title string, ws *driver.Workspace, opts driver.IndexOptions) (*driver.Report, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan indexOutcome, 1)

	go func() {
		opts.Sink = driver.ChannelSink{Ch: events}
		rep, err := driver.Index(ctx, ws, opts)
		outcomeCh <- indexOutcome{report: rep, err: err}
		close(events)
	}()

	files := make([]string, len(ws.Paths))
	copy(files, ws.Paths)
	program := tea.NewProgram(ui.NewProgressModel(title, files, events), tea.WithOutput(os.Stderr))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.report, uiErr
	}
	return outcome.report, outcome.err
}
