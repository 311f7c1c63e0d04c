package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"quill/internal/pipeline"
	"quill/internal/ui"
)

type checkOutcome struct {
	result pipeline.CheckResult
	err    error
}

func runCheckWithUI(ctx context.Context, title string, files []string, req *pipeline.CheckRequest) (pipeline.CheckResult, error) {
	if req == nil {
		return pipeline.CheckResult{}, fmt.Errorf("missing check request")
	}
	events := make(chan pipeline.Event, 256)
	outcomeCh := make(chan checkOutcome, 1)

	go func() {
		reqCopy := *req
		reqCopy.Progress = pipeline.ChannelSink{Ch: events}
		res, err := pipeline.Check(ctx, &reqCopy)
		outcomeCh <- checkOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	// прогресс рисуем в stderr, чтобы stdout оставался чистым для диагностик
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr), tea.WithContext(ctx))
	_, uiErr := program.Run()
	// модель могла выйти раньше пайплайна; не даём ему заблокироваться на отправке
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil && ctx.Err() == nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
