package main

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"mashup/internal/catalog"
	"mashup/internal/config"
	"mashup/internal/pipeline"
)

type fakeRunner struct {
	mu       sync.Mutex
	delivery bool
	result   pipeline.Result
	err      error
	items    []catalog.Item
	requests []pipeline.Request
	searches []string
}

func (f *fakeRunner) Run(_ context.Context, req pipeline.Request) (pipeline.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	return f.result, f.err
}

func (f *fakeRunner) Search(_ context.Context, query string, _ int) ([]catalog.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searches = append(f.searches, query)
	return f.items, f.err
}

func (f *fakeRunner) DeliveryEnabled() bool { return f.delivery }

func (f *fakeRunner) runCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func useRunner(t *testing.T, runner *fakeRunner) {
	t.Helper()
	previous := newRunner
	newRunner = func(*config.Config, *slog.Logger) (mashupRunner, func() error, error) {
		return runner, func() error { return nil }, nil
	}
	t.Cleanup(func() { newRunner = previous })
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(t.Context())
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
