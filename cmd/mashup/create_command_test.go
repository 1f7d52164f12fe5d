package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"mashup/internal/assemble"
	"mashup/internal/fetch"
	"mashup/internal/pipeline"
	"mashup/internal/services"
	"mashup/internal/testsupport"
)

func sampleResult(t *testing.T, archive string) pipeline.Result {
	t.Helper()
	testsupport.WriteFile(t, archive, 2048)
	return pipeline.Result{
		RunID:      "5f0c2a9e-run",
		Query:      "Artist X",
		Found:      10,
		Downloaded: 9,
		Outcomes: []fetch.Outcome{
			{Request: fetch.Request{SourceURL: "https://www.youtube.com/watch?v=ok", Slot: 1}, Path: "/tmp/1.mp3", Attempts: 1},
			{
				Request:  fetch.Request{SourceURL: "https://www.youtube.com/watch?v=blocked", Slot: 4},
				Reason:   fetch.ReasonExhaustedRetries,
				Attempts: 5,
				Err:      errors.New("HTTP Error 429: Too Many Requests"),
			},
		},
		Composite:   assemble.Result{DurationMs: 270000, ExpectedMs: 300000, Short: true, Clips: 9},
		ArchivePath: archive,
		Elapsed:     95 * time.Second,
	}
}

func TestCreatePrintsSummary(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	configPath := testsupport.WriteConfig(t, cfg)
	keep := filepath.Join(testsupport.BaseDir(cfg), "keep")
	runner := &fakeRunner{result: sampleResult(t, filepath.Join(keep, "Artist_X_mashup.zip"))}
	useRunner(t, runner)

	stdout, _, err := runCLI(t, "--config", configPath, "create", "Artist", "X", "--count", "10", "--clip", "30", "--keep", keep)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	requireContains(t, stdout, "Mashup ready")
	requireContains(t, stdout, "Artist X")
	requireContains(t, stdout, "9 downloaded of 10 found")
	requireContains(t, stdout, "270 seconds (expected 300)")
	requireContains(t, stdout, "exhausted_retries")
	requireContains(t, stdout, "watch?v=blocked")

	if runner.runCount() != 1 {
		t.Fatalf("expected one run, got %d", runner.runCount())
	}
	req := runner.requests[0]
	if req.Query != "Artist X" || req.Count != 10 || req.ClipSeconds != 30 || req.KeepDir != keep {
		t.Fatalf("unexpected request %+v", req)
	}
}

func TestCreateJSONSummary(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	configPath := testsupport.WriteConfig(t, cfg)
	runner := &fakeRunner{result: sampleResult(t, filepath.Join(testsupport.BaseDir(cfg), "out", "Artist_X_mashup.zip"))}
	useRunner(t, runner)

	stdout, _, err := runCLI(t, "--config", configPath, "create", "Artist X", "--json")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	var summary runSummary
	if err := json.Unmarshal([]byte(stdout), &summary); err != nil {
		t.Fatalf("decode summary: %v\n%s", err, stdout)
	}
	if !summary.Short || summary.DurationSeconds != 270 || summary.ExpectedSeconds != 300 {
		t.Fatalf("unexpected duration fields %+v", summary)
	}
	if len(summary.Failures) != 1 || summary.Failures[0].Slot != 4 || summary.Failures[0].Attempts != 5 {
		t.Fatalf("unexpected failures %+v", summary.Failures)
	}
	if runner.requests[0].Count != pipeline.DefaultCount || runner.requests[0].ClipSeconds != pipeline.DefaultClipSeconds {
		t.Fatalf("expected defaults, got %+v", runner.requests[0])
	}
	if runner.requests[0].KeepDir != "." {
		t.Fatalf("expected keep dir to default to the working directory, got %q", runner.requests[0].KeepDir)
	}
}

func TestCreateRequiresQuery(t *testing.T) {
	runner := &fakeRunner{}
	useRunner(t, runner)
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	configPath := testsupport.WriteConfig(t, cfg)

	_, _, err := runCLI(t, "--config", configPath, "create")
	if err == nil {
		t.Fatal("expected error without a query")
	}
	if code := exitCode(err); code != services.ExitUsage {
		t.Fatalf("expected usage exit code, got %d", code)
	}
}

func TestCreateRejectsUnknownFlag(t *testing.T) {
	useRunner(t, &fakeRunner{})
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	configPath := testsupport.WriteConfig(t, cfg)

	_, _, err := runCLI(t, "--config", configPath, "create", "Artist", "--loud")
	if code := exitCode(err); code != services.ExitUsage {
		t.Fatalf("expected usage exit code, got %d (%v)", code, err)
	}
}

func TestCreateFailsPreflightWhenBinaryMissing(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries("ffmpeg", "ffprobe"))
	cfg.Fetch.YtdlpBinary = filepath.Join(testsupport.BaseDir(cfg), "bin", "missing-yt-dlp")
	configPath := testsupport.WriteConfig(t, cfg)
	runner := &fakeRunner{}
	useRunner(t, runner)

	_, _, err := runCLI(t, "--config", configPath, "create", "Artist X")
	if err == nil {
		t.Fatal("expected preflight failure")
	}
	if code := exitCode(err); code != services.ExitConfiguration {
		t.Fatalf("expected configuration exit code, got %d (%v)", code, err)
	}
	requireContains(t, err.Error(), "yt-dlp")
	if runner.runCount() != 0 {
		t.Fatal("pipeline should not run when preflight fails")
	}
}

func TestCreateRefusesConcurrentRun(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	configPath := testsupport.WriteConfig(t, cfg)
	if err := os.MkdirAll(cfg.Paths.WorkDir, 0o755); err != nil {
		t.Fatal(err)
	}
	held := flock.New(cfg.LockPath())
	locked, err := held.TryLock()
	if err != nil || !locked {
		t.Fatalf("hold lock: locked=%v err=%v", locked, err)
	}
	t.Cleanup(func() { _ = held.Unlock() })

	runner := &fakeRunner{}
	useRunner(t, runner)
	_, _, err = runCLI(t, "--config", configPath, "create", "Artist X")
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient lock error, got %v", err)
	}
	requireContains(t, err.Error(), "another mashup run")
	if runner.runCount() != 0 {
		t.Fatal("pipeline should not run while the lock is held")
	}
}

func TestCreatePropagatesPipelineErrors(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	configPath := testsupport.WriteConfig(t, cfg)
	runner := &fakeRunner{err: services.Wrap(services.ErrNotFound, "catalog", "search", "no videos", pipeline.ErrNoResults)}
	useRunner(t, runner)

	_, _, err := runCLI(t, "--config", configPath, "create", "Nobody")
	if code := exitCode(err); code != services.ExitNoResults {
		t.Fatalf("expected no-results exit code, got %d", code)
	}
	msg, classified := userMessage(err)
	if !classified {
		t.Fatal("expected classified error")
	}
	requireContains(t, msg, "No videos found")
}
