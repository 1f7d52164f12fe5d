package ffprobe

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestResultHelpers(t *testing.T) {
	result := Result{
		Streams: []Stream{{CodecType: "audio"}, {CodecType: "audio"}},
		Format:  Format{Duration: "123.4567"},
	}
	if result.AudioStreamCount() != 2 {
		t.Fatalf("expected 2 audio streams, got %d", result.AudioStreamCount())
	}
	ms, err := result.DurationMs()
	if err != nil || ms != 123457 {
		t.Fatalf("unexpected duration: %d %v", ms, err)
	}
}

func TestResultHelpersHandleInvalidNumbers(t *testing.T) {
	result := Result{Format: Format{Duration: "bad"}}
	if !math.IsNaN(result.DurationSeconds()) {
		t.Fatalf("expected duration NaN, got %v", result.DurationSeconds())
	}
}

func TestDurationMsFallsBackToStream(t *testing.T) {
	result := Result{Streams: []Stream{{CodecType: "audio", Duration: "61.5"}}}
	ms, err := result.DurationMs()
	if err != nil || ms != 61500 {
		t.Fatalf("expected stream duration fallback, got %d %v", ms, err)
	}
}

func TestDurationMsWithoutAudio(t *testing.T) {
	if _, err := (Result{Format: Format{Duration: "10"}}).DurationMs(); !errors.Is(err, ErrNoAudio) {
		t.Fatalf("expected ErrNoAudio, got %v", err)
	}
}

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ffprobe")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func TestProberParsesBinaryOutput(t *testing.T) {
	bin := writeScript(t, `cat <<'JSON'
{"streams":[{"index":0,"codec_type":"audio","codec_name":"mp3"}],"format":{"duration":"200.000000"}}
JSON`)
	ms, err := Prober{Binary: bin}.Duration(context.Background(), "/tmp/song_1.mp3")
	if err != nil {
		t.Fatalf("Duration returned error: %v", err)
	}
	if ms != 200000 {
		t.Fatalf("expected 200000 ms, got %d", ms)
	}
}

func TestProberReportsFailure(t *testing.T) {
	bin := writeScript(t, `echo "Invalid data found when processing input" >&2; exit 1`)
	if _, err := (Prober{Binary: bin}).Duration(context.Background(), "/tmp/broken.mp3"); err == nil {
		t.Fatal("expected error from failing ffprobe")
	}
}
