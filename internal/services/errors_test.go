package services_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"mashup/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "assemble", "export", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"assemble", "export", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected placeholder detail, got %q", err.Error())
	}
}

func TestExitCodeMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{services.Wrap(services.ErrValidation, "request", "validate", "bad count", nil), services.ExitUsage},
		{services.Wrap(services.ErrConfiguration, "config", "load", "", nil), services.ExitConfiguration},
		{services.Wrap(services.ErrNotFound, "catalog", "search", "no results", nil), services.ExitNoResults},
		{fmt.Errorf("run: %w", context.Canceled), services.ExitInterrupted},
		{services.Wrap(services.ErrTransient, "fetch", "download", "", errors.New("io")), services.ExitFailure},
	}
	for _, tc := range cases {
		if got := services.ExitCode(tc.err); got != tc.want {
			t.Fatalf("ExitCode(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
	if hint := services.FailureHint(services.Wrap(services.ErrNotFound, "", "", "", nil)); hint == "" {
		t.Fatal("expected hint for not-found error")
	}
}
