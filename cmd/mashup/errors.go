package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"mashup/internal/assemble"
	"mashup/internal/pipeline"
	"mashup/internal/services"
)

var classifiedMarkers = []error{
	services.ErrValidation,
	services.ErrConfiguration,
	services.ErrNotFound,
	services.ErrExternalTool,
	services.ErrTimeout,
	services.ErrTransient,
}

// userMessage returns the one-line explanation shown for err, and whether err
// belongs to a known failure class.
func userMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, context.Canceled):
		return "Interrupted; partial downloads were discarded.", true
	case errors.Is(err, pipeline.ErrInvalidRequest):
		return fmt.Sprintf("Invalid request: %v", err), true
	case errors.Is(err, pipeline.ErrNoResults):
		return "No videos found for that search.", true
	case errors.Is(err, pipeline.ErrNoAudioDownloaded):
		return "Failed to download any audio files.", true
	case errors.Is(err, assemble.ErrNoUsableAudio):
		return "No audio files were successfully processed.", true
	case errors.Is(err, pipeline.ErrAssemblyFailed):
		return "Failed to create the mashup.", true
	}
	for _, marker := range classifiedMarkers {
		if errors.Is(err, marker) {
			return err.Error(), true
		}
	}
	return "", false
}

func reportError(w io.Writer, err error) {
	msg, classified := userMessage(err)
	if !classified {
		fmt.Fprintf(w, "mashup failed: %v\n", err)
		return
	}
	fmt.Fprintf(w, "Error: %s\n", msg)
	if errors.Is(err, context.Canceled) {
		return
	}
	if hint := services.FailureHint(err); hint != "" {
		fmt.Fprintf(w, "Hint: %s\n", hint)
	}
}

func exitCode(err error) int {
	return services.ExitCode(err)
}

func usageError(err error) error {
	return services.Wrap(services.ErrValidation, "cli", "arguments", "", err)
}

func configError(err error) error {
	if errors.Is(err, services.ErrConfiguration) {
		return err
	}
	return services.Wrap(services.ErrConfiguration, "cli", "config", "", err)
}
