package main

import (
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"mashup/internal/pipeline"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type runSummary struct {
	RunID           string           `json:"run_id"`
	Query           string           `json:"query"`
	Found           int              `json:"found"`
	Downloaded      int              `json:"downloaded"`
	Clips           int              `json:"clips"`
	Skipped         int              `json:"skipped"`
	DurationSeconds float64          `json:"duration_seconds"`
	ExpectedSeconds float64          `json:"expected_seconds"`
	Short           bool             `json:"short"`
	Archive         string           `json:"archive,omitempty"`
	Delivered       bool             `json:"delivered"`
	DeliveryError   string           `json:"delivery_error,omitempty"`
	Failures        []failureSummary `json:"failures,omitempty"`
	ElapsedSeconds  float64          `json:"elapsed_seconds"`
}

type failureSummary struct {
	Slot     int    `json:"slot"`
	URL      string `json:"url"`
	Reason   string `json:"reason"`
	Attempts int    `json:"attempts"`
	Error    string `json:"error,omitempty"`
}

func summarize(result pipeline.Result) runSummary {
	summary := runSummary{
		RunID:           result.RunID,
		Query:           result.Query,
		Found:           result.Found,
		Downloaded:      result.Downloaded,
		Clips:           result.Composite.Clips,
		Skipped:         result.Composite.Skipped,
		DurationSeconds: msToSeconds(result.Composite.DurationMs),
		ExpectedSeconds: msToSeconds(result.Composite.ExpectedMs),
		Short:           result.Composite.Short,
		Archive:         result.ArchivePath,
		Delivered:       result.Delivered,
		ElapsedSeconds:  result.Elapsed.Round(time.Millisecond).Seconds(),
	}
	if result.KeptPath != "" {
		summary.Archive = result.KeptPath
	}
	if result.DeliveryErr != nil {
		summary.DeliveryError = result.DeliveryErr.Error()
	}
	for _, outcome := range result.Outcomes {
		if outcome.Succeeded() {
			continue
		}
		failure := failureSummary{
			Slot:     outcome.Request.Slot,
			URL:      outcome.Request.SourceURL,
			Reason:   string(outcome.Reason),
			Attempts: outcome.Attempts,
		}
		if outcome.Err != nil {
			failure.Error = outcome.Err.Error()
		}
		summary.Failures = append(summary.Failures, failure)
	}
	return summary
}

func msToSeconds(ms int64) float64 {
	return float64(ms) / 1000
}
