package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"mashup/internal/config"
	"mashup/internal/pipeline"
	"mashup/internal/preflight"
	"mashup/internal/services"
	"mashup/internal/workspace"
)

func newCreateCommand(ctx *commandContext) *cobra.Command {
	var (
		count      int
		clip       int
		email      string
		keepDir    string
		timeout    time.Duration
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "create <singer>",
		Short: "Download clips for a singer and build a mashup",
		Long: fmt.Sprintf(`Search YouTube for a singer, download %d-%d tracks, cut a %d-%d second clip
from each and concatenate them into a single MP3. The result is zipped and
emailed to --email when SMTP delivery is enabled, or copied to --keep.`,
			pipeline.MinCount, pipeline.MaxCount, pipeline.MinClipSeconds, pipeline.MaxClipSeconds),
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.MinimumNArgs(1)(cmd, args); err != nil {
				return usageError(err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			req := pipeline.Request{
				Query:       strings.Join(args, " "),
				Count:       count,
				ClipSeconds: clip,
				Recipient:   email,
				KeepDir:     keepDir,
			}
			return ctx.withRunner(func(cfg *config.Config, runner mashupRunner) error {
				logger, err := ctx.ensureLogger()
				if err != nil {
					return err
				}
				return runCreate(cmd, cfg, logger, runner, req, timeout, jsonOutput)
			})
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", pipeline.DefaultCount, fmt.Sprintf("Number of videos to search for (%d-%d)", pipeline.MinCount, pipeline.MaxCount))
	cmd.Flags().IntVarP(&clip, "clip", "d", pipeline.DefaultClipSeconds, fmt.Sprintf("Seconds taken from each track (%d-%d)", pipeline.MinClipSeconds, pipeline.MaxClipSeconds))
	cmd.Flags().StringVarP(&email, "email", "e", "", "Recipient address for the zipped mashup")
	cmd.Flags().StringVarP(&keepDir, "keep", "k", "", "Directory that receives a copy of the archive")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Abort the run after this duration (0 disables)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the run summary as JSON")
	return cmd
}

func runCreate(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger, runner mashupRunner, req pipeline.Request, timeout time.Duration, jsonOutput bool) error {
	if !runner.DeliveryEnabled() && strings.TrimSpace(req.KeepDir) == "" {
		req.KeepDir = "."
	}
	if timeout < 0 {
		return usageError(errors.New("--timeout must not be negative"))
	}

	lock := flock.New(cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return configError(fmt.Errorf("acquire run lock: %w", err))
	}
	if !locked {
		return services.Wrap(services.ErrTransient, "cli", "lock", fmt.Sprintf("another mashup run holds %s", cfg.LockPath()), nil)
	}
	defer func() { _ = lock.Unlock() }()

	runCtx := cmd.Context()
	if runCtx == nil {
		runCtx = context.Background()
	}
	if err := checkReadiness(runCtx, cfg); err != nil {
		return err
	}
	// The lock is held, so any run directory on disk belongs to a dead process.
	workspace.CleanStale(runCtx, cfg.Paths.WorkDir, 0, logger)
	if timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(runCtx, timeout)
		defer cancel()
	}

	result, err := runner.Run(runCtx, req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return services.Wrap(services.ErrTimeout, "cli", "run", fmt.Sprintf("run exceeded %s", timeout), err)
		}
		return err
	}

	if jsonOutput {
		return writeJSON(cmd, summarize(result))
	}
	printRunSummary(cmd.OutOrStdout(), result, shouldColorize(cmd.OutOrStdout()))
	return nil
}

// checkReadiness fails fast when directories or external binaries are missing.
func checkReadiness(ctx context.Context, cfg *config.Config) error {
	if failure, failed := preflight.FirstFailure(preflight.RunAll(ctx, cfg)); failed {
		return services.Wrap(services.ErrConfiguration, "preflight", strings.ToLower(failure.Name), failure.Detail, nil)
	}
	if missing := preflight.MissingRequired(preflight.CheckSystemDeps(ctx, cfg)); len(missing) > 0 {
		return services.Wrap(services.ErrConfiguration, "preflight", "binaries",
			"missing required tools: "+strings.Join(missing, ", "), nil)
	}
	return nil
}

func printRunSummary(out io.Writer, result pipeline.Result, colorize bool) {
	summary := summarize(result)

	for _, line := range renderSectionHeader("Mashup ready", colorize) {
		fmt.Fprintln(out, line)
	}
	fmt.Fprintln(out, renderStatusLine("Query", statusInfo, summary.Query, colorize))
	clipKind := statusOK
	if summary.Downloaded < summary.Found {
		clipKind = statusWarn
	}
	fmt.Fprintln(out, renderStatusLine("Tracks", clipKind,
		fmt.Sprintf("%d downloaded of %d found, %d used", summary.Downloaded, summary.Found, summary.Clips), colorize))
	durationKind := statusOK
	durationText := fmt.Sprintf("%s seconds", formatSeconds(summary.DurationSeconds))
	if summary.Short {
		durationKind = statusWarn
		durationText += fmt.Sprintf(" (expected %s)", formatSeconds(summary.ExpectedSeconds))
	}
	fmt.Fprintln(out, renderStatusLine("Duration", durationKind, durationText, colorize))
	switch {
	case summary.Delivered:
		fmt.Fprintln(out, renderStatusLine("Email", statusOK, "sent", colorize))
	case summary.DeliveryError != "":
		fmt.Fprintln(out, renderStatusLine("Email", statusError, summary.DeliveryError, colorize))
	}
	if summary.Archive != "" {
		fmt.Fprintln(out, renderStatusLine("Archive", statusInfo, summary.Archive, colorize))
	}
	fmt.Fprintln(out, renderStatusLine("Run", statusInfo,
		fmt.Sprintf("%s in %s", summary.RunID, result.Elapsed.Round(time.Second)), colorize))

	if len(summary.Failures) == 0 {
		return
	}
	rows := make([][]string, 0, len(summary.Failures))
	for _, failure := range summary.Failures {
		rows = append(rows, []string{
			strconv.Itoa(failure.Slot),
			failure.Reason,
			strconv.Itoa(failure.Attempts),
			failure.URL,
		})
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, renderTable(
		[]string{"Slot", "Reason", "Attempts", "URL"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignRight, alignLeft},
	))
}

func formatSeconds(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
