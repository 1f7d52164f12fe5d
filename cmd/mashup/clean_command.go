package main

import (
	"fmt"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"mashup/internal/services"
	"mashup/internal/workspace"
)

func newCleanCommand(ctx *commandContext) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove run directories left behind by interrupted runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			if olderThan < 0 {
				return usageError(fmt.Errorf("--older-than must not be negative"))
			}

			lock := flock.New(cfg.LockPath())
			locked, err := lock.TryLock()
			if err != nil {
				return configError(fmt.Errorf("acquire run lock: %w", err))
			}
			if !locked {
				return services.Wrap(services.ErrTransient, "cli", "lock", "a mashup run is in progress", nil)
			}
			defer func() { _ = lock.Unlock() }()

			result := workspace.CleanStale(cmd.Context(), cfg.Paths.WorkDir, olderThan, logger)
			out := cmd.OutOrStdout()
			for _, path := range result.Removed {
				fmt.Fprintf(out, "Removed %s\n", path)
			}
			if len(result.Removed) == 0 {
				fmt.Fprintln(out, "No stale run directories")
			}
			if len(result.Errors) > 0 {
				first := result.Errors[0]
				return services.Wrap(services.ErrConfiguration, "clean", "remove", first.Path, first.Error)
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 0, "Only remove directories older than this")
	return cmd
}
