package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"mashup/internal/logging"
	"mashup/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var follow bool

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the mashup log file",
		Long:  "Print the tail of the log file written when logging.to_file is enabled.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if lines < 0 {
				return usageError(fmt.Errorf("--lines must not be negative"))
			}
			path := filepath.Join(cfg.Paths.LogDir, logging.LogFileName)
			tail, offset, err := logs.Tail(path, lines)
			if err != nil {
				return configError(err)
			}
			out := cmd.OutOrStdout()
			if len(tail) == 0 && offset == 0 && !follow {
				fmt.Fprintf(out, "No log entries at %s\n", path)
				if !cfg.Logging.ToFile {
					fmt.Fprintln(out, "Set logging.to_file = true to record runs.")
				}
				return nil
			}
			for _, line := range tail {
				fmt.Fprintln(out, line)
			}
			if !follow {
				return nil
			}
			return logs.Follow(cmd.Context(), path, offset, logs.DefaultPollInterval, func(line string) {
				fmt.Fprintln(out, line)
			})
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of trailing lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new lines until interrupted")
	return cmd
}
