package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"mashup/internal/catalog"
	"mashup/internal/config"
	"mashup/internal/pipeline"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var count int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "List the videos a mashup run would download",
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.MinimumNArgs(1)(cmd, args); err != nil {
				return usageError(err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.TrimSpace(strings.Join(args, " "))
			if query == "" {
				return usageError(fmt.Errorf("query must not be empty"))
			}
			if count < pipeline.MinCount || count > pipeline.MaxCount {
				return usageError(fmt.Errorf("--count must be between %d and %d", pipeline.MinCount, pipeline.MaxCount))
			}
			return ctx.withRunner(func(_ *config.Config, runner mashupRunner) error {
				items, err := runner.Search(cmd.Context(), query, count)
				if err != nil {
					return err
				}
				if jsonOutput {
					if items == nil {
						items = []catalog.Item{}
					}
					return writeJSON(cmd, items)
				}
				out := cmd.OutOrStdout()
				if len(items) == 0 {
					fmt.Fprintln(out, "No videos found")
					return nil
				}
				rows := make([][]string, 0, len(items))
				for i, item := range items {
					rows = append(rows, []string{strconv.Itoa(i + 1), item.Title, item.Channel, item.URL})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"#", "Title", "Channel", "URL"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", pipeline.DefaultCount, "Number of results to request")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output results as JSON")
	return cmd
}
