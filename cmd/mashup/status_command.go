package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mashup/internal/config"
	"mashup/internal/preflight"
	"mashup/internal/services"
	"mashup/internal/workspace"
)

type statusReport struct {
	ConfigPath   string              `json:"config_path"`
	ConfigExists bool                `json:"config_exists"`
	ConfigError  string              `json:"config_error,omitempty"`
	Delivery     bool                `json:"email_delivery"`
	Checks       []preflight.Result  `json:"checks"`
	Binaries     []preflight.Status  `json:"binaries"`
	StaleRuns    []workspace.DirInfo `json:"stale_runs,omitempty"`
	Ready        bool                `json:"ready"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var offline bool

	cmd := &cobra.Command{
		Use:         "status",
		Short:       "Report configuration, directories and external tool readiness",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.LoadUnvalidated(ctx.configPath())
			if err != nil {
				return configError(fmt.Errorf("load config: %w", err))
			}
			report := statusReport{ConfigPath: path, ConfigExists: exists, Delivery: cfg.SMTP.Enabled}
			if err := cfg.Validate(); err != nil {
				report.ConfigError = err.Error()
			}

			report.Checks = preflight.RunAll(cmd.Context(), cfg)
			if !offline {
				report.Checks = append(report.Checks, preflight.CheckYouTubeAPI(cmd.Context(), cfg.YouTube.BaseURL, cfg.YouTube.APIKey))
			}
			report.Binaries = preflight.CheckSystemDeps(cmd.Context(), cfg)
			if runs, err := workspace.List(cfg.Paths.WorkDir); err == nil {
				report.StaleRuns = runs
			}

			_, failed := preflight.FirstFailure(report.Checks)
			report.Ready = report.ConfigError == "" && !failed && len(preflight.MissingRequired(report.Binaries)) == 0

			if jsonOutput {
				if err := writeJSON(cmd, report); err != nil {
					return err
				}
			} else {
				printStatus(cmd, report)
			}
			if !report.Ready {
				return services.Wrap(services.ErrConfiguration, "status", "readiness", "environment is not ready", nil)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output status as JSON")
	cmd.Flags().BoolVar(&offline, "offline", false, "Skip the YouTube API probe")
	return cmd
}

func printStatus(cmd *cobra.Command, report statusReport) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	for _, line := range renderSectionHeader("Configuration", colorize) {
		fmt.Fprintln(out, line)
	}
	pathKind := statusOK
	pathText := report.ConfigPath
	if !report.ConfigExists {
		pathKind = statusWarn
		pathText += " (not found, defaults in use)"
	}
	fmt.Fprintln(out, renderStatusLine("Config file", pathKind, pathText, colorize))
	if report.ConfigError != "" {
		fmt.Fprintln(out, renderStatusLine("Validation", statusError, report.ConfigError, colorize))
	} else {
		fmt.Fprintln(out, renderStatusLine("Validation", statusOK, "valid", colorize))
	}
	fmt.Fprintln(out, renderStatusLine("Email delivery", statusInfo, enabledLabel(report.Delivery), colorize))
	if n := len(report.StaleRuns); n > 0 {
		var size int64
		for _, run := range report.StaleRuns {
			size += run.Size
		}
		fmt.Fprintln(out, renderStatusLine("Run directories", statusWarn,
			fmt.Sprintf("%d on disk (%d bytes); 'mashup clean' removes them", n, size), colorize))
	}

	fmt.Fprintln(out)
	for _, line := range renderSectionHeader("Checks", colorize) {
		fmt.Fprintln(out, line)
	}
	for _, check := range report.Checks {
		kind := statusOK
		if !check.Passed {
			kind = statusError
		}
		fmt.Fprintln(out, renderStatusLine(check.Name, kind, check.Detail, colorize))
	}

	fmt.Fprintln(out)
	for _, line := range renderSectionHeader("Dependencies", colorize) {
		fmt.Fprintln(out, line)
	}
	for _, status := range report.Binaries {
		kind := statusOK
		detail := status.Version
		if !status.Available {
			kind = statusError
			if status.Optional {
				kind = statusWarn
			}
			detail = status.Detail
		}
		if detail == "" {
			detail = status.Command
		}
		fmt.Fprintln(out, renderStatusLine(status.Name, kind, detail, colorize))
	}
}
