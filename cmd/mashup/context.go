package main

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"mashup/internal/catalog"
	"mashup/internal/config"
	"mashup/internal/logging"
	"mashup/internal/pipeline"
)

// mashupRunner is the pipeline surface used by commands.
type mashupRunner interface {
	Run(ctx context.Context, req pipeline.Request) (pipeline.Result, error)
	Search(ctx context.Context, query string, count int) ([]catalog.Item, error)
	DeliveryEnabled() bool
}

// newRunner builds the production pipeline. Tests replace it.
var newRunner = func(cfg *config.Config, logger *slog.Logger) (mashupRunner, func() error, error) {
	driver, closeFn, err := pipeline.FromConfig(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return driver, closeFn, nil
}

type commandContext struct {
	configFlag *string
	verbose    *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string, verbose *bool) *commandContext {
	return &commandContext{configFlag: configFlag, verbose: verbose}
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(c.configPath())
		if err != nil {
			c.configErr = configError(err)
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = configError(err)
			return
		}
		if c.verbose != nil && *c.verbose {
			cfg.Logging.Level = "debug"
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.loggerErr = configError(err)
			return
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) withRunner(fn func(cfg *config.Config, runner mashupRunner) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return err
	}
	runner, closeFn, err := newRunner(cfg, logger)
	if err != nil {
		return configError(err)
	}
	defer func() { _ = closeFn() }()
	return fn(cfg, runner)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
