// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/taibuivan/milize/internal/app"
	"github.com/taibuivan/milize/internal/platform/config"
	"github.com/taibuivan/milize/internal/platform/constants"
)

func newRootCommand() *cobra.Command {
	var envFile string
	var verbose bool

	ctx := &commandContext{envFile: &envFile, verbose: &verbose}

	rootCmd := &cobra.Command{
		Use:           "milizectl",
		Short:         "Operate the Milize workflow engine",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			ctx.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Load variables from this file before the environment")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log engine activity to stderr")

	rootCmd.AddCommand(newMigrateCommand(ctx))
	rootCmd.AddCommand(newSweepCommand(ctx))
	rootCmd.AddCommand(newPublishCommand(ctx))
	rootCmd.AddCommand(newTokenCommand(ctx))

	return rootCmd
}

// commandContext loads configuration and the engine on first use.
type commandContext struct {
	envFile *string
	verbose *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	engine *app.App
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		if path := strings.TrimSpace(*c.envFile); path != "" {
			if err := godotenv.Load(path); err != nil {
				c.configErr = fmt.Errorf("load %s: %w", path, err)
				return
			}
		}
		c.config, c.configErr = config.Load()
	})
	return c.config, c.configErr
}

func (c *commandContext) logger() *slog.Logger {
	var out io.Writer = io.Discard
	if *c.verbose {
		out = os.Stderr
	}
	return slog.New(slog.NewTextHandler(out, nil)).With(slog.String(constants.FieldApp, "milizectl"))
}

func (c *commandContext) ensureEngine(ctx context.Context) (*app.App, error) {
	if c.engine != nil {
		return c.engine, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	engine, err := app.New(ctx, cfg, c.logger())
	if err != nil {
		return nil, err
	}
	c.engine = engine
	return engine, nil
}

func (c *commandContext) close() {
	if c.engine != nil {
		c.engine.Close()
		c.engine = nil
	}
}
