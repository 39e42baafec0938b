package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Freeeeeet/timetable/internal/app"
	"github.com/Freeeeeet/timetable/internal/config"
)

type rootOptions struct {
	configFile string
}

func newRootCmd() *cobra.Command {
	var opts rootOptions

	cmd := &cobra.Command{
		Use:           "timetable",
		Short:         "Class timetable service: schedules, time columns and conflict checks",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "Optional config file (yaml, json or toml)")

	cmd.AddCommand(
		newServeCmd(&opts),
		newMigrateCmd(&opts),
		newConflictsCmd(&opts),
		newRenderCmd(&opts),
	)
	return cmd
}

// setup loads the configuration and builds the logger.
func setup(opts *rootOptions) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, app.NewLogger(cfg.Environment, cfg.Log.Level), nil
}

// withApp runs fn against a fully wired application and closes it afterwards.
func withApp(ctx context.Context, opts *rootOptions, fn func(*app.App) error) (err error) {
	cfg, logger, err := setup(opts)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return fn(a)
}
