package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Freeeeeet/timetable/internal/app"
	"github.com/Freeeeeet/timetable/internal/config"
)

func newMigrateCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|version]",
		Short:     "Apply or inspect database migrations",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down", "version"},
		RunE: func(cmd *cobra.Command, args []string) error {
			direction := "up"
			if len(args) == 1 {
				direction = args[0]
			}

			return withApp(cmd.Context(), root, func(a *app.App) error {
				if a.Pool == nil {
					return fmt.Errorf("migrations need STORE_BACKEND=%s", config.BackendPostgres)
				}
				return runMigrations(cmd.Context(), a, direction)
			})
		},
	}
}

func runMigrations(ctx context.Context, a *app.App, direction string) error {
	migrator, err := app.NewMigrator(a.Pool)
	if err != nil {
		return err
	}
	defer migrator.Close()

	switch direction {
	case "up":
		if err := migrator.Run(ctx); err != nil {
			return err
		}
	case "down":
		if err := migrator.Down(ctx); err != nil {
			return err
		}
	}

	version, err := migrator.Version(ctx)
	if err != nil {
		return err
	}
	a.Logger.Info("Database schema version", zap.Int64("version", version))
	return nil
}
