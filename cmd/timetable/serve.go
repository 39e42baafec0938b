package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Freeeeeet/timetable/internal/app"
	"github.com/Freeeeeet/timetable/internal/config"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the Telegram bot and the conflict audit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), root, func(a *app.App) error {
				if migrate && a.Config.Store.Backend == config.BackendPostgres {
					if err := runMigrations(cmd.Context(), a, "up"); err != nil {
						return err
					}
				}
				return serve(cmd.Context(), a)
			})
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", true, "Apply pending migrations before serving (postgres only)")
	return cmd
}

func serve(ctx context.Context, a *app.App) error {
	logger := a.Logger
	srv := a.HTTPServer()

	scheduler, err := a.Scheduler()
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("🚀 HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.HTTP.ShutdownTimeout)
		defer cancel()
		logger.Info("Shutting down HTTP server")
		return srv.Shutdown(shutdownCtx)
	})

	if a.Bot != nil {
		g.Go(func() error {
			if err := a.Bot.RegisterHandlers(gctx); err != nil {
				// The commands still work without the menu.
				logger.Warn("Bot command menu not set", zap.Error(err))
			}
			return a.Bot.Start(gctx)
		})
	} else {
		logger.Info("Telegram bot disabled")
	}

	if scheduler != nil {
		g.Go(func() error {
			return scheduler.Start(gctx)
		})
	} else {
		logger.Info("Conflict audit disabled")
	}

	return g.Wait()
}
