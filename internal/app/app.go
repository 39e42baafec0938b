package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-telegram/bot"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Freeeeeet/timetable/internal/api/handler"
	"github.com/Freeeeeet/timetable/internal/api/router"
	"github.com/Freeeeeet/timetable/internal/cache"
	"github.com/Freeeeeet/timetable/internal/config"
	"github.com/Freeeeeet/timetable/internal/conflict"
	"github.com/Freeeeeet/timetable/internal/controller"
	"github.com/Freeeeeet/timetable/internal/metrics"
	"github.com/Freeeeeet/timetable/internal/repository"
	"github.com/Freeeeeet/timetable/internal/repository/memstore"
	"github.com/Freeeeeet/timetable/internal/service"
)

const readHeaderTimeout = 10 * time.Second

// App owns the wired services and everything that must be closed on exit.
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	Registry *prometheus.Registry
	Pool     *pgxpool.Pool
	Memory   *memstore.Store

	Schedules   *service.ScheduleService
	Conflicts   *service.ConflictService
	TimeColumns *service.TimeColumnService
	Exports     *service.ExportService
	Bot         *controller.BotController

	closers []func() error
}

// New connects the configured backends and builds the services. The bot is
// only created when a token is set.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (a *App, err error) {
	a = &App{
		Config:   cfg,
		Logger:   logger,
		Registry: prometheus.NewRegistry(),
	}
	defer func() {
		if err != nil {
			err = multierr.Append(err, a.Close())
			a = nil
		}
	}()

	a.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(a.Registry)

	detector, err := conflict.New(cfg.Conflict.Detector)
	if err != nil {
		return a, err
	}

	var (
		directory   service.Directory
		assignments service.AssignmentStore
		columns     service.TimeColumnStore
		reportCache service.ReportCache
	)

	switch cfg.Store.Backend {
	case config.BackendMemory:
		a.Memory = memstore.New()
		if cfg.Store.SeedFile != "" {
			if err := loadSeed(a.Memory, cfg.Store.SeedFile); err != nil {
				return a, err
			}
		}
		directory = a.Memory.Directory()
		assignments = a.Memory.Assignments()
		columns = a.Memory.TimeColumns()
		reportCache = cache.NewMemory()
		logger.Info("Using in-memory store")

	default:
		a.Pool, err = ConnectDatabase(ctx, cfg.Database, logger)
		if err != nil {
			return a, err
		}
		a.closers = append(a.closers, func() error {
			a.Pool.Close()
			return nil
		})
		directory = repository.NewDirectoryRepository(a.Pool, logger)
		assignments = repository.NewAssignmentRepository(a.Pool, logger)
		columns = repository.NewTimeColumnRepository(a.Pool, logger)
		reportCache = cache.Noop{}
	}

	if cfg.Redis.Addr != "" {
		rc, err := cache.NewRedis(cfg.Redis, cfg.Conflict.CacheTTL, logger)
		if err != nil {
			return a, err
		}
		a.closers = append(a.closers, rc.Close)
		reportCache = rc
	}

	loc, err := cfg.Location()
	if err != nil {
		return a, err
	}
	termStart, err := cfg.TermStartDate()
	if err != nil {
		return a, err
	}

	a.Conflicts = service.NewConflictService(assignments, detector, reportCache, m, logger)
	a.Schedules = service.NewScheduleService(directory, assignments, a.Conflicts, m, logger)
	a.TimeColumns = service.NewTimeColumnService(columns, logger)
	a.Exports = service.NewExportService(a.Schedules, a.Conflicts, a.TimeColumns, termStart, loc, logger)

	if a.Memory != nil {
		a.Memory.OnChange(func() {
			if err := a.Conflicts.Invalidate(context.Background()); err != nil {
				logger.Warn("Failed to invalidate conflict cache", zap.Error(err))
			}
		})
	}

	if cfg.Telegram.Token != "" {
		b, err := bot.New(cfg.Telegram.Token)
		if err != nil {
			return a, fmt.Errorf("create telegram bot: %w", err)
		}
		a.Bot = controller.NewBotController(b, a.Schedules, a.TimeColumns, a.Conflicts, a.Exports, cfg.Telegram.AdminChatID, logger)
	}

	return a, nil
}

func loadSeed(store *memstore.Store, path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}

	var seed memstore.Seed
	if err := v.Unmarshal(&seed); err != nil {
		return fmt.Errorf("decode seed file: %w", err)
	}
	store.Load(seed)
	return nil
}

// Router builds the HTTP handler tree.
func (a *App) Router() *gin.Engine {
	if a.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	h := handler.NewHandler(handler.Services{
		Schedules:   a.Schedules,
		TimeColumns: a.TimeColumns,
		Conflicts:   a.Conflicts,
		Exports:     a.Exports,
	}, a.Logger)

	return router.Setup(h, a.Registry, a.Logger)
}

// HTTPServer returns a server for the configured address.
func (a *App) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              a.Config.HTTP.Addr,
		Handler:           a.Router(),
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

// Scheduler returns the audit scheduler, or nil when the audit is disabled.
func (a *App) Scheduler() (*Scheduler, error) {
	if a.Config.Conflict.AuditCron == "" {
		return nil, nil
	}

	var notifier AuditNotifier
	if a.Bot != nil {
		notifier = a.Bot
	}
	return NewScheduler(a.Config.Conflict.AuditCron, a.Conflicts, notifier, a.Logger)
}

// Close releases every resource in reverse order of acquisition.
func (a *App) Close() error {
	var err error
	for i := len(a.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, a.closers[i]())
	}
	a.closers = nil
	return err
}
