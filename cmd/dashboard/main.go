package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/example/hr-dashboard/internal/backend"
	"github.com/example/hr-dashboard/internal/config"
	"github.com/example/hr-dashboard/internal/dashboard"
	"github.com/example/hr-dashboard/internal/fixturebackend"
	"github.com/example/hr-dashboard/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

type globalFlags struct {
	backendURL string
	token      string
	logLevel   string
	demo       bool
}

// app carries everything a subcommand needs once flags and environment are resolved.
type app struct {
	cfg     config.Config
	logger  *slog.Logger
	token   string
	service *dashboard.Service
	now     func() time.Time

	closers []func(context.Context) error
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:          "dashboard",
		Short:        "HR dashboard for working hours and attendance",
		SilenceUsage: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVar(&flags.backendURL, "backend-url", "", "HR backend base URL (overrides DASHBOARD_BACKEND_URL)")
	root.PersistentFlags().StringVar(&flags.token, "token", "", "bearer token for the HR backend (overrides DASHBOARD_API_TOKEN)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "debug, info, warn or error (overrides DASHBOARD_LOG_LEVEL)")
	root.PersistentFlags().BoolVar(&flags.demo, "demo", false, "serve a seeded fixture backend in process")

	root.AddCommand(
		newServeCommand(flags),
		newCalendarCommand(flags),
		newOverviewCommand(flags),
		newBrowseCommand(flags),
		newExportCommand(flags),
	)
	return root
}

// loadConfig reads the environment and applies flag overrides.
func loadConfig(flags *globalFlags) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if flags.backendURL != "" {
		cfg.BackendURL = flags.backendURL
	}
	if flags.token != "" {
		cfg.APIToken = flags.token
	}
	if flags.logLevel != "" {
		level, err := logging.ParseLevel(flags.logLevel)
		if err != nil {
			return config.Config{}, err
		}
		cfg.LogLevel = level
	}
	return cfg, nil
}

// newApp resolves configuration and wires the backend client, caches and
// dashboard service. Callers must call close.
func newApp(ctx context.Context, flags *globalFlags, stderr io.Writer) (*app, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, err
	}

	logger := logging.New(stderr, cfg.LogLevel)
	a := &app{cfg: cfg, logger: logger, token: cfg.APIToken, now: time.Now}

	if flags.demo {
		demo, err := fixturebackend.StartDemo(ctx, cfg.FixtureDSN, a.now, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to start demo backend: %w", err)
		}
		a.closers = append(a.closers, demo.Close)
		a.cfg.BackendURL = demo.URL
		if a.token == "" {
			a.token = fixturebackend.DemoAdminToken
		}
	}

	if err := a.cfg.RequireBackend(); err != nil {
		a.close()
		return nil, err
	}

	client, err := backend.NewClient(a.cfg.BackendURL,
		backend.WithToken(a.token),
		backend.WithTimeout(cfg.RequestTimeout),
		backend.WithLogger(logger),
	)
	if err != nil {
		a.close()
		return nil, err
	}

	a.service = dashboard.NewService(client, dashboard.Options{
		Targets:     dashboard.Targets{Weekly: cfg.WeeklyTargetHours, Monthly: cfg.MonthlyTargetHours},
		DonutRadius: cfg.DonutRadius,
		Location:    cfg.Location,
		Caches:      a.caches(ctx),
		Now:         a.now,
		Logger:      logger,
	})
	return a, nil
}

func (a *app) caches(ctx context.Context) dashboard.Caches {
	if strings.TrimSpace(a.cfg.RedisAddr) == "" {
		return dashboard.MemoryCaches(a.cfg.CacheSize, a.cfg.CacheTTL)
	}

	client := redis.NewClient(&redis.Options{Addr: a.cfg.RedisAddr})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		a.logger.WarnContext(ctx, "redis unreachable, using in-memory cache", "addr", a.cfg.RedisAddr, "error", err)
		_ = client.Close()
		return dashboard.MemoryCaches(a.cfg.CacheSize, a.cfg.CacheTTL)
	}
	a.closers = append(a.closers, func(context.Context) error { return client.Close() })
	a.logger.InfoContext(ctx, "using redis cache", "addr", a.cfg.RedisAddr)
	return dashboard.RedisCaches(client, a.cfg.CacheTTL, a.logger)
}

// withToken attaches the configured token so cache keys follow the caller.
func (a *app) withToken(ctx context.Context) context.Context {
	return logging.ContextWithLogger(backend.ContextWithToken(ctx, a.token), a.logger)
}

func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i](ctx))
	}
	a.closers = nil
	if err := errors.Join(errs...); err != nil {
		a.logger.Error("failed to release resources", "error", err)
	}
}
