package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/pmtrack/internal/config"
	"git.home.luguber.info/inful/pmtrack/internal/logfields"
	"git.home.luguber.info/inful/pmtrack/internal/metrics"
	"git.home.luguber.info/inful/pmtrack/internal/notify"
	"git.home.luguber.info/inful/pmtrack/internal/planner"
	"git.home.luguber.info/inful/pmtrack/internal/runner"
	"git.home.luguber.info/inful/pmtrack/internal/server/handlers"
	"git.home.luguber.info/inful/pmtrack/internal/server/httpserver"
	"git.home.luguber.info/inful/pmtrack/internal/store"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"pmtrack.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Serve struct {
		Watch bool `help:"Reload configuration on file changes"`
	} `cmd:"" help:"Start the maintenance tracking service"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Write a starter configuration file"`
}

func main() {
	ctx := kong.Parse(&CLI)

	switch ctx.Command() {
	case "serve":
		if err := runServe(); err != nil {
			slog.Error("service failed", logfields.Error(err))
			os.Exit(1)
		}
	case "init":
		if err := runInit(CLI.Config, CLI.Init.Force); err != nil {
			slog.Error("init failed", logfields.Error(err))
			os.Exit(1)
		}
	}
}

func setupLogging(cfg *config.Config) {
	level := slog.LevelInfo
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if CLI.Verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func runServe() error {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return err
	}
	setupLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(cfg.Storage.Path)
	if err != nil {
		return err
	}
	defer st.Close()
	slog.Info("storage opened", "path", cfg.Storage.Path)

	var notifier notify.Notifier = notify.LogNotifier{}
	if cfg.Notify.Enabled {
		n, err := notify.NewNATSNotifier(cfg.Notify.NATSURL, cfg.Notify.Subject)
		if err != nil {
			return err
		}
		notifier = n
	}
	defer notifier.Close()

	var (
		recorder metrics.Recorder = metrics.NoopRecorder{}
		registry *prom.Registry
	)
	if cfg.Metrics.Enabled {
		registry = prom.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(registry)
	}

	log := slog.Default()
	passRunner := runner.New(st, notifier, recorder, log)

	if cfg.Runner.Enabled {
		sched, err := runner.NewScheduler(passRunner, cfg.Runner.Hour, cfg.Runner.Minute, log)
		if err != nil {
			return err
		}
		sched.Start()
		defer func() {
			if err := sched.Stop(); err != nil {
				slog.Warn("scheduler shutdown failed", logfields.Error(err))
			}
		}()
		slog.Info("daily pass scheduled",
			slog.Int("hour", cfg.Runner.Hour),
			slog.Int("minute", cfg.Runner.Minute))
	}

	api := handlers.NewAPI(
		planner.NewProgramService(st, log),
		planner.NewPropertyService(st, log),
		planner.NewAssignmentResolver(st, log),
		planner.NewChecklistService(st, log),
		passRunner,
		log,
	)
	srv := httpserver.New(api, httpserver.Options{
		Addr:     cfg.Server.Addr,
		Log:      log,
		Recorder: recorder,
		Registry: registry,
	})

	if CLI.Serve.Watch {
		// Only logging settings apply without a restart; the watcher keeps
		// the rest of the config for the next boot.
		watcher, err := config.NewWatcher(CLI.Config, func(newCfg *config.Config) {
			setupLogging(newCfg)
		}, log)
		if err != nil {
			return err
		}
		if err := watcher.Start(ctx); err != nil {
			return err
		}
		defer watcher.Stop()
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("API server listening", "addr", cfg.Server.Addr)
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

const starterConfig = `server:
  addr: ":8080"

storage:
  path: pmtrack.db

runner:
  enabled: true
  hour: 6
  minute: 0

notify:
  enabled: false
  nats_url: nats://localhost:4222
  subject: pmtrack.due

metrics:
  enabled: false

logging:
  level: info
  format: text
`

func runInit(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := os.WriteFile(path, []byte(starterConfig), 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	slog.Info("configuration written", "path", path)
	return nil
}
