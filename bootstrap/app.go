package bootstrap

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kbukum/scod/di"
	"github.com/kbukum/scod/logger"
	"github.com/kbukum/scod/observability"
	"github.com/kbukum/scod/server"
)

// App hosts one di.Application with uniform lifecycle management.
type App struct {
	Name        string
	Version     string
	Cfg         *Config
	Application *di.Application
	Logger      *logger.Logger

	// Set during startup.
	Session    *di.Session
	Operations di.Operations
	Metrics    *observability.Metrics
	Server     *server.Server

	gracefulTimeout   time.Duration
	shutdownTelemetry observability.ShutdownFunc

	onStart []Hook
	onReady []Hook
	onStop  []Hook
}

// NewApp creates an application host. It applies defaults, validates the
// config and initializes the logger.
func NewApp(cfg *Config, application *di.Application, opts ...Option) (*App, error) {
	if application == nil {
		return nil, fmt.Errorf("bootstrap: application is required")
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	app := &App{
		Name:            cfg.Name,
		Version:         cfg.Version,
		Cfg:             cfg,
		Application:     application,
		gracefulTimeout: 15 * time.Second,
	}

	o := resolveOptions(opts)
	if o.gracefulTimeout != nil {
		app.gracefulTimeout = *o.gracefulTimeout
	}
	if o.logger != nil {
		app.Logger = o.logger
	} else {
		logger.Init(cfg.Logging)
		app.Logger = logger.GetGlobalLogger()
	}
	logger.Register("di", app.Logger.WithComponent("di"))
	logger.Register("config", app.Logger.WithComponent("config"))
	return app, nil
}

// Run executes the lifecycle of a long-running service:
// startup, serve, OnReady hooks, wait for a signal, graceful shutdown.
func (a *App) Run(ctx context.Context) error {
	if err := a.startup(ctx); err != nil {
		return firstError(err, a.stop())
	}

	a.Server = server.New(a.Cfg.HTTP, a.Logger)
	a.Server.ApplyMiddleware()
	a.Server.RegisterHealth(a.Name)
	a.Server.MountOperations(a.Application, a.Operations)
	if err := a.Server.Start(ctx); err != nil {
		return firstError(err, a.stop())
	}

	if err := runHooks(ctx, a.onReady); err != nil {
		return firstError(fmt.Errorf("onReady hook failed: %w", err), a.stop())
	}

	a.Logger.Info("Application ready, waiting for shutdown signal", map[string]interface{}{
		"addr": a.Server.Addr(),
	})
	a.WaitForSignal(ctx)
	return a.stop()
}

// RunTask runs task with the resolved operations instead of serving them,
// then shuts down. SIGINT and SIGTERM cancel the task's context.
func (a *App) RunTask(ctx context.Context, task func(ctx context.Context, ops di.Operations) error) error {
	if err := a.startup(ctx); err != nil {
		return firstError(err, a.stop())
	}
	if err := runHooks(ctx, a.onReady); err != nil {
		return firstError(fmt.Errorf("onReady hook failed: %w", err), a.stop())
	}

	taskCtx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	taskErr := task(taskCtx, a.Operations)
	return firstError(taskErr, a.stop())
}

// startup sets up telemetry, runs OnStart hooks and resolves the operations.
func (a *App) startup(ctx context.Context) error {
	start := time.Now()
	a.Logger.Info("Starting application", map[string]interface{}{
		"name":    a.Name,
		"version": a.Version,
	})

	metrics, shutdown, err := observability.Setup(ctx, a.Cfg.Observability)
	if err != nil {
		return fmt.Errorf("observability setup failed: %w", err)
	}
	a.Metrics, a.shutdownTelemetry = metrics, shutdown

	if err := runHooks(ctx, a.onStart); err != nil {
		return fmt.Errorf("onStart hook failed: %w", err)
	}

	sessionOpts := []di.SessionOption{
		di.WithLogger(a.Logger.WithComponent("di")),
		di.WithMetrics(a.Metrics),
	}
	if a.Cfg.Resolution.ParallelDependencies {
		sessionOpts = append(sessionOpts, di.WithParallelDependencies())
	}
	a.Session = di.NewSession(sessionOpts...)

	resolve := a.Application.Resolve
	if a.Cfg.Resolution.Lazy {
		resolve = a.Application.Lazy
	}
	ops, err := resolve(ctx, a.Cfg.Components, di.WithResolver(a.Session))
	if err != nil {
		return fmt.Errorf("resolving operations: %w", err)
	}
	a.Operations = ops

	a.Logger.Info("Operations resolved", map[string]interface{}{
		"operations":          ops.Keys(),
		"components":          a.Session.Resolved(),
		"lazy":                a.Cfg.Resolution.Lazy,
		logger.FieldSessionID: a.Session.ID(),
		logger.FieldDuration:  time.Since(start).Milliseconds(),
	})
	return nil
}

// WaitForSignal blocks until SIGINT, SIGTERM or context cancellation.
func (a *App) WaitForSignal(ctx context.Context) os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.Logger.Info("Received shutdown signal", map[string]interface{}{
			"signal": sig.String(),
		})
		return sig
	case <-ctx.Done():
		a.Logger.Info("Context canceled, shutting down")
		return nil
	}
}

// stop runs OnStop hooks, then stops the server and flushes telemetry
// within the graceful timeout.
func (a *App) stop() error {
	a.Logger.Info("Shutting down application", map[string]interface{}{
		"timeout": a.gracefulTimeout.String(),
	})

	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	var errs []error
	if err := runHooks(ctx, a.onStop); err != nil {
		errs = append(errs, err)
	}
	if a.Server != nil {
		if err := a.Server.Stop(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if a.shutdownTelemetry != nil {
		if err := a.shutdownTelemetry(ctx); err != nil {
			errs = append(errs, fmt.Errorf("telemetry shutdown: %w", err))
		}
	}

	err := stderrors.Join(errs...)
	if err != nil {
		a.Logger.Error("Shutdown completed with errors", map[string]interface{}{
			logger.FieldError: err.Error(),
		})
		return err
	}
	a.Logger.Info("Application shutdown complete")
	return nil
}

// firstError keeps the primary error and only surfaces the shutdown error when
// there is no primary one.
func firstError(primary, shutdown error) error {
	if primary != nil {
		return primary
	}
	return shutdown
}
