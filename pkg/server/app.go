package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"SmartShop/pkg/config"
	xhttp "SmartShop/pkg/http"
	pkgkafka "SmartShop/pkg/kafka"
	applogger "SmartShop/pkg/logger"
)

// Job is a background scheduler started and stopped with the app.
type Job interface {
	Start()
	Stop()
}

// Worker is a background consumer that can fail to start and drains on stop.
type Worker interface {
	Start() error
	Stop(ctx context.Context) error
}

// Closer releases one infrastructure client on shutdown.
type Closer struct {
	Name  string
	Close func() error
}

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	handlers   []xhttp.Handler
	consumer   *pkgkafka.Consumer
	kh         pkgkafka.MessageHandler
	job        Job
	worker     Worker
	closers    []Closer
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies. consumer, kh, job and
// worker may be nil when the corresponding feature is disabled.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	handlers []xhttp.Handler,
	consumer *pkgkafka.Consumer,
	kh pkgkafka.MessageHandler,
	job Job,
	worker Worker,
	closers ...Closer,
) *App {
	return &App{
		cfg:      cfg,
		log:      log,
		handlers: handlers,
		consumer: consumer,
		kh:       kh,
		job:      job,
		worker:   worker,
		closers:  closers,
	}
}

// Server builds the HTTP server on first use.
func (a *App) Server() *xhttp.Server {
	if a.httpServer == nil {
		opts := []xhttp.ServerOption{
			xhttp.WithPort(a.cfg.Server.Port),
			xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
			xhttp.WithLogger(a.log),
		}
		if a.cfg.Metrics.Enabled {
			opts = append(opts, xhttp.WithMetrics(a.cfg.Metrics.Path, a.cfg.Server.SlowThreshold))
		}
		a.httpServer = xhttp.NewServer(a.handlers, opts...)
	}
	return a.httpServer
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := a.Server()

	// Start consumer if configured
	if a.consumer != nil && a.kh != nil {
		a.consumer.RegisterHandler(a.kh)
		if err := a.consumer.Start(); err != nil {
			a.log.Error("kafka consumer error", applogger.Error(err))
			return err
		}
		a.log.Info("kafka consumer started", applogger.String("topic", a.kh.Topic()))
	}

	if a.job != nil {
		a.job.Start()
	}

	if a.worker != nil {
		if err := a.worker.Start(); err != nil {
			a.log.Error("queue worker start error", applogger.Error(err))
			return err
		}
	}

	if err := srv.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	a.log.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	if a.job != nil {
		a.job.Stop()
	}

	if a.worker != nil {
		if err := a.worker.Stop(shutdownCtx); err != nil {
			a.log.Warn("queue worker stop error", applogger.Error(err))
		}
	}

	if a.consumer != nil {
		if err := a.consumer.Stop(shutdownCtx); err != nil {
			a.log.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	// closers run in registration order: collector before the producer it publishes to
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.log.Warn("close error", applogger.String("resource", c.Name), applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
