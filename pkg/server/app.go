package server

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	xhttp "StockPull/pkg/http"
	applogger "StockPull/pkg/logger"
)

// Resource is closed on shutdown, after the HTTP server has drained.
type Resource struct {
	Name   string
	Closer io.Closer
}

// App encapsulates the application lifecycle.
type App struct {
	httpServer *xhttp.Server
	log        *applogger.Logger
	resources  []Resource
}

// New creates an App serving httpServer. Resources are closed in reverse order.
func New(httpServer *xhttp.Server, log *applogger.Logger, resources ...Resource) *App {
	return &App{httpServer: httpServer, log: log, resources: resources}
}

// Run starts the HTTP server and blocks until SIGINT or SIGTERM.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext starts the HTTP server and blocks until ctx is done.
func (a *App) RunContext(ctx context.Context) error {
	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}

	<-ctx.Done()
	a.log.Info("shutdown signal received")
	return a.shutdown()
}

func (a *App) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.httpServer.ShutdownTimeout())
	defer cancel()

	var errs []error
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
		errs = append(errs, err)
	}

	// flush aggregated logs while the publisher is still open
	a.log.RemoveCollector()

	for i := len(a.resources) - 1; i >= 0; i-- {
		r := a.resources[i]
		if r.Closer == nil {
			continue
		}
		if err := r.Closer.Close(); err != nil {
			a.log.Warn("close error", applogger.String("resource", r.Name), applogger.Error(err))
			errs = append(errs, err)
		}
	}

	a.log.Info("shutdown complete")
	return errors.Join(errs...)
}
