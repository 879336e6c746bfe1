// Package main serves the sizing API:
// - POST /v1/solve and /v1/batch solve requests
// - GET /v1/solve/stream streams enumeration progress over a websocket
// - GET /health and /metrics for operations
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"controller-sizer/internal/app"
	"controller-sizer/internal/config"
	"controller-sizer/internal/logging"
	"controller-sizer/internal/server"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(2)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
	logger.Info("shutdown complete")
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := server.New(server.Options{
		Orchestrator: a.Orchestrator,
		Metrics:      a.Metrics,
		Logger:       logger,
		SolveTimeout: cfg.Solver.Timeout,
	})
	httpServer := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		// Cancelled on shutdown so running solves stop
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	// Closed once Shutdown has returned
	stopped := make(chan struct{})
	// Closed when run returns
	done := make(chan struct{})
	defer close(done)

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		defer close(stopped)
		select {
		case sig := <-sigCh:
			logger.Info("received signal, initiating graceful shutdown", zap.Stringer("signal", sig))
		case <-done:
			return
		}
		cancel()

		go func() {
			// Wait for second signal for immediate shutdown
			select {
			case sig := <-sigCh:
				logger.Warn("received second signal, forcing immediate shutdown", zap.Stringer("signal", sig))
				os.Exit(1)
			case <-done:
			}
		}()

		shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
		defer stop()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", zap.Duration("timeout", shutdownTimeout), zap.Error(err))
			_ = httpServer.Close()
		}
	}()

	logger.Info("starting http server",
		zap.String("addr", cfg.HTTP.Addr),
		zap.String("base", cfg.Solver.Base),
		zap.Int("workers", cfg.Solver.Workers))

	err = httpServer.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	<-stopped
	return nil
}
