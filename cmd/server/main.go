package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"credverify/internal/platform/config"
	"credverify/internal/platform/httpserver"
	"credverify/internal/platform/logger"
	"credverify/internal/verification/providers/registry"
)

// main wires dependencies, serves HTTP and runs the background workers until
// a shutdown signal arrives.
func main() {
	cfg, err := config.FromEnv(registrySourceIDs()...)
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log.Format, cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	backends, err := buildInfra(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer backends.Close()

	application, err := buildApp(ctx, cfg, backends, log)
	if err != nil {
		return err
	}
	defer application.Close()

	srv := httpserver.New(cfg.Server.Addr, application.router, cfg.Server.VerifyTimeout)

	if err := application.sweeper.Start(); err != nil {
		return err
	}
	defer application.sweeper.Stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting credverify", "addr", cfg.Server.Addr, "backends", backends.Describe())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if application.notifyWorker != nil {
		g.Go(func() error {
			if err := application.notifyWorker.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.Server.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down", "timeout", cfg.Server.ShutdownTimeout.String())
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func registrySourceIDs() []string {
	catalog := registry.Catalog()
	ids := make([]string, len(catalog))
	for i, c := range catalog {
		ids[i] = c.ID
	}
	return ids
}
