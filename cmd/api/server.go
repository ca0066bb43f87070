package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

// Run serves the API, and the metrics endpoint when enabled, until ctx is
// cancelled or a server fails. Servers are shut down gracefully in both cases.
func (d *Dependencies) Run(ctx context.Context) error {
	cfg := d.Config

	servers := []*http.Server{{
		Addr:              cfg.Server.Addr(),
		Handler:           d.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       time.Minute,
		WriteTimeout:      5 * time.Minute,
	}}
	if cfg.Observability.MetricsEnabled {
		servers = append(servers, &http.Server{
			Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Observability.MetricsPort),
			Handler:           d.MetricsRoutes(),
			ReadHeaderTimeout: 10 * time.Second,
		})
	}

	if err := d.Scheduler.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		g.Go(func() error {
			d.Logger.Info("starting server", slog.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server %s failed: %w", srv.Addr, err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		d.Logger.Info("shutting down servers")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		var errs []error
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("failed to shut down %s: %w", srv.Addr, err))
			}
		}
		return errors.Join(errs...)
	})

	err := g.Wait()
	d.Logger.Info("servers stopped")
	return err
}
