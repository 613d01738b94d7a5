package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/jonwraymond/juleskeys/cache"
	"github.com/jonwraymond/juleskeys/health"
	"github.com/jonwraymond/juleskeys/observe"
)

const shutdownTimeout = 5 * time.Second

func (a *app) serveCmd() *cobra.Command {
	var (
		addr     string
		cacheTTL time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve credential health checks and Prometheus metrics",
		Long: `Serve HTTP endpoints for credential health:

  /healthz         liveness
  /readyz          readiness (runs the credential checks)
  /health          detailed JSON report
  /health/<check>  a single check
  /metrics         Prometheus metrics

Metrics are exported through Prometheus unless another exporter is configured.
With --cache-ttl, health answers are reused for that long (at most one minute).`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				a.cfg.Addr = addr
			}
			if cmd.Flags().Changed("cache-ttl") {
				a.cfg.CacheTTL = cacheTTL
			}
			if !a.cfg.Observe.Metrics.Enabled || a.cfg.Observe.Metrics.Exporter == "" || a.cfg.Observe.Metrics.Exporter == "none" {
				a.cfg.Observe.Metrics.Enabled = true
				a.cfg.Observe.Metrics.Exporter = "prometheus"
			}

			ctx := cmd.Context()
			if err := a.start(ctx); err != nil {
				return err
			}

			ln, err := net.Listen("tcp", a.cfg.Addr)
			if err != nil {
				return fmt.Errorf("listen %s: %w", a.cfg.Addr, err)
			}
			return a.serve(ctx, ln)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", defaultAddr, "listen address")
	cmd.Flags().DurationVar(&cacheTTL, "cache-ttl", 0, "reuse health responses for this long (0 disables)")
	return cmd
}

// serveMux wires the health and metrics handlers. Health responses go
// through the response cache; metrics are always live.
func (a *app) serveMux() *http.ServeMux {
	checks := http.NewServeMux()
	health.RegisterHandlers(checks, a.aggregator())
	cached := cache.Handler(cache.NewMemoryCache(), nil, cache.NewPolicy(a.cfg.CacheTTL), checks)

	mux := http.NewServeMux()
	for _, pattern := range []string{"/healthz", "/readyz", "/health", "/health/"} {
		mux.Handle(pattern, cached)
	}
	mux.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{Registry: a.registry}))
	return mux
}

// serve runs the HTTP server on ln until ctx is cancelled.
func (a *app) serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           a.serveMux(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	a.logger.Info(ctx, "serving credential health", observe.Field{Key: "addr", Value: ln.Addr().String()})

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	a.logger.Info(shutdownCtx, "server stopped")
	return nil
}
