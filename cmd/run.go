package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/danielolaszy/prfill/internal/logging"
)

// runCmd runs the reconciliation loop until the process is interrupted.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fill pull request descriptions on a fixed interval",
	Long: `Run checks the tracked user's open pull requests immediately and then
once per interval (5 minutes by default) until interrupted.

A failure on one pull request is logged and does not stop the others; a
failure to list pull requests is logged and retried on the next interval.

When METRICS_ADDR is set, Prometheus metrics are served on /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		engine, githubClient, err := newEngine(cmd, cfg)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		checkCtx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
		if login, err := githubClient.AuthenticatedUser(checkCtx); err != nil {
			logging.Warn("could not verify github token, continuing", "error", err)
		} else {
			logging.Info("github authentication successful", "username", login)
		}
		cancel()

		g, ctx := errgroup.WithContext(ctx)

		g.Go(func() error {
			return engine.Run(ctx)
		})

		if cfg.MetricsAddr != "" {
			server := newMetricsServer(cfg.MetricsAddr)
			g.Go(func() error {
				logging.Info("serving metrics", "addr", cfg.MetricsAddr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return server.Shutdown(shutdownCtx)
			})
		}

		if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}

		logging.Info("shutdown complete")
		return nil
	},
}

func newMetricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(logging.GetLogger().Handler(), slog.LevelError),
	}
}
