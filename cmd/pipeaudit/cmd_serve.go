package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/okian/pipeaudit/internal/adapters/http/api"
	"github.com/okian/pipeaudit/internal/app"
	"github.com/okian/pipeaudit/internal/config"
	"github.com/okian/pipeaudit/pkg/logger"
	"github.com/okian/pipeaudit/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 30 * time.Second
	writeTimeout      = 60 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

var serveFlags struct {
	configPath string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the audit as an HTTP endpoint",
	Long: `Serve exposes POST /audit (multipart CSV upload, JSON report response),
GET /healthz, and Prometheus metrics on /metrics.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveFlags.configPath, "config", "", "Path to YAML config file")
}

func runServe(cmd *cobra.Command, _ []string) error {
	if err := logger.Init(); err != nil {
		return err
	}
	log := logger.Get()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx, serveFlags.configPath)
	if err != nil {
		return err
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.Error(err))
	}
	metrics.Initialize(metrics.WithMetricsEnabled(cfg.MetricsEnabled))

	resolved, err := cfg.Resolve()
	if err != nil {
		return fmt.Errorf("configuration: %w", err)
	}

	// One orchestrator serves all requests: runs share no state.
	auditor := app.New(resolved,
		app.WithQualityRequiredFields(cfg.QualityRequiredFields),
		app.WithLeadSourceNormalization(cfg.NormalizeByLeadSource),
	)

	mux := http.NewServeMux()
	api.NewServer(auditor).Register(ctx, mux)
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info(ctx, "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
