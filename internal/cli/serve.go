package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"zuschusscheck-web/internal/bootstrap"
	"zuschusscheck-web/internal/shared/config"
	"zuschusscheck-web/internal/shared/server"
	"zuschusscheck-web/internal/shared/telemetry"
)

const shutdownTimeout = 15 * time.Second

type serveOptions struct {
	port string
}

// NewServeCommand runs the HTTP server until SIGINT or SIGTERM.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			applyOverrides(&cfg, rootOpts, opts)

			if err := telemetry.Init(cfg.LogLevel, cfg.LogFormat); err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer telemetry.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg)
		},
	}

	cmd.Flags().StringVarP(&opts.port, "port", "p", "", "listen port (overrides PORT)")

	return cmd
}

func applyOverrides(cfg *config.Config, root *RootOptions, opts *serveOptions) {
	if root != nil {
		if v := strings.TrimSpace(root.LogLevel); v != "" {
			cfg.LogLevel = v
		}
		if v := strings.TrimSpace(root.LogFormat); v != "" {
			cfg.LogFormat = v
		}
	}
	if opts != nil {
		if v := strings.TrimSpace(opts.port); v != "" {
			cfg.Port = v
		}
	}
}

func serve(ctx context.Context, cfg config.Config) error {
	app, err := bootstrap.Build(ctx, cfg)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			telemetry.Warn("server.close_failed", map[string]any{"error": err})
		}
	}()

	srv := &http.Server{
		Addr:              server.Addr(cfg.Port),
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
		// Uploads wait on the backend analysis.
		WriteTimeout: cfg.BackendTimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		telemetry.Info("server.start", map[string]any{
			"addr":    srv.Addr,
			"env":     cfg.Env,
			"backend": cfg.APIOrigin,
			"store":   cfg.ResultStore,
			"version": Version,
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	telemetry.Info("server.shutdown", map[string]any{"addr": srv.Addr})
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
