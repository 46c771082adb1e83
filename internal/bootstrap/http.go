package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/artisanhub/marketplace-api/config"
	httpx "github.com/artisanhub/marketplace-api/internal/http"
)

// HTTPServerConfig contains configuration for the HTTP server.
type HTTPServerConfig struct {
	Config   *config.AppConfig
	Services *ServiceContainer
	Logger   *slog.Logger
}

// NewHTTPServer builds the HTTP server. It does not start listening.
func NewHTTPServer(cfg HTTPServerConfig) (*http.Server, error) {
	if cfg.Config == nil || cfg.Services == nil {
		return nil, errors.New("http server requires config and services")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	routes := httpx.RouterServices{
		Validator:  cfg.Services.Validator,
		Admin:      cfg.Services.Admin,
		CookieName: cfg.Config.Auth.CookieName,
		Logger:     logger,
	}
	if reg := cfg.Services.Observability.Registry; reg != nil {
		routes.Metrics = promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
		routes.MetricsPath = cfg.Config.Observability.Prometheus.Path
	}

	httpCfg := cfg.Config.HTTP
	return &http.Server{
		Addr:              httpCfg.Addr,
		Handler:           httpx.NewRouter(routes),
		ReadHeaderTimeout: httpCfg.ReadHeaderTimeout,
		ReadTimeout:       httpCfg.ReadTimeout,
		WriteTimeout:      httpCfg.WriteTimeout,
		IdleTimeout:       httpCfg.IdleTimeout,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}, nil
}

// ServeHTTP runs server until ctx is done, then shuts it down gracefully.
// Returns nil after a clean shutdown.
func ServeHTTP(ctx context.Context, server *http.Server, cfg config.HTTPConfig, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	errCh := make(chan error, 1)
	go func() {
		logger.InfoContext(ctx, "starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.InfoContext(ctx, "shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	logger.InfoContext(ctx, "HTTP server stopped")
	return nil
}
