package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/artisanhub/marketplace-api/config"
	"github.com/artisanhub/marketplace-api/internal/core"
	"github.com/artisanhub/marketplace-api/internal/ports"
	"github.com/artisanhub/marketplace-api/internal/service"
)

// ServiceContainer holds the wired auth services.
type ServiceContainer struct {
	Cache     *core.SessionCache
	Validator *service.SessionValidator
	Admin     *service.SessionAdminService
	Sweeper   *service.SessionSweeper

	// Janitor is nil unless the session-janitor service is enabled.
	Janitor       *service.SessionJanitor
	Observability ObservabilityContainer
}

// ServiceDeps are the infrastructure handles NewServices wires into the services.
type ServiceDeps struct {
	Config      *config.AppConfig     // Required
	Verifier    ports.TokenVerifier   // Required
	DB          *sql.DB               // Required for the postgres session store
	RedisClient redis.UniversalClient // Required for the redis session store
	Clock       core.TimeProvider     // Optional
	Logger      *slog.Logger          // Optional
}

// NewServices wires the session cache, validator, admin service and background jobs.
func NewServices(deps *ServiceDeps) (*ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return nil, errors.New("service deps with config are required")
	}
	if deps.Verifier == nil {
		return nil, errors.New("token verifier is required")
	}
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	cache := core.NewSessionCache(core.SessionCacheConfig{
		TTL:     cfg.SessionCache.TTL,
		MaxSize: cfg.SessionCache.MaxSize,
	})
	obs := BuildObservability(logger, cfg.Observability, cache)

	stores, err := BuildSessionStores(SessionStoreConfig{
		Kind:        cfg.Auth.SessionStore,
		DB:          deps.DB,
		RedisClient: deps.RedisClient,
		Redis:       cfg.Redis,
	})
	if err != nil {
		return nil, err
	}

	validator, err := service.NewSessionValidator(service.SessionValidatorOptions{
		Verifier:     deps.Verifier,
		Store:        stores.Store,
		Cache:        cache,
		Clock:        deps.Clock,
		TouchTimeout: cfg.SessionCache.TouchTimeout,
		Logger:       logger,
		Metrics:      obs.Sink(),
	})
	if err != nil {
		return nil, fmt.Errorf("create session validator: %w", err)
	}

	admin, err := service.NewSessionAdminService(service.SessionAdminServiceOptions{
		Store:  stores.Admin,
		Cache:  cache,
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create session admin: %w", err)
	}

	sweeper, err := service.NewSessionSweeper(service.SessionSweeperOptions{
		Cache:    cache,
		Interval: cfg.SessionCache.SweepInterval,
		Clock:    deps.Clock,
		Logger:   logger,
		Metrics:  obs.Sink(),
	})
	if err != nil {
		return nil, fmt.Errorf("create session sweeper: %w", err)
	}

	container := &ServiceContainer{
		Cache:         cache,
		Validator:     validator,
		Admin:         admin,
		Sweeper:       sweeper,
		Observability: obs,
	}

	if cfg.IsSessionJanitorEnabled() && stores.Purger != nil {
		janitor, jerr := service.NewSessionJanitor(service.SessionJanitorOptions{
			Store:     stores.Purger,
			Interval:  cfg.Janitor.Interval,
			Retention: cfg.Janitor.Retention,
			Clock:     deps.Clock,
			Logger:    logger,
			Metrics:   obs.Sink(),
		})
		if jerr != nil {
			return nil, fmt.Errorf("create session janitor: %w", jerr)
		}
		container.Janitor = janitor
	}

	return container, nil
}

// ServiceOrchestrationConfig contains what RunServicesWithShutdown needs.
type ServiceOrchestrationConfig struct {
	Config   *config.AppConfig
	Services *ServiceContainer
	Logger   *slog.Logger
}

// RunServicesWithShutdown runs every enabled service until SIGINT/SIGTERM or the first failure.
// In-flight session touches are drained before it returns.
func RunServicesWithShutdown(ctx context.Context, cfg *ServiceOrchestrationConfig) error {
	if cfg == nil || cfg.Config == nil || cfg.Services == nil {
		return errors.New("service orchestration config is incomplete")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	enabled, err := cfg.Config.GetEnabledServices()
	if err != nil {
		return fmt.Errorf("determine enabled services: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, gctx := errgroup.WithContext(ctx)

	if enabled[config.ServiceModeHTTP] {
		server, serr := NewHTTPServer(HTTPServerConfig{Config: cfg.Config, Services: cfg.Services, Logger: logger})
		if serr != nil {
			return serr
		}
		group.Go(func() error { return ServeHTTP(gctx, server, cfg.Config.HTTP, logger) })
		group.Go(func() error { return cfg.Services.Sweeper.Run(gctx) })
	}

	if janitor := cfg.Services.Janitor; janitor != nil {
		group.Go(func() error { return janitor.Run(gctx) })
	}

	err = group.Wait()

	cfg.Services.Validator.Wait()
	if cerr := cfg.Services.Observability.Close(); cerr != nil {
		logger.Warn("close metrics sink", "error", cerr)
	}

	if err != nil {
		return err
	}
	logger.Info("all services stopped")
	return nil
}
