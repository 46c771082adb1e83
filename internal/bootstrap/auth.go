package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/artisanhub/marketplace-api/config"
	"github.com/artisanhub/marketplace-api/internal/adapters/jwtverifier"
	"github.com/artisanhub/marketplace-api/internal/adapters/oidc"
	redisadapter "github.com/artisanhub/marketplace-api/internal/adapters/redis"
	"github.com/artisanhub/marketplace-api/internal/data"
	"github.com/artisanhub/marketplace-api/internal/ports"
)

// VerifierConfig contains configuration for the token verifier.
type VerifierConfig struct {
	Auth   config.AuthConfig
	Logger *slog.Logger
}

// BuildVerifier creates the token verifier selected by AUTH_TOKEN_VERIFIER.
// Unlike optional integrations, a missing or unusable key is a startup error: the service
// must not accept requests it cannot authenticate.
//
//nolint:ireturn // the concrete verifier is chosen at runtime.
func BuildVerifier(ctx context.Context, cfg VerifierConfig) (ports.TokenVerifier, error) {
	keyPEM, err := loadPublicKey(cfg.Auth)
	if err != nil {
		return nil, err
	}

	switch cfg.Auth.Verifier {
	case config.VerifierOIDC:
		if cfg.Auth.Leeway > 0 && cfg.Logger != nil {
			cfg.Logger.WarnContext(ctx, "AUTH_TOKEN_LEEWAY is ignored by the oidc verifier")
		}
		v, verr := oidc.NewVerifier(ctx, oidc.VerifierConfig{
			Issuer:       cfg.Auth.Issuer,
			Audience:     cfg.Auth.Audience,
			Algorithm:    cfg.Auth.Algorithm,
			PublicKeyPEM: keyPEM,
			DiscoveryURL: cfg.Auth.DiscoveryURL,
		})
		if verr != nil {
			return nil, fmt.Errorf("build oidc verifier: %w", verr)
		}
		return v, nil

	case config.VerifierJWT, "":
		if len(keyPEM) == 0 {
			return nil, errors.New("jwt verifier requires AUTH_TOKEN_PUBLIC_KEY or AUTH_TOKEN_PUBLIC_KEY_FILE")
		}
		v, verr := jwtverifier.New(jwtverifier.Config{
			PublicKeyPEM: keyPEM,
			Algorithm:    cfg.Auth.Algorithm,
			Issuer:       cfg.Auth.Issuer,
			Audience:     cfg.Auth.Audience,
			Leeway:       cfg.Auth.Leeway,
		})
		if verr != nil {
			return nil, fmt.Errorf("build jwt verifier: %w", verr)
		}
		return v, nil

	default:
		return nil, fmt.Errorf("unsupported token verifier %q", cfg.Auth.Verifier)
	}
}

// loadPublicKey returns the inline PEM, or reads PublicKeyFile when no inline key is set.
// Both empty yields nil, nil.
func loadPublicKey(cfg config.AuthConfig) ([]byte, error) {
	if cfg.PublicKey != "" {
		return []byte(cfg.PublicKey), nil
	}
	if cfg.PublicKeyFile == "" {
		return nil, nil
	}
	b, err := os.ReadFile(cfg.PublicKeyFile)
	if err != nil {
		return nil, fmt.Errorf("read token public key: %w", err)
	}
	return b, nil
}

// SessionStores bundles the views of the configured session backend.
type SessionStores struct {
	Store ports.SessionStore
	Admin ports.SessionAdminStore
	// Purger is nil for backends that expire records on their own.
	Purger ports.ExpiredSessionPurger
}

// SessionStoreConfig contains the dependencies for BuildSessionStores.
type SessionStoreConfig struct {
	Kind        config.SessionStoreKind
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Redis       config.RedisConfig
}

// BuildSessionStores creates the session store selected by AUTH_SESSION_STORE.
func BuildSessionStores(cfg SessionStoreConfig) (SessionStores, error) {
	switch cfg.Kind {
	case config.SessionStoreRedis:
		if cfg.RedisClient == nil {
			return SessionStores{}, errors.New("redis session store requires a redis client")
		}
		store := redisadapter.NewSessionStore(cfg.RedisClient, redisadapter.SessionStoreOptions{
			SessionPrefix: cfg.Redis.SessionPrefix,
			UserPrefix:    cfg.Redis.UserPrefix,
			Retention:     cfg.Redis.Retention,
		})
		return SessionStores{Store: store, Admin: store}, nil

	case config.SessionStorePostgres, "":
		if cfg.DB == nil {
			return SessionStores{}, errors.New("postgres session store requires a database")
		}
		repo := data.NewSessionRepo(cfg.DB)
		return SessionStores{Store: repo, Admin: repo, Purger: repo}, nil

	default:
		return SessionStores{}, fmt.Errorf("unsupported session store %q", cfg.Kind)
	}
}
