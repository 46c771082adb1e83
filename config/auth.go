package config

import (
	"fmt"
	"strings"
	"time"
)

// VerifierKind selects the token verifier implementation.
type VerifierKind string

const (
	// VerifierJWT verifies tokens with golang-jwt against a pinned public key.
	VerifierJWT VerifierKind = "jwt"
	// VerifierOIDC verifies tokens with go-oidc, against a pinned key or a discovery document.
	VerifierOIDC VerifierKind = "oidc"
)

// UnmarshalText implements encoding.TextUnmarshaler for VerifierKind.
func (k *VerifierKind) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "jwt", "oidc":
		*k = VerifierKind(v)
		return nil
	default:
		return fmt.Errorf("invalid verifier: %q (valid options: jwt, oidc)", v)
	}
}

// SessionStoreKind selects the durable session store.
type SessionStoreKind string

const (
	SessionStorePostgres SessionStoreKind = "postgres"
	SessionStoreRedis    SessionStoreKind = "redis"
)

// UnmarshalText implements encoding.TextUnmarshaler for SessionStoreKind.
func (k *SessionStoreKind) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "postgres", "redis":
		*k = SessionStoreKind(v)
		return nil
	default:
		return fmt.Errorf("invalid session store: %q (valid options: postgres, redis)", v)
	}
}

// AuthConfig groups token verification settings.
type AuthConfig struct {
	Verifier VerifierKind `env:"AUTH_TOKEN_VERIFIER" envDefault:"jwt"`

	// PublicKey is a PEM-encoded verification key. PublicKeyFile is read when PublicKey is empty.
	PublicKey     string `env:"AUTH_TOKEN_PUBLIC_KEY"`
	PublicKeyFile string `env:"AUTH_TOKEN_PUBLIC_KEY_FILE"`

	// Algorithm is one of EdDSA, RS256, ES256.
	Algorithm string        `env:"AUTH_TOKEN_ALGORITHM" envDefault:"EdDSA"`
	Issuer    string        `env:"AUTH_TOKEN_ISSUER"`
	Audience  string        `env:"AUTH_TOKEN_AUDIENCE"`
	Leeway    time.Duration `env:"AUTH_TOKEN_LEEWAY"    envDefault:"0s"`

	// DiscoveryURL is only used by the oidc verifier when no public key is configured.
	DiscoveryURL string `env:"AUTH_OIDC_DISCOVERY_URL"`

	CookieName   string           `env:"AUTH_COOKIE_NAME"   envDefault:"access_token"`
	SessionStore SessionStoreKind `env:"AUTH_SESSION_STORE" envDefault:"postgres"`
}

// Sanitize applies guardrails to auth configuration values.
func (c *AuthConfig) Sanitize() {
	c.PublicKeyFile = strings.TrimSpace(c.PublicKeyFile)
	c.Issuer = strings.TrimSpace(c.Issuer)
	c.Audience = strings.TrimSpace(c.Audience)
	c.DiscoveryURL = strings.TrimSpace(c.DiscoveryURL)
	if c.Algorithm = strings.TrimSpace(c.Algorithm); c.Algorithm == "" {
		c.Algorithm = "EdDSA"
	}
	if c.Leeway < 0 {
		c.Leeway = 0
	}
	if c.CookieName = strings.TrimSpace(c.CookieName); c.CookieName == "" {
		c.CookieName = "access_token"
	}
	if c.Verifier == "" {
		c.Verifier = VerifierJWT
	}
	if c.SessionStore == "" {
		c.SessionStore = SessionStorePostgres
	}
}

const (
	DefaultSessionCacheTTL     = 5 * time.Minute
	DefaultSessionCacheMaxSize = 1000
	DefaultSweepInterval       = 10 * time.Minute
	DefaultTouchTimeout        = 5 * time.Second
)

// SessionCacheConfig controls the in-process session cache and its sweeper.
type SessionCacheConfig struct {
	TTL           time.Duration `env:"SESSION_CACHE_TTL"      envDefault:"5m"`
	MaxSize       int           `env:"SESSION_CACHE_MAX_SIZE" envDefault:"1000"`
	SweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" envDefault:"10m"`
	TouchTimeout  time.Duration `env:"SESSION_TOUCH_TIMEOUT"  envDefault:"5s"`
}

// Sanitize replaces non-positive values with defaults.
func (c *SessionCacheConfig) Sanitize() {
	if c.TTL <= 0 {
		c.TTL = DefaultSessionCacheTTL
	}
	if c.MaxSize <= 0 {
		c.MaxSize = DefaultSessionCacheMaxSize
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = DefaultSweepInterval
	}
	if c.TouchTimeout <= 0 {
		c.TouchTimeout = DefaultTouchTimeout
	}
}
