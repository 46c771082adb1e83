package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/artisanhub/marketplace-api/internal/core"
	domainauth "github.com/artisanhub/marketplace-api/internal/domain/auth"
	"github.com/artisanhub/marketplace-api/internal/observability/metrics"
	"github.com/artisanhub/marketplace-api/internal/observability/statsd"
	"github.com/artisanhub/marketplace-api/internal/ports"
)

// DefaultTouchTimeout bounds the detached last-used update.
const DefaultTouchTimeout = 5 * time.Second

// SessionValidatorOptions groups dependencies for SessionValidator.
type SessionValidatorOptions struct {
	Verifier     ports.TokenVerifier // Required
	Store        ports.SessionStore  // Required
	Cache        *core.SessionCache  // Required
	Clock        core.TimeProvider   // Optional: defaults to the system clock
	TouchTimeout time.Duration       // Optional: defaults to DefaultTouchTimeout
	Logger       *slog.Logger        // Optional
	Metrics      statsd.Sink         // Optional
}

// SessionValidator turns a raw bearer token into an authenticated principal.
//
// Pipeline: verify signature and expiry, validate the claim schema, resolve the session
// from cache or store, run the ordered validity checks, then fire a detached touch.
type SessionValidator struct {
	verifier     ports.TokenVerifier
	store        ports.SessionStore
	cache        *core.SessionCache
	clock        core.TimeProvider
	touchTimeout time.Duration
	logger       *slog.Logger
	metrics      statsd.Sink

	touchMu  sync.Mutex
	draining bool
	touches  sync.WaitGroup
}

// NewSessionValidator constructs a SessionValidator.
func NewSessionValidator(opts SessionValidatorOptions) (*SessionValidator, error) {
	if opts.Verifier == nil {
		return nil, errors.New("TokenVerifier is required")
	}
	if opts.Store == nil {
		return nil, errors.New("SessionStore is required")
	}
	if opts.Cache == nil {
		return nil, errors.New("SessionCache is required")
	}

	clock := opts.Clock
	if clock == nil {
		clock = core.RealTimeProvider{}
	}
	touchTimeout := opts.TouchTimeout
	if touchTimeout <= 0 {
		touchTimeout = DefaultTouchTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &SessionValidator{
		verifier:     opts.Verifier,
		store:        opts.Store,
		cache:        opts.Cache,
		clock:        clock,
		touchTimeout: touchTimeout,
		logger:       logger.With("component", "session_validator"),
		metrics:      opts.Metrics,
	}, nil
}

// Validate runs the pipeline at the current clock time.
func (v *SessionValidator) Validate(ctx context.Context, rawToken string) (*domainauth.Principal, error) {
	return v.ValidateAt(ctx, rawToken, v.clock.Now())
}

// ValidateAt runs the pipeline as of now.
//
// Failures are *domainauth.Error values except for session store infrastructure errors,
// which are returned wrapped and must also be treated as unauthenticated.
func (v *SessionValidator) ValidateAt(
	ctx context.Context,
	rawToken string,
	now time.Time,
) (*domainauth.Principal, error) {
	start := time.Now()
	p, source, err := v.validate(ctx, rawToken, now)

	m := metrics.ValidationMetric{Source: source, Duration: time.Since(start), Err: err}
	if err != nil {
		m.Result = metrics.ResultError
		m.Reason = string(domainauth.ReasonOf(err))
		v.logger.DebugContext(ctx, "session validation failed", "reason", m.Reason, "error", err)
	} else {
		m.Result = metrics.ResultSuccess
	}
	metrics.EmitValidation(v.metrics, m)

	return p, err
}

func (v *SessionValidator) validate(
	ctx context.Context,
	rawToken string,
	now time.Time,
) (*domainauth.Principal, string, error) {
	if rawToken == "" {
		return nil, "", domainauth.ErrNoToken
	}

	raw, err := v.verifier.Verify(ctx, rawToken)
	if err != nil {
		if domainauth.ReasonOf(err) == domainauth.ReasonBadToken {
			return nil, "", err
		}
		return nil, "", domainauth.BadToken(domainauth.VerifyMalformed, err)
	}

	claims, err := domainauth.ParseClaims(raw)
	if err != nil {
		return nil, "", domainauth.BadToken(domainauth.VerifyMalformed, err)
	}

	rec, source, err := v.resolveSession(ctx, claims.SessionID, now)
	if err != nil {
		return nil, source, err
	}

	for _, check := range sessionChecks {
		if check.fails(rec, claims, now) {
			v.cache.Invalidate(claims.SessionID)
			return nil, source, check.err
		}
	}

	v.touchAsync(ctx, claims.SessionID, now)

	return domainauth.NewPrincipal(rec), source, nil
}

// resolveSession returns a usable cached snapshot or falls back to the store.
// Only sessions that are neither revoked nor disabled are ever cached.
func (v *SessionValidator) resolveSession(
	ctx context.Context,
	sessionID string,
	now time.Time,
) (domainauth.SessionRecord, string, error) {
	if entry, ok := v.cache.Lookup(sessionID, now); ok {
		return entry.Record, metrics.SourceCache, nil
	}

	gen := v.cache.Generation()
	rec, err := v.store.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ports.ErrSessionNotFound) {
			v.cache.Invalidate(sessionID)
			return domainauth.SessionRecord{}, metrics.SourceStore, domainauth.ErrSessionNotFound
		}
		return domainauth.SessionRecord{}, metrics.SourceStore, domainauth.SessionLookupFailed(err)
	}

	if !rec.IsRevoked && !rec.User.IsDisabled {
		v.cache.PutIfGeneration(sessionID, rec, now, gen)
	}
	return rec, metrics.SourceStore, nil
}

// touchAsync records last-used time on a detached goroutine. The request never waits on it,
// it is never retried, and its failure is only logged. Once Wait has been called new touches
// are dropped.
func (v *SessionValidator) touchAsync(ctx context.Context, sessionID string, now time.Time) {
	v.touchMu.Lock()
	if v.draining {
		v.touchMu.Unlock()
		v.logger.DebugContext(ctx, "skipping session touch while draining", "session_id", sessionID)
		return
	}
	v.touches.Add(1)
	v.touchMu.Unlock()

	detached := context.WithoutCancel(ctx)
	go func() {
		defer v.touches.Done()
		tctx, cancel := context.WithTimeout(detached, v.touchTimeout)
		defer cancel()
		if err := v.store.Touch(tctx, sessionID, now); err != nil {
			v.logger.WarnContext(tctx, "session touch failed", "session_id", sessionID, "error", err)
			metrics.EmitTouchFailure(v.metrics, err)
		}
	}()
}

// Wait stops accepting touches and blocks until every in-flight one has finished.
// Call it during shutdown; validation keeps working afterwards, only touches are dropped.
func (v *SessionValidator) Wait() {
	v.touchMu.Lock()
	v.draining = true
	v.touchMu.Unlock()
	v.touches.Wait()
}

// sessionCheck is one validity predicate. fails reports whether the session must be rejected.
type sessionCheck struct {
	err   *domainauth.Error
	fails func(rec domainauth.SessionRecord, claims domainauth.TokenClaims, now time.Time) bool
}

// sessionChecks run in this order and stop at the first failure.
var sessionChecks = []sessionCheck{
	{
		err: domainauth.ErrSessionRevoked,
		fails: func(rec domainauth.SessionRecord, _ domainauth.TokenClaims, _ time.Time) bool {
			return rec.IsRevoked
		},
	},
	{
		err: domainauth.ErrSessionExpired,
		fails: func(rec domainauth.SessionRecord, _ domainauth.TokenClaims, now time.Time) bool {
			return rec.ExpiresAt.Before(now)
		},
	},
	{
		err: domainauth.ErrUserDisabled,
		fails: func(rec domainauth.SessionRecord, _ domainauth.TokenClaims, _ time.Time) bool {
			return rec.User.IsDisabled
		},
	},
	{
		err: domainauth.ErrSubjectMismatch,
		fails: func(rec domainauth.SessionRecord, claims domainauth.TokenClaims, _ time.Time) bool {
			return rec.UserID != claims.SubjectUserID
		},
	},
}
