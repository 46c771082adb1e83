package service

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/artisanhub/marketplace-api/internal/core"
	"github.com/artisanhub/marketplace-api/internal/observability/metrics"
	"github.com/artisanhub/marketplace-api/internal/observability/statsd"
	"github.com/artisanhub/marketplace-api/internal/ports"
)

// SessionJanitorOptions groups dependencies for SessionJanitor.
type SessionJanitorOptions struct {
	Store     ports.ExpiredSessionPurger // Required
	Interval  time.Duration              // Required
	Retention time.Duration              // Optional: expired rows younger than this are kept
	Clock     core.TimeProvider          // Optional
	Logger    *slog.Logger               // Optional
	Metrics   statsd.Sink                // Optional
}

// SessionJanitor deletes long-expired sessions from the durable store.
// Rows are kept for Retention past expiry so late requests still report "expired".
type SessionJanitor struct {
	store     ports.ExpiredSessionPurger
	interval  time.Duration
	retention time.Duration
	clock     core.TimeProvider
	logger    *slog.Logger
	metrics   statsd.Sink
}

// NewSessionJanitor constructs a SessionJanitor.
func NewSessionJanitor(opts SessionJanitorOptions) (*SessionJanitor, error) {
	if opts.Store == nil {
		return nil, errors.New("ExpiredSessionPurger is required")
	}
	if opts.Interval <= 0 {
		return nil, errors.New("janitor interval must be positive")
	}
	clock := opts.Clock
	if clock == nil {
		clock = core.RealTimeProvider{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionJanitor{
		store:     opts.Store,
		interval:  opts.Interval,
		retention: max(opts.Retention, 0),
		clock:     clock,
		logger:    logger.With("component", "session_janitor"),
		metrics:   opts.Metrics,
	}, nil
}

// PurgeOnce deletes sessions that expired before now minus retention.
func (j *SessionJanitor) PurgeOnce(ctx context.Context) (int64, error) {
	start := time.Now()
	cutoff := j.clock.Now().Add(-j.retention)

	removed, err := j.store.DeleteExpired(ctx, cutoff)
	metrics.EmitSessionPurge(j.metrics, removed, time.Since(start), err)
	if err != nil {
		return 0, fmt.Errorf("purge expired sessions: %w", err)
	}
	if removed > 0 {
		j.logger.InfoContext(ctx, "purged expired sessions", "removed", removed, "cutoff", cutoff)
	}
	return removed, nil
}

// Run purges immediately after a short jitter, then every interval until ctx is done.
// Returns nil on graceful shutdown (context.Canceled), the context error otherwise.
func (j *SessionJanitor) Run(ctx context.Context) error {
	j.logger.InfoContext(ctx, "starting session janitor", "interval", j.interval, "retention", j.retention)

	j.waitWithJitter(ctx)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		if ctx.Err() == nil {
			if _, err := j.PurgeOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
				j.logger.ErrorContext(ctx, "session purge failed", "error", err)
			}
		}

		select {
		case <-ctx.Done():
			j.logger.InfoContext(ctx, "session janitor stopping", "reason", ctx.Err())
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// waitWithJitter delays up to 10% of the interval so replicas do not purge in lockstep.
func (j *SessionJanitor) waitWithJitter(ctx context.Context) {
	maxJitter := int64(j.interval / 10)
	if maxJitter <= 0 {
		return
	}

	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		j.logger.WarnContext(ctx, "failed to generate jitter, skipping", "error", err)
		return
	}
	jitter := time.Duration(int64(binary.BigEndian.Uint64(buf[:]) % uint64(maxJitter))) // #nosec G115 - bounded by maxJitter

	timer := time.NewTimer(jitter)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
