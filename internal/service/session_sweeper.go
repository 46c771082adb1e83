package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/artisanhub/marketplace-api/internal/core"
	"github.com/artisanhub/marketplace-api/internal/observability/metrics"
	"github.com/artisanhub/marketplace-api/internal/observability/statsd"
)

// DefaultSweepInterval is how often stale session snapshots are purged.
const DefaultSweepInterval = 10 * time.Minute

// SessionSweeperOptions groups dependencies for SessionSweeper.
type SessionSweeperOptions struct {
	Cache    *core.SessionCache // Required
	Interval time.Duration      // Optional: defaults to DefaultSweepInterval
	Clock    core.TimeProvider  // Optional
	Logger   *slog.Logger       // Optional
	Metrics  statsd.Sink        // Optional
}

// SessionSweeper periodically removes stale entries from the session cache.
// It only bounds memory; request paths already treat stale entries as absent.
type SessionSweeper struct {
	cache    *core.SessionCache
	interval time.Duration
	clock    core.TimeProvider
	logger   *slog.Logger
	metrics  statsd.Sink

	mu        sync.Mutex
	scheduler *cron.Cron
}

// NewSessionSweeper constructs a SessionSweeper. It does not start scheduling.
func NewSessionSweeper(opts SessionSweeperOptions) (*SessionSweeper, error) {
	if opts.Cache == nil {
		return nil, errors.New("SessionCache is required")
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	clock := opts.Clock
	if clock == nil {
		clock = core.RealTimeProvider{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &SessionSweeper{
		cache:    opts.Cache,
		interval: interval,
		clock:    clock,
		logger:   logger.With("component", "session_sweeper"),
		metrics:  opts.Metrics,
	}, nil
}

// Interval returns the configured sweep period.
func (s *SessionSweeper) Interval() time.Duration { return s.interval }

// SweepOnce purges stale entries as of the current clock time and returns the count removed.
func (s *SessionSweeper) SweepOnce() int {
	start := time.Now()
	removed := s.cache.Sweep(s.clock.Now())
	remaining := s.cache.Len()

	s.logger.Debug("session cache swept", "removed", removed, "remaining", remaining)
	metrics.EmitSweep(s.metrics, removed, remaining, time.Since(start))
	return removed
}

// Start schedules SweepOnce every interval. Calling Start on a running sweeper is a no-op.
func (s *SessionSweeper) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scheduler != nil {
		return
	}

	log := cronLogger{logger: s.logger}
	c := cron.New(cron.WithChain(cron.Recover(log), cron.SkipIfStillRunning(log)))
	c.Schedule(cron.Every(s.interval), cron.FuncJob(func() { s.SweepOnce() }))
	c.Start()
	s.scheduler = c

	s.logger.Info("session sweeper started", "interval", s.interval)
}

// Stop cancels future sweeps and waits for a running one to finish. Safe to call more than once.
func (s *SessionSweeper) Stop() {
	s.mu.Lock()
	c := s.scheduler
	s.scheduler = nil
	s.mu.Unlock()

	if c == nil {
		return
	}
	<-c.Stop().Done()
	s.logger.Info("session sweeper stopped")
}

// Running reports whether the sweeper is scheduled.
func (s *SessionSweeper) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scheduler != nil
}

// Run starts the sweeper and blocks until ctx is done.
// Returns nil on graceful shutdown (context.Canceled), the context error otherwise.
func (s *SessionSweeper) Run(ctx context.Context) error {
	s.Start()
	<-ctx.Done()
	s.Stop()

	if errors.Is(ctx.Err(), context.Canceled) {
		return nil
	}
	return ctx.Err()
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
