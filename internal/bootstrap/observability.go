package bootstrap

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/artisanhub/marketplace-api/config"
	"github.com/artisanhub/marketplace-api/internal/core"
	"github.com/artisanhub/marketplace-api/internal/observability/metrics"
	"github.com/artisanhub/marketplace-api/internal/observability/statsd"
)

// ObservabilityContainer carries the metrics backends shared by the services.
type ObservabilityContainer struct {
	// MetricsSink is nil when StatsD emission is disabled or failed to initialise.
	MetricsSink *statsd.Client
	// Registry is nil when the Prometheus endpoint is disabled.
	Registry *prometheus.Registry
}

// Sink returns the StatsD sink as an interface, or nil when disabled.
//
//nolint:ireturn // callers accept the statsd.Sink port.
func (o ObservabilityContainer) Sink() statsd.Sink {
	if o.MetricsSink == nil {
		return nil
	}
	return o.MetricsSink
}

// Close releases the StatsD socket.
func (o ObservabilityContainer) Close() error {
	if o.MetricsSink == nil {
		return nil
	}
	return o.MetricsSink.Close()
}

// BuildObservability wires StatsD and Prometheus. Metrics failures are logged and degrade to no-op;
// they never stop the service.
func BuildObservability(
	logger *slog.Logger,
	cfg config.ObservabilityConfig,
	cache *core.SessionCache,
) ObservabilityContainer {
	if logger == nil {
		logger = slog.Default()
	}

	var out ObservabilityContainer
	if cfg.Metrics.IsEnabled() {
		client, err := statsd.NewClient(statsd.Config{
			Enabled: true,
			Address: cfg.Metrics.StatsdAddress,
			Prefix:  cfg.Metrics.Prefix,
			Logger:  logger,
		})
		if err != nil {
			logger.Error("failed to initialise statsd client", "error", err)
		} else {
			out.MetricsSink = client
		}
	}

	if cfg.Prometheus.Enabled && cache != nil {
		reg, err := metrics.NewRegistry(cache)
		if err != nil {
			logger.Error("failed to initialise prometheus registry", "error", err)
		} else {
			out.Registry = reg
		}
	}

	return out
}
