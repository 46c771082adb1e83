package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/artisanhub/marketplace-api/internal/core"
)

// SessionCacheStatsSource is satisfied by *core.SessionCache.
type SessionCacheStatsSource interface {
	Stats() core.SessionCacheStats
}

// SessionCacheCollector exports session cache counters to Prometheus on every scrape.
//
// Metric naming follows Prometheus conventions:
//   - marketplace_session_cache_ prefix
//   - _total suffix for counters
type SessionCacheCollector struct {
	src SessionCacheStatsSource

	size      *prometheus.Desc
	lookups   *prometheus.Desc
	evictions *prometheus.Desc
	swept     *prometheus.Desc
}

var _ prometheus.Collector = (*SessionCacheCollector)(nil)

// NewSessionCacheCollector builds a collector reading from src.
func NewSessionCacheCollector(src SessionCacheStatsSource) *SessionCacheCollector {
	return &SessionCacheCollector{
		src: src,
		size: prometheus.NewDesc(
			"marketplace_session_cache_entries",
			"Number of session snapshots currently cached, stale ones included.",
			nil, nil,
		),
		lookups: prometheus.NewDesc(
			"marketplace_session_cache_lookups_total",
			"Session cache lookups by outcome.",
			[]string{"outcome"}, nil,
		),
		evictions: prometheus.NewDesc(
			"marketplace_session_cache_evictions_total",
			"Entries evicted because the cache was full.",
			nil, nil,
		),
		swept: prometheus.NewDesc(
			"marketplace_session_cache_swept_total",
			"Stale entries removed by the background sweeper.",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *SessionCacheCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.size
	ch <- c.lookups
	ch <- c.evictions
	ch <- c.swept
}

// Collect implements prometheus.Collector.
func (c *SessionCacheCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.src.Stats()
	ch <- prometheus.MustNewConstMetric(c.size, prometheus.GaugeValue, float64(s.Size))
	ch <- prometheus.MustNewConstMetric(c.lookups, prometheus.CounterValue, float64(s.Hits), "hit")
	ch <- prometheus.MustNewConstMetric(c.lookups, prometheus.CounterValue, float64(s.Misses), "miss")
	ch <- prometheus.MustNewConstMetric(c.lookups, prometheus.CounterValue, float64(s.Stale), "stale")
	ch <- prometheus.MustNewConstMetric(c.evictions, prometheus.CounterValue, float64(s.Evictions))
	ch <- prometheus.MustNewConstMetric(c.swept, prometheus.CounterValue, float64(s.Swept))
}

// NewRegistry returns a registry carrying the Go runtime, process and session cache collectors.
func NewRegistry(src SessionCacheStatsSource) (*prometheus.Registry, error) {
	reg := prometheus.NewRegistry()
	cs := []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		NewSessionCacheCollector(src),
	}
	for _, c := range cs {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
