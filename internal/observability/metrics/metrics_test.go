package metrics

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artisanhub/marketplace-api/internal/core"
)

type recordedMetric struct {
	kind  string
	name  string
	value float64
	tags  map[string]string
}

type recordingSink struct {
	mu      sync.Mutex
	metrics []recordedMetric
}

func (r *recordingSink) add(m recordedMetric) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.metrics = append(r.metrics, m)
}

func (r *recordingSink) Count(name string, value int64, tags map[string]string) {
	r.add(recordedMetric{kind: "count", name: name, value: float64(value), tags: tags})
}

func (r *recordingSink) Gauge(name string, value float64, tags map[string]string) {
	r.add(recordedMetric{kind: "gauge", name: name, value: value, tags: tags})
}

func (r *recordingSink) Timing(name string, value time.Duration, tags map[string]string) {
	r.add(recordedMetric{kind: "timing", name: name, value: float64(value), tags: tags})
}

func TestEmitValidation_Success(t *testing.T) {
	sink := &recordingSink{}
	EmitValidation(sink, ValidationMetric{Result: ResultSuccess, Source: SourceCache, Duration: time.Millisecond})

	require.Len(t, sink.metrics, 2)
	assert.Equal(t, "auth.validation", sink.metrics[0].name)
	assert.Equal(t, map[string]string{"result": "success", "source": "cache"}, sink.metrics[0].tags)
	assert.Equal(t, "timing", sink.metrics[1].kind)
}

func TestEmitValidation_ErrorWithoutReasonIsClassified(t *testing.T) {
	sink := &recordingSink{}
	EmitValidation(sink, ValidationMetric{Result: ResultError, Err: errors.New("boom")})

	require.Len(t, sink.metrics, 1)
	assert.Equal(t, "errors_errorstring", sink.metrics[0].tags["error_class"])
}

func TestEmitValidation_ReasonTagged(t *testing.T) {
	sink := &recordingSink{}
	EmitValidation(sink, ValidationMetric{Result: ResultError, Reason: "session_revoked", Err: errors.New("x")})

	require.Len(t, sink.metrics, 1)
	assert.Equal(t, "session_revoked", sink.metrics[0].tags["reason"])
	assert.NotContains(t, sink.metrics[0].tags, "error_class")
}

func TestEmitters_NilSink(t *testing.T) {
	assert.NotPanics(t, func() {
		EmitValidation(nil, ValidationMetric{Result: ResultSuccess})
		EmitTouchFailure(nil, errors.New("x"))
		EmitSweep(nil, 1, 2, time.Second)
	})
}

func TestEmitSweep(t *testing.T) {
	sink := &recordingSink{}
	EmitSweep(sink, 3, 7, 0)

	require.Len(t, sink.metrics, 2)
	assert.Equal(t, float64(3), sink.metrics[0].value)
	assert.Equal(t, "auth.session_cache.size", sink.metrics[1].name)
	assert.Equal(t, float64(7), sink.metrics[1].value)
}

type staticStats core.SessionCacheStats

func (s staticStats) Stats() core.SessionCacheStats { return core.SessionCacheStats(s) }

func TestSessionCacheCollector(t *testing.T) {
	c := NewSessionCacheCollector(staticStats{Size: 4, Hits: 10, Misses: 2, Stale: 1, Evictions: 3, Swept: 5})

	expected := `
# HELP marketplace_session_cache_entries Number of session snapshots currently cached, stale ones included.
# TYPE marketplace_session_cache_entries gauge
marketplace_session_cache_entries 4
# HELP marketplace_session_cache_lookups_total Session cache lookups by outcome.
# TYPE marketplace_session_cache_lookups_total counter
marketplace_session_cache_lookups_total{outcome="hit"} 10
marketplace_session_cache_lookups_total{outcome="miss"} 2
marketplace_session_cache_lookups_total{outcome="stale"} 1
`
	err := testutil.CollectAndCompare(c, strings.NewReader(expected),
		"marketplace_session_cache_entries", "marketplace_session_cache_lookups_total")
	require.NoError(t, err)
	assert.Equal(t, 6, testutil.CollectAndCount(c))
}

func TestNewRegistry(t *testing.T) {
	cache := core.NewSessionCache(core.DefaultSessionCacheConfig())
	reg, err := NewRegistry(cache)
	require.NoError(t, err)

	families, err := reg.Gather()
	require.NoError(t, err)

	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "marketplace_session_cache_entries")
	assert.Contains(t, names, "go_goroutines")
}
