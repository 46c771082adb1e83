package metrics

import (
	"time"

	obserrors "github.com/artisanhub/marketplace-api/internal/observability/errors"
	"github.com/artisanhub/marketplace-api/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Source constants describe where a session snapshot came from.
const (
	SourceCache = "cache"
	SourceStore = "store"
)

// ValidationMetric captures one pass through the session validator.
type ValidationMetric struct {
	Result   string
	Reason   string
	Source   string
	Duration time.Duration
	Err      error
}

// EmitValidation emits standardised session validation metrics.
func EmitValidation(sink statsd.Sink, in ValidationMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{"result": in.Result}
	if in.Reason != "" {
		tags["reason"] = in.Reason
	}
	if in.Source != "" {
		tags["source"] = in.Source
	}
	if in.Err != nil && in.Result == ResultError && in.Reason == "" {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}

	sink.Count("auth.validation", 1, tags)

	if in.Duration > 0 {
		sink.Timing("auth.validation.duration", in.Duration, CloneTags(tags))
	}
}

// EmitTouchFailure counts a failed last-used update.
func EmitTouchFailure(sink statsd.Sink, err error) {
	if sink == nil {
		return
	}
	tags := map[string]string{"result": ResultError}
	if class := obserrors.Classify(err); class != "" {
		tags["error_class"] = class
	}
	sink.Count("auth.session_touch", 1, tags)
}

// EmitSweep records a cache sweep pass.
func EmitSweep(sink statsd.Sink, removed, remaining int, duration time.Duration) {
	if sink == nil {
		return
	}
	sink.Count("auth.session_cache.swept", int64(removed), nil)
	sink.Gauge("auth.session_cache.size", float64(remaining), nil)
	if duration > 0 {
		sink.Timing("auth.session_cache.sweep_duration", duration, nil)
	}
}

// EmitSessionPurge records one janitor pass over the durable store.
func EmitSessionPurge(sink statsd.Sink, removed int64, duration time.Duration, err error) {
	if sink == nil {
		return
	}
	tags := map[string]string{"result": ResultSuccess}
	if err != nil {
		tags["result"] = ResultError
		if class := obserrors.Classify(err); class != "" {
			tags["error_class"] = class
		}
	}
	sink.Count("auth.session_purge", 1, tags)
	if removed > 0 {
		sink.Count("auth.session_purge.removed", removed, nil)
	}
	if duration > 0 {
		sink.Timing("auth.session_purge.duration", duration, CloneTags(tags))
	}
}

// CloneTags creates a shallow copy of a tag map.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
