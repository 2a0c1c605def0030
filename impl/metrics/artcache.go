package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// These are the metrics functions exposed by the package. By default they are all
// NOP functions to minimize overhead when metrics are not enabled. The 'addArtcacheMetrics'
// function replaces them with functions having implementations if metrics are enabled.

var IncCacheHits noLabel = func() {}
var IncCacheMisses noLabel = func() {}
var IncCacheExpirations noLabel = func() {}
var IncDedupedFetches noLabel = func() {}
var IncUpstreamErrors noLabel = func() {}
var IncStaleServed noLabel = func() {}
var ObserveFetchSeconds observe = func(float64) {}
var IncImageLoadsBySource withLabel = func(string) {}
var IncImageLoadFailures noLabel = func() {}
var IncApiEndpointHits noLabel = func() {}
var IncApiErrorResults noLabel = func() {}

type withLabel func(string)
type noLabel func()
type observe func(float64)

const (
	cache_hits_total          = "cache_hits_total"
	cache_misses_total        = "cache_misses_total"
	cache_expirations_total   = "cache_expirations_total"
	deduped_fetches_total     = "deduped_fetches_total"
	upstream_errors_total     = "upstream_errors_total"
	stale_served_total        = "stale_served_total"
	upstream_fetch_seconds    = "upstream_fetch_seconds"
	image_loads_by_source     = "image_loads_by_source_total"
	image_load_failures_total = "image_load_failures_total"
	api_endpoint_hits_total   = "api_endpoint_hits_total"
	api_errors_total          = "api_errors_total"
	source_label              = "source"
	namespace                 = "artcache"
)

// addArtcacheMetrics creates all the artcache metrics and registers them with the
// prometheus library. It also assigns a function to actually implement each metric.
func addArtcacheMetrics() {
	IncCacheHits = counter(cache_hits_total, "Fetch cache lookups answered from a fresh entry")
	IncCacheMisses = counter(cache_misses_total, "Fetch cache lookups that started an upstream fetch")
	IncCacheExpirations = counter(cache_expirations_total, "Entries found older than the TTL at lookup time")
	IncDedupedFetches = counter(deduped_fetches_total, "Lookups that attached to an upstream fetch already in flight")
	IncUpstreamErrors = counter(upstream_errors_total, "Upstream fetches that failed (timeout, transport, status or body)")
	IncStaleServed = counter(stale_served_total, "Failed upstream fetches answered with the last known good value")

	fetchSeconds := promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:      upstream_fetch_seconds,
			Namespace: namespace,
			Help:      "Duration of upstream JSON fetches",
			Buckets:   prometheus.DefBuckets,
		},
	)
	ObserveFetchSeconds = func(secs float64) {
		fetchSeconds.Observe(secs)
	}

	loadsBySource := promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name:      image_loads_by_source,
			Namespace: namespace,
			Help:      "Artwork images loaded, by the delivery tier that served them",
		},
		[]string{source_label},
	)
	IncImageLoadsBySource = func(source string) {
		loadsBySource.With(prometheus.Labels{source_label: source}).Add(1)
	}

	IncImageLoadFailures = counter(image_load_failures_total, "Artwork image loads that failed on every tier")
	IncApiEndpointHits = counter(api_endpoint_hits_total, "Total calls to the artcache API endpoints")
	IncApiErrorResults = counter(api_errors_total, "Total calls to the artcache API endpoints that resulted in errors")
}

// counter registers a counter in the artcache namespace and returns a function that increments it
func counter(name, help string) noLabel {
	c := promauto.NewCounter(
		prometheus.CounterOpts{
			Name:      name,
			Namespace: namespace,
			Help:      help,
		},
	)
	return func() {
		c.Add(1)
	}
}
