// Package metrics exposes Prometheus collectors for the HTTP surface and
// for the domain services.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Label names.
const (
	LabelMethod  = "method"
	LabelPath    = "path"
	LabelStatus  = "status"
	LabelAPI     = "api"
	LabelOutcome = "outcome"
	LabelRegion  = "region"
)

// Upstream API names used with LabelAPI.
const (
	APIMarket = "market"
	APILogs   = "logs"
)

// Outcomes used with LabelOutcome.
const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// HTTPLatencyBuckets range from 1ms to 10s.
var HTTPLatencyBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

// HTTP metrics.
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: HTTPLatencyBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests being served",
		},
	)
)

// Domain metrics.
var (
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_requests_total",
			Help: "Requests sent to third-party APIs by outcome",
		},
		[]string{LabelAPI, LabelOutcome},
	)

	CacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "market_cache_hits_total",
			Help: "Auction API responses served from the cache",
		},
	)

	CacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "market_cache_misses_total",
			Help: "Auction API responses fetched because the cache had no entry",
		},
	)

	SearchesCoalescedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "market_searches_coalesced_total",
			Help: "Search calls superseded by a newer call in the same burst",
		},
	)

	RosterDropsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roster_drops_total",
			Help: "Characters dropped onto a roster region",
		},
		[]string{LabelRegion},
	)

	PricesObservedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "market_prices_observed_total",
			Help: "Watched item prices recorded by the refresher",
		},
	)
)
