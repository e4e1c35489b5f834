package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTPRequests counts handled HTTP requests by method, route and status.
var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "streamgate_http_requests_total",
	Help: "Number of HTTP requests handled",
}, []string{"method", "route", "status"})

// CatalogBuilds counts catalog build passes per kind (live, vod, series).
var CatalogBuilds = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "streamgate_catalog_builds_total",
	Help: "Number of catalog build passes",
}, []string{"kind"})

// PlayerAPICache counts player_api response cache lookups by outcome.
var PlayerAPICache = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "streamgate_player_api_cache_total",
	Help: "Number of player_api cache lookups",
}, []string{"outcome"})

// ResolverRuns counts resolver invocations by outcome (ok, error, fastpath).
var ResolverRuns = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "streamgate_resolver_runs_total",
	Help: "Number of resolver invocations",
}, []string{"outcome"})

// PlaylistRefreshes counts playlist refresh attempts by outcome.
var PlaylistRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "streamgate_playlist_refreshes_total",
	Help: "Number of playlist refresh attempts",
}, []string{"outcome"})
