package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks prediction cache hits by layer (redis)
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carprice_cache_hits_total",
			Help: "Total number of prediction cache hits",
		},
		[]string{"layer"}, // "redis"
	)

	// CacheMisses tracks prediction cache misses
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "carprice_cache_misses_total",
			Help: "Total number of prediction cache misses",
		},
	)

	// CacheErrors tracks cache operation errors
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carprice_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"operation"}, // "get", "set", "delete"
	)
)
