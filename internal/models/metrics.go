package models

import "time"

// SystemMetricsSnapshot aggregates process counters for the ops summary
// endpoint. Prometheus scraping remains the primary metrics surface; this is
// a convenience view for the console's status page.
type SystemMetricsSnapshot struct {
	CacheHitRatio               float64   `json:"cacheHitRatio"`
	CacheHits                   uint64    `json:"cacheHits"`
	CacheMisses                 uint64    `json:"cacheMisses"`
	RequestsTotal               uint64    `json:"requestsTotal"`
	AverageRequestDurationMs    float64   `json:"averageRequestDurationMs"`
	StoreQueryCount             uint64    `json:"storeQueryCount"`
	AverageStoreQueryDurationMs float64   `json:"averageStoreQueryDurationMs"`
	LifecycleTransitions        uint64    `json:"lifecycleTransitions"`
	SortFallbacks               uint64    `json:"sortFallbacks"`
	ResolverLookups             uint64    `json:"resolverLookups"`
	Goroutines                  int       `json:"goroutines"`
	GeneratedAt                 time.Time `json:"generatedAt"`
}
