package common

import (
	"time"

	"github.com/patrickmn/go-cache"

	"flighttest/ftias/internal/metrics"
)

// CacheService is an in-process cache that reports hits and misses under
// its name.
type CacheService struct {
	name    string
	cache   *cache.Cache
	metrics *metrics.MetricsRegistry
}

// Ensure CacheService implements CacheInterface
var _ CacheInterface = (*CacheService)(nil)

// NewCacheService accepts a nil metrics registry.
func NewCacheService(name string, defaultExpiration, cleanUpInterval time.Duration, metricsReg *metrics.MetricsRegistry) *CacheService {
	return &CacheService{
		name:    name,
		cache:   cache.New(defaultExpiration, cleanUpInterval),
		metrics: metricsReg,
	}
}

func (cs *CacheService) Set(key string, value interface{}, duration time.Duration) {
	cs.cache.Set(key, value, duration)
}

func (cs *CacheService) Get(key string) (interface{}, bool) {
	val, found := cs.cache.Get(key)
	if cs.metrics != nil {
		if found {
			cs.metrics.CacheHitsTotal.WithLabelValues(cs.name).Inc()
		} else {
			cs.metrics.CacheMissesTotal.WithLabelValues(cs.name).Inc()
		}
	}
	return val, found
}

func (cs *CacheService) Delete(key string) {
	cs.cache.Delete(key)
}
