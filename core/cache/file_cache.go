package cache

import (
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/tristendillon/routefix/core/logger"
	"github.com/tristendillon/routefix/core/models"
)

// MatchCache remembers the matches found in each file so a rescan can skip
// files whose content has not changed.
type MatchCache struct {
	entries *lru.Cache[string, *models.CacheEntry]
	config  *CacheConfig
	metrics *CacheMetrics
	mutex   sync.Mutex
}

func NewMatchCache(config *CacheConfig) (*MatchCache, error) {
	mc := &MatchCache{
		config:  config,
		metrics: &CacheMetrics{},
	}

	entries, err := lru.NewWithEvict[string, *models.CacheEntry](config.MaxEntries, func(path string, _ *models.CacheEntry) {
		mc.metrics.Invalidations++
		logger.Debug("Dropped cache entry: %s", path)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create match cache: %w", err)
	}
	mc.entries = entries

	logger.Debug("Created new match cache with config: MaxEntries=%d, TTL=%v",
		config.MaxEntries, config.DefaultTTL)

	return mc, nil
}

// Get returns the cached entry for filePath if the file is unchanged since it
// was cached and the entry has not expired.
func (mc *MatchCache) Get(filePath string) (*models.CacheEntry, bool) {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()

	entry, exists := mc.entries.Get(filePath)
	if !exists {
		mc.metrics.Misses++
		return nil, false
	}

	valid, err := entry.IsValid()
	if err != nil {
		logger.Debug("Cache validation error for %s: %v", filePath, err)
	}
	if err != nil || !valid || time.Since(entry.CreatedAt) > mc.config.DefaultTTL {
		mc.entries.Remove(filePath)
		mc.metrics.Misses++
		return nil, false
	}

	mc.metrics.Hits++
	logger.Debug("Cache hit for %s", filePath)
	return entry, true
}

func (mc *MatchCache) Set(filePath string, content []byte, records []models.MatchRecord) error {
	entry, err := models.NewCacheEntry(filePath, content, records)
	if err != nil {
		return fmt.Errorf("failed to create cache entry: %w", err)
	}

	mc.mutex.Lock()
	defer mc.mutex.Unlock()
	mc.entries.Add(filePath, entry)
	return nil
}

func (mc *MatchCache) Invalidate(filePath string) {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()

	if mc.entries.Remove(filePath) {
		logger.Debug("Invalidated cache entry for %s", filePath)
	}
}

func (mc *MatchCache) Clear() {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()

	count := mc.entries.Len()
	mc.entries.Purge()
	logger.Debug("Cleared match cache, invalidated %d entries", count)
}

func (mc *MatchCache) GetMetrics() *CacheMetrics {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()

	metrics := *mc.metrics
	metrics.TotalEntries = mc.entries.Len()
	metrics.CalculateHitRate()
	return &metrics
}

func (mc *MatchCache) LogStats() {
	metrics := mc.GetMetrics()
	logger.Debug("Cache stats: Hits=%d, Misses=%d, Hit Rate=%.1f%%, Total Entries=%d, Invalidations=%d",
		metrics.Hits, metrics.Misses, metrics.HitRate, metrics.TotalEntries, metrics.Invalidations)
}
