package cache

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// MemoryProfileCache implements ProfileCache using ttlcache.
type MemoryProfileCache struct {
	cache *ttlcache.Cache[string, *ProfileEntry]
}

// NewMemoryProfileCache creates a new in-memory profile cache with
// automatic cleanup of expired entries.
func NewMemoryProfileCache(ttl time.Duration) *MemoryProfileCache {
	cache := ttlcache.New(
		ttlcache.WithTTL[string, *ProfileEntry](ttl),
		ttlcache.WithDisableTouchOnHit[string, *ProfileEntry](),
	)

	go cache.Start()

	return &MemoryProfileCache{cache: cache}
}

// Get implements ProfileCache.Get.
func (s *MemoryProfileCache) Get(_ context.Context, name string) (*ProfileEntry, bool) {
	item := s.cache.Get(name)
	if item == nil {
		return nil, false
	}
	return item.Value(), true
}

// Set implements ProfileCache.Set.
func (s *MemoryProfileCache) Set(_ context.Context, name string, entry *ProfileEntry) error {
	s.cache.Set(name, entry, ttlcache.DefaultTTL)
	return nil
}

// Len returns the number of cached entries.
func (s *MemoryProfileCache) Len() int {
	return s.cache.Len()
}

// Close stops the cleanup goroutine.
func (s *MemoryProfileCache) Close() error {
	s.cache.Stop()
	return nil
}

// NoopProfileCache never stores anything. It is used when caching is
// disabled.
type NoopProfileCache struct{}

func (NoopProfileCache) Get(context.Context, string) (*ProfileEntry, bool) { return nil, false }
func (NoopProfileCache) Set(context.Context, string, *ProfileEntry) error  { return nil }
func (NoopProfileCache) Close() error                                      { return nil }

var (
	_ ProfileCache = (*MemoryProfileCache)(nil)
	_ ProfileCache = NoopProfileCache{}
)
