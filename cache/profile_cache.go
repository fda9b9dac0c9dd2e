package cache

import "context"

// ProfileEntry is a cached identity lookup result.
type ProfileEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ProfileCache caches successful identity lookups keyed by normalized name.
type ProfileCache interface {
	Get(ctx context.Context, name string) (*ProfileEntry, bool)
	Set(ctx context.Context, name string, entry *ProfileEntry) error
	Close() error
}
