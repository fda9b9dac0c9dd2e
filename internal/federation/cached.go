package federation

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
	"go.pilab.hu/mcportal/cache"
)

// CachingProvider caches successful profile lookups. Failed lookups are
// never cached so a name that becomes valid is picked up on the next call.
type CachingProvider struct {
	next  IdentityProvider
	cache cache.ProfileCache
}

// NewCachingProvider wraps next with a profile cache.
func NewCachingProvider(next IdentityProvider, profileCache cache.ProfileCache) *CachingProvider {
	return &CachingProvider{next: next, cache: profileCache}
}

func cacheKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// LookupProfile returns the cached profile or delegates to the wrapped provider.
func (c *CachingProvider) LookupProfile(ctx context.Context, name string) (*Profile, error) {
	key := cacheKey(name)

	if entry, ok := c.cache.Get(ctx, key); ok {
		return &Profile{ID: entry.ID, Name: entry.Name}, nil
	}

	profile, err := c.next.LookupProfile(ctx, name)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Set(ctx, key, &cache.ProfileEntry{ID: profile.ID, Name: profile.Name}); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("name", name).Msg("failed to cache profile")
	}

	return profile, nil
}

// LookupSkin is not cached.
func (c *CachingProvider) LookupSkin(ctx context.Context, profileID string) (string, error) {
	return c.next.LookupSkin(ctx, profileID)
}

var _ IdentityProvider = (*CachingProvider)(nil)
