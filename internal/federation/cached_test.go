package federation_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.pilab.hu/mcportal/cache"
	"go.pilab.hu/mcportal/internal/federation"
)

type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) LookupProfile(ctx context.Context, name string) (*federation.Profile, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*federation.Profile), args.Error(1)
}

func (m *MockIdentityProvider) LookupSkin(ctx context.Context, profileID string) (string, error) {
	args := m.Called(ctx, profileID)
	return args.String(0), args.Error(1)
}

func TestCachingProvider_CachesPositiveLookups(t *testing.T) {
	ctx := context.Background()
	next := new(MockIdentityProvider)
	next.On("LookupProfile", ctx, "Notch").Return(&federation.Profile{ID: "abc", Name: "Notch"}, nil).Once()

	pc := cache.NewMemoryProfileCache(time.Minute)
	defer pc.Close()
	provider := federation.NewCachingProvider(next, pc)

	for i := 0; i < 3; i++ {
		profile, err := provider.LookupProfile(ctx, "Notch")
		require.NoError(t, err)
		assert.Equal(t, "abc", profile.ID)
	}

	next.AssertNumberOfCalls(t, "LookupProfile", 1)
}

func TestCachingProvider_DoesNotCacheFailures(t *testing.T) {
	ctx := context.Background()
	next := new(MockIdentityProvider)
	next.On("LookupProfile", ctx, "Ghost").Return(nil, federation.ErrProfileNotFound).Twice()

	pc := cache.NewMemoryProfileCache(time.Minute)
	defer pc.Close()
	provider := federation.NewCachingProvider(next, pc)

	for i := 0; i < 2; i++ {
		_, err := provider.LookupProfile(ctx, "Ghost")
		assert.True(t, errors.Is(err, federation.ErrProfileNotFound))
	}

	next.AssertExpectations(t)
	assert.Equal(t, 0, pc.Len())
}

func TestCachingProvider_SkinPassesThrough(t *testing.T) {
	ctx := context.Background()
	next := new(MockIdentityProvider)
	next.On("LookupSkin", ctx, "abc").Return("http://skin", nil).Twice()

	provider := federation.NewCachingProvider(next, cache.NoopProfileCache{})
	for i := 0; i < 2; i++ {
		skin, err := provider.LookupSkin(ctx, "abc")
		require.NoError(t, err)
		assert.Equal(t, "http://skin", skin)
	}
	next.AssertExpectations(t)
}
