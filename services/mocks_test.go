package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
	"go.pilab.hu/mcportal/domain"
	"go.pilab.hu/mcportal/internal/federation"
	"go.pilab.hu/mcportal/internal/mcstatus"
	"go.pilab.hu/mcportal/internal/memstore"
)

var _ RepositoryProvider = (*memstore.Store)(nil)

var errInjected = errors.New("injected failure")

// --- Mock Implementations ---

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

type MockPinger struct {
	mock.Mock
}

func (m *MockPinger) Ping(ctx context.Context, addr string) (*mcstatus.Response, error) {
	args := m.Called(ctx, addr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mcstatus.Response), args.Error(1)
}

// racingUserRepository hides the stored user from the first username lookup,
// reproducing a concurrent first login that lost the race.
type racingUserRepository struct {
	domain.UserRepository
	once sync.Once
}

func (r *racingUserRepository) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	hidden := false
	r.once.Do(func() { hidden = true })
	if hidden {
		return nil, domain.ErrUserNotFound
	}
	return r.UserRepository.GetUserByUsername(ctx, username)
}

// failingServerLogs rejects every append.
type failingServerLogs struct {
	domain.ServerLogRepository
}

func (failingServerLogs) AppendServerLog(context.Context, *domain.ServerLog) error {
	return errInjected
}

// failingTouch rejects last_seen updates.
type failingTouch struct {
	domain.UserRepository
}

func (failingTouch) TouchLastSeen(context.Context, string, time.Time) error {
	return errInjected
}
