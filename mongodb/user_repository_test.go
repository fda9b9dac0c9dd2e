package mongodb

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.pilab.hu/mcportal/domain"
	"go.pilab.hu/mcportal/mongodb/testutil"
)

func setupUserRepo(t *testing.T) (*UserRepository, func()) {
	t.Helper()
	db, cleanup := testutil.SetupTestMongoDB(t, "test_mcportal_users")
	repo, err := NewUserRepository(context.Background(), db)
	require.NoError(t, err)
	return repo, cleanup
}

func TestUserRepository_CreateAndGet_Integration(t *testing.T) {
	repo, cleanup := setupUserRepo(t)
	defer cleanup()
	ctx := context.Background()

	user := &domain.User{UUID: "069a79f444e94726a5befca90e38aaf5", MinecraftUsername: "Notch"}
	require.NoError(t, repo.CreateUser(ctx, user))
	assert.NotEmpty(t, user.ID)

	byID, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Notch", byID.MinecraftUsername)

	byName, err := repo.GetUserByUsername(ctx, "Notch")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)

	_, err = repo.GetUserByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserRepository_DuplicateUsername_Integration(t *testing.T) {
	repo, cleanup := setupUserRepo(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, repo.CreateUser(ctx, &domain.User{MinecraftUsername: "Alice"}))
	err := repo.CreateUser(ctx, &domain.User{MinecraftUsername: "Alice"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestUserRepository_ConcurrentCreateSameName_Integration(t *testing.T) {
	repo, cleanup := setupUserRepo(t)
	defer cleanup()
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = repo.CreateUser(ctx, &domain.User{MinecraftUsername: "Racer"})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, domain.ErrDuplicate)
		}
	}
	assert.Equal(t, 1, succeeded)
}

func TestUserRepository_RecordLoginAndAdmin_Integration(t *testing.T) {
	repo, cleanup := setupUserRepo(t)
	defer cleanup()
	ctx := context.Background()

	user := &domain.User{MinecraftUsername: "Bob"}
	require.NoError(t, repo.CreateUser(ctx, user))

	now := time.Now().UTC().Truncate(time.Millisecond)
	updated, err := repo.RecordLogin(ctx, user.ID, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated.LoginCount)
	require.NotNil(t, updated.LastLogin)
	assert.True(t, now.Equal(*updated.LastLogin))

	updated, err = repo.RecordLogin(ctx, user.ID, now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated.LoginCount)

	require.NoError(t, repo.SetAdmin(ctx, user.ID, true))
	hasAdmin, err := repo.AnyAdmin(ctx)
	require.NoError(t, err)
	assert.True(t, hasAdmin)

	total, admins, err := repo.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, int64(1), admins)

	require.NoError(t, repo.TouchLastSeen(ctx, user.ID, now))
	assert.ErrorIs(t, repo.TouchLastSeen(ctx, "missing", now), domain.ErrUserNotFound)

	recent, err := repo.RecentLogins(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)

	require.NoError(t, repo.DeleteUser(ctx, user.ID))
	assert.ErrorIs(t, repo.DeleteUser(ctx, user.ID), domain.ErrUserNotFound)
}
