package store_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/astro-web3/booking-api/internal/domain/identity"
	"github.com/astro-web3/booking-api/internal/infra/store"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, s identity.Store, username string) {
	t.Helper()
	ctx := context.Background()

	u, err := s.FindByUsername(ctx, username)
	require.NoError(t, err)
	require.Nil(t, u)

	created := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	user := &identity.User{
		ID:            uuid.NewString(),
		Username:      username,
		Email:         username + "@example.com",
		PasswordHash:  "hash",
		SecurityStamp: uuid.NewString(),
		CreatedAt:     created,
		UpdatedAt:     created,
	}
	require.NoError(t, s.CreateUser(ctx, user))
	require.ErrorIs(t, s.CreateUser(ctx, user), identity.ErrUserExists)

	got, err := s.FindByUsername(ctx, username)
	require.NoError(t, err)
	require.Equal(t, user.ID, got.ID)
	require.Equal(t, user.Email, got.Email)
	require.True(t, created.Equal(got.CreatedAt))

	err = s.AddToRoles(ctx, username, "NoSuchRole-"+username)
	require.ErrorIs(t, err, identity.ErrRoleNotFound)

	for _, role := range identity.KnownRoles() {
		require.NoError(t, s.CreateRole(ctx, role))
		ok, err := s.RoleExists(ctx, role)
		require.NoError(t, err)
		require.True(t, ok)
	}

	require.NoError(t, s.AddToRoles(ctx, username, identity.RoleCustomer, identity.RoleDriver))
	require.NoError(t, s.AddToRoles(ctx, username, identity.RoleCustomer))

	roles, err := s.GetRoles(ctx, username)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{identity.RoleCustomer, identity.RoleDriver}, roles)

	catalogue, err := s.ListRoles(ctx)
	require.NoError(t, err)
	require.Subset(t, catalogue, identity.KnownRoles())

	require.NoError(t, s.DeleteUser(ctx, username))
	require.ErrorIs(t, s.DeleteUser(ctx, username), identity.ErrUserNotFound)

	_, err = s.GetRoles(ctx, username)
	require.True(t, errors.Is(err, identity.ErrUserNotFound))
}

// exerciseConcurrentCreate races creators for one username: exactly one wins
// and the stored user is always complete.
func exerciseConcurrentCreate(t *testing.T, s identity.Store, username string) {
	t.Helper()
	ctx := context.Background()

	const creators = 16
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		wins   int
		winner string
	)
	for i := 0; i < creators; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			user := &identity.User{
				ID:           uuid.NewString(),
				Username:     username,
				PasswordHash: "hash-" + uuid.NewString(),
			}
			err := s.CreateUser(ctx, user)
			if err == nil {
				mu.Lock()
				wins++
				winner = user.PasswordHash
				mu.Unlock()
				return
			}
			if !errors.Is(err, identity.ErrUserExists) {
				t.Errorf("unexpected error: %v", err)
			}

			got, findErr := s.FindByUsername(ctx, username)
			if findErr != nil || got == nil || got.PasswordHash == "" {
				t.Errorf("saw incomplete user %+v (err %v)", got, findErr)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, wins)
	got, err := s.FindByUsername(ctx, username)
	require.NoError(t, err)
	require.Equal(t, winner, got.PasswordHash)
	require.NotEmpty(t, got.ID)

	require.NoError(t, s.DeleteUser(ctx, username))
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, store.NewMemoryStore(), "alice")
}

func TestMemoryStoreConcurrentCreate(t *testing.T) {
	exerciseConcurrentCreate(t, store.NewMemoryStore(), "alice")
}

func TestMemoryStoreUsernameIsExact(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, &identity.User{Username: "Alice"}))

	u, err := s.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Nil(t, u)
}

func TestRedisStore(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:6379"})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skip("Redis not available, skipping test")
	}
	defer client.Close()

	exerciseStore(t, store.NewRedisStore(client), "test-"+uuid.NewString())
	exerciseConcurrentCreate(t, store.NewRedisStore(client), "test-"+uuid.NewString())
}
