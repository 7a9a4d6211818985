package identity_test

import (
	"context"
	"errors"
	"testing"

	"github.com/astro-web3/booking-api/internal/domain/identity"
	"github.com/astro-web3/booking-api/internal/infra/store"
	"github.com/stretchr/testify/require"
)

const goodPassword = "Passw0rd!"

type roleFailingStore struct {
	*store.MemoryStore
	deleted []string
}

func (s *roleFailingStore) AddToRoles(context.Context, string, ...string) error {
	return errors.New("role assignment failed")
}

func (s *roleFailingStore) DeleteUser(ctx context.Context, username string) error {
	s.deleted = append(s.deleted, username)
	return s.MemoryStore.DeleteUser(ctx, username)
}

type noRoleStore struct {
	*store.MemoryStore
}

func (noRoleStore) CreateRole(context.Context, string) error { return nil }

func newRegistrar(st identity.Store) *identity.Registrar {
	return identity.NewRegistrar(st, identity.NewBcryptHasher(4))
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("admin gets every role", func(t *testing.T) {
		st := store.NewMemoryStore()
		res, err := newRegistrar(st).Register(ctx, identity.RegisterRequest{
			Username: "root", Email: "root@example.com", Password: goodPassword, Role: identity.RoleAdmin,
		})
		require.NoError(t, err)
		require.Equal(t, identity.StatusSuccess, res.Status)
		require.Equal(t, identity.MsgCreated, res.Message)

		roles, err := st.GetRoles(ctx, "root")
		require.NoError(t, err)
		require.ElementsMatch(t, identity.KnownRoles(), roles)
	})

	t.Run("driver gets one role", func(t *testing.T) {
		st := store.NewMemoryStore()
		res, err := newRegistrar(st).Register(ctx, identity.RegisterRequest{
			Username: "dan", Password: goodPassword, Role: identity.RoleDriver,
		})
		require.NoError(t, err)
		require.Equal(t, identity.StatusSuccess, res.Status)

		roles, err := st.GetRoles(ctx, "dan")
		require.NoError(t, err)
		require.Equal(t, []string{identity.RoleDriver}, roles)
	})

	t.Run("duplicate user", func(t *testing.T) {
		st := store.NewMemoryStore()
		reg := newRegistrar(st)
		req := identity.RegisterRequest{Username: "alice", Password: goodPassword, Role: identity.RoleCustomer}

		_, err := reg.Register(ctx, req)
		require.NoError(t, err)

		res, err := reg.Register(ctx, req)
		require.NoError(t, err)
		require.Equal(t, identity.StatusError, res.Status)
		require.Equal(t, identity.MsgUserExists, res.Message)
	})

	t.Run("unknown role", func(t *testing.T) {
		res, err := newRegistrar(store.NewMemoryStore()).Register(ctx, identity.RegisterRequest{
			Username: "eve", Password: goodPassword, Role: "Pilot",
		})
		require.NoError(t, err)
		require.Equal(t, identity.MsgInvalidRole, res.Message)
	})

	t.Run("weak password", func(t *testing.T) {
		st := store.NewMemoryStore()
		res, err := newRegistrar(st).Register(ctx, identity.RegisterRequest{
			Username: "weak", Password: "password", Role: identity.RoleCustomer,
		})
		require.NoError(t, err)
		require.Equal(t, identity.MsgCreateFailed, res.Message)

		u, err := st.FindByUsername(ctx, "weak")
		require.NoError(t, err)
		require.Nil(t, u)
	})

	t.Run("role catalogue cannot be created", func(t *testing.T) {
		res, err := newRegistrar(noRoleStore{store.NewMemoryStore()}).Register(ctx, identity.RegisterRequest{
			Username: "x", Password: goodPassword, Role: identity.RoleCustomer,
		})
		require.NoError(t, err)
		require.Equal(t, identity.MsgRolesMissing, res.Message)
	})

	t.Run("role assignment failure rolls back", func(t *testing.T) {
		st := &roleFailingStore{MemoryStore: store.NewMemoryStore()}
		res, err := newRegistrar(st).Register(ctx, identity.RegisterRequest{
			Username: "bob", Password: goodPassword, Role: identity.RoleCustomer,
		})
		require.NoError(t, err)
		require.Equal(t, identity.MsgRoleAssignFailed, res.Message)
		require.Equal(t, []string{"bob"}, st.deleted)

		u, err := st.FindByUsername(ctx, "bob")
		require.NoError(t, err)
		require.Nil(t, u)
	})
}

func TestValidator(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	hasher := identity.NewBcryptHasher(4)

	_, err := identity.NewRegistrar(st, hasher).Register(ctx, identity.RegisterRequest{
		Username: "alice", Password: goodPassword, Role: identity.RoleCustomer,
	})
	require.NoError(t, err)

	v := identity.NewValidator(st, hasher)

	user, err := v.Validate(ctx, "alice", goodPassword)
	require.NoError(t, err)
	require.Equal(t, "alice", user.Username)

	_, err = v.Validate(ctx, "alice", "nope")
	require.ErrorIs(t, err, identity.ErrBadPassword)

	_, err = v.Validate(ctx, "ALICE", goodPassword)
	require.ErrorIs(t, err, identity.ErrUserNotFound)
}

func TestCheckPassword(t *testing.T) {
	for _, pw := range []string{"", "Ab1!", "alllower1!", "ALLUPPER1!", "NoDigits!", "NoSymbol1"} {
		require.ErrorIs(t, identity.CheckPassword(pw), identity.ErrWeakPassword, pw)
	}
	require.NoError(t, identity.CheckPassword(goodPassword))
}

func TestNewBcryptHasher(t *testing.T) {
	h := identity.NewBcryptHasher(1)

	hash, err := h.Hash(goodPassword)
	require.NoError(t, err)
	require.True(t, h.Verify(goodPassword, hash))
	require.False(t, h.Verify("other", hash))
	require.False(t, h.Verify(goodPassword, "not-a-hash"))
}
