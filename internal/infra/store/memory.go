package store

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/astro-web3/booking-api/internal/domain/identity"
)

// MemoryStore keeps identities in process memory. Safe for concurrent use.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]identity.User
	roles map[string][]string
	known map[string]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[string]identity.User),
		roles: make(map[string][]string),
		known: make(map[string]struct{}),
	}
}

func (s *MemoryStore) FindByUsername(_ context.Context, username string) (*identity.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[username]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (s *MemoryStore) CreateUser(_ context.Context, user *identity.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.Username]; ok {
		return identity.ErrUserExists
	}
	s.users[user.Username] = *user
	return nil
}

func (s *MemoryStore) DeleteUser(_ context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[username]; !ok {
		return identity.ErrUserNotFound
	}
	delete(s.users, username)
	delete(s.roles, username)
	return nil
}

func (s *MemoryStore) GetRoles(_ context.Context, username string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.users[username]; !ok {
		return nil, identity.ErrUserNotFound
	}
	return slices.Clone(s.roles[username]), nil
}

func (s *MemoryStore) AddToRoles(_ context.Context, username string, roles ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[username]; !ok {
		return identity.ErrUserNotFound
	}
	for _, role := range roles {
		if _, ok := s.known[role]; !ok {
			return fmt.Errorf("%w: %s", identity.ErrRoleNotFound, role)
		}
	}

	current := s.roles[username]
	for _, role := range roles {
		if !slices.Contains(current, role) {
			current = append(current, role)
		}
	}
	s.roles[username] = current
	return nil
}

func (s *MemoryStore) ListRoles(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	roles := make([]string, 0, len(s.known))
	for role := range s.known {
		roles = append(roles, role)
	}
	slices.Sort(roles)
	return roles, nil
}

func (s *MemoryStore) RoleExists(_ context.Context, role string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.known[role]
	return ok, nil
}

func (s *MemoryStore) CreateRole(_ context.Context, role string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.known[role] = struct{}{}
	return nil
}
