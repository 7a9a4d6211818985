package identity

import "context"

// Store is the identity persistence contract.
// FindByUsername returns (nil, nil) when the user does not exist.
type Store interface {
	FindByUsername(ctx context.Context, username string) (*User, error)
	CreateUser(ctx context.Context, user *User) error
	DeleteUser(ctx context.Context, username string) error

	GetRoles(ctx context.Context, username string) ([]string, error)
	AddToRoles(ctx context.Context, username string, roles ...string) error

	ListRoles(ctx context.Context) ([]string, error)
	RoleExists(ctx context.Context, role string) (bool, error)
	CreateRole(ctx context.Context, role string) error
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}
