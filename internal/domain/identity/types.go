package identity

import (
	"errors"
	"fmt"
	"time"
)

const (
	RoleAdmin    = "Admin"
	RoleCustomer = "Customer"
	RoleDriver   = "Driver"
)

// KnownRoles is the role catalogue every deployment must carry.
func KnownRoles() []string {
	return []string{RoleAdmin, RoleCustomer, RoleDriver}
}

func IsKnownRole(role string) bool {
	for _, r := range KnownRoles() {
		if r == role {
			return true
		}
	}
	return false
}

var (
	ErrUserNotFound = errors.New("user not found")
	ErrBadPassword  = errors.New("password does not match")
	ErrUserExists   = errors.New("user already exists")
	ErrRoleNotFound = errors.New("role not found")
)

type User struct {
	ID            string
	Username      string
	Email         string
	PasswordHash  string
	SecurityStamp string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CredentialError is a rejected login. Kind is ErrUserNotFound or ErrBadPassword.
type CredentialError struct {
	Kind     error
	Username string
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("invalid credentials for %q: %v", e.Username, e.Kind)
}

func (e *CredentialError) Is(target error) bool { return target == e.Kind }
