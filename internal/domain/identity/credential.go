package identity

import (
	"context"
	"fmt"
)

// Validator checks a username/password pair against the store.
type Validator struct {
	store  Store
	hasher PasswordHasher
}

func NewValidator(store Store, hasher PasswordHasher) *Validator {
	return &Validator{store: store, hasher: hasher}
}

// Validate returns the user on success and a *CredentialError on rejection.
// Store failures are returned wrapped and are not credential errors.
func (v *Validator) Validate(ctx context.Context, username, password string) (*User, error) {
	user, err := v.store.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, &CredentialError{Kind: ErrUserNotFound, Username: username}
	}

	if !v.hasher.Verify(password, user.PasswordHash) {
		return nil, &CredentialError{Kind: ErrBadPassword, Username: username}
	}

	return user, nil
}
