package authn

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/astro-web3/booking-api/internal/domain/identity"
	"github.com/astro-web3/booking-api/internal/domain/token"
	"github.com/google/uuid"
)

// ErrInvalidCredentials hides which credential check failed.
var ErrInvalidCredentials = errors.New("invalid username or password")

type LoginResult struct {
	Token      string
	Expiration time.Time
}

type CredentialValidator interface {
	Validate(ctx context.Context, username, password string) (*identity.User, error)
}

type RoleLister interface {
	GetRoles(ctx context.Context, username string) ([]string, error)
}

type Service interface {
	IssueForLogin(ctx context.Context, username, password string) (*LoginResult, error)
}

type service struct {
	validator CredentialValidator
	roles     RoleLister
	issuer    token.Issuer
}

func NewService(validator CredentialValidator, roles RoleLister, issuer token.Issuer) Service {
	return &service{
		validator: validator,
		roles:     roles,
		issuer:    issuer,
	}
}

// IssueForLogin is the only path that mints bearer tokens.
// Rejected credentials yield ErrInvalidCredentials; store failures pass through.
func (s *service) IssueForLogin(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.validator.Validate(ctx, username, password)
	if err != nil {
		var credErr *identity.CredentialError
		if errors.As(err, &credErr) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidCredentials, credErr)
		}
		return nil, err
	}

	roles, err := s.roles.GetRoles(ctx, user.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to get roles: %w", err)
	}

	claims := make(token.ClaimSet, 0, len(roles)+2)
	claims = append(claims,
		token.Claim{Type: token.ClaimName, Value: user.Username},
		token.Claim{Type: token.ClaimID, Value: uuid.NewString()},
	)
	for _, role := range roles {
		claims = append(claims, token.Claim{Type: token.ClaimRole, Value: role})
	}

	issued, err := s.issuer.Issue(claims)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &LoginResult{Token: issued.Token, Expiration: issued.ExpiresAt}, nil
}
