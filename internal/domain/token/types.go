package token

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// AccessTokenLifetime is measured from issuance.
	AccessTokenLifetime = 3 * time.Hour
	// ClockSkew widens the expiry check in both directions.
	ClockSkew = time.Minute
	// Algorithm is the only accepted signing algorithm.
	Algorithm = "HS256"
)

// Claim types carried in the token payload.
const (
	ClaimName = "name"
	ClaimID   = "jti"
	ClaimRole = "role"
)

var (
	ErrMalformed         = errors.New("token is malformed")
	ErrSignatureMismatch = errors.New("token signature mismatch")
	ErrExpired           = errors.New("token is expired")

	ErrBadKeyEncoding = errors.New("secret key is not valid base64url")
	ErrEmptyKey       = errors.New("secret key is empty")
)

// Claim is a single (type, value) assertion about the token subject.
type Claim struct {
	Type  string
	Value string
}

// ClaimSet is ordered; a role appears once per membership.
type ClaimSet []Claim

func (cs ClaimSet) first(claimType string) string {
	for _, c := range cs {
		if c.Type == claimType {
			return c.Value
		}
	}
	return ""
}

func (cs ClaimSet) Name() string { return cs.first(ClaimName) }

func (cs ClaimSet) ID() string { return cs.first(ClaimID) }

func (cs ClaimSet) Roles() []string {
	var roles []string
	for _, c := range cs {
		if c.Type == ClaimRole {
			roles = append(roles, c.Value)
		}
	}
	return roles
}

// BearerToken is the serialized token handed back to the caller.
type BearerToken struct {
	Token     string
	ExpiresAt time.Time
}

// SigningConfig is built once at startup and only read afterwards.
type SigningConfig struct {
	EnforcementEnabled bool
	Issuer             string
	Audience           string

	secretKey []byte
}

// NewSigningConfig decodes a base64url secret. Padding is optional.
func NewSigningConfig(enforce bool, secretKey, issuer, audience string) (*SigningConfig, error) {
	key, err := DecodeKey(secretKey)
	if err != nil {
		return nil, err
	}
	return &SigningConfig{
		EnforcementEnabled: enforce,
		Issuer:             issuer,
		Audience:           audience,
		secretKey:          key,
	}, nil
}

func DecodeKey(secretKey string) ([]byte, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(secretKey), "=")
	if trimmed == "" {
		return nil, ErrEmptyKey
	}
	key, err := base64.RawURLEncoding.DecodeString(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadKeyEncoding, err)
	}
	if len(key) == 0 {
		return nil, ErrEmptyKey
	}
	return key, nil
}

// ValidationError tells why Verify rejected a token.
type ValidationError struct {
	Kind error
	Err  error
}

func (e *ValidationError) Error() string {
	if e.Err == nil {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *ValidationError) Is(target error) bool { return target == e.Kind }

func (e *ValidationError) Unwrap() error { return e.Err }
