package token

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Issuer signs claim sets into bearer tokens.
type Issuer interface {
	Issue(claims ClaimSet) (*BearerToken, error)
}

// Verifier checks a serialized token and returns its claims.
type Verifier interface {
	Verify(raw string) (ClaimSet, error)
}

type payload struct {
	Name  string           `json:"name,omitempty"`
	Roles jwt.ClaimStrings `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Codec is safe for concurrent use; it holds only read-only state.
type Codec struct {
	cfg    *SigningConfig
	now    func() time.Time
	parser *jwt.Parser
}

type Option func(*Codec)

// WithClock overrides the time source for issuance and verification.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) { c.now = now }
}

func NewCodec(cfg *SigningConfig, opts ...Option) *Codec {
	c := &Codec{cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}

	// issuer and audience are deliberately not pinned
	c.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{Algorithm}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(ClockSkew),
		jwt.WithTimeFunc(c.now),
		jwt.WithStrictDecoding(),
	)
	return c
}

// Issue signs claims with HS256, stamping issuer, audience and expiry.
// A missing jti is filled with a fresh random UUID.
func (c *Codec) Issue(claims ClaimSet) (*BearerToken, error) {
	if claims == nil {
		return nil, errors.New("claims must not be nil")
	}

	now := c.now()
	expiresAt := now.Add(AccessTokenLifetime)

	p := payload{
		Name:  claims.Name(),
		Roles: claims.Roles(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        claims.ID(),
			Issuer:    c.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if c.cfg.Audience != "" {
		p.Audience = jwt.ClaimStrings{c.cfg.Audience}
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, p).SignedString(c.cfg.secretKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	// NumericDate truncates to whole seconds
	return &BearerToken{Token: signed, ExpiresAt: p.ExpiresAt.Time}, nil
}

// Verify never panics; every failure comes back as a *ValidationError.
func (c *Codec) Verify(raw string) (claims ClaimSet, err error) {
	defer func() {
		if r := recover(); r != nil {
			claims, err = nil, &ValidationError{Kind: ErrMalformed, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	var p payload
	tok, err := c.parser.ParseWithClaims(raw, &p, c.keyFunc)
	if err != nil {
		return nil, classify(raw, err)
	}
	if !tok.Valid {
		return nil, &ValidationError{Kind: ErrMalformed}
	}

	claims = ClaimSet{{Type: ClaimName, Value: p.Name}, {Type: ClaimID, Value: p.ID}}
	for _, role := range p.Roles {
		claims = append(claims, Claim{Type: ClaimRole, Value: role})
	}
	return claims, nil
}

func (c *Codec) keyFunc(t *jwt.Token) (any, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
	}
	if len(c.cfg.secretKey) == 0 {
		return nil, ErrEmptyKey
	}
	return c.cfg.secretKey, nil
}

func classify(raw string, err error) *ValidationError {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed) && badSignatureSegment(raw):
		return &ValidationError{Kind: ErrSignatureMismatch, Err: err}
	case errors.Is(err, jwt.ErrTokenExpired), errors.Is(err, jwt.ErrTokenNotValidYet),
		errors.Is(err, jwt.ErrTokenUsedBeforeIssued):
		return &ValidationError{Kind: ErrExpired, Err: err}
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return &ValidationError{Kind: ErrSignatureMismatch, Err: err}
	default:
		return &ValidationError{Kind: ErrMalformed, Err: err}
	}
}

// badSignatureSegment reports whether only the signature segment fails
// strict base64url decoding, e.g. when its unused trailing bits were altered.
func badSignatureSegment(raw string) bool {
	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return false
	}
	enc := base64.RawURLEncoding.Strict()
	for _, seg := range parts[:2] {
		if _, err := enc.DecodeString(seg); err != nil {
			return false
		}
	}
	_, err := enc.DecodeString(parts[2])
	return err != nil
}
