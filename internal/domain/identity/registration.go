package identity

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode"

	"github.com/google/uuid"
)

const (
	StatusSuccess = "Success"
	StatusError   = "Error"
)

const (
	MsgUserExists       = "User already exists!"
	MsgInvalidRole      = "Invalid Role found! Please check user details and try again."
	MsgRolesMissing     = "Relavent User Roles Not found!"
	MsgCreateFailed     = "User creation failed! Please check user details and try again."
	MsgRoleAssignFailed = "User creation failed when ading user roles! Please check user details and try again."
	MsgCreated          = "User created successfully!"
)

const minPasswordLength = 6

var ErrWeakPassword = errors.New("password does not meet policy")

type RegisterRequest struct {
	Username string
	Email    string
	Password string
	Role     string
}

// RegisterResult is the business outcome; Status is StatusSuccess or StatusError.
type RegisterResult struct {
	Status  string
	Message string
}

func failed(msg string) *RegisterResult {
	return &RegisterResult{Status: StatusError, Message: msg}
}

type Registrar struct {
	store  Store
	hasher PasswordHasher
	now    func() time.Time
}

func NewRegistrar(store Store, hasher PasswordHasher) *Registrar {
	return &Registrar{store: store, hasher: hasher, now: time.Now}
}

// Register creates a user and assigns roles. Rule violations come back as a
// StatusError result; only store failures are returned as errors.
func (r *Registrar) Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error) {
	existing, err := r.store.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if existing != nil {
		return failed(MsgUserExists), nil
	}

	if !IsKnownRole(req.Role) {
		return failed(MsgInvalidRole), nil
	}

	ok, err := r.EnsureRoles(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return failed(MsgRolesMissing), nil
	}

	user, err := r.newUser(req)
	if err != nil {
		return failed(MsgCreateFailed), nil
	}
	if err := r.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, ErrUserExists) {
			return failed(MsgCreateFailed), nil
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	roles := []string{req.Role}
	if req.Role == RoleAdmin {
		roles = []string{RoleCustomer, RoleAdmin, RoleDriver}
	}

	if err := r.store.AddToRoles(ctx, user.Username, roles...); err != nil {
		if delErr := r.store.DeleteUser(ctx, user.Username); delErr != nil {
			return nil, fmt.Errorf("failed to roll back user after role assignment: %w", errors.Join(err, delErr))
		}
		return failed(MsgRoleAssignFailed), nil
	}

	return &RegisterResult{Status: StatusSuccess, Message: MsgCreated}, nil
}

// EnsureRoles creates any missing catalogue role and reports whether all exist afterwards.
func (r *Registrar) EnsureRoles(ctx context.Context) (bool, error) {
	for _, role := range KnownRoles() {
		exists, err := r.store.RoleExists(ctx, role)
		if err != nil {
			return false, fmt.Errorf("failed to check role %s: %w", role, err)
		}
		if exists {
			continue
		}
		if err := r.store.CreateRole(ctx, role); err != nil {
			return false, fmt.Errorf("failed to create role %s: %w", role, err)
		}
	}

	for _, role := range KnownRoles() {
		exists, err := r.store.RoleExists(ctx, role)
		if err != nil {
			return false, fmt.Errorf("failed to check role %s: %w", role, err)
		}
		if !exists {
			return false, nil
		}
	}
	return true, nil
}

func (r *Registrar) newUser(req RegisterRequest) (*User, error) {
	if err := CheckPassword(req.Password); err != nil {
		return nil, err
	}

	hash, err := r.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	now := r.now().UTC()
	return &User{
		ID:            uuid.NewString(),
		Username:      req.Username,
		Email:         req.Email,
		PasswordHash:  hash,
		SecurityStamp: uuid.NewString(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// CheckPassword applies the default policy: at least six characters with an
// upper case letter, a lower case letter, a digit and a symbol.
func CheckPassword(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("%w: shorter than %d characters", ErrWeakPassword, minPasswordLength)
	}

	var upper, lower, digit, symbol bool
	for _, c := range password {
		switch {
		case unicode.IsUpper(c):
			upper = true
		case unicode.IsLower(c):
			lower = true
		case unicode.IsDigit(c):
			digit = true
		default:
			symbol = true
		}
	}

	if !upper || !lower || !digit || !symbol {
		return fmt.Errorf("%w: needs upper, lower, digit and symbol", ErrWeakPassword)
	}
	return nil
}
