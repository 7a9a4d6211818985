package store

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/astro-web3/booking-api/internal/domain/identity"
	"github.com/redis/go-redis/v9"
)

const (
	userKeyPrefix  = "identity:user:"
	rolesKeyPrefix = "identity:roles:"
	catalogueKey   = "identity:roles"
)

func NewRedisClient(url string, poolSize int) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	if poolSize > 0 {
		opt.PoolSize = poolSize
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

// RedisStore keeps each user in a hash and its roles in a set.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func userKey(username string) string  { return userKeyPrefix + username }
func rolesKey(username string) string { return rolesKeyPrefix + username }

func (s *RedisStore) FindByUsername(ctx context.Context, username string) (*identity.User, error) {
	vals, err := s.client.HGetAll(ctx, userKey(username)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get user from redis: %w", err)
	}
	if len(vals) == 0 {
		return nil, nil
	}

	u := &identity.User{
		ID:            vals["id"],
		Username:      vals["username"],
		Email:         vals["email"],
		PasswordHash:  vals["password_hash"],
		SecurityStamp: vals["security_stamp"],
	}
	if u.CreatedAt, err = parseTime(vals["created_at"]); err != nil {
		return nil, err
	}
	if u.UpdatedAt, err = parseTime(vals["updated_at"]); err != nil {
		return nil, err
	}
	return u, nil
}

// createUserScript claims the user hash and writes every field in one step,
// so readers never see a partially written user.
var createUserScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 1 then
	return 0
end
redis.call("HSET", KEYS[1], unpack(ARGV))
return 1
`)

func (s *RedisStore) CreateUser(ctx context.Context, user *identity.User) error {
	created, err := createUserScript.Run(ctx, s.client, []string{userKey(user.Username)},
		"id", user.ID,
		"username", user.Username,
		"email", user.Email,
		"password_hash", user.PasswordHash,
		"security_stamp", user.SecurityStamp,
		"created_at", user.CreatedAt.Format(time.RFC3339Nano),
		"updated_at", user.UpdatedAt.Format(time.RFC3339Nano),
	).Int()
	if err != nil {
		return fmt.Errorf("failed to create user in redis: %w", err)
	}
	if created == 0 {
		return identity.ErrUserExists
	}
	return nil
}

func (s *RedisStore) DeleteUser(ctx context.Context, username string) error {
	n, err := s.client.Del(ctx, userKey(username), rolesKey(username)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete user from redis: %w", err)
	}
	if n == 0 {
		return identity.ErrUserNotFound
	}
	return nil
}

func (s *RedisStore) GetRoles(ctx context.Context, username string) ([]string, error) {
	if err := s.mustExist(ctx, username); err != nil {
		return nil, err
	}

	roles, err := s.client.SMembers(ctx, rolesKey(username)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get roles from redis: %w", err)
	}
	slices.Sort(roles)
	return roles, nil
}

func (s *RedisStore) AddToRoles(ctx context.Context, username string, roles ...string) error {
	if err := s.mustExist(ctx, username); err != nil {
		return err
	}

	members := make([]any, 0, len(roles))
	for _, role := range roles {
		ok, err := s.RoleExists(ctx, role)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: %s", identity.ErrRoleNotFound, role)
		}
		members = append(members, role)
	}
	if len(members) == 0 {
		return nil
	}

	if err := s.client.SAdd(ctx, rolesKey(username), members...).Err(); err != nil {
		return fmt.Errorf("failed to add roles in redis: %w", err)
	}
	return nil
}

func (s *RedisStore) ListRoles(ctx context.Context) ([]string, error) {
	roles, err := s.client.SMembers(ctx, catalogueKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list roles from redis: %w", err)
	}
	slices.Sort(roles)
	return roles, nil
}

func (s *RedisStore) RoleExists(ctx context.Context, role string) (bool, error) {
	ok, err := s.client.SIsMember(ctx, catalogueKey, role).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check role in redis: %w", err)
	}
	return ok, nil
}

func (s *RedisStore) CreateRole(ctx context.Context, role string) error {
	if err := s.client.SAdd(ctx, catalogueKey, role).Err(); err != nil {
		return fmt.Errorf("failed to create role in redis: %w", err)
	}
	return nil
}

func (s *RedisStore) mustExist(ctx context.Context, username string) error {
	n, err := s.client.Exists(ctx, userKey(username)).Result()
	if err != nil {
		return fmt.Errorf("failed to check user in redis: %w", err)
	}
	if n == 0 {
		return identity.ErrUserNotFound
	}
	return nil
}

func parseTime(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse stored time: %w", err)
	}
	return t, nil
}
