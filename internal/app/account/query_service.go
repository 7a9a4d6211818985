package account

import (
	"context"
	"log/slog"

	"github.com/astro-web3/booking-api/internal/domain/identity"
	"github.com/astro-web3/booking-api/pkg/logger"
	"github.com/astro-web3/booking-api/pkg/tracer"
	"go.opentelemetry.io/otel/attribute"
)

type QueryService struct {
	store identity.Store
}

func NewQueryService(store identity.Store) *QueryService {
	return &QueryService{store: store}
}

func (s *QueryService) ListRoles(ctx context.Context) ([]string, error) {
	ctx, span := tracer.Start(ctx, "app.account.ListRoles")
	defer span.End()

	roles, err := s.store.ListRoles(ctx)
	if err != nil {
		tracer.Fail(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("account.role_count", len(roles)))
	return roles, nil
}

// UserRoles returns identity.ErrUserNotFound for unknown users.
func (s *QueryService) UserRoles(ctx context.Context, username string) ([]string, error) {
	ctx, span := tracer.Start(ctx, "app.account.UserRoles")
	defer span.End()

	span.SetAttributes(attribute.String("account.username", username))

	user, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		tracer.Fail(span, err)
		return nil, err
	}
	if user == nil {
		return nil, identity.ErrUserNotFound
	}

	roles, err := s.store.GetRoles(ctx, username)
	if err != nil {
		tracer.Fail(span, err)
		return nil, err
	}

	logger.DebugContext(ctx, "user roles listed",
		slog.String("username", username),
		slog.Int("count", len(roles)),
	)
	return roles, nil
}
