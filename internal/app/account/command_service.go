package account

import (
	"context"
	"errors"
	"log/slog"

	"github.com/astro-web3/booking-api/internal/domain/authn"
	"github.com/astro-web3/booking-api/internal/domain/identity"
	"github.com/astro-web3/booking-api/pkg/logger"
	"github.com/astro-web3/booking-api/pkg/tracer"
	"go.opentelemetry.io/otel/attribute"
)

type Registrar interface {
	Register(ctx context.Context, req identity.RegisterRequest) (*identity.RegisterResult, error)
}

type CommandService struct {
	authService authn.Service
	registrar   Registrar
}

func NewCommandService(authService authn.Service, registrar Registrar) *CommandService {
	return &CommandService{
		authService: authService,
		registrar:   registrar,
	}
}

// Login returns authn.ErrInvalidCredentials for any rejected credential.
func (s *CommandService) Login(ctx context.Context, username, password string) (*authn.LoginResult, error) {
	ctx, span := tracer.Start(ctx, "app.account.Login")
	defer span.End()

	span.SetAttributes(attribute.String("account.username", username))

	res, err := s.authService.IssueForLogin(ctx, username, password)
	if err != nil {
		if errors.Is(err, authn.ErrInvalidCredentials) {
			span.SetAttributes(attribute.Bool("account.login_rejected", true))
			logger.WarnContext(ctx, "login rejected",
				slog.String("username", username),
				slog.String("reason", err.Error()),
			)
			return nil, err
		}
		tracer.Fail(span, err)
		logger.ErrorContext(ctx, "login failed", slog.String("error", err.Error()))
		return nil, err
	}

	logger.InfoContext(ctx, "token issued",
		slog.String("username", username),
		slog.Time("expiration", res.Expiration),
	)
	return res, nil
}

func (s *CommandService) Register(ctx context.Context, req identity.RegisterRequest) (*identity.RegisterResult, error) {
	ctx, span := tracer.Start(ctx, "app.account.Register")
	defer span.End()

	span.SetAttributes(
		attribute.String("account.username", req.Username),
		attribute.String("account.role", req.Role),
	)

	logger.InfoContext(ctx, "registering user",
		slog.String("username", req.Username),
		slog.String("role", req.Role),
	)

	res, err := s.registrar.Register(ctx, req)
	if err != nil {
		tracer.Fail(span, err)
		logger.ErrorContext(ctx, "registration failed", slog.String("error", err.Error()))
		return nil, err
	}

	span.SetAttributes(attribute.String("account.status", res.Status))
	if res.Status != identity.StatusSuccess {
		logger.WarnContext(ctx, "registration refused",
			slog.String("username", req.Username),
			slog.String("message", res.Message),
		)
		return res, nil
	}

	logger.InfoContext(ctx, "user registered", slog.String("username", req.Username))
	return res, nil
}
