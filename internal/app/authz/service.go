package authz

import (
	"context"
	"log/slog"

	"github.com/astro-web3/booking-api/internal/domain/authz"
	"github.com/astro-web3/booking-api/pkg/logger"
	"github.com/astro-web3/booking-api/pkg/tracer"
	"go.opentelemetry.io/otel/attribute"
)

type Service interface {
	Check(ctx context.Context, req authz.Request) *authz.AuthzDecision
}

type Evaluator interface {
	Evaluate(req authz.Request) *authz.AuthzDecision
}

type service struct {
	gate Evaluator
}

func NewService(gate Evaluator) Service {
	return &service{gate: gate}
}

func (s *service) Check(ctx context.Context, req authz.Request) *authz.AuthzDecision {
	ctx, span := tracer.Start(ctx, "app.authz.Check")
	defer span.End()

	span.SetAttributes(
		attribute.StringSlice("authz.requirements", req.Requirements),
		attribute.Bool("authz.header_present", req.HasAuthorization),
		attribute.String("authz.token.prefix", tokenPrefix(authz.ExtractToken(req.Authorization))),
	)

	decision := s.gate.Evaluate(req)

	span.SetAttributes(
		attribute.Bool("authz.allowed", decision.Allow),
		attribute.String("authz.reason", decision.Reason),
	)
	if !decision.Allow {
		logger.WarnContext(ctx, "authorization denied", slog.String("reason", decision.Reason))
	} else {
		logger.DebugContext(ctx, "authorization allowed", slog.String("reason", decision.Reason))
	}

	return decision
}

const tokenPrefixLength = 8

func tokenPrefix(tok string) string {
	if len(tok) > tokenPrefixLength {
		return tok[:tokenPrefixLength] + "..."
	}
	return "***"
}
