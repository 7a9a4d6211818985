package grpc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"
	"github.com/astro-web3/booking-api/internal/app/authz"
	authzdomain "github.com/astro-web3/booking-api/internal/domain/authz"
	"github.com/astro-web3/booking-api/pkg/logger"
	"github.com/astro-web3/booking-api/pkg/tracer"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const authorizationHeader = "Authorization"

var errUnauthorized = errors.New("unauthorized")

// Handler answers whether the caller's bearer token satisfies the "Jwt" policy.
type Handler struct {
	appService authz.Service
}

func NewHandler(appService authz.Service) *Handler {
	return &Handler{appService: appService}
}

func (h *Handler) Check(
	ctx context.Context,
	req *connect.Request[emptypb.Empty],
) (*connect.Response[structpb.Struct], error) {
	ctx, span := tracer.Start(ctx, "transport.grpc.Check")
	defer span.End()

	values, present := req.Header()[authorizationHeader]
	authReq := authzdomain.Request{
		Requirements:     []string{authzdomain.PolicyJwt},
		HasAuthorization: present,
	}
	if present && len(values) > 0 {
		authReq.Authorization = values[0]
	}

	decision := h.appService.Check(ctx, authReq)
	span.SetAttributes(attribute.Bool("authz.allowed", decision.Allow))
	if !decision.Allow {
		return nil, connect.NewError(connect.CodeUnauthenticated, errUnauthorized)
	}

	body, err := structpb.NewStruct(map[string]any{
		"allowed": true,
		"policy":  authzdomain.PolicyJwt,
	})
	if err != nil {
		tracer.Fail(span, err)
		logger.ErrorContext(ctx, "failed to build check response", slog.String("error", err.Error()))
		return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("build response: %w", err))
	}

	return connect.NewResponse(body), nil
}
