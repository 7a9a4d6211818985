package grpc

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"
	"github.com/astro-web3/booking-api/pkg/logger"
)

var errPanic = errors.New("internal error")

func recoveryInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (resp connect.AnyResponse, err error) {
			defer func() {
				if r := recover(); r != nil {
					logger.ErrorContext(ctx, "panic recovered",
						slog.String("method", req.Spec().Procedure),
						slog.Any("panic", r),
					)
					resp, err = nil, connect.NewError(connect.CodeInternal, errPanic)
				}
			}()
			return next(ctx, req)
		}
	}
}

func loggingInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			resp, err := next(ctx, req)
			duration := time.Since(start)

			switch {
			case err == nil:
				logger.InfoContext(ctx, "request completed",
					slog.String("method", req.Spec().Procedure),
					slog.Duration("duration", duration),
				)
			case connect.CodeOf(err) == connect.CodeUnauthenticated:
				logger.WarnContext(ctx, "request denied",
					slog.String("method", req.Spec().Procedure),
					slog.Duration("duration", duration),
				)
			default:
				logger.ErrorContext(ctx, "request failed",
					slog.String("method", req.Spec().Procedure),
					slog.Duration("duration", duration),
					slog.String("error", err.Error()),
				)
			}

			return resp, err
		}
	}
}
