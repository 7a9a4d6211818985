package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/astro-web3/booking-api/internal/config"
	httptransport "github.com/astro-web3/booking-api/internal/transport/http"
	"github.com/astro-web3/booking-api/pkg/logger"
	"github.com/astro-web3/booking-api/pkg/otel"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.MustLoad()

	srv, err := httptransport.NewServer(cfg)
	if err != nil {
		log.Fatalf("Failed to create booking api server: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErrChan := make(chan error, 1)
	go func() {
		logger.InfoContext(ctx, "booking api listening",
			slog.String("addr", cfg.Server.Addr),
			slog.String("mode", cfg.Server.Mode),
			slog.Bool("jwt_enforced", cfg.JWT.UseJwt),
		)
		if listenErr := srv.ListenAndServe(); listenErr != nil &&
			!errors.Is(listenErr, http.ErrServerClosed) {
			serverErrChan <- listenErr
		}
	}()

	select {
	case <-ctx.Done():
		logger.InfoContext(context.Background(), "shutting down")
	case serverErr := <-serverErrChan:
		logger.ErrorContext(context.Background(), "server failed, shutting down",
			slog.String("error", serverErr.Error()),
		)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorContext(shutdownCtx, "server forced to shutdown", slog.String("error", err.Error()))
	}
	if err := otel.Shutdown(shutdownCtx); err != nil {
		logger.ErrorContext(shutdownCtx, "failed to flush tracer provider", slog.String("error", err.Error()))
	}

	if ctx.Err() == nil {
		os.Exit(1)
	}
}
