package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/astro-web3/booking-api/internal/app/account"
	authzapp "github.com/astro-web3/booking-api/internal/app/authz"
	"github.com/astro-web3/booking-api/internal/config"
	"github.com/astro-web3/booking-api/internal/domain/authn"
	authzdomain "github.com/astro-web3/booking-api/internal/domain/authz"
	"github.com/astro-web3/booking-api/internal/domain/identity"
	"github.com/astro-web3/booking-api/internal/domain/token"
	"github.com/astro-web3/booking-api/internal/infra/store"
	grpctransport "github.com/astro-web3/booking-api/internal/transport/grpc"
	"github.com/astro-web3/booking-api/internal/transport/http/handler"
	"github.com/astro-web3/booking-api/pkg/logger"
	"github.com/astro-web3/booking-api/pkg/otel"
	"github.com/astro-web3/booking-api/pkg/tracer"
	"github.com/gin-gonic/gin"
)

type Server struct {
	httpServer *http.Server
}

const (
	idleTimeoutMultiplier = 2
	serviceName           = "booking-api"
)

func NewServer(cfg *config.Config) (*Server, error) {
	logger.InitLogger(cfg.Observability.LogLevel, cfg.Observability.Format, cfg.Observability.LogSource)

	otelCfg := otel.DefaultConfig(serviceName)
	otelCfg.EndpointURL = cfg.Observability.TracingEndpointURL
	otelCfg.Enabled = cfg.Observability.TraceEnabled
	if err := tracer.InitTracer(otelCfg); err != nil {
		return nil, fmt.Errorf("failed to initialize tracer: %w", err)
	}

	identityStore, err := newIdentityStore(cfg)
	if err != nil {
		return nil, err
	}

	router, err := NewEngine(cfg, identityStore)
	if err != nil {
		return nil, err
	}

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout * idleTimeoutMultiplier,
	}

	return &Server{
		httpServer: httpServer,
	}, nil
}

func newIdentityStore(cfg *config.Config) (identity.Store, error) {
	if cfg.Identity.Backend != config.IdentityBackendRedis {
		return store.NewMemoryStore(), nil
	}

	redisClient, err := store.NewRedisClient(cfg.Redis.URL, cfg.Redis.PoolSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create redis client: %w", err)
	}
	return store.NewRedisStore(redisClient), nil
}

// NewEngine wires the token, identity and authorization services over
// identityStore and returns the routed engine.
func NewEngine(cfg *config.Config, identityStore identity.Store) (*gin.Engine, error) {
	signing, err := token.NewSigningConfig(
		cfg.JWT.UseJwt,
		cfg.JWT.SecretKey,
		cfg.JWT.ValidIssuer,
		cfg.JWT.ValidAudience,
	)
	if err != nil {
		return nil, fmt.Errorf("invalid jwt signing config: %w", err)
	}

	codec := token.NewCodec(signing)
	hasher := identity.NewBcryptHasher(cfg.Identity.BcryptCost)

	registrar := identity.NewRegistrar(identityStore, hasher)
	ok, err := registrar.EnsureRoles(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to seed roles: %w", err)
	}
	if !ok {
		logger.WarnContext(context.Background(), "role catalogue incomplete after seeding")
	}

	authService := authn.NewService(identity.NewValidator(identityStore, hasher), identityStore, codec)
	commandService := account.NewCommandService(authService, registrar)
	queryService := account.NewQueryService(identityStore)

	authzService := authzapp.NewService(authzdomain.NewGate(signing, codec))

	rpcPath, rpcHandler := grpctransport.NewRouter(grpctransport.NewHandler(authzService))

	logger.InfoContext(context.Background(), "services wired",
		slog.String("identity_backend", cfg.Identity.Backend),
		slog.Bool("jwt_enforced", signing.EnforcementEnabled),
	)

	return NewRouter(
		cfg,
		NewHandler(authzService),
		handler.NewAccountHandler(commandService, queryService),
		RPCRoute{Path: rpcPath, Handler: rpcHandler},
	), nil
}

func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
