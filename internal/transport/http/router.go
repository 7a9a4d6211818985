package http

import (
	"net/http"

	"github.com/astro-web3/booking-api/internal/config"
	authzdomain "github.com/astro-web3/booking-api/internal/domain/authz"
	"github.com/astro-web3/booking-api/internal/transport/http/handler"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// RPCRoute mounts a connect handler under the gin engine.
type RPCRoute struct {
	Path    string
	Handler http.Handler
}

func NewRouter(
	cfg *config.Config,
	guard *Handler,
	accountHandler *handler.AccountHandler,
	rpc ...RPCRoute,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	} else if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()

	router.Use(gin.Recovery())
	if cfg.Observability.TraceEnabled {
		router.Use(otelgin.Middleware(serviceName))
	}
	router.Use(loggingMiddleware())

	router.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	api := router.Group("/api")
	api.POST("/authenticate/login", accountHandler.Login)
	api.POST("/management/register", accountHandler.Register)

	protected := api.Group("/management", guard.RequirePolicy(authzdomain.PolicyJwt))
	protected.GET("/roles", accountHandler.ListRoles)
	protected.GET("/users/:username/roles", accountHandler.UserRoles)

	for _, r := range rpc {
		router.Any(r.Path, gin.WrapH(r.Handler))
	}

	return router
}
