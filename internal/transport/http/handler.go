package http

import (
	"net/http"

	"github.com/astro-web3/booking-api/internal/app/authz"
	authzdomain "github.com/astro-web3/booking-api/internal/domain/authz"
	"github.com/astro-web3/booking-api/pkg/tracer"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

const authorizationHeader = "Authorization"

type Handler struct {
	appService authz.Service
}

func NewHandler(appService authz.Service) *Handler {
	return &Handler{appService: appService}
}

// RequirePolicy guards the routes after it with the named policies.
// A denied request is answered 401 and the chain is aborted.
func (h *Handler) RequirePolicy(policies ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracer.Start(c.Request.Context(), "transport.http.RequirePolicy")
		defer span.End()

		values, present := c.Request.Header[authorizationHeader]
		req := authzdomain.Request{
			Requirements:     policies,
			HasAuthorization: present,
		}
		if present && len(values) > 0 {
			req.Authorization = values[0]
		}

		decision := h.appService.Check(ctx, req)
		if !decision.Allow {
			span.SetAttributes(attribute.Bool("authz.allowed", false))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		span.SetAttributes(attribute.Bool("authz.allowed", true))
		c.Next()
	}
}
