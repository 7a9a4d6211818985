package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/astro-web3/booking-api/internal/domain/authn"
	"github.com/astro-web3/booking-api/internal/domain/identity"
	"github.com/astro-web3/booking-api/pkg/logger"
	"github.com/astro-web3/booking-api/pkg/tracer"
	"github.com/gin-gonic/gin"
)

type AccountCommands interface {
	Login(ctx context.Context, username, password string) (*authn.LoginResult, error)
	Register(ctx context.Context, req identity.RegisterRequest) (*identity.RegisterResult, error)
}

type AccountQueries interface {
	ListRoles(ctx context.Context) ([]string, error)
	UserRoles(ctx context.Context, username string) ([]string, error)
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token      string    `json:"token"`
	Expiration time.Time `json:"expiration"`
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

type RegisterResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type AccountHandler struct {
	commands AccountCommands
	queries  AccountQueries
}

func NewAccountHandler(commands AccountCommands, queries AccountQueries) *AccountHandler {
	return &AccountHandler{
		commands: commands,
		queries:  queries,
	}
}

// Login answers 401 with an empty body for any rejected credential.
func (h *AccountHandler) Login(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "transport.http.Login")
	defer span.End()

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.commands.Login(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, authn.ErrInvalidCredentials) {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		tracer.Fail(span, err)
		internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, LoginResponse{Token: res.Token, Expiration: res.Expiration})
}

// Register answers 200 with the status envelope even for refused registrations.
func (h *AccountHandler) Register(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "transport.http.Register")
	defer span.End()

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.commands.Register(ctx, identity.RegisterRequest{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		tracer.Fail(span, err)
		internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, RegisterResponse{Status: res.Status, Message: res.Message})
}

func (h *AccountHandler) ListRoles(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "transport.http.ListRoles")
	defer span.End()

	roles, err := h.queries.ListRoles(ctx)
	if err != nil {
		tracer.Fail(span, err)
		internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"roles": roles})
}

func (h *AccountHandler) UserRoles(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "transport.http.UserRoles")
	defer span.End()

	username := c.Param("username")
	roles, err := h.queries.UserRoles(ctx, username)
	if err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		tracer.Fail(span, err)
		internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"username": username, "roles": roles})
}

func internalError(c *gin.Context, err error) {
	logger.ErrorContext(c.Request.Context(), "request handling failed", slog.String("error", err.Error()))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
