package http

import (
	"context"
	stdhttp "net/http"
	"time"

	"app-hub/internal/application"
	"app-hub/internal/domain"
	"app-hub/internal/ports"

	"github.com/labstack/echo/v4"
)

type AuthUseCases interface {
	Register(ctx context.Context, in application.RegisterInput) (domain.User, error)
	Login(ctx context.Context, email, password string) (application.AccessToken, error)
}

type AuthHandler struct {
	service AuthUseCases
	logger  ports.Logger
}

func NewAuthHandler(service AuthUseCases, logger ports.Logger) *AuthHandler {
	return &AuthHandler{service: service, logger: logger}
}

// Form tags keep the login page's urlencoded posts working alongside JSON clients.
type registerRequest struct {
	FullName string `json:"full_name" form:"full_name" validate:"required,min=3,max=100"`
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required,min=8,max=72"`
	AdminKey string `json:"admin_key" form:"admin_key"`
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	user, err := h.service.Register(c.Request().Context(), application.RegisterInput{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
		AdminKey: req.AdminKey,
	})
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return c.JSON(stdhttp.StatusCreated, map[string]any{
		"message": "User registered successfully",
		"role":    user.Role,
		"email":   user.Email,
	})
}

type loginRequest struct {
	Email    string `json:"email" form:"email" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

type tokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	token, err := h.service.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return c.JSON(stdhttp.StatusOK, tokenResponse{AccessToken: token.Token, TokenType: "bearer", ExpiresAt: token.ExpiresAt})
}

func (h *AuthHandler) Me(c echo.Context) error {
	user, err := callerFrom(c)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return c.JSON(stdhttp.StatusOK, map[string]any{
		"id":        user.ID,
		"full_name": user.FullName,
		"email":     user.Email,
		"role":      user.Role,
	})
}
