package http

import (
	"context"
	"errors"
	stdhttp "net/http"
	"strconv"
	"strings"

	"app-hub/internal/adapters/http/middleware"
	"app-hub/internal/domain"
	"app-hub/internal/ports"

	"github.com/labstack/echo/v4"
)

// handleError maps domain sentinels to status codes. Only the sentinel text
// reaches the client; anything unrecognised is logged and reported as 500.
func handleError(c echo.Context, logger ports.Logger, err error) error {
	status, sentinel := stdhttp.StatusInternalServerError, domain.ErrInternal
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		status, sentinel = stdhttp.StatusBadRequest, domain.ErrInvalidInput
	case errors.Is(err, domain.ErrInvalidCreds):
		status, sentinel = stdhttp.StatusUnauthorized, domain.ErrInvalidCreds
	case errors.Is(err, domain.ErrTokenExpired):
		status, sentinel = stdhttp.StatusUnauthorized, domain.ErrTokenExpired
	case errors.Is(err, domain.ErrMalformedToken):
		status, sentinel = stdhttp.StatusUnauthorized, domain.ErrMalformedToken
	case errors.Is(err, domain.ErrUnauthenticated):
		status, sentinel = stdhttp.StatusUnauthorized, domain.ErrUnauthenticated
	case errors.Is(err, domain.ErrPermissionDeny):
		status, sentinel = stdhttp.StatusForbidden, domain.ErrPermissionDeny
	case errors.Is(err, domain.ErrNotFound):
		status, sentinel = stdhttp.StatusNotFound, domain.ErrNotFound
	case errors.Is(err, domain.ErrConflict):
		status, sentinel = stdhttp.StatusConflict, domain.ErrConflict
	case errors.Is(err, domain.ErrBadGateway):
		status, sentinel = stdhttp.StatusBadGateway, domain.ErrBadGateway
	case errors.Is(err, domain.ErrConfiguration):
		status, sentinel = stdhttp.StatusInternalServerError, domain.ErrConfiguration
	}
	if status >= stdhttp.StatusInternalServerError {
		logger.Error(c.Request().Context(), "request failed",
			"method", c.Request().Method,
			"route_pattern", c.Path(),
			"error", err.Error(),
		)
	}
	return c.JSON(status, map[string]string{"error": sentinel.Error()})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(stdhttp.StatusBadRequest, map[string]string{"error": msg})
}

var errInvalidPayload = errors.New("invalid payload")

// bindAndValidate decodes the body into req and runs the struct tags through
// the echo validator. The returned error text is safe to send to the client.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return errInvalidPayload
	}
	return c.Validate(req)
}

func callerFrom(c echo.Context) (domain.User, error) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return domain.User{}, domain.ErrUnauthenticated
	}
	return user, nil
}

func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ErrInvalidInput
	}
	return id, nil
}

func queryBool(c echo.Context, name string) (bool, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, domain.ErrInvalidInput
	}
	return v, nil
}

func queryID(c echo.Context, names ...string) (*int64, error) {
	for _, name := range names {
		raw := strings.TrimSpace(c.QueryParam(name))
		if raw == "" {
			continue
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return nil, domain.ErrInvalidInput
		}
		return &id, nil
	}
	return nil, nil
}

type HealthChecker interface {
	Healthy(ctx context.Context) error
}

type HealthHandler struct {
	db     HealthChecker
	logger ports.Logger
}

func NewHealthHandler(db HealthChecker, logger ports.Logger) *HealthHandler {
	return &HealthHandler{db: db, logger: logger}
}

func (h *HealthHandler) Check(c echo.Context) error {
	if err := h.db.Healthy(c.Request().Context()); err != nil {
		h.logger.Error(c.Request().Context(), "health check failed", "error", err.Error())
		return c.JSON(stdhttp.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
	}
	return c.JSON(stdhttp.StatusOK, map[string]string{"status": "ok"})
}
