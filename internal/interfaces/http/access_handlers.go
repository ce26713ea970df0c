package http

import (
	"context"
	stdhttp "net/http"

	"app-hub/internal/domain"
	"app-hub/internal/ports"

	"github.com/labstack/echo/v4"
)

type AccessUseCases interface {
	List(ctx context.Context, caller domain.User) ([]domain.Grant, error)
	Get(ctx context.Context, caller domain.User, grantID int64) (domain.Grant, error)
	Create(ctx context.Context, caller domain.User, userID, appID int64, level domain.PermissionLevel) (domain.Grant, error)
	UpdateLevel(ctx context.Context, caller domain.User, grantID int64, level domain.PermissionLevel) (domain.Grant, error)
	Delete(ctx context.Context, caller domain.User, grantID int64) error
}

type AccessHandler struct {
	service AccessUseCases
	logger  ports.Logger
}

func NewAccessHandler(service AccessUseCases, logger ports.Logger) *AccessHandler {
	return &AccessHandler{service: service, logger: logger}
}

func (h *AccessHandler) List(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	grants, err := h.service.List(c.Request().Context(), caller)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return c.JSON(stdhttp.StatusOK, grants)
}

func (h *AccessHandler) Get(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return handleError(c, h.logger, err)
	}
	grant, err := h.service.Get(c.Request().Context(), caller, id)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return c.JSON(stdhttp.StatusOK, grant)
}

type createGrantRequest struct {
	UserID          int64  `json:"user_id" validate:"required,min=1"`
	ApplicationID   int64  `json:"application_id" validate:"required,min=1"`
	PermissionLevel string `json:"permission_level" validate:"required,oneof=read write admin"`
}

func (h *AccessHandler) Create(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	var req createGrantRequest
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	grant, err := h.service.Create(c.Request().Context(), caller, req.UserID, req.ApplicationID, domain.PermissionLevel(req.PermissionLevel))
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return c.JSON(stdhttp.StatusCreated, grant)
}

type updateGrantRequest struct {
	PermissionLevel string `json:"permission_level" validate:"required,oneof=read write admin"`
}

func (h *AccessHandler) Update(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return handleError(c, h.logger, err)
	}
	var req updateGrantRequest
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	grant, err := h.service.UpdateLevel(c.Request().Context(), caller, id, domain.PermissionLevel(req.PermissionLevel))
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return c.JSON(stdhttp.StatusOK, grant)
}

func (h *AccessHandler) Delete(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return handleError(c, h.logger, err)
	}
	if err := h.service.Delete(c.Request().Context(), caller, id); err != nil {
		return handleError(c, h.logger, err)
	}
	return c.NoContent(stdhttp.StatusNoContent)
}
