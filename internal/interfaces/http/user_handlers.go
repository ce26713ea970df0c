package http

import (
	"context"
	stdhttp "net/http"

	"app-hub/internal/domain"
	"app-hub/internal/ports"

	"github.com/labstack/echo/v4"
)

type UserUseCases interface {
	List(ctx context.Context, caller domain.User, search string) ([]domain.User, error)
	Get(ctx context.Context, caller domain.User, userID int64) (domain.User, error)
	Update(ctx context.Context, caller domain.User, userID int64, patch domain.UserPatch) (domain.User, error)
	Delete(ctx context.Context, caller domain.User, userID int64) error
}

type UsersHandler struct {
	service UserUseCases
	logger  ports.Logger
}

func NewUsersHandler(service UserUseCases, logger ports.Logger) *UsersHandler {
	return &UsersHandler{service: service, logger: logger}
}

func (h *UsersHandler) List(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	users, err := h.service.List(c.Request().Context(), caller, c.QueryParam("search"))
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return c.JSON(stdhttp.StatusOK, users)
}

func (h *UsersHandler) Get(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return handleError(c, h.logger, err)
	}
	user, err := h.service.Get(c.Request().Context(), caller, id)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return c.JSON(stdhttp.StatusOK, user)
}

type updateUserRequest struct {
	FullName *string      `json:"full_name" validate:"omitempty,min=3,max=100"`
	Role     *domain.Role `json:"role" validate:"omitempty,oneof=Admin User"`
}

func (h *UsersHandler) Update(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return handleError(c, h.logger, err)
	}
	var req updateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	user, err := h.service.Update(c.Request().Context(), caller, id, domain.UserPatch{FullName: req.FullName, Role: req.Role})
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return c.JSON(stdhttp.StatusOK, user)
}

func (h *UsersHandler) Delete(c echo.Context) error {
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
