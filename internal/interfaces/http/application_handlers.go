package http

import (
	"context"
	stdhttp "net/http"

	"app-hub/internal/application"
	"app-hub/internal/domain"
	"app-hub/internal/ports"

	"github.com/labstack/echo/v4"
)

type ApplicationUseCases interface {
	List(ctx context.Context, caller domain.User, q application.ApplicationQuery) ([]domain.ApplicationView, error)
	Get(ctx context.Context, caller domain.User, appID int64) (domain.ApplicationView, error)
	Create(ctx context.Context, caller domain.User, in application.CreateApplicationInput) (domain.Application, error)
	Update(ctx context.Context, caller domain.User, appID int64, patch domain.ApplicationPatch) (domain.Application, error)
	Delete(ctx context.Context, caller domain.User, appID int64) error
}

type ApplicationsHandler struct {
	service ApplicationUseCases
	logger  ports.Logger
}

func NewApplicationsHandler(service ApplicationUseCases, logger ports.Logger) *ApplicationsHandler {
	return &ApplicationsHandler{service: service, logger: logger}
}

func (h *ApplicationsHandler) List(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	dashboard, err := queryBool(c, "dashboard")
	if err != nil {
		return handleError(c, h.logger, err)
	}
	views, err := h.service.List(c.Request().Context(), caller, application.ApplicationQuery{
		Search:    c.QueryParam("search"),
		Category:  domain.Category(c.QueryParam("category")),
		Status:    domain.AppStatus(c.QueryParam("status")),
		Dashboard: dashboard,
	})
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return c.JSON(stdhttp.StatusOK, views)
}

func (h *ApplicationsHandler) Get(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return handleError(c, h.logger, err)
	}
	view, err := h.service.Get(c.Request().Context(), caller, id)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return c.JSON(stdhttp.StatusOK, view)
}

type createApplicationRequest struct {
	Name     string `json:"name" validate:"required,max=150"`
	Category string `json:"category" validate:"omitempty,oneof=ERP Ticketing HR DMS Other"`
	Status   string `json:"status" validate:"omitempty,oneof=Active Paused Cancelled"`
}

func (h *ApplicationsHandler) Create(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	var req createApplicationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	app, err := h.service.Create(c.Request().Context(), caller, application.CreateApplicationInput{
		Name:     req.Name,
		Category: domain.Category(req.Category),
		Status:   domain.AppStatus(req.Status),
	})
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return c.JSON(stdhttp.StatusCreated, app)
}

type updateApplicationRequest struct {
	Name     *string           `json:"name" validate:"omitempty,max=150"`
	Category *domain.Category  `json:"category" validate:"omitempty,oneof=ERP Ticketing HR DMS Other"`
	Status   *domain.AppStatus `json:"status" validate:"omitempty,oneof=Active Paused Cancelled"`
}

func (h *ApplicationsHandler) Update(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return handleError(c, h.logger, err)
	}
	var req updateApplicationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	app, err := h.service.Update(c.Request().Context(), caller, id, domain.ApplicationPatch{
		Name:     req.Name,
		Category: req.Category,
		Status:   req.Status,
	})
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return c.JSON(stdhttp.StatusOK, app)
}

func (h *ApplicationsHandler) Delete(c echo.Context) error {
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
