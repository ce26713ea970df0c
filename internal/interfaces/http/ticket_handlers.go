package http

import (
	"context"
	stdhttp "net/http"

	"app-hub/internal/application"
	"app-hub/internal/domain"
	"app-hub/internal/ports"

	"github.com/labstack/echo/v4"
)

type TicketUseCases interface {
	List(ctx context.Context, caller domain.User, q application.TicketQuery) ([]domain.Ticket, error)
	Get(ctx context.Context, caller domain.User, ticketID int64) (domain.Ticket, error)
	Create(ctx context.Context, caller domain.User, in application.CreateTicketInput) (domain.Ticket, error)
	Update(ctx context.Context, caller domain.User, ticketID int64, patch domain.TicketPatch) (domain.Ticket, error)
	Delete(ctx context.Context, caller domain.User, ticketID int64) error
}

type TicketsHandler struct {
	service TicketUseCases
	logger  ports.Logger
}

func NewTicketsHandler(service TicketUseCases, logger ports.Logger) *TicketsHandler {
	return &TicketsHandler{service: service, logger: logger}
}

func (h *TicketsHandler) List(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	dashboard, err := queryBool(c, "dashboard")
	if err != nil {
		return handleError(c, h.logger, err)
	}
	appID, err := queryID(c, "app_id", "appId")
	if err != nil {
		return handleError(c, h.logger, err)
	}
	tickets, err := h.service.List(c.Request().Context(), caller, application.TicketQuery{
		Dashboard:     dashboard,
		ApplicationID: appID,
		Status:        domain.TicketStatus(c.QueryParam("status")),
		Search:        c.QueryParam("search"),
	})
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return c.JSON(stdhttp.StatusOK, tickets)
}

func (h *TicketsHandler) Get(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return handleError(c, h.logger, err)
	}
	ticket, err := h.service.Get(c.Request().Context(), caller, id)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return c.JSON(stdhttp.StatusOK, ticket)
}

type createTicketRequest struct {
	Title         string `json:"title" validate:"required,max=255"`
	Description   string `json:"description" validate:"required"`
	ApplicationID int64  `json:"application_id" validate:"required,min=1"`
}

func (h *TicketsHandler) Create(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	var req createTicketRequest
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	ticket, err := h.service.Create(c.Request().Context(), caller, application.CreateTicketInput{
		Title:         req.Title,
		Description:   req.Description,
		ApplicationID: req.ApplicationID,
	})
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return c.JSON(stdhttp.StatusCreated, ticket)
}

type updateTicketRequest struct {
	Title       *string              `json:"title" validate:"omitempty,max=255"`
	Description *string              `json:"description"`
	Status      *domain.TicketStatus `json:"status" validate:"omitempty,oneof=Open 'In Progress' Resolved"`
}

func (h *TicketsHandler) Update(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return handleError(c, h.logger, err)
	}
	var req updateTicketRequest
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	ticket, err := h.service.Update(c.Request().Context(), caller, id, domain.TicketPatch{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return c.JSON(stdhttp.StatusOK, ticket)
}

func (h *TicketsHandler) Delete(c echo.Context) error {
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
