package http

import (
	"context"
	stdhttp "net/http"

	"app-hub/internal/domain"
	"app-hub/internal/ports"

	"github.com/labstack/echo/v4"
)

type ChatUseCases interface {
	Ask(ctx context.Context, caller domain.User, query string) (domain.ChatReply, error)
}

type ChatHandler struct {
	service ChatUseCases
	logger  ports.Logger
}

func NewChatHandler(service ChatUseCases, logger ports.Logger) *ChatHandler {
	return &ChatHandler{service: service, logger: logger}
}

type chatRequest struct {
	Query string `json:"query" validate:"required,max=4000"`
}

func (h *ChatHandler) Ask(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	var req chatRequest
	if err := bindAndValidate(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	reply, err := h.service.Ask(c.Request().Context(), caller, req.Query)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return c.JSON(stdhttp.StatusOK, reply)
}
