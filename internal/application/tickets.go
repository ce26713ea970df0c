package application

import (
	"context"
	"strings"
	"unicode/utf8"

	"app-hub/internal/domain"
	"app-hub/internal/ports"
)

const maxTicketTitle = 255

type TicketQuery struct {
	Dashboard     bool
	ApplicationID *int64
	Status        domain.TicketStatus
	Search        string
}

type CreateTicketInput struct {
	Title         string
	Description   string
	ApplicationID int64
}

// TicketService scopes tickets to their creator. Application grants do not
// widen ticket visibility; only site admins see every ticket.
type TicketService struct {
	repo   ports.TicketRepository
	logger ports.Logger
}

func NewTicketService(repo ports.TicketRepository, logger ports.Logger) *TicketService {
	return &TicketService{repo: repo, logger: logger}
}

func (s *TicketService) List(ctx context.Context, caller domain.User, q TicketQuery) ([]domain.Ticket, error) {
	if q.Status != "" && !q.Status.Valid() {
		return nil, domain.ErrInvalidInput
	}
	filter := domain.TicketFilter{
		ApplicationID: q.ApplicationID,
		Status:        q.Status,
		Search:        strings.TrimSpace(q.Search),
	}
	if !caller.IsAdmin() || q.Dashboard {
		filter.CreatedBy = &caller.ID
	}
	return s.repo.List(ctx, filter)
}

func (s *TicketService) Get(ctx context.Context, caller domain.User, ticketID int64) (domain.Ticket, error) {
	if ticketID <= 0 {
		return domain.Ticket{}, domain.ErrInvalidInput
	}
	ticket, err := s.repo.GetByID(ctx, ticketID)
	if err != nil {
		return domain.Ticket{}, err
	}
	if !caller.IsAdmin() && !ticket.CreatedByUser(caller.ID) {
		return domain.Ticket{}, domain.ErrPermissionDeny
	}
	return ticket, nil
}

func (s *TicketService) Create(ctx context.Context, caller domain.User, in CreateTicketInput) (domain.Ticket, error) {
	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	if !validTicketTitle(title) || description == "" || in.ApplicationID <= 0 {
		return domain.Ticket{}, domain.ErrInvalidInput
	}
	creator := caller.ID
	ticket, err := s.repo.Create(ctx, domain.Ticket{
		Title:         title,
		Description:   description,
		ApplicationID: in.ApplicationID,
		CreatedBy:     &creator,
		Status:        domain.TicketOpen,
	})
	if err != nil {
		return domain.Ticket{}, err
	}
	s.logger.Info(ctx, "ticket created", "ticket_id", ticket.ID, "application_id", in.ApplicationID, "user_id", creator)
	return ticket, nil
}

// Update lets admins change anything. Other users may edit the title and
// description of their own tickets until they are resolved, never the status.
func (s *TicketService) Update(ctx context.Context, caller domain.User, ticketID int64, patch domain.TicketPatch) (domain.Ticket, error) {
	if ticketID <= 0 || patch.Empty() {
		return domain.Ticket{}, domain.ErrInvalidInput
	}
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if !validTicketTitle(title) {
			return domain.Ticket{}, domain.ErrInvalidInput
		}
		patch.Title = &title
	}
	if patch.Description != nil {
		description := strings.TrimSpace(*patch.Description)
		if description == "" {
			return domain.Ticket{}, domain.ErrInvalidInput
		}
		patch.Description = &description
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return domain.Ticket{}, domain.ErrInvalidInput
	}

	ticket, err := s.repo.GetByID(ctx, ticketID)
	if err != nil {
		return domain.Ticket{}, err
	}
	if !caller.IsAdmin() {
		if !ticket.CreatedByUser(caller.ID) || ticket.Status == domain.TicketResolved || patch.Status != nil {
			s.logger.Warn(ctx, "ticket update denied", "ticket_id", ticketID, "user_id", caller.ID)
			return domain.Ticket{}, domain.ErrPermissionDeny
		}
	}
	updated, err := s.repo.Update(ctx, ticketID, patch)
	if err != nil {
		return domain.Ticket{}, err
	}
	s.logger.Info(ctx, "ticket updated", "ticket_id", ticketID, "user_id", caller.ID)
	return updated, nil
}

func (s *TicketService) Delete(ctx context.Context, caller domain.User, ticketID int64) error {
	if !caller.IsAdmin() {
		s.logger.Warn(ctx, "ticket delete denied", "ticket_id", ticketID, "user_id", caller.ID)
		return domain.ErrPermissionDeny
	}
	if ticketID <= 0 {
		return domain.ErrInvalidInput
	}
	if err := s.repo.Delete(ctx, ticketID); err != nil {
		return err
	}
	s.logger.Info(ctx, "ticket deleted", "ticket_id", ticketID, "user_id", caller.ID)
	return nil
}

func validTicketTitle(title string) bool {
	n := utf8.RuneCountInString(title)
	return n > 0 && n <= maxTicketTitle
}
