package postgres

import (
	"context"
	"time"

	"app-hub/internal/domain"
)

const ticketColumns = `id, title, description, application_id, created_by, status, created_at, updated_at`

type TicketRepository struct{ db *DB }

func NewTicketRepository(db *DB) *TicketRepository {
	return &TicketRepository{db: db}
}

// Create reports ErrNotFound when the application does not exist.
func (r *TicketRepository) Create(ctx context.Context, ticket domain.Ticket) (domain.Ticket, error) {
	now := time.Now().UTC()
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	err := r.db.conn.QueryRowxContext(ctx,
		`INSERT INTO tickets (title, description, application_id, created_by, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		ticket.Title, ticket.Description, ticket.ApplicationID, ticket.CreatedBy, ticket.Status, ticket.CreatedAt, ticket.UpdatedAt,
	).Scan(&ticket.ID)
	if err != nil {
		return domain.Ticket{}, translate("insert ticket", err)
	}
	return ticket, nil
}

func (r *TicketRepository) GetByID(ctx context.Context, ticketID int64) (domain.Ticket, error) {
	var ticket domain.Ticket
	if err := r.db.conn.GetContext(ctx, &ticket, `SELECT `+ticketColumns+` FROM tickets WHERE id = $1`, ticketID); err != nil {
		return domain.Ticket{}, translate("get ticket", err)
	}
	return ticket, nil
}

func (r *TicketRepository) List(ctx context.Context, filter domain.TicketFilter) ([]domain.Ticket, error) {
	var w whereBuilder
	if filter.CreatedBy != nil {
		w.add("created_by = " + w.next(*filter.CreatedBy))
	}
	if filter.ApplicationID != nil {
		w.add("application_id = " + w.next(*filter.ApplicationID))
	}
	if filter.Status != "" {
		w.add("status = " + w.next(filter.Status))
	}
	if filter.Search != "" {
		p := w.next(likePattern(filter.Search))
		w.add("(title ILIKE " + p + " OR description ILIKE " + p + ")")
	}
	tickets := []domain.Ticket{}
	query := `SELECT ` + ticketColumns + ` FROM tickets` + w.clause() + ` ORDER BY created_at DESC, updated_at DESC`
	if err := r.db.conn.SelectContext(ctx, &tickets, query, w.args...); err != nil {
		return nil, translate("list tickets", err)
	}
	return tickets, nil
}

func (r *TicketRepository) Update(ctx context.Context, ticketID int64, patch domain.TicketPatch) (domain.Ticket, error) {
	if patch.Empty() {
		return r.GetByID(ctx, ticketID)
	}
	var s setBuilder
	if patch.Title != nil {
		s.set("title", *patch.Title)
	}
	if patch.Description != nil {
		s.set("description", *patch.Description)
	}
	if patch.Status != nil {
		s.set("status", *patch.Status)
	}
	s.set("updated_at", time.Now().UTC())
	query, args := s.statement("tickets", ticketID)

	var ticket domain.Ticket
	if err := r.db.conn.GetContext(ctx, &ticket, query+` RETURNING `+ticketColumns, args...); err != nil {
		return domain.Ticket{}, translate("update ticket", err)
	}
	return ticket, nil
}

func (r *TicketRepository) Delete(ctx context.Context, ticketID int64) error {
	res, err := r.db.conn.ExecContext(ctx, `DELETE FROM tickets WHERE id = $1`, ticketID)
	if err != nil {
		return translate("delete ticket", err)
	}
	return requireAffected("delete ticket", res)
}
