package ports

import (
	"context"
	"time"

	"app-hub/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user domain.User) (domain.User, error)
	GetByID(ctx context.Context, userID int64) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	List(ctx context.Context, filter domain.UserFilter) ([]domain.User, error)
	Update(ctx context.Context, userID int64, patch domain.UserPatch) (domain.User, error)
	// Delete removes the user and its grants atomically.
	Delete(ctx context.Context, userID int64) error
}

type ApplicationRepository interface {
	// CreateWithOwnerGrant inserts the application and an admin grant for its owner in one transaction.
	CreateWithOwnerGrant(ctx context.Context, app domain.Application) (domain.Application, error)
	GetByID(ctx context.Context, appID int64) (domain.Application, error)
	List(ctx context.Context, filter domain.ApplicationFilter) ([]domain.Application, error)
	Update(ctx context.Context, appID int64, patch domain.ApplicationPatch) (domain.Application, error)
	Delete(ctx context.Context, appID int64) error
}

type GrantRepository interface {
	Create(ctx context.Context, grant domain.Grant) (domain.Grant, error)
	GetByID(ctx context.Context, grantID int64) (domain.Grant, error)
	GetByUserAndApp(ctx context.Context, userID, appID int64) (domain.Grant, error)
	List(ctx context.Context) ([]domain.Grant, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Grant, error)
	UpdateLevel(ctx context.Context, grantID int64, level domain.PermissionLevel) (domain.Grant, error)
	Delete(ctx context.Context, grantID int64) error
}

type TicketRepository interface {
	Create(ctx context.Context, ticket domain.Ticket) (domain.Ticket, error)
	GetByID(ctx context.Context, ticketID int64) (domain.Ticket, error)
	List(ctx context.Context, filter domain.TicketFilter) ([]domain.Ticket, error)
	Update(ctx context.Context, ticketID int64, patch domain.TicketPatch) (domain.Ticket, error)
	Delete(ctx context.Context, ticketID int64) error
}

type TranscriptRepository interface {
	Put(ctx context.Context, transcript domain.ChatTranscript) error
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, record string) bool
}

type TokenService interface {
	Issue(subjectID int64) (string, time.Time, error)
	Resolve(token string) (int64, error)
}

type ChatProvider interface {
	Generate(ctx context.Context, query string) (domain.ChatReply, error)
}
