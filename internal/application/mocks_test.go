package application

import (
	"context"
	"io"
	"log/slog"
	"time"

	"app-hub/internal/adapters/logger"
	"app-hub/internal/domain"

	"github.com/stretchr/testify/mock"
)

func testLogger() *logger.SlogLogger {
	return logger.NewWithWriter(io.Discard, slog.LevelDebug)
}

type userRepoMock struct{ mock.Mock }

func (m *userRepoMock) Create(ctx context.Context, user domain.User) (domain.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *userRepoMock) GetByID(ctx context.Context, userID int64) (domain.User, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *userRepoMock) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *userRepoMock) List(ctx context.Context, filter domain.UserFilter) ([]domain.User, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *userRepoMock) Update(ctx context.Context, userID int64, patch domain.UserPatch) (domain.User, error) {
	args := m.Called(ctx, userID, patch)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *userRepoMock) Delete(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type appRepoMock struct{ mock.Mock }

func (m *appRepoMock) CreateWithOwnerGrant(ctx context.Context, app domain.Application) (domain.Application, error) {
	args := m.Called(ctx, app)
	return args.Get(0).(domain.Application), args.Error(1)
}

func (m *appRepoMock) GetByID(ctx context.Context, appID int64) (domain.Application, error) {
	args := m.Called(ctx, appID)
	return args.Get(0).(domain.Application), args.Error(1)
}

func (m *appRepoMock) List(ctx context.Context, filter domain.ApplicationFilter) ([]domain.Application, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Application), args.Error(1)
}

func (m *appRepoMock) Update(ctx context.Context, appID int64, patch domain.ApplicationPatch) (domain.Application, error) {
	args := m.Called(ctx, appID, patch)
	return args.Get(0).(domain.Application), args.Error(1)
}

func (m *appRepoMock) Delete(ctx context.Context, appID int64) error {
	args := m.Called(ctx, appID)
	return args.Error(0)
}

type grantRepoMock struct{ mock.Mock }

func (m *grantRepoMock) Create(ctx context.Context, grant domain.Grant) (domain.Grant, error) {
	args := m.Called(ctx, grant)
	return args.Get(0).(domain.Grant), args.Error(1)
}

func (m *grantRepoMock) GetByID(ctx context.Context, grantID int64) (domain.Grant, error) {
	args := m.Called(ctx, grantID)
	return args.Get(0).(domain.Grant), args.Error(1)
}

func (m *grantRepoMock) GetByUserAndApp(ctx context.Context, userID, appID int64) (domain.Grant, error) {
	args := m.Called(ctx, userID, appID)
	return args.Get(0).(domain.Grant), args.Error(1)
}

func (m *grantRepoMock) List(ctx context.Context) ([]domain.Grant, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Grant), args.Error(1)
}

func (m *grantRepoMock) ListByUser(ctx context.Context, userID int64) ([]domain.Grant, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Grant), args.Error(1)
}

func (m *grantRepoMock) UpdateLevel(ctx context.Context, grantID int64, level domain.PermissionLevel) (domain.Grant, error) {
	args := m.Called(ctx, grantID, level)
	return args.Get(0).(domain.Grant), args.Error(1)
}

func (m *grantRepoMock) Delete(ctx context.Context, grantID int64) error {
	args := m.Called(ctx, grantID)
	return args.Error(0)
}

type ticketRepoMock struct{ mock.Mock }

func (m *ticketRepoMock) Create(ctx context.Context, ticket domain.Ticket) (domain.Ticket, error) {
	args := m.Called(ctx, ticket)
	return args.Get(0).(domain.Ticket), args.Error(1)
}

func (m *ticketRepoMock) GetByID(ctx context.Context, ticketID int64) (domain.Ticket, error) {
	args := m.Called(ctx, ticketID)
	return args.Get(0).(domain.Ticket), args.Error(1)
}

func (m *ticketRepoMock) List(ctx context.Context, filter domain.TicketFilter) ([]domain.Ticket, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Ticket), args.Error(1)
}

func (m *ticketRepoMock) Update(ctx context.Context, ticketID int64, patch domain.TicketPatch) (domain.Ticket, error) {
	args := m.Called(ctx, ticketID, patch)
	return args.Get(0).(domain.Ticket), args.Error(1)
}

func (m *ticketRepoMock) Delete(ctx context.Context, ticketID int64) error {
	args := m.Called(ctx, ticketID)
	return args.Error(0)
}

type transcriptRepoMock struct{ mock.Mock }

func (m *transcriptRepoMock) Put(ctx context.Context, transcript domain.ChatTranscript) error {
	args := m.Called(ctx, transcript)
	return args.Error(0)
}

type hasherMock struct{ mock.Mock }

func (m *hasherMock) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *hasherMock) Verify(password, record string) bool {
	args := m.Called(password, record)
	return args.Bool(0)
}

type tokenServiceMock struct{ mock.Mock }

func (m *tokenServiceMock) Issue(subjectID int64) (string, time.Time, error) {
	args := m.Called(subjectID)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *tokenServiceMock) Resolve(token string) (int64, error) {
	args := m.Called(token)
	return args.Get(0).(int64), args.Error(1)
}

type chatProviderMock struct{ mock.Mock }

func (m *chatProviderMock) Generate(ctx context.Context, query string) (domain.ChatReply, error) {
	args := m.Called(ctx, query)
	return args.Get(0).(domain.ChatReply), args.Error(1)
}

func int64Ptr(v int64) *int64 { return &v }

var (
	adminUser = domain.User{ID: 1, FullName: "Site Admin", Email: "admin@example.com", Role: domain.RoleAdmin}
	userA     = domain.User{ID: 2, FullName: "User A", Email: "a@example.com", Role: domain.RoleUser}
	userB     = domain.User{ID: 3, FullName: "User B", Email: "b@example.com", Role: domain.RoleUser}
)
