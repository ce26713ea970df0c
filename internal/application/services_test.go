package application

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"

	"app-hub/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAccessResolver_AdminSkipsGrantLookup(t *testing.T) {
	grants := new(grantRepoMock)
	r := NewAccessResolver(grants)

	level, err := r.Effective(context.Background(), adminUser, domain.Application{ID: 7, OwnerUserID: int64Ptr(userA.ID)})
	require.NoError(t, err)
	assert.Equal(t, domain.PermissionAdmin, level)
	grants.AssertNotCalled(t, "GetByUserAndApp", mock.Anything, mock.Anything, mock.Anything)
}

func TestAccessResolver_OwnerWithoutGrantRow(t *testing.T) {
	grants := new(grantRepoMock)
	r := NewAccessResolver(grants)

	level, err := r.Effective(context.Background(), userA, domain.Application{ID: 7, OwnerUserID: int64Ptr(userA.ID)})
	require.NoError(t, err)
	assert.Equal(t, domain.PermissionAdmin, level)
	grants.AssertNotCalled(t, "GetByUserAndApp", mock.Anything, mock.Anything, mock.Anything)
}

func TestAccessResolver_UsesGrant(t *testing.T) {
	grants := new(grantRepoMock)
	r := NewAccessResolver(grants)
	grants.On("GetByUserAndApp", mock.Anything, userB.ID, int64(7)).
		Return(domain.Grant{ID: 4, UserID: userB.ID, ApplicationID: 7, PermissionLevel: domain.PermissionRead}, nil)

	level, err := r.Require(context.Background(), userB, domain.Application{ID: 7}, domain.PermissionRead)
	require.NoError(t, err)
	assert.Equal(t, domain.PermissionRead, level)

	_, err = r.Require(context.Background(), userB, domain.Application{ID: 7}, domain.PermissionWrite)
	assert.ErrorIs(t, err, domain.ErrPermissionDeny)
}

func TestAccessResolver_NoGrantIsNone(t *testing.T) {
	grants := new(grantRepoMock)
	r := NewAccessResolver(grants)
	grants.On("GetByUserAndApp", mock.Anything, userB.ID, int64(7)).Return(domain.Grant{}, domain.ErrNotFound)

	level, err := r.Effective(context.Background(), userB, domain.Application{ID: 7})
	require.NoError(t, err)
	assert.Equal(t, domain.PermissionNone, level)
}

func TestAccessResolver_PropagatesErrors(t *testing.T) {
	grants := new(grantRepoMock)
	r := NewAccessResolver(grants)
	expectedErr := errors.New("db down")
	grants.On("GetByUserAndApp", mock.Anything, userB.ID, int64(7)).Return(domain.Grant{}, expectedErr)

	_, err := r.Require(context.Background(), userB, domain.Application{ID: 7}, domain.PermissionRead)
	assert.ErrorIs(t, err, expectedErr)
}

func newApplicationService(apps *appRepoMock, grants *grantRepoMock) *ApplicationService {
	return NewApplicationService(apps, grants, NewAccessResolver(grants), testLogger())
}

func TestApplicationService_Create(t *testing.T) {
	apps, grants := new(appRepoMock), new(grantRepoMock)
	svc := newApplicationService(apps, grants)

	apps.On("CreateWithOwnerGrant", mock.Anything, mock.MatchedBy(func(app domain.Application) bool {
		return app.Name == "Payroll" && app.Category == domain.CategoryHR && app.Status == domain.AppStatusActive &&
			app.OwnerUserID != nil && *app.OwnerUserID == adminUser.ID
	})).Return(domain.Application{ID: 10, Name: "Payroll", Category: domain.CategoryHR, OwnerUserID: int64Ptr(adminUser.ID)}, nil)

	app, err := svc.Create(context.Background(), adminUser, CreateApplicationInput{Name: "  Payroll ", Category: domain.CategoryHR})
	require.NoError(t, err)
	assert.Equal(t, int64(10), app.ID)
	apps.AssertExpectations(t)
}

func TestApplicationService_CreateDefaultsCategory(t *testing.T) {
	apps, grants := new(appRepoMock), new(grantRepoMock)
	svc := newApplicationService(apps, grants)

	apps.On("CreateWithOwnerGrant", mock.Anything, mock.MatchedBy(func(app domain.Application) bool {
		return app.Category == domain.CategoryOther
	})).Return(domain.Application{ID: 11}, nil)

	_, err := svc.Create(context.Background(), adminUser, CreateApplicationInput{Name: "Wiki"})
	require.NoError(t, err)
}

func TestApplicationService_CreateRequiresAdmin(t *testing.T) {
	apps, grants := new(appRepoMock), new(grantRepoMock)
	svc := newApplicationService(apps, grants)

	_, err := svc.Create(context.Background(), userA, CreateApplicationInput{Name: "Payroll"})
	assert.ErrorIs(t, err, domain.ErrPermissionDeny)
	apps.AssertNotCalled(t, "CreateWithOwnerGrant", mock.Anything, mock.Anything)
}

func TestApplicationService_CreateInvalidInput(t *testing.T) {
	apps, grants := new(appRepoMock), new(grantRepoMock)
	svc := newApplicationService(apps, grants)

	_, err := svc.Create(context.Background(), adminUser, CreateApplicationInput{Name: "   "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Create(context.Background(), adminUser, CreateApplicationInput{Name: "X", Category: "Games"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Create(context.Background(), adminUser, CreateApplicationInput{Name: strings.Repeat("n", 151)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestApplicationService_CreateConflict(t *testing.T) {
	apps, grants := new(appRepoMock), new(grantRepoMock)
	svc := newApplicationService(apps, grants)
	apps.On("CreateWithOwnerGrant", mock.Anything, mock.Anything).Return(domain.Application{}, domain.ErrConflict)

	_, err := svc.Create(context.Background(), adminUser, CreateApplicationInput{Name: "Payroll"})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestApplicationService_ListAdminSeesAll(t *testing.T) {
	apps, grants := new(appRepoMock), new(grantRepoMock)
	svc := newApplicationService(apps, grants)

	apps.On("List", mock.Anything, domain.ApplicationFilter{Search: "pay"}).
		Return([]domain.Application{{ID: 1, Name: "Payroll", OwnerUserID: int64Ptr(userA.ID)}}, nil)

	views, err := svc.List(context.Background(), adminUser, ApplicationQuery{Search: " pay "})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, domain.PermissionAdmin, views[0].PermissionLevel)
	grants.AssertNotCalled(t, "ListByUser", mock.Anything, mock.Anything)
}

func TestApplicationService_ListAdminDashboardIsScoped(t *testing.T) {
	apps, grants := new(appRepoMock), new(grantRepoMock)
	svc := newApplicationService(apps, grants)

	apps.On("List", mock.Anything, mock.MatchedBy(func(f domain.ApplicationFilter) bool {
		return f.VisibleTo != nil && *f.VisibleTo == adminUser.ID
	})).Return([]domain.Application{}, nil)

	views, err := svc.List(context.Background(), adminUser, ApplicationQuery{Dashboard: true})
	require.NoError(t, err)
	assert.Empty(t, views)
	apps.AssertExpectations(t)
}

func TestApplicationService_ListAnnotatesLevels(t *testing.T) {
	apps, grants := new(appRepoMock), new(grantRepoMock)
	svc := newApplicationService(apps, grants)

	apps.On("List", mock.Anything, mock.MatchedBy(func(f domain.ApplicationFilter) bool {
		return f.VisibleTo != nil && *f.VisibleTo == userA.ID && f.Category == domain.CategoryHR
	})).Return([]domain.Application{
		{ID: 1, Name: "HRIS", OwnerUserID: int64Ptr(userA.ID)},
		{ID: 2, Name: "Payroll", OwnerUserID: int64Ptr(adminUser.ID)},
	}, nil)
	grants.On("ListByUser", mock.Anything, userA.ID).Return([]domain.Grant{
		{ID: 5, UserID: userA.ID, ApplicationID: 2, PermissionLevel: domain.PermissionRead},
	}, nil)

	views, err := svc.List(context.Background(), userA, ApplicationQuery{Category: domain.CategoryHR})
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, domain.PermissionAdmin, views[0].PermissionLevel)
	assert.Equal(t, domain.PermissionRead, views[1].PermissionLevel)
}

func TestApplicationService_ListRejectsUnknownStatus(t *testing.T) {
	apps, grants := new(appRepoMock), new(grantRepoMock)
	svc := newApplicationService(apps, grants)

	_, err := svc.List(context.Background(), userA, ApplicationQuery{Status: "Archived"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestApplicationService_GetForbiddenWithoutGrant(t *testing.T) {
	apps, grants := new(appRepoMock), new(grantRepoMock)
	svc := newApplicationService(apps, grants)
	apps.On("GetByID", mock.Anything, int64(9)).Return(domain.Application{ID: 9, OwnerUserID: int64Ptr(adminUser.ID)}, nil)
	grants.On("GetByUserAndApp", mock.Anything, userB.ID, int64(9)).Return(domain.Grant{}, domain.ErrNotFound)

	_, err := svc.Get(context.Background(), userB, 9)
	assert.ErrorIs(t, err, domain.ErrPermissionDeny)
}

func TestApplicationService_GetNotFound(t *testing.T) {
	apps, grants := new(appRepoMock), new(grantRepoMock)
	svc := newApplicationService(apps, grants)
	apps.On("GetByID", mock.Anything, int64(9)).Return(domain.Application{}, domain.ErrNotFound)

	_, err := svc.Get(context.Background(), adminUser, 9)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestApplicationService_UpdateRequiresWrite(t *testing.T) {
	apps, grants := new(appRepoMock), new(grantRepoMock)
	svc := newApplicationService(apps, grants)
	name := "Payroll v2"
	apps.On("GetByID", mock.Anything, int64(9)).Return(domain.Application{ID: 9}, nil)
	grants.On("GetByUserAndApp", mock.Anything, userB.ID, int64(9)).
		Return(domain.Grant{UserID: userB.ID, ApplicationID: 9, PermissionLevel: domain.PermissionRead}, nil)

	_, err := svc.Update(context.Background(), userB, 9, domain.ApplicationPatch{Name: &name})
	assert.ErrorIs(t, err, domain.ErrPermissionDeny)
	apps.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestApplicationService_UpdateEmptyPatch(t *testing.T) {
	apps, grants := new(appRepoMock), new(grantRepoMock)
	svc := newApplicationService(apps, grants)

	_, err := svc.Update(context.Background(), adminUser, 9, domain.ApplicationPatch{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestApplicationService_DeleteAdminOnly(t *testing.T) {
	apps, grants := new(appRepoMock), new(grantRepoMock)
	svc := newApplicationService(apps, grants)

	err := svc.Delete(context.Background(), userA, 9)
	assert.ErrorIs(t, err, domain.ErrPermissionDeny)
	apps.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)

	apps.On("Delete", mock.Anything, int64(9)).Return(nil)
	require.NoError(t, svc.Delete(context.Background(), adminUser, 9))
	apps.AssertExpectations(t)
}

func TestAccessService_ListScopedToCaller(t *testing.T) {
	grants := new(grantRepoMock)
	svc := NewAccessService(grants, testLogger())
	grants.On("List", mock.Anything).Return([]domain.Grant{{ID: 1}, {ID: 2}}, nil)
	grants.On("ListByUser", mock.Anything, userA.ID).Return([]domain.Grant{{ID: 2, UserID: userA.ID}}, nil)

	all, err := svc.List(context.Background(), adminUser)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	own, err := svc.List(context.Background(), userA)
	require.NoError(t, err)
	assert.Len(t, own, 1)
}

func TestAccessService_CreateDuplicate(t *testing.T) {
	grants := new(grantRepoMock)
	svc := NewAccessService(grants, testLogger())
	grants.On("Create", mock.Anything, domain.Grant{UserID: 3, ApplicationID: 9, PermissionLevel: domain.PermissionWrite}).
		Return(domain.Grant{}, domain.ErrConflict)

	_, err := svc.Create(context.Background(), adminUser, 3, 9, domain.PermissionWrite)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestAccessService_CreateValidation(t *testing.T) {
	grants := new(grantRepoMock)
	svc := NewAccessService(grants, testLogger())

	_, err := svc.Create(context.Background(), userA, 3, 9, domain.PermissionWrite)
	assert.ErrorIs(t, err, domain.ErrPermissionDeny)

	_, err = svc.Create(context.Background(), adminUser, 3, 9, domain.PermissionNone)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Create(context.Background(), adminUser, 0, 9, domain.PermissionRead)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	grants.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAccessService_UpdateAndDelete(t *testing.T) {
	grants := new(grantRepoMock)
	svc := NewAccessService(grants, testLogger())
	grants.On("UpdateLevel", mock.Anything, int64(4), domain.PermissionAdmin).
		Return(domain.Grant{ID: 4, PermissionLevel: domain.PermissionAdmin}, nil)
	grants.On("Delete", mock.Anything, int64(4)).Return(nil)

	g, err := svc.UpdateLevel(context.Background(), adminUser, 4, domain.PermissionAdmin)
	require.NoError(t, err)
	assert.Equal(t, domain.PermissionAdmin, g.PermissionLevel)
	require.NoError(t, svc.Delete(context.Background(), adminUser, 4))

	assert.ErrorIs(t, svc.Delete(context.Background(), userA, 4), domain.ErrPermissionDeny)
	grants.AssertNumberOfCalls(t, "Delete", 1)
}

func TestAccessService_GetOtherUsersGrant(t *testing.T) {
	grants := new(grantRepoMock)
	svc := NewAccessService(grants, testLogger())
	grants.On("GetByID", mock.Anything, int64(4)).Return(domain.Grant{ID: 4, UserID: userB.ID}, nil)

	_, err := svc.Get(context.Background(), userA, 4)
	assert.ErrorIs(t, err, domain.ErrPermissionDeny)

	g, err := svc.Get(context.Background(), userB, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(4), g.ID)
}

// memCatalog is an in-memory application and grant store used to run the
// services end to end.
type memCatalog struct {
	mu     sync.Mutex
	apps   map[int64]domain.Application
	grants map[int64]domain.Grant
	nextID int64
}

func newMemCatalog() *memCatalog {
	return &memCatalog{apps: map[int64]domain.Application{}, grants: map[int64]domain.Grant{}}
}

type memApps struct{ *memCatalog }
type memGrants struct{ *memCatalog }

func (m memApps) CreateWithOwnerGrant(_ context.Context, app domain.Application) (domain.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.apps {
		if existing.Name == app.Name {
			return domain.Application{}, domain.ErrConflict
		}
	}
	m.nextID++
	app.ID = m.nextID
	m.apps[app.ID] = app
	if app.OwnerUserID != nil {
		m.nextID++
		m.grants[m.nextID] = domain.Grant{ID: m.nextID, UserID: *app.OwnerUserID, ApplicationID: app.ID, PermissionLevel: domain.PermissionAdmin}
	}
	return app, nil
}

func (m memApps) GetByID(_ context.Context, appID int64) (domain.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	app, ok := m.apps[appID]
	if !ok {
		return domain.Application{}, domain.ErrNotFound
	}
	return app, nil
}

func (m memApps) List(_ context.Context, filter domain.ApplicationFilter) ([]domain.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Application{}
	for _, app := range m.apps {
		if filter.VisibleTo != nil && !app.OwnedBy(*filter.VisibleTo) && !m.hasGrant(*filter.VisibleTo, app.ID) {
			continue
		}
		out = append(out, app)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memCatalog) hasGrant(userID, appID int64) bool {
	for _, g := range m.grants {
		if g.UserID == userID && g.ApplicationID == appID {
			return true
		}
	}
	return false
}

func (m memApps) Update(_ context.Context, appID int64, patch domain.ApplicationPatch) (domain.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	app, ok := m.apps[appID]
	if !ok {
		return domain.Application{}, domain.ErrNotFound
	}
	if patch.Name != nil {
		app.Name = *patch.Name
	}
	if patch.Category != nil {
		app.Category = *patch.Category
	}
	if patch.Status != nil {
		app.Status = *patch.Status
	}
	m.apps[appID] = app
	return app, nil
}

func (m memApps) Delete(_ context.Context, appID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.apps[appID]; !ok {
		return domain.ErrNotFound
	}
	delete(m.apps, appID)
	for id, g := range m.grants {
		if g.ApplicationID == appID {
			delete(m.grants, id)
		}
	}
	return nil
}

func (m memGrants) Create(_ context.Context, grant domain.Grant) (domain.Grant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.hasGrant(grant.UserID, grant.ApplicationID) {
		return domain.Grant{}, domain.ErrConflict
	}
	if _, ok := m.apps[grant.ApplicationID]; !ok {
		return domain.Grant{}, domain.ErrNotFound
	}
	m.nextID++
	grant.ID = m.nextID
	m.grants[grant.ID] = grant
	return grant, nil
}

func (m memGrants) GetByID(_ context.Context, grantID int64) (domain.Grant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.grants[grantID]
	if !ok {
		return domain.Grant{}, domain.ErrNotFound
	}
	return g, nil
}

func (m memGrants) GetByUserAndApp(_ context.Context, userID, appID int64) (domain.Grant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, g := range m.grants {
		if g.UserID == userID && g.ApplicationID == appID {
			return g, nil
		}
	}
	return domain.Grant{}, domain.ErrNotFound
}

func (m memGrants) List(_ context.Context) ([]domain.Grant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Grant{}
	for _, g := range m.grants {
		out = append(out, g)
	}
	return out, nil
}

func (m memGrants) ListByUser(_ context.Context, userID int64) ([]domain.Grant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Grant{}
	for _, g := range m.grants {
		if g.UserID == userID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (m memGrants) UpdateLevel(_ context.Context, grantID int64, level domain.PermissionLevel) (domain.Grant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.grants[grantID]
	if !ok {
		return domain.Grant{}, domain.ErrNotFound
	}
	g.PermissionLevel = level
	m.grants[grantID] = g
	return g, nil
}

func (m memGrants) Delete(_ context.Context, grantID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.grants[grantID]; !ok {
		return domain.ErrNotFound
	}
	delete(m.grants, grantID)
	return nil
}

func TestPayrollScenario(t *testing.T) {
	ctx := context.Background()
	catalog := newMemCatalog()
	apps, grants := memApps{catalog}, memGrants{catalog}
	appSvc := NewApplicationService(apps, grants, NewAccessResolver(grants), testLogger())
	accessSvc := NewAccessService(grants, testLogger())

	payroll, err := appSvc.Create(ctx, adminUser, CreateApplicationInput{Name: "Payroll", Category: domain.CategoryHR})
	require.NoError(t, err)

	views, err := appSvc.List(ctx, userB, ApplicationQuery{})
	require.NoError(t, err)
	assert.Empty(t, views)
	_, err = appSvc.Get(ctx, userB, payroll.ID)
	assert.ErrorIs(t, err, domain.ErrPermissionDeny)

	_, err = accessSvc.Create(ctx, adminUser, userB.ID, payroll.ID, domain.PermissionWrite)
	require.NoError(t, err)
	_, err = accessSvc.Create(ctx, adminUser, userB.ID, payroll.ID, domain.PermissionRead)
	assert.ErrorIs(t, err, domain.ErrConflict)

	views, err = appSvc.List(ctx, userB, ApplicationQuery{})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Payroll", views[0].Name)
	assert.Equal(t, domain.PermissionWrite, views[0].PermissionLevel)

	paused := domain.AppStatusPaused
	updated, err := appSvc.Update(ctx, userB, payroll.ID, domain.ApplicationPatch{Status: &paused})
	require.NoError(t, err)
	assert.Equal(t, domain.AppStatusPaused, updated.Status)

	err = appSvc.Delete(ctx, userB, payroll.ID)
	assert.ErrorIs(t, err, domain.ErrPermissionDeny)
	_, err = apps.GetByID(ctx, payroll.ID)
	assert.NoError(t, err)
}
