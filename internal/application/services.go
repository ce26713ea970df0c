package application

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"app-hub/internal/domain"
	"app-hub/internal/ports"
)

const maxApplicationName = 150

// AccessResolver loads the caller's grant for an application and applies
// domain.ResolvePermission. Every application-scoped check goes through it.
type AccessResolver struct {
	grants ports.GrantRepository
}

func NewAccessResolver(grants ports.GrantRepository) *AccessResolver {
	return &AccessResolver{grants: grants}
}

func (r *AccessResolver) Effective(ctx context.Context, user domain.User, app domain.Application) (domain.PermissionLevel, error) {
	if user.IsAdmin() || app.OwnedBy(user.ID) {
		return domain.ResolvePermission(user, app, nil), nil
	}
	grant, err := r.grants.GetByUserAndApp(ctx, user.ID, app.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ResolvePermission(user, app, nil), nil
		}
		return domain.PermissionNone, err
	}
	return domain.ResolvePermission(user, app, &grant), nil
}

func (r *AccessResolver) Require(ctx context.Context, user domain.User, app domain.Application, min domain.PermissionLevel) (domain.PermissionLevel, error) {
	level, err := r.Effective(ctx, user, app)
	if err != nil {
		return domain.PermissionNone, err
	}
	if !level.AtLeast(min) {
		return level, domain.ErrPermissionDeny
	}
	return level, nil
}

type ApplicationQuery struct {
	Search    string
	Category  domain.Category
	Status    domain.AppStatus
	Dashboard bool
}

type ApplicationService struct {
	repo     ports.ApplicationRepository
	grants   ports.GrantRepository
	resolver *AccessResolver
	logger   ports.Logger
}

func NewApplicationService(repo ports.ApplicationRepository, grants ports.GrantRepository, resolver *AccessResolver, logger ports.Logger) *ApplicationService {
	return &ApplicationService{repo: repo, grants: grants, resolver: resolver, logger: logger}
}

// List returns the applications visible to caller, each annotated with the
// caller's effective level. Admins see the whole catalog unless Dashboard is set.
func (s *ApplicationService) List(ctx context.Context, caller domain.User, q ApplicationQuery) ([]domain.ApplicationView, error) {
	if q.Category != "" && !q.Category.Valid() {
		return nil, domain.ErrInvalidInput
	}
	if q.Status != "" && !q.Status.Valid() {
		return nil, domain.ErrInvalidInput
	}
	filter := domain.ApplicationFilter{Search: strings.TrimSpace(q.Search), Category: q.Category, Status: q.Status}
	if !caller.IsAdmin() || q.Dashboard {
		filter.VisibleTo = &caller.ID
	}
	apps, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	byApp := map[int64]domain.Grant{}
	if !caller.IsAdmin() {
		grants, err := s.grants.ListByUser(ctx, caller.ID)
		if err != nil {
			return nil, err
		}
		for _, g := range grants {
			byApp[g.ApplicationID] = g
		}
	}

	views := make([]domain.ApplicationView, 0, len(apps))
	for _, app := range apps {
		var grant *domain.Grant
		if g, ok := byApp[app.ID]; ok {
			grant = &g
		}
		views = append(views, domain.ApplicationView{
			Application:     app,
			PermissionLevel: domain.ResolvePermission(caller, app, grant),
		})
	}
	return views, nil
}

func (s *ApplicationService) Get(ctx context.Context, caller domain.User, appID int64) (domain.ApplicationView, error) {
	if appID <= 0 {
		return domain.ApplicationView{}, domain.ErrInvalidInput
	}
	app, err := s.repo.GetByID(ctx, appID)
	if err != nil {
		return domain.ApplicationView{}, err
	}
	level, err := s.resolver.Require(ctx, caller, app, domain.PermissionRead)
	if err != nil {
		return domain.ApplicationView{}, err
	}
	return domain.ApplicationView{Application: app, PermissionLevel: level}, nil
}

type CreateApplicationInput struct {
	Name     string
	Category domain.Category
	Status   domain.AppStatus
}

// Create registers a catalog entry owned by caller. Only site admins may create.
func (s *ApplicationService) Create(ctx context.Context, caller domain.User, in CreateApplicationInput) (domain.Application, error) {
	if !caller.IsAdmin() {
		s.logger.Warn(ctx, "application create denied", "user_id", caller.ID)
		return domain.Application{}, domain.ErrPermissionDeny
	}
	name := strings.TrimSpace(in.Name)
	if !validApplicationName(name) {
		return domain.Application{}, domain.ErrInvalidInput
	}
	if in.Category == "" {
		in.Category = domain.CategoryOther
	}
	if in.Status == "" {
		in.Status = domain.AppStatusActive
	}
	if !in.Category.Valid() || !in.Status.Valid() {
		return domain.Application{}, domain.ErrInvalidInput
	}

	owner := caller.ID
	app, err := s.repo.CreateWithOwnerGrant(ctx, domain.Application{
		Name:        name,
		Category:    in.Category,
		Status:      in.Status,
		OwnerUserID: &owner,
	})
	if err != nil {
		return domain.Application{}, err
	}
	s.logger.Info(ctx, "application created", "application_id", app.ID, "owner_id", owner)
	return app, nil
}

func (s *ApplicationService) Update(ctx context.Context, caller domain.User, appID int64, patch domain.ApplicationPatch) (domain.Application, error) {
	if appID <= 0 || patch.Empty() {
		return domain.Application{}, domain.ErrInvalidInput
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if !validApplicationName(name) {
			return domain.Application{}, domain.ErrInvalidInput
		}
		patch.Name = &name
	}
	if patch.Category != nil && !patch.Category.Valid() {
		return domain.Application{}, domain.ErrInvalidInput
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return domain.Application{}, domain.ErrInvalidInput
	}

	app, err := s.repo.GetByID(ctx, appID)
	if err != nil {
		return domain.Application{}, err
	}
	if _, err := s.resolver.Require(ctx, caller, app, domain.PermissionWrite); err != nil {
		if errors.Is(err, domain.ErrPermissionDeny) {
			s.logger.Warn(ctx, "application update denied", "application_id", appID, "user_id", caller.ID)
		}
		return domain.Application{}, err
	}
	updated, err := s.repo.Update(ctx, appID, patch)
	if err != nil {
		return domain.Application{}, err
	}
	s.logger.Info(ctx, "application updated", "application_id", appID, "user_id", caller.ID)
	return updated, nil
}

// Delete is reserved to site admins; owning an application is not enough.
func (s *ApplicationService) Delete(ctx context.Context, caller domain.User, appID int64) error {
	if appID <= 0 {
		return domain.ErrInvalidInput
	}
	if !caller.IsAdmin() {
		s.logger.Warn(ctx, "application delete denied", "application_id", appID, "user_id", caller.ID)
		return domain.ErrPermissionDeny
	}
	if err := s.repo.Delete(ctx, appID); err != nil {
		return err
	}
	s.logger.Info(ctx, "application deleted", "application_id", appID, "user_id", caller.ID)
	return nil
}

func validApplicationName(name string) bool {
	n := utf8.RuneCountInString(name)
	return n > 0 && n <= maxApplicationName
}

// AccessService manages grants. Reads are open to every user for their own
// rows; mutations are site-admin only.
type AccessService struct {
	repo   ports.GrantRepository
	logger ports.Logger
}

func NewAccessService(repo ports.GrantRepository, logger ports.Logger) *AccessService {
	return &AccessService{repo: repo, logger: logger}
}

func (s *AccessService) List(ctx context.Context, caller domain.User) ([]domain.Grant, error) {
	if caller.IsAdmin() {
		return s.repo.List(ctx)
	}
	return s.repo.ListByUser(ctx, caller.ID)
}

func (s *AccessService) Get(ctx context.Context, caller domain.User, grantID int64) (domain.Grant, error) {
	if grantID <= 0 {
		return domain.Grant{}, domain.ErrInvalidInput
	}
	grant, err := s.repo.GetByID(ctx, grantID)
	if err != nil {
		return domain.Grant{}, err
	}
	if !caller.IsAdmin() && grant.UserID != caller.ID {
		return domain.Grant{}, domain.ErrPermissionDeny
	}
	return grant, nil
}

func (s *AccessService) Create(ctx context.Context, caller domain.User, userID, appID int64, level domain.PermissionLevel) (domain.Grant, error) {
	if !caller.IsAdmin() {
		s.logger.Warn(ctx, "grant create denied", "user_id", caller.ID)
		return domain.Grant{}, domain.ErrPermissionDeny
	}
	if userID <= 0 || appID <= 0 || !level.Grantable() {
		return domain.Grant{}, domain.ErrInvalidInput
	}
	grant, err := s.repo.Create(ctx, domain.Grant{UserID: userID, ApplicationID: appID, PermissionLevel: level})
	if err != nil {
		return domain.Grant{}, err
	}
	s.logger.Info(ctx, "grant created", "grant_id", grant.ID, "target_user_id", userID, "application_id", appID, "level", string(level))
	return grant, nil
}

func (s *AccessService) UpdateLevel(ctx context.Context, caller domain.User, grantID int64, level domain.PermissionLevel) (domain.Grant, error) {
	if !caller.IsAdmin() {
		s.logger.Warn(ctx, "grant update denied", "grant_id", grantID, "user_id", caller.ID)
		return domain.Grant{}, domain.ErrPermissionDeny
	}
	if grantID <= 0 || !level.Grantable() {
		return domain.Grant{}, domain.ErrInvalidInput
	}
	grant, err := s.repo.UpdateLevel(ctx, grantID, level)
	if err != nil {
		return domain.Grant{}, err
	}
	s.logger.Info(ctx, "grant updated", "grant_id", grantID, "level", string(level))
	return grant, nil
}

func (s *AccessService) Delete(ctx context.Context, caller domain.User, grantID int64) error {
	if !caller.IsAdmin() {
		s.logger.Warn(ctx, "grant delete denied", "grant_id", grantID, "user_id", caller.ID)
		return domain.ErrPermissionDeny
	}
	if grantID <= 0 {
		return domain.ErrInvalidInput
	}
	if err := s.repo.Delete(ctx, grantID); err != nil {
		return err
	}
	s.logger.Info(ctx, "grant deleted", "grant_id", grantID)
	return nil
}
