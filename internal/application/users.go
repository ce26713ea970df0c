package application

import (
	"context"
	"strings"
	"unicode/utf8"

	"app-hub/internal/domain"
	"app-hub/internal/ports"
)

const (
	minFullName = 3
	maxFullName = 100
)

type UserService struct {
	repo   ports.UserRepository
	logger ports.Logger
}

func NewUserService(repo ports.UserRepository, logger ports.Logger) *UserService {
	return &UserService{repo: repo, logger: logger}
}

func (s *UserService) List(ctx context.Context, caller domain.User, search string) ([]domain.User, error) {
	if !caller.IsAdmin() {
		return nil, domain.ErrPermissionDeny
	}
	return s.repo.List(ctx, domain.UserFilter{Search: strings.TrimSpace(search)})
}

func (s *UserService) Get(ctx context.Context, caller domain.User, userID int64) (domain.User, error) {
	if userID <= 0 {
		return domain.User{}, domain.ErrInvalidInput
	}
	if !caller.IsAdmin() && caller.ID != userID {
		return domain.User{}, domain.ErrPermissionDeny
	}
	return s.repo.GetByID(ctx, userID)
}

func (s *UserService) Update(ctx context.Context, caller domain.User, userID int64, patch domain.UserPatch) (domain.User, error) {
	if !caller.IsAdmin() {
		s.logger.Warn(ctx, "user update denied", "target_user_id", userID, "user_id", caller.ID)
		return domain.User{}, domain.ErrPermissionDeny
	}
	if userID <= 0 || patch.Empty() {
		return domain.User{}, domain.ErrInvalidInput
	}
	if patch.FullName != nil {
		name := strings.TrimSpace(*patch.FullName)
		if n := utf8.RuneCountInString(name); n < minFullName || n > maxFullName {
			return domain.User{}, domain.ErrInvalidInput
		}
		patch.FullName = &name
	}
	if patch.Role != nil && !patch.Role.Valid() {
		return domain.User{}, domain.ErrInvalidInput
	}
	user, err := s.repo.Update(ctx, userID, patch)
	if err != nil {
		return domain.User{}, err
	}
	s.logger.Info(ctx, "user updated", "target_user_id", userID, "user_id", caller.ID)
	return user, nil
}

// Delete removes the account together with its grants; authored tickets are kept.
func (s *UserService) Delete(ctx context.Context, caller domain.User, userID int64) error {
	if !caller.IsAdmin() {
		s.logger.Warn(ctx, "user delete denied", "target_user_id", userID, "user_id", caller.ID)
		return domain.ErrPermissionDeny
	}
	if userID <= 0 {
		return domain.ErrInvalidInput
	}
	if err := s.repo.Delete(ctx, userID); err != nil {
		return err
	}
	s.logger.Info(ctx, "user deleted", "target_user_id", userID, "user_id", caller.ID)
	return nil
}
