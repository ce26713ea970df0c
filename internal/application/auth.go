package application

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/mail"
	"strings"
	"time"

	"app-hub/internal/domain"
	"app-hub/internal/ports"
)

type RegisterInput struct {
	FullName string
	Email    string
	Password string
	AdminKey string
}

type AccessToken struct {
	Token     string
	ExpiresAt time.Time
}

type AuthService struct {
	users       ports.UserRepository
	hasher      ports.PasswordHasher
	tokens      ports.TokenService
	adminSecret string
	logger      ports.Logger
}

func NewAuthService(users ports.UserRepository, hasher ports.PasswordHasher, tokens ports.TokenService, adminSecret string, logger ports.Logger) *AuthService {
	return &AuthService{users: users, hasher: hasher, tokens: tokens, adminSecret: adminSecret, logger: logger}
}

// NormalizeEmail lower-cases and trims so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (domain.User, error) {
	email := NormalizeEmail(in.Email)
	fullName := strings.TrimSpace(in.FullName)
	if fullName == "" || in.Password == "" {
		return domain.User{}, domain.ErrInvalidInput
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return domain.User{}, domain.ErrInvalidInput
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return domain.User{}, domain.ErrConflict
	} else if !errors.Is(err, domain.ErrNotFound) {
		return domain.User{}, err
	}

	hashed, err := s.hasher.Hash(in.Password)
	if err != nil {
		return domain.User{}, errors.Join(domain.ErrInvalidInput, err)
	}

	role := domain.RoleUser
	if s.isAdminKey(in.AdminKey) {
		role = domain.RoleAdmin
	}

	// The unique index still guards against a concurrent registration.
	user, err := s.users.Create(ctx, domain.User{
		FullName:       fullName,
		Email:          email,
		HashedPassword: hashed,
		Role:           role,
	})
	if err != nil {
		return domain.User{}, err
	}
	s.logger.Info(ctx, "user registered", "user_id", user.ID, "role", string(user.Role))
	return user, nil
}

func (s *AuthService) isAdminKey(key string) bool {
	if key == "" || s.adminSecret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(key), []byte(s.adminSecret)) == 1
}

// Login returns ErrInvalidCreds for both an unknown email and a wrong password.
func (s *AuthService) Login(ctx context.Context, email, password string) (AccessToken, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return AccessToken{}, domain.ErrInvalidCreds
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn(ctx, "login failed", "reason", "unknown email")
			return AccessToken{}, domain.ErrInvalidCreds
		}
		return AccessToken{}, err
	}
	if !s.hasher.Verify(password, user.HashedPassword) {
		s.logger.Warn(ctx, "login failed", "reason", "password mismatch", "user_id", user.ID)
		return AccessToken{}, domain.ErrInvalidCreds
	}

	token, expiresAt, err := s.tokens.Issue(user.ID)
	if err != nil {
		return AccessToken{}, err
	}
	s.logger.Info(ctx, "user logged in", "user_id", user.ID)
	return AccessToken{Token: token, ExpiresAt: expiresAt}, nil
}

// Authenticate resolves a bearer token to the current user record.
func (s *AuthService) Authenticate(ctx context.Context, token string) (domain.User, error) {
	if token == "" {
		return domain.User{}, domain.ErrUnauthenticated
	}
	userID, err := s.tokens.Resolve(token)
	if err != nil {
		return domain.User{}, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.User{}, domain.ErrUnauthenticated
		}
		return domain.User{}, err
	}
	return user, nil
}
