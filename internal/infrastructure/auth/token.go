package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"app-hub/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var supportedAlgorithms = map[string]jwt.SigningMethod{
	jwt.SigningMethodHS256.Alg(): jwt.SigningMethodHS256,
	jwt.SigningMethodHS384.Alg(): jwt.SigningMethodHS384,
	jwt.SigningMethodHS512.Alg(): jwt.SigningMethodHS512,
}

type JWTService struct {
	secret   []byte
	method   jwt.SigningMethod
	lifetime time.Duration
	now      func() time.Time
}

func NewJWTService(secret, algorithm string, lifetime time.Duration) (*JWTService, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	method, ok := supportedAlgorithms[algorithm]
	if !ok {
		return nil, fmt.Errorf("unsupported jwt algorithm %q", algorithm)
	}
	if lifetime <= 0 {
		return nil, errors.New("token lifetime must be positive")
	}
	return &JWTService{secret: []byte(secret), method: method, lifetime: lifetime, now: time.Now}, nil
}

func (s *JWTService) Issue(subjectID int64) (string, time.Time, error) {
	if subjectID <= 0 {
		return "", time.Time{}, domain.ErrInvalidInput
	}
	issuedAt := s.now().UTC()
	expiresAt := issuedAt.Add(s.lifetime)
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(subjectID, 10),
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		ID:        uuid.NewString(),
	}
	signed, err := jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

func (s *JWTService) Resolve(token string) (int64, error) {
	if token == "" {
		return 0, domain.ErrUnauthenticated
	}
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{s.method.Alg()}), jwt.WithExpirationRequired(), jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, domain.ErrTokenExpired
		}
		return 0, domain.ErrUnauthenticated
	}
	if !parsed.Valid {
		return 0, domain.ErrUnauthenticated
	}
	if claims.Subject == "" {
		return 0, domain.ErrMalformedToken
	}
	subjectID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || subjectID <= 0 {
		return 0, domain.ErrMalformedToken
	}
	return subjectID, nil
}
