package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidPassword = errors.New("invalid password")
)

// AdminService handles back-office logins. The back office has a single
// shared password; a successful login yields a short-lived session token.
type AdminService interface {
	Login(password string) (string, error)
	SessionDuration() time.Duration
}

type adminService struct {
	passwordHash  string
	jwtSecret     string
	sessionExpiry time.Duration
}

// NewAdminService creates a new instance of AdminService. passwordHash is a
// bcrypt hash of the shared admin password; sessionExpiryMinutes bounds the
// lifetime of issued tokens.
func NewAdminService(passwordHash, jwtSecret string, sessionExpiryMinutes int) AdminService {
	return &adminService{
		passwordHash:  passwordHash,
		jwtSecret:     jwtSecret,
		sessionExpiry: time.Duration(sessionExpiryMinutes) * time.Minute,
	}
}

// Login verifies the shared password and issues an admin session token.
func (s *adminService) Login(password string) (string, error) {
	if err := bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password)); err != nil {
		return "", ErrInvalidPassword
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"role": "admin",
		"iat":  jwt.NewNumericDate(now),
		"exp":  jwt.NewNumericDate(now.Add(s.sessionExpiry)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return signed, nil
}

// SessionDuration reports how long issued tokens remain valid.
func (s *adminService) SessionDuration() time.Duration {
	return s.sessionExpiry
}
