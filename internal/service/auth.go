package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/atelier-cms/atelier/internal/domain"
)

// AuthService manages the single-admin login and opaque session tokens.
// Sessions live in memory; a restart logs the admin out.
type AuthService struct {
	passwordHash []byte
	ttl          time.Duration
	now          func() time.Time

	mu       sync.Mutex
	sessions map[string]time.Time
}

// NewAuthService creates an auth service around the configured bcrypt hash.
func NewAuthService(passwordHash string, ttl time.Duration) *AuthService {
	return &AuthService{
		passwordHash: []byte(passwordHash),
		ttl:          ttl,
		now:          time.Now,
		sessions:     make(map[string]time.Time),
	}
}

// Login checks the password against the configured hash and returns a new
// session token. An unset hash disables login entirely.
func (s *AuthService) Login(password string) (string, error) {
	if len(s.passwordHash) == 0 {
		return "", fmt.Errorf("%w: no admin password configured", domain.ErrValidation)
	}
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return "", fmt.Errorf("check password: %w", domain.ErrUnauthorized)
	}

	token := uuid.NewString()
	s.mu.Lock()
	s.sessions[token] = s.now().Add(s.ttl)
	s.mu.Unlock()
	return token, nil
}

// Validate reports whether token names a live session and slides its expiry.
func (s *AuthService) Validate(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	deadline, ok := s.sessions[token]
	if !ok {
		return domain.ErrUnauthorized
	}
	if s.now().After(deadline) {
		delete(s.sessions, token)
		return domain.ErrUnauthorized
	}
	s.sessions[token] = s.now().Add(s.ttl)
	return nil
}

// Logout removes the session. Unknown tokens are ignored.
func (s *AuthService) Logout(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}
