// Package session keeps the signed-in user's tokens and profile. The state is
// persisted through a StateRepository and cached in memory; Manager doubles as
// the token source of the remote client.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/content-lifecycle-console/internal/apperr"
	"github.com/content-lifecycle-console/internal/models"
	"github.com/content-lifecycle-console/internal/repository"
	"github.com/content-lifecycle-console/internal/validation"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

var (
	// ErrNoSession means nobody is signed in
	ErrNoSession = errors.New("no active session")
	// ErrTokenExpired means the stored access token is past its exp claim
	ErrTokenExpired = errors.New("access token expired")
)

// expiryLeeway treats tokens about to expire as already expired
const expiryLeeway = 10 * time.Second

// Manager owns the persisted client session
type Manager struct {
	repo repository.StateRepository
	log  zerolog.Logger
	now  func() time.Time

	mu      sync.RWMutex
	current *models.Session
	loaded  bool
}

// New creates a session manager over repo
func New(repo repository.StateRepository, log zerolog.Logger) *Manager {
	return &Manager{
		repo: repo,
		log:  log.With().Str("component", "session").Logger(),
		now:  time.Now,
	}
}

// Current returns a copy of the active session, loading it from storage on first use
func (m *Manager) Current(ctx context.Context) (*models.Session, error) {
	m.mu.RLock()
	if m.loaded {
		s := m.current
		m.mu.RUnlock()
		if s == nil {
			return nil, ErrNoSession
		}
		return s.Clone(), nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.loaded {
		s, err := m.repo.LoadSession(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load session: %w", err)
		}
		m.current = s
		m.loaded = true
	}
	if m.current == nil {
		return nil, ErrNoSession
	}
	return m.current.Clone(), nil
}

// User returns the signed-in user
func (m *Manager) User(ctx context.Context) (*models.User, error) {
	s, err := m.Current(ctx)
	if err != nil {
		return nil, err
	}
	return s.User, nil
}

// AccessToken returns the bearer token for remote calls.
// A missing or expired session is an AuthenticationFailed error.
func (m *Manager) AccessToken(ctx context.Context) (string, error) {
	s, err := m.Current(ctx)
	if err != nil {
		if errors.Is(err, ErrNoSession) {
			return "", apperr.AuthenticationFailed("authenticate", err)
		}
		return "", err
	}

	if err := m.checkExpiry(s.AccessToken); err != nil {
		m.log.Warn().Err(err).Msg("Stored access token is no longer valid")
		return "", apperr.AuthenticationFailed("authenticate", err)
	}
	return s.AccessToken, nil
}

// Login validates and persists a new session
func (m *Manager) Login(ctx context.Context, s *models.Session) error {
	if errs := validation.ValidateSession(s); len(errs) > 0 {
		return apperr.Validation(errs...)
	}
	if err := m.checkExpiry(s.AccessToken); err != nil {
		return apperr.Validation(apperr.FieldError{Field: "access_token", Message: err.Error()})
	}

	if err := m.repo.SaveSession(ctx, s); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	m.mu.Lock()
	m.current = s.Clone()
	m.loaded = true
	m.mu.Unlock()

	m.log.Info().Int64("user_id", s.User.ID).Str("role", string(s.User.Role)).Msg("Session stored")
	return nil
}

// Logout clears the persisted session
func (m *Manager) Logout(ctx context.Context) error {
	if err := m.repo.ClearSession(ctx); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	m.mu.Lock()
	m.current = nil
	m.loaded = true
	m.mu.Unlock()

	m.log.Info().Msg("Session cleared")
	return nil
}

// checkExpiry inspects the exp claim of JWT access tokens. The signature is
// not verified here; the remote API does that. Opaque tokens pass.
func (m *Manager) checkExpiry(token string) error {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}
	if !m.now().Add(expiryLeeway).Before(exp.Time) {
		return ErrTokenExpired
	}
	return nil
}
