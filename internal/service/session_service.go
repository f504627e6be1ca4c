package service

import (
	"context"
	"errors"

	"github.com/content-lifecycle-console/internal/apperr"
	"github.com/content-lifecycle-console/internal/models"
	"github.com/content-lifecycle-console/internal/session"
	"github.com/rs/zerolog"
)

// sessionService is the concrete implementation of SessionService
type sessionService struct {
	store   SessionStore
	content []ContentService
	log     zerolog.Logger
}

func newSessionService(store SessionStore, content []ContentService, log zerolog.Logger) *sessionService {
	return &sessionService{
		store:   store,
		content: content,
		log:     log.With().Str("service", "session").Logger(),
	}
}

// Current returns the signed-in user
func (s *sessionService) Current(ctx context.Context) (*models.User, error) {
	user, err := s.store.User(ctx)
	if errors.Is(err, session.ErrNoSession) {
		return nil, apperr.AuthenticationFailed("load session", err)
	}
	return user, err
}

// Login stores a new session. Projections built for the previous user are dropped.
func (s *sessionService) Login(ctx context.Context, sess *models.Session) error {
	if err := s.store.Login(ctx, sess); err != nil {
		return err
	}
	s.resetContent()
	return nil
}

// Logout clears the persisted session and every local projection
func (s *sessionService) Logout(ctx context.Context) error {
	if err := s.store.Logout(ctx); err != nil {
		return err
	}
	s.resetContent()
	return nil
}

func (s *sessionService) resetContent() {
	for _, c := range s.content {
		c.Reset()
	}
	s.log.Info().Int("kinds", len(s.content)).Msg("Local projections cleared")
}
