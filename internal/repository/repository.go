package repository

import (
	"context"

	"github.com/content-lifecycle-console/internal/database"
	"github.com/content-lifecycle-console/internal/models"
)

// Client state keys, matching what the dashboards kept in browser storage
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyUser         = "user"
)

// StateRepository persists the client session between runs
type StateRepository interface {
	LoadSession(ctx context.Context) (*models.Session, error)
	SaveSession(ctx context.Context, session *models.Session) error
	ClearSession(ctx context.Context) error
}

// EventRepository stores the moderation audit trail
type EventRepository interface {
	Create(ctx context.Context, event *models.ModerationEvent) error
	BatchInsert(ctx context.Context, events []*models.ModerationEvent) (int, error)
	List(ctx context.Context, filter models.EventFilter) ([]*models.ModerationEvent, error)
}

// Repositories holds all repository interfaces
type Repositories struct {
	State StateRepository
	Event EventRepository
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		State: NewStateRepo(db),
		Event: NewEventRepo(db),
	}
}
