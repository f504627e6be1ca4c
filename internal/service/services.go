package service

import (
	"context"

	"github.com/content-lifecycle-console/internal/config"
	"github.com/content-lifecycle-console/internal/lifecycle"
	"github.com/content-lifecycle-console/internal/models"
	"github.com/content-lifecycle-console/internal/repository"
	"github.com/rs/zerolog"
)

// ContentService exposes the lifecycle of one content kind
type ContentService interface {
	Kind() models.ContentKind
	List(ctx context.Context, filter lifecycle.Filter) []*models.ContentItem
	Counts() map[lifecycle.View]int
	Get(ctx context.Context, id int64) (*models.ContentItem, error)
	Refresh(ctx context.Context, status models.Status) (*lifecycle.LoadResult, error)
	Create(ctx context.Context, form models.ContentForm) (*models.ContentItem, error)
	Update(ctx context.Context, id int64, form models.ContentForm) (*models.ContentItem, error)
	Delete(ctx context.Context, id int64) error
	SubmitForApproval(ctx context.Context, id int64) (*models.ContentItem, error)
	Approve(ctx context.Context, id int64) (*models.ContentItem, error)
	Reject(ctx context.Context, id int64, reason string) (*models.ContentItem, error)
	Publish(ctx context.Context, id int64) (*models.ContentItem, error)
	Archive(ctx context.Context, id int64) (*models.ContentItem, error)
	Unarchive(ctx context.Context, id int64) (*models.ContentItem, error)
	ToggleLike(ctx context.Context, id int64) (*models.ContentItem, error)
	Reset()
}

// SessionService manages the signed-in user
type SessionService interface {
	Current(ctx context.Context) (*models.User, error)
	Login(ctx context.Context, session *models.Session) error
	Logout(ctx context.Context) error
}

// AuditService records and lists moderation events
type AuditService interface {
	Record(ctx context.Context, event *models.ModerationEvent)
	List(ctx context.Context, filter models.EventFilter) ([]*models.ModerationEvent, error)
	Start(ctx context.Context)
	Stop()
}

// RefreshService reloads the moderation queues on a schedule
type RefreshService interface {
	Start() error
	Stop()
	RunOnce(ctx context.Context) error
}

// SessionStore is the persisted session as the services see it
type SessionStore interface {
	User(ctx context.Context) (*models.User, error)
	Login(ctx context.Context, session *models.Session) error
	Logout(ctx context.Context) error
}

// Services holds all service interfaces
type Services struct {
	Blogs     ContentService
	Videos    ContentService
	Session   SessionService
	Audit     AuditService
	Refresher RefreshService
}

// Content returns the service for kind, or nil for an unknown kind
func (s *Services) Content(kind models.ContentKind) ContentService {
	switch kind {
	case models.KindBlog:
		return s.Blogs
	case models.KindVideo:
		return s.Videos
	}
	return nil
}

// NewServices creates all services. Both content kinds share backend.
func NewServices(repos *repository.Repositories, sessions SessionStore, backend lifecycle.Backend, cfg *config.Config, log zerolog.Logger) *Services {
	auditSvc := newAuditService(repos.Event, cfg.Audit, log)

	blogs := newContentService(
		lifecycle.NewManager(models.KindBlog, backend, log, lifecycle.WithMaxPages(cfg.Remote.MaxPages)),
		sessions, auditSvc, log,
	)
	videos := newContentService(
		lifecycle.NewManager(models.KindVideo, backend, log, lifecycle.WithMaxPages(cfg.Remote.MaxPages)),
		sessions, auditSvc, log,
	)
	content := []ContentService{blogs, videos}

	return &Services{
		Blogs:     blogs,
		Videos:    videos,
		Session:   newSessionService(sessions, content, log),
		Audit:     auditSvc,
		Refresher: newRefresher(cfg.Refresh, cfg.Remote.Timeout, content, log),
	}
}
