package service

import (
	"context"

	"github.com/content-lifecycle-console/internal/apperr"
	"github.com/content-lifecycle-console/internal/lifecycle"
	"github.com/content-lifecycle-console/internal/models"
	"github.com/rs/zerolog"
)

// contentService wraps a lifecycle manager with auditing and metrics
type contentService struct {
	manager *lifecycle.Manager
	users   SessionStore
	audit   AuditService
	log     zerolog.Logger
}

func newContentService(manager *lifecycle.Manager, users SessionStore, audit AuditService, log zerolog.Logger) *contentService {
	return &contentService{
		manager: manager,
		users:   users,
		audit:   audit,
		log:     log.With().Str("service", "content").Str("kind", string(manager.Kind())).Logger(),
	}
}

func (s *contentService) Kind() models.ContentKind {
	return s.manager.Kind()
}

func (s *contentService) List(ctx context.Context, filter lifecycle.Filter) []*models.ContentItem {
	return s.manager.View(filter)
}

func (s *contentService) Counts() map[lifecycle.View]int {
	return s.manager.Counts()
}

func (s *contentService) Get(ctx context.Context, id int64) (*models.ContentItem, error) {
	return s.manager.Get(id)
}

// Refresh reloads items of status from the remote API
func (s *contentService) Refresh(ctx context.Context, status models.Status) (*lifecycle.LoadResult, error) {
	res, err := s.manager.Load(ctx, status)
	if err != nil {
		refreshRunsTotal.WithLabelValues(string(s.Kind()), "failure").Inc()
		return nil, err
	}
	refreshRunsTotal.WithLabelValues(string(s.Kind()), "success").Inc()
	recordViews(s.Kind(), s.manager.Counts())
	return res, nil
}

func (s *contentService) Create(ctx context.Context, form models.ContentForm) (*models.ContentItem, error) {
	return s.apply(ctx, models.ActionCreate, 0, func() (*lifecycle.Outcome, error) {
		return s.manager.Create(ctx, form)
	})
}

func (s *contentService) Update(ctx context.Context, id int64, form models.ContentForm) (*models.ContentItem, error) {
	return s.apply(ctx, models.ActionUpdate, id, func() (*lifecycle.Outcome, error) {
		return s.manager.Update(ctx, id, form)
	})
}

func (s *contentService) Delete(ctx context.Context, id int64) error {
	_, err := s.apply(ctx, models.ActionDelete, id, func() (*lifecycle.Outcome, error) {
		return s.manager.Delete(ctx, id)
	})
	return err
}

func (s *contentService) SubmitForApproval(ctx context.Context, id int64) (*models.ContentItem, error) {
	return s.apply(ctx, models.ActionSubmit, id, func() (*lifecycle.Outcome, error) {
		return s.manager.SubmitForApproval(ctx, id)
	})
}

func (s *contentService) Approve(ctx context.Context, id int64) (*models.ContentItem, error) {
	return s.apply(ctx, models.ActionApprove, id, func() (*lifecycle.Outcome, error) {
		return s.manager.Approve(ctx, id)
	})
}

func (s *contentService) Reject(ctx context.Context, id int64, reason string) (*models.ContentItem, error) {
	return s.apply(ctx, models.ActionReject, id, func() (*lifecycle.Outcome, error) {
		return s.manager.Reject(ctx, id, reason)
	})
}

func (s *contentService) Publish(ctx context.Context, id int64) (*models.ContentItem, error) {
	return s.apply(ctx, models.ActionPublish, id, func() (*lifecycle.Outcome, error) {
		return s.manager.Publish(ctx, id)
	})
}

func (s *contentService) Archive(ctx context.Context, id int64) (*models.ContentItem, error) {
	return s.apply(ctx, models.ActionArchive, id, func() (*lifecycle.Outcome, error) {
		return s.manager.Archive(ctx, id)
	})
}

func (s *contentService) Unarchive(ctx context.Context, id int64) (*models.ContentItem, error) {
	return s.apply(ctx, models.ActionUnarchive, id, func() (*lifecycle.Outcome, error) {
		return s.manager.Unarchive(ctx, id)
	})
}

// ToggleLike toggles the signed-in user's like
func (s *contentService) ToggleLike(ctx context.Context, id int64) (*models.ContentItem, error) {
	user, err := s.users.User(ctx)
	if err != nil || user == nil {
		return nil, apperr.AuthenticationFailed("like "+string(s.Kind()), err)
	}
	return s.apply(ctx, models.ActionLike, id, func() (*lifecycle.Outcome, error) {
		return s.manager.ToggleLike(ctx, id, user.ID)
	})
}

// Reset drops the local projection
func (s *contentService) Reset() {
	s.manager.Reset()
	recordViews(s.Kind(), s.manager.Counts())
}

// apply runs op and records its outcome in the audit trail and metrics
func (s *contentService) apply(ctx context.Context, action models.Action, id int64, op func() (*lifecycle.Outcome, error)) (*models.ContentItem, error) {
	event := &models.ModerationEvent{
		Kind:      s.Kind(),
		ContentID: id,
		Action:    action,
	}
	if id != 0 {
		if before, err := s.manager.Get(id); err == nil {
			event.FromStatus = before.Status
			event.ToStatus = before.Status
			event.Archived = before.Archived
		}
	}
	if user, err := s.users.User(ctx); err == nil && user != nil {
		actor := user.ID
		event.ActorID = &actor
	}

	out, err := op()
	if err != nil {
		event.Outcome = models.OutcomeFailure
		event.ErrorKind = string(apperr.KindOf(err))
		event.Message = apperr.MessageOf(err)
	} else {
		event.Outcome = models.OutcomeSuccess
		event.Message = out.Message
		if out.After != nil {
			event.ContentID = out.After.ID
			event.ToStatus = out.After.Status
			event.Archived = out.After.Archived
		} else {
			event.ToStatus = ""
		}
	}

	recordOperation(event.Kind, action, event.Outcome, event.ErrorKind)
	s.audit.Record(ctx, event)

	if err != nil {
		return nil, err
	}
	recordViews(s.Kind(), s.manager.Counts())
	return out.After, nil
}
