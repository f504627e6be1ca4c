// Package lifecycle is the Content Lifecycle Manager. It owns the local
// projection of one content kind, checks every transition against it, and
// applies the outcome only after the remote API recognised the call.
package lifecycle

import (
	"context"
	"sync"

	"github.com/content-lifecycle-console/internal/apperr"
	"github.com/content-lifecycle-console/internal/models"
	"github.com/content-lifecycle-console/internal/remote"
	"github.com/content-lifecycle-console/internal/validation"
	"github.com/rs/zerolog"
)

// DefaultMaxPages bounds how many pages a single Load follows
const DefaultMaxPages = 50

// Backend is the remote API as seen by the manager
type Backend interface {
	ListByStatus(ctx context.Context, kind models.ContentKind, status models.Status, page int) (*remote.Page, error)
	SubmitForApproval(ctx context.Context, kind models.ContentKind, id int64) (*remote.Result, error)
	Approve(ctx context.Context, kind models.ContentKind, id int64) (*remote.Result, error)
	Reject(ctx context.Context, kind models.ContentKind, id int64, reason string) (*remote.Result, error)
	Publish(ctx context.Context, kind models.ContentKind, id int64) (*remote.Result, error)
	Archive(ctx context.Context, kind models.ContentKind, id int64) (*remote.Result, error)
	Unarchive(ctx context.Context, kind models.ContentKind, id int64) (*remote.Result, error)
	Delete(ctx context.Context, kind models.ContentKind, id int64) (*remote.Result, error)
	ToggleLike(ctx context.Context, kind models.ContentKind, id int64) (*remote.LikeResult, error)
	Create(ctx context.Context, kind models.ContentKind, form models.ContentForm) (*models.ContentItem, error)
	Update(ctx context.Context, kind models.ContentKind, id int64, form models.ContentForm) (*models.ContentItem, error)
}

// Ensure the HTTP client satisfies Backend
var _ Backend = (*remote.Client)(nil)

// Outcome describes an applied operation
type Outcome struct {
	Action  models.Action
	Before  *models.ContentItem // nil for create
	After   *models.ContentItem // nil for delete
	Message string              // server message, if any
}

// LoadResult summarises a Load
type LoadResult struct {
	Status    models.Status
	Fetched   int
	Pruned    int
	Pages     int
	Truncated bool // stopped at the page limit before the listing ended
}

// Manager mediates every status-affecting operation on one content kind
type Manager struct {
	kind     models.ContentKind
	backend  Backend
	store    *Store
	maxPages int

	inflightMu sync.Mutex
	inflight   map[int64]models.Action

	log zerolog.Logger
}

// Option configures a Manager
type Option func(*Manager)

// WithMaxPages sets the pagination limit for Load
func WithMaxPages(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.maxPages = n
		}
	}
}

// WithStore replaces the manager's store
func WithStore(s *Store) Option {
	return func(m *Manager) {
		m.store = s
	}
}

// NewManager creates a manager for kind backed by the given remote API
func NewManager(kind models.ContentKind, backend Backend, log zerolog.Logger, opts ...Option) *Manager {
	m := &Manager{
		kind:     kind,
		backend:  backend,
		store:    NewStore(),
		maxPages: DefaultMaxPages,
		inflight: make(map[int64]models.Action),
		log:      log.With().Str("component", "lifecycle").Str("kind", string(kind)).Logger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Kind returns the content kind this manager owns
func (m *Manager) Kind() models.ContentKind {
	return m.kind
}

// Get returns a copy of the item from the local projection
func (m *Manager) Get(id int64) (*models.ContentItem, error) {
	item, ok := m.store.Get(id)
	if !ok {
		return nil, apperr.NotFound("find " + string(m.kind))
	}
	return item, nil
}

// View returns the items matching filter
func (m *Manager) View(filter Filter) []*models.ContentItem {
	return m.store.Select(filter)
}

// Counts returns the size of every view
func (m *Manager) Counts() map[View]int {
	return m.store.Counts()
}

// Reset clears the local projection
func (m *Manager) Reset() {
	m.store.Reset()
}

// Load fetches every page of items in status and merges them into the store.
// An empty status loads every status. When the listing was read to the end,
// local items of that status the remote no longer reports are pruned.
func (m *Manager) Load(ctx context.Context, status models.Status) (*LoadResult, error) {
	res := &LoadResult{Status: status}
	var items []*models.ContentItem

	for page := 1; ; page++ {
		if page > m.maxPages {
			res.Truncated = true
			break
		}
		p, err := m.backend.ListByStatus(ctx, m.kind, status, page)
		if err != nil {
			m.log.Warn().Err(err).Str("status", string(status)).Int("page", page).Msg("Failed to load items")
			return nil, err
		}
		res.Pages++
		items = append(items, p.Items...)
		if !p.Pagination.HasNext() || len(p.Items) == 0 {
			break
		}
	}

	res.Fetched = len(items)
	res.Pruned = m.store.Merge(items, status, !res.Truncated, m.busyIDs())

	m.log.Info().
		Str("status", string(status)).
		Int("fetched", res.Fetched).
		Int("pruned", res.Pruned).
		Int("pages", res.Pages).
		Bool("truncated", res.Truncated).
		Msg("Items loaded")

	return res, nil
}

// SubmitForApproval moves a draft to pending_approval
func (m *Manager) SubmitForApproval(ctx context.Context, id int64) (*Outcome, error) {
	return m.transition(ctx, id, models.ActionSubmit,
		requireStatus(models.StatusDraft),
		func(ctx context.Context) (*remote.Result, error) {
			return m.backend.SubmitForApproval(ctx, m.kind, id)
		},
		func(item *models.ContentItem, _ *remote.Result) {
			item.Status = models.StatusPendingApproval
		},
	)
}

// Approve accepts a pending item. The item lands in approved, or in published
// when the backend reports that it published on approval.
func (m *Manager) Approve(ctx context.Context, id int64) (*Outcome, error) {
	return m.transition(ctx, id, models.ActionApprove,
		requireStatus(models.StatusPendingApproval),
		func(ctx context.Context) (*remote.Result, error) {
			return m.backend.Approve(ctx, m.kind, id)
		},
		func(item *models.ContentItem, res *remote.Result) {
			item.Status = models.StatusApproved
			if res.Item != nil && res.Item.Status == models.StatusPublished {
				item.Status = models.StatusPublished
			}
		},
	)
}

// Reject declines a pending item. Videos require a reason of at least
// ten words, checked before anything else.
func (m *Manager) Reject(ctx context.Context, id int64, reason string) (*Outcome, error) {
	if m.kind == models.KindVideo {
		if errs := validation.ValidateRejectionReason(reason); len(errs) > 0 {
			return nil, apperr.Validation(errs...)
		}
	}

	return m.transition(ctx, id, models.ActionReject,
		requireStatus(models.StatusPendingApproval),
		func(ctx context.Context) (*remote.Result, error) {
			return m.backend.Reject(ctx, m.kind, id, reason)
		},
		func(item *models.ContentItem, _ *remote.Result) {
			item.Status = models.StatusRejected
		},
	)
}

// Publish makes an approved item public
func (m *Manager) Publish(ctx context.Context, id int64) (*Outcome, error) {
	return m.transition(ctx, id, models.ActionPublish,
		requireStatus(models.StatusApproved),
		func(ctx context.Context) (*remote.Result, error) {
			return m.backend.Publish(ctx, m.kind, id)
		},
		func(item *models.ContentItem, _ *remote.Result) {
			item.Status = models.StatusPublished
		},
	)
}

// Archive retires an approved or published item. Status is left unchanged.
func (m *Manager) Archive(ctx context.Context, id int64) (*Outcome, error) {
	check := func(label string, item *models.ContentItem) error {
		if item.Archived {
			return apperr.InvalidTransition(label, "Cannot %s %d: it is already archived.", label, item.ID)
		}
		if !item.Status.Archivable() {
			return apperr.InvalidTransition(label, "Cannot %s %d: only approved or published items can be archived (status is %s).", label, item.ID, item.Status)
		}
		return nil
	}
	return m.transition(ctx, id, models.ActionArchive, check,
		func(ctx context.Context) (*remote.Result, error) {
			return m.backend.Archive(ctx, m.kind, id)
		},
		func(item *models.ContentItem, _ *remote.Result) {
			item.Archived = true
		},
	)
}

// Unarchive restores an archived item. Status is left unchanged.
func (m *Manager) Unarchive(ctx context.Context, id int64) (*Outcome, error) {
	check := func(label string, item *models.ContentItem) error {
		if !item.Archived {
			return apperr.InvalidTransition(label, "Cannot %s %d: it is not archived.", label, item.ID)
		}
		return nil
	}
	return m.transition(ctx, id, models.ActionUnarchive, check,
		func(ctx context.Context) (*remote.Result, error) {
			return m.backend.Unarchive(ctx, m.kind, id)
		},
		func(item *models.ContentItem, _ *remote.Result) {
			item.Archived = false
		},
	)
}

// Delete hard-deletes an item and removes it from every view.
// On failure the item stays visible.
func (m *Manager) Delete(ctx context.Context, id int64) (*Outcome, error) {
	label := m.label(models.ActionDelete)
	release, err := m.acquire(id, models.ActionDelete)
	if err != nil {
		return nil, err
	}
	defer release()

	before, ok := m.store.Get(id)
	if !ok {
		return nil, apperr.NotFound(label)
	}

	res, err := m.backend.Delete(ctx, m.kind, id)
	if err != nil {
		m.logFailure(id, models.ActionDelete, err)
		return nil, err
	}

	m.store.Remove(id)
	m.log.Info().Int64("id", id).Str("action", string(models.ActionDelete)).Msg("Item deleted")

	return &Outcome{Action: models.ActionDelete, Before: before, Message: res.Message}, nil
}

// ToggleLike flips userID's like before calling the remote API and rolls
// the flip back if the call fails. A successful response that reports the
// like state or count overrides the local guess.
func (m *Manager) ToggleLike(ctx context.Context, id, userID int64) (*Outcome, error) {
	label := m.label(models.ActionLike)
	release, err := m.acquire(id, models.ActionLike)
	if err != nil {
		return nil, err
	}
	defer release()

	before, ok := m.store.Get(id)
	if !ok {
		return nil, apperr.NotFound(label)
	}

	m.store.Update(id, func(item *models.ContentItem) {
		item.ToggleLike(userID)
	})

	res, err := m.backend.ToggleLike(ctx, m.kind, id)
	if err != nil {
		m.store.Update(id, func(item *models.ContentItem) {
			item.Likes = before.Likes
			item.LikedBy = before.LikedBy
			item.IsLiked = before.IsLiked
		})
		m.logFailure(id, models.ActionLike, err)
		return nil, err
	}

	after, ok := m.store.Update(id, func(item *models.ContentItem) {
		if res.Liked != nil {
			item.SetLiked(userID, *res.Liked)
		}
		if res.Likes != nil {
			item.Likes = *res.Likes
		}
	})
	if !ok {
		return nil, apperr.NotFound(label)
	}

	return &Outcome{Action: models.ActionLike, Before: before, After: after, Message: res.Message}, nil
}

// Create validates and uploads a new item, then adds it to the store
func (m *Manager) Create(ctx context.Context, form models.ContentForm) (*Outcome, error) {
	if errs := validation.ValidateContentForm(m.kind, form, true); len(errs) > 0 {
		return nil, apperr.Validation(errs...)
	}

	item, err := m.backend.Create(ctx, m.kind, form)
	if err != nil {
		m.logFailure(0, models.ActionCreate, err)
		return nil, err
	}

	m.store.Put(item)
	after, _ := m.store.Get(item.ID)
	m.log.Info().Int64("id", item.ID).Str("status", string(item.Status)).Msg("Item created")

	return &Outcome{Action: models.ActionCreate, After: after}, nil
}

// Update sends the fields of form that differ from the loaded record.
// A form with no differences is a no-op and makes no remote call.
func (m *Manager) Update(ctx context.Context, id int64, form models.ContentForm) (*Outcome, error) {
	label := m.label(models.ActionUpdate)
	release, err := m.acquire(id, models.ActionUpdate)
	if err != nil {
		return nil, err
	}
	defer release()

	before, ok := m.store.Get(id)
	if !ok {
		return nil, apperr.NotFound(label)
	}

	diff := form.Diff(before)
	if diff.IsEmpty() {
		return &Outcome{Action: models.ActionUpdate, Before: before, After: before}, nil
	}
	// An edit may only keep a draft a draft or submit it; every other
	// status change goes through its own transition.
	if diff.Status != nil && before.Status != models.StatusDraft {
		return nil, apperr.InvalidTransition(label, "Cannot %s %d: status cannot change from %s to %s.",
			label, id, before.Status, *diff.Status)
	}
	if errs := validation.ValidateContentForm(m.kind, diff, false); len(errs) > 0 {
		return nil, apperr.Validation(errs...)
	}

	updated, err := m.backend.Update(ctx, m.kind, id, diff)
	if err != nil {
		m.logFailure(id, models.ActionUpdate, err)
		return nil, err
	}

	var after *models.ContentItem
	if updated != nil {
		m.store.Put(updated)
		after, ok = m.store.Get(id)
	} else {
		after, ok = m.store.Update(id, func(item *models.ContentItem) {
			applyForm(item, diff)
		})
	}
	if !ok {
		return nil, apperr.NotFound(label)
	}

	m.log.Info().Int64("id", id).Str("action", string(models.ActionUpdate)).Msg("Item updated")
	return &Outcome{Action: models.ActionUpdate, Before: before, After: after}, nil
}

// transition runs the shared precondition, remote call, apply sequence
func (m *Manager) transition(
	ctx context.Context,
	id int64,
	action models.Action,
	check func(label string, item *models.ContentItem) error,
	call func(ctx context.Context) (*remote.Result, error),
	apply func(item *models.ContentItem, res *remote.Result),
) (*Outcome, error) {
	label := m.label(action)
	release, err := m.acquire(id, action)
	if err != nil {
		return nil, err
	}
	defer release()

	before, ok := m.store.Get(id)
	if !ok {
		return nil, apperr.NotFound(label)
	}
	if err := check(label, before); err != nil {
		return nil, err
	}

	res, err := call(ctx)
	if err != nil {
		m.logFailure(id, action, err)
		return nil, err
	}

	after, ok := m.store.Update(id, func(item *models.ContentItem) {
		apply(item, res)
	})
	if !ok {
		return nil, apperr.NotFound(label)
	}

	m.log.Info().
		Int64("id", id).
		Str("action", string(action)).
		Str("from", string(before.Status)).
		Str("to", string(after.Status)).
		Bool("archived", after.Archived).
		Msg("Transition applied")

	return &Outcome{Action: action, Before: before, After: after, Message: res.Message}, nil
}

// acquire marks id as in flight, refusing a second concurrent operation
func (m *Manager) acquire(id int64, action models.Action) (func(), error) {
	m.inflightMu.Lock()
	defer m.inflightMu.Unlock()

	if _, busy := m.inflight[id]; busy {
		return nil, apperr.Busy(m.label(action))
	}
	m.inflight[id] = action
	return func() {
		m.inflightMu.Lock()
		delete(m.inflight, id)
		m.inflightMu.Unlock()
	}, nil
}

func (m *Manager) busyIDs() map[int64]bool {
	m.inflightMu.Lock()
	defer m.inflightMu.Unlock()

	ids := make(map[int64]bool, len(m.inflight))
	for id := range m.inflight {
		ids[id] = true
	}
	return ids
}

// label is the user-facing action name, e.g. "approve video"
func (m *Manager) label(action models.Action) string {
	switch action {
	case models.ActionSubmit:
		return "submit " + string(m.kind) + " for approval"
	case models.ActionLike:
		return "like " + string(m.kind)
	}
	return string(action) + " " + string(m.kind)
}

func (m *Manager) logFailure(id int64, action models.Action, err error) {
	m.log.Warn().Err(err).
		Int64("id", id).
		Str("action", string(action)).
		Str("error_kind", string(apperr.KindOf(err))).
		Msg("Operation failed")
}

func requireStatus(want models.Status) func(string, *models.ContentItem) error {
	return func(label string, item *models.ContentItem) error {
		if item.Status != want {
			return apperr.InvalidTransition(label, "Cannot %s %d: status is %s, expected %s.", label, item.ID, item.Status, want)
		}
		return nil
	}
}

func applyForm(item *models.ContentItem, form models.ContentForm) {
	if form.Title != nil {
		item.Title = *form.Title
	}
	if form.Body != nil {
		item.Body = *form.Body
	}
	if form.Status != nil {
		item.Status = *form.Status
	}
	if form.Duration != nil {
		item.Duration = *form.Duration
	}
}
