package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/content-lifecycle-console/internal/apperr"
	"github.com/content-lifecycle-console/internal/lifecycle"
	"github.com/content-lifecycle-console/internal/models"
	"github.com/content-lifecycle-console/internal/service"
)

// MockContentService is a mock implementation of ContentService.
// Err, when set, fails every remote-backed call.
type MockContentService struct {
	mu sync.Mutex

	KindValue     models.ContentKind
	Items         map[int64]*models.ContentItem
	Err           error
	RefreshResult *lifecycle.LoadResult

	Calls      []string
	LastFilter lifecycle.Filter
	LastReason string
	LastForm   *models.ContentForm
	ResetCalls int
}

// Verify interface compliance
var _ service.ContentService = (*MockContentService)(nil)

func NewMockContentService(kind models.ContentKind, items ...*models.ContentItem) *MockContentService {
	m := &MockContentService{
		KindValue: kind,
		Items:     make(map[int64]*models.ContentItem),
	}
	for _, item := range items {
		m.Items[item.ID] = item
	}
	return m
}

func (m *MockContentService) record(call string) {
	m.Calls = append(m.Calls, call)
}

func (m *MockContentService) Kind() models.ContentKind {
	return m.KindValue
}

func (m *MockContentService) List(ctx context.Context, filter lifecycle.Filter) []*models.ContentItem {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record("List")
	m.LastFilter = filter
	view := filter.View
	if view == "" {
		view = lifecycle.ViewAll
	}

	out := make([]*models.ContentItem, 0, len(m.Items))
	for _, item := range m.Items {
		if view.Matches(item) {
			out = append(out, item.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *MockContentService) Counts() map[lifecycle.View]int {
	m.mu.Lock()
	defer m.mu.Unlock()

	counts := make(map[lifecycle.View]int)
	for _, v := range lifecycle.Views {
		for _, item := range m.Items {
			if v.Matches(item) {
				counts[v]++
			}
		}
	}
	return counts
}

func (m *MockContentService) Get(ctx context.Context, id int64) (*models.ContentItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.Items[id]
	if !ok {
		return nil, apperr.NotFound("find " + string(m.KindValue))
	}
	return item.Clone(), nil
}

func (m *MockContentService) Refresh(ctx context.Context, status models.Status) (*lifecycle.LoadResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record("Refresh")
	if m.Err != nil {
		return nil, m.Err
	}
	if m.RefreshResult != nil {
		return m.RefreshResult, nil
	}
	return &lifecycle.LoadResult{Status: status, Fetched: len(m.Items), Pages: 1}, nil
}

func (m *MockContentService) Create(ctx context.Context, form models.ContentForm) (*models.ContentItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record("Create")
	m.LastForm = &form
	if m.Err != nil {
		return nil, m.Err
	}
	item := &models.ContentItem{ID: int64(len(m.Items) + 1), Kind: m.KindValue, Status: models.StatusDraft}
	applyForm(item, form)
	m.Items[item.ID] = item
	return item.Clone(), nil
}

func (m *MockContentService) Update(ctx context.Context, id int64, form models.ContentForm) (*models.ContentItem, error) {
	return m.mutate("Update", id, func(item *models.ContentItem) {
		m.LastForm = &form
		applyForm(item, form)
	})
}

func (m *MockContentService) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record("Delete")
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.Items[id]; !ok {
		return apperr.NotFound("delete " + string(m.KindValue))
	}
	delete(m.Items, id)
	return nil
}

func (m *MockContentService) SubmitForApproval(ctx context.Context, id int64) (*models.ContentItem, error) {
	return m.mutate("SubmitForApproval", id, func(item *models.ContentItem) {
		item.Status = models.StatusPendingApproval
	})
}

func (m *MockContentService) Approve(ctx context.Context, id int64) (*models.ContentItem, error) {
	return m.mutate("Approve", id, func(item *models.ContentItem) {
		item.Status = models.StatusApproved
	})
}

func (m *MockContentService) Reject(ctx context.Context, id int64, reason string) (*models.ContentItem, error) {
	return m.mutate("Reject", id, func(item *models.ContentItem) {
		m.LastReason = reason
		item.Status = models.StatusRejected
	})
}

func (m *MockContentService) Publish(ctx context.Context, id int64) (*models.ContentItem, error) {
	return m.mutate("Publish", id, func(item *models.ContentItem) {
		item.Status = models.StatusPublished
	})
}

func (m *MockContentService) Archive(ctx context.Context, id int64) (*models.ContentItem, error) {
	return m.mutate("Archive", id, func(item *models.ContentItem) {
		item.Archived = true
	})
}

func (m *MockContentService) Unarchive(ctx context.Context, id int64) (*models.ContentItem, error) {
	return m.mutate("Unarchive", id, func(item *models.ContentItem) {
		item.Archived = false
	})
}

func (m *MockContentService) ToggleLike(ctx context.Context, id int64) (*models.ContentItem, error) {
	return m.mutate("ToggleLike", id, func(item *models.ContentItem) {
		item.ToggleLike(1)
	})
}

func (m *MockContentService) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ResetCalls++
	m.Items = make(map[int64]*models.ContentItem)
}

func (m *MockContentService) mutate(call string, id int64, fn func(item *models.ContentItem)) (*models.ContentItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record(call)
	if m.Err != nil {
		return nil, m.Err
	}
	item, ok := m.Items[id]
	if !ok {
		return nil, apperr.NotFound(call)
	}
	fn(item)
	return item.Clone(), nil
}

// MockSessionStore is a mock implementation of SessionStore
type MockSessionStore struct {
	mu       sync.Mutex
	Session  *models.Session
	LoginErr error
}

// Verify interface compliance
var _ service.SessionStore = (*MockSessionStore)(nil)

func NewMockSessionStore(user *models.User) *MockSessionStore {
	m := &MockSessionStore{}
	if user != nil {
		m.Session = &models.Session{AccessToken: "token", User: user}
	}
	return m
}

func (m *MockSessionStore) User(ctx context.Context) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Session == nil {
		return nil, apperr.AuthenticationFailed("load session", nil)
	}
	return m.Session.User, nil
}

func (m *MockSessionStore) Login(ctx context.Context, session *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.LoginErr != nil {
		return m.LoginErr
	}
	m.Session = session
	return nil
}

func (m *MockSessionStore) Logout(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Session = nil
	return nil
}

// MockSessionService is a mock implementation of SessionService
type MockSessionService struct {
	Store        *MockSessionStore
	LogoutCalls  int
	LoginSession *models.Session
}

// Verify interface compliance
var _ service.SessionService = (*MockSessionService)(nil)

func NewMockSessionService(user *models.User) *MockSessionService {
	return &MockSessionService{Store: NewMockSessionStore(user)}
}

func (m *MockSessionService) Current(ctx context.Context) (*models.User, error) {
	return m.Store.User(ctx)
}

func (m *MockSessionService) Login(ctx context.Context, session *models.Session) error {
	m.LoginSession = session
	return m.Store.Login(ctx, session)
}

func (m *MockSessionService) Logout(ctx context.Context) error {
	m.LogoutCalls++
	return m.Store.Logout(ctx)
}

// MockAuditService is a mock implementation of AuditService
type MockAuditService struct {
	Repo *MockEventRepository
}

// Verify interface compliance
var _ service.AuditService = (*MockAuditService)(nil)

func NewMockAuditService() *MockAuditService {
	return &MockAuditService{Repo: NewMockEventRepository()}
}

func (m *MockAuditService) Record(ctx context.Context, event *models.ModerationEvent) {
	m.Repo.Create(ctx, event)
}

func (m *MockAuditService) List(ctx context.Context, filter models.EventFilter) ([]*models.ModerationEvent, error) {
	return m.Repo.List(ctx, filter)
}

func (m *MockAuditService) Start(ctx context.Context) {}

func (m *MockAuditService) Stop() {}

// MockRefreshService is a mock implementation of RefreshService
type MockRefreshService struct {
	Runs int
	Err  error
}

// Verify interface compliance
var _ service.RefreshService = (*MockRefreshService)(nil)

func (m *MockRefreshService) Start() error { return nil }

func (m *MockRefreshService) Stop() {}

func (m *MockRefreshService) RunOnce(ctx context.Context) error {
	m.Runs++
	return m.Err
}
