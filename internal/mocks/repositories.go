package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/content-lifecycle-console/internal/models"
	"github.com/content-lifecycle-console/internal/repository"
)

// MockStateRepository is a mock implementation of StateRepository
type MockStateRepository struct {
	mu         sync.Mutex
	Session    *models.Session
	SaveError  error
	LoadError  error
	SaveCalls  int
	ClearCalls int
}

// Verify interface compliance
var _ repository.StateRepository = (*MockStateRepository)(nil)

func NewMockStateRepository() *MockStateRepository {
	return &MockStateRepository{}
}

func (m *MockStateRepository) LoadSession(ctx context.Context) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.LoadError != nil {
		return nil, m.LoadError
	}
	if m.Session == nil {
		return nil, nil
	}
	cp := *m.Session
	return &cp, nil
}

func (m *MockStateRepository) SaveSession(ctx context.Context, session *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SaveCalls++
	if m.SaveError != nil {
		return m.SaveError
	}
	cp := *session
	m.Session = &cp
	return nil
}

func (m *MockStateRepository) ClearSession(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ClearCalls++
	m.Session = nil
	return nil
}

// MockEventRepository is a mock implementation of EventRepository
type MockEventRepository struct {
	mu          sync.Mutex
	Events      []*models.ModerationEvent
	InsertError error
}

// Verify interface compliance
var _ repository.EventRepository = (*MockEventRepository)(nil)

func NewMockEventRepository() *MockEventRepository {
	return &MockEventRepository{
		Events: make([]*models.ModerationEvent, 0),
	}
}

func (m *MockEventRepository) Create(ctx context.Context, event *models.ModerationEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.InsertError != nil {
		return m.InsertError
	}
	m.Events = append(m.Events, event)
	return nil
}

func (m *MockEventRepository) BatchInsert(ctx context.Context, events []*models.ModerationEvent) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.InsertError != nil {
		return 0, m.InsertError
	}
	m.Events = append(m.Events, events...)
	return len(events), nil
}

func (m *MockEventRepository) List(ctx context.Context, filter models.EventFilter) ([]*models.ModerationEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*models.ModerationEvent
	for _, e := range m.Events {
		if filter.Kind != "" && e.Kind != filter.Kind {
			continue
		}
		if filter.ContentID != 0 && e.ContentID != filter.ContentID {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	limit := filter.Limit
	if limit <= 0 {
		limit = repository.DefaultEventLimit
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Count returns the number of stored events
func (m *MockEventRepository) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Events)
}
