package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/content-lifecycle-console/internal/lifecycle"
	"github.com/content-lifecycle-console/internal/models"
	"github.com/content-lifecycle-console/internal/remote"
)

// MockBackend is an in-memory implementation of lifecycle.Backend.
// Items is the remote authority's view; Errors forces a method to fail.
type MockBackend struct {
	mu sync.Mutex

	Items    map[int64]*models.ContentItem
	Errors   map[string]error
	PageSize int
	NextID   int64

	// ApproveStatus, when set, is the status reported in the approve response item
	ApproveStatus models.Status
	// LikeResult, when set, is returned by ToggleLike
	LikeResult *remote.LikeResult
	// Gate, when set, blocks every mutation until it is closed. Entered
	// receives one value per blocked call.
	Gate    chan struct{}
	Entered chan string

	Calls      []string
	LastReason string
	LastForm   *models.ContentForm
}

// Verify interface compliance
var _ lifecycle.Backend = (*MockBackend)(nil)

func NewMockBackend(items ...*models.ContentItem) *MockBackend {
	m := &MockBackend{
		Items:    make(map[int64]*models.ContentItem),
		Errors:   make(map[string]error),
		PageSize: 100,
		NextID:   1000,
	}
	for _, item := range items {
		m.Items[item.ID] = item.Clone()
	}
	return m
}

// CallCount returns how often method was called
func (m *MockBackend) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, c := range m.Calls {
		if c == method {
			n++
		}
	}
	return n
}

func (m *MockBackend) enter(method string) error {
	m.mu.Lock()
	m.Calls = append(m.Calls, method)
	err := m.Errors[method]
	gate := m.Gate
	m.mu.Unlock()

	if gate != nil {
		if m.Entered != nil {
			m.Entered <- method
		}
		<-gate
	}
	return err
}

func (m *MockBackend) ListByStatus(ctx context.Context, kind models.ContentKind, status models.Status, page int) (*remote.Page, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, "ListByStatus")
	err := m.Errors["ListByStatus"]
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var matching []*models.ContentItem
	for _, item := range m.Items {
		if item.Kind != "" && item.Kind != kind {
			continue
		}
		if status == "" || item.Status == status {
			matching = append(matching, item.Clone())
		}
	}
	sort.Slice(matching, func(i, j int) bool { return matching[i].ID < matching[j].ID })

	size := m.PageSize
	if size <= 0 {
		size = len(matching) + 1
	}
	totalPages := (len(matching) + size - 1) / size
	if totalPages == 0 {
		totalPages = 1
	}
	start := (page - 1) * size
	if start > len(matching) {
		start = len(matching)
	}
	end := min(start+size, len(matching))

	return &remote.Page{
		Items: matching[start:end],
		Pagination: &models.Pagination{
			Page:       page,
			PageSize:   size,
			Total:      len(matching),
			TotalPages: totalPages,
		},
	}, nil
}

func (m *MockBackend) setStatus(id int64, status models.Status) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if item, ok := m.Items[id]; ok {
		item.Status = status
	}
}

func (m *MockBackend) setArchived(id int64, archived bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if item, ok := m.Items[id]; ok {
		item.Archived = archived
	}
}

func (m *MockBackend) SubmitForApproval(ctx context.Context, kind models.ContentKind, id int64) (*remote.Result, error) {
	if err := m.enter("SubmitForApproval"); err != nil {
		return nil, err
	}
	m.setStatus(id, models.StatusPendingApproval)
	return &remote.Result{Status: 200, Message: fmt.Sprintf("%s submitted for approval", kind)}, nil
}

func (m *MockBackend) Approve(ctx context.Context, kind models.ContentKind, id int64) (*remote.Result, error) {
	if err := m.enter("Approve"); err != nil {
		return nil, err
	}
	status := models.StatusApproved
	if m.ApproveStatus != "" {
		status = m.ApproveStatus
	}
	m.setStatus(id, status)

	res := &remote.Result{Status: 200, Message: fmt.Sprintf("%s approved successfully", kind)}
	if m.ApproveStatus != "" {
		res.Item = &models.ContentItem{ID: id, Kind: kind, Status: m.ApproveStatus}
	}
	return res, nil
}

func (m *MockBackend) Reject(ctx context.Context, kind models.ContentKind, id int64, reason string) (*remote.Result, error) {
	if err := m.enter("Reject"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.LastReason = reason
	m.mu.Unlock()
	m.setStatus(id, models.StatusRejected)
	return &remote.Result{Status: 200, Message: fmt.Sprintf("%s rejected", kind)}, nil
}

func (m *MockBackend) Publish(ctx context.Context, kind models.ContentKind, id int64) (*remote.Result, error) {
	if err := m.enter("Publish"); err != nil {
		return nil, err
	}
	m.setStatus(id, models.StatusPublished)
	return &remote.Result{Status: 200}, nil
}

func (m *MockBackend) Archive(ctx context.Context, kind models.ContentKind, id int64) (*remote.Result, error) {
	if err := m.enter("Archive"); err != nil {
		return nil, err
	}
	m.setArchived(id, true)
	return &remote.Result{Status: 200}, nil
}

func (m *MockBackend) Unarchive(ctx context.Context, kind models.ContentKind, id int64) (*remote.Result, error) {
	if err := m.enter("Unarchive"); err != nil {
		return nil, err
	}
	m.setArchived(id, false)
	return &remote.Result{Status: 200}, nil
}

func (m *MockBackend) Delete(ctx context.Context, kind models.ContentKind, id int64) (*remote.Result, error) {
	if err := m.enter("Delete"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	delete(m.Items, id)
	m.mu.Unlock()
	return &remote.Result{Status: 204}, nil
}

func (m *MockBackend) ToggleLike(ctx context.Context, kind models.ContentKind, id int64) (*remote.LikeResult, error) {
	if err := m.enter("ToggleLike"); err != nil {
		return nil, err
	}
	if m.LikeResult != nil {
		return m.LikeResult, nil
	}
	return &remote.LikeResult{Result: remote.Result{Status: 200}}, nil
}

func (m *MockBackend) Create(ctx context.Context, kind models.ContentKind, form models.ContentForm) (*models.ContentItem, error) {
	if err := m.enter("Create"); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.NextID++
	item := &models.ContentItem{
		ID:        m.NextID,
		Kind:      kind,
		Status:    models.StatusDraft,
		CreatedAt: time.Now().UTC(),
	}
	applyForm(item, form)
	m.Items[item.ID] = item.Clone()
	m.LastForm = &form
	return item, nil
}

func (m *MockBackend) Update(ctx context.Context, kind models.ContentKind, id int64, form models.ContentForm) (*models.ContentItem, error) {
	if err := m.enter("Update"); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastForm = &form
	item, ok := m.Items[id]
	if !ok {
		return nil, nil
	}
	applyForm(item, form)
	return item.Clone(), nil
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
	if form.Image != nil {
		item.Image = "/media/" + form.Image.Filename
	}
	if form.Video != nil {
		item.Video = "/media/" + form.Video.Filename
	}
	if form.Thumbnail != nil {
		item.Thumbnail = "/media/" + form.Thumbnail.Filename
	}
}
