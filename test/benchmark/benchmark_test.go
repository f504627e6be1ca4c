package benchmark

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/content-lifecycle-console/internal/lifecycle"
	"github.com/content-lifecycle-console/internal/mocks"
	"github.com/content-lifecycle-console/internal/models"
	"github.com/content-lifecycle-console/internal/validation"
	"github.com/rs/zerolog"
)

var statuses = []models.Status{
	models.StatusDraft,
	models.StatusPendingApproval,
	models.StatusApproved,
	models.StatusPublished,
	models.StatusRejected,
}

// Helper function
func seedBackend(n int) *mocks.MockBackend {
	items := make([]*models.ContentItem, 0, n)
	base := time.Now().Add(-time.Duration(n) * time.Minute)
	for i := 0; i < n; i++ {
		items = append(items, &models.ContentItem{
			ID:        int64(i + 1),
			Kind:      models.KindBlog,
			Title:     fmt.Sprintf("Post %06d", i),
			Body:      "Lorem ipsum dolor sit amet",
			Author:    &models.User{ID: int64(i%50 + 1), Username: fmt.Sprintf("author%02d", i%50)},
			Status:    statuses[i%len(statuses)],
			Archived:  i%7 == 0,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}
	backend := mocks.NewMockBackend(items...)
	backend.PageSize = 100
	return backend
}

// BenchmarkLoadAll benchmarks a full paginated load of 5000 blogs
func BenchmarkLoadAll(b *testing.B) {
	backend := seedBackend(5000)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m := lifecycle.NewManager(models.KindBlog, backend, zerolog.Nop(), lifecycle.WithMaxPages(100))
		if _, err := m.Load(ctx, ""); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkReloadPending benchmarks reloading one status into a populated store
func BenchmarkReloadPending(b *testing.B) {
	backend := seedBackend(5000)
	ctx := context.Background()
	m := lifecycle.NewManager(models.KindBlog, backend, zerolog.Nop(), lifecycle.WithMaxPages(100))
	if _, err := m.Load(ctx, ""); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := m.Load(ctx, models.StatusPendingApproval); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkViewSearch benchmarks a filtered view over a populated store
func BenchmarkViewSearch(b *testing.B) {
	ctx := context.Background()
	m := lifecycle.NewManager(models.KindBlog, seedBackend(5000), zerolog.Nop(), lifecycle.WithMaxPages(100))
	if _, err := m.Load(ctx, ""); err != nil {
		b.Fatal(err)
	}
	filter := lifecycle.Filter{View: lifecycle.ViewActive, Query: "AUTHOR07"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.View(filter)
	}
}

// BenchmarkModerationRoundTrip benchmarks submit, approve and publish of one item
func BenchmarkModerationRoundTrip(b *testing.B) {
	ctx := context.Background()
	backend := mocks.NewMockBackend()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		id := int64(i + 1)
		backend.Items[id] = &models.ContentItem{ID: id, Kind: models.KindBlog, Title: "Post", Status: models.StatusDraft}
		m := lifecycle.NewManager(models.KindBlog, backend, zerolog.Nop())
		if _, err := m.Load(ctx, models.StatusDraft); err != nil {
			b.Fatal(err)
		}
		if _, err := m.SubmitForApproval(ctx, id); err != nil {
			b.Fatal(err)
		}
		if _, err := m.Approve(ctx, id); err != nil {
			b.Fatal(err)
		}
		if _, err := m.Publish(ctx, id); err != nil {
			b.Fatal(err)
		}
		delete(backend.Items, id)
	}
}

// BenchmarkRejectionReason benchmarks reason validation on long input
func BenchmarkRejectionReason(b *testing.B) {
	reason := strings.Repeat("the footage breaks the community guidelines ", 50)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if errs := validation.ValidateRejectionReason(reason); len(errs) > 0 {
			b.Fatal(errs)
		}
	}
}

// BenchmarkFormDiff benchmarks diffing an edit form against the stored item
func BenchmarkFormDiff(b *testing.B) {
	item := &models.ContentItem{ID: 1, Kind: models.KindVideo, Title: "Clip", Body: "Desc", Status: models.StatusDraft, Duration: "00:02:00"}
	title, body, duration := "Clip", "New description", "00:02:00"
	form := models.ContentForm{Title: &title, Body: &body, Duration: &duration}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if diff := form.Diff(item); diff.Body == nil || diff.Title != nil {
			b.Fatal("unexpected diff")
		}
	}
}
