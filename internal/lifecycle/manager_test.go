package lifecycle_test

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/content-lifecycle-console/internal/apperr"
	"github.com/content-lifecycle-console/internal/lifecycle"
	"github.com/content-lifecycle-console/internal/mocks"
	"github.com/content-lifecycle-console/internal/models"
	"github.com/content-lifecycle-console/internal/remote"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(kind models.ContentKind, id int64, status models.Status, archived bool) *models.ContentItem {
	return &models.ContentItem{
		ID:        id,
		Kind:      kind,
		Title:     "item",
		Body:      "body",
		Status:    status,
		Archived:  archived,
		Author:    &models.User{ID: 7, Username: "maria", Role: models.RoleCreator},
		CreatedAt: time.Date(2024, 1, 1, 0, 0, int(id), 0, time.UTC),
	}
}

// setup loads every backend item into a fresh manager
func setup(t *testing.T, kind models.ContentKind, items ...*models.ContentItem) (*lifecycle.Manager, *mocks.MockBackend) {
	t.Helper()
	backend := mocks.NewMockBackend(items...)
	m := lifecycle.NewManager(kind, backend, zerolog.Nop())
	_, err := m.Load(context.Background(), "")
	require.NoError(t, err)
	return m, backend
}

func ids(items []*models.ContentItem) []int64 {
	out := make([]int64, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func TestDraftToApprovedScenario(t *testing.T) {
	ctx := context.Background()
	m, _ := setup(t, models.KindBlog, item(models.KindBlog, 1, models.StatusDraft, false))

	out, err := m.SubmitForApproval(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, out.Before.Status)
	assert.Equal(t, models.StatusPendingApproval, out.After.Status)
	assert.Contains(t, ids(m.View(lifecycle.Filter{View: lifecycle.ViewPending})), int64(1))

	out, err = m.Approve(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, out.After.Status)
	assert.False(t, out.After.Archived)
	assert.NotContains(t, ids(m.View(lifecycle.Filter{View: lifecycle.ViewPending})), int64(1))
	assert.Contains(t, ids(m.View(lifecycle.Filter{View: lifecycle.ViewApproved})), int64(1))
}

func TestApprove_BackendPublishes(t *testing.T) {
	m, backend := setup(t, models.KindBlog, item(models.KindBlog, 1, models.StatusPendingApproval, false))
	backend.ApproveStatus = models.StatusPublished

	out, err := m.Approve(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPublished, out.After.Status)
	assert.Contains(t, ids(m.View(lifecycle.Filter{View: lifecycle.ViewApproved})), int64(1))
	assert.Contains(t, ids(m.View(lifecycle.Filter{View: lifecycle.ViewPublished})), int64(1))
}

func TestApprove_RequiresPending(t *testing.T) {
	for _, status := range []models.Status{models.StatusDraft, models.StatusApproved, models.StatusPublished, models.StatusRejected} {
		t.Run(string(status), func(t *testing.T) {
			m, backend := setup(t, models.KindVideo,
				item(models.KindVideo, 1, status, false),
				item(models.KindVideo, 2, models.StatusPendingApproval, false),
			)

			_, err := m.Approve(context.Background(), 1)
			require.Error(t, err)
			assert.Equal(t, apperr.KindInvalidTransition, apperr.KindOf(err))
			assert.Zero(t, backend.CallCount("Approve"))

			got, err := m.Get(1)
			require.NoError(t, err)
			assert.Equal(t, status, got.Status)

			other, err := m.Get(2)
			require.NoError(t, err)
			assert.Equal(t, models.StatusPendingApproval, other.Status)
		})
	}
}

func TestArchiveAndStatusAreIndependent(t *testing.T) {
	ctx := context.Background()
	m, _ := setup(t, models.KindVideo, item(models.KindVideo, 5, models.StatusPublished, false))

	out, err := m.Archive(ctx, 5)
	require.NoError(t, err)
	assert.True(t, out.After.Archived)
	assert.Equal(t, models.StatusPublished, out.After.Status)
	assert.Contains(t, ids(m.View(lifecycle.Filter{View: lifecycle.ViewArchived})), int64(5))
	assert.NotContains(t, ids(m.View(lifecycle.Filter{View: lifecycle.ViewActive})), int64(5))

	out, err = m.Unarchive(ctx, 5)
	require.NoError(t, err)
	assert.False(t, out.After.Archived)
	assert.Equal(t, models.StatusPublished, out.After.Status)
}

func TestStatusChangesKeepArchivedFlag(t *testing.T) {
	m, _ := setup(t, models.KindBlog, item(models.KindBlog, 3, models.StatusApproved, true))

	out, err := m.Publish(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPublished, out.After.Status)
	assert.True(t, out.After.Archived)
}

func TestArchive_Preconditions(t *testing.T) {
	tests := []struct {
		name     string
		status   models.Status
		archived bool
	}{
		{"draft", models.StatusDraft, false},
		{"pending", models.StatusPendingApproval, false},
		{"rejected", models.StatusRejected, false},
		{"already archived", models.StatusPublished, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, backend := setup(t, models.KindBlog, item(models.KindBlog, 1, tt.status, tt.archived))

			_, err := m.Archive(context.Background(), 1)
			require.Error(t, err)
			assert.Equal(t, apperr.KindInvalidTransition, apperr.KindOf(err))
			assert.Zero(t, backend.CallCount("Archive"))
		})
	}

	m, backend := setup(t, models.KindBlog, item(models.KindBlog, 1, models.StatusPublished, false))
	_, err := m.Unarchive(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidTransition, apperr.KindOf(err))
	assert.Zero(t, backend.CallCount("Unarchive"))
}

func TestRejectVideo_ReasonValidation(t *testing.T) {
	ctx := context.Background()
	m, backend := setup(t, models.KindVideo, item(models.KindVideo, 4, models.StatusPendingApproval, false))

	_, err := m.Reject(ctx, 4, "bad")
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	require.Len(t, appErr.Fields, 1)
	assert.Equal(t, "reason", appErr.Fields[0].Field)
	assert.Zero(t, backend.CallCount("Reject"))

	// nine words, padded with extra whitespace
	_, err = m.Reject(ctx, 4, "  one two  three four five six seven eight nine ")
	require.Error(t, err)
	assert.Zero(t, backend.CallCount("Reject"))

	reason := "one two three four five six seven eight nine ten"
	out, err := m.Reject(ctx, 4, reason)
	require.NoError(t, err)
	assert.Equal(t, 1, backend.CallCount("Reject"))
	assert.Equal(t, reason, backend.LastReason)
	assert.Equal(t, models.StatusRejected, out.After.Status)
	assert.NotContains(t, ids(m.View(lifecycle.Filter{View: lifecycle.ViewPending})), int64(4))
	assert.Contains(t, ids(m.View(lifecycle.Filter{View: lifecycle.ViewRejected})), int64(4))
}

func TestRejectBlog_ReasonOptional(t *testing.T) {
	m, backend := setup(t, models.KindBlog, item(models.KindBlog, 4, models.StatusPendingApproval, false))

	_, err := m.Reject(context.Background(), 4, "")
	require.NoError(t, err)
	assert.Equal(t, 1, backend.CallCount("Reject"))
}

func TestDelete_RemovesFromEveryView(t *testing.T) {
	m, _ := setup(t, models.KindBlog,
		item(models.KindBlog, 1, models.StatusPendingApproval, false),
		item(models.KindBlog, 2, models.StatusApproved, false),
		item(models.KindBlog, 3, models.StatusPublished, true),
	)

	for _, id := range []int64{1, 2, 3} {
		_, err := m.Delete(context.Background(), id)
		require.NoError(t, err)
		for _, v := range lifecycle.Views {
			assert.NotContains(t, ids(m.View(lifecycle.Filter{View: v})), id, "view %s", v)
		}
		_, err = m.Get(id)
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	}
}

func TestDelete_FailureKeepsItem(t *testing.T) {
	tests := []struct {
		status      int
		wantContain string
	}{
		{http.StatusNotFound, "not found"},
		{http.StatusForbidden, "permission"},
		{http.StatusUnauthorized, "Authentication failed"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			m, backend := setup(t, models.KindVideo, item(models.KindVideo, 9, models.StatusPublished, false))
			backend.Errors["Delete"] = apperr.FromStatus("delete video", tt.status, "")

			_, err := m.Delete(context.Background(), 9)
			require.Error(t, err)
			assert.Contains(t, apperr.MessageOf(err), tt.wantContain)

			_, err = m.Get(9)
			assert.NoError(t, err)
			assert.Contains(t, ids(m.View(lifecycle.Filter{View: lifecycle.ViewActive})), int64(9))
		})
	}
}

func TestMutationFailureLeavesStateUnchanged(t *testing.T) {
	m, backend := setup(t, models.KindBlog, item(models.KindBlog, 1, models.StatusPendingApproval, false))
	backend.Errors["Approve"] = apperr.Network("approve blog", assert.AnError)

	_, err := m.Approve(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(apperr.MessageOf(err), "Failed to approve blog: network error"))

	got, err := m.Get(1)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPendingApproval, got.Status)
}

func TestToggleLike_TwiceRestoresOriginal(t *testing.T) {
	ctx := context.Background()
	start := item(models.KindBlog, 1, models.StatusPublished, false)
	start.Likes = 3
	start.LikedBy = []int64{10, 11, 12}
	m, _ := setup(t, models.KindBlog, start)

	out, err := m.ToggleLike(ctx, 1, 42)
	require.NoError(t, err)
	assert.Equal(t, 4, out.After.Likes)
	assert.True(t, out.After.IsLiked)

	out, err = m.ToggleLike(ctx, 1, 42)
	require.NoError(t, err)
	assert.Equal(t, 3, out.After.Likes)
	assert.False(t, out.After.IsLiked)
	assert.ElementsMatch(t, []int64{10, 11, 12}, out.After.LikedBy)
}

func TestToggleLike_FollowsIsLikedWithoutLikedBy(t *testing.T) {
	ctx := context.Background()
	start := item(models.KindVideo, 1, models.StatusPublished, false)
	start.Likes = 5
	start.IsLiked = true
	m, _ := setup(t, models.KindVideo, start)

	out, err := m.ToggleLike(ctx, 1, 42)
	require.NoError(t, err)
	assert.False(t, out.After.IsLiked)
	assert.Equal(t, 4, out.After.Likes)
	assert.False(t, out.After.LikedByUser(42))

	out, err = m.ToggleLike(ctx, 1, 42)
	require.NoError(t, err)
	assert.True(t, out.After.IsLiked)
	assert.Equal(t, 5, out.After.Likes)
}

func TestToggleLike_ServerLikedStateCorrectsGuess(t *testing.T) {
	start := item(models.KindBlog, 1, models.StatusPublished, false)
	start.Likes = 5
	start.IsLiked = true
	m, backend := setup(t, models.KindBlog, start)
	liked := true
	backend.LikeResult = &remote.LikeResult{Result: remote.Result{Status: 200}, Liked: &liked}

	out, err := m.ToggleLike(context.Background(), 1, 42)
	require.NoError(t, err)
	assert.True(t, out.After.IsLiked)
	assert.Equal(t, 5, out.After.Likes)
}

func TestToggleLike_RollbackOnFailure(t *testing.T) {
	start := item(models.KindVideo, 1, models.StatusPublished, false)
	start.Likes = 1
	start.LikedBy = []int64{42}
	start.IsLiked = true
	m, backend := setup(t, models.KindVideo, start)
	backend.Errors["ToggleLike"] = apperr.FromStatus("like video", http.StatusInternalServerError, "boom")

	_, err := m.ToggleLike(context.Background(), 1, 42)
	require.Error(t, err)

	got, err := m.Get(1)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Likes)
	assert.True(t, got.IsLiked)
	assert.Equal(t, []int64{42}, got.LikedBy)
}

func TestToggleLike_ServerCountWins(t *testing.T) {
	m, backend := setup(t, models.KindVideo, item(models.KindVideo, 1, models.StatusPublished, false))
	liked, likes := true, 17
	backend.LikeResult = &remote.LikeResult{Result: remote.Result{Status: 200}, Liked: &liked, Likes: &likes}

	out, err := m.ToggleLike(context.Background(), 1, 42)
	require.NoError(t, err)
	assert.Equal(t, 17, out.After.Likes)
	assert.True(t, out.After.IsLiked)
	assert.True(t, out.After.LikedByUser(42))
}

func TestBusyItemRefusesSecondOperation(t *testing.T) {
	m, backend := setup(t, models.KindBlog, item(models.KindBlog, 1, models.StatusPendingApproval, false))
	backend.Gate = make(chan struct{})
	backend.Entered = make(chan string, 1)

	done := make(chan error, 1)
	go func() {
		_, err := m.Approve(context.Background(), 1)
		done <- err
	}()
	<-backend.Entered

	_, err := m.Delete(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, apperr.KindBusy, apperr.KindOf(err))

	close(backend.Gate)
	require.NoError(t, <-done)
	assert.Zero(t, backend.CallCount("Delete"))

	got, err := m.Get(1)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, got.Status)
}

func TestUnknownItem(t *testing.T) {
	m, backend := setup(t, models.KindBlog)

	_, err := m.Approve(context.Background(), 99)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	_, err = m.ToggleLike(context.Background(), 99, 1)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.Zero(t, backend.CallCount("Approve"))
}

func TestLoad_PaginatesAndPrunes(t *testing.T) {
	ctx := context.Background()
	backend := mocks.NewMockBackend(
		item(models.KindVideo, 1, models.StatusPendingApproval, false),
		item(models.KindVideo, 2, models.StatusPendingApproval, false),
		item(models.KindVideo, 3, models.StatusPendingApproval, false),
		item(models.KindVideo, 4, models.StatusPendingApproval, false),
		item(models.KindVideo, 5, models.StatusPendingApproval, false),
		item(models.KindVideo, 6, models.StatusPublished, false),
	)
	backend.PageSize = 2
	m := lifecycle.NewManager(models.KindVideo, backend, zerolog.Nop())

	res, err := m.Load(ctx, models.StatusPendingApproval)
	require.NoError(t, err)
	assert.Equal(t, 5, res.Fetched)
	assert.Equal(t, 3, res.Pages)
	assert.False(t, res.Truncated)

	_, err = m.Load(ctx, models.StatusPublished)
	require.NoError(t, err)

	// processed elsewhere
	delete(backend.Items, 2)

	res, err = m.Load(ctx, models.StatusPendingApproval)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Pruned)
	assert.Equal(t, []int64{5, 4, 3, 1}, ids(m.View(lifecycle.Filter{View: lifecycle.ViewPending})))

	// other statuses are untouched by a pending refresh
	_, err = m.Get(6)
	assert.NoError(t, err)
}

func TestLoad_TruncatedDoesNotPrune(t *testing.T) {
	ctx := context.Background()
	backend := mocks.NewMockBackend(
		item(models.KindBlog, 1, models.StatusDraft, false),
		item(models.KindBlog, 2, models.StatusDraft, false),
		item(models.KindBlog, 3, models.StatusDraft, false),
	)
	backend.PageSize = 1
	m := lifecycle.NewManager(models.KindBlog, backend, zerolog.Nop(), lifecycle.WithMaxPages(1))

	res, err := m.Load(ctx, "")
	require.NoError(t, err)
	assert.True(t, res.Truncated)
	assert.Equal(t, 1, res.Fetched)
	assert.Zero(t, res.Pruned)
}

func TestLoad_KeepsCreatedAt(t *testing.T) {
	ctx := context.Background()
	m, backend := setup(t, models.KindBlog, item(models.KindBlog, 1, models.StatusDraft, false))
	original, err := m.Get(1)
	require.NoError(t, err)

	backend.Items[1].CreatedAt = time.Now()
	backend.Items[1].Title = "renamed"

	_, err = m.Load(ctx, "")
	require.NoError(t, err)

	got, err := m.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Title)
	assert.True(t, original.CreatedAt.Equal(got.CreatedAt))
}

func TestLoad_Failure(t *testing.T) {
	backend := mocks.NewMockBackend()
	backend.Errors["ListByStatus"] = apperr.UnexpectedShape("load blogs", 200, assert.AnError)
	m := lifecycle.NewManager(models.KindBlog, backend, zerolog.Nop())

	_, err := m.Load(context.Background(), models.StatusPendingApproval)
	require.Error(t, err)
	assert.Equal(t, apperr.KindUnexpectedResponse, apperr.KindOf(err))
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	m, backend := setup(t, models.KindVideo)

	_, err := m.Create(ctx, models.ContentForm{Title: ptr("Clip")})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Zero(t, backend.CallCount("Create"))

	out, err := m.Create(ctx, models.ContentForm{
		Title: ptr("Clip"),
		Body:  ptr("A short clip"),
		Video: &models.Upload{Filename: "clip.mp4", ContentType: "video/mp4", Data: []byte("x")},
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, out.After.Status)
	assert.Contains(t, ids(m.View(lifecycle.Filter{View: lifecycle.ViewDrafts})), out.After.ID)
}

func TestUpdate_SendsOnlyChangedFields(t *testing.T) {
	ctx := context.Background()
	m, backend := setup(t, models.KindBlog, item(models.KindBlog, 1, models.StatusDraft, false))

	out, err := m.Update(ctx, 1, models.ContentForm{Title: ptr("item"), Body: ptr("body")})
	require.NoError(t, err)
	assert.Zero(t, backend.CallCount("Update"))
	assert.Equal(t, "item", out.After.Title)

	out, err = m.Update(ctx, 1, models.ContentForm{Title: ptr("item"), Body: ptr("new body")})
	require.NoError(t, err)
	require.NotNil(t, backend.LastForm)
	assert.Nil(t, backend.LastForm.Title)
	require.NotNil(t, backend.LastForm.Body)
	assert.Equal(t, "new body", *backend.LastForm.Body)
	assert.Equal(t, "new body", out.After.Body)
}

func TestUpdate_InvalidStatus(t *testing.T) {
	m, backend := setup(t, models.KindBlog, item(models.KindBlog, 1, models.StatusDraft, false))
	published := models.StatusPublished

	_, err := m.Update(context.Background(), 1, models.ContentForm{Status: &published})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Zero(t, backend.CallCount("Update"))
}

func TestUpdate_StatusChangeOnlyFromDraft(t *testing.T) {
	pending, draft := models.StatusPendingApproval, models.StatusDraft

	tests := []struct {
		name   string
		status models.Status
		target models.Status
	}{
		{"rejected to pending", models.StatusRejected, pending},
		{"published to draft", models.StatusPublished, draft},
		{"approved to draft", models.StatusApproved, draft},
		{"pending to draft", models.StatusPendingApproval, draft},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, backend := setup(t, models.KindBlog, item(models.KindBlog, 1, tt.status, false))
			target := tt.target

			_, err := m.Update(context.Background(), 1, models.ContentForm{Status: &target})
			require.Error(t, err)
			assert.Equal(t, apperr.KindInvalidTransition, apperr.KindOf(err))
			assert.Zero(t, backend.CallCount("Update"))

			got, err := m.Get(1)
			require.NoError(t, err)
			assert.Equal(t, tt.status, got.Status)
		})
	}

	t.Run("draft to pending", func(t *testing.T) {
		m, backend := setup(t, models.KindBlog, item(models.KindBlog, 1, models.StatusDraft, false))

		out, err := m.Update(context.Background(), 1, models.ContentForm{Status: &pending})
		require.NoError(t, err)
		assert.Equal(t, 1, backend.CallCount("Update"))
		assert.Equal(t, models.StatusPendingApproval, out.After.Status)
	})

	t.Run("unchanged status on a published item", func(t *testing.T) {
		m, backend := setup(t, models.KindBlog, item(models.KindBlog, 1, models.StatusPublished, false))
		published := models.StatusPublished

		out, err := m.Update(context.Background(), 1, models.ContentForm{Title: ptr("renamed"), Status: &published})
		require.NoError(t, err)
		assert.Equal(t, 1, backend.CallCount("Update"))
		assert.Equal(t, "renamed", out.After.Title)
		assert.Equal(t, models.StatusPublished, out.After.Status)
	})
}

func TestViewFilters(t *testing.T) {
	a := item(models.KindBlog, 1, models.StatusPublished, false)
	a.Title = "Go concurrency patterns"
	b := item(models.KindBlog, 2, models.StatusPublished, false)
	b.Author = &models.User{ID: 8, Username: "sam"}
	m, _ := setup(t, models.KindBlog, a, b)

	assert.Equal(t, []int64{1}, ids(m.View(lifecycle.Filter{Query: "CONCURRENCY"})))
	assert.Equal(t, []int64{2}, ids(m.View(lifecycle.Filter{Query: "sam"})))
	assert.Equal(t, []int64{2}, ids(m.View(lifecycle.Filter{AuthorID: 8})))
	assert.Equal(t, []int64{2, 1}, ids(m.View(lifecycle.Filter{View: lifecycle.ViewPublished})))

	counts := m.Counts()
	assert.Equal(t, 2, counts[lifecycle.ViewPublished])
	assert.Equal(t, 0, counts[lifecycle.ViewPending])
}

func ptr(s string) *string {
	return &s
}
