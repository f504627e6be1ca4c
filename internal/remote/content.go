package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/content-lifecycle-console/internal/apperr"
	"github.com/content-lifecycle-console/internal/models"
)

// Page is one page of a status listing
type Page struct {
	Items      []*models.ContentItem
	Pagination *models.Pagination
}

// Result is the normalized outcome of a successful mutation
type Result struct {
	Status  int
	Message string
	Item    *models.ContentItem // nil when the response carried no item
}

// LikeResult is the outcome of a like toggle. Nil fields were absent from the response.
type LikeResult struct {
	Result
	Liked *bool
	Likes *int
}

func collectionPath(kind models.ContentKind) string {
	return fmt.Sprintf("/%s/", kind.Plural())
}

func itemPath(kind models.ContentKind, id int64) string {
	return fmt.Sprintf("/%s/%d/", kind.Plural(), id)
}

func actionPath(kind models.ContentKind, id int64, verb string) string {
	return fmt.Sprintf("/%s/%d/%s/", kind.Plural(), id, verb)
}

// ListByStatus fetches one page of items in the given status (getBlogByStatus / getVideoByStatus).
// An empty status lists every status.
func (c *Client) ListByStatus(ctx context.Context, kind models.ContentKind, status models.Status, page int) (*Page, error) {
	action := "load " + kind.Plural()

	query := url.Values{}
	if status != "" {
		query.Set("status", string(status))
	}
	if page > 1 {
		query.Set("page", strconv.Itoa(page))
	}

	env, err := c.do(ctx, request{action: action, method: http.MethodGet, path: collectionPath(kind), query: query})
	if err != nil {
		return nil, err
	}

	items, pagination, err := env.List(kind)
	if err != nil {
		return nil, apperr.UnexpectedShape(action, env.Status, err)
	}
	if pagination != nil && pagination.Page == 0 {
		pagination.Page = max(page, 1)
	}

	return &Page{Items: items, Pagination: pagination}, nil
}

// SubmitForApproval moves a draft to pending_approval (sendForApproval)
func (c *Client) SubmitForApproval(ctx context.Context, kind models.ContentKind, id int64) (*Result, error) {
	return c.mutate(ctx, kind, request{
		action: "submit " + string(kind) + " for approval",
		method: http.MethodPost,
		path:   actionPath(kind, id, "send-for-approval"),
	}, nil)
}

// Approve accepts a pending item (approveBlog / approveVideo)
func (c *Client) Approve(ctx context.Context, kind models.ContentKind, id int64) (*Result, error) {
	return c.mutate(ctx, kind, request{
		action: "approve " + string(kind),
		method: http.MethodPost,
		path:   actionPath(kind, id, "approve"),
	}, nil)
}

// Reject declines a pending item (rejectBlog / rejectVideo). The reason is sent when non-empty.
func (c *Client) Reject(ctx context.Context, kind models.ContentKind, id int64, reason string) (*Result, error) {
	var payload interface{}
	if reason != "" {
		payload = map[string]string{"reason": reason}
	}
	return c.mutate(ctx, kind, request{
		action: "reject " + string(kind),
		method: http.MethodPost,
		path:   actionPath(kind, id, "reject"),
	}, payload)
}

// Publish makes an approved item publicly visible
func (c *Client) Publish(ctx context.Context, kind models.ContentKind, id int64) (*Result, error) {
	return c.mutate(ctx, kind, request{
		action: "publish " + string(kind),
		method: http.MethodPost,
		path:   actionPath(kind, id, "publish"),
	}, nil)
}

// Archive sets the archived flag (archiveBlog)
func (c *Client) Archive(ctx context.Context, kind models.ContentKind, id int64) (*Result, error) {
	return c.mutate(ctx, kind, request{
		action: "archive " + string(kind),
		method: http.MethodPost,
		path:   actionPath(kind, id, "archive"),
	}, nil)
}

// Unarchive clears the archived flag (unarchiveBlog)
func (c *Client) Unarchive(ctx context.Context, kind models.ContentKind, id int64) (*Result, error) {
	return c.mutate(ctx, kind, request{
		action: "unarchive " + string(kind),
		method: http.MethodPost,
		path:   actionPath(kind, id, "unarchive"),
	}, nil)
}

// Delete hard-deletes an item (deleteBlog / deleteVideo)
func (c *Client) Delete(ctx context.Context, kind models.ContentKind, id int64) (*Result, error) {
	return c.mutate(ctx, kind, request{
		action: "delete " + string(kind),
		method: http.MethodDelete,
		path:   itemPath(kind, id),
	}, nil)
}

// ToggleLike toggles the caller's like (toggleBlogLike / toggleVideoLike)
func (c *Client) ToggleLike(ctx context.Context, kind models.ContentKind, id int64) (*LikeResult, error) {
	action := "like " + string(kind)
	env, err := c.do(ctx, request{action: action, method: http.MethodPost, path: actionPath(kind, id, "like")})
	if err != nil {
		return nil, err
	}
	if !env.Succeeded() {
		return nil, apperr.UnexpectedShape(action, env.Status, errNoKnownShape)
	}

	res := &LikeResult{Result: Result{Status: env.Status, Message: env.ServerMessage()}}
	if liked, ok := env.boolAt([]string{"is_liked"}, []string{"liked"}, []string{"data", "is_liked"}, []string{"data", "liked"}); ok {
		res.Liked = &liked
	}
	if n, ok := env.intAtPaths([]string{"likes"}, []string{"likes_count"}, []string{"data", "likes"}, []string{"data", "likes_count"}); ok {
		res.Likes = &n
	}
	return res, nil
}

// Create uploads a new item as multipart form data (createBlog)
func (c *Client) Create(ctx context.Context, kind models.ContentKind, form models.ContentForm) (*models.ContentItem, error) {
	action := "create " + string(kind)
	body, contentType, err := encodeForm(kind, form)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s form: %w", kind, err)
	}

	env, err := c.do(ctx, request{
		action:      action,
		method:      http.MethodPost,
		path:        collectionPath(kind),
		body:        body,
		contentType: contentType,
	})
	if err != nil {
		return nil, err
	}

	item, err := env.Item(kind)
	if err != nil {
		return nil, apperr.UnexpectedShape(action, env.Status, err)
	}
	return item, nil
}

// Update sends the given fields as multipart form data (updateBlog).
// Callers pass only the changed fields.
func (c *Client) Update(ctx context.Context, kind models.ContentKind, id int64, form models.ContentForm) (*models.ContentItem, error) {
	action := "update " + string(kind)
	body, contentType, err := encodeForm(kind, form)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s form: %w", kind, err)
	}

	env, err := c.do(ctx, request{
		action:      action,
		method:      http.MethodPatch,
		path:        itemPath(kind, id),
		body:        body,
		contentType: contentType,
	})
	if err != nil {
		return nil, err
	}

	item, err := env.Item(kind)
	if err != nil {
		if env.Succeeded() {
			return nil, nil
		}
		return nil, apperr.UnexpectedShape(action, env.Status, err)
	}
	return item, nil
}

func (c *Client) mutate(ctx context.Context, kind models.ContentKind, req request, payload interface{}) (*Result, error) {
	var (
		env *Envelope
		err error
	)
	if payload != nil {
		env, err = c.doJSON(ctx, req, payload)
	} else {
		env, err = c.do(ctx, req)
	}
	if err != nil {
		return nil, err
	}

	if !env.Succeeded() {
		return nil, apperr.UnexpectedShape(req.action, env.Status, errNoKnownShape)
	}

	res := &Result{Status: env.Status, Message: env.ServerMessage()}
	if item, err := env.Item(kind); err == nil {
		res.Item = item
	}
	return res, nil
}
