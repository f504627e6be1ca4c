package remote

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/content-lifecycle-console/internal/models"
)

// wireContent is the union of blog and video fields as the API sends them
type wireContent struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Content     string          `json:"content"`
	Description string          `json:"description"`
	Body        string          `json:"body"`
	Author      json.RawMessage `json:"author"`
	AuthorID    *int64          `json:"author_id"`
	Status      string          `json:"status"`
	Archived    *bool           `json:"archived"`
	IsArchived  *bool           `json:"is_archived"`
	Likes       json.RawMessage `json:"likes"`
	LikesCount  *int            `json:"likes_count"`
	LikedBy     []int64         `json:"liked_by"`
	IsLiked     bool            `json:"is_liked"`
	Comments    []wireComment   `json:"comments"`
	CreatedAt   string          `json:"created_at"`

	Image     *string         `json:"image"`
	Video     *string         `json:"video"`
	Thumbnail *string         `json:"thumbnail"`
	Duration  json.RawMessage `json:"duration"`
	Views     int             `json:"views"`
	ViewedBy  []int64         `json:"viewed_by"`
}

type wireComment struct {
	ID        int64           `json:"id"`
	Body      string          `json:"body"`
	Content   string          `json:"content"`
	Author    json.RawMessage `json:"author"`
	Commenter json.RawMessage `json:"commenter"`
	Blog      *int64          `json:"blog"`
	BlogID    *int64          `json:"blog_id"`
	Video     *int64          `json:"video"`
	VideoID   *int64          `json:"video_id"`
	CreatedAt string          `json:"created_at"`
}

type wireUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func decodeContent(kind models.ContentKind, obj map[string]interface{}) (*models.ContentItem, error) {
	data, err := json.Marshal(obj)
	if err != nil {
		return nil, err
	}
	var w wireContent
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", kind, err)
	}
	return w.toItem(kind)
}

func (w *wireContent) toItem(kind models.ContentKind) (*models.ContentItem, error) {
	status, err := models.ParseStatus(w.Status)
	if err != nil {
		return nil, fmt.Errorf("%s %d: %w", kind, w.ID, err)
	}

	item := &models.ContentItem{
		ID:        w.ID,
		Kind:      kind,
		Title:     w.Title,
		Body:      firstNonEmpty(w.Body, w.Content, w.Description),
		Author:    decodeUser(w.Author),
		Status:    status,
		LikedBy:   w.LikedBy,
		IsLiked:   w.IsLiked,
		CreatedAt: parseTime(w.CreatedAt),
		Views:     w.Views,
		ViewedBy:  w.ViewedBy,
		Duration:  decodeDuration(w.Duration),
	}
	if item.Author == nil && w.AuthorID != nil {
		item.Author = &models.User{ID: *w.AuthorID}
	}

	switch {
	case w.Archived != nil:
		item.Archived = *w.Archived
	case w.IsArchived != nil:
		item.Archived = *w.IsArchived
	}

	// likes is either a count or the list of user ids that liked the item
	likes := bytes.TrimSpace(w.Likes)
	if len(likes) > 0 && likes[0] == '[' {
		var ids []int64
		if err := json.Unmarshal(likes, &ids); err == nil {
			if item.LikedBy == nil {
				item.LikedBy = ids
			}
			item.Likes = len(ids)
		}
	} else if len(likes) > 0 {
		var n int
		if err := json.Unmarshal(likes, &n); err == nil {
			item.Likes = n
		}
	}
	if w.LikesCount != nil {
		item.Likes = *w.LikesCount
	}

	if w.Image != nil {
		item.Image = *w.Image
	}
	if w.Video != nil {
		item.Video = *w.Video
	}
	if w.Thumbnail != nil {
		item.Thumbnail = *w.Thumbnail
	}

	for _, wc := range w.Comments {
		item.Comments = append(item.Comments, wc.toComment(kind, item.ID))
	}

	return item, nil
}

func (wc wireComment) toComment(kind models.ContentKind, parentID int64) models.Comment {
	c := models.Comment{
		ID:        wc.ID,
		Body:      firstNonEmpty(wc.Body, wc.Content),
		Author:    decodeUser(wc.Author),
		CreatedAt: parseTime(wc.CreatedAt),
	}
	if c.Author == nil {
		c.Author = decodeUser(wc.Commenter)
	}

	// A comment belongs to exactly one parent
	id := parentID
	if kind == models.KindVideo {
		if wc.VideoID != nil {
			id = *wc.VideoID
		} else if wc.Video != nil {
			id = *wc.Video
		}
		c.VideoID = &id
	} else {
		if wc.BlogID != nil {
			id = *wc.BlogID
		} else if wc.Blog != nil {
			id = *wc.Blog
		}
		c.BlogID = &id
	}
	return c
}

// decodeUser accepts a nested user object, a bare id or a bare username
func decodeUser(raw json.RawMessage) *models.User {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	switch raw[0] {
	case '{':
		var wu wireUser
		if err := json.Unmarshal(raw, &wu); err != nil {
			return nil
		}
		return &models.User{ID: wu.ID, Username: wu.Username, Email: wu.Email, Role: normalizeRole(wu.Role)}
	case '"':
		var name string
		if err := json.Unmarshal(raw, &name); err != nil {
			return nil
		}
		return &models.User{Username: name}
	default:
		var id int64
		if err := json.Unmarshal(raw, &id); err != nil {
			return nil
		}
		return &models.User{ID: id}
	}
}

func normalizeRole(role string) models.Role {
	switch strings.ToLower(role) {
	case "admin":
		return models.RoleAdmin
	case "creator":
		return models.RoleCreator
	case "viewer":
		return models.RoleViewer
	}
	return models.Role(role)
}

func decodeDuration(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
		return ""
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
