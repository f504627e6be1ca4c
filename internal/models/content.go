package models

import (
	"fmt"
	"slices"
	"time"
)

// ContentKind identifies which content type an item belongs to
type ContentKind string

const (
	KindBlog  ContentKind = "blog"
	KindVideo ContentKind = "video"
)

// IsValid reports whether the kind is one of the known content kinds
func (k ContentKind) IsValid() bool {
	return k == KindBlog || k == KindVideo
}

// Plural returns the collection name used in paths and envelopes ("blogs", "videos")
func (k ContentKind) Plural() string {
	return string(k) + "s"
}

// Status represents the moderation status of a content item
type Status string

const (
	StatusDraft           Status = "draft"
	StatusPendingApproval Status = "pending_approval"
	StatusApproved        Status = "approved"
	StatusPublished       Status = "published"
	StatusRejected        Status = "rejected"
)

// ValidStatuses defines allowed content statuses
var ValidStatuses = map[Status]bool{
	StatusDraft:           true,
	StatusPendingApproval: true,
	StatusApproved:        true,
	StatusPublished:       true,
	StatusRejected:        true,
}

// ParseStatus converts a wire value into a Status. An empty value means draft.
func ParseStatus(s string) (Status, error) {
	if s == "" {
		return StatusDraft, nil
	}
	st := Status(s)
	if !ValidStatuses[st] {
		return "", fmt.Errorf("invalid status %q, must be one of: draft, pending_approval, approved, published, rejected", s)
	}
	return st, nil
}

// Archivable reports whether items in this status expose the archive action
func (s Status) Archivable() bool {
	return s == StatusApproved || s == StatusPublished
}

// ContentItem is the common projection of a blog or a video.
// Status and Archived are independent of each other.
type ContentItem struct {
	ID        int64       `json:"id"`
	Kind      ContentKind `json:"kind"`
	Title     string      `json:"title"`
	Body      string      `json:"body"`
	Author    *User       `json:"author,omitempty"`
	Status    Status      `json:"status"`
	Archived  bool        `json:"archived"`
	Likes     int         `json:"likes"`
	LikedBy   []int64     `json:"liked_by"`
	IsLiked   bool        `json:"is_liked"`
	Comments  []Comment   `json:"comments"`
	CreatedAt time.Time   `json:"created_at"`

	// Blog only
	Image string `json:"image,omitempty"`

	// Video only
	Video     string  `json:"video,omitempty"`
	Thumbnail string  `json:"thumbnail,omitempty"`
	Duration  string  `json:"duration,omitempty"`
	Views     int     `json:"views,omitempty"`
	ViewedBy  []int64 `json:"viewed_by,omitempty"`
}

// LikedByUser reports whether userID is in the liked_by set
func (c *ContentItem) LikedByUser(userID int64) bool {
	return slices.Contains(c.LikedBy, userID)
}

// LikedByViewer reports whether userID, as the signed-in viewer, likes the item.
// The remote API may send is_liked without a liked_by list.
func (c *ContentItem) LikedByViewer(userID int64) bool {
	return c.IsLiked || c.LikedByUser(userID)
}

// SetLiked moves userID's like to liked, adjusting Likes only on a change.
// IsLiked and liked_by are kept in step.
func (c *ContentItem) SetLiked(userID int64, liked bool) {
	if c.LikedByViewer(userID) == liked {
		c.IsLiked = liked
		return
	}
	if liked {
		if !c.LikedByUser(userID) {
			c.LikedBy = append(c.LikedBy, userID)
		}
		c.Likes++
	} else {
		if idx := slices.Index(c.LikedBy, userID); idx >= 0 {
			c.LikedBy = slices.Delete(c.LikedBy, idx, idx+1)
		}
		if c.Likes > 0 {
			c.Likes--
		}
	}
	c.IsLiked = liked
}

// ToggleLike flips userID's like and returns the new liked state
func (c *ContentItem) ToggleLike(userID int64) bool {
	liked := !c.LikedByViewer(userID)
	c.SetLiked(userID, liked)
	return liked
}

// Clone returns a deep copy so callers never share slices with the store
func (c *ContentItem) Clone() *ContentItem {
	if c == nil {
		return nil
	}
	cp := *c
	if c.Author != nil {
		author := *c.Author
		cp.Author = &author
	}
	cp.LikedBy = slices.Clone(c.LikedBy)
	cp.ViewedBy = slices.Clone(c.ViewedBy)
	if c.Comments != nil {
		cp.Comments = make([]Comment, len(c.Comments))
		for i := range c.Comments {
			cp.Comments[i] = c.Comments[i].clone()
		}
	}
	return &cp
}

// Pagination describes a page of a remote listing
type Pagination struct {
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size,omitempty"`
	Total      int    `json:"total,omitempty"`
	TotalPages int    `json:"total_pages,omitempty"`
	Next       string `json:"next,omitempty"`
}

// HasNext reports whether another page can be requested
func (p *Pagination) HasNext() bool {
	if p == nil {
		return false
	}
	if p.Next != "" {
		return true
	}
	return p.TotalPages > 0 && p.Page < p.TotalPages
}
