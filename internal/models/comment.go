package models

import (
	"time"
)

// Comment represents a comment on a blog or a video. Exactly one of BlogID and VideoID is set.
type Comment struct {
	ID        int64     `json:"id"`
	Body      string    `json:"body"`
	Author    *User     `json:"author,omitempty"`
	BlogID    *int64    `json:"blog_id,omitempty"`
	VideoID   *int64    `json:"video_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (c Comment) clone() Comment {
	cp := c
	if c.Author != nil {
		author := *c.Author
		cp.Author = &author
	}
	if c.BlogID != nil {
		id := *c.BlogID
		cp.BlogID = &id
	}
	if c.VideoID != nil {
		id := *c.VideoID
		cp.VideoID = &id
	}
	return cp
}
