package models

import (
	"time"
)

// Action is a lifecycle operation applied to a content item
type Action string

const (
	ActionCreate    Action = "create"
	ActionUpdate    Action = "update"
	ActionSubmit    Action = "submit_for_approval"
	ActionApprove   Action = "approve"
	ActionReject    Action = "reject"
	ActionPublish   Action = "publish"
	ActionArchive   Action = "archive"
	ActionUnarchive Action = "unarchive"
	ActionDelete    Action = "delete"
	ActionLike      Action = "toggle_like"
)

// Outcome records whether an action succeeded remotely
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// ModerationEvent is one entry of the moderation audit trail
type ModerationEvent struct {
	ID         string      `json:"id" db:"id"`
	Kind       ContentKind `json:"kind" db:"kind"`
	ContentID  int64       `json:"content_id" db:"content_id"`
	Action     Action      `json:"action" db:"action"`
	FromStatus Status      `json:"from_status,omitempty" db:"from_status"`
	ToStatus   Status      `json:"to_status,omitempty" db:"to_status"`
	Archived   bool        `json:"archived" db:"archived"`
	Outcome    Outcome     `json:"outcome" db:"outcome"`
	ErrorKind  string      `json:"error_kind,omitempty" db:"error_kind"`
	Message    string      `json:"message,omitempty" db:"message"`
	ActorID    *int64      `json:"actor_id,omitempty" db:"actor_id"`
	CreatedAt  time.Time   `json:"created_at" db:"created_at"`
}

// EventFilter narrows audit trail queries
type EventFilter struct {
	Kind      ContentKind
	ContentID int64
	Limit     int
}
