package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/content-lifecycle-console/internal/database"
	"github.com/content-lifecycle-console/internal/models"
	"github.com/lib/pq"
)

// DefaultEventLimit caps List when the filter sets no limit
const DefaultEventLimit = 100

// eventRepo is the concrete implementation of EventRepository
type eventRepo struct {
	db *database.DB
}

// NewEventRepo creates a new moderation event repository
func NewEventRepo(db *database.DB) EventRepository {
	return &eventRepo{db: db}
}

// Create inserts a single event
func (r *eventRepo) Create(ctx context.Context, e *models.ModerationEvent) error {
	query := `
		INSERT INTO moderation_events (id, kind, content_id, action, from_status, to_status,
			archived, outcome, error_kind, message, actor_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.db.ExecContext(ctx, query,
		e.ID, e.Kind, e.ContentID, e.Action, nullString(string(e.FromStatus)), nullString(string(e.ToStatus)),
		e.Archived, e.Outcome, nullString(e.ErrorKind), nullString(e.Message), nullInt64(e.ActorID), e.CreatedAt,
	)
	return err
}

// BatchInsert writes events with the COPY protocol
func (r *eventRepo) BatchInsert(ctx context.Context, events []*models.ModerationEvent) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("moderation_events",
		"id", "kind", "content_id", "action", "from_status", "to_status",
		"archived", "outcome", "error_kind", "message", "actor_id", "created_at",
	))
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, e := range events {
		_, err := stmt.ExecContext(ctx,
			e.ID, string(e.Kind), e.ContentID, string(e.Action), nullString(string(e.FromStatus)), nullString(string(e.ToStatus)),
			e.Archived, string(e.Outcome), nullString(e.ErrorKind), nullString(e.Message), nullInt64(e.ActorID), e.CreatedAt,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to buffer event %s: %w", e.ID, err)
		}
	}

	// Flush the COPY buffer
	if _, err := stmt.ExecContext(ctx); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(events), nil
}

// List returns events matching filter, newest first
func (r *eventRepo) List(ctx context.Context, filter models.EventFilter) ([]*models.ModerationEvent, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.Kind != "" {
		args = append(args, filter.Kind)
		where = append(where, fmt.Sprintf("kind = $%d", len(args)))
	}
	if filter.ContentID != 0 {
		args = append(args, filter.ContentID)
		where = append(where, fmt.Sprintf("content_id = $%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultEventLimit
	}

	query := `
		SELECT id, kind, content_id, action, from_status, to_status, archived, outcome,
			error_kind, message, actor_id, created_at
		FROM moderation_events`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*models.ModerationEvent
	for rows.Next() {
		var (
			e                                        models.ModerationEvent
			fromStatus, toStatus, errorKind, message sql.NullString
			actorID                                  sql.NullInt64
		)
		err := rows.Scan(
			&e.ID, &e.Kind, &e.ContentID, &e.Action, &fromStatus, &toStatus, &e.Archived, &e.Outcome,
			&errorKind, &message, &actorID, &e.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		e.FromStatus = models.Status(fromStatus.String)
		e.ToStatus = models.Status(toStatus.String)
		e.ErrorKind = errorKind.String
		e.Message = message.String
		if actorID.Valid {
			id := actorID.Int64
			e.ActorID = &id
		}
		events = append(events, &e)
	}

	return events, rows.Err()
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
