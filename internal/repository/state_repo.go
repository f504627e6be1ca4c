package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/content-lifecycle-console/internal/database"
	"github.com/content-lifecycle-console/internal/models"
	"github.com/lib/pq"
)

// stateRepo stores the session as key/value rows in client_state
type stateRepo struct {
	db *database.DB
}

// NewStateRepo creates a new client state repository
func NewStateRepo(db *database.DB) StateRepository {
	return &stateRepo{db: db}
}

// LoadSession returns the persisted session, or nil when no token is stored
func (r *stateRepo) LoadSession(ctx context.Context) (*models.Session, error) {
	query := `SELECT key, value FROM client_state WHERE key = ANY($1)`

	rows, err := r.db.QueryContext(ctx, query, pq.Array([]string{KeyAccessToken, KeyRefreshToken, KeyUser}))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	values := make(map[string]string, 3)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		values[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if values[KeyAccessToken] == "" {
		return nil, nil
	}

	session := &models.Session{
		AccessToken:  values[KeyAccessToken],
		RefreshToken: values[KeyRefreshToken],
	}
	if raw := values[KeyUser]; raw != "" {
		var user models.User
		if err := json.Unmarshal([]byte(raw), &user); err != nil {
			return nil, fmt.Errorf("failed to decode stored user: %w", err)
		}
		session.User = &user
	}
	return session, nil
}

// SaveSession replaces every stored key in one transaction
func (r *stateRepo) SaveSession(ctx context.Context, session *models.Session) error {
	userJSON, err := json.Marshal(session.User)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO client_state (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`
	entries := []struct {
		key   string
		value string
	}{
		{KeyAccessToken, session.AccessToken},
		{KeyRefreshToken, session.RefreshToken},
		{KeyUser, string(userJSON)},
	}
	for _, e := range entries {
		if _, err := tx.ExecContext(ctx, query, e.key, e.value); err != nil {
			return fmt.Errorf("failed to store %s: %w", e.key, err)
		}
	}

	return tx.Commit()
}

// ClearSession removes every stored key
func (r *stateRepo) ClearSession(ctx context.Context) error {
	query := `DELETE FROM client_state WHERE key = ANY($1)`
	_, err := r.db.ExecContext(ctx, query, pq.Array([]string{KeyAccessToken, KeyRefreshToken, KeyUser}))
	return err
}

// helper to convert empty string to NULL
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
