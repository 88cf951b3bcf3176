package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/rdx/internal/models"
	"github.com/desertthunder/rdx/internal/shared"
)

// CursorRepository stores the newest activity id seen for each user and scope,
// so following an activity stream only fetches updates not yet shown.
type CursorRepository struct {
	db *sql.DB
}

// NewCursorRepository creates a new CursorRepository with the given database connection
func NewCursorRepository(db *sql.DB) *CursorRepository {
	return &CursorRepository{db: db}
}

// Get returns the cursor for user and scope, or [shared.ErrObjectNotFound].
func (r *CursorRepository) Get(user, scope string) (*models.ActivityCursor, error) {
	query := `
		SELECT id, user_key, scope, last_id, created_at, updated_at
		FROM activity_cursors
		WHERE user_key = ? AND scope = ?
	`

	var (
		id        string
		userKey   string
		sc        string
		lastID    string
		createdAt time.Time
		updatedAt time.Time
	)

	err := r.db.QueryRow(query, user, scope).Scan(&id, &userKey, &sc, &lastID, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrObjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cursor: %w", err)
	}

	return models.RestoreActivityCursor(id, userKey, sc, lastID, createdAt, updatedAt), nil
}

// LastID returns the stored cursor position, or "" when none is stored.
func (r *CursorRepository) LastID(user, scope string) (string, error) {
	cursor, err := r.Get(user, scope)
	if errors.Is(err, shared.ErrObjectNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return cursor.LastID(), nil
}

// Save stores lastID as the position for user and scope, creating the cursor if needed.
func (r *CursorRepository) Save(user, scope, lastID string) (*models.ActivityCursor, error) {
	cursor := models.NewActivityCursor(user, scope, lastID)
	if err := cursor.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	cursor.SetID(shared.GenerateID())

	query := `
		INSERT INTO activity_cursors (id, user_key, scope, last_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_key, scope) DO UPDATE SET last_id = excluded.last_id, updated_at = excluded.updated_at
	`

	_, err := r.db.Exec(query, cursor.ID(), user, scope, lastID, cursor.CreatedAt(), cursor.UpdatedAt())
	if err != nil {
		return nil, fmt.Errorf("failed to save cursor: %w", err)
	}

	return r.Get(user, scope)
}

// Reset removes the cursor for user and scope.
func (r *CursorRepository) Reset(user, scope string) error {
	if _, err := r.db.Exec(`DELETE FROM activity_cursors WHERE user_key = ? AND scope = ?`, user, scope); err != nil {
		return fmt.Errorf("failed to reset cursor: %w", err)
	}
	return nil
}
