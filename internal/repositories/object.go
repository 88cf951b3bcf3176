package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/rdx/internal/models"
	"github.com/desertthunder/rdx/internal/shared"
)

const objectColumns = `id, sequence, key, kind, title, payload, created_at, updated_at`

// ObjectRepository implements models.Repository[*models.CachedObject] for the object cache.
//
// Rows are unique by object key. Deleted rows are soft-deleted and revived by [ObjectRepository.Save].
type ObjectRepository struct {
	db *sql.DB
}

// NewObjectRepository creates a new ObjectRepository with the given database connection
func NewObjectRepository(db *sql.DB) *ObjectRepository {
	return &ObjectRepository{db: db}
}

// Create inserts a new cached object with generated ID and sequence
func (r *ObjectRepository) Create(obj *models.CachedObject) error {
	if err := obj.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "objects")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	obj.SetID(id)
	obj.SetSequence(sequence)

	query := `
		INSERT INTO objects (id, sequence, key, kind, title, payload, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		obj.Key(),
		string(obj.Kind()),
		obj.Title(),
		string(obj.Payload()),
		obj.CreatedAt(),
		obj.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert object: %w", err)
	}

	return nil
}

// Get retrieves a cached object by ID, excluding soft-deleted rows
func (r *ObjectRepository) Get(id string) (*models.CachedObject, error) {
	query := `SELECT ` + objectColumns + ` FROM objects WHERE id = ? AND deleted_at IS NULL`
	return r.scanOne(r.db.QueryRow(query, id))
}

// GetByKey retrieves a cached object by its object key
func (r *ObjectRepository) GetByKey(key string) (*models.CachedObject, error) {
	query := `SELECT ` + objectColumns + ` FROM objects WHERE key = ? AND deleted_at IS NULL`
	return r.scanOne(r.db.QueryRow(query, key))
}

// Update replaces the payload of an existing cached object
func (r *ObjectRepository) Update(obj *models.CachedObject) error {
	if err := obj.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	obj.SetUpdatedAt(now)

	query := `
		UPDATE objects
		SET kind = ?, title = ?, payload = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, string(obj.Kind()), obj.Title(), string(obj.Payload()), now, obj.ID())
	if err != nil {
		return fmt.Errorf("failed to update object: %w", err)
	}

	return expectOneRow(result, "object", obj.ID())
}

// Delete soft-deletes a cached object by ID
func (r *ObjectRepository) Delete(id string) error {
	result, err := r.db.Exec(`UPDATE objects SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}

	return expectOneRow(result, "object", id)
}

// List retrieves cached objects in insertion order.
//
// Supported criteria: "kind" (string, object discriminator), "query" (string, title substring), "limit" (int).
func (r *ObjectRepository) List(criteria map[string]any) ([]*models.CachedObject, error) {
	query := `SELECT ` + objectColumns + ` FROM objects WHERE deleted_at IS NULL`
	args := []any{}

	if kind, ok := criteria["kind"].(string); ok && kind != "" {
		query += " AND kind = ?"
		args = append(args, kind)
	}

	if q, ok := criteria["query"].(string); ok && q != "" {
		query += " AND title LIKE ?"
		args = append(args, "%"+q+"%")
	}

	query += " ORDER BY sequence ASC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query objects: %w", err)
	}
	defer rows.Close()

	var objects []*models.CachedObject
	for rows.Next() {
		obj, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		objects = append(objects, obj)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return objects, nil
}

// Save stores obj, replacing any earlier copy with the same key.
func (r *ObjectRepository) Save(obj models.Object) (*models.CachedObject, error) {
	payload, err := json.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to encode object %s: %w", obj.ObjectKey(), err)
	}

	var id string
	err = r.db.QueryRow(`SELECT id FROM objects WHERE key = ?`, obj.ObjectKey()).Scan(&id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		cached := models.NewCachedObject(obj, payload)
		if err := r.Create(cached); err != nil {
			return nil, err
		}
		return cached, nil
	case err != nil:
		return nil, fmt.Errorf("failed to look up object %s: %w", obj.ObjectKey(), err)
	}

	now := time.Now()
	_, err = r.db.Exec(`
		UPDATE objects
		SET kind = ?, title = ?, payload = ?, updated_at = ?, deleted_at = NULL
		WHERE id = ?
	`, string(obj.Kind()), obj.Title(), string(payload), now, id)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh object %s: %w", obj.ObjectKey(), err)
	}

	return r.Get(id)
}

// Purge permanently removes every cached object and returns how many were removed.
func (r *ObjectRepository) Purge() (int64, error) {
	result, err := r.db.Exec(`DELETE FROM objects`)
	if err != nil {
		return 0, fmt.Errorf("failed to purge objects: %w", err)
	}
	return result.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *ObjectRepository) scan(s scanner) (*models.CachedObject, error) {
	var (
		id        string
		sequence  int
		key       string
		kind      string
		title     string
		payload   string
		createdAt time.Time
		updatedAt time.Time
	)

	if err := s.Scan(&id, &sequence, &key, &kind, &title, &payload, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	return models.RestoreCachedObject(id, sequence, key, models.Kind(kind), title, json.RawMessage(payload), createdAt, updatedAt), nil
}

// scanOne scans a single row into a [models.CachedObject]
func (r *ObjectRepository) scanOne(row *sql.Row) (*models.CachedObject, error) {
	obj, err := r.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrObjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan object: %w", err)
	}
	return obj, nil
}

// scanRow scans a row from a result set into a [models.CachedObject]
func (r *ObjectRepository) scanRow(rows *sql.Rows) (*models.CachedObject, error) {
	obj, err := r.scan(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan object row: %w", err)
	}
	return obj, nil
}

func expectOneRow(result sql.Result, what, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s %s not found or already deleted", shared.ErrObjectNotFound, what, id)
	}
	return nil
}
