package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// CachedObject is the stored payload of an object fetched from the API.
type CachedObject struct {
	id        string
	sequence  int
	key       string
	kind      Kind
	title     string
	payload   json.RawMessage
	createdAt time.Time
	updatedAt time.Time
}

// NewCachedObject builds a record for obj from the raw payload it was decoded from.
func NewCachedObject(obj Object, payload json.RawMessage) *CachedObject {
	now := time.Now()
	return &CachedObject{
		key:       obj.ObjectKey(),
		kind:      obj.Kind(),
		title:     obj.Title(),
		payload:   payload,
		createdAt: now,
		updatedAt: now,
	}
}

// RestoreCachedObject rebuilds a record read from storage.
func RestoreCachedObject(id string, sequence int, key string, kind Kind, title string, payload json.RawMessage, createdAt, updatedAt time.Time) *CachedObject {
	return &CachedObject{
		id: id, sequence: sequence, key: key, kind: kind, title: title,
		payload: payload, createdAt: createdAt, updatedAt: updatedAt,
	}
}

func (c *CachedObject) ID() string                { return c.id }
func (c *CachedObject) Sequence() int             { return c.sequence }
func (c *CachedObject) Key() string               { return c.key }
func (c *CachedObject) Kind() Kind                { return c.kind }
func (c *CachedObject) Title() string             { return c.title }
func (c *CachedObject) Payload() json.RawMessage  { return c.payload }
func (c *CachedObject) CreatedAt() time.Time      { return c.createdAt }
func (c *CachedObject) UpdatedAt() time.Time      { return c.updatedAt }
func (c *CachedObject) SetID(id string)           { c.id = id }
func (c *CachedObject) SetSequence(n int)         { c.sequence = n }
func (c *CachedObject) SetUpdatedAt(t time.Time)  { c.updatedAt = t }

// Refresh replaces the payload with a newer copy of the same object.
func (c *CachedObject) Refresh(obj Object, payload json.RawMessage) {
	c.title = obj.Title()
	c.kind = obj.Kind()
	c.payload = payload
}

// Validate checks the record has a key and a decodable payload.
func (c *CachedObject) Validate() error {
	if c.key == "" {
		return fmt.Errorf("cached object key is required")
	}
	if len(c.payload) == 0 || !json.Valid(c.payload) {
		return fmt.Errorf("cached object %s has an invalid payload", c.key)
	}
	return nil
}

// Decode maps the stored payload back into its entity.
func (c *CachedObject) Decode() (Object, error) {
	return DecodeObject(c.payload)
}

// ActivityCursor records the newest activity id seen for a user and scope.
type ActivityCursor struct {
	id        string
	user      string
	scope     string
	lastID    string
	createdAt time.Time
	updatedAt time.Time
}

// NewActivityCursor creates a cursor positioned at lastID.
func NewActivityCursor(user, scope, lastID string) *ActivityCursor {
	now := time.Now()
	return &ActivityCursor{user: user, scope: scope, lastID: lastID, createdAt: now, updatedAt: now}
}

// RestoreActivityCursor rebuilds a cursor read from storage.
func RestoreActivityCursor(id, user, scope, lastID string, createdAt, updatedAt time.Time) *ActivityCursor {
	return &ActivityCursor{id: id, user: user, scope: scope, lastID: lastID, createdAt: createdAt, updatedAt: updatedAt}
}

func (a *ActivityCursor) ID() string               { return a.id }
func (a *ActivityCursor) User() string             { return a.user }
func (a *ActivityCursor) Scope() string            { return a.scope }
func (a *ActivityCursor) LastID() string           { return a.lastID }
func (a *ActivityCursor) CreatedAt() time.Time     { return a.createdAt }
func (a *ActivityCursor) UpdatedAt() time.Time     { return a.updatedAt }
func (a *ActivityCursor) SetID(id string)          { a.id = id }
func (a *ActivityCursor) SetLastID(lastID string)  { a.lastID = lastID }
func (a *ActivityCursor) SetUpdatedAt(t time.Time) { a.updatedAt = t }

func (a *ActivityCursor) Validate() error {
	if a.user == "" {
		return fmt.Errorf("activity cursor user is required")
	}
	if a.scope == "" {
		return fmt.Errorf("activity cursor scope is required")
	}
	return nil
}
