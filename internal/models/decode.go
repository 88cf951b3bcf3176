package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrUnknownType is returned when an object's discriminator is not one rdx knows.
	ErrUnknownType = errors.New("unknown object type")
	// ErrUnexpectedType is returned when a known object appears where another kind was required.
	ErrUnexpectedType = errors.New("unexpected object type")
	// ErrMalformed is returned when a payload is not the JSON shape a decoder expects.
	ErrMalformed = errors.New("malformed payload")
)

type discriminator struct {
	Type string `json:"type"`
}

// IsEmpty reports whether a result payload carries nothing: absent, null, false,
// an empty string, an empty list or an empty object.
func IsEmpty(raw json.RawMessage) bool {
	switch string(bytes.TrimSpace(raw)) {
	case "", "null", "false", `""`, "[]", "{}", "0":
		return true
	}
	return false
}

// DecodeObject decodes a single object, choosing the entity by its "type" field.
func DecodeObject(raw json.RawMessage) (Object, error) {
	var d discriminator
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	var obj Object
	switch Kind(d.Type) {
	case KindArtist, KindCollectionArtist:
		obj = &Artist{}
	case KindAlbum, KindCollectionAlbum:
		obj = &Album{}
	case KindTrack:
		obj = &Track{}
	case KindPlaylist:
		obj = &Playlist{}
	case KindUser:
		obj = &User{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, d.Type)
	}

	if err := json.Unmarshal(raw, obj); err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %v", ErrMalformed, Kind(d.Type), err)
	}
	return obj, nil
}

// DecodeObjectList decodes a JSON list of objects, preserving order.
func DecodeObjectList(raw json.RawMessage) ([]Object, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%w: expected list: %v", ErrMalformed, err)
	}

	objects := make([]Object, 0, len(items))
	for i, item := range items {
		obj, err := DecodeObject(item)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		objects = append(objects, obj)
	}
	return objects, nil
}

// DecodeObjectMap decodes a JSON object whose values are objects keyed by object key.
func DecodeObjectMap(raw json.RawMessage) (map[string]Object, error) {
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("%w: expected keyed map: %v", ErrMalformed, err)
	}

	objects := make(map[string]Object, len(entries))
	for key, entry := range entries {
		obj, err := DecodeObject(entry)
		if err != nil {
			return nil, fmt.Errorf("key %s: %w", key, err)
		}
		objects[key] = obj
	}
	return objects, nil
}

// OrderObjects flattens a keyed map into a list: keys from order first, in that order,
// then any remaining keys sorted. Requested keys missing from m are skipped.
func OrderObjects(m map[string]Object, order []string) []Object {
	objects := make([]Object, 0, len(m))
	seen := make(map[string]bool, len(m))
	for _, key := range order {
		if obj, ok := m[key]; ok && !seen[key] {
			objects = append(objects, obj)
			seen[key] = true
		}
	}

	var rest []string
	for key := range m {
		if !seen[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	for _, key := range rest {
		objects = append(objects, m[key])
	}
	return objects
}

// DecodeUser decodes a single object and requires it to be a user.
func DecodeUser(raw json.RawMessage) (*User, error) {
	return decodeAs[*User](raw, KindUser)
}

// DecodePlaylist decodes a single object and requires it to be a playlist.
func DecodePlaylist(raw json.RawMessage) (*Playlist, error) {
	return decodeAs[*Playlist](raw, KindPlaylist)
}

func decodeAs[T Object](raw json.RawMessage, want Kind) (T, error) {
	var zero T
	obj, err := DecodeObject(raw)
	if err != nil {
		return zero, err
	}
	typed, ok := obj.(T)
	if !ok {
		return zero, fmt.Errorf("%w: expected %s, got %s", ErrUnexpectedType, want, obj.Kind())
	}
	return typed, nil
}
