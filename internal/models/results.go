package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

// SearchResult is the result of a search.
type SearchResult struct {
	AlbumCount    int      `json:"album_count"`
	ArtistCount   int      `json:"artist_count"`
	NumberResults int      `json:"number_results"`
	PersonCount   int      `json:"person_count"`
	PlaylistCount int      `json:"playlist_count"`
	TrackCount    int      `json:"track_count"`
	Results       []Object `json:"results"`
}

type rawSearchResult struct {
	AlbumCount    int             `json:"album_count"`
	ArtistCount   int             `json:"artist_count"`
	NumberResults int             `json:"number_results"`
	PersonCount   int             `json:"person_count"`
	PlaylistCount int             `json:"playlist_count"`
	TrackCount    int             `json:"track_count"`
	Results       json.RawMessage `json:"results"`
}

// DecodeSearchResult decodes a search result, mapping each entry in results.
func DecodeSearchResult(raw json.RawMessage) (*SearchResult, error) {
	var r rawSearchResult
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("%w: search result: %v", ErrMalformed, err)
	}

	result := &SearchResult{
		AlbumCount:    r.AlbumCount,
		ArtistCount:   r.ArtistCount,
		NumberResults: r.NumberResults,
		PersonCount:   r.PersonCount,
		PlaylistCount: r.PlaylistCount,
		TrackCount:    r.TrackCount,
	}

	if !IsEmpty(r.Results) {
		objects, err := DecodeObjectList(r.Results)
		if err != nil {
			return nil, fmt.Errorf("search results: %w", err)
		}
		result.Results = objects
	}
	return result, nil
}

// PlaylistSet groups the playlists related to the current user.
type PlaylistSet struct {
	Owned        []*Playlist `json:"owned"`
	Collaborated []*Playlist `json:"collab"`
	Subscribed   []*Playlist `json:"subscribed"`
}

// All returns every playlist in the set: owned, then collaborative, then subscribed.
func (s *PlaylistSet) All() []*Playlist {
	all := make([]*Playlist, 0, len(s.Owned)+len(s.Collaborated)+len(s.Subscribed))
	all = append(all, s.Owned...)
	all = append(all, s.Collaborated...)
	return append(all, s.Subscribed...)
}

type rawPlaylistSet struct {
	Owned      json.RawMessage `json:"owned"`
	Collab     json.RawMessage `json:"collab"`
	Subscribed json.RawMessage `json:"subscribed"`
}

// DecodePlaylistSet decodes a playlist set. Every entry must be a playlist.
func DecodePlaylistSet(raw json.RawMessage) (*PlaylistSet, error) {
	var r rawPlaylistSet
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("%w: playlist set: %v", ErrMalformed, err)
	}

	var set PlaylistSet
	var err error
	if set.Owned, err = decodePlaylists(r.Owned); err != nil {
		return nil, fmt.Errorf("owned: %w", err)
	}
	if set.Collaborated, err = decodePlaylists(r.Collab); err != nil {
		return nil, fmt.Errorf("collab: %w", err)
	}
	if set.Subscribed, err = decodePlaylists(r.Subscribed); err != nil {
		return nil, fmt.Errorf("subscribed: %w", err)
	}
	return &set, nil
}

func decodePlaylists(raw json.RawMessage) ([]*Playlist, error) {
	if IsEmpty(raw) {
		return nil, nil
	}
	objects, err := DecodeObjectList(raw)
	if err != nil {
		return nil, err
	}

	playlists := make([]*Playlist, 0, len(objects))
	for _, obj := range objects {
		p, ok := obj.(*Playlist)
		if !ok {
			return nil, fmt.Errorf("%w: expected %s, got %s", ErrUnexpectedType, KindPlaylist, obj.Kind())
		}
		playlists = append(playlists, p)
	}
	return playlists, nil
}

func wrapMalformed(what string, err error) error {
	if errors.Is(err, ErrMalformed) || errors.Is(err, ErrUnknownType) || errors.Is(err, ErrUnexpectedType) {
		return fmt.Errorf("%s: %w", what, err)
	}
	return fmt.Errorf("%w: %s: %v", ErrMalformed, what, err)
}

// PlaylistExport is a playlist together with its resolved tracks, in playlist order.
type PlaylistExport struct {
	Playlist *Playlist `json:"playlist"`
	Tracks   []*Track  `json:"tracks"`
	// Missing lists track keys the playlist referenced that could not be fetched.
	Missing []string `json:"missing,omitempty"`
}

// Duration sums the track durations, in seconds.
func (e *PlaylistExport) Duration() int {
	total := 0
	for _, t := range e.Tracks {
		total += t.Duration
	}
	return total
}
