package services

import (
	"context"
	"fmt"
	"strconv"

	"github.com/desertthunder/rdx/internal/models"
)

// CreatePlaylist creates a playlist owned by the current user and returns it.
func (c *Client) CreatePlaylist(ctx context.Context, name, description string, tracks []string, extras []string) (*models.Playlist, error) {
	p := newParams("createPlaylist").
		require("name", name).
		require("description", description).
		requireList("tracks", tracks).
		setList("extras", extras)

	raw, err := c.call(ctx, p, true)
	if err != nil || models.IsEmpty(raw) {
		return nil, err
	}

	playlist, err := models.DecodePlaylist(raw)
	if err != nil {
		return nil, fmt.Errorf("createPlaylist: %w", err)
	}
	return playlist, nil
}

// DeletePlaylist deletes a playlist owned by the current user.
func (c *Client) DeletePlaylist(ctx context.Context, playlist string) (bool, error) {
	return c.callBool(ctx, newParams("deletePlaylist").require("playlist", playlist), true)
}

// AddToPlaylist appends tracks to a playlist.
func (c *Client) AddToPlaylist(ctx context.Context, playlist string, tracks []string) (bool, error) {
	p := newParams("addToPlaylist").require("playlist", playlist).requireList("keys", tracks)
	return c.callBool(ctx, p, true)
}

// RemoveFromPlaylist removes count items starting at index. tracks lists the
// keys expected at those positions. count must be given explicitly.
func (c *Client) RemoveFromPlaylist(ctx context.Context, playlist string, tracks []string, index, count int) (bool, error) {
	p := newParams("removeFromPlaylist").require("playlist", playlist).requireList("tracks", tracks)
	if count <= 0 {
		p.require("count", "")
	}
	if index < 0 {
		p.reject("index", strconv.Itoa(index), "a non-negative position")
	}
	p.values.Set("index", strconv.Itoa(index))
	p.setInt("count", count)
	return c.callBool(ctx, p, true)
}

// GetPlaylists returns the current user's owned, collaborative and subscribed playlists.
func (c *Client) GetPlaylists(ctx context.Context, extras []string) (*models.PlaylistSet, error) {
	raw, err := c.call(ctx, newParams("getPlaylists").setList("extras", extras), true)
	if err != nil || models.IsEmpty(raw) {
		return nil, err
	}

	set, err := models.DecodePlaylistSet(raw)
	if err != nil {
		return nil, fmt.Errorf("getPlaylists: %w", err)
	}
	return set, nil
}
