package services

import (
	"context"

	"github.com/desertthunder/rdx/internal/models"
)

// CollectionOptions are the arguments of the collection listing procedures.
// When User is empty the current user's collection is listed, which requires authentication.
type CollectionOptions struct {
	User  string
	Start int
	Count int
	Sort  string
	Query string
}

func (o CollectionOptions) apply(p *params, sorts []string) *params {
	return p.set("user", o.User).
		setInt("start", o.Start).
		setInt("count", o.Count).
		oneOf("sort", o.Sort, sorts).
		set("query", o.Query)
}

// AddToCollection adds tracks or playlists to the current user's collection.
func (c *Client) AddToCollection(ctx context.Context, keys []string) (bool, error) {
	return c.callBool(ctx, newParams("addToCollection").requireList("keys", keys), true)
}

// RemoveFromCollection removes tracks or playlists from the current user's collection.
func (c *Client) RemoveFromCollection(ctx context.Context, keys []string) (bool, error) {
	return c.callBool(ctx, newParams("removeFromCollection").requireList("keys", keys), true)
}

// GetAlbumsInCollection lists the albums in a collection. Sort is one of [AlbumSorts].
func (c *Client) GetAlbumsInCollection(ctx context.Context, opts CollectionOptions) ([]models.Object, error) {
	p := opts.apply(newParams("getAlbumsInCollection"), AlbumSorts)
	return c.callList(ctx, p, opts.User == "")
}

// GetArtistsInCollection lists the artists in a collection. Sort is one of [ArtistSorts].
func (c *Client) GetArtistsInCollection(ctx context.Context, opts CollectionOptions) ([]models.Object, error) {
	p := opts.apply(newParams("getArtistsInCollection"), ArtistSorts)
	return c.callList(ctx, p, opts.User == "")
}

// GetTracksInCollection lists the tracks in a collection. Sort is one of [TrackSorts].
func (c *Client) GetTracksInCollection(ctx context.Context, opts CollectionOptions) ([]models.Object, error) {
	p := opts.apply(newParams("getTracksInCollection"), TrackSorts)
	return c.callList(ctx, p, opts.User == "")
}

// GetAlbumsForArtistInCollection lists the albums by artist in a collection.
func (c *Client) GetAlbumsForArtistInCollection(ctx context.Context, artist, user string) ([]models.Object, error) {
	p := newParams("getAlbumsForArtistInCollection").require("artist", artist).set("user", user)
	return c.callList(ctx, p, user == "")
}

// GetTracksForAlbumInCollection lists which tracks of album are in a collection.
func (c *Client) GetTracksForAlbumInCollection(ctx context.Context, album, user string, extras []string) ([]models.Object, error) {
	p := newParams("getTracksForAlbumInCollection").require("album", album).set("user", user).setList("extras", extras)
	return c.callList(ctx, p, user == "")
}

// GetTracksForArtistInCollection lists which tracks by artist are in a collection.
func (c *Client) GetTracksForArtistInCollection(ctx context.Context, artist, user string, extras []string) ([]models.Object, error) {
	p := newParams("getTracksForArtistInCollection").require("artist", artist).set("user", user).setList("extras", extras)
	return c.callList(ctx, p, user == "")
}
