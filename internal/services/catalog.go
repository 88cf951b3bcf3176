package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/desertthunder/rdx/internal/models"
)

// ListOptions holds the paging and extras arguments shared by listing procedures.
type ListOptions struct {
	Start  int
	Count  int
	Extras []string
}

func (o ListOptions) apply(p *params) *params {
	return p.setList("extras", o.Extras).setInt("start", o.Start).setInt("count", o.Count)
}

// AlbumsForArtistOptions are the optional arguments of [Client.GetAlbumsForArtist].
type AlbumsForArtistOptions struct {
	ListOptions
	// Featuring returns albums the artist is featured on instead of their own.
	Featuring bool
}

// TracksForArtistOptions are the optional arguments of [Client.GetTracksForArtist].
type TracksForArtistOptions struct {
	ListOptions
	// AppearsOn returns tracks the artist appears on instead of tracks credited to them.
	AppearsOn bool
}

// HeavyRotationOptions are the optional arguments of [Client.GetHeavyRotation].
type HeavyRotationOptions struct {
	User    string
	Type    string
	Friends bool
	Limit   int
}

// SearchOptions are the optional arguments of [Client.Search].
type SearchOptions struct {
	ListOptions
	NeverOr bool
}

// Get fetches objects by key. Results come back in the order of keys; any
// extra objects the API returns follow, sorted by key.
func (c *Client) Get(ctx context.Context, keys []string, extras []string) ([]models.Object, error) {
	p := newParams("get").requireList("keys", keys).setList("extras", extras)

	raw, err := c.call(ctx, p, false)
	if err != nil || models.IsEmpty(raw) {
		return nil, err
	}

	m, err := models.DecodeObjectMap(raw)
	if err != nil {
		return nil, fmt.Errorf("get: %w", err)
	}
	return models.OrderObjects(m, keys), nil
}

// GetAlbumsForArtist lists an artist's albums.
func (c *Client) GetAlbumsForArtist(ctx context.Context, artist string, opts AlbumsForArtistOptions) ([]models.Object, error) {
	p := newParams("getAlbumsForArtist").require("artist", artist).setBool("featuring", opts.Featuring)
	return c.callList(ctx, opts.apply(p), false)
}

// GetTracksForArtist lists an artist's tracks.
func (c *Client) GetTracksForArtist(ctx context.Context, artist string, opts TracksForArtistOptions) ([]models.Object, error) {
	p := newParams("getTracksForArtist").require("artist", artist).setBool("appears_on", opts.AppearsOn)
	return c.callList(ctx, opts.apply(p), false)
}

// GetHeavyRotation lists the artists or albums a user, or their friends, played most.
func (c *Client) GetHeavyRotation(ctx context.Context, opts HeavyRotationOptions) ([]models.Object, error) {
	p := newParams("getHeavyRotation").
		set("user", opts.User).
		oneOf("type", opts.Type, HeavyRotationTypes).
		setBool("friends", opts.Friends).
		setInt("limit", opts.Limit)
	return c.callList(ctx, p, false)
}

// GetNewReleases lists new albums. period is one of [NewReleaseTimes] or empty.
func (c *Client) GetNewReleases(ctx context.Context, period string, opts ListOptions) ([]models.Object, error) {
	p := newParams("getNewReleases").oneOf("time", period, NewReleaseTimes)
	return c.callList(ctx, opts.apply(p), false)
}

// GetTopCharts lists the most popular objects of one type from [ChartTypes].
func (c *Client) GetTopCharts(ctx context.Context, chartType string, opts ListOptions) ([]models.Object, error) {
	p := newParams("getTopCharts").require("type", chartType).oneOf("type", chartType, ChartTypes)
	return c.callList(ctx, opts.apply(p), false)
}

// GetObjectFromShortCode resolves a short code (the path of an rd.io URL).
func (c *Client) GetObjectFromShortCode(ctx context.Context, shortCode string) (models.Object, error) {
	p := newParams("getObjectFromShortCode").require("short_code", shortCode)
	return c.callObject(ctx, p, true)
}

// GetObjectFromURL resolves a site URL or path to the object it shows.
func (c *Client) GetObjectFromURL(ctx context.Context, url string) (models.Object, error) {
	p := newParams("getObjectFromUrl").require("url", url)
	return c.callObject(ctx, p, true)
}

// GetPlaybackToken returns a token for the web playback API, bound to domain when given.
func (c *Client) GetPlaybackToken(ctx context.Context, domain string) (string, error) {
	raw, err := c.call(ctx, newParams("getPlaybackToken").set("domain", domain), false)
	if err != nil || models.IsEmpty(raw) {
		return "", err
	}

	var token string
	if err := json.Unmarshal(raw, &token); err != nil {
		return "", fmt.Errorf("getPlaybackToken: %w: %v", models.ErrMalformed, err)
	}
	return token, nil
}

// Search finds objects of the given types from [SearchTypes] matching query.
func (c *Client) Search(ctx context.Context, query string, types []string, opts SearchOptions) (*models.SearchResult, error) {
	p := newParams("search").
		require("query", query).
		requireList("types", types).
		subsetOf("types", types, SearchTypes).
		setBool("never_or", opts.NeverOr)

	raw, err := c.call(ctx, opts.apply(p), false)
	if err != nil || models.IsEmpty(raw) {
		return nil, err
	}

	result, err := models.DecodeSearchResult(raw)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return result, nil
}

// SearchSuggestions matches a prefix against artists, albums, tracks and people.
func (c *Client) SearchSuggestions(ctx context.Context, query string, extras []string) ([]models.Object, error) {
	p := newParams("searchSuggestions").require("query", query).setList("extras", extras)
	return c.callList(ctx, p, false)
}
