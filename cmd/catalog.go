package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/rdx/internal/formatter"
	"github.com/desertthunder/rdx/internal/models"
	"github.com/desertthunder/rdx/internal/services"
	"github.com/desertthunder/rdx/internal/shared"
)

func listOptions(cmd *cli.Command) services.ListOptions {
	return services.ListOptions{
		Start:  cmd.Int("start"),
		Count:  cmd.Int("count"),
		Extras: shared.SplitKeys(cmd.String("extras")),
	}
}

// Search runs a catalog search. Text output leads with the per-type counts.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	query := strings.Join(cmd.Args().Slice(), " ")
	types := shared.SplitKeys(cmd.String("types"))

	r.logger.Info("searching", "query", query, "types", types)

	result, err := r.client.Search(ctx, query, types, services.SearchOptions{
		ListOptions: listOptions(cmd),
		NeverOr:     cmd.Bool("never-or"),
	})
	if err != nil {
		return err
	}
	if result == nil {
		return r.writePlain("No results\n")
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	switch format {
	case formatter.FormatJSON:
		r.cacheObjects(result.Results...)
		return r.writeJSON(result, cmd.Bool("pretty"))
	case formatter.FormatText:
		r.cacheObjects(result.Results...)
		_, err := r.output.Write(formatter.SearchToText(result))
		return err
	default:
		return r.writeObjects(cmd, result.Results)
	}
}

// Suggest lists completions for a partial query.
func (r *Runner) Suggest(ctx context.Context, cmd *cli.Command) error {
	objects, err := r.client.SearchSuggestions(ctx, strings.Join(cmd.Args().Slice(), " "), shared.SplitKeys(cmd.String("extras")))
	if err != nil {
		return err
	}
	return r.writeObjects(cmd, objects)
}

// Get fetches objects by key. Keys may be given as separate arguments or comma separated.
func (r *Runner) Get(ctx context.Context, cmd *cli.Command) error {
	keys := shared.SplitKeys(cmd.Args().Slice()...)
	objects, err := r.client.Get(ctx, keys, shared.SplitKeys(cmd.String("extras")))
	if err != nil {
		return err
	}
	return r.writeObjects(cmd, objects)
}

// Resolve looks up a site URL, or a short code when the argument has no scheme or path.
func (r *Runner) Resolve(ctx context.Context, cmd *cli.Command) error {
	target := cmd.Args().First()

	var obj models.Object
	var err error
	if strings.Contains(target, "/") {
		obj, err = r.client.GetObjectFromURL(ctx, target)
	} else {
		obj, err = r.client.GetObjectFromShortCode(ctx, target)
	}
	if err != nil {
		return err
	}
	if obj == nil {
		return fmt.Errorf("%w: nothing at %s", shared.ErrObjectNotFound, target)
	}
	return r.writeObjects(cmd, []models.Object{obj})
}

// ArtistAlbums lists an artist's albums.
func (r *Runner) ArtistAlbums(ctx context.Context, cmd *cli.Command) error {
	objects, err := r.client.GetAlbumsForArtist(ctx, cmd.Args().First(), services.AlbumsForArtistOptions{
		ListOptions: listOptions(cmd),
		Featuring:   cmd.Bool("featuring"),
	})
	if err != nil {
		return err
	}
	return r.writeObjects(cmd, objects)
}

// ArtistTracks lists an artist's tracks.
func (r *Runner) ArtistTracks(ctx context.Context, cmd *cli.Command) error {
	objects, err := r.client.GetTracksForArtist(ctx, cmd.Args().First(), services.TracksForArtistOptions{
		ListOptions: listOptions(cmd),
		AppearsOn:   cmd.Bool("appears-on"),
	})
	if err != nil {
		return err
	}
	return r.writeObjects(cmd, objects)
}

// Charts lists the top objects of one type.
func (r *Runner) Charts(ctx context.Context, cmd *cli.Command) error {
	objects, err := r.client.GetTopCharts(ctx, cmd.Args().First(), listOptions(cmd))
	if err != nil {
		return err
	}
	return r.writeObjects(cmd, objects)
}

// Releases lists new albums.
func (r *Runner) Releases(ctx context.Context, cmd *cli.Command) error {
	objects, err := r.client.GetNewReleases(ctx, cmd.String("time"), listOptions(cmd))
	if err != nil {
		return err
	}
	return r.writeObjects(cmd, objects)
}

// Rotation lists what is being played most.
func (r *Runner) Rotation(ctx context.Context, cmd *cli.Command) error {
	objects, err := r.client.GetHeavyRotation(ctx, services.HeavyRotationOptions{
		User:    cmd.String("user"),
		Type:    cmd.String("type"),
		Friends: cmd.Bool("friends"),
		Limit:   cmd.Int("limit"),
	})
	if err != nil {
		return err
	}
	return r.writeObjects(cmd, objects)
}

// PlaybackToken prints a token for the embeddable player.
func (r *Runner) PlaybackToken(ctx context.Context, cmd *cli.Command) error {
	token, err := r.client.GetPlaybackToken(ctx, cmd.Args().First())
	if err != nil {
		return err
	}
	return r.writePlain("%s\n", token)
}
