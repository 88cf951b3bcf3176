package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/rdx/internal/models"
	"github.com/desertthunder/rdx/internal/services"
	"github.com/desertthunder/rdx/internal/shared"
	"github.com/desertthunder/rdx/internal/tasks"
)

type collectionLister func(ctx context.Context, opts services.CollectionOptions) ([]models.Object, error)

// collect pages through a collection listing until --limit objects are read or the collection ends.
func (r *Runner) collect(ctx context.Context, cmd *cli.Command, list collectionLister) ([]models.Object, error) {
	opts := services.CollectionOptions{
		User:  cmd.String("user"),
		Sort:  cmd.String("sort"),
		Query: cmd.String("query"),
	}
	if opts.User == "" {
		if err := r.requireAuth(cmd.Name); err != nil {
			return nil, err
		}
	}

	progress := make(chan tasks.ProgressUpdate, 8)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.logger.Debug(update.Message, "phase", update.Phase)
		}
	}()

	objects, err := tasks.CollectAll(ctx, progress, cmd.Int("page-size"), cmd.Int("limit"),
		func(ctx context.Context, start, count int) ([]models.Object, error) {
			page := opts
			page.Start, page.Count = start, count
			return list(ctx, page)
		})
	close(progress)
	<-done

	return objects, err
}

// CollectionAlbums lists albums in a collection, or only those by --artist.
func (r *Runner) CollectionAlbums(ctx context.Context, cmd *cli.Command) error {
	if artist := cmd.String("artist"); artist != "" {
		objects, err := r.client.GetAlbumsForArtistInCollection(ctx, artist, cmd.String("user"))
		if err != nil {
			return err
		}
		return r.writeObjects(cmd, objects)
	}

	objects, err := r.collect(ctx, cmd, r.client.GetAlbumsInCollection)
	if err != nil {
		return err
	}
	return r.writeObjects(cmd, objects)
}

// CollectionArtists lists artists in a collection.
func (r *Runner) CollectionArtists(ctx context.Context, cmd *cli.Command) error {
	objects, err := r.collect(ctx, cmd, r.client.GetArtistsInCollection)
	if err != nil {
		return err
	}
	return r.writeObjects(cmd, objects)
}

// CollectionTracks lists tracks in a collection, or only those on --album or by --artist.
func (r *Runner) CollectionTracks(ctx context.Context, cmd *cli.Command) error {
	user, extras := cmd.String("user"), shared.SplitKeys(cmd.String("extras"))
	album, artist := cmd.String("album"), cmd.String("artist")

	var objects []models.Object
	var err error
	switch {
	case album != "" && artist != "":
		return fmt.Errorf("%w: use either --album or --artist", shared.ErrInvalidArgument)
	case album != "":
		objects, err = r.client.GetTracksForAlbumInCollection(ctx, album, user, extras)
	case artist != "":
		objects, err = r.client.GetTracksForArtistInCollection(ctx, artist, user, extras)
	default:
		objects, err = r.collect(ctx, cmd, r.client.GetTracksInCollection)
	}
	if err != nil {
		return err
	}
	return r.writeObjects(cmd, objects)
}

// CollectionAdd adds tracks or playlists to the current user's collection.
func (r *Runner) CollectionAdd(ctx context.Context, cmd *cli.Command) error {
	keys := shared.SplitKeys(cmd.Args().Slice()...)
	ok, err := r.client.AddToCollection(ctx, keys)
	if err != nil {
		return err
	}
	return r.writeResult(ok, fmt.Sprintf("Added %d items to your collection", len(keys)), "Nothing was added")
}

// CollectionRemove removes tracks or playlists from the current user's collection.
func (r *Runner) CollectionRemove(ctx context.Context, cmd *cli.Command) error {
	keys := shared.SplitKeys(cmd.Args().Slice()...)
	ok, err := r.client.RemoveFromCollection(ctx, keys)
	if err != nil {
		return err
	}
	return r.writeResult(ok, fmt.Sprintf("Removed %d items from your collection", len(keys)), "Nothing was removed")
}
