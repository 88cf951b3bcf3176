package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/rdx/internal/formatter"
	"github.com/desertthunder/rdx/internal/models"
	"github.com/desertthunder/rdx/internal/shared"
	"github.com/desertthunder/rdx/internal/tasks"
)

// PlaylistList prints the current user's playlists grouped by relationship.
func (r *Runner) PlaylistList(ctx context.Context, cmd *cli.Command) error {
	set, err := r.client.GetPlaylists(ctx, shared.SplitKeys(cmd.String("extras")))
	if err != nil {
		return err
	}
	if set == nil {
		set = &models.PlaylistSet{}
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	all := make([]models.Object, 0, len(set.All()))
	for _, p := range set.All() {
		all = append(all, p)
	}

	switch format {
	case formatter.FormatJSON:
		r.cacheObjects(all...)
		return r.writeJSON(set, cmd.Bool("pretty"))
	case formatter.FormatText:
		r.cacheObjects(all...)
		for _, group := range []struct {
			title     string
			playlists []*models.Playlist
		}{
			{"Owned", set.Owned},
			{"Collaborating", set.Collaborated},
			{"Subscribed", set.Subscribed},
		} {
			r.writePlain("%s (%d)\n", group.title, len(group.playlists))
			for _, p := range group.playlists {
				r.writePlain("  %-10s %s (%d tracks)\n", p.Key, p.Name, p.TrackCount)
			}
		}
		return nil
	default:
		return r.writeObjects(cmd, all)
	}
}

// PlaylistCreate creates a playlist from the given tracks.
func (r *Runner) PlaylistCreate(ctx context.Context, cmd *cli.Command) error {
	name := cmd.Args().First()
	tracks := shared.SplitKeys(cmd.String("tracks"))

	playlist, err := r.client.CreatePlaylist(ctx, name, cmd.String("description"), tracks, nil)
	if err != nil {
		return err
	}
	if playlist == nil {
		return fmt.Errorf("%w: createPlaylist returned nothing", shared.ErrAPIRequest)
	}

	r.cacheObjects(playlist)
	r.logger.Info("playlist created", "key", playlist.Key, "tracks", len(tracks))
	return r.writePlain("✓ Created %s (%s)\n", playlist.Name, playlist.Key)
}

// PlaylistDelete deletes a playlist.
func (r *Runner) PlaylistDelete(ctx context.Context, cmd *cli.Command) error {
	key := cmd.Args().First()
	ok, err := r.client.DeletePlaylist(ctx, key)
	if err != nil {
		return err
	}
	return r.writeResult(ok, "Deleted "+key, key+" was not deleted")
}

// PlaylistAdd appends tracks to a playlist.
func (r *Runner) PlaylistAdd(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args().Slice()
	if len(args) == 0 {
		return fmt.Errorf("%w: playlist key", shared.ErrMissingArgument)
	}

	tracks := shared.SplitKeys(args[1:]...)
	ok, err := r.client.AddToPlaylist(ctx, args[0], tracks)
	if err != nil {
		return err
	}
	return r.writeResult(ok, fmt.Sprintf("Added %d tracks to %s", len(tracks), args[0]), "Nothing was added")
}

// PlaylistRemove removes a run of count tracks starting at index.
func (r *Runner) PlaylistRemove(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args().Slice()
	if len(args) == 0 {
		return fmt.Errorf("%w: playlist key", shared.ErrMissingArgument)
	}

	count := cmd.Int("count")
	if count <= 0 {
		return fmt.Errorf("%w: --count", shared.ErrMissingArgument)
	}
	tracks := shared.SplitKeys(args[1:]...)

	ok, err := r.client.RemoveFromPlaylist(ctx, args[0], tracks, cmd.Int("index"), count)
	if err != nil {
		return err
	}
	return r.writeResult(ok, fmt.Sprintf("Removed %d tracks from %s", count, args[0]), "Nothing was removed")
}

// PlaylistExport writes playlists and their tracks to files, printing progress as each finishes.
func (r *Runner) PlaylistExport(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAuth("playlist export"); err != nil {
		return err
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	progress := make(chan tasks.ProgressUpdate, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			if update.Phase == tasks.ExportPlaylist {
				r.writePlain("%s\n", update.Message)
			} else {
				r.logger.Debug(update.Message, "phase", update.Phase)
			}
		}
	}()

	keys := shared.SplitKeys(cmd.Args().Slice()...)
	result, err := r.exporter().ExportPlaylists(ctx, progress, keys, tasks.ExportOpts{
		Format:     format,
		OutputDir:  cmd.String("output"),
		NumWorkers: cmd.Int("workers"),
		RateLimit:  cmd.Float("rate"),
	})
	close(progress)
	<-done

	if err != nil {
		return err
	}

	r.writePlainHeader("Export complete")
	r.writePlain("Playlists: %d exported, %d failed\n", result.SuccessfulExports, result.FailedExports)
	r.writePlain("Directory: %s\n", result.OutputDirectory)
	r.writePlain("Manifest:  %s\n", result.ManifestPath)

	for _, res := range result.Results {
		if len(res.Missing) > 0 {
			r.writePlain("  %s: %d tracks unavailable\n", res.PlaylistName, len(res.Missing))
		}
		if res.Error != nil {
			r.logger.Warn("playlist export failed", "playlist", res.PlaylistKey, "error", res.Error)
		}
	}
	return nil
}
