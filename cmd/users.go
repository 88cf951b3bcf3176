package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/rdx/internal/formatter"
	"github.com/desertthunder/rdx/internal/models"
	"github.com/desertthunder/rdx/internal/shared"
	"github.com/desertthunder/rdx/internal/tasks"
)

// UserFind looks a user up by email address or vanity name.
func (r *Runner) UserFind(ctx context.Context, cmd *cli.Command) error {
	user, err := r.client.FindUser(ctx, cmd.String("email"), cmd.String("vanity"))
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("%w: no matching user", shared.ErrObjectNotFound)
	}
	return r.writeUser(cmd, user)
}

// UserCurrent shows the authorized user.
func (r *Runner) UserCurrent(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAuth("user current"); err != nil {
		return err
	}

	user, err := r.client.CurrentUser(ctx, shared.SplitKeys(cmd.String("extras")))
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("%w: current user", shared.ErrObjectNotFound)
	}
	return r.writeUser(cmd, user)
}

func (r *Runner) writeUser(cmd *cli.Command, user *models.User) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	if format != formatter.FormatText {
		return r.writeObjects(cmd, []models.Object{user})
	}

	r.cacheObjects(user)
	r.writePlain("%s (%s)\n", user.Name, user.Key)
	if user.Username != nil {
		r.writePlain("  Username: %s\n", *user.Username)
	}
	r.writePlain("  Profile:  %s\n", user.FullURL(r.config.API.SiteURL))
	if user.TrackCount != nil {
		r.writePlain("  Tracks:   %d\n", *user.TrackCount)
	}
	if user.LastSongPlayed != nil {
		r.writePlain("  Last played: %s\n", *user.LastSongPlayed)
	}
	return nil
}

// FriendAdd adds a friend.
func (r *Runner) FriendAdd(ctx context.Context, cmd *cli.Command) error {
	user := cmd.Args().First()
	ok, err := r.client.AddFriend(ctx, user)
	if err != nil {
		return err
	}
	return r.writeResult(ok, "Added friend "+user, user+" was not added")
}

// FriendRemove removes a friend.
func (r *Runner) FriendRemove(ctx context.Context, cmd *cli.Command) error {
	user := cmd.Args().First()
	ok, err := r.client.RemoveFriend(ctx, user)
	if err != nil {
		return err
	}
	return r.writeResult(ok, "Removed friend "+user, user+" was not removed")
}

// Activity prints an activity stream.
//
// With --follow the last_id of each page is stored per user and scope, so the
// next run starts where this one stopped. --interval keeps polling until interrupted.
func (r *Runner) Activity(ctx context.Context, cmd *cli.Command) error {
	user := cmd.Args().First()
	if user == "" {
		if err := r.requireAuth("activity for the current user"); err != nil {
			return err
		}
		current, err := r.client.CurrentUser(ctx, nil)
		if err != nil {
			return err
		}
		if current == nil {
			return fmt.Errorf("%w: current user", shared.ErrObjectNotFound)
		}
		user = current.Key
	}

	scope := cmd.String("scope")
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	if !cmd.Bool("follow") {
		stream, err := r.client.GetActivityStream(ctx, user, scope, cmd.String("last-id"))
		if err != nil {
			return err
		}
		return r.writeActivity(stream, format)
	}

	if err := r.store(); err != nil {
		return err
	}
	if cmd.Bool("reset") {
		if err := r.cursors.Reset(user, scope); err != nil {
			return err
		}
	}
	fetch := func(ctx context.Context, lastID string) (*models.ActivityStream, error) {
		return r.client.GetActivityStream(ctx, user, scope, lastID)
	}

	interval := cmd.Duration("interval")
	for {
		stream, err := tasks.NextActivity(ctx, r.cursors, user, scope, fetch)
		if err != nil {
			return err
		}
		if err := r.writeActivity(stream, format); err != nil {
			return err
		}
		if interval <= 0 {
			return nil
		}

		r.logger.Debug("waiting for new activity", "interval", interval)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(interval):
		}
	}
}

func (r *Runner) writeActivity(stream *models.ActivityStream, format formatter.Format) error {
	if stream == nil || len(stream.Updates) == 0 {
		if format == formatter.FormatJSON {
			return r.writeJSON(stream, true)
		}
		return r.writePlain("No new activity\n")
	}

	for _, u := range stream.Updates {
		if item, ok := u.Subject.(models.ItemSubject); ok {
			r.cacheObjects(item.Item)
		}
	}

	var data []byte
	switch format {
	case formatter.FormatJSON:
		return r.writeJSON(stream, true)
	case formatter.FormatMarkdown:
		data = formatter.ActivityToMarkdown(stream)
	case formatter.FormatCSV:
		return fmt.Errorf("%w: activity cannot be rendered as csv", shared.ErrInvalidFlag)
	default:
		data = formatter.ActivityToText(stream)
	}

	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
