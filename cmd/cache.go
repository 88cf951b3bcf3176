package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/rdx/internal/formatter"
	"github.com/desertthunder/rdx/internal/models"
	"github.com/desertthunder/rdx/internal/repositories"
)

// CacheList prints cached objects, decoded back through the mapper.
func (r *Runner) CacheList(ctx context.Context, cmd *cli.Command) error {
	if err := r.store(); err != nil {
		return err
	}

	cached, err := r.objects.List(map[string]any{
		"kind":  cmd.String("kind"),
		"query": cmd.String("query"),
		"limit": cmd.Int("limit"),
	})
	if err != nil {
		return err
	}

	objects := make([]models.Object, 0, len(cached))
	for _, c := range cached {
		obj, err := c.Decode()
		if err != nil {
			r.logger.Warn("skipping unreadable cache entry", "key", c.Key(), "error", err)
			continue
		}
		objects = append(objects, obj)
	}

	return r.renderObjects(cmd, objects)
}

// CacheShow prints one cached object.
func (r *Runner) CacheShow(ctx context.Context, cmd *cli.Command) error {
	if err := r.store(); err != nil {
		return err
	}

	key := cmd.Args().First()
	obj, err := repositories.NewObjectCacheAdapter(r.objects).Lookup(key)
	if err != nil {
		return err
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	if format == formatter.FormatText {
		return r.writeJSON(obj, true)
	}
	return r.renderObjects(cmd, []models.Object{obj})
}

// CacheClear deletes every cached object.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	if err := r.store(); err != nil {
		return err
	}

	n, err := r.objects.Purge()
	if err != nil {
		return err
	}

	r.logger.Info("cache cleared", "removed", n)
	return r.writePlain("✓ Removed %d cached objects\n", n)
}

// renderObjects is writeObjects without writing the objects back to the cache.
func (r *Runner) renderObjects(cmd *cli.Command, objects []models.Object) error {
	caching := r.caching
	r.caching = false
	defer func() { r.caching = caching }()

	if err := r.writeObjects(cmd, objects); err != nil {
		return fmt.Errorf("failed to render cache: %w", err)
	}
	return nil
}
