package tasks

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/rdx/internal/models"
	"github.com/desertthunder/rdx/internal/shared"
)

// Catalog is the part of services.Client the exporter needs.
type Catalog interface {
	Get(ctx context.Context, keys []string, extras []string) ([]models.Object, error)
	GetPlaylists(ctx context.Context, extras []string) (*models.PlaylistSet, error)
}

// ObjectCacher persists fetched objects.
type ObjectCacher interface {
	CacheObjects(objects ...models.Object) error
}

// Exporter implements the bulk operations on top of a [Catalog].
type Exporter struct {
	catalog Catalog
	cache   ObjectCacher
	logger  *log.Logger
}

// NewExporter creates an Exporter. cache may be nil.
func NewExporter(catalog Catalog, cache ObjectCacher, logger *log.Logger) *Exporter {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Exporter{catalog: catalog, cache: cache, logger: logger}
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func (e *Exporter) cacheObjects(objects ...models.Object) {
	if e.cache == nil {
		return
	}
	if err := e.cache.CacheObjects(objects...); err != nil {
		e.logger.Warn("failed to cache objects", "error", err)
	}
}

// PageFunc fetches up to count objects starting at start.
type PageFunc func(ctx context.Context, start, count int) ([]models.Object, error)

// CollectAll calls fetch page by page until a short page arrives or limit objects are collected.
// A limit of 0 collects everything.
func CollectAll(ctx context.Context, progress chan<- ProgressUpdate, pageSize, limit int, fetch PageFunc) ([]models.Object, error) {
	if pageSize <= 0 {
		return nil, fmt.Errorf("%w: page size must be positive", shared.ErrInvalidArgument)
	}

	var all []models.Object
	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return all, err
		}

		count := pageSize
		if limit > 0 && limit-len(all) < count {
			count = limit - len(all)
		}

		sendProgress(progress, fetchPageUpdate(page, len(all)))
		objects, err := fetch(ctx, len(all), count)
		if err != nil {
			return all, fmt.Errorf("failed to fetch page %d: %w", page, err)
		}

		all = append(all, objects...)
		if len(objects) < count || (limit > 0 && len(all) >= limit) {
			return all, nil
		}
	}
}

// ActivityFunc fetches the activity stream page after lastID.
type ActivityFunc func(ctx context.Context, lastID string) (*models.ActivityStream, error)

// CursorStore persists the last activity id seen per user and scope.
type CursorStore interface {
	LastID(user, scope string) (string, error)
	Save(user, scope, lastID string) (*models.ActivityCursor, error)
}

// NextActivity fetches the updates after the stored cursor for user and scope and
// advances the cursor to the stream's last_id.
func NextActivity(ctx context.Context, cursors CursorStore, user, scope string, fetch ActivityFunc) (*models.ActivityStream, error) {
	lastID, err := cursors.LastID(user, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to read activity cursor: %w", err)
	}

	stream, err := fetch(ctx, lastID)
	if err != nil || stream == nil {
		return stream, err
	}

	if next := stream.LastID.String(); next != "" && next != lastID {
		if _, err := cursors.Save(user, scope, next); err != nil {
			return stream, fmt.Errorf("failed to advance activity cursor: %w", err)
		}
	}
	return stream, nil
}
