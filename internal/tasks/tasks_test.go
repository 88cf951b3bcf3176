package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/rdx/internal/formatter"
	"github.com/desertthunder/rdx/internal/models"
	"github.com/desertthunder/rdx/internal/shared"
)

type mockCatalog struct {
	mu        sync.Mutex
	objects   map[string]models.Object
	playlists *models.PlaylistSet
	getErr    map[string]error
	onGet     func(keys []string)
	empty     bool
	calls     [][]string
}

func newMockCatalog() *mockCatalog {
	return &mockCatalog{objects: map[string]models.Object{}, getErr: map[string]error{}}
}

func (m *mockCatalog) addPlaylist(key, name string, trackKeys ...string) *models.Playlist {
	p := &models.Playlist{Base: models.Base{Key: key, Type: "p"}, Name: name, TrackCount: len(trackKeys), TrackKeys: trackKeys}
	m.objects[key] = p
	return p
}

func (m *mockCatalog) addTrack(key, name string) {
	m.objects[key] = &models.Track{Music: models.Music{Base: models.Base{Key: key, Type: "t"}, Name: name, ArtistName: "Artist", Duration: 60}}
}

func (m *mockCatalog) Get(_ context.Context, keys []string, _ []string) ([]models.Object, error) {
	if m.onGet != nil {
		m.onGet(keys)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, keys)

	found := map[string]models.Object{}
	for _, k := range keys {
		if err := m.getErr[k]; err != nil {
			return nil, err
		}
		if obj, ok := m.objects[k]; ok {
			found[k] = obj
		}
	}
	return models.OrderObjects(found, keys), nil
}

func (m *mockCatalog) GetPlaylists(context.Context, []string) (*models.PlaylistSet, error) {
	if m.empty {
		return nil, nil
	}
	if m.playlists == nil {
		return nil, shared.ErrAPIRequest
	}
	return m.playlists, nil
}

type mockCacher struct {
	mu     sync.Mutex
	cached map[string]bool
	err    error
}

func (m *mockCacher) CacheObjects(objects ...models.Object) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.cached == nil {
		m.cached = map[string]bool{}
	}
	for _, o := range objects {
		m.cached[o.ObjectKey()] = true
	}
	return nil
}

func newTestExporter(catalog Catalog, cache ObjectCacher) *Exporter {
	return NewExporter(catalog, cache, shared.NewLogger(io.Discard))
}

func TestExportPlaylists(t *testing.T) {
	tests := []struct {
		name      string
		format    formatter.Format
		wantFiles int
	}{
		{"text", formatter.FormatText, 1},
		{"csv", formatter.FormatCSV, 2},
		{"markdown", formatter.FormatMarkdown, 1},
		{"json", formatter.FormatJSON, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := newMockCatalog()
			catalog.addPlaylist("p1", "First", "t1", "t2")
			catalog.addPlaylist("p2", "Second", "t2")
			catalog.addTrack("t1", "One")
			catalog.addTrack("t2", "Two")

			cache := &mockCacher{}
			dir := t.TempDir()

			result, err := newTestExporter(catalog, cache).ExportPlaylists(context.Background(), nil, []string{"p1", "p2"}, ExportOpts{
				Format:    tt.format,
				OutputDir: dir,
				RateLimit: 1000,
			})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if result.SuccessfulExports != 2 || result.FailedExports != 0 {
				t.Fatalf("expected 2 successes, got %d/%d", result.SuccessfulExports, result.FailedExports)
			}
			if result.Results[0].PlaylistKey != "p1" || result.Results[1].PlaylistKey != "p2" {
				t.Errorf("results should follow request order")
			}
			if result.Results[0].Tracks != 2 {
				t.Errorf("expected 2 tracks, got %d", result.Results[0].Tracks)
			}
			for _, res := range result.Results {
				if len(res.Files) != tt.wantFiles {
					t.Errorf("expected %d files for %s, got %v", tt.wantFiles, res.PlaylistKey, res.Files)
				}
				for _, f := range res.Files {
					if _, err := os.Stat(f); err != nil {
						t.Errorf("missing export file %s", f)
					}
				}
			}

			if result.ManifestPath != filepath.Join(dir, "export_manifest.json") {
				t.Errorf("unexpected manifest path %s", result.ManifestPath)
			}

			for _, key := range []string{"p1", "p2", "t1", "t2"} {
				if !cache.cached[key] {
					t.Errorf("expected %s to be cached", key)
				}
			}
		})
	}
}

func TestExportPlaylistsPartialFailure(t *testing.T) {
	catalog := newMockCatalog()
	catalog.addPlaylist("p1", "Good", "t1", "t9")
	catalog.addTrack("t1", "One")
	catalog.addTrack("a1", "not a playlist")
	catalog.getErr["p3"] = fmt.Errorf("%w: boom", shared.ErrAPIRequest)

	dir := t.TempDir()
	progress := make(chan ProgressUpdate, 100)

	result, err := newTestExporter(catalog, &mockCacher{err: errors.New("disk full")}).ExportPlaylists(
		context.Background(), progress, []string{"p1", "p2", "p3", "a1"},
		ExportOpts{Format: formatter.FormatJSON, OutputDir: dir, RateLimit: 1000, NumWorkers: 2},
	)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	close(progress)

	if result.SuccessfulExports != 1 || result.FailedExports != 3 {
		t.Fatalf("expected 1 success and 3 failures, got %d/%d", result.SuccessfulExports, result.FailedExports)
	}

	good := result.Results[0]
	if len(good.Missing) != 1 || good.Missing[0] != "t9" {
		t.Errorf("expected t9 to be reported missing, got %v", good.Missing)
	}

	if !errors.Is(result.Results[1].Error, shared.ErrObjectNotFound) {
		t.Errorf("expected ErrObjectNotFound for p2, got %v", result.Results[1].Error)
	}
	if !errors.Is(result.Results[2].Error, shared.ErrAPIRequest) {
		t.Errorf("expected ErrAPIRequest for p3, got %v", result.Results[2].Error)
	}
	if !errors.Is(result.Results[3].Error, models.ErrUnexpectedType) {
		t.Errorf("expected ErrUnexpectedType for a1, got %v", result.Results[3].Error)
	}

	data, err := os.ReadFile(result.ManifestPath)
	if err != nil {
		t.Fatalf("failed to read manifest: %v", err)
	}
	var manifest formatter.Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		t.Fatalf("invalid manifest: %v", err)
	}
	if manifest.FailedExports != 3 || manifest.Playlists[0].Status != "success" || manifest.Playlists[1].Status != "failed" {
		t.Errorf("unexpected manifest %+v", manifest)
	}

	var messages []string
	for u := range progress {
		messages = append(messages, u.Message)
	}
	if !strings.Contains(strings.Join(messages, "\n"), "✓ Good") {
		t.Errorf("expected a completion update, got %v", messages)
	}
}

func TestExportPlaylistsDefaultsToOwnPlaylists(t *testing.T) {
	catalog := newMockCatalog()
	owned := catalog.addPlaylist("p1", "Owned")
	collab := catalog.addPlaylist("p2", "Collab")
	catalog.playlists = &models.PlaylistSet{
		Owned:        []*models.Playlist{owned},
		Collaborated: []*models.Playlist{collab},
		Subscribed:   []*models.Playlist{owned},
	}

	result, err := newTestExporter(catalog, nil).ExportPlaylists(context.Background(), nil, nil, ExportOpts{OutputDir: t.TempDir(), RateLimit: 1000})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.TotalPlaylists != 2 {
		t.Errorf("expected duplicates to be dropped, got %d playlists", result.TotalPlaylists)
	}

	t.Run("no playlists", func(t *testing.T) {
		catalog := newMockCatalog()
		catalog.empty = true
		dir := t.TempDir()

		result, err := newTestExporter(catalog, nil).ExportPlaylists(context.Background(), nil, nil, ExportOpts{OutputDir: dir})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.TotalPlaylists != 0 || len(result.Results) != 0 {
			t.Errorf("expected an empty export, got %+v", result)
		}
		if result.ManifestPath != filepath.Join(dir, "export_manifest.json") {
			t.Errorf("expected manifest to be written, got %q", result.ManifestPath)
		}
	})

	t.Run("listing failure", func(t *testing.T) {
		_, err := newTestExporter(newMockCatalog(), nil).ExportPlaylists(context.Background(), nil, nil, ExportOpts{OutputDir: t.TempDir()})
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})
}

func TestExportPlaylistsBatchesTracks(t *testing.T) {
	catalog := newMockCatalog()
	keys := make([]string, 0, 250)
	for i := range 250 {
		key := fmt.Sprintf("t%d", i)
		keys = append(keys, key)
		catalog.addTrack(key, key)
	}
	catalog.addPlaylist("p1", "Long", keys...)

	result, err := newTestExporter(catalog, nil).ExportPlaylists(context.Background(), nil, []string{"p1"}, ExportOpts{OutputDir: t.TempDir(), RateLimit: 1000})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Results[0].Tracks != 250 {
		t.Errorf("expected 250 tracks, got %d", result.Results[0].Tracks)
	}

	// one playlist lookup plus three track batches
	if len(catalog.calls) != 4 {
		t.Errorf("expected 4 get calls, got %d", len(catalog.calls))
	}
	for _, call := range catalog.calls {
		if len(call) > trackBatchSize {
			t.Errorf("batch of %d exceeds %d", len(call), trackBatchSize)
		}
	}
}

func TestExportPlaylistsCancelled(t *testing.T) {
	catalog := newMockCatalog()
	catalog.addPlaylist("p1", "One")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestExporter(catalog, nil).ExportPlaylists(ctx, nil, []string{"p1"}, ExportOpts{OutputDir: t.TempDir()})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}

	t.Run("while fetching", func(t *testing.T) {
		catalog := newMockCatalog()
		catalog.addPlaylist("p1", "One")
		catalog.addPlaylist("p2", "Two")
		catalog.getErr["p3"] = shared.ErrAPIRequest

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		catalog.onGet = func(keys []string) {
			if len(keys) == 1 && keys[0] == "p3" {
				cancel()
				time.Sleep(20 * time.Millisecond)
			}
		}

		opts := ExportOpts{OutputDir: t.TempDir(), NumWorkers: 1, RateLimit: 1000}
		_, err := newTestExporter(catalog, nil).ExportPlaylists(ctx, nil, []string{"p1", "p2", "p3"}, opts)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

func TestCollectAll(t *testing.T) {
	source := make([]models.Object, 0, 7)
	for i := range 7 {
		source = append(source, &models.Artist{Base: models.Base{Key: fmt.Sprintf("r%d", i), Type: "r"}})
	}

	fetch := func(_ context.Context, start, count int) ([]models.Object, error) {
		if start >= len(source) {
			return nil, nil
		}
		end := min(start+count, len(source))
		return source[start:end], nil
	}

	t.Run("drains all pages", func(t *testing.T) {
		progress := make(chan ProgressUpdate, 10)
		all, err := CollectAll(context.Background(), progress, 3, 0, fetch)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(all) != 7 || all[6].ObjectKey() != "r6" {
			t.Errorf("expected 7 objects in order, got %d", len(all))
		}
		if len(progress) != 3 {
			t.Errorf("expected 3 page updates, got %d", len(progress))
		}
	})

	t.Run("exact multiple", func(t *testing.T) {
		all, err := CollectAll(context.Background(), nil, 7, 0, fetch)
		if err != nil || len(all) != 7 {
			t.Errorf("expected 7 objects, got %d (%v)", len(all), err)
		}
	})

	t.Run("limit", func(t *testing.T) {
		all, _ := CollectAll(context.Background(), nil, 3, 4, fetch)
		if len(all) != 4 {
			t.Errorf("expected 4 objects, got %d", len(all))
		}
	})

	t.Run("error keeps collected pages", func(t *testing.T) {
		failing := func(ctx context.Context, start, count int) ([]models.Object, error) {
			if start > 0 {
				return nil, shared.ErrAPIRequest
			}
			return fetch(ctx, start, count)
		}
		all, err := CollectAll(context.Background(), nil, 3, 0, failing)
		if !errors.Is(err, shared.ErrAPIRequest) || len(all) != 3 {
			t.Errorf("expected first page and ErrAPIRequest, got %d %v", len(all), err)
		}
	})

	t.Run("invalid page size", func(t *testing.T) {
		if _, err := CollectAll(context.Background(), nil, 0, 0, fetch); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

type memoryCursors struct {
	ids     map[string]string
	saveErr error
}

func (m *memoryCursors) LastID(user, scope string) (string, error) {
	return m.ids[user+"/"+scope], nil
}

func (m *memoryCursors) Save(user, scope, lastID string) (*models.ActivityCursor, error) {
	if m.saveErr != nil {
		return nil, m.saveErr
	}
	m.ids[user+"/"+scope] = lastID
	return models.NewActivityCursor(user, scope, lastID), nil
}

func TestNextActivity(t *testing.T) {
	cursors := &memoryCursors{ids: map[string]string{}}
	var seen []string

	fetch := func(_ context.Context, lastID string) (*models.ActivityStream, error) {
		seen = append(seen, lastID)
		return &models.ActivityStream{LastID: models.Number(fmt.Sprint(len(seen) * 100))}, nil
	}

	if _, err := NextActivity(context.Background(), cursors, "s1", "friends", fetch); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := NextActivity(context.Background(), cursors, "s1", "friends", fetch); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if seen[0] != "" || seen[1] != "100" {
		t.Errorf("expected cursor to advance, got %v", seen)
	}
	if cursors.ids["s1/friends"] != "200" {
		t.Errorf("expected stored cursor 200, got %s", cursors.ids["s1/friends"])
	}

	t.Run("fetch error leaves cursor", func(t *testing.T) {
		_, err := NextActivity(context.Background(), cursors, "s1", "friends", func(context.Context, string) (*models.ActivityStream, error) {
			return nil, shared.ErrAPIRequest
		})
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
		if cursors.ids["s1/friends"] != "200" {
			t.Errorf("cursor should not move on failure")
		}
	})

	t.Run("empty stream leaves cursor", func(t *testing.T) {
		stream, err := NextActivity(context.Background(), cursors, "s1", "friends", func(context.Context, string) (*models.ActivityStream, error) {
			return nil, nil
		})
		if err != nil || stream != nil {
			t.Errorf("expected nil stream and no error, got %v %v", stream, err)
		}
		if cursors.ids["s1/friends"] != "200" {
			t.Errorf("cursor should not move without a stream")
		}
	})

	t.Run("save error", func(t *testing.T) {
		broken := &memoryCursors{ids: map[string]string{}, saveErr: errors.New("locked")}
		stream, err := NextActivity(context.Background(), broken, "s1", "user", fetch)
		if err == nil || stream == nil {
			t.Errorf("expected stream and error, got %v %v", stream, err)
		}
	})
}
