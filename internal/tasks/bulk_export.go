package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/desertthunder/rdx/internal/formatter"
	"github.com/desertthunder/rdx/internal/models"
	"github.com/desertthunder/rdx/internal/shared"
)

// trackBatchSize bounds the keys sent in one get call.
const trackBatchSize = 100

// ExportOpts contains configuration for bulk playlist exports.
type ExportOpts struct {
	Format     formatter.Format // Export format (default: text)
	OutputDir  string           // Base output directory (default: rdio_export_{epoch})
	NumWorkers int              // Concurrent workers (default: 5, max 10)
	RateLimit  float64          // Requests per second shared by all workers (default: 5)
}

// PlaylistExportResult is the outcome of exporting one playlist.
type PlaylistExportResult struct {
	Index        int
	PlaylistKey  string
	PlaylistName string
	Success      bool
	Tracks       int
	Missing      []string
	Files        []string
	Warnings     []string
	Error        error
}

// ExportResult summarizes a bulk export. Results follow the order playlists were requested in.
type ExportResult struct {
	TotalPlaylists    int
	SuccessfulExports int
	FailedExports     int
	Results           []PlaylistExportResult
	OutputDirectory   string
	ManifestPath      string
}

type exportJob struct {
	index    int
	playlist *models.Playlist
}

// ExportPlaylists exports playlists concurrently with a shared rate limit and writes a manifest.
//
// With no keys, every playlist the current user owns, collaborates on or subscribes to is exported.
// A playlist that cannot be fetched or written is recorded as failed without stopping the others.
func (e *Exporter) ExportPlaylists(ctx context.Context, prog chan<- ProgressUpdate, keys []string, opts ExportOpts) (*ExportResult, error) {
	if e.catalog == nil {
		return nil, fmt.Errorf("%w: catalog not initialized", shared.ErrServiceUnavailable)
	}

	if opts.Format == "" {
		opts.Format = formatter.FormatText
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("rdio_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 5
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	if len(keys) == 0 {
		sendProgress(prog, listPlaylistsUpdate())
		set, err := e.catalog.GetPlaylists(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to list playlists: %w", err)
		}
		if set != nil {
			for _, p := range set.All() {
				if !slices.Contains(keys, p.Key) {
					keys = append(keys, p.Key)
				}
			}
		}
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &ExportResult{
		TotalPlaylists:  len(keys),
		OutputDirectory: opts.OutputDir,
		Results:         make([]PlaylistExportResult, 0, len(keys)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan exportJob, len(keys))
	results := make(chan PlaylistExportResult, len(keys))

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, limiter, jobs, results, opts)
	}

	// the producer counts toward wg so results stays open for its failed fetches
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(jobs)
		for i, key := range keys {
			if err := limiter.Wait(ctx); err != nil {
				return
			}

			sendProgress(prog, fetchPlaylistUpdate(i+1, len(keys), key))
			playlist, err := e.fetchPlaylist(ctx, key)
			if err != nil {
				results <- PlaylistExportResult{
					Index:        i,
					PlaylistKey:  key,
					PlaylistName: fmt.Sprintf("Unknown (%s)", key),
					Error:        err,
				}
				continue
			}

			jobs <- exportJob{index: i, playlist: playlist}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Success {
			result.SuccessfulExports++
			sendProgress(prog, exportCompletedUpdate(completed, len(keys), res.PlaylistName, len(res.Files)))
		} else {
			result.FailedExports++
			sendProgress(prog, exportFailedUpdate(completed, len(keys), res.PlaylistName, res.Error))
		}
	}

	slices.SortFunc(result.Results, func(a, b PlaylistExportResult) int { return a.Index - b.Index })

	if err := ctx.Err(); err != nil {
		return result, err
	}

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	if err := formatter.WriteManifest(result.Manifest(opts.Format), manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, nil
}

// Manifest converts the result into its on-disk summary.
func (r *ExportResult) Manifest(format formatter.Format) *formatter.Manifest {
	m := &formatter.Manifest{
		Format:            format,
		ExportedAt:        time.Now().UTC(),
		TotalPlaylists:    r.TotalPlaylists,
		SuccessfulExports: r.SuccessfulExports,
		FailedExports:     r.FailedExports,
		Playlists:         make([]formatter.ManifestEntry, 0, len(r.Results)),
	}

	for _, res := range r.Results {
		entry := formatter.ManifestEntry{
			PlaylistKey:  res.PlaylistKey,
			PlaylistName: res.PlaylistName,
			Status:       "success",
			Tracks:       res.Tracks,
			Missing:      res.Missing,
			Files:        res.Files,
		}
		if !res.Success {
			entry.Status = "failed"
			if res.Error != nil {
				entry.Error = res.Error.Error()
			}
		}
		m.Playlists = append(m.Playlists, entry)
	}
	return m
}

func (e *Exporter) fetchPlaylist(ctx context.Context, key string) (*models.Playlist, error) {
	objects, err := e.catalog.Get(ctx, []string{key}, []string{"trackKeys"})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch playlist: %w", err)
	}

	for _, obj := range objects {
		if obj.ObjectKey() != key {
			continue
		}
		playlist, ok := obj.(*models.Playlist)
		if !ok {
			return nil, fmt.Errorf("%w: %s is a %s, not a playlist", models.ErrUnexpectedType, key, obj.Kind())
		}
		return playlist, nil
	}
	return nil, fmt.Errorf("%w: playlist %s", shared.ErrObjectNotFound, key)
}

// exportWorker is a worker goroutine that exports playlists from the jobs channel.
func (e *Exporter) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	limiter *rate.Limiter,
	jobs <-chan exportJob,
	results chan<- PlaylistExportResult,
	opts ExportOpts,
) {
	defer wg.Done()

	for job := range jobs {
		if ctx.Err() != nil {
			return
		}
		results <- e.exportPlaylist(ctx, limiter, job, opts)
	}
}

// exportPlaylist resolves the tracks of one playlist and writes it out.
func (e *Exporter) exportPlaylist(ctx context.Context, limiter *rate.Limiter, job exportJob, opts ExportOpts) PlaylistExportResult {
	p := job.playlist
	result := PlaylistExportResult{Index: job.index, PlaylistKey: p.Key, PlaylistName: p.Name}

	export, err := e.resolveTracks(ctx, limiter, p)
	if err != nil {
		result.Error = err
		return result
	}

	objects := make([]models.Object, 0, len(export.Tracks)+1)
	objects = append(objects, p)
	for _, t := range export.Tracks {
		objects = append(objects, t)
	}
	e.cacheObjects(objects...)

	files, warnings, err := formatter.WriteExport(export, opts.Format, opts.OutputDir)
	if err != nil {
		result.Error = fmt.Errorf("%s export failed: %w", opts.Format, err)
		return result
	}

	for _, w := range warnings {
		e.logger.Warn(w, "playlist", p.Key)
	}

	result.Success = true
	result.Tracks = len(export.Tracks)
	result.Missing = export.Missing
	result.Files = files
	result.Warnings = warnings
	return result
}

func (e *Exporter) resolveTracks(ctx context.Context, limiter *rate.Limiter, p *models.Playlist) (*models.PlaylistExport, error) {
	export := &models.PlaylistExport{Playlist: p, Tracks: make([]*models.Track, 0, len(p.TrackKeys))}
	found := make(map[string]*models.Track, len(p.TrackKeys))

	for batch := range slices.Chunk(p.TrackKeys, trackBatchSize) {
		if err := limiter.Wait(ctx); err != nil {
			return nil, err
		}

		objects, err := e.catalog.Get(ctx, batch, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch tracks: %w", err)
		}
		for _, obj := range objects {
			if t, ok := obj.(*models.Track); ok {
				found[t.Key] = t
			}
		}
	}

	for _, key := range p.TrackKeys {
		if t, ok := found[key]; ok {
			export.Tracks = append(export.Tracks, t)
		} else {
			export.Missing = append(export.Missing, key)
		}
	}
	return export, nil
}
