package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/desertthunder/playgraph/internal/formatter"
	"github.com/desertthunder/playgraph/internal/models"
	"golang.org/x/time/rate"
)

const (
	DefaultWorkers   = 5
	MaxWorkers       = 10
	DefaultRateLimit = 5.0
	ManifestFilename = "export_manifest.json"
)

// BulkExportOpts contains configuration for bulk playlist exports.
type BulkExportOpts struct {
	Format     string  // Export format: json, csv, markdown, txt
	OutputDir  string  // Base output directory (default: playgraph_export_{epoch})
	NumWorkers int     // Concurrent writers (default: 5, at most 10)
	RateLimit  float64 // Catalog fetches per second (default: 5)
	Refresh    bool    // Bypass the catalog cache
}

// PlaylistExportResult is the outcome for one playlist.
type PlaylistExportResult struct {
	PlaylistID   string
	PlaylistName string
	Success      bool
	Cached       bool
	Files        []string
	Error        error
}

// BulkExportResult summarizes a bulk export.
type BulkExportResult struct {
	TotalPlaylists    int
	SuccessfulExports int
	FailedExports     int
	OutputDirectory   string
	ManifestPath      string
	Results           []PlaylistExportResult
}

type exportJob struct {
	playlistID string
	catalog    *models.Catalog
	cached     bool
}

// BulkExport exports multiple playlists concurrently with rate limiting and progress tracking.
//
// One producer fetches catalogs through [CatalogEngine.Fetch] under the rate limit and hands them to a pool of
// writers. Individual failures are recorded in the result and the manifest; the export itself only fails when
// the output directory or the manifest cannot be written.
func (e *CatalogEngine) BulkExport(ctx context.Context, prog chan<- ProgressUpdate, ids []string, opts BulkExportOpts) (*BulkExportResult, error) {
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("playgraph_export_%d", e.now().Unix())
	}
	if opts.Format == "" {
		opts.Format = formatter.FormatJSON
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = DefaultWorkers
	}
	if opts.NumWorkers > MaxWorkers {
		opts.NumWorkers = MaxWorkers
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = DefaultRateLimit
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BulkExportResult{
		TotalPlaylists:  len(ids),
		OutputDirectory: opts.OutputDir,
		Results:         make([]PlaylistExportResult, 0, len(ids)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	jobs := make(chan exportJob, len(ids))
	results := make(chan PlaylistExportResult, len(ids))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.exportWorker(&wg, jobs, results, opts)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(jobs)
		for i, id := range ids {
			if err := limiter.Wait(ctx); err != nil {
				results <- PlaylistExportResult{PlaylistID: id, PlaylistName: unknownName(id), Error: err}
				continue
			}

			fetched, err := e.Fetch(ctx, id, opts.Refresh, nil)
			if err != nil {
				results <- PlaylistExportResult{
					PlaylistID:   id,
					PlaylistName: unknownName(id),
					Error:        fmt.Errorf("failed to fetch playlist: %w", err),
				}
				continue
			}

			sendProgress(prog, exportingPlaylistUpdate(i+1, len(ids), fetched.Catalog.Playlist.Name))
			jobs <- exportJob{playlistID: id, catalog: fetched.Catalog, cached: fetched.Cached}
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
			sendProgress(prog, exportCompletedUpdate(completed, len(ids), res.PlaylistName, len(res.Files)))
		} else {
			result.FailedExports++
			sendProgress(prog, exportFailedUpdate(completed, len(ids), res.PlaylistName, res.Error))
		}
	}

	manifestPath := filepath.Join(opts.OutputDir, ManifestFilename)
	if err := formatter.WriteManifest(result.Manifest(opts.Format, e.now()), manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, nil
}

func unknownName(id string) string {
	return fmt.Sprintf("Unknown (%s)", id)
}

func (e *CatalogEngine) exportWorker(wg *sync.WaitGroup, jobs <-chan exportJob, results chan<- PlaylistExportResult, opts BulkExportOpts) {
	defer wg.Done()
	for job := range jobs {
		results <- exportCatalog(job, opts)
	}
}

// exportCatalog writes one catalog in the requested format.
func exportCatalog(j exportJob, opts BulkExportOpts) PlaylistExportResult {
	result := PlaylistExportResult{
		PlaylistID:   j.playlistID,
		PlaylistName: j.catalog.Playlist.Name,
		Cached:       j.cached,
		Files:        []string{},
	}
	id := j.catalog.Playlist.ID

	switch opts.Format {
	case formatter.FormatCSV:
		files, err := formatter.WriteCSVExport(j.catalog, filepath.Join(opts.OutputDir, id))
		if err != nil {
			result.Error = fmt.Errorf("CSV export failed: %w", err)
			return result
		}
		result.Files = files
	case formatter.FormatMarkdown:
		path, err := formatter.WriteMarkdownExport(j.catalog, filepath.Join(opts.OutputDir, id))
		if err != nil {
			result.Error = fmt.Errorf("markdown export failed: %w", err)
			return result
		}
		result.Files = []string{path}
	case formatter.FormatText:
		path, err := formatter.WriteTextExport(j.catalog, filepath.Join(opts.OutputDir, id+"_tracks.txt"))
		if err != nil {
			result.Error = fmt.Errorf("text export failed: %w", err)
			return result
		}
		result.Files = []string{path}
	default:
		path, err := formatter.WriteJSONExport(j.catalog, filepath.Join(opts.OutputDir, id+".json"))
		if err != nil {
			result.Error = fmt.Errorf("JSON export failed: %w", err)
			return result
		}
		result.Files = []string{path}
	}

	result.Success = true
	return result
}

// Manifest converts the result into its on-disk summary.
func (r *BulkExportResult) Manifest(format string, at time.Time) *formatter.Manifest {
	m := &formatter.Manifest{
		Format:            format,
		OutputDirectory:   r.OutputDirectory,
		CreatedAt:         at.UTC(),
		TotalPlaylists:    r.TotalPlaylists,
		SuccessfulExports: r.SuccessfulExports,
		FailedExports:     r.FailedExports,
		Playlists:         make([]formatter.ManifestEntry, 0, len(r.Results)),
	}
	for _, res := range r.Results {
		entry := formatter.ManifestEntry{
			PlaylistID:   res.PlaylistID,
			PlaylistName: res.PlaylistName,
			Status:       "success",
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
