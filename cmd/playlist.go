package main

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/desertthunder/playgraph/internal/formatter"
	"github.com/desertthunder/playgraph/internal/metrics"
	"github.com/desertthunder/playgraph/internal/models"
	"github.com/desertthunder/playgraph/internal/services"
	"github.com/desertthunder/playgraph/internal/shared"
	"github.com/desertthunder/playgraph/internal/tasks"
	"github.com/urfave/cli/v3"
)

const topArtists = 10

// loadCatalog reads --file when set, otherwise fetches the playlist named by the id argument through the
// cache. It reports whether the catalog came from the cache.
func (r *Runner) loadCatalog(ctx context.Context, cmd *cli.Command) (*models.Catalog, bool, error) {
	if path := cmd.String("file"); path != "" {
		src := &services.FileSource{Path: path, Logger: r.logger}
		c, err := src.Catalog(ctx, "")
		metrics.RecordCatalogFetch(src.Name(), err)
		return c, false, err
	}

	id := cmd.StringArg("id")
	if id == "" {
		return nil, false, fmt.Errorf("%w: playlist id or --file", shared.ErrMissingArgument)
	}

	engine, release, err := r.engine(ctx, true)
	if err != nil {
		return nil, false, err
	}
	defer release()

	res, err := engine.Fetch(ctx, id, cmd.Bool("refresh"), nil)
	if err != nil {
		return nil, false, err
	}
	return res.Catalog, res.Cached, nil
}

// PlaylistList prints the signed-in user's playlists so their ids can be passed to the other commands.
func (r *Runner) PlaylistList(ctx context.Context, cmd *cli.Command) error {
	limit := cmd.Int("limit")
	if limit < 0 {
		return fmt.Errorf("%w: limit must not be negative", shared.ErrInvalidFlag)
	}

	source, err := r.catalogSource(ctx)
	if err != nil {
		return err
	}
	lister, ok := source.(services.PlaylistLister)
	if !ok {
		return fmt.Errorf("%w: %s cannot list playlists", shared.ErrServiceUnavailable, source.Name())
	}

	r.logger.Infof("listing %s playlists with limit %v", source.Name(), limit)
	playlists, err := lister.Playlists(ctx, limit)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlists, cmd.Bool("pretty"))
	}

	if len(playlists) == 0 {
		return r.writePlain("No playlists found\n")
	}
	r.writePlain("Found %d playlists:\n\n", len(playlists))
	for i, p := range playlists {
		r.writePlain("%2d. %s (%d tracks)\n", i+1, p.Name, p.TrackCount)
		r.writePlain("    ID: %s\n", p.ID)
		if p.Owner != "" {
			r.writePlain("    Owner: %s\n", p.Owner)
		}
	}
	return nil
}

// PlaylistFetch fetches a playlist catalog, caches it and prints a summary.
func (r *Runner) PlaylistFetch(ctx context.Context, cmd *cli.Command) error {
	c, cached, err := r.loadCatalog(ctx, cmd)
	if err != nil {
		return err
	}

	if out := cmd.String("output"); out != "" {
		path, err := formatter.WriteJSONExport(c, out)
		if err != nil {
			return err
		}
		r.logger.Infof("catalog written to %v", path)
		r.writePlain("✓ Catalog written to %s\n", path)
	}

	if cmd.Bool("json") {
		return r.writeJSON(c, cmd.Bool("pretty"))
	}

	source := "source"
	if cached {
		source = "cache"
	}
	r.writePlainHeader(c.Playlist.Name)
	r.writePlain("ID:      %s\n", c.Playlist.ID)
	if c.Playlist.Owner != "" {
		r.writePlain("Owner:   %s\n", c.Playlist.Owner)
	}
	r.writePlain("Tracks:  %d\n", len(c.Tracks))
	r.writePlain("Artists: %d\n", len(c.ArtistIDs()))
	r.writePlain("From:    %s (%s)\n", source, c.FetchedAt.Format("2006-01-02 15:04"))

	rows := formatter.ArtistRows(c)
	if len(rows) > topArtists {
		rows = rows[:topArtists]
	}
	if len(rows) > 0 {
		r.writePlainln("Top artists:")
		for i, row := range rows {
			r.writePlain("%2d. %s (%d tracks)\n", i+1, row.Name, row.Tracks)
		}
	}
	return nil
}

// PlaylistArtists lists a playlist's artists by track count.
func (r *Runner) PlaylistArtists(ctx context.Context, cmd *cli.Command) error {
	c, _, err := r.loadCatalog(ctx, cmd)
	if err != nil {
		return err
	}

	rows := formatter.ArtistRows(c)
	if limit := cmd.Int("limit"); limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}

	switch format := cmd.String("format"); format {
	case "json":
		return r.writeJSON(rows, true)
	case "csv":
		data, err := formatter.ArtistRowsToCSV(rows)
		if err != nil {
			return err
		}
		return r.writePlain("%s", data)
	case "text", "":
		for i, row := range rows {
			genres := ""
			if len(row.Genres) > 0 {
				genres = "  [" + strings.Join(row.Genres, ", ") + "]"
			}
			r.writePlain("%3d. %-32s %3d tracks%s\n", i+1, row.Name, row.Tracks, genres)
		}
		return nil
	default:
		return fmt.Errorf("%w: format %q", shared.ErrInvalidFlag, format)
	}
}

// PlaylistExport exports several playlists concurrently and prints progress as it goes.
func (r *Runner) PlaylistExport(ctx context.Context, cmd *cli.Command) error {
	ids := cmd.Args().Slice()
	if len(ids) == 0 {
		return fmt.Errorf("%w: at least one playlist id", shared.ErrMissingArgument)
	}

	format := cmd.String("format")
	switch format {
	case formatter.FormatJSON, formatter.FormatCSV, formatter.FormatMarkdown, formatter.FormatText:
	default:
		return fmt.Errorf("%w: format %q", shared.ErrInvalidFlag, format)
	}

	engine, release, err := r.engine(ctx, true)
	if err != nil {
		return err
	}
	defer release()

	progress := make(chan tasks.ProgressUpdate, len(ids)*2)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for u := range progress {
			r.writePlain("%s\n", u.Message)
		}
	}()

	result, err := engine.BulkExport(ctx, progress, ids, tasks.BulkExportOpts{
		Format:     format,
		OutputDir:  cmd.String("dir"),
		NumWorkers: cmd.Int("workers"),
		RateLimit:  cmd.Float("rate"),
		Refresh:    cmd.Bool("refresh"),
	})
	close(progress)
	wg.Wait()
	if err != nil {
		return err
	}

	r.writePlainln("✓ Exported %d/%d playlists to %s", result.SuccessfulExports, result.TotalPlaylists, result.OutputDirectory)
	r.writePlain("  Manifest: %s\n", result.ManifestPath)
	if result.FailedExports > 0 {
		r.logger.Warn("some playlists failed to export", "failed", result.FailedExports)
	}
	return nil
}
