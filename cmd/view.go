package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/playgraph/internal/graph"
	"github.com/desertthunder/playgraph/internal/metrics"
	"github.com/desertthunder/playgraph/internal/models"
	"github.com/desertthunder/playgraph/internal/render"
	"github.com/desertthunder/playgraph/internal/server"
	"github.com/desertthunder/playgraph/internal/shared"
	"github.com/desertthunder/playgraph/internal/ui"
	"github.com/desertthunder/playgraph/internal/watcher"
	"github.com/urfave/cli/v3"
)

// View launches the interactive graph for one playlist.
func (r *Runner) View(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("watch") && cmd.String("file") == "" {
		return fmt.Errorf("%w: --watch requires --file", shared.ErrInvalidFlag)
	}

	catalog, _, err := r.loadCatalog(ctx, cmd)
	if err != nil {
		return err
	}
	if len(catalog.Tracks) == 0 {
		return fmt.Errorf("%w: %s", shared.ErrEmptyCatalog, catalog.Playlist.Name)
	}

	// The program owns the terminal from here on, so logs go to a file.
	logPath := cmd.String("log-file")
	if logPath == "" {
		logPath = r.config.Log.File
	}
	if logPath == "" {
		logPath = filepath.Join(os.TempDir(), "playgraph.log")
	}
	logger, logFile, err := shared.NewFileLogger(logPath)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	defer logFile.Close()
	if err := shared.ApplyLogLevel(logger, r.config.Log.Level); err != nil {
		logger.Warn("ignoring log level", "error", err)
	}
	logger = shared.WithLogger(logger, "session", shared.GenerateID()[:8])

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var fills *render.FillResolver
	if !cmd.Bool("no-images") {
		fills = render.NewFillResolver(
			render.WithHTTPClient(r.httpClient),
			render.WithFillLogger(logger))
	}

	model := ui.NewModel(ctx, catalog, ui.Options{
		Geometry:   graph.GeometryFromConfig(r.config.Graph),
		Simulation: r.config.Simulation,
		CellWidth:  r.config.Graph.CellWidth,
		CellHeight: r.config.Graph.CellHeight,
		Fills:      fills,
		Explored:   knownArtists(catalog, cmd.StringSlice("artist"), logger),
		Observe:    metrics.FrameObserver("view"),
		Logger:     logger,
	})
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithContext(ctx))

	if cmd.Bool("watch") {
		w, err := watcher.New(cmd.String("file"), 0, logger)
		if err != nil {
			return err
		}
		w.OnChange(func(c *models.Catalog, err error) {
			metrics.RecordCatalogFetch("file", err)
			p.Send(ui.CatalogMsg{Catalog: c, Err: err})
		})
		w.Start(ctx)
		defer w.Stop()
	}

	if cmd.Bool("metrics") || r.config.Metrics.Enabled {
		router := server.NewBasicRouter()
		router.Use(server.Logging(logger))
		router.Handler(server.NewMetricsHandler())
		go func() {
			if err := server.Serve(ctx, r.config.Metrics.Addr, router, logger, nil); err != nil {
				logger.Error("metrics server stopped", "error", err)
			}
		}()
		logger.Info("serving metrics", "addr", r.config.Metrics.Addr)
	}

	logger.Info("starting view", "playlist", catalog.Playlist.ID, "tracks", len(catalog.Tracks))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}

// knownArtists drops requested artist ids the catalog never mentions.
func knownArtists(c *models.Catalog, ids []string, logger *log.Logger) []string {
	known := make(map[string]bool)
	for _, id := range c.ArtistIDs() {
		known[id] = true
	}

	var out []string
	for _, id := range ids {
		if !known[id] {
			logger.Warn("ignoring unknown artist", "id", id)
			continue
		}
		out = append(out, id)
	}
	return out
}
