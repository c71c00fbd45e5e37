package services

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/playgraph/internal/models"
	"github.com/desertthunder/playgraph/internal/shared"
)

// CatalogSource loads the tracks and artist enrichment for a playlist.
type CatalogSource interface {
	// Catalog fetches the playlist identified by playlistID with its tracks and artists.
	Catalog(ctx context.Context, playlistID string) (*models.Catalog, error)

	// Name returns the name of the source (e.g., "Spotify", "file")
	Name() string
}

// PlaylistLister is implemented by sources that can browse the signed-in user's library.
type PlaylistLister interface {
	// Playlists returns up to want playlists; want <= 0 returns all of them.
	Playlists(ctx context.Context, want int) ([]models.Playlist, error)
}

// FileSource serves a catalog from a JSON file written by [models.Catalog.WriteJSON].
type FileSource struct {
	Path   string
	Logger *log.Logger
}

func (f *FileSource) Name() string { return "file" }

func (f *FileSource) logger() *log.Logger {
	if f.Logger == nil {
		return log.New(io.Discard)
	}
	return f.Logger
}

// Catalog reads the file. playlistID is ignored when empty and must match the file's playlist otherwise.
func (f *FileSource) Catalog(_ context.Context, playlistID string) (*models.Catalog, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer file.Close()

	c, err := models.ReadCatalog(file)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrInvalidCatalog, f.Path, err)
	}
	if playlistID != "" && c.Playlist.ID != playlistID {
		return nil, fmt.Errorf("%w: %s holds %s", shared.ErrPlaylistNotFound, f.Path, c.Playlist.ID)
	}
	if n := c.DropInvalid(); n > 0 {
		f.logger().Debug("skipped artists without an id", "path", f.Path, "count", n)
	}
	return c, nil
}
