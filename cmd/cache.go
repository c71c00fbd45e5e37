package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/playgraph/internal/repositories"
	"github.com/desertthunder/playgraph/internal/shared"
	"github.com/urfave/cli/v3"
)

// cachedPlaylistJSON is the `cache list --json` shape.
type cachedPlaylistJSON struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Owner     string    `json:"owner,omitempty"`
	Tracks    int       `json:"tracks"`
	FetchedAt time.Time `json:"fetched_at"`
}

// CacheList prints every cached playlist.
func (r *Runner) CacheList(ctx context.Context, cmd *cli.Command) error {
	repo, release, err := r.openRepository()
	if err != nil {
		return err
	}
	defer release()

	playlists, err := repo.List()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		out := make([]cachedPlaylistJSON, 0, len(playlists))
		for _, p := range playlists {
			out = append(out, cachedPlaylistJSON{
				ID:        p.Playlist.ID,
				Name:      p.Playlist.Name,
				Owner:     p.Playlist.Owner,
				Tracks:    p.Playlist.TrackCount,
				FetchedAt: p.FetchedAt,
			})
		}
		return r.writeJSON(out, true)
	}

	if len(playlists) == 0 {
		return r.writePlain("No cached playlists\n")
	}

	r.writePlainHeader(fmt.Sprintf("Cached playlists (%d)", len(playlists)))
	for _, p := range playlists {
		r.writePlain("%-24s %5d tracks  %s  %s\n",
			p.Playlist.ID, p.Playlist.TrackCount, p.FetchedAt.Local().Format(time.DateTime), p.Playlist.Name)
	}
	return nil
}

// CacheDelete removes one cached playlist.
func (r *Runner) CacheDelete(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}

	repo, release, err := r.openRepository()
	if err != nil {
		return err
	}
	defer release()

	if err := repo.Delete(id); err != nil {
		if errors.Is(err, repositories.ErrNotCached) {
			return fmt.Errorf("%w: %s is not cached", shared.ErrPlaylistNotFound, id)
		}
		return err
	}
	r.logger.Debug("deleted cached playlist", "id", id)
	return r.writePlain("✓ Removed %s from the cache\n", id)
}

// CacheClear empties the cache.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	repo, release, err := r.openRepository()
	if err != nil {
		return err
	}
	defer release()

	if err := repo.Clear(); err != nil {
		return err
	}
	return r.writePlain("✓ Cache cleared\n")
}
