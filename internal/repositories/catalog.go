package repositories

import (
	"database/sql"
	"fmt"

	"github.com/desertthunder/playgraph/internal/models"
)

// CatalogRepository caches fetched catalogs so a playlist can be explored again without the network.
type CatalogRepository struct {
	db *sql.DB
}

// NewCatalogRepository creates a new CatalogRepository with the given database connection
func NewCatalogRepository(db *sql.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// Save stores c, replacing any earlier copy of the same playlist.
func (r *CatalogRepository) Save(c *models.Catalog) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	id, err := upsertPlaylist(tx, c.Playlist, c.FetchedAt)
	if err != nil {
		return err
	}
	if err := replacePlaylistTracks(tx, id, c.Tracks); err != nil {
		return err
	}
	for _, a := range c.Artists {
		if a.ID == "" {
			continue
		}
		if err := upsertArtist(tx, a); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit catalog: %w", err)
	}
	return nil
}

// Load reassembles the cached catalog for the playlist with catalog id serviceID.
// Returns [ErrNotCached] when the playlist was never saved.
func (r *CatalogRepository) Load(serviceID string) (*models.Catalog, error) {
	p, err := getPlaylist(r.db, serviceID)
	if err != nil {
		return nil, err
	}

	tracks, err := playlistTracks(r.db, p.ID)
	if err != nil {
		return nil, err
	}
	artists, err := playlistArtists(r.db, p.ID)
	if err != nil {
		return nil, err
	}

	return &models.Catalog{
		Playlist:  p.Playlist,
		Tracks:    tracks,
		Artists:   artists,
		FetchedAt: p.FetchedAt,
	}, nil
}

// List returns cached playlists in the order they were first fetched.
func (r *CatalogRepository) List() ([]*CachedPlaylist, error) {
	return listPlaylists(r.db)
}

// Delete removes a cached playlist and its track list. Shared tracks and artists stay cached.
func (r *CatalogRepository) Delete(serviceID string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var id string
	if err := tx.QueryRow("SELECT id FROM playlists WHERE service_id = ?", serviceID).Scan(&id); err != nil {
		if err == sql.ErrNoRows {
			return ErrNotCached
		}
		return fmt.Errorf("failed to look up playlist: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM playlist_tracks WHERE playlist_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete playlist tracks: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM playlists WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete playlist: %w", err)
	}
	return tx.Commit()
}

// Clear removes every cached row.
func (r *CatalogRepository) Clear() error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"playlist_tracks", "track_artists", "artist_images", "tracks", "artists", "playlists"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return tx.Commit()
}
