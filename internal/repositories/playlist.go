package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/playgraph/internal/models"
	"github.com/desertthunder/playgraph/internal/shared"
)

// CachedPlaylist is a row of the playlists table.
type CachedPlaylist struct {
	ID        string
	Sequence  int
	Playlist  models.Playlist
	FetchedAt time.Time
}

// upsertPlaylist inserts the playlist or refreshes its metadata, returning the row id.
func upsertPlaylist(tx *sql.Tx, p models.Playlist, fetchedAt time.Time) (string, error) {
	var id string
	err := tx.QueryRow("SELECT id FROM playlists WHERE service_id = ?", p.ID).Scan(&id)
	switch {
	case err == sql.ErrNoRows:
		sequence, err := NextSequence(tx, "playlists")
		if err != nil {
			return "", fmt.Errorf("failed to generate sequence: %w", err)
		}
		id = shared.GenerateID()
		_, err = tx.Exec(`
			INSERT INTO playlists (id, sequence, service_id, name, description, owner, fetched_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, id, sequence, p.ID, p.Name, p.Description, p.Owner, fetchedAt)
		if err != nil {
			return "", fmt.Errorf("failed to insert playlist: %w", err)
		}
	case err != nil:
		return "", fmt.Errorf("failed to look up playlist: %w", err)
	default:
		_, err = tx.Exec(`
			UPDATE playlists SET name = ?, description = ?, owner = ?, fetched_at = ?
			WHERE id = ?
		`, p.Name, p.Description, p.Owner, fetchedAt, id)
		if err != nil {
			return "", fmt.Errorf("failed to update playlist: %w", err)
		}
	}
	return id, nil
}

func getPlaylist(q querier, serviceID string) (*CachedPlaylist, error) {
	row := q.QueryRow(`
		SELECT p.id, p.sequence, p.service_id, p.name, p.description, p.owner, p.fetched_at,
			(SELECT COUNT(*) FROM playlist_tracks pt WHERE pt.playlist_id = p.id)
		FROM playlists p
		WHERE p.service_id = ?
	`, serviceID)
	return scanPlaylist(row)
}

func listPlaylists(q querier) ([]*CachedPlaylist, error) {
	rows, err := q.Query(`
		SELECT p.id, p.sequence, p.service_id, p.name, p.description, p.owner, p.fetched_at,
			(SELECT COUNT(*) FROM playlist_tracks pt WHERE pt.playlist_id = p.id)
		FROM playlists p
		ORDER BY p.sequence ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}
	defer rows.Close()

	var playlists []*CachedPlaylist
	for rows.Next() {
		p, err := scanPlaylist(rows)
		if err != nil {
			return nil, err
		}
		playlists = append(playlists, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return playlists, nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scanPlaylist scans a single row into a [CachedPlaylist]
func scanPlaylist(row scanner) (*CachedPlaylist, error) {
	var p CachedPlaylist
	err := row.Scan(
		&p.ID, &p.Sequence, &p.Playlist.ID, &p.Playlist.Name, &p.Playlist.Description,
		&p.Playlist.Owner, &p.FetchedAt, &p.Playlist.TrackCount,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotCached
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan playlist: %w", err)
	}
	return &p, nil
}
