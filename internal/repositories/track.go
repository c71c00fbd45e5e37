package repositories

import (
	"database/sql"
	"fmt"

	"github.com/desertthunder/playgraph/internal/models"
)

// replacePlaylistTracks rewrites a playlist's track list, upserting each track and its performers.
//
// Tracks without an id are not cached; the graph builder skips them anyway.
func replacePlaylistTracks(tx *sql.Tx, playlistID string, tracks []models.Track) error {
	if _, err := tx.Exec("DELETE FROM playlist_tracks WHERE playlist_id = ?", playlistID); err != nil {
		return fmt.Errorf("failed to clear playlist tracks: %w", err)
	}

	position := 0
	for _, t := range tracks {
		if t.ID == "" {
			continue
		}
		if err := upsertTrack(tx, t); err != nil {
			return err
		}
		_, err := tx.Exec(
			"INSERT INTO playlist_tracks (playlist_id, track_id, position) VALUES (?, ?, ?)",
			playlistID, t.ID, position,
		)
		if err != nil {
			return fmt.Errorf("failed to link track %s: %w", t.ID, err)
		}
		position++
	}
	return nil
}

func upsertTrack(tx *sql.Tx, t models.Track) error {
	_, err := tx.Exec(`
		INSERT INTO tracks (id, name) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name
	`, t.ID, t.Name)
	if err != nil {
		return fmt.Errorf("failed to upsert track %s: %w", t.ID, err)
	}

	if _, err := tx.Exec("DELETE FROM track_artists WHERE track_id = ?", t.ID); err != nil {
		return fmt.Errorf("failed to clear track artists: %w", err)
	}
	for i, a := range t.Artists {
		_, err := tx.Exec(
			"INSERT INTO track_artists (track_id, artist_id, artist_name, position) VALUES (?, ?, ?, ?)",
			t.ID, a.ID, a.Name, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert performer for %s: %w", t.ID, err)
		}
	}
	return nil
}

// playlistTracks loads a playlist's tracks in order with their performers.
func playlistTracks(q querier, playlistID string) ([]models.Track, error) {
	rows, err := q.Query(`
		SELECT pt.position, t.id, t.name, ta.artist_id, ta.artist_name
		FROM playlist_tracks pt
		JOIN tracks t ON t.id = pt.track_id
		LEFT JOIN track_artists ta ON ta.track_id = t.id
		WHERE pt.playlist_id = ?
		ORDER BY pt.position ASC, ta.position ASC
	`, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}
	defer rows.Close()

	var tracks []models.Track
	lastPosition := -1
	for rows.Next() {
		var (
			position             int
			id, name             string
			artistID, artistName sql.NullString
		)
		if err := rows.Scan(&position, &id, &name, &artistID, &artistName); err != nil {
			return nil, fmt.Errorf("failed to scan track: %w", err)
		}
		if position != lastPosition {
			lastPosition = position
			tracks = append(tracks, models.Track{ID: id, Name: name, Artists: []models.ArtistRef{}})
		}
		if artistID.Valid {
			last := &tracks[len(tracks)-1]
			last.Artists = append(last.Artists, models.ArtistRef{ID: artistID.String, Name: artistName.String})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return tracks, nil
}
