package repositories

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/desertthunder/playgraph/internal/models"
)

func upsertArtist(tx *sql.Tx, a models.Artist) error {
	_, err := tx.Exec(`
		INSERT INTO artists (id, name, genres, popularity, enriched) VALUES (?, ?, ?, ?, 1)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name, genres = excluded.genres, popularity = excluded.popularity, enriched = 1
	`, a.ID, a.Name, strings.Join(a.Genres, ","), a.Popularity)
	if err != nil {
		return fmt.Errorf("failed to upsert artist %s: %w", a.ID, err)
	}

	if _, err := tx.Exec("DELETE FROM artist_images WHERE artist_id = ?", a.ID); err != nil {
		return fmt.Errorf("failed to clear artist images: %w", err)
	}
	for i, img := range a.Images {
		_, err := tx.Exec(
			"INSERT INTO artist_images (artist_id, position, url, width, height) VALUES (?, ?, ?, ?, ?)",
			a.ID, i, img.URL, img.Width, img.Height,
		)
		if err != nil {
			return fmt.Errorf("failed to insert image for %s: %w", a.ID, err)
		}
	}
	return nil
}

// playlistArtists loads the enriched artists performing on a playlist's tracks.
func playlistArtists(q querier, playlistID string) ([]models.Artist, error) {
	rows, err := q.Query(`
		SELECT a.id, a.name, a.genres, a.popularity, ai.url, ai.width, ai.height
		FROM artists a
		LEFT JOIN artist_images ai ON ai.artist_id = a.id
		WHERE a.enriched = 1 AND a.id IN (
			SELECT DISTINCT ta.artist_id
			FROM playlist_tracks pt
			JOIN track_artists ta ON ta.track_id = pt.track_id
			WHERE pt.playlist_id = ?
		)
		ORDER BY a.id ASC, ai.position ASC
	`, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query artists: %w", err)
	}
	defer rows.Close()

	var artists []models.Artist
	for rows.Next() {
		var (
			id, name, genres string
			popularity       int
			url              sql.NullString
			width, height    sql.NullInt64
		)
		if err := rows.Scan(&id, &name, &genres, &popularity, &url, &width, &height); err != nil {
			return nil, fmt.Errorf("failed to scan artist: %w", err)
		}
		if n := len(artists); n == 0 || artists[n-1].ID != id {
			a := models.Artist{ID: id, Name: name, Popularity: popularity}
			if genres != "" {
				a.Genres = strings.Split(genres, ",")
			}
			artists = append(artists, a)
		}
		if url.Valid {
			last := &artists[len(artists)-1]
			last.Images = append(last.Images, models.Image{URL: url.String, Width: int(width.Int64), Height: int(height.Int64)})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return artists, nil
}
