// package formatter writes playlist catalogs and computed layouts to CSV, Markdown, plain text and JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/playgraph/internal/models"
	"github.com/desertthunder/playgraph/internal/render"
)

// Supported export formats.
const (
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatText     = "txt"
)

// ArtistRow is one performer of a catalog with its playlist track count.
type ArtistRow struct {
	ID         string
	Name       string
	Tracks     int
	Popularity int
	Genres     []string
	Image      string
}

// ArtistRows lists the catalog's performers by descending track count, then name.
//
// Performers referenced by tracks but missing enrichment are listed under the name the track carries.
func ArtistRows(c *models.Catalog) []ArtistRow {
	counts := c.TrackCounts()
	byID := c.ArtistByID()

	names := make(map[string]string)
	for _, t := range c.Tracks {
		for _, a := range t.Artists {
			if _, ok := names[a.ID]; !ok {
				names[a.ID] = a.Name
			}
		}
	}

	rows := make([]ArtistRow, 0, len(counts))
	for _, id := range c.ArtistIDs() {
		row := ArtistRow{ID: id, Name: names[id], Tracks: counts[id]}
		if a, ok := byID[id]; ok {
			if a.Name != "" {
				row.Name = a.Name
			}
			row.Popularity = a.Popularity
			row.Genres = a.Genres
			row.Image = a.ImageAt(0)
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Tracks != rows[j].Tracks {
			return rows[i].Tracks > rows[j].Tracks
		}
		return rows[i].Name < rows[j].Name
	})
	return rows
}

func artistNames(t models.Track) string {
	names := make([]string, len(t.Artists))
	for i, a := range t.Artists {
		names[i] = a.Name
	}
	return strings.Join(names, ", ")
}

func writeCSV(records [][]string) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.WriteAll(records); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// TracksToCSV converts a catalog's tracks to CSV with columns: ID, Name, Artists, Artist IDs
func TracksToCSV(c *models.Catalog) ([]byte, error) {
	records := [][]string{{"ID", "Name", "Artists", "Artist IDs"}}
	for _, t := range c.Tracks {
		ids := make([]string, len(t.Artists))
		for i, a := range t.Artists {
			ids[i] = a.ID
		}
		records = append(records, []string{t.ID, t.Name, artistNames(t), strings.Join(ids, ";")})
	}
	return writeCSV(records)
}

// ArtistsToCSV converts a catalog's performers to CSV with columns: ID, Name, Tracks, Popularity, Genres, Image
func ArtistsToCSV(c *models.Catalog) ([]byte, error) {
	return ArtistRowsToCSV(ArtistRows(c))
}

// ArtistRowsToCSV writes rows with the [ArtistsToCSV] columns.
func ArtistRowsToCSV(rows []ArtistRow) ([]byte, error) {
	records := [][]string{{"ID", "Name", "Tracks", "Popularity", "Genres", "Image"}}
	for _, row := range rows {
		records = append(records, []string{
			row.ID,
			row.Name,
			strconv.Itoa(row.Tracks),
			strconv.Itoa(row.Popularity),
			strings.Join(row.Genres, ";"),
			row.Image,
		})
	}
	return writeCSV(records)
}

// LayoutToCSV converts a rendered frame's nodes to CSV with columns: ID, Kind, Label, X, Y, Radius, Fill
func LayoutToCSV(frame render.Frame) ([]byte, error) {
	records := [][]string{{"ID", "Kind", "Label", "X", "Y", "Radius", "Fill"}}
	for _, n := range frame.Nodes {
		records = append(records, []string{
			n.ID,
			n.KindName,
			n.Label,
			strconv.FormatFloat(n.X, 'f', 2, 64),
			strconv.FormatFloat(n.Y, 'f', 2, 64),
			strconv.FormatFloat(n.Radius, 'f', 2, 64),
			n.Fill,
		})
	}
	return writeCSV(records)
}

// ToMarkdown renders a catalog as a Markdown document with an artist table and a track list
func ToMarkdown(c *models.Catalog) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", c.Playlist.Name)
	if c.Playlist.Description != "" {
		fmt.Fprintf(&buf, "**Description**: %s\n\n", c.Playlist.Description)
	}
	if c.Playlist.Owner != "" {
		fmt.Fprintf(&buf, "**Owner**: %s\n", c.Playlist.Owner)
	}
	rows := ArtistRows(c)
	fmt.Fprintf(&buf, "**Tracks**: %d\n", len(c.Tracks))
	fmt.Fprintf(&buf, "**Artists**: %d\n\n", len(rows))

	buf.WriteString("## Artists\n\n")
	buf.WriteString("| Artist | Tracks | Genres |\n")
	buf.WriteString("| --- | ---: | --- |\n")
	for _, row := range rows {
		fmt.Fprintf(&buf, "| %s | %d | %s |\n", escapeCell(row.Name), row.Tracks, escapeCell(strings.Join(row.Genres, ", ")))
	}

	buf.WriteString("\n## Tracks\n\n")
	for i, t := range c.Tracks {
		fmt.Fprintf(&buf, "%d. %s - %s\n", i+1, artistNames(t), t.Name)
	}
	return buf.Bytes()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// ToText renders a catalog as plain text
func ToText(c *models.Catalog) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Playlist: %s\n", c.Playlist.Name)
	if c.Playlist.Description != "" {
		fmt.Fprintf(&buf, "Description: %s\n", c.Playlist.Description)
	}
	fmt.Fprintf(&buf, "Tracks: %d\n\n", len(c.Tracks))

	for i, t := range c.Tracks {
		fmt.Fprintf(&buf, "%d. %s - %s\n", i+1, artistNames(t), t.Name)
	}
	return buf.Bytes()
}

// WriteJSONExport writes the catalog to path in the format `playgraph view --file` reads.
//
// Defaults to {playlist.ID}.json as the filename.
func WriteJSONExport(c *models.Catalog, path string) (string, error) {
	if path == "" {
		path = c.Playlist.ID + ".json"
	}
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create JSON file: %w", err)
	}
	defer f.Close()

	if err := c.WriteJSON(f); err != nil {
		return "", fmt.Errorf("failed to write JSON file: %w", err)
	}
	return path, nil
}

// WriteCSVExport writes {base}_tracks.csv, {base}_artists.csv and {base}_metadata.json.
//
// Defaults to the playlist ID as the base filename.
func WriteCSVExport(c *models.Catalog, base string) ([]string, error) {
	if base == "" {
		base = c.Playlist.ID
	}

	tracks, err := TracksToCSV(c)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tracks CSV: %w", err)
	}
	artists, err := ArtistsToCSV(c)
	if err != nil {
		return nil, fmt.Errorf("failed to generate artists CSV: %w", err)
	}
	metadata, err := json.MarshalIndent(c.Playlist, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	files := []struct {
		path string
		data []byte
	}{
		{base + "_tracks.csv", tracks},
		{base + "_artists.csv", artists},
		{base + "_metadata.json", metadata},
	}

	paths := make([]string, 0, len(files))
	for _, f := range files {
		if err := os.WriteFile(f.path, f.data, 0644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", f.path, err)
		}
		paths = append(paths, f.path)
	}
	return paths, nil
}

// WriteMarkdownExport writes {dir}/README.md, creating dir when needed.
//
// Directory name defaults to the playlist ID.
func WriteMarkdownExport(c *models.Catalog, dir string) (string, error) {
	if dir == "" {
		dir = c.Playlist.ID
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	path := filepath.Join(dir, "README.md")
	if err := os.WriteFile(path, ToMarkdown(c), 0644); err != nil {
		return "", fmt.Errorf("failed to write Markdown file: %w", err)
	}
	return path, nil
}

// WriteTextExport writes the catalog as plain text.
//
// Defaults to {playlist.ID}_tracks.txt as the filename.
func WriteTextExport(c *models.Catalog, path string) (string, error) {
	if path == "" {
		path = c.Playlist.ID + "_tracks.txt"
	}
	if err := os.WriteFile(path, ToText(c), 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}
	return path, nil
}

// ManifestEntry records the outcome for one playlist of a bulk export.
type ManifestEntry struct {
	PlaylistID   string   `json:"playlist_id"`
	PlaylistName string   `json:"playlist_name"`
	Status       string   `json:"status"`
	Files        []string `json:"files,omitempty"`
	Error        string   `json:"error,omitempty"`
}

// Manifest summarizes a bulk export.
type Manifest struct {
	Format            string          `json:"format"`
	OutputDirectory   string          `json:"output_directory"`
	CreatedAt         time.Time       `json:"created_at"`
	TotalPlaylists    int             `json:"total_playlists"`
	SuccessfulExports int             `json:"successful_exports"`
	FailedExports     int             `json:"failed_exports"`
	Playlists         []ManifestEntry `json:"playlists"`
}

// WriteManifest writes m as indented JSON to path.
func WriteManifest(m *Manifest, path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
