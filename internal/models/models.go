package models

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Playlist is playlist metadata from the catalog service.
type Playlist struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Owner       string `json:"owner,omitempty"`
	TrackCount  int    `json:"track_count"`
}

// ArtistRef is a performer reference embedded in a track.
type ArtistRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Track is a playlist entry with its ordered performers.
type Track struct {
	ID      string      `json:"id"`
	Name    string      `json:"name"`
	Artists []ArtistRef `json:"artists"`
}

// Image is an artist image candidate. Catalog order is preserved; callers pick by index.
type Image struct {
	URL    string `json:"url"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// Artist is the enrichment record for a performer.
type Artist struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Genres     []string `json:"genres,omitempty"`
	Popularity int      `json:"popularity,omitempty"`
	Images     []Image  `json:"images,omitempty"`
}

// ImageAt returns the URL of the image at index i, falling back to the first image.
// It returns "" when the artist has no images.
func (a Artist) ImageAt(i int) string {
	if i >= 0 && i < len(a.Images) && a.Images[i].URL != "" {
		return a.Images[i].URL
	}
	if len(a.Images) > 0 {
		return a.Images[0].URL
	}
	return ""
}

// Catalog bundles everything the graph builder needs for one playlist.
type Catalog struct {
	Playlist  Playlist  `json:"playlist"`
	Tracks    []Track   `json:"tracks"`
	Artists   []Artist  `json:"artists"`
	FetchedAt time.Time `json:"fetched_at"`
}

// ArtistIDs returns the distinct performer ids referenced by tracks, in first-seen order.
// Empty ids are skipped.
func (c *Catalog) ArtistIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, t := range c.Tracks {
		for _, a := range t.Artists {
			if a.ID == "" || seen[a.ID] {
				continue
			}
			seen[a.ID] = true
			ids = append(ids, a.ID)
		}
	}
	return ids
}

// ArtistByID indexes the enrichment records.
func (c *Catalog) ArtistByID() map[string]Artist {
	m := make(map[string]Artist, len(c.Artists))
	for _, a := range c.Artists {
		m[a.ID] = a
	}
	return m
}

// TrackCounts counts, per performer id, the tracks the performer appears on.
// A performer listed twice on one track counts once.
func (c *Catalog) TrackCounts() map[string]int {
	counts := make(map[string]int)
	for _, t := range c.Tracks {
		seen := make(map[string]bool, len(t.Artists))
		for _, a := range t.Artists {
			if a.ID == "" || seen[a.ID] {
				continue
			}
			seen[a.ID] = true
			counts[a.ID]++
		}
	}
	return counts
}

// Validate checks the fields a catalog file must carry. Bad artist records are not fatal; see [Catalog.DropInvalid].
func (c *Catalog) Validate() error {
	if c.Playlist.ID == "" {
		return fmt.Errorf("catalog playlist id is empty")
	}
	return nil
}

// DropInvalid removes artist records without an id and returns how many were dropped.
func (c *Catalog) DropInvalid() int {
	kept := c.Artists[:0]
	for _, a := range c.Artists {
		if a.ID != "" {
			kept = append(kept, a)
		}
	}
	dropped := len(c.Artists) - len(kept)
	c.Artists = kept
	return dropped
}

// WriteJSON encodes the catalog as indented JSON.
func (c *Catalog) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}

// ReadCatalog decodes and validates a catalog written by [Catalog.WriteJSON].
func ReadCatalog(r io.Reader) (*Catalog, error) {
	var c Catalog
	if err := json.NewDecoder(r).Decode(&c); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}
