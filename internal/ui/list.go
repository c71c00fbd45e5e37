package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/playgraph/internal/models"
)

var _ list.Item = artistItem{}

// artistItem wraps [models.Artist] to implement [list.Item].
type artistItem struct {
	artist models.Artist
	tracks int
}

func (i artistItem) FilterValue() string { return i.artist.Name }
func (i artistItem) Title() string       { return i.artist.Name }
func (i artistItem) Description() string {
	desc := fmt.Sprintf("%d tracks", i.tracks)
	if len(i.artist.Genres) > 0 {
		desc = fmt.Sprintf("%s • %s", desc, strings.Join(i.artist.Genres, ", "))
	}
	return desc
}

// artistItems lists enriched artists in catalog order with their playlist track counts.
func artistItems(c *models.Catalog) []list.Item {
	if c == nil {
		return nil
	}
	counts := c.TrackCounts()
	items := make([]list.Item, 0, len(c.Artists))
	for _, a := range c.Artists {
		if a.ID == "" {
			continue
		}
		items = append(items, artistItem{artist: a, tracks: counts[a.ID]})
	}
	return items
}
