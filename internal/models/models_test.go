package models

import (
	"bytes"
	"strings"
	"testing"
)

func sampleCatalog() *Catalog {
	return &Catalog{
		Playlist: Playlist{ID: "p1", Name: "Mix"},
		Tracks: []Track{
			{ID: "t1", Name: "One", Artists: []ArtistRef{{ID: "a1", Name: "A"}}},
			{ID: "t2", Name: "Two", Artists: []ArtistRef{{ID: "a1", Name: "A"}, {ID: "a2", Name: "B"}, {ID: "a1", Name: "A"}}},
			{ID: "t3", Name: "Three", Artists: []ArtistRef{{ID: "", Name: "Unknown"}}},
		},
		Artists: []Artist{
			{ID: "a1", Name: "A", Images: []Image{{URL: "big"}, {URL: "mid"}, {URL: "small"}}},
			{ID: "a2", Name: "B", Images: []Image{{URL: "only"}}},
		},
	}
}

func TestCatalog(t *testing.T) {
	t.Run("ArtistIDs", func(t *testing.T) {
		ids := sampleCatalog().ArtistIDs()
		if strings.Join(ids, ",") != "a1,a2" {
			t.Errorf("expected a1,a2, got %v", ids)
		}
	})

	t.Run("TrackCounts", func(t *testing.T) {
		counts := sampleCatalog().TrackCounts()
		if counts["a1"] != 2 {
			t.Errorf("expected a1 on 2 tracks, got %d", counts["a1"])
		}
		if counts["a2"] != 1 {
			t.Errorf("expected a2 on 1 track, got %d", counts["a2"])
		}
		if _, ok := counts[""]; ok {
			t.Error("empty ids should not be counted")
		}
	})

	t.Run("ImageAt", func(t *testing.T) {
		artists := sampleCatalog().ArtistByID()
		tc := []struct {
			name   string
			artist Artist
			index  int
			want   string
		}{
			{name: "third image", artist: artists["a1"], index: 2, want: "small"},
			{name: "falls back to first", artist: artists["a2"], index: 2, want: "only"},
			{name: "no images", artist: Artist{ID: "x"}, index: 0, want: ""},
		}
		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				if got := tt.artist.ImageAt(tt.index); got != tt.want {
					t.Errorf("ImageAt(%d) = %q, want %q", tt.index, got, tt.want)
				}
			})
		}
	})

	t.Run("JSON", func(t *testing.T) {
		var buf bytes.Buffer
		if err := sampleCatalog().WriteJSON(&buf); err != nil {
			t.Fatalf("failed to write catalog: %v", err)
		}

		c, err := ReadCatalog(&buf)
		if err != nil {
			t.Fatalf("failed to read catalog: %v", err)
		}
		if len(c.Tracks) != 3 || len(c.Artists) != 2 {
			t.Errorf("unexpected catalog shape: %d tracks, %d artists", len(c.Tracks), len(c.Artists))
		}

		if _, err := ReadCatalog(strings.NewReader(`{"playlist":{"id":""}}`)); err == nil {
			t.Error("expected error for catalog without playlist id")
		}
		if _, err := ReadCatalog(strings.NewReader(`not json`)); err == nil {
			t.Error("expected error for malformed catalog")
		}
		if _, err := ReadCatalog(strings.NewReader(`{"playlist":{"id":"p1"},"artists":[{"id":""}]}`)); err != nil {
			t.Errorf("expected artist without id to be tolerated, got %v", err)
		}
	})

	t.Run("DropInvalid", func(t *testing.T) {
		c := &Catalog{Artists: []Artist{{ID: "a1"}, {Name: "no id"}, {ID: "a2"}, {}}}
		if n := c.DropInvalid(); n != 2 {
			t.Errorf("expected 2 dropped, got %d", n)
		}
		if len(c.Artists) != 2 || c.Artists[0].ID != "a1" || c.Artists[1].ID != "a2" {
			t.Errorf("unexpected artists after drop: %+v", c.Artists)
		}
		if n := c.DropInvalid(); n != 0 {
			t.Errorf("expected nothing left to drop, got %d", n)
		}
	})
}
