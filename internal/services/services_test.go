package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/desertthunder/playgraph/internal/models"
	"github.com/desertthunder/playgraph/internal/shared"
)

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.json")

	c := &models.Catalog{
		Playlist: models.Playlist{ID: "p1", Name: "Mix"},
		Tracks:   []models.Track{{ID: "t1", Name: "One", Artists: []models.ArtistRef{{ID: "a1", Name: "A"}}}},
		Artists:  []models.Artist{{ID: "a1", Name: "A"}},
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create catalog file: %v", err)
	}
	if err := c.WriteJSON(f); err != nil {
		t.Fatalf("failed to write catalog: %v", err)
	}
	f.Close()

	var src CatalogSource = &FileSource{Path: path}

	t.Run("reads catalog", func(t *testing.T) {
		got, err := src.Catalog(context.Background(), "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Playlist.Name != "Mix" || len(got.Tracks) != 1 {
			t.Errorf("unexpected catalog: %+v", got)
		}
	})

	t.Run("playlist mismatch", func(t *testing.T) {
		_, err := src.Catalog(context.Background(), "other")
		if !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound, got %v", err)
		}
	})

	t.Run("invalid file", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		os.WriteFile(bad, []byte("{"), 0644)

		_, err := (&FileSource{Path: bad}).Catalog(context.Background(), "")
		if !errors.Is(err, shared.ErrInvalidCatalog) {
			t.Errorf("expected ErrInvalidCatalog, got %v", err)
		}
	})

	t.Run("skips artists without an id", func(t *testing.T) {
		partial := filepath.Join(dir, "partial.json")
		data := `{
			"playlist": {"id": "p2", "name": "Partial"},
			"tracks": [{"id": "t1", "name": "One", "artists": [{"id": "a1", "name": "A"}]}],
			"artists": [{"id": "a1", "name": "A"}, {"id": "", "name": "broken"}]
		}`
		if err := os.WriteFile(partial, []byte(data), 0644); err != nil {
			t.Fatalf("failed to write catalog file: %v", err)
		}

		got, err := (&FileSource{Path: partial}).Catalog(context.Background(), "p2")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got.Artists) != 1 || got.Artists[0].ID != "a1" {
			t.Errorf("expected only artist a1, got %+v", got.Artists)
		}
		if len(got.Tracks) != 1 {
			t.Errorf("expected 1 track, got %d", len(got.Tracks))
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := (&FileSource{Path: filepath.Join(dir, "none.json")}).Catalog(context.Background(), "")
		if err == nil {
			t.Error("expected error for missing file")
		}
	})
}
