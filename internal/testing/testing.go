// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"sync"
	"testing"

	"github.com/desertthunder/playgraph/internal/models"
	"github.com/desertthunder/playgraph/internal/shared"
)

// MockSource is a test double for [services.CatalogSource] serving canned catalogs by playlist id.
type MockSource struct {
	Catalogs map[string]*models.Catalog
	Errors   map[string]error
	// Library is returned by Playlists; LibraryErr fails it.
	Library    []models.Playlist
	LibraryErr error

	mu    sync.Mutex
	calls []string
}

func (m *MockSource) Catalog(_ context.Context, playlistID string) (*models.Catalog, error) {
	m.mu.Lock()
	m.calls = append(m.calls, playlistID)
	m.mu.Unlock()

	if err, ok := m.Errors[playlistID]; ok {
		return nil, err
	}
	if c, ok := m.Catalogs[playlistID]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, playlistID)
}

func (m *MockSource) Name() string { return "mock" }

func (m *MockSource) Playlists(_ context.Context, want int) ([]models.Playlist, error) {
	if m.LibraryErr != nil {
		return nil, m.LibraryErr
	}
	if want > 0 && want < len(m.Library) {
		return m.Library[:want], nil
	}
	return m.Library, nil
}

// Calls returns the playlist ids requested so far.
func (m *MockSource) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// SampleCatalog builds a catalog with the given track → performer ids shape, e.g.
// SampleCatalog("p1", map[string][]string{"t1": {"a1"}}). Performers get enrichment records named after their id.
func SampleCatalog(playlistID string, tracks map[string][]string, order ...string) *models.Catalog {
	c := &models.Catalog{Playlist: models.Playlist{ID: playlistID, Name: "Playlist " + playlistID}}
	if len(order) == 0 {
		for id := range tracks {
			order = append(order, id)
		}
		sort.Strings(order)
	}

	seen := make(map[string]bool)
	for _, tid := range order {
		t := models.Track{ID: tid, Name: "Track " + tid}
		for _, aid := range tracks[tid] {
			t.Artists = append(t.Artists, models.ArtistRef{ID: aid, Name: "Artist " + aid})
			if !seen[aid] {
				seen[aid] = true
				c.Artists = append(c.Artists, models.Artist{ID: aid, Name: "Artist " + aid})
			}
		}
		c.Tracks = append(c.Tracks, t)
	}
	c.Playlist.TrackCount = len(c.Tracks)
	return c
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

// WriteCatalog writes c as a catalog file under dir and returns its path.
func WriteCatalog(t *testing.T, dir string, c *models.Catalog) string {
	t.Helper()
	path := dir + string(os.PathSeparator) + c.Playlist.ID + ".json"
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create catalog file: %v", err)
	}
	defer f.Close()
	if err := c.WriteJSON(f); err != nil {
		t.Fatalf("Failed to write catalog: %v", err)
	}
	return path
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
