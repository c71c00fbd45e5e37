package tasks

import (
	"fmt"

	"github.com/desertthunder/playgraph/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	LoadCache Phase = iota
	FetchSource
	SaveCache
	ExportPlaylist
)

func (p Phase) String() string {
	switch p {
	case LoadCache:
		return "load_cache"
	case FetchSource:
		return "fetch_source"
	case SaveCache:
		return "save_cache"
	case ExportPlaylist:
		return "export_playlist"
	default:
		return ""
	}
}

func loadCacheUpdate(id string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   LoadCache,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Checking cache for %s...", id),
	}
}

func fetchSourceUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSource,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Fetching playlist from %s...", name),
	}
}

func foundCatalogUpdate(step, total int, c *models.Catalog, cached bool) ProgressUpdate {
	where := "source"
	if cached {
		where = "cache"
	}
	return ProgressUpdate{
		Phase:   FetchSource,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Found playlist: %s (%d tracks, %d artists, from %s)", c.Playlist.Name, len(c.Tracks), len(c.Artists), where),
		Data:    c,
	}
}

func saveCacheUpdate(c *models.Catalog) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SaveCache,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Caching %s...", c.Playlist.Name),
	}
}

func exportingPlaylistUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Exporting: %s...", step, total, name),
	}
}

func exportCompletedUpdate(step, total int, name string, filesCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d files)", step, total, name, filesCount),
	}
}

func exportFailedUpdate(step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err),
	}
}
