package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/playgraph/internal/metrics"
	"github.com/desertthunder/playgraph/internal/models"
	"github.com/desertthunder/playgraph/internal/repositories"
	"github.com/desertthunder/playgraph/internal/services"
	"github.com/desertthunder/playgraph/internal/shared"
)

// CatalogCache persists fetched catalogs. [repositories.CatalogRepository] implements it.
type CatalogCache interface {
	Save(c *models.Catalog) error
	Load(playlistID string) (*models.Catalog, error)
}

// FetchResult is a catalog along with where it came from.
type FetchResult struct {
	Catalog *models.Catalog
	Cached  bool
}

// CatalogEngine fetches catalogs from a source, consulting and filling a cache.
type CatalogEngine struct {
	source services.CatalogSource
	cache  CatalogCache
	logger *log.Logger
	now    func() time.Time
}

// NewCatalogEngine creates an engine. cache may be nil to always go to the source.
func NewCatalogEngine(source services.CatalogSource, cache CatalogCache, logger *log.Logger) *CatalogEngine {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &CatalogEngine{source: source, cache: cache, logger: logger, now: time.Now}
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Fetch returns the catalog for playlistID.
//
// Unless refresh is set, a cached copy is returned when one exists. Fresh catalogs are stamped with the fetch
// time and cached; a cache write failure is logged and does not fail the fetch.
func (e *CatalogEngine) Fetch(ctx context.Context, playlistID string, refresh bool, progress chan<- ProgressUpdate) (*FetchResult, error) {
	if playlistID == "" {
		return nil, fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}

	if !refresh && e.cache != nil {
		sendProgress(progress, loadCacheUpdate(playlistID))
		c, err := e.cache.Load(playlistID)
		switch {
		case err == nil:
			sendProgress(progress, foundCatalogUpdate(1, 1, c, true))
			return &FetchResult{Catalog: c, Cached: true}, nil
		case !errors.Is(err, repositories.ErrNotCached):
			e.logger.Warn("catalog cache read failed", "playlist", playlistID, "error", err)
		}
	}

	if e.source == nil {
		return nil, fmt.Errorf("%w: no catalog source configured", shared.ErrServiceUnavailable)
	}

	sendProgress(progress, fetchSourceUpdate(1, 1, e.source.Name()))
	c, err := e.source.Catalog(ctx, playlistID)
	metrics.RecordCatalogFetch(e.source.Name(), err)
	if err != nil {
		return nil, err
	}
	if c.FetchedAt.IsZero() {
		c.FetchedAt = e.now().UTC()
	}
	sendProgress(progress, foundCatalogUpdate(1, 1, c, false))

	if e.cache != nil {
		sendProgress(progress, saveCacheUpdate(c))
		if err := e.cache.Save(c); err != nil {
			e.logger.Warn("failed to cache catalog", "playlist", playlistID, "error", err)
		}
	}
	return &FetchResult{Catalog: c}, nil
}
