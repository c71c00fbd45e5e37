package ui

import (
	"time"

	"github.com/desertthunder/playgraph/internal/models"
)

// frameMsg drives one simulation frame.
type frameMsg time.Time

// resizeMsg applies the pending window size if no newer size arrived during the debounce.
type resizeMsg int

// fillResolvedMsg reports that an artist image finished resolving, successfully or not.
type fillResolvedMsg struct {
	url string
	err error
}

// CatalogMsg replaces the catalog being viewed, e.g. after the catalog file changed on disk.
// Node positions carry over for artists and tracks present in both.
type CatalogMsg struct {
	Catalog *models.Catalog
	Err     error
}
