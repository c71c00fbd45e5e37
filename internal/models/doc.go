// Package models defines the catalog entities playgraph visualizes.
//
// A [Catalog] is a playlist's tracks plus the enrichment records of the artists performing
// on them. Tracks carry lightweight [ArtistRef] performer references; [Artist] carries the
// enrichment (images, genres) used for bubble sizing and node fills.
//
// Catalogs are produced by the services package, cached by the repositories package, and
// consumed by the graph builder.
package models
