// Package repositories implements the SQLite catalog cache.
//
// A fetched [models.Catalog] is split across playlists, tracks, track_artists, playlist_tracks,
// artists, and artist_images. [CatalogRepository.Save] replaces a playlist's rows in one transaction;
// [CatalogRepository.Load] reassembles the catalog in playlist order so a cached playlist builds the
// same graph as a freshly fetched one.
//
// Tracks and artists are shared between playlists and upserted by catalog id. Playlists are keyed by
// the catalog's playlist id and carry a generated UUID plus a sequence number from [NextSequence]
// that orders [CatalogRepository.List].
package repositories
