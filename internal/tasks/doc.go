// Package tasks runs the catalog operations behind the playlist commands, with progress reporting.
//
// # Core Operations
//
// [CatalogEngine] has two operations:
//
//  1. [CatalogEngine.Fetch] : Load one playlist catalog
//     - Serves the cached copy unless a refresh is requested
//     - Otherwise fetches tracks and artist enrichment from the [services.CatalogSource]
//     - Caches the fresh copy through the optional [CatalogCache]
//
//  2. [CatalogEngine.BulkExport] : Export many playlists concurrently
//     - A producer fetches catalogs under a rate limit
//     - A worker pool writes each catalog in the requested format
//     - A manifest summarizes successes and failures
//
// # Progress Reporting
//
// Operations take an optional channel of [ProgressUpdate] values. Sends use select with default,
// so a slow or absent reader never stalls an operation.
//
// # Metrics
//
// Every source fetch is counted through [metrics.RecordCatalogFetch].
package tasks
