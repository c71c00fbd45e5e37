// Package services defines the [CatalogSource] interface for loading playlist catalogs and implements it for
// Spotify and for exported catalog files.
//
// # Spotify Implementation
//
// [SpotifyService] authenticates one of three ways:
//   - a stored user access/refresh token pair, refreshed automatically by [oauth2.Config.Client]
//   - an authorization code from the local OAuth callback server
//   - the client credentials (guest) flow when no user token is available
//
// [SpotifyService.Catalog] pages through a playlist's tracks, drops null entries (removed or local items the API
// reports as null), then enriches every referenced performer through the several-artists endpoint in batches of
// 50. Batches are paced by a [rate.Limiter].
//
// # File Implementation
//
// [FileSource] reads a catalog previously written by `playgraph playlist export`.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrNotAuthenticated] : Authenticate() not called
//   - [shared.ErrTokenExpired] : OAuth token rejected (401)
//   - [shared.ErrPlaylistNotFound] : playlist id not found (404)
//   - [shared.ErrServiceUnavailable] : rate limited (429) or server error
//   - [shared.ErrAPIRequest] : any other failed request
package services
