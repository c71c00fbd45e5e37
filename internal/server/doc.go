// Package server provides the small HTTP surface playgraph runs next to the terminal UI.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] method patterns ("GET /metrics") for routing.
//
// # OAuth Callback Handler
//
// [OAuthHandler] implements the OAuth2 authorization code callback for `playgraph auth spotify`.
//
// The handler validates the state parameter, exchanges the authorization code for tokens,
// and sends the result through a channel. It only processes one callback.
//
// # Metrics
//
// [MetricsHandler] exposes the Prometheus registry and a health check while `playgraph view --metrics` runs.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
