// Spotify API implementation of [CatalogSource]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/playgraph/internal/models"
	"github.com/desertthunder/playgraph/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	// ArtistBatchSize is the maximum number of ids the several-artists endpoint accepts.
	ArtistBatchSize = 50
	playlistPage    = 100
	libraryPage     = 50
)

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Artists []SpotifyArtist `json:"artists"`
	IsLocal bool            `json:"is_local"`
	URI     string          `json:"uri"`
}

// SpotifyArtist represents a Spotify artist.
//
// Simplified artist objects embedded in tracks omit Genres, Popularity, and Images.
type SpotifyArtist struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Genres     []string       `json:"genres"`
	Popularity int            `json:"popularity"`
	Images     []SpotifyImage `json:"images"`
	URI        string         `json:"uri"`
}

type Owner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// SpotifyPlaylistTrack represents a track within a playlist context. Track is nil for removed items.
type SpotifyPlaylistTrack struct {
	AddedAt string        `json:"added_at"`
	Track   *SpotifyTrack `json:"track"`
}

// SpotifyPlaylistTracks is one page of a playlist's items.
type SpotifyPlaylistTracks struct {
	Items  []SpotifyPlaylistTrack `json:"items"`
	Total  int                    `json:"total"`
	Limit  int                    `json:"limit"`
	Offset int                    `json:"offset"`
	Next   *string                `json:"next"`
}

// SpotifyPlaylist represents a Spotify playlist.
type SpotifyPlaylist struct {
	ID          string                `json:"id"`
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Owner       Owner                 `json:"owner"`
	Public      bool                  `json:"public"`
	Tracks      SpotifyPlaylistTracks `json:"tracks"`
	Images      []SpotifyImage        `json:"images"`
	URI         string                `json:"uri"`
}

// SpotifyPaginatedPlaylists is one page of the current user's playlists. Items carry only track totals.
type SpotifyPaginatedPlaylists struct {
	Items  []SpotifyPlaylist `json:"items"`
	Total  int               `json:"total"`
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
	Next   *string           `json:"next"`
}

// SpotifyService implements [CatalogSource] for the Spotify Web API.
// Uses [oauth2] for user authentication and [clientcredentials] for guest access.
type SpotifyService struct {
	config     *oauth2.Config
	guest      *clientcredentials.Config
	token      *oauth2.Token
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	logger     *log.Logger
	authed     bool

	onTokenRefresh func(*oauth2.Token)
}

// SpotifyOption customizes a [SpotifyService].
type SpotifyOption func(*SpotifyService)

// WithEndpoints points the service at alternate API and token URLs.
func WithEndpoints(apiURL, tokenURL string) SpotifyOption {
	return func(s *SpotifyService) {
		s.baseURL = strings.TrimSuffix(apiURL, "/")
		s.config.Endpoint.TokenURL = tokenURL
		s.guest.TokenURL = tokenURL
	}
}

// WithRateLimit paces API requests to rps per second. Zero or negative disables pacing.
func WithRateLimit(rps float64) SpotifyOption {
	return func(s *SpotifyService) {
		if rps <= 0 {
			s.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		s.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithServiceLogger sets the logger used for request diagnostics.
func WithServiceLogger(l *log.Logger) SpotifyOption {
	return func(s *SpotifyService) { s.logger = l }
}

// NewSpotifyService creates a new Spotify service with the given OAuth2 credentials.
func NewSpotifyService(credentials map[string]string, opts ...SpotifyOption) (*SpotifyService, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}

	redirectURI, ok := credentials["redirect_uri"]
	if !ok || redirectURI == "" {
		redirectURI = "http://127.0.0.1:3000/callback"
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes: []string{
			"user-read-email",
			"playlist-read-private",
			"playlist-read-collaborative",
		},
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	s := &SpotifyService{
		config: config,
		guest: &clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     spotifyTokenURL,
		},
		httpClient: http.DefaultClient,
		baseURL:    spotifyBaseURL,
		limiter:    rate.NewLimiter(rate.Limit(5), 1),
		logger:     log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Authenticate configures the HTTP client.
//
// Credentials are tried in order: "access_token" (with optional "refresh_token"), then "auth_code". With neither,
// the service falls back to the client credentials flow, which can read public playlists and artists.
func (s *SpotifyService) Authenticate(ctx context.Context, credentials map[string]string) error {
	if accessToken := credentials["access_token"]; accessToken != "" {
		s.token = &oauth2.Token{AccessToken: accessToken, RefreshToken: credentials["refresh_token"]}
		if s.token.RefreshToken != "" {
			// unknown expiry: let the token source refresh on first use
			s.token.Expiry = time.Now().Add(-time.Minute)
		}
		s.httpClient = s.userClient(ctx)
		s.authed = true
		return nil
	}

	if authCode := credentials["auth_code"]; authCode != "" {
		token, err := s.config.Exchange(ctx, authCode)
		if err != nil {
			return fmt.Errorf("%w: failed to exchange auth code: %v", shared.ErrAuthFailed, err)
		}
		s.token = token
		s.httpClient = s.userClient(ctx)
		s.authed = true
		return nil
	}

	s.logger.Debug("no user token, using client credentials")
	s.token = nil
	s.httpClient = s.guest.Client(ctx)
	s.authed = true
	return nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// SetTokenRefreshCallback registers fn to receive every new user token, so refreshed tokens can be persisted.
// Call it before Authenticate.
func (s *SpotifyService) SetTokenRefreshCallback(fn func(*oauth2.Token)) {
	s.onTokenRefresh = fn
}

func (s *SpotifyService) userClient(ctx context.Context) *http.Client {
	src := &refreshableTokenSource{source: s.config.TokenSource(ctx, s.token), callback: s.onTokenRefresh}
	return oauth2.NewClient(ctx, src)
}

// refreshableTokenSource reports tokens to callback whenever the access token changes.
type refreshableTokenSource struct {
	source   oauth2.TokenSource
	callback func(*oauth2.Token)
	last     string
}

func (r *refreshableTokenSource) Token() (*oauth2.Token, error) {
	token, err := r.source.Token()
	if err != nil {
		return nil, err
	}
	if token.AccessToken != r.last {
		r.last = token.AccessToken
		if r.callback != nil {
			r.callback(token)
		}
	}
	return token, nil
}

// Token returns the user token obtained by [SpotifyService.Authenticate], or nil for guest access.
func (s *SpotifyService) Token() *oauth2.Token {
	return s.token
}

// OAuthConfig returns the authorization code flow configuration, for serving the redirect callback.
func (s *SpotifyService) OAuthConfig() *oauth2.Config {
	return s.config
}

// GetAuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyService) GetAuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// doRequest performs an authenticated GET against the Spotify API. endpoint may be a path relative to the
// API base or an absolute "next" URL from a paging object.
func (s *SpotifyService) doRequest(ctx context.Context, endpoint string, result any) error {
	if !s.authed {
		return fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	apiURL := endpoint
	if !strings.HasPrefix(endpoint, "http") {
		apiURL = s.baseURL + endpoint
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return shared.ErrTokenExpired
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", errNotFound, endpoint)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return fmt.Errorf("%w: spotify status %d", shared.ErrServiceUnavailable, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("%w: spotify status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

var errNotFound = fmt.Errorf("%w: not found", shared.ErrAPIRequest)

// Playlist retrieves a playlist by ID with its first page of tracks.
func (s *SpotifyService) Playlist(ctx context.Context, playlistID string) (*SpotifyPlaylist, error) {
	if playlistID == "" {
		return nil, fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}

	var playlist SpotifyPlaylist
	if err := s.doRequest(ctx, "/playlists/"+url.PathEscape(playlistID), &playlist); err != nil {
		if errors.Is(err, errNotFound) {
			return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, playlistID)
		}
		return nil, err
	}
	return &playlist, nil
}

// UserPlaylists retrieves one page of the signed-in user's playlists. limit is clamped to 1..50.
func (s *SpotifyService) UserPlaylists(ctx context.Context, limit, offset int) (*SpotifyPaginatedPlaylists, error) {
	if s.authed && s.token == nil {
		return nil, fmt.Errorf("%w: listing playlists needs a user token, run `playgraph auth spotify`", shared.ErrNotAuthenticated)
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > libraryPage {
		limit = libraryPage
	}

	var page SpotifyPaginatedPlaylists
	if err := s.doRequest(ctx, fmt.Sprintf("/me/playlists?limit=%d&offset=%d", limit, offset), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Playlists lists the signed-in user's library, following pages until want playlists are collected or the
// library ends. A want of zero or less lists everything.
func (s *SpotifyService) Playlists(ctx context.Context, want int) ([]models.Playlist, error) {
	var playlists []models.Playlist
	for offset := 0; ; {
		limit := libraryPage
		if want > 0 {
			limit = min(limit, want-len(playlists))
		}
		page, err := s.UserPlaylists(ctx, limit, offset)
		if err != nil {
			return nil, err
		}
		for _, sp := range page.Items {
			playlists = append(playlists, models.Playlist{
				ID:          sp.ID,
				Name:        sp.Name,
				Description: sp.Description,
				Owner:       sp.Owner.DisplayName,
				TrackCount:  sp.Tracks.Total,
			})
		}
		s.logger.Debug("listed playlists", "offset", offset, "count", len(page.Items), "total", page.Total)

		if page.Next == nil || *page.Next == "" || len(page.Items) == 0 || (want > 0 && len(playlists) >= want) {
			break
		}
		offset += len(page.Items)
	}
	if want > 0 && len(playlists) > want {
		playlists = playlists[:want]
	}
	return playlists, nil
}

// PlaylistTracks retrieves every track of a playlist, following paging links from first.
// Null items are dropped.
func (s *SpotifyService) PlaylistTracks(ctx context.Context, playlistID string, first *SpotifyPlaylistTracks) ([]SpotifyTrack, error) {
	page := first
	if page == nil {
		page = &SpotifyPlaylistTracks{}
		endpoint := fmt.Sprintf("/playlists/%s/tracks?limit=%d", url.PathEscape(playlistID), playlistPage)
		if err := s.doRequest(ctx, endpoint, page); err != nil {
			return nil, err
		}
	}

	var tracks []SpotifyTrack
	for {
		for _, item := range page.Items {
			if item.Track == nil {
				continue
			}
			tracks = append(tracks, *item.Track)
		}
		if page.Next == nil || *page.Next == "" {
			break
		}
		next := *page.Next
		page = &SpotifyPlaylistTracks{}
		if err := s.doRequest(ctx, next, page); err != nil {
			return nil, err
		}
	}
	return tracks, nil
}

// SeveralArtists retrieves up to [ArtistBatchSize] artists by id. Unknown ids come back as nulls and are skipped.
func (s *SpotifyService) SeveralArtists(ctx context.Context, artistIDs []string) ([]SpotifyArtist, error) {
	if len(artistIDs) == 0 {
		return nil, fmt.Errorf("%w: no artist IDs provided", shared.ErrInvalidArgument)
	}
	if len(artistIDs) > ArtistBatchSize {
		return nil, fmt.Errorf("%w: maximum %d artist IDs allowed", shared.ErrInvalidArgument, ArtistBatchSize)
	}

	endpoint := "/artists?ids=" + url.QueryEscape(strings.Join(artistIDs, ","))

	var response struct {
		Artists []*SpotifyArtist `json:"artists"`
	}
	if err := s.doRequest(ctx, endpoint, &response); err != nil {
		return nil, err
	}

	artists := make([]SpotifyArtist, 0, len(response.Artists))
	for _, a := range response.Artists {
		if a != nil {
			artists = append(artists, *a)
		}
	}
	return artists, nil
}

// Artists enriches ids in batches of [ArtistBatchSize], in order.
func (s *SpotifyService) Artists(ctx context.Context, ids []string) ([]models.Artist, error) {
	artists := make([]models.Artist, 0, len(ids))
	for start := 0; start < len(ids); start += ArtistBatchSize {
		end := min(start+ArtistBatchSize, len(ids))
		batch, err := s.SeveralArtists(ctx, ids[start:end])
		if err != nil {
			return nil, fmt.Errorf("artist batch %d-%d: %w", start, end, err)
		}
		s.logger.Debug("enriched artists", "batch", start/ArtistBatchSize, "count", len(batch))
		for _, a := range batch {
			artists = append(artists, toArtist(a))
		}
	}
	return artists, nil
}

// Catalog fetches a playlist, all of its tracks, and the enrichment for every performer.
func (s *SpotifyService) Catalog(ctx context.Context, playlistID string) (*models.Catalog, error) {
	sp, err := s.Playlist(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	spTracks, err := s.PlaylistTracks(ctx, sp.ID, &sp.Tracks)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch playlist tracks: %w", err)
	}

	c := &models.Catalog{
		Playlist: models.Playlist{
			ID:          sp.ID,
			Name:        sp.Name,
			Description: sp.Description,
			Owner:       sp.Owner.DisplayName,
			TrackCount:  len(spTracks),
		},
		Tracks:    make([]models.Track, 0, len(spTracks)),
		FetchedAt: time.Now().UTC(),
	}
	for _, t := range spTracks {
		c.Tracks = append(c.Tracks, toTrack(t))
	}

	ids := c.ArtistIDs()
	if len(ids) > 0 {
		if c.Artists, err = s.Artists(ctx, ids); err != nil {
			return nil, err
		}
	}

	s.logger.Info("fetched catalog", "playlist", c.Playlist.Name, "tracks", len(c.Tracks), "artists", len(c.Artists))
	return c, nil
}

func toTrack(t SpotifyTrack) models.Track {
	track := models.Track{ID: t.ID, Name: t.Name, Artists: make([]models.ArtistRef, 0, len(t.Artists))}
	for _, a := range t.Artists {
		track.Artists = append(track.Artists, models.ArtistRef{ID: a.ID, Name: a.Name})
	}
	return track
}

func toArtist(a SpotifyArtist) models.Artist {
	artist := models.Artist{ID: a.ID, Name: a.Name, Genres: a.Genres, Popularity: a.Popularity}
	for _, img := range a.Images {
		artist.Images = append(artist.Images, models.Image{URL: img.URL, Width: img.Width, Height: img.Height})
	}
	return artist
}
