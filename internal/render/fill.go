package render

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"io"
	"net/http"
	"sync"
	"time"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/playgraph/internal/graph"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
	"golang.org/x/time/rate"
)

const (
	DefaultArtistFill = "#7D56F4"
	DefaultTrackFill  = "#3A3A3A"

	maxImageBytes = 8 << 20
)

// DefaultFill is the fill used for a node without a resolved image.
func DefaultFill(k graph.Kind) string {
	if k == graph.KindTrack {
		return DefaultTrackFill
	}
	return DefaultArtistFill
}

type defaultFiller struct{}

func (defaultFiller) Fill(n *graph.Node) string { return DefaultFill(n.Kind) }

// FillOption configures a [FillResolver].
type FillOption func(*FillResolver)

// WithHTTPClient sets the client used to download images.
func WithHTTPClient(c *http.Client) FillOption {
	return func(r *FillResolver) { r.client = c }
}

// WithFetchRate limits image downloads to rps per second. Zero or less removes the limit.
func WithFetchRate(rps float64) FillOption {
	return func(r *FillResolver) {
		if rps <= 0 {
			r.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		r.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithFillLogger sets the resolver's logger.
func WithFillLogger(l *log.Logger) FillOption {
	return func(r *FillResolver) { r.logger = l }
}

type fillEntry struct {
	color string
	err   error
}

// FillResolver maps image URLs to average colours.
//
// Every URL is fetched at most once; failures are cached too so a broken image is not retried every frame.
type FillResolver struct {
	mu      sync.Mutex
	entries map[string]fillEntry
	pending map[string]bool

	client  *http.Client
	limiter *rate.Limiter
	logger  *log.Logger
}

// NewFillResolver creates a resolver that downloads at most 10 images per second by default.
func NewFillResolver(opts ...FillOption) *FillResolver {
	r := &FillResolver{
		entries: make(map[string]fillEntry),
		pending: make(map[string]bool),
		client:  &http.Client{Timeout: 10 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(10), 1),
		logger:  log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Fill returns the node's resolved image colour, or its kind's default fill. It never blocks on a download.
func (r *FillResolver) Fill(n *graph.Node) string {
	if n.ImageRef == "" || n.Kind == graph.KindTrack {
		return DefaultFill(n.Kind)
	}
	if c, ok := r.Lookup(n.ImageRef); ok {
		return c
	}
	return DefaultFill(n.Kind)
}

// Lookup returns the cached colour for url. ok is false while unresolved or after a failure.
func (r *FillResolver) Lookup(url string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, found := r.entries[url]
	if !found || e.err != nil {
		return "", false
	}
	return e.color, true
}

// Claim marks url as in flight and reports whether the caller should resolve it. URLs already cached or
// in flight are not claimed twice.
func (r *FillResolver) Claim(url string) bool {
	if url == "" {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[url]; ok || r.pending[url] {
		return false
	}
	r.pending[url] = true
	return true
}

// Missing claims every image referenced by nodes that is neither cached nor in flight.
func (r *FillResolver) Missing(nodes []*graph.Node) []string {
	var urls []string
	for _, n := range nodes {
		if n.Kind == graph.KindTrack {
			continue
		}
		if r.Claim(n.ImageRef) {
			urls = append(urls, n.ImageRef)
		}
	}
	return urls
}

// Resolve downloads url and caches its average colour. Errors are cached and returned; callers fall back to
// the default fill.
func (r *FillResolver) Resolve(ctx context.Context, url string) (string, error) {
	if c, ok := r.Lookup(url); ok {
		return c, nil
	}

	c, err := r.fetch(ctx, url)

	r.mu.Lock()
	delete(r.pending, url)
	r.entries[url] = fillEntry{color: c, err: err}
	r.mu.Unlock()

	if err != nil {
		r.logger.Warn("image fill unavailable", "url", url, "error", err)
		return "", err
	}
	r.logger.Debug("image fill resolved", "url", url, "color", c)
	return c, nil
}

// Store caches a colour for url without downloading it.
func (r *FillResolver) Store(url, c string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.pending, url)
	r.entries[url] = fillEntry{color: c}
}

func (r *FillResolver) fetch(ctx context.Context, url string) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create image request: %w", err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	img, err := imaging.Decode(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}
	return Hex(AverageColor(img)), nil
}

// AverageColor box-filters img down to a single pixel.
func AverageColor(img image.Image) color.NRGBA {
	px := imaging.Resize(img, 1, 1, imaging.Box)
	return px.NRGBAAt(0, 0)
}

// Hex formats c as #rrggbb.
func Hex(c color.NRGBA) string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}
