package render

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/desertthunder/playgraph/internal/graph"
)

func solidPNG(t *testing.T, w http.ResponseWriter, c color.NRGBA) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	for y := range 16 {
		for x := range 16 {
			img.SetNRGBA(x, y, c)
		}
	}
	w.Header().Set("Content-Type", "image/png")
	if err := png.Encode(w, img); err != nil {
		t.Errorf("failed to encode png: %v", err)
	}
}

func setupImageServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/red.png", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		solidPNG(t, w, color.NRGBA{R: 255, A: 255})
	})
	mux.HandleFunc("/garbage", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte("not an image"))
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.NotFound(w, r)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, &hits
}

func TestFillResolver(t *testing.T) {
	server, hits := setupImageServer(t)
	ctx := context.Background()

	t.Run("average colour", func(t *testing.T) {
		r := NewFillResolver(WithHTTPClient(server.Client()), WithFetchRate(0))
		got, err := r.Resolve(ctx, server.URL+"/red.png")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "#FF0000" {
			t.Errorf("expected #FF0000, got %s", got)
		}

		n := &graph.Node{ID: "a", Kind: graph.KindArtist, ImageRef: server.URL + "/red.png"}
		if fill := r.Fill(n); fill != "#FF0000" {
			t.Errorf("expected resolved fill, got %s", fill)
		}
	})

	t.Run("failures degrade to default fill", func(t *testing.T) {
		tests := []struct {
			name string
			path string
			kind graph.Kind
			want string
		}{
			{"undecodable", "/garbage", graph.KindArtist, DefaultArtistFill},
			{"not found", "/missing", graph.KindArtistBubble, DefaultArtistFill},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				r := NewFillResolver(WithHTTPClient(server.Client()), WithFetchRate(0))
				url := server.URL + tt.path
				if _, err := r.Resolve(ctx, url); err == nil {
					t.Error("expected an error")
				}
				if got := r.Fill(&graph.Node{Kind: tt.kind, ImageRef: url}); got != tt.want {
					t.Errorf("expected %s, got %s", tt.want, got)
				}
				if r.Claim(url) {
					t.Error("failed url should not be claimed again")
				}
			})
		}
	})

	t.Run("claims once", func(t *testing.T) {
		r := NewFillResolver(WithHTTPClient(server.Client()), WithFetchRate(0))
		nodes := []*graph.Node{
			{ID: "a", Kind: graph.KindArtist, ImageRef: server.URL + "/red.png"},
			{ID: "b", Kind: graph.KindArtistBubble, ImageRef: server.URL + "/red.png"},
			{ID: "c", Kind: graph.KindArtist},
			{ID: "t", Kind: graph.KindTrack, ImageRef: server.URL + "/red.png"},
		}

		missing := r.Missing(nodes)
		if len(missing) != 1 {
			t.Fatalf("expected one url to resolve, got %v", missing)
		}
		if again := r.Missing(nodes); len(again) != 0 {
			t.Errorf("in-flight urls should not be claimed again, got %v", again)
		}

		before := hits.Load()
		if _, err := r.Resolve(ctx, missing[0]); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := r.Resolve(ctx, missing[0]); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := hits.Load() - before; got != 1 {
			t.Errorf("expected a single download, got %d", got)
		}
	})

	t.Run("unresolved uses default", func(t *testing.T) {
		r := NewFillResolver()
		n := &graph.Node{Kind: graph.KindArtistBubble, ImageRef: "https://example.invalid/x.jpg"}
		if got := r.Fill(n); got != DefaultArtistFill {
			t.Errorf("expected default fill, got %s", got)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		r := NewFillResolver(WithHTTPClient(server.Client()))
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		if _, err := r.Resolve(cancelled, server.URL+"/red.png"); err == nil {
			t.Error("expected an error")
		}
	})
}

func TestAverageColor(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 200, G: 0, B: 100, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{R: 0, G: 200, B: 100, A: 255})

	got := AverageColor(img)
	for _, v := range []uint8{got.R, got.G, got.B} {
		if v < 99 || v > 101 {
			t.Errorf("expected roughly (100, 100, 100), got %v", got)
			break
		}
	}
}

func TestHex(t *testing.T) {
	if got := Hex(color.NRGBA{R: 100, G: 10, B: 255, A: 255}); got != "#640AFF" {
		t.Errorf("expected #640AFF, got %s", got)
	}
}
