package graph

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/playgraph/internal/models"
	"github.com/desertthunder/playgraph/internal/shared"
)

// Image candidates: graph nodes prefer the smallest of the usual three sizes, bubbles the largest.
const (
	graphImageIndex  = 2
	bubbleImageIndex = 0
)

// Geometry holds node sizing constants. All lengths are world units.
type Geometry struct {
	NarrowBreakpoint float64
	NarrowScale      float64
	ArtistRadius     float64
	FocusedEmphasis  float64
	TrackRadius      float64
	BubbleSlope      float64
	BubbleOffset     float64
	BubbleMin        float64
	BubbleMax        float64
	BubbleNarrow     float64
}

// DefaultGeometry returns the stock sizing.
func DefaultGeometry() Geometry {
	return Geometry{
		NarrowBreakpoint: 768,
		NarrowScale:      0.7,
		ArtistRadius:     30,
		FocusedEmphasis:  2.0,
		TrackRadius:      8,
		BubbleSlope:      15,
		BubbleOffset:     35,
		BubbleMin:        50,
		BubbleMax:        150,
		BubbleNarrow:     0.6,
	}
}

// GeometryFromConfig copies the [graph] config section.
func GeometryFromConfig(c shared.GraphConfig) Geometry {
	return Geometry{
		NarrowBreakpoint: c.NarrowBreakpoint,
		NarrowScale:      c.NarrowScale,
		ArtistRadius:     c.ArtistRadius,
		FocusedEmphasis:  c.FocusedEmphasis,
		TrackRadius:      c.TrackRadius,
		BubbleSlope:      c.BubbleSlope,
		BubbleOffset:     c.BubbleOffset,
		BubbleMin:        c.BubbleMin,
		BubbleMax:        c.BubbleMax,
		BubbleNarrow:     c.BubbleNarrow,
	}
}

// Narrow reports whether width is a narrow viewport.
func (g Geometry) Narrow(width float64) bool {
	return width < g.NarrowBreakpoint
}

// ArtistNodeRadius is the relationship-graph radius of an artist node.
func (g Geometry) ArtistNodeRadius(focused, narrow bool) float64 {
	r := g.ArtistRadius
	if focused {
		r *= g.FocusedEmphasis
	}
	if narrow {
		r *= g.NarrowScale
	}
	return r
}

// TrackNodeRadius is the relationship-graph radius of a track node.
func (g Geometry) TrackNodeRadius(narrow bool) float64 {
	if narrow {
		return g.TrackRadius * g.NarrowScale
	}
	return g.TrackRadius
}

// BubbleRadius sizes an overview bubble for an artist appearing on count tracks.
// It is non-decreasing in count.
func (g Geometry) BubbleRadius(count int, narrow bool) float64 {
	r := clamp(float64(count)*g.BubbleSlope+g.BubbleOffset, g.BubbleMin, g.BubbleMax)
	if narrow {
		r *= g.BubbleNarrow
	}
	return r
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(v, hi))
}

// BuildInput is everything a snapshot is derived from.
type BuildInput struct {
	Tracks   []models.Track
	Artists  []models.Artist
	Explored []string
	Focused  string
	Width    float64
	Height   float64
	// Previous is the snapshot being superseded; its nodes donate positions and velocities.
	Previous *Snapshot
}

// Builder turns catalog records into snapshots.
type Builder struct {
	geo    Geometry
	logger *log.Logger
}

// NewBuilder creates a Builder. A nil logger discards output.
func NewBuilder(geo Geometry, logger *log.Logger) *Builder {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Builder{geo: geo, logger: logger}
}

// Geometry returns the builder's sizing constants.
func (b *Builder) Geometry() Geometry {
	return b.geo
}

// Build produces the relationship graph.
//
// A track qualifies when any of its performers is explored, and then brings all of its performers
// along, explored or not. Tracks without an id and performers without an id are skipped; a performer
// listed twice on one track yields one edge.
func (b *Builder) Build(in BuildInput) *Snapshot {
	s := newSnapshot(ModeRelationship, in.Width, in.Height)
	if len(in.Tracks) == 0 || len(in.Artists) == 0 {
		return s
	}

	explored := make(map[string]bool, len(in.Explored))
	for _, id := range in.Explored {
		explored[id] = true
	}
	enriched := indexArtists(in.Artists)
	narrow := b.geo.Narrow(in.Width)
	edges := make(map[Edge]bool)
	skipped := 0

	for _, t := range in.Tracks {
		if t.ID == "" {
			skipped++
			continue
		}
		performers := distinctPerformers(t.Artists)
		if !anyExplored(performers, explored) {
			continue
		}

		s.add(&Node{ID: t.ID, Kind: KindTrack, Label: t.Name, Radius: b.geo.TrackNodeRadius(narrow)})
		for _, p := range performers {
			focused := p.ID == in.Focused
			n := &Node{
				ID:      p.ID,
				Kind:    KindArtist,
				Label:   p.Name,
				Radius:  b.geo.ArtistNodeRadius(focused, narrow),
				Focused: focused,
			}
			if a, ok := enriched[p.ID]; ok {
				n.Label = a.Name
				n.ImageRef = a.ImageAt(graphImageIndex)
			}
			s.add(n)

			e := Edge{Source: t.ID, Target: p.ID}
			if !edges[e] {
				edges[e] = true
				s.Edges = append(s.Edges, e)
			}
		}
	}

	if skipped > 0 {
		b.logger.Debug("skipped tracks without id", "count", skipped)
	}
	carryOver(s, in.Previous)
	return s
}

// BuildBubbles produces the artist overview: one bubble per enriched artist, no edges.
func (b *Builder) BuildBubbles(in BuildInput) *Snapshot {
	s := newSnapshot(ModeBubbles, in.Width, in.Height)
	if len(in.Tracks) == 0 || len(in.Artists) == 0 {
		return s
	}

	counts := (&models.Catalog{Tracks: in.Tracks}).TrackCounts()
	narrow := b.geo.Narrow(in.Width)

	for _, a := range in.Artists {
		if a.ID == "" {
			continue
		}
		s.add(&Node{
			ID:         a.ID,
			Kind:       KindArtistBubble,
			Label:      a.Name,
			ImageRef:   a.ImageAt(bubbleImageIndex),
			TrackCount: counts[a.ID],
			Radius:     b.geo.BubbleRadius(counts[a.ID], narrow),
			Focused:    a.ID == in.Focused,
		})
	}

	carryOver(s, in.Previous)
	return s
}

// carryOver copies position and velocity from prev for shared ids and seeds the rest at the center.
func carryOver(s, prev *Snapshot) {
	cx, cy := s.Center()
	for _, n := range s.Nodes {
		if old := prev.Node(n.ID); old != nil {
			n.X, n.Y, n.VX, n.VY = old.X, old.Y, old.VX, old.VY
			continue
		}
		n.X, n.Y = cx, cy
	}
}

func indexArtists(artists []models.Artist) map[string]models.Artist {
	m := make(map[string]models.Artist, len(artists))
	for _, a := range artists {
		if a.ID != "" {
			m[a.ID] = a
		}
	}
	return m
}

func distinctPerformers(refs []models.ArtistRef) []models.ArtistRef {
	seen := make(map[string]bool, len(refs))
	out := make([]models.ArtistRef, 0, len(refs))
	for _, r := range refs {
		if r.ID == "" || seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		out = append(out, r)
	}
	return out
}

func anyExplored(performers []models.ArtistRef, explored map[string]bool) bool {
	for _, p := range performers {
		if explored[p.ID] {
			return true
		}
	}
	return false
}
