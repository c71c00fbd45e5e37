package render

import (
	"testing"

	"github.com/desertthunder/playgraph/internal/force"
	"github.com/desertthunder/playgraph/internal/graph"
	"github.com/desertthunder/playgraph/internal/interaction"
	"github.com/desertthunder/playgraph/internal/models"
)

type hoverStub struct{ hovered string }

func (h hoverStub) NodeState(id string) interaction.NodeState {
	if id == h.hovered {
		return interaction.NodeState{Highlighted: true}
	}
	return interaction.NodeState{Dimmed: true}
}

func (h hoverStub) EdgeOpacity(e graph.Edge) float64 {
	if e.Source == h.hovered || e.Target == h.hovered {
		return 1
	}
	return interaction.DimmedEdgeOpacity
}

func setupSimulation(t *testing.T) *force.Simulation {
	t.Helper()
	snap := graph.NewBuilder(graph.DefaultGeometry(), nil).Build(graph.BuildInput{
		Tracks: []models.Track{
			{ID: "t1", Name: "Song", Artists: []models.ArtistRef{{ID: "a1", Name: "Band"}}},
		},
		Artists: []models.Artist{
			{ID: "a1", Name: "Band", Images: []models.Image{{URL: "https://img/a1"}}},
		},
		Explored: []string{"a1"},
		Focused:  "a1",
		Width:    1000,
		Height:   800,
	})
	snap.Node("t1").X, snap.Node("t1").Y = 100, 50
	snap.Node("a1").X, snap.Node("a1").Y = 300, 250
	return force.FromSnapshot(snap)
}

func findView(f Frame, id string) *NodeView {
	for i := range f.Nodes {
		if f.Nodes[i].ID == id {
			return &f.Nodes[i]
		}
	}
	return nil
}

func TestAdapterFrame(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		f := NewAdapter(nil, nil, nil).Frame(setupSimulation(t))

		if len(f.Nodes) != 2 || len(f.Edges) != 1 {
			t.Fatalf("expected 2 nodes and 1 edge, got %d and %d", len(f.Nodes), len(f.Edges))
		}
		e := f.Edges[0]
		if e.X1 != 100 || e.Y1 != 50 || e.X2 != 300 || e.Y2 != 250 {
			t.Errorf("unexpected edge %+v", e)
		}
		if e.Opacity != interaction.BaseEdgeOpacity {
			t.Errorf("expected base opacity, got %v", e.Opacity)
		}

		track, artist := findView(f, "t1"), findView(f, "a1")
		if track.Fill != DefaultTrackFill || artist.Fill != DefaultArtistFill {
			t.Errorf("expected default fills, got %q and %q", track.Fill, artist.Fill)
		}
		if track.LabelOpacity != TrackLabelOpacity || artist.LabelOpacity != 1 {
			t.Errorf("unexpected label opacities %v, %v", track.LabelOpacity, artist.LabelOpacity)
		}
		if !artist.Focused || track.Focused {
			t.Error("expected only the artist focused")
		}
		if track.KindName != "track" || artist.KindName != "artist" {
			t.Errorf("unexpected kinds %q, %q", track.KindName, artist.KindName)
		}
	})

	t.Run("viewport transform", func(t *testing.T) {
		view := interaction.NewViewport(interaction.GraphMinScale, interaction.GraphMaxScale)
		view.ZoomAt(2, 0, 0)
		view.Pan(10, 20)

		sim := setupSimulation(t)
		f := NewAdapter(nil, nil, view).Frame(sim)

		a := findView(f, "a1")
		if a.X != 610 || a.Y != 520 {
			t.Errorf("expected (610, 520), got (%v, %v)", a.X, a.Y)
		}
		if a.Radius != sim.Node("a1").Radius*2 {
			t.Errorf("expected radius scaled by 2, got %v", a.Radius)
		}
		if f.Scale != 2 {
			t.Errorf("expected frame scale 2, got %v", f.Scale)
		}
	})

	t.Run("hover styling", func(t *testing.T) {
		f := NewAdapter(hoverStub{hovered: "a1"}, nil, nil).Frame(setupSimulation(t))

		if a := findView(f, "a1"); !a.Highlighted || a.Dimmed {
			t.Errorf("expected a1 highlighted, got %+v", a)
		}
		if tr := findView(f, "t1"); !tr.Dimmed {
			t.Errorf("expected t1 dimmed, got %+v", tr)
		}
		if f.Edges[0].Opacity != 1 {
			t.Errorf("expected incident edge opaque, got %v", f.Edges[0].Opacity)
		}
	})

	t.Run("resolved image fill", func(t *testing.T) {
		fills := NewFillResolver()
		fills.Store("https://img/a1", "#112233")

		f := NewAdapter(nil, fills, nil).Frame(setupSimulation(t))
		if got := findView(f, "a1").Fill; got != "#112233" {
			t.Errorf("expected image fill, got %q", got)
		}
		if got := findView(f, "t1").Fill; got != DefaultTrackFill {
			t.Errorf("tracks never use image fills, got %q", got)
		}
	})
}
