package interaction

import (
	"errors"
	"testing"

	"github.com/desertthunder/playgraph/internal/force"
	"github.com/desertthunder/playgraph/internal/graph"
	"github.com/desertthunder/playgraph/internal/models"
	"github.com/desertthunder/playgraph/internal/shared"
)

func ref(id string) models.ArtistRef { return models.ArtistRef{ID: id, Name: id} }

// setupController builds t1{a1}, t2{a1,a2}, t3{a3} exploring a1 and a3, laid out on a line.
func setupController(t *testing.T, opts ...Option) (*Controller, *force.Scheduler) {
	t.Helper()

	snap := graph.NewBuilder(graph.DefaultGeometry(), nil).Build(graph.BuildInput{
		Tracks: []models.Track{
			{ID: "t1", Artists: []models.ArtistRef{ref("a1")}},
			{ID: "t2", Artists: []models.ArtistRef{ref("a1"), ref("a2")}},
			{ID: "t3", Artists: []models.ArtistRef{ref("a3")}},
		},
		Artists:  []models.Artist{{ID: "a1"}, {ID: "a2"}, {ID: "a3"}},
		Explored: []string{"a1", "a3"},
		Width:    1000,
		Height:   800,
	})
	for i, n := range snap.Nodes {
		n.X, n.Y = float64(i)*200, 0
	}

	sim := force.New(snap.Nodes)
	sim.SetAlpha(0)
	sched := force.NewScheduler(sim, nil)
	t.Cleanup(sched.Stop)
	return NewController(snap, sched, opts...), sched
}

func TestControllerDrag(t *testing.T) {
	t.Run("pins and reheats", func(t *testing.T) {
		c, sched := setupController(t)
		n := c.Snapshot().Node("a1")
		startX, startY := n.X, n.Y

		if err := c.DragStart("a1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n.Pinned() {
			t.Error("drag start should not touch the node before the next frame")
		}
		sched.Frame()

		if !n.Pinned() || *n.FX != startX || *n.FY != startY {
			t.Errorf("expected pin at (%v, %v), got %v %v", startX, startY, n.FX, n.FY)
		}
		if got := sched.Simulation().AlphaTarget(); got != DefaultDragAlphaTarget {
			t.Errorf("expected alpha target %v, got %v", DefaultDragAlphaTarget, got)
		}
	})

	t.Run("move follows the pointer", func(t *testing.T) {
		c, sched := setupController(t)
		_ = c.DragStart("t2")
		c.DragMove(123, -45)
		sched.Frame()

		n := c.Snapshot().Node("t2")
		if n.X != 123 || n.Y != -45 || n.VX != 0 || n.VY != 0 {
			t.Errorf("expected node held at (123, -45) at rest, got (%v, %v) v=(%v, %v)", n.X, n.Y, n.VX, n.VY)
		}

		c.DragMove(10, 10)
		sched.Frame()
		if n.X != 10 || n.Y != 10 {
			t.Errorf("expected node at (10, 10), got (%v, %v)", n.X, n.Y)
		}
	})

	t.Run("end unpins and cools", func(t *testing.T) {
		c, sched := setupController(t)
		_ = c.DragStart("a2")
		sched.Frame()
		c.DragEnd()
		sched.Frame()

		if c.Snapshot().Node("a2").Pinned() {
			t.Error("expected node to be released")
		}
		if got := sched.Simulation().AlphaTarget(); got != 0 {
			t.Errorf("expected alpha target 0, got %v", got)
		}
		if c.Dragging() != "" {
			t.Errorf("expected no active drag, got %q", c.Dragging())
		}
	})

	t.Run("move without drag is ignored", func(t *testing.T) {
		c, sched := setupController(t)
		c.DragMove(1, 1)
		c.DragEnd()
		sched.Frame()
		for _, n := range c.Snapshot().Nodes {
			if n.Pinned() {
				t.Errorf("node %s should not be pinned", n.ID)
			}
		}
	})

	t.Run("unknown node", func(t *testing.T) {
		c, _ := setupController(t)
		if err := c.DragStart("nope"); !errors.Is(err, shared.ErrUnknownNode) {
			t.Errorf("expected ErrUnknownNode, got %v", err)
		}
	})

	t.Run("starting a second drag releases the first", func(t *testing.T) {
		c, sched := setupController(t)
		_ = c.DragStart("a1")
		_ = c.DragStart("a2")
		sched.Frame()

		if c.Snapshot().Node("a1").Pinned() {
			t.Error("first node should be released")
		}
		if !c.Snapshot().Node("a2").Pinned() {
			t.Error("second node should be pinned")
		}
	})

	t.Run("custom alpha target", func(t *testing.T) {
		c, sched := setupController(t, WithDragAlphaTarget(0.5))
		_ = c.DragStart("a1")
		sched.Frame()
		if got := sched.Simulation().AlphaTarget(); got != 0.5 {
			t.Errorf("expected alpha target 0.5, got %v", got)
		}
	})
}

func TestControllerHover(t *testing.T) {
	c, _ := setupController(t)

	t.Run("no hover", func(t *testing.T) {
		for _, n := range c.Snapshot().Nodes {
			if s := c.NodeState(n.ID); s.Dimmed || s.Highlighted {
				t.Errorf("node %s should be drawn normally, got %+v", n.ID, s)
			}
		}
		if got := c.EdgeOpacity(graph.Edge{Source: "t1", Target: "a1"}); got != BaseEdgeOpacity {
			t.Errorf("expected base opacity, got %v", got)
		}
	})

	t.Run("neighbourhood stays lit", func(t *testing.T) {
		c.HoverEnter("a1")

		tests := []struct {
			id   string
			want NodeState
		}{
			{"a1", NodeState{Highlighted: true}},
			{"t1", NodeState{}},
			{"t2", NodeState{}},
			{"a2", NodeState{Dimmed: true}},
			{"t3", NodeState{Dimmed: true}},
			{"a3", NodeState{Dimmed: true}},
		}
		for _, tt := range tests {
			t.Run(tt.id, func(t *testing.T) {
				if got := c.NodeState(tt.id); got != tt.want {
					t.Errorf("expected %+v, got %+v", tt.want, got)
				}
			})
		}

		if got := c.EdgeOpacity(graph.Edge{Source: "t2", Target: "a1"}); got != 1 {
			t.Errorf("incident edge should be opaque, got %v", got)
		}
		if got := c.EdgeOpacity(graph.Edge{Source: "t2", Target: "a2"}); got != DimmedEdgeOpacity {
			t.Errorf("other edge should fade, got %v", got)
		}
	})

	t.Run("leave clears", func(t *testing.T) {
		c.HoverLeave()
		if c.Hovered() != "" || c.NodeState("a3").Dimmed {
			t.Error("expected hover cleared")
		}
	})

	t.Run("unknown node clears", func(t *testing.T) {
		c.HoverEnter("a1")
		c.HoverEnter("ghost")
		if c.Hovered() != "" {
			t.Errorf("expected no hover, got %q", c.Hovered())
		}
	})
}

func TestControllerClick(t *testing.T) {
	var selected []string
	c, _ := setupController(t, WithArtistSelected(func(id string) { selected = append(selected, id) }))

	if !c.Click("a2") {
		t.Error("artist click should fire")
	}
	if c.Click("t1") {
		t.Error("track click should not fire")
	}
	if c.Click("ghost") {
		t.Error("unknown click should not fire")
	}
	if len(selected) != 1 || selected[0] != "a2" {
		t.Errorf("expected [a2], got %v", selected)
	}

	c.SetOnArtistSelected(nil)
	if c.Click("a1") {
		t.Error("click without callback should not fire")
	}
}

func TestControllerHitTest(t *testing.T) {
	c, _ := setupController(t)
	target := c.Snapshot().Node("a2")

	t.Run("identity", func(t *testing.T) {
		if got := c.HitTest(target.X+1, target.Y-1); got == nil || got.ID != "a2" {
			t.Errorf("expected a2, got %v", got)
		}
		if got := c.HitTest(target.X+100, target.Y+100); got != nil {
			t.Errorf("expected miss, got %s", got.ID)
		}
	})

	t.Run("through the viewport", func(t *testing.T) {
		c.Viewport().ZoomAt(2, 0, 0)
		c.Viewport().Pan(50, 20)
		sx, sy := c.Viewport().ToScreen(target.X, target.Y)
		if got := c.HitTest(sx, sy); got == nil || got.ID != "a2" {
			t.Errorf("expected a2, got %v", got)
		}
		c.Viewport().Reset()
	})

	t.Run("slop", func(t *testing.T) {
		wide, _ := setupController(t, WithHitSlop(50))
		n := wide.Snapshot().Node("a2")
		if got := wide.HitTest(n.X+n.Radius+20, n.Y); got == nil || got.ID != "a2" {
			t.Errorf("expected slop hit on a2, got %v", got)
		}
	})
}

func TestControllerReconfigure(t *testing.T) {
	c, _ := setupController(t)
	_ = c.DragStart("a1")
	c.HoverEnter("a3")

	next := graph.NewBuilder(graph.DefaultGeometry(), nil).Build(graph.BuildInput{
		Tracks:   []models.Track{{ID: "t1", Artists: []models.ArtistRef{ref("a1")}}},
		Artists:  []models.Artist{{ID: "a1"}},
		Explored: []string{"a1"},
		Width:    1000,
		Height:   800,
	})
	c.Reconfigure(next)

	if c.Dragging() != "" {
		t.Error("drag should be dropped")
	}
	if c.Hovered() != "" {
		t.Error("hover on a removed node should clear")
	}
	if c.NodeState("t1").Dimmed {
		t.Error("no hover means nothing dimmed")
	}
}
