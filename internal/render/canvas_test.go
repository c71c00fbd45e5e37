package render

import (
	"math"
	"strings"
	"testing"

	"github.com/desertthunder/playgraph/internal/graph"
)

func TestCanvasCoordinates(t *testing.T) {
	c := NewCanvas(80, 24, 10, 20)

	if w, h := c.ScreenSize(); w != 800 || h != 480 {
		t.Errorf("expected 800x480, got %vx%v", w, h)
	}
	if x, y := c.CellToScreen(3, 2); x != 35 || y != 50 {
		t.Errorf("expected (35, 50), got (%v, %v)", x, y)
	}
	if col, row := c.ScreenToCell(35, 50); col != 3 || row != 2 {
		t.Errorf("expected (3, 2), got (%d, %d)", col, row)
	}
	if col, row := c.ScreenToCell(-1, -1); col != -1 || row != -1 {
		t.Errorf("expected (-1, -1), got (%d, %d)", col, row)
	}
}

func TestCanvasDraw(t *testing.T) {
	t.Run("edge endpoints", func(t *testing.T) {
		c := NewCanvas(20, 10, 10, 20)
		c.Draw(Frame{Edges: []EdgeView{{X1: 5, Y1: 10, X2: 195, Y2: 190, Opacity: 1}}})

		if c.At(0, 0) != edgeRune || c.At(19, 9) != edgeRune {
			t.Errorf("expected edge at both ends, got %q and %q", c.At(0, 0), c.At(19, 9))
		}
		if c.At(19, 0) != ' ' {
			t.Errorf("expected blank corner, got %q", c.At(19, 0))
		}
	})

	t.Run("edge clipped to grid", func(t *testing.T) {
		c := NewCanvas(10, 5, 10, 20)
		c.Draw(Frame{Edges: []EdgeView{{X1: -1e6, Y1: 50, X2: 1e6, Y2: 50, Opacity: 1}}})

		for col := range 10 {
			if c.At(col, 2) != edgeRune {
				t.Errorf("expected edge across row 2 at col %d, got %q", col, c.At(col, 2))
			}
		}

		c.Draw(Frame{Edges: []EdgeView{{X1: -100, Y1: -100, X2: -50, Y2: -10, Opacity: 1}}})
		for row := range 5 {
			for col := range 10 {
				if c.At(col, row) != ' ' {
					t.Fatalf("expected empty canvas, got %q at (%d, %d)", c.At(col, row), col, row)
				}
			}
		}
	})

	t.Run("small nodes are glyphs", func(t *testing.T) {
		c := NewCanvas(20, 10, 10, 20)
		c.Draw(Frame{Nodes: []NodeView{
			{ID: "t", Kind: graph.KindTrack, X: 25, Y: 30, Radius: 5, Fill: DefaultTrackFill},
			{ID: "a", Kind: graph.KindArtist, X: 105, Y: 30, Radius: 5, Fill: DefaultArtistFill},
		}})

		if c.At(2, 1) != trackRune {
			t.Errorf("expected track glyph, got %q", c.At(2, 1))
		}
		if c.At(10, 1) != dotRune {
			t.Errorf("expected artist dot, got %q", c.At(10, 1))
		}
	})

	t.Run("large nodes are discs", func(t *testing.T) {
		c := NewCanvas(40, 20, 10, 20)
		c.Draw(Frame{Nodes: []NodeView{{ID: "a", Kind: graph.KindArtist, X: 200, Y: 200, Radius: 60, Fill: "#112233"}}})

		if c.At(20, 10) != discRune {
			t.Errorf("expected disc at center, got %q", c.At(20, 10))
		}
		if c.At(20, 0) != ' ' || c.At(0, 10) != ' ' {
			t.Error("disc should not reach the edges")
		}
	})

	t.Run("label beneath node", func(t *testing.T) {
		c := NewCanvas(40, 20, 10, 20)
		c.Draw(Frame{Nodes: []NodeView{{ID: "a", Kind: graph.KindArtist, X: 200, Y: 100, Radius: 5, Label: "Band", LabelOpacity: 1}}})

		var got strings.Builder
		for col := 18; col < 22; col++ {
			got.WriteRune(c.At(col, 6))
		}
		if got.String() != "Band" {
			t.Errorf("expected label on row 6, got %q", got.String())
		}
	})

	t.Run("far off-screen nodes are skipped", func(t *testing.T) {
		c := NewCanvas(40, 20, 10, 20)
		c.Draw(Frame{Nodes: []NodeView{
			{ID: "a", Kind: graph.KindArtist, X: 1e300, Y: 200, Radius: 60, Label: "Far", LabelOpacity: 1},
			{ID: "b", Kind: graph.KindArtist, X: 200, Y: -1e300, Radius: 60, Label: "Up", LabelOpacity: 1},
			{ID: "c", Kind: graph.KindTrack, X: math.Inf(-1), Y: 100, Radius: 5, Label: "Gone", LabelOpacity: 1},
			{ID: "d", Kind: graph.KindTrack, X: 100, Y: 100, Radius: math.Inf(1)},
		}})

		for row := range 20 {
			for col := range 40 {
				if c.At(col, row) != ' ' {
					t.Fatalf("expected empty canvas, got %q at (%d, %d)", c.At(col, row), col, row)
				}
			}
		}
	})

	t.Run("nodes straddling the edge are drawn", func(t *testing.T) {
		c := NewCanvas(40, 20, 10, 20)
		c.Draw(Frame{Nodes: []NodeView{{ID: "a", Kind: graph.KindArtist, X: -30, Y: 200, Radius: 60, Fill: "#112233"}}})

		if c.At(0, 10) != discRune {
			t.Errorf("expected disc cells at the left edge, got %q", c.At(0, 10))
		}
	})

	t.Run("redraw clears", func(t *testing.T) {
		c := NewCanvas(10, 5, 10, 20)
		c.Draw(Frame{Nodes: []NodeView{{ID: "a", X: 55, Y: 50, Radius: 1}}})
		c.Draw(Frame{})
		if c.At(5, 2) != ' ' {
			t.Errorf("expected blank after redraw, got %q", c.At(5, 2))
		}
	})

	t.Run("string has one line per row", func(t *testing.T) {
		c := NewCanvas(12, 4, 10, 20)
		c.Draw(Frame{Nodes: []NodeView{{ID: "a", X: 60, Y: 20, Radius: 1, Label: "x", LabelOpacity: 1}}})
		lines := strings.Split(c.String(), "\n")
		if len(lines) != 4 {
			t.Errorf("expected 4 lines, got %d", len(lines))
		}
	})
}

func TestShade(t *testing.T) {
	tests := []struct {
		in    string
		alpha float64
		want  string
	}{
		{"#FFFFFF", 1, "#FFFFFF"},
		{"#FFFFFF", 0.2, "#333333"},
		{"#7d56f4", 0, "#000000"},
		{"#7D56F4", 2, "#7D56F4"},
		{"red", 0.5, "red"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Shade(tt.in, tt.alpha); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}
