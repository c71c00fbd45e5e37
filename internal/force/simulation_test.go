package force

import (
	"math"
	"testing"

	"github.com/desertthunder/playgraph/internal/graph"
	"github.com/desertthunder/playgraph/internal/models"
)

func node(id string, x, y, r float64) *graph.Node {
	return &graph.Node{ID: id, X: x, Y: y, Radius: r}
}

func dist(a, b *graph.Node) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

func scenarioSnapshot(width, height float64) *graph.Snapshot {
	b := graph.NewBuilder(graph.DefaultGeometry(), nil)
	return b.Build(graph.BuildInput{
		Tracks: []models.Track{
			{ID: "t1", Artists: []models.ArtistRef{{ID: "a1"}}},
			{ID: "t2", Artists: []models.ArtistRef{{ID: "a1"}, {ID: "a2"}}},
			{ID: "t3", Artists: []models.ArtistRef{{ID: "a2"}, {ID: "a3"}}},
		},
		Artists:  []models.Artist{{ID: "a1"}, {ID: "a2"}, {ID: "a3"}},
		Explored: []string{"a1", "a2"},
		Width:    width,
		Height:   height,
	})
}

func TestSimulation(t *testing.T) {
	t.Run("alpha decays toward target", func(t *testing.T) {
		sim := New([]*graph.Node{node("a", 0, 0, 1)})
		decay := 1 - math.Pow(0.001, 1.0/300)

		sim.Step()
		if want := 1 - decay; math.Abs(sim.Alpha()-want) > 1e-12 {
			t.Errorf("expected alpha %v after one step, got %v", want, sim.Alpha())
		}

		ran := sim.Tick(1000)
		if ran < 290 || ran > 310 {
			t.Errorf("expected to settle after about 300 steps, ran %d more", ran)
		}
		if !sim.Settled() {
			t.Error("expected simulation to be settled")
		}
		if sim.Step() {
			t.Error("settled simulation should not run forces")
		}
	})

	t.Run("reheat resumes a settled simulation", func(t *testing.T) {
		sim := New([]*graph.Node{node("a", 0, 0, 1)})
		sim.SetAlpha(0)
		if sim.Step() {
			t.Fatal("expected settled simulation")
		}

		sim.Reheat(0.3)
		if !sim.Step() {
			t.Fatal("reheated simulation should step")
		}
		before := sim.Alpha()
		sim.Tick(50)
		if sim.Alpha() <= before {
			t.Errorf("alpha should climb toward target, %v -> %v", before, sim.Alpha())
		}

		sim.Cool()
		sim.Tick(5000)
		if !sim.Settled() {
			t.Error("cooled simulation should settle again")
		}
	})

	t.Run("pinned node holds its pin", func(t *testing.T) {
		snap := scenarioSnapshot(1000, 800)
		sim := Relationship(snap, false, RelationshipParams())

		a1 := sim.Node("a1")
		a1.Pin(123.5, -42.25)
		for i := range 20 {
			sim.Step()
			if a1.X != 123.5 || a1.Y != -42.25 {
				t.Fatalf("step %d: pinned node moved to (%v,%v)", i, a1.X, a1.Y)
			}
			if a1.VX != 0 || a1.VY != 0 {
				t.Fatalf("step %d: pinned node has velocity (%v,%v)", i, a1.VX, a1.VY)
			}
		}

		a1.Pin(300, 300)
		sim.SetAlpha(0)
		sim.Step()
		if a1.X != 300 || a1.Y != 300 {
			t.Errorf("settled simulation should still follow the pin, got (%v,%v)", a1.X, a1.Y)
		}
	})

	t.Run("pinned node still acts on others", func(t *testing.T) {
		anchor := node("anchor", 0, 0, 1)
		free := node("free", 10, 0, 1)
		anchor.Pin(0, 0)
		sim := New([]*graph.Node{anchor, free}).AddForce(ForceCharge, NewManyBody(-100))

		sim.Step()
		if free.X <= 10 {
			t.Errorf("free node should be pushed away from the pinned anchor, x=%v", free.X)
		}
	})

	t.Run("stop is idempotent", func(t *testing.T) {
		snap := scenarioSnapshot(1000, 800)
		sim := Relationship(snap, false, RelationshipParams())
		sim.Tick(5)

		positions := make(map[string][2]float64)
		for _, n := range sim.Nodes() {
			positions[n.ID] = [2]float64{n.X, n.Y}
		}

		sim.Stop()
		sim.Stop()
		sim.Reheat(0.3)
		if sim.Step() || sim.Tick(10) != 0 {
			t.Error("stopped simulation should not step")
		}
		for _, n := range sim.Nodes() {
			if p := positions[n.ID]; n.X != p[0] || n.Y != p[1] {
				t.Errorf("node %s moved after stop", n.ID)
			}
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		run := func() []*graph.Node {
			sim := Relationship(scenarioSnapshot(1000, 800), false, RelationshipParams(), WithSeed(7))
			sim.Tick(100)
			return sim.Nodes()
		}
		a, b := run(), run()
		for i := range a {
			if a[i].X != b[i].X || a[i].Y != b[i].Y {
				t.Fatalf("node %s diverged: (%v,%v) vs (%v,%v)", a[i].ID, a[i].X, a[i].Y, b[i].X, b[i].Y)
			}
		}
	})

	t.Run("relationship layout spreads from the center", func(t *testing.T) {
		sim := Relationship(scenarioSnapshot(1000, 800), false, RelationshipParams())
		sim.Tick(300)

		nodes := sim.Nodes()
		var mx, my float64
		for _, n := range nodes {
			if math.IsNaN(n.X) || math.IsNaN(n.Y) || math.IsInf(n.X, 0) || math.IsInf(n.Y, 0) {
				t.Fatalf("node %s has non-finite position", n.ID)
			}
			mx += n.X
			my += n.Y
		}
		mx /= float64(len(nodes))
		my /= float64(len(nodes))
		if math.Abs(mx-500) > 1 || math.Abs(my-400) > 1 {
			t.Errorf("expected layout centered on (500,400), mean (%v,%v)", mx, my)
		}
		if d := dist(sim.Node("a1"), sim.Node("a2")); d < 60 {
			t.Errorf("artists should be pushed apart, distance %v", d)
		}
	})

	t.Run("Find", func(t *testing.T) {
		sim := New([]*graph.Node{node("big", 0, 0, 10), node("small", 4, 0, 3)})
		if n := sim.Find(4, 1); n == nil || n.ID != "small" {
			t.Errorf("expected nearest containing node small, got %v", n)
		}
		if n := sim.Find(-9, 0); n == nil || n.ID != "big" {
			t.Errorf("expected big, got %v", n)
		}
		if n := sim.Find(50, 50); n != nil {
			t.Errorf("expected no node, got %s", n.ID)
		}
	})
}

func TestForces(t *testing.T) {
	t.Run("Center", func(t *testing.T) {
		nodes := []*graph.Node{node("a", 0, 0, 1), node("b", 10, 20, 1)}
		f := NewCenter(100, 100)
		f.Initialize(nodes, nil, nil)
		f.Apply(1)

		mx, my := (nodes[0].X+nodes[1].X)/2, (nodes[0].Y+nodes[1].Y)/2
		if mx != 100 || my != 100 {
			t.Errorf("expected mean (100,100), got (%v,%v)", mx, my)
		}
		if nodes[1].X-nodes[0].X != 10 {
			t.Error("centering should preserve relative positions")
		}
	})

	t.Run("Position", func(t *testing.T) {
		n := node("a", 0, 50, 1)
		f := NewPosition(AxisX, 100)
		f.Strength = 0.5
		f.Initialize([]*graph.Node{n}, nil, nil)
		f.Apply(0.5)

		if n.VX != 25 || n.VY != 0 {
			t.Errorf("expected velocity (25,0), got (%v,%v)", n.VX, n.VY)
		}
	})

	t.Run("ManyBody", func(t *testing.T) {
		tc := []struct {
			name     string
			strength float64
			apart    bool
		}{
			{name: "repels", strength: -30, apart: true},
			{name: "attracts", strength: 30, apart: false},
		}
		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				a, b := node("a", 0, 0, 1), node("b", 10, 0, 1)
				sim := New([]*graph.Node{a, b}).AddForce(ForceCharge, NewManyBody(tt.strength))
				sim.Step()

				d := dist(a, b)
				if tt.apart && d <= 10 {
					t.Errorf("expected nodes to move apart, distance %v", d)
				}
				if !tt.apart && d >= 10 {
					t.Errorf("expected nodes to move together, distance %v", d)
				}
			})
		}
	})

	t.Run("ManyBody separates coincident nodes", func(t *testing.T) {
		a, b := node("a", 5, 5, 1), node("b", 5, 5, 1)
		sim := New([]*graph.Node{a, b}).AddForce(ForceCharge, NewManyBody(-30))
		sim.Step()
		if a.X == b.X && a.Y == b.Y {
			t.Error("coincident nodes should be jiggled apart")
		}
	})

	t.Run("Collide", func(t *testing.T) {
		a, b := node("a", 0, 0, 10), node("b", 5, 0, 10)
		sim := New([]*graph.Node{a, b}).AddForce(ForceCollide, NewCollide(2))
		for range 50 {
			sim.Step()
		}
		if d := dist(a, b); d < 23 {
			t.Errorf("expected separation near 24, got %v", d)
		}
	})

	t.Run("Collide moves smaller node more", func(t *testing.T) {
		big, small := node("big", 0, 0, 20), node("small", 10, 0, 5)
		f := NewCollide(0)
		f.Initialize([]*graph.Node{big, small}, nil, func() float64 { return 0 })
		f.Apply(1)
		if math.Abs(small.VX) <= math.Abs(big.VX) {
			t.Errorf("small node should take more of the correction: big %v small %v", big.VX, small.VX)
		}
	})

	t.Run("Link", func(t *testing.T) {
		a, b := node("a", 0, 0, 1), node("b", 300, 0, 1)
		sim := New([]*graph.Node{a, b}).AddForce(ForceLink, NewLink([]graph.Edge{{Source: "a", Target: "b"}}, 100))
		for range 300 {
			sim.Step()
		}
		if d := dist(a, b); math.Abs(d-100) > 5 {
			t.Errorf("expected rest distance 100, got %v", d)
		}
	})

	t.Run("Link ignores dangling edges", func(t *testing.T) {
		a := node("a", 0, 0, 1)
		l := NewLink([]graph.Edge{{Source: "a", Target: "ghost"}}, 50)
		sim := New([]*graph.Node{a}).AddForce(ForceLink, l)
		sim.Step()
		if len(l.links) != 0 {
			t.Errorf("expected dangling edge dropped, got %d links", len(l.links))
		}
	})

	t.Run("AddForce replaces by name", func(t *testing.T) {
		sim := New(nil).AddForce(ForceCharge, NewManyBody(-1)).AddForce(ForceCharge, NewManyBody(-2))
		if got := sim.Force(ForceCharge).(*ManyBody).Strength; got != -2 {
			t.Errorf("expected replaced strength -2, got %v", got)
		}
		sim.RemoveForce(ForceCharge)
		if sim.Force(ForceCharge) != nil {
			t.Error("expected force removed")
		}
	})
}

func TestPresets(t *testing.T) {
	t.Run("narrow relationship constants", func(t *testing.T) {
		sim := Relationship(scenarioSnapshot(500, 800), true, RelationshipParams())
		if d := sim.Force(ForceLink).(*Link).Distance; d != 60 {
			t.Errorf("expected narrow link distance 60, got %v", d)
		}
		if c := sim.Force(ForceCharge).(*ManyBody).Strength; c != -400 {
			t.Errorf("expected narrow charge -400, got %v", c)
		}
		if p := sim.Force(ForceCollide).(*Collide).Padding; p != 20 {
			t.Errorf("expected narrow padding 20, got %v", p)
		}
	})

	t.Run("bubbles", func(t *testing.T) {
		b := graph.NewBuilder(graph.DefaultGeometry(), nil)
		snap := b.BuildBubbles(graph.BuildInput{
			Tracks:  []models.Track{{ID: "t1", Artists: []models.ArtistRef{{ID: "a1"}, {ID: "a2"}}}},
			Artists: []models.Artist{{ID: "a1"}, {ID: "a2"}},
			Width:   1000,
			Height:  800,
		})
		sim := ForSnapshot(snap, false)

		if sim.Force(ForceLink) != nil {
			t.Error("bubble layout has no links")
		}
		if s := sim.Force(ForceX).(*Position).Strength; s != 0.08 {
			t.Errorf("expected x strength 0.08, got %v", s)
		}
		sim.Step()
		if want := 1 - 0.02; math.Abs(sim.Alpha()-want) > 1e-12 {
			t.Errorf("expected bubble alpha decay 0.02, alpha %v", sim.Alpha())
		}

		sim.Tick(400)
		a1, a2 := sim.Node("a1"), sim.Node("a2")
		if d := dist(a1, a2); d < a1.Radius+a2.Radius {
			t.Errorf("bubbles should not overlap, distance %v", d)
		}
	})
}
