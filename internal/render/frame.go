package render

import (
	"github.com/desertthunder/playgraph/internal/force"
	"github.com/desertthunder/playgraph/internal/graph"
	"github.com/desertthunder/playgraph/internal/interaction"
)

const (
	// TrackLabelOpacity keeps track labels subtler than artist labels.
	TrackLabelOpacity = 0.7
)

// NodeView is one node ready to draw, in screen coordinates.
type NodeView struct {
	ID           string     `json:"id"`
	Kind         graph.Kind `json:"-"`
	KindName     string     `json:"kind"`
	X            float64    `json:"x"`
	Y            float64    `json:"y"`
	Radius       float64    `json:"radius"`
	Fill         string     `json:"fill"`
	Label        string     `json:"label"`
	LabelOpacity float64    `json:"label_opacity"`
	Dimmed       bool       `json:"dimmed,omitempty"`
	Highlighted  bool       `json:"highlighted,omitempty"`
	Focused      bool       `json:"focused,omitempty"`
}

// EdgeView is one edge ready to draw, in screen coordinates.
type EdgeView struct {
	X1      float64 `json:"x1"`
	Y1      float64 `json:"y1"`
	X2      float64 `json:"x2"`
	Y2      float64 `json:"y2"`
	Opacity float64 `json:"opacity"`
}

// Frame is everything drawn for one simulation step.
type Frame struct {
	Alpha float64    `json:"alpha"`
	Scale float64    `json:"scale"`
	Nodes []NodeView `json:"nodes"`
	Edges []EdgeView `json:"edges"`
}

// Styler decides hover styling. [interaction.Controller] implements it.
type Styler interface {
	NodeState(id string) interaction.NodeState
	EdgeOpacity(e graph.Edge) float64
}

// Filler picks a node's fill colour.
type Filler interface {
	Fill(n *graph.Node) string
}

// Adapter builds frames from a simulation.
type Adapter struct {
	styler Styler
	filler Filler
	view   *interaction.Viewport
}

// NewAdapter creates an adapter. styler and view may be nil, meaning no hover and the identity transform;
// a nil filler uses default fills.
func NewAdapter(styler Styler, filler Filler, view *interaction.Viewport) *Adapter {
	if filler == nil {
		filler = defaultFiller{}
	}
	return &Adapter{styler: styler, filler: filler, view: view}
}

// Frame reads the simulation's current positions. Edges whose endpoints are missing are skipped.
func (a *Adapter) Frame(sim *force.Simulation) Frame {
	nodes := sim.Nodes()
	edges := sim.Edges()
	f := Frame{
		Alpha: sim.Alpha(),
		Scale: a.scale(),
		Nodes: make([]NodeView, 0, len(nodes)),
		Edges: make([]EdgeView, 0, len(edges)),
	}

	for _, e := range edges {
		s, t := sim.Node(e.Source), sim.Node(e.Target)
		if s == nil || t == nil {
			continue
		}
		x1, y1 := a.project(s.X, s.Y)
		x2, y2 := a.project(t.X, t.Y)
		opacity := interaction.BaseEdgeOpacity
		if a.styler != nil {
			opacity = a.styler.EdgeOpacity(e)
		}
		f.Edges = append(f.Edges, EdgeView{X1: x1, Y1: y1, X2: x2, Y2: y2, Opacity: opacity})
	}

	for _, n := range nodes {
		x, y := a.project(n.X, n.Y)
		v := NodeView{
			ID:           n.ID,
			Kind:         n.Kind,
			KindName:     n.Kind.String(),
			X:            x,
			Y:            y,
			Radius:       n.Radius * f.Scale,
			Fill:         a.filler.Fill(n),
			Label:        n.Label,
			LabelOpacity: 1,
			Focused:      n.Focused,
		}
		if n.Kind == graph.KindTrack {
			v.LabelOpacity = TrackLabelOpacity
		}
		if a.styler != nil {
			st := a.styler.NodeState(n.ID)
			v.Dimmed, v.Highlighted = st.Dimmed, st.Highlighted
		}
		f.Nodes = append(f.Nodes, v)
	}
	return f
}

func (a *Adapter) project(x, y float64) (float64, float64) {
	if a.view == nil {
		return x, y
	}
	return a.view.ToScreen(x, y)
}

func (a *Adapter) scale() float64 {
	if a.view == nil {
		return 1
	}
	return a.view.Scale
}
