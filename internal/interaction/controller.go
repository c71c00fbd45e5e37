package interaction

import (
	"fmt"
	"io"
	"math"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/playgraph/internal/force"
	"github.com/desertthunder/playgraph/internal/graph"
	"github.com/desertthunder/playgraph/internal/shared"
)

const (
	DefaultDragAlphaTarget = 0.3

	// Opacities applied while a node is hovered.
	DimmedNodeOpacity = 0.2
	DimmedEdgeOpacity = 0.1
	BaseEdgeOpacity   = 0.2
)

// ArtistSelectedFunc receives the id of a clicked artist or bubble.
type ArtistSelectedFunc func(artistID string)

// NodeState is how a node should be drawn given the current hover.
type NodeState struct {
	Highlighted bool
	Dimmed      bool
}

// Option configures a [Controller].
type Option func(*Controller)

// WithDragAlphaTarget sets the alpha target held while a node is dragged.
func WithDragAlphaTarget(target float64) Option {
	return func(c *Controller) { c.dragTarget = target }
}

// WithArtistSelected sets the click callback.
func WithArtistSelected(fn ArtistSelectedFunc) Option {
	return func(c *Controller) { c.onSelect = fn }
}

// WithScaleExtent sets the zoom clamp.
func WithScaleExtent(min, max float64) Option {
	return func(c *Controller) { c.view = NewViewport(min, max) }
}

// WithHitSlop widens hit testing by slop screen units, for pointers coarser than a node.
func WithHitSlop(slop float64) Option {
	return func(c *Controller) { c.slop = math.Max(0, slop) }
}

// WithLogger sets the controller's logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// Controller translates pointer gestures into simulation events.
//
// Drag gestures never write node records directly; they enqueue events on the scheduler, which applies them
// before the next step.
type Controller struct {
	sched *force.Scheduler
	snap  *graph.Snapshot
	adj   map[string]map[string]bool
	view  *Viewport

	dragTarget float64
	slop       float64
	onSelect   ArtistSelectedFunc
	logger     *log.Logger

	dragging string
	hovered  string
}

// NewController creates a controller for snap whose events run on sched.
func NewController(snap *graph.Snapshot, sched *force.Scheduler, opts ...Option) *Controller {
	c := &Controller{
		sched:      sched,
		dragTarget: DefaultDragAlphaTarget,
		view:       NewViewport(GraphMinScale, GraphMaxScale),
		logger:     log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.Reconfigure(snap)
	return c
}

// Reconfigure points the controller at a new snapshot. Any drag in progress is dropped, and the hover is
// cleared if the hovered node no longer exists.
func (c *Controller) Reconfigure(snap *graph.Snapshot) {
	c.snap = snap
	c.adj = map[string]map[string]bool{}
	if snap != nil {
		c.adj = snap.Adjacency()
	}
	c.dragging = ""
	if c.snap.Node(c.hovered) == nil {
		c.hovered = ""
	}
}

// SetOnArtistSelected replaces the click callback.
func (c *Controller) SetOnArtistSelected(fn ArtistSelectedFunc) {
	c.onSelect = fn
}

// Viewport returns the controller's pan/zoom transform.
func (c *Controller) Viewport() *Viewport {
	return c.view
}

// Snapshot returns the snapshot the controller is bound to.
func (c *Controller) Snapshot() *graph.Snapshot {
	return c.snap
}

// DragStart pins id at its current position and reheats the simulation.
func (c *Controller) DragStart(id string) error {
	if c.snap.Node(id) == nil {
		return fmt.Errorf("%w: %s", shared.ErrUnknownNode, id)
	}
	if c.dragging != "" && c.dragging != id {
		c.DragEnd()
	}
	c.dragging = id
	target := c.dragTarget
	c.sched.Enqueue(func(sim *force.Simulation) {
		n := sim.Node(id)
		if n == nil {
			return
		}
		sim.Reheat(target)
		n.Pin(n.X, n.Y)
	})
	c.logger.Debug("drag start", "node", id)
	return nil
}

// DragMove pins the dragged node at world point (x, y). It does nothing when no drag is active.
func (c *Controller) DragMove(x, y float64) {
	id := c.dragging
	if id == "" {
		return
	}
	c.sched.Enqueue(func(sim *force.Simulation) {
		if n := sim.Node(id); n != nil {
			n.Pin(x, y)
		}
	})
}

// DragEnd releases the dragged node back to the forces and lets the simulation cool.
func (c *Controller) DragEnd() {
	id := c.dragging
	if id == "" {
		return
	}
	c.dragging = ""
	c.sched.Enqueue(func(sim *force.Simulation) {
		if n := sim.Node(id); n != nil {
			n.Unpin()
		}
		sim.Cool()
	})
	c.logger.Debug("drag end", "node", id)
}

// Dragging returns the id of the node being dragged, or "".
func (c *Controller) Dragging() string {
	return c.dragging
}

// HoverEnter highlights id and dims everything not adjacent to it.
func (c *Controller) HoverEnter(id string) {
	if c.snap.Node(id) == nil {
		c.hovered = ""
		return
	}
	c.hovered = id
}

// HoverLeave clears the hover.
func (c *Controller) HoverLeave() {
	c.hovered = ""
}

// Hovered returns the hovered node id, or "".
func (c *Controller) Hovered() string {
	return c.hovered
}

// NodeState reports how id should be drawn. Without a hover every node is drawn normally. During a hover
// the hovered node is highlighted, its neighbours are drawn normally, and everything else is dimmed.
func (c *Controller) NodeState(id string) NodeState {
	if c.hovered == "" {
		return NodeState{}
	}
	if id == c.hovered {
		return NodeState{Highlighted: true}
	}
	return NodeState{Dimmed: !c.adj[c.hovered][id]}
}

// EdgeOpacity returns the stroke opacity for e: base opacity without a hover, full for edges incident to the
// hovered node, and faded otherwise.
func (c *Controller) EdgeOpacity(e graph.Edge) float64 {
	switch {
	case c.hovered == "":
		return BaseEdgeOpacity
	case e.Source == c.hovered || e.Target == c.hovered:
		return 1
	default:
		return DimmedEdgeOpacity
	}
}

// Click fires the artist callback when id is an artist or bubble. It reports whether the callback ran.
func (c *Controller) Click(id string) bool {
	n := c.snap.Node(id)
	if n == nil || !n.Kind.IsArtist() || c.onSelect == nil {
		return false
	}
	c.logger.Debug("artist selected", "artist", id)
	c.onSelect(id)
	return true
}

// HitTest returns the node under screen point (sx, sy), preferring the closest center, or nil.
func (c *Controller) HitTest(sx, sy float64) *graph.Node {
	if c.snap == nil {
		return nil
	}
	wx, wy := c.view.ToWorld(sx, sy)
	var (
		best     *graph.Node
		bestDist = math.Inf(1)
	)
	for _, n := range c.snap.Nodes {
		r := n.Radius + c.slop/c.view.Scale
		dx, dy := wx-n.X, wy-n.Y
		d2 := dx*dx + dy*dy
		if d2 <= r*r && d2 < bestDist {
			best, bestDist = n, d2
		}
	}
	return best
}
