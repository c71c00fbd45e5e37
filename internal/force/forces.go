package force

import (
	"math"

	"github.com/desertthunder/playgraph/internal/graph"
)

// Center translates all nodes so their mean position moves toward (X, Y).
// It moves positions directly and ignores alpha.
type Center struct {
	X, Y     float64
	Strength float64

	nodes []*graph.Node
}

// NewCenter creates a centering force with strength 1.
func NewCenter(x, y float64) *Center {
	return &Center{X: x, Y: y, Strength: 1}
}

func (c *Center) Initialize(nodes []*graph.Node, _ map[string]int, _ func() float64) {
	c.nodes = nodes
}

func (c *Center) Apply(float64) {
	n := len(c.nodes)
	if n == 0 {
		return
	}
	var sx, sy float64
	for _, node := range c.nodes {
		sx += node.X
		sy += node.Y
	}
	sx = (sx/float64(n) - c.X) * c.Strength
	sy = (sy/float64(n) - c.Y) * c.Strength
	for _, node := range c.nodes {
		node.X -= sx
		node.Y -= sy
	}
}

// Axis selects the coordinate a [Position] force acts on.
type Axis int

const (
	AxisX Axis = iota
	AxisY
)

// Position nudges each node's velocity toward Target on one axis.
type Position struct {
	Axis     Axis
	Target   float64
	Strength float64

	nodes []*graph.Node
}

// NewPosition creates a positioning force with strength 0.1.
func NewPosition(axis Axis, target float64) *Position {
	return &Position{Axis: axis, Target: target, Strength: 0.1}
}

func (p *Position) Initialize(nodes []*graph.Node, _ map[string]int, _ func() float64) {
	p.nodes = nodes
}

func (p *Position) Apply(alpha float64) {
	k := p.Strength * alpha
	for _, n := range p.nodes {
		if p.Axis == AxisX {
			n.VX += (p.Target - n.X) * k
		} else {
			n.VY += (p.Target - n.Y) * k
		}
	}
}

// ManyBody applies charge between every pair of nodes. Negative strength repels, positive attracts.
//
// Every pair is evaluated exactly; playlists are small enough that an approximation is not needed.
type ManyBody struct {
	Strength    float64
	DistanceMin float64
	DistanceMax float64

	nodes  []*graph.Node
	jiggle func() float64
}

// NewManyBody creates a charge force with the given strength.
func NewManyBody(strength float64) *ManyBody {
	return &ManyBody{Strength: strength, DistanceMin: 1, DistanceMax: math.Inf(1)}
}

func (m *ManyBody) Initialize(nodes []*graph.Node, _ map[string]int, jiggle func() float64) {
	m.nodes = nodes
	m.jiggle = jiggle
}

func (m *ManyBody) Apply(alpha float64) {
	min2 := m.DistanceMin * m.DistanceMin
	max2 := m.DistanceMax * m.DistanceMax
	for i, node := range m.nodes {
		for j, other := range m.nodes {
			if i == j {
				continue
			}
			x, y := other.X-node.X, other.Y-node.Y
			l := x*x + y*y
			if l >= max2 {
				continue
			}
			if x == 0 {
				x = m.jiggle()
				l += x * x
			}
			if y == 0 {
				y = m.jiggle()
				l += y * y
			}
			if l < min2 {
				l = math.Sqrt(min2 * l)
			}
			w := m.Strength * alpha / l
			node.VX += x * w
			node.VY += y * w
		}
	}
}

// Collide separates overlapping circles of node radius plus Padding.
//
// Overlap is resolved against positions predicted from current velocity. Larger nodes move less.
type Collide struct {
	Padding    float64
	Strength   float64
	Iterations int

	nodes  []*graph.Node
	jiggle func() float64
}

// NewCollide creates a collision force with strength 1 and one iteration.
func NewCollide(padding float64) *Collide {
	return &Collide{Padding: padding, Strength: 1, Iterations: 1}
}

func (c *Collide) Initialize(nodes []*graph.Node, _ map[string]int, jiggle func() float64) {
	c.nodes = nodes
	c.jiggle = jiggle
}

func (c *Collide) Apply(float64) {
	for range max(c.Iterations, 1) {
		for i, ni := range c.nodes {
			ri := ni.Radius + c.Padding
			ri2 := ri * ri
			xi, yi := ni.X+ni.VX, ni.Y+ni.VY
			for _, nj := range c.nodes[i+1:] {
				rj := nj.Radius + c.Padding
				r := ri + rj
				x, y := xi-(nj.X+nj.VX), yi-(nj.Y+nj.VY)
				l := x*x + y*y
				if l >= r*r {
					continue
				}
				if x == 0 {
					x = c.jiggle()
					l += x * x
				}
				if y == 0 {
					y = c.jiggle()
					l += y * y
				}
				l = math.Sqrt(l)
				l = (r - l) / l * c.Strength
				x *= l
				y *= l
				rj2 := rj * rj
				share := rj2 / (ri2 + rj2)
				ni.VX += x * share
				ni.VY += y * share
				share = 1 - share
				nj.VX -= x * share
				nj.VY -= y * share
			}
		}
	}
}

// Link springs each edge's endpoints toward Distance.
//
// Strength defaults per edge to 1 / min(degree) so hubs are not over-constrained; the correction
// is split by degree so the lower-degree endpoint moves more.
type Link struct {
	Distance   float64
	Strength   float64 // zero means degree-based default
	Iterations int

	edges     []graph.Edge
	links     []resolvedLink
	nodes     []*graph.Node
	jiggle    func() float64
	strengths []float64
	bias      []float64
}

type resolvedLink struct {
	source, target *graph.Node
}

// NewLink creates a link force over edges with rest length distance.
func NewLink(edges []graph.Edge, distance float64) *Link {
	return &Link{Distance: distance, Iterations: 1, edges: edges}
}

func (l *Link) Initialize(nodes []*graph.Node, index map[string]int, jiggle func() float64) {
	l.nodes = nodes
	l.jiggle = jiggle
	l.links = l.links[:0]
	l.strengths = l.strengths[:0]
	l.bias = l.bias[:0]

	count := make(map[string]int, len(nodes))
	for _, e := range l.edges {
		si, sok := index[e.Source]
		ti, tok := index[e.Target]
		if !sok || !tok {
			continue
		}
		l.links = append(l.links, resolvedLink{source: nodes[si], target: nodes[ti]})
		count[e.Source]++
		count[e.Target]++
	}
	for _, lk := range l.links {
		cs, ct := float64(count[lk.source.ID]), float64(count[lk.target.ID])
		l.bias = append(l.bias, cs/(cs+ct))
		l.strengths = append(l.strengths, 1/min(cs, ct))
	}
}

func (l *Link) Apply(alpha float64) {
	for range max(l.Iterations, 1) {
		for i, lk := range l.links {
			src, tgt := lk.source, lk.target
			x := tgt.X + tgt.VX - src.X - src.VX
			if x == 0 {
				x = l.jiggle()
			}
			y := tgt.Y + tgt.VY - src.Y - src.VY
			if y == 0 {
				y = l.jiggle()
			}
			strength := l.strengths[i]
			if l.Strength != 0 {
				strength = l.Strength
			}
			d := math.Sqrt(x*x + y*y)
			d = (d - l.Distance) / d * alpha * strength
			x *= d
			y *= d
			b := l.bias[i]
			tgt.VX -= x * b
			tgt.VY -= y * b
			b = 1 - b
			src.VX += x * b
			src.VY += y * b
		}
	}
}
