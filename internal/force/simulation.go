package force

import (
	"math"
	"math/rand"

	"github.com/desertthunder/playgraph/internal/graph"
)

const (
	defaultAlphaMin      = 0.001
	defaultVelocityDecay = 0.4
)

// Force adjusts node velocities once per step.
type Force interface {
	// Initialize is called whenever the simulation's node set changes.
	Initialize(nodes []*graph.Node, index map[string]int, jiggle func() float64)
	// Apply runs one step of the force at the given alpha.
	Apply(alpha float64)
}

type namedForce struct {
	name  string
	force Force
}

// Option configures a [Simulation].
type Option func(*Simulation)

// WithAlphaMin sets the alpha below which the simulation counts as settled.
func WithAlphaMin(min float64) Option {
	return func(s *Simulation) { s.alphaMin = min }
}

// WithAlphaDecay sets the per-step cooling rate.
func WithAlphaDecay(decay float64) Option {
	return func(s *Simulation) { s.alphaDecay = decay }
}

// WithVelocityDecay sets the fraction of velocity lost each step.
func WithVelocityDecay(decay float64) Option {
	return func(s *Simulation) { s.velocityDecay = 1 - decay }
}

// WithSeed seeds the generator used to separate coincident nodes.
func WithSeed(seed int64) Option {
	return func(s *Simulation) { s.rnd = rand.New(rand.NewSource(seed)) }
}

// Simulation integrates node positions under a set of forces.
type Simulation struct {
	nodes []*graph.Node
	index map[string]int
	edges []graph.Edge

	forces []namedForce

	alpha         float64
	alphaMin      float64
	alphaDecay    float64
	alphaTarget   float64
	velocityDecay float64

	rnd     *rand.Rand
	ticks   int
	stopped bool
}

// New creates a simulation over nodes. Alpha starts at 1; alpha decay defaults to reaching alpha min in
// about 300 steps.
func New(nodes []*graph.Node, opts ...Option) *Simulation {
	s := &Simulation{
		alpha:         1,
		alphaMin:      defaultAlphaMin,
		velocityDecay: 1 - defaultVelocityDecay,
		rnd:           rand.New(rand.NewSource(1)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.alphaDecay == 0 {
		s.alphaDecay = 1 - math.Pow(s.alphaMin, 1.0/300)
	}
	s.SetNodes(nodes)
	return s
}

// FromSnapshot creates a simulation over a snapshot's nodes and keeps its edges for link forces.
func FromSnapshot(snap *graph.Snapshot, opts ...Option) *Simulation {
	s := New(snap.Nodes, opts...)
	s.edges = snap.Edges
	return s
}

// SetNodes replaces the node set and reinitializes every force.
func (s *Simulation) SetNodes(nodes []*graph.Node) {
	s.nodes = nodes
	s.index = make(map[string]int, len(nodes))
	for i, n := range nodes {
		s.index[n.ID] = i
		if math.IsNaN(n.X) || math.IsNaN(n.Y) {
			n.X, n.Y = 0, 0
		}
	}
	for _, f := range s.forces {
		f.force.Initialize(s.nodes, s.index, s.jiggle)
	}
}

// Nodes returns the node arena.
func (s *Simulation) Nodes() []*graph.Node {
	return s.nodes
}

// Edges returns the edges the simulation was built from.
func (s *Simulation) Edges() []graph.Edge {
	return s.edges
}

// Node returns the node with id, or nil.
func (s *Simulation) Node(id string) *graph.Node {
	if i, ok := s.index[id]; ok {
		return s.nodes[i]
	}
	return nil
}

// AddForce registers f under name, replacing any force with that name. Forces apply in registration order.
func (s *Simulation) AddForce(name string, f Force) *Simulation {
	f.Initialize(s.nodes, s.index, s.jiggle)
	for i := range s.forces {
		if s.forces[i].name == name {
			s.forces[i].force = f
			return s
		}
	}
	s.forces = append(s.forces, namedForce{name: name, force: f})
	return s
}

// RemoveForce unregisters the force called name.
func (s *Simulation) RemoveForce(name string) {
	for i := range s.forces {
		if s.forces[i].name == name {
			s.forces = append(s.forces[:i], s.forces[i+1:]...)
			return
		}
	}
}

// Force returns the force registered under name, or nil.
func (s *Simulation) Force(name string) Force {
	for _, f := range s.forces {
		if f.name == name {
			return f.force
		}
	}
	return nil
}

func (s *Simulation) Alpha() float64       { return s.alpha }
func (s *Simulation) AlphaTarget() float64 { return s.alphaTarget }
func (s *Simulation) AlphaMin() float64    { return s.alphaMin }
func (s *Simulation) Ticks() int           { return s.ticks }
func (s *Simulation) Stopped() bool        { return s.stopped }

// SetAlpha sets the current energy.
func (s *Simulation) SetAlpha(alpha float64) {
	s.alpha = alpha
}

// SetAlphaTarget sets the value alpha decays toward.
func (s *Simulation) SetAlphaTarget(target float64) {
	s.alphaTarget = target
}

// Reheat raises alpha target so motion resumes, e.g. while a node is dragged.
// A settled simulation starts moving again on the next step.
func (s *Simulation) Reheat(target float64) {
	s.alphaTarget = target
}

// Cool lets alpha decay back to rest.
func (s *Simulation) Cool() {
	s.alphaTarget = 0
}

// Stop tears the simulation down; no later step moves a node. Stopping twice is a no-op.
func (s *Simulation) Stop() {
	s.stopped = true
}

// Settled reports whether alpha has cooled below alpha min with nothing heating it.
func (s *Simulation) Settled() bool {
	return s.alpha < s.alphaMin && s.alphaTarget < s.alphaMin
}

// Step advances the simulation once and reports whether forces ran.
//
// A stopped simulation does not move. A settled one skips the forces but still holds pinned nodes
// on their pins, so a drag on a cold layout tracks the pointer.
func (s *Simulation) Step() bool {
	if s.stopped {
		return false
	}
	if s.Settled() {
		s.snapPinned()
		return false
	}

	s.alpha += (s.alphaTarget - s.alpha) * s.alphaDecay
	for _, f := range s.forces {
		f.force.Apply(s.alpha)
	}

	for _, n := range s.nodes {
		if n.Pinned() {
			n.X, n.Y, n.VX, n.VY = *n.FX, *n.FY, 0, 0
			continue
		}
		n.VX *= s.velocityDecay
		n.VY *= s.velocityDecay
		n.X += n.VX
		n.Y += n.VY
	}
	s.ticks++
	return true
}

// Tick runs up to n steps, stopping early once settled. It returns the number of steps that ran forces.
func (s *Simulation) Tick(n int) int {
	ran := 0
	for range n {
		if !s.Step() {
			break
		}
		ran++
	}
	return ran
}

// Find returns the node closest to (x, y) whose circle contains the point, or nil.
func (s *Simulation) Find(x, y float64) *graph.Node {
	var (
		best     *graph.Node
		bestDist = math.Inf(1)
	)
	for _, n := range s.nodes {
		dx, dy := x-n.X, y-n.Y
		d2 := dx*dx + dy*dy
		if d2 <= n.Radius*n.Radius && d2 < bestDist {
			best, bestDist = n, d2
		}
	}
	return best
}

func (s *Simulation) snapPinned() {
	for _, n := range s.nodes {
		if n.Pinned() {
			n.X, n.Y, n.VX, n.VY = *n.FX, *n.FY, 0, 0
		}
	}
}

// jiggle returns a tiny random offset used to separate coincident nodes.
func (s *Simulation) jiggle() float64 {
	return (s.rnd.Float64() - 0.5) * 1e-6
}
