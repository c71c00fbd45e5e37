package graph

// Kind distinguishes what a node stands for.
type Kind int

const (
	KindArtist Kind = iota
	KindTrack
	KindArtistBubble
)

func (k Kind) String() string {
	switch k {
	case KindArtist:
		return "artist"
	case KindTrack:
		return "track"
	case KindArtistBubble:
		return "bubble"
	default:
		return "unknown"
	}
}

// IsArtist reports whether clicking the node selects an artist.
func (k Kind) IsArtist() bool {
	return k == KindArtist || k == KindArtistBubble
}

// Node is one entity in the simulation.
//
// X, Y, VX and VY belong to the simulation once the node is handed to it. FX and FY, when both set,
// pin the node to that position.
type Node struct {
	ID         string
	Kind       Kind
	Label      string
	ImageRef   string
	Radius     float64
	TrackCount int
	Focused    bool

	X, Y   float64
	VX, VY float64
	FX, FY *float64
}

// Pinned reports whether the node's position is externally fixed.
func (n *Node) Pinned() bool {
	return n.FX != nil && n.FY != nil
}

// Pin fixes the node at (x, y).
func (n *Node) Pin(x, y float64) {
	n.FX, n.FY = &x, &y
}

// Unpin returns the node to force control.
func (n *Node) Unpin() {
	n.FX, n.FY = nil, nil
}

// Edge links a track to a performing artist. Edges are undirected.
type Edge struct {
	Source string
	Target string
}

// Mode is the layout a snapshot was built for.
type Mode int

const (
	ModeRelationship Mode = iota
	ModeBubbles
)

// Snapshot is one complete graph state.
type Snapshot struct {
	Mode   Mode
	Nodes  []*Node
	Edges  []Edge
	Width  float64
	Height float64

	index map[string]int
}

func newSnapshot(mode Mode, width, height float64) *Snapshot {
	return &Snapshot{Mode: mode, Width: width, Height: height, index: make(map[string]int)}
}

// add appends n unless a node with the same id exists. It returns the node kept under that id.
func (s *Snapshot) add(n *Node) *Node {
	if i, ok := s.index[n.ID]; ok {
		return s.Nodes[i]
	}
	s.index[n.ID] = len(s.Nodes)
	s.Nodes = append(s.Nodes, n)
	return n
}

// Node returns the node with id, or nil.
func (s *Snapshot) Node(id string) *Node {
	if s == nil {
		return nil
	}
	if s.index == nil {
		s.reindex()
	}
	if i, ok := s.index[id]; ok {
		return s.Nodes[i]
	}
	return nil
}

// IndexOf returns the position of id in Nodes, or -1.
func (s *Snapshot) IndexOf(id string) int {
	if s.index == nil {
		s.reindex()
	}
	if i, ok := s.index[id]; ok {
		return i
	}
	return -1
}

func (s *Snapshot) reindex() {
	s.index = make(map[string]int, len(s.Nodes))
	for i, n := range s.Nodes {
		s.index[n.ID] = i
	}
}

// Center returns the viewport center in world units.
func (s *Snapshot) Center() (float64, float64) {
	return s.Width / 2, s.Height / 2
}

// Adjacency maps every node id to the ids it shares an edge with.
func (s *Snapshot) Adjacency() map[string]map[string]bool {
	adj := make(map[string]map[string]bool, len(s.Nodes))
	for _, e := range s.Edges {
		if adj[e.Source] == nil {
			adj[e.Source] = make(map[string]bool)
		}
		if adj[e.Target] == nil {
			adj[e.Target] = make(map[string]bool)
		}
		adj[e.Source][e.Target] = true
		adj[e.Target][e.Source] = true
	}
	return adj
}

// Empty reports whether the snapshot has no nodes.
func (s *Snapshot) Empty() bool {
	return s == nil || len(s.Nodes) == 0
}
