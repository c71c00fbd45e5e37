package force

import (
	"github.com/desertthunder/playgraph/internal/graph"
	"github.com/desertthunder/playgraph/internal/shared"
)

// Registered force names.
const (
	ForceCenter  = "center"
	ForceX       = "x"
	ForceY       = "y"
	ForceCharge  = "charge"
	ForceCollide = "collide"
	ForceLink    = "link"
)

const (
	bubbleDecay   = 0.02
	bubbleCollide = 0.7
)

// Params are the per-layout force constants. Narrow viewports use the Narrow* variants.
type Params struct {
	LinkDistance      float64
	Charge            float64
	CollidePadding    float64
	CollideStrength   float64
	PositionStrength  float64
	NarrowLink        float64
	NarrowCharge      float64
	NarrowPadding     float64
	NarrowPositioning float64
}

// RelationshipParams are the stock constants for the track/artist graph.
func RelationshipParams() Params {
	return Params{
		LinkDistance:    100,
		Charge:          -800,
		CollidePadding:  40,
		CollideStrength: 1,
		NarrowLink:      60,
		NarrowCharge:    -400,
		NarrowPadding:   20,
	}
}

// BubbleParams are the stock constants for the artist overview. Charge is weakly attractive so
// bubbles pack around the center.
func BubbleParams() Params {
	return Params{
		Charge:            10,
		CollidePadding:    15,
		CollideStrength:   bubbleCollide,
		PositionStrength:  0.08,
		NarrowCharge:      5,
		NarrowPadding:     5,
		NarrowPositioning: 0.15,
	}
}

// Relationship builds the simulation for a relationship snapshot: link springs, strong repulsion,
// centering, and padded collision.
func Relationship(snap *graph.Snapshot, narrow bool, p Params, opts ...Option) *Simulation {
	link, charge, padding := p.LinkDistance, p.Charge, p.CollidePadding
	if narrow {
		link, charge, padding = p.NarrowLink, p.NarrowCharge, p.NarrowPadding
	}
	cx, cy := snap.Center()

	collide := NewCollide(padding)
	collide.Strength = p.CollideStrength

	return FromSnapshot(snap, opts...).
		AddForce(ForceLink, NewLink(snap.Edges, link)).
		AddForce(ForceCharge, NewManyBody(charge)).
		AddForce(ForceCenter, NewCenter(cx, cy)).
		AddForce(ForceCollide, collide)
}

// Bubbles builds the simulation for the artist overview: positional pull to the center, weak charge,
// and soft collision. It cools faster than the relationship graph.
func Bubbles(snap *graph.Snapshot, narrow bool, p Params, opts ...Option) *Simulation {
	positioning, charge, padding := p.PositionStrength, p.Charge, p.CollidePadding
	if narrow {
		positioning, charge, padding = p.NarrowPositioning, p.NarrowCharge, p.NarrowPadding
	}
	cx, cy := snap.Center()

	fx := NewPosition(AxisX, cx)
	fx.Strength = positioning
	fy := NewPosition(AxisY, cy)
	fy.Strength = positioning
	collide := NewCollide(padding)
	collide.Strength = p.CollideStrength

	opts = append([]Option{WithAlphaDecay(bubbleDecay)}, opts...)
	return FromSnapshot(snap, opts...).
		AddForce(ForceX, fx).
		AddForce(ForceY, fy).
		AddForce(ForceCollide, collide).
		AddForce(ForceCharge, NewManyBody(charge))
}

// ForSnapshot picks the layout matching the snapshot's mode.
func ForSnapshot(snap *graph.Snapshot, narrow bool, opts ...Option) *Simulation {
	if snap.Mode == graph.ModeBubbles {
		return Bubbles(snap, narrow, BubbleParams(), opts...)
	}
	return Relationship(snap, narrow, RelationshipParams(), opts...)
}

// ConfigOptions converts the [simulation] config section into simulation options. Zero values keep the
// defaults.
func ConfigOptions(c shared.SimulationConfig) []Option {
	var opts []Option
	if c.AlphaMin > 0 {
		opts = append(opts, WithAlphaMin(c.AlphaMin))
	}
	if c.VelocityDecay > 0 {
		opts = append(opts, WithVelocityDecay(c.VelocityDecay))
	}
	if c.Seed != 0 {
		opts = append(opts, WithSeed(c.Seed))
	}
	return opts
}
