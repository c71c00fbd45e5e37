package interaction

import "math"

const (
	GraphMinScale  = 0.1
	GraphMaxScale  = 8
	BubbleMinScale = 0.1
	BubbleMaxScale = 5
)

// Viewport maps world coordinates to screen coordinates: screen = world*Scale + (TX, TY).
type Viewport struct {
	Scale    float64
	TX, TY   float64
	MinScale float64
	MaxScale float64
}

// NewViewport returns an identity transform whose scale is clamped to [min, max].
func NewViewport(min, max float64) *Viewport {
	if min <= 0 {
		min = GraphMinScale
	}
	if max < min {
		max = min
	}
	return &Viewport{Scale: 1, MinScale: min, MaxScale: max}
}

// ZoomAt multiplies the scale by factor, clamped to the extent, keeping the world point under (sx, sy) in place.
func (v *Viewport) ZoomAt(factor, sx, sy float64) {
	if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return
	}
	wx, wy := v.ToWorld(sx, sy)
	v.Scale = math.Max(v.MinScale, math.Min(v.MaxScale, v.Scale*factor))
	v.TX = sx - wx*v.Scale
	v.TY = sy - wy*v.Scale
}

// Pan shifts the view by (dx, dy) screen units. Panning is unbounded.
func (v *Viewport) Pan(dx, dy float64) {
	v.TX += dx
	v.TY += dy
}

// ToWorld converts a screen point to world coordinates.
func (v *Viewport) ToWorld(sx, sy float64) (float64, float64) {
	return (sx - v.TX) / v.Scale, (sy - v.TY) / v.Scale
}

// ToScreen converts a world point to screen coordinates.
func (v *Viewport) ToScreen(wx, wy float64) (float64, float64) {
	return wx*v.Scale + v.TX, wy*v.Scale + v.TY
}

// Reset restores the identity transform.
func (v *Viewport) Reset() {
	v.Scale, v.TX, v.TY = 1, 0, 0
}
