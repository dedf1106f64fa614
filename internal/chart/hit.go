package chart

import "math"

// PointerEvent is a pointer position in image pixels, origin at the top-left.
type PointerEvent struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// HitResolver maps a pointer event to a series index.
type HitResolver interface {
	ResolveHit(ev PointerEvent) (int, bool)
}

var _ HitResolver = (*Handle)(nil)

// ResolveHit returns the index of the nearest plotted point that the pointer
// intersects. Points of every dataset are considered.
func (h *Handle) ResolveHit(ev PointerEvent) (int, bool) {
	if h.Empty() {
		return 0, false
	}
	best := -1
	bestDist := math.Inf(1)
	for _, pts := range h.points {
		for i, p := range pts {
			d := math.Hypot(ev.X-p.x, ev.Y-p.y)
			if d <= hitRadius && d < bestDist {
				best = i
				bestDist = d
			}
		}
	}
	if best < 0 {
		return 0, false
	}
	return best, true
}
