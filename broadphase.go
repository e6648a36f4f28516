package impulse

import (
	"cmp"
	"slices"
)

// BroadPhase reports every pair of shapes whose bounding boxes overlap.
// Each pair is reported once. Filtering by body or collision filter is done
// by the World.
type BroadPhase interface {
	Pairs(shapes []*Shape, yield func(a, b *Shape))
}

// SweepBroadPhase is a sort-and-sweep along the x axis.
type SweepBroadPhase struct {
	sorted []*Shape
}

// Pairs implements BroadPhase. Pairs come out in a deterministic order for
// a given set of shapes.
func (sb *SweepBroadPhase) Pairs(shapes []*Shape, yield func(a, b *Shape)) {
	sb.sorted = append(sb.sorted[:0], shapes...)
	slices.SortFunc(sb.sorted, func(a, b *Shape) int {
		if c := cmp.Compare(a.bb.L, b.bb.L); c != 0 {
			return c
		}
		return cmp.Compare(a.id, b.id)
	})

	for i, a := range sb.sorted {
		for _, b := range sb.sorted[i+1:] {
			if b.bb.L > a.bb.R {
				break
			}
			if a.bb.B <= b.bb.T && b.bb.B <= a.bb.T {
				yield(a, b)
			}
		}
	}
	clear(sb.sorted)
}
