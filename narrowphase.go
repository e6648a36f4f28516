package impulse

import (
	"fmt"

	"github.com/setanarut/vec"
)

// ContactID identifies a contact across steps so accumulated impulses can
// be carried over. Side is 0 when the sample point belongs to the first
// shape of the pair and 1 when it belongs to the second. Sample indexes the
// sample point on that side and Feature the surface feature it touched.
type ContactID struct {
	Side    uint8
	Sample  uint16
	Feature uint16
}

func (id ContactID) String() string {
	return fmt.Sprintf("%d:%d:%d", id.Side, id.Sample, id.Feature)
}

// NarrowPhase produces the contacts between two shapes whose bounding boxes
// overlap. Contacts are appended to dst. The normal of every contact points
// from a to b and its Separation is negative.
type NarrowPhase interface {
	Collide(a, b *Shape, dst []Contact) []Contact
}

// DistanceNarrowPhase tests the sample points of each shape (circle center,
// segment endpoints, polygon vertices) against the signed distance field of
// the other shape. A circle is only ever tested through its center.
type DistanceNarrowPhase struct {
	points []vec.Vec2
}

// Collide implements NarrowPhase.
func (np *DistanceNarrowPhase) Collide(a, b *Shape, dst []Contact) []Contact {
	switch {
	case a.kind == KindCircle:
		dst = np.collideSide(a, b, 0, dst)
	case b.kind == KindCircle:
		dst = np.collideSide(b, a, 1, dst)
	default:
		dst = np.collideSide(a, b, 0, dst)
		dst = np.collideSide(b, a, 1, dst)
	}
	return dst
}

// collideSide tests the samples of from against the distance field of into.
// On side 0 from is the first shape of the pair, on side 1 it is the second.
func (np *DistanceNarrowPhase) collideSide(from, into *Shape, side uint8, dst []Contact) []Contact {
	var r float64
	np.points, r = from.samples(np.points[:0])
	for i, p := range np.points {
		dist, n, feature := into.pointQuery(p)
		sep := dist - r
		if sep >= 0 {
			continue
		}
		id := ContactID{Side: side, Sample: uint16(i), Feature: feature}
		if side == 0 {
			// n points out of the second shape, towards the first
			normal := n.Neg()
			dst = append(dst, Contact{
				Position:   p.Add(normal.Scale(r)),
				Normal:     normal,
				Separation: sep,
				ID:         id,
			})
		} else {
			dst = append(dst, Contact{
				Position:   p.Sub(n.Scale(r)),
				Normal:     n,
				Separation: sep,
				ID:         id,
			})
		}
	}
	return dst
}
