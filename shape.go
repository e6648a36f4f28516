package impulse

import (
	"fmt"
	"sync/atomic"

	"github.com/setanarut/vec"
)

var shapeCur atomic.Uint64

// ShapeKind identifies the geometry of a Shape.
type ShapeKind uint8

const (
	KindCircle ShapeKind = iota
	KindSegment
	KindPolygon
)

func (k ShapeKind) String() string {
	switch k {
	case KindCircle:
		return "circle"
	case KindSegment:
		return "segment"
	case KindPolygon:
		return "polygon"
	}
	return fmt.Sprintf("ShapeKind(%d)", uint8(k))
}

// CollisionFunc is called in every step in which the arbiter of two shapes
// has contacts. Returning false vetoes the contacts for that step.
type CollisionFunc func(arb *Arbiter) bool

// SeparateFunc is called when a touching pair of shapes stops touching.
// other is the shape on the other side of the pair.
type SeparateFunc func(self, other *Shape)

// Shape is a collision shape attached to a body. Geometry is stored in body
// local coordinates and cached in world coordinates once per step.
type Shape struct {
	UserData any
	Filter   Filter

	// Friction is the Coulomb friction coefficient.
	Friction float64
	// Restitution is the coefficient of restitution. 0 is perfectly plastic, 1 is perfectly elastic.
	Restitution float64

	// IgnoresCollisionResponse makes the shape report contacts and callbacks
	// without generating any impulses.
	IgnoresCollisionResponse bool

	OnCollision CollisionFunc
	OnSeparate  SeparateFunc

	kind   ShapeKind
	body   *Body
	id     uint64
	radius float64

	// local geometry
	offset  vec.Vec2
	a, b    vec.Vec2
	verts   []vec.Vec2
	normals []vec.Vec2

	// world geometry
	tc       vec.Vec2
	ta, tb   vec.Vec2
	tn       vec.Vec2
	tverts   []vec.Vec2
	tnormals []vec.Vec2
	bb       BB
}

func newShape(kind ShapeKind, body *Body) *Shape {
	return &Shape{
		Filter:   FilterAll,
		Friction: 0.5,
		kind:     kind,
		body:     body,
		id:       shapeCur.Add(1),
	}
}

// NewCircle attaches a circle with radius r centered at offset (body local) to body.
func NewCircle(body *Body, r float64, offset vec.Vec2) (*Shape, error) {
	if body == nil {
		return nil, fmt.Errorf("%w: nil body", ErrInvalidShape)
	}
	if !(r > 0) {
		return nil, fmt.Errorf("%w: circle radius must be positive, got %v", ErrInvalidShape, r)
	}
	circle := newShape(KindCircle, body)
	circle.radius = r
	circle.offset = offset
	circle.update()
	body.attachShape(circle)
	return circle, nil
}

// NewSegment attaches a capsule between a and b (body local) with rounding
// radius r to body.
func NewSegment(body *Body, a, b vec.Vec2, r float64) (*Shape, error) {
	if body == nil {
		return nil, fmt.Errorf("%w: nil body", ErrInvalidShape)
	}
	if r < 0 {
		return nil, fmt.Errorf("%w: segment radius must not be negative, got %v", ErrInvalidShape, r)
	}
	if magSq(b.Sub(a)) == 0 {
		return nil, fmt.Errorf("%w: segment endpoints coincide", ErrInvalidShape)
	}
	seg := newShape(KindSegment, body)
	seg.a = a
	seg.b = b
	seg.radius = r
	seg.update()
	body.attachShape(seg)
	return seg, nil
}

// NewPolygon attaches a convex polygon to body. Vertices are body local and
// may be given in either winding. They are stored counter-clockwise.
func NewPolygon(body *Body, vertices []vec.Vec2) (*Shape, error) {
	if body == nil {
		return nil, fmt.Errorf("%w: nil body", ErrInvalidShape)
	}
	count := len(vertices)
	if count < 3 {
		return nil, fmt.Errorf("%w: polygon needs at least 3 vertices, got %d", ErrInvalidShape, count)
	}

	verts := make([]vec.Vec2, count)
	copy(verts, vertices)
	area := signedArea(verts)
	if area == 0 {
		return nil, fmt.Errorf("%w: polygon has zero area", ErrInvalidShape)
	}
	if area < 0 {
		for i, j := 0, count-1; i < j; i, j = i+1, j-1 {
			verts[i], verts[j] = verts[j], verts[i]
		}
	}

	normals := make([]vec.Vec2, count)
	for i := range count {
		v0 := verts[i]
		v1 := verts[(i+1)%count]
		v2 := verts[(i+2)%count]
		if v1.Sub(v0).Cross(v2.Sub(v1)) < 0 {
			return nil, fmt.Errorf("%w: polygon is not convex at vertex %d", ErrInvalidShape, (i+1)%count)
		}
		n, l := normalize(v1.Sub(v0))
		if l == 0 {
			return nil, fmt.Errorf("%w: polygon has duplicate vertex %d", ErrInvalidShape, i)
		}
		normals[i] = n.ReversePerp()
	}

	poly := newShape(KindPolygon, body)
	poly.verts = verts
	poly.normals = normals
	poly.tverts = make([]vec.Vec2, count)
	poly.tnormals = make([]vec.Vec2, count)
	poly.update()
	body.attachShape(poly)
	return poly, nil
}

// NewBox attaches a w by h box centered on the body.
func NewBox(body *Body, w, h float64) (*Shape, error) {
	if !(w > 0) || !(h > 0) {
		return nil, fmt.Errorf("%w: box size must be positive, got %vx%v", ErrInvalidShape, w, h)
	}
	hw := w / 2.0
	hh := h / 2.0
	return NewPolygon(body, []vec.Vec2{
		{X: -hw, Y: -hh},
		{X: hw, Y: -hh},
		{X: hw, Y: hh},
		{X: -hw, Y: hh},
	})
}

func (s *Shape) String() string {
	return fmt.Sprintf("Shape %d (%v)", s.id, s.kind)
}

// Kind returns the geometry kind of the shape.
func (s *Shape) Kind() ShapeKind {
	return s.kind
}

// Body returns the body the shape is attached to.
func (s *Shape) Body() *Body {
	return s.body
}

// ID returns the process-unique id of the shape.
func (s *Shape) ID() uint64 {
	return s.id
}

// BB returns the world bounding box cached at the last update.
func (s *Shape) BB() BB {
	return s.bb
}

// Radius returns the circle radius or the segment rounding radius.
func (s *Shape) Radius() float64 {
	return s.radius
}

// Center returns the world center of a circle shape.
func (s *Shape) Center() vec.Vec2 {
	return s.tc
}

// Endpoints returns the world endpoints of a segment shape.
func (s *Shape) Endpoints() (vec.Vec2, vec.Vec2) {
	return s.ta, s.tb
}

// Vertices returns the world vertices of a polygon shape in counter-clockwise order.
func (s *Shape) Vertices() []vec.Vec2 {
	return s.tverts
}

// Area returns the area of the shape.
func (s *Shape) Area() float64 {
	switch s.kind {
	case KindCircle:
		return AreaForCircle(0, s.radius)
	case KindSegment:
		return AreaForSegment(s.a, s.b, s.radius)
	default:
		return signedArea(s.verts)
	}
}

// Moment returns the moment of inertia of the shape about the body origin
// for the given mass.
func (s *Shape) Moment(mass float64) float64 {
	switch s.kind {
	case KindCircle:
		return MomentForCircle(mass, 0, s.radius, s.offset)
	case KindSegment:
		return MomentForSegment(mass, s.a, s.b, s.radius)
	default:
		return MomentForPoly(mass, s.verts, vec.Vec2{})
	}
}

// update caches the world geometry and bounding box from the body transform.
func (s *Shape) update() BB {
	t := s.body.transform
	switch s.kind {
	case KindCircle:
		s.tc = t.Apply(s.offset)
		s.bb = NewBBForCircle(s.tc, s.radius)
	case KindSegment:
		s.ta = t.Apply(s.a)
		s.tb = t.Apply(s.b)
		s.tn, _ = normalize(s.tb.Sub(s.ta))
		s.tn = s.tn.ReversePerp()
		s.bb = BB{s.ta.X, s.ta.Y, s.ta.X, s.ta.Y}.Expand(s.tb).Grow(s.radius)
	case KindPolygon:
		for i, v := range s.verts {
			s.tverts[i] = t.Apply(v)
			s.tnormals[i] = t.ApplyVector(s.normals[i])
		}
		bb := BB{s.tverts[0].X, s.tverts[0].Y, s.tverts[0].X, s.tverts[0].Y}
		for _, v := range s.tverts[1:] {
			bb = bb.Expand(v)
		}
		s.bb = bb
	}
	return s.bb
}

// samples returns the world points (and their radius) that stand for the
// shape when it is tested against another shape's distance field.
func (s *Shape) samples(dst []vec.Vec2) ([]vec.Vec2, float64) {
	switch s.kind {
	case KindCircle:
		return append(dst, s.tc), s.radius
	case KindSegment:
		return append(dst, s.ta, s.tb), s.radius
	default:
		return append(dst, s.tverts...), 0
	}
}

// pointQuery returns the signed distance from p to the shape surface, the
// outward surface normal closest to p and the index of the feature that
// owns the closest point. The distance is negative inside the shape.
func (s *Shape) pointQuery(p vec.Vec2) (float64, vec.Vec2, uint16) {
	switch s.kind {
	case KindCircle:
		n, l := normalize(p.Sub(s.tc))
		if l == 0 {
			n = vec.Vec2{X: 0, Y: 1}
		}
		return l - s.radius, n, 0

	case KindSegment:
		q, t := closestPointOnSegment(p, s.ta, s.tb)
		n, l := normalize(p.Sub(q))
		if l == 0 {
			n = s.tn
		}
		var feature uint16 = 2
		if t <= 0 {
			feature = 0
		} else if t >= 1 {
			feature = 1
		}
		return l - s.radius, n, feature

	default:
		count := len(s.tverts)
		maxSep := -infinity
		maxIdx := 0
		for i := range count {
			sep := p.Sub(s.tverts[i]).Dot(s.tnormals[i])
			if sep > maxSep {
				maxSep = sep
				maxIdx = i
			}
		}
		if maxSep <= 0 {
			return maxSep, s.tnormals[maxIdx], uint16(maxIdx)
		}

		minDist := infinity
		var normal vec.Vec2
		var feature uint16
		for i := range count {
			v0 := s.tverts[i]
			v1 := s.tverts[(i+1)%count]
			q, t := closestPointOnSegment(p, v0, v1)
			n, l := normalize(p.Sub(q))
			if l < minDist {
				minDist = l
				normal = n
				switch {
				case t <= 0:
					feature = uint16(count + i)
				case t >= 1:
					feature = uint16(count + (i+1)%count)
				default:
					feature = uint16(i)
				}
			}
		}
		return minDist, normal, feature
	}
}

func signedArea(verts []vec.Vec2) float64 {
	var area float64
	count := len(verts)
	for i := range count {
		area += verts[i].Cross(verts[(i+1)%count])
	}
	return area / 2.0
}
