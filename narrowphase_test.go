package impulse

import (
	"math"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/setanarut/vec"
)

func newTestBody(t *testing.T, pos vec.Vec2) *Body {
	t.Helper()
	b, err := NewBody(1, 1)
	if err != nil {
		t.Fatal(err)
	}
	b.SetPosition(pos)
	return b
}

func TestCircleCircleContact(t *testing.T) {
	g := NewWithT(t)
	a, _ := NewCircle(newTestBody(t, vec.Vec2{}), 1, vec.Vec2{})
	b, _ := NewCircle(newTestBody(t, vec.Vec2{X: 1.5}), 1, vec.Vec2{})

	var np DistanceNarrowPhase
	contacts := np.Collide(a, b, nil)
	g.Expect(contacts).To(HaveLen(1))
	c := contacts[0]
	g.Expect(c.ID).To(Equal(ContactID{Side: 0, Sample: 0, Feature: 0}))
	g.Expect(c.Normal.X).To(BeNumerically("~", 1, 1e-12))
	g.Expect(c.Separation).To(BeNumerically("~", -0.5, 1e-12))
	g.Expect(c.Position.X).To(BeNumerically("~", 1, 1e-12))

	b.body.SetPosition(vec.Vec2{X: 2.5})
	b.update()
	g.Expect(np.Collide(a, b, nil)).To(BeEmpty())
}

func TestBoxRestingOnBox(t *testing.T) {
	g := NewWithT(t)
	floorBody := NewStaticBody()
	floorBody.SetPosition(vec.Vec2{Y: -0.5})
	floor, _ := NewBox(floorBody, 10, 1)
	box, _ := NewBox(newTestBody(t, vec.Vec2{Y: 0.45}), 1, 1)

	var np DistanceNarrowPhase
	contacts := np.Collide(floor, box, nil)
	g.Expect(contacts).To(HaveLen(2))
	for i, c := range contacts {
		g.Expect(c.ID.Side).To(Equal(uint8(1)))
		g.Expect(c.ID.Sample).To(Equal(uint16(i)))
		g.Expect(c.ID.Feature).To(Equal(uint16(2)))
		g.Expect(c.Normal.Y).To(BeNumerically("~", 1, 1e-12))
		g.Expect(c.Separation).To(BeNumerically("~", -0.05, 1e-12))
	}
}

func TestSegmentFeatures(t *testing.T) {
	seg, _ := NewSegment(NewStaticBody(), vec.Vec2{}, vec.Vec2{X: 2}, 0)
	tests := []struct {
		p       vec.Vec2
		dist    float64
		feature uint16
	}{
		{vec.Vec2{X: -1}, 1, 0},
		{vec.Vec2{X: 3}, 1, 1},
		{vec.Vec2{X: 1, Y: 0.5}, 0.5, 2},
	}
	for _, tt := range tests {
		dist, _, feature := seg.pointQuery(tt.p)
		if math.Abs(dist-tt.dist) > 1e-12 || feature != tt.feature {
			t.Errorf("pointQuery(%v) = %v, %d; want %v, %d", tt.p, dist, feature, tt.dist, tt.feature)
		}
	}
}

func TestPolygonPointQuery(t *testing.T) {
	g := NewWithT(t)
	box, _ := NewBox(NewStaticBody(), 2, 2)

	dist, n, feature := box.pointQuery(vec.Vec2{X: 0.9})
	g.Expect(dist).To(BeNumerically("~", -0.1, 1e-12))
	g.Expect(n.X).To(BeNumerically("~", 1, 1e-12))
	g.Expect(feature).To(Equal(uint16(1)))

	// outside past a corner the feature is the vertex
	dist, _, feature = box.pointQuery(vec.Vec2{X: 2, Y: 2})
	g.Expect(dist).To(BeNumerically("~", math.Sqrt2, 1e-12))
	g.Expect(feature).To(BeNumerically(">=", 4))
}

func TestContactCaps(t *testing.T) {
	g := NewWithT(t)
	settings := DefaultSettings()
	settings.MaxContactsToDetect = 2
	settings.MaxContactsToResolve = 1

	floorBody := NewStaticBody()
	floorBody.SetPosition(vec.Vec2{Y: -0.5})
	floor, _ := NewBox(floorBody, 10, 1)
	tilted := newTestBody(t, vec.Vec2{Y: 0.4})
	tilted.SetAngle(0.05)
	box, _ := NewBox(tilted, 1, 1)

	arb := NewArbiter(floor, box, &settings)
	g.Expect(arb.Collide(&DistanceNarrowPhase{})).To(Equal(1))

	// the deepest contact is kept
	all := (&DistanceNarrowPhase{}).Collide(floor, box, nil)
	deepest := all[0]
	for _, c := range all {
		if c.Separation < deepest.Separation {
			deepest = c
		}
	}
	g.Expect(arb.Contacts()[0].ID).To(Equal(deepest.ID))
}

func TestCollideCarriesImpulses(t *testing.T) {
	g := NewWithT(t)
	settings := DefaultSettings()
	floorBody := NewStaticBody()
	floorBody.SetPosition(vec.Vec2{Y: -0.5})
	floor, _ := NewBox(floorBody, 10, 1)
	box, _ := NewBox(newTestBody(t, vec.Vec2{Y: 0.45}), 1, 1)

	arb := NewArbiter(floor, box, &settings)
	g.Expect(arb.Collide(&DistanceNarrowPhase{})).To(Equal(2))
	arb.contacts[0].jnAcc = 3
	arb.contacts[1].jtAcc = -1

	g.Expect(arb.Collide(&DistanceNarrowPhase{})).To(Equal(2))
	g.Expect(arb.contacts[0].NormalImpulse()).To(Equal(3.0))
	g.Expect(arb.contacts[1].TangentImpulse()).To(Equal(-1.0))
}
