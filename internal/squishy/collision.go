package squishy

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"softbody/internal/physics"
)

var _ physics.Collider = (*Volume)(nil)

func (v *Volume) Kind() string { return "mesh" }

// CheckCollision tests a small sphere against the surface triangles and reports the nearest hit.
// The penetration pushes the point away from the closest surface point, so a point that is already
// inside the body is pushed further in; callers treat the surface as a thin shell.
func (v *Volume) CheckCollision(point mgl64.Vec3, radius float64) physics.Contact {
	best := math.Inf(1)
	var bestPoint mgl64.Vec3
	for _, t := range v.Triangles {
		a, b, c := v.Particles[t[0]].Position, v.Particles[t[1]].Position, v.Particles[t[2]].Position
		q, ok := closestPointOnTriangle(point, a, b, c)
		if !ok {
			continue
		}
		if d := point.Sub(q).Len(); d < best {
			best = d
			bestPoint = q
		}
	}
	if best >= radius || best == 0 {
		return physics.Contact{}
	}
	dir := point.Sub(bestPoint).Mul(1 / best)
	return physics.Contact{Collides: true, Penetration: dir.Mul(radius - best)}
}

// closestPointOnTriangle projects p onto the triangle's plane and keeps the projection when it lies
// inside all three edges; otherwise it returns the nearest point on the boundary. ok is false for a
// degenerate triangle.
func closestPointOnTriangle(p, a, b, c mgl64.Vec3) (mgl64.Vec3, bool) {
	n := b.Sub(a).Cross(c.Sub(a))
	l := n.Len()
	if l == 0 {
		return mgl64.Vec3{}, false
	}
	n = n.Mul(1 / l)
	proj := p.Sub(n.Mul(p.Sub(a).Dot(n)))

	if b.Sub(a).Cross(proj.Sub(a)).Dot(n) >= 0 &&
		c.Sub(b).Cross(proj.Sub(b)).Dot(n) >= 0 &&
		a.Sub(c).Cross(proj.Sub(c)).Dot(n) >= 0 {
		return proj, true
	}

	best := closestPointOnSegment(p, a, b)
	bestDist := p.Sub(best).Len()
	for _, q := range [2]mgl64.Vec3{closestPointOnSegment(p, b, c), closestPointOnSegment(p, c, a)} {
		if d := p.Sub(q).Len(); d < bestDist {
			best, bestDist = q, d
		}
	}
	return best, true
}

// closestPointOnSegment clamps the projection of p onto a-b to the segment, so endpoints cover the vertex case.
func closestPointOnSegment(p, a, b mgl64.Vec3) mgl64.Vec3 {
	ab := b.Sub(a)
	l2 := ab.Dot(ab)
	if l2 == 0 {
		return a
	}
	t := mgl64.Clamp(p.Sub(a).Dot(ab)/l2, 0, 1)
	return a.Add(ab.Mul(t))
}
