package cloth

import "github.com/go-gl/mathgl/mgl64"

// parallelEpsilon is the |d×s|² below which the ray and a spring are treated as parallel.
const parallelEpsilon = 1e-10

// DefaultCutRadius is the cut width used by interactive cutting.
const DefaultCutRadius = 0.1

// CutCloth breaks every unbroken spring whose segment passes within radius of the line through
// origin along direction, and returns how many were broken. All hits are collected before any
// spring is marked, so the result does not depend on spring order.
func (c *Cloth) CutCloth(origin, direction mgl64.Vec3, radius float64) int {
	if direction.Len() == 0 {
		return 0
	}
	var hits []int
	for i := range c.Springs {
		s := &c.Springs[i]
		if s.Broken {
			continue
		}
		if rayHitsSegment(origin, direction, c.Particles[s.A].Position, c.Particles[s.B].Position, radius) {
			hits = append(hits, i)
		}
	}
	for _, i := range hits {
		c.Springs[i].Broken = true
	}
	return len(hits)
}

// rayHitsSegment reports whether the segment p1-p2 comes within radius of the line origin+t·dir.
// The closest point on the segment must lie within the segment; the line is unbounded both ways.
// A ray parallel to the segment only hits when its origin lies within radius of the segment.
func rayHitsSegment(origin, dir, p1, p2 mgl64.Vec3, radius float64) bool {
	seg := p2.Sub(p1)
	w := p1.Sub(origin)
	cross := dir.Cross(seg)
	denom := cross.Dot(cross)

	if denom < parallelEpsilon {
		// parallel: distance from the origin to its projection clamped onto the segment
		segLen2 := seg.Dot(seg)
		closest := p1
		if segLen2 > 0 {
			u := mgl64.Clamp(origin.Sub(p1).Dot(seg)/segLen2, 0, 1)
			closest = p1.Add(seg.Mul(u))
		}
		return origin.Sub(closest).Len() < radius
	}

	t := w.Cross(seg).Dot(cross) / denom
	u := w.Cross(dir).Dot(cross) / denom
	if u < 0 || u > 1 {
		return false
	}
	onRay := origin.Add(dir.Mul(t))
	onSeg := p1.Add(seg.Mul(u))
	return onRay.Sub(onSeg).Len() < radius
}
