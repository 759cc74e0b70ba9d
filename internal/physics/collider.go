package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Contact is the result of a point-vs-collider query. Penetration is the displacement that moves
// the point out of the collider; it is zero when Collides is false.
type Contact struct {
	Collides    bool
	Penetration mgl64.Vec3
}

// Collider is anything a particle of radius r can be pushed out of.
type Collider interface {
	CheckCollision(point mgl64.Vec3, radius float64) Contact
	Kind() string
}

// SphereCollider is a solid ball.
type SphereCollider struct {
	Center mgl64.Vec3
	Radius float64
}

// NewSphereCollider returns a sphere collider.
func NewSphereCollider(center mgl64.Vec3, radius float64) *SphereCollider {
	return &SphereCollider{Center: center, Radius: radius}
}

func (c *SphereCollider) Kind() string { return "sphere" }

// CheckCollision pushes the point radially out to Radius+radius. A point exactly at the center has no direction and is ignored.
func (c *SphereCollider) CheckCollision(point mgl64.Vec3, radius float64) Contact {
	d := point.Sub(c.Center)
	dist := d.Len()
	reach := c.Radius + radius
	if dist >= reach || dist == 0 {
		return Contact{}
	}
	return Contact{Collides: true, Penetration: d.Mul((reach - dist) / dist)}
}

// BoxCollider is an axis-aligned box.
type BoxCollider struct {
	Center      mgl64.Vec3
	HalfExtents mgl64.Vec3
}

// NewBoxCollider returns a box of the given full size centered at center.
func NewBoxCollider(center, size mgl64.Vec3) *BoxCollider {
	return &BoxCollider{Center: center, HalfExtents: size.Mul(0.5)}
}

func (c *BoxCollider) Kind() string { return "box" }

// insideEpsilon: closer than this to the clamped point counts as inside the box.
const insideEpsilon = 1e-6

// CheckCollision tests the point against the box. Points inside are pushed out through the nearest face.
func (c *BoxCollider) CheckCollision(point mgl64.Vec3, radius float64) Contact {
	local := point.Sub(c.Center)
	h := c.HalfExtents
	closest := mgl64.Vec3{
		mgl64.Clamp(local[0], -h[0], h[0]),
		mgl64.Clamp(local[1], -h[1], h[1]),
		mgl64.Clamp(local[2], -h[2], h[2]),
	}
	diff := local.Sub(closest)
	dist := diff.Len()
	if dist >= radius {
		return Contact{}
	}
	if dist > insideEpsilon {
		return Contact{Collides: true, Penetration: diff.Mul((radius - dist) / dist)}
	}

	axis := 0
	minDist := h[0] - math.Abs(local[0])
	for i := 1; i < 3; i++ {
		if d := h[i] - math.Abs(local[i]); d < minDist {
			minDist = d
			axis = i
		}
	}
	var normal mgl64.Vec3
	// a point exactly on the center plane leaves through the negative face
	normal[axis] = -1
	if local[axis] > 0 {
		normal[axis] = 1
	}
	return Contact{Collides: true, Penetration: normal.Mul(radius + minDist)}
}

// PlaneCollider is an infinite half-space; Normal points out of the solid side.
type PlaneCollider struct {
	Point  mgl64.Vec3
	Normal mgl64.Vec3
}

// NewPlaneCollider returns a plane through point. normal is normalized; a zero normal becomes +Y.
func NewPlaneCollider(point, normal mgl64.Vec3) *PlaneCollider {
	if normal.Len() == 0 {
		normal = mgl64.Vec3{0, 1, 0}
	}
	return &PlaneCollider{Point: point, Normal: normal.Normalize()}
}

func (c *PlaneCollider) Kind() string { return "plane" }

// CheckCollision pushes the point along Normal until it sits radius above the plane.
func (c *PlaneCollider) CheckCollision(point mgl64.Vec3, radius float64) Contact {
	s := point.Sub(c.Point).Dot(c.Normal)
	if s >= radius {
		return Contact{}
	}
	return Contact{Collides: true, Penetration: c.Normal.Mul(radius - s)}
}
