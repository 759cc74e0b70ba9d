package cloth

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// SelectRadius is how far from the pick ray a particle may be and still be selected.
const SelectRadius = 0.5

// ClosestParticle returns the cell a ray selects: the particle within SelectRadius of the ray that
// lies nearest along it. Particles behind origin are ignored.
func (c *Cloth) ClosestParticle(origin, direction mgl64.Vec3) (row, col int, ok bool) {
	i, ok := c.PickParticle(origin, direction, SelectRadius)
	if !ok {
		return -1, -1, false
	}
	return i / c.Cols, i % c.Cols, true
}

// DragParticle moves (row, col) to where the ray crosses the plane through the particle with the
// given normal (the camera forward vector when dragging with the mouse). The particle is left at
// rest there. Fixed or missing particles, rays parallel to the plane and planes behind origin are
// ignored; ok reports whether the particle moved.
func (c *Cloth) DragParticle(row, col int, origin, direction, normal mgl64.Vec3) bool {
	p := c.Particle(row, col)
	if p == nil || p.IsFixed() {
		return false
	}
	denom := direction.Dot(normal)
	if math.Abs(denom) < 1e-12 {
		return false
	}
	t := p.Position.Sub(origin).Dot(normal) / denom
	if t < 0 {
		return false
	}
	hit := origin.Add(direction.Mul(t))
	p.Position = hit
	p.OldPosition = hit
	p.Velocity = mgl64.Vec3{}
	return true
}
