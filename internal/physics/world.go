package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// World is the shared particle/spring arena behind cloth and deformable volumes.
// Springs refer to particles by index into Particles, so the slices may be reallocated freely
// while building but must not be reordered afterwards.
type World struct {
	Gravity   mgl64.Vec3
	Particles []Particle
	Springs   []Spring
	Colliders []Collider
}

// DefaultGravity is Y-up gravity in m/s².
var DefaultGravity = mgl64.Vec3{0, -9.8, 0}

// NewWorld returns an empty world with DefaultGravity.
func NewWorld() World {
	return World{Gravity: DefaultGravity}
}

// SetGravity sets the gravity vector (e.g. {0, -9.8, 0} for down in -Y).
func (w *World) SetGravity(g mgl64.Vec3) {
	w.Gravity = g
}

// AddParticle appends a particle and returns its index.
func (w *World) AddParticle(p Particle) int {
	w.Particles = append(w.Particles, p)
	return len(w.Particles) - 1
}

// AddSpring links particles a and b at their current distance. Self links and out-of-range
// indices are ignored; ok reports whether a spring was added.
func (w *World) AddSpring(a, b int, stiffness, damping float64, typ SpringType) bool {
	n := len(w.Particles)
	if a == b || a < 0 || b < 0 || a >= n || b >= n {
		return false
	}
	w.Springs = append(w.Springs, NewSpring(w.Particles, a, b, stiffness, damping, typ))
	return true
}

// AddCollider registers an external obstacle.
func (w *World) AddCollider(c Collider) {
	if c == nil {
		return
	}
	w.Colliders = append(w.Colliders, c)
}

// ClearColliders removes every obstacle.
func (w *World) ClearColliders() {
	w.Colliders = nil
}

// ClearTopology drops all particles and springs. Colliders and gravity are kept.
func (w *World) ClearTopology() {
	w.Particles = w.Particles[:0]
	w.Springs = w.Springs[:0]
}

// ResetAccelerations zeroes every particle's accumulated acceleration.
func (w *World) ResetAccelerations() {
	for i := range w.Particles {
		w.Particles[i].Acceleration = mgl64.Vec3{}
	}
}

// ApplyGravity adds m·g to every free particle.
func (w *World) ApplyGravity() {
	for i := range w.Particles {
		p := &w.Particles[i]
		if p.IsFixed() {
			continue
		}
		p.AddForce(w.Gravity.Mul(p.Mass()))
	}
}

// UpdateSprings applies every spring force.
func (w *World) UpdateSprings() {
	for i := range w.Springs {
		w.Springs[i].Update(w.Particles)
	}
}

// Integrate advances every particle by dt with Verlet.
func (w *World) Integrate(dt float64) {
	for i := range w.Particles {
		w.Particles[i].Update(dt)
	}
}

// SolveConstraints runs the given number of relaxation passes over all springs, in order.
func (w *World) SolveConstraints(iterations int) {
	for it := 0; it < iterations; it++ {
		for i := range w.Springs {
			w.Springs[i].SolveConstraint(w.Particles)
		}
	}
}

// ResolveColliders pushes every free particle out of every collider, treating the particle as a
// sphere of the given radius. respond is called with the unit contact normal after each displacement.
func (w *World) ResolveColliders(radius float64, respond func(p *Particle, normal mgl64.Vec3)) {
	for _, c := range w.Colliders {
		for i := range w.Particles {
			p := &w.Particles[i]
			if p.IsFixed() {
				continue
			}
			contact := c.CheckCollision(p.Position, radius)
			if !contact.Collides {
				continue
			}
			p.Position = p.Position.Add(contact.Penetration)
			depth := contact.Penetration.Len()
			if depth == 0 || respond == nil {
				continue
			}
			respond(p, contact.Penetration.Mul(1/depth))
		}
	}
}

// TotalEnergy sums kinetic, spring and gravitational energy. Fixed particles contribute nothing;
// gravitational energy is -m·(g·p), so height above the origin counts as positive under Y-down gravity.
func (w *World) TotalEnergy() float64 {
	var e float64
	for i := range w.Particles {
		p := &w.Particles[i]
		if p.IsFixed() {
			continue
		}
		e += p.KineticEnergy()
		e -= p.Mass() * w.Gravity.Dot(p.Position)
	}
	for i := range w.Springs {
		e += w.Springs[i].PotentialEnergy(w.Particles)
	}
	return e
}

// BrokenSprings counts springs that have been cut or torn.
func (w *World) BrokenSprings() int {
	n := 0
	for i := range w.Springs {
		if w.Springs[i].Broken {
			n++
		}
	}
	return n
}

// CopyStateFrom copies per-particle kinematic state and pin flags plus per-spring broken flags
// from src. Both worlds must share the same topology; extra entries on either side are ignored.
func (w *World) CopyStateFrom(src *World) {
	for i := 0; i < len(w.Particles) && i < len(src.Particles); i++ {
		d, s := &w.Particles[i], &src.Particles[i]
		d.Position = s.Position
		d.OldPosition = s.OldPosition
		d.Velocity = s.Velocity
		d.SetFixed(s.IsFixed())
	}
	for i := 0; i < len(w.Springs) && i < len(src.Springs); i++ {
		w.Springs[i].Broken = src.Springs[i].Broken
	}
}

// NearestParticle returns the particle closest to pos, provided it lies strictly within radius.
func (w *World) NearestParticle(pos mgl64.Vec3, radius float64) (int, bool) {
	best, bestDist := -1, radius
	for i := range w.Particles {
		if d := w.Particles[i].Position.Sub(pos).Len(); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, best >= 0
}

// PickParticle returns the particle a ray selects: among particles ahead of origin and closer than
// radius to the ray, the one nearest along the ray wins. direction need not be normalized.
func (w *World) PickParticle(origin, direction mgl64.Vec3, radius float64) (int, bool) {
	if direction.Len() == 0 {
		return -1, false
	}
	dir := direction.Normalize()
	best, bestAlong := -1, math.Inf(1)
	for i := range w.Particles {
		to := w.Particles[i].Position.Sub(origin)
		along := to.Dot(dir)
		if along < 0 {
			continue
		}
		if to.Sub(dir.Mul(along)).Len() < radius && along < bestAlong {
			best, bestAlong = i, along
		}
	}
	return best, best >= 0
}
