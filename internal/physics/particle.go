package physics

import "github.com/go-gl/mathgl/mgl64"

// Particle is a point mass integrated with position Verlet. Velocity is derived from the last step
// and is only read by damping, collision response and energy; Verlet itself works from OldPosition.
// Fixed particles never move: their inverse mass is 0 and every update is a no-op.
type Particle struct {
	Position     mgl64.Vec3
	OldPosition  mgl64.Vec3
	Velocity     mgl64.Vec3
	Acceleration mgl64.Vec3

	mass        float64
	inverseMass float64
	fixed       bool
}

// NewParticle returns a particle at rest at position. mass <= 0 is treated as 1.
func NewParticle(position mgl64.Vec3, mass float64, fixed bool) Particle {
	if mass <= 0 {
		mass = 1
	}
	p := Particle{
		Position:    position,
		OldPosition: position,
		mass:        mass,
	}
	p.SetFixed(fixed)
	return p
}

// Mass returns the particle mass.
func (p *Particle) Mass() float64 { return p.mass }

// InverseMass returns 1/mass, or 0 for a fixed particle.
func (p *Particle) InverseMass() float64 { return p.inverseMass }

// IsFixed reports whether the particle is pinned in place.
func (p *Particle) IsFixed() bool { return p.fixed }

// SetFixed pins or releases the particle. Position and velocity are left as they are.
func (p *Particle) SetFixed(fixed bool) {
	p.fixed = fixed
	if fixed {
		p.inverseMass = 0
		return
	}
	p.inverseMass = 1 / p.mass
}

// AddForce accumulates force/mass into the acceleration.
func (p *Particle) AddForce(force mgl64.Vec3) {
	if p.fixed {
		return
	}
	p.Acceleration = p.Acceleration.Add(force.Mul(p.inverseMass))
}

// Update advances the particle by dt using position Verlet:
// next = 2*pos - old + acc*dt². Velocity becomes (next-pos)/dt and the acceleration is cleared.
func (p *Particle) Update(dt float64) {
	if p.fixed || dt <= 0 {
		return
	}
	next := p.Position.Mul(2).Sub(p.OldPosition).Add(p.Acceleration.Mul(dt * dt))
	p.Velocity = next.Sub(p.Position).Mul(1 / dt)
	p.OldPosition = p.Position
	p.Position = next
	p.Acceleration = mgl64.Vec3{}
}

// UpdateEuler advances the particle by dt with semi-implicit Euler (velocity first, then position).
// OldPosition is not touched; callers that mix integrators set it themselves.
func (p *Particle) UpdateEuler(dt float64) {
	if p.fixed || dt <= 0 {
		return
	}
	p.Velocity = p.Velocity.Add(p.Acceleration.Mul(dt))
	p.Position = p.Position.Add(p.Velocity.Mul(dt))
	p.Acceleration = mgl64.Vec3{}
}

// KineticEnergy returns ½·m·|v|².
func (p *Particle) KineticEnergy() float64 {
	return 0.5 * p.mass * p.Velocity.Dot(p.Velocity)
}
