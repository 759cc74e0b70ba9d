package physics

import "github.com/go-gl/mathgl/mgl64"

// SpringType classifies a spring by the role it plays in a lattice.
type SpringType int

const (
	Structural SpringType = iota
	Shear
	Bend
)

func (t SpringType) String() string {
	switch t {
	case Structural:
		return "structural"
	case Shear:
		return "shear"
	case Bend:
		return "bend"
	}
	return "unknown"
}

// Spring is a damped Hookean link between two particles of the same arena, addressed by index.
// RestLength is taken at construction and never changes. A broken spring applies no force and no correction.
type Spring struct {
	A, B       int
	RestLength float64
	Stiffness  float64
	Damping    float64
	Type       SpringType
	Broken     bool
}

// NewSpring links particles a and b of ps at their current distance.
func NewSpring(ps []Particle, a, b int, stiffness, damping float64, typ SpringType) Spring {
	return Spring{
		A:          a,
		B:          b,
		RestLength: ps[b].Position.Sub(ps[a].Position).Len(),
		Stiffness:  stiffness,
		Damping:    damping,
		Type:       typ,
	}
}

// Length returns the current distance between the endpoints.
func (s *Spring) Length(ps []Particle) float64 {
	return ps[s.B].Position.Sub(ps[s.A].Position).Len()
}

// Stretch returns current length minus rest length.
func (s *Spring) Stretch(ps []Particle) float64 {
	return s.Length(ps) - s.RestLength
}

// Update applies the spring and damping force to both endpoints.
// Positive stretch pulls A toward B and B toward A.
func (s *Spring) Update(ps []Particle) {
	if s.Broken {
		return
	}
	a, b := &ps[s.A], &ps[s.B]
	delta := b.Position.Sub(a.Position)
	length := delta.Len()
	if length == 0 {
		return
	}
	dir := delta.Mul(1 / length)
	stretch := length - s.RestLength
	damping := (b.Velocity.Dot(dir) - a.Velocity.Dot(dir)) * s.Damping
	force := dir.Mul(s.Stiffness*stretch + damping)
	a.AddForce(force)
	b.AddForce(force.Mul(-1))
}

// SolveConstraint moves the endpoints toward the rest length, split by inverse mass.
func (s *Spring) SolveConstraint(ps []Particle) {
	if s.Broken {
		return
	}
	a, b := &ps[s.A], &ps[s.B]
	wSum := a.InverseMass() + b.InverseMass()
	if wSum == 0 {
		return
	}
	delta := b.Position.Sub(a.Position)
	length := delta.Len()
	if length == 0 {
		return
	}
	dir := delta.Mul(1 / length)
	correction := (length - s.RestLength) / wSum
	a.Position = a.Position.Add(dir.Mul(correction * a.InverseMass()))
	b.Position = b.Position.Sub(dir.Mul(correction * b.InverseMass()))
}

// CheckBreak breaks the spring once it is longer than RestLength*factor. Reports whether it is broken.
func (s *Spring) CheckBreak(ps []Particle, factor float64) bool {
	if s.Broken {
		return true
	}
	if s.Length(ps) > s.RestLength*factor {
		s.Broken = true
	}
	return s.Broken
}

// PotentialEnergy returns ½·k·stretch², or 0 for a broken spring.
func (s *Spring) PotentialEnergy(ps []Particle) float64 {
	if s.Broken {
		return 0
	}
	x := s.Stretch(ps)
	return 0.5 * s.Stiffness * x * x
}

// Midpoint is the center of the spring, used by cutting and debug drawing.
func (s *Spring) Midpoint(ps []Particle) mgl64.Vec3 {
	return ps[s.A].Position.Add(ps[s.B].Position).Mul(0.5)
}
