// Package cloth simulates a rectangular sheet of particles joined by structural, shear and bend springs.
package cloth

import (
	"github.com/go-gl/mathgl/mgl64"

	"softbody/internal/physics"
)

const (
	// FloorY is the height of the built-in ground plane.
	FloorY = 0.0

	// startHeight is where a fresh sheet is laid out.
	startHeight = 2.0

	constraintIterations    = 3
	pbdConstraintIterations = 10

	floorRestitution = 0.5
	floorFriction    = 0.9

	particleRadius = 0.01
	colliderLoss   = 0.8
)

// Cloth is a rows×cols particle grid stored row-major in the embedded World (index i*Cols+j).
// Grid indices never change for the life of the cloth; Reset rebuilds the same layout.
type Cloth struct {
	physics.World

	Width, Height float64
	Rows, Cols    int
	Fabric        FabricType
	Params        FabricParams

	WindDirection mgl64.Vec3
	WindStrength  float64

	// TearFactor > 0 breaks springs stretched beyond TearFactor×rest length at the end of every step.
	TearFactor float64

	// Energy is the total energy computed at the end of the last step.
	Energy float64
}

// New builds a cloth with the built-in parameters of fabric.
func New(width, height float64, rows, cols int, fabric FabricType) *Cloth {
	c := NewWithParams(width, height, rows, cols, Preset(fabric))
	c.Fabric = fabric
	return c
}

// NewWithParams builds a cloth with caller-owned parameters. rows and cols are raised to at least 2.
// The sheet is laid flat at y=2, centered on the origin, with the two corners of row 0 pinned.
func NewWithParams(width, height float64, rows, cols int, params FabricParams) *Cloth {
	c := &Cloth{
		World:         physics.NewWorld(),
		Width:         width,
		Height:        height,
		Rows:          max(rows, 2),
		Cols:          max(cols, 2),
		Params:        params,
		WindDirection: mgl64.Vec3{0, 0, 1},
	}
	c.build()
	return c
}

func (c *Cloth) build() {
	c.ClearTopology()
	c.createParticleGrid()
	c.createSprings()
	c.Energy = c.TotalEnergy()
}

// Index returns the flat particle index of (row, col).
func (c *Cloth) Index(row, col int) int { return row*c.Cols + col }

func (c *Cloth) inBounds(row, col int) bool {
	return row >= 0 && row < c.Rows && col >= 0 && col < c.Cols
}

// Particle returns the particle at (row, col), or nil when out of range.
func (c *Cloth) Particle(row, col int) *physics.Particle {
	if !c.inBounds(row, col) {
		return nil
	}
	return &c.Particles[c.Index(row, col)]
}

// createParticleGrid uses the column spacing for both axes, so Height only matters through the
// row count; the sheet is square-celled.
func (c *Cloth) createParticleGrid() {
	spacing := c.Width / float64(c.Cols-1)
	for i := 0; i < c.Rows; i++ {
		for j := 0; j < c.Cols; j++ {
			pos := mgl64.Vec3{
				float64(j)*spacing - c.Width/2,
				startHeight,
				float64(i)*spacing - c.Height/2,
			}
			fixed := i == 0 && (j == 0 || j == c.Cols-1)
			c.AddParticle(physics.NewParticle(pos, c.Params.Mass, fixed))
		}
	}
}

func (c *Cloth) createSprings() {
	p := c.Params
	link := func(i1, j1, i2, j2 int, k float64, typ physics.SpringType) {
		if !c.inBounds(i2, j2) {
			return
		}
		c.AddSpring(c.Index(i1, j1), c.Index(i2, j2), k, p.Damping, typ)
	}
	for i := 0; i < c.Rows; i++ {
		for j := 0; j < c.Cols; j++ {
			link(i, j, i, j+1, p.StructuralStiffness, physics.Structural)
			link(i, j, i+1, j, p.StructuralStiffness, physics.Structural)
			link(i, j, i+1, j+1, p.ShearStiffness, physics.Shear)
			link(i, j, i+1, j-1, p.ShearStiffness, physics.Shear)
			link(i, j, i, j+2, p.BendStiffness, physics.Bend)
			link(i, j, i+2, j, p.BendStiffness, physics.Bend)
		}
	}
}

// SetWind sets the wind direction and strength. The direction is normalized when applied.
func (c *Cloth) SetWind(direction mgl64.Vec3, strength float64) {
	c.WindDirection = direction
	c.WindStrength = strength
}

// AddCollisionObject registers an obstacle.
func (c *Cloth) AddCollisionObject(col physics.Collider) { c.AddCollider(col) }

// ClearCollisionObjects removes every obstacle.
func (c *Cloth) ClearCollisionObjects() { c.ClearColliders() }

// PinParticle pins or releases (row, col). Out-of-range cells are ignored; ok reports whether one was found.
func (c *Cloth) PinParticle(row, col int, fixed bool) bool {
	p := c.Particle(row, col)
	if p == nil {
		return false
	}
	p.SetFixed(fixed)
	if fixed {
		p.OldPosition = p.Position
		p.Velocity = mgl64.Vec3{}
	}
	return true
}

// Update advances the cloth by dt: forces, spring forces, Verlet, collisions, then 3 passes of
// distance projection. The force springs and the projection both run every step.
func (c *Cloth) Update(dt float64) {
	if dt <= 0 {
		return
	}
	c.ApplyGravity()
	if c.WindStrength > 0 {
		c.applyWind()
	}
	c.UpdateSprings()
	c.Integrate(dt)
	c.handleCollisions()
	c.SolveConstraints(constraintIterations)
	c.finishStep()
}

// UpdatePBD advances the cloth by dt with position-based dynamics: predict with semi-implicit Euler,
// project constraints 10 times, then derive velocity from the corrected positions.
func (c *Cloth) UpdatePBD(dt float64) {
	if dt <= 0 {
		return
	}
	c.ApplyGravity()
	if c.WindStrength > 0 {
		c.applyWind()
	}
	for i := range c.Particles {
		p := &c.Particles[i]
		if p.IsFixed() {
			continue
		}
		p.OldPosition = p.Position
		p.UpdateEuler(dt)
	}
	c.SolveConstraints(pbdConstraintIterations)
	for i := range c.Particles {
		p := &c.Particles[i]
		if p.IsFixed() {
			continue
		}
		p.Velocity = p.Position.Sub(p.OldPosition).Mul(1 / dt)
	}
	c.handleCollisions()
	c.finishStep()
}

func (c *Cloth) finishStep() {
	if c.TearFactor > 0 {
		c.Tear(c.TearFactor)
	}
	c.CalculateTotalEnergy()
}

// applyWind pushes each quad along the wind direction in proportion to how squarely it faces the
// wind, strength² and quad area. Quads edge-on or facing away get nothing.
func (c *Cloth) applyWind() {
	if c.WindDirection.Len() == 0 {
		return
	}
	wind := c.WindDirection.Normalize()
	s2 := c.WindStrength * c.WindStrength
	for i := 0; i < c.Rows-1; i++ {
		for j := 0; j < c.Cols-1; j++ {
			i1, i2 := c.Index(i, j), c.Index(i, j+1)
			i3, i4 := c.Index(i+1, j+1), c.Index(i+1, j)
			p1, p2 := c.Particles[i1].Position, c.Particles[i2].Position
			p3, p4 := c.Particles[i3].Position, c.Particles[i4].Position

			e1, e2 := p2.Sub(p1), p4.Sub(p1)
			cross1 := e1.Cross(e2)
			normal := safeNormalize(cross1).Add(safeNormalize(p3.Sub(p2).Cross(p4.Sub(p3))))
			normal = safeNormalize(normal)
			area := cross1.Len() * 0.5

			magnitude := normal.Dot(wind) * s2 * area
			if magnitude <= 0 {
				continue
			}
			f := wind.Mul(magnitude * 0.25)
			for _, idx := range [4]int{i1, i2, i3, i4} {
				c.Particles[idx].AddForce(f)
			}
		}
	}
}

func safeNormalize(v mgl64.Vec3) mgl64.Vec3 {
	l := v.Len()
	if l == 0 {
		return mgl64.Vec3{}
	}
	return v.Mul(1 / l)
}

// handleCollisions clamps particles to the floor, then resolves every collider.
func (c *Cloth) handleCollisions() {
	for i := range c.Particles {
		p := &c.Particles[i]
		if p.IsFixed() || p.Position[1] >= FloorY {
			continue
		}
		p.Position[1] = FloorY
		p.Velocity[1] *= -floorRestitution
		p.Velocity[0] *= floorFriction
		p.Velocity[2] *= floorFriction
	}
	c.ResolveColliders(particleRadius, func(p *physics.Particle, n mgl64.Vec3) {
		vn := p.Velocity.Dot(n)
		if vn >= 0 {
			return
		}
		p.Velocity = p.Velocity.Add(n.Mul(-2 * vn)).Mul(colliderLoss)
	})
}

// Tear breaks every spring stretched beyond factor×rest length and returns how many broke this call.
// factor <= 0 uses the fabric's StretchFactor.
func (c *Cloth) Tear(factor float64) int {
	if factor <= 0 {
		factor = c.Params.StretchFactor
	}
	if factor <= 0 {
		return 0
	}
	n := 0
	for i := range c.Springs {
		s := &c.Springs[i]
		if s.Broken {
			continue
		}
		if s.CheckBreak(c.Particles, factor) {
			n++
		}
	}
	return n
}

// CalculateTotalEnergy recomputes and stores Energy.
func (c *Cloth) CalculateTotalEnergy() float64 {
	c.Energy = c.TotalEnergy()
	return c.Energy
}

// Reset discards all particles and springs and rebuilds the sheet. Colliders, wind and gravity are kept.
func (c *Cloth) Reset() {
	c.build()
}

// Clone returns a new cloth with the same layout and parameters carrying this cloth's particle
// state and broken springs. Gravity, wind and colliders are shared settings and are copied too.
func (c *Cloth) Clone() *Cloth {
	n := NewWithParams(c.Width, c.Height, c.Rows, c.Cols, c.Params)
	n.Fabric = c.Fabric
	n.Gravity = c.Gravity
	n.WindDirection = c.WindDirection
	n.WindStrength = c.WindStrength
	n.TearFactor = c.TearFactor
	n.Colliders = append([]physics.Collider(nil), c.Colliders...)
	n.CopyStateFrom(&c.World)
	n.Energy = c.Energy
	return n
}
