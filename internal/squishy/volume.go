// Package squishy simulates closed deformable volumes: a particle-spring shell (with interior
// anchors for some shapes) kept inflated by a pressure force over its surface triangles.
package squishy

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"softbody/internal/physics"
)

const (
	// FloorY is the height of the built-in ground plane.
	FloorY = -2.0
	// floorRest is where a particle is put back after crossing the floor.
	floorRest     = FloorY + 0.01
	floorFriction = 0.8

	particleRadius = 0.1

	defaultSubsteps        = 3
	defaultVelocityDamping = 0.99
	constraintIterations   = 3

	minVolumeFraction = 0.01
	maxPressureFactor = 5.0
	minTriangleArea   = 1e-5

	maxSpeed         = 50.0
	maxDistanceScale = 10.0
)

// Logger receives watchdog messages. *logger.Logger satisfies it.
type Logger interface {
	Log(line string)
}

// Triangle is a surface triangle as three particle indices, wound counter-clockwise seen from outside.
type Triangle [3]int

// Options describe a volume to build.
type Options struct {
	Shape    Shape
	Material Material
	// Params overrides the material preset when non-nil.
	Params *MaterialParams
	Center mgl64.Vec3
	// Size is the sphere radius, torus major radius, cube edge or pyramid base edge.
	Size float64
	// Secondary is the torus minor radius or the pyramid height; other shapes ignore it.
	Secondary float64
	Logger    Logger
}

// DefaultOptions returns the stock demo object: the given shape and material at (0,3,0).
func DefaultOptions(shape Shape, m Material) Options {
	o := Options{Shape: shape, Material: m, Center: mgl64.Vec3{0, 3, 0}}
	o.Size, o.Secondary = defaultDims(shape)
	return o
}

func defaultDims(shape Shape) (size, secondary float64) {
	switch shape {
	case ShapeTorus:
		return 1.5, 0.5
	case ShapeCube:
		return 2, 0
	case ShapePyramid:
		return 2, 2
	}
	return 1.5, 0
}

// Volume is a closed deformable body. Particles, springs and Triangles index into the embedded World.
type Volume struct {
	physics.World

	Triangles []Triangle
	Shape     Shape
	Material  Material
	Params    MaterialParams

	// Center is the construction position; the watchdog measures escape distance from it.
	Center mgl64.Vec3
	Scale  mgl64.Vec3

	VelocityDamping float64
	Substeps        int

	Energy        float64
	InitialVolume float64
	LastVolume    float64
	// Resets counts watchdog resets.
	Resets int

	size, secondary float64
	pins            []int
	log             Logger
}

// New builds a volume from o. Non-positive sizes fall back to the shape defaults.
func New(o Options) *Volume {
	params := Preset(o.Material)
	if o.Params != nil {
		params = *o.Params
	}
	size, secondary := defaultDims(o.Shape)
	if o.Size > 0 {
		size = o.Size
	}
	if o.Secondary > 0 {
		secondary = o.Secondary
	}
	v := &Volume{
		World:           physics.NewWorld(),
		Shape:           o.Shape,
		Material:        o.Material,
		Params:          params,
		Center:          o.Center,
		VelocityDamping: defaultVelocityDamping,
		Substeps:        defaultSubsteps,
		size:            size,
		secondary:       secondary,
		log:             o.Logger,
	}
	v.Scale = v.scale()
	v.build()
	v.InitialVolume = v.CalculateVolume()
	v.LastVolume = v.InitialVolume
	v.Energy = v.TotalEnergy()
	return v
}

// NewSphere builds a sphere of the given radius.
func NewSphere(center mgl64.Vec3, radius float64, m Material) *Volume {
	return New(Options{Shape: ShapeSphere, Material: m, Center: center, Size: radius})
}

// NewTorus builds a torus lying in the XZ plane.
func NewTorus(center mgl64.Vec3, majorRadius, minorRadius float64, m Material) *Volume {
	return New(Options{Shape: ShapeTorus, Material: m, Center: center, Size: majorRadius, Secondary: minorRadius})
}

// NewCube builds an axis-aligned cube with the given edge length.
func NewCube(center mgl64.Vec3, size float64, m Material) *Volume {
	return New(Options{Shape: ShapeCube, Material: m, Center: center, Size: size})
}

// NewPyramid builds a square pyramid, apex up, with the given base edge and height.
func NewPyramid(center mgl64.Vec3, base, height float64, m Material) *Volume {
	return New(Options{Shape: ShapePyramid, Material: m, Center: center, Size: base, Secondary: height})
}

// SetLogger sets where watchdog resets are reported. nil silences them.
func (v *Volume) SetLogger(l Logger) { v.log = l }

func (v *Volume) scale() mgl64.Vec3 {
	switch v.Shape {
	case ShapeTorus:
		return mgl64.Vec3{v.size, v.secondary, v.size}
	case ShapePyramid:
		return mgl64.Vec3{v.size, v.secondary, v.size}
	}
	return mgl64.Vec3{v.size, v.size, v.size}
}

func (v *Volume) build() {
	v.ClearTopology()
	v.Triangles = v.Triangles[:0]
	v.pins = v.pins[:0]
	b := newBuilder(v)
	switch v.Shape {
	case ShapeTorus:
		buildTorus(b, v.Center, v.size, v.secondary, v.Params.Resolution)
	case ShapeCube:
		buildCube(b, v.Center, v.size, v.Params.Resolution)
	case ShapePyramid:
		buildPyramid(b, v.Center, v.size, v.secondary, v.Params.Resolution)
	default:
		buildSphere(b, v.Center, v.size, v.Params.Resolution)
	}
}

// AddCollider registers an obstacle. A volume is never registered as its own collider.
func (v *Volume) AddCollider(c physics.Collider) {
	if other, ok := c.(*Volume); ok && other == v {
		return
	}
	v.World.AddCollider(c)
}

// AddCollisionObject registers an obstacle.
func (v *Volume) AddCollisionObject(c physics.Collider) { v.AddCollider(c) }

// ClearCollisionObjects removes every obstacle.
func (v *Volume) ClearCollisionObjects() { v.ClearColliders() }

// Update advances the volume by dt in Substeps equal sub-steps, then refreshes Energy and runs the watchdog.
func (v *Volume) Update(dt float64) {
	if dt <= 0 {
		return
	}
	n := max(v.Substeps, 1)
	sub := dt / float64(n)
	for i := 0; i < n; i++ {
		v.updateSubstep(sub)
	}
	v.CalculateTotalEnergy()
	v.enforceStability()
}

func (v *Volume) updateSubstep(dt float64) {
	v.ResetAccelerations()
	v.ApplyGravity()
	v.ApplyPressure()
	v.UpdateSprings()
	for i := range v.Particles {
		p := &v.Particles[i]
		if !p.IsFixed() {
			p.Velocity = p.Velocity.Mul(v.VelocityDamping)
		}
	}
	v.Integrate(dt)
	v.handleCollisions()
	v.solveConstraints(constraintIterations)
}

// ApplyPressure pushes every surface triangle along its outward normal by
// Pressure·factor·area, a third per vertex. factor = initial/current - 1, capped at 5, so a
// compressed body inflates and an over-inflated one is pulled back in.
func (v *Volume) ApplyPressure() {
	if v.Params.Pressure <= 0 || v.InitialVolume <= 0 {
		return
	}
	current := v.CalculateVolume()
	v.LastVolume = current
	safe := max(current, minVolumeFraction*v.InitialVolume)
	factor := min(v.InitialVolume/safe-1, maxPressureFactor)

	for _, t := range v.Triangles {
		p1, p2, p3 := v.Particles[t[0]].Position, v.Particles[t[1]].Position, v.Particles[t[2]].Position
		n := p2.Sub(p1).Cross(p3.Sub(p1))
		l := n.Len()
		area := l * 0.5
		if area < minTriangleArea {
			continue
		}
		f := n.Mul(v.Params.Pressure * factor * area / (3 * l))
		for _, idx := range t {
			v.Particles[idx].AddForce(f)
		}
	}
}

// CalculateVolume returns the enclosed volume of the surface.
func (v *Volume) CalculateVolume() float64 {
	return EnclosedVolume(v.Particles, v.Triangles)
}

// SignedVolume sums p1·(p2×p3)/6 over the triangles, the divergence-theorem volume of a closed
// surface. It is positive when the triangles are wound outward.
func SignedVolume(ps []physics.Particle, tris []Triangle) float64 {
	var vol float64
	for _, t := range tris {
		p1, p2, p3 := ps[t[0]].Position, ps[t[1]].Position, ps[t[2]].Position
		vol += p1.Dot(p2.Cross(p3)) / 6
	}
	return vol
}

// EnclosedVolume is |SignedVolume|.
func EnclosedVolume(ps []physics.Particle, tris []Triangle) float64 {
	return math.Abs(SignedVolume(ps, tris))
}

// handleCollisions bounces particles off the floor with the material's response, then resolves colliders.
func (v *Volume) handleCollisions() {
	cr := v.Params.CollisionResponse
	for i := range v.Particles {
		p := &v.Particles[i]
		if p.IsFixed() || p.Position[1] >= FloorY {
			continue
		}
		p.Position[1] = floorRest
		p.Velocity[1] *= -cr
		p.Velocity[0] *= floorFriction
		p.Velocity[2] *= floorFriction
	}
	v.ResolveColliders(particleRadius, func(p *physics.Particle, n mgl64.Vec3) {
		vn := p.Velocity.Dot(n)
		if vn >= 0 {
			return
		}
		p.Velocity = p.Velocity.Add(n.Mul(-2 * vn * cr))
	})
}

// solveConstraints holds pinned particles in place, then relaxes the springs.
func (v *Volume) solveConstraints(iterations int) {
	for _, idx := range v.pins {
		p := &v.Particles[idx]
		if p.IsFixed() {
			p.Position = p.OldPosition
			p.Velocity = mgl64.Vec3{}
		}
	}
	v.SolveConstraints(iterations)
}

// enforceStability clamps runaway speeds and resets the whole body if any free particle went
// non-finite or left the 10×max(scale) sphere around Center.
func (v *Volume) enforceStability() {
	limit := maxDistanceScale * max(v.Scale[0], v.Scale[1], v.Scale[2])
	reason := ""
	for i := range v.Particles {
		p := &v.Particles[i]
		if p.IsFixed() {
			continue
		}
		if !finite(p.Position) || !finite(p.Velocity) {
			reason = "non-finite particle state"
			break
		}
		if p.Position.Sub(v.Center).Len() > limit {
			reason = "particle escaped"
			break
		}
		if speed := p.Velocity.Len(); speed > maxSpeed {
			p.Velocity = p.Velocity.Mul(maxSpeed / speed)
		}
	}
	if reason == "" {
		return
	}
	if v.log != nil {
		v.log.Log(fmt.Sprintf("%s %s became unstable (%s), resetting", v.Material, v.Shape, reason))
	}
	v.Resets++
	v.Reset()
}

func finite(x mgl64.Vec3) bool {
	for _, c := range x {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// PinParticle pins or releases particle index. Pinning freezes it where it is.
// Out-of-range indices are ignored; ok reports whether the index was valid.
func (v *Volume) PinParticle(index int, fixed bool) bool {
	if index < 0 || index >= len(v.Particles) {
		return false
	}
	p := &v.Particles[index]
	p.SetFixed(fixed)
	at := -1
	for i, idx := range v.pins {
		if idx == index {
			at = i
			break
		}
	}
	if fixed {
		p.OldPosition = p.Position
		p.Velocity = mgl64.Vec3{}
		if at < 0 {
			v.pins = append(v.pins, index)
		}
		return true
	}
	if at >= 0 {
		v.pins = append(v.pins[:at], v.pins[at+1:]...)
	}
	return true
}

// DefaultPinRadius is how close to a position a particle must be for PinNearest.
const DefaultPinRadius = 0.2

// PinNearest toggles the pin of the particle closest to pos within radius (DefaultPinRadius when
// radius <= 0). It returns the particle index; ok is false when no particle is in range.
func (v *Volume) PinNearest(pos mgl64.Vec3, radius float64) (int, bool) {
	if radius <= 0 {
		radius = DefaultPinRadius
	}
	i, ok := v.NearestParticle(pos, radius)
	if !ok {
		return -1, false
	}
	v.PinParticle(i, !v.Particles[i].IsFixed())
	return i, true
}

// Pins returns the pinned particle indices in pin order.
func (v *Volume) Pins() []int {
	return append([]int(nil), v.pins...)
}

// CalculateTotalEnergy recomputes and stores Energy.
func (v *Volume) CalculateTotalEnergy() float64 {
	v.Energy = v.TotalEnergy()
	return v.Energy
}

// Reset rebuilds the body at its construction position and clears pins. The rest volume is measured
// again so edited Params take effect. Colliders and gravity are kept.
func (v *Volume) Reset() {
	v.build()
	v.InitialVolume = v.CalculateVolume()
	v.LastVolume = v.InitialVolume
	v.Energy = v.TotalEnergy()
}
