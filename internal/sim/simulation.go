// Package sim drives one cloth and one deformable volume at a fixed time step and exposes the
// operations the viewer and the terminal commands need.
package sim

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"softbody/internal/cloth"
	"softbody/internal/mesh"
	"softbody/internal/physics"
	"softbody/internal/presets"
	"softbody/internal/squishy"
)

// Logger receives simulation messages. *logger.Logger satisfies it.
type Logger interface {
	Log(line string)
}

// Simulation owns the cloth and the volume; only the object selected by Mode is stepped.
// Gravity, colliders, wind and the tear factor survive preset and shape changes.
type Simulation struct {
	Cloth  *cloth.Cloth
	Volume *squishy.Volume

	Mode       Mode
	Integrator Integrator
	Render     RenderMode
	Paused     bool
	Stepper    Stepper
	// Elapsed is simulated time since the last Reset.
	Elapsed float64

	cfg       Config
	gravity   mgl64.Vec3
	windDir   mgl64.Vec3
	windForce float64
	tear      float64
	colliders []physics.Collider
	grabbed   int // cloth particle held by a drag, -1 when none

	presets *presets.Set
	log     Logger

	fabricName     string
	materialName   string
	shape          squishy.Shape
	material       squishy.Material
	materialParams *squishy.MaterialParams
}

// Stats is a snapshot of the active object for overlays and the energy command.
type Stats struct {
	Particles int
	Springs   int
	Broken    int
	Triangles int
	Energy    float64
	// Volume and Resets are zero in cloth mode.
	Volume float64
	Resets int
}

// New builds a simulation from cfg. custom may be nil; its names shadow the built-in presets.
func New(cfg Config, custom *presets.Set, log Logger) (*Simulation, error) {
	mode, err := ParseMode(cfg.Mode)
	if err != nil {
		return nil, err
	}
	integrator, err := ParseIntegrator(cfg.Integrator)
	if err != nil {
		return nil, err
	}
	render, err := ParseRenderMode(cfg.Render)
	if err != nil {
		return nil, err
	}
	shape, err := squishy.ParseShape(cfg.Shape)
	if err != nil {
		return nil, err
	}

	s := &Simulation{
		Mode:       mode,
		Integrator: integrator,
		Render:     render,
		Stepper:    NewStepper(cfg.TimeStep, cfg.MaxFrame),
		cfg:        cfg,
		gravity:    physics.DefaultGravity,
		windDir:    mgl64.Vec3(cfg.WindDirection),
		windForce:  cfg.WindStrength,
		tear:       cfg.TearFactor,
		presets:    custom,
		log:        log,
		shape:      shape,
		grabbed:    -1,
	}
	if cfg.SphereCollider {
		s.colliders = append(s.colliders, physics.NewSphereCollider(mgl64.Vec3{0, 1, 0}, 1))
	}
	if err := s.SetFabric(cfg.Fabric); err != nil {
		return nil, err
	}
	if err := s.SetMaterial(cfg.Material); err != nil {
		return nil, err
	}
	return s, nil
}

// Advance feeds one frame of wall time through the stepper. It returns the number of steps taken;
// a paused simulation takes none.
func (s *Simulation) Advance(frameDt float64) int {
	if s.Paused {
		return 0
	}
	return s.Stepper.Advance(frameDt, s.Step)
}

// Step advances the active object by exactly dt.
func (s *Simulation) Step(dt float64) {
	if dt <= 0 {
		return
	}
	switch s.Mode {
	case ModeSquishy:
		s.Volume.Update(dt)
	default:
		if s.Integrator == PBD {
			s.Cloth.UpdatePBD(dt)
			break
		}
		n := max(s.cfg.ClothSubsteps, 1)
		for i := 0; i < n; i++ {
			s.Cloth.Update(dt / float64(n))
		}
	}
	s.Elapsed += dt
}

// SetMode switches the active object. Pending frame time is dropped.
func (s *Simulation) SetMode(m Mode) {
	s.Mode = m
	s.grabbed = -1
	s.Stepper.Reset()
}

// SetIntegrator selects the cloth integrator.
func (s *Simulation) SetIntegrator(i Integrator) { s.Integrator = i }

// SetFabric rebuilds the cloth from a custom or built-in fabric.
func (s *Simulation) SetFabric(name string) error {
	var c *cloth.Cloth
	if f, ok := s.presets.Fabric(name); ok {
		c = cloth.NewWithParams(s.cfg.ClothWidth, s.cfg.ClothHeight, s.cfg.ClothRows, s.cfg.ClothCols, f.Params)
		c.Fabric = f.Base
	} else {
		ft, err := cloth.ParseFabricType(name)
		if err != nil {
			return err
		}
		c = cloth.New(s.cfg.ClothWidth, s.cfg.ClothHeight, s.cfg.ClothRows, s.cfg.ClothCols, ft)
	}
	c.SetGravity(s.gravity)
	c.SetWind(s.windDir, s.windForce)
	c.TearFactor = s.tear
	for _, col := range s.colliders {
		c.AddCollisionObject(col)
	}
	c.CalculateTotalEnergy()
	s.Cloth = c
	s.grabbed = -1
	s.fabricName = name
	return nil
}

// SetMaterial rebuilds the volume from a custom or built-in material, keeping the shape.
func (s *Simulation) SetMaterial(name string) error {
	if m, ok := s.presets.Material(name); ok {
		params := m.Params
		s.material, s.materialParams = m.Base, &params
	} else {
		m, err := squishy.ParseMaterial(name)
		if err != nil {
			return err
		}
		s.material, s.materialParams = m, nil
	}
	s.materialName = name
	s.buildVolume()
	return nil
}

// SetShape rebuilds the volume with another generator, keeping the material.
func (s *Simulation) SetShape(name string) error {
	shape, err := squishy.ParseShape(name)
	if err != nil {
		return err
	}
	s.shape = shape
	s.buildVolume()
	return nil
}

func (s *Simulation) buildVolume() {
	o := squishy.DefaultOptions(s.shape, s.material)
	o.Params = s.materialParams
	if s.log != nil {
		o.Logger = s.log
	}
	v := squishy.New(o)
	v.SetGravity(s.gravity)
	for _, col := range s.colliders {
		v.AddCollisionObject(col)
	}
	v.CalculateTotalEnergy()
	s.Volume = v
}

// FabricName and MaterialName return the names the objects were last built from.
func (s *Simulation) FabricName() string   { return s.fabricName }
func (s *Simulation) MaterialName() string { return s.materialName }

// Shape returns the volume generator in use.
func (s *Simulation) Shape() squishy.Shape { return s.shape }

// SetGravity sets gravity on both objects.
func (s *Simulation) SetGravity(g mgl64.Vec3) {
	s.gravity = g
	s.Cloth.SetGravity(g)
	s.Volume.SetGravity(g)
}

// Gravity returns the shared gravity vector.
func (s *Simulation) Gravity() mgl64.Vec3 { return s.gravity }

// SetWind sets the cloth wind. Volumes ignore wind.
func (s *Simulation) SetWind(direction mgl64.Vec3, strength float64) {
	s.windDir, s.windForce = direction, strength
	s.Cloth.SetWind(direction, strength)
}

// SetTearFactor sets the cloth tear threshold; 0 disables tearing.
func (s *Simulation) SetTearFactor(f float64) {
	s.tear = max(f, 0)
	s.Cloth.TearFactor = s.tear
}

// AddCollider registers an obstacle with both objects.
func (s *Simulation) AddCollider(c physics.Collider) {
	if c == nil {
		return
	}
	s.colliders = append(s.colliders, c)
	s.Cloth.AddCollisionObject(c)
	s.Volume.AddCollisionObject(c)
}

// ClearColliders removes every obstacle from both objects.
func (s *Simulation) ClearColliders() {
	s.colliders = nil
	s.Cloth.ClearCollisionObjects()
	s.Volume.ClearCollisionObjects()
}

// Colliders returns a copy of the shared obstacle list.
func (s *Simulation) Colliders() []physics.Collider {
	return append([]physics.Collider(nil), s.colliders...)
}

// Cut breaks the cloth springs near a ray and returns how many broke. It does nothing outside
// cloth mode. radius <= 0 uses cloth.DefaultCutRadius.
func (s *Simulation) Cut(origin, direction mgl64.Vec3, radius float64) int {
	if s.Mode != ModeCloth {
		return 0
	}
	if radius <= 0 {
		radius = cloth.DefaultCutRadius
	}
	return s.Cloth.CutCloth(origin, direction, radius)
}

// Pin pins or releases a cloth cell.
func (s *Simulation) Pin(row, col int, fixed bool) bool {
	return s.Cloth.PinParticle(row, col, fixed)
}

// PinIndex pins or releases a particle of the active object by flat index.
func (s *Simulation) PinIndex(i int, fixed bool) bool {
	if s.Mode == ModeSquishy {
		return s.Volume.PinParticle(i, fixed)
	}
	if i < 0 || i >= len(s.Cloth.Particles) {
		return false
	}
	return s.Cloth.PinParticle(i/s.Cloth.Cols, i%s.Cloth.Cols, fixed)
}

// Config returns the start-up settings that would rebuild the current state: active mode, integrator,
// render mode, preset names, shape, wind and tear factor. Colliders, pins and gravity are not kept.
func (s *Simulation) Config() Config {
	cfg := s.cfg
	cfg.Mode = s.Mode.String()
	cfg.Integrator = s.Integrator.String()
	cfg.Render = s.Render.String()
	cfg.Fabric = s.fabricName
	cfg.Material = s.materialName
	cfg.Shape = s.shape.String()
	cfg.WindDirection = [3]float64(s.windDir)
	cfg.WindStrength = s.windForce
	cfg.TearFactor = s.tear
	return cfg
}

// PinNear toggles the pin of the active object's particle nearest pos within radius
// (squishy.DefaultPinRadius when radius <= 0) and returns its index.
func (s *Simulation) PinNear(pos mgl64.Vec3, radius float64) (int, bool) {
	if s.Mode == ModeSquishy {
		return s.Volume.PinNearest(pos, radius)
	}
	if radius <= 0 {
		radius = squishy.DefaultPinRadius
	}
	i, ok := s.Cloth.NearestParticle(pos, radius)
	if !ok {
		return -1, false
	}
	s.Cloth.PinParticle(i/s.Cloth.Cols, i%s.Cloth.Cols, !s.Cloth.Particles[i].IsFixed())
	return i, true
}

// PinAlongRay toggles the pin of the particle the ray selects on the active object.
func (s *Simulation) PinAlongRay(origin, direction mgl64.Vec3) (int, bool) {
	i, ok := s.World().PickParticle(origin, direction, cloth.SelectRadius)
	if !ok {
		return -1, false
	}
	return s.PinNear(s.World().Particles[i].Position, 0)
}

// Grab selects the cloth particle under the ray for dragging. Only the cloth can be grabbed.
func (s *Simulation) Grab(origin, direction mgl64.Vec3) (row, col int, ok bool) {
	s.grabbed = -1
	if s.Mode != ModeCloth {
		return -1, -1, false
	}
	row, col, ok = s.Cloth.ClosestParticle(origin, direction)
	if ok {
		s.grabbed = s.Cloth.Index(row, col)
	}
	return row, col, ok
}

// Grabbed reports the held cloth cell.
func (s *Simulation) Grabbed() (row, col int, ok bool) {
	if s.grabbed < 0 || s.Mode != ModeCloth {
		return -1, -1, false
	}
	return s.grabbed / s.Cloth.Cols, s.grabbed % s.Cloth.Cols, true
}

// Drag moves the held particle onto the plane through it with the given normal, where the ray crosses it.
func (s *Simulation) Drag(origin, direction, normal mgl64.Vec3) bool {
	row, col, ok := s.Grabbed()
	if !ok {
		return false
	}
	return s.Cloth.DragParticle(row, col, origin, direction, normal)
}

// Release drops the held particle.
func (s *Simulation) Release() { s.grabbed = -1 }

// Reset rebuilds the active object and zeroes Elapsed.
func (s *Simulation) Reset() {
	if s.Mode == ModeSquishy {
		s.Volume.Reset()
	} else {
		s.Cloth.Reset()
	}
	s.Elapsed = 0
	s.grabbed = -1
	s.Stepper.Reset()
}

// World returns the particle arena of the active object.
func (s *Simulation) World() *physics.World {
	if s.Mode == ModeSquishy {
		return &s.Volume.World
	}
	return &s.Cloth.World
}

// MeshData returns the render mesh of the active object.
func (s *Simulation) MeshData() mesh.Data {
	if s.Mode == ModeSquishy {
		return s.Volume.GenerateMeshData()
	}
	return s.Cloth.GenerateMeshData()
}

// SpringLines returns the unbroken springs of the active object.
func (s *Simulation) SpringLines() mesh.Lines {
	if s.Mode == ModeSquishy {
		return s.Volume.GenerateSpringMeshData()
	}
	return s.Cloth.GenerateSpringMeshData()
}

// Points returns the particle positions and pin flags of the active object.
func (s *Simulation) Points() mesh.PointSet {
	return mesh.Points(s.World().Particles)
}

// Energy is the total energy of the active object after its last step.
func (s *Simulation) Energy() float64 {
	if s.Mode == ModeSquishy {
		return s.Volume.Energy
	}
	return s.Cloth.Energy
}

// FloorHeight is the ground plane of the active object.
func (s *Simulation) FloorHeight() float64 {
	if s.Mode == ModeSquishy {
		return squishy.FloorY
	}
	return cloth.FloorY
}

// Stats summarizes the active object.
func (s *Simulation) Stats() Stats {
	w := s.World()
	st := Stats{
		Particles: len(w.Particles),
		Springs:   len(w.Springs),
		Broken:    w.BrokenSprings(),
		Energy:    s.Energy(),
	}
	if s.Mode == ModeSquishy {
		st.Triangles = len(s.Volume.Triangles)
		st.Volume = s.Volume.LastVolume
		st.Resets = s.Volume.Resets
	} else {
		st.Triangles = 2 * (s.Cloth.Rows - 1) * (s.Cloth.Cols - 1)
	}
	return st
}

// Describe is a one-line summary of the active object.
func (s *Simulation) Describe() string {
	st := s.Stats()
	if s.Mode == ModeSquishy {
		return fmt.Sprintf("%s %s: %d particles, %d springs, volume %.3f, energy %.3f, resets %d",
			s.materialName, s.shape, st.Particles, st.Springs, st.Volume, st.Energy, st.Resets)
	}
	return fmt.Sprintf("%s cloth (%s): %d particles, %d springs (%d broken), energy %.3f",
		s.fabricName, s.Integrator, st.Particles, st.Springs, st.Broken, st.Energy)
}
