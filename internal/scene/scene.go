package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	rl "github.com/gen2brain/raylib-go/raylib"

	"softbody/internal/primitives"
	"softbody/internal/sim"
)

const (
	gridExtent     = 10
	gridMinorStep  = 1
	gridMajorStep  = 5
	gridMinorAlpha = 50
	gridMajorAlpha = 120
	axisLineAlpha  = 220
)

// Logger receives cut results. *logger.Logger satisfies it.
type Logger interface {
	Log(line string)
}

// Scene holds a 3D camera and draws the active object of a simulation. Update runs camera logic and
// mouse cutting; Draw renders between BeginMode3D and EndMode3D. Based on raylib examples/core/core_3d_camera_free.
type Scene struct {
	Camera      rl.Camera3D
	GridVisible bool

	sim      *sim.Simulation
	log      Logger
	lightDir [3]float32 // direction to light, normalized
	solids   *primitives.Registry
	dragging bool // left button holds a cloth particle
}

// New returns a scene looking at the drop area from (8,6,8). Grid is visible by default.
func New(s *sim.Simulation, log Logger) *Scene {
	sc := &Scene{sim: s, log: log, GridVisible: true, solids: primitives.NewRegistry()}
	sc.Camera.Position = rl.NewVector3(8, 6, 8)
	sc.Camera.Target = rl.NewVector3(0, 1.5, 0)
	sc.Camera.Up = rl.NewVector3(0, 1, 0)
	sc.Camera.Fovy = 45
	sc.Camera.Projection = rl.CameraPerspective
	sc.lightDir = normalize3([3]float32{0.5, 1, 0.3})
	return sc
}

// SetGridVisible sets whether the floor grid is drawn.
func (s *Scene) SetGridVisible(visible bool) {
	s.GridVisible = visible
}

// Update runs once per frame while the terminal is closed. Mouse: left click on the cloth grabs a
// particle and drags it across the camera plane, shift+left click toggles the pin of the particle under
// the cursor (cloth or volume), left drag elsewhere flies the camera (raylib CameraFree), right click
// cuts the cloth along the mouse ray. Keys: Space pause, R reset, Tab switch cloth/squishy, M next
// render mode, P toggle Verlet/PBD.
func (s *Scene) Update() {
	switch {
	case rl.IsMouseButtonPressed(rl.MouseButtonLeft):
		s.pressLeft()
	case rl.IsMouseButtonDown(rl.MouseButtonLeft):
		if s.dragging {
			origin, dir := s.mouseRay()
			s.sim.Drag(origin, dir, s.forward())
		} else {
			rl.UpdateCamera(&s.Camera, rl.CameraFree)
		}
	case s.dragging:
		s.sim.Release()
		s.dragging = false
	}
	if rl.IsMouseButtonPressed(rl.MouseButtonRight) {
		s.cutAtMouse()
	}

	switch {
	case rl.IsKeyPressed(rl.KeySpace):
		s.sim.Paused = !s.sim.Paused
	case rl.IsKeyPressed(rl.KeyR):
		s.sim.Reset()
	case rl.IsKeyPressed(rl.KeyTab):
		if s.sim.Mode == sim.ModeCloth {
			s.sim.SetMode(sim.ModeSquishy)
		} else {
			s.sim.SetMode(sim.ModeCloth)
		}
	case rl.IsKeyPressed(rl.KeyM):
		s.sim.Render = s.sim.Render.Next()
	case rl.IsKeyPressed(rl.KeyP):
		if s.sim.Integrator == sim.Verlet {
			s.sim.SetIntegrator(sim.PBD)
		} else {
			s.sim.SetIntegrator(sim.Verlet)
		}
	}
}

func (s *Scene) pressLeft() {
	origin, dir := s.mouseRay()
	if rl.IsKeyDown(rl.KeyLeftShift) || rl.IsKeyDown(rl.KeyRightShift) {
		if i, ok := s.sim.PinAlongRay(origin, dir); ok && s.log != nil {
			s.log.Log(fmt.Sprintf("pin %d: %t", i, s.sim.World().Particles[i].IsFixed()))
		}
		return
	}
	_, _, s.dragging = s.sim.Grab(origin, dir)
	if !s.dragging {
		rl.UpdateCamera(&s.Camera, rl.CameraFree)
	}
}

// mouseRay is the world-space ray under the cursor.
func (s *Scene) mouseRay() (origin, dir mgl64.Vec3) {
	ray := rl.GetScreenToWorldRay(rl.GetMousePosition(), s.Camera)
	origin = mgl64.Vec3{float64(ray.Position.X), float64(ray.Position.Y), float64(ray.Position.Z)}
	dir = mgl64.Vec3{float64(ray.Direction.X), float64(ray.Direction.Y), float64(ray.Direction.Z)}
	return origin, dir
}

// forward is the camera view direction, the normal of the drag plane.
func (s *Scene) forward() mgl64.Vec3 {
	p, t := s.Camera.Position, s.Camera.Target
	f := mgl64.Vec3{float64(t.X - p.X), float64(t.Y - p.Y), float64(t.Z - p.Z)}
	if f.Len() == 0 {
		return mgl64.Vec3{0, 0, -1}
	}
	return f.Normalize()
}

func (s *Scene) cutAtMouse() {
	origin, dir := s.mouseRay()
	if n := s.sim.Cut(origin, dir, 0); n > 0 && s.log != nil {
		s.log.Log(fmt.Sprintf("cut %d springs", n))
	}
}

// Draw renders the 3D scene. Call after ClearBackground and before 2D overlays (terminal, debug).
func (s *Scene) Draw() {
	cam := s.Camera.Position
	s.solids.SetView([3]float32{cam.X, cam.Y, cam.Z}, s.lightDir)

	rl.BeginMode3D(s.Camera)
	floor := s.sim.FloorHeight()
	s.solids.Draw(primitives.Floor, mgl64.Vec3{0, floor - 0.005, 0}, mgl64.Vec3{gridExtent, 0, 0}, floorColor)
	if s.GridVisible {
		drawFloorGrid(float32(floor))
	}
	s.drawColliders(s.sim.Colliders())
	s.drawActive()
	rl.EndMode3D()
}

// Unload frees the GPU resources of the collider solids. Call before the window closes.
func (s *Scene) Unload() {
	s.solids.Unload()
}

// drawFloorGrid draws a grid on the XZ plane at height y with major/minor lines and axis lines.
// Reuses start/end vectors to avoid per-frame allocations in the hot loop.
func drawFloorGrid(y float32) {
	minor := rl.NewColor(128, 128, 128, gridMinorAlpha)
	major := rl.NewColor(160, 160, 160, gridMajorAlpha)
	axisX := rl.NewColor(220, 80, 80, axisLineAlpha)
	axisZ := rl.NewColor(80, 80, 220, axisLineAlpha)

	var start, end rl.Vector3
	for x := -gridExtent; x <= gridExtent; x += gridMinorStep {
		c := major
		if x%gridMajorStep != 0 {
			c = minor
		}
		start.X, start.Y, start.Z = float32(x), y, float32(-gridExtent)
		end.X, end.Y, end.Z = float32(x), y, float32(gridExtent)
		rl.DrawLine3D(start, end, c)
	}
	for z := -gridExtent; z <= gridExtent; z += gridMinorStep {
		c := major
		if z%gridMajorStep != 0 {
			c = minor
		}
		start.X, start.Y, start.Z = float32(-gridExtent), y, float32(z)
		end.X, end.Y, end.Z = float32(gridExtent), y, float32(z)
		rl.DrawLine3D(start, end, c)
	}

	start.X, start.Y, start.Z = float32(-gridExtent), y, 0
	end.X, end.Y, end.Z = float32(gridExtent), y, 0
	rl.DrawLine3D(start, end, axisX)
	start.X, start.Y, start.Z = 0, y, float32(-gridExtent)
	end.X, end.Y, end.Z = 0, y, float32(gridExtent)
	rl.DrawLine3D(start, end, axisZ)
}
