package squishy

import (
	"math"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"softbody/internal/physics"
)

func approx(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func vecApprox(a, b mgl64.Vec3, tol float64) bool {
	return approx(a[0], b[0], tol) && approx(a[1], b[1], tol) && approx(a[2], b[2], tol)
}

type recordingLogger struct{ lines []string }

func (r *recordingLogger) Log(line string) { r.lines = append(r.lines, line) }

func TestParseNames(t *testing.T) {
	for _, tt := range []struct {
		in   string
		want Material
	}{
		{"jelly", Jelly}, {"Rubber", Rubber}, {" slime", Slime}, {"water balloon", WaterBalloon}, {"water-balloon", WaterBalloon},
	} {
		got, err := ParseMaterial(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseMaterial(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
	if _, err := ParseMaterial("steel"); err == nil {
		t.Error("ParseMaterial accepted an unknown name")
	}
	for _, s := range Shapes() {
		got, err := ParseShape(strings.ToUpper(s.String()))
		if err != nil || got != s {
			t.Errorf("ParseShape(%q) = %v, %v", s.String(), got, err)
		}
	}
	if _, err := ParseShape("cone"); err == nil {
		t.Error("ParseShape accepted an unknown name")
	}
}

func TestTetrahedronVolume(t *testing.T) {
	ps := []physics.Particle{
		physics.NewParticle(mgl64.Vec3{0, 0, 0}, 1, false),
		physics.NewParticle(mgl64.Vec3{1, 0, 0}, 1, false),
		physics.NewParticle(mgl64.Vec3{0, 1, 0}, 1, false),
		physics.NewParticle(mgl64.Vec3{0, 0, 1}, 1, false),
	}
	tris := []Triangle{{0, 2, 1}, {0, 1, 3}, {0, 3, 2}, {1, 2, 3}}
	if got := EnclosedVolume(ps, tris); !approx(got, 1.0/6, 1e-12) {
		t.Errorf("volume = %v, want 1/6", got)
	}
	if got := SignedVolume(ps, tris); got <= 0 {
		t.Errorf("signed volume = %v, want positive for outward faces", got)
	}
}

func allShapes() map[string]*Volume {
	c := mgl64.Vec3{0, 3, 0}
	return map[string]*Volume{
		"sphere":          NewSphere(c, 1.5, Jelly),
		"sphere coarse":   New(Options{Shape: ShapeSphere, Params: &MaterialParams{Stiffness: 100, Mass: 1, Resolution: 2}, Center: c, Size: 1}),
		"torus":           NewTorus(c, 1.5, 0.5, Rubber),
		"torus coarse":    New(Options{Shape: ShapeTorus, Params: &MaterialParams{Stiffness: 100, Mass: 1, Resolution: 3}, Center: c, Size: 1.5, Secondary: 0.5}),
		"cube":            NewCube(c, 2, Slime),
		"cube minimal":    New(Options{Shape: ShapeCube, Params: &MaterialParams{Stiffness: 100, Mass: 1, Resolution: 1}, Center: c, Size: 2}),
		"pyramid":         NewPyramid(c, 2, 2, WaterBalloon),
		"pyramid minimal": New(Options{Shape: ShapePyramid, Params: &MaterialParams{Stiffness: 100, Mass: 1, Resolution: 1}, Center: c, Size: 2, Secondary: 2}),
	}
}

// Every directed edge of a closed, consistently wound surface appears once, and its reverse once.
func TestSurfacesAreClosedAndOutward(t *testing.T) {
	for name, v := range allShapes() {
		t.Run(name, func(t *testing.T) {
			edges := make(map[[2]int]int)
			for _, tri := range v.Triangles {
				for k := 0; k < 3; k++ {
					a, b := tri[k], tri[(k+1)%3]
					if a < 0 || a >= len(v.Particles) || a == b {
						t.Fatalf("bad triangle %v", tri)
					}
					edges[[2]int{a, b}]++
				}
				p1, p2, p3 := v.Particles[tri[0]].Position, v.Particles[tri[1]].Position, v.Particles[tri[2]].Position
				if p2.Sub(p1).Cross(p3.Sub(p1)).Len() < 1e-9 {
					t.Fatalf("degenerate triangle %v", tri)
				}
			}
			for e, n := range edges {
				if n != 1 {
					t.Fatalf("directed edge %v used %d times", e, n)
				}
				if edges[[2]int{e[1], e[0]}] != 1 {
					t.Fatalf("edge %v has no opposite", e)
				}
			}
			if sv := SignedVolume(v.Particles, v.Triangles); sv <= 0 {
				t.Errorf("signed volume = %v, want positive (outward winding)", sv)
			}
			if !approx(v.InitialVolume, v.CalculateVolume(), 1e-12) || v.InitialVolume <= 0 {
				t.Errorf("initial volume = %v", v.InitialVolume)
			}
		})
	}
}

func TestOutwardNormalsFaceAwayFromCenter(t *testing.T) {
	for _, v := range []*Volume{NewSphere(mgl64.Vec3{1, 2, 3}, 1, Jelly), NewCube(mgl64.Vec3{}, 2, Jelly), NewPyramid(mgl64.Vec3{}, 2, 1, Jelly)} {
		for _, tri := range v.Triangles {
			p1, p2, p3 := v.Particles[tri[0]].Position, v.Particles[tri[1]].Position, v.Particles[tri[2]].Position
			n := p2.Sub(p1).Cross(p3.Sub(p1))
			centroid := p1.Add(p2).Add(p3).Mul(1.0 / 3)
			if n.Dot(centroid.Sub(v.Center)) <= 0 {
				t.Fatalf("%v triangle %v faces inward", v.Shape, tri)
			}
		}
	}
}

func TestExactVolumes(t *testing.T) {
	cube := NewCube(mgl64.Vec3{0, 3, 0}, 2, Jelly)
	if !approx(cube.InitialVolume, 8, 1e-9) {
		t.Errorf("cube volume = %v, want 8", cube.InitialVolume)
	}
	pyr := NewPyramid(mgl64.Vec3{0, 3, 0}, 2, 2, Jelly)
	if !approx(pyr.InitialVolume, 8.0/3, 1e-9) {
		t.Errorf("pyramid volume = %v, want 8/3", pyr.InitialVolume)
	}
	sphere := NewSphere(mgl64.Vec3{}, 1.5, Jelly)
	exact := 4.0 / 3 * math.Pi * 1.5 * 1.5 * 1.5
	if r := sphere.InitialVolume / exact; r < 0.8 || r > 1 {
		t.Errorf("sphere volume ratio = %v, want within (0.8, 1]", r)
	}
	torus := NewTorus(mgl64.Vec3{}, 1.5, 0.5, Jelly)
	exact = 2 * math.Pi * math.Pi * 1.5 * 0.5 * 0.5
	if r := torus.InitialVolume / exact; r < 0.6 || r > 1 {
		t.Errorf("torus volume ratio = %v, want within (0.6, 1]", r)
	}
}

func TestLayoutCounts(t *testing.T) {
	sphere := NewSphere(mgl64.Vec3{}, 1, Jelly)
	// anchor + 2 poles + 7 rings of 16
	if len(sphere.Particles) != 115 || len(sphere.Triangles) != 2*16+6*16*2 {
		t.Errorf("sphere: %d particles %d triangles", len(sphere.Particles), len(sphere.Triangles))
	}
	torus := NewTorus(mgl64.Vec3{}, 1.5, 0.5, Jelly)
	if len(torus.Particles) != 64 || len(torus.Triangles) != 128 {
		t.Errorf("torus: %d particles %d triangles", len(torus.Particles), len(torus.Triangles))
	}
	cube := NewCube(mgl64.Vec3{}, 2, Jelly)
	// 4³-2³ surface points + anchor, 6 faces of 3×3 quads
	if len(cube.Particles) != 57 || len(cube.Triangles) != 108 {
		t.Errorf("cube: %d particles %d triangles", len(cube.Particles), len(cube.Triangles))
	}
	pyr := NewPyramid(mgl64.Vec3{}, 2, 2, Jelly)
	// n=7: 64 base + 4·(6+5+4+3+2+1) ring + apex + anchor
	if len(pyr.Particles) != 150 {
		t.Errorf("pyramid: %d particles", len(pyr.Particles))
	}
	for _, v := range []*Volume{sphere, torus, cube, pyr} {
		seen := make(map[[2]int]bool)
		for _, s := range v.Springs {
			key := [2]int{min(s.A, s.B), max(s.A, s.B)}
			if seen[key] || s.A == s.B {
				t.Fatalf("%v has duplicate or self spring %v", v.Shape, key)
			}
			seen[key] = true
			if !approx(s.RestLength, s.Length(v.Particles), 1e-12) {
				t.Fatalf("%v spring rest length differs from its built length", v.Shape)
			}
		}
	}
}

func TestPressurePushesOutWhenCompressed(t *testing.T) {
	center := mgl64.Vec3{0, 3, 0}
	v := NewSphere(center, 1.5, WaterBalloon)
	for i := range v.Particles {
		p := &v.Particles[i]
		p.Position = center.Add(p.Position.Sub(center).Mul(0.8))
	}
	v.ResetAccelerations()
	v.ApplyPressure()
	for i := 1; i < len(v.Particles); i++ {
		p := v.Particles[i]
		if p.Acceleration.Dot(p.Position.Sub(center)) <= 0 {
			t.Fatalf("particle %d pushed inward: acc %v", i, p.Acceleration)
		}
	}
	if v.Particles[0].Acceleration != (mgl64.Vec3{}) {
		t.Error("interior anchor received pressure")
	}
	if !approx(v.LastVolume, v.InitialVolume*0.512, 1e-9) {
		t.Errorf("last volume = %v, want %v", v.LastVolume, v.InitialVolume*0.512)
	}
}

func TestPressurePullsInWhenInflated(t *testing.T) {
	center := mgl64.Vec3{}
	v := NewCube(center, 2, Rubber)
	for i := range v.Particles {
		v.Particles[i].Position = v.Particles[i].Position.Mul(1.2)
	}
	v.ResetAccelerations()
	v.ApplyPressure()
	top := v.Particles[0]
	for i := range v.Particles {
		if v.Particles[i].Position[1] > top.Position[1] {
			top = v.Particles[i]
		}
	}
	if top.Acceleration[1] >= 0 {
		t.Errorf("top vertex acceleration %v, want downward", top.Acceleration)
	}
}

func TestPressureDisabled(t *testing.T) {
	params := Preset(Jelly)
	params.Pressure = 0
	v := New(Options{Shape: ShapeSphere, Params: &params, Size: 1})
	for i := range v.Particles {
		v.Particles[i].Position = v.Particles[i].Position.Mul(0.5)
	}
	v.ResetAccelerations()
	v.ApplyPressure()
	for i := range v.Particles {
		if v.Particles[i].Acceleration != (mgl64.Vec3{}) {
			t.Fatal("zero pressure coefficient still applied force")
		}
	}
}

func TestPressureCapsCollapse(t *testing.T) {
	v := NewCube(mgl64.Vec3{}, 2, Jelly)
	for i := range v.Particles {
		v.Particles[i].Position = mgl64.Vec3{}
	}
	v.ResetAccelerations()
	v.ApplyPressure()
	for i := range v.Particles {
		a := v.Particles[i].Acceleration
		if a != (mgl64.Vec3{}) {
			t.Fatalf("collapsed body produced force %v from zero-area triangles", a)
		}
	}
}

func TestUpdateFallsAndStaysStable(t *testing.T) {
	for name, v := range allShapes() {
		t.Run(name, func(t *testing.T) {
			start := centroid(v)
			for i := 0; i < 60; i++ {
				v.Update(1.0 / 60)
			}
			if v.Resets != 0 {
				t.Fatalf("watchdog reset %d times", v.Resets)
			}
			if c := centroid(v); c[1] >= start[1] {
				t.Errorf("centroid y %v did not fall from %v", c[1], start[1])
			}
			if math.IsNaN(v.Energy) || math.IsInf(v.Energy, 0) {
				t.Errorf("energy = %v", v.Energy)
			}
		})
	}
}

func centroid(v *Volume) mgl64.Vec3 {
	var c mgl64.Vec3
	for i := range v.Particles {
		c = c.Add(v.Particles[i].Position)
	}
	return c.Mul(1 / float64(len(v.Particles)))
}

func TestUpdateIgnoresNonPositiveDt(t *testing.T) {
	v := NewSphere(mgl64.Vec3{0, 3, 0}, 1, Jelly)
	before := v.Particles[5].Position
	v.Update(0)
	v.Update(-0.1)
	if v.Particles[5].Position != before {
		t.Error("dt <= 0 moved the body")
	}
}

func TestFloorCollision(t *testing.T) {
	v := NewCube(mgl64.Vec3{0, 3, 0}, 2, Rubber)
	p := &v.Particles[1]
	p.Position = mgl64.Vec3{0, -2.5, 0}
	p.Velocity = mgl64.Vec3{1, -2, 1}
	v.handleCollisions()
	if p.Position[1] != -1.99 {
		t.Errorf("y = %v, want -1.99", p.Position[1])
	}
	if !vecApprox(p.Velocity, mgl64.Vec3{0.8, 1, 0.8}, 1e-12) {
		t.Errorf("velocity = %v, want (0.8,1,0.8)", p.Velocity)
	}
}

func TestColliderResponseUsesMaterial(t *testing.T) {
	v := NewCube(mgl64.Vec3{0, 3, 0}, 2, Jelly)
	v.AddCollisionObject(physics.NewPlaneCollider(mgl64.Vec3{0, 5, 0}, mgl64.Vec3{0, 1, 0}))
	p := &v.Particles[1]
	p.Position = mgl64.Vec3{0, 4.95, 0}
	p.Velocity = mgl64.Vec3{0, -1, 0}
	v.handleCollisions()
	if !approx(p.Position[1], 5.1, 1e-12) {
		t.Errorf("y = %v, want 5.1", p.Position[1])
	}
	// v += -2(v·n)·0.3·n
	if !vecApprox(p.Velocity, mgl64.Vec3{0, -0.4, 0}, 1e-12) {
		t.Errorf("velocity = %v, want (0,-0.4,0)", p.Velocity)
	}
}

func TestVolumeNeverCollidesWithItself(t *testing.T) {
	v := NewSphere(mgl64.Vec3{}, 1, Jelly)
	v.AddCollider(v)
	v.AddCollisionObject(v)
	if len(v.Colliders) != 0 {
		t.Fatalf("volume registered itself as a collider")
	}
	other := NewSphere(mgl64.Vec3{5, 0, 0}, 1, Jelly)
	v.AddCollisionObject(other)
	if len(v.Colliders) != 1 {
		t.Fatalf("colliders = %d, want 1", len(v.Colliders))
	}
	v.ClearCollisionObjects()
	if len(v.Colliders) != 0 {
		t.Error("colliders not cleared")
	}
}

func TestMeshCollider(t *testing.T) {
	cube := NewCube(mgl64.Vec3{}, 2, Jelly)
	if cube.Kind() != "mesh" {
		t.Errorf("kind = %q", cube.Kind())
	}
	got := cube.CheckCollision(mgl64.Vec3{0, 1.05, 0}, 0.1)
	if !got.Collides || !vecApprox(got.Penetration, mgl64.Vec3{0, 0.05, 0}, 1e-9) {
		t.Errorf("above top face: %+v, want (0,0.05,0)", got)
	}
	// beyond a corner the closest feature is the vertex
	got = cube.CheckCollision(mgl64.Vec3{1.05, 1.05, 1.05}, 0.1)
	want := mgl64.Vec3{1, 1, 1}.Normalize().Mul(0.1 - math.Sqrt(3*0.05*0.05))
	if !got.Collides || !vecApprox(got.Penetration, want, 1e-9) {
		t.Errorf("corner: %+v, want %v", got, want)
	}
	if cube.CheckCollision(mgl64.Vec3{0, 3, 0}, 0.1).Collides {
		t.Error("far point collided")
	}
}

func TestClosestPointOnTriangle(t *testing.T) {
	a, b, c := mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 1, 0}
	tests := []struct {
		name string
		p    mgl64.Vec3
		want mgl64.Vec3
	}{
		{"interior", mgl64.Vec3{0.2, 0.2, 1}, mgl64.Vec3{0.2, 0.2, 0}},
		{"edge", mgl64.Vec3{0.5, -1, 0.5}, mgl64.Vec3{0.5, 0, 0}},
		{"vertex", mgl64.Vec3{2, -1, 0}, mgl64.Vec3{1, 0, 0}},
		{"hypotenuse", mgl64.Vec3{1, 1, 0}, mgl64.Vec3{0.5, 0.5, 0}},
	}
	for _, tt := range tests {
		got, ok := closestPointOnTriangle(tt.p, a, b, c)
		if !ok || !vecApprox(got, tt.want, 1e-12) {
			t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
		}
	}
	if _, ok := closestPointOnTriangle(mgl64.Vec3{}, a, b, mgl64.Vec3{2, 0, 0}); ok {
		t.Error("degenerate triangle was accepted")
	}
}

func TestWatchdogResetsOnNaN(t *testing.T) {
	log := &recordingLogger{}
	v := New(Options{Shape: ShapeSphere, Material: Jelly, Center: mgl64.Vec3{0, 3, 0}, Size: 1, Logger: log})
	fresh := NewSphere(mgl64.Vec3{0, 3, 0}, 1, Jelly)
	v.PinParticle(4, true)
	v.Particles[7].Position[0] = math.NaN()
	v.enforceStability()

	if v.Resets != 1 {
		t.Fatalf("resets = %d, want 1", v.Resets)
	}
	for i := range fresh.Particles {
		if v.Particles[i].Position != fresh.Particles[i].Position {
			t.Fatalf("particle %d not restored", i)
		}
	}
	if len(v.Pins()) != 0 || v.Particles[4].IsFixed() {
		t.Error("reset kept pins")
	}
	if len(log.lines) != 1 || !strings.Contains(log.lines[0], "non-finite") {
		t.Errorf("log = %q", log.lines)
	}
}

func TestWatchdogResetsOnEscape(t *testing.T) {
	v := NewTorus(mgl64.Vec3{}, 1.5, 0.5, Jelly)
	v.Particles[3].Position = mgl64.Vec3{0, 16, 0}
	v.enforceStability()
	if v.Resets != 1 {
		t.Fatalf("resets = %d, want 1 (limit is 15)", v.Resets)
	}
}

func TestWatchdogClampsSpeed(t *testing.T) {
	v := NewSphere(mgl64.Vec3{}, 1, Jelly)
	v.Particles[3].Velocity = mgl64.Vec3{0, 0, 80}
	v.enforceStability()
	if v.Resets != 0 {
		t.Fatal("speed alone should not reset")
	}
	if !vecApprox(v.Particles[3].Velocity, mgl64.Vec3{0, 0, 50}, 1e-12) {
		t.Errorf("velocity = %v, want clamped to 50", v.Particles[3].Velocity)
	}
}

func TestPinParticle(t *testing.T) {
	v := NewSphere(mgl64.Vec3{0, 3, 0}, 1, Jelly)
	if v.PinParticle(-1, true) || v.PinParticle(len(v.Particles), true) {
		t.Error("out-of-range pin reported success")
	}
	top := v.Particles[1].Position
	v.PinParticle(1, true)
	v.PinParticle(1, true)
	if got := v.Pins(); len(got) != 1 || got[0] != 1 {
		t.Fatalf("pins = %v, want [1]", got)
	}
	for i := 0; i < 30; i++ {
		v.Update(1.0 / 60)
	}
	if v.Particles[1].Position != top {
		t.Errorf("pinned pole moved to %v", v.Particles[1].Position)
	}
	v.PinParticle(1, false)
	if len(v.Pins()) != 0 || v.Particles[1].IsFixed() {
		t.Error("unpin did not release the particle")
	}
}

func TestPinNearestToggles(t *testing.T) {
	v := NewSphere(mgl64.Vec3{0, 3, 0}, 1, Jelly)
	near := mgl64.Vec3{0, 4.1, 0}

	if i, ok := v.PinNearest(near, 0); !ok || i != 1 || !v.Particles[1].IsFixed() {
		t.Fatalf("first toggle: index %d ok %v fixed %v, want the top pole pinned", i, ok, v.Particles[1].IsFixed())
	}
	if got := v.Pins(); len(got) != 1 || got[0] != 1 {
		t.Errorf("pins = %v, want [1]", got)
	}
	if i, ok := v.PinNearest(near, 0); !ok || i != 1 || v.Particles[1].IsFixed() || len(v.Pins()) != 0 {
		t.Errorf("second toggle: index %d ok %v, want the pole released", i, ok)
	}
	if _, ok := v.PinNearest(mgl64.Vec3{0, 4.5, 0}, 0); ok {
		t.Error("pinned a particle outside the default radius")
	}
	if i, ok := v.PinNearest(mgl64.Vec3{0, 4.5, 0}, 1); !ok || i != 1 {
		t.Errorf("wide radius: index %d ok %v, want 1", i, ok)
	}
}

func TestResetRebuilds(t *testing.T) {
	v := NewPyramid(mgl64.Vec3{0, 3, 0}, 2, 2, Slime)
	fresh := v.GenerateMeshData()
	for i := 0; i < 20; i++ {
		v.Update(1.0 / 60)
	}
	v.Reset()
	got := v.GenerateMeshData()
	if len(got.Positions) != len(fresh.Positions) || len(got.Indices) != len(fresh.Indices) {
		t.Fatal("reset changed the layout")
	}
	for i := range fresh.Positions {
		if got.Positions[i] != fresh.Positions[i] {
			t.Fatalf("position %d = %v, want %v", i, got.Positions[i], fresh.Positions[i])
		}
	}
}

func TestResetRemeasuresRestVolume(t *testing.T) {
	v := NewSphere(mgl64.Vec3{0, 3, 0}, 1.5, Jelly)
	fine := v.InitialVolume
	v.Params.Resolution = 3
	v.Reset()
	if v.InitialVolume >= fine {
		t.Errorf("coarser sphere volume = %v, want below %v", v.InitialVolume, fine)
	}
	if !approx(v.InitialVolume, v.CalculateVolume(), 1e-12) || v.LastVolume != v.InitialVolume {
		t.Errorf("initial %v last %v current %v", v.InitialVolume, v.LastVolume, v.CalculateVolume())
	}
}

func TestGenerateMeshData(t *testing.T) {
	v := NewCube(mgl64.Vec3{}, 2, WaterBalloon)
	d := v.GenerateMeshData()
	if d.VertexCount() != len(v.Particles) || d.TriangleCount() != len(v.Triangles) {
		t.Fatalf("vertices %d triangles %d", d.VertexCount(), d.TriangleCount())
	}
	if len(d.Colors) != len(d.Positions) || d.Colors[2] != 0.9 {
		t.Errorf("colors = %v...", d.Colors[:3])
	}
	// the (max,max,max) corner normal points out along the diagonal
	for i := range v.Particles {
		if v.Particles[i].Position == (mgl64.Vec3{1, 1, 1}) {
			n := d.Normals[i*3 : i*3+3]
			if n[0] <= 0 || n[1] <= 0 || n[2] <= 0 {
				t.Errorf("corner normal = %v", n)
			}
		}
	}
	lines := v.GenerateSpringMeshData()
	if lines.SegmentCount() != len(v.Springs) {
		t.Errorf("segments = %d, want %d", lines.SegmentCount(), len(v.Springs))
	}
}
