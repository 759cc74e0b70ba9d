package mesh

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"softbody/internal/physics"
)

func TestComputeNormalsQuad(t *testing.T) {
	// quad in the XZ plane wound so its normal faces +Y
	positions := []float32{
		0, 0, 0,
		0, 0, 1,
		1, 0, 0,
		1, 0, 1,
	}
	indices := []uint32{0, 1, 2, 2, 1, 3}
	normals := make([]float32, len(positions))
	ComputeNormals(positions, indices, normals)
	for v := 0; v < 4; v++ {
		n := normals[v*3 : v*3+3]
		if n[0] != 0 || n[1] != 1 || n[2] != 0 {
			t.Errorf("vertex %d normal = %v, want (0,1,0)", v, n)
		}
	}
}

func TestComputeNormalsDegenerate(t *testing.T) {
	positions := []float32{0, 0, 0, 1, 0, 0, 2, 0, 0, 5, 5, 5}
	indices := []uint32{0, 1, 2}
	normals := []float32{9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9}
	ComputeNormals(positions, indices, normals)
	for v := 0; v < 4; v++ {
		n := normals[v*3 : v*3+3]
		if n[0] != 0 || n[1] != 1 || n[2] != 0 {
			t.Errorf("vertex %d normal = %v, want fallback (0,1,0)", v, n)
		}
	}
}

func TestSpringLinesSkipsBroken(t *testing.T) {
	ps := []physics.Particle{
		physics.NewParticle(mgl64.Vec3{0, 0, 0}, 1, false),
		physics.NewParticle(mgl64.Vec3{1, 0, 0}, 1, false),
		physics.NewParticle(mgl64.Vec3{1, 1, 0}, 1, false),
	}
	springs := []physics.Spring{
		physics.NewSpring(ps, 0, 1, 1, 0, physics.Structural),
		physics.NewSpring(ps, 1, 2, 1, 0, physics.Shear),
		physics.NewSpring(ps, 0, 2, 1, 0, physics.Bend),
	}
	springs[1].Broken = true

	l := SpringLines(ps, springs)
	if l.SegmentCount() != 2 || len(l.Positions) != 12 || len(l.Colors) != 12 {
		t.Fatalf("got %d segments, %d positions, %d colors; want 2, 12, 12",
			l.SegmentCount(), len(l.Positions), len(l.Colors))
	}
	if got := [3]float32{l.Colors[6], l.Colors[7], l.Colors[8]}; got != SpringColor(physics.Bend) {
		t.Errorf("second segment color = %v, want bend blue", got)
	}
	for i, idx := range l.Indices {
		if idx != uint32(i) {
			t.Errorf("index %d = %d, want %d", i, idx, i)
		}
	}
}

func TestPoints(t *testing.T) {
	ps := []physics.Particle{
		physics.NewParticle(mgl64.Vec3{1, 2, 3}, 1, true),
		physics.NewParticle(mgl64.Vec3{4, 5, 6}, 1, false),
	}
	set := Points(ps)
	if len(set.Positions) != 6 || set.Positions[5] != 6 {
		t.Errorf("positions = %v", set.Positions)
	}
	if !set.Fixed[0] || set.Fixed[1] {
		t.Errorf("fixed = %v, want [true false]", set.Fixed)
	}
}
