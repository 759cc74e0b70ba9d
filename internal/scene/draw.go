package scene

import (
	"math"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl64"

	rl "github.com/gen2brain/raylib-go/raylib"

	"softbody/internal/mesh"
	"softbody/internal/physics"
	"softbody/internal/primitives"
	"softbody/internal/sim"
)

const (
	ambient    = 0.35
	pointSize  = 0.03
	planeHalf  = 3
	sphereRing = 12
)

var (
	clothTint     = [3]float32{0.35, 0.55, 0.9}
	wireColor     = rl.NewColor(220, 220, 220, 255)
	freeColor     = rl.NewColor(240, 240, 240, 255)
	fixedColor    = rl.NewColor(230, 60, 60, 255)
	colliderColor = rl.NewColor(240, 200, 60, 255)
	solidColor    = rl.NewColor(150, 120, 50, 255)
	floorColor    = rl.NewColor(40, 44, 52, 255)
)

func (s *Scene) drawActive() {
	twoSided := s.sim.Mode == sim.ModeCloth
	switch s.sim.Render {
	case sim.RenderWireframe:
		drawWireframe(s.sim.MeshData())
	case sim.RenderPoints:
		drawPoints(s.sim.Points())
	case sim.RenderSprings:
		drawLines(s.sim.SpringLines())
	case sim.RenderDebug:
		s.drawShaded(s.sim.MeshData(), twoSided)
		drawLines(s.sim.SpringLines())
		drawPoints(s.sim.Points())
	default:
		s.drawShaded(s.sim.MeshData(), twoSided)
	}
}

// drawShaded draws every triangle with flat N·L shading from the averaged vertex normals. The cloth is
// drawn from both sides; volumes rely on their outward winding.
func (s *Scene) drawShaded(d mesh.Data, twoSided bool) {
	for t := 0; t+2 < len(d.Indices); t += 3 {
		a, b, c := d.Indices[t], d.Indices[t+1], d.Indices[t+2]
		n := [3]float32{}
		tint := [3]float32{}
		for _, v := range [3]uint32{a, b, c} {
			for k := 0; k < 3; k++ {
				n[k] += d.Normals[v*3+uint32(k)]
				if len(d.Colors) > 0 {
					tint[k] += d.Colors[v*3+uint32(k)] / 3
				}
			}
		}
		if len(d.Colors) == 0 {
			tint = clothTint
		}
		n = normalize3(n)
		lambert := n[0]*s.lightDir[0] + n[1]*s.lightDir[1] + n[2]*s.lightDir[2]
		if twoSided {
			lambert = math32.Abs(lambert)
		}
		col := shade(tint, ambient+(1-ambient)*max(lambert, 0))

		va, vb, vc := vertex(d.Positions, a), vertex(d.Positions, b), vertex(d.Positions, c)
		rl.DrawTriangle3D(va, vb, vc, col)
		if twoSided {
			rl.DrawTriangle3D(va, vc, vb, col)
		}
	}
}

func drawWireframe(d mesh.Data) {
	for t := 0; t+2 < len(d.Indices); t += 3 {
		a := vertex(d.Positions, d.Indices[t])
		b := vertex(d.Positions, d.Indices[t+1])
		c := vertex(d.Positions, d.Indices[t+2])
		rl.DrawLine3D(a, b, wireColor)
		rl.DrawLine3D(b, c, wireColor)
		rl.DrawLine3D(c, a, wireColor)
	}
}

func drawLines(l mesh.Lines) {
	for s := 0; s+1 < len(l.Indices); s += 2 {
		i, j := l.Indices[s], l.Indices[s+1]
		c := l.Colors[i*3 : i*3+3]
		rl.DrawLine3D(vertex(l.Positions, i), vertex(l.Positions, j), shade([3]float32{c[0], c[1], c[2]}, 1))
	}
}

func drawPoints(p mesh.PointSet) {
	for i, fixed := range p.Fixed {
		col := freeColor
		if fixed {
			col = fixedColor
		}
		rl.DrawCube(vertex(p.Positions, uint32(i)), pointSize, pointSize, pointSize, col)
	}
}

// drawColliders draws sphere and box obstacles as lit solids with a wire outline and planes as an
// outlined patch; other collider kinds are skipped.
func (s *Scene) drawColliders(cs []physics.Collider) {
	for _, c := range cs {
		switch c := c.(type) {
		case *physics.SphereCollider:
			s.solids.Draw(primitives.Sphere, c.Center, mgl64.Vec3{c.Radius * 0.98, 0, 0}, solidColor)
			rl.DrawSphereWires(toRL(c.Center), float32(c.Radius), sphereRing, sphereRing, colliderColor)
		case *physics.BoxCollider:
			s.solids.Draw(primitives.Box, c.Center, c.HalfExtents.Mul(0.98), solidColor)
			size := c.HalfExtents.Mul(2)
			rl.DrawCubeWires(toRL(c.Center), float32(size[0]), float32(size[1]), float32(size[2]), colliderColor)
		case *physics.PlaneCollider:
			drawPlane(c)
		}
	}
}

// drawPlane outlines a square patch of the plane around its anchor point plus the normal.
func drawPlane(p *physics.PlaneCollider) {
	ref := mgl64.Vec3{0, 1, 0}
	if math.Abs(p.Normal.Dot(ref)) > 0.9 {
		ref = mgl64.Vec3{1, 0, 0}
	}
	u := p.Normal.Cross(ref).Normalize().Mul(planeHalf)
	v := p.Normal.Cross(u).Normalize().Mul(planeHalf)
	corners := [4]mgl64.Vec3{
		p.Point.Add(u).Add(v), p.Point.Sub(u).Add(v),
		p.Point.Sub(u).Sub(v), p.Point.Add(u).Sub(v),
	}
	for i := range corners {
		rl.DrawLine3D(toRL(corners[i]), toRL(corners[(i+1)%4]), colliderColor)
	}
	rl.DrawLine3D(toRL(p.Point), toRL(p.Point.Add(p.Normal)), colliderColor)
}

func vertex(positions []float32, i uint32) rl.Vector3 {
	return rl.NewVector3(positions[i*3], positions[i*3+1], positions[i*3+2])
}

func toRL(v mgl64.Vec3) rl.Vector3 {
	return rl.NewVector3(float32(v[0]), float32(v[1]), float32(v[2]))
}

func shade(tint [3]float32, k float32) rl.Color {
	ch := func(x float32) uint8 { return uint8(math32.Min(x*k, 1) * 255) }
	return rl.NewColor(ch(tint[0]), ch(tint[1]), ch(tint[2]), 255)
}

func normalize3(v [3]float32) [3]float32 {
	l := math32.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	if l == 0 {
		return [3]float32{0, 1, 0}
	}
	return [3]float32{v[0] / l, v[1] / l, v[2] / l}
}
