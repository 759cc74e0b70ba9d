// Package mesh holds the flat, renderer-facing arrays produced from particle state.
package mesh

import (
	"github.com/chewxy/math32"

	"softbody/internal/physics"
)

// Data is a triangle mesh as flat float32 arrays (3 floats per position/normal/color, 2 per UV).
// UVs and Colors are optional; a mesh carries whichever its producer fills in.
type Data struct {
	Positions []float32
	Normals   []float32
	UVs       []float32
	Colors    []float32
	Indices   []uint32
}

// VertexCount returns the number of vertices.
func (d Data) VertexCount() int { return len(d.Positions) / 3 }

// TriangleCount returns the number of triangles.
func (d Data) TriangleCount() int { return len(d.Indices) / 3 }

// Lines is a line list: every pair of indices is one segment.
type Lines struct {
	Positions []float32
	Colors    []float32
	Indices   []uint32
}

// SegmentCount returns the number of segments.
func (l Lines) SegmentCount() int { return len(l.Indices) / 2 }

// Positions flattens particle positions into xyz triples.
func Positions(ps []physics.Particle) []float32 {
	out := make([]float32, 0, len(ps)*3)
	for i := range ps {
		p := ps[i].Position
		out = append(out, float32(p[0]), float32(p[1]), float32(p[2]))
	}
	return out
}

// ComputeNormals fills normals with area-weighted vertex normals for the indexed triangles.
// normals must have len(positions); vertices that end with a zero normal get +Y.
func ComputeNormals(positions []float32, indices []uint32, normals []float32) {
	for i := range normals {
		normals[i] = 0
	}
	for t := 0; t+2 < len(indices); t += 3 {
		i1, i2, i3 := indices[t]*3, indices[t+1]*3, indices[t+2]*3
		ax, ay, az := positions[i2]-positions[i1], positions[i2+1]-positions[i1+1], positions[i2+2]-positions[i1+2]
		bx, by, bz := positions[i3]-positions[i1], positions[i3+1]-positions[i1+1], positions[i3+2]-positions[i1+2]
		nx := ay*bz - az*by
		ny := az*bx - ax*bz
		nz := ax*by - ay*bx
		for _, v := range [3]uint32{i1, i2, i3} {
			normals[v] += nx
			normals[v+1] += ny
			normals[v+2] += nz
		}
	}
	for v := 0; v+2 < len(normals); v += 3 {
		l := math32.Sqrt(normals[v]*normals[v] + normals[v+1]*normals[v+1] + normals[v+2]*normals[v+2])
		if l == 0 || math32.IsNaN(l) || math32.IsInf(l, 0) {
			normals[v], normals[v+1], normals[v+2] = 0, 1, 0
			continue
		}
		normals[v] /= l
		normals[v+1] /= l
		normals[v+2] /= l
	}
}

// SpringColor is the line color for each spring type: structural red, shear green, bend blue.
func SpringColor(t physics.SpringType) [3]float32 {
	switch t {
	case physics.Shear:
		return [3]float32{0, 1, 0}
	case physics.Bend:
		return [3]float32{0, 0, 1}
	}
	return [3]float32{1, 0, 0}
}

// SpringLines builds one segment per unbroken spring. Broken springs are skipped, so the
// arrays hold exactly 2 vertices per retained spring.
func SpringLines(ps []physics.Particle, springs []physics.Spring) Lines {
	var l Lines
	for i := range springs {
		s := &springs[i]
		if s.Broken {
			continue
		}
		a, b := ps[s.A].Position, ps[s.B].Position
		c := SpringColor(s.Type)
		base := uint32(len(l.Positions) / 3)
		l.Positions = append(l.Positions,
			float32(a[0]), float32(a[1]), float32(a[2]),
			float32(b[0]), float32(b[1]), float32(b[2]))
		l.Colors = append(l.Colors, c[0], c[1], c[2], c[0], c[1], c[2])
		l.Indices = append(l.Indices, base, base+1)
	}
	return l
}

// PointSet is the particle view: one position per particle and whether it is pinned.
type PointSet struct {
	Positions []float32
	Fixed     []bool
}

// Points snapshots particle positions and pin flags.
func Points(ps []physics.Particle) PointSet {
	set := PointSet{Positions: Positions(ps), Fixed: make([]bool, len(ps))}
	for i := range ps {
		set.Fixed[i] = ps[i].IsFixed()
	}
	return set
}
