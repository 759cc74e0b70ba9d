package squishy

import "softbody/internal/mesh"

// GenerateMeshData rebuilds the render mesh from the surface triangles: every particle is a vertex
// (interior anchors are simply unreferenced), colored with the material tint.
func (v *Volume) GenerateMeshData() mesh.Data {
	d := mesh.Data{
		Positions: mesh.Positions(v.Particles),
		Colors:    make([]float32, 0, len(v.Particles)*3),
		Indices:   make([]uint32, 0, len(v.Triangles)*3),
	}
	c := Color(v.Material)
	for range v.Particles {
		d.Colors = append(d.Colors, c[0], c[1], c[2])
	}
	for _, t := range v.Triangles {
		d.Indices = append(d.Indices, uint32(t[0]), uint32(t[1]), uint32(t[2]))
	}
	d.Normals = make([]float32, len(d.Positions))
	mesh.ComputeNormals(d.Positions, d.Indices, d.Normals)
	return d
}

// GenerateSpringMeshData returns the unbroken springs as colored lines.
func (v *Volume) GenerateSpringMeshData() mesh.Lines {
	return mesh.SpringLines(v.Particles, v.Springs)
}
