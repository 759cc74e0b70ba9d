package cloth

import "softbody/internal/mesh"

// GenerateMeshData rebuilds the render mesh from the current particles: one vertex per particle,
// UV (col/(cols-1), row/(rows-1)), and two triangles per grid cell.
func (c *Cloth) GenerateMeshData() mesh.Data {
	d := mesh.Data{
		Positions: mesh.Positions(c.Particles),
		UVs:       make([]float32, 0, c.Rows*c.Cols*2),
		Indices:   make([]uint32, 0, (c.Rows-1)*(c.Cols-1)*6),
	}
	for i := 0; i < c.Rows; i++ {
		for j := 0; j < c.Cols; j++ {
			d.UVs = append(d.UVs, float32(j)/float32(c.Cols-1), float32(i)/float32(c.Rows-1))
		}
	}
	for i := 0; i < c.Rows-1; i++ {
		for j := 0; j < c.Cols-1; j++ {
			tl := uint32(c.Index(i, j))
			tr := tl + 1
			bl := uint32(c.Index(i+1, j))
			br := bl + 1
			d.Indices = append(d.Indices, tl, bl, tr, tr, bl, br)
		}
	}
	d.Normals = make([]float32, len(d.Positions))
	mesh.ComputeNormals(d.Positions, d.Indices, d.Normals)
	return d
}

// GenerateSpringMeshData returns the unbroken springs as colored lines.
func (c *Cloth) GenerateSpringMeshData() mesh.Lines {
	return mesh.SpringLines(c.Particles, c.Springs)
}
