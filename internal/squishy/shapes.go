package squishy

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"softbody/internal/physics"
)

// builder appends particles, springs and triangles to a volume. A particle pair is linked at most
// once, whatever type the later duplicate would have had.
type builder struct {
	v     *Volume
	edges map[[2]int]struct{}
}

func newBuilder(v *Volume) *builder {
	return &builder{v: v, edges: make(map[[2]int]struct{})}
}

func (b *builder) add(pos mgl64.Vec3) int {
	return b.v.AddParticle(physics.NewParticle(pos, b.v.Params.Mass, false))
}

// link adds a spring of stiffness scale×material stiffness.
func (b *builder) link(i, j int, scale float64, typ physics.SpringType) {
	key := [2]int{min(i, j), max(i, j)}
	if i == j {
		return
	}
	if _, dup := b.edges[key]; dup {
		return
	}
	if b.v.AddSpring(i, j, b.v.Params.Stiffness*scale, b.v.Params.Damping, typ) {
		b.edges[key] = struct{}{}
	}
}

func (b *builder) tri(i, j, k int) {
	b.v.Triangles = append(b.v.Triangles, Triangle{i, j, k})
}

func wrap(i, n int) int { return ((i % n) + n) % n }

// buildSphere lays out a center anchor, a top pole, res-1 latitude rings of 2·res particles and a
// bottom pole. The anchor holds the poles structurally and the outer rings with bend springs.
func buildSphere(b *builder, center mgl64.Vec3, radius float64, res int) {
	res = max(res, 2)
	perRing := res * 2
	rings := res - 1

	anchor := b.add(center)
	top := b.add(center.Add(mgl64.Vec3{0, radius, 0}))
	for ring := 1; ring < res; ring++ {
		phi := math.Pi * float64(ring) / float64(res)
		y := radius * math.Cos(phi)
		slice := radius * math.Sin(phi)
		for s := 0; s < perRing; s++ {
			theta := 2 * math.Pi * float64(s) / float64(perRing)
			b.add(center.Add(mgl64.Vec3{slice * math.Cos(theta), y, slice * math.Sin(theta)}))
		}
	}
	bottom := b.add(center.Sub(mgl64.Vec3{0, radius, 0}))
	at := func(ring, i int) int { return 2 + ring*perRing + wrap(i, perRing) }

	b.link(anchor, top, 1, physics.Structural)
	b.link(anchor, bottom, 1, physics.Structural)
	for i := 0; i < perRing; i++ {
		b.link(top, at(0, i), 1, physics.Structural)
		b.link(anchor, at(0, i), 0.5, physics.Bend)
	}
	for ring := 0; ring < rings; ring++ {
		for i := 0; i < perRing; i++ {
			cur := at(ring, i)
			b.link(cur, at(ring, i+1), 1, physics.Structural)
			b.link(cur, at(ring, i+2), 0.5, physics.Bend)
			if ring < rings-1 {
				b.link(cur, at(ring+1, i), 1, physics.Structural)
				b.link(cur, at(ring+1, i+1), 0.7, physics.Shear)
				b.link(cur, at(ring+1, i-1), 0.7, physics.Shear)
			}
		}
	}
	for i := 0; i < perRing; i++ {
		b.link(bottom, at(rings-1, i), 1, physics.Structural)
		b.link(anchor, at(rings-1, i), 0.5, physics.Bend)
	}

	for i := 0; i < perRing; i++ {
		b.tri(top, at(0, i+1), at(0, i))
	}
	for ring := 0; ring < rings-1; ring++ {
		for i := 0; i < perRing; i++ {
			cur, next := at(ring, i), at(ring, i+1)
			below, belowNext := at(ring+1, i), at(ring+1, i+1)
			b.tri(cur, next, below)
			b.tri(next, belowNext, below)
		}
	}
	for i := 0; i < perRing; i++ {
		b.tri(bottom, at(rings-1, i), at(rings-1, i+1))
	}
}

// buildTorus lays out res minor rings of res particles around the major circle in the XZ plane.
// There is no interior anchor; bend springs skip one particle along both directions.
func buildTorus(b *builder, center mgl64.Vec3, major, minor float64, res int) {
	res = max(res, 3)
	idx := func(i, j int) int { return wrap(i, res)*res + wrap(j, res) }

	for i := 0; i < res; i++ {
		theta := 2 * math.Pi * float64(i) / float64(res)
		ct, st := math.Cos(theta), math.Sin(theta)
		for j := 0; j < res; j++ {
			phi := 2 * math.Pi * float64(j) / float64(res)
			r := major + minor*math.Cos(phi)
			b.add(center.Add(mgl64.Vec3{r * ct, minor * math.Sin(phi), r * st}))
		}
	}

	for i := 0; i < res; i++ {
		for j := 0; j < res; j++ {
			b.link(idx(i, j), idx(i, j+1), 1, physics.Structural)
			b.link(idx(i, j), idx(i, j+2), 0.5, physics.Bend)
		}
	}
	for i := 0; i < res; i++ {
		for j := 0; j < res; j++ {
			cur := idx(i, j)
			b.link(cur, idx(i+1, j), 1, physics.Structural)
			b.link(cur, idx(i+1, j+1), 0.7, physics.Shear)
			b.link(cur, idx(i+1, j-1), 0.7, physics.Shear)
			b.link(cur, idx(i+2, j), 0.3, physics.Bend)
		}
	}

	for i := 0; i < res; i++ {
		for j := 0; j < res; j++ {
			cur, next := idx(i, j), idx(i, j+1)
			around, aroundNext := idx(i+1, j), idx(i+1, j+1)
			b.tri(cur, next, around)
			b.tri(next, aroundNext, around)
		}
	}
}

// buildCube keeps the surface points of an n×n×n lattice (n = res/2, at least 2) plus a center anchor.
// Each face is a grid of quads with structural edges and both diagonals as shear springs.
func buildCube(b *builder, center mgl64.Vec3, size float64, res int) {
	n := max(2, res/2)
	step := size / float64(n-1)
	origin := center.Sub(mgl64.Vec3{size / 2, size / 2, size / 2})
	onSurface := func(c [3]int) bool {
		for _, x := range c {
			if x == 0 || x == n-1 {
				return true
			}
		}
		return false
	}

	lattice := make(map[[3]int]int)
	var surface []int
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			for k := 0; k < n; k++ {
				c := [3]int{i, j, k}
				if !onSurface(c) {
					continue
				}
				idx := b.add(origin.Add(mgl64.Vec3{float64(i), float64(j), float64(k)}.Mul(step)))
				lattice[c] = idx
				surface = append(surface, idx)
			}
		}
	}
	anchor := b.add(center)

	// Faces are walked as (u, v) grids over the two other axes in cyclic order, so u×v points
	// along +axis. The low face keeps the v-then-u order and the high face flips it.
	for axis := 0; axis < 3; axis++ {
		ua, va := (axis+1)%3, (axis+2)%3
		for _, side := range [2]int{0, n - 1} {
			flip := side == n-1
			pt := func(u, v int) int {
				var c [3]int
				c[axis], c[ua], c[va] = side, u, v
				return lattice[c]
			}
			for u := 0; u < n-1; u++ {
				for v := 0; v < n-1; v++ {
					p00, p01 := pt(u, v), pt(u, v+1)
					p10, p11 := pt(u+1, v), pt(u+1, v+1)
					b.link(p00, p01, 1, physics.Structural)
					b.link(p00, p10, 1, physics.Structural)
					b.link(p01, p11, 1, physics.Structural)
					b.link(p10, p11, 1, physics.Structural)
					b.link(p00, p11, 0.7, physics.Shear)
					b.link(p01, p10, 0.7, physics.Shear)
					if flip {
						b.tri(p00, p10, p01)
						b.tri(p01, p10, p11)
					} else {
						b.tri(p00, p01, p10)
						b.tri(p01, p11, p10)
					}
				}
			}
		}
	}
	for _, idx := range surface {
		b.link(idx, anchor, 0.5, physics.Bend)
	}
}

// buildPyramid tiles the base with an n×n grid (n = max(3, res) - 1) and each sloped face with a
// regular triangle grid. Horizontal perimeter rings shrink from the base edge (ring 0) to the apex
// (ring n); ring l has n-l segments per side. A center anchor sits at the middle of the bounding box.
func buildPyramid(b *builder, center mgl64.Vec3, base, height float64, res int) {
	n := max(3, res) - 1
	step := base / float64(n)
	half := base / 2
	bottomY := center[1] - height/2

	baseStart := len(b.v.Particles)
	for i := 0; i <= n; i++ {
		for j := 0; j <= n; j++ {
			b.add(mgl64.Vec3{center[0] - half + float64(i)*step, bottomY, center[2] - half + float64(j)*step})
		}
	}
	grid := func(i, j int) int { return baseStart + i*(n+1) + j }

	corners := [4][2]float64{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
	ringStart := make([]int, n)
	for l := 1; l < n; l++ {
		m := n - l
		rh := half * float64(m) / float64(n)
		y := bottomY + height*float64(l)/float64(n)
		ringStart[l] = len(b.v.Particles)
		for k := 0; k < 4*m; k++ {
			s, t := k/m, k%m
			c0, c1 := corners[s], corners[(s+1)%4]
			f := float64(t) / float64(m)
			x := c0[0] + (c1[0]-c0[0])*f
			z := c0[1] + (c1[1]-c0[1])*f
			b.add(mgl64.Vec3{center[0] + x*rh, y, center[2] + z*rh})
		}
	}
	apex := b.add(mgl64.Vec3{center[0], center[1] + height/2, center[2]})
	anchor := b.add(center)

	// ring returns perimeter point k of ring l; ring 0 is the base grid border.
	ring := func(l, k int) int {
		m := n - l
		if m == 0 {
			return apex
		}
		k = wrap(k, 4*m)
		if l > 0 {
			return ringStart[l] + k
		}
		s, t := k/n, k%n
		switch s {
		case 0:
			return grid(t, 0)
		case 1:
			return grid(n, t)
		case 2:
			return grid(n-t, n)
		}
		return grid(0, n-t)
	}

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			b.link(grid(i, j), grid(i+1, j), 1, physics.Structural)
			b.link(grid(i, j), grid(i, j+1), 1, physics.Structural)
			b.link(grid(i+1, j), grid(i+1, j+1), 1, physics.Structural)
			b.link(grid(i, j+1), grid(i+1, j+1), 1, physics.Structural)
			b.link(grid(i, j), grid(i+1, j+1), 0.7, physics.Shear)
			b.link(grid(i+1, j), grid(i, j+1), 0.7, physics.Shear)
			b.tri(grid(i, j), grid(i+1, j), grid(i, j+1))
			b.tri(grid(i+1, j), grid(i+1, j+1), grid(i, j+1))
		}
	}
	for i := 0; i <= n; i++ {
		for j := 0; j <= n; j++ {
			b.link(grid(i, j), anchor, 0.5, physics.Bend)
		}
	}

	for l := 0; l < n; l++ {
		m := n - l
		for s := 0; s < 4; s++ {
			lower := func(t int) int { return ring(l, s*m+t) }
			upper := func(t int) int { return ring(l+1, s*(m-1)+t) }
			for t := 0; t < m; t++ {
				b.link(lower(t), lower(t+1), 1, physics.Structural)
				b.link(lower(t), upper(t), 1, physics.Structural)
				b.link(lower(t+1), upper(t), 0.7, physics.Shear)
				b.tri(lower(t), upper(t), lower(t+1))
				if t < m-1 {
					b.tri(lower(t+1), upper(t), upper(t+1))
				}
			}
		}
		if l > 0 {
			for k := 0; k < 4*m; k++ {
				b.link(ring(l, k), anchor, 0.5, physics.Bend)
			}
		}
	}
	b.link(apex, anchor, 0.5, physics.Bend)
}
