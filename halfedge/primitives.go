package halfedge

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Grid returns a flat nx by ny cell grid in the z=0 plane spanning
// [0,width]x[0,height]. Every cell is split along the same diagonal so
// interior vertices have valence six.
func Grid(nx, ny int, width, height float64) (*Mesh, error) {
	if nx < 1 || ny < 1 {
		return nil, fmt.Errorf("grid needs at least one cell per side, got %dx%d", nx, ny)
	}
	pos := make([]r3.Vec, 0, (nx+1)*(ny+1))
	for j := 0; j <= ny; j++ {
		for i := 0; i <= nx; i++ {
			pos = append(pos, r3.Vec{
				X: width * float64(i) / float64(nx),
				Y: height * float64(j) / float64(ny),
			})
		}
	}
	idx := func(i, j int) int { return j*(nx+1) + i }
	faces := make([][3]int, 0, 2*nx*ny)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			a, b, c, d := idx(i, j), idx(i+1, j), idx(i+1, j+1), idx(i, j+1)
			faces = append(faces, [3]int{a, b, c}, [3]int{a, c, d})
		}
	}
	return New(pos, faces)
}

// Fan returns a disk made of n triangles around a center vertex 0 at
// height apex. Ring vertices lie on a circle of the given radius in the
// z=0 plane.
func Fan(n int, radius, apex float64) (*Mesh, error) {
	if n < 3 {
		return nil, fmt.Errorf("fan needs at least 3 triangles, got %d", n)
	}
	pos := make([]r3.Vec, n+1)
	pos[0] = r3.Vec{Z: apex}
	faces := make([][3]int, n)
	for i := 0; i < n; i++ {
		theta := 2 * math.Pi * float64(i) / float64(n)
		pos[i+1] = r3.Vec{X: radius * math.Cos(theta), Y: radius * math.Sin(theta)}
		faces[i] = [3]int{0, i + 1, (i+1)%n + 1}
	}
	return New(pos, faces)
}

// Icosphere returns a closed unit sphere built by subdividing an
// icosahedron subdivisions times.
func Icosphere(subdivisions int) (*Mesh, error) {
	const phi = 1.618033988749895
	pos := []r3.Vec{
		{X: -1, Y: phi}, {X: 1, Y: phi}, {X: -1, Y: -phi}, {X: 1, Y: -phi},
		{Y: -1, Z: phi}, {Y: 1, Z: phi}, {Y: -1, Z: -phi}, {Y: 1, Z: -phi},
		{X: phi, Z: -1}, {X: phi, Z: 1}, {X: -phi, Z: -1}, {X: -phi, Z: 1},
	}
	for i := range pos {
		pos[i] = r3.Unit(pos[i])
	}
	faces := [][3]int{
		{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
		{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
		{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
		{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
	}
	for s := 0; s < subdivisions; s++ {
		mid := make(map[[2]int]int)
		midpoint := func(a, b int) int {
			key := [2]int{a, b}
			if a > b {
				key = [2]int{b, a}
			}
			if i, ok := mid[key]; ok {
				return i
			}
			pos = append(pos, r3.Unit(r3.Add(pos[a], pos[b])))
			mid[key] = len(pos) - 1
			return len(pos) - 1
		}
		next := make([][3]int, 0, 4*len(faces))
		for _, f := range faces {
			ab, bc, ca := midpoint(f[0], f[1]), midpoint(f[1], f[2]), midpoint(f[2], f[0])
			next = append(next,
				[3]int{f[0], ab, ca},
				[3]int{f[1], bc, ab},
				[3]int{f[2], ca, bc},
				[3]int{ab, bc, ca},
			)
		}
		faces = next
	}
	return New(pos, faces)
}
