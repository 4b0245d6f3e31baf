package models

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/taigrr/loopsub/pkg/math3d"
)

// BuiltinPrefix marks a model path that names a built-in primitive, e.g. "res:icosahedron".
const BuiltinPrefix = "res:"

var builtins = map[string]func() *Mesh{
	"tetrahedron": Tetrahedron,
	"octahedron":  Octahedron,
	"icosahedron": Icosahedron,
	"cube":        Cube,
}

// BuiltinNames lists the available built-in primitives in sorted order.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Builtin returns a fresh copy of the named primitive. The name may carry BuiltinPrefix.
func Builtin(name string) (*Mesh, error) {
	gen, ok := builtins[strings.TrimPrefix(name, BuiltinPrefix)]
	if !ok {
		return nil, fmt.Errorf("unknown built-in model %q (have %s)", name, strings.Join(BuiltinNames(), ", "))
	}
	return gen(), nil
}

// Tetrahedron returns a regular tetrahedron: 4 vertices of valence 3, 4 faces.
func Tetrahedron() *Mesh {
	verts := []math3d.Vec3{
		math3d.V3(1, 1, 1),
		math3d.V3(1, -1, -1),
		math3d.V3(-1, 1, -1),
		math3d.V3(-1, -1, 1),
	}
	return regularSolid("tetrahedron", verts, 2*math.Sqrt2)
}

// Octahedron returns a regular octahedron: 6 vertices of valence 4, 8 faces.
func Octahedron() *Mesh {
	verts := []math3d.Vec3{
		math3d.V3(1, 0, 0), math3d.V3(-1, 0, 0),
		math3d.V3(0, 1, 0), math3d.V3(0, -1, 0),
		math3d.V3(0, 0, 1), math3d.V3(0, 0, -1),
	}
	return regularSolid("octahedron", verts, math.Sqrt2)
}

// Icosahedron returns a regular icosahedron: 12 vertices of valence 5, 20 faces.
func Icosahedron() *Mesh {
	phi := (1 + math.Sqrt(5)) / 2
	var verts []math3d.Vec3
	for _, s1 := range []float64{1, -1} {
		for _, s2 := range []float64{1, -1} {
			verts = append(verts,
				math3d.V3(0, s1, s2*phi),
				math3d.V3(s1, s2*phi, 0),
				math3d.V3(s2*phi, 0, s1),
			)
		}
	}
	return regularSolid("icosahedron", verts, 2)
}

// Cube returns a triangulated cube with corners at ±1: 8 vertices, 12 faces,
// mixed valences 4 and 5.
func Cube() *Mesh {
	m := NewMesh("cube")
	for i := range 8 {
		p := math3d.V3(float64(i&1)*2-1, float64(i>>1&1)*2-1, float64(i>>2&1)*2-1)
		m.Vertices = append(m.Vertices, MeshVertex{Position: p})
	}
	quads := [6][4]int{
		{0, 2, 6, 4}, {1, 3, 7, 5},
		{0, 1, 5, 4}, {2, 3, 7, 6},
		{0, 1, 3, 2}, {4, 5, 7, 6},
	}
	for _, q := range quads {
		m.Faces = append(m.Faces,
			m.outward(Face{V: [3]int{q[0], q[1], q[2]}}),
			m.outward(Face{V: [3]int{q[0], q[2], q[3]}}),
		)
	}
	m.CalculateSmoothNormals()
	m.CalculateBounds()
	return m
}

// regularSolid builds a convex solid centered on the origin whose faces are
// exactly the vertex triples at pairwise distance edge.
func regularSolid(name string, verts []math3d.Vec3, edge float64) *Mesh {
	m := NewMesh(name)
	for _, p := range verts {
		m.Vertices = append(m.Vertices, MeshVertex{Position: p})
	}

	adjacent := func(a, b int) bool {
		return math.Abs(verts[a].Distance(verts[b])-edge) < 1e-9
	}
	n := len(verts)
	for i := range n {
		for j := i + 1; j < n; j++ {
			if !adjacent(i, j) {
				continue
			}
			for k := j + 1; k < n; k++ {
				if adjacent(i, k) && adjacent(j, k) {
					m.Faces = append(m.Faces, m.outward(Face{V: [3]int{i, j, k}}))
				}
			}
		}
	}

	for i := range m.Vertices {
		m.Vertices[i].Normal = m.Vertices[i].Position.Normalize()
	}
	m.CalculateBounds()
	return m
}

// outward flips f if its normal points toward the origin.
func (m *Mesh) outward(f Face) Face {
	c := m.Vertices[f.V[0]].Position.Add(m.Vertices[f.V[1]].Position).Add(m.Vertices[f.V[2]].Position)
	if m.faceNormal(f).Dot(c) < 0 {
		f.V[1], f.V[2] = f.V[2], f.V[1]
	}
	return f
}
