// Package diredge implements the directed-edge surface: a closed, oriented
// triangle mesh stored as flat arrays indexed by vertex and by directed edge.
//
// Face f owns the directed edges 3f, 3f+1 and 3f+2. Edge e points at
// EdgeTarget[e] and starts where the previous edge of its face points, so a
// face (a, b, c) is stored as the targets a, b, c and its edges run c→a, a→b
// and b→c. Twin[e] is the edge of the neighbouring face running the other way
// along the same undirected edge.
package diredge

import (
	"slices"

	"github.com/taigrr/loopsub/pkg/math3d"
	"github.com/taigrr/loopsub/pkg/models"
)

// Surface is the directed-edge mesh handle.
type Surface struct {
	Positions     []math3d.Vec3 // per vertex
	Normals       []math3d.Vec3 // per vertex, unit length
	EdgeTarget    []int         // per directed edge: the vertex it points to
	Twin          []int         // per directed edge: the opposite edge across the same undirected edge
	FirstOutgoing []int         // per vertex: one edge leaving it, the start of its one-ring walk
}

// VertexCount returns the number of vertices.
func (s *Surface) VertexCount() int { return len(s.Positions) }

// EdgeCount returns the number of directed edges (three per face).
func (s *Surface) EdgeCount() int { return len(s.EdgeTarget) }

// FaceCount returns the number of triangles.
func (s *Surface) FaceCount() int { return len(s.EdgeTarget) / 3 }

// TriangleCount returns the number of triangles.
func (s *Surface) TriangleCount() int { return s.FaceCount() }

// Triangle returns the corner vertices of face f in winding order.
func (s *Surface) Triangle(f int) [3]int {
	return [3]int{s.EdgeTarget[3*f], s.EdgeTarget[3*f+1], s.EdgeTarget[3*f+2]}
}

// VertexAt returns the position and normal of vertex v.
func (s *Surface) VertexAt(v int) (pos, normal math3d.Vec3) {
	return s.Positions[v], s.Normals[v]
}

// Face returns the face that owns edge e.
func Face(e int) int { return e / 3 }

// Next returns the edge following e within its face.
func Next(e int) int { return 3*(e/3) + (e+1)%3 }

// Prev returns the edge preceding e within its face.
func Prev(e int) int { return 3*(e/3) + (e+2)%3 }

// Source returns the vertex edge e starts from.
func (s *Surface) Source(e int) int { return s.EdgeTarget[Prev(e)] }

// EulerCharacteristic returns V - E + F counting undirected edges.
// A closed surface of genus g gives 2 - 2g.
func (s *Surface) EulerCharacteristic() int {
	return s.VertexCount() - s.EdgeCount()/2 + s.FaceCount()
}

// Clone returns a deep copy.
func (s *Surface) Clone() *Surface {
	return &Surface{
		Positions:     slices.Clone(s.Positions),
		Normals:       slices.Clone(s.Normals),
		EdgeTarget:    slices.Clone(s.EdgeTarget),
		Twin:          slices.Clone(s.Twin),
		FirstOutgoing: slices.Clone(s.FirstOutgoing),
	}
}

// Equal reports whether both surfaces hold identical arrays.
func (s *Surface) Equal(o *Surface) bool {
	return slices.Equal(s.Positions, o.Positions) &&
		slices.Equal(s.Normals, o.Normals) &&
		slices.Equal(s.EdgeTarget, o.EdgeTarget) &&
		slices.Equal(s.Twin, o.Twin) &&
		slices.Equal(s.FirstOutgoing, o.FirstOutgoing)
}

// ToMesh converts the surface back to an indexed triangle mesh.
func (s *Surface) ToMesh(name string) *models.Mesh {
	m := models.NewMesh(name)
	m.Vertices = make([]models.MeshVertex, len(s.Positions))
	for i := range s.Positions {
		m.Vertices[i] = models.MeshVertex{Position: s.Positions[i], Normal: s.Normals[i]}
	}
	m.Faces = make([]models.Face, s.FaceCount())
	for f := range m.Faces {
		m.Faces[f].V = s.Triangle(f)
	}
	m.CalculateBounds()
	return m
}
