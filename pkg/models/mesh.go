// Package models provides the indexed triangle mesh and the file formats
// (STL, OBJ, glTF) used to move meshes in and out of loopsub.
package models

import (
	"github.com/taigrr/loopsub/pkg/math3d"
)

// Mesh is an indexed triangle mesh: shared vertices plus faces referencing them.
type Mesh struct {
	Name     string
	Vertices []MeshVertex
	Faces    []Face

	// Bounding box (calculated on load)
	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3
}

// MeshVertex holds the per-vertex attributes the subdivision pipeline carries.
type MeshVertex struct {
	Position math3d.Vec3
	Normal   math3d.Vec3
}

// Face is a triangle given by three indices into Mesh.Vertices,
// counter-clockwise when seen from outside.
type Face struct {
	V [3]int
}

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{
		Name:     name,
		Vertices: make([]MeshVertex, 0),
		Faces:    make([]Face, 0),
	}
}

// CalculateBounds computes the axis-aligned bounding box.
func (m *Mesh) CalculateBounds() {
	if len(m.Vertices) == 0 {
		return
	}

	m.BoundsMin = m.Vertices[0].Position
	m.BoundsMax = m.Vertices[0].Position
	for _, v := range m.Vertices[1:] {
		m.BoundsMin = m.BoundsMin.Min(v.Position)
		m.BoundsMax = m.BoundsMax.Max(v.Position)
	}
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	return m.BoundsMin.Add(m.BoundsMax).Scale(0.5)
}

// Size returns the dimensions of the bounding box.
func (m *Mesh) Size() math3d.Vec3 {
	return m.BoundsMax.Sub(m.BoundsMin)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Faces)
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// Triangle returns the vertex indices of face i.
func (m *Mesh) Triangle(i int) [3]int {
	return m.Faces[i].V
}

// VertexAt returns the position and normal of vertex i.
func (m *Mesh) VertexAt(i int) (pos, normal math3d.Vec3) {
	v := m.Vertices[i]
	return v.Position, v.Normal
}

// HasNormals reports whether any vertex carries a non-zero normal.
func (m *Mesh) HasNormals() bool {
	for _, v := range m.Vertices {
		if v.Normal.Len() > 0.001 {
			return true
		}
	}
	return false
}

// faceNormal returns the unnormalized normal of face f; its length is twice the area.
func (m *Mesh) faceNormal(f Face) math3d.Vec3 {
	v0 := m.Vertices[f.V[0]].Position
	v1 := m.Vertices[f.V[1]].Position
	v2 := m.Vertices[f.V[2]].Position
	return v1.Sub(v0).Cross(v2.Sub(v0))
}

// CalculateSmoothNormals sets every vertex normal to the area-weighted
// average of the normals of its incident faces.
func (m *Mesh) CalculateSmoothNormals() {
	for i := range m.Vertices {
		m.Vertices[i].Normal = math3d.Zero3()
	}

	for _, f := range m.Faces {
		n := m.faceNormal(f)
		for _, vi := range f.V {
			m.Vertices[vi].Normal = m.Vertices[vi].Normal.Add(n)
		}
	}

	for i := range m.Vertices {
		m.Vertices[i].Normal = m.Vertices[i].Normal.Normalize()
	}
}

// Transform applies a transformation matrix to all vertices.
// Normals only get the linear part, which is exact for rotations and uniform scales.
func (m *Mesh) Transform(mat math3d.Mat4) {
	for i := range m.Vertices {
		m.Vertices[i].Position = mat.MulVec3(m.Vertices[i].Position)
		m.Vertices[i].Normal = mat.MulVec3Dir(m.Vertices[i].Normal).Normalize()
	}
	m.CalculateBounds()
}

// FitTransform returns the transform that centers the mesh on the origin and
// scales its largest dimension to size. Bounds must be current.
func (m *Mesh) FitTransform(size float64) math3d.Mat4 {
	dims := m.Size()
	maxDim := max(dims.X, dims.Y, dims.Z)
	if maxDim <= 0 {
		return math3d.Translate(m.Center().Scale(-1))
	}
	s := size / maxDim
	return math3d.Scale(math3d.V3(s, s, s)).Mul(math3d.Translate(m.Center().Scale(-1)))
}

// Clone creates a deep copy of the mesh.
func (m *Mesh) Clone() *Mesh {
	clone := &Mesh{
		Name:      m.Name,
		Vertices:  make([]MeshVertex, len(m.Vertices)),
		Faces:     make([]Face, len(m.Faces)),
		BoundsMin: m.BoundsMin,
		BoundsMax: m.BoundsMax,
	}
	copy(clone.Vertices, m.Vertices)
	copy(clone.Faces, m.Faces)
	return clone
}

// faceKey creates a canonical key for a face by sorting vertex indices.
// Two faces with the same vertices (in any order) will have the same key.
func faceKey(v0, v1, v2 int) [3]int {
	if v0 > v1 {
		v0, v1 = v1, v0
	}
	if v1 > v2 {
		v1, v2 = v2, v1
	}
	if v0 > v1 {
		v0, v1 = v1, v0
	}
	return [3]int{v0, v1, v2}
}

// DeduplicateFaces keeps only the first of any faces sharing the same three
// vertices, regardless of winding. Returns the number of faces removed.
func (m *Mesh) DeduplicateFaces() int {
	seen := make(map[[3]int]struct{}, len(m.Faces))
	kept := m.Faces[:0]
	for _, f := range m.Faces {
		key := faceKey(f.V[0], f.V[1], f.V[2])
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, f)
	}

	removed := len(m.Faces) - len(kept)
	m.Faces = kept
	return removed
}

// RemoveDegenerateFaces drops faces that repeat a vertex index or whose area
// is below 1e-10. Returns the number of faces removed.
func (m *Mesh) RemoveDegenerateFaces() int {
	const minArea = 1e-10
	kept := m.Faces[:0]
	for _, f := range m.Faces {
		if f.V[0] == f.V[1] || f.V[1] == f.V[2] || f.V[0] == f.V[2] {
			continue
		}
		if m.faceNormal(f).Len()*0.5 <= minArea {
			continue
		}
		kept = append(kept, f)
	}

	removed := len(m.Faces) - len(kept)
	m.Faces = kept
	return removed
}

// RemoveUnreferencedVertices compacts the vertex array to the vertices used
// by some face and remaps face indices accordingly.
func (m *Mesh) RemoveUnreferencedVertices() {
	if len(m.Faces) == 0 || len(m.Vertices) == 0 {
		return
	}

	referenced := make([]bool, len(m.Vertices))
	for _, f := range m.Faces {
		for _, vi := range f.V {
			referenced[vi] = true
		}
	}

	newIndex := make([]int, len(m.Vertices))
	newVertices := make([]MeshVertex, 0, len(m.Vertices))
	for i, v := range m.Vertices {
		if referenced[i] {
			newIndex[i] = len(newVertices)
			newVertices = append(newVertices, v)
		}
	}

	for i := range m.Faces {
		for k := range 3 {
			m.Faces[i].V[k] = newIndex[m.Faces[i].V[k]]
		}
	}
	m.Vertices = newVertices
}

// CleanMesh removes degenerate and duplicate faces, then unreferenced
// vertices. Returns the number of faces removed.
func (m *Mesh) CleanMesh() int {
	removed := m.RemoveDegenerateFaces()
	removed += m.DeduplicateFaces()
	m.RemoveUnreferencedVertices()
	return removed
}
