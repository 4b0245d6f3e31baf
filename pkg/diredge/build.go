package diredge

import (
	"fmt"

	"github.com/taigrr/loopsub/pkg/math3d"
	"github.com/taigrr/loopsub/pkg/models"
)

// FromMesh builds a directed-edge surface from an indexed triangle mesh.
// The mesh must be closed, manifold and consistently oriented. Normals are
// copied when present and computed as area-weighted vertex normals otherwise.
// The input mesh is not modified.
func FromMesh(m *models.Mesh) (*Surface, error) {
	nv := len(m.Vertices)
	nf := len(m.Faces)
	if nv == 0 || nf == 0 {
		return nil, fmt.Errorf("%w: mesh has %d vertices and %d faces", ErrInvalidMesh, nv, nf)
	}

	src := m
	if !m.HasNormals() {
		src = m.Clone()
		src.CalculateSmoothNormals()
	}

	s := &Surface{
		Positions:     make([]math3d.Vec3, nv),
		Normals:       make([]math3d.Vec3, nv),
		EdgeTarget:    make([]int, 3*nf),
		Twin:          make([]int, 3*nf),
		FirstOutgoing: make([]int, nv),
	}
	for i, v := range src.Vertices {
		s.Positions[i] = v.Position
		s.Normals[i] = v.Normal.Normalize()
	}

	for f, face := range m.Faces {
		a, b, c := face.V[0], face.V[1], face.V[2]
		for _, idx := range face.V {
			if idx < 0 || idx >= nv {
				return nil, fmt.Errorf("%w: face %d references vertex %d of %d", ErrInvalidMesh, f, idx, nv)
			}
		}
		if a == b || b == c || c == a {
			return nil, fmt.Errorf("%w: face %d is degenerate (%d, %d, %d)", ErrInvalidMesh, f, a, b, c)
		}
		copy(s.EdgeTarget[3*f:3*f+3], face.V[:])
	}

	// (source, target) -> edge
	edges := make(map[[2]int]int, 3*nf)
	for e, to := range s.EdgeTarget {
		key := [2]int{s.Source(e), to}
		if other, ok := edges[key]; ok {
			return nil, fmt.Errorf("%w: %d->%d used by faces %d and %d", ErrNonManifoldEdge, key[0], key[1], Face(other), Face(e))
		}
		edges[key] = e
	}
	for e, to := range s.EdgeTarget {
		from := s.Source(e)
		twin, ok := edges[[2]int{to, from}]
		if !ok {
			return nil, fmt.Errorf("%w: %d->%d in face %d has no opposite edge", ErrBoundaryEdge, from, to, Face(e))
		}
		s.Twin[e] = twin
	}

	assigned := make([]bool, nv)
	for e := range s.EdgeTarget {
		if v := s.Source(e); !assigned[v] {
			s.FirstOutgoing[v] = e
			assigned[v] = true
		}
	}
	for v, ok := range assigned {
		if !ok {
			return nil, fmt.Errorf("%w: vertex %d is not used by any face", ErrInvalidMesh, v)
		}
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}
