package loop

import (
	"github.com/taigrr/loopsub/pkg/diredge"
	"github.com/taigrr/loopsub/pkg/math3d"
)

// edgeVertices holds the vertices inserted on the old edges.
type edgeVertices struct {
	positions []math3d.Vec3 // one per undirected edge, in creation order
	normals   []math3d.Vec3
	midpoint  []int // per old directed edge: index of its new vertex in the refined surface
}

// insertEdgeVertices creates one vertex per undirected edge, visiting each
// pair from the side with the lower edge index. New vertices are numbered
// after the existing ones. s is not modified.
func insertEdgeVertices(s *diredge.Surface) edgeVertices {
	nv := len(s.Positions)
	ne := len(s.EdgeTarget)
	ev := edgeVertices{
		positions: make([]math3d.Vec3, 0, ne/2),
		normals:   make([]math3d.Vec3, 0, ne/2),
		midpoint:  make([]int, ne),
	}
	for e := range ne {
		t := s.Twin[e]
		if e > t {
			continue
		}
		v0, v1 := s.EdgeTarget[e], s.EdgeTarget[t]
		v2, v3 := s.EdgeTarget[diredge.Next(e)], s.EdgeTarget[diredge.Next(t)]

		ev.positions = append(ev.positions, edgeMask(s.Positions, v0, v1, v2, v3))
		ev.normals = append(ev.normals, edgeMask(s.Normals, v0, v1, v2, v3).Normalize())

		idx := nv + len(ev.positions) - 1
		ev.midpoint[e] = idx
		ev.midpoint[t] = idx
	}
	return ev
}

// edgeMask applies the 3/8, 3/8, 1/8, 1/8 edge stencil: a and b are the edge
// endpoints, c and d the opposite apexes.
func edgeMask(vals []math3d.Vec3, a, b, c, d int) math3d.Vec3 {
	return vals[a].Add(vals[b]).Scale(3.0 / 8.0).Add(vals[c].Add(vals[d]).Scale(1.0 / 8.0))
}
