// Package loop implements one level of Loop subdivision on a closed,
// oriented directed-edge surface.
//
// A pass smooths the original vertices with Warren's weights, inserts one
// vertex per edge with the 3/8, 1/8 stencil, splits every triangle into four
// and rebuilds the twin pairing. All reads see the pre-pass geometry; the
// surface is only written once the whole refined surface has been computed.
package loop

import (
	"fmt"

	"fortio.org/log"

	"github.com/taigrr/loopsub/pkg/diredge"
)

// Subdivide refines s in place by one level. The surface is validated first;
// if it is not a closed 2-manifold the error wraps diredge.ErrInvalidMesh and
// s is left unchanged.
//
// For V vertices, E directed edges and F faces the result has V + E/2
// vertices, 4F faces and 4E directed edges. Original vertex normals are kept;
// edge vertex normals are interpolated and renormalized.
func Subdivide(s *diredge.Surface) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("subdivide: %w", err)
	}
	smoothed, err := smoothVertices(s)
	if err != nil {
		return fmt.Errorf("subdivide: %w", err)
	}
	ev := insertEdgeVertices(s)
	conn, err := rebuildConnectivity(s, ev)
	if err != nil {
		return fmt.Errorf("subdivide: %w", err)
	}
	twin := rebuildTwins(s.Twin, conn)

	oldV, oldF := s.VertexCount(), s.FaceCount()
	s.Positions = append(smoothed, ev.positions...)
	s.Normals = append(s.Normals[:oldV:oldV], ev.normals...)
	s.EdgeTarget = conn.edgeTarget
	s.Twin = twin
	s.FirstOutgoing = conn.firstOutgoing
	log.Debugf("subdivide: vertices %d -> %d, faces %d -> %d", oldV, s.VertexCount(), oldF, s.FaceCount())
	return nil
}

// OneRing returns the neighbours of vertex v in walk order.
// See diredge.Surface.OneRing.
func OneRing(s *diredge.Surface, v int) ([]int, error) {
	return s.OneRing(v)
}
