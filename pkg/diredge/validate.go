package diredge

import "fmt"

// Validate checks the structural invariants a subdivision pass relies on:
// array lengths, index ranges, twin involution with reversed endpoints,
// outgoing edges that actually leave their vertex, and one fan per vertex.
// Any failure wraps ErrInvalidMesh, except a one-ring walk that fails to
// close, which reports ErrDegenerateValence.
func (s *Surface) Validate() error {
	nv := len(s.Positions)
	ne := len(s.EdgeTarget)
	switch {
	case nv == 0 || ne == 0:
		return fmt.Errorf("%w: empty surface (%d vertices, %d edges)", ErrInvalidMesh, nv, ne)
	case ne%3 != 0:
		return fmt.Errorf("%w: edge count %d is not a multiple of 3", ErrInvalidMesh, ne)
	case len(s.Normals) != nv:
		return fmt.Errorf("%w: %d normals for %d vertices", ErrInvalidMesh, len(s.Normals), nv)
	case len(s.FirstOutgoing) != nv:
		return fmt.Errorf("%w: %d outgoing edges for %d vertices", ErrInvalidMesh, len(s.FirstOutgoing), nv)
	case len(s.Twin) != ne:
		return fmt.Errorf("%w: %d twins for %d edges", ErrInvalidMesh, len(s.Twin), ne)
	}

	for e, v := range s.EdgeTarget {
		if v < 0 || v >= nv {
			return fmt.Errorf("%w: edge %d targets vertex %d of %d", ErrInvalidMesh, e, v, nv)
		}
	}
	for f := 0; f < ne/3; f++ {
		a, b, c := s.EdgeTarget[3*f], s.EdgeTarget[3*f+1], s.EdgeTarget[3*f+2]
		if a == b || b == c || c == a {
			return fmt.Errorf("%w: face %d is degenerate (%d, %d, %d)", ErrInvalidMesh, f, a, b, c)
		}
	}

	for e, t := range s.Twin {
		switch {
		case t < 0 || t >= ne:
			return fmt.Errorf("%w: twin of edge %d is %d, outside [0, %d)", ErrInvalidMesh, e, t, ne)
		case t == e:
			return fmt.Errorf("%w: edge %d is its own twin", ErrInvalidMesh, e)
		case s.Twin[t] != e:
			return fmt.Errorf("%w: twin is not an involution at edge %d (%d -> %d)", ErrInvalidMesh, e, t, s.Twin[t])
		case s.EdgeTarget[t] != s.Source(e) || s.Source(t) != s.EdgeTarget[e]:
			return fmt.Errorf("%w: edge %d (%d->%d) and twin %d (%d->%d) are not reversed",
				ErrInvalidMesh, e, s.Source(e), s.EdgeTarget[e], t, s.Source(t), s.EdgeTarget[t])
		}
	}

	outDegree := make([]int, nv)
	for e := range s.EdgeTarget {
		outDegree[s.Source(e)]++
	}
	for v, e := range s.FirstOutgoing {
		if e < 0 || e >= ne {
			return fmt.Errorf("%w: first outgoing edge of vertex %d is %d, outside [0, %d)", ErrInvalidMesh, v, e, ne)
		}
		if s.Source(e) != v {
			return fmt.Errorf("%w: first outgoing edge %d of vertex %d leaves vertex %d", ErrInvalidMesh, e, v, s.Source(e))
		}
	}

	var ring []int
	for v := range nv {
		var err error
		ring, err = s.AppendOneRing(ring[:0], v)
		if err != nil {
			return err
		}
		if len(ring) != outDegree[v] {
			return fmt.Errorf("%w: vertex %d has %d outgoing edges but its one-ring has %d",
				ErrNonManifoldVertex, v, outDegree[v], len(ring))
		}
	}
	return nil
}
