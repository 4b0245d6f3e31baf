package diredge

import "fmt"

// OneRing returns the neighbours of v in walk order: starting at
// FirstOutgoing[v], record the edge target, step to the previous edge of the
// face (which points back at v) and cross to its twin. On a valid surface the
// walk closes after valence steps. A walk that has not closed after
// 3×EdgeCount steps fails with ErrDegenerateValence.
func (s *Surface) OneRing(v int) ([]int, error) {
	return s.AppendOneRing(make([]int, 0, 6), v)
}

// AppendOneRing appends the one-ring of v to dst and returns the extended slice.
func (s *Surface) AppendOneRing(dst []int, v int) ([]int, error) {
	if v < 0 || v >= len(s.FirstOutgoing) {
		return dst, fmt.Errorf("%w: vertex %d outside [0, %d)", ErrInvalidMesh, v, len(s.FirstOutgoing))
	}
	ne := len(s.EdgeTarget)
	limit := 3 * ne
	start := s.FirstOutgoing[v]
	e := start
	for steps := 0; ; steps++ {
		if e < 0 || e >= ne {
			return dst, fmt.Errorf("%w: one-ring of vertex %d reached edge %d", ErrInvalidMesh, v, e)
		}
		if steps >= limit {
			return dst, fmt.Errorf("%w: one-ring of vertex %d did not close after %d steps", ErrDegenerateValence, v, limit)
		}
		dst = append(dst, s.EdgeTarget[e])
		e = s.Twin[Prev(e)]
		if e == start {
			return dst, nil
		}
	}
}

// Valence returns the number of neighbours of v.
func (s *Surface) Valence(v int) (int, error) {
	ring, err := s.OneRing(v)
	if err != nil {
		return 0, err
	}
	return len(ring), nil
}

// ValenceHistogram maps each valence to the number of vertices that have it.
func (s *Surface) ValenceHistogram() (map[int]int, error) {
	hist := make(map[int]int)
	var ring []int
	for v := range s.FirstOutgoing {
		var err error
		ring, err = s.AppendOneRing(ring[:0], v)
		if err != nil {
			return nil, err
		}
		hist[len(ring)]++
	}
	return hist, nil
}
