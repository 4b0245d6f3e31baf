package loop

import (
	"fmt"
	"math"

	"github.com/taigrr/loopsub/pkg/diredge"
	"github.com/taigrr/loopsub/pkg/math3d"
)

// WeightConstant returns Loop's α for a vertex of valence n: 3/16 for n == 3
// and Warren's (1/n)(5/8 - (3/8 + cos(2π/n)/4)²) otherwise.
func WeightConstant(n int) float64 {
	if n == 3 {
		return 3.0 / 16.0
	}
	c := 3.0/8.0 + math.Cos(2*math.Pi/float64(n))/4
	return (5.0/8.0 - c*c) / float64(n)
}

// smoothVertices computes the repositioned original vertices into a new
// buffer. Every read sees the pre-pass positions; s is not modified.
func smoothVertices(s *diredge.Surface) ([]math3d.Vec3, error) {
	out := make([]math3d.Vec3, len(s.Positions))
	var ring []int
	for v, p := range s.Positions {
		var err error
		ring, err = s.AppendOneRing(ring[:0], v)
		if err != nil {
			return nil, fmt.Errorf("smooth vertex %d: %w", v, err)
		}
		n := len(ring)
		alpha := WeightConstant(n)
		var sum math3d.Vec3
		for _, u := range ring {
			sum = sum.Add(s.Positions[u])
		}
		out[v] = p.Scale(1 - float64(n)*alpha).Add(sum.Scale(alpha))
	}
	return out, nil
}
