package loop

import (
	"context"
	"fmt"
	"time"

	"fortio.org/log"

	"github.com/taigrr/loopsub/pkg/diredge"
)

// Stats describes the surface after one level of a multi-level run.
type Stats struct {
	Level    int
	Vertices int
	Faces    int
	Edges    int
	Duration time.Duration
}

// ProgressFunc receives Stats after every completed level.
type ProgressFunc func(Stats)

// SubdivideLevels runs levels passes of Subdivide on s. The context is
// checked between passes; a pass that has started always completes. On
// error s holds the result of the last completed level.
func SubdivideLevels(ctx context.Context, s *diredge.Surface, levels int, progress ProgressFunc) error {
	if levels < 0 {
		return fmt.Errorf("invalid level count %d", levels)
	}
	for level := 1; level <= levels; level++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("level %d: %w", level, err)
		}
		start := time.Now()
		if err := Subdivide(s); err != nil {
			return fmt.Errorf("level %d: %w", level, err)
		}
		st := Stats{
			Level:    level,
			Vertices: s.VertexCount(),
			Faces:    s.FaceCount(),
			Edges:    s.EdgeCount(),
			Duration: time.Since(start),
		}
		log.S(log.Debug, "subdivided",
			log.Any("level", st.Level),
			log.Any("vertices", st.Vertices),
			log.Any("faces", st.Faces),
			log.Str("took", st.Duration.String()))
		if progress != nil {
			progress(st)
		}
	}
	return nil
}
