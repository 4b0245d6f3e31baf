package loop

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"testing"

	"github.com/taigrr/loopsub/pkg/diredge"
	"github.com/taigrr/loopsub/pkg/math3d"
	"github.com/taigrr/loopsub/pkg/models"
)

func surface(t testing.TB, name string) *diredge.Surface {
	t.Helper()
	m, err := models.Builtin(name)
	if err != nil {
		t.Fatal(err)
	}
	s, err := diredge.FromMesh(m)
	if err != nil {
		t.Fatalf("FromMesh(%s): %v", name, err)
	}
	return s
}

func TestWeightConstant(t *testing.T) {
	tests := []struct {
		n    int
		want float64
	}{
		{4, 0.12109375},
		{5, 0.08409321892578289},
		{6, 1.0 / 16.0},
		{7, 0.0490249201910889},
		{8, 0.0400678098159403},
		{12, 0.022926686399201476},
	}
	if got := WeightConstant(3); got != 0.1875 {
		t.Errorf("WeightConstant(3) = %v, want exactly 0.1875", got)
	}
	for _, tt := range tests {
		if got := WeightConstant(tt.n); math.Abs(got-tt.want) > 1e-15 {
			t.Errorf("WeightConstant(%d) = %.17g, want %.17g", tt.n, got, tt.want)
		}
	}
}

func TestSplitHalvesTable(t *testing.T) {
	l := layout{faces: 5}
	E := l.oldEdges()
	for f := range l.faces {
		wantSecond := [3]int{E + 3*f, 2*E + 3*f, 3*E + 3*f}
		wantFirst := [3]int{3*E + 3*f + 1, E + 3*f + 1, 2*E + 3*f + 1}
		for k, h := range splitHalves {
			if got := l.slotEdge(f, h.first); got != wantFirst[k] {
				t.Errorf("face %d edge %d: first half %d, want %d", f, k, got, wantFirst[k])
			}
			if got := l.slotEdge(f, h.second); got != wantSecond[k] {
				t.Errorf("face %d edge %d: second half %d, want %d", f, k, got, wantSecond[k])
			}
		}
	}
}

func TestCenterTwinTable(t *testing.T) {
	l := layout{faces: 4}
	E := l.oldEdges()
	for f := range l.faces {
		for k, s := range centerTwin {
			e := l.childEdge(0, f, k)
			var want int
			switch e % 3 {
			case 0:
				want = 3*E + e + 2
			case 1:
				want = E + e + 1
			case 2:
				want = 2*E + e
			}
			if got := l.slotEdge(f, s); got != want {
				t.Errorf("center edge %d pairs with %d, want %d", e, got, want)
			}
		}
	}
}

// TestChildFaceEndpoints checks the tables against each other: each child
// edge's endpoints follow from childFaces, since edge (b, k) runs from the
// target of (b, k-1) to the target of (b, k).
func TestChildFaceEndpoints(t *testing.T) {
	target := func(s slot) vref { return childFaces[s.block][s.local] }
	source := func(s slot) vref { return childFaces[s.block][(s.local+2)%3] }

	for k, h := range splitHalves {
		// old edge 3f+k runs fv_{k-1} -> fv_k
		if got, want := source(h.first), corner((k+2)%3); got != want {
			t.Errorf("edge %d first half starts at %+v, want %+v", k, got, want)
		}
		if got, want := target(h.first), mid(k); got != want {
			t.Errorf("edge %d first half ends at %+v, want %+v", k, got, want)
		}
		if got, want := source(h.second), mid(k); got != want {
			t.Errorf("edge %d second half starts at %+v, want %+v", k, got, want)
		}
		if got, want := target(h.second), corner(k); got != want {
			t.Errorf("edge %d second half ends at %+v, want %+v", k, got, want)
		}
	}

	for k, s := range centerTwin {
		c := slot{0, k}
		if source(c) != target(s) || target(c) != source(s) {
			t.Errorf("center edge %d (%+v->%+v) and %+v (%+v->%+v) are not reversed",
				k, source(c), target(c), s, source(s), target(s))
		}
	}

	for k, local := range midpointOutgoing {
		if got := source(slot{0, local}); got != mid(k) {
			t.Errorf("midpointOutgoing[%d] leaves %+v, want %+v", k, got, mid(k))
		}
	}
}

func TestSubdivideCounts(t *testing.T) {
	for _, name := range models.BuiltinNames() {
		t.Run(name, func(t *testing.T) {
			s := surface(t, name)
			for level := 1; level <= 3; level++ {
				v, e, f := s.VertexCount(), s.EdgeCount(), s.FaceCount()
				if err := Subdivide(s); err != nil {
					t.Fatalf("level %d: %v", level, err)
				}
				if s.VertexCount() != v+e/2 {
					t.Errorf("level %d: V = %d, want %d", level, s.VertexCount(), v+e/2)
				}
				if s.FaceCount() != 4*f {
					t.Errorf("level %d: F = %d, want %d", level, s.FaceCount(), 4*f)
				}
				if s.EdgeCount() != 12*f {
					t.Errorf("level %d: E = %d, want %d", level, s.EdgeCount(), 12*f)
				}
				if chi := s.EulerCharacteristic(); chi != 2 {
					t.Errorf("level %d: Euler characteristic %d, want 2", level, chi)
				}
				for e, o := range s.Twin {
					if s.Twin[o] != e {
						t.Fatalf("level %d: twin[twin[%d]] = %d", level, e, s.Twin[o])
					}
				}
				if err := s.Validate(); err != nil {
					t.Fatalf("level %d: Validate: %v", level, err)
				}
			}
		})
	}
}

func TestSubdivideTetrahedron(t *testing.T) {
	s := surface(t, "tetrahedron")
	if err := Subdivide(s); err != nil {
		t.Fatal(err)
	}
	if s.VertexCount() != 10 || s.FaceCount() != 16 || s.EdgeCount() != 48 {
		t.Fatalf("V=%d F=%d E=%d, want V=10 F=16 E=48 (24 undirected)",
			s.VertexCount(), s.FaceCount(), s.EdgeCount())
	}
	for v := range s.VertexCount() {
		ring, err := OneRing(s, v)
		if err != nil {
			t.Fatal(err)
		}
		if out := s.EdgeTarget[s.FirstOutgoing[v]]; !slices.Contains(ring, out) {
			t.Errorf("vertex %d: first outgoing target %d not in one-ring %v", v, out, ring)
		}
		want := 6
		if v < 4 {
			want = 3
		}
		if len(ring) != want {
			t.Errorf("vertex %d: valence %d, want %d", v, len(ring), want)
		}
	}
}

func TestEdgeVertexStencil(t *testing.T) {
	// The tetrahedron is centered, so the two apexes of an edge sum to minus
	// its endpoints and the stencil reduces to (a+b)/4.
	s := surface(t, "tetrahedron")
	ev := insertEdgeVertices(s)
	if len(ev.positions) != 6 {
		t.Fatalf("inserted %d vertices, want 6", len(ev.positions))
	}
	for e := range s.EdgeTarget {
		if ev.midpoint[e] != ev.midpoint[s.Twin[e]] {
			t.Errorf("edge %d and its twin map to %d and %d", e, ev.midpoint[e], ev.midpoint[s.Twin[e]])
		}
		a, b := s.Positions[s.Source(e)], s.Positions[s.EdgeTarget[e]]
		want := a.Add(b).Scale(0.25)
		if got := ev.positions[ev.midpoint[e]-4]; got.Distance(want) > 1e-12 {
			t.Errorf("edge %d vertex at %v, want %v", e, got, want)
		}
	}
}

func TestEdgeVertexNormalsUnit(t *testing.T) {
	for _, name := range models.BuiltinNames() {
		s := surface(t, name)
		for range 2 {
			oldV := s.VertexCount()
			if err := Subdivide(s); err != nil {
				t.Fatal(err)
			}
			for v := oldV; v < s.VertexCount(); v++ {
				if l := s.Normals[v].Len(); math.Abs(l-1) > 1e-5 {
					t.Errorf("%s: normal of vertex %d has length %v", name, v, l)
				}
			}
		}
	}
}

func TestSubdivideIcosahedron(t *testing.T) {
	s := surface(t, "icosahedron")
	orig := s.Clone()
	if err := Subdivide(s); err != nil {
		t.Fatal(err)
	}
	if s.VertexCount() != 42 || s.FaceCount() != 80 {
		t.Fatalf("V=%d F=%d, want V=42 F=80", s.VertexCount(), s.FaceCount())
	}

	alpha := WeightConstant(5)
	for v := range orig.VertexCount() {
		ring, err := orig.OneRing(v)
		if err != nil {
			t.Fatal(err)
		}
		var sum math3d.Vec3
		for _, u := range ring {
			sum = sum.Add(orig.Positions[u])
		}
		want := orig.Positions[v].Scale(1 - 5*alpha).Add(sum.Scale(alpha))
		if s.Positions[v].Distance(want) > 1e-12 {
			t.Errorf("vertex %d at %v, want %v", v, s.Positions[v], want)
		}
		if s.Normals[v] != orig.Normals[v] {
			t.Errorf("vertex %d normal changed from %v to %v", v, orig.Normals[v], s.Normals[v])
		}
	}

	// All original vertices stay on a common sphere, as do all edge vertices.
	r0 := s.Positions[0].Len()
	for v := 1; v < 12; v++ {
		if math.Abs(s.Positions[v].Len()-r0) > 1e-12 {
			t.Errorf("vertex %d radius %v, want %v", v, s.Positions[v].Len(), r0)
		}
	}
	r1 := s.Positions[12].Len()
	for v := 13; v < 42; v++ {
		if math.Abs(s.Positions[v].Len()-r1) > 1e-12 {
			t.Errorf("edge vertex %d radius %v, want %v", v, s.Positions[v].Len(), r1)
		}
	}
}

func TestSubdivideDeterministic(t *testing.T) {
	a := surface(t, "cube")
	b := surface(t, "cube")
	for range 2 {
		if err := Subdivide(a); err != nil {
			t.Fatal(err)
		}
		if err := Subdivide(b); err != nil {
			t.Fatal(err)
		}
	}
	if !a.Equal(b) {
		t.Error("two runs on identical input differ")
	}
}

func TestSubdivideInvalidLeavesSurface(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *diredge.Surface)
		want   error
	}{
		{"broken twin", func(s *diredge.Surface) { s.Twin[0] = s.Twin[1] }, diredge.ErrInvalidMesh},
		{"self twin", func(s *diredge.Surface) { s.Twin[3] = 3 }, diredge.ErrInvalidMesh},
		{"bad outgoing", func(s *diredge.Surface) { s.FirstOutgoing[0] = s.FirstOutgoing[1] }, diredge.ErrInvalidMesh},
		{"empty", func(s *diredge.Surface) { *s = diredge.Surface{} }, diredge.ErrInvalidMesh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := surface(t, "octahedron")
			tt.mutate(s)
			before := s.Clone()
			err := Subdivide(s)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Subdivide error = %v, want %v", err, tt.want)
			}
			if !s.Equal(before) {
				t.Error("failed Subdivide modified the surface")
			}
		})
	}
}

func TestSubdivideLevels(t *testing.T) {
	s := surface(t, "tetrahedron")
	var got []Stats
	err := SubdivideLevels(context.Background(), s, 3, func(st Stats) { got = append(got, st) })
	if err != nil {
		t.Fatal(err)
	}
	want := []struct{ v, f int }{{10, 16}, {34, 64}, {130, 256}}
	if len(got) != len(want) {
		t.Fatalf("progress called %d times, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].Level != i+1 || got[i].Vertices != w.v || got[i].Faces != w.f || got[i].Edges != 3*w.f {
			t.Errorf("level %d stats %+v, want V=%d F=%d", i+1, got[i], w.v, w.f)
		}
	}
}

func TestSubdivideLevelsErrors(t *testing.T) {
	t.Run("negative", func(t *testing.T) {
		s := surface(t, "tetrahedron")
		if err := SubdivideLevels(context.Background(), s, -1, nil); err == nil {
			t.Error("expected error for negative level count")
		}
	})
	t.Run("canceled", func(t *testing.T) {
		s := surface(t, "tetrahedron")
		before := s.Clone()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := SubdivideLevels(ctx, s, 2, nil)
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("error = %v, want context.Canceled", err)
		}
		if !s.Equal(before) {
			t.Error("canceled run modified the surface")
		}
	})
	t.Run("zero levels", func(t *testing.T) {
		s := surface(t, "tetrahedron")
		before := s.Clone()
		if err := SubdivideLevels(context.Background(), s, 0, nil); err != nil {
			t.Fatal(err)
		}
		if !s.Equal(before) {
			t.Error("zero levels modified the surface")
		}
	})
}

func ExampleOneRing() {
	s, err := diredge.FromMesh(models.Tetrahedron())
	if err != nil {
		fmt.Println(err)
		return
	}
	ring, err := OneRing(s, 0)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(ring)
	// Output: [1 2 3]
}
