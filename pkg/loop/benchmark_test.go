package loop

import "testing"

func BenchmarkSubdivide(b *testing.B) {
	base := surface(b, "icosahedron")
	for range 3 {
		if err := Subdivide(base); err != nil {
			b.Fatal(err)
		}
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		s := base.Clone()
		b.StartTimer()
		if err := Subdivide(s); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkWeightConstant(b *testing.B) {
	var sink float64
	for i := 0; i < b.N; i++ {
		sink += WeightConstant(3 + i%8)
	}
	_ = sink
}
