package models

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/taigrr/loopsub/pkg/math3d"
)

const asciiSquare = `solid square
  facet normal 0 0 1
    outer loop
      vertex 0 0 0
      vertex 1 0 0
      vertex 1 1 0
    endloop
  endfacet
  facet normal 0 0 1
    outer loop
      vertex 0 0 0
      vertex 1 1 0
      vertex 0 1 0
    endloop
  endfacet
endsolid square`

func TestSTLLoaderASCII(t *testing.T) {
	mesh, err := NewSTLLoader().Load(bytes.NewReader([]byte(asciiSquare)), "test.stl")
	if err != nil {
		t.Fatalf("Failed to load ASCII STL: %v", err)
	}
	if mesh.Name != "square" {
		t.Errorf("Name = %q, want %q", mesh.Name, "square")
	}
	if mesh.TriangleCount() != 2 {
		t.Errorf("TriangleCount = %d, want 2", mesh.TriangleCount())
	}
	// Shared corners are welded
	if mesh.VertexCount() != 4 {
		t.Errorf("VertexCount = %d, want 4 (welded)", mesh.VertexCount())
	}
	for i, v := range mesh.Vertices {
		if math.Abs(v.Normal.Z-1) > 1e-9 {
			t.Errorf("vertex %d normal = %v, want +Z", i, v.Normal)
		}
	}
}

func TestSTLLoaderASCIIErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"vertex outside loop", "solid x\nvertex 0 0 0\nendsolid x"},
		{"short vertex", "solid x\nfacet normal 0 0 1\nouter loop\nvertex 0 0\nendloop\nendfacet\nendsolid"},
		{"bad number", "solid x\nfacet normal 0 0 1\nouter loop\nvertex 0 zero 0\nendloop\nendfacet\nendsolid"},
		{"quad facet", "solid x\nouter loop\nvertex 0 0 0\nvertex 1 0 0\nvertex 1 1 0\nvertex 0 1 0\nendloop\nendsolid"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewSTLLoader().LoadBytes([]byte(tt.data), "bad.stl"); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func writeBinarySTL(tris [][3]math3d.Vec3) []byte {
	var buf bytes.Buffer
	header := make([]byte, 80)
	copy(header, "Binary STL test")
	buf.Write(header)
	binary.Write(&buf, binary.LittleEndian, uint32(len(tris)))
	for _, tri := range tris {
		binary.Write(&buf, binary.LittleEndian, [3]float32{0, 0, 1})
		for _, v := range tri {
			binary.Write(&buf, binary.LittleEndian, v.Float32())
		}
		binary.Write(&buf, binary.LittleEndian, uint16(0))
	}
	return buf.Bytes()
}

func TestSTLLoaderBinary(t *testing.T) {
	data := writeBinarySTL([][3]math3d.Vec3{
		{math3d.V3(0, 0, 0), math3d.V3(1, 0, 0), math3d.V3(0, 1, 0)},
	})
	mesh, err := NewSTLLoader().LoadBytes(data, "tri.stl")
	if err != nil {
		t.Fatalf("Failed to load binary STL: %v", err)
	}
	if mesh.TriangleCount() != 1 || mesh.VertexCount() != 3 {
		t.Errorf("got %d triangles / %d vertices, want 1 / 3", mesh.TriangleCount(), mesh.VertexCount())
	}
	// Winding is preserved as written
	if mesh.Faces[0].V != [3]int{0, 1, 2} {
		t.Errorf("face = %v, want [0 1 2]", mesh.Faces[0].V)
	}
}

func TestSTLLoaderBinaryTruncated(t *testing.T) {
	data := writeBinarySTL([][3]math3d.Vec3{
		{math3d.V3(0, 0, 0), math3d.V3(1, 0, 0), math3d.V3(0, 1, 0)},
	})
	// Claim two triangles
	binary.LittleEndian.PutUint32(data[80:84], 2)
	if _, err := NewSTLLoader().LoadBytes(data, "short.stl"); err == nil {
		t.Error("expected truncation error")
	}
}

func TestSTLDetection(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want bool
	}{
		{"ascii", []byte(asciiSquare), false},
		{"too short", []byte("solid"), false},
		{"binary", writeBinarySTL([][3]math3d.Vec3{{}}), true},
		{"binary with solid header", func() []byte {
			b := writeBinarySTL([][3]math3d.Vec3{{}})
			copy(b, "solid lies")
			return b
		}(), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isBinarySTL(tt.data); got != tt.want {
				t.Errorf("isBinarySTL = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSTLMergeTolerance(t *testing.T) {
	tris := [][3]math3d.Vec3{
		{math3d.V3(0, 0, 0), math3d.V3(1, 0, 0), math3d.V3(0, 1, 0)},
		{math3d.V3(1.0000001, 0, 0), math3d.V3(1, 1, 0), math3d.V3(0, 1, 0)},
	}
	data := writeBinarySTL(tris)

	exact := NewSTLLoader()
	mesh, err := exact.LoadBytes(data, "exact")
	if err != nil {
		t.Fatal(err)
	}
	if mesh.VertexCount() != 5 {
		t.Errorf("exact: VertexCount = %d, want 5", mesh.VertexCount())
	}

	loose := NewSTLLoader()
	loose.MergeTolerance = 1e-4
	mesh, err = loose.LoadBytes(data, "loose")
	if err != nil {
		t.Fatal(err)
	}
	if mesh.VertexCount() != 4 {
		t.Errorf("loose: VertexCount = %d, want 4", mesh.VertexCount())
	}
}

func TestWriteSTLRoundTrip(t *testing.T) {
	src := Octahedron()
	var buf bytes.Buffer
	if err := WriteSTL(&buf, src); err != nil {
		t.Fatalf("WriteSTL: %v", err)
	}
	if got, want := buf.Len(), 84+50*src.TriangleCount(); got != want {
		t.Fatalf("size = %d, want %d", got, want)
	}

	mesh, err := NewSTLLoader().LoadBytes(buf.Bytes(), "octa.stl")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if mesh.VertexCount() != 6 || mesh.TriangleCount() != 8 {
		t.Errorf("reloaded %d vertices / %d triangles, want 6 / 8", mesh.VertexCount(), mesh.TriangleCount())
	}
	if mesh.Size() != math3d.V3(2, 2, 2) {
		t.Errorf("Size = %v, want (2,2,2)", mesh.Size())
	}
}
