package models

import (
	"bytes"
	"strings"
	"testing"

	"github.com/taigrr/loopsub/pkg/math3d"
)

func TestLoadSimpleOBJ(t *testing.T) {
	objData := `
# Simple triangle
v 0 0 0
v 1 0 0
v 0.5 1 0
f 1 2 3
`
	mesh, err := NewOBJLoader().Load(strings.NewReader(objData), "triangle")
	if err != nil {
		t.Fatalf("failed to load OBJ: %v", err)
	}
	if mesh.VertexCount() != 3 {
		t.Errorf("expected 3 vertices, got %d", mesh.VertexCount())
	}
	if mesh.TriangleCount() != 1 {
		t.Errorf("expected 1 triangle, got %d", mesh.TriangleCount())
	}
	if !mesh.HasNormals() {
		t.Error("expected computed normals")
	}
}

func TestLoadQuadOBJFanTriangulates(t *testing.T) {
	objData := `
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
f 1 2 3 4
`
	mesh, err := NewOBJLoader().Load(strings.NewReader(objData), "quad")
	if err != nil {
		t.Fatalf("failed to load OBJ: %v", err)
	}
	want := []Face{{V: [3]int{0, 1, 2}}, {V: [3]int{0, 2, 3}}}
	if len(mesh.Faces) != len(want) {
		t.Fatalf("got %d faces, want %d", len(mesh.Faces), len(want))
	}
	for i := range want {
		if mesh.Faces[i] != want[i] {
			t.Errorf("face %d = %v, want %v", i, mesh.Faces[i].V, want[i].V)
		}
	}
}

func TestLoadOBJNormalsShareVertex(t *testing.T) {
	// Same position with two different normals stays one vertex
	objData := `
v 0 0 0
v 1 0 0
v 0 1 0
v 0 0 1
vn 0 0 -1
vn 0 -1 0
f 1//1 3//1 2//1
f 1//2 2//2 4//2
`
	mesh, err := NewOBJLoader().Load(strings.NewReader(objData), "normals")
	if err != nil {
		t.Fatalf("failed to load OBJ: %v", err)
	}
	if mesh.VertexCount() != 4 {
		t.Errorf("VertexCount = %d, want 4", mesh.VertexCount())
	}
	if mesh.Vertices[0].Normal != math3d.V3(0, 0, -1) {
		t.Errorf("vertex 0 normal = %v, want first referenced normal", mesh.Vertices[0].Normal)
	}
}

func TestNegativeIndices(t *testing.T) {
	objData := `
v 0 0 0
v 1 0 0
v 0 1 0
f -3 -2 -1
`
	mesh, err := NewOBJLoader().Load(strings.NewReader(objData), "negative")
	if err != nil {
		t.Fatalf("failed to load OBJ: %v", err)
	}
	if mesh.Faces[0].V != [3]int{0, 1, 2} {
		t.Errorf("face = %v, want [0 1 2]", mesh.Faces[0].V)
	}
}

func TestLoadOBJErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"short vertex", "v 1 2\n"},
		{"bad coordinate", "v 1 x 2\n"},
		{"short face", "v 0 0 0\nv 1 0 0\nf 1 2\n"},
		{"index out of range", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 9\n"},
		{"bad index", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 three\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewOBJLoader().Load(strings.NewReader(tt.data), tt.name); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestWriteOBJRoundTrip(t *testing.T) {
	src := Icosahedron()
	var buf bytes.Buffer
	if err := WriteOBJ(&buf, src); err != nil {
		t.Fatalf("WriteOBJ: %v", err)
	}

	mesh, err := NewOBJLoader().Load(&buf, "ico")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if mesh.VertexCount() != src.VertexCount() || mesh.TriangleCount() != src.TriangleCount() {
		t.Fatalf("reloaded %d/%d, want %d/%d",
			mesh.VertexCount(), mesh.TriangleCount(), src.VertexCount(), src.TriangleCount())
	}
	for i := range src.Faces {
		if mesh.Faces[i] != src.Faces[i] {
			t.Errorf("face %d = %v, want %v", i, mesh.Faces[i].V, src.Faces[i].V)
		}
	}
	for i := range src.Vertices {
		if mesh.Vertices[i].Position != src.Vertices[i].Position {
			t.Errorf("vertex %d = %v, want %v", i, mesh.Vertices[i].Position, src.Vertices[i].Position)
		}
	}
}
