package models

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/taigrr/loopsub/pkg/math3d"
)

// OBJLoader loads Wavefront OBJ files. Texture coordinates are ignored and
// polygons are fan-triangulated, so the result is always a triangle mesh with
// one vertex per distinct "v" position.
type OBJLoader struct {
	CalculateNormals bool // If true, calculate normals when the file has none
}

// NewOBJLoader creates a new OBJ loader with default settings.
func NewOBJLoader() *OBJLoader {
	return &OBJLoader{CalculateNormals: true}
}

// LoadFile loads an OBJ file from disk.
func (l *OBJLoader) LoadFile(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open OBJ file: %w", err)
	}
	defer f.Close()

	return l.Load(f, path)
}

// Load parses an OBJ from a reader.
//
// Vertices are keyed by position index only: a corner that references the
// same "v" with different "vn" entries still maps to one mesh vertex, since
// splitting it would open a seam in the surface.
func (l *OBJLoader) Load(r io.Reader, name string) (*Mesh, error) {
	mesh := NewMesh(name)

	var normals []math3d.Vec3
	normalFor := make(map[int]int) // vertex -> first referenced normal index

	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		fields := strings.Fields(line)

		switch fields[0] {
		case "v":
			p, err := parseVec3(fields)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid vertex: %w", lineNum, err)
			}
			mesh.Vertices = append(mesh.Vertices, MeshVertex{Position: p})

		case "vn":
			n, err := parseVec3(fields)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid normal: %w", lineNum, err)
			}
			normals = append(normals, n.Normalize())

		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: face needs at least 3 vertices", lineNum)
			}
			corners := make([]int, 0, len(fields)-1)
			for _, field := range fields[1:] {
				posIdx, normalIdx, err := parseFaceVertex(field)
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNum, err)
				}
				posIdx = resolveIndex(posIdx, len(mesh.Vertices))
				if posIdx < 0 || posIdx >= len(mesh.Vertices) {
					return nil, fmt.Errorf("line %d: position index %d out of range", lineNum, posIdx+1)
				}
				if normalIdx = resolveIndex(normalIdx, len(normals)); normalIdx >= 0 {
					if _, ok := normalFor[posIdx]; !ok {
						normalFor[posIdx] = normalIdx
					}
				}
				corners = append(corners, posIdx)
			}
			for i := 1; i < len(corners)-1; i++ {
				mesh.Faces = append(mesh.Faces, Face{V: [3]int{corners[0], corners[i], corners[i+1]}})
			}

		case "o", "g":
			if len(fields) > 1 {
				mesh.Name = fields[1]
			}

		default:
			// vt, mtllib, usemtl, s and friends carry nothing we keep
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading OBJ: %w", err)
	}

	for vi, ni := range normalFor {
		if ni < len(normals) {
			mesh.Vertices[vi].Normal = normals[ni]
		}
	}

	mesh.CalculateBounds()
	if l.CalculateNormals && !mesh.HasNormals() {
		mesh.CalculateSmoothNormals()
	}
	return mesh, nil
}

func parseVec3(fields []string) (math3d.Vec3, error) {
	if len(fields) < 4 {
		return math3d.Vec3{}, fmt.Errorf("need x y z, got %d values", len(fields)-1)
	}
	var xyz [3]float64
	for i := range 3 {
		f, err := strconv.ParseFloat(fields[i+1], 64)
		if err != nil {
			return math3d.Vec3{}, err
		}
		xyz[i] = f
	}
	return math3d.V3(xyz[0], xyz[1], xyz[2]), nil
}

// parseFaceVertex parses a face vertex in format: v, v/vt, v/vt/vn, or v//vn.
// Returns 1-indexed values (0 means not specified).
func parseFaceVertex(s string) (pos, normal int, err error) {
	parts := strings.Split(s, "/")

	pos, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid vertex index: %s", parts[0])
	}

	if len(parts) > 2 && parts[2] != "" {
		normal, err = strconv.Atoi(parts[2])
		if err != nil {
			return 0, 0, fmt.Errorf("invalid normal index: %s", parts[2])
		}
	}
	return pos, normal, nil
}

// resolveIndex converts OBJ 1-indexed (or negative) index to 0-indexed.
// Returns -1 if index was 0 (not specified).
func resolveIndex(idx, count int) int {
	if idx == 0 {
		return -1
	}
	if idx < 0 {
		return count + idx
	}
	return idx - 1
}

// WriteOBJ writes the mesh as OBJ with positions, normals and v//vn faces.
func WriteOBJ(w io.Writer, m *Mesh) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# loopsub: %d vertices, %d triangles\n", len(m.Vertices), len(m.Faces))
	if m.Name != "" {
		fmt.Fprintf(bw, "o %s\n", m.Name)
	}
	for _, v := range m.Vertices {
		fmt.Fprintf(bw, "v %s %s %s\n", fmtFloat(v.Position.X), fmtFloat(v.Position.Y), fmtFloat(v.Position.Z))
	}
	for _, v := range m.Vertices {
		fmt.Fprintf(bw, "vn %s %s %s\n", fmtFloat(v.Normal.X), fmtFloat(v.Normal.Y), fmtFloat(v.Normal.Z))
	}
	for _, f := range m.Faces {
		a, b, c := f.V[0]+1, f.V[1]+1, f.V[2]+1
		fmt.Fprintf(bw, "f %d//%d %d//%d %d//%d\n", a, a, b, b, c, c)
	}
	return bw.Flush()
}

func fmtFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// LoadOBJ is a convenience function to load an OBJ file with default settings.
func LoadOBJ(path string) (*Mesh, error) {
	return NewOBJLoader().LoadFile(path)
}
