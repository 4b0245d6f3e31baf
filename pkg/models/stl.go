package models

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/taigrr/loopsub/pkg/math3d"
)

// STLLoader loads STL (stereolithography) files in both ASCII and binary formats.
// STL stores every triangle with its own copies of the corners, so the loader
// always welds coincident corners into shared vertices; without that no
// directed-edge surface could be built from the result.
type STLLoader struct {
	CleanMesh      bool    // If true, clean mesh after loading (remove degenerate/duplicate faces)
	MergeTolerance float64 // Tolerance for vertex merging (0 = exact match)
}

// quantizedKey is a hashable position snapped to a grid of MergeTolerance.
type quantizedKey struct {
	x, y, z int64
}

func quantizePosition(pos math3d.Vec3, tolerance float64) quantizedKey {
	if tolerance <= 0 {
		tolerance = 1e-12
	}
	scale := 1.0 / tolerance
	return quantizedKey{
		x: int64(math.Round(pos.X * scale)),
		y: int64(math.Round(pos.Y * scale)),
		z: int64(math.Round(pos.Z * scale)),
	}
}

// NewSTLLoader creates a new STL loader with default settings.
func NewSTLLoader() *STLLoader {
	return &STLLoader{CleanMesh: true}
}

// LoadFile loads an STL file from disk.
func (l *STLLoader) LoadFile(path string) (*Mesh, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read STL file: %w", err)
	}
	return l.LoadBytes(data, path)
}

// Load parses STL from a reader.
func (l *STLLoader) Load(r io.Reader, name string) (*Mesh, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read STL data: %w", err)
	}
	return l.LoadBytes(data, name)
}

// LoadBytes parses STL from a byte slice.
func (l *STLLoader) LoadBytes(data []byte, name string) (*Mesh, error) {
	b := &stlBuilder{
		mesh:      NewMesh(name),
		vertexMap: make(map[quantizedKey]int),
		tolerance: l.MergeTolerance,
	}

	var err error
	if isBinarySTL(data) {
		err = b.parseBinary(data)
	} else {
		err = b.parseASCII(data)
	}
	if err != nil {
		return nil, err
	}

	mesh := b.mesh
	if l.CleanMesh {
		mesh.CleanMesh()
	}
	// Facet normals are per triangle; vertices need the smoothed average.
	mesh.CalculateSmoothNormals()
	mesh.CalculateBounds()
	return mesh, nil
}

// isBinarySTL detects binary STL. A "solid" prefix normally means ASCII, but
// some exporters write it into the binary header too, so the triangle count
// is checked against the file size.
func isBinarySTL(data []byte) bool {
	if len(data) < 84 {
		return false
	}

	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if bytes.HasPrefix(trimmed, []byte("solid")) {
		triCount := binary.LittleEndian.Uint32(data[80:84])
		return uint64(len(data)) == 84+uint64(triCount)*50
	}
	return true
}

// stlBuilder accumulates welded vertices and faces while parsing.
type stlBuilder struct {
	mesh      *Mesh
	vertexMap map[quantizedKey]int
	tolerance float64
}

func (b *stlBuilder) vertex(pos math3d.Vec3) int {
	key := quantizePosition(pos, b.tolerance)
	if idx, ok := b.vertexMap[key]; ok {
		return idx
	}
	idx := len(b.mesh.Vertices)
	b.mesh.Vertices = append(b.mesh.Vertices, MeshVertex{Position: pos})
	b.vertexMap[key] = idx
	return idx
}

func (b *stlBuilder) parseBinary(data []byte) error {
	triCount := binary.LittleEndian.Uint32(data[80:84])
	expectedSize := 84 + uint64(triCount)*50
	if uint64(len(data)) < expectedSize {
		return fmt.Errorf("binary STL truncated: expected %d bytes, got %d", expectedSize, len(data))
	}

	offset := 84
	for range triCount {
		// Skip the 12-byte facet normal.
		offset += 12

		var face Face
		for v := range 3 {
			pos := math3d.V3(
				float64(readFloat32LE(data[offset:])),
				float64(readFloat32LE(data[offset+4:])),
				float64(readFloat32LE(data[offset+8:])),
			)
			offset += 12
			face.V[v] = b.vertex(pos)
		}
		// Skip 2-byte attribute byte count
		offset += 2

		b.mesh.Faces = append(b.mesh.Faces, face)
	}
	return nil
}

func readFloat32LE(data []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(data))
}

func (b *stlBuilder) parseASCII(data []byte) error {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNum := 0
	var faceVerts []int
	inLoop := false

	for scanner.Scan() {
		lineNum++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch strings.ToLower(fields[0]) {
		case "solid":
			if len(fields) > 1 {
				b.mesh.Name = fields[1]
			}

		case "outer":
			inLoop = true
			faceVerts = faceVerts[:0]

		case "vertex":
			if !inLoop {
				return fmt.Errorf("line %d: vertex outside facet/loop", lineNum)
			}
			if len(fields) < 4 {
				return fmt.Errorf("line %d: vertex needs x y z", lineNum)
			}
			var xyz [3]float64
			for i := range 3 {
				f, err := strconv.ParseFloat(fields[i+1], 64)
				if err != nil {
					return fmt.Errorf("line %d: invalid vertex coordinate: %w", lineNum, err)
				}
				xyz[i] = f
			}
			faceVerts = append(faceVerts, b.vertex(math3d.V3(xyz[0], xyz[1], xyz[2])))

		case "endloop":
			inLoop = false
			if len(faceVerts) != 3 {
				return fmt.Errorf("line %d: facet has %d vertices, want 3", lineNum, len(faceVerts))
			}
			b.mesh.Faces = append(b.mesh.Faces, Face{V: [3]int{faceVerts[0], faceVerts[1], faceVerts[2]}})

		default:
			// facet normal, endfacet, endsolid: nothing to record
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading ASCII STL: %w", err)
	}
	return nil
}

// WriteSTL writes the mesh as binary STL with per-facet normals.
func WriteSTL(w io.Writer, m *Mesh) error {
	bw := bufio.NewWriter(w)

	header := make([]byte, 80)
	copy(header, "loopsub "+m.Name)
	if _, err := bw.Write(header); err != nil {
		return fmt.Errorf("write STL header: %w", err)
	}

	var rec [50]byte
	binary.LittleEndian.PutUint32(rec[:4], uint32(len(m.Faces)))
	if _, err := bw.Write(rec[:4]); err != nil {
		return fmt.Errorf("write STL triangle count: %w", err)
	}

	for _, f := range m.Faces {
		n := m.faceNormal(f).Normalize()
		putVec3(rec[0:], n)
		for k := range 3 {
			putVec3(rec[12+12*k:], m.Vertices[f.V[k]].Position)
		}
		rec[48], rec[49] = 0, 0
		if _, err := bw.Write(rec[:]); err != nil {
			return fmt.Errorf("write STL facet: %w", err)
		}
	}
	return bw.Flush()
}

func putVec3(dst []byte, v math3d.Vec3) {
	for i, c := range v.Float32() {
		binary.LittleEndian.PutUint32(dst[4*i:], math.Float32bits(c))
	}
}

// LoadSTL is a convenience function to load an STL file with default settings.
func LoadSTL(path string) (*Mesh, error) {
	return NewSTLLoader().LoadFile(path)
}
