package models

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned for file extensions no reader or writer handles.
var ErrUnsupportedFormat = errors.New("unsupported format")

// Format identifies a mesh file format.
type Format string

const (
	FormatSTL  Format = "stl"
	FormatOBJ  Format = "obj"
	FormatGLB  Format = "glb"
	FormatGLTF Format = "gltf"
)

// FormatFromPath derives the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch Format(ext) {
	case FormatSTL, FormatOBJ, FormatGLB, FormatGLTF:
		return Format(ext), nil
	}
	return "", fmt.Errorf("%w: %q (use .obj, .stl, .glb or .gltf)", ErrUnsupportedFormat, filepath.Ext(path))
}

// LoadOptions controls vertex welding and cleanup for all readers.
type LoadOptions struct {
	MergeTolerance float64 // Positions closer than this are welded (0 = exact)
	Clean          bool    // Remove degenerate and duplicate faces after loading
}

// Load reads a mesh file, picking the reader from the extension.
// Paths starting with BuiltinPrefix name a built-in primitive instead.
func Load(path string, opts LoadOptions) (*Mesh, error) {
	if strings.HasPrefix(path, BuiltinPrefix) {
		return Builtin(path)
	}

	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	var mesh *Mesh
	switch format {
	case FormatSTL:
		l := NewSTLLoader()
		l.MergeTolerance = opts.MergeTolerance
		l.CleanMesh = opts.Clean
		mesh, err = l.LoadFile(path)
	case FormatOBJ:
		mesh, err = NewOBJLoader().LoadFile(path)
	case FormatGLB, FormatGLTF:
		l := NewGLTFLoader()
		l.MergeTolerance = opts.MergeTolerance
		mesh, err = l.LoadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}

	if opts.Clean && format != FormatSTL {
		mesh.CleanMesh()
		mesh.CalculateBounds()
	}
	return mesh, nil
}

// Write encodes the mesh in the given format. glTF output is always binary.
func Write(w io.Writer, format Format, m *Mesh) error {
	switch format {
	case FormatSTL:
		return WriteSTL(w, m)
	case FormatOBJ:
		return WriteOBJ(w, m)
	case FormatGLB, FormatGLTF:
		return WriteGLB(w, m)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// Save writes the mesh to path, picking the writer from the extension.
func Save(path string, m *Mesh) (err error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	if format == FormatGLTF {
		return fmt.Errorf("%w: write .glb instead of .gltf", ErrUnsupportedFormat)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return Write(f, format, m)
}
