package models

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/taigrr/loopsub/pkg/math3d"
)

// GLTFLoader loads GLTF/GLB files into a single welded Mesh.
//
// glTF exporters split vertices along UV and hard-normal seams. Weld merges
// coincident positions back together so the surface is closed again; the
// normals of merged vertices are averaged.
type GLTFLoader struct {
	Weld           bool
	MergeTolerance float64
}

// NewGLTFLoader creates a new GLTF loader with default options.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{Weld: true}
}

// LoadFile loads a GLTF or GLB file from disk.
func (l *GLTFLoader) LoadFile(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}
	return l.fromDocument(doc, filepath.Base(path))
}

// Load decodes a self-contained GLB or glTF stream.
func (l *GLTFLoader) Load(r io.Reader, name string) (*Mesh, error) {
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(r).Decode(doc); err != nil {
		return nil, fmt.Errorf("decode gltf: %w", err)
	}
	return l.fromDocument(doc, name)
}

func (l *GLTFLoader) fromDocument(doc *gltf.Document, name string) (*Mesh, error) {
	b := &gltfBuilder{
		doc:       doc,
		mesh:      NewMesh(name),
		weld:      l.Weld,
		tolerance: l.MergeTolerance,
		welded:    make(map[quantizedKey]int),
	}

	if len(doc.Scenes) > 0 {
		sceneIdx := 0
		if doc.Scene != nil {
			sceneIdx = int(*doc.Scene)
		}
		for _, nodeIdx := range doc.Scenes[sceneIdx].Nodes {
			if err := b.processNode(int(nodeIdx), math3d.Identity()); err != nil {
				return nil, err
			}
		}
	} else {
		for i := range doc.Meshes {
			if err := b.processMesh(doc.Meshes[i], math3d.Identity()); err != nil {
				return nil, err
			}
		}
	}

	mesh := b.mesh
	if b.sawNormals {
		for i := range mesh.Vertices {
			mesh.Vertices[i].Normal = mesh.Vertices[i].Normal.Normalize()
		}
	} else {
		mesh.CalculateSmoothNormals()
	}
	mesh.CalculateBounds()
	return mesh, nil
}

type gltfBuilder struct {
	doc        *gltf.Document
	mesh       *Mesh
	weld       bool
	tolerance  float64
	welded     map[quantizedKey]int
	sawNormals bool
}

// processNode walks the node hierarchy, accumulating transforms.
func (b *gltfBuilder) processNode(nodeIdx int, parent math3d.Mat4) error {
	node := b.doc.Nodes[nodeIdx]

	var local math3d.Mat4
	if m := node.Matrix; m != [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1} && m != [16]float64{} {
		local = math3d.Mat4FromColumnMajor(node.Matrix[:])
	} else {
		t, r, s := node.Translation, node.Rotation, node.Scale
		local = math3d.Translate(math3d.V3(t[0], t[1], t[2])).
			Mul(math3d.QuatToMat4(r[0], r[1], r[2], r[3]))
		if s != [3]float64{0, 0, 0} {
			local = local.Mul(math3d.Scale(math3d.V3(s[0], s[1], s[2])))
		}
	}
	world := parent.Mul(local)

	if node.Mesh != nil {
		if err := b.processMesh(b.doc.Meshes[*node.Mesh], world); err != nil {
			return err
		}
	}
	for _, child := range node.Children {
		if err := b.processNode(int(child), world); err != nil {
			return err
		}
	}
	return nil
}

// processMesh appends the triangle primitives of m, transformed to world space.
func (b *gltfBuilder) processMesh(m *gltf.Mesh, transform math3d.Mat4) error {
	for _, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			continue
		}
		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}

		positions, err := modeler.ReadPosition(b.doc, b.doc.Accessors[posIdx], nil)
		if err != nil {
			return fmt.Errorf("read positions: %w", err)
		}

		var normals [][3]float32
		if normIdx, ok := prim.Attributes[gltf.NORMAL]; ok {
			normals, err = modeler.ReadNormal(b.doc, b.doc.Accessors[normIdx], nil)
			if err != nil {
				return fmt.Errorf("read normals: %w", err)
			}
			b.sawNormals = true
		}

		remap := make([]int, len(positions))
		for i, p := range positions {
			v := MeshVertex{Position: transform.MulVec3(math3d.V3(float64(p[0]), float64(p[1]), float64(p[2])))}
			if i < len(normals) {
				n := normals[i]
				v.Normal = transform.MulVec3Dir(math3d.V3(float64(n[0]), float64(n[1]), float64(n[2]))).Normalize()
			}
			remap[i] = b.addVertex(v)
		}

		var indices []uint32
		if prim.Indices != nil {
			indices, err = modeler.ReadIndices(b.doc, b.doc.Accessors[*prim.Indices], nil)
			if err != nil {
				return fmt.Errorf("read indices: %w", err)
			}
		} else {
			indices = make([]uint32, len(positions))
			for i := range indices {
				indices[i] = uint32(i)
			}
		}

		for i := 0; i+2 < len(indices); i += 3 {
			b.mesh.Faces = append(b.mesh.Faces, Face{V: [3]int{
				remap[indices[i]],
				remap[indices[i+1]],
				remap[indices[i+2]],
			}})
		}
	}
	return nil
}

func (b *gltfBuilder) addVertex(v MeshVertex) int {
	if b.weld {
		key := quantizePosition(v.Position, b.tolerance)
		if idx, ok := b.welded[key]; ok {
			b.mesh.Vertices[idx].Normal = b.mesh.Vertices[idx].Normal.Add(v.Normal)
			return idx
		}
		b.welded[key] = len(b.mesh.Vertices)
	}
	b.mesh.Vertices = append(b.mesh.Vertices, v)
	return len(b.mesh.Vertices) - 1
}

// WriteGLB writes the mesh as a single-node binary glTF with positions,
// normals and 32-bit indices.
func WriteGLB(w io.Writer, m *Mesh) error {
	doc := gltf.NewDocument()

	positions := make([][3]float32, len(m.Vertices))
	normals := make([][3]float32, len(m.Vertices))
	for i, v := range m.Vertices {
		positions[i] = v.Position.Float32()
		normals[i] = v.Normal.Float32()
	}
	indices := make([]uint32, 0, 3*len(m.Faces))
	for _, f := range m.Faces {
		indices = append(indices, uint32(f.V[0]), uint32(f.V[1]), uint32(f.V[2]))
	}

	posAcc := modeler.WritePosition(doc, positions)
	nrmAcc := modeler.WriteNormal(doc, normals)
	idxAcc := modeler.WriteIndices(doc, indices)

	doc.Meshes = []*gltf.Mesh{{
		Name: m.Name,
		Primitives: []*gltf.Primitive{{
			Indices:    gltf.Index(idxAcc),
			Attributes: map[string]int{gltf.POSITION: posAcc, gltf.NORMAL: nrmAcc},
		}},
	}}
	doc.Nodes = []*gltf.Node{{Name: m.Name, Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)

	enc := gltf.NewEncoder(w)
	enc.AsBinary = true
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode glb: %w", err)
	}
	return nil
}

// LoadGLTF is a convenience function to load a GLTF/GLB file with default settings.
func LoadGLTF(path string) (*Mesh, error) {
	return NewGLTFLoader().LoadFile(path)
}
