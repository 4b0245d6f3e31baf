package render

import (
	"math"
	"slices"

	"github.com/taigrr/loopsub/pkg/math3d"
)

// DefaultZoom fits a model scaled to a 2-unit box inside the shorter side
// of the target at any rotation.
const DefaultZoom = 0.55

// MeshRenderer is the triangle source the renderers draw. Both indexed
// meshes and directed-edge surfaces implement it.
type MeshRenderer interface {
	VertexCount() int
	TriangleCount() int
	Triangle(i int) [3]int
	VertexAt(i int) (pos, normal math3d.Vec3)
}

// projector maps view space to pixels with an orthographic projection
// looking down -Z. Y points up in view space and down in pixel space.
type projector struct {
	cx, cy, scale float64
}

func newProjector(w, h int, zoom float64) projector {
	return projector{
		cx:    float64(w) / 2,
		cy:    float64(h) / 2,
		scale: float64(min(w, h)) * zoom,
	}
}

func (p projector) apply(v math3d.Vec3) math3d.Vec3 {
	return math3d.V3(p.cx+v.X*p.scale, p.cy-v.Y*p.scale, v.Z)
}

// signedArea is twice the pixel-space area of abc. Triangles that are
// counter-clockwise in view space come out negative.
func signedArea(a, b, c math3d.Vec3) float64 {
	return b.XY().Sub(a.XY()).Cross(c.XY().Sub(a.XY()))
}

// Rasterizer draws meshes into a Framebuffer.
type Rasterizer struct {
	fb *Framebuffer

	Zoom                   float64 // pixels per view unit, relative to the shorter side
	Ambient                float64 // light received by faces turned away from the light
	DisableBackfaceCulling bool

	screen []math3d.Vec3 // per-vertex projected positions
	shade  []float64     // per-vertex light intensity
}

// NewRasterizer creates a rasterizer drawing into fb.
func NewRasterizer(fb *Framebuffer) *Rasterizer {
	return &Rasterizer{fb: fb, Zoom: DefaultZoom, Ambient: 0.15}
}

// ClearDepth resets the depth buffer only.
func (r *Rasterizer) ClearDepth() {
	for i := range r.fb.Depth {
		r.fb.Depth[i] = math.Inf(-1)
	}
}

// Project maps a view-space point to pixel coordinates, keeping Z as depth.
func (r *Rasterizer) Project(v math3d.Vec3) math3d.Vec3 {
	return newProjector(r.fb.Width, r.fb.Height, r.Zoom).apply(v)
}

func (r *Rasterizer) projectAll(m MeshRenderer, transform math3d.Mat4) {
	n := m.VertexCount()
	r.screen = slices.Grow(r.screen[:0], n)[:n]
	p := newProjector(r.fb.Width, r.fb.Height, r.Zoom)
	for i := range n {
		pos, _ := m.VertexAt(i)
		r.screen[i] = p.apply(transform.MulVec3(pos))
	}
}

// DrawMeshGouraud fills every triangle with per-vertex diffuse lighting
// interpolated across the face.
func (r *Rasterizer) DrawMeshGouraud(m MeshRenderer, transform math3d.Mat4, base Color, lightDir math3d.Vec3) {
	r.projectAll(m, transform)
	n := m.VertexCount()
	r.shade = slices.Grow(r.shade[:0], n)[:n]
	light := lightDir.Normalize()
	for i := range n {
		_, normal := m.VertexAt(i)
		wn := transform.MulVec3Dir(normal).Normalize()
		r.shade[i] = r.Ambient + (1-r.Ambient)*max(0, wn.Dot(light))
	}
	for t := range m.TriangleCount() {
		r.fillTriangle(m.Triangle(t), base)
	}
}

func (r *Rasterizer) fillTriangle(tri [3]int, base Color) {
	a, b, c := r.screen[tri[0]], r.screen[tri[1]], r.screen[tri[2]]
	area := signedArea(a, b, c)
	if area == 0 || (area > 0 && !r.DisableBackfaceCulling) {
		return
	}
	sa, sb, sc := r.shade[tri[0]], r.shade[tri[1]], r.shade[tri[2]]

	fb := r.fb
	minX := max(int(math.Floor(min(a.X, b.X, c.X))), 0)
	maxX := min(int(math.Ceil(max(a.X, b.X, c.X))), fb.Width-1)
	minY := max(int(math.Floor(min(a.Y, b.Y, c.Y))), 0)
	maxY := min(int(math.Ceil(max(a.Y, b.Y, c.Y))), fb.Height-1)
	inv := 1 / area

	for y := minY; y <= maxY; y++ {
		row := y * fb.Width
		for x := minX; x <= maxX; x++ {
			p := math3d.V3(float64(x)+0.5, float64(y)+0.5, 0)
			w0 := signedArea(b, c, p) * inv
			w1 := signedArea(c, a, p) * inv
			w2 := 1 - w0 - w1
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}
			z := w0*a.Z + w1*b.Z + w2*c.Z
			if z <= fb.Depth[row+x] {
				continue
			}
			fb.Depth[row+x] = z
			fb.Pixels[row+x] = base.Scale(w0*sa + w1*sb + w2*sc)
		}
	}
}

// DrawMeshWireframe draws every triangle edge without depth testing.
func (r *Rasterizer) DrawMeshWireframe(m MeshRenderer, transform math3d.Mat4, c Color) {
	r.projectAll(m, transform)
	for t := range m.TriangleCount() {
		tri := m.Triangle(t)
		for k := range 3 {
			a, b := r.screen[tri[k]], r.screen[tri[(k+1)%3]]
			r.DrawLine(int(math.Floor(a.X)), int(math.Floor(a.Y)), int(math.Floor(b.X)), int(math.Floor(b.Y)), c)
		}
	}
}

// DrawLine draws a 1-pixel Bresenham line, clipped to the framebuffer.
func (r *Rasterizer) DrawLine(x0, y0, x1, y1 int, c Color) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		r.fb.SetPixel(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
