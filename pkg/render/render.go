package render

import (
	"fmt"
	"image"

	"github.com/gogpu/gg"

	"github.com/taigrr/loopsub/pkg/math3d"
)

// Options controls offline rendering.
type Options struct {
	Width, Height int
	Supersample   int     // render at this multiple of the output size, then downsample
	Zoom          float64 // see DefaultZoom
	Background    Color
	Surface       Color
	Wire          Color
	LineWidth     float64 // wireframe line width in output pixels
	LightDir      math3d.Vec3
	HiddenLines   bool // skip edges whose faces all point away from the viewer
}

// DefaultOptions returns a 512×512 render with 2× supersampling.
func DefaultOptions() Options {
	return Options{
		Width:       512,
		Height:      512,
		Supersample: 2,
		Zoom:        DefaultZoom,
		Background:  ColorWhite,
		Surface:     ColorGray,
		Wire:        RGB(20, 20, 20),
		LineWidth:   1,
		LightDir:    math3d.V3(0.5, 1, 0.3).Normalize(),
		HiddenLines: true,
	}
}

func (o Options) scaled() (w, h, ss int) {
	ss = max(o.Supersample, 1)
	return o.Width * ss, o.Height * ss, ss
}

// Shaded renders m with Gouraud shading and back-face culling.
func Shaded(m MeshRenderer, transform math3d.Mat4, opts Options) *image.RGBA {
	w, h, _ := opts.scaled()
	fb := NewFramebuffer(w, h)
	bg := opts.Background
	fb.BG.R, fb.BG.G, fb.BG.B = bg.R, bg.G, bg.B
	fb.Clear()

	r := NewRasterizer(fb)
	r.Zoom = opts.Zoom
	r.DrawMeshGouraud(m, transform, opts.Surface, opts.LightDir)
	return Downsample(fb.ToImage(), opts.Width, opts.Height)
}

// Wireframe renders the edges of m as anti-aliased lines. Each undirected
// edge is stroked once.
func Wireframe(m MeshRenderer, transform math3d.Mat4, opts Options) (image.Image, error) {
	w, h, ss := opts.scaled()
	dc := gg.NewContext(w, h)
	defer dc.Close()

	dc.ClearWithColor(opts.Background.GG())
	wire := opts.Wire.GG()
	dc.SetRGB(wire.R, wire.G, wire.B)
	dc.SetLineWidth(opts.LineWidth * float64(ss))
	dc.SetLineCap(gg.LineCapRound)

	p := newProjector(w, h, opts.Zoom)
	screen := make([]math3d.Vec3, m.VertexCount())
	for i := range screen {
		pos, _ := m.VertexAt(i)
		screen[i] = p.apply(transform.MulVec3(pos))
	}

	drawn := make(map[[2]int]bool, 3*m.TriangleCount()/2)
	for t := range m.TriangleCount() {
		tri := m.Triangle(t)
		if opts.HiddenLines && signedArea(screen[tri[0]], screen[tri[1]], screen[tri[2]]) >= 0 {
			continue
		}
		for k := range 3 {
			a, b := tri[k], tri[(k+1)%3]
			key := [2]int{min(a, b), max(a, b)}
			if drawn[key] {
				continue
			}
			drawn[key] = true
			dc.MoveTo(screen[a].X, screen[a].Y)
			dc.LineTo(screen[b].X, screen[b].Y)
		}
	}
	if err := dc.Stroke(); err != nil {
		return nil, fmt.Errorf("stroke wireframe: %w", err)
	}
	return Downsample(dc.Image(), opts.Width, opts.Height), nil
}
