// Package render draws meshes into images: a z-buffered Gouraud rasterizer
// for shaded output and the terminal viewer, a gg-based anti-aliased
// wireframe renderer, and encoders for the supported image formats.
package render

import (
	"image"
	"image/color"
	"math"
)

// Framebuffer is a color target with a depth buffer. Larger depth values are
// closer to the viewer.
type Framebuffer struct {
	Width  int
	Height int
	Pixels []Color
	Depth  []float64
	BG     color.RGBA
}

// NewFramebuffer allocates a cleared w×h framebuffer with a black background.
func NewFramebuffer(w, h int) *Framebuffer {
	fb := &Framebuffer{BG: color.RGBA{0, 0, 0, 255}}
	fb.Resize(w, h)
	return fb
}

// Resize reallocates the buffers for the new size and clears them.
func (fb *Framebuffer) Resize(w, h int) {
	fb.Width = max(w, 1)
	fb.Height = max(h, 1)
	n := fb.Width * fb.Height
	if cap(fb.Pixels) >= n {
		fb.Pixels = fb.Pixels[:n]
		fb.Depth = fb.Depth[:n]
	} else {
		fb.Pixels = make([]Color, n)
		fb.Depth = make([]float64, n)
	}
	fb.Clear()
}

// Clear fills the color buffer with BG and resets the depth buffer.
func (fb *Framebuffer) Clear() {
	bg := RGB(fb.BG.R, fb.BG.G, fb.BG.B)
	for i := range fb.Pixels {
		fb.Pixels[i] = bg
		fb.Depth[i] = math.Inf(-1)
	}
}

// SetPixel sets a pixel, ignoring coordinates outside the buffer.
func (fb *Framebuffer) SetPixel(x, y int, c Color) {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return
	}
	fb.Pixels[y*fb.Width+x] = c
}

// GetPixel returns a pixel, or BG outside the buffer.
func (fb *Framebuffer) GetPixel(x, y int) Color {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return RGB(fb.BG.R, fb.BG.G, fb.BG.B)
	}
	return fb.Pixels[y*fb.Width+x]
}

// ToImage copies the color buffer into an RGBA image.
func (fb *Framebuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for i, c := range fb.Pixels {
		img.Pix[4*i] = c.R
		img.Pix[4*i+1] = c.G
		img.Pix[4*i+2] = c.B
		img.Pix[4*i+3] = 255
	}
	return img
}

// SavePNG writes the framebuffer to a PNG file.
func (fb *Framebuffer) SavePNG(path string) error {
	return saveAs(path, fb.ToImage(), ImagePNG)
}
