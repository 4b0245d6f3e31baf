package render

import (
	"image/color"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestFramebufferSavePNG(t *testing.T) {
	// Create a small framebuffer with a gradient
	fb := NewFramebuffer(100, 100)
	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			fb.SetPixel(x, y, RGB(uint8(x*2), uint8(y*2), 128))
		}
	}

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "test.png")

	err := fb.SavePNG(path)
	if err != nil {
		t.Fatalf("SavePNG failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("File not created: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("File is empty")
	}
}

func TestFramebufferToImage(t *testing.T) {
	fb := NewFramebuffer(50, 50)
	fb.SetPixel(10, 20, ColorRed)
	fb.SetPixel(30, 40, ColorGreen)

	img := fb.ToImage()

	if img.Bounds().Dx() != 50 || img.Bounds().Dy() != 50 {
		t.Errorf("Image dimensions wrong: got %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
	}

	r, g, b, a := img.At(10, 20).RGBA()
	if r>>8 != 255 || g>>8 != 0 || b>>8 != 0 {
		t.Errorf("Red pixel wrong: got %d,%d,%d,%d", r>>8, g>>8, b>>8, a>>8)
	}

	r, g, b, a = img.At(30, 40).RGBA()
	if r>>8 != 0 || g>>8 != 255 || b>>8 != 0 {
		t.Errorf("Green pixel wrong: got %d,%d,%d,%d", r>>8, g>>8, b>>8, a>>8)
	}
}

func TestFramebufferClearResize(t *testing.T) {
	fb := NewFramebuffer(4, 4)
	fb.BG = color.RGBA{10, 20, 30, 255}
	fb.SetPixel(1, 1, ColorWhite)
	fb.Depth[5] = 3
	fb.Clear()
	if got := fb.GetPixel(1, 1); got != RGB(10, 20, 30) {
		t.Errorf("pixel after Clear = %v, want background", got)
	}
	if !math.IsInf(fb.Depth[5], -1) {
		t.Errorf("depth after Clear = %v, want -Inf", fb.Depth[5])
	}

	fb.Resize(8, 2)
	if fb.Width != 8 || fb.Height != 2 || len(fb.Pixels) != 16 || len(fb.Depth) != 16 {
		t.Errorf("Resize(8, 2): %dx%d with %d pixels", fb.Width, fb.Height, len(fb.Pixels))
	}
	fb.Resize(0, -3)
	if fb.Width != 1 || fb.Height != 1 {
		t.Errorf("Resize(0, -3) = %dx%d, want 1x1", fb.Width, fb.Height)
	}
}

func TestFramebufferOutOfBounds(t *testing.T) {
	fb := NewFramebuffer(3, 3)
	fb.SetPixel(-1, 0, ColorRed)
	fb.SetPixel(0, 3, ColorRed)
	for _, c := range fb.Pixels {
		if c != ColorBlack {
			t.Fatalf("out of bounds SetPixel wrote %v", c)
		}
	}
	if got := fb.GetPixel(5, 5); got != ColorBlack {
		t.Errorf("GetPixel outside = %v, want background", got)
	}
}
