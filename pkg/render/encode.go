package render

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

// ErrUnsupportedImage is returned for image extensions no encoder handles.
var ErrUnsupportedImage = errors.New("unsupported image format")

// ImageFormat identifies an output image encoding.
type ImageFormat string

const (
	ImagePNG  ImageFormat = "png"
	ImageWebP ImageFormat = "webp"
	ImageBMP  ImageFormat = "bmp"
	ImageTGA  ImageFormat = "tga"
)

// ImageFormatFromPath derives the encoding from a file extension.
func ImageFormatFromPath(path string) (ImageFormat, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch ImageFormat(ext) {
	case ImagePNG, ImageWebP, ImageBMP, ImageTGA:
		return ImageFormat(ext), nil
	}
	return "", fmt.Errorf("%w: %q (use .png, .webp, .bmp or .tga)", ErrUnsupportedImage, filepath.Ext(path))
}

// Encode writes img in the given format. WebP output is lossless.
func Encode(w io.Writer, img image.Image, format ImageFormat) error {
	var err error
	switch format {
	case ImagePNG:
		err = png.Encode(w, img)
	case ImageWebP:
		err = nativewebp.Encode(w, img, nil)
	case ImageBMP:
		err = bmp.Encode(w, img)
	case ImageTGA:
		err = tga.Encode(w, img)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedImage, format)
	}
	if err != nil {
		return fmt.Errorf("%s encode: %w", format, err)
	}
	return nil
}

// SaveImage writes img to path, picking the encoder from the extension.
func SaveImage(path string, img image.Image) error {
	format, err := ImageFormatFromPath(path)
	if err != nil {
		return err
	}
	return saveAs(path, img, format)
}

func saveAs(path string, img image.Image, format ImageFormat) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return Encode(f, img, format)
}

// Downsample scales img to w×h with Catmull-Rom filtering. Images already
// at the target size are copied.
func Downsample(img image.Image, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	b := img.Bounds()
	if b.Dx() == w && b.Dy() == h {
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
		return dst
	}
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
