package img2pdf

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"sync"

	xdraw "golang.org/x/image/draw"
)

// Thumbnail rendering defaults.
const (
	// DefaultThumbSize is the edge length of the square preview canvas
	// in pixels.
	DefaultThumbSize = 128

	// DefaultThumbQuality is the JPEG quality of re-encoded previews,
	// kept low to bound preview memory.
	DefaultThumbQuality = 50
)

// Thumbnailer renders letterboxed square previews.
type Thumbnailer struct {
	Size    int // square edge in pixels
	Quality int // JPEG quality 1-100
}

// NewThumbnailer returns a Thumbnailer with default size and quality.
func NewThumbnailer() Thumbnailer {
	return Thumbnailer{Size: DefaultThumbSize, Quality: DefaultThumbQuality}
}

// Render decodes src, scales it uniformly to fit the square canvas
// (preserving aspect ratio), draws it centered on a white background,
// and re-encodes it as reduced-quality JPEG.
func (t Thumbnailer) Render(src *SourceImage) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(src.Data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrImageDecode, src.Name, err)
	}

	bounds := img.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()
	if srcW == 0 || srcH == 0 {
		return nil, fmt.Errorf("%w: %s: zero-sized image", ErrImageDecode, src.Name)
	}

	scale := min(float64(t.Size)/float64(srcW), float64(t.Size)/float64(srcH))
	dstW := max(1, int(float64(srcW)*scale+0.5))
	dstH := max(1, int(float64(srcH)*scale+0.5))

	canvas := image.NewRGBA(image.Rect(0, 0, t.Size, t.Size))
	xdraw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, xdraw.Src)

	// Letterbox: center the scaled image, uniform margins on the short axis.
	x0 := (t.Size - dstW) / 2
	y0 := (t.Size - dstH) / 2
	target := image.Rect(x0, y0, x0+dstW, y0+dstH)
	xdraw.CatmullRom.Scale(canvas, target, img, bounds, xdraw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, canvas, &jpeg.Options{Quality: t.Quality}); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrImageEncode, src.Name, err)
	}
	return buf.Bytes(), nil
}

var (
	placeholderOnce sync.Once
	placeholderJPEG []byte
)

// PlaceholderThumb returns the shared neutral-gray placeholder shown
// while a preview is still being generated.
func PlaceholderThumb() []byte {
	placeholderOnce.Do(func() {
		canvas := image.NewRGBA(image.Rect(0, 0, DefaultThumbSize, DefaultThumbSize))
		gray := image.NewUniform(color.RGBA{R: 0xe0, G: 0xe0, B: 0xe0, A: 0xff})
		xdraw.Draw(canvas, canvas.Bounds(), gray, image.Point{}, xdraw.Src)

		var buf bytes.Buffer
		// Error ignored: encoding a uniform RGBA canvas cannot fail.
		_ = jpeg.Encode(&buf, canvas, &jpeg.Options{Quality: DefaultThumbQuality})
		placeholderJPEG = buf.Bytes()
	})
	return placeholderJPEG
}
