package img2pdf

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

// makeJPEG returns an encoded JPEG of the given pixel dimensions.
func makeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, testPattern(w, h), &jpeg.Options{Quality: 75}); err != nil {
		t.Fatalf("encoding test JPEG: %v", err)
	}
	return buf.Bytes()
}

// makePNG returns an encoded PNG of the given pixel dimensions.
func makePNG(t *testing.T, w, h int) []byte {
	t.Helper()

	var buf bytes.Buffer
	if err := png.Encode(&buf, testPattern(w, h)); err != nil {
		t.Fatalf("encoding test PNG: %v", err)
	}
	return buf.Bytes()
}

// testPattern builds a flat-colored image; decode needs valid pixels,
// not interesting ones.
func testPattern(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	fill := color.RGBA{R: 0x40, G: 0x80, B: 0xc0, A: 0xff}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, fill)
		}
	}
	return img
}

// jpegItem builds a SourceImage holding an encoded JPEG.
func jpegItem(t *testing.T, name string, w, h int) SourceImage {
	t.Helper()
	return SourceImage{Name: name, MediaType: MediaTypeJPEG, Data: makeJPEG(t, w, h)}
}

// namedImages builds n tiny distinct JPEG images named img-0..img-n-1.
func namedImages(t *testing.T, n int) []SourceImage {
	t.Helper()

	items := make([]SourceImage, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, jpegItem(t, fmt.Sprintf("img-%d", i), 8, 8))
	}
	return items
}

// sourcePtr wraps a name into a minimal SourceImage pointer for
// working-set tests that never decode pixels.
func sourcePtr(name string) *SourceImage {
	return &SourceImage{Name: name, MediaType: MediaTypeJPEG}
}

// setNames lists the working set's image names in order.
func setNames(ws *WorkingSet) []string {
	names := make([]string, 0, ws.Len())
	for i := 0; i < ws.Len(); i++ {
		img, _ := ws.At(i)
		names = append(names, img.Name)
	}
	return names
}

// equalStrings compares two string slices.
func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
