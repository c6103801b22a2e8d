package img2pdf

import (
	"bytes"
	"fmt"
	"image"
	"strings"

	// Registered for image.DecodeConfig and image.Decode.
	_ "image/jpeg"
	_ "image/png"
)

// Accepted media types. "image/jpg" is a common non-standard label and is
// normalized to MediaTypeJPEG.
const (
	MediaTypeJPEG = "image/jpeg"
	MediaTypePNG  = "image/png"

	mediaTypeJPEGAlias = "image/jpg"
)

// Page size constants.
const (
	PageSizeA4     = "a4"
	PageSizeA3     = "a3"
	PageSizeA5     = "a5"
	PageSizeLetter = "letter"
	PageSizeLegal  = "legal"
)

// Orientation constants.
const (
	OrientationPortrait  = "portrait"
	OrientationLandscape = "landscape"
)

// Margin bounds in millimeters.
const (
	MinMargin     = 0.0
	MaxMargin     = 50.0
	DefaultMargin = 0.0
)

// JPEG quality bounds for re-encoded page images.
const (
	MinQuality     = 10
	MaxQuality     = 100
	DefaultQuality = 85
)

// pageSizesMM maps page size names to portrait dimensions in millimeters.
var pageSizesMM = map[string][2]float64{
	PageSizeA4:     {210, 297},
	PageSizeA3:     {297, 420},
	PageSizeA5:     {148, 210},
	PageSizeLetter: {215.9, 279.4},
	PageSizeLegal:  {215.9, 355.6},
}

// NormalizeMediaType maps a media type label to its canonical accepted
// form. Returns false for anything that is not an accepted image type.
func NormalizeMediaType(mediaType string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(mediaType)) {
	case MediaTypeJPEG, mediaTypeJPEGAlias:
		return MediaTypeJPEG, true
	case MediaTypePNG:
		return MediaTypePNG, true
	}
	return "", false
}

// SourceImage is one user-supplied image: its display name, media type
// label, and raw bytes. Natural pixel dimensions are resolved lazily on
// first request and cached.
type SourceImage struct {
	Name      string
	MediaType string
	Data      []byte

	width    int
	height   int
	resolved bool
}

// Dimensions returns the natural pixel dimensions, decoding only the
// image header on first call.
func (s *SourceImage) Dimensions() (width, height int, err error) {
	if s.resolved {
		return s.width, s.height, nil
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(s.Data))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %s: %v", ErrImageDecode, s.Name, err)
	}

	s.width, s.height = cfg.Width, cfg.Height
	s.resolved = true
	return s.width, s.height, nil
}

// PageSettings configures output page geometry.
type PageSettings struct {
	Size        string  // "a4", "a3", "a5", "letter", "legal"
	Orientation string  // "portrait", "landscape"
	Margin      float64 // millimeters, applied to all sides
}

// DefaultPageSettings returns A4 portrait with no margin.
func DefaultPageSettings() PageSettings {
	return PageSettings{
		Size:        PageSizeA4,
		Orientation: OrientationPortrait,
		Margin:      DefaultMargin,
	}
}

// Validate checks that page settings are valid.
// Uses case-insensitive comparison and does not mutate.
func (p PageSettings) Validate() error {
	if !isValidPageSize(p.Size) {
		return fmt.Errorf("%w: %q", ErrInvalidPageSize, p.Size)
	}

	if !isValidOrientation(p.Orientation) {
		return fmt.Errorf("%w: %q", ErrInvalidOrientation, p.Orientation)
	}

	if p.Margin < MinMargin || p.Margin > MaxMargin {
		return fmt.Errorf("%w: %.1f (must be between %.1f and %.1f)", ErrInvalidMargin, p.Margin, MinMargin, MaxMargin)
	}

	return nil
}

// dimensionsMM returns the page dimensions in millimeters, orientation
// applied. Assumes settings already validated.
func (p PageSettings) dimensionsMM() (w, h float64) {
	dims := pageSizesMM[strings.ToLower(p.Size)]
	w, h = dims[0], dims[1]
	if strings.ToLower(p.Orientation) == OrientationLandscape {
		w, h = h, w
	}
	return w, h
}

// isValidPageSize checks if size is a known page size (case-insensitive).
func isValidPageSize(size string) bool {
	_, ok := pageSizesMM[strings.ToLower(size)]
	return ok
}

// isValidOrientation checks if orientation is valid (case-insensitive).
func isValidOrientation(orientation string) bool {
	switch strings.ToLower(orientation) {
	case OrientationPortrait, OrientationLandscape:
		return true
	}
	return false
}

// validQuality checks JPEG quality bounds.
func validQuality(q int) error {
	if q < MinQuality || q > MaxQuality {
		return fmt.Errorf("%w: %d (must be between %d and %d)", ErrInvalidQuality, q, MinQuality, MaxQuality)
	}
	return nil
}
