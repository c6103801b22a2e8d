package img2pdf

import "errors"

// Sentinel errors for library operations.
var (
	ErrEmptyWorkingSet = errors.New("working set is empty")
	ErrEmptyOutputName = errors.New("output name cannot be empty")
	ErrJobInFlight     = errors.New("an assembly job is already in flight")

	ErrImageDecode = errors.New("image decode failed")
	ErrImageEncode = errors.New("image encode failed")
	ErrPDFAssembly = errors.New("PDF assembly failed")

	// Media type validation errors.
	ErrUnsupportedMediaType = errors.New("unsupported media type")

	// Page settings validation errors.
	ErrInvalidPageSize    = errors.New("invalid page size")
	ErrInvalidOrientation = errors.New("invalid orientation")
	ErrInvalidMargin      = errors.New("invalid margin")
	ErrInvalidQuality     = errors.New("invalid quality")
)
