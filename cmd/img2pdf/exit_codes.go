package main

import (
	"context"
	"errors"
	"os"

	img2pdf "github.com/alnah/go-img2pdf"
	"github.com/alnah/go-img2pdf/internal/config"
)

// Exit codes for the img2pdf CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess  = 0 // Successful generation
	ExitGeneral  = 1 // General/unexpected error
	ExitUsage    = 2 // Invalid flags, config, or validation
	ExitIO       = 3 // File not found, permission denied
	ExitAssembly = 4 // Decode or PDF composition errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use
// fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Assembly errors (exit 4)
	if errors.Is(err, img2pdf.ErrImageDecode) ||
		errors.Is(err, img2pdf.ErrImageEncode) ||
		errors.Is(err, img2pdf.ErrPDFAssembly) ||
		errors.Is(err, context.Canceled) {
		return ExitAssembly
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadImage) ||
		errors.Is(err, ErrWritePDF) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, img2pdf.ErrInvalidPageSize) ||
		errors.Is(err, img2pdf.ErrInvalidOrientation) ||
		errors.Is(err, img2pdf.ErrInvalidMargin) ||
		errors.Is(err, img2pdf.ErrInvalidQuality) ||
		errors.Is(err, img2pdf.ErrEmptyWorkingSet) ||
		errors.Is(err, img2pdf.ErrEmptyOutputName) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrNoValidImages) {
		return ExitUsage
	}

	return ExitGeneral
}
