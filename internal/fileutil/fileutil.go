// Package fileutil provides file, path, and media type utilities for
// image input handling.
package fileutil

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Sentinel errors for file utility operations.
var (
	ErrNotADirectory = errors.New("not a directory")
)

// imageExtensions maps recognized file extensions to media type labels.
var imageExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// DetectMediaType returns the media type label for an image file,
// preferring the file extension and falling back to content sniffing.
// Unrecognized files get the sniffed type, which the ingestion filter
// then rejects.
func DetectMediaType(path string, data []byte) string {
	if mt, ok := imageExtensions[strings.ToLower(filepath.Ext(path))]; ok {
		return mt
	}
	return http.DetectContentType(data)
}

// ListImages returns the image files directly inside dir, sorted by
// name. Subdirectories are not descended into.
func ListImages(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotADirectory, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := imageExtensions[strings.ToLower(filepath.Ext(entry.Name()))]; ok {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}

	sort.Strings(paths)
	return paths, nil
}

// SafeBaseName replaces characters that are unsafe in file names across
// platforms with underscores and trims surrounding whitespace.
func SafeBaseName(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	for _, r := range name {
		switch {
		case r < 0x20, strings.ContainsRune(`/\:*?"<>|`, r):
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// FileExists returns true if the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// EnsureDir creates the directory (and parents) if it does not exist.
func EnsureDir(dir string, perm os.FileMode) error {
	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, perm); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	return nil
}

// IsDir returns true if the path exists and is a directory.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
