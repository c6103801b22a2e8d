// Package config loads and validates CLI configuration files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-img2pdf/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
)

// Bounds for validated fields.
const (
	MinMargin       = 0.0
	MaxMargin       = 50.0 // millimeters
	MinQuality      = 10
	MaxQuality      = 100
	MinThumbSize    = 16
	MaxThumbSize    = 512
	MinThumbQuality = 1
	MaxThumbQuality = 100
)

// Config holds all configuration for document generation.
type Config struct {
	Output     OutputConfig `yaml:"output"`
	Page       PageConfig   `yaml:"page"`
	Quality    int          `yaml:"quality"` // JPEG quality for page images
	Thumbnails ThumbConfig  `yaml:"thumbnails"`
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	Dir string `yaml:"dir"` // Output directory (empty = current directory)
}

// PageConfig defines PDF page settings.
type PageConfig struct {
	Size        string  `yaml:"size"`        // "a4", "a3", "a5", "letter", "legal"
	Orientation string  `yaml:"orientation"` // "portrait", "landscape"
	Margin      float64 `yaml:"margin"`      // millimeters, all sides
}

// ThumbConfig defines preview rendering options.
type ThumbConfig struct {
	Size    int `yaml:"size"`    // square edge in pixels
	Quality int `yaml:"quality"` // JPEG quality
}

// DefaultConfig returns the defaults: A4 portrait, no margin, quality 85.
func DefaultConfig() *Config {
	return &Config{
		Output:     OutputConfig{Dir: ""},
		Page:       PageConfig{Size: "a4", Orientation: "portrait", Margin: 0},
		Quality:    85,
		Thumbnails: ThumbConfig{Size: 128, Quality: 50},
	}
}

// Validate checks all fields against their bounds.
// Called automatically by LoadConfig, but available for consumers who
// construct Config manually.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Page.Size) {
	case "a4", "a3", "a5", "letter", "legal":
	default:
		return fmt.Errorf("page.size: invalid value %q (must be a4, a3, a5, letter, or legal)", c.Page.Size)
	}

	switch strings.ToLower(c.Page.Orientation) {
	case "portrait", "landscape":
	default:
		return fmt.Errorf("page.orientation: invalid value %q (must be portrait or landscape)", c.Page.Orientation)
	}

	if c.Page.Margin < MinMargin || c.Page.Margin > MaxMargin {
		return fmt.Errorf("page.margin: must be between %.0f and %.0f mm, got %.1f", MinMargin, MaxMargin, c.Page.Margin)
	}

	if c.Quality < MinQuality || c.Quality > MaxQuality {
		return fmt.Errorf("quality: must be between %d and %d, got %d", MinQuality, MaxQuality, c.Quality)
	}

	if c.Thumbnails.Size < MinThumbSize || c.Thumbnails.Size > MaxThumbSize {
		return fmt.Errorf("thumbnails.size: must be between %d and %d, got %d", MinThumbSize, MaxThumbSize, c.Thumbnails.Size)
	}

	if c.Thumbnails.Quality < MinThumbQuality || c.Thumbnails.Quality > MaxThumbQuality {
		return fmt.Errorf("thumbnails.quality: must be between %d and %d, got %d", MinThumbQuality, MaxThumbQuality, c.Thumbnails.Quality)
	}

	return nil
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard
// locations. Returns error if the file is not found (no silent
// fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if isFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Unset fields keep their defaults.
	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// isFilePath returns true if the string looks like a file path rather
// than a config name.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/go-img2pdf/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2) // 2 locations

	for _, ext := range extensions {
		localPath := name + ext
		if fileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "go-img2pdf", name+ext)
			if fileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
