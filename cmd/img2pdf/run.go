package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	img2pdf "github.com/alnah/go-img2pdf"
	"github.com/alnah/go-img2pdf/internal/config"
	"github.com/alnah/go-img2pdf/internal/fileutil"
)

// Sentinel errors for CLI operations.
var (
	ErrNoInput       = errors.New("no input images specified")
	ErrNoValidImages = errors.New("no valid images among the inputs")
	ErrReadImage     = errors.New("failed to read image file")
	ErrWritePDF      = errors.New("failed to write PDF file")
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// run parses arguments, builds a session, ingests the inputs, and
// generates the output document.
func run(args []string, env *Environment) error {
	flags, positional, err := parseFlags(args)
	if err != nil {
		return err
	}

	if flags.help {
		printUsage(env.Stdout)
		return nil
	}
	if flags.version {
		fmt.Fprintln(env.Stdout, "img2pdf "+Version)
		return nil
	}

	// Load configuration, CLI flags win over config values
	cfg := config.DefaultConfig()
	if flags.config != "" {
		cfg, err = config.LoadConfig(flags.config)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
	}
	mergeFlags(flags, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Gather and load input files
	if len(positional) == 0 {
		return ErrNoInput
	}
	paths, err := expandInputs(positional)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return ErrNoInput
	}

	items, err := loadItems(paths)
	if err != nil {
		return err
	}

	sess := newSession(flags, cfg, env)

	report, err := sess.Ingest(context.Background(), items)
	if err != nil {
		return err
	}
	if report.Skipped > 0 && !flags.quiet {
		fmt.Fprintf(env.Stderr, "Skipped %d file(s) with unsupported type\n", report.Skipped)
	}
	if sess.Len() == 0 {
		return ErrNoValidImages
	}

	sess.SetOutputName(resolveBaseName(flags.name, positional))

	return generate(sess, flags, cfg, env)
}

// newSession builds the session from flags and config.
func newSession(flags *cliFlags, cfg *config.Config, env *Environment) *img2pdf.Session {
	opts := []img2pdf.Option{
		img2pdf.WithPageSettings(img2pdf.PageSettings{
			Size:        cfg.Page.Size,
			Orientation: cfg.Page.Orientation,
			Margin:      cfg.Page.Margin,
		}),
		img2pdf.WithJPEGQuality(cfg.Quality),
		img2pdf.WithClock(env.Now),
	}

	if flags.sync {
		opts = append(opts, img2pdf.WithSynchronousAssembly())
	}
	if flags.verbose {
		opts = append(opts, img2pdf.WithLogger(slog.New(slog.NewTextHandler(env.Stderr, nil))))
	}
	if !flags.quiet {
		stderr := env.Stderr
		opts = append(opts, img2pdf.WithIngestProgress(func(percent int) {
			fmt.Fprintf(stderr, "\rIngesting... %3d%%", percent)
			if percent >= 100 {
				fmt.Fprintln(stderr)
			}
		}))
	}

	return img2pdf.NewSession(opts...)
}

// generate triggers assembly, streams progress, and writes the artifact.
func generate(sess *img2pdf.Session, flags *cliFlags, cfg *config.Config, env *Environment) error {
	events, err := sess.Generate(context.Background())
	if err != nil {
		return err
	}

	for ev := range events {
		switch ev.Kind {
		case img2pdf.EventProgress:
			if !flags.quiet {
				fmt.Fprintf(env.Stderr, "\rAssembling... %3d%%", ev.Progress)
			}
		case img2pdf.EventDone:
			if !flags.quiet {
				fmt.Fprintln(env.Stderr)
			}
			return writeArtifact(ev, flags.output, cfg, env)
		case img2pdf.EventError:
			if !flags.quiet {
				fmt.Fprintln(env.Stderr)
			}
			// Detail went to the diagnostic log; keep the message actionable.
			return fmt.Errorf("%w (re-run to try again)", ev.Err)
		}
	}

	// Channel closed without a terminal event; should not happen.
	return errors.New("assembly ended without a result")
}

// writeArtifact writes the finished document under its derived name.
func writeArtifact(ev img2pdf.Event, outputFlag string, cfg *config.Config, env *Environment) error {
	outDir := outputFlag
	if outDir == "" {
		outDir = cfg.Output.Dir
	}
	if outDir != "" {
		if err := fileutil.EnsureDir(outDir, dirPermissions); err != nil {
			return fmt.Errorf("%w: %v", ErrWritePDF, err)
		}
	}

	outPath := filepath.Join(outDir, ev.Name)
	if err := os.WriteFile(outPath, ev.PDF, filePermissions); err != nil {
		return fmt.Errorf("%w: %v", ErrWritePDF, err)
	}

	fmt.Fprintf(env.Stdout, "Created %s (%d pages)\n", outPath, ev.Pages)
	return nil
}

// mergeFlags applies explicitly set CLI flags over config values.
func mergeFlags(flags *cliFlags, cfg *config.Config) {
	if flags.pageSize != "" {
		cfg.Page.Size = flags.pageSize
	}
	if flags.orientation != "" {
		cfg.Page.Orientation = flags.orientation
	}
	if flags.margin != marginUnset {
		cfg.Page.Margin = flags.margin
	}
	if flags.quality != qualityUnset {
		cfg.Quality = flags.quality
	}
}

// expandInputs resolves positional arguments to image file paths:
// directories expand to their image files (sorted by name), plain files
// pass through.
func expandInputs(positional []string) ([]string, error) {
	var paths []string
	for _, arg := range positional {
		if fileutil.IsDir(arg) {
			dirPaths, err := fileutil.ListImages(arg)
			if err != nil {
				return nil, err
			}
			paths = append(paths, dirPaths...)
			continue
		}
		paths = append(paths, arg)
	}
	return paths, nil
}

// loadItems reads the files and labels each with its media type. The
// ingestion filter decides acceptance; unreadable files are hard errors.
func loadItems(paths []string) ([]img2pdf.SourceImage, error) {
	items := make([]img2pdf.SourceImage, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path) // #nosec G304 -- input paths are user-provided
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrReadImage, path, err)
		}
		items = append(items, img2pdf.SourceImage{
			Name:      filepath.Base(path),
			MediaType: fileutil.DetectMediaType(path, data),
			Data:      data,
		})
	}
	return items, nil
}

// resolveBaseName picks the output base name: the --name flag when set,
// otherwise the name of the first input directory or the stem of the
// first input file.
func resolveBaseName(nameFlag string, positional []string) string {
	if strings.TrimSpace(nameFlag) != "" {
		return nameFlag
	}

	first := positional[0]
	if fileutil.IsDir(first) {
		return filepath.Base(filepath.Clean(first))
	}
	base := filepath.Base(first)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
