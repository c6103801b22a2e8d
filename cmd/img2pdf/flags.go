package main

import (
	flag "github.com/spf13/pflag"
)

// Sentinel defaults distinguishing "flag not set" from explicit values,
// so config file settings survive unless overridden on the command line.
const (
	marginUnset  = -1.0
	qualityUnset = 0
)

// cliFlags holds all parsed command-line flags.
type cliFlags struct {
	name        string
	output      string
	config      string
	pageSize    string
	orientation string
	margin      float64
	quality     int
	sync        bool
	quiet       bool
	verbose     bool
	version     bool
	help        bool
}

// parseFlags parses command-line arguments. Returns the flags, the
// positional arguments (image files or directories), and any parse
// error.
func parseFlags(args []string) (*cliFlags, []string, error) {
	flags := &cliFlags{}

	fs := flag.NewFlagSet("img2pdf", flag.ContinueOnError)
	fs.SortFlags = false
	// Usage is printed by run via --help; suppress pflag's default dump.
	fs.Usage = func() {}

	fs.StringVarP(&flags.name, "name", "n", "", "base name of the output document (default: derived from input)")
	fs.StringVarP(&flags.output, "output", "o", "", "output directory (default: current directory)")
	fs.StringVarP(&flags.config, "config", "c", "", "config file path or name")
	fs.StringVar(&flags.pageSize, "page-size", "", "page size: a4, a3, a5, letter, legal")
	fs.StringVar(&flags.orientation, "orientation", "", "page orientation: portrait, landscape")
	fs.Float64Var(&flags.margin, "margin", marginUnset, "page margin in millimeters (0-50)")
	fs.IntVarP(&flags.quality, "quality", "q", qualityUnset, "JPEG quality for page images (10-100)")
	fs.BoolVar(&flags.sync, "sync", false, "run assembly on the calling goroutine (degraded mode)")
	fs.BoolVar(&flags.quiet, "quiet", false, "suppress progress output")
	fs.BoolVarP(&flags.verbose, "verbose", "v", false, "enable diagnostic logging")
	fs.BoolVar(&flags.version, "version", false, "print version and exit")
	fs.BoolVarP(&flags.help, "help", "h", false, "print usage and exit")

	if err := fs.Parse(args[1:]); err != nil {
		return nil, nil, err
	}
	return flags, fs.Args(), nil
}
