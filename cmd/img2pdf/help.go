package main

import (
	"fmt"
	"io"
)

const usageText = `img2pdf - assemble images into a single PDF document

Usage:
  img2pdf [flags] <images or directories>...

Each input image becomes one page, scaled to fit the page (never
upscaled) and centered. Directories expand to their JPEG/PNG files
sorted by name; files of other types are skipped. The output file is
named "<name> <YYYYMMDD>.pdf".

Flags:
  -n, --name string         base name of the output document
                            (default: derived from the first input)
  -o, --output string       output directory (default: current directory)
  -c, --config string       config file path or name
      --page-size string    a4, a3, a5, letter, legal (default a4)
      --orientation string  portrait, landscape (default portrait)
      --margin float        page margin in millimeters, 0-50 (default 0)
  -q, --quality int         JPEG quality for page images, 10-100 (default 85)
      --sync                run assembly on the calling goroutine
      --quiet               suppress progress output
  -v, --verbose             enable diagnostic logging
      --version             print version and exit
  -h, --help                print this help

Examples:
  img2pdf --name "Trip" ./photos
  img2pdf -n Report --page-size letter --margin 10 a.jpg b.png
  img2pdf -c myconfig ./scans -o ./out
`

func printUsage(w io.Writer) {
	fmt.Fprint(w, usageText)
}
