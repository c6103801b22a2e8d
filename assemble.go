package img2pdf

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"time"

	"github.com/go-pdf/fpdf"
	xdraw "golang.org/x/image/draw"
)

// Preprocessing constants.
const (
	// MaxWorkingWidth is the pixel width above which a source image is
	// downscaled before page placement, bounding memory and output size
	// irrespective of original resolution.
	MaxWorkingWidth = 1800

	// PreprocessBatchSize bounds the number of decoded-but-unplaced
	// images held at once.
	PreprocessBatchSize = 5
)

// EventKind tags messages crossing the worker boundary.
type EventKind int

// Worker boundary message kinds.
const (
	EventProgress EventKind = iota // integer progress 0-100
	EventDone                      // terminal: finished document
	EventError                     // terminal: whole job aborted
)

// Event is one message from an assembly job. A job emits zero or more
// progress events followed by exactly one terminal event (EventDone or
// EventError).
type Event struct {
	Kind     EventKind
	Progress int    // EventProgress
	PDF      []byte // EventDone
	Name     string // EventDone: derived output file name
	Pages    int    // EventDone
	Err      error  // EventError
}

// Job is a one-shot snapshot of the ordered image list plus output
// naming, submitted to an Assembler. Later working-set mutations do not
// affect a submitted job.
type Job struct {
	Images      []*SourceImage
	BaseName    string
	SubmittedAt time.Time
}

// Assembler composes an ordered image list into a single paged PDF, one
// image per page, each scaled to fit the page (never upscaled) and
// centered.
type Assembler struct {
	Page      PageSettings
	Quality   int // JPEG quality for re-encoded page images
	MaxWidth  int // downscale bound in pixels
	BatchSize int // preprocessing batch size; len(images) disables batching
}

// NewAssembler returns an Assembler with the given page settings and
// default preprocessing bounds.
func NewAssembler(page PageSettings) Assembler {
	return Assembler{
		Page:      page,
		Quality:   DefaultQuality,
		MaxWidth:  MaxWorkingWidth,
		BatchSize: PreprocessBatchSize,
	}
}

// Run executes one job, sending progress notifications and exactly one
// terminal event to emit. Any decode or composition error aborts the
// whole job; there is no partial output. Cancellation is honored
// between preprocessing batches and between pages.
func (a Assembler) Run(ctx context.Context, job Job, emit func(Event)) {
	pdfBytes, pages, err := a.assemble(ctx, job.Images, emit)
	if err != nil {
		emit(Event{Kind: EventError, Err: err})
		return
	}

	emit(Event{
		Kind:  EventDone,
		PDF:   pdfBytes,
		Name:  OutputFileName(job.BaseName, job.SubmittedAt),
		Pages: pages,
	})
}

// pageImage is one preprocessed page payload: JPEG bytes plus the pixel
// dimensions used for page-fit geometry.
type pageImage struct {
	data   []byte
	width  int
	height int
}

// assemble preprocesses all images in batches (first half of progress)
// and composes the pages (second half).
func (a Assembler) assemble(ctx context.Context, images []*SourceImage, emit func(Event)) ([]byte, int, error) {
	total := len(images)
	if total == 0 {
		return nil, 0, ErrEmptyWorkingSet
	}

	batch := a.BatchSize
	if batch <= 0 {
		batch = PreprocessBatchSize
	}

	pages := make([]pageImage, 0, total)
	for start := 0; start < total; start += batch {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}

		end := min(start+batch, total)
		for i := start; i < end; i++ {
			page, err := a.preprocess(images[i])
			if err != nil {
				return nil, 0, err
			}
			pages = append(pages, page)
		}

		emit(Event{Kind: EventProgress, Progress: 50 * end / total})
	}

	return a.compose(ctx, pages, emit)
}

// preprocess decodes one source image, flattens it onto a white
// background, downscales it if wider than MaxWidth, and re-encodes it
// as JPEG at the configured quality.
func (a Assembler) preprocess(src *SourceImage) (pageImage, error) {
	img, _, err := image.Decode(bytes.NewReader(src.Data))
	if err != nil {
		return pageImage{}, fmt.Errorf("%w: %s: %v", ErrImageDecode, src.Name, err)
	}

	bounds := img.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()
	if srcW == 0 || srcH == 0 {
		return pageImage{}, fmt.Errorf("%w: %s: zero-sized image", ErrImageDecode, src.Name)
	}

	dstW, dstH := srcW, srcH
	if maxW := a.maxWidth(); srcW > maxW {
		dstW = maxW
		dstH = max(1, int(float64(srcH)*float64(maxW)/float64(srcW)+0.5))
	}

	// A fresh white canvas flattens PNG transparency before JPEG encode.
	canvas := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	xdraw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, xdraw.Src)
	xdraw.CatmullRom.Scale(canvas, canvas.Bounds(), img, bounds, xdraw.Over, nil)

	quality := a.Quality
	if quality == 0 {
		quality = DefaultQuality
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, canvas, &jpeg.Options{Quality: quality}); err != nil {
		return pageImage{}, fmt.Errorf("%w: %s: %v", ErrImageEncode, src.Name, err)
	}

	return pageImage{data: buf.Bytes(), width: dstW, height: dstH}, nil
}

// compose places one page image per PDF page, scaled to fit inside the
// margin box and centered within it.
func (a Assembler) compose(ctx context.Context, pages []pageImage, emit func(Event)) ([]byte, int, error) {
	pageW, pageH := a.Page.dimensionsMM()
	margin := a.Page.Margin
	boxW := pageW - 2*margin
	boxH := pageH - 2*margin

	doc := fpdf.New(fpdfOrientation(a.Page.Orientation), "mm", a.Page.Size, "")
	doc.SetAutoPageBreak(false, 0)

	total := len(pages)
	for i, page := range pages {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}

		doc.AddPage()

		w, h := fitRect(float64(page.width), float64(page.height), boxW, boxH)
		x := margin + (boxW-w)/2
		y := margin + (boxH-h)/2

		name := fmt.Sprintf("page-%d", i+1)
		opts := fpdf.ImageOptions{ImageType: "JPG"}
		doc.RegisterImageOptionsReader(name, opts, bytes.NewReader(page.data))
		doc.ImageOptions(name, x, y, w, h, false, opts, 0, "")
		if doc.Err() {
			return nil, 0, fmt.Errorf("%w: page %d: %v", ErrPDFAssembly, i+1, doc.Error())
		}

		emit(Event{Kind: EventProgress, Progress: 50 + 50*(i+1)/total})
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrPDFAssembly, err)
	}
	return buf.Bytes(), total, nil
}

// fitRect scales (imgW, imgH) uniformly to fit inside (boxW, boxH),
// applied only when the image exceeds the box in either dimension.
// Images already inside the box keep their size: never upscale.
func fitRect(imgW, imgH, boxW, boxH float64) (w, h float64) {
	if imgW <= boxW && imgH <= boxH {
		return imgW, imgH
	}
	scale := min(boxW/imgW, boxH/imgH)
	return imgW * scale, imgH * scale
}

func (a Assembler) maxWidth() int {
	if a.MaxWidth > 0 {
		return a.MaxWidth
	}
	return MaxWorkingWidth
}

// fpdfOrientation maps orientation names to fpdf's one-letter codes.
func fpdfOrientation(orientation string) string {
	if orientation == OrientationLandscape {
		return "L"
	}
	return "P"
}
