// Package img2pdf assembles an ordered set of images into a single paged
// PDF document.
//
// # Quick Start
//
// Create a session, ingest images, set an output name, and generate:
//
//	sess := img2pdf.NewSession()
//
//	report, err := sess.Ingest(ctx, items)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	sess.SetOutputName("Trip")
//	events, err := sess.Generate(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for ev := range events {
//	    switch ev.Kind {
//	    case img2pdf.EventProgress:
//	        fmt.Printf("%d%%\n", ev.Progress)
//	    case img2pdf.EventDone:
//	        os.WriteFile(ev.Name, ev.PDF, 0644)
//	    case img2pdf.EventError:
//	        log.Fatal(ev.Err)
//	    }
//	}
//
// The output file name derives from the base name plus the current date:
// "Trip 20240601.pdf".
//
// # Assembly Pipeline
//
// Generation follows these stages:
//
//  1. Snapshot of the working set (later mutations do not affect the job)
//  2. Preprocessing in batches: decode, downscale oversized images,
//     re-encode as JPEG (first half of reported progress)
//  3. Page composition: one image per page, scaled to fit, centered
//     (second half of reported progress)
//
// The job runs on a background goroutine and communicates exclusively via
// the event channel: zero or more progress events followed by exactly one
// terminal event (completion or error). At most one job may be in flight
// per session; Generate fails with ErrJobInFlight while one is running.
//
// # Working Set
//
// A session owns an ordered working set of source images. Items can be
// appended, reordered (MoveUp/MoveDown), and removed; a selection index
// follows these mutations and is re-clamped when the set shrinks. The
// thumbnail cache is keyed by position and is re-keyed atomically with
// every structural mutation.
//
// # Previews
//
// Thumbnails are generated lazily off the calling goroutine and
// letterboxed into a fixed square at reduced quality. A periodic sweep
// retains only entries that are visible or selected, bounding preview
// memory to the viewport size regardless of working-set size. The
// virtualization helpers in this package compute the visible row range
// and spacer geometry for long lists.
//
// # Configuration
//
// Use functional options to customize the session:
//
//	sess := img2pdf.NewSession(
//	    img2pdf.WithPageSettings(img2pdf.PageSettings{
//	        Size:        img2pdf.PageSizeA4,
//	        Orientation: img2pdf.OrientationPortrait,
//	        Margin:      10,
//	    }),
//	    img2pdf.WithJPEGQuality(85),
//	    img2pdf.WithLogger(logger),
//	)
package img2pdf
