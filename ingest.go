package img2pdf

import (
	"context"
	"runtime"
)

// Ingestion constants.
const (
	// SyncIngestMax is the largest batch ingested synchronously in one
	// pass; larger batches go through the chunked path.
	SyncIngestMax = 20

	// IngestChunkSize is the number of images applied per chunk on the
	// chunked path, capping the unresponsive window to one chunk's
	// processing time.
	IngestChunkSize = 10
)

// IngestReport summarizes one ingestion pass. Items failing the media
// type check are dropped silently by design (tolerating mixed
// drag-and-drop content); the counts let a caller surface a notice.
type IngestReport struct {
	Accepted int
	Skipped  int
}

// Ingest validates items and appends the accepted ones to the working
// set, preserving relative input order. Batches up to SyncIngestMax are
// applied synchronously; larger batches are applied in chunks of
// IngestChunkSize, yielding between chunks and reporting fractional
// progress (0-100) after each. The threshold counts accepted items, not
// raw input. Both paths produce identical outcomes.
//
// On completion a selection is ensured and the trigger-enablement state
// is refreshed. The context is checked between chunks; a canceled
// ingestion keeps the chunks already applied.
func (s *Session) Ingest(ctx context.Context, items []SourceImage) (IngestReport, error) {
	accepted, report := filterAccepted(items)

	defer s.refreshTrigger()

	if len(accepted) <= SyncIngestMax {
		s.mu.Lock()
		s.set.Append(accepted...)
		s.mu.Unlock()
		s.emitIngestProgress(100)
		return report, nil
	}

	total := len(accepted)
	for done := 0; done < total; done += IngestChunkSize {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		chunk := accepted[done:min(done+IngestChunkSize, total)]
		s.mu.Lock()
		s.set.Append(chunk...)
		s.mu.Unlock()

		s.emitIngestProgress(100 * (done + len(chunk)) / total)
		s.yield()
	}

	return report, nil
}

// filterAccepted keeps only items with accepted image media types,
// normalizing JPEG variants, and copies them into owned SourceImage
// values.
func filterAccepted(items []SourceImage) ([]*SourceImage, IngestReport) {
	var report IngestReport
	accepted := make([]*SourceImage, 0, len(items))

	for _, item := range items {
		mediaType, ok := NormalizeMediaType(item.MediaType)
		if !ok {
			report.Skipped++
			continue
		}

		img := item
		img.MediaType = mediaType
		accepted = append(accepted, &img)
		report.Accepted++
	}

	return accepted, report
}

func (s *Session) emitIngestProgress(percent int) {
	if s.cfg.onIngestProgress != nil {
		s.cfg.onIngestProgress(percent)
	}
}

func (s *Session) yield() {
	if s.cfg.yield != nil {
		s.cfg.yield()
		return
	}
	runtime.Gosched()
}
