package img2pdf

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// Session is the explicit state of one interactive run: the working set,
// its thumbnail cache, the output name, and the single-job assembly
// gate. There is no package-level state; independent sessions do not
// interfere.
type Session struct {
	mu         sync.Mutex
	set        *WorkingSet
	cache      *ThumbCache
	outputName string
	inFlight   bool

	visible    RowRange
	visibleSet bool

	cfg sessionConfig
	log *slog.Logger
}

type sessionConfig struct {
	page             PageSettings
	quality          int
	synchronous      bool
	now              func() time.Time
	yield            func()
	onIngestProgress func(int)
	onTrigger        func(bool)
	thumbnailer      Thumbnailer
	logger           *slog.Logger
}

// Option customizes a Session.
type Option func(*sessionConfig)

// WithPageSettings sets the output page geometry.
func WithPageSettings(page PageSettings) Option {
	return func(c *sessionConfig) { c.page = page }
}

// WithJPEGQuality sets the quality of re-encoded page images.
func WithJPEGQuality(quality int) Option {
	return func(c *sessionConfig) { c.quality = quality }
}

// WithClock injects the time source used for output naming.
func WithClock(now func() time.Time) Option {
	return func(c *sessionConfig) { c.now = now }
}

// WithSynchronousAssembly makes Generate run the job on the calling
// goroutine, unbatched. This is the degraded-mode fallback for
// environments without background execution; it risks blocking the
// interactive surface.
func WithSynchronousAssembly() Option {
	return func(c *sessionConfig) { c.synchronous = true }
}

// WithLogger sets the diagnostic logger. Job-level failures are logged
// in detail here while the event carries the error for user display.
func WithLogger(logger *slog.Logger) Option {
	return func(c *sessionConfig) { c.logger = logger }
}

// WithIngestProgress installs a callback receiving fractional ingest
// progress (0-100) after each chunk.
func WithIngestProgress(fn func(percent int)) Option {
	return func(c *sessionConfig) { c.onIngestProgress = fn }
}

// WithTriggerState installs a callback receiving the generation-trigger
// enablement whenever it may have changed, mirroring CanGenerate.
func WithTriggerState(fn func(enabled bool)) Option {
	return func(c *sessionConfig) { c.onTrigger = fn }
}

// WithYield overrides the control-yield hook invoked between ingestion
// chunks. Intended for cooperative schedulers and tests.
func WithYield(fn func()) Option {
	return func(c *sessionConfig) { c.yield = fn }
}

// WithThumbnailer overrides preview rendering parameters.
func WithThumbnailer(t Thumbnailer) Option {
	return func(c *sessionConfig) { c.thumbnailer = t }
}

// NewSession creates a session with an empty working set.
// Page settings and quality are validated on Generate.
func NewSession(opts ...Option) *Session {
	cfg := sessionConfig{
		page:        DefaultPageSettings(),
		quality:     DefaultQuality,
		now:         time.Now,
		thumbnailer: NewThumbnailer(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	s := &Session{
		cache: NewThumbCache(cfg.thumbnailer),
		cfg:   cfg,
		log:   logger,
	}
	s.set = NewWorkingSet(s.cache)
	s.cache.SetDisplayed(s.displayedIndex)
	return s
}

// Len returns the working-set size.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set.Len()
}

// ImageAt returns the image at index, or false when out of range.
func (s *Session) ImageAt(index int) (*SourceImage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set.At(index)
}

// Selection returns the current selection index, or NoSelection.
func (s *Session) Selection() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set.Selection()
}

// Select sets the selection; out-of-range indices are ignored.
func (s *Session) Select(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.set.Select(index)
}

// MoveUp swaps the image at index with its predecessor; the cache
// entries swap in the same operation.
func (s *Session) MoveUp(index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set.MoveUp(index)
}

// MoveDown swaps the image at index with its successor.
func (s *Session) MoveDown(index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set.MoveDown(index)
}

// Remove deletes the image at index and re-keys the cache.
func (s *Session) Remove(index int) bool {
	s.mu.Lock()
	removed := s.set.Remove(index)
	s.mu.Unlock()

	if removed {
		s.refreshTrigger()
	}
	return removed
}

// Clear empties the working set and cache. It is destructive and
// requires confirmed=true; otherwise it is a no-op.
func (s *Session) Clear(confirmed bool) bool {
	if !confirmed {
		return false
	}

	s.mu.Lock()
	s.set.Clear()
	s.mu.Unlock()

	s.refreshTrigger()
	return true
}

// SetOutputName sets the user-entered base name for the output document.
func (s *Session) SetOutputName(name string) {
	s.mu.Lock()
	s.outputName = name
	s.mu.Unlock()

	s.refreshTrigger()
}

// OutputName returns the current base name.
func (s *Session) OutputName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outputName
}

// Thumbnail returns the preview for index: the cached rendering when
// present, otherwise a placeholder with generation scheduled in the
// background. Reports false for out-of-range indices.
func (s *Session) Thumbnail(index int) (thumb []byte, ok bool) {
	s.mu.Lock()
	img, found := s.set.At(index)
	s.mu.Unlock()

	if !found {
		return nil, false
	}
	thumb, _ = s.cache.Get(index, img)
	return thumb, true
}

// Thumbnails exposes the cache for renderer wiring (update hooks,
// sweeps).
func (s *Session) Thumbnails() *ThumbCache {
	return s.cache
}

// SetVisible records the currently rendered row range. It feeds the
// stale-write check for completing thumbnail generations and the sweep
// retention set.
func (s *Session) SetVisible(r RowRange) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visible = r
	s.visibleSet = true
}

// StartSweeps begins the periodic eviction sweep retaining only visible
// and selected entries. Call the returned function to stop.
func (s *Session) StartSweeps(interval time.Duration) (stop func()) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return s.cache.SweepEvery(interval, s.displayedIndex)
}

// displayedIndex is the "visible ∪ selected" retention predicate.
// Before any visible range is recorded, every valid index counts as
// displayed.
func (s *Session) displayedIndex(index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= s.set.Len() {
		return false
	}
	if index == s.set.Selection() {
		return true
	}
	if !s.visibleSet {
		return true
	}
	return s.visible.Contains(index)
}

// CanGenerate reports whether the generation trigger is enabled:
// non-empty working set, non-empty output name, and no job in flight.
func (s *Session) CanGenerate() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canGenerateLocked()
}

func (s *Session) canGenerateLocked() bool {
	return s.set.Len() > 0 && strings.TrimSpace(s.outputName) != "" && !s.inFlight
}

// Generate submits one assembly job over a snapshot of the working set.
// It returns a channel carrying progress events and exactly one terminal
// event, after which the channel closes. While a job is in flight the
// trigger is disabled and further submissions fail with ErrJobInFlight.
// The in-flight gate is released on every exit path.
//
// By default the job runs on a background goroutine; with
// WithSynchronousAssembly it runs inline before Generate returns (the
// channel is buffered to hold the whole event stream).
func (s *Session) Generate(ctx context.Context) (<-chan Event, error) {
	if err := s.cfg.page.Validate(); err != nil {
		return nil, err
	}
	if err := validQuality(s.cfg.quality); err != nil {
		return nil, err
	}

	s.mu.Lock()
	switch {
	case s.inFlight:
		s.mu.Unlock()
		return nil, ErrJobInFlight
	case s.set.Len() == 0:
		s.mu.Unlock()
		return nil, ErrEmptyWorkingSet
	case strings.TrimSpace(s.outputName) == "":
		s.mu.Unlock()
		return nil, ErrEmptyOutputName
	}

	job := Job{
		Images:      s.set.Snapshot(),
		BaseName:    strings.TrimSpace(s.outputName),
		SubmittedAt: s.cfg.now(),
	}
	s.inFlight = true
	s.mu.Unlock()
	s.refreshTrigger()

	asm := NewAssembler(s.cfg.page)
	asm.Quality = s.cfg.quality
	if s.cfg.synchronous {
		// Degraded path: same algorithm, no batching.
		asm.BatchSize = len(job.Images)
	}

	// Buffered for the whole stream so the synchronous path cannot block.
	n := len(job.Images)
	events := make(chan Event, n+n/PreprocessBatchSize+4)

	run := func() {
		defer func() {
			s.mu.Lock()
			s.inFlight = false
			s.mu.Unlock()
			s.refreshTrigger()
			close(events)
		}()

		asm.Run(ctx, job, func(ev Event) {
			if ev.Kind == EventError {
				s.log.Error("assembly job failed",
					"name", job.BaseName,
					"images", n,
					"error", ev.Err)
			}
			events <- ev
		})
	}

	if s.cfg.synchronous {
		run()
	} else {
		go run()
	}
	return events, nil
}

func (s *Session) refreshTrigger() {
	if s.cfg.onTrigger == nil {
		return
	}
	s.cfg.onTrigger(s.CanGenerate())
}
