package img2pdf

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// loadedSession returns a session primed with n images and an output name,
// running assembly inline.
func loadedSession(t *testing.T, n int, opts ...Option) *Session {
	t.Helper()

	opts = append([]Option{
		WithSynchronousAssembly(),
		WithClock(fixedClock(time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC))),
	}, opts...)
	sess := NewSession(opts...)

	if _, err := sess.Ingest(context.Background(), namedImages(t, n)); err != nil {
		t.Fatalf("Ingest() error: %v", err)
	}
	sess.SetOutputName("Album")
	return sess
}

func TestSession_Generate(t *testing.T) {
	t.Parallel()

	t.Run("assembles the working set into one document", func(t *testing.T) {
		t.Parallel()

		sess := loadedSession(t, 3)
		events, err := sess.Generate(context.Background())
		if err != nil {
			t.Fatalf("Generate() error: %v", err)
		}

		var done *Event
		terminals := 0
		for ev := range events {
			switch ev.Kind {
			case EventDone, EventError:
				terminals++
				done = &ev
			}
		}

		if terminals != 1 {
			t.Fatalf("terminal events = %d, want exactly 1", terminals)
		}
		if done.Kind != EventDone {
			t.Fatalf("terminal event = %+v, want EventDone", done)
		}
		if done.Name != "Album 20240601.pdf" {
			t.Errorf("name = %q, want \"Album 20240601.pdf\"", done.Name)
		}
		if done.Pages != 3 {
			t.Errorf("pages = %d, want 3", done.Pages)
		}
		if !bytes.HasPrefix(done.PDF, []byte("%PDF")) {
			t.Error("output does not start with the PDF magic")
		}
	})

	t.Run("gate checks in order", func(t *testing.T) {
		t.Parallel()

		empty := NewSession(WithSynchronousAssembly())
		if _, err := empty.Generate(context.Background()); !errors.Is(err, ErrEmptyWorkingSet) {
			t.Errorf("empty set: error = %v, want ErrEmptyWorkingSet", err)
		}

		unnamed := NewSession(WithSynchronousAssembly())
		unnamed.Ingest(context.Background(), namedImages(t, 1))
		if _, err := unnamed.Generate(context.Background()); !errors.Is(err, ErrEmptyOutputName) {
			t.Errorf("empty name: error = %v, want ErrEmptyOutputName", err)
		}

		blank := NewSession(WithSynchronousAssembly())
		blank.Ingest(context.Background(), namedImages(t, 1))
		blank.SetOutputName("   ")
		if _, err := blank.Generate(context.Background()); !errors.Is(err, ErrEmptyOutputName) {
			t.Errorf("blank name: error = %v, want ErrEmptyOutputName", err)
		}
	})

	t.Run("rejects submission while a job is in flight", func(t *testing.T) {
		t.Parallel()

		sess := loadedSession(t, 1)
		sess.mu.Lock()
		sess.inFlight = true
		sess.mu.Unlock()

		if _, err := sess.Generate(context.Background()); !errors.Is(err, ErrJobInFlight) {
			t.Errorf("error = %v, want ErrJobInFlight", err)
		}
		if sess.CanGenerate() {
			t.Error("CanGenerate() = true while in flight")
		}
	})

	t.Run("gate releases after success", func(t *testing.T) {
		t.Parallel()

		sess := loadedSession(t, 1)
		events, err := sess.Generate(context.Background())
		if err != nil {
			t.Fatalf("Generate() error: %v", err)
		}
		for range events {
		}

		if !sess.CanGenerate() {
			t.Error("CanGenerate() = false after job completed")
		}
		if _, err := sess.Generate(context.Background()); err != nil {
			t.Errorf("second Generate() error: %v", err)
		}
	})

	t.Run("gate releases after failure", func(t *testing.T) {
		t.Parallel()

		sess := NewSession(WithSynchronousAssembly())
		sess.Ingest(context.Background(), []SourceImage{
			{Name: "broken.jpg", MediaType: MediaTypeJPEG, Data: []byte("garbage")},
		})
		sess.SetOutputName("Broken")

		events, err := sess.Generate(context.Background())
		if err != nil {
			t.Fatalf("Generate() error: %v", err)
		}

		var last Event
		for ev := range events {
			last = ev
		}
		if last.Kind != EventError || !errors.Is(last.Err, ErrImageDecode) {
			t.Errorf("terminal event = %+v, want EventError with ErrImageDecode", last)
		}
		if !sess.CanGenerate() {
			t.Error("CanGenerate() = false after failed job")
		}
	})

	t.Run("invalid page settings fail before submission", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name string
			opt  Option
			want error
		}{
			{
				name: "unknown page size",
				opt:  WithPageSettings(PageSettings{Size: "tabloid", Orientation: OrientationPortrait}),
				want: ErrInvalidPageSize,
			},
			{
				name: "unknown orientation",
				opt:  WithPageSettings(PageSettings{Size: PageSizeA4, Orientation: "diagonal"}),
				want: ErrInvalidOrientation,
			},
			{
				name: "margin out of range",
				opt:  WithPageSettings(PageSettings{Size: PageSizeA4, Orientation: OrientationPortrait, Margin: 60}),
				want: ErrInvalidMargin,
			},
			{
				name: "quality out of range",
				opt:  WithJPEGQuality(5),
				want: ErrInvalidQuality,
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()

				sess := loadedSession(t, 1, tt.opt)
				if _, err := sess.Generate(context.Background()); !errors.Is(err, tt.want) {
					t.Errorf("Generate() error = %v, want %v", err, tt.want)
				}
			})
		}
	})

	t.Run("background job signals over the channel", func(t *testing.T) {
		t.Parallel()

		sess := NewSession(WithClock(fixedClock(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))))
		sess.Ingest(context.Background(), namedImages(t, 2))
		sess.SetOutputName("Async")

		events, err := sess.Generate(context.Background())
		if err != nil {
			t.Fatalf("Generate() error: %v", err)
		}

		var last Event
		for ev := range events {
			last = ev
		}
		if last.Kind != EventDone || last.Pages != 2 {
			t.Errorf("terminal event = %+v, want EventDone with 2 pages", last)
		}
		if !sess.CanGenerate() {
			t.Error("CanGenerate() = false after background job drained")
		}
	})

	t.Run("trigger callback tracks the gate", func(t *testing.T) {
		t.Parallel()

		var states []bool
		sess := NewSession(
			WithSynchronousAssembly(),
			WithTriggerState(func(enabled bool) { states = append(states, enabled) }),
		)
		sess.Ingest(context.Background(), namedImages(t, 1))
		sess.SetOutputName("Tracked")

		events, err := sess.Generate(context.Background())
		if err != nil {
			t.Fatalf("Generate() error: %v", err)
		}
		for range events {
		}

		// The gate went false at submission and true again on completion.
		sawDisabled := false
		for _, enabled := range states {
			if !enabled {
				sawDisabled = true
			}
		}
		if !sawDisabled {
			t.Errorf("trigger states = %v, want a false during the job", states)
		}
		if !states[len(states)-1] {
			t.Errorf("trigger states = %v, want final true", states)
		}
	})
}

func TestSession_JobSnapshot(t *testing.T) {
	t.Parallel()

	// The job snapshots the set at submission: removing images while the
	// channel is still undrained must not change the finished document.
	sess := loadedSession(t, 3)
	events, err := sess.Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	sess.Remove(0)
	sess.Remove(0)

	var last Event
	for ev := range events {
		last = ev
	}
	if last.Kind != EventDone || last.Pages != 3 {
		t.Errorf("terminal event = %+v, want EventDone with the 3 snapshotted pages", last)
	}
}

func TestSession_CanGenerate(t *testing.T) {
	t.Parallel()

	sess := NewSession()
	if sess.CanGenerate() {
		t.Error("empty session: CanGenerate() = true")
	}

	sess.Ingest(context.Background(), namedImages(t, 1))
	if sess.CanGenerate() {
		t.Error("no output name: CanGenerate() = true")
	}

	sess.SetOutputName("Ready")
	if !sess.CanGenerate() {
		t.Error("ready session: CanGenerate() = false")
	}

	sess.SetOutputName(" ")
	if sess.CanGenerate() {
		t.Error("blank output name: CanGenerate() = true")
	}

	sess.SetOutputName("Ready")
	sess.Remove(0)
	if sess.CanGenerate() {
		t.Error("emptied session: CanGenerate() = true")
	}
}

func TestSession_Thumbnail(t *testing.T) {
	t.Parallel()

	t.Run("out of range reports false", func(t *testing.T) {
		t.Parallel()

		sess := NewSession()
		if _, ok := sess.Thumbnail(0); ok {
			t.Error("Thumbnail(0) on empty session ok = true")
		}
	})

	t.Run("placeholder first, cached preview after generation", func(t *testing.T) {
		t.Parallel()

		sess := NewSession()
		sess.Thumbnails().spawn = func(fn func()) { fn() }
		sess.Ingest(context.Background(), namedImages(t, 1))

		thumb, ok := sess.Thumbnail(0)
		if !ok {
			t.Fatal("Thumbnail(0) ok = false")
		}
		if !bytes.Equal(thumb, PlaceholderThumb()) {
			t.Error("first call did not return the placeholder")
		}

		thumb, ok = sess.Thumbnail(0)
		if !ok || bytes.Equal(thumb, PlaceholderThumb()) {
			t.Error("second call did not return the generated preview")
		}
	})

	t.Run("stale generation for an off-screen row is dropped", func(t *testing.T) {
		t.Parallel()

		sess := NewSession()
		sess.Thumbnails().spawn = func(fn func()) { fn() }
		sess.Ingest(context.Background(), namedImages(t, 30))
		sess.Select(0)
		sess.SetVisible(RowRange{Start: 0, End: 9})

		sess.Thumbnail(25)
		if _, ok := sess.Thumbnails().Peek(25); ok {
			t.Error("off-screen preview was cached")
		}

		sess.Thumbnail(5)
		if _, ok := sess.Thumbnails().Peek(5); !ok {
			t.Error("visible preview was not cached")
		}
	})

	t.Run("sweep retains visible and selected rows", func(t *testing.T) {
		t.Parallel()

		sess := NewSession()
		sess.Ingest(context.Background(), namedImages(t, 30))
		sess.Select(25)
		sess.SetVisible(RowRange{Start: 0, End: 4})

		cache := sess.Thumbnails()
		for k := 0; k < 30; k++ {
			cache.entries[k] = []byte{byte(k)}
		}

		evicted := cache.Sweep(sess.displayedIndex)

		if evicted != 24 {
			t.Errorf("evicted = %d, want 24", evicted)
		}
		for _, k := range []int{0, 1, 2, 3, 4, 25} {
			if _, ok := cache.Peek(k); !ok {
				t.Errorf("retained entry %d missing", k)
			}
		}
	})
}

func TestSession_Clear(t *testing.T) {
	t.Parallel()

	sess := NewSession()
	sess.Ingest(context.Background(), namedImages(t, 3))

	if sess.Clear(false) {
		t.Error("unconfirmed Clear returned true")
	}
	if sess.Len() != 3 {
		t.Errorf("len = %d after unconfirmed clear, want 3", sess.Len())
	}

	if !sess.Clear(true) {
		t.Error("confirmed Clear returned false")
	}
	if sess.Len() != 0 || sess.Selection() != NoSelection {
		t.Errorf("len=%d selection=%d after clear, want 0 and %d",
			sess.Len(), sess.Selection(), NoSelection)
	}
	if sess.Thumbnails().Len() != 0 {
		t.Errorf("cache len = %d after clear, want 0", sess.Thumbnails().Len())
	}
}
