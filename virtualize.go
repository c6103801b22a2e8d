package img2pdf

import (
	"sync"
	"time"
)

// Virtualization constants.
const (
	// RowBuffer is the number of extra rows rendered above and below the
	// viewport.
	RowBuffer = 5

	// FullRenderMax is the largest set rendered without virtualization;
	// below this, virtualization overhead outweighs its benefit.
	FullRenderMax = 20

	// DefaultScrollDebounce is the coalescing window for scroll-driven
	// re-renders.
	DefaultScrollDebounce = 50 * time.Millisecond
)

// Viewport describes the visible list geometry: total height and fixed
// row height, both in the same unit (pixels).
type Viewport struct {
	Height    int
	RowHeight int
	Buffer    int // rows of overscan on each side; RowBuffer if zero
}

// RowRange is an inclusive range of visible row indices.
// Start > End means nothing is rendered (empty set).
type RowRange struct {
	Start int
	End   int
}

// Empty reports whether the range contains no rows.
func (r RowRange) Empty() bool { return r.Start > r.End }

// Count returns the number of rows in the range.
func (r RowRange) Count() int {
	if r.Empty() {
		return 0
	}
	return r.End - r.Start + 1
}

// Contains reports whether index falls inside the range.
func (r RowRange) Contains(index int) bool {
	return index >= r.Start && index <= r.End
}

// VisibleRange computes the rows to render for n total rows at the given
// scroll offset. The range carries a buffer margin on both sides and is
// always contained in [0, n-1] and contiguous; its size is independent
// of n for large n. Small sets (n <= FullRenderMax) and ranges that
// would cover the whole list fall back to rendering everything.
func (v Viewport) VisibleRange(n, scroll int) RowRange {
	if n <= 0 {
		return RowRange{Start: 0, End: -1}
	}
	if n <= FullRenderMax {
		return RowRange{Start: 0, End: n - 1}
	}
	// A viewport without row geometry cannot virtualize; render everything.
	if v.RowHeight <= 0 {
		return RowRange{Start: 0, End: n - 1}
	}

	buffer := v.Buffer
	if buffer <= 0 {
		buffer = RowBuffer
	}
	if scroll < 0 {
		scroll = 0
	}

	start := scroll/v.RowHeight - buffer
	if start < 0 {
		start = 0
	}
	end := (scroll+v.Height)/v.RowHeight + buffer
	if end > n-1 {
		end = n - 1
	}

	// Range covers the whole list anyway: render it all.
	if end-start+1 >= n {
		return RowRange{Start: 0, End: n - 1}
	}
	return RowRange{Start: start, End: end}
}

// SpacerHeights returns the heights of the single spacer elements that
// stand in for the skipped rows above and below r, keeping the
// scrollable extent (and so the scrollbar proportion) correct for the
// true row count n.
func (v Viewport) SpacerHeights(n int, r RowRange) (top, bottom int) {
	if r.Empty() {
		return 0, 0
	}
	top = r.Start * v.RowHeight
	bottom = (n - 1 - r.End) * v.RowHeight
	return top, bottom
}

// ScrollIntoView returns the minimal scroll offset that brings index
// fully into view: scrolls up if the row is above the viewport, down if
// below, and leaves the offset unchanged when the row is already fully
// visible.
func (v Viewport) ScrollIntoView(scroll, index int) int {
	rowTop := index * v.RowHeight
	rowBottom := rowTop + v.RowHeight

	switch {
	case rowTop < scroll:
		return rowTop
	case rowBottom > scroll+v.Height:
		return rowBottom - v.Height
	default:
		return scroll
	}
}

// Debouncer coalesces bursts of triggers into a single callback after a
// quiet window, used to batch scroll-driven re-renders.
type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	timer *time.Timer
}

// NewDebouncer creates a debouncer with the given quiet window.
// A non-positive delay falls back to DefaultScrollDebounce.
func NewDebouncer(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultScrollDebounce
	}
	return &Debouncer{delay: delay}
}

// Trigger schedules fn after the quiet window, replacing any previously
// scheduled call.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, fn)
}

// Stop cancels any pending call.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
