package img2pdf

// Reindexer receives positional re-keying events from working-set
// mutations. The thumbnail cache implements it so that index-keyed
// entries stay paired with their rows through every swap and removal.
type Reindexer interface {
	// SwapAt exchanges the entries at i and j, if present.
	SwapAt(i, j int)
	// RemoveAt drops the entry at i and shifts every entry above it
	// down by one.
	RemoveAt(i int)
	// Clear drops all entries.
	Clear()
}

// NoSelection is the selection value when no item is selected.
const NoSelection = -1

// WorkingSet is the ordered collection of images pending assembly.
// Indices are dense [0..n); the selection is either NoSelection or a
// valid index and is re-clamped whenever the set shrinks.
//
// A WorkingSet is not safe for concurrent use; it models the state of a
// single interactive session.
type WorkingSet struct {
	images    []*SourceImage
	selection int
	reindexer Reindexer
}

// NewWorkingSet creates an empty working set. The reindexer may be nil
// when no positional cache is attached.
func NewWorkingSet(r Reindexer) *WorkingSet {
	return &WorkingSet{
		selection: NoSelection,
		reindexer: r,
	}
}

// Len returns the number of images in the set.
func (w *WorkingSet) Len() int {
	return len(w.images)
}

// At returns the image at index i, or false when out of range.
func (w *WorkingSet) At(i int) (*SourceImage, bool) {
	if i < 0 || i >= len(w.images) {
		return nil, false
	}
	return w.images[i], true
}

// Selection returns the current selection index, or NoSelection.
func (w *WorkingSet) Selection() int {
	return w.selection
}

// Select sets the selection. Out-of-range indices are ignored;
// NoSelection clears the selection.
func (w *WorkingSet) Select(i int) {
	if i == NoSelection || (i >= 0 && i < len(w.images)) {
		w.selection = i
	}
}

// Append adds images to the end, preserving relative input order.
// No deduplication. If nothing was selected, the selection moves to the
// first appended image.
func (w *WorkingSet) Append(images ...*SourceImage) {
	if len(images) == 0 {
		return
	}

	first := len(w.images)
	w.images = append(w.images, images...)

	if w.selection == NoSelection {
		w.selection = first
	}
}

// MoveUp swaps the image at i with its predecessor. No-op at index 0 or
// out of range. The paired cache entries are swapped in the same call,
// and the selection follows whichever of the pair it pointed at.
func (w *WorkingSet) MoveUp(i int) bool {
	if i <= 0 || i >= len(w.images) {
		return false
	}
	w.swap(i-1, i)
	return true
}

// MoveDown swaps the image at i with its successor. No-op at the last
// index or out of range.
func (w *WorkingSet) MoveDown(i int) bool {
	if i < 0 || i >= len(w.images)-1 {
		return false
	}
	w.swap(i, i+1)
	return true
}

func (w *WorkingSet) swap(i, j int) {
	w.images[i], w.images[j] = w.images[j], w.images[i]
	if w.reindexer != nil {
		w.reindexer.SwapAt(i, j)
	}

	switch w.selection {
	case i:
		w.selection = j
	case j:
		w.selection = i
	}
}

// Remove deletes the image at i; entries above shift down by one, and
// the cache is re-keyed to match. The selection is re-clamped: removing
// the selected item selects min(i, len-1), removing below the selection
// shifts it down, and an empty set clears it. Out-of-range indices are
// no-ops.
func (w *WorkingSet) Remove(i int) bool {
	if i < 0 || i >= len(w.images) {
		return false
	}

	w.images = append(w.images[:i], w.images[i+1:]...)
	if w.reindexer != nil {
		w.reindexer.RemoveAt(i)
	}

	switch {
	case len(w.images) == 0:
		w.selection = NoSelection
	case w.selection == i:
		w.selection = min(i, len(w.images)-1)
	case w.selection > i:
		w.selection--
	}
	return true
}

// Clear empties the set and the attached cache and clears the selection.
// Callers gate this behind explicit user confirmation; see
// Session.Clear.
func (w *WorkingSet) Clear() {
	w.images = nil
	w.selection = NoSelection
	if w.reindexer != nil {
		w.reindexer.Clear()
	}
}

// Snapshot returns a copy of the current order for job submission.
// Later mutations of the set do not affect the returned slice.
func (w *WorkingSet) Snapshot() []*SourceImage {
	out := make([]*SourceImage, len(w.images))
	copy(out, w.images)
	return out
}
