package img2pdf

import (
	"sort"
	"sync"
	"time"
)

// DefaultSweepInterval is how often the periodic eviction sweep runs.
const DefaultSweepInterval = 30 * time.Second

// ThumbCache maps working-set indices to rendered previews. Entries are
// positional, not identity-based: the working set re-keys them through
// the Reindexer interface on every structural mutation, so an entry
// never shows under the wrong row.
//
// Generation is fire-and-forget and idempotent; a race between an
// eviction sweep and an in-flight generation costs at most one wasted
// render. All methods are safe for concurrent use.
type ThumbCache struct {
	mu      sync.Mutex
	entries map[int][]byte

	renderer  Thumbnailer
	spawn     func(func())   // generation scheduler, goroutine by default
	displayed func(int) bool // nil means always displayed
	onUpdate  func(int, []byte)
}

// NewThumbCache creates an empty cache using the given renderer.
func NewThumbCache(renderer Thumbnailer) *ThumbCache {
	return &ThumbCache{
		entries:  make(map[int][]byte),
		renderer: renderer,
		spawn:    func(fn func()) { go fn() },
	}
}

// SetDisplayed installs the predicate consulted when an asynchronous
// generation completes: results for indices no longer displayed are
// dropped, preventing stale writes after removals or reorders.
func (c *ThumbCache) SetDisplayed(fn func(index int) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.displayed = fn
}

// SetOnUpdate installs the hook invoked when a generated preview is
// stored, so a renderer can update the row in place.
func (c *ThumbCache) SetOnUpdate(fn func(index int, thumb []byte)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUpdate = fn
}

// Get returns the cached preview for index immediately if present.
// Otherwise it returns the shared placeholder, schedules asynchronous
// generation from src, and reports false. Generation failures are
// swallowed; the placeholder simply remains.
func (c *ThumbCache) Get(index int, src *SourceImage) (thumb []byte, cached bool) {
	c.mu.Lock()
	if entry, ok := c.entries[index]; ok {
		c.mu.Unlock()
		return entry, true
	}
	spawn := c.spawn
	c.mu.Unlock()

	spawn(func() { c.generate(index, src) })
	return PlaceholderThumb(), false
}

func (c *ThumbCache) generate(index int, src *SourceImage) {
	thumb, err := c.renderer.Render(src)
	if err != nil {
		return
	}

	// Consult the predicate outside the lock: it may call back into the
	// session. The small race with a concurrent removal is tolerated,
	// regeneration is idempotent.
	c.mu.Lock()
	displayed := c.displayed
	c.mu.Unlock()
	if displayed != nil && !displayed(index) {
		return
	}

	c.mu.Lock()
	c.entries[index] = thumb
	onUpdate := c.onUpdate
	c.mu.Unlock()

	if onUpdate != nil {
		onUpdate(index, thumb)
	}
}

// Len returns the number of cached entries.
func (c *ThumbCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Peek returns the cached entry without scheduling generation.
func (c *ThumbCache) Peek(index int) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[index]
	return entry, ok
}

// SwapAt implements Reindexer: entries follow their rows through a swap.
func (c *ThumbCache) SwapAt(i, j int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ei, okI := c.entries[i]
	ej, okJ := c.entries[j]

	delete(c.entries, i)
	delete(c.entries, j)
	if okI {
		c.entries[j] = ei
	}
	if okJ {
		c.entries[i] = ej
	}
}

// RemoveAt implements Reindexer: the entry at i is dropped and every
// entry above shifts down one index (re-keyed, not re-rendered).
func (c *ThumbCache) RemoveAt(i int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, i)

	// Re-key ascending so no shift overwrites a surviving entry.
	var above []int
	for k := range c.entries {
		if k > i {
			above = append(above, k)
		}
	}
	sort.Ints(above)
	for _, k := range above {
		c.entries[k-1] = c.entries[k]
		delete(c.entries, k)
	}
}

// Clear implements Reindexer.
func (c *ThumbCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[int][]byte)
}

// Sweep removes every entry whose index is not retained and returns the
// number of evicted entries. The retention set is typically
// "visible ∪ selected", recomputed by the caller on each sweep, which
// bounds cache memory to the viewport size.
func (c *ThumbCache) Sweep(retain func(index int) bool) int {
	// Snapshot the keys first: retain may call back into the session,
	// so it must run outside the cache lock.
	c.mu.Lock()
	keys := make([]int, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	c.mu.Unlock()

	evicted := 0
	for _, k := range keys {
		if retain(k) {
			continue
		}
		c.mu.Lock()
		if _, ok := c.entries[k]; ok {
			delete(c.entries, k)
			evicted++
		}
		c.mu.Unlock()
	}
	return evicted
}

// SweepEvery runs Sweep on a fixed interval until the returned stop
// function is called.
func (c *ThumbCache) SweepEvery(interval time.Duration, retain func(index int) bool) (stop func()) {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.C:
				c.Sweep(retain)
			case <-done:
				return
			}
		}
	}()

	return func() {
		ticker.Stop()
		close(done)
	}
}
