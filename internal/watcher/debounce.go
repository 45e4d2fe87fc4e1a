package watcher

import (
	"sort"
	"sync"
	"time"
)

// Debouncer collects paths until activity has been quiet for the delay, then
// hands the whole set to the callback at once. Every Add restarts the quiet
// period, so a burst of events produces a single callback.
type Debouncer struct {
	delay    time.Duration
	pending  map[string]struct{}
	timer    *time.Timer
	callback func(paths []string)
	mu       sync.Mutex
}

// NewDebouncer creates a new Debouncer with the specified delay and callback.
func NewDebouncer(delay time.Duration, callback func(paths []string)) *Debouncer {
	return &Debouncer{
		delay:    delay,
		pending:  make(map[string]struct{}),
		callback: callback,
	}
}

// Add records path and restarts the quiet period.
func (d *Debouncer) Add(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending[path] = struct{}{}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fire)
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	paths := make([]string, 0, len(d.pending))
	for p := range d.pending {
		paths = append(paths, p)
	}
	d.pending = make(map[string]struct{})
	d.timer = nil
	d.mu.Unlock()

	if len(paths) == 0 || d.callback == nil {
		return
	}
	sort.Strings(paths)
	// The callback runs outside the lock so it may call Add.
	d.callback(paths)
}

// CancelAll drops every pending path and stops the timer.
func (d *Debouncer) CancelAll() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = make(map[string]struct{})
}

// PendingCount returns the number of paths waiting for the quiet period.
func (d *Debouncer) PendingCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// IsPending returns true if the specified path is waiting for the quiet period.
func (d *Debouncer) IsPending(path string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, exists := d.pending[path]
	return exists
}
