// Package watcher keeps an index current by watching its target tree and
// running an incremental update after each burst of file events settles.
package watcher

import (
	"sync"
	"time"
)

// Debouncer coalesces rapid event bursts: Trigger restarts a quiet-window
// timer, and C fires once per settled burst. This prevents index thrashing
// while a build or editor is writing many files.
type Debouncer struct {
	window time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	fire    chan struct{}
	stopped bool
}

// NewDebouncer creates a debouncer with the given quiet window.
func NewDebouncer(window time.Duration) *Debouncer {
	return &Debouncer{
		window: window,
		fire:   make(chan struct{}, 1),
	}
}

// C fires once after each burst of triggers has been quiet for the window.
func (d *Debouncer) C() <-chan struct{} {
	return d.fire
}

// Trigger notes an event, restarting the quiet window.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, func() {
		select {
		case d.fire <- struct{}{}:
		default:
			// A pending fire already covers this burst.
		}
	})
}

// Stop cancels any pending fire.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
