package notes

import (
	"sync"
	"time"
)

// DefaultQuiet is the quiet period after the last edit before the
// buffered note is flushed.
const DefaultQuiet = 300 * time.Millisecond

// Debouncer coalesces note edits into one pending write: each edit
// buffers the latest content and restarts the quiet window; when the
// window elapses with no further edits, flush is called exactly once
// with the latest buffered value. This avoids a remote write per
// keystroke.
type Debouncer struct {
	mu     sync.Mutex
	quiet  time.Duration
	timer  *time.Timer
	latest string
	flush  func(content string)
}

func NewDebouncer(quiet time.Duration, flush func(content string)) *Debouncer {
	if quiet <= 0 {
		quiet = DefaultQuiet
	}
	return &Debouncer{quiet: quiet, flush: flush}
}

// Edit buffers content and restarts the quiet window.
func (d *Debouncer) Edit(content string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.latest = content
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.quiet, d.fire)
}

// Flush forces the pending write out immediately, if one is waiting.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer == nil || !d.timer.Stop() {
		d.mu.Unlock()
		return
	}
	d.mu.Unlock()
	d.fire()
}

// Stop drops any pending write without flushing it.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	content := d.latest
	d.timer = nil
	d.mu.Unlock()
	d.flush(content)
}
