package search

import (
	"sync"
	"time"
)

// DefaultDebounce is how long input must stay unchanged before it is published
const DefaultDebounce = 300 * time.Millisecond

// Debouncer publishes the latest input once it has been stable for the interval
type Debouncer struct {
	interval time.Duration
	publish  func(string)

	mu        sync.Mutex
	timer     *time.Timer
	seq       uint64
	pending   string
	value     string
	published bool
	stopped   bool
}

// NewDebouncer calls publish with each settled value that differs from the last one
func NewDebouncer(interval time.Duration, publish func(string)) *Debouncer {
	if interval <= 0 {
		interval = DefaultDebounce
	}
	return &Debouncer{interval: interval, publish: publish}
}

// Set records raw input and restarts the quiet period
func (d *Debouncer) Set(q string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	seq := d.seq
	d.pending = q
	d.timer = time.AfterFunc(d.interval, func() { d.fire(seq, q) })
}

// Value is the last published value
func (d *Debouncer) Value() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.value
}

// Stop cancels any pending publish. Set is ignored afterwards.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	d.seq++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Flush publishes pending input now instead of waiting out the interval
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.stopped || d.timer == nil {
		d.mu.Unlock()
		return
	}
	d.timer.Stop()
	d.timer = nil
	d.seq++
	d.fireLocked(d.pending)
}

func (d *Debouncer) fire(seq uint64, q string) {
	d.mu.Lock()
	// a timer that lost the race with Stop or a newer Set
	if seq != d.seq || d.stopped {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.fireLocked(q)
}

// fireLocked publishes q unless it was the last value published. It
// releases d.mu before calling out.
func (d *Debouncer) fireLocked(q string) {
	if d.published && q == d.value {
		d.mu.Unlock()
		return
	}
	d.value = q
	d.published = true
	d.mu.Unlock()

	d.publish(q)
}
