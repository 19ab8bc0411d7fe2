package countdown

import (
	"sync"
	"time"
)

// DefaultSeconds is the wait before a verification code can be resent
const DefaultSeconds = 60

// Timer counts down once per tick. Resend is allowed only at zero.
type Timer struct {
	start    int
	interval time.Duration

	mu        sync.Mutex
	remaining int
	running   bool
	stop      chan struct{}
	onTick    []func(remaining int)
	onDone    []func()
}

// New creates a timer that counts down from seconds. A fresh timer allows resend.
func New(seconds int) *Timer {
	if seconds <= 0 {
		seconds = DefaultSeconds
	}
	return &Timer{start: seconds, interval: time.Second}
}

// OnTick registers fn for every observable value, including the start value
func (t *Timer) OnTick(fn func(remaining int)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onTick = append(t.onTick, fn)
}

// OnDone registers fn for the moment the countdown reaches zero
func (t *Timer) OnDone(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onDone = append(t.onDone, fn)
}

// Start resets to the start value and disables resend immediately.
// A running countdown is replaced.
func (t *Timer) Start() {
	t.mu.Lock()
	if t.stop != nil {
		close(t.stop)
	}
	stop := make(chan struct{})
	t.stop = stop
	t.remaining = t.start
	t.running = true
	ticks := append([]func(int){}, t.onTick...)
	t.mu.Unlock()

	for _, fn := range ticks {
		fn(t.start)
	}
	go t.loop(stop)
}

// Stop halts the countdown where it is
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
	t.running = false
}

func (t *Timer) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}

// CanResend is true exactly when the countdown is at zero
func (t *Timer) CanResend() bool {
	return t.Remaining() == 0
}

func (t *Timer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

func (t *Timer) loop(stop chan struct{}) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		t.mu.Lock()
		// replaced by a newer Start or halted by Stop
		if t.stop != stop {
			t.mu.Unlock()
			return
		}
		t.remaining--
		remaining := t.remaining
		ticks := append([]func(int){}, t.onTick...)
		var done []func()
		if remaining == 0 {
			t.running = false
			t.stop = nil
			done = append(done, t.onDone...)
		}
		t.mu.Unlock()

		for _, fn := range ticks {
			fn(remaining)
		}
		for _, fn := range done {
			fn()
		}
		if remaining == 0 {
			return
		}
	}
}
