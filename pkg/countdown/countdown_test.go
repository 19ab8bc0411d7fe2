package countdown

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastTimer(seconds int) *Timer {
	t := New(seconds)
	t.interval = time.Millisecond
	return t
}

type observed struct {
	mu     sync.Mutex
	states []int
	done   int
}

func (o *observed) tick(n int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.states = append(o.states, n)
}

func (o *observed) finish() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.done++
}

func (o *observed) snapshot() ([]int, int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]int(nil), o.states...), o.done
}

func TestTimer_SixtyProducesSixtyOneStates(t *testing.T) {
	timer := fastTimer(60)
	obs := &observed{}
	timer.OnTick(obs.tick)
	timer.OnDone(obs.finish)

	timer.Start()
	require.Eventually(t, func() bool { _, done := obs.snapshot(); return done == 1 }, 5*time.Second, time.Millisecond)
	time.Sleep(10 * time.Millisecond)

	states, done := obs.snapshot()
	require.Len(t, states, 61)
	for i, s := range states {
		assert.Equal(t, 60-i, s)
	}
	assert.Equal(t, 1, done)
	assert.True(t, timer.CanResend())
	assert.False(t, timer.Running())
}

func TestTimer_ResendOnlyAtZero(t *testing.T) {
	timer := fastTimer(3)
	var mu sync.Mutex
	var checks []bool
	timer.OnTick(func(n int) {
		mu.Lock()
		defer mu.Unlock()
		checks = append(checks, n == 0)
	})

	assert.True(t, timer.CanResend())
	timer.Start()
	assert.False(t, timer.CanResend())
	require.Eventually(t, timer.CanResend, time.Second, time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []bool{false, false, false, true}, checks)
}

func TestTimer_RestartResets(t *testing.T) {
	timer := New(5)
	timer.interval = 20 * time.Millisecond
	obs := &observed{}
	timer.OnTick(obs.tick)
	timer.OnDone(obs.finish)

	timer.Start()
	require.Eventually(t, func() bool { return timer.Remaining() <= 4 }, time.Second, time.Millisecond)
	timer.Start()

	assert.Equal(t, 5, timer.Remaining())
	assert.False(t, timer.CanResend())

	require.Eventually(t, timer.CanResend, 2*time.Second, time.Millisecond)
	time.Sleep(50 * time.Millisecond)

	_, done := obs.snapshot()
	assert.Equal(t, 1, done)
}

func TestTimer_Stop(t *testing.T) {
	timer := New(5)
	timer.interval = 5 * time.Millisecond

	timer.Start()
	timer.Stop()
	remaining := timer.Remaining()
	time.Sleep(30 * time.Millisecond)

	assert.Equal(t, remaining, timer.Remaining())
	assert.False(t, timer.Running())
	assert.False(t, timer.CanResend())
}

func TestNew_Default(t *testing.T) {
	timer := New(0)
	assert.Equal(t, DefaultSeconds, timer.start)
	assert.Equal(t, time.Second, timer.interval)
}
