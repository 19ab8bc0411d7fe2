package mutation

import "sync"

// FailurePolicy decides what an optimistic value does when the server says no
type FailurePolicy int

const (
	// KeepOnFailure leaves the optimistic value in place
	KeepOnFailure FailurePolicy = iota
	// RollbackOnFailure restores the value recorded before Apply
	RollbackOnFailure
)

// Optimistic is a value updated before the server confirms it
type Optimistic[T any] struct {
	mu      sync.Mutex
	value   T
	prev    T
	pending bool
	policy  FailurePolicy
}

func NewOptimistic[T any](initial T, policy FailurePolicy) *Optimistic[T] {
	return &Optimistic[T]{value: initial, policy: policy}
}

// Get returns the current value
func (o *Optimistic[T]) Get() T {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.value
}

// Reset sets the value outright, e.g. after loading server state
func (o *Optimistic[T]) Reset(v T) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.value = v
	o.pending = false
}

// Apply sets next and returns the value it replaced
func (o *Optimistic[T]) Apply(next T) T {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.prev = o.value
	o.value = next
	o.pending = true
	return o.prev
}

// Update applies fn to the current value under the lock and returns (prev, next)
func (o *Optimistic[T]) Update(fn func(T) T) (T, T) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.prev = o.value
	o.value = fn(o.value)
	o.pending = true
	return o.prev, o.value
}

// Commit accepts the optimistic value
func (o *Optimistic[T]) Commit() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pending = false
}

// Fail applies the failure policy and returns the resulting value
func (o *Optimistic[T]) Fail() T {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.pending && o.policy == RollbackOnFailure {
		o.value = o.prev
	}
	o.pending = false
	return o.value
}

// Pending reports whether a change awaits Commit or Fail
func (o *Optimistic[T]) Pending() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.pending
}
