package store

import "sync"

// hub fans state snapshots out to subscribers
type hub[S any] struct {
	mu     sync.Mutex
	subs   map[int]func(S)
	nextID int
}

func (h *hub[S]) subscribe(fn func(S)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subs == nil {
		h.subs = make(map[int]func(S))
	}
	id := h.nextID
	h.nextID++
	h.subs[id] = fn

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subs, id)
	}
}

// publish must be called without the store lock held
func (h *hub[S]) publish(state S) {
	h.mu.Lock()
	fns := make([]func(S), 0, len(h.subs))
	for _, fn := range h.subs {
		fns = append(fns, fn)
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(state)
	}
}
