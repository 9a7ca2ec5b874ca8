// Package observe provides a single-producer, multi-consumer broadcast value.
//
// A Value holds the latest state of something observable (connectivity,
// the active search query, the selected category). Subscribers receive the
// current value immediately and every later change. Delivery never blocks
// the producer: each subscriber has a one-slot mailbox and a slow
// subscriber only ever sees the most recent value.
package observe

import (
	"sync"
)

// Value is a broadcast value. The zero value is not usable; use NewValue.
type Value[T comparable] struct {
	mu     sync.Mutex
	cur    T
	subs   map[int]chan T
	nextID int
	closed bool
}

// NewValue creates a Value holding initial.
func NewValue[T comparable](initial T) *Value[T] {
	return &Value[T]{
		cur:  initial,
		subs: make(map[int]chan T),
	}
}

// Get returns the current value.
func (v *Value[T]) Get() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cur
}

// Set stores x and publishes it to subscribers if it differs from the
// current value. It reports whether the value changed.
func (v *Value[T]) Set(x T) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed || v.cur == x {
		return false
	}
	v.cur = x
	for _, ch := range v.subs {
		offer(ch, x)
	}
	return true
}

// Subscribe returns a channel that receives the current value at once and
// then every change. The returned cancel func unsubscribes and closes the
// channel; it is safe to call more than once.
func (v *Value[T]) Subscribe() (<-chan T, func()) {
	v.mu.Lock()
	defer v.mu.Unlock()

	ch := make(chan T, 1)
	if v.closed {
		close(ch)
		return ch, func() {}
	}

	id := v.nextID
	v.nextID++
	v.subs[id] = ch
	ch <- v.cur

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			v.mu.Lock()
			defer v.mu.Unlock()
			if c, ok := v.subs[id]; ok {
				delete(v.subs, id)
				close(c)
			}
		})
	}
}

// Subscribers returns the number of active subscriptions.
func (v *Value[T]) Subscribers() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.subs)
}

// Close unsubscribes everyone. Later Sets are ignored.
func (v *Value[T]) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	v.closed = true
	for id, ch := range v.subs {
		delete(v.subs, id)
		close(ch)
	}
}

// offer replaces whatever is waiting in the mailbox with x.
// Must be called with the Value's lock held; only the producer sends.
func offer[T any](ch chan T, x T) {
	select {
	case <-ch:
	default:
	}
	ch <- x
}
