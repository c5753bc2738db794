// Package observe provides an explicit reactive state container.
// Subscribers are notified synchronously, in subscription order, on every Set.
package observe

import "sync"

// Value holds a single value of type T and notifies subscribers on change.
// It is safe for concurrent use; callbacks run on the goroutine that called Set
// and must not call Set on the same Value.
type Value[T any] struct {
	mu     sync.RWMutex
	v      T
	nextID int
	subs   []subscriber[T]
}

type subscriber[T any] struct {
	id int
	fn func(T)
}

// NewValue creates a Value holding initial.
func NewValue[T any](initial T) *Value[T] {
	return &Value[T]{v: initial}
}

// Get returns the current value.
func (o *Value[T]) Get() T {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.v
}

// Set stores v and notifies subscribers.
func (o *Value[T]) Set(v T) {
	o.mu.Lock()
	o.v = v
	subs := make([]subscriber[T], len(o.subs))
	copy(subs, o.subs)
	o.mu.Unlock()

	for _, s := range subs {
		s.fn(v)
	}
}

// Update applies fn to the current value and stores the result atomically
// with respect to other Update/Set calls, then notifies subscribers.
func (o *Value[T]) Update(fn func(T) T) T {
	o.mu.Lock()
	o.v = fn(o.v)
	v := o.v
	subs := make([]subscriber[T], len(o.subs))
	copy(subs, o.subs)
	o.mu.Unlock()

	for _, s := range subs {
		s.fn(v)
	}
	return v
}

// Subscribe registers fn for future changes and returns a function that removes it.
// fn is not called with the current value.
func (o *Value[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	o.mu.Lock()
	defer o.mu.Unlock()

	id := o.nextID
	o.nextID++
	o.subs = append(o.subs, subscriber[T]{id: id, fn: fn})

	return func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		for i, s := range o.subs {
			if s.id == id {
				o.subs = append(o.subs[:i], o.subs[i+1:]...)
				return
			}
		}
	}
}
