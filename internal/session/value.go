package session

import "sync"

// Value holds the latest value of T and fans every change out to subscribers.
// A new subscriber immediately receives the current value. Each subscriber
// has a one-slot buffer that always holds the newest undelivered value, so
// Set never blocks and a slow reader only skips intermediate values.
type Value[T any] struct {
	mu   sync.Mutex
	cur  T
	subs map[*Subscription[T]]struct{}
}

// NewValue returns a Value holding initial.
func NewValue[T any](initial T) *Value[T] {
	return &Value[T]{cur: initial, subs: make(map[*Subscription[T]]struct{})}
}

// Get returns the latest value.
func (v *Value[T]) Get() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cur
}

// Set stores val and offers it to every subscriber.
func (v *Value[T]) Set(val T) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.cur = val
	for s := range v.subs {
		s.offer(val)
	}
}

// Subscribe registers a new subscriber primed with the current value.
func (v *Value[T]) Subscribe() *Subscription[T] {
	s := &Subscription[T]{ch: make(chan T, 1), parent: v}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.subs[s] = struct{}{}
	s.offer(v.cur)
	return s
}

func (v *Value[T]) remove(s *Subscription[T]) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.subs[s]; ok {
		delete(v.subs, s)
		close(s.ch)
	}
}

// Subscription is one reader of a Value.
type Subscription[T any] struct {
	ch     chan T
	parent *Value[T]
}

// C delivers values. It is closed by Unsubscribe.
func (s *Subscription[T]) C() <-chan T {
	return s.ch
}

// Unsubscribe stops delivery and closes C. Safe to call more than once.
func (s *Subscription[T]) Unsubscribe() {
	s.parent.remove(s)
}

// offer replaces any undelivered value with val. Called with the parent lock
// held, which makes this the only sender.
func (s *Subscription[T]) offer(val T) {
	select {
	case s.ch <- val:
		return
	default:
	}
	select {
	case <-s.ch:
	default:
	}
	s.ch <- val
}
