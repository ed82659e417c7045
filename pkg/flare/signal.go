package flare

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
)

// signalBase provides type-erased subscriber management.
// It is embedded in Signal[T] and Memo[T] to share subscription logic.
type signalBase struct {
	id uint64

	// subs are the listeners subscribed to this signal.
	subs []Listener

	// subMu protects the subs slice.
	subMu sync.RWMutex

	// disposed marks the signal as torn down. Any access after this
	// panics wrapping ErrUseAfterDispose.
	disposed atomic.Bool
}

// subscribe adds a listener to this signal's subscribers.
// Deduplicates by listener ID to prevent double-subscription.
func (s *signalBase) subscribe(l Listener) {
	if l == nil || s.disposed.Load() {
		return
	}

	s.subMu.Lock()
	defer s.subMu.Unlock()

	lid := l.ID()
	for _, existing := range s.subs {
		if existing.ID() == lid {
			return
		}
	}

	s.subs = append(s.subs, l)
}

// unsubscribe removes a listener from this signal's subscribers.
func (s *signalBase) unsubscribe(l Listener) {
	if l == nil {
		return
	}

	s.subMu.Lock()
	defer s.subMu.Unlock()

	lid := l.ID()
	for i, existing := range s.subs {
		if existing.ID() == lid {
			// Remove by swapping with last element (order doesn't matter)
			s.subs[i] = s.subs[len(s.subs)-1]
			s.subs = s.subs[:len(s.subs)-1]
			return
		}
	}
}

// hasSubscribers reports whether any listener is currently subscribed.
func (s *signalBase) hasSubscribers() bool {
	s.subMu.RLock()
	defer s.subMu.RUnlock()
	return len(s.subs) > 0
}

// notifySubscribers notifies all subscribers that this signal changed.
// Inside a batch, notifications are queued until the outermost batch
// closes. Outside a batch, all subscribers are marked dirty and the
// scheduler drains synchronously before the triggering write returns.
// Uses copy-before-notify to avoid holding locks during notification.
func (s *signalBase) notifySubscribers() {
	s.subMu.RLock()
	subs := make([]Listener, len(s.subs))
	copy(subs, s.subs)
	s.subMu.RUnlock()

	ctx := getTrackingContext()
	if ctx.batchDepth > 0 {
		for _, sub := range subs {
			queuePendingUpdate(sub)
		}
		return
	}

	// Mark every subscriber before running any of them, so dependents
	// sharing several paths to this signal still run once.
	propagate(func() {
		for _, sub := range subs {
			sub.MarkDirty()
		}
	})
}

// checkDisposed panics if the signal has been torn down.
func (s *signalBase) checkDisposed() {
	if s.disposed.Load() {
		panic(fmt.Errorf("signal %d: %w", s.id, ErrUseAfterDispose))
	}
}

// dispose marks the base disposed and drops all subscribers.
// Idempotent; returns false if already disposed.
func (s *signalBase) dispose() bool {
	if s.disposed.Swap(true) {
		return false
	}
	s.subMu.Lock()
	s.subs = nil
	s.subMu.Unlock()
	return true
}

// Signal is a reactive value container.
// Reading a Signal's value during a tracked context (effect execution,
// memo computation, or watcher evaluation) automatically subscribes the
// current listener to receive notifications when the value changes.
type Signal[T any] struct {
	base signalBase

	// value is the current signal value.
	value T

	// mu protects the value.
	mu sync.RWMutex

	// equal is the equality function used to determine if the value
	// changed. If nil, uses default structural equality.
	equal func(T, T) bool

	// opts holds persistence-related configuration.
	opts signalOptions
}

// NewSignal creates a new signal with the given initial value.
// If an Owner is active on this goroutine, the signal is registered with
// it and disposed when the owning scope is disposed.
func NewSignal[T any](initial T, opts ...SignalOption) *Signal[T] {
	s := &Signal[T]{
		base: signalBase{
			id: nextID(),
		},
		value: initial,
		opts:  applyOptions(opts),
	}

	if owner := getCurrentOwner(); owner != nil {
		owner.registerDisposable(s)
	}

	return s
}

// Get returns the current value and subscribes the current listener.
// If called during a tracked context, the current listener will be
// notified when this signal's value changes.
func (s *Signal[T]) Get() T {
	s.base.checkDisposed()

	s.mu.RLock()
	value := s.value
	s.mu.RUnlock()

	// Track dependency (after releasing value lock to prevent deadlock)
	if listener := getCurrentListener(); listener != nil {
		s.base.subscribe(listener)

		if d, ok := listener.(dependent); ok {
			d.addSource(&s.base)
		}
	}

	return value
}

// Peek returns the current value without subscribing.
// Use this to read a value without creating a dependency.
func (s *Signal[T]) Peek() T {
	s.base.checkDisposed()

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Set updates the signal's value and re-runs dependents if the value
// changed under the signal's equality function. Outside a batch, all
// dependent computations run before Set returns.
func (s *Signal[T]) Set(value T) {
	s.base.checkDisposed()

	s.mu.Lock()
	changed := !s.equals(s.value, value)
	if changed {
		s.value = value
	}
	s.mu.Unlock()

	if changed {
		if rec := getRecorder(); rec != nil {
			rec.SignalWrite()
		}
		s.base.notifySubscribers()
	}
}

// Update atomically reads and updates the signal's value.
// The function receives the current value and returns the new value.
func (s *Signal[T]) Update(fn func(T) T) {
	s.base.checkDisposed()

	s.mu.Lock()
	oldValue := s.value
	newValue := fn(oldValue)
	changed := !s.equals(oldValue, newValue)
	if changed {
		s.value = newValue
	}
	s.mu.Unlock()

	if changed {
		if rec := getRecorder(); rec != nil {
			rec.SignalWrite()
		}
		s.base.notifySubscribers()
	}
}

// Dispose tears the signal down. All subscribers are dropped and any
// later access panics wrapping ErrUseAfterDispose. Idempotent.
func (s *Signal[T]) Dispose() {
	s.base.dispose()
}

// IsDisposed reports whether the signal has been disposed.
func (s *Signal[T]) IsDisposed() bool {
	return s.base.disposed.Load()
}

// dispose implements the disposable interface for owner teardown.
func (s *Signal[T]) dispose() {
	s.base.dispose()
}

// WithEquals returns the signal configured with a custom equality function.
// This is useful for custom types where reflect.DeepEqual is too expensive
// or has incorrect semantics.
func (s *Signal[T]) WithEquals(fn func(T, T) bool) *Signal[T] {
	s.equal = fn
	return s
}

// ID returns the unique identifier for this signal.
func (s *Signal[T]) ID() uint64 {
	return s.base.id
}

// equals checks if two values are equal using the configured equality function.
func (s *Signal[T]) equals(a, b T) bool {
	if s.equal != nil {
		return s.equal(a, b)
	}
	return defaultEquals(a, b)
}

// defaultEquals provides structural equality: == for the builtin scalar
// types and reflect.DeepEqual for everything else.
func defaultEquals[T any](a, b T) bool {
	switch av := any(a).(type) {
	case int:
		return av == any(b).(int)
	case int8:
		return av == any(b).(int8)
	case int16:
		return av == any(b).(int16)
	case int32:
		return av == any(b).(int32)
	case int64:
		return av == any(b).(int64)
	case uint:
		return av == any(b).(uint)
	case uint8:
		return av == any(b).(uint8)
	case uint16:
		return av == any(b).(uint16)
	case uint32:
		return av == any(b).(uint32)
	case uint64:
		return av == any(b).(uint64)
	case float32:
		return av == any(b).(float32)
	case float64:
		return av == any(b).(float64)
	case string:
		return av == any(b).(string)
	case bool:
		return av == any(b).(bool)
	default:
		// Slices, maps, structs, etc.
		return reflect.DeepEqual(a, b)
	}
}

// dependent is a listener that records which signals it read so the
// edges can be dropped before its next run. Effects, memos, and watchers
// implement it; Signal.Get uses it to register the reverse edge.
type dependent interface {
	Listener
	addSource(source *signalBase)
}
