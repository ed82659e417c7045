package flare

// Reader is the read half of a signal created with CreateSignal.
// Handing a Reader to a consumer grants tracked and untracked reads but
// no way to write.
type Reader[T any] struct {
	s *Signal[T]
}

// Get returns the current value and subscribes the current listener.
func (r Reader[T]) Get() T {
	return r.s.Get()
}

// Peek returns the current value without subscribing.
func (r Reader[T]) Peek() T {
	return r.s.Peek()
}

// ID returns the underlying signal's identifier.
func (r Reader[T]) ID() uint64 {
	return r.s.ID()
}

// Writer is the write half of a signal created with CreateSignal.
type Writer[T any] struct {
	s *Signal[T]
}

// Set replaces the value, re-running dependents if it changed.
func (w Writer[T]) Set(value T) {
	w.s.Set(value)
}

// Update atomically reads and updates the value.
func (w Writer[T]) Update(fn func(T) T) {
	w.s.Update(fn)
}

// ID returns the underlying signal's identifier.
func (w Writer[T]) ID() uint64 {
	return w.s.ID()
}

// CreateSignal creates a signal and returns split read/write handles
// over it, for APIs that hand the two capabilities to different parties:
//
//	count, setCount := flare.CreateSignal(0)
//	setCount.Set(1)
//	_ = count.Get()
func CreateSignal[T any](initial T, opts ...SignalOption) (Reader[T], Writer[T]) {
	s := NewSignal(initial, opts...)
	return Reader[T]{s: s}, Writer[T]{s: s}
}
