package flare

import "fmt"

// PersistableSignal is the type-erased view of a signal used by snapshot
// registries. Signal[T] implements it for every T.
type PersistableSignal interface {
	// IsTransient returns true if the signal should not be persisted.
	IsTransient() bool

	// PersistKey returns the explicit persistence key, or empty string
	// if the signal has none.
	PersistKey() string

	// GetAny returns the current value as an interface{}. Untracked.
	GetAny() any

	// SetAny sets the value from an interface{}.
	// Returns *TypeMismatchError if the type doesn't match.
	SetAny(value any) error
}

// IsTransient reports whether the signal was created with Transient().
func (s *Signal[T]) IsTransient() bool {
	return s.opts.transient
}

// PersistKey returns the key set with PersistKey(), or "".
func (s *Signal[T]) PersistKey() string {
	return s.opts.persistKey
}

// GetAny returns the current value without subscribing.
func (s *Signal[T]) GetAny() any {
	return s.Peek()
}

// SetAny sets the value from a type-erased restore. The write goes
// through Set, so equality skipping and notification apply as usual.
func (s *Signal[T]) SetAny(value any) error {
	v, ok := value.(T)
	if !ok {
		var zero T
		return &TypeMismatchError{
			Expected: fmt.Sprintf("%T", zero),
			Got:      fmt.Sprintf("%T", value),
		}
	}
	s.Set(v)
	return nil
}

var _ PersistableSignal = (*Signal[int])(nil)
