package flare

import (
	"errors"
	"fmt"
)

// ErrUseAfterDispose is the sentinel wrapped by panics raised when a
// disposed signal or effect is accessed. Disposal is final: a disposed
// primitive cannot be read, written, or re-armed.
//
// Recover and match with errors.Is:
//
//	defer func() {
//	    if r := recover(); r != nil {
//	        if err, ok := r.(error); ok && errors.Is(err, flare.ErrUseAfterDispose) {
//	            // stale handle
//	        }
//	    }
//	}()
var ErrUseAfterDispose = errors.New("flare: use after dispose")

// ErrCycleDetected is the sentinel wrapped by panics raised when
// dependent computations keep re-triggering each other past
// MaxUpdateRounds scheduler rounds. The panic surfaces at the caller of
// the write that started the cascade; signal values written before the
// abort remain applied.
var ErrCycleDetected = errors.New("flare: reactive cycle detected")

// ErrContextNotFound is the sentinel wrapped by Context.MustUse panics
// when no ancestor scope provided a value. Prefer Context.Use, which
// reports absence as a recoverable (zero, false).
var ErrContextNotFound = errors.New("flare: context value not found")

// TypeMismatchError is returned by PersistableSignal.SetAny when the
// supplied value's type does not match the signal's value type.
type TypeMismatchError struct {
	Expected string
	Got      string
}

// Error implements the error interface.
func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("flare: type mismatch: expected %s, got %s", e.Expected, e.Got)
}
