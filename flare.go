// Package flare provides the public API for the Flare reactive runtime.
//
// This is the recommended import for most applications:
//
//	import "github.com/flare-dev/flare"
//
// Usage:
//
//	count := flare.NewSignal(0)
//	doubled := flare.NewMemo(func() int { return count.Get() * 2 })
//	flare.CreateEffect(func() flare.Cleanup {
//	    fmt.Println("doubled:", doubled.Get())
//	    return nil
//	})
package flare

import (
	coreflare "github.com/flare-dev/flare/pkg/flare"
)

// =============================================================================
// Reactive primitives (re-export from pkg/flare)
// =============================================================================

// NewSignal creates a new reactive signal with the given initial value.
//
// Example:
//
//	count := flare.NewSignal(0)
//	count.Set(1)
//	value := count.Get() // 1
func NewSignal[T any](initial T, opts ...SignalOption) *Signal[T] {
	return coreflare.NewSignal(initial, opts...)
}

// NewMemo creates a new computed value that automatically tracks dependencies.
//
// Example:
//
//	doubled := flare.NewMemo(func() int {
//	    return count.Get() * 2
//	})
func NewMemo[T any](compute func() T) *Memo[T] {
	return coreflare.NewMemo(compute)
}

// CreateSignal creates a signal and returns separate read and write halves.
func CreateSignal[T any](initial T, opts ...SignalOption) (Reader[T], Writer[T]) {
	return coreflare.CreateSignal(initial, opts...)
}

// CreateEffect registers a side effect that runs when dependencies change.
//
// Example:
//
//	flare.CreateEffect(func() flare.Cleanup {
//	    fmt.Println("Count changed to:", count.Get())
//	    return nil
//	})
var CreateEffect = coreflare.CreateEffect

// Watch observes a derived value and calls back with current and
// previous values on each change.
func Watch[T any](source func() T, callback func(value T, prev *T), immediate bool) (stop func()) {
	return coreflare.Watch(source, callback, immediate)
}

// Batch groups multiple signal updates into a single notification.
var Batch = coreflare.Batch

// Tx is an alias for Batch.
var Tx = coreflare.Tx

// TxNamed is a named transaction for observability.
var TxNamed = coreflare.TxNamed

// Untracked reads signals without creating subscriptions.
var Untracked = coreflare.Untracked

// UntrackedGet reads a signal's value without subscribing.
func UntrackedGet[T any](s *Signal[T]) T {
	return coreflare.UntrackedGet(s)
}

// Signal type aliases
type Signal[T any] = coreflare.Signal[T]
type Memo[T any] = coreflare.Memo[T]
type Reader[T any] = coreflare.Reader[T]
type Writer[T any] = coreflare.Writer[T]
type Effect = coreflare.Effect
type Cleanup = coreflare.Cleanup
type SignalOption = coreflare.SignalOption
type EffectOption = coreflare.EffectOption

// Signal options
var Transient = coreflare.Transient
var PersistKey = coreflare.PersistKey

// Effect options
var EffectName = coreflare.EffectName

// =============================================================================
// Lifecycle and ownership (re-export from pkg/flare)
// =============================================================================

// Owner scopes the lifetime of signals, effects, and watchers.
type Owner = coreflare.Owner

// Root runs fn under a fresh owner scope and returns its dispose function.
var Root = coreflare.Root

// CurrentOwner returns the active owner scope, or nil.
var CurrentOwner = coreflare.CurrentOwner

// OnMount runs a function once when the current scope is set up.
var OnMount = coreflare.OnMount

// OnUnmount registers a cleanup on the current owner.
var OnUnmount = coreflare.OnUnmount

// OnUpdate re-runs a function on dependency changes, skipping the
// initial run.
var OnUpdate = coreflare.OnUpdate

// =============================================================================
// Context (re-export from pkg/flare)
// =============================================================================

// Context carries a typed value down the owner tree.
type Context[T any] = coreflare.Context[T]

// CreateContext creates a typed context with identity-based resolution.
func CreateContext[T any](name ...string) *Context[T] {
	return coreflare.CreateContext[T](name...)
}

// SetContext stores an untyped value on the current owner.
var SetContext = coreflare.SetContext

// GetContext resolves an untyped value through the owner chain.
var GetContext = coreflare.GetContext

// =============================================================================
// Instrumentation (re-export from pkg/flare)
// =============================================================================

// Recorder receives instrumentation callbacks from the runtime.
type Recorder = coreflare.Recorder

// PersistableSignal is the type-erased view used by snapshot registries.
type PersistableSignal = coreflare.PersistableSignal

// SetRecorder installs the runtime-wide recorder.
var SetRecorder = coreflare.SetRecorder

// MultiRecorder combines several recorders into one.
var MultiRecorder = coreflare.MultiRecorder

// =============================================================================
// Errors (re-export from pkg/flare)
// =============================================================================

// Sentinel errors surfaced by runtime panics.
var (
	ErrUseAfterDispose = coreflare.ErrUseAfterDispose
	ErrCycleDetected   = coreflare.ErrCycleDetected
	ErrContextNotFound = coreflare.ErrContextNotFound
)

// TypeMismatchError reports a failed type-erased signal write.
type TypeMismatchError = coreflare.TypeMismatchError
