// Package persist snapshots reactive state to pluggable byte stores.
//
// Signals opt in by carrying a persist key:
//
//	theme := flare.NewSignal("light", flare.PersistKey("theme"))
//
//	reg := persist.NewRegistry()
//	reg.Register(theme)
//
//	store := persist.NewMemoryStore()
//	reg.SaveTo(ctx, store, "session-42")
//	reg.LoadFrom(ctx, store, "session-42")
//
// Restore applies every value inside a single batch, so dependents run
// once per restore rather than once per signal.
package persist

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Store.Load when no snapshot exists under
// the given key.
var ErrNotFound = errors.New("persist: snapshot not found")

// Store is a byte-level snapshot backend. Implementations must be safe
// for concurrent use.
type Store interface {
	// Save writes data under key, replacing any previous snapshot.
	Save(ctx context.Context, key string, data []byte) error

	// Load returns the snapshot stored under key, or ErrNotFound.
	Load(ctx context.Context, key string) ([]byte, error)

	// Delete removes the snapshot under key. Deleting a missing key
	// is not an error.
	Delete(ctx context.Context, key string) error
}
