package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/flare-dev/flare/pkg/flare"
)

var (
	// ErrNoPersistKey is returned when registering a signal created
	// without flare.PersistKey.
	ErrNoPersistKey = errors.New("persist: signal has no persist key")

	// ErrTransientSignal is returned when registering a signal marked
	// with flare.Transient.
	ErrTransientSignal = errors.New("persist: signal is transient")

	// ErrDuplicateKey is returned when a persist key is already taken.
	ErrDuplicateKey = errors.New("persist: duplicate persist key")
)

// Registry tracks persistable signals by their persist key and
// serializes them to JSON snapshots.
type Registry struct {
	mu      sync.RWMutex
	signals map[string]flare.PersistableSignal
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		signals: make(map[string]flare.PersistableSignal),
	}
}

// Register adds a signal to the registry under its persist key.
func (r *Registry) Register(sig flare.PersistableSignal) error {
	if sig.IsTransient() {
		return ErrTransientSignal
	}
	key := sig.PersistKey()
	if key == "" {
		return ErrNoPersistKey
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.signals[key]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateKey, key)
	}
	r.signals[key] = sig
	return nil
}

// Unregister removes the signal stored under key.
func (r *Registry) Unregister(key string) {
	r.mu.Lock()
	delete(r.signals, key)
	r.mu.Unlock()
}

// Keys returns the registered persist keys in sorted order.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.signals))
	for k := range r.signals {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of registered signals.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.signals)
}

// Values returns the current value of every registered signal keyed by
// persist key. Reads are untracked.
func (r *Registry) Values() map[string]any {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]any, len(r.signals))
	for key, sig := range r.signals {
		out[key] = sig.GetAny()
	}
	return out
}

// Snapshot serializes all registered signal values to JSON.
func (r *Registry) Snapshot() ([]byte, error) {
	data, err := json.Marshal(r.Values())
	if err != nil {
		return nil, fmt.Errorf("persist: snapshot encode failed: %w", err)
	}
	return data, nil
}

// Restore applies a JSON snapshot produced by Snapshot. All writes
// happen inside one batch, so each dependent runs at most once.
// Snapshot keys with no registered signal are skipped. A value that
// cannot be decoded into its signal's type aborts the restore with an
// error; values applied before the failure keep their restored state.
func (r *Registry) Restore(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("persist: snapshot decode failed: %w", err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var restoreErr error
	flare.Batch(func() {
		for key, sig := range r.signals {
			msg, ok := raw[key]
			if !ok {
				continue
			}
			if err := applyValue(sig, msg); err != nil {
				restoreErr = fmt.Errorf("persist: restore %q: %w", key, err)
				return
			}
		}
	})
	return restoreErr
}

// applyValue decodes msg into the signal's concrete value type and
// writes it through SetAny.
func applyValue(sig flare.PersistableSignal, msg json.RawMessage) error {
	current := sig.GetAny()
	if current == nil {
		var decoded any
		if err := json.Unmarshal(msg, &decoded); err != nil {
			return err
		}
		return sig.SetAny(decoded)
	}

	target := reflect.New(reflect.TypeOf(current))
	if err := json.Unmarshal(msg, target.Interface()); err != nil {
		return err
	}
	return sig.SetAny(target.Elem().Interface())
}

// SaveTo snapshots the registry and writes it to store under key.
func (r *Registry) SaveTo(ctx context.Context, store Store, key string) error {
	data, err := r.Snapshot()
	if err != nil {
		return err
	}
	return store.Save(ctx, key, data)
}

// LoadFrom reads a snapshot from store and restores it.
func (r *Registry) LoadFrom(ctx context.Context, store Store, key string) error {
	data, err := store.Load(ctx, key)
	if err != nil {
		return err
	}
	return r.Restore(data)
}
