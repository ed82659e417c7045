package flare

// SignalOption is a functional option for configuring signals.
type SignalOption func(*signalOptions)

// signalOptions holds configuration for signal behavior.
type signalOptions struct {
	// transient signals are excluded from snapshot persistence.
	transient bool

	// persistKey is the explicit key used when the signal is registered
	// in a persistence registry. Empty means the signal has no stable
	// key and cannot be registered.
	persistKey string
}

// Transient marks a signal as non-persistent.
// Transient signals are skipped by snapshot registries even when they
// carry a persist key. Use this for ephemeral state like in-flight
// flags or scratch values.
//
// Example:
//
//	busy := flare.NewSignal(false, flare.Transient())
func Transient() SignalOption {
	return func(o *signalOptions) {
		o.transient = true
	}
}

// PersistKey sets an explicit key for signal serialization.
// Signals with a persist key can be registered in a persist.Registry
// and included in snapshots. Keys must be stable across versions:
//
//	userID := flare.NewSignal(0, flare.PersistKey("user_id"))
func PersistKey(key string) SignalOption {
	return func(o *signalOptions) {
		o.persistKey = key
	}
}

// applyOptions applies the given options and returns the resulting config.
func applyOptions(opts []SignalOption) signalOptions {
	var options signalOptions
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
