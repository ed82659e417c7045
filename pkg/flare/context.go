package flare

import "fmt"

// Context is a typed, scope-addressed value slot. A value provided on an
// owner is visible to that owner and all of its descendants; lookup
// walks the ancestor chain and stops at the nearest provider.
//
// Context is independent of the signal graph: providing or reading a
// context value never creates dependency edges. To make a context value
// reactive, provide a *Signal[T].
//
//	var theme = flare.CreateContext[string]()
//
//	flare.Root(func() {
//	    theme.Provide("dark")
//	    child := flare.NewOwner(flare.CurrentOwner())
//	    flare.WithOwner(child, func() {
//	        v, ok := theme.Use() // "dark", true
//	    })
//	})
type Context[T any] struct {
	// key is the identity of this context; the pointer itself is the
	// map key, so two contexts of the same T never collide.
	key *contextKey
}

type contextKey struct{ name string }

// CreateContext creates a new context with an optional debug name.
func CreateContext[T any](name ...string) *Context[T] {
	k := &contextKey{}
	if len(name) > 0 {
		k.name = name[0]
	}
	return &Context[T]{key: k}
}

// Provide stores a value on the current owner, making it visible to the
// owner's descendants. No-op if no owner is active on this goroutine.
func (c *Context[T]) Provide(value T) {
	if owner := getCurrentOwner(); owner != nil {
		owner.SetValue(c.key, value)
	}
}

// ProvideOn stores a value on a specific owner.
func (c *Context[T]) ProvideOn(owner *Owner, value T) {
	if owner != nil {
		owner.SetValue(c.key, value)
	}
}

// Use looks the value up from the current owner's ancestor chain.
// Absence is an expected outcome: the second return is false when no
// ancestor provided a value.
func (c *Context[T]) Use() (T, bool) {
	var zero T
	owner := getCurrentOwner()
	if owner == nil {
		return zero, false
	}
	v, ok := owner.lookupValue(c.key)
	if !ok {
		return zero, false
	}
	return v.(T), true
}

// MustUse is the assert-presence variant of Use. It panics wrapping
// ErrContextNotFound when no ancestor provided a value.
func (c *Context[T]) MustUse() T {
	v, ok := c.Use()
	if !ok {
		panic(fmt.Errorf("%w (context %q)", ErrContextNotFound, c.key.name))
	}
	return v
}

// CurrentOwner returns the owner active on this goroutine, or nil.
func CurrentOwner() *Owner {
	return getCurrentOwner()
}

// SetContext sets an untyped context value for the current owner scope.
// The value is available to all descendants via GetContext.
func SetContext(key, value any) {
	if owner := getCurrentOwner(); owner != nil {
		owner.SetValue(key, value)
	}
}

// GetContext retrieves an untyped context value from the nearest
// provider in the hierarchy. Returns nil if no value is found.
func GetContext(key any) any {
	if owner := getCurrentOwner(); owner != nil {
		v, _ := owner.lookupValue(key)
		return v
	}
	return nil
}

// SetValue sets a context value on this Owner.
func (o *Owner) SetValue(key, value any) {
	o.valuesMu.Lock()
	defer o.valuesMu.Unlock()

	if o.values == nil {
		o.values = make(map[any]any)
	}
	o.values[key] = value
}

// lookupValue retrieves a value from this Owner or its ancestors.
func (o *Owner) lookupValue(key any) (any, bool) {
	o.valuesMu.RLock()
	if o.values != nil {
		if val, ok := o.values[key]; ok {
			o.valuesMu.RUnlock()
			return val, true
		}
	}
	o.valuesMu.RUnlock()

	if o.parent != nil {
		return o.parent.lookupValue(key)
	}

	return nil, false
}

// GetValue retrieves a value from this Owner or its ancestors.
// Returns nil if no provider is found.
func (o *Owner) GetValue(key any) any {
	v, _ := o.lookupValue(key)
	return v
}
