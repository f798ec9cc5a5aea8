package mdc

import "context"

type ctxKey struct{}

// NewContext returns a copy of ctx carrying a fresh empty Store. Call it
// once per execution context: at the top of a request middleware chain, or
// when spawning a goroutine that should have its own diagnostic context.
func NewContext(ctx context.Context) context.Context {
	return WithStore(ctx, NewStore())
}

// WithStore returns a copy of ctx carrying the given store. Attaching a
// store that is still reachable from another context hands both contexts
// the same unsynchronized map; use Copy when crossing goroutines.
func WithStore(ctx context.Context, s *Store) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the store carried by ctx, or nil if ctx carries none.
// Safe to call with a nil context.
func FromContext(ctx context.Context) *Store {
	if ctx == nil {
		return nil
	}
	if s, ok := ctx.Value(ctxKey{}).(*Store); ok {
		return s
	}
	return nil
}

// Insert sets key to value in the store carried by ctx, returning the
// previous value. A context without a store ignores writes and reports no
// previous value.
func Insert(ctx context.Context, key, value string) (prev string, replaced bool) {
	if s := FromContext(ctx); s != nil {
		return s.Insert(key, value)
	}
	return "", false
}

// Get reads the current value for key from the store carried by ctx.
// A context without a store reads as empty.
func Get(ctx context.Context, key string) (string, bool) {
	if s := FromContext(ctx); s != nil {
		return s.Get(key)
	}
	return "", false
}

// Remove deletes key from the store carried by ctx, returning the value it
// held. Absent keys, and contexts without a store, report absence.
func Remove(ctx context.Context, key string) (prev string, removed bool) {
	if s := FromContext(ctx); s != nil {
		return s.Remove(key)
	}
	return "", false
}

// Clear removes all entries from the store carried by ctx, if any.
func Clear(ctx context.Context) {
	if s := FromContext(ctx); s != nil {
		s.Clear()
	}
}

// Each invokes fn once per entry in the store carried by ctx, if any.
func Each(ctx context.Context, fn func(key, value string)) {
	if s := FromContext(ctx); s != nil {
		s.Each(fn)
	}
}

// Entries returns a key-sorted snapshot of the store carried by ctx, or
// nil if ctx carries none.
func Entries(ctx context.Context) []Entry {
	if s := FromContext(ctx); s != nil {
		return s.Entries()
	}
	return nil
}

// Extend inserts all given entries into the store carried by ctx, if any.
func Extend(ctx context.Context, entries []Entry) {
	if s := FromContext(ctx); s != nil {
		s.Extend(entries)
	}
}
