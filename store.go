package mdc

import "sort"

// Entry is a single key/value pair held by a diagnostic context store.
type Entry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Store is a diagnostic context owned by a single execution context.
// It is a plain map with no internal synchronization: a Store attached to
// a context.Context belongs to the request or goroutine chain that context
// flows through, and must not be shared across goroutines. Use Copy plus
// WithStore to hand a snapshot to a new goroutine, or Global() for state
// visible to every execution context.
//
// The zero value is not usable; create stores with NewStore or NewContext.
type Store struct {
	m map[string]string
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{m: make(map[string]string)}
}

// Insert sets key to value and returns the previous value, if any.
// Keys are unique within a store: inserting an existing key overwrites it.
func (s *Store) Insert(key, value string) (prev string, replaced bool) {
	prev, replaced = s.m[key]
	s.m[key] = value
	return prev, replaced
}

// Get returns the current value for key, and whether the key is present.
func (s *Store) Get(key string) (string, bool) {
	v, ok := s.m[key]
	return v, ok
}

// Remove deletes key and returns the value it held. Removing an absent key
// is a no-op that reports absence, not an error.
func (s *Store) Remove(key string) (prev string, removed bool) {
	prev, removed = s.m[key]
	delete(s.m, key)
	return prev, removed
}

// Clear removes all entries.
func (s *Store) Clear() {
	clear(s.m)
}

// Len returns the number of entries.
func (s *Store) Len() int {
	return len(s.m)
}

// Each invokes fn once per entry. The order is unspecified but consistent
// for the duration of the call. fn must not mutate the store.
func (s *Store) Each(fn func(key, value string)) {
	for k, v := range s.m {
		fn(k, v)
	}
}

// Entries returns a snapshot of all entries, sorted by key. The snapshot
// is independent of the store; later mutations do not affect it.
func (s *Store) Entries() []Entry {
	entries := make([]Entry, 0, len(s.m))
	for k, v := range s.m {
		entries = append(entries, Entry{Key: k, Value: v})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Key < entries[j].Key
	})
	return entries
}

// Extend inserts all given entries, overwriting existing keys.
func (s *Store) Extend(entries []Entry) {
	for _, e := range entries {
		s.m[e.Key] = e.Value
	}
}

// Copy returns a new independent store holding the same entries. Use it to
// forward the current diagnostic context to another goroutine.
func (s *Store) Copy() *Store {
	if s == nil {
		return NewStore()
	}

	c := &Store{m: make(map[string]string, len(s.m))}
	for k, v := range s.m {
		c.m[k] = v
	}
	return c
}
