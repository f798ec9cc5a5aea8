package mdc

import (
	"sort"
	"sync"
)

// SharedStore is a diagnostic context shared by every execution context in
// the process. All access goes through a read-write mutex: writers take
// exclusive access, readers take shared access, and a reader always sees a
// complete key/value pair, never a torn one. Writes are totally ordered;
// an Entries snapshot corresponds to some point in that order.
type SharedStore struct {
	mu sync.RWMutex
	m  map[string]string
}

// NewSharedStore creates an empty shared store. Most code wants Global;
// a private shared store is useful when a subsystem needs its own
// mutex-guarded context, or in tests that must not touch process state.
func NewSharedStore() *SharedStore {
	return &SharedStore{m: make(map[string]string)}
}

var (
	globalOnce  sync.Once
	globalStore *SharedStore
)

// Global returns the process-wide shared store, initializing it on first
// use. The store lives for the process lifetime.
func Global() *SharedStore {
	globalOnce.Do(func() {
		globalStore = NewSharedStore()
	})
	return globalStore
}

// Insert sets key to value and returns the previous value, if any. The
// new pair is visible to every execution context once Insert returns.
func (s *SharedStore) Insert(key, value string) (prev string, replaced bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, replaced = s.m[key]
	s.m[key] = value
	return prev, replaced
}

// Get returns the current value for key, and whether the key is present.
func (s *SharedStore) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[key]
	return v, ok
}

// Remove deletes key and returns the value it held. Removing an absent key
// is a no-op that reports absence.
func (s *SharedStore) Remove(key string) (prev string, removed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, removed = s.m[key]
	delete(s.m, key)
	return prev, removed
}

// Clear removes all entries.
func (s *SharedStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.m)
}

// Len returns the number of entries.
func (s *SharedStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}

// Each invokes fn once per entry while holding the read lock, so all
// entries belong to a single consistent snapshot. fn must not call any
// mutating method on the store: the write lock cannot be acquired while
// the read lock is held, and the call would deadlock. Use Entries when the
// visitor needs to mutate.
func (s *SharedStore) Each(fn func(key, value string)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for k, v := range s.m {
		fn(k, v)
	}
}

// Entries returns a key-sorted snapshot of all entries. The snapshot is
// taken under the read lock and released before returning, so the caller
// may freely mutate the store while iterating it.
func (s *SharedStore) Entries() []Entry {
	s.mu.RLock()
	entries := make([]Entry, 0, len(s.m))
	for k, v := range s.m {
		entries = append(entries, Entry{Key: k, Value: v})
	}
	s.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Key < entries[j].Key
	})
	return entries
}

// Extend inserts all given entries under a single write lock acquisition,
// overwriting existing keys.
func (s *SharedStore) Extend(entries []Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entries {
		s.m[e.Key] = e.Value
	}
}
