package mdc

import "context"

// mutator is the mutation surface a Guard needs to capture and restore
// entries. Both Store and SharedStore satisfy it.
type mutator interface {
	Insert(key, value string) (string, bool)
	Remove(key string) (string, bool)
}

type captured struct {
	key   string
	value string
	had   bool
}

// Guard restores previously captured entries when Restore is called.
// Construction inserts the new values and records what they replaced;
// Restore reinstates the recorded state, inserting a captured value back
// or removing the key if it was absent. Guards nest on the same key with
// stack discipline as long as Restore calls mirror construction order,
// which deferred calls do naturally:
//
//	defer mdc.InsertScoped(ctx, "phase", "inner").Restore()
//
// Restore is idempotent and safe on a nil Guard.
type Guard struct {
	store    mutator
	captured []captured
	restored bool
}

func newGuard(store mutator, entries []Entry) *Guard {
	if store == nil {
		return &Guard{restored: true}
	}
	g := &Guard{store: store, captured: make([]captured, 0, len(entries))}
	for _, e := range entries {
		prev, had := store.Insert(e.Key, e.Value)
		g.captured = append(g.captured, captured{key: e.Key, value: prev, had: had})
	}
	return g
}

// Restore reinstates the state captured at construction, in reverse
// capture order. Calling it more than once has no further effect.
func (g *Guard) Restore() {
	if g == nil || g.restored {
		return
	}
	g.restored = true
	for i := len(g.captured) - 1; i >= 0; i-- {
		c := g.captured[i]
		if c.had {
			g.store.Insert(c.key, c.value)
		} else {
			g.store.Remove(c.key)
		}
	}
}

// InsertScoped sets key to value and returns a Guard that restores the
// prior value (or absence) on Restore.
func (s *Store) InsertScoped(key, value string) *Guard {
	return newGuard(s, []Entry{{Key: key, Value: value}})
}

// ExtendScoped inserts all given entries and returns a Guard that restores
// each key's prior state on Restore.
func (s *Store) ExtendScoped(entries []Entry) *Guard {
	return newGuard(s, entries)
}

// InsertScoped sets key to value and returns a Guard that restores the
// prior value (or absence) on Restore.
func (s *SharedStore) InsertScoped(key, value string) *Guard {
	return newGuard(s, []Entry{{Key: key, Value: value}})
}

// ExtendScoped inserts all given entries and returns a Guard that restores
// each key's prior state on Restore. Each entry is inserted under its own
// write lock acquisition; the guard as a whole is not atomic.
func (s *SharedStore) ExtendScoped(entries []Entry) *Guard {
	return newGuard(s, entries)
}

// InsertScoped applies InsertScoped to the store carried by ctx. A context
// without a store yields an inert Guard.
func InsertScoped(ctx context.Context, key, value string) *Guard {
	if s := FromContext(ctx); s != nil {
		return s.InsertScoped(key, value)
	}
	return newGuard(nil, nil)
}

// ExtendScoped applies ExtendScoped to the store carried by ctx. A context
// without a store yields an inert Guard.
func ExtendScoped(ctx context.Context, entries []Entry) *Guard {
	if s := FromContext(ctx); s != nil {
		return s.ExtendScoped(entries)
	}
	return newGuard(nil, nil)
}
