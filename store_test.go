package mdc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_InsertThenGet(t *testing.T) {
	s := NewStore()

	prev, replaced := s.Insert("request_id", "abc123")
	assert.Empty(t, prev)
	assert.False(t, replaced)

	v, ok := s.Get("request_id")
	require.True(t, ok)
	assert.Equal(t, "abc123", v)
}

func TestStore_InsertOverwrite(t *testing.T) {
	s := NewStore()

	_, _ = s.Insert("key", "v1")
	prev, replaced := s.Insert("key", "v2")

	assert.True(t, replaced)
	assert.Equal(t, "v1", prev)

	v, ok := s.Get("key")
	require.True(t, ok)
	assert.Equal(t, "v2", v)
}

func TestStore_Remove(t *testing.T) {
	s := NewStore()
	s.Insert("key", "value")

	prev, removed := s.Remove("key")
	assert.True(t, removed)
	assert.Equal(t, "value", prev)

	_, ok := s.Get("key")
	assert.False(t, ok)
}

func TestStore_RemoveAbsentKey(t *testing.T) {
	s := NewStore()
	s.Insert("other", "value")

	prev, removed := s.Remove("missing")
	assert.False(t, removed)
	assert.Empty(t, prev)

	// The store is unchanged.
	assert.Equal(t, 1, s.Len())
	v, ok := s.Get("other")
	require.True(t, ok)
	assert.Equal(t, "value", v)
}

func TestStore_GetAbsentKey(t *testing.T) {
	s := NewStore()

	v, ok := s.Get("missing")
	assert.False(t, ok)
	assert.Empty(t, v)
}

func TestStore_Clear(t *testing.T) {
	s := NewStore()
	s.Insert("a", "1")
	s.Insert("b", "2")

	s.Clear()

	assert.Zero(t, s.Len())
	_, ok := s.Get("a")
	assert.False(t, ok)
}

func TestStore_Each(t *testing.T) {
	s := NewStore()
	s.Insert("a", "1")
	s.Insert("b", "2")

	seen := map[string]string{}
	s.Each(func(k, v string) {
		seen[k] = v
	})

	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, seen)
}

func TestStore_EntriesSorted(t *testing.T) {
	s := NewStore()
	s.Insert("zebra", "z")
	s.Insert("alpha", "a")
	s.Insert("mango", "m")

	entries := s.Entries()

	require.Len(t, entries, 3)
	assert.Equal(t, []Entry{
		{Key: "alpha", Value: "a"},
		{Key: "mango", Value: "m"},
		{Key: "zebra", Value: "z"},
	}, entries)
}

func TestStore_EntriesSnapshotIsIndependent(t *testing.T) {
	s := NewStore()
	s.Insert("key", "before")

	entries := s.Entries()
	s.Insert("key", "after")
	s.Insert("second", "x")

	require.Len(t, entries, 1)
	assert.Equal(t, "before", entries[0].Value)
}

func TestStore_Extend(t *testing.T) {
	s := NewStore()
	s.Insert("existing", "old")

	s.Extend([]Entry{
		{Key: "existing", Value: "new"},
		{Key: "added", Value: "value"},
	})

	v, _ := s.Get("existing")
	assert.Equal(t, "new", v)
	v, _ = s.Get("added")
	assert.Equal(t, "value", v)
	assert.Equal(t, 2, s.Len())
}

func TestStore_Copy(t *testing.T) {
	s := NewStore()
	s.Insert("key", "value")

	c := s.Copy()
	c.Insert("key", "changed")
	c.Insert("extra", "x")

	// The original is untouched.
	v, _ := s.Get("key")
	assert.Equal(t, "value", v)
	_, ok := s.Get("extra")
	assert.False(t, ok)

	v, _ = c.Get("key")
	assert.Equal(t, "changed", v)
}
