package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	lru := NewLRU[int, string](2)
	lru.Put(1, "a")
	lru.Put(2, "b")
	lru.Put(3, "c")

	assert.Equal(t, 2, lru.Len())
	_, ok := lru.Get(1)
	assert.False(t, ok, "oldest entry should have been evicted")
	_, ok = lru.Get(2)
	assert.True(t, ok)
	_, ok = lru.Get(3)
	assert.True(t, ok)
}

func TestLRUGetRefreshesRecency(t *testing.T) {
	lru := NewLRU[string, int](2)
	lru.Put("a", 1)
	lru.Put("b", 2)

	_, ok := lru.Get("a")
	require.True(t, ok)

	lru.Put("c", 3)

	_, ok = lru.Get("b")
	assert.False(t, ok, "b was least recently used after the read of a")
	_, ok = lru.Get("a")
	assert.True(t, ok)
}

func TestLRUPutRefreshesRecencyAndReplaces(t *testing.T) {
	lru := NewLRU[string, int](2)
	lru.Put("a", 1)
	lru.Put("b", 2)
	lru.Put("a", 10)
	lru.Put("c", 3)

	value, ok := lru.Get("a")
	require.True(t, ok)
	assert.Equal(t, 10, value)
	_, ok = lru.Get("b")
	assert.False(t, ok)
	assert.Equal(t, 2, lru.Len())
}

func TestLRUPeekDoesNotTouchRecency(t *testing.T) {
	lru := NewLRU[string, int](2)
	lru.Put("a", 1)
	lru.Put("b", 2)

	_, ok := lru.Peek("a")
	require.True(t, ok)

	lru.Put("c", 3)

	_, ok = lru.Peek("a")
	assert.False(t, ok, "peek must not promote the entry")
}

func TestLRUCapacityNeverExceeded(t *testing.T) {
	lru := NewLRU[int, int](3)
	for i := 0; i < 20; i++ {
		lru.Put(i, i)
		assert.LessOrEqual(t, lru.Len(), 3)
	}
}
