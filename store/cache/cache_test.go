package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCacheBasicOperations(t *testing.T) {
	c := New(Config{Capacity: 100, DefaultTTL: time.Minute})
	defer c.Close()

	t.Run("SetAndGet", func(t *testing.T) {
		c.Set("C", []byte(`{"frets":[-1,3,2,0,1,0]}`), 0)

		val, ok := c.Get("C")
		assert.True(t, ok)
		assert.Equal(t, []byte(`{"frets":[-1,3,2,0,1,0]}`), val)
	})

	t.Run("GetNonExistent", func(t *testing.T) {
		val, ok := c.Get("nonexistent")
		assert.False(t, ok)
		assert.Nil(t, val)
	})

	t.Run("UpdateExisting", func(t *testing.T) {
		c.Set("G7", []byte("original"), 0)
		c.Set("G7", []byte("updated"), 0)

		val, ok := c.Get("G7")
		assert.True(t, ok)
		assert.Equal(t, []byte("updated"), val)
	})

	t.Run("Delete", func(t *testing.T) {
		c.Set("Am", []byte("x"), 0)
		c.Delete("Am")
		c.Delete("Am") // absent key is a no-op

		_, ok := c.Get("Am")
		assert.False(t, ok)
	})
}

func TestCacheExpiration(t *testing.T) {
	c := New(Config{Capacity: 100, DefaultTTL: time.Minute})
	defer c.Close()

	c.Set("expiring", []byte("value"), 30*time.Millisecond)

	_, ok := c.Get("expiring")
	assert.True(t, ok)

	time.Sleep(40 * time.Millisecond)

	_, ok = c.Get("expiring")
	assert.False(t, ok)
}

func TestCacheEviction(t *testing.T) {
	c := New(Config{Capacity: 3, DefaultTTL: time.Minute})
	defer c.Close()

	c.Set("key1", []byte("1"), 0)
	c.Set("key2", []byte("2"), 0)
	c.Set("key3", []byte("3"), 0)
	assert.Equal(t, 3, c.Size())

	// Touch key1 so key2 becomes the eviction candidate.
	c.Get("key1")

	c.Set("key4", []byte("4"), 0)
	assert.Equal(t, 3, c.Size())

	_, ok := c.Get("key2")
	assert.False(t, ok)
	_, ok = c.Get("key1")
	assert.True(t, ok)
}
