package cache

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fictorial/filesysdb/records"
)

func rec(id string) records.Record {
	return records.Record{"id": id}
}

func TestBoundedLRUEviction(t *testing.T) {
	c := New(3)
	for i := 1; i <= 4; i++ {
		c.Put(fmt.Sprintf("id_%d", i), rec(fmt.Sprintf("id_%d", i)))
	}

	// oldest untouched entry goes first
	assert.False(t, c.Contains("id_1"))
	for i := 2; i <= 4; i++ {
		assert.True(t, c.Contains(fmt.Sprintf("id_%d", i)))
	}
	assert.Equal(t, 3, c.Len())
}

func TestGetRefreshesRecency(t *testing.T) {
	c := New(2)
	c.Put("a", rec("a"))
	c.Put("b", rec("b"))

	_, ok := c.Get("a") // a becomes most recent
	assert.True(t, ok)

	c.Put("c", rec("c")) // evicts b, not a
	assert.True(t, c.Contains("a"))
	assert.False(t, c.Contains("b"))
	assert.True(t, c.Contains("c"))
}

func TestTouchRefreshesRecency(t *testing.T) {
	c := New(2)
	c.Put("a", rec("a"))
	c.Put("b", rec("b"))
	c.Touch("a")
	c.Put("c", rec("c"))
	assert.True(t, c.Contains("a"))
	assert.False(t, c.Contains("b"))
}

func TestPutReplaces(t *testing.T) {
	c := New(2)
	c.Put("a", records.Record{"id": "a", "v": 1.0})
	c.Put("a", records.Record{"id": "a", "v": 2.0})

	got, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 2.0, got["v"])
	assert.Equal(t, 1, c.Len())
}

func TestZeroCapacityDisables(t *testing.T) {
	c := New(0)
	c.Put("a", rec("a"))
	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
	c.Evict("a") // no-op, must not panic
	c.Touch("a")
}

func TestUnboundedNeverEvicts(t *testing.T) {
	c := New(Unbounded)
	for i := 0; i < 10_000; i++ {
		c.Put(fmt.Sprintf("id_%d", i), rec("x"))
	}
	assert.Equal(t, 10_000, c.Len())
	_, ok := c.Get("id_0")
	assert.True(t, ok)
}

func TestEvict(t *testing.T) {
	c := New(4)
	c.Put("a", rec("a"))
	c.Evict("a")
	assert.False(t, c.Contains("a"))
	c.Evict("missing") // absent id is not an error
}
