// Package cache keeps one collection's decoded records in memory.
//
// Three modes, picked by capacity: a positive capacity bounds the cache
// and evicts in strict least-recently-used order, Unbounded never evicts,
// and zero disables caching entirely (every Get is a miss). The cache is
// derived state: the collection updates it synchronously with every disk
// mutation, so it never outlives the bytes it was decoded from.
package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/fictorial/filesysdb/records"
)

// Unbounded disables eviction: the cache grows with the collection.
const Unbounded = -1

type Cache struct {
	capacity int
	bounded  *lru.Cache[string, records.Record]
	all      *xsync.MapOf[string, records.Record]
}

func New(capacity int) *Cache {
	c := &Cache{capacity: capacity}
	switch {
	case capacity > 0:
		c.bounded, _ = lru.New[string, records.Record](capacity)
	case capacity < 0:
		c.all = xsync.NewMapOf[string, records.Record]()
	}
	return c
}

// Get returns the cached record and marks it most-recently-used.
func (c *Cache) Get(id string) (records.Record, bool) {
	switch {
	case c.bounded != nil:
		return c.bounded.Get(id)
	case c.all != nil:
		return c.all.Load(id)
	}
	return nil, false
}

// Put inserts or replaces and marks most-recently-used, evicting the
// least-recently-used entry if the capacity is now exceeded.
func (c *Cache) Put(id string, rec records.Record) {
	switch {
	case c.bounded != nil:
		c.bounded.Add(id, rec)
	case c.all != nil:
		c.all.Store(id, rec)
	}
}

// Evict removes the entry if present; a miss is not an error.
func (c *Cache) Evict(id string) {
	switch {
	case c.bounded != nil:
		c.bounded.Remove(id)
	case c.all != nil:
		c.all.Delete(id)
	}
}

// Touch marks the entry most-recently-used without reading it.
func (c *Cache) Touch(id string) {
	if c.bounded != nil {
		c.bounded.Get(id)
	}
}

// Contains reports residency without touching recency.
func (c *Cache) Contains(id string) bool {
	switch {
	case c.bounded != nil:
		return c.bounded.Contains(id)
	case c.all != nil:
		_, ok := c.all.Load(id)
		return ok
	}
	return false
}

func (c *Cache) Len() int {
	switch {
	case c.bounded != nil:
		return c.bounded.Len()
	case c.all != nil:
		return c.all.Size()
	}
	return 0
}
