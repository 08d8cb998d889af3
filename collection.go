package filesysdb

import (
	"errors"
	"fmt"
	"iter"

	"github.com/google/uuid"

	"github.com/fictorial/filesysdb/cache"
	"github.com/fictorial/filesysdb/filesysdb_errors"
	"github.com/fictorial/filesysdb/indexes"
	"github.com/fictorial/filesysdb/records"
	"github.com/fictorial/filesysdb/store"
	"github.com/fictorial/filesysdb/utils"
)

// Collection is one named namespace of records: a record store on disk,
// a cache over it, and the collection's secondary indexes. Disk is the
// source of truth; cache and indexes are updated synchronously within
// every mutating call, so they never drift from it between calls.
type Collection struct {
	name        string
	codec       records.Codec
	store       *store.Store
	cache       *cache.Cache
	idx         *indexes.Manager
	locks       utils.LockTable[string]
	log         utils.Logger
	generateIds bool
}

func (c *Collection) Name() string { return c.name }

// ObjectPath returns the canonical file backing id. Diagnostic only;
// mutating the file directly bypasses cache and index maintenance.
func (c *Collection) ObjectPath(id string) string {
	return c.store.Path(id)
}

// Save persists rec, replacing any record with the same id entirely.
// A record without an id fails ErrMissingId unless the collection
// generates ids. A unique index conflict fails ErrDuplicateKey and the
// already-performed disk write is rolled back before the error surfaces,
// leaving disk, cache, and indexes in their pre-call state.
func (c *Collection) Save(rec records.Record) (records.Record, error) {
	id, ok := rec.Id()
	if !ok {
		if !c.generateIds {
			return nil, errors.Join(filesysdb_errors.ErrMissingId,
				fmt.Errorf("collection %q", c.name))
		}
		id = uuid.NewString()
		rec[records.IdField] = id
	}

	c.locks.Lock(id)
	defer c.locks.Unlock(id)

	// previous state, for index maintenance and rollback
	var old records.Record
	var oldBytes []byte
	if cached, ok := c.cache.Get(id); ok {
		old = cached
	} else {
		data, err := c.store.Read(id)
		switch {
		case errors.Is(err, filesysdb_errors.ErrNotFound):
			// first save of this id
		case err != nil:
			return nil, err
		default:
			oldBytes = data
			if old, err = c.codec.Decode(data); err != nil {
				return nil, errors.Join(filesysdb_errors.ErrCorrupt,
					fmt.Errorf("collection %q, id %q: %v", c.name, id, err))
			}
		}
	}

	data, err := c.codec.Encode(rec)
	if err != nil {
		return nil, fmt.Errorf("encode id %q: %w", id, err)
	}
	if err := c.store.Write(id, data); err != nil {
		return nil, err
	}
	if err := c.idx.OnSave(id, old, rec); err != nil {
		c.rollbackWrite(id, old, oldBytes)
		return nil, err
	}
	c.cache.Put(id, rec)
	SaveCount.WithLabelValues(c.name).Inc()
	return rec, nil
}

// rollbackWrite restores the record file to its pre-save content after
// an index update was refused.
func (c *Collection) rollbackWrite(id string, old records.Record, oldBytes []byte) {
	if old == nil {
		if err := c.store.Delete(id); err != nil {
			c.log.Error("rollback delete failed", "collection", c.name, "id", id, "err", err)
		}
		return
	}
	if oldBytes == nil {
		var err error
		if oldBytes, err = c.codec.Encode(old); err != nil {
			c.log.Error("rollback encode failed", "collection", c.name, "id", id, "err", err)
			return
		}
	}
	if err := c.store.Write(id, oldBytes); err != nil {
		c.log.Error("rollback write failed", "collection", c.name, "id", id, "err", err)
	}
}

// Get returns the record with the given id, from cache when resident,
// repopulating the cache from disk on a miss. The miss path holds the
// id's write lock: repopulating without it could race a concurrent
// delete and plant the deleted record back into the cache.
func (c *Collection) Get(id string) (records.Record, error) {
	if rec, ok := c.cache.Get(id); ok {
		CacheHitCount.WithLabelValues(c.name).Inc()
		return rec, nil
	}
	CacheMissCount.WithLabelValues(c.name).Inc()
	c.locks.Lock(id)
	defer c.locks.Unlock(id)
	if rec, ok := c.cache.Get(id); ok {
		// a writer repopulated the cache while we waited
		return rec, nil
	}
	rec, err := c.store.ReadRecord(id)
	if err != nil {
		return nil, err
	}
	c.cache.Put(id, rec)
	return rec, nil
}

// Delete removes rec by its id field.
func (c *Collection) Delete(rec records.Record) error {
	id, ok := rec.Id()
	if !ok {
		return errors.Join(filesysdb_errors.ErrMissingId,
			fmt.Errorf("collection %q", c.name))
	}
	return c.DeleteId(id)
}

// DeleteId removes the record with the given id from disk, every index,
// and the cache. Deleting an absent id fails ErrNotFound.
func (c *Collection) DeleteId(id string) error {
	c.locks.Lock(id)
	defer c.locks.Unlock(id)

	rec, ok := c.cache.Get(id)
	if !ok {
		var err error
		if rec, err = c.store.ReadRecord(id); err != nil {
			return err
		}
	}
	if err := c.store.Delete(id); err != nil {
		return err
	}
	c.idx.OnDelete(id, rec)
	c.cache.Evict(id)
	DeleteCount.WithLabelValues(c.name).Inc()
	return nil
}

// Count scans the collection directory. O(n); nothing is cached.
func (c *Collection) Count() (int, error) {
	return c.store.Count()
}

// EachObjectId lazily yields every id on disk, in directory order. The
// sequence restarts from the top when re-ranged and is not a snapshot:
// concurrent mutations may or may not be observed.
func (c *Collection) EachObjectId() iter.Seq2[string, error] {
	return c.store.EachId()
}

// EachObject lazily yields every record, loading each through the cache.
// Records deleted between enumeration and load are skipped.
func (c *Collection) EachObject() iter.Seq2[records.Record, error] {
	return c.eachById(c.store.EachId())
}

// EachIndexedObject yields records in ascending order of the index on
// exactly the given field list, ids within one key in insertion order.
// Fails ErrNoSuchIndex if no such index was configured.
func (c *Collection) EachIndexedObject(fields []string) (iter.Seq2[records.Record, error], error) {
	ids, err := c.idx.Each(fields)
	if err != nil {
		return nil, err
	}
	return c.eachIndexed(ids), nil
}

// Lookup yields the records whose indexed key for fields equals values,
// folded by the index's case rule.
func (c *Collection) Lookup(fields []string, values []any) (iter.Seq2[records.Record, error], error) {
	ids, err := c.idx.Lookup(fields, values)
	if err != nil {
		return nil, err
	}
	return c.eachIndexed(ids), nil
}

func (c *Collection) eachById(ids iter.Seq2[string, error]) iter.Seq2[records.Record, error] {
	return func(yield func(records.Record, error) bool) {
		for id, err := range ids {
			if err != nil {
				if !yield(nil, err) {
					return
				}
				continue
			}
			rec, err := c.Get(id)
			if errors.Is(err, filesysdb_errors.ErrNotFound) {
				continue // deleted mid-iteration
			}
			if !yield(rec, err) {
				return
			}
		}
	}
}

func (c *Collection) eachIndexed(ids iter.Seq[string]) iter.Seq2[records.Record, error] {
	return func(yield func(records.Record, error) bool) {
		for id := range ids {
			rec, err := c.Get(id)
			if errors.Is(err, filesysdb_errors.ErrNotFound) {
				continue
			}
			if !yield(rec, err) {
				return
			}
		}
	}
}
