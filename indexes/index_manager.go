package indexes

import (
	"errors"
	"fmt"
	"iter"
	"sort"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/fictorial/filesysdb/filesysdb_errors"
	"github.com/fictorial/filesysdb/records"
)

var LookupCount = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "filesysdb",
	Subsystem: "indexes",
	Name:      "lookups",
}, []string{"collection", "fields"})

var UniqueConflictCount = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "filesysdb",
	Subsystem: "indexes",
	Name:      "unique_conflicts",
}, []string{"collection", "fields"})

var EntryCount = prometheus.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "filesysdb",
	Subsystem: "indexes",
	Name:      "entries",
}, []string{"collection", "fields"})

// Index maps encoded field-value keys to record ids and keeps its keys
// sorted so iteration is ordered. A unique index holds at most one id
// per key; a non-unique bucket keeps ids in insertion order.
type Index struct {
	fields          []string
	unique          bool
	caseInsensitive bool

	buckets map[string][]string
	keys    []string // sorted
	size    int      // total ids across buckets
}

func (ix *Index) Fields() []string      { return ix.fields }
func (ix *Index) Unique() bool          { return ix.unique }
func (ix *Index) CaseInsensitive() bool { return ix.caseInsensitive }

func (ix *Index) insert(key, id string) {
	bucket, ok := ix.buckets[key]
	if !ok {
		pos := sort.SearchStrings(ix.keys, key)
		ix.keys = append(ix.keys, "")
		copy(ix.keys[pos+1:], ix.keys[pos:])
		ix.keys[pos] = key
	}
	for _, existing := range bucket {
		if existing == id {
			return
		}
	}
	ix.buckets[key] = append(bucket, id)
	ix.size++
}

func (ix *Index) remove(key, id string) {
	bucket, ok := ix.buckets[key]
	if !ok {
		return
	}
	for i, existing := range bucket {
		if existing != id {
			continue
		}
		bucket = append(bucket[:i], bucket[i+1:]...)
		ix.size--
		if len(bucket) == 0 {
			delete(ix.buckets, key)
			pos := sort.SearchStrings(ix.keys, key)
			if pos < len(ix.keys) && ix.keys[pos] == key {
				ix.keys = append(ix.keys[:pos], ix.keys[pos+1:]...)
			}
		} else {
			ix.buckets[key] = bucket
		}
		return
	}
}

// conflicts reports whether inserting id under key would violate the
// unique constraint, i.e. the key already maps to a different id.
func (ix *Index) conflicts(key, id string) bool {
	if !ix.unique {
		return false
	}
	for _, existing := range ix.buckets[key] {
		if existing != id {
			return true
		}
	}
	return false
}

// Manager owns every index of one collection. Bucket mutation is a
// critical section: OnSave and OnDelete run under one writer lock, so a
// save is never observable with an id under both its old and new keys,
// or under neither.
type Manager struct {
	collection string

	mu      sync.RWMutex
	indexes map[string]*Index
	order   []*Index
}

func NewManager(collection string) *Manager {
	return &Manager{
		collection: collection,
		indexes:    make(map[string]*Index),
	}
}

func fieldsKey(fields []string) string {
	return strings.Join(fields, ",")
}

// AddIndex registers an index shape. Call only before the collection's
// first save or delete; existing records are folded in by the opener's
// backfill replay of OnSave(nil, rec).
func (m *Manager) AddIndex(fields []string, unique, caseInsensitive bool) error {
	if len(fields) == 0 {
		return fmt.Errorf("filesysdb: index needs at least one field")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	fk := fieldsKey(fields)
	if _, ok := m.indexes[fk]; ok {
		return fmt.Errorf("filesysdb: duplicate index on (%s)", fk)
	}
	ix := &Index{
		fields:          append([]string(nil), fields...),
		unique:          unique,
		caseInsensitive: caseInsensitive,
		buckets:         make(map[string][]string),
	}
	m.indexes[fk] = ix
	m.order = append(m.order, ix)
	return nil
}

// Has reports whether an index with exactly this field list exists.
func (m *Manager) Has(fields []string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.indexes[fieldsKey(fields)]
	return ok
}

// OnSave moves id from its old keys to its new keys across every index,
// as one atomic step. Unique constraints are checked across all indexes
// before anything is mutated, so a DuplicateKey error leaves every index
// exactly as it was.
func (m *Manager) OnSave(id string, old, rec records.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	newKeys := make([]string, len(m.order))
	oldKeys := make([]string, len(m.order))
	for i, ix := range m.order {
		newKeys[i] = extractKey(rec, ix.fields, ix.caseInsensitive)
		if old != nil {
			oldKeys[i] = extractKey(old, ix.fields, ix.caseInsensitive)
		}
	}
	for i, ix := range m.order {
		if old != nil && oldKeys[i] == newKeys[i] {
			continue
		}
		if ix.conflicts(newKeys[i], id) {
			UniqueConflictCount.WithLabelValues(m.collection, fieldsKey(ix.fields)).Inc()
			return errors.Join(filesysdb_errors.ErrDuplicateKey,
				fmt.Errorf("collection %q, index (%s), id %q", m.collection, fieldsKey(ix.fields), id))
		}
	}
	for i, ix := range m.order {
		if old != nil {
			if oldKeys[i] == newKeys[i] {
				continue
			}
			ix.remove(oldKeys[i], id)
		}
		ix.insert(newKeys[i], id)
		EntryCount.WithLabelValues(m.collection, fieldsKey(ix.fields)).Set(float64(ix.size))
	}
	return nil
}

// OnDelete drops id from every index under the record's current keys.
func (m *Manager) OnDelete(id string, rec records.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ix := range m.order {
		ix.remove(extractKey(rec, ix.fields, ix.caseInsensitive), id)
		EntryCount.WithLabelValues(m.collection, fieldsKey(ix.fields)).Set(float64(ix.size))
	}
}

// Lookup yields the ids whose extracted key equals values, in bucket
// insertion order. Values are folded with the index's own case rule.
func (m *Manager) Lookup(fields []string, values []any) (iter.Seq[string], error) {
	m.mu.RLock()
	ix, ok := m.indexes[fieldsKey(fields)]
	if !ok {
		m.mu.RUnlock()
		return nil, errors.Join(filesysdb_errors.ErrNoSuchIndex,
			fmt.Errorf("collection %q, fields (%s)", m.collection, fieldsKey(fields)))
	}
	key := encodeValues(values, ix.caseInsensitive)
	ids := append([]string(nil), ix.buckets[key]...)
	m.mu.RUnlock()
	LookupCount.WithLabelValues(m.collection, fieldsKey(fields)).Inc()
	return func(yield func(string) bool) {
		for _, id := range ids {
			if !yield(id) {
				return
			}
		}
	}, nil
}

// Each yields every id in the index in ascending key order; ids sharing
// a key come out in insertion order. The key list is captured when
// iteration starts; each bucket is read when its key is reached.
func (m *Manager) Each(fields []string) (iter.Seq[string], error) {
	m.mu.RLock()
	ix, ok := m.indexes[fieldsKey(fields)]
	m.mu.RUnlock()
	if !ok {
		return nil, errors.Join(filesysdb_errors.ErrNoSuchIndex,
			fmt.Errorf("collection %q, fields (%s)", m.collection, fieldsKey(fields)))
	}
	return func(yield func(string) bool) {
		m.mu.RLock()
		keys := append([]string(nil), ix.keys...)
		m.mu.RUnlock()
		for _, key := range keys {
			m.mu.RLock()
			ids := append([]string(nil), ix.buckets[key]...)
			m.mu.RUnlock()
			for _, id := range ids {
				if !yield(id) {
					return
				}
			}
		}
	}, nil
}
