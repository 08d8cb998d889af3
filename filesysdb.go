// Package filesysdb is an embeddable document store that persists each
// record as an individual file, grouped into named collections, with a
// per-collection in-memory LRU cache and optional secondary indexes.
//
// A Registry is built once by Open from a declarative Options value and
// is immutable afterwards: collections, their cache capacities, and
// their indexes cannot change for the life of the process. Indexes are
// held in memory only and are rebuilt eagerly by Open, which replays
// every record already on disk through the index insert path.
//
// One process owns a storage location. Concurrent goroutines sharing a
// Registry are safe; concurrent external processes are not coordinated.
package filesysdb

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync/atomic"

	"github.com/fictorial/filesysdb/cache"
	"github.com/fictorial/filesysdb/filesysdb_errors"
	"github.com/fictorial/filesysdb/indexes"
	"github.com/fictorial/filesysdb/store"
	"github.com/fictorial/filesysdb/utils"
)

// Registry maps collection names to collections. Created complete by
// Open; only Close mutates it afterwards.
type Registry struct {
	basePath    string
	collections map[string]*Collection
	closed      atomic.Bool
}

// Open provisions every configured collection under basePath, registers
// and backfills its indexes from the records already on disk, and
// returns the ready Registry. A unique-index conflict between existing
// records fails Open.
func Open(basePath string, opts Options) (*Registry, error) {
	opts.SetDefaults()
	if len(opts.Collections) == 0 {
		return nil, errors.New("filesysdb: no collections configured")
	}
	reg := &Registry{
		basePath:    basePath,
		collections: make(map[string]*Collection, len(opts.Collections)),
	}
	for i := range opts.Collections {
		co := &opts.Collections[i]
		if co.Name == "" {
			return nil, errors.New("filesysdb: collection with empty name")
		}
		if _, ok := reg.collections[co.Name]; ok {
			return nil, fmt.Errorf("filesysdb: duplicate collection %q", co.Name)
		}
		ctx := utils.WithDefaultArgs(context.Background(), "collection", co.Name)
		st, err := store.New(filepath.Join(basePath, co.Name), opts.Codec)
		if err != nil {
			return nil, err
		}
		idx := indexes.NewManager(co.Name)
		for _, io := range co.Indexes {
			if err := idx.AddIndex(io.Fields, io.Unique, io.CaseInsensitive); err != nil {
				return nil, err
			}
			opts.Logger.InfoCtx(ctx, "index added", "fields", io.Fields,
				"unique", io.Unique, "case_insensitive", io.CaseInsensitive)
		}
		count, err := backfill(st, idx, len(co.Indexes) > 0)
		if err != nil {
			return nil, fmt.Errorf("collection %q: %w", co.Name, err)
		}
		opts.Logger.InfoCtx(ctx, "collection opened", "objects", count)
		reg.collections[co.Name] = &Collection{
			name:        co.Name,
			codec:       opts.Codec,
			store:       st,
			cache:       cache.New(co.cacheCapacity()),
			idx:         idx,
			log:         opts.Logger,
			generateIds: co.GenerateIds,
		}
	}
	return reg, nil
}

// backfill replays every stored record through the index insert path and
// counts the collection; without indexes it only counts.
func backfill(st *store.Store, idx *indexes.Manager, indexed bool) (int, error) {
	count := 0
	for id, err := range st.EachId() {
		if err != nil {
			return 0, err
		}
		count++
		if !indexed {
			continue
		}
		rec, err := st.ReadRecord(id)
		if err != nil {
			return 0, err
		}
		if err := idx.OnSave(id, nil, rec); err != nil {
			return 0, err
		}
	}
	return count, nil
}

// Collection returns the named collection, or ErrNoSuchCollection.
func (reg *Registry) Collection(name string) (*Collection, error) {
	if reg.closed.Load() {
		return nil, filesysdb_errors.ErrClosed
	}
	c, ok := reg.collections[name]
	if !ok {
		return nil, errors.Join(filesysdb_errors.ErrNoSuchCollection,
			fmt.Errorf("collection %q", name))
	}
	return c, nil
}

// BasePath returns the storage location the registry was opened on.
func (reg *Registry) BasePath() string { return reg.basePath }

// CollectionNames returns the configured collection names.
func (reg *Registry) CollectionNames() []string {
	names := make([]string, 0, len(reg.collections))
	for name := range reg.collections {
		names = append(names, name)
	}
	return names
}

// Close marks the registry closed. Every mutation is durable when its
// call returns, so there is nothing buffered to flush; Close only stops
// handing out collections.
func (reg *Registry) Close() error {
	reg.closed.Store(true)
	return nil
}
