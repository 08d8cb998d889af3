package filesysdb

import (
	"log/slog"

	"github.com/fictorial/filesysdb/cache"
	"github.com/fictorial/filesysdb/records"
	"github.com/fictorial/filesysdb/utils"
)

// CacheOff disables the in-memory cache for a collection; every read
// goes to disk.
const CacheOff = -1

// Options configures a Registry. Supplied once to Open; the resulting
// Registry is immutable.
type Options struct {
	// Logger defaults to a slog text logger at Info level.
	Logger utils.Logger
	// Codec encodes and decodes stored records; defaults to JSON.
	Codec records.Codec
	// Collections declares every collection of the registry.
	Collections []CollectionOptions
}

// CollectionOptions declares one collection.
type CollectionOptions struct {
	Name string
	// CacheSize is the number of decoded records kept in memory.
	// Zero means unbounded (the default); CacheOff disables caching.
	CacheSize int
	// GenerateIds assigns a uuid to records saved without an id field
	// instead of rejecting them.
	GenerateIds bool
	Indexes     []IndexOptions
}

// IndexOptions declares one secondary index over an ordered field list.
type IndexOptions struct {
	Fields          []string
	Unique          bool
	CaseInsensitive bool
}

func (o *Options) SetDefaults() {
	if o.Logger == nil {
		o.Logger = utils.NewDefaultLogger(slog.LevelInfo)
	}
	if o.Codec == nil {
		o.Codec = records.JSONCodec{}
	}
}

func (co *CollectionOptions) cacheCapacity() int {
	switch {
	case co.CacheSize == CacheOff:
		return 0
	case co.CacheSize == 0:
		return cache.Unbounded
	default:
		return co.CacheSize
	}
}
