package filesysdb

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/fictorial/filesysdb/indexes"
)

var CacheHitCount = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "filesysdb",
	Subsystem: "cache",
	Name:      "hits",
}, []string{"collection"})

var CacheMissCount = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "filesysdb",
	Subsystem: "cache",
	Name:      "misses",
}, []string{"collection"})

var SaveCount = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "filesysdb",
	Subsystem: "collection",
	Name:      "saves",
}, []string{"collection"})

var DeleteCount = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "filesysdb",
	Subsystem: "collection",
	Name:      "deletes",
}, []string{"collection"})

// RegisterMetrics registers every filesysdb collector with reg. Optional;
// embedders that do not scrape can skip it.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(
		CacheHitCount, CacheMissCount, SaveCount, DeleteCount,
		indexes.LookupCount, indexes.UniqueConflictCount, indexes.EntryCount,
	)
}
