// Package records defines the schema-free record value type shared by
// every layer of filesysdb, plus the codec boundary used to persist it.
//
// A Record is a JSON-shaped mapping: values are strings, float64 numbers,
// bools, nil, []any sequences, or nested map[string]any mappings. The only
// schema rule is the mandatory per-collection-unique "id" field.
package records

import (
	"strconv"
)

// IdField is the one mandatory field of every record.
const IdField = "id"

type Record map[string]any

// Id returns the record's id rendered as a string, or false if the id
// field is absent or not a scalar the store can name a file after.
func (r Record) Id() (string, bool) {
	v, ok := r[IdField]
	if !ok {
		return "", false
	}
	return IdString(v)
}

// IdString renders a scalar id value the same way regardless of whether
// it arrived as a string, a decoded JSON number, or a native integer.
func IdString(v any) (string, bool) {
	switch id := v.(type) {
	case string:
		if id == "" {
			return "", false
		}
		return id, true
	case float64:
		return strconv.FormatFloat(id, 'g', -1, 64), true
	case int:
		return strconv.Itoa(id), true
	case int64:
		return strconv.FormatInt(id, 10), true
	default:
		return "", false
	}
}

// Field reads a top-level field, reporting presence separately from
// value so callers can tell a missing field from an explicit null.
func (r Record) Field(name string) (any, bool) {
	v, ok := r[name]
	return v, ok
}
