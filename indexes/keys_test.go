package indexes

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fictorial/filesysdb/records"
)

func key(v any) string {
	return extractKey(records.Record{"f": v}, []string{"f"}, false)
}

func TestKindOrdering(t *testing.T) {
	missingKey := extractKey(records.Record{}, []string{"f"}, false)
	keys := []string{
		key(nil),
		key(false),
		key(-1.5),
		key("a"),
		missingKey,
	}
	assert.True(t, sort.StringsAreSorted(keys), "null < bool < number < string < missing")
}

func TestNumberOrdering(t *testing.T) {
	values := []float64{-1e9, -2.5, -1, 0, 0.5, 1, 3.14, 42, 1e12}
	keys := make([]string, len(values))
	for i, v := range values {
		keys[i] = key(v)
	}
	assert.True(t, sort.StringsAreSorted(keys))
}

func TestStringOrdering(t *testing.T) {
	assert.Less(t, key("l"), key("m"))
	assert.Less(t, key("m"), key("s"))
	assert.Less(t, key("s"), key("xl"))
}

func TestMissingDistinctFromNull(t *testing.T) {
	missingKey := extractKey(records.Record{}, []string{"f"}, false)
	assert.NotEqual(t, key(nil), missingKey)
	assert.Greater(t, missingKey, key("zzz"), "missing orders after present values")
}

func TestCaseFolding(t *testing.T) {
	ci := func(v any) string {
		return extractKey(records.Record{"f": v}, []string{"f"}, true)
	}
	assert.Equal(t, ci("XL"), ci("xl"))
	assert.NotEqual(t, key("XL"), key("xl"))
	assert.Equal(t, ci("XL"), encodeValues([]any{"xl"}, true))
}

func TestIntAndFloatAgree(t *testing.T) {
	assert.Equal(t, key(7), key(7.0))
	assert.Equal(t, key(int64(7)), key(7.0))
}

func TestTupleKeys(t *testing.T) {
	a := extractKey(records.Record{"x": "a", "y": 1.0}, []string{"x", "y"}, false)
	b := extractKey(records.Record{"x": "a", "y": 2.0}, []string{"x", "y"}, false)
	c := extractKey(records.Record{"x": "b", "y": 0.0}, []string{"x", "y"}, false)
	assert.Less(t, a, b)
	assert.Less(t, b, c)
	assert.Equal(t, a, encodeValues([]any{"a", 1.0}, false))
}

func TestEmbeddedNulByte(t *testing.T) {
	// a NUL inside a value must not make two distinct tuples collide
	a := extractKey(records.Record{"x": "a\x00", "y": "b"}, []string{"x", "y"}, false)
	b := extractKey(records.Record{"x": "a", "y": "\x00b"}, []string{"x", "y"}, false)
	assert.NotEqual(t, a, b)
}
