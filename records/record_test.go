package records

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestId(t *testing.T) {
	id, ok := Record{"id": "abc"}.Id()
	assert.True(t, ok)
	assert.Equal(t, "abc", id)

	// a numeric id renders the same whether it came from JSON or code
	fromJSON, ok := Record{"id": 42.0}.Id()
	assert.True(t, ok)
	fromCode, ok2 := Record{"id": 42}.Id()
	assert.True(t, ok2)
	assert.Equal(t, fromJSON, fromCode)
	assert.Equal(t, "42", fromJSON)

	_, ok = Record{}.Id()
	assert.False(t, ok)
	_, ok = Record{"id": ""}.Id()
	assert.False(t, ok)
	_, ok = Record{"id": []any{"not", "scalar"}}.Id()
	assert.False(t, ok)
}

func TestFieldPresenceVsNull(t *testing.T) {
	rec := Record{"a": nil}
	v, ok := rec.Field("a")
	assert.True(t, ok)
	assert.Nil(t, v)
	_, ok = rec.Field("b")
	assert.False(t, ok)
}

func TestJSONCodecRoundTrip(t *testing.T) {
	codec := JSONCodec{}
	assert.Equal(t, "json", codec.Extension())

	in := Record{
		"id":     "r1",
		"name":   "widget",
		"qty":    3.0,
		"frac":   0.5,
		"active": true,
		"note":   nil,
		"tags":   []any{"a", "b"},
		"dims":   map[string]any{"w": 2.0, "h": 4.0},
	}
	data, err := codec.Encode(in)
	require.NoError(t, err)
	out, err := codec.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestJSONCodecRejectsGarbage(t *testing.T) {
	_, err := JSONCodec{}.Decode([]byte("not json"))
	assert.Error(t, err)
}
