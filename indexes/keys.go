package indexes

import (
	"encoding/binary"
	"encoding/json"
	"math"
	"strings"

	"github.com/fictorial/filesysdb/records"
)

// Index keys are tuples of extracted field values rendered to byte
// strings whose plain byte order is the index order. Each component is a
// type tag, a payload, and a 0x00 terminator; tags order value kinds as
// null < bool < number < string < composite < missing, so records lacking
// an indexed field sort after every record that has it.
const (
	tagNull      = 0x01
	tagBool      = 0x02
	tagNumber    = 0x03
	tagString    = 0x04
	tagComposite = 0x05
	tagMissing   = 0xfe
)

// Missing is the extraction sentinel for an absent field. Distinct from
// an explicit null in both identity and ordering.
type missing struct{}

var Missing = missing{}

func appendComponent(dst []byte, v any, caseInsensitive bool) []byte {
	switch val := v.(type) {
	case missing:
		dst = append(dst, tagMissing)
	case nil:
		dst = append(dst, tagNull)
	case bool:
		dst = append(dst, tagBool)
		if val {
			dst = append(dst, 1)
		} else {
			dst = append(dst, 0)
		}
	case float64:
		dst = appendNumber(dst, val)
	case int:
		dst = appendNumber(dst, float64(val))
	case int64:
		dst = appendNumber(dst, float64(val))
	case string:
		if caseInsensitive {
			val = strings.ToLower(val)
		}
		dst = append(dst, tagString)
		dst = appendEscaped(dst, []byte(val))
	default:
		// arrays and nested mappings index by their canonical JSON text
		raw, err := json.Marshal(val)
		if err != nil {
			raw = []byte("null")
		}
		if caseInsensitive {
			raw = []byte(strings.ToLower(string(raw)))
		}
		dst = append(dst, tagComposite)
		dst = appendEscaped(dst, raw)
	}
	return append(dst, 0x00)
}

// appendNumber writes an IEEE-754 double so that byte order matches
// numeric order: positive values flip the sign bit, negatives flip all.
func appendNumber(dst []byte, f float64) []byte {
	bits := math.Float64bits(f)
	if bits&(1<<63) == 0 {
		bits ^= 1 << 63
	} else {
		bits = ^bits
	}
	dst = append(dst, tagNumber)
	return binary.BigEndian.AppendUint64(dst, bits)
}

// appendEscaped keeps the 0x00 terminator unambiguous inside variable
// length payloads: a payload NUL becomes 0x00 0xff.
func appendEscaped(dst, payload []byte) []byte {
	for _, b := range payload {
		dst = append(dst, b)
		if b == 0x00 {
			dst = append(dst, 0xff)
		}
	}
	return dst
}

// extractKey renders the record's values at fields into an index key.
func extractKey(rec records.Record, fields []string, caseInsensitive bool) string {
	key := make([]byte, 0, 16*len(fields))
	for _, f := range fields {
		v, ok := rec.Field(f)
		if !ok {
			key = appendComponent(key, Missing, caseInsensitive)
			continue
		}
		key = appendComponent(key, v, caseInsensitive)
	}
	return string(key)
}

// encodeValues renders caller-supplied lookup values with the same
// case-folding rule as extraction.
func encodeValues(values []any, caseInsensitive bool) string {
	key := make([]byte, 0, 16*len(values))
	for _, v := range values {
		key = appendComponent(key, v, caseInsensitive)
	}
	return string(key)
}
