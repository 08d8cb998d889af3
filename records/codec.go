package records

import "encoding/json"

// Codec turns a Record into stored bytes and back. The store treats it as
// opaque; it only borrows Extension to name record files.
type Codec interface {
	// Extension is the file extension (without dot) for stored records.
	Extension() string
	Encode(rec Record) ([]byte, error)
	Decode(data []byte) (Record, error)
}

// JSONCodec is the default codec. Numbers decode as float64, which is
// also the numeric type index keys are extracted against.
type JSONCodec struct{}

func (JSONCodec) Extension() string { return "json" }

func (JSONCodec) Encode(rec Record) ([]byte, error) {
	return json.Marshal(rec)
}

func (JSONCodec) Decode(data []byte) (Record, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return rec, nil
}
