package record

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/cockroachdb/errors"
)

// Parse returns a record decoded from a JSON object.
// Field order is preserved, nested objects are decoded as *Record
// and numbers as json.Number.
func Parse(data []byte) (*Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, errors.WithMessage(err, "unable to parse JSON")
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.Errorf("expected JSON object")
	}

	r, err := decodeObject(dec)
	if err != nil {
		return nil, err
	}
	if _, err = dec.Token(); err != io.EOF {
		return nil, errors.Errorf("unexpected data after JSON object")
	}
	return r, nil
}

// MarshalJSON implements json.Marshaler, fields are emitted in order
func (r *Record) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("null"), nil
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		buf.Write(kb)
		buf.WriteByte(':')

		vb, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, errors.WithMessagef(err, "unable to encode field %q", k)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (r *Record) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	*r = *parsed
	return nil
}

// String returns JSON representation of the record
func (r *Record) String() string {
	b, err := r.MarshalJSON()
	if err != nil {
		return "{}"
	}
	return string(b)
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, errors.WithMessage(err, "unable to parse JSON")
	}

	d, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}
	switch d {
	case '{':
		return decodeObject(dec)
	case '[':
		var list []any
		for dec.More() {
			v, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		if _, err = dec.Token(); err != nil {
			return nil, errors.WithMessage(err, "unable to parse JSON")
		}
		if list == nil {
			list = []any{}
		}
		return list, nil
	}
	return nil, errors.Errorf("unexpected delimiter: %s", d)
}

// decodeObject reads fields up to and including the closing brace
func decodeObject(dec *json.Decoder) (*Record, error) {
	r := New()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, errors.WithMessage(err, "unable to parse JSON")
		}
		key, ok := tok.(string)
		if !ok {
			return nil, errors.Errorf("expected object key")
		}
		val, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		r.Set(key, val)
	}
	if _, err := dec.Token(); err != nil {
		return nil, errors.WithMessage(err, "unable to parse JSON")
	}
	return r, nil
}
