package record

import (
	"encoding/json"
	"reflect"

	"github.com/jinzhu/copier"
)

// Record is an ordered mapping of field names to JSON-compatible values.
//
// Values are string, json.Number or other numeric types, bool, nil,
// []any and nested *Record. Records produced by this package never share
// mutable state with their inputs. The zero value is an empty record.
type Record struct {
	keys   []string
	values map[string]any
}

// New returns an empty record
func New() *Record {
	return &Record{values: map[string]any{}}
}

// Len returns the number of fields
func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

// Keys returns the field names in order
func (r *Record) Keys() []string {
	if r == nil {
		return nil
	}
	return append([]string(nil), r.keys...)
}

// Get returns the value of the field
func (r *Record) Get(key string) (any, bool) {
	if r == nil {
		return nil, false
	}
	v, ok := r.values[key]
	return v, ok
}

// Has returns true if the field is present
func (r *Record) Has(key string) bool {
	_, ok := r.Get(key)
	return ok
}

// Set sets the field value. An existing field keeps its position,
// a new field is appended.
func (r *Record) Set(key string, val any) *Record {
	if r.values == nil {
		r.values = map[string]any{}
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = val
	return r
}

// Delete removes the field and returns true if it was present
func (r *Record) Delete(key string) bool {
	if _, ok := r.values[key]; !ok {
		return false
	}
	delete(r.values, key)
	for i, k := range r.keys {
		if k == key {
			r.keys = append(r.keys[:i], r.keys[i+1:]...)
			break
		}
	}
	return true
}

// Clone returns a deep copy of the record
func (r *Record) Clone() *Record {
	if r == nil {
		return New()
	}
	c := &Record{
		keys:   append([]string(nil), r.keys...),
		values: make(map[string]any, len(r.values)),
	}
	for k, v := range r.values {
		c.values[k] = cloneValue(v)
	}
	return c
}

// Pick returns a new record with the named fields that are present,
// in the order of the record. Names that are absent are ignored.
func (r *Record) Pick(names ...string) *Record {
	set := nameSet(names)
	out := New()
	for _, k := range r.Keys() {
		if _, ok := set[k]; ok {
			out.Set(k, cloneValue(r.values[k]))
		}
	}
	return out
}

// Omit returns a new record without the named fields
func (r *Record) Omit(names ...string) *Record {
	set := nameSet(names)
	out := New()
	for _, k := range r.Keys() {
		if _, ok := set[k]; !ok {
			out.Set(k, cloneValue(r.values[k]))
		}
	}
	return out
}

// Merge returns a new record with the fields of other added to a copy of r.
// Values from other win on collision; colliding fields keep their position in r.
func (r *Record) Merge(other *Record) *Record {
	out := r.Clone()
	for _, k := range other.Keys() {
		out.Set(k, cloneValue(other.values[k]))
	}
	return out
}

func nameSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case nil, string, bool, json.Number, float64, float32, int, int32, int64, uint, uint32, uint64:
		return t
	case *Record:
		return t.Clone()
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = cloneValue(t[i])
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = cloneValue(e)
		}
		return out
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Struct, reflect.Slice, reflect.Map:
		dst := reflect.New(rv.Type())
		if err := copier.CopyWithOption(dst.Interface(), v, copier.Option{DeepCopy: true}); err == nil {
			return dst.Elem().Interface()
		}
	}
	return v
}
