package record

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	r, err := Parse([]byte(`{"user":"alice","action":"login","n":12,"nested":{"z":1,"a":[true,null]}}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"user", "action", "n", "nested"}, r.Keys())

	n, ok := r.Get("n")
	require.True(t, ok)
	assert.Equal(t, json.Number("12"), n)

	v, _ := r.Get("nested")
	nested, ok := v.(*Record)
	require.True(t, ok)
	assert.Equal(t, []string{"z", "a"}, nested.Keys())

	assert.Equal(t, `{"user":"alice","action":"login","n":12,"nested":{"z":1,"a":[true,null]}}`, r.String())

	tcases := []struct {
		in  string
		err string
	}{
		{in: `[]`, err: "expected JSON object"},
		{in: `"str"`, err: "expected JSON object"},
		{in: ``, err: "unable to parse JSON: EOF"},
		{in: `{"a":1}{}`, err: "unexpected data after JSON object"},
	}
	for _, tc := range tcases {
		_, err := Parse([]byte(tc.in))
		assert.EqualError(t, err, tc.err, tc.in)
	}

	_, err = Parse([]byte(`{"a":}`))
	assert.Error(t, err)
}

func TestSetDelete(t *testing.T) {
	r := New().Set("a", 1).Set("b", 2).Set("c", 3)
	r.Set("b", "two")
	assert.Equal(t, []string{"a", "b", "c"}, r.Keys())
	assert.Equal(t, `{"a":1,"b":"two","c":3}`, r.String())

	assert.True(t, r.Delete("a"))
	assert.False(t, r.Delete("a"))
	assert.Equal(t, []string{"b", "c"}, r.Keys())
	assert.Equal(t, 2, r.Len())
	assert.False(t, r.Has("a"))

	var empty *Record
	assert.Equal(t, 0, empty.Len())
	assert.Nil(t, empty.Keys())
	assert.False(t, empty.Has("a"))
}

func TestPickOmit(t *testing.T) {
	r := New().Set("user", "alice").Set("action", "login").Set("ip", "1.2.3.4")

	p := r.Pick("ip", "user", "missing")
	assert.Equal(t, `{"user":"alice","ip":"1.2.3.4"}`, p.String())

	o := r.Omit("user", "missing")
	assert.Equal(t, `{"action":"login","ip":"1.2.3.4"}`, o.String())

	assert.Equal(t, 0, r.Pick().Len())
	assert.Equal(t, 3, r.Omit().Len())
}

func TestMerge(t *testing.T) {
	a := New().Set("a", 1).Set("b", 2)
	b := New().Set("c", 3).Set("a", "x")

	m := a.Merge(b)
	assert.Equal(t, `{"a":"x","b":2,"c":3}`, m.String())
	assert.Equal(t, `{"a":1,"b":2}`, a.String())
}

func TestCloneNoAlias(t *testing.T) {
	r, err := Parse([]byte(`{"a":{"b":1},"list":[1,2]}`))
	require.NoError(t, err)

	c := r.Clone()
	v, _ := c.Get("a")
	v.(*Record).Set("b", 100)
	l, _ := c.Get("list")
	l.([]any)[0] = "changed"

	assert.Equal(t, `{"a":{"b":1},"list":[1,2]}`, r.String())
	assert.Equal(t, `{"a":{"b":100},"list":["changed",2]}`, c.String())

	m := map[string]any{"k": "v"}
	r.Set("m", m)
	c = r.Clone()
	mv, _ := c.Get("m")
	mv.(map[string]any)["k"] = "changed"
	assert.Equal(t, "v", m["k"])

	type pair struct {
		A string
		B []int
	}
	r.Set("s", pair{A: "a", B: []int{1}})
	c = r.Clone()
	sv, _ := c.Get("s")
	assert.Equal(t, pair{A: "a", B: []int{1}}, sv)
}

func TestZeroValue(t *testing.T) {
	var r Record
	assert.Equal(t, 0, r.Len())
	assert.False(t, r.Has("a"))
	assert.False(t, r.Delete("a"))

	r.Set("a", 1).Set("b", "x")
	assert.Equal(t, []string{"a", "b"}, r.Keys())
	assert.Equal(t, `{"a":1,"b":"x"}`, r.String())
}

func TestMarshalError(t *testing.T) {
	r := New().Set("fn", func() {})
	_, err := json.Marshal(r)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unable to encode field "fn"`)

	var rec Record
	require.NoError(t, json.Unmarshal([]byte(`{"x":"y"}`), &rec))
	assert.Equal(t, `{"x":"y"}`, rec.String())
}
