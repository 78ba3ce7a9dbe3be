package core

import (
	"testing"

	. "github.com/Comcast/sheaf/util/testutil"
)

func TestResolveScopes(t *testing.T) {
	r := NewRun(nil)
	r.Result.Set("x", "from result")
	r.Result.Set("zero", 0)
	r.Result.Set("deep", Dwimjs(`{"a":[{"b":"deep"}]}`))

	ldata := Bindings{"x": "from ldata", "empty": ""}
	data := Dwimjs(`{"x": "from data", "y": "from data", "empty": "from data", "f": false}`)

	tests := []struct {
		ref  string
		want interface{}
	}{
		{"$x", "from ldata"},
		{"$y", "from data"},
		// Falsy in ldata means "look further".
		{"$empty", "from data"},
		// The last scope is returned as is.
		{"$zero", 0},
		{"$f", nil},
		{"$deep.a.0.b", "deep"},
		{"$nope", nil},
		{"plain", "plain"},
	}

	for _, tt := range tests {
		if got := r.Resolve(tt.ref, data, ldata); got != tt.want {
			t.Fatalf("%s: got %#v, wanted %#v", tt.ref, got, tt.want)
		}
	}
}

func TestResolveStructure(t *testing.T) {
	r := NewRun(nil)
	params := Dwimjs(`{"a": "$x", "b": ["$y", 2, {"c": "$x"}], "d": true}`)
	got := r.Resolve(params, Dwimjs(`{"x": 1, "y": "why"}`), nil)
	if JS(got) != `{"a":1,"b":["why",2,{"c":1}],"d":true}` {
		t.Fatal(JS(got))
	}
	// Unmodified
	if JS(params) != `{"a":"$x","b":["$y",2,{"c":"$x"}],"d":true}` {
		t.Fatal(JS(params))
	}
}

func TestGet(t *testing.T) {
	x := Dwimjs(`{"a.b": 1, "a": {"b": 2}}`)
	if v, _ := Get(x, "a.b"); v != 1.0 {
		t.Fatal(v)
	}
	if _, have := Get(x, "a.c"); have {
		t.Fatal("a.c")
	}
}
