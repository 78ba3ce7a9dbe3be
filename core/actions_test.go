/* Copyright 2018 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package core

import (
	"context"
	"errors"
	"testing"
)

// echo is an Interpreter that returns its code's "reply" with the
// invoking name.
type echo struct {
	compiled int
}

func (e *echo) Compile(ctx context.Context, code interface{}) (interface{}, error) {
	if code == "bad" {
		return nil, errors.New("bad code")
	}
	e.compiled++
	return code, nil
}

func (e *echo) Exec(ctx context.Context, name string, params interface{}, code interface{}, compiled interface{}) (interface{}, error) {
	return map[string]interface{}{
		"name":     name,
		"compiled": compiled,
		"params":   params,
	}, nil
}

func TestActionsLookup(t *testing.T) {
	acts := NewActions().Add("exact", identity)
	if err := acts.AddWildcard("any", `.*`, func(ctx context.Context, name string, params interface{}) (interface{}, error) {
		return name, nil
	}); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()

	// Exact beats wildcard.
	f, err := acts.Lookup("exact")
	if err != nil {
		t.Fatal(err)
	}
	if x, _ := f(ctx, "p"); x != "p" {
		t.Fatal(x)
	}

	f, err = acts.Lookup("other")
	if err != nil {
		t.Fatal(err)
	}
	if x, _ := f(ctx, nil); x != "other" {
		t.Fatal(x)
	}

	if err := acts.AddWildcard("broken", `(`, nil); err == nil {
		t.Fatal("bad regexp accepted")
	}

	if names := acts.Names(); len(names) != 1 || names[0] != "exact" {
		t.Fatal(names)
	}
	if ws := acts.Wildcards(); len(ws) != 1 {
		t.Fatal(len(ws))
	}
}

func TestActionsCompile(t *testing.T) {
	ctx := context.Background()
	e := &echo{}
	interpreters := map[string]Interpreter{"echo": e}

	acts := NewActions()
	err := acts.Compile(ctx, map[string]*ActionSource{
		"hello": {Interpreter: "echo", Source: "hi"},
		"svc":   {Interpreter: "echo", Source: "svc", Match: `^svc\.`},
	}, interpreters)
	if err != nil {
		t.Fatal(err)
	}
	if e.compiled != 2 {
		t.Fatal(e.compiled)
	}

	res, err := NewRun(acts).RunBatch(ctx, map[string]interface{}{
		"hello": map[string]interface{}{
			"()":   map[string]interface{}{"x": 1},
			"save": "hello",
		},
		"svc.get": map[string]interface{}{
			"save": "svc",
		},
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if m := res["hello"].(map[string]interface{}); m["name"] != "hello" || m["compiled"] != "hi" {
		t.Fatal(m)
	}
	if m := res["svc"].(map[string]interface{}); m["name"] != "svc.get" {
		t.Fatal(m)
	}
}

func TestActionsCompileErrors(t *testing.T) {
	ctx := context.Background()

	err := NewActions().Compile(ctx, map[string]*ActionSource{
		"x": {Interpreter: "nope", Source: "1"},
	}, map[string]Interpreter{})
	if !errors.Is(err, InterpreterNotFound) {
		t.Fatalf("got %v", err)
	}

	err = NewActions().Compile(ctx, map[string]*ActionSource{
		"x": {Interpreter: "echo", Source: "bad"},
	}, map[string]Interpreter{"echo": &echo{}})
	var ce *CompileError
	if !errors.As(err, &ce) || ce.Action != "x" {
		t.Fatalf("got %v", err)
	}
}
