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
)

// Combinators are the built-in names.  A key that's a combinator is
// never looked up in the Actions.
var Combinators = []string{
	"save",
	"omit",
	"union",
	"concat",
	"push",
	"compact",
	"pluck",
	"loop",
}

var combinators = func() map[string]bool {
	acc := make(map[string]bool, len(Combinators))
	for _, name := range Combinators {
		acc[name] = true
	}
	return acc
}()

// IsCombinator reports whether the name is one of the Combinators.
func IsCombinator(name string) bool {
	return combinators[name]
}

// combine runs a combinator.  The params are already resolved.
//
// save, omit, union, concat, push, and loop produce nil.  compact
// and pluck produce their transformed input.
func (r *Run) combine(ctx context.Context, c *Call, params, data interface{}, ldata Bindings) (interface{}, error) {
	switch c.Name {
	case "compact":
		return Compact(data), nil
	case "pluck":
		path, err := pluckPath(params)
		if err != nil {
			return nil, err
		}
		return Pluck(path, data), nil
	case "loop":
		lp, err := loopParams(params)
		if err != nil {
			return nil, err
		}
		return nil, r.Loop(ctx, lp.On, lp.Limit, c.Body, data, ldata)
	}

	key, err := keyParam(c.Name, params)
	if err != nil {
		return nil, err
	}

	res := r.result()
	switch c.Name {
	case "save":
		res.Set(key, data)
	case "omit":
		res.Delete(key)
	case "union":
		res.Update(key, func(old interface{}, _ bool) interface{} {
			return Union(existing(old), asSlice(data))
		})
	case "concat":
		res.Update(key, func(old interface{}, _ bool) interface{} {
			xs := existing(old)
			in := asSlice(data)
			if data == nil {
				// An absent input is still one element.
				in = []interface{}{nil}
			}
			acc := make([]interface{}, 0, len(xs)+len(in))
			return append(append(acc, xs...), in...)
		})
	case "push":
		res.Update(key, func(old interface{}, _ bool) interface{} {
			xs := existing(old)
			acc := make([]interface{}, 0, len(xs)+1)
			return append(append(acc, xs...), data)
		})
	}
	return nil, nil
}

// existing is the accumulator currently in the Result: a falsy value
// starts over with an empty sequence.
func existing(x interface{}) []interface{} {
	if !Truthy(x) {
		return nil
	}
	return asSlice(x)
}

// Union returns the distinct elements of xs followed by the distinct
// elements of ys not in xs.  Elements are compared with Equal.
func Union(xs, ys []interface{}) []interface{} {
	acc := make([]interface{}, 0, len(xs)+len(ys))
	add := func(x interface{}) {
		for _, y := range acc {
			if Equal(x, y) {
				return
			}
		}
		acc = append(acc, x)
	}
	for _, x := range xs {
		add(x)
	}
	for _, y := range ys {
		add(y)
	}
	return acc
}

// Compact removes falsy elements.
//
// A nil input gives an empty sequence.  Any other non-sequence is
// treated as a sequence of one element.
func Compact(x interface{}) []interface{} {
	xs := asSlice(x)
	acc := make([]interface{}, 0, len(xs))
	for _, y := range xs {
		if Truthy(y) {
			acc = append(acc, y)
		}
	}
	return acc
}
