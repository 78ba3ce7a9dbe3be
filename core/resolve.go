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
	"strconv"
	"strings"
)

// RefPrefix marks a string as a reference.
const RefPrefix = "$"

// IsRef reports whether the value is a reference string like "$x".
func IsRef(x interface{}) bool {
	s, is := x.(string)
	return is && strings.HasPrefix(s, RefPrefix)
}

// Resolve materializes parameters.
//
// A string "$p" is a reference to the path p.  The path is looked up
// in the local Bindings, then in data, then in the Result.  A falsy
// value (see Truthy) counts as absent and the next scope is
// consulted, but whatever the Result has is returned even if it is
// falsy.  So a deliberately stored 0, "", or false is only visible
// through the last scope.
//
// Sequences resolve element-wise and maps resolve value-wise,
// recursively.  Everything else resolves to itself.  The input is
// not modified.
func (r *Run) Resolve(x interface{}, data interface{}, ldata Bindings) interface{} {
	switch vv := x.(type) {
	case string:
		if !strings.HasPrefix(vv, RefPrefix) {
			return vv
		}
		return r.lookup(vv[len(RefPrefix):], data, ldata)
	case []interface{}:
		acc := make([]interface{}, len(vv))
		for i, y := range vv {
			acc[i] = r.Resolve(y, data, ldata)
		}
		return acc
	case map[string]interface{}:
		acc := make(map[string]interface{}, len(vv))
		for k, y := range vv {
			acc[k] = r.Resolve(y, data, ldata)
		}
		return acc
	default:
		return x
	}
}

func (r *Run) lookup(path string, data interface{}, ldata Bindings) interface{} {
	if v, _ := Get(ldata, path); Truthy(v) {
		return v
	}
	if v, _ := Get(data, path); Truthy(v) {
		return v
	}
	v, _ := r.result().Get(path)
	return v
}

// Get follows a dotted path ("a.b.0") through maps and sequences.
//
// When the whole path is itself a key of a map, that key wins.
func Get(x interface{}, path string) (interface{}, bool) {
	if v, have := child(x, path); have {
		return v, true
	}
	if !strings.Contains(path, ".") {
		return nil, false
	}
	for _, p := range strings.Split(path, ".") {
		v, have := child(x, p)
		if !have {
			return nil, false
		}
		x = v
	}
	return x, true
}

// child returns a map's property or a sequence's element.
func child(x interface{}, p string) (interface{}, bool) {
	switch vv := x.(type) {
	case map[string]interface{}:
		v, have := vv[p]
		return v, have
	case Bindings:
		v, have := vv[p]
		return v, have
	case []interface{}:
		i, err := strconv.Atoi(p)
		if err != nil || i < 0 || len(vv) <= i {
			return nil, false
		}
		return vv[i], true
	}
	return nil, false
}
