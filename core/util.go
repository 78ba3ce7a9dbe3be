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
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"reflect"
	"time"
)

// alphabet is used by Gensym.
var alphabet = []byte("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")

// Gensym makes a random string of the given length.
//
// Since we're returning a string and not (somehow a symbol), should
// be named something else.  Using this name just brings back good
// memories.
func Gensym(n int) string {
	bs := make([]byte, n)
	for i := 0; i < len(bs); i++ {
		bs[i] = alphabet[rand.Intn(len(alphabet))]
	}
	return string(bs)
}

// Canonicalize round-trips its argument through JSON.
//
// Useful for turning structs into the generic maps and slices that
// the combinators understand.
func Canonicalize(x interface{}) (interface{}, error) {
	var err error

	js, err := json.Marshal(&x)
	if err != nil {
		return nil, err
	}
	var y interface{}
	if err = json.Unmarshal(js, &y); err != nil {
		return nil, err
	}

	return y, nil
}

// Timestamp returns a string representing the current time in
// RFC3339Nano.
func Timestamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// Truthy reports whether the value would count as true in a boolean
// context.
//
// nil, false, numeric zero, NaN, and the empty string are falsy.
// Everything else, including empty maps and slices, is truthy.
func Truthy(x interface{}) bool {
	switch vv := x.(type) {
	case nil:
		return false
	case bool:
		return vv
	case string:
		return vv != ""
	case json.Number:
		f, err := vv.Float64()
		return err != nil || (f != 0 && !math.IsNaN(f))
	}
	if f, is := toFloat(x); is {
		return f != 0 && !math.IsNaN(f)
	}
	v := reflect.ValueOf(x)
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Func, reflect.Chan:
		return !v.IsNil()
	}
	return true
}

// toFloat converts any Go numeric to a float64.
func toFloat(x interface{}) (float64, bool) {
	switch vv := x.(type) {
	case float64:
		return vv, true
	case float32:
		return float64(vv), true
	case int:
		return float64(vv), true
	case int8:
		return float64(vv), true
	case int16:
		return float64(vv), true
	case int32:
		return float64(vv), true
	case int64:
		return float64(vv), true
	case uint:
		return float64(vv), true
	case uint8:
		return float64(vv), true
	case uint16:
		return float64(vv), true
	case uint32:
		return float64(vv), true
	case uint64:
		return float64(vv), true
	case json.Number:
		f, err := vv.Float64()
		return f, err == nil
	}
	return 0, false
}

// Equal is a structural equality that ignores the Go type of numbers:
// int(3) and float64(3) are Equal.
func Equal(x, y interface{}) bool {
	if fx, is := toFloat(x); is {
		fy, is := toFloat(y)
		return is && fx == fy
	}
	switch vx := x.(type) {
	case map[string]interface{}:
		vy, is := y.(map[string]interface{})
		if !is || len(vx) != len(vy) {
			return false
		}
		for k, v := range vx {
			w, have := vy[k]
			if !have || !Equal(v, w) {
				return false
			}
		}
		return true
	case []interface{}:
		vy, is := y.([]interface{})
		if !is || len(vx) != len(vy) {
			return false
		}
		for i := range vx {
			if !Equal(vx[i], vy[i]) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(x, y)
}

// Normalize converts typed slices and maps (as returned by Go
// actions or by YAML decoders) into []interface{} and
// map[string]interface{}, recursively.
//
// Structs and byte slices are returned as they are.
func Normalize(x interface{}) interface{} {
	switch vv := x.(type) {
	case nil, string, bool, float64, int, []byte:
		return x
	case []interface{}:
		acc := make([]interface{}, len(vv))
		for i, y := range vv {
			acc[i] = Normalize(y)
		}
		return acc
	case map[string]interface{}:
		acc := make(map[string]interface{}, len(vv))
		for k, y := range vv {
			acc[k] = Normalize(y)
		}
		return acc
	case Bindings:
		return Normalize(map[string]interface{}(vv))
	case map[interface{}]interface{}:
		acc := make(map[string]interface{}, len(vv))
		for k, y := range vv {
			acc[fmt.Sprintf("%v", k)] = Normalize(y)
		}
		return acc
	}

	v := reflect.ValueOf(x)
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.IsNil() {
			return x
		}
		acc := make([]interface{}, v.Len())
		for i := range acc {
			acc[i] = Normalize(v.Index(i).Interface())
		}
		return acc
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return x
		}
		acc := make(map[string]interface{}, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			acc[iter.Key().String()] = Normalize(iter.Value().Interface())
		}
		return acc
	}
	return x
}

// asSlice returns the given value as a sequence.
//
// nil is the empty sequence.  Any other non-sequence is wrapped as a
// sequence of one element.
func asSlice(x interface{}) []interface{} {
	switch vv := x.(type) {
	case nil:
		return []interface{}{}
	case []interface{}:
		return vv
	}
	if y, is := Normalize(x).([]interface{}); is {
		return y
	}
	return []interface{}{x}
}
