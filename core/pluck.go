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

// Pluck extracts the path from x.
//
// Sequences are transparent: when a segment isn't found in a
// sequence, each element is searched instead and the results are
// flattened one level.  An intermediate segment that is a sequence
// is also searched element by element.  A missing path gives nil.
// The final segment's value is returned as it is.
func Pluck(path []string, x interface{}) interface{} {
	if len(path) == 0 {
		return x
	}
	return pluck(path, 0, x)
}

func pluck(path []string, i int, obj interface{}) interface{} {
	part, have := child(obj, path[i])

	if xs, is := obj.([]interface{}); is && !have {
		return flatMap(xs, func(e interface{}) interface{} {
			return pluck(path, i, e)
		})
	}

	if i == len(path)-1 {
		return part
	}

	switch vv := part.(type) {
	case []interface{}:
		return flatMap(vv, func(e interface{}) interface{} {
			return pluck(path, i+1, e)
		})
	case map[string]interface{}:
		return pluck(path, i+1, vv)
	}

	return nil
}

// flatMap concatenates the results, splicing in any that are
// sequences.
func flatMap(xs []interface{}, f func(interface{}) interface{}) []interface{} {
	acc := make([]interface{}, 0, len(xs))
	for _, x := range xs {
		switch vv := f(x).(type) {
		case []interface{}:
			acc = append(acc, vv...)
		default:
			acc = append(acc, vv)
		}
	}
	return acc
}
