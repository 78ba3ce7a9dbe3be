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
	"sync"
)

// Result is the shared, mutable output of a run.
//
// Combinators are the only writers.  Every read-modify-write happens
// inside one critical section (see Update), so concurrent siblings
// accumulating into the same key never lose each other's writes.
type Result struct {
	sync.Mutex
	m map[string]interface{}
}

func NewResult() *Result {
	return &Result{
		m: make(map[string]interface{}),
	}
}

// Get looks up a (possibly dotted) path.
func (r *Result) Get(path string) (interface{}, bool) {
	r.Lock()
	defer r.Unlock()
	return Get(r.m, path)
}

// Set binds the key to the value, replacing any previous value.
func (r *Result) Set(key string, v interface{}) {
	r.Lock()
	r.m[key] = v
	r.Unlock()
}

// Delete removes the key.
func (r *Result) Delete(key string) {
	r.Lock()
	delete(r.m, key)
	r.Unlock()
}

// Update calls f with the current value (if any) and stores what f
// returns.  f runs with the lock held, so it must not call back into
// the Result.
func (r *Result) Update(key string, f func(old interface{}, have bool) interface{}) interface{} {
	r.Lock()
	defer r.Unlock()
	old, have := r.m[key]
	v := f(old, have)
	r.m[key] = v
	return v
}

// Snapshot returns a shallow copy of the current state.
//
// Combinators never mutate a sequence in place, so sequences in the
// snapshot don't change underneath the caller.
func (r *Result) Snapshot() map[string]interface{} {
	r.Lock()
	defer r.Unlock()
	acc := make(map[string]interface{}, len(r.m))
	for k, v := range r.m {
		acc[k] = v
	}
	return acc
}

func (r *Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Snapshot())
}
