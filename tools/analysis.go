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

package tools

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Comcast/sheaf/core"
)

// BatchAnalysis reports what a batch does without running it.
type BatchAnalysis struct {
	// Errors are problems that will fail a run.
	Errors []string

	Calls         int
	Continuations int
	Conditionals  int
	Loops         int
	MaxDepth      int

	// Combinators counts each combinator used.
	Combinators map[string]int

	// Actions are the distinct action names.
	Actions []string

	// Unknown and Ambiguous are action names that wouldn't
	// dispatch.  Only computed when Analyze gets a registry.
	Unknown   []string
	Ambiguous []string

	// Refs are the distinct "$" references in parameters.
	Refs []string

	// Saves are the result keys written by save, union, concat,
	// and push when the key is literal.
	Saves []string
}

// Analyze walks the batch.  The registry can be nil.
func Analyze(b *core.Batch, acts *core.Actions) *BatchAnalysis {
	a := &BatchAnalysis{
		Errors:      make([]string, 0, 8),
		Combinators: make(map[string]int),
	}

	actions := make(map[string]bool)
	unknown := make(map[string]bool)
	ambiguous := make(map[string]bool)
	refs := make(map[string]bool)
	saves := make(map[string]bool)

	var batch func(b *core.Batch, depth int)
	batch = func(b *core.Batch, depth int) {
		if b == nil {
			return
		}
		if a.MaxDepth < depth {
			a.MaxDepth = depth
		}
		for _, c := range b.Calls {
			a.Calls++
			collectRefs(c.Params, refs)
			if c.Combinator {
				a.Combinators[c.Name]++
				a.combinator(c, saves)
			} else {
				actions[c.Name] = true
				if acts != nil {
					_, err := acts.Lookup(c.Name)
					var amb *core.AmbiguousAction
					switch {
					case err == nil:
					case errors.As(err, &amb):
						ambiguous[c.Name] = true
					default:
						unknown[c.Name] = true
					}
				}
			}
			batch(c.Body, depth+1)
			batch(c.Then, depth+1)
		}
		for _, n := range b.Next {
			a.Continuations++
			if n.Conditional {
				a.Conditionals++
				collectRefs(n.Params, refs)
			}
			batch(n.Batch, depth+1)
		}
	}

	batch(b, 0)

	a.Actions = keysToStringSlice(actions)
	a.Unknown = keysToStringSlice(unknown)
	a.Ambiguous = keysToStringSlice(ambiguous)
	a.Refs = keysToStringSlice(refs)
	a.Saves = keysToStringSlice(saves)

	for _, name := range a.Unknown {
		a.Errors = append(a.Errors, fmt.Sprintf("unknown action %q", name))
	}
	for _, name := range a.Ambiguous {
		a.Errors = append(a.Errors, fmt.Sprintf("ambiguous action %q", name))
	}

	return a
}

func (a *BatchAnalysis) combinator(c *core.Call, saves map[string]bool) {
	switch c.Name {
	case "save", "omit", "union", "concat", "push":
		k, is := c.Params.(string)
		switch {
		case !is:
			a.Errors = append(a.Errors, fmt.Sprintf("%s key %#v isn't a string", c.Name, c.Params))
		case core.IsRef(k):
		case c.Name != "omit":
			saves[k] = true
		}
	case core.LoopKey:
		a.Loops++
		if c.Body.Terminal() {
			a.Errors = append(a.Errors, "loop without a body")
		}
		if c.Params != nil && !core.IsRef(c.Params) {
			if _, is := c.Params.(map[string]interface{}); !is {
				a.Errors = append(a.Errors, fmt.Sprintf("loop params %#v isn't a map", c.Params))
			}
		}
	}
}

func collectRefs(x interface{}, acc map[string]bool) {
	switch vv := x.(type) {
	case string:
		if core.IsRef(vv) {
			acc[strings.TrimPrefix(vv, core.RefPrefix)] = true
		}
	case []interface{}:
		for _, y := range vv {
			collectRefs(y, acc)
		}
	case map[string]interface{}:
		for _, y := range vv {
			collectRefs(y, acc)
		}
	}
}

// keysToStringSlice returns the sorted keys.
func keysToStringSlice(m map[string]bool) []string {
	list := make([]string, 0, len(m))
	for key := range m {
		list = append(list, key)
	}
	sort.Strings(list)
	return list
}
