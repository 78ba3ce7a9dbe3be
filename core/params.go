/* Copyright 2018-2019 Comcast Cable Communications Management, LLC
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
	"fmt"
	"math"
	"strings"
)

// keyParam gets the result key for save, omit, union, concat, and
// push.
func keyParam(combinator string, params interface{}) (string, error) {
	k, is := params.(string)
	if !is {
		return "", &BadParameter{
			Combinator: combinator,
			Msg:        fmt.Sprintf("key %#v isn't a string", params),
		}
	}
	return k, nil
}

// LoopParams are the decoded parameters of a loop.
type LoopParams struct {
	// On is the sequence to iterate over.
	On []interface{}

	// Limit is the maximum number of iterations in flight.
	// Always at least 1 and never more than len(On) (when On isn't
	// empty).
	Limit int
}

func loopParams(params interface{}) (*LoopParams, error) {
	lp := &LoopParams{
		Limit: 1,
	}
	if params == nil {
		return lp, nil
	}
	m, is := params.(map[string]interface{})
	if !is {
		return nil, &BadParameter{
			Combinator: "loop",
			Msg:        fmt.Sprintf("%#v isn't a map", params),
		}
	}

	switch vv := Normalize(m["on"]).(type) {
	case nil:
	case []interface{}:
		lp.On = vv
	default:
		return nil, &BadParameter{
			Combinator: "loop",
			Msg:        fmt.Sprintf(`"on" (%T) isn't a sequence`, m["on"]),
		}
	}

	if x := m["limit"]; Truthy(x) {
		f, is := toFloat(x)
		if !is || math.IsInf(f, 0) {
			return nil, &BadParameter{
				Combinator: "loop",
				Msg:        fmt.Sprintf(`"limit" %#v isn't a number`, x),
			}
		}
		if n := len(lp.On); float64(n) < f {
			f = float64(n)
		}
		if 1 < f {
			lp.Limit = int(f)
		}
	}

	return lp, nil
}

// pluckPath accepts ["a.b"] or just "a.b".
func pluckPath(params interface{}) ([]string, error) {
	p := params
	if xs, is := params.([]interface{}); is {
		if len(xs) == 0 {
			return nil, &BadParameter{
				Combinator: "pluck",
				Msg:        "empty path",
			}
		}
		p = xs[0]
	}
	s, is := p.(string)
	if !is {
		return nil, &BadParameter{
			Combinator: "pluck",
			Msg:        fmt.Sprintf("path %#v isn't a string", p),
		}
	}
	return strings.Split(s, "."), nil
}
