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

// Package core provides the core gear for declarative batch
// processing.  A batch is a tree of calls written as plain data
// (JSON or YAML).  Each key of a tree level names either a built-in
// combinator (save, omit, union, concat, push, compact, pluck, loop)
// or an action registered with Actions.
//
// The primary type is Run, and the primary method is RunBatch.
// RunBatch parses a batch into a typed tree (see ParseBatch) and
// Walks it.  At each level, all calls start concurrently.  A call's
// parameters come from its "()" key, and references like "$x" are
// looked up in the local Bindings, then the level's input data, then
// the Result.  What a call produces becomes the input data of the
// rest of its entry.  Once every call at a level has finished, the
// level's "next" entries run.
//
// Actions do the real work (HTTP requests, scripts, whatever).
// Combinators only shape data and accumulate it in the Result,
// which is what a run returns.
//
// An action can be a Go function (ActionFunc), a pattern-matched
// function (WildcardFunc), or an ActionSource compiled by an
// Interpreter.
//
// Here's a small batch:
//
//	{
//	  "users": {
//	    "()": {"team": "$team"},
//	    "pluck": {
//	      "()": ["name"],
//	      "union": "names"
//	    }
//	  },
//	  "next": {"notify": {"()": {"who": "$names"}}}
//	}
package core
