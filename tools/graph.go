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

// Package tools has utilities for looking at batches: analysis,
// diagrams, HTML, and running test cases.
package tools

import (
	"fmt"

	"github.com/Comcast/sheaf/core"
)

// Edge kinds.
const (
	// EdgeThen goes from a call to a call that gets its output.
	EdgeThen = "then"

	// EdgeBody goes from a call (typically a loop) to a call in
	// its body.
	EdgeBody = "body"

	// EdgeNext goes from a call to a call in a continuation of
	// the batch that the call belongs to.
	EdgeNext = "next"

	// EdgeIf is an EdgeNext for a conditional continuation.
	EdgeIf = "if"
)

// StartId is the id of the node that stands for the top level.
const StartId = "start"

type GraphNode struct {
	Id         string
	Name       string
	Combinator bool
	Params     interface{}
	Depth      int
}

type GraphEdge struct {
	From, To string
	Kind     string

	// Params of a conditional continuation.
	Params interface{}
}

// Graph is the call tree of a batch flattened into nodes and edges.
type Graph struct {
	Nodes []*GraphNode
	Edges []*GraphEdge
}

// BuildGraph flattens the batch.  Node ids are n1, n2, ... in walk
// order.  Continuation edges leave from the call that owns the batch
// (or StartId at the top level).
func BuildGraph(b *core.Batch) *Graph {
	g := &Graph{}
	num := 0

	var batch func(owner string, b *core.Batch, kind string, params interface{}, depth int)
	batch = func(owner string, b *core.Batch, kind string, params interface{}, depth int) {
		if b == nil {
			return
		}
		for _, c := range b.Calls {
			num++
			id := fmt.Sprintf("n%d", num)
			g.Nodes = append(g.Nodes, &GraphNode{
				Id:         id,
				Name:       c.Name,
				Combinator: c.Combinator,
				Params:     c.Params,
				Depth:      depth,
			})
			g.Edges = append(g.Edges, &GraphEdge{
				From:   owner,
				To:     id,
				Kind:   kind,
				Params: params,
			})
			batch(id, c.Body, EdgeBody, nil, depth+1)
			batch(id, c.Then, EdgeThen, nil, depth+1)
		}
		for _, n := range b.Next {
			if n.Conditional {
				batch(owner, n.Batch, EdgeIf, n.Params, depth+1)
			} else {
				batch(owner, n.Batch, EdgeNext, nil, depth+1)
			}
		}
	}

	batch(StartId, b, EdgeThen, nil, 0)

	return g
}
