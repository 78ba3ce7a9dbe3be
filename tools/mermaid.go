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
	"encoding/json"
	"fmt"
	"io"
	"strings"

	. "github.com/Comcast/sheaf/core"
)

type MermaidOpts struct {
	// ShowParams will result in a node label that includes the
	// JSON representation of the call's parameters (if any).
	ShowParams bool `json:"showParams"`

	// ActionFill is the fill color of for action nodes.
	ActionFill string `json:"actionFill,omitempty"`

	// CombinatorFill is the fill color of for combinator nodes.
	CombinatorFill string `json:"combinatorFill,omitempty"`

	// MaxParams truncates long parameter labels.  Zero means no
	// limit.
	MaxParams int `json:"maxParams,omitempty"`
}

var DefaultMermaidOpts = MermaidOpts{
	ShowParams:     true,
	ActionFill:     "#bcf2db",
	CombinatorFill: "#f2e3bc",
	MaxParams:      60,
}

// Mermaid makes a Mermaid (https://mermaidjs.github.io/) input file
// for the given batch.
func Mermaid(b *Batch, w io.Writer, opts *MermaidOpts) error {
	if opts == nil {
		opts = &DefaultMermaidOpts
	}

	g := BuildGraph(b)

	f := func(format string, args ...interface{}) {
		fmt.Fprintf(w, format+"\n", args...)
	}

	f("graph TB")
	f("  %s((\"%s\"))", StartId, StartId)

	for _, n := range g.Nodes {
		label := n.Name
		if opts.ShowParams && n.Params != nil {
			js, err := json.Marshal(n.Params)
			if err != nil {
				return err
			}
			s := string(js)
			if 0 < opts.MaxParams && opts.MaxParams < len(s) {
				s = s[:opts.MaxParams] + "..."
			}
			label += "<br/><small>" + mermaidEscape(s) + "</small>"
		}
		if n.Combinator {
			f("  %s{{\"%s\"}}", n.Id, label)
			if opts.CombinatorFill != "" {
				f("  style %s fill:%s", n.Id, opts.CombinatorFill)
			}
		} else {
			f("  %s[\"%s\"]", n.Id, label)
			if opts.ActionFill != "" {
				f("  style %s fill:%s", n.Id, opts.ActionFill)
			}
		}
	}

	for _, e := range g.Edges {
		switch e.Kind {
		case EdgeThen:
			f("  %s --> %s", e.From, e.To)
		case EdgeBody:
			f("  %s -- \"%s\" --> %s", e.From, BodyKey, e.To)
		case EdgeNext:
			f("  %s -. next .-> %s", e.From, e.To)
		case EdgeIf:
			label := "if"
			if js, err := json.Marshal(e.Params); err == nil && e.Params != nil {
				label = mermaidEscape(string(js))
			}
			f("  %s -. \"%s\" .-> %s", e.From, label, e.To)
		}
	}

	return nil
}

func mermaidEscape(s string) string {
	return strings.Replace(s, `"`, `'`, -1)
}
