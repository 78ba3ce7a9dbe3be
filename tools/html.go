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

package tools

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"sort"
	"strings"

	"github.com/Comcast/sheaf/library"

	md "github.com/russross/blackfriday/v2"
)

// RenderEntryHTML writes an HTML fragment describing the entry: its
// documentation, its script actions, and its calls.
func RenderEntryHTML(e *library.Entry, out io.Writer) error {
	f := func(format string, args ...interface{}) {
		fmt.Fprintf(out, format+"\n", args...)
	}

	b, err := e.ParseBatch()
	if err != nil {
		return err
	}

	f(`<div class="entryDoc doc">%s</div>`, md.Run([]byte(e.Doc)))

	if 0 < len(e.Actions) {
		names := make([]string, 0, len(e.Actions))
		for name := range e.Actions {
			names = append(names, name)
		}
		sort.Strings(names)

		f(`<div class="actions"><table>`)
		for _, name := range names {
			a := e.Actions[name]
			f(`<tr class="action"><td><span id="action-%s" class="actionName">%s</span></td><td>`,
				html.EscapeString(name), html.EscapeString(name))
			if a.Doc != "" {
				f(`<div class="actionDoc doc">%s</div>`, md.Run([]byte(a.Doc)))
			}
			if a.Match != "" {
				f(`<div>match: <code>%s</code></div>`, html.EscapeString(a.Match))
			}
			f(`<div>interpreter: <code>%s</code></div>`, html.EscapeString(a.Interpreter))
			src, _ := a.Source.(string)
			f(`<div class="code"><pre>%s</pre></div>`, html.EscapeString(src))
			f(`</td></tr>`)
		}
		f(`</table></div>`)
	}

	g := BuildGraph(b)
	f(`<div class="calls"><table>`)
	for _, n := range g.Nodes {
		class := "action"
		if n.Combinator {
			class = "combinator"
		}
		f(`<tr class="call %s"><td style="padding-left: %dem"><code>%s</code></td>`,
			class, n.Depth*2, html.EscapeString(n.Name))
		if n.Params != nil {
			js, err := json.Marshal(n.Params)
			if err != nil {
				return err
			}
			f(`<td><code>%s</code></td>`, html.EscapeString(string(js)))
		} else {
			f(`<td></td>`)
		}
		f(`</tr>`)
	}
	f(`</table></div>`)

	return nil
}

// RenderEntryPage writes a complete HTML page for the entry.  With
// includeGraph, the page has a Mermaid diagram of the batch.
func RenderEntryPage(e *library.Entry, out io.Writer, cssFiles []string, includeGraph bool) error {
	if cssFiles == nil {
		cssFiles = []string{"/static/entry-html.css"}
	}

	fmt.Fprintf(out, `<!DOCTYPE html>
<meta charset="utf-8">
<html>
  <head>
  <title>%s</title>
`, html.EscapeString(e.Name))

	if includeGraph {
		fmt.Fprintf(out, `  <script src="https://cdn.jsdelivr.net/npm/mermaid@10/dist/mermaid.min.js"></script>
  <script>mermaid.initialize({startOnLoad: true});</script>
`)
	}

	for _, cssFile := range cssFiles {
		fmt.Fprintf(out, "  <link href=\"%s\" rel=\"stylesheet\">\n", cssFile)
	}

	fmt.Fprintf(out, `
  </head>
  <body>
    <h1>%s</h1>
`, html.EscapeString(e.Name))

	if includeGraph {
		b, err := e.ParseBatch()
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err = Mermaid(b, &buf, nil); err != nil {
			return err
		}
		fmt.Fprintf(out, "<pre class=\"mermaid\">\n%s</pre>\n", strings.TrimSpace(buf.String()))
	}

	if err := RenderEntryHTML(e, out); err != nil {
		return err
	}

	fmt.Fprintf(out, `
  </body>
</html>
`)

	return nil
}

// ReadAndRenderEntryPage reads an entry file (with inlines) and
// renders it with RenderEntryPage.
func ReadAndRenderEntryPage(filename string, cssFiles []string, out io.Writer, includeGraph bool) error {
	bs, err := library.ReadFileWithInlines(filename)
	if err != nil {
		return err
	}
	e, err := library.Parse(bs)
	if err != nil {
		return err
	}
	if e.Name == "" {
		e.Name = library.EntryName(filename)
	}
	return RenderEntryPage(e, out, cssFiles, includeGraph)
}

