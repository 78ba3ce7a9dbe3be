package tools

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Comcast/sheaf/core"
	_ "github.com/Comcast/sheaf/interpreters/goja"
	"github.com/Comcast/sheaf/library"
	. "github.com/Comcast/sheaf/util/testutil"

	"github.com/jsccast/yaml"
)

var fixture = `{
  "fetch": {
    "()": {"url": "$url"},
    "pluck": "items",
    "next": {"save": "items"}
  },
  "loop": {
    "()": {"on": "$ids", "limit": 2},
    "{}": {"get": {"()": {"id": "$loop"}, "union": "got"}}
  },
  "next": [
    {"report": {"()": {"got": "$got"}}},
    {"()": {"if": "$got"}, "{}": {"notify": {"save": "notified"}}}
  ]
}`

func parse(t *testing.T, s string) *core.Batch {
	b, err := core.ParseBatch(s)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestBuildGraph(t *testing.T) {
	g := BuildGraph(parse(t, fixture))

	names := make([]string, len(g.Nodes))
	for i, n := range g.Nodes {
		names[i] = n.Name
	}
	if got := JS(names); got != `["fetch","pluck","save","loop","get","union","report","notify","save"]` {
		t.Fatal(got)
	}

	kinds := make(map[string]int)
	for _, e := range g.Edges {
		kinds[e.Kind]++
		if e.Kind == EdgeIf && e.Params == nil {
			t.Fatal("conditional edge without params")
		}
	}
	if kinds[EdgeBody] != 1 || kinds[EdgeNext] != 2 || kinds[EdgeIf] != 1 {
		t.Fatal(kinds)
	}
	if len(g.Edges) != len(g.Nodes) {
		t.Fatalf("%d edges for %d nodes", len(g.Edges), len(g.Nodes))
	}
}

func TestAnalysis(t *testing.T) {
	nop := func(ctx context.Context, params interface{}) (interface{}, error) {
		return nil, nil
	}
	acts := core.NewActions().
		Add("fetch", nop).
		Add("get", nop).
		Add("report", nop)

	a := Analyze(parse(t, fixture), acts)

	if a.Calls != 9 {
		t.Fatal(a.Calls)
	}
	if a.Loops != 1 || a.Continuations != 3 || a.Conditionals != 1 {
		t.Fatal(JS(a))
	}
	if got := JS(a.Unknown); got != `["notify"]` {
		t.Fatal(got)
	}
	if got := JS(a.Refs); got != `["got","ids","loop","url"]` {
		t.Fatal(got)
	}
	if got := JS(a.Saves); got != `["got","items","notified"]` {
		t.Fatal(got)
	}
	if len(a.Errors) != 1 {
		t.Fatal(a.Errors)
	}

	a = Analyze(parse(t, `{"loop": {"()": 3}, "save": {"x": 1}}`), nil)
	if len(a.Errors) != 3 {
		t.Fatal(a.Errors)
	}
	if len(a.Unknown) != 0 {
		t.Fatal(a.Unknown)
	}
}

func TestMermaid(t *testing.T) {
	out := &bytes.Buffer{}
	if err := Mermaid(parse(t, fixture), out, nil); err != nil {
		t.Fatal(err)
	}
	s := out.String()
	if !strings.HasPrefix(s, "graph TB\n") {
		t.Fatal(s)
	}
	for _, want := range []string{`n4{{"loop`, `n1["fetch`, `-. next .->`, `-- "{}" -->`, `{'if':'$got'}`} {
		if !strings.Contains(s, want) {
			t.Fatalf("missing %s in\n%s", want, s)
		}
	}
}

func TestDot(t *testing.T) {
	out := &bytes.Buffer{}
	if err := Dot(parse(t, fixture), out, "loop"); err != nil {
		t.Fatal(err)
	}
	s := out.String()
	if !strings.HasPrefix(s, "digraph G {") || !strings.HasSuffix(s, "}\n") {
		t.Fatal(s)
	}
	if !strings.Contains(s, `color="red"`) {
		t.Fatal("no highlight")
	}
	if !strings.Contains(s, "limit: 2") {
		t.Fatal("params not rendered as YAML")
	}
}

func TestRenderEntryHTML(t *testing.T) {
	t.Run("withoutGraph", func(t *testing.T) {
		out := bytes.NewBuffer(make([]byte, 0, 1024*128))
		if err := ReadAndRenderEntryPage("../specs/double.yaml", []string{"entry.css"}, out, false); err != nil {
			t.Fatal(err)
		}
		s := out.String()
		if !strings.Contains(s, "<strong>ns</strong>") {
			t.Fatal("doc not rendered")
		}
		if !strings.Contains(s, "_.params.n * 2") {
			t.Fatal("inlined source missing")
		}
		if strings.Contains(s, "mermaid") {
			t.Fatal("unexpected graph")
		}
	})

	t.Run("withGraph", func(t *testing.T) {
		out := bytes.NewBuffer(make([]byte, 0, 1024*128))
		if err := ReadAndRenderEntryPage("../specs/double.yaml", []string{"entry.css"}, out, true); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(out.String(), `<pre class="mermaid">`) {
			t.Fatal("no graph")
		}
	})
}

func TestExpectSession(t *testing.T) {
	bs, err := os.ReadFile("../specs/double.test.yaml")
	if err != nil {
		t.Fatal(err)
	}
	var s Session
	if err = yaml.Unmarshal(bs, &s); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()

	e, err := (&library.DirProvider{Dir: "../specs"}).FindEntry(ctx, "double")
	if err != nil {
		t.Fatal(err)
	}
	acts := core.NewActions()
	if err = e.Compile(ctx, acts, nil); err != nil {
		t.Fatal(err)
	}

	outcomes, err := s.Run(ctx, acts)
	if err != nil {
		t.Fatal(err)
	}
	if len(outcomes) != 3 {
		t.Fatal(len(outcomes))
	}
	for _, o := range outcomes {
		if !o.Passed {
			t.Fatalf("case %d (%s): %v", o.Case, o.Doc, o.Problems)
		}
	}
	if !Passed(outcomes) {
		t.Fatal("not passed")
	}

	s.Cases[0].Expect["doubled"] = []interface{}{1}
	s.Cases[1].Absent = nil
	s.Cases[1].Error = "nope"
	if outcomes, err = s.Run(ctx, acts); err != nil {
		t.Fatal(err)
	}
	if Passed(outcomes) || outcomes[0].Passed || outcomes[1].Passed || !outcomes[2].Passed {
		t.Fatal(JS(outcomes))
	}
}

func TestWholeEntry(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join("..", "specs")
	e, err := (&library.DirProvider{Dir: dir}).FindEntry(ctx, "double")
	if err != nil {
		t.Fatal(err)
	}
	acts := core.NewActions()
	if err = e.Compile(ctx, acts, nil); err != nil {
		t.Fatal(err)
	}
	b, err := e.ParseBatch()
	if err != nil {
		t.Fatal(err)
	}

	res, err := core.NewRun(acts).RunBatch(ctx, b, map[string]interface{}{"ns": []interface{}{1.0, 2.0}})
	if err != nil {
		t.Fatal(err)
	}
	if got := JS(res); got != `{"count":2,"doubled":[2,4]}` {
		t.Fatal(got)
	}

	res, err = core.NewRun(acts).RunBatch(ctx, b, map[string]interface{}{"ns": []interface{}{}})
	if err != nil {
		t.Fatal(err)
	}
	if got := JS(res); got != `{}` {
		t.Fatal(got)
	}
}
