package main

import (
	"bytes"
	"strings"
	"testing"
)

var entry = `
name: greet
doc: Says hello.
actions:
  hello:
    interpreter: goja
    source: return "hello " + _.params.who;
batch:
  hello:
    (): {who: $who}
    save: greeting
`

func TestYAMLToJSON(t *testing.T) {
	out := &bytes.Buffer{}
	if err := run("yamltojson", nil, strings.NewReader(entry), out); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), `"save":"greeting"`) {
		t.Fatal(out.String())
	}

	back := &bytes.Buffer{}
	if err := run("jsontoyaml", nil, bytes.NewReader(out.Bytes()), back); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(back.String(), "save: greeting") {
		t.Fatal(back.String())
	}

	if err := run("yamltojson", []string{"-x"}, strings.NewReader(entry), out); err == nil {
		t.Fatal("expected an error")
	}
}

func TestAnalyze(t *testing.T) {
	out := &bytes.Buffer{}
	if err := run("analyze", []string{"-s"}, strings.NewReader(entry), out); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "- hello") {
		t.Fatal(out.String())
	}

	bad := `{"batch": {"nope": {}}}`
	if err := run("analyze", []string{"-s"}, strings.NewReader(bad), out); err == nil {
		t.Fatal("expected an error")
	}
}

func TestMermaidAndDot(t *testing.T) {
	out := &bytes.Buffer{}
	if err := run("mermaid", nil, strings.NewReader(entry), out); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out.String(), "graph TB") {
		t.Fatal(out.String())
	}

	out.Reset()
	if err := run("dot", []string{"-h", "hello"}, strings.NewReader(entry), out); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out.String(), "digraph G") {
		t.Fatal(out.String())
	}
}

func TestTest(t *testing.T) {
	out := &bytes.Buffer{}
	if err := run("test", nil, strings.NewReader(entry), out); err == nil {
		t.Fatal("expected an error without a session")
	}
}

func TestUnknownSubcommand(t *testing.T) {
	if err := run("frob", nil, strings.NewReader(entry), &bytes.Buffer{}); err == nil {
		t.Fatal("expected an error")
	}
}
