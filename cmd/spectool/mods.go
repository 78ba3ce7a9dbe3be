package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/Comcast/sheaf/actions"
	"github.com/Comcast/sheaf/core"
	"github.com/Comcast/sheaf/interpreters"
	"github.com/Comcast/sheaf/library"
	"github.com/Comcast/sheaf/tools"

	"github.com/jsccast/yaml"
	"go.uber.org/zap"
)

// Mods are the subcommands that take an entry.
var Mods = map[string]Mod{
	"analyze": &Analyzer{},
	"mermaid": &Mermaider{},
	"dot":     &Grapher{},
	"html":    &HTMLer{},
	"test":    &Tester{},
}

type Mod interface {
	F(e *library.Entry, out io.Writer) error
	Doc() string
	Flags() *flag.FlagSet
}

// registry compiles the entry's actions into a registry that also
// has the stock actions that need no connections.
func registry(ctx context.Context, e *library.Entry) (*core.Actions, error) {
	acts := core.NewActions()
	if err := actions.Register(acts, nil); err != nil {
		return nil, err
	}
	if err := e.Compile(ctx, acts, interpreters.Standard(zap.NewNop())); err != nil {
		return nil, err
	}
	return acts, nil
}

type Analyzer struct {
	Strict bool
}

func (m *Analyzer) F(e *library.Entry, out io.Writer) error {
	b, err := e.ParseBatch()
	if err != nil {
		return err
	}
	acts, err := registry(context.Background(), e)
	if err != nil {
		return err
	}
	a := tools.Analyze(b, acts)
	bs, err := yaml.Marshal(a)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s", bs)

	if m.Strict && 0 < len(a.Errors) {
		return errors.New(strings.Join(a.Errors, "; "))
	}
	return nil
}

func (m *Analyzer) Doc() string {
	return "Writes an analysis of the entry's batch as YAML.  Action names are checked against the entry's actions and the stock actions."
}

func (m *Analyzer) Flags() *flag.FlagSet {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	fs.BoolVar(&m.Strict, "s", false, "fail if there are errors")
	return fs
}

type Mermaider struct {
	NoParams bool
}

func (m *Mermaider) F(e *library.Entry, out io.Writer) error {
	b, err := e.ParseBatch()
	if err != nil {
		return err
	}
	opts := tools.DefaultMermaidOpts
	opts.ShowParams = !m.NoParams
	return tools.Mermaid(b, out, &opts)
}

func (m *Mermaider) Doc() string {
	return "Writes a Mermaid diagram of the batch."
}

func (m *Mermaider) Flags() *flag.FlagSet {
	fs := flag.NewFlagSet("mermaid", flag.ContinueOnError)
	fs.BoolVar(&m.NoParams, "n", false, "don't show parameters")
	return fs
}

type Grapher struct {
	Highlight string
}

func (m *Grapher) F(e *library.Entry, out io.Writer) error {
	b, err := e.ParseBatch()
	if err != nil {
		return err
	}
	return tools.Dot(b, out, m.Highlight)
}

func (m *Grapher) Doc() string {
	return "Writes a Graphviz dot file for the batch."
}

func (m *Grapher) Flags() *flag.FlagSet {
	fs := flag.NewFlagSet("dot", flag.ContinueOnError)
	fs.StringVar(&m.Highlight, "h", "", "name of calls to highlight")
	return fs
}

type HTMLer struct {
	CSS   string
	Graph bool
}

func (m *HTMLer) F(e *library.Entry, out io.Writer) error {
	var css []string
	if m.CSS != "" {
		css = strings.Split(m.CSS, ",")
	}
	return tools.RenderEntryPage(e, out, css, m.Graph)
}

func (m *HTMLer) Doc() string {
	return "Writes an HTML page documenting the entry."
}

func (m *HTMLer) Flags() *flag.FlagSet {
	fs := flag.NewFlagSet("html", flag.ContinueOnError)
	fs.StringVar(&m.CSS, "c", "", "comma-separated CSS files")
	fs.BoolVar(&m.Graph, "g", false, "include a diagram")
	return fs
}

// Tester runs a session file's cases with the actions from the entry
// on stdin.
type Tester struct {
	Session string
	Timeout time.Duration
}

func (m *Tester) F(e *library.Entry, out io.Writer) error {
	if m.Session == "" {
		return errors.New("need a session file (-f)")
	}
	bs, err := os.ReadFile(m.Session)
	if err != nil {
		return err
	}
	var s tools.Session
	if err = yaml.Unmarshal(bs, &s); err != nil {
		return err
	}
	if s.Batch == nil {
		s.Batch = e.Batch
	}
	if s.DefaultTimeout == 0 {
		s.DefaultTimeout = m.Timeout
	}

	ctx := context.Background()
	acts, err := registry(ctx, e)
	if err != nil {
		return err
	}

	outcomes, err := s.Run(ctx, acts)
	if err != nil {
		return err
	}
	for _, o := range outcomes {
		status := "pass"
		if !o.Passed {
			status = "FAIL"
		}
		fmt.Fprintf(out, "%s %d %s (%s)\n", status, o.Case, o.Doc, o.Elapsed)
		for _, p := range o.Problems {
			fmt.Fprintf(out, "    %s\n", p)
		}
	}
	if !tools.Passed(outcomes) {
		return errors.New("failed")
	}
	return nil
}

func (m *Tester) Doc() string {
	return "Runs the cases in a session file against the entry.  The session's batch defaults to the entry's."
}

func (m *Tester) Flags() *flag.FlagSet {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.StringVar(&m.Session, "f", "", "session file")
	fs.DurationVar(&m.Timeout, "t", 10*time.Second, "default timeout per case")
	return fs
}
