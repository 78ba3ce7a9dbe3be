package tools

// dot -Tpng g.dot > g.png

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	. "github.com/Comcast/sheaf/core"

	"gopkg.in/yaml.v2"
)

// Dot makes a Graphviz dot file for the given batch.  A really ugly
// dot file.
//
// Parameters are rendered as YAML.  If highlight is the name of an
// action or combinator, those nodes are red.
func Dot(b *Batch, w io.Writer, highlight string) error {
	g := BuildGraph(b)

	fmt.Fprintf(w, "digraph G {\n")
	fmt.Fprintf(w, `  graph [ordering=out,rankdir=TB,nodesep=0.3,ranksep=0.6]
  node [shape="record" style="rounded,filled"]
  edge [fontsize = "12"]
`)
	fmt.Fprintf(w, "  %s [shape=\"circle\", style=\"bold\", label=\"%s\"]\n", StartId, StartId)

	for _, n := range g.Nodes {
		label := dotEscape(n.Name)
		if n.Params != nil {
			src, err := yaml.Marshal(n.Params)
			if err != nil {
				src = []byte(err.Error())
			}
			label += `<FONT POINT-SIZE="8">` +
				`<BR/>` + strings.Replace(dotEscape(string(src)), "\n", `<BR ALIGN="LEFT"/>`, -1) +
				`</FONT>`
		}

		fillcolor := "#99ddc8"
		shape := "note"
		if n.Combinator {
			fillcolor = "#52aa5e"
			shape = "record"
		}
		color := "black"
		if highlight != "" && highlight == n.Name {
			color = "red"
			fillcolor = "#f98b8b"
		}
		fmt.Fprintf(w, "  %s [shape=\"%s\", style=\"filled\", color=\"%s\", fillcolor=\"%s\", label=<%s> ]\n",
			n.Id, shape, color, fillcolor, label)
	}

	for _, e := range g.Edges {
		var style, label string
		switch e.Kind {
		case EdgeThen:
			style = "solid"
		case EdgeBody:
			style = "bold"
			label = dotEscape(BodyKey)
		case EdgeNext:
			style = "dashed"
			label = "next"
		case EdgeIf:
			style = "dashed"
			label = "if"
			if e.Params != nil {
				if src, err := yaml.Marshal(e.Params); err == nil {
					label = strings.Replace(dotEscape(string(src)), "\n", `<BR ALIGN="LEFT"/>`, -1)
				}
			}
		}
		fmt.Fprintf(w, "  %s -> %s [ style=\"%s\" label = <%s> ]\n", e.From, e.To, style, label)
	}

	fmt.Fprintf(w, "}\n")
	return nil
}

// PNG generates a PNG image based on output from Dot.
//
// This function with write two files: basename.dot and basename.png,
// where the basename is the given string.  Requires dot in the PATH.
func PNG(b *Batch, basename string) (string, error) {
	dotname := basename + ".dot"
	pngname := basename + ".png"

	dotfile, err := os.Create(dotname)
	if err != nil {
		return pngname, err
	}
	if err := Dot(b, dotfile, ""); err != nil {
		dotfile.Close()
		return pngname, err
	}
	if err := dotfile.Close(); err != nil {
		return pngname, err
	}
	if err := exec.Command("dot", "-Tpng", "-o", pngname, dotname).Run(); err != nil {
		return pngname, err
	}
	return pngname, nil
}

func dotEscape(s string) string {
	s = strings.Replace(s, "&", `&amp;`, -1)
	s = strings.Replace(s, "<", `&lt;`, -1)
	s = strings.Replace(s, ">", `&gt;`, -1)
	return s
}
