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

// Package main is a command-line tool for batch entries.
//
// Input is an entry (YAML or JSON) on stdin.  '%inline("FILE")' is
// expanded relative to the current directory.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/Comcast/sheaf/library"

	"github.com/jsccast/yaml"
)

func main() {
	if len(os.Args) < 2 {
		Usage()
		os.Exit(1)
	}
	if err := run(os.Args[1], os.Args[2:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd string, args []string, in io.Reader, out io.Writer) error {
	bs, err := library.ReadAllWithInlines(in, ".")
	if err != nil {
		return err
	}

	switch cmd {
	case "yamltojson":
		pretty := false
		for _, arg := range args {
			switch arg {
			case "-p":
				pretty = true
			default:
				return fmt.Errorf("unsupported args: %v", args)
			}
		}

		e, err := library.Parse(bs)
		if err != nil {
			return err
		}
		if pretty {
			bs, err = json.MarshalIndent(e, "", "  ")
		} else {
			bs, err = json.Marshal(e)
		}
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(out, "%s\n", bs)
		return err

	case "jsontoyaml":
		var e library.Entry
		if err = json.Unmarshal(bs, &e); err != nil {
			return err
		}
		if bs, err = yaml.Marshal(&e); err != nil {
			return err
		}
		_, err = out.Write(bs)
		return err
	}

	mod, have := Mods[cmd]
	if !have {
		Usage()
		return fmt.Errorf("unknown subcommand %q", cmd)
	}

	if err := mod.Flags().Parse(args); err != nil {
		return err
	}

	e, err := library.Parse(bs)
	if err != nil {
		return err
	}

	return mod.F(e, out)
}

func Usage() {
	fmt.Printf("Subcommands:\n\n")
	names := make([]string, 0, len(Mods))
	for name := range Mods {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		mod := Mods[name]
		mod.Flags().Usage()
		fmt.Println("  " + mod.Doc())
		fmt.Println()
	}
	fmt.Println("Usage of yamltojson:")
	fmt.Printf("  -p    pretty-print\n\n")
	fmt.Printf("Usage of jsontoyaml: (no arguments)\n\n")
}
