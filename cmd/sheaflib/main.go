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

// Package main is a command-line shell for a BoltDB library of
// batch entries.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/Comcast/sheaf/actions"
	"github.com/Comcast/sheaf/core"
	"github.com/Comcast/sheaf/interpreters"
	"github.com/Comcast/sheaf/library"

	"go.uber.org/zap"
)

type Opts struct {
	storeFile string
	echo      bool
}

func main() {
	opts := &Opts{}
	flag.StringVar(&opts.storeFile, "L", "library.db", "library BoltDB file")
	flag.BoolVar(&opts.echo, "e", false, "echo input")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := library.NewBoltStore(opts.storeFile)
	if err := s.Open(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer s.Close(ctx)

	if err := opts.run(ctx, s, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func doc() string {
	return `Commands:
  list                 list the entries
  put NAME FILENAME    store the entry in the file under NAME
  print NAME           print the entry as JSON
  rm NAME              remove the entry
  run NAME [JSON]      run the entry's batch with the given data
  debug on|off         log runs to stderr
  help                 this text`
}

func (opts *Opts) run(ctx context.Context, s *library.BoltStore, in io.Reader, w io.Writer) error {
	var (
		list = regexp.MustCompile("^(list|ls)$")

		put = regexp.MustCompile("^put +([-a-zA-Z0-9_.]+) +(.*)")

		print = regexp.MustCompile("^print +([-a-zA-Z0-9_.]+)")

		rem = regexp.MustCompile("^(rm|del|remove|delete) +([-a-zA-Z0-9_.]+)")

		run = regexp.MustCompile("^run +([-a-zA-Z0-9_.]+)( +(.*))?$")

		debug = regexp.MustCompile("^debug(ging)? (on|off)")

		help = regexp.MustCompile("^(help|h|\\?)")

		outputPrefix = "# "

		logger = zap.NewNop()

		say = func(format string, args ...interface{}) {
			fmt.Fprintf(w, outputPrefix+format+"\n", args...)
		}

		protest = func(format string, args ...interface{}) {
			say("error: "+format, args...)
		}
	)

	r := bufio.NewReader(in)
	for {
		line, err := r.ReadString('\n')
		if err == io.EOF && line == "" {
			return nil
		}
		if err != nil && err != io.EOF {
			return err
		}
		line = strings.TrimSpace(line)

		if opts.echo {
			fmt.Fprintln(w, line)
		}

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var ss []string

		if ss = help.FindStringSubmatch(line); 0 < len(ss) {
			for _, s := range strings.Split(doc(), "\n") {
				say("%s", s)
			}
			continue
		}

		if ss = list.FindStringSubmatch(line); 0 < len(ss) {
			names, err := s.List(ctx)
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(w, name)
			}
			say("%d entries", len(names))
			continue
		}

		if ss = put.FindStringSubmatch(line); 0 < len(ss) {
			name, filename := ss[1], ss[2]
			bs, err := library.ReadFileWithInlines(filename)
			if err != nil {
				protest("couldn't read %s: %s", filename, err)
				continue
			}
			e, err := library.Parse(bs)
			if err != nil {
				protest("couldn't parse %s: %s", filename, err)
				continue
			}
			if _, err = e.ParseBatch(); err != nil {
				protest("bad batch in %s: %s", filename, err)
				continue
			}
			e.Name = name
			if err = s.Put(ctx, name, e); err != nil {
				return err
			}
			say("stored %s", name)
			continue
		}

		if ss = print.FindStringSubmatch(line); 0 < len(ss) {
			e, err := s.FindEntry(ctx, ss[1])
			if err != nil {
				protest("%s: %s", ss[1], err)
				continue
			}
			js, err := json.MarshalIndent(e, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s\n", js)
			continue
		}

		if ss = rem.FindStringSubmatch(line); 0 < len(ss) {
			if err = s.Delete(ctx, ss[2]); err != nil {
				return err
			}
			say("removed %s", ss[2])
			continue
		}

		if ss = debug.FindStringSubmatch(line); 0 < len(ss) {
			if ss[2] == "on" {
				if logger, err = zap.NewDevelopment(); err != nil {
					return err
				}
			} else {
				logger = zap.NewNop()
			}
			say("debugging %s", ss[2])
			continue
		}

		if ss = run.FindStringSubmatch(line); 0 < len(ss) {
			name, js := ss[1], ss[3]
			var data interface{} = map[string]interface{}{}
			if js != "" {
				if err = json.Unmarshal([]byte(js), &data); err != nil {
					protest("couldn't parse data %s", js)
					continue
				}
			}
			res, err := runEntry(ctx, s, logger, name, data)
			if res != nil {
				bs, _ := json.Marshal(res)
				fmt.Fprintf(w, "%s\n", bs)
			}
			if err != nil {
				protest("%s", err)
			}
			continue
		}

		protest("unknown command: %s", line)
	}
}

// runEntry runs the named entry with the stock actions that need no
// connections.  The store is available to "batch.NAME" calls.
func runEntry(ctx context.Context, s *library.BoltStore, logger *zap.Logger, name string, data interface{}) (map[string]interface{}, error) {
	e, err := s.FindEntry(ctx, name)
	if err != nil {
		return nil, err
	}

	is := interpreters.Standard(logger)
	acts := core.NewActions()
	if err = actions.Register(acts, &actions.Options{
		Logger:       logger,
		Library:      s,
		Interpreters: is,
	}); err != nil {
		return nil, err
	}
	if err = e.Compile(ctx, acts, is); err != nil {
		return nil, err
	}

	b, err := e.ParseBatch()
	if err != nil {
		return nil, err
	}

	r := core.NewRun(acts)
	r.Logger = logger
	return r.RunBatch(ctx, b, data)
}
