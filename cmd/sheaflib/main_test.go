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

package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Comcast/sheaf/library"
)

func TestShell(t *testing.T) {
	ctx := context.Background()
	s := library.NewBoltStore(filepath.Join(t.TempDir(), "library.db"))
	if err := s.Open(ctx); err != nil {
		t.Fatal(err)
	}
	defer s.Close(ctx)

	script := `
# A comment
help
put double ../../specs/double.yaml
put wrapper ../../specs/wrapper.yaml
list
run double {"ns":[1,2]}
run wrapper {"ns":[3]}
print double
rm double
run double
frob
`
	out := &bytes.Buffer{}
	opts := &Opts{}
	if err := opts.run(ctx, s, strings.NewReader(script), out); err != nil {
		t.Fatal(err)
	}

	got := out.String()
	for _, want := range []string{
		"# stored double",
		"double\nwrapper\n# 2 entries",
		`{"count":2,"doubled":[2,4]}`,
		`{"count":1,"doubled":[6],"wrapped":true}`,
		`"name": "double"`,
		"# removed double",
		"# error: entry not found",
		"# error: unknown command: frob",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("missing %q in\n%s", want, got)
		}
	}
}
