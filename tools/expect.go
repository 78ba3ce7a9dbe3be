package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Comcast/sheaf/core"

	"go.uber.org/zap"
)

// Case is one run of a batch with the data to give it and what the
// result should contain.
type Case struct {
	// Doc is an opaque documentation string.
	Doc string `json:"doc,omitempty" yaml:"doc,omitempty"`

	// Data is the run's initial data.
	Data interface{} `json:"data,omitempty" yaml:"data,omitempty"`

	// Expect maps result keys to required values (compared with
	// core.Equal).  Other result keys are ignored.
	Expect map[string]interface{} `json:"expect,omitempty" yaml:"expect,omitempty"`

	// Absent lists result keys that must not be present.
	Absent []string `json:"absent,omitempty" yaml:"absent,omitempty"`

	// Error, if not empty, must be a substring of the run's
	// error.  Otherwise the run must succeed.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`

	// Timeout is the optional timeout for this case.
	// Session.DefaultTimeout is the default value.
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// Session is a batch and a sequence of Cases to run against it.
type Session struct {
	// Doc is an opaque documentation string.
	Doc string `json:"doc,omitempty" yaml:"doc,omitempty"`

	Batch map[string]interface{} `json:"batch" yaml:"batch"`

	Cases []Case `json:"cases" yaml:"cases"`

	// DefaultTimeout is the default timeout for each Case.
	DefaultTimeout time.Duration `json:"defaultTimeout,omitempty" yaml:"defaultTimeout,omitempty"`

	Logger *zap.Logger `json:"-" yaml:"-"`
}

// Outcome is what happened to a Case.
type Outcome struct {
	Case     int
	Doc      string
	Passed   bool
	Problems []string
	Result   map[string]interface{}
	Elapsed  time.Duration
}

// Run runs every Case, each in its own core.Run, with the given
// actions.  An error means the session itself is broken.  Failing
// cases are reported in the Outcomes.
func (s *Session) Run(ctx context.Context, acts *core.Actions) ([]*Outcome, error) {
	b, err := core.ParseBatch(s.Batch)
	if err != nil {
		return nil, err
	}

	logger := s.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	acc := make([]*Outcome, 0, len(s.Cases))
	for i, c := range s.Cases {
		timeout := c.Timeout
		if timeout == 0 {
			timeout = s.DefaultTimeout
		}
		cctx := ctx
		var cancel context.CancelFunc = func() {}
		if 0 < timeout {
			cctx, cancel = context.WithTimeout(ctx, timeout)
		}

		r := core.NewRun(acts)
		r.Logger = logger

		then := time.Now()
		res, err := r.RunBatch(cctx, b, core.Normalize(c.Data))
		cancel()

		o := &Outcome{
			Case:    i,
			Doc:     c.Doc,
			Result:  res,
			Elapsed: time.Since(then),
		}
		o.Problems = c.check(res, err)
		o.Passed = len(o.Problems) == 0

		logger.Info("case",
			zap.Int("case", i),
			zap.Bool("passed", o.Passed),
			zap.Duration("elapsed", o.Elapsed))

		acc = append(acc, o)
	}

	return acc, nil
}

func (c *Case) check(res map[string]interface{}, err error) []string {
	var problems []string
	switch {
	case c.Error == "" && err != nil:
		problems = append(problems, fmt.Sprintf("unexpected error: %v", err))
	case c.Error != "" && err == nil:
		problems = append(problems, fmt.Sprintf("expected an error containing %q", c.Error))
	case c.Error != "" && !strings.Contains(err.Error(), c.Error):
		problems = append(problems, fmt.Sprintf("error %q doesn't contain %q", err.Error(), c.Error))
	}

	for k, want := range c.Expect {
		got, have := res[k]
		if !have {
			problems = append(problems, fmt.Sprintf("missing %q", k))
			continue
		}
		if !core.Equal(core.Normalize(want), got) {
			problems = append(problems, fmt.Sprintf("%q is %s, not %s", k, js(got), js(want)))
		}
	}

	for _, k := range c.Absent {
		if _, have := res[k]; have {
			problems = append(problems, fmt.Sprintf("unexpected %q", k))
		}
	}

	return problems
}

// Passed reports whether every outcome passed.
func Passed(os []*Outcome) bool {
	for _, o := range os {
		if !o.Passed {
			return false
		}
	}
	return true
}

func js(x interface{}) string {
	bs, err := json.Marshal(x)
	if err != nil {
		return fmt.Sprintf("%#v", x)
	}
	return string(bs)
}
