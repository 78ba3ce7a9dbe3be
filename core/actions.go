package core

import (
	"context"
	"regexp"
	"sort"
	"sync"
)

var (
	// DefaultInterpreters will be used in ActionSource.Compile if
	// the given nil interpreters.
	DefaultInterpreters = make(map[string]Interpreter)
)

// ActionFunc is an exact action.  It gets the resolved parameters
// (never falsy: an empty map is substituted) and returns the value
// that flows into the rest of its entry.
//
// An ActionFunc may block.  The context is passed through untouched,
// and the engine never cancels it on its own.
type ActionFunc func(ctx context.Context, params interface{}) (interface{}, error)

// WildcardFunc is an action registered under a pattern.  It also gets
// the name that matched.
type WildcardFunc func(ctx context.Context, name string, params interface{}) (interface{}, error)

// Wildcard is a pattern-matched action.
type Wildcard struct {
	Name    string
	Pattern *regexp.Regexp
	F       WildcardFunc
}

// Actions is a registry of actions.
//
// Lookup is exact name first, then a scan of the wildcards.  A
// wildcard pattern is unanchored: "api\..*" matches "my.api.x".
type Actions struct {
	sync.RWMutex

	exact     map[string]ActionFunc
	wildcards []*Wildcard
}

func NewActions() *Actions {
	return &Actions{
		exact: make(map[string]ActionFunc),
	}
}

// Add registers (or replaces) an exact action.
func (as *Actions) Add(name string, f ActionFunc) *Actions {
	as.Lock()
	as.exact[name] = f
	as.Unlock()
	return as
}

// AddWildcard registers (or replaces, by name) a wildcard action.
func (as *Actions) AddWildcard(name, pattern string, f WildcardFunc) error {
	r, err := regexp.Compile(pattern)
	if err != nil {
		return err
	}
	w := &Wildcard{
		Name:    name,
		Pattern: r,
		F:       f,
	}

	as.Lock()
	defer as.Unlock()
	for i, have := range as.wildcards {
		if have.Name == name {
			as.wildcards[i] = w
			return nil
		}
	}
	as.wildcards = append(as.wildcards, w)
	return nil
}

// Lookup finds the action for the name.
//
// The returned function has the name bound in the case of a
// wildcard.  Errors are *UnknownAction and *AmbiguousAction.
func (as *Actions) Lookup(name string) (ActionFunc, error) {
	if as == nil {
		return nil, &UnknownAction{Name: name}
	}

	as.RLock()
	defer as.RUnlock()

	if f, have := as.exact[name]; have {
		return f, nil
	}

	var found *Wildcard
	var matches []string
	for _, w := range as.wildcards {
		if w.Pattern.MatchString(name) {
			found = w
			matches = append(matches, w.Name)
		}
	}

	switch len(matches) {
	case 0:
		return nil, &UnknownAction{Name: name}
	case 1:
		f := found.F
		return func(ctx context.Context, params interface{}) (interface{}, error) {
			return f(ctx, name, params)
		}, nil
	default:
		return nil, &AmbiguousAction{
			Name:    name,
			Matches: matches,
		}
	}
}

// Names returns the sorted names of the exact actions.
func (as *Actions) Names() []string {
	as.RLock()
	acc := make([]string, 0, len(as.exact))
	for name := range as.exact {
		acc = append(acc, name)
	}
	as.RUnlock()
	sort.Strings(acc)
	return acc
}

// Wildcards returns the registered wildcard actions.
func (as *Actions) Wildcards() []*Wildcard {
	as.RLock()
	defer as.RUnlock()
	acc := make([]*Wildcard, len(as.wildcards))
	copy(acc, as.wildcards)
	return acc
}

// Interpreter can optionally compile and execute code for Actions.
type Interpreter interface {
	// Compile can make something that helps when Exec()ing the
	// code later.
	Compile(ctx context.Context, code interface{}) (interface{}, error)

	// Exec executes the code.  The result of previous Compile()
	// might be provided.
	//
	// The name is the key the action was invoked under.
	Exec(ctx context.Context, name string, params interface{}, code interface{}, compiled interface{}) (interface{}, error)
}

// ActionSource can be compiled to an action.
type ActionSource struct {
	Doc         string      `json:"doc,omitempty" yaml:",omitempty"`
	Interpreter string      `json:"interpreter,omitempty" yaml:",omitempty"`
	Source      interface{} `json:"source"`

	// Match, if given, makes the action a wildcard action with
	// this pattern.
	Match string `json:"match,omitempty" yaml:",omitempty"`
}

// Copy makes a shallow copy.
func (a *ActionSource) Copy() *ActionSource {
	if a == nil {
		return nil
	}
	return &ActionSource{
		Doc:         a.Doc,
		Interpreter: a.Interpreter,
		Source:      a.Source,
		Match:       a.Match,
	}
}

// Compile attempts to compile the ActionSource using the given
// interpreters, which defaults to DefaultInterpreters.
func (a *ActionSource) Compile(ctx context.Context, interpreters map[string]Interpreter) (WildcardFunc, error) {
	if interpreters == nil {
		interpreters = DefaultInterpreters
	}

	interpreter, have := interpreters[a.Interpreter]
	if !have {
		return nil, InterpreterNotFound
	}

	x, err := interpreter.Compile(ctx, a.Source)
	if err != nil {
		return nil, err
	}

	return func(ctx context.Context, name string, params interface{}) (interface{}, error) {
		return interpreter.Exec(ctx, name, params, a.Source, x)
	}, nil
}

// Compile compiles and registers each source.  A source with a Match
// is registered as a wildcard action.
func (as *Actions) Compile(ctx context.Context, srcs map[string]*ActionSource, interpreters map[string]Interpreter) error {
	for name, src := range srcs {
		f, err := src.Compile(ctx, interpreters)
		if err != nil {
			return &CompileError{Action: name, Err: err}
		}
		if src.Match != "" {
			if err := as.AddWildcard(name, src.Match, f); err != nil {
				return &CompileError{Action: name, Err: err}
			}
			continue
		}
		name := name
		as.Add(name, func(ctx context.Context, params interface{}) (interface{}, error) {
			return f(ctx, name, params)
		})
	}
	return nil
}

// CompileError reports which ActionSource failed to compile.
type CompileError struct {
	Action string
	Err    error
}

func (e *CompileError) Error() string {
	return `action "` + e.Action + `": ` + e.Err.Error()
}

func (e *CompileError) Unwrap() error {
	return e.Err
}
