package core

// These errors are user errors, not internal errors.
//
// An error returned by an action is never wrapped in one of these.
// Walk hands it back exactly as the action returned it.

import (
	"errors"
	"strings"
)

// UnknownAction occurs when a key is neither a combinator, an exact
// action, nor matched by any wildcard action.
type UnknownAction struct {
	Name string
}

func (e *UnknownAction) Error() string {
	return `unknown action "` + e.Name + `"`
}

// AmbiguousAction occurs when more than one wildcard action matches
// a key.
type AmbiguousAction struct {
	Name string

	// Matches are the names of the wildcard actions that matched.
	Matches []string
}

func (e *AmbiguousAction) Error() string {
	return `multiple wildcard actions (` + strings.Join(e.Matches, ", ") + `) match "` + e.Name + `"`
}

// BadParameter occurs when a combinator's resolved parameters have
// the wrong shape.
//
// For example, "save" needs a string key.  "loop" needs an "on" that
// is a sequence.
type BadParameter struct {
	Combinator string
	Msg        string
}

func (e *BadParameter) Error() string {
	return `bad parameter for "` + e.Combinator + `": ` + e.Msg
}

// BadSpec occurs when a batch can't be parsed at all.
type BadSpec struct {
	Msg string
}

func (e *BadSpec) Error() string {
	return "bad batch: " + e.Msg
}

// InterpreterNotFound occurs when you try to Compile an
// ActionSource, and the required interpreter isn't in the given map
// of interpreters.
var InterpreterNotFound = errors.New("interpreter not found")
