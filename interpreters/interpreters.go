// Package interpreters gathers the standard action interpreters.
package interpreters

import (
	"github.com/Comcast/sheaf/core"
	"github.com/Comcast/sheaf/interpreters/goja"
	"github.com/Comcast/sheaf/interpreters/noop"

	"go.uber.org/zap"
)

// Standard returns the standard interpreters ("goja", "ecmascript"
// for backwards compatibility, and "noop"), all logging to the given
// logger (which can be nil).
func Standard(logger *zap.Logger) map[string]core.Interpreter {
	js := goja.NewInterpreter()
	js.Logger = logger

	return map[string]core.Interpreter{
		"goja":       js,
		"ecmascript": js,
		"noop":       &noop.Interpreter{Logger: logger},
	}
}
