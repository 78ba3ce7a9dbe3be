package noop

import (
	"context"

	"go.uber.org/zap"
)

// Interpreter is an core.Interpreter which just returns the action's
// parameters without modification.
//
// Handy as a placeholder for an action that hasn't been written yet.
type Interpreter struct {
	// Silent, if true, will suppress warning log messages.
	Silent bool

	// Logger defaults to a no-op logger.
	Logger *zap.Logger
}

func NewInterpreter() *Interpreter {
	return &Interpreter{}
}

func (i *Interpreter) logger() *zap.Logger {
	if i.Logger == nil || i.Silent {
		return zap.NewNop()
	}
	return i.Logger
}

func (i *Interpreter) Compile(ctx context.Context, code interface{}) (interface{}, error) {
	i.logger().Warn("using noop interpreter for compilation")
	return nil, nil
}

func (i *Interpreter) Exec(ctx context.Context, name string, params interface{}, code interface{}, compiled interface{}) (interface{}, error) {
	i.logger().Warn("using noop interpreter for execution", zap.String("action", name))
	return params, nil
}
