package actions

import (
	"context"
	"fmt"
	"strings"

	"github.com/Comcast/sheaf/core"
	"github.com/Comcast/sheaf/library"

	"go.uber.org/zap"
)

// BatchPattern matches "batch.NAME".
const BatchPattern = `^batch\.`

// Batches runs library batches for "batch.NAME".
//
// The batch runs in the caller's Run with the action's params as its
// data, so its saves land in the same result.  Script actions in the
// entry are compiled into the Run's registry first.  The output is
// nil.
type Batches struct {
	Library      library.Provider
	Interpreters map[string]core.Interpreter
	Logger       *zap.Logger
}

func (b *Batches) Run(ctx context.Context, name string, params interface{}) (interface{}, error) {
	r := core.RunFrom(ctx)
	if r == nil {
		return nil, fmt.Errorf("%s: no run in context", name)
	}

	id := strings.TrimPrefix(name, "batch.")
	e, err := b.Library.FindEntry(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	if err = e.Compile(ctx, r.Actions, b.Interpreters); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	sub, err := e.ParseBatch()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	if b.Logger != nil {
		b.Logger.Debug("batch", zap.String("entry", id), zap.String("run", r.Id))
	}

	if err = r.Walk(ctx, sub, params, nil); err != nil {
		return nil, err
	}
	return nil, nil
}
