package core

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// RunBatch parses the spec (see ParseBatch), walks it with the given
// initial data and no local bindings, and returns a snapshot of the
// Result.
//
// On error, the snapshot still has whatever the run managed to save
// before the error was observed.
func (r *Run) RunBatch(ctx context.Context, spec interface{}, data interface{}) (map[string]interface{}, error) {
	r.init()

	b, err := ParseBatch(spec)
	if err != nil {
		return nil, err
	}

	r.Logger.Debug("run", zap.String("run", r.Id))

	err = r.Walk(ctx, b, data, nil)
	if err != nil {
		r.Logger.Warn("run failed", zap.String("run", r.Id), zap.Error(err))
	}

	return r.Result.Snapshot(), err
}

// Walk executes one level of a batch.
//
// Every Call starts in its own goroutine.  Walk then waits for all
// of them.  The first error seen is returned right away; the calls
// still running are left alone and their outcomes are dropped.
//
// After every call has finished, the continuations all start, each
// against the same data this level got, and Walk waits for them the
// same way.
func (r *Run) Walk(ctx context.Context, b *Batch, data interface{}, ldata Bindings) error {
	if b.Terminal() {
		return nil
	}

	r.init()

	if err := join(len(b.Calls), func(i int) error {
		return r.call(ctx, b.Calls[i], data, ldata)
	}); err != nil {
		return err
	}

	return join(len(b.Next), func(i int) error {
		return r.next(ctx, b.Next[i], data, ldata)
	})
}

// join runs f(0) ... f(n-1) concurrently and returns the first error
// (if any).
//
// The channel has room for every outcome, so goroutines still
// running after join returns can always finish.
func join(n int, f func(i int) error) error {
	if n == 0 {
		return nil
	}
	done := make(chan error, n)
	for i := 0; i < n; i++ {
		i := i
		go func() {
			done <- f(i)
		}()
	}
	for i := 0; i < n; i++ {
		if err := <-done; err != nil {
			return err
		}
	}
	return nil
}

// call resolves the parameters, dispatches, and walks the rest of
// the entry with the output.
func (r *Run) call(ctx context.Context, c *Call, data interface{}, ldata Bindings) error {
	params := r.Resolve(c.Params, data, ldata)

	out, err := r.dispatch(ctx, c, params, data, ldata)
	if err != nil {
		return err
	}

	if c.Then.Terminal() {
		return nil
	}

	return r.Walk(ctx, c.Then, out, ldata)
}

func (r *Run) next(ctx context.Context, n *Continuation, data interface{}, ldata Bindings) error {
	if n.Conditional {
		params := r.Resolve(n.Params, data, ldata)
		if m, is := params.(map[string]interface{}); is {
			if cond, have := m[IfKey]; have && !Truthy(cond) {
				r.Logger.Debug("skip", zap.String("run", r.Id))
				return nil
			}
		}
	}
	return r.Walk(ctx, n.Batch, data, ldata)
}

// dispatch resolves the name to a combinator, an exact action, or a
// single wildcard action (in that order), and calls it.
func (r *Run) dispatch(ctx context.Context, c *Call, params, data interface{}, ldata Bindings) (interface{}, error) {
	kind := "action"
	if c.Combinator {
		kind = "combinator"
	}

	ctx, span := r.Tracer.Start(ctx, "sheaf.call",
		trace.WithAttributes(
			attribute.String("sheaf.run", r.Id),
			attribute.String("sheaf.name", c.Name),
			attribute.String("sheaf.kind", kind)))
	defer span.End()

	r.Logger.Debug("call",
		zap.String("run", r.Id),
		zap.String("call", c.Name),
		zap.String("kind", kind))

	then := time.Now()

	var (
		out interface{}
		err error
	)
	if c.Combinator {
		out, err = r.combine(ctx, c, params, data, ldata)
	} else {
		out, err = r.act(ctx, c.Name, params)
	}

	r.Metrics.called(c.Name, kind, err, time.Since(then))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.Logger.Warn("call failed",
			zap.String("run", r.Id),
			zap.String("call", c.Name),
			zap.Error(err))
		return nil, err
	}

	return out, nil
}

func (r *Run) act(ctx context.Context, name string, params interface{}) (interface{}, error) {
	f, err := r.Actions.Lookup(name)
	if err != nil {
		return nil, err
	}
	if !Truthy(params) {
		params = map[string]interface{}{}
	}
	out, err := f(WithRun(ctx, r), params)
	if err != nil {
		return nil, err
	}
	return Normalize(out), nil
}
