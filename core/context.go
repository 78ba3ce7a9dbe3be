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

package core

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// TracerName is the instrumentation name used for the default
// Tracer.
const TracerName = "github.com/Comcast/sheaf/core"

// Run is the execution context for one batch run.
//
// A Run is shared (by pointer) by every task the run starts.  The
// Actions are only read.  The Result is the single piece of shared
// mutable state.
type Run struct {
	// Id identifies the run in logs and spans.
	Id string

	Actions *Actions

	// Result is created on first use if nil.
	Result *Result

	// Logger defaults to a no-op logger.
	Logger *zap.Logger

	// Tracer defaults to the global provider's tracer.
	Tracer trace.Tracer

	// Metrics is optional.
	Metrics *Metrics

	once sync.Once
}

// NewRun makes a Run with a fresh Id and an empty Result.
func NewRun(actions *Actions) *Run {
	if actions == nil {
		actions = NewActions()
	}
	return &Run{
		Id:      uuid.NewString(),
		Actions: actions,
		Result:  NewResult(),
		Logger:  zap.NewNop(),
		Tracer:  otel.Tracer(TracerName),
	}
}

// init fills in anything the caller left nil.
func (r *Run) init() {
	r.once.Do(func() {
		if r.Id == "" {
			r.Id = uuid.NewString()
		}
		if r.Actions == nil {
			r.Actions = NewActions()
		}
		if r.Result == nil {
			r.Result = NewResult()
		}
		if r.Logger == nil {
			r.Logger = zap.NewNop()
		}
		if r.Tracer == nil {
			r.Tracer = otel.Tracer(TracerName)
		}
	})
}

func (r *Run) result() *Result {
	r.init()
	return r.Result
}

type runKey struct{}

// WithRun returns a context that carries the Run.  Actions get such
// a context, so an action can run more of a batch in the same Run
// (see RunFrom).
func WithRun(ctx context.Context, r *Run) context.Context {
	return context.WithValue(ctx, runKey{}, r)
}

// RunFrom returns the Run carried by the context, if any.
func RunFrom(ctx context.Context) *Run {
	r, _ := ctx.Value(runKey{}).(*Run)
	return r
}
