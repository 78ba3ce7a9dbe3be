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

	"go.uber.org/zap"
)

// LoopKey is the local binding for the current loop item.
const LoopKey = "loop"

// Loop walks the body once per item with the item bound to "loop" in
// a copy of ldata.
//
// With a limit of 1 (or less), iterations run one after another in
// order.  Otherwise limit workers each take the next item from a
// FIFO queue whenever their current iteration finishes, so at most
// limit iterations are in flight.
//
// The first error is returned as soon as it's seen.  The worker that
// failed stops taking items, but the other workers keep going until
// the queue is empty.  Their errors are discarded.
func (r *Run) Loop(ctx context.Context, items []interface{}, limit int, body *Batch, data interface{}, ldata Bindings) error {
	r.init()

	iterate := func(item interface{}) error {
		r.Metrics.loopStarted()
		defer r.Metrics.loopFinished()
		return r.Walk(ctx, body, data, ldata.Copy().Extend(LoopKey, item))
	}

	if limit <= 1 {
		for _, item := range items {
			if err := iterate(item); err != nil {
				return err
			}
		}
		return nil
	}

	if len(items) < limit {
		limit = len(items)
	}

	r.Logger.Debug("loop",
		zap.String("run", r.Id),
		zap.Int("items", len(items)),
		zap.Int("limit", limit))

	queue := make(chan interface{}, len(items))
	for _, item := range items {
		queue <- item
	}
	close(queue)

	// Buffered so that workers never block after Loop returns.
	done := make(chan error, limit)
	for i := 0; i < limit; i++ {
		go func() {
			for item := range queue {
				if err := iterate(item); err != nil {
					done <- err
					return
				}
			}
			done <- nil
		}()
	}

	for i := 0; i < limit; i++ {
		if err := <-done; err != nil {
			return err
		}
	}

	return nil
}
