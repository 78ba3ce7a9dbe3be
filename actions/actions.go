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

// Package actions provides stock actions: sleep, HTTP requests,
// cron schedules, MQTT publishing, websocket request/reply, and
// running library batches by name.
package actions

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Comcast/sheaf/core"
	"github.com/Comcast/sheaf/library"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Options says which stock actions to Register.  Actions whose
// dependencies are nil are skipped.
type Options struct {
	Logger *zap.Logger

	// HTTPClient enables the "http.METHOD" actions.
	HTTPClient *http.Client

	// Publisher enables "mqtt.publish".
	Publisher Publisher

	// PublishTimeout bounds how long "mqtt.publish" waits for
	// its token.  Defaults to DefaultPublishTimeout.
	PublishTimeout time.Duration

	// Dialer enables "ws.request".
	Dialer *websocket.Dialer

	// Library enables "batch.NAME".
	Library library.Provider

	// Interpreters compile script actions in library entries.
	// Nil means core.DefaultInterpreters.
	Interpreters map[string]core.Interpreter
}

// Register adds the stock actions to the registry.
//
// "sleep" and "cron.next" are always added.
func Register(acts *core.Actions, opts *Options) error {
	if opts == nil {
		opts = &Options{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	acts.Add("sleep", Sleep)
	acts.Add("cron.next", CronNext)

	if opts.HTTPClient != nil {
		h := &HTTP{
			Client: opts.HTTPClient,
			Logger: logger,
		}
		if err := acts.AddWildcard("http", HTTPPattern, h.Do); err != nil {
			return fmt.Errorf("http: %w", err)
		}
	}

	if opts.Publisher != nil {
		p := &MQTT{
			Publisher: opts.Publisher,
			Timeout:   opts.PublishTimeout,
			Logger:    logger,
		}
		acts.Add("mqtt.publish", p.Publish)
	}

	if opts.Dialer != nil {
		w := &WebSocket{
			Dialer: opts.Dialer,
		}
		acts.Add("ws.request", w.Request)
	}

	if opts.Library != nil {
		b := &Batches{
			Library:      opts.Library,
			Interpreters: opts.Interpreters,
			Logger:       logger,
		}
		if err := acts.AddWildcard("batch", BatchPattern, b.Run); err != nil {
			return fmt.Errorf("batch: %w", err)
		}
	}

	return nil
}

// params returns the map of parameters.
func params(name string, x interface{}) (map[string]interface{}, error) {
	m, is := x.(map[string]interface{})
	if !is {
		return nil, fmt.Errorf("%s: params %T isn't a map", name, x)
	}
	return m, nil
}

// stringParam gets a required string parameter.
func stringParam(name string, m map[string]interface{}, p string) (string, error) {
	s, is := m[p].(string)
	if !is || s == "" {
		return "", fmt.Errorf(`%s: "%s" must be a non-empty string`, name, p)
	}
	return s, nil
}

// number converts a JSON number (or a Go int) to a float64.
func number(x interface{}) (float64, bool) {
	switch vv := x.(type) {
	case float64:
		return vv, true
	case int:
		return float64(vv), true
	case int64:
		return float64(vv), true
	}
	return 0, false
}
