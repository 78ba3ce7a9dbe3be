/* Copyright 2018-2019 Comcast Cable Communications Management, LLC
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

// Package library stores named batches so that they can be run by
// name, either from a command line or from inside another batch (see
// the "batch.NAME" action).
package library

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Comcast/sheaf/core"

	"github.com/jsccast/yaml"
)

// NotFound is returned by a Provider that doesn't have the entry.
var NotFound = errors.New("entry not found")

// Entry is a named batch together with the script actions it needs.
type Entry struct {
	Name string `json:"name,omitempty" yaml:",omitempty"`

	// Doc describes the batch in English and Markdown.
	Doc string `json:"doc,omitempty" yaml:",omitempty"`

	// Batch is the raw batch tree.
	Batch map[string]interface{} `json:"batch" yaml:"batch"`

	// Actions are script actions the batch uses.
	Actions map[string]*core.ActionSource `json:"actions,omitempty" yaml:",omitempty"`
}

// Parse reads an Entry from YAML (or JSON).
//
// A document without a "batch" property is taken to be a bare batch.
func Parse(bs []byte) (*Entry, error) {
	var probe map[string]interface{}
	if err := yaml.Unmarshal(bs, &probe); err != nil {
		return nil, err
	}
	if probe == nil {
		return nil, errors.New("empty entry")
	}

	if _, have := probe["batch"]; !have {
		batch, _ := core.Normalize(probe).(map[string]interface{})
		return &Entry{
			Batch: batch,
		}, nil
	}

	var e Entry
	if err := yaml.Unmarshal(bs, &e); err != nil {
		return nil, err
	}
	if batch, is := core.Normalize(e.Batch).(map[string]interface{}); is {
		e.Batch = batch
	}
	return &e, nil
}

// Copy makes a shallow copy with copied ActionSources.
func (e *Entry) Copy() *Entry {
	acts := make(map[string]*core.ActionSource, len(e.Actions))
	for name, a := range e.Actions {
		acts[name] = a.Copy()
	}
	return &Entry{
		Name:    e.Name,
		Doc:     e.Doc,
		Batch:   e.Batch,
		Actions: acts,
	}
}

// ParseBatch builds the typed tree.
func (e *Entry) ParseBatch() (*core.Batch, error) {
	if e.Batch == nil {
		return nil, &core.BadSpec{Msg: fmt.Sprintf("entry %q has no batch", e.Name)}
	}
	return core.ParseBatch(e.Batch)
}

// Compile compiles the entry's script actions into the registry.
func (e *Entry) Compile(ctx context.Context, acts *core.Actions, interpreters map[string]core.Interpreter) error {
	if len(e.Actions) == 0 {
		return nil
	}
	return acts.Compile(ctx, e.Actions, interpreters)
}

// Provider can FindEntry given a name.
type Provider interface {
	FindEntry(ctx context.Context, name string) (*Entry, error)
}

// MapProvider is an in-memory Provider.
type MapProvider struct {
	sync.RWMutex
	entries map[string]*Entry
}

func NewMapProvider() *MapProvider {
	return &MapProvider{
		entries: make(map[string]*Entry),
	}
}

func (p *MapProvider) Add(name string, e *Entry) {
	p.Lock()
	p.entries[name] = e
	p.Unlock()
}

func (p *MapProvider) FindEntry(ctx context.Context, name string) (*Entry, error) {
	p.RLock()
	e, have := p.entries[name]
	p.RUnlock()
	if !have {
		return nil, NotFound
	}
	return e, nil
}

// Providers tries each Provider in order.
type Providers []Provider

func (ps Providers) FindEntry(ctx context.Context, name string) (*Entry, error) {
	for _, p := range ps {
		e, err := p.FindEntry(ctx, name)
		if err == nil {
			return e, nil
		}
		if !errors.Is(err, NotFound) {
			return nil, err
		}
	}
	return nil, NotFound
}
