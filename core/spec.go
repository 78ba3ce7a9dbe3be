package core

import (
	"encoding/json"
	"sort"
)

const (
	// NextKey introduces continuations: work that starts only
	// after all of a node's calls have finished.
	NextKey = "next"

	// BodyKey holds a nested batch.  A loop's body is its
	// BodyKey.  So is the work of a conditional continuation.
	BodyKey = "{}"

	// ParamsKey holds the (unresolved) parameters of a call.
	ParamsKey = "()"

	// IfKey is the parameter that makes a continuation conditional.
	IfKey = "if"
)

// Batch is one level of a parsed batch tree.
//
// Every key of the raw map other than the reserved ones becomes one
// or more Calls.  A sequence under one key becomes one Call per
// element.  The Calls are ordered by key, so launch order is
// deterministic even though completion order is not.
type Batch struct {
	Calls []*Call
	Next  []*Continuation

	raw map[string]interface{}
}

// Call is one invocation of a combinator or an action.
type Call struct {
	// Name is the key that introduced this call.
	Name string

	// Combinator is true when Name is a built-in combinator.
	// Whether an action name is exact or wildcard is decided
	// when the call is dispatched.
	Combinator bool

	// Params is the unresolved ParamsKey value (or the entry
	// itself when the entry isn't a map).
	Params interface{}

	// Body is the BodyKey batch, if any.
	Body *Batch

	// Then is the rest of the entry (everything but ParamsKey and
	// BodyKey).  It's walked with the call's output as its data.
	Then *Batch
}

// Continuation is one entry under NextKey.
type Continuation struct {
	// Conditional is true when the entry has a BodyKey.  Then
	// the entry's Params are resolved, and an "if" parameter
	// that is present and falsy skips the Batch.
	Conditional bool

	Params interface{}

	Batch *Batch
}

// ParseBatch builds a typed tree from a generic map (as decoded from
// JSON or YAML).
//
// Parsing is lenient: only a top level that isn't a map is an error.
// A nested value that isn't a map is an empty batch.  Whether a name
// is a registered action isn't checked here.
func ParseBatch(x interface{}) (*Batch, error) {
	switch vv := x.(type) {
	case *Batch:
		return vv, nil
	case []byte:
		var m map[string]interface{}
		if err := json.Unmarshal(vv, &m); err != nil {
			return nil, &BadSpec{Msg: err.Error()}
		}
		return parseBatch(m), nil
	case string:
		return ParseBatch([]byte(vv))
	}
	m, is := Normalize(x).(map[string]interface{})
	if !is {
		return nil, &BadSpec{Msg: "not a map"}
	}
	return parseBatch(m), nil
}

func parseBatch(m map[string]interface{}) *Batch {
	b := &Batch{
		raw: m,
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := m[k]
		switch k {
		case NextKey:
			for _, e := range entries(v) {
				b.Next = append(b.Next, parseContinuation(e))
			}
		case BodyKey, ParamsKey:
			// Only meaningful within an entry.
		default:
			for _, e := range entries(v) {
				b.Calls = append(b.Calls, parseCall(k, e))
			}
		}
	}

	return b
}

func parseCall(name string, x interface{}) *Call {
	c := &Call{
		Name:       name,
		Combinator: IsCombinator(name),
	}
	m, is := x.(map[string]interface{})
	if !is {
		// A bare value is shorthand for a combinator's params.  An
		// action written that way gets no params.
		if c.Combinator {
			c.Params = x
		}
		return c
	}
	c.Params = m[ParamsKey]
	if body, have := m[BodyKey]; have {
		c.Body = asBatch(body)
	}
	rest := make(map[string]interface{}, len(m))
	for k, v := range m {
		if k == ParamsKey || k == BodyKey {
			continue
		}
		rest[k] = v
	}
	if 0 < len(rest) {
		c.Then = parseBatch(rest)
	}
	return c
}

func parseContinuation(x interface{}) *Continuation {
	m, is := x.(map[string]interface{})
	if !is {
		return &Continuation{
			Batch: &Batch{},
		}
	}
	if body, have := m[BodyKey]; have && Truthy(body) {
		return &Continuation{
			Conditional: true,
			Params:      m[ParamsKey],
			Batch:       asBatch(body),
		}
	}
	return &Continuation{
		Batch: parseBatch(m),
	}
}

func asBatch(x interface{}) *Batch {
	if m, is := x.(map[string]interface{}); is {
		return parseBatch(m)
	}
	return &Batch{}
}

// entries returns the value as a list of entries: a sequence is
// its elements and anything else is one entry.
func entries(x interface{}) []interface{} {
	if xs, is := x.([]interface{}); is {
		return xs
	}
	return []interface{}{x}
}

// Terminal reports whether the batch has nothing to do.
func (b *Batch) Terminal() bool {
	return b == nil || (len(b.Calls) == 0 && len(b.Next) == 0)
}

// Raw returns the map the batch was parsed from.
func (b *Batch) Raw() map[string]interface{} {
	if b == nil || b.raw == nil {
		return map[string]interface{}{}
	}
	return b.raw
}

func (b *Batch) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.Raw())
}

func (b *Batch) UnmarshalJSON(bs []byte) error {
	parsed, err := ParseBatch(bs)
	if err != nil {
		return err
	}
	*b = *parsed
	return nil
}

// Walk calls the function on every Call in the tree (depth-first,
// Bodies and Thens before Continuations).
func (b *Batch) Walk(f func(c *Call, depth int)) {
	b.walk(f, 0)
}

func (b *Batch) walk(f func(c *Call, depth int), depth int) {
	if b == nil {
		return
	}
	for _, c := range b.Calls {
		f(c, depth)
		c.Body.walk(f, depth+1)
		c.Then.walk(f, depth+1)
	}
	for _, n := range b.Next {
		n.Batch.walk(f, depth+1)
	}
}
