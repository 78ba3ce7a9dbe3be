package library

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Comcast/sheaf/core"
	_ "github.com/Comcast/sheaf/interpreters/goja"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var doubleYAML = `
name: double
doc: |
  Doubles **n** and saves it.
actions:
  twice:
    interpreter: goja
    source: return _.params.n * 2;
batch:
  twice:
    (): {n: $n}
    save: doubled
`

func TestParseEntry(t *testing.T) {
	e, err := Parse([]byte(doubleYAML))
	require.NoError(t, err)
	assert.Equal(t, "double", e.Name)
	assert.Contains(t, e.Doc, "Doubles")
	require.Contains(t, e.Actions, "twice")
	assert.Equal(t, "goja", e.Actions["twice"].Interpreter)

	ctx := context.Background()
	acts := core.NewActions()
	require.NoError(t, e.Compile(ctx, acts, nil))

	b, err := e.ParseBatch()
	require.NoError(t, err)

	r := core.NewRun(acts)
	require.NoError(t, r.Walk(ctx, b, map[string]interface{}{"n": 4.0}, nil))
	v, _ := r.Result.Get("doubled")
	assert.Equal(t, 8.0, v)
}

func TestParseBareBatch(t *testing.T) {
	e, err := Parse([]byte(`{"one": {"save": "x"}}`))
	require.NoError(t, err)
	require.Contains(t, e.Batch, "one")
	assert.Empty(t, e.Actions)

	_, err = Parse([]byte(``))
	assert.Error(t, err)
}

func TestEntryWithoutBatch(t *testing.T) {
	_, err := (&Entry{Name: "x"}).ParseBatch()
	var bad *core.BadSpec
	assert.ErrorAs(t, err, &bad)
}

func TestDirProvider(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "double.yaml"), []byte(doubleYAML), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bare.json"), []byte(`{"one": {"save": "x"}}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte(`hi`), 0644))

	ctx := context.Background()
	p := &DirProvider{Dir: dir}

	e, err := p.FindEntry(ctx, "bare")
	require.NoError(t, err)
	assert.Equal(t, "bare", e.Name)

	_, err = p.FindEntry(ctx, "notes")
	assert.ErrorIs(t, err, NotFound)

	_, err = p.FindEntry(ctx, "../double")
	assert.ErrorIs(t, err, NotFound)

	names, err := p.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"bare", "double"}, names)
}

func TestBoltStore(t *testing.T) {
	ctx := context.Background()
	s := NewBoltStore(filepath.Join(t.TempDir(), "library.db"))
	require.NoError(t, s.Open(ctx))
	defer func() {
		require.NoError(t, s.Close(ctx))
	}()

	e, err := Parse([]byte(doubleYAML))
	require.NoError(t, err)

	require.NoError(t, s.Put(ctx, "double", e))
	require.NoError(t, s.Put(ctx, "another", &Entry{Batch: map[string]interface{}{}}))

	got, err := s.FindEntry(ctx, "double")
	require.NoError(t, err)
	assert.Equal(t, e.Doc, got.Doc)
	assert.Equal(t, e.Batch, got.Batch)
	assert.Equal(t, "goja", got.Actions["twice"].Interpreter)

	names, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"another", "double"}, names)

	require.NoError(t, s.Delete(ctx, "double"))
	_, err = s.FindEntry(ctx, "double")
	assert.True(t, errors.Is(err, NotFound))
}

func TestProviders(t *testing.T) {
	ctx := context.Background()
	a := NewMapProvider()
	b := NewMapProvider()
	b.Add("x", &Entry{Name: "from b"})

	e, err := Providers{a, b}.FindEntry(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, "from b", e.Name)

	_, err = Providers{a, b}.FindEntry(ctx, "y")
	assert.ErrorIs(t, err, NotFound)
}

func TestInline(t *testing.T) {
	got, err := Inline([]byte(`a %inline("x") b %inline ("y")`), func(name string) ([]byte, error) {
		return []byte(strings.ToUpper(name)), nil
	})
	require.NoError(t, err)
	assert.Equal(t, `a X b Y`, string(got))

	_, err = Inline([]byte(`%inline("x")`), func(name string) ([]byte, error) {
		return nil, errors.New("nope")
	})
	assert.Error(t, err)
}

func TestDirProviderInlines(t *testing.T) {
	dir := t.TempDir()
	entry := `
actions:
  twice:
    interpreter: goja
    source: |-
      %inline("twice.js")
batch:
  twice:
    (): {n: $n}
    save: doubled
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "double.yaml"), []byte(entry), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "twice.js"), []byte(`return _.params.n * 2;`), 0644))

	e, err := (&DirProvider{Dir: dir}).FindEntry(context.Background(), "double")
	require.NoError(t, err)
	assert.Equal(t, "double", e.Name)
	assert.Equal(t, `return _.params.n * 2;`, e.Actions["twice"].Source)
	assert.Equal(t, "double", EntryName(filepath.Join(dir, "double.yaml")))
}
