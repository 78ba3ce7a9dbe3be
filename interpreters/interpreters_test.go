package interpreters

import (
	"context"
	"testing"

	"github.com/Comcast/sheaf/core"

	"github.com/stretchr/testify/require"
)

func TestStandard(t *testing.T) {
	is := Standard(nil)
	for _, name := range []string{"goja", "ecmascript", "noop"} {
		require.Contains(t, is, name)
	}

	acts := core.NewActions()
	require.NoError(t, acts.Compile(context.Background(), map[string]*core.ActionSource{
		"one": {Interpreter: "goja", Source: "return 1;"},
	}, is))

	res, err := core.NewRun(acts).RunBatch(context.Background(), map[string]interface{}{
		"one": map[string]interface{}{"save": "one"},
	}, nil)
	require.NoError(t, err)
	require.Equal(t, 1.0, res["one"])
}
