package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Comcast/sheaf/core"
	"github.com/Comcast/sheaf/library"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestLoadConfig(t *testing.T) {
	c, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "info", c.Log.Level)
	assert.Equal(t, 30*time.Second, c.HTTP.Timeout)
	assert.Empty(t, c.Tracing.OTLPEndpoint)

	filename := filepath.Join(t.TempDir(), "sheaf.yaml")
	require.NoError(t, os.WriteFile(filename, []byte(`
log:
  level: debug
library: specs
timeout: 2s
mqtt:
  broker: tcp://localhost:1883
tracing:
  endpoint: 127.0.0.1:4318
  sample: 0.5
`), 0644))

	c, err = LoadConfig(filename)
	require.NoError(t, err)
	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, "json", c.Log.Format)
	assert.Equal(t, "specs", c.Library)
	assert.Equal(t, 2*time.Second, c.Timeout)
	assert.Equal(t, "tcp://localhost:1883", c.MQTT.Broker)
	assert.Equal(t, "sheaf", c.MQTT.ClientId)
	assert.Equal(t, "127.0.0.1:4318", c.Tracing.OTLPEndpoint)
	assert.Equal(t, 0.5, c.Tracing.SampleRatio)
	assert.Equal(t, "sheaf", c.Tracing.ServiceName)

	require.NoError(t, os.WriteFile(filename, []byte("bogus: 1\n"), 0644))
	_, err = LoadConfig(filename)
	assert.Error(t, err)
}

func TestReadData(t *testing.T) {
	x, err := readData(`{"a":1}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"a": 1.0}, x)

	filename := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(filename, []byte(`[1]`), 0644))
	x, err = readData("@" + filename)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{1.0}, x)

	_, err = readData(`{`)
	assert.Error(t, err)
}

func TestRun(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Library = "../../specs"
	cfg.Store = filepath.Join(t.TempDir(), "library.db")
	logger := zaptest.NewLogger(t)
	ctx := context.Background()

	m, err := core.NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	res, err := run(ctx, cfg, logger, m, "", "double", `{"ns":[1,2,3]}`)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{2.0, 4.0, 6.0}, res["doubled"])
	assert.Equal(t, 3.0, res["count"])

	res, err = run(ctx, cfg, logger, m, "../../specs/double.yaml", "", `{"ns":[5]}`)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{10.0}, res["doubled"])

	_, err = run(ctx, cfg, logger, m, "", "missing", `{}`)
	assert.ErrorIs(t, err, library.NotFound)

	_, err = run(ctx, cfg, logger, m, "", "", `{}`)
	assert.Error(t, err)
}

func TestRunCountsCalls(t *testing.T) {
	cfg := DefaultConfig()
	reg := prometheus.NewRegistry()
	m, err := core.NewMetrics(reg)
	require.NoError(t, err)

	_, err = run(context.Background(), cfg, zaptest.NewLogger(t), m, "../../specs/double.yaml", "", `{"ns":[1]}`)
	require.NoError(t, err)

	n, err := testutil.GatherAndCount(reg, "sheaf_calls_total")
	require.NoError(t, err)
	assert.Less(t, 0, n)
}
