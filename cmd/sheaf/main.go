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

// Package main runs one batch and writes its result as JSON.
//
//	sheaf -b double.yaml -d '{"ns":[1,2,3]}'
//	sheaf -l specs -n double -d @data.json
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Comcast/sheaf/actions"
	"github.com/Comcast/sheaf/core"
	"github.com/Comcast/sheaf/interpreters"
	"github.com/Comcast/sheaf/library"
	"github.com/Comcast/sheaf/telemetry"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

func main() {
	var (
		configFile = flag.String("c", "", "optional YAML config file")
		batchFile  = flag.String("b", "", "entry (or bare batch) file")
		entryName  = flag.String("n", "", "entry name to find in the library")
		dataJS     = flag.String("d", "{}", "initial data as JSON (or @FILENAME)")
		libDir     = flag.String("l", "", "library directory")
		storeFile  = flag.String("L", "", "library BoltDB file")
		metrics    = flag.String("m", "", "address for /metrics and /healthz")
		logLevel   = flag.String("log-level", "", "debug, info, warn, or error")
		logFormat  = flag.String("log-format", "", "json or console")
		timeout    = flag.Duration("t", 0, "run timeout")
		pretty     = flag.Bool("p", false, "pretty-print the result")
	)

	flag.Parse()

	cfg, err := LoadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	override(&cfg.Library, *libDir)
	override(&cfg.Store, *storeFile)
	override(&cfg.Metrics, *metrics)
	override(&cfg.Log.Level, *logLevel)
	override(&cfg.Log.Format, *logFormat)
	if *timeout != 0 {
		cfg.Timeout = *timeout
	}

	logger, err := telemetry.NewLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(2)
	}
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	m, err := core.NewMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		logger.Fatal("metrics", zap.Error(err))
	}
	if cfg.Metrics != "" {
		serveMetrics(ctx, cfg.Metrics, logger)
	}

	res, err := run(ctx, cfg, logger, m, *batchFile, *entryName, *dataJS)

	if res != nil {
		var bs []byte
		if *pretty {
			bs, _ = json.MarshalIndent(res, "", "  ")
		} else {
			bs, _ = json.Marshal(res)
		}
		fmt.Printf("%s\n", bs)
	}

	if err != nil {
		logger.Error("run", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func override(target *string, flagValue string) {
	if flagValue != "" {
		*target = flagValue
	}
}

// run runs the batch.  The metrics can be nil.
func run(ctx context.Context, cfg *Config, logger *zap.Logger, m *core.Metrics, batchFile, entryName, dataJS string) (map[string]interface{}, error) {
	if cfg.Tracing.OTLPEndpoint != "" {
		shutdown, err := telemetry.SetupTracing(ctx, cfg.Tracing, logger)
		if err != nil {
			return nil, err
		}
		defer telemetry.ShutdownTracing(shutdown, 10*time.Second, logger)
	}

	data, err := readData(dataJS)
	if err != nil {
		return nil, fmt.Errorf("data: %w", err)
	}

	lib, closer, err := makeLibrary(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	defer closer()

	e, err := findEntry(ctx, lib, batchFile, entryName)
	if err != nil {
		return nil, err
	}

	acts, err := makeActions(ctx, cfg, logger, lib)
	if err != nil {
		return nil, err
	}
	is := interpreters.Standard(logger)
	if err = e.Compile(ctx, acts, is); err != nil {
		return nil, err
	}

	b, err := e.ParseBatch()
	if err != nil {
		return nil, err
	}

	if 0 < cfg.Timeout {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	r := core.NewRun(acts)
	r.Logger = logger
	r.Tracer = otel.Tracer(core.TracerName)
	r.Metrics = m

	logger.Info("starting", zap.String("run", r.Id), zap.String("entry", e.Name))
	then := time.Now()
	res, err := r.RunBatch(ctx, b, data)
	logger.Info("done",
		zap.String("run", r.Id),
		zap.Duration("elapsed", time.Since(then)),
		zap.Bool("ok", err == nil))

	return res, err
}

func serveMetrics(ctx context.Context, addr string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Info("listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", zap.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		srv.Close()
	}()
}

// readData parses JSON given directly or, with a leading "@", from a
// file ("@-" is stdin).
func readData(s string) (interface{}, error) {
	var bs []byte
	switch {
	case s == "@-":
		var err error
		if bs, err = io.ReadAll(os.Stdin); err != nil {
			return nil, err
		}
	case strings.HasPrefix(s, "@"):
		var err error
		if bs, err = os.ReadFile(s[1:]); err != nil {
			return nil, err
		}
	default:
		bs = []byte(s)
	}
	var x interface{}
	if err := json.Unmarshal(bs, &x); err != nil {
		return nil, err
	}
	return x, nil
}

func makeLibrary(ctx context.Context, cfg *Config, logger *zap.Logger) (library.Providers, func(), error) {
	var (
		ps     library.Providers
		closer = func() {}
	)
	if cfg.Library != "" {
		ps = append(ps, &library.DirProvider{Dir: cfg.Library})
	}
	if cfg.Store != "" {
		s := library.NewBoltStore(cfg.Store)
		s.Logger = logger
		if err := s.Open(ctx); err != nil {
			return nil, nil, fmt.Errorf("store: %w", err)
		}
		ps = append(ps, s)
		closer = func() {
			if err := s.Close(ctx); err != nil {
				logger.Warn("store close", zap.Error(err))
			}
		}
	}
	return ps, closer, nil
}

func findEntry(ctx context.Context, lib library.Provider, batchFile, entryName string) (*library.Entry, error) {
	switch {
	case batchFile != "" && entryName != "":
		return nil, errors.New("give -b or -n but not both")
	case batchFile != "":
		bs, err := library.ReadFileWithInlines(batchFile)
		if err != nil {
			return nil, err
		}
		e, err := library.Parse(bs)
		if err != nil {
			return nil, err
		}
		if e.Name == "" {
			e.Name = library.EntryName(batchFile)
		}
		return e, nil
	case entryName != "":
		return lib.FindEntry(ctx, entryName)
	}
	return nil, errors.New("need -b or -n")
}

func makeActions(ctx context.Context, cfg *Config, logger *zap.Logger, lib library.Providers) (*core.Actions, error) {
	client, err := actions.NewHTTPClient(cfg.HTTP.Timeout)
	if err != nil {
		return nil, err
	}

	opts := &actions.Options{
		Logger:       logger,
		HTTPClient:   client,
		Dialer:       websocket.DefaultDialer,
		Interpreters: interpreters.Standard(logger),
	}
	if 0 < len(lib) {
		opts.Library = lib
	}

	if cfg.MQTT.Broker != "" {
		c, err := actions.NewMQTTClient(ctx, cfg.MQTT.Broker, cfg.MQTT.ClientId, logger)
		if err != nil {
			return nil, fmt.Errorf("mqtt: %w", err)
		}
		opts.Publisher = c
	}

	acts := core.NewActions()
	if err := actions.Register(acts, opts); err != nil {
		return nil, err
	}
	return acts, nil
}
