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
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for runs.
//
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Calls        *prometheus.CounterVec
	CallDuration *prometheus.HistogramVec
	LoopInflight prometheus.Gauge
}

// NewMetrics makes the collectors and registers them with reg (if
// not nil).
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sheaf_calls_total",
			Help: "Combinator and action calls by name, kind, and outcome",
		}, []string{"name", "kind", "outcome"}),
		CallDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sheaf_call_duration_seconds",
			Help:    "Call latency by kind",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind"}),
		LoopInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sheaf_loop_inflight",
			Help: "Loop iterations currently running",
		}),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.Calls, m.CallDuration, m.LoopInflight} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) called(name, kind string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.Calls.WithLabelValues(name, kind, outcome).Inc()
	m.CallDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
}

func (m *Metrics) loopStarted() {
	if m != nil {
		m.LoopInflight.Inc()
	}
}

func (m *Metrics) loopFinished() {
	if m != nil {
		m.LoopInflight.Dec()
	}
}
