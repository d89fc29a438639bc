// Copyright 2025 ETH Zurich
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package sim

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/scionproto/diffserv/pkg/metrics"
	"github.com/scionproto/diffserv/pkg/private/prom"
)

// Metrics are the simulation metrics. Times are simulated time.
type Metrics struct {
	DeliveryDelay *prometheus.HistogramVec
}

// NewMetrics creates the simulation metrics with the given factory.
func NewMetrics(f metrics.Factory) *Metrics {
	return &Metrics{
		DeliveryDelay: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: prom.Namespace,
				Subsystem: "sim",
				Name:      "delivery_delay_seconds",
				Help: "Time from sending a packet until it left the bottleneck " +
					"link, including queuing and serialization.",
				Buckets: prom.DefaultLatencyBuckets,
			},
			[]string{prom.LabelFlow},
		),
	}
}

// WithMetrics enables the simulation metrics.
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}
