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

package tc

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/scionproto/diffserv/pkg/metrics"
	"github.com/scionproto/diffserv/pkg/private/prom"
)

// Drop reasons used as label values.
const (
	DropReasonFull         = "full"
	DropReasonUnclassified = "unclassified"
)

// Metrics holds the queue discipline metrics. All vectors are labeled by
// class index; dropped packets are additionally labeled by reason.
type Metrics struct {
	EnqueuedPacketsTotal *prometheus.CounterVec
	EnqueuedPacketSize   *prometheus.HistogramVec
	DroppedPacketsTotal  *prometheus.CounterVec
	DequeuedPacketsTotal *prometheus.CounterVec
	DequeuedBytesTotal   *prometheus.CounterVec
	RemovedPacketsTotal  *prometheus.CounterVec
	StarvationRiskTotal  *prometheus.CounterVec
	QueueLength          *prometheus.GaugeVec
}

// NewMetrics creates the queue discipline metrics with the given factory.
func NewMetrics(f metrics.Factory) *Metrics {
	return &Metrics{
		EnqueuedPacketsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: prom.Namespace,
				Subsystem: "tc",
				Name:      "enqueued_packets_total",
				Help:      "Total number of packets admitted to a class queue.",
			},
			[]string{prom.LabelClass},
		),
		EnqueuedPacketSize: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: prom.Namespace,
				Subsystem: "tc",
				Name:      "enqueued_packet_size_bytes",
				Help:      "Size of the packets admitted to a class queue.",
				Buckets:   prom.DefaultSizeBuckets,
			},
			[]string{prom.LabelClass},
		),
		DroppedPacketsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: prom.Namespace,
				Subsystem: "tc",
				Name:      "dropped_packets_total",
				Help:      "Total number of packets dropped at admission.",
			},
			[]string{prom.LabelClass, prom.LabelReason},
		),
		DequeuedPacketsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: prom.Namespace,
				Subsystem: "tc",
				Name:      "dequeued_packets_total",
				Help:      "Total number of packets dequeued for transmission.",
			},
			[]string{prom.LabelClass},
		),
		DequeuedBytesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: prom.Namespace,
				Subsystem: "tc",
				Name:      "dequeued_bytes_total",
				Help:      "Total number of bytes dequeued for transmission.",
			},
			[]string{prom.LabelClass},
		),
		RemovedPacketsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: prom.Namespace,
				Subsystem: "tc",
				Name:      "removed_packets_total",
				Help:      "Total number of packets removed without transmission.",
			},
			[]string{prom.LabelClass},
		),
		StarvationRiskTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: prom.Namespace,
				Subsystem: "tc",
				Name:      "starvation_risk_total",
				Help: "Total number of admitted packets that are larger than the " +
					"DRR weight of their class.",
			},
			[]string{prom.LabelClass},
		),
		QueueLength: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: prom.Namespace,
				Subsystem: "tc",
				Name:      "queue_length",
				Help:      "Number of packets in the class queue.",
			},
			[]string{prom.LabelClass},
		),
	}
}

// classMetrics are the metrics of one class with the labels already applied.
type classMetrics struct {
	enqueued       prometheus.Counter
	enqueuedSize   prometheus.Observer
	droppedFull    prometheus.Counter
	dequeued       prometheus.Counter
	dequeuedBytes  prometheus.Counter
	removed        prometheus.Counter
	starvationRisk prometheus.Counter
	queueLength    prometheus.Gauge
}

func newClassMetrics(m *Metrics, idx int) classMetrics {
	l := prometheus.Labels{prom.LabelClass: strconv.Itoa(idx)}
	full := metrics.CopyLabels(l, prom.LabelReason, DropReasonFull)
	return classMetrics{
		enqueued:       m.EnqueuedPacketsTotal.With(l),
		enqueuedSize:   m.EnqueuedPacketSize.With(l),
		droppedFull:    m.DroppedPacketsTotal.With(full),
		dequeued:       m.DequeuedPacketsTotal.With(l),
		dequeuedBytes:  m.DequeuedBytesTotal.With(l),
		removed:        m.RemovedPacketsTotal.With(l),
		starvationRisk: m.StarvationRiskTotal.With(l),
		queueLength:    m.QueueLength.With(l),
	}
}
