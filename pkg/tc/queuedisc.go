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
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/scionproto/diffserv/pkg/log"
	"github.com/scionproto/diffserv/pkg/pktcls"
	"github.com/scionproto/diffserv/pkg/private/prom"
	"github.com/scionproto/diffserv/pkg/private/serrors"
)

var (
	// ErrNoClasses is returned when creating a queue discipline without
	// classes.
	ErrNoClasses = errors.New("no classes")
	// ErrZeroWeight is returned when a DRR class has no positive weight.
	ErrZeroWeight = errors.New("DRR class weight must be positive")
	// ErrNegativePriority is returned when an SPQ class has a negative
	// priority.
	ErrNegativePriority = errors.New("SPQ class priority must not be negative")
)

// Queue is the interface of a packet queue attached to an outgoing link.
type Queue interface {
	// Enqueue offers a packet to the queue. It returns false if the packet was
	// dropped.
	Enqueue(pkt pktcls.Packet) bool
	// Dequeue removes the next packet to transmit.
	Dequeue() (pktcls.Packet, bool)
	// Remove removes the next packet without transmitting it.
	Remove() (pktcls.Packet, bool)
	// Peek returns the next packet to transmit without removing it.
	Peek() (pktcls.Packet, bool)
}

var _ Queue = (*QueueDisc)(nil)

// Option is a functional option for New.
type Option func(*Options)

// Options are the settings collected from a list of Option.
type Options struct {
	logger  log.Logger
	metrics *Metrics
}

// ApplyOptions applies all options and returns the result.
func ApplyOptions(opts ...Option) Options {
	o := Options{logger: log.Discarder()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Logger returns the configured logger. It discards everything if no logger
// was set.
func (o Options) Logger() log.Logger {
	return o.logger
}

// WithLogger sets the logger of the queue discipline. By default, nothing is
// logged.
func WithLogger(logger log.Logger) Option {
	return func(o *Options) {
		o.logger = logger
	}
}

// WithMetrics enables metrics. The metrics can be shared between queue
// disciplines.
func WithMetrics(m *Metrics) Option {
	return func(o *Options) {
		o.metrics = m
	}
}

// ClassInfo is a read-only snapshot of a class.
type ClassInfo struct {
	Index       int
	Len         int
	Cap         int
	Weight      int
	Priority    int
	Default     bool
	Filters     int
	MaxAdmitted int
	Removed     int
}

// QueueDisc is a classful queue discipline. Arriving packets are sorted into
// classes; the scheduler decides which class is served next. QueueDisc is not
// thread-safe.
type QueueDisc struct {
	classes Classes
	sched   Scheduler
	logger  log.Logger
	metrics *Metrics
	cm      []classMetrics
	// warned records which classes already reported a starvation risk.
	warned []bool
	length int
}

// New creates a queue discipline that owns the given classes. The class
// list is fixed for the lifetime of the queue discipline.
func New(classes []*Class, sched Scheduler, opts ...Option) (*QueueDisc, error) {
	if len(classes) == 0 {
		return nil, ErrNoClasses
	}
	if sched == nil {
		return nil, serrors.New("scheduler must not be nil")
	}
	switch sched.(type) {
	case *DRR:
		for i, c := range classes {
			if c.Weight() <= 0 {
				return nil, serrors.Join(ErrZeroWeight, nil, "class", i, "weight", c.Weight())
			}
		}
	case *StrictPriority:
		for i, c := range classes {
			if c.Priority() < 0 {
				return nil, serrors.Join(ErrNegativePriority, nil,
					"class", i, "priority", c.Priority())
			}
		}
	}
	o := ApplyOptions(opts...)
	qd := &QueueDisc{
		classes: append(Classes(nil), classes...),
		sched:   sched,
		logger:  o.logger,
		metrics: o.metrics,
		warned:  make([]bool, len(classes)),
	}
	for _, c := range qd.classes {
		qd.length += c.Len()
	}
	if qd.metrics != nil {
		qd.cm = make([]classMetrics, len(classes))
		for i := range qd.classes {
			qd.cm[i] = newClassMetrics(qd.metrics, i)
			qd.cm[i].queueLength.Set(float64(qd.classes[i].Len()))
		}
	}
	return qd, nil
}

// Enqueue classifies pkt and appends it to the queue of its class. It returns
// false if no class applies or if the class queue is full.
func (qd *QueueDisc) Enqueue(pkt pktcls.Packet) bool {
	idx := qd.classes.Classify(pkt)
	if idx == NoClass {
		if qd.logger.Enabled(log.DebugLevel) {
			qd.logger.Debug("Dropping unclassified packet", "src", pkt.SrcAddr(),
				"dst", pkt.DstAddr(), "proto", pkt.Protocol())
		}
		if qd.metrics != nil {
			qd.metrics.DroppedPacketsTotal.With(prometheus.Labels{
				prom.LabelClass: prom.NoClass, prom.LabelReason: DropReasonUnclassified,
			}).Inc()
		}
		return false
	}
	c := qd.classes[idx]
	if !c.Enqueue(pkt) {
		if qd.logger.Enabled(log.DebugLevel) {
			qd.logger.Debug("Dropping packet, class queue full", "class", idx, "len", c.Len())
		}
		if qd.cm != nil {
			qd.cm[idx].droppedFull.Inc()
		}
		return false
	}
	qd.length++
	if qd.cm != nil {
		qd.cm[idx].enqueued.Inc()
		qd.cm[idx].enqueuedSize.Observe(float64(pkt.Len()))
		qd.cm[idx].queueLength.Set(float64(c.Len()))
	}
	if _, ok := qd.sched.(*DRR); ok && pkt.Len() > c.Weight() {
		qd.starvationRisk(idx, pkt.Len())
	}
	return true
}

func (qd *QueueDisc) starvationRisk(idx, size int) {
	if qd.cm != nil {
		qd.cm[idx].starvationRisk.Inc()
	}
	if qd.warned[idx] {
		return
	}
	qd.warned[idx] = true
	qd.logger.Info("Class weight is smaller than an admitted packet, class may starve",
		"class", idx, "weight", qd.classes[idx].Weight(), "size", size)
}

// Dequeue removes the next packet to transmit as chosen by the scheduler.
func (qd *QueueDisc) Dequeue() (pktcls.Packet, bool) {
	idx, pkt, ok := qd.take((*Class).Dequeue)
	if !ok {
		return nil, false
	}
	if qd.cm != nil {
		qd.cm[idx].dequeued.Inc()
		qd.cm[idx].dequeuedBytes.Add(float64(pkt.Len()))
	}
	return pkt, true
}

// Remove removes the next packet as chosen by the scheduler without
// transmitting it.
func (qd *QueueDisc) Remove() (pktcls.Packet, bool) {
	idx, pkt, ok := qd.take((*Class).Remove)
	if !ok {
		return nil, false
	}
	if qd.cm != nil {
		qd.cm[idx].removed.Inc()
	}
	return pkt, true
}

// take pops the head of the class chosen by the scheduler with pop.
func (qd *QueueDisc) take(pop func(*Class) (pktcls.Packet, bool)) (int, pktcls.Packet, bool) {
	idx := qd.sched.Commit(qd.classes)
	if idx == NoClass {
		return NoClass, nil, false
	}
	c := qd.classes[idx]
	pkt, ok := pop(c)
	if !ok {
		// Schedulers only return non-empty classes.
		qd.logger.Error("Scheduler selected empty class", "class", idx)
		return NoClass, nil, false
	}
	qd.length--
	if qd.cm != nil {
		qd.cm[idx].queueLength.Set(float64(c.Len()))
	}
	if qd.logger.Enabled(log.DebugLevel) {
		qd.logger.Debug("Scheduled packet", "class", idx, "size", pkt.Len())
	}
	return idx, pkt, true
}

// Peek returns the packet that the next Dequeue would return. It does not
// change the scheduler state.
func (qd *QueueDisc) Peek() (pktcls.Packet, bool) {
	idx := qd.sched.Select(qd.classes)
	if idx == NoClass {
		return nil, false
	}
	return qd.classes[idx].Peek()
}

// Len returns the total number of queued packets.
func (qd *QueueDisc) Len() int {
	return qd.length
}

// Classes returns a snapshot of the classes.
func (qd *QueueDisc) Classes() []ClassInfo {
	infos := make([]ClassInfo, 0, len(qd.classes))
	for i, c := range qd.classes {
		infos = append(infos, ClassInfo{
			Index:       i,
			Len:         c.Len(),
			Cap:         c.Cap(),
			Weight:      c.Weight(),
			Priority:    c.Priority(),
			Default:     c.Default(),
			Filters:     len(c.filters),
			MaxAdmitted: c.MaxAdmitted(),
			Removed:     c.Removed(),
		})
	}
	return infos
}

// Scheduler returns the scheduler of the queue discipline.
func (qd *QueueDisc) Scheduler() Scheduler {
	return qd.sched
}
