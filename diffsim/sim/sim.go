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

// Package sim is a discrete event simulation of constant bit rate flows that
// share a single bottleneck link. The link drains a tc queue discipline, so
// the simulation shows how the configured classes split the link rate.
//
// The simulation is single threaded. Time is virtual and advances from event
// to event, a run of many simulated seconds takes milliseconds.
package sim

import (
	"context"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/scionproto/diffserv/diffsim/config"
	"github.com/scionproto/diffserv/pkg/log"
	"github.com/scionproto/diffserv/pkg/private/prom"
	"github.com/scionproto/diffserv/pkg/private/serrors"
	"github.com/scionproto/diffserv/pkg/private/util"
	"github.com/scionproto/diffserv/pkg/tc"
)

// Option is a functional option for New.
type Option func(*options)

type options struct {
	logger     log.Logger
	throughput io.Writer
	pcap       io.Writer
	metrics    *Metrics
}

// WithLogger sets the logger. By default, nothing is logged.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithThroughput writes one "<time> <flow> <Mbps>" line per flow and sampling
// interval to w. Flows are numbered from 1 in configuration order.
func WithThroughput(w io.Writer) Option {
	return func(o *options) {
		o.throughput = w
	}
}

// WithPcap writes every packet leaving the bottleneck link to w in pcap
// format.
func WithPcap(w io.Writer) Option {
	return func(o *options) {
		o.pcap = w
	}
}

// FlowStats are the counters of a single flow.
type FlowStats struct {
	ID             int
	Name           string
	Sent           int
	Dropped        int
	Delivered      int
	DeliveredBytes int
	// Throughput is the mean delivered rate while the flow was active.
	Throughput util.Bitrate
}

// Result is the outcome of a simulation run.
type Result struct {
	// Duration is the simulated time that elapsed.
	Duration time.Duration
	Flows    []FlowStats
	// Backlog is the number of packets left in the queue.
	Backlog int
}

// Simulation is a single bottleneck simulation. It can be run once.
type Simulation struct {
	clock    clock
	duration time.Duration
	interval time.Duration
	rate     util.Bitrate
	queue    *tc.QueueDisc
	sources  []*source
	stats    []FlowStats
	// interval counters of delivered bytes, indexed like sources.
	window []int
	busy   bool
	delay  []prometheus.Observer
	opts   options
	out    *throughputWriter
	pcap   *pcapWriter
	err    error
	ran    bool
}

// New creates a simulation of the flows in cfg that share a link drained from
// queue.
func New(cfg *config.Config, queue *tc.QueueDisc, opts ...Option) (*Simulation, error) {
	if queue == nil {
		return nil, serrors.New("queue must not be nil")
	}
	o := options{logger: log.Discarder()}
	for _, opt := range opts {
		opt(&o)
	}
	s := &Simulation{
		duration: cfg.General.Duration.Duration,
		interval: cfg.Output.Interval.Duration,
		rate:     cfg.General.Rate,
		queue:    queue,
		stats:    make([]FlowStats, len(cfg.Flows)),
		window:   make([]int, len(cfg.Flows)),
		opts:     o,
	}
	if s.duration <= 0 || s.rate == 0 {
		return nil, serrors.New("duration and rate must be positive",
			"duration", s.duration, "rate", s.rate)
	}
	for i, fc := range cfg.Flows {
		src, err := newSource(i, fc, s.duration)
		if err != nil {
			return nil, err
		}
		s.sources = append(s.sources, src)
		s.stats[i] = FlowStats{ID: i + 1, Name: fc.Name}
		if o.metrics != nil {
			s.delay = append(s.delay,
				o.metrics.DeliveryDelay.With(prometheus.Labels{prom.LabelFlow: fc.Name}))
		}
	}
	if o.throughput != nil {
		s.out = newThroughputWriter(o.throughput)
	}
	if o.pcap != nil {
		pw, err := newPcapWriter(o.pcap)
		if err != nil {
			return nil, err
		}
		s.pcap = pw
	}
	return s, nil
}

// Run runs the simulation until the configured duration elapsed or ctx is
// done. It returns the statistics collected so far in both cases.
func (s *Simulation) Run(ctx context.Context) (Result, error) {
	if s.ran {
		return Result{}, serrors.New("simulation already ran")
	}
	s.ran = true
	for _, src := range s.sources {
		if src.start < src.stop {
			s.clock.schedule(src.start, s.sender(src))
		}
	}
	if s.out != nil && s.interval > 0 {
		s.clock.schedule(s.interval, s.sampler)
	}
	s.opts.logger.Info("Starting simulation", "duration", s.duration, "rate", s.rate,
		"flows", len(s.sources))

	var err error
	for s.err == nil && s.clock.step(s.duration) {
		if err = ctx.Err(); err != nil {
			break
		}
	}
	if err == nil {
		err = s.err
	}
	if err == nil {
		s.clock.now = s.duration
	}
	if err == nil && s.out != nil {
		err = s.out.flush()
	}
	res := s.result()
	s.opts.logger.Info("Simulation finished", "elapsed", res.Duration, "backlog", res.Backlog)
	return res, err
}

func (s *Simulation) result() Result {
	elapsed := s.clock.now
	res := Result{
		Duration: elapsed,
		Flows:    make([]FlowStats, len(s.stats)),
		Backlog:  s.queue.Len(),
	}
	copy(res.Flows, s.stats)
	for i, src := range s.sources {
		active := min(src.stop, elapsed) - src.start
		res.Flows[i].Throughput = util.CalcBitrate(res.Flows[i].DeliveredBytes, active)
	}
	return res
}

// sender returns the event that emits the next packet of src and schedules
// its successor.
func (s *Simulation) sender(src *source) func() {
	var send func()
	send = func() {
		now := s.clock.now
		pkt, err := src.next(now)
		if err != nil {
			s.err = err
			return
		}
		st := &s.stats[src.id]
		st.Sent++
		if !s.queue.Enqueue(pkt) {
			st.Dropped++
		} else if !s.busy {
			s.transmit()
		}
		if next := now + src.interval; next < src.stop {
			s.clock.schedule(next, send)
		}
	}
	return send
}

// transmit starts sending the next queued packet over the link. The link
// stays busy for the serialization time of the packet.
func (s *Simulation) transmit() {
	p, ok := s.queue.Dequeue()
	if !ok {
		s.busy = false
		return
	}
	s.busy = true
	pkt := p.(*packet)
	s.clock.schedule(s.clock.now+s.rate.TxTime(pkt.Len()), func() {
		s.deliver(pkt)
		s.transmit()
	})
}

func (s *Simulation) deliver(pkt *packet) {
	st := &s.stats[pkt.flow]
	st.Delivered++
	st.DeliveredBytes += pkt.Len()
	s.window[pkt.flow] += pkt.Len()
	if s.delay != nil {
		s.delay[pkt.flow].Observe((s.clock.now - pkt.sent).Seconds())
	}
	if s.pcap != nil {
		if err := s.pcap.write(s.clock.now, pkt.Bytes()); err != nil {
			s.err = err
		}
	}
	if s.opts.logger.Enabled(log.DebugLevel) {
		s.opts.logger.Debug("Delivered packet", "flow", st.Name, "size", pkt.Len(),
			"delay", s.clock.now-pkt.sent)
	}
}

// sampler writes the throughput of the past interval and schedules the next
// sample.
func (s *Simulation) sampler() {
	now := s.clock.now
	for i := range s.window {
		rate := util.CalcBitrate(s.window[i], s.interval)
		if err := s.out.write(now, s.stats[i].ID, rate); err != nil {
			s.err = err
			return
		}
		s.window[i] = 0
	}
	if next := now + s.interval; next <= s.duration {
		s.clock.schedule(next, s.sampler)
	}
}
