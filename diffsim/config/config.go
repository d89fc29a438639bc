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

// Package config contains the configuration of the diffsim simulator.
package config

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/scionproto/diffserv/pkg/log"
	"github.com/scionproto/diffserv/pkg/private/serrors"
	"github.com/scionproto/diffserv/pkg/private/util"
	"github.com/scionproto/diffserv/pkg/tc"
	"github.com/scionproto/diffserv/private/config"
)

const (
	DefaultDuration    = 30 * time.Second
	DefaultRate        = util.Mbps
	DefaultDiscipline  = tc.DisciplineDRR
	DefaultInterval    = time.Second
	DefaultProtocol    = "udp"
	DefaultPayloadSize = 1024
	// MaxPayloadSize keeps generated packets below the IPv4 total length
	// limit.
	MaxPayloadSize = 65000
)

var _ config.Config = (*Config)(nil)

// Config is the diffsim configuration.
type Config struct {
	General General    `toml:"general,omitempty"`
	Queue   Queue      `toml:"queue,omitempty"`
	Flows   []Flow     `toml:"flows,omitempty"`
	Output  Output     `toml:"output,omitempty"`
	Metrics Metrics    `toml:"metrics,omitempty"`
	Logging log.Config `toml:"log,omitempty"`
}

// InitDefaults initializes the default values for all parts of the config.
func (cfg *Config) InitDefaults() {
	config.InitAll(
		&cfg.General,
		&cfg.Queue,
		&cfg.Output,
		&cfg.Metrics,
		&cfg.Logging,
	)
	for i := range cfg.Flows {
		cfg.Flows[i].InitDefaults()
	}
}

// Validate validates all parts of the config.
func (cfg *Config) Validate() error {
	if err := config.ValidateAll(&cfg.General, &cfg.Queue, &cfg.Output,
		&cfg.Metrics); err != nil {
		return err
	}
	if len(cfg.Flows) == 0 {
		return serrors.New("no flows configured")
	}
	names := make(map[string]struct{}, len(cfg.Flows))
	for i := range cfg.Flows {
		f := &cfg.Flows[i]
		if err := f.Validate(); err != nil {
			return serrors.Wrap("invalid flow", err, "index", i, "name", f.Name)
		}
		if _, ok := names[f.Name]; ok {
			return serrors.New("duplicate flow name", "name", f.Name)
		}
		names[f.Name] = struct{}{}
	}
	return nil
}

// Sample generates a sample config file for diffsim.
func (cfg *Config) Sample(dst io.Writer, path config.Path, _ config.CtxMap) {
	config.WriteSample(dst, path, nil,
		&cfg.General,
		&cfg.Queue,
		flowsSampler{},
		&cfg.Output,
		&cfg.Metrics,
		&cfg.Logging,
	)
}

// General holds the parameters of the bottleneck link.
type General struct {
	// Duration is the simulated time. (default 30s)
	Duration util.DurWrap `toml:"duration,omitempty"`
	// Rate is the bottleneck link rate. (default 1Mbps)
	Rate util.Bitrate `toml:"rate,omitempty"`
}

func (cfg *General) InitDefaults() {
	if cfg.Duration.Duration == 0 {
		cfg.Duration.Duration = DefaultDuration
	}
	if cfg.Rate == 0 {
		cfg.Rate = DefaultRate
	}
}

func (cfg *General) Validate() error {
	if cfg.Duration.Duration <= 0 {
		return serrors.New("duration must be positive", "duration", cfg.Duration)
	}
	if cfg.Rate == 0 {
		return serrors.New("rate must be positive")
	}
	return nil
}

func (cfg *General) Sample(dst io.Writer, path config.Path, _ config.CtxMap) {
	config.WriteString(dst, generalSample)
}

func (cfg *General) ConfigName() string {
	return "general"
}

// Queue describes the queue discipline installed on the bottleneck link.
type Queue struct {
	// Discipline is the scheduler, drr or spq. (default drr)
	Discipline string `toml:"discipline,omitempty"`
	// Config is the location of the class configuration, a file or an
	// http(s) URL. The format follows the extension.
	Config string `toml:"config,omitempty"`
}

func (cfg *Queue) InitDefaults() {
	if cfg.Discipline == "" {
		cfg.Discipline = DefaultDiscipline
	}
}

func (cfg *Queue) Validate() error {
	if _, err := tc.NewScheduler(cfg.Discipline); err != nil {
		return err
	}
	if cfg.Config == "" {
		return serrors.New("queue config is not set")
	}
	return nil
}

func (cfg *Queue) Sample(dst io.Writer, path config.Path, _ config.CtxMap) {
	config.WriteString(dst, queueSample)
}

func (cfg *Queue) ConfigName() string {
	return "queue"
}

// Flow is a constant bit rate source between Start and Stop.
type Flow struct {
	Name     string     `toml:"name,omitempty"`
	Src      netip.Addr `toml:"src,omitempty"`
	Dst      netip.Addr `toml:"dst,omitempty"`
	Protocol string     `toml:"protocol,omitempty"`
	SrcPort  uint16     `toml:"src_port,omitempty"`
	DstPort  uint16     `toml:"dst_port,omitempty"`
	// PayloadSize is the number of transport payload bytes per packet.
	PayloadSize int          `toml:"payload_size,omitempty"`
	Rate        util.Bitrate `toml:"rate,omitempty"`
	Start       util.DurWrap `toml:"start,omitempty"`
	// Stop defaults to the end of the simulation.
	Stop util.DurWrap `toml:"stop,omitempty"`
}

func (f *Flow) InitDefaults() {
	if f.Protocol == "" {
		f.Protocol = DefaultProtocol
	}
	f.Protocol = strings.ToLower(f.Protocol)
	if f.PayloadSize == 0 {
		f.PayloadSize = DefaultPayloadSize
	}
}

func (f *Flow) Validate() error {
	if f.Name == "" {
		return serrors.New("name is not set")
	}
	if !f.Src.IsValid() || !f.Dst.IsValid() {
		return serrors.New("src and dst must be set", "src", f.Src, "dst", f.Dst)
	}
	if f.Src.Unmap().Is4() != f.Dst.Unmap().Is4() {
		return serrors.New("src and dst address family differ", "src", f.Src, "dst", f.Dst)
	}
	if f.Protocol != "udp" && f.Protocol != "tcp" {
		return serrors.New("unsupported protocol", "protocol", f.Protocol)
	}
	if f.PayloadSize <= 0 || f.PayloadSize > MaxPayloadSize {
		return serrors.New("invalid payload size", "payload_size", f.PayloadSize)
	}
	if f.Rate == 0 {
		return serrors.New("rate must be positive")
	}
	if f.Stop.Duration != 0 && f.Stop.Duration <= f.Start.Duration {
		return serrors.New("stop must be after start", "start", f.Start, "stop", f.Stop)
	}
	return nil
}

type flowsSampler struct{}

func (flowsSampler) Sample(dst io.Writer, _ config.Path, _ config.CtxMap) {
	config.WriteString(dst, flowsSample)
}

// Output configures the files written by the simulation.
type Output struct {
	// ThroughputFile receives "<time> <flow> <Mbps>" lines. Empty disables
	// the output.
	ThroughputFile string `toml:"throughput_file,omitempty"`
	// Interval is the throughput sampling interval. (default 1s)
	Interval util.DurWrap `toml:"interval,omitempty"`
	// PcapFile receives every packet sent over the bottleneck link. Empty
	// disables the capture.
	PcapFile string `toml:"pcap_file,omitempty"`
}

func (cfg *Output) InitDefaults() {
	if cfg.Interval.Duration == 0 {
		cfg.Interval.Duration = DefaultInterval
	}
}

func (cfg *Output) Validate() error {
	if cfg.Interval.Duration <= 0 {
		return serrors.New("interval must be positive", "interval", cfg.Interval)
	}
	return nil
}

func (cfg *Output) Sample(dst io.Writer, path config.Path, _ config.CtxMap) {
	config.WriteString(dst, outputSample)
}

func (cfg *Output) ConfigName() string {
	return "output"
}

// Metrics configures the prometheus endpoint.
type Metrics struct {
	// Prometheus is the address the metrics are exported on. If not set,
	// metrics are not exported.
	Prometheus string `toml:"prometheus,omitempty"`
	// Linger is how long the endpoint keeps serving after the simulation
	// ended.
	Linger util.DurWrap `toml:"linger,omitempty"`
}

func (cfg *Metrics) InitDefaults() {}

func (cfg *Metrics) Validate() error {
	if cfg.Linger.Duration < 0 {
		return serrors.New("linger must not be negative", "linger", cfg.Linger)
	}
	if cfg.Prometheus == "" {
		return nil
	}
	if _, _, err := net.SplitHostPort(cfg.Prometheus); err != nil {
		return serrors.Wrap("invalid prometheus address", err, "addr", cfg.Prometheus)
	}
	return nil
}

func (cfg *Metrics) Sample(dst io.Writer, path config.Path, _ config.CtxMap) {
	config.WriteString(dst, metricsSample)
}

func (cfg *Metrics) ConfigName() string {
	return "metrics"
}

// ServePrometheus serves the metrics gathered from reg under /metrics until
// ctx is done. It returns immediately if no address is configured.
func (cfg *Metrics) ServePrometheus(ctx context.Context, reg *prometheus.Registry) error {
	if cfg.Prometheus == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.InstrumentMetricHandler(
		reg,
		promhttp.HandlerFor(reg, promhttp.HandlerOpts{Timeout: 10 * time.Second}),
	))
	log.Info("Exporting prometheus metrics", "addr", cfg.Prometheus)

	server := &http.Server{Addr: cfg.Prometheus, Handler: mux}
	go func() {
		defer log.HandlePanic()
		<-ctx.Done()
		server.Close()
	}()
	err := server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return serrors.Wrap("serving prometheus metrics", err)
	}
	return nil
}
