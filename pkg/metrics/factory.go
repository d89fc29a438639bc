// Copyright 2023 Anapaya Systems
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

// Package metrics creates prometheus collectors and registers them with a
// configurable registry. Components take a Factory instead of registering with
// the global default registry, so that tests and simulations can run several
// instances side by side.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Factory.
type Option func(*Options)

// Options holds the factory configuration.
type Options struct {
	registry            prometheus.Registerer
	collectorCustomizer func(string, prometheus.Collector) prometheus.Collector
}

func (o Options) registerer() prometheus.Registerer {
	if o.registry != nil {
		return o.registry
	}
	return prometheus.DefaultRegisterer
}

// WithCollectorCustomizer sets a function that is applied to every collector
// before it is registered. The function receives the fully qualified metric
// name.
func WithCollectorCustomizer(
	customizer func(string, prometheus.Collector) prometheus.Collector,
) Option {
	return func(o *Options) {
		o.collectorCustomizer = customizer
	}
}

// WithRegistry sets the registry the collectors are registered with. If not
// set, the prometheus default registerer is used.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(o *Options) {
		o.registry = registry
	}
}

// ApplyOptions applies all options and returns the result.
func ApplyOptions(options ...Option) Options {
	opts := Options{}
	for _, option := range options {
		option(&opts)
	}
	return opts
}

// Auto returns a Factory that registers every created collector.
func (o Options) Auto() Factory {
	return Factory{opts: o}
}

// NewFactory is a shorthand for ApplyOptions(options...).Auto().
func NewFactory(options ...Option) Factory {
	return ApplyOptions(options...).Auto()
}

// Factory creates collectors and registers them.
type Factory struct {
	opts Options
}

func (f Factory) register(fqName string, c prometheus.Collector) {
	reg := f.opts.registerer()
	if f.opts.collectorCustomizer != nil {
		c = f.opts.collectorCustomizer(fqName, c)
	}
	reg.MustRegister(c)
}

// NewCounterVec creates and registers a counter vector.
func (f Factory) NewCounterVec(
	opts prometheus.CounterOpts,
	labelNames []string,
) *prometheus.CounterVec {
	c := prometheus.NewCounterVec(opts, labelNames)
	f.register(prometheus.BuildFQName(opts.Namespace, opts.Subsystem, opts.Name), c)
	return c
}

// NewGaugeVec creates and registers a gauge vector.
func (f Factory) NewGaugeVec(opts prometheus.GaugeOpts, labelNames []string) *prometheus.GaugeVec {
	g := prometheus.NewGaugeVec(opts, labelNames)
	f.register(prometheus.BuildFQName(opts.Namespace, opts.Subsystem, opts.Name), g)
	return g
}

// NewHistogramVec creates and registers a histogram vector.
func (f Factory) NewHistogramVec(
	opts prometheus.HistogramOpts,
	labelNames []string,
) *prometheus.HistogramVec {
	h := prometheus.NewHistogramVec(opts, labelNames)
	f.register(prometheus.BuildFQName(opts.Namespace, opts.Subsystem, opts.Name), h)
	return h
}

// CopyLabels returns a copy of labels with the extra key-value pairs added.
func CopyLabels(labels prometheus.Labels, kv ...string) prometheus.Labels {
	l := make(prometheus.Labels, len(labels)+len(kv)/2)
	for k, v := range labels {
		l[k] = v
	}
	for i := 0; i+1 < len(kv); i += 2 {
		l[kv[i]] = kv[i+1]
	}
	return l
}
