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

// diffsim simulates constant bit rate flows sharing a bottleneck link that is
// scheduled by a diffserv queue discipline.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	simconfig "github.com/scionproto/diffserv/diffsim/config"
	"github.com/scionproto/diffserv/diffsim/sim"
	"github.com/scionproto/diffserv/pkg/log"
	"github.com/scionproto/diffserv/pkg/metrics"
	"github.com/scionproto/diffserv/pkg/private/serrors"
	"github.com/scionproto/diffserv/pkg/tc"
	"github.com/scionproto/diffserv/private/app/command"
	"github.com/scionproto/diffserv/private/app/launcher"
	"github.com/scionproto/diffserv/private/config"
)

func main() {
	newApplication(os.Stdout).Run()
}

func newApplication(out io.Writer) *launcher.Application {
	var cfg simconfig.Config
	reg := prometheus.NewRegistry()
	return &launcher.Application{
		TOMLConfig:   &cfg,
		ShortName:    "diffserv queue simulator",
		Registerer:   reg,
		Commands:     []func(command.Pather) *cobra.Command{newCheck},
		OutputWriter: out,
		Main: func(ctx context.Context) error {
			return realMain(ctx, &cfg, reg, out)
		},
	}
}

func realMain(ctx context.Context, cfg *simconfig.Config, reg *prometheus.Registry,
	out io.Writer) error {

	digest, err := config.Digest(cfg)
	if err != nil {
		return serrors.Wrap("computing config digest", err)
	}
	log.Info("Configuration loaded", "digest", fmt.Sprintf("%x", digest),
		"discipline", cfg.Queue.Discipline, "queue", cfg.Queue.Config)

	factory := metrics.NewFactory(metrics.WithRegistry(reg))
	m := tc.NewMetrics(factory)
	qd, _, err := sim.LoadQueue(ctx, cfg.Queue.Discipline, cfg.Queue.Config,
		tc.WithLogger(log.New("component", "queue")),
		tc.WithMetrics(m),
	)
	if err != nil {
		return err
	}

	opts := []sim.Option{
		sim.WithLogger(log.New("component", "sim")),
		sim.WithMetrics(sim.NewMetrics(factory)),
	}
	if file := cfg.Output.ThroughputFile; file != "" {
		f, err := os.Create(file)
		if err != nil {
			return serrors.Wrap("creating throughput file", err, "file", file)
		}
		defer f.Close()
		opts = append(opts, sim.WithThroughput(f))
	}
	if file := cfg.Output.PcapFile; file != "" {
		f, err := os.Create(file)
		if err != nil {
			return serrors.Wrap("creating pcap file", err, "file", file)
		}
		defer f.Close()
		opts = append(opts, sim.WithPcap(f))
	}

	s, err := sim.New(cfg, qd, opts...)
	if err != nil {
		return err
	}

	g, errCtx := errgroup.WithContext(ctx)
	serveCtx, stopServing := context.WithCancel(errCtx)
	defer stopServing()
	g.Go(func() error {
		defer log.HandlePanic()
		return cfg.Metrics.ServePrometheus(serveCtx, reg)
	})
	g.Go(func() error {
		defer log.HandlePanic()
		defer stopServing()
		res, runErr := s.Run(errCtx)
		fmt.Fprintf(out, "Simulated %s.\n\nFlows:\n", res.Duration)
		sim.WriteFlowSummary(out, res)
		fmt.Fprintln(out, "\nClasses:")
		if err := sim.WriteClassSummary(out, reg); err != nil {
			return err
		}
		if runErr != nil {
			return runErr
		}
		if linger := cfg.Metrics.Linger.Duration; cfg.Metrics.Prometheus != "" && linger > 0 {
			log.Info("Keeping metrics endpoint open", "linger", linger)
			select {
			case <-time.After(linger):
			case <-errCtx.Done():
			}
		}
		return nil
	})
	return g.Wait()
}
