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

package config_test

import (
	"bytes"
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	simconfig "github.com/scionproto/diffserv/diffsim/config"
	"github.com/scionproto/diffserv/pkg/private/util"
	"github.com/scionproto/diffserv/pkg/private/xtest"
	"github.com/scionproto/diffserv/private/config"
)

var update = xtest.UpdateGoldenFiles()

func TestSample(t *testing.T) {
	var sample bytes.Buffer
	var cfg simconfig.Config
	cfg.Sample(&sample, nil, nil)
	xtest.AssertGolden(t, *update, "sample.toml", sample.Bytes())

	var decoded simconfig.Config
	require.NoError(t, config.Decode(sample.Bytes(), &decoded))
	decoded.InitDefaults()
	require.NoError(t, decoded.Validate())

	assert.Equal(t, 30*time.Second, decoded.General.Duration.Duration)
	assert.Equal(t, util.Mbps, decoded.General.Rate)
	assert.Equal(t, "drr", decoded.Queue.Discipline)
	assert.Equal(t, "drr.conf", decoded.Queue.Config)
	require.Len(t, decoded.Flows, 2)
	assert.Equal(t, "video", decoded.Flows[0].Name)
	assert.Equal(t, netip.MustParseAddr("10.1.2.2"), decoded.Flows[0].Dst)
	assert.Equal(t, uint16(6000), decoded.Flows[0].DstPort)
	assert.Equal(t, 2*util.Mbps, decoded.Flows[0].Rate)
	assert.Equal(t, time.Second, decoded.Flows[0].Start.Duration)
	assert.Equal(t, 30*time.Second, decoded.Flows[0].Stop.Duration)
	assert.Zero(t, decoded.Flows[1].Stop.Duration)
	assert.Equal(t, "throughput.txt", decoded.Output.ThroughputFile)
	assert.Equal(t, time.Second, decoded.Output.Interval.Duration)
	assert.Equal(t, "info", decoded.Logging.Console.Level)
}

func TestInitDefaults(t *testing.T) {
	cfg := simconfig.Config{
		Queue: simconfig.Queue{Config: "q.conf"},
		Flows: []simconfig.Flow{{Name: "a", Protocol: "UDP"}},
	}
	cfg.InitDefaults()
	assert.Equal(t, simconfig.DefaultDuration, cfg.General.Duration.Duration)
	assert.Equal(t, simconfig.DefaultRate, cfg.General.Rate)
	assert.Equal(t, simconfig.DefaultDiscipline, cfg.Queue.Discipline)
	assert.Equal(t, simconfig.DefaultInterval, cfg.Output.Interval.Duration)
	assert.Equal(t, "udp", cfg.Flows[0].Protocol)
	assert.Equal(t, simconfig.DefaultPayloadSize, cfg.Flows[0].PayloadSize)
}

func TestValidate(t *testing.T) {
	valid := func() simconfig.Config {
		cfg := simconfig.Config{
			Queue: simconfig.Queue{Config: "q.conf"},
			Flows: []simconfig.Flow{{
				Name:    "a",
				Src:     netip.MustParseAddr("10.0.0.1"),
				Dst:     netip.MustParseAddr("10.0.0.2"),
				DstPort: 6000,
				Rate:    util.Mbps,
			}},
		}
		cfg.InitDefaults()
		return cfg
	}
	testCases := map[string]struct {
		Modify    func(cfg *simconfig.Config)
		AssertErr assert.ErrorAssertionFunc
	}{
		"valid": {
			Modify:    func(cfg *simconfig.Config) {},
			AssertErr: assert.NoError,
		},
		"unknown discipline": {
			Modify:    func(cfg *simconfig.Config) { cfg.Queue.Discipline = "fifo" },
			AssertErr: assert.Error,
		},
		"no queue config": {
			Modify:    func(cfg *simconfig.Config) { cfg.Queue.Config = "" },
			AssertErr: assert.Error,
		},
		"no flows": {
			Modify:    func(cfg *simconfig.Config) { cfg.Flows = nil },
			AssertErr: assert.Error,
		},
		"duplicate flow": {
			Modify: func(cfg *simconfig.Config) {
				cfg.Flows = append(cfg.Flows, cfg.Flows[0])
			},
			AssertErr: assert.Error,
		},
		"mixed families": {
			Modify: func(cfg *simconfig.Config) {
				cfg.Flows[0].Dst = netip.MustParseAddr("2001:db8::1")
			},
			AssertErr: assert.Error,
		},
		"missing address": {
			Modify:    func(cfg *simconfig.Config) { cfg.Flows[0].Src = netip.Addr{} },
			AssertErr: assert.Error,
		},
		"icmp flow": {
			Modify:    func(cfg *simconfig.Config) { cfg.Flows[0].Protocol = "icmp" },
			AssertErr: assert.Error,
		},
		"huge payload": {
			Modify:    func(cfg *simconfig.Config) { cfg.Flows[0].PayloadSize = 70000 },
			AssertErr: assert.Error,
		},
		"zero rate": {
			Modify:    func(cfg *simconfig.Config) { cfg.Flows[0].Rate = 0 },
			AssertErr: assert.Error,
		},
		"stop before start": {
			Modify: func(cfg *simconfig.Config) {
				cfg.Flows[0].Start.Duration = 2 * time.Second
				cfg.Flows[0].Stop.Duration = time.Second
			},
			AssertErr: assert.Error,
		},
		"metrics address": {
			Modify:    func(cfg *simconfig.Config) { cfg.Metrics.Prometheus = "127.0.0.1:30455" },
			AssertErr: assert.NoError,
		},
		"metrics address without port": {
			Modify:    func(cfg *simconfig.Config) { cfg.Metrics.Prometheus = "127.0.0.1" },
			AssertErr: assert.Error,
		},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			cfg := valid()
			tc.Modify(&cfg)
			tc.AssertErr(t, cfg.Validate())
		})
	}
}
