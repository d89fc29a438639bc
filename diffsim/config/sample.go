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

package config

const generalSample = `
# Simulated time. (default 30s)
duration = "30s"

# Rate of the bottleneck link. (default 1Mbps)
rate = "1Mbps"
`

const queueSample = `
# Scheduling discipline of the bottleneck queue (drr|spq). (default drr)
discipline = "drr"

# Location of the traffic class configuration. Either a file or an http(s)
# URL. Files ending in .toml and .yaml are structured documents, anything
# else is read as text format.
config = "drr.conf"
`

const flowsSample = `
# Constant bit rate flows. Every flow is active from start to stop.
[[flows]]
name = "video"
src = "10.1.1.1"
dst = "10.1.2.2"
# Transport protocol (udp|tcp). (default udp)
protocol = "udp"
src_port = 49152
dst_port = 6000
# Transport payload per packet in bytes. (default 1024)
payload_size = 1024
rate = "2Mbps"
start = "1s"
# Defaults to the end of the simulation.
stop = "30s"

[[flows]]
name = "bulk"
src = "10.1.1.1"
dst = "10.1.2.2"
protocol = "udp"
src_port = 49153
dst_port = 7000
payload_size = 1024
rate = "2Mbps"
start = "1s"
`

const outputSample = `
# File receiving one "<time> <flow> <Mbps>" line per flow and interval.
# Empty disables the output. (default "")
throughput_file = "throughput.txt"

# Throughput sampling interval. (default 1s)
interval = "1s"

# Capture of the packets leaving the bottleneck queue in pcap format.
# Empty disables the capture. (default "")
pcap_file = ""
`

const metricsSample = `
# The address to export prometheus metrics on (host:port or ip:port or :port).
# The metrics can be found under /metrics. If not set, metrics are not
# exported. (default "")
prometheus = ""

# Time the endpoint keeps serving after the simulation ended. (default 0s)
linger = "0s"
`
