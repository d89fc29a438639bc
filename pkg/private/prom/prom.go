// Copyright 2017 ETH Zurich
// Copyright 2018 ETH Zurich, Anapaya Systems
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

// Package prom contains the label names and bucket layouts shared by the
// diffserv metrics.
package prom

// Common label names.
const (
	// LabelClass is the label for the traffic class index.
	LabelClass = "class"
	// LabelReason is the label for the reason of a drop.
	LabelReason = "reason"
	// LabelFlow is the label for the name of a simulated flow.
	LabelFlow = "flow"
	// LabelLevel is the label for the level of a log entry.
	LabelLevel = "level"
)

// Namespace is the namespace of all diffserv metrics.
const Namespace = "diffserv"

// NoClass is the class label value of packets that matched no class.
const NoClass = "none"

var (
	// DefaultLatencyBuckets 1ms, 2ms, 4ms, ... 512ms, 1.024s.
	DefaultLatencyBuckets = []float64{0.001, 0.002, 0.004, 0.008, 0.016, 0.032, 0.064,
		0.128, 0.256, 0.512, 1.024}
	// DefaultSizeBuckets 64, 128, 256, 512, 1024, 1500, 4096, 9000, 65535
	DefaultSizeBuckets = []float64{64, 128, 256, 512, 1024, 1500, 4096, 9000, 65535}
)
