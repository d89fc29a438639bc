// Copyright 2017 ETH Zurich
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

package pktcls

import (
	"strings"
)

// Filter is a conjunction of predicates. A Filter matches a packet if every
// predicate matches it; an empty Filter matches every packet.
type Filter []Predicate

// NewFilter returns a filter holding a copy of preds.
func NewFilter(preds ...Predicate) Filter {
	f := make(Filter, len(preds))
	copy(f, preds)
	return f
}

// Eval returns true if every predicate of the filter matches pkt.
func (f Filter) Eval(pkt Packet) bool {
	for _, p := range f {
		if !p.Eval(pkt) {
			return false
		}
	}
	return true
}

func (f Filter) String() string {
	if len(f) == 0 {
		return "any"
	}
	parts := make([]string, 0, len(f))
	for _, p := range f {
		parts = append(parts, p.String())
	}
	return strings.Join(parts, " && ")
}
