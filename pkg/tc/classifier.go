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
	"github.com/scionproto/diffserv/pkg/pktcls"
)

// NoClass is returned if no class applies.
const NoClass = -1

// Classes is the ordered list of traffic classes of a queue discipline. The
// index of a class in the list is its identity.
type Classes []*Class

// Classify returns the index of the first class that matches pkt. If no class
// matches, the index of the first default class is returned, or NoClass if
// there is none.
func (cs Classes) Classify(pkt pktcls.Packet) int {
	def := NoClass
	for i, c := range cs {
		if c.Match(pkt) {
			return i
		}
		if def == NoClass && c.Default() {
			def = i
		}
	}
	return def
}

// Empty returns true if no class holds a packet.
func (cs Classes) Empty() bool {
	for _, c := range cs {
		if c.Len() > 0 {
			return false
		}
	}
	return true
}
