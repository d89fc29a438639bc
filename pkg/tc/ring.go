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

// ring is a packet FIFO on top of a fixed-sized slice. It never blocks and is
// not thread-safe.
type ring struct {
	entries   []pktcls.Packet
	readIndex int
	readable  int
}

func newRing(count int) *ring {
	if count < 0 {
		count = 0
	}
	return &ring{entries: make([]pktcls.Packet, count)}
}

// push appends p. It returns false if the ring is full.
func (r *ring) push(p pktcls.Packet) bool {
	if r.readable == len(r.entries) {
		return false
	}
	writeIndex := r.readIndex + r.readable
	if writeIndex >= len(r.entries) {
		writeIndex -= len(r.entries)
	}
	r.entries[writeIndex] = p
	r.readable++
	return true
}

// pop removes and returns the oldest entry.
func (r *ring) pop() (pktcls.Packet, bool) {
	if r.readable == 0 {
		return nil, false
	}
	p := r.entries[r.readIndex]
	// Remove the reference that was just read.
	r.entries[r.readIndex] = nil
	r.readIndex++
	if r.readIndex == len(r.entries) {
		r.readIndex = 0
	}
	r.readable--
	return p, true
}

// at returns the i-th oldest entry without removing it.
func (r *ring) at(i int) (pktcls.Packet, bool) {
	if i < 0 || i >= r.readable {
		return nil, false
	}
	idx := r.readIndex + i
	if idx >= len(r.entries) {
		idx -= len(r.entries)
	}
	return r.entries[idx], true
}

func (r *ring) len() int { return r.readable }
func (r *ring) cap() int { return len(r.entries) }
