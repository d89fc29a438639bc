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

// ClassConfig describes a traffic class.
type ClassConfig struct {
	// Weight is the DRR quantum in bytes that the class receives once per
	// round.
	Weight int
	// Priority is the strict priority of the class. Higher values are served
	// first, 0 is the lowest.
	Priority int
	// MaxPackets is the capacity of the class queue.
	MaxPackets int
	// Default marks the class as fallback for packets that match no class.
	Default bool
	// Filters are the filters of the class. A class without filters matches
	// every packet.
	Filters []pktcls.Filter
}

// Class is a traffic class: a bounded packet FIFO together with the filters
// that select the packets it accepts.
type Class struct {
	weight      int
	priority    int
	def         bool
	filters     []pktcls.Filter
	queue       *ring
	maxAdmitted int
	removed     int
}

// NewClass creates an empty class.
func NewClass(cfg ClassConfig) *Class {
	c := &Class{
		weight:   cfg.Weight,
		priority: cfg.Priority,
		def:      cfg.Default,
		queue:    newRing(cfg.MaxPackets),
	}
	for _, f := range cfg.Filters {
		c.AddFilter(f)
	}
	return c
}

// AddFilter attaches a copy of f to the class.
func (c *Class) AddFilter(f pktcls.Filter) {
	c.filters = append(c.filters, pktcls.NewFilter(f...))
}

// Match returns true if any filter of the class matches pkt, or if the class
// has no filters.
func (c *Class) Match(pkt pktcls.Packet) bool {
	if len(c.filters) == 0 {
		return true
	}
	for _, f := range c.filters {
		if f.Eval(pkt) {
			return true
		}
	}
	return false
}

// Enqueue appends pkt to the queue. It returns false and leaves the class
// unchanged if the queue is full.
func (c *Class) Enqueue(pkt pktcls.Packet) bool {
	if !c.queue.push(pkt) {
		return false
	}
	if l := pkt.Len(); l > c.maxAdmitted {
		c.maxAdmitted = l
	}
	return true
}

// Dequeue removes and returns the head packet.
func (c *Class) Dequeue() (pktcls.Packet, bool) {
	return c.queue.pop()
}

// Remove removes and returns the head packet. The packet is discarded rather
// than transmitted and counts towards Removed.
func (c *Class) Remove() (pktcls.Packet, bool) {
	pkt, ok := c.queue.pop()
	if ok {
		c.removed++
	}
	return pkt, ok
}

// Peek returns the head packet without removing it.
func (c *Class) Peek() (pktcls.Packet, bool) {
	return c.queue.at(0)
}

// PeekAt returns the i-th packet counted from the head without removing it.
func (c *Class) PeekAt(i int) (pktcls.Packet, bool) {
	return c.queue.at(i)
}

// Len returns the number of queued packets.
func (c *Class) Len() int { return c.queue.len() }

// Cap returns the maximum number of queued packets.
func (c *Class) Cap() int { return c.queue.cap() }

func (c *Class) Weight() int   { return c.weight }
func (c *Class) Priority() int { return c.priority }
func (c *Class) Default() bool { return c.def }

// Filters returns a copy of the class filters.
func (c *Class) Filters() []pktcls.Filter {
	fs := make([]pktcls.Filter, 0, len(c.filters))
	for _, f := range c.filters {
		fs = append(fs, pktcls.NewFilter(f...))
	}
	return fs
}

// Removed returns the number of packets discarded with Remove.
func (c *Class) Removed() int { return c.removed }

// MaxAdmitted returns the size of the largest packet the class has admitted.
func (c *Class) MaxAdmitted() int { return c.maxAdmitted }
