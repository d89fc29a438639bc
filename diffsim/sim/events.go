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

package sim

import (
	"container/heap"
	"time"
)

type event struct {
	at   time.Duration
	seq  uint64
	fire func()
}

// eventQueue orders events by time. Events at the same time fire in the
// order they were scheduled.
type eventQueue []event

// Len implements heap.Interface.
func (q eventQueue) Len() int { return len(q) }

// Less implements heap.Interface.
func (q eventQueue) Less(i, j int) bool {
	if q[i].at != q[j].at {
		return q[i].at < q[j].at
	}
	return q[i].seq < q[j].seq
}

// Swap implements heap.Interface.
func (q eventQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

// Push implements heap.Interface.
func (q *eventQueue) Push(x any) { *q = append(*q, x.(event)) }

// Pop implements heap.Interface.
func (q *eventQueue) Pop() any {
	o := *q
	n := len(o)
	e := o[n-1]
	o[n-1] = event{}
	*q = o[:n-1]
	return e
}

// clock is the virtual time of a simulation together with its pending
// events.
type clock struct {
	now    time.Duration
	seq    uint64
	events eventQueue
}

// schedule registers fire to run at the given time. Times in the past run at
// the current time.
func (c *clock) schedule(at time.Duration, fire func()) {
	if at < c.now {
		at = c.now
	}
	c.seq++
	heap.Push(&c.events, event{at: at, seq: c.seq, fire: fire})
}

// step fires the next event if it is due no later than until. It returns
// false if no such event exists.
func (c *clock) step(until time.Duration) bool {
	if len(c.events) == 0 || c.events[0].at > until {
		return false
	}
	e := heap.Pop(&c.events).(event)
	c.now = e.at
	e.fire()
	return true
}
