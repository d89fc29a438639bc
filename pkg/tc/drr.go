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

// DRR is a deficit round robin scheduler. Every class has a deficit counter
// that is credited with the class weight once each time the round robin
// cursor visits the class. The head packet is served if it fits into the
// deficit. The cursor stays on a class for as long as its remaining deficit
// covers the next head packet.
//
// A class only makes progress if its weight is at least as large as the
// largest packet it admits; otherwise it needs several visits per packet.
type DRR struct {
	deficits []int
	cursor   int
	// credited is set if the class under the cursor already received its
	// quantum during the current visit.
	credited bool

	scratch []int
}

// NewDRR returns a DRR scheduler with all deficits at zero.
func NewDRR() *DRR {
	return &DRR{}
}

func (d *DRR) Select(cs Classes) int {
	cursor, credited := d.cursor, d.credited
	if len(d.deficits) == len(cs) {
		d.scratch = append(d.scratch[:0], d.deficits...)
	} else {
		d.scratch = append(d.scratch[:0], make([]int, len(cs))...)
		cursor, credited = 0, false
	}
	return drrNext(cs, d.scratch, &cursor, &credited)
}

func (d *DRR) Commit(cs Classes) int {
	d.ensure(len(cs))
	return drrNext(cs, d.deficits, &d.cursor, &d.credited)
}

// Deficits returns a copy of the deficit counters.
func (d *DRR) Deficits() []int {
	return append([]int(nil), d.deficits...)
}

// Cursor returns the index of the class the round robin cursor points to.
func (d *DRR) Cursor() int {
	return d.cursor
}

func (d *DRR) ensure(n int) {
	if len(d.deficits) == n {
		return
	}
	d.deficits = make([]int, n)
	d.cursor = 0
	d.credited = false
}

// drrNext runs the DRR state machine on the given state until a class is
// selected. It returns NoClass if all classes are empty or if no non-empty
// class can ever accumulate enough deficit.
func drrNext(cs Classes, deficits []int, cursor *int, credited *bool) int {
	n := len(cs)
	if n == 0 || cs.Empty() {
		for i := range deficits {
			deficits[i] = 0
		}
		return NoClass
	}
	advance := func() {
		*cursor = (*cursor + 1) % n
		*credited = false
	}
	// stalled counts consecutive visits that added no deficit. A full circle
	// of those means every non-empty class has zero weight.
	stalled := 0
	for {
		i := *cursor
		c := cs[i]
		if c.Len() == 0 {
			deficits[i] = 0
			advance()
			if stalled++; stalled >= n {
				return NoClass
			}
			continue
		}
		if !*credited {
			*credited = true
			deficits[i] += c.Weight()
			if c.Weight() > 0 {
				stalled = 0
			} else {
				stalled++
			}
		}
		head, _ := c.Peek()
		if deficits[i] < head.Len() {
			advance()
			if stalled >= n {
				return NoClass
			}
			continue
		}
		deficits[i] -= head.Len()
		switch next, ok := c.PeekAt(1); {
		case !ok:
			// The class becomes empty.
			deficits[i] = 0
			advance()
		case deficits[i] < next.Len():
			advance()
		}
		return i
	}
}
