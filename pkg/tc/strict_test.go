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

package tc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/scionproto/diffserv/pkg/tc"
)

func spqClasses(prios ...int) tc.Classes {
	cs := make(tc.Classes, 0, len(prios))
	for _, p := range prios {
		cs = append(cs, tc.NewClass(tc.ClassConfig{Priority: p, MaxPackets: 100}))
	}
	return cs
}

func TestStrictPrioritySelect(t *testing.T) {
	testCases := map[string]struct {
		Prios    []int
		Backlog  []int
		Expected int
	}{
		"highest priority": {
			Prios:    []int{0, 2, 1},
			Backlog:  []int{1, 1, 1},
			Expected: 1,
		},
		"highest priority empty": {
			Prios:    []int{0, 2, 1},
			Backlog:  []int{1, 0, 1},
			Expected: 2,
		},
		"ties go to lowest index": {
			Prios:    []int{1, 3, 3},
			Backlog:  []int{1, 1, 1},
			Expected: 1,
		},
		"zero is the lowest priority": {
			Prios:    []int{0, 0, 1},
			Backlog:  []int{1, 1, 0},
			Expected: 0,
		},
		"all empty": {
			Prios:    []int{0, 1},
			Backlog:  []int{0, 0},
			Expected: tc.NoClass,
		},
	}
	for name, test := range testCases {
		t.Run(name, func(t *testing.T) {
			cs := spqClasses(test.Prios...)
			for i, n := range test.Backlog {
				fill(cs[i], n, 100, 1)
			}
			s := &tc.StrictPriority{}
			assert.Equal(t, test.Expected, s.Select(cs))
			assert.Equal(t, test.Expected, s.Commit(cs))
		})
	}
}

func TestStrictPriorityDrainsInOrder(t *testing.T) {
	cs := spqClasses(0, 1, 2)
	for i := range cs {
		fill(cs[i], 3, 100, 1)
	}
	assert.Equal(t, []int{2, 2, 2, 1, 1, 1, 0, 0, 0}, serve(t, &tc.StrictPriority{}, cs, 20))
}

func TestNewScheduler(t *testing.T) {
	s, err := tc.NewScheduler("drr")
	assert.NoError(t, err)
	assert.IsType(t, &tc.DRR{}, s)

	s, err = tc.NewScheduler("SPQ")
	assert.NoError(t, err)
	assert.IsType(t, &tc.StrictPriority{}, s)

	_, err = tc.NewScheduler("wfq")
	assert.ErrorIs(t, err, tc.ErrUnknownScheduler)
}
