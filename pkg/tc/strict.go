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

// StrictPriority schedules classes based on a strict hierarchy, where a class
// is only served if all classes with a higher priority are empty. Among
// classes of equal priority, the one with the lowest index wins. The scheduler
// has no state.
type StrictPriority struct{}

func (*StrictPriority) Select(cs Classes) int {
	best := NoClass
	for i, c := range cs {
		if c.Len() == 0 {
			continue
		}
		if best == NoClass || c.Priority() > cs[best].Priority() {
			best = i
		}
	}
	return best
}

func (s *StrictPriority) Commit(cs Classes) int {
	return s.Select(cs)
}
