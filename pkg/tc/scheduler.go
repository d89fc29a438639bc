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
	"errors"
	"strings"

	"github.com/scionproto/diffserv/pkg/private/serrors"
)

// ErrUnknownScheduler indicates a scheduling discipline that does not exist.
var ErrUnknownScheduler = errors.New("unknown scheduler")

// Scheduler decides which class is served next.
type Scheduler interface {
	// Select returns the index of the class that would be served next, or
	// NoClass. It does not change the scheduler state.
	Select(cs Classes) int
	// Commit returns the index of the class that is served next, or NoClass,
	// and updates the scheduler state. The caller must remove the head packet
	// of the returned class.
	Commit(cs Classes) int
}

// Scheduling disciplines understood by NewScheduler.
const (
	DisciplineDRR = "drr"
	DisciplineSPQ = "spq"
)

// NewScheduler returns a fresh scheduler for the named discipline.
func NewScheduler(discipline string) (Scheduler, error) {
	switch strings.ToLower(discipline) {
	case DisciplineDRR:
		return NewDRR(), nil
	case DisciplineSPQ, "strict":
		return &StrictPriority{}, nil
	default:
		return nil, serrors.Join(ErrUnknownScheduler, nil, "discipline", discipline)
	}
}
