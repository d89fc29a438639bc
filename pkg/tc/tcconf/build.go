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

package tcconf

import (
	"strings"

	"github.com/scionproto/diffserv/pkg/pktcls"
	"github.com/scionproto/diffserv/pkg/private/serrors"
	"github.com/scionproto/diffserv/pkg/tc"
)

// Build creates a queue discipline for the given scheduling discipline from
// the records. Records that cannot be applied are returned as rejections. An
// error is only returned if the discipline is unknown or if no class could be
// defined. Rejections and the result are logged with the logger set through
// tc.WithLogger.
func Build(discipline string, records []Record,
	opts ...tc.Option) (*tc.QueueDisc, Rejections, error) {

	sched, err := tc.NewScheduler(discipline)
	if err != nil {
		return nil, nil, err
	}
	logger := tc.ApplyOptions(opts...).Logger()
	b := builder{drr: strings.EqualFold(discipline, tc.DisciplineDRR)}
	var rejections Rejections
	for _, r := range records {
		if err := b.apply(r); err != nil {
			logger.Error("Rejected queue configuration record", "pos", r.Pos, "err", err)
			rejections = append(rejections, Rejection{Pos: r.Pos, Err: err})
		}
	}
	if len(b.classes) == 0 {
		return nil, rejections, serrors.Join(ErrNoClasses, rejections.ToError(),
			"records", len(records))
	}
	qd, err := tc.New(b.classes, sched, opts...)
	if err != nil {
		return nil, rejections, err
	}
	logger.Info("Queue discipline configured", "discipline", discipline,
		"classes", len(b.classes), "filters", b.filters, "rejected", rejections.Len())
	return qd, rejections, nil
}

// builder accumulates the classes while records are applied.
type builder struct {
	drr        bool
	classes    []*tc.Class
	// defined maps the number of every class record, in definition order, to
	// its position in classes, or to -1 if the record was rejected.
	defined    []int
	hasDefault bool
	filters    int
}

func (b *builder) apply(r Record) error {
	switch {
	case r.Err != nil:
		if r.Class != nil && r.Filter == nil {
			b.defined = append(b.defined, -1)
		}
		return r.Err
	case r.Class != nil && r.Filter != nil:
		return serrors.Join(ErrSyntax, nil, "reason", "class and filter in one record")
	case r.Class != nil:
		idx := len(b.defined)
		if err := b.addClass(idx, *r.Class); err != nil {
			b.defined = append(b.defined, -1)
			return err
		}
		b.defined = append(b.defined, len(b.classes)-1)
		return nil
	case r.Filter != nil:
		return b.addFilter(*r.Filter)
	default:
		return serrors.Join(ErrSyntax, nil, "reason", "empty record")
	}
}

func (b *builder) addClass(idx int, c ClassRecord) error {
	if c.ID != nil && *c.ID != idx {
		return serrors.Join(ErrClassIndex, nil, "declared", *c.ID, "expected", idx)
	}
	if c.Capacity <= 0 {
		return serrors.Join(ErrCapacity, nil, "class", idx, "capacity", c.Capacity)
	}
	cfg := tc.ClassConfig{MaxPackets: c.Capacity, Default: c.Default}
	if b.drr {
		if c.Value <= 0 {
			return serrors.Join(ErrWeight, nil, "class", idx, "weight", c.Value)
		}
		cfg.Weight = c.Value
	} else {
		if c.Value < 0 {
			return serrors.Join(ErrPriority, nil, "class", idx, "priority", c.Value)
		}
		cfg.Priority = c.Value
	}
	if c.Default {
		if b.hasDefault {
			return serrors.Join(ErrDuplicateDefault, nil, "class", idx)
		}
		b.hasDefault = true
	}
	b.classes = append(b.classes, tc.NewClass(cfg))
	return nil
}

func (b *builder) addFilter(f FilterRecord) error {
	if f.Class < 0 || f.Class >= len(b.defined) {
		return serrors.Join(ErrClassIndex, nil, "class", f.Class, "defined", len(b.defined))
	}
	pos := b.defined[f.Class]
	if pos < 0 {
		return serrors.Join(ErrClassRejected, nil, "class", f.Class)
	}
	filter := make(pktcls.Filter, 0, len(f.Match))
	for _, m := range f.Match {
		p, err := pktcls.ParsePredicate(m.Kind, m.Value)
		if err != nil {
			return serrors.Wrap("parsing filter", err, "class", f.Class)
		}
		filter = append(filter, p)
	}
	b.classes[pos].AddFilter(filter)
	b.filters++
	return nil
}
