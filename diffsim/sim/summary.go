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
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/scionproto/diffserv/pkg/private/prom"
	"github.com/scionproto/diffserv/pkg/private/serrors"
	"github.com/scionproto/diffserv/pkg/tc"
)

// WriteFlowSummary writes a table with the per flow statistics of res.
func WriteFlowSummary(w io.Writer, res Result) {
	rows := make([][]string, 0, len(res.Flows))
	for _, f := range res.Flows {
		rows = append(rows, []string{
			strconv.Itoa(f.ID),
			f.Name,
			strconv.Itoa(f.Sent),
			strconv.Itoa(f.Delivered),
			strconv.Itoa(f.Dropped),
			fmt.Sprintf("%.3f", f.Throughput.Mbps()),
		})
	}
	renderTable(w, []string{"ID", "FLOW", "SENT", "DELIVERED", "DROPPED", "MBPS"}, rows)
}

// classCounters are the queue discipline counters of one class label.
type classCounters struct {
	enqueued, dequeued, bytes, droppedFull, droppedUnclassified, removed, queued float64
}

// WriteClassSummary writes a table with the per class counters that the
// queue discipline metrics registered with g.
func WriteClassSummary(w io.Writer, g prometheus.Gatherer) error {
	mfs, err := g.Gather()
	if err != nil {
		return serrors.Wrap("gathering metrics", err)
	}
	classes := make(map[string]*classCounters)
	get := func(class string) *classCounters {
		c, ok := classes[class]
		if !ok {
			c = &classCounters{}
			classes[class] = c
		}
		return c
	}
	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			labels := labelMap(m)
			class, ok := labels[prom.LabelClass]
			if !ok {
				continue
			}
			v := value(m)
			switch mf.GetName() {
			case "diffserv_tc_enqueued_packets_total":
				get(class).enqueued = v
			case "diffserv_tc_dequeued_packets_total":
				get(class).dequeued = v
			case "diffserv_tc_dequeued_bytes_total":
				get(class).bytes = v
			case "diffserv_tc_removed_packets_total":
				get(class).removed = v
			case "diffserv_tc_queue_length":
				get(class).queued = v
			case "diffserv_tc_dropped_packets_total":
				if labels[prom.LabelReason] == tc.DropReasonUnclassified {
					get(class).droppedUnclassified += v
				} else {
					get(class).droppedFull += v
				}
			}
		}
	}
	names := make([]string, 0, len(classes))
	for name := range classes {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, errA := strconv.Atoi(names[i])
		b, errB := strconv.Atoi(names[j])
		if errA != nil || errB != nil {
			// Non numeric labels, i.e., unclassified drops, go last.
			return errA == nil || (errB != nil && names[i] < names[j])
		}
		return a < b
	})
	rows := make([][]string, 0, len(names))
	for _, name := range names {
		c := classes[name]
		rows = append(rows, []string{
			name,
			fmtCount(c.enqueued),
			fmtCount(c.dequeued),
			fmtCount(c.bytes),
			fmtCount(c.droppedFull + c.droppedUnclassified),
			fmtCount(c.removed),
			fmtCount(c.queued),
		})
	}
	renderTable(w, []string{"CLASS", "ENQUEUED", "DEQUEUED", "BYTES", "DROPPED", "REMOVED",
		"QUEUED"}, rows)
	return nil
}

func labelMap(m *dto.Metric) map[string]string {
	labels := make(map[string]string, len(m.GetLabel()))
	for _, l := range m.GetLabel() {
		labels[l.GetName()] = l.GetValue()
	}
	return labels
}

func value(m *dto.Metric) float64 {
	switch {
	case m.GetCounter() != nil:
		return m.GetCounter().GetValue()
	case m.GetGauge() != nil:
		return m.GetGauge().GetValue()
	default:
		return 0
	}
}

func fmtCount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func renderTable(w io.Writer, header []string, rows [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	table.SetHeaderLine(false)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeader(header)
	table.AppendBulk(rows)
	table.Render()
}
